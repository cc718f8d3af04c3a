package player

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"tunelink/internal/core"
)

// Manager aggregates all registered backends behind one facade and owns the
// active-backend pointer.
//
// The active backend is set either by explicit selection or by a one-shot
// discovery pass: the first enabled backend reporting Playing wins and stays
// active until the user selects another one or it becomes disabled by
// configuration. Discovery is a fallback, not continuous arbitration; once a
// backend is active, all state and action calls route to it regardless of
// the state it reports.
type Manager struct {
	logger  *zap.Logger
	players []MediaPlayer

	mu     sync.Mutex
	active MediaPlayer
}

// NewManager creates a manager over the given backends. The slice order is
// the discovery priority order.
func NewManager(logger *zap.Logger, players ...MediaPlayer) *Manager {
	return &Manager{
		logger:  logger,
		players: players,
	}
}

// availablePlayers snapshots the currently enabled backends. The active
// pointer is cleared if its backend has been disabled since the last call.
func (m *Manager) availablePlayers() []MediaPlayer {
	available := make([]MediaPlayer, 0, len(m.players))
	for _, p := range m.players {
		if p.IsEnabled() {
			available = append(available, p)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active != nil && !containsPlayer(available, m.active) {
		m.logger.Info("active player became unavailable",
			zap.String("player", m.active.Name()))
		m.active = nil
	}
	return available
}

func containsPlayer(players []MediaPlayer, target MediaPlayer) bool {
	for _, p := range players {
		if p == target {
			return true
		}
	}
	return false
}

// PlayerNames returns the names of the currently enabled backends in
// priority order.
func (m *Manager) PlayerNames() []string {
	available := m.availablePlayers()
	names := make([]string, len(available))
	for i, p := range available {
		names[i] = p.Name()
	}
	return names
}

// SelectPlayer explicitly activates the named backend. It returns an error
// if the backend is not among the currently enabled ones; this is a contract
// error and is never swallowed.
func (m *Manager) SelectPlayer(name string) error {
	for _, p := range m.availablePlayers() {
		if p.Name() == name {
			m.setActive(p)
			return nil
		}
	}
	return fmt.Errorf("player %q is not available", name)
}

// ActiveName returns the active backend's name, or "" when none is active.
func (m *Manager) ActiveName() string {
	if p := m.currentActive(); p != nil {
		return p.Name()
	}
	return ""
}

func (m *Manager) setActive(p MediaPlayer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active != p {
		m.logger.Info("active player changed", zap.String("player", p.Name()))
	}
	m.active = p
}

// currentActive returns the active backend, after clearing it if it has
// become disabled.
func (m *Manager) currentActive() MediaPlayer {
	m.availablePlayers()
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

// IsLinkSupported reports whether any enabled backend can play the URL.
func (m *Manager) IsLinkSupported(url string) bool {
	for _, p := range m.availablePlayers() {
		if p.IsLinkSupported(url) {
			return true
		}
	}
	return false
}

// OpenLink routes the URL to the first enabled backend that supports it.
// That backend becomes the active one: the user has now explicitly
// triggered it.
func (m *Manager) OpenLink(ctx context.Context, url string) error {
	for _, p := range m.availablePlayers() {
		if p.IsLinkSupported(url) {
			m.setActive(p)
			return p.OpenLink(ctx, url)
		}
	}
	return fmt.Errorf("no enabled player supports %q", url)
}

// GetPlayerState returns the active backend's state, or runs discovery when
// no backend is active. Discovery queries enabled backends silently in
// priority order and short-circuits on the first one reporting Playing; if
// none is playing, the call reports Disconnected and the active pointer
// stays unset so discovery is retried on the next call.
func (m *Manager) GetPlayerState(ctx context.Context, query core.StateQuery) core.PlayerState {
	if p := m.currentActive(); p != nil {
		return p.GetPlayerState(ctx, query)
	}

	for _, p := range m.availablePlayers() {
		state := p.GetPlayerState(ctx, query)
		if state.State == core.PlaybackPlaying {
			m.setActive(p)
			return state
		}
	}

	return core.PlayerState{State: core.PlaybackDisconnected}
}

// discoverActive returns the active backend, running the same one-shot
// discovery as GetPlayerState when none is set.
func (m *Manager) discoverActive(ctx context.Context) MediaPlayer {
	if p := m.currentActive(); p != nil {
		return p
	}

	for _, p := range m.availablePlayers() {
		state := p.GetPlayerState(ctx, core.StateQuery{})
		if state.State == core.PlaybackPlaying {
			m.setActive(p)
			return p
		}
	}
	return nil
}

// PerformAction dispatches the action to the active backend. With no active
// backend and nothing playing anywhere, the action is dropped; the next
// poll reports Disconnected.
func (m *Manager) PerformAction(ctx context.Context, action core.PlayerAction) error {
	p := m.discoverActive(ctx)
	if p == nil {
		m.logger.Debug("no active player for action", zap.String("action", string(action)))
		return nil
	}
	return p.PerformAction(ctx, action)
}

// PerformAuthorization runs the active backend's authorization, if any.
func (m *Manager) PerformAuthorization(ctx context.Context, silent bool) error {
	p := m.currentActive()
	if p == nil {
		return nil
	}
	return p.PerformAuthorization(ctx, silent)
}
