package core

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// PlayerStateSource is the slice of the player facade the monitor needs.
type PlayerStateSource interface {
	GetPlayerState(ctx context.Context, query StateQuery) PlayerState
}

// PollRecorder exports poll results to the metrics surface.
type PollRecorder interface {
	RecordPoll(state PlaybackState)
}

// PlayerMonitor drives the polling contract: it queries the player facade on
// a fixed interval with a field selector derived from the configured status
// bar layout, and renders the resulting status line. Polls must stay cheap
// and non-blocking; a slow backend call only delays this loop, never the
// user-triggered paths.
type PlayerMonitor struct {
	player   PlayerStateSource
	settings *Settings
	recorder PollRecorder
	logger   *zap.Logger

	mu       sync.RWMutex
	last     PlayerState
	lastLine string
}

// NewPlayerMonitor creates a monitor. recorder may be nil.
func NewPlayerMonitor(player PlayerStateSource, settings *Settings, recorder PollRecorder, logger *zap.Logger) *PlayerMonitor {
	return &PlayerMonitor{
		player:   player,
		settings: settings,
		recorder: recorder,
		logger:   logger,
	}
}

// Run polls until the context is cancelled. The interval is re-read from
// the live settings on every tick so configuration changes apply without a
// restart.
func (m *PlayerMonitor) Run(ctx context.Context) error {
	m.logger.Info("starting player monitor",
		zap.Duration("interval", m.settings.Player().PollInterval))

	timer := time.NewTimer(m.settings.Player().PollInterval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("player monitor stopped")
			return nil
		case <-timer.C:
			m.poll(ctx)
			interval := m.settings.Player().PollInterval
			if interval <= 0 {
				interval = 2 * time.Second
			}
			timer.Reset(interval)
		}
	}
}

func (m *PlayerMonitor) poll(ctx context.Context) {
	cfg := m.settings.Player()
	state := m.player.GetPlayerState(ctx, queryForLayout(cfg))

	if m.recorder != nil {
		m.recorder.RecordPoll(state.State)
	}

	line := FormatStatusLine(cfg.StatusBarLayout(), state)

	m.mu.Lock()
	changed := line != m.lastLine
	m.last = state
	m.lastLine = line
	m.mu.Unlock()

	if changed {
		m.logger.Info("player status changed",
			zap.String("status", line),
			zap.String("state", string(state.State)),
			zap.String("source", state.Source))
	}
}

// LastState returns the most recently polled state.
func (m *PlayerMonitor) LastState() PlayerState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.last
}

// queryForLayout derives the field selector from the configured layout, so
// polls only fetch what the status line renders.
func queryForLayout(cfg PlayerConfig) StateQuery {
	var query StateQuery
	if !cfg.ShowTrackInStatusBar {
		return query
	}
	for _, item := range cfg.StatusBarLayout() {
		if item == StatusItemText {
			query.Track.Title = true
			query.Track.Artists = true
		}
	}
	return query
}

// FormatStatusLine renders the status bar layout as a single text line.
func FormatStatusLine(layout []StatusItem, state PlayerState) string {
	var parts []string
	for _, item := range layout {
		switch item {
		case StatusItemPlay:
			parts = append(parts, playGlyph(state.State))
		case StatusItemText:
			if text := trackText(state.Track); text != "" {
				parts = append(parts, text)
			}
		case StatusItemPrevious:
			parts = append(parts, "⏮")
		case StatusItemNext:
			parts = append(parts, "⏭")
		case StatusItemAddToFavorites:
			parts = append(parts, "♥")
		}
	}
	return strings.Join(parts, " ")
}

func playGlyph(state PlaybackState) string {
	switch state {
	case PlaybackPlaying:
		return "▶"
	case PlaybackPaused:
		return "⏸"
	case PlaybackStopped:
		return "⏹"
	default:
		return "∅"
	}
}

func trackText(track *TrackInfo) string {
	if track == nil {
		return ""
	}
	artists := strings.Join(track.Artists, ", ")
	switch {
	case artists != "" && track.Title != "":
		return artists + " – " + track.Title
	case track.Title != "":
		return track.Title
	default:
		return ""
	}
}
