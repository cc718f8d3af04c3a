// Package player provides the media backend contract and the multi-backend
// manager that decides which backend is currently "the" active one.
package player

import (
	"context"

	"tunelink/internal/core"
)

// MediaPlayer is the contract every streaming backend integration implements.
//
// Implementations must not let backend errors escape GetPlayerState: an
// unauthenticated or unreachable backend resolves to a Disconnected state
// instead. IsLinkSupported is a pure string match and performs no I/O.
type MediaPlayer interface {
	Name() string

	// IsEnabled reads the current configuration; the answer may change
	// between calls.
	IsEnabled() bool

	// IsLinkSupported reports whether this backend can play the URL.
	IsLinkSupported(url string) bool

	// OpenLink triggers playback of the resource on the backend's active
	// device. Authenticated failures surface a notification, never a
	// fatal error out of the facade.
	OpenLink(ctx context.Context, url string) error

	// PerformAction dispatches one transport command.
	PerformAction(ctx context.Context, action core.PlayerAction) error

	// GetPlayerState performs a silent authenticated query. Failure,
	// including "not logged in", resolves to Disconnected.
	GetPlayerState(ctx context.Context, query core.StateQuery) core.PlayerState

	// PerformAuthorization delegates to the backend's auth coordinator.
	PerformAuthorization(ctx context.Context, silent bool) error
}

// NopPlayer is a backend that supports nothing and is always disconnected.
// It keeps the manager's plumbing honest when no real backend is enabled.
type NopPlayer struct{}

func NewNopPlayer() *NopPlayer { return &NopPlayer{} }

func (p *NopPlayer) Name() string { return "No media player" }

func (p *NopPlayer) IsEnabled() bool { return false }

func (p *NopPlayer) IsLinkSupported(string) bool { return false }

func (p *NopPlayer) OpenLink(context.Context, string) error { return nil }

func (p *NopPlayer) PerformAction(context.Context, core.PlayerAction) error { return nil }

func (p *NopPlayer) GetPlayerState(context.Context, core.StateQuery) core.PlayerState {
	return core.PlayerState{State: core.PlaybackDisconnected, Source: p.Name()}
}

func (p *NopPlayer) PerformAuthorization(context.Context, bool) error { return nil }
