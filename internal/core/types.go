// Package core holds the shared domain types and configuration for tunelink.
package core

import (
	"fmt"

	"go.uber.org/zap"
)

// PlaybackState describes the observable state of a media backend.
type PlaybackState string

const (
	// PlaybackDisconnected means the backend is unreachable or not authenticated.
	PlaybackDisconnected PlaybackState = "disconnected"
	// PlaybackPlaying means a track is actively playing.
	PlaybackPlaying PlaybackState = "playing"
	// PlaybackPaused means a track is loaded but paused.
	PlaybackPaused PlaybackState = "paused"
	// PlaybackStopped means the backend is reachable and authenticated but has
	// no active playback device. Distinct from Disconnected; never conflated.
	PlaybackStopped PlaybackState = "stopped"
)

// PlayerAction is a stateless transport command. Success or failure is not
// returned as a value; side effects are observed via the next state poll.
type PlayerAction string

const (
	ActionPause          PlayerAction = "pause"
	ActionResume         PlayerAction = "resume"
	ActionSkipToPrevious PlayerAction = "previous"
	ActionSkipToNext     PlayerAction = "next"
	ActionAddToFavorites PlayerAction = "add-to-favorites"
)

// ParseAction converts a wire-level action name into a PlayerAction.
func ParseAction(s string) (PlayerAction, error) {
	switch PlayerAction(s) {
	case ActionPause, ActionResume, ActionSkipToPrevious, ActionSkipToNext, ActionAddToFavorites:
		return PlayerAction(s), nil
	}
	return "", fmt.Errorf("unknown player action %q", s)
}

// TrackInfo carries track metadata. All fields are independently optional;
// callers request only the subset they need via TrackFields.
type TrackInfo struct {
	Source      string   `json:"source,omitempty"`
	URL         string   `json:"url,omitempty"`
	Title       string   `json:"title,omitempty"`
	Artists     []string `json:"artists,omitempty"`
	Album       string   `json:"album,omitempty"`
	ReleaseDate string   `json:"release_date,omitempty"`
	DurationMS  int      `json:"duration_ms,omitempty"`
	InLibrary   *bool    `json:"is_in_library,omitempty"`
}

// PlayerState is recomputed on every poll and on every user action.
// It is never persisted.
type PlayerState struct {
	State  PlaybackState `json:"state"`
	Source string        `json:"source,omitempty"`
	Track  *TrackInfo    `json:"track,omitempty"`
}

// TrackFields selects which TrackInfo fields a state query should populate,
// so backends can skip costlier metadata calls when they are not needed.
type TrackFields struct {
	URL         bool
	Title       bool
	Artists     bool
	Album       bool
	ReleaseDate bool
	Duration    bool
	InLibrary   bool
}

// StateQuery is the field selector passed to GetPlayerState. It mirrors the
// shape of PlayerState; the playback state itself is always included.
type StateQuery struct {
	Track TrackFields
}

// WantsTrack reports whether any track field was requested at all.
func (q StateQuery) WantsTrack() bool {
	t := q.Track
	return t.URL || t.Title || t.Artists || t.Album || t.ReleaseDate || t.Duration || t.InLibrary
}

// Notifier is the user-visible notification surface. Backend errors are
// converted into notifications at the service boundary instead of
// propagating out of the facade.
type Notifier interface {
	Notify(message string)
}

// LogNotifier routes notifications to the structured log. It stands in for
// the host shell's notification UI when tunelink runs headless.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(message string) {
	n.logger.Info("notice", zap.String("message", message))
}
