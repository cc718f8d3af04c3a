package core

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
)

type staticStateSource struct {
	state   PlayerState
	queries chan StateQuery
}

func (s *staticStateSource) GetPlayerState(_ context.Context, query StateQuery) PlayerState {
	select {
	case s.queries <- query:
	default:
	}
	return s.state
}

type countingRecorder struct {
	states chan PlaybackState
}

func (r *countingRecorder) RecordPoll(state PlaybackState) {
	select {
	case r.states <- state:
	default:
	}
}

func TestMonitorPollsAndRecords(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Player.PollInterval = 5 * time.Millisecond
	settings := NewSettings(cfg)

	source := &staticStateSource{
		state:   PlayerState{State: PlaybackPlaying, Source: "Spotify", Track: &TrackInfo{Title: "Song"}},
		queries: make(chan StateQuery, 1),
	}
	recorder := &countingRecorder{states: make(chan PlaybackState, 1)}
	monitor := NewPlayerMonitor(source, settings, recorder, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = monitor.Run(ctx)
	}()

	select {
	case query := <-source.queries:
		// The default layout shows the track, so title and artists are
		// requested on every poll.
		if !query.Track.Title || !query.Track.Artists {
			t.Errorf("poll query = %+v, want title and artists", query)
		}
	case <-time.After(time.Second):
		t.Fatal("monitor never polled")
	}

	select {
	case state := <-recorder.states:
		if state != PlaybackPlaying {
			t.Errorf("recorded state = %q, want %q", state, PlaybackPlaying)
		}
	case <-time.After(time.Second):
		t.Fatal("monitor never recorded a poll")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("monitor did not stop on cancellation")
	}

	if got := monitor.LastState().State; got != PlaybackPlaying {
		t.Errorf("LastState = %q, want %q", got, PlaybackPlaying)
	}
}

func TestQueryForLayout(t *testing.T) {
	tests := []struct {
		name string
		cfg  PlayerConfig
		want TrackFields
	}{
		{
			name: "text item requests track fields",
			cfg:  PlayerConfig{StatusBar: []string{"play", "text"}, ShowTrackInStatusBar: true},
			want: TrackFields{Title: true, Artists: true},
		},
		{
			name: "track display disabled",
			cfg:  PlayerConfig{StatusBar: []string{"play", "text"}, ShowTrackInStatusBar: false},
			want: TrackFields{},
		},
		{
			name: "no text item",
			cfg:  PlayerConfig{StatusBar: []string{"play", "next"}, ShowTrackInStatusBar: true},
			want: TrackFields{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := queryForLayout(tt.cfg); got.Track != tt.want {
				t.Errorf("queryForLayout = %+v, want %+v", got.Track, tt.want)
			}
		})
	}
}

func TestFormatStatusLine(t *testing.T) {
	layout := []StatusItem{StatusItemPrevious, StatusItemPlay, StatusItemNext, StatusItemText}

	tests := []struct {
		name  string
		state PlayerState
		want  string
	}{
		{
			name: "playing with track",
			state: PlayerState{
				State: PlaybackPlaying,
				Track: &TrackInfo{Title: "Song", Artists: []string{"A", "B"}},
			},
			want: "⏮ ▶ ⏭ A, B – Song",
		},
		{
			name:  "paused without track",
			state: PlayerState{State: PlaybackPaused},
			want:  "⏮ ⏸ ⏭",
		},
		{
			name:  "stopped",
			state: PlayerState{State: PlaybackStopped},
			want:  "⏮ ⏹ ⏭",
		},
		{
			name:  "disconnected",
			state: PlayerState{State: PlaybackDisconnected},
			want:  "⏮ ∅ ⏭",
		},
		{
			name: "title only",
			state: PlayerState{
				State: PlaybackPlaying,
				Track: &TrackInfo{Title: "Song"},
			},
			want: "⏮ ▶ ⏭ Song",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatStatusLine(layout, tt.state); got != tt.want {
				t.Errorf("FormatStatusLine = %q, want %q", got, tt.want)
			}
		})
	}
}
