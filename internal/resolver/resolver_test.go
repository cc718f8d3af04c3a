package resolver

import (
	"context"
	"errors"
	"testing"
)

type staticResolver struct {
	info  *LinkInfo
	err   error
	calls int
}

func (r *staticResolver) ResolveLink(context.Context, string) (*LinkInfo, error) {
	r.calls++
	return r.info, r.err
}

func TestMultiFirstMatchWins(t *testing.T) {
	first := &staticResolver{info: &LinkInfo{Type: "track"}}
	second := &staticResolver{info: &LinkInfo{Type: "album"}}
	m := NewMulti(&staticResolver{}, first, second)

	info, err := m.ResolveLink(context.Background(), "https://open.spotify.com/track/a")
	if err != nil {
		t.Fatalf("ResolveLink = %v", err)
	}
	if info != first.info {
		t.Errorf("info = %v, want first resolver's result", info)
	}
	if second.calls != 0 {
		t.Errorf("second resolver called %d times, want 0", second.calls)
	}
}

func TestMultiAllUnrecognized(t *testing.T) {
	m := NewMulti(&staticResolver{}, &staticResolver{})

	info, err := m.ResolveLink(context.Background(), "https://example.com/video")
	if err != nil {
		t.Fatalf("ResolveLink = %v", err)
	}
	if info != nil {
		t.Errorf("info = %v, want nil", info)
	}
}

func TestMultiPropagatesError(t *testing.T) {
	wantErr := errors.New("backend unreachable")
	m := NewMulti(&staticResolver{err: wantErr}, &staticResolver{info: &LinkInfo{}})

	_, err := m.ResolveLink(context.Background(), "https://open.spotify.com/track/a")
	if !errors.Is(err, wantErr) {
		t.Errorf("err = %v, want %v", err, wantErr)
	}
}
