package spotify

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"tunelink/internal/core"
)

func TestResolverSkipsWhenDisabled(t *testing.T) {
	h, _ := newTestAuthHandler(t)
	cfg := core.DefaultConfig()
	settings := core.NewSettings(cfg)
	r := NewResolver(settings, h, zap.NewNop())

	info, err := r.ResolveLink(context.Background(), "https://open.spotify.com/track/abc123")
	if err != nil {
		t.Fatalf("ResolveLink = %v", err)
	}
	if info != nil {
		t.Errorf("info = %v for a disabled backend, want nil", info)
	}
}

func TestResolverIgnoresUnrecognizedLinks(t *testing.T) {
	h, notifier := newTestAuthHandler(t)
	r := NewResolver(h.settings, h, zap.NewNop())

	for _, url := range []string{
		"https://example.com/video",
		"https://open.spotify.com/album/abc123",
		"",
	} {
		info, err := r.ResolveLink(context.Background(), url)
		if err != nil {
			t.Errorf("ResolveLink(%q) = %v", url, err)
		}
		if info != nil {
			t.Errorf("ResolveLink(%q) = %v, want nil", url, info)
		}
	}
	if len(notifier.messages) != 0 {
		t.Errorf("resolution notified %v", notifier.messages)
	}
}

func TestResolverStaysSilentWithoutCredential(t *testing.T) {
	h, notifier := newTestAuthHandler(t)
	r := NewResolver(h.settings, h, zap.NewNop())

	// Recognized link, enabled backend, but no cached credential: resolution
	// must fall through to nil without opening a login.
	info, err := r.ResolveLink(context.Background(), "https://open.spotify.com/track/abc123")
	if err != nil {
		t.Fatalf("ResolveLink = %v", err)
	}
	if info != nil {
		t.Errorf("info = %v, want nil", info)
	}
	if len(notifier.messages) != 0 {
		t.Errorf("silent resolution notified %v", notifier.messages)
	}
}
