package songlink

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newOEmbedServer(t *testing.T, title, author string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("format") != "json" {
			t.Errorf("format = %q, want json", r.URL.Query().Get("format"))
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"title": %q, "author_name": %q}`, title, author)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestYouTubeMatches(t *testing.T) {
	s := NewYouTube()
	tests := []struct {
		url  string
		want bool
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", true},
		{"https://youtu.be/dQw4w9WgXcQ", true},
		{"https://music.youtube.com/watch?v=dQw4w9WgXcQ", true},
		{"https://m.youtube.com/watch?v=dQw4w9WgXcQ", true},
		{"https://vimeo.com/12345", false},
		{"https://open.spotify.com/track/abc", false},
		{"not a url", false},
	}
	for _, tt := range tests {
		if got := s.Matches(tt.url); got != tt.want {
			t.Errorf("Matches(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}

func TestExtractYouTubeVideoID(t *testing.T) {
	tests := []struct {
		url    string
		wantID string
		wantOK bool
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"https://music.youtube.com/watch?v=dQw4w9WgXcQ&list=x", "dQw4w9WgXcQ", true},
		{"https://www.youtube.com/watch", "", false},
		{"https://youtu.be/short", "", false},
	}
	for _, tt := range tests {
		id, err := extractYouTubeVideoID(tt.url)
		if (err == nil) != tt.wantOK {
			t.Errorf("extractYouTubeVideoID(%q) err = %v, want ok=%v", tt.url, err, tt.wantOK)
			continue
		}
		if id != tt.wantID {
			t.Errorf("extractYouTubeVideoID(%q) = %q, want %q", tt.url, id, tt.wantID)
		}
	}
}

func TestYouTubeLookup(t *testing.T) {
	server := newOEmbedServer(t, "Rick Astley - Never Gonna Give You Up", "Rick Astley")
	s := NewYouTube()
	s.endpoint = server.URL

	track, err := s.Lookup(context.Background(), "https://youtu.be/dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("Lookup = %v", err)
	}
	if track.Title != "Never Gonna Give You Up" || track.Artist != "Rick Astley" {
		t.Errorf("track = %+v", track)
	}
	if track.Service != "YouTube" {
		t.Errorf("service = %q", track.Service)
	}
	if track.URL != "https://www.youtube.com/watch?v=dQw4w9WgXcQ" {
		t.Errorf("url = %q, want canonical watch URL", track.URL)
	}
}

func TestYouTubeLookupTopicChannelFallback(t *testing.T) {
	server := newOEmbedServer(t, "Never Gonna Give You Up", "Rick Astley - Topic")
	s := NewYouTube()
	s.endpoint = server.URL

	track, err := s.Lookup(context.Background(), "https://youtu.be/dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("Lookup = %v", err)
	}
	if track.Title != "Never Gonna Give You Up" || track.Artist != "Rick Astley" {
		t.Errorf("track = %+v", track)
	}
}

func TestSoundCloudLookup(t *testing.T) {
	tests := []struct {
		name       string
		title      string
		author     string
		wantTitle  string
		wantArtist string
	}{
		{
			name:       "title with by separator",
			title:      "Some Track by Some Artist",
			author:     "uploader",
			wantTitle:  "Some Track",
			wantArtist: "Some Artist",
		},
		{
			name:       "author fallback",
			title:      "Some Track",
			author:     "Some Artist",
			wantTitle:  "Some Track",
			wantArtist: "Some Artist",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newOEmbedServer(t, tt.title, tt.author)
			s := NewSoundCloud()
			s.endpoint = server.URL

			track, err := s.Lookup(context.Background(), "https://soundcloud.com/artist/track")
			if err != nil {
				t.Fatalf("Lookup = %v", err)
			}
			if track.Title != tt.wantTitle || track.Artist != tt.wantArtist {
				t.Errorf("track = %+v, want title %q artist %q", track, tt.wantTitle, tt.wantArtist)
			}
		})
	}
}

func TestLookupErrorOnBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	t.Cleanup(server.Close)

	s := NewSoundCloud()
	s.endpoint = server.URL
	if _, err := s.Lookup(context.Background(), "https://soundcloud.com/artist/track"); err == nil {
		t.Error("Lookup = nil error on 403 response")
	}
}

func TestRegistryRouting(t *testing.T) {
	r := DefaultRegistry()

	if !r.Matches("https://youtu.be/dQw4w9WgXcQ") {
		t.Error("registry does not match a YouTube link")
	}
	if !r.Matches("https://soundcloud.com/artist/track") {
		t.Error("registry does not match a SoundCloud link")
	}
	if r.Matches("https://open.spotify.com/track/abc") {
		t.Error("registry matched a Spotify link")
	}

	track, err := r.Lookup(context.Background(), "https://example.com/video")
	if err != nil {
		t.Errorf("Lookup = %v for unrecognized URL", err)
	}
	if track != nil {
		t.Errorf("track = %+v for unrecognized URL, want nil", track)
	}
}
