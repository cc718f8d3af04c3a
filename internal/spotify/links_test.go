package spotify

import "testing"

func TestIsLinkSupported(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://open.spotify.com/track/abc123", true},
		{"https://open.spotify.com/album/xyz?si=share", true},
		{"https://open.spotify.com", true},
		{"http://open.spotify.com/track/abc123", false},
		{"https://example.com/video", false},
		{"spotify:track:abc123", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsLinkSupported(tt.url); got != tt.want {
			t.Errorf("IsLinkSupported(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}

func TestExtractTrackID(t *testing.T) {
	tests := []struct {
		name   string
		url    string
		wantID string
		wantOK bool
	}{
		{
			name:   "plain track url",
			url:    "https://open.spotify.com/track/4uLU6hMCjMI75M1A2tKUQC",
			wantID: "4uLU6hMCjMI75M1A2tKUQC",
			wantOK: true,
		},
		{
			name:   "track url with query",
			url:    "https://open.spotify.com/track/abc123?si=xyz",
			wantID: "abc123",
			wantOK: true,
		},
		{
			name:   "no scheme",
			url:    "open.spotify.com/track/abc123",
			wantID: "abc123",
			wantOK: true,
		},
		{
			name:   "spotify uri",
			url:    "spotify:track:abc123",
			wantID: "abc123",
			wantOK: true,
		},
		{
			name:   "surrounding whitespace",
			url:    "  https://open.spotify.com/track/abc123  ",
			wantID: "abc123",
			wantOK: true,
		},
		{
			name: "album url",
			url:  "https://open.spotify.com/album/abc123",
		},
		{
			name: "unrelated url",
			url:  "https://example.com/video",
		},
		{
			name: "empty",
			url:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := ExtractTrackID(tt.url)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if id != tt.wantID {
				t.Errorf("id = %q, want %q", id, tt.wantID)
			}
		})
	}
}
