package songlink

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
)

// youtubeOEmbedURL is the YouTube oEmbed API endpoint.
const youtubeOEmbedURL = "https://www.youtube.com/oembed"

var youtubeVideoIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`)

// YouTube looks up YouTube and YouTube Music links.
type YouTube struct {
	client   *http.Client
	endpoint string
}

func NewYouTube() *YouTube {
	return &YouTube{
		client:   newHTTPClient(),
		endpoint: youtubeOEmbedURL,
	}
}

func (s *YouTube) Name() string { return "YouTube" }

func (s *YouTube) Matches(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}

	switch strings.ToLower(u.Hostname()) {
	case "youtube.com", "www.youtube.com", "m.youtube.com", "music.youtube.com", "youtu.be":
		return true
	}
	return false
}

func (s *YouTube) Lookup(ctx context.Context, rawURL string) (*Track, error) {
	videoID, err := extractYouTubeVideoID(rawURL)
	if err != nil {
		return nil, err
	}

	// The oEmbed lookup uses the canonical watch URL regardless of which
	// YouTube domain the link came from.
	videoURL := fmt.Sprintf("https://www.youtube.com/watch?v=%s", videoID)

	resp, err := fetchOEmbed(ctx, s.client, s.endpoint, videoURL)
	if err != nil {
		return nil, fmt.Errorf("youtube lookup failed: %w", err)
	}

	title, artist := splitYouTubeTitle(resp.Title, resp.AuthorName)
	return &Track{
		Service: s.Name(),
		URL:     videoURL,
		Title:   title,
		Artist:  artist,
	}, nil
}

func extractYouTubeVideoID(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}

	var videoID string
	switch strings.ToLower(u.Hostname()) {
	case "youtu.be":
		videoID = strings.TrimPrefix(u.Path, "/")
	default:
		videoID = u.Query().Get("v")
	}

	if !youtubeVideoIDPattern.MatchString(videoID) {
		return "", errors.New("no video ID in URL")
	}
	return videoID, nil
}

// splitYouTubeTitle separates "Artist - Title" style video titles. Channel
// names often carry a " - Topic" suffix on auto-generated music uploads.
func splitYouTubeTitle(title, channel string) (string, string) {
	if parts := strings.SplitN(title, " - ", 2); len(parts) == 2 {
		return strings.TrimSpace(parts[1]), strings.TrimSpace(parts[0])
	}

	artist := strings.TrimSpace(strings.TrimSuffix(channel, "- Topic"))
	return strings.TrimSpace(title), artist
}
