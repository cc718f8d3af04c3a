package songlink

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// soundcloudOEmbedURL is the SoundCloud oEmbed API endpoint.
const soundcloudOEmbedURL = "https://soundcloud.com/oembed"

// SoundCloud looks up SoundCloud track links.
type SoundCloud struct {
	client   *http.Client
	endpoint string
}

func NewSoundCloud() *SoundCloud {
	return &SoundCloud{
		client:   newHTTPClient(),
		endpoint: soundcloudOEmbedURL,
	}
}

func (s *SoundCloud) Name() string { return "SoundCloud" }

func (s *SoundCloud) Matches(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}

	switch strings.ToLower(u.Hostname()) {
	case "soundcloud.com", "www.soundcloud.com", "m.soundcloud.com", "on.soundcloud.com":
		return true
	}
	return false
}

func (s *SoundCloud) Lookup(ctx context.Context, rawURL string) (*Track, error) {
	resp, err := fetchOEmbed(ctx, s.client, s.endpoint, rawURL)
	if err != nil {
		return nil, fmt.Errorf("soundcloud lookup failed: %w", err)
	}

	title, artist := splitSoundCloudTitle(resp)
	return &Track{
		Service: s.Name(),
		URL:     rawURL,
		Title:   title,
		Artist:  artist,
	}, nil
}

// splitSoundCloudTitle separates the "Track Title by Artist" format
// SoundCloud uses in oEmbed titles.
func splitSoundCloudTitle(resp *oembedResponse) (string, string) {
	if parts := strings.SplitN(resp.Title, " by ", 2); len(parts) == 2 {
		return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	}
	return strings.TrimSpace(resp.Title), strings.TrimSpace(resp.AuthorName)
}
