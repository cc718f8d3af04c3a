// Package spotify implements the Spotify backend: auth coordination over the
// Web API, the media player contract, and link resolution.
package spotify

import (
	"regexp"
	"strings"
)

// Name identifies this backend in registries, callbacks and player states.
const Name = "Spotify"

// linkPrefix is the host-name prefix every supported Spotify link shares.
const linkPrefix = "https://open.spotify.com"

var (
	trackURLPattern = regexp.MustCompile(`(?:https?://)?open\.spotify\.com/track/([a-zA-Z0-9]+)`)
	trackURIPattern = regexp.MustCompile(`spotify:track:([a-zA-Z0-9]+)`)
)

// IsLinkSupported reports whether the URL looks like a Spotify link. It is a
// pure string match and performs no I/O.
func IsLinkSupported(url string) bool {
	return strings.HasPrefix(url, linkPrefix)
}

// ExtractTrackID pulls the track ID out of an open.spotify.com URL or a
// spotify:track: URI.
func ExtractTrackID(rawURL string) (string, bool) {
	rawURL = strings.TrimSpace(rawURL)

	if matches := trackURIPattern.FindStringSubmatch(rawURL); len(matches) > 1 {
		return matches[1], true
	}
	if matches := trackURLPattern.FindStringSubmatch(rawURL); len(matches) > 1 {
		return matches[1], true
	}
	return "", false
}
