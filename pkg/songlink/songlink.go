// Package songlink recognizes track links from public streaming services and
// looks up their metadata through the services' oEmbed endpoints. It needs no
// credentials and is usable outside tunelink.
package songlink

import (
	"context"
	"errors"
	"net/http"
	"time"
)

const (
	// requestTimeout bounds every oEmbed lookup.
	requestTimeout = 10 * time.Second
	// maxRedirects caps redirect chains on short-link domains.
	maxRedirects = 3
)

// ErrTooManyRedirects is returned when a short link redirects more than
// maxRedirects times.
var ErrTooManyRedirects = errors.New("too many redirects")

// Track is the metadata a service lookup yields.
type Track struct {
	Service string
	URL     string
	Title   string
	Artist  string
}

// Service recognizes and looks up links of one streaming service.
type Service interface {
	// Name identifies the service in resolved track metadata.
	Name() string

	// Matches reports whether the URL belongs to this service. It is a
	// pure string match and performs no I/O.
	Matches(url string) bool

	// Lookup fetches the track metadata for a matching URL.
	Lookup(ctx context.Context, url string) (*Track, error)
}

// Registry routes a URL to the first service that matches it.
type Registry struct {
	services []Service
}

func NewRegistry(services ...Service) *Registry {
	return &Registry{services: services}
}

// DefaultRegistry returns a registry with all built-in services.
func DefaultRegistry() *Registry {
	return NewRegistry(
		NewYouTube(),
		NewSoundCloud(),
	)
}

// Matches reports whether any registered service recognizes the URL.
func (r *Registry) Matches(url string) bool {
	for _, s := range r.services {
		if s.Matches(url) {
			return true
		}
	}
	return false
}

// Lookup resolves the URL through the matching service. A nil track with a
// nil error means no service recognized the URL.
func (r *Registry) Lookup(ctx context.Context, url string) (*Track, error) {
	for _, s := range r.services {
		if s.Matches(url) {
			return s.Lookup(ctx, url)
		}
	}
	return nil, nil
}

func newHTTPClient() *http.Client {
	return &http.Client{
		Timeout: requestTimeout,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return ErrTooManyRedirects
			}
			return nil
		},
	}
}
