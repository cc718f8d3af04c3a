// Package resolver turns arbitrary URLs into human-readable track metadata
// by composing per-backend resolvers behind a memoizing cache.
package resolver

import (
	"context"

	"tunelink/internal/core"
)

// LinkInfo is the resolved metadata for a recognized link.
type LinkInfo struct {
	core.TrackInfo
	Type string `json:"type"`
}

// LinkResolver resolves a URL into track metadata. A nil result with a nil
// error means the URL was not recognized or could not be resolved; resolution
// always runs in silent auth mode, so an auth failure also yields nil.
// Resolution has no observable side effects beyond network I/O.
type LinkResolver interface {
	ResolveLink(ctx context.Context, url string) (*LinkInfo, error)
}

// NopResolver recognizes nothing.
type NopResolver struct{}

func (NopResolver) ResolveLink(context.Context, string) (*LinkInfo, error) {
	return nil, nil
}

// Multi tries each resolver in order and returns the first non-nil result.
// Order only matters when multiple backends recognize overlapping URL
// shapes, but the contract is order-deterministic either way.
type Multi struct {
	resolvers []LinkResolver
}

func NewMulti(resolvers ...LinkResolver) *Multi {
	return &Multi{resolvers: resolvers}
}

func (m *Multi) ResolveLink(ctx context.Context, url string) (*LinkInfo, error) {
	for _, r := range m.resolvers {
		info, err := r.ResolveLink(ctx, url)
		if err != nil {
			return nil, err
		}
		if info != nil {
			return info, nil
		}
	}
	return nil, nil
}
