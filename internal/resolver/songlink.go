package resolver

import (
	"context"

	"go.uber.org/zap"

	"tunelink/internal/core"
	"tunelink/pkg/songlink"
)

// SonglinkResolver adapts the songlink registry to the LinkResolver contract,
// so links from services without a player backend still resolve to metadata.
type SonglinkResolver struct {
	registry *songlink.Registry
	logger   *zap.Logger
}

func NewSonglinkResolver(registry *songlink.Registry, logger *zap.Logger) *SonglinkResolver {
	return &SonglinkResolver{
		registry: registry,
		logger:   logger,
	}
}

func (r *SonglinkResolver) ResolveLink(ctx context.Context, url string) (*LinkInfo, error) {
	if !r.registry.Matches(url) {
		return nil, nil
	}

	track, err := r.registry.Lookup(ctx, url)
	if err != nil {
		// Lookup failures are not cached upstream, so the next attempt
		// retries the service.
		r.logger.Debug("songlink lookup failed", zap.String("url", url), zap.Error(err))
		return nil, err
	}
	if track == nil {
		return nil, nil
	}

	info := &LinkInfo{
		Type: "track",
		TrackInfo: core.TrackInfo{
			Source: track.Service,
			URL:    track.URL,
			Title:  track.Title,
		},
	}
	if track.Artist != "" {
		info.Artists = []string{track.Artist}
	}
	return info, nil
}
