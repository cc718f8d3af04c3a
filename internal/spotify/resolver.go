package spotify

import (
	"context"

	"github.com/zmb3/spotify/v2"
	"go.uber.org/zap"

	"tunelink/internal/core"
	"tunelink/internal/resolver"
)

// Resolver resolves open.spotify.com track links into full metadata.
// Resolution always runs silently: a link hover must never trigger a login.
type Resolver struct {
	settings *core.Settings
	auth     *AuthHandler
	logger   *zap.Logger
}

func NewResolver(settings *core.Settings, auth *AuthHandler, logger *zap.Logger) *Resolver {
	return &Resolver{
		settings: settings,
		auth:     auth,
		logger:   logger,
	}
}

func (r *Resolver) ResolveLink(ctx context.Context, url string) (*resolver.LinkInfo, error) {
	if !r.settings.Spotify().Enabled {
		return nil, nil
	}

	trackID, ok := ExtractTrackID(url)
	if !ok {
		return nil, nil
	}

	return WithAuth(ctx, r.auth, true,
		func(ctx context.Context, client *spotify.Client) (*resolver.LinkInfo, error) {
			track, err := client.GetTrack(ctx, spotify.ID(trackID))
			if err != nil {
				return nil, err
			}

			artists := make([]string, 0, len(track.Artists))
			for _, artist := range track.Artists {
				artists = append(artists, artist.Name)
			}

			return &resolver.LinkInfo{
				Type: "track",
				TrackInfo: core.TrackInfo{
					Source:      Name,
					URL:         track.ExternalURLs["spotify"],
					Title:       track.Name,
					Artists:     artists,
					Album:       track.Album.Name,
					ReleaseDate: track.Album.ReleaseDate,
					DurationMS:  track.Duration,
				},
			}, nil
		},
		func(ctx context.Context) (*resolver.LinkInfo, error) {
			return nil, nil
		})
}
