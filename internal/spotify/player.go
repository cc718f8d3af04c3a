package spotify

import (
	"context"
	"fmt"

	"github.com/zmb3/spotify/v2"
	"go.uber.org/zap"

	"tunelink/internal/core"
	"tunelink/internal/store"
)

// LinkHandler is the Spotify media player backend.
type LinkHandler struct {
	settings  *core.Settings
	auth      *AuthHandler
	notifier  core.Notifier
	logger    *zap.Logger
	favorites *store.Membership
}

func NewLinkHandler(settings *core.Settings, auth *AuthHandler, favorites *store.Membership, notifier core.Notifier, logger *zap.Logger) *LinkHandler {
	return &LinkHandler{
		settings:  settings,
		auth:      auth,
		notifier:  notifier,
		logger:    logger,
		favorites: favorites,
	}
}

func (h *LinkHandler) Name() string { return Name }

// IsEnabled reads the live configuration; the flag is never cached.
func (h *LinkHandler) IsEnabled() bool {
	return h.settings.Spotify().Enabled
}

func (h *LinkHandler) IsLinkSupported(url string) bool {
	return IsLinkSupported(url)
}

// PerformAuthorization delegates to the auth coordinator.
func (h *LinkHandler) PerformAuthorization(ctx context.Context, silent bool) error {
	_, err := h.auth.Authorize(ctx, silent)
	return err
}

// OpenLink starts playback of the linked track on the active device.
func (h *LinkHandler) OpenLink(ctx context.Context, rawURL string) error {
	trackID, ok := ExtractTrackID(rawURL)
	if !ok {
		return fmt.Errorf("no track ID found in %q", rawURL)
	}

	h.notifier.Notify("Recognized Spotify link: " + rawURL)

	_, err := WithAuth(ctx, h.auth, false,
		func(ctx context.Context, client *spotify.Client) (struct{}, error) {
			uri := spotify.URI("spotify:track:" + trackID)
			return struct{}{}, client.PlayOpt(ctx, &spotify.PlayOptions{URIs: []spotify.URI{uri}})
		},
		func(ctx context.Context) (struct{}, error) {
			return struct{}{}, nil
		})
	return err
}

// PerformAction dispatches one transport command.
func (h *LinkHandler) PerformAction(ctx context.Context, action core.PlayerAction) error {
	_, err := WithAuth(ctx, h.auth, false,
		func(ctx context.Context, client *spotify.Client) (struct{}, error) {
			return struct{}{}, h.dispatchAction(ctx, client, action)
		},
		func(ctx context.Context) (struct{}, error) {
			return struct{}{}, nil
		})
	return err
}

func (h *LinkHandler) dispatchAction(ctx context.Context, client *spotify.Client, action core.PlayerAction) error {
	switch action {
	case core.ActionPause:
		h.notifier.Notify("Pausing playback")
		return client.Pause(ctx)
	case core.ActionResume:
		h.notifier.Notify("Resuming playback")
		return client.Play(ctx)
	case core.ActionSkipToPrevious:
		h.notifier.Notify("Previous track")
		return client.Previous(ctx)
	case core.ActionSkipToNext:
		h.notifier.Notify("Next track")
		return client.Next(ctx)
	case core.ActionAddToFavorites:
		return h.addToFavorites(ctx, client)
	default:
		return fmt.Errorf("unsupported action %q", action)
	}
}

func (h *LinkHandler) addToFavorites(ctx context.Context, client *spotify.Client) error {
	current, err := client.PlayerCurrentlyPlaying(ctx)
	if err != nil {
		return err
	}
	if current == nil || current.Item == nil {
		h.notifier.Notify("Nothing is playing")
		return nil
	}

	trackID := current.Item.ID
	if h.favorites.Has(string(trackID)) {
		h.notifier.Notify(current.Item.Name + " is already in your favorites")
		return nil
	}

	if playlistID := h.settings.Spotify().FavoritesPlaylistID; playlistID != "" {
		if _, err := client.AddTracksToPlaylist(ctx, spotify.ID(playlistID), trackID); err != nil {
			return err
		}
	} else if err := client.AddTracksToLibrary(ctx, trackID); err != nil {
		return err
	}

	h.favorites.Add(string(trackID))
	h.notifier.Notify("Added " + current.Item.Name + " to favorites")
	return nil
}

// GetPlayerState performs a silent authenticated state query. Any failure,
// including "not logged in", resolves to Disconnected without surfacing UI.
func (h *LinkHandler) GetPlayerState(ctx context.Context, query core.StateQuery) core.PlayerState {
	state, _ := WithAuth(ctx, h.auth, true,
		func(ctx context.Context, client *spotify.Client) (core.PlayerState, error) {
			playerState, err := client.PlayerState(ctx)
			if err != nil {
				return core.PlayerState{}, err
			}

			result := core.PlayerState{
				State:  determinePlaybackState(playerState),
				Source: Name,
			}
			if playerState != nil && playerState.Item != nil && query.WantsTrack() {
				result.Track = h.trackInfo(ctx, client, playerState.Item, query.Track)
			}
			return result, nil
		},
		func(ctx context.Context) (core.PlayerState, error) {
			return core.PlayerState{State: core.PlaybackDisconnected, Source: Name}, nil
		})
	return state
}

// determinePlaybackState maps the API state onto the playback state enum.
// An authenticated query with no active device maps to Stopped, which is
// distinct from Disconnected.
func determinePlaybackState(state *spotify.PlayerState) core.PlaybackState {
	switch {
	case state == nil, state.Device.ID == "", state.Item == nil:
		return core.PlaybackStopped
	case state.Playing:
		return core.PlaybackPlaying
	default:
		return core.PlaybackPaused
	}
}

func (h *LinkHandler) trackInfo(ctx context.Context, client *spotify.Client, item *spotify.FullTrack, fields core.TrackFields) *core.TrackInfo {
	info := &core.TrackInfo{Source: Name}

	if fields.URL {
		info.URL = item.ExternalURLs["spotify"]
	}
	if fields.Title {
		info.Title = item.Name
	}
	if fields.Artists {
		for _, artist := range item.Artists {
			info.Artists = append(info.Artists, artist.Name)
		}
	}
	if fields.Album {
		info.Album = item.Album.Name
	}
	if fields.ReleaseDate {
		info.ReleaseDate = item.Album.ReleaseDate
	}
	if fields.Duration {
		info.DurationMS = item.Duration
	}
	if fields.InLibrary {
		// Library membership is a separate, costlier call; only issued on
		// request and answered from the membership cache when possible.
		inLibrary := h.isInLibrary(ctx, client, item.ID)
		info.InLibrary = &inLibrary
	}

	return info
}

func (h *LinkHandler) isInLibrary(ctx context.Context, client *spotify.Client, trackID spotify.ID) bool {
	if h.favorites.Has(string(trackID)) {
		return true
	}

	has, err := client.UserHasTracks(ctx, trackID)
	if err != nil || len(has) == 0 {
		h.logger.Debug("library membership check failed",
			zap.String("trackID", string(trackID)),
			zap.Error(err))
		return false
	}
	if has[0] {
		h.favorites.Add(string(trackID))
	}
	return has[0]
}
