package spotify

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"os/exec"
	"runtime"
	"strings"
	"sync"

	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"go.uber.org/zap"

	"tunelink/internal/auth"
	"tunelink/internal/core"
)

// callbackTarget is the discriminator this backend recognizes in redirect
// callback parameters.
const callbackTarget = "spotify"

// authState is the OAuth state parameter for the authorization-code flow.
const authState = "tunelink-auth-state"

var (
	// ErrNotAuthenticated is the expected steady state when no credential
	// is cached; it is not surfaced to the user.
	ErrNotAuthenticated = errors.New("spotify: not authenticated")

	// ErrAuthorizationPending means an interactive login was started in the
	// browser; the current operation fails and succeeds after the redirect
	// callback completes the flow.
	ErrAuthorizationPending = errors.New("spotify: authorization pending, complete the login in your browser")
)

// AuthHandler is the Spotify authentication coordinator. It implements
// auth.Strategy[*spotify.Client] for the retry primitive and
// auth.Coordinator for the registry.
type AuthHandler struct {
	settings *core.Settings
	tokens   *auth.TokenStore
	notifier core.Notifier
	logger   *zap.Logger
	flow     *auth.Flow[*spotify.Client]

	// openBrowser launches the interactive login; swapped out in tests.
	openBrowser func(url string) error

	mu            sync.Mutex
	authenticator *spotifyauth.Authenticator
	client        *spotify.Client
}

func NewAuthHandler(settings *core.Settings, tokens *auth.TokenStore, notifier core.Notifier, logger *zap.Logger) *AuthHandler {
	h := &AuthHandler{
		settings:    settings,
		tokens:      tokens,
		notifier:    notifier,
		logger:      logger,
		openBrowser: openSystemBrowser,
	}
	h.flow = &auth.Flow[*spotify.Client]{
		Strategy: h,
		Notifier: notifier,
		Logger:   logger,
	}
	return h
}

func (h *AuthHandler) Name() string { return Name }

// HasCredential reports whether a persisted token exists. No network I/O.
func (h *AuthHandler) HasCredential() bool {
	return h.tokens.Has()
}

// Authorize ensures a usable API client. The client is constructed lazily
// on first use from the persisted token. Non-silent authorization performs a
// lightweight current-user round trip to force an interactive login when no
// valid session exists; silent authorization skips it, so the caller only
// discovers failure when the wrapped operation fails.
func (h *AuthHandler) Authorize(ctx context.Context, silent bool) (*spotify.Client, error) {
	client, err := h.ensureClient(ctx, silent)
	if err != nil {
		return nil, err
	}

	if !silent {
		if _, err := client.CurrentUser(ctx); err != nil {
			if h.CredentialRejected(err) {
				h.Invalidate()
				return nil, h.beginInteractiveLogin()
			}
			return nil, err
		}
	}

	return client, nil
}

func (h *AuthHandler) ensureClient(ctx context.Context, silent bool) (*spotify.Client, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.client != nil {
		return h.client, nil
	}

	token, err := h.tokens.Load()
	if err != nil {
		if silent {
			return nil, ErrNotAuthenticated
		}
		return nil, h.beginInteractiveLoginLocked()
	}

	h.client = spotify.New(h.authenticatorLocked().Client(ctx, token))
	return h.client, nil
}

func (h *AuthHandler) authenticatorLocked() *spotifyauth.Authenticator {
	if h.authenticator == nil {
		cfg := h.settings.Spotify()
		h.authenticator = spotifyauth.New(
			spotifyauth.WithRedirectURL(cfg.RedirectURL),
			spotifyauth.WithScopes(
				// Pausing, resuming and skipping.
				spotifyauth.ScopeUserModifyPlaybackState,
				// Determining the currently playing track.
				spotifyauth.ScopeUserReadPlaybackState,
				// Reading and writing the favorite tracks.
				spotifyauth.ScopeUserLibraryRead,
				spotifyauth.ScopeUserLibraryModify,
				spotifyauth.ScopePlaylistModifyPublic,
				spotifyauth.ScopePlaylistModifyPrivate,
			),
			spotifyauth.WithClientID(cfg.ClientID),
			spotifyauth.WithClientSecret(cfg.ClientSecret),
		)
	}
	return h.authenticator
}

func (h *AuthHandler) beginInteractiveLogin() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.beginInteractiveLoginLocked()
}

// beginInteractiveLoginLocked opens the system browser on the authorization
// URL and reports the flow as pending. The exchanged credential arrives
// out-of-process through ReceiveAuthFlow.
func (h *AuthHandler) beginInteractiveLoginLocked() error {
	authURL := h.authenticatorLocked().AuthURL(authState)
	h.notifier.Notify("Spotify: complete the sign-in in your browser")
	if err := h.openBrowser(authURL); err != nil {
		h.logger.Warn("could not open browser for login", zap.Error(err))
		h.notifier.Notify("Spotify: open this URL to sign in: " + authURL)
	}
	return ErrAuthorizationPending
}

// Invalidate forces a logout of the session object and removes the cached
// credential, so a permanently expired token is never retried forever.
func (h *AuthHandler) Invalidate() {
	h.mu.Lock()
	h.client = nil
	h.mu.Unlock()

	if err := h.tokens.Clear(); err != nil {
		h.logger.Warn("failed to clear persisted token", zap.Error(err))
	}
}

// CredentialRejected recognizes the backend's "credential rejected by
// server" signature: an API error with HTTP 401, with a message-substring
// fallback for errors the client did not decode.
func (h *AuthHandler) CredentialRejected(err error) bool {
	if err == nil {
		return false
	}

	var apiErr spotify.Error
	if errors.As(err, &apiErr) {
		return apiErr.Status == http.StatusUnauthorized
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "expired token") || strings.Contains(msg, "token expired")
}

// ReceiveAuthFlow completes an interactive login: it recognizes its own
// callbacks via the target discriminator, exchanges the authorization code
// for a token and persists it with its computed expiry.
func (h *AuthHandler) ReceiveAuthFlow(ctx context.Context, params url.Values) {
	if params.Get("target") != callbackTarget {
		return
	}

	if state := params.Get("state"); state != "" && state != authState {
		h.logger.Warn("auth flow state mismatch, ignoring callback")
		return
	}

	code := params.Get("code")
	if code == "" {
		h.logger.Warn("auth flow callback without code",
			zap.String("error", params.Get("error")))
		return
	}

	h.mu.Lock()
	authenticator := h.authenticatorLocked()
	h.mu.Unlock()

	token, err := authenticator.Exchange(ctx, code)
	if err != nil {
		h.logger.Error("code exchange failed", zap.Error(err))
		h.notifier.Notify("Spotify: sign-in failed: " + err.Error())
		return
	}

	if err := h.tokens.Save(token); err != nil {
		h.logger.Warn("failed to persist token", zap.Error(err))
	}

	h.mu.Lock()
	h.client = spotify.New(authenticator.Client(ctx, token))
	h.mu.Unlock()

	h.notifier.Notify("Spotify: successfully authenticated")
}

// LogOut removes the persisted credential entirely.
func (h *AuthHandler) LogOut() error {
	h.mu.Lock()
	h.client = nil
	h.mu.Unlock()
	return h.tokens.Clear()
}

// WithAuth runs fn with a valid session via the auth retry primitive.
func WithAuth[T any](
	ctx context.Context,
	h *AuthHandler,
	silent bool,
	onAuthenticated func(ctx context.Context, client *spotify.Client) (T, error),
	onFailure func(ctx context.Context) (T, error),
) (T, error) {
	return auth.Run(ctx, h.flow, silent, onAuthenticated, onFailure)
}

// openSystemBrowser opens the default browser on the given URL.
func openSystemBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}
