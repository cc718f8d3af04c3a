// Package http exposes tunelink to the host shell: player state and
// actions, link resolution, the OAuth redirect callback, health checks and
// Prometheus metrics.
package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"tunelink/internal/core"
	"tunelink/internal/resolver"
)

// detachedTimeout bounds fire-and-forget player operations whose trigger
// does not await completion.
const detachedTimeout = 30 * time.Second

// PlayerService is the player facade the server exposes.
type PlayerService interface {
	PlayerNames() []string
	ActiveName() string
	SelectPlayer(name string) error
	IsLinkSupported(url string) bool
	OpenLink(ctx context.Context, url string) error
	PerformAction(ctx context.Context, action core.PlayerAction) error
	GetPlayerState(ctx context.Context, query core.StateQuery) core.PlayerState
}

// AuthReceiver accepts inbound OAuth redirect callbacks and removes
// persisted credentials on request.
type AuthReceiver interface {
	ReceiveAuthFlow(ctx context.Context, params url.Values)
	LogOut(name string) error
}

// LinkResolverCache is the caching resolver chain.
type LinkResolverCache interface {
	ResolveLink(ctx context.Context, url string) (*resolver.LinkInfo, error)
	Size() int
}

type Server struct {
	config   core.ServerConfig
	logger   *zap.Logger
	player   PlayerService
	auth     AuthReceiver
	resolver LinkResolverCache
	server   *http.Server
	metrics  *Metrics
}

type Metrics struct {
	PollsTotal     *prometheus.CounterVec
	ActionsTotal   *prometheus.CounterVec
	ResolvesTotal  *prometheus.CounterVec
	AuthCallbacks  prometheus.Counter
	ResolverCached prometheus.Gauge
}

func newMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		PollsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tunelink_polls_total",
				Help: "Total number of player state polls by reported state",
			},
			[]string{"state"},
		),
		ActionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tunelink_actions_total",
				Help: "Total number of player actions dispatched",
			},
			[]string{"action"},
		),
		ResolvesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tunelink_resolves_total",
				Help: "Total number of link resolutions by outcome",
			},
			[]string{"outcome"},
		),
		AuthCallbacks: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "tunelink_auth_callbacks_total",
				Help: "Total number of OAuth redirect callbacks received",
			},
		),
		ResolverCached: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "tunelink_resolver_cache_entries",
				Help: "Number of memoized link resolutions",
			},
		),
	}

	reg.MustRegister(
		m.PollsTotal,
		m.ActionsTotal,
		m.ResolvesTotal,
		m.AuthCallbacks,
		m.ResolverCached,
	)

	return m
}

func NewServer(config core.ServerConfig, player PlayerService, auth AuthReceiver, linkResolver LinkResolverCache, logger *zap.Logger) *Server {
	registry := prometheus.NewRegistry()
	s := &Server{
		config:   config,
		logger:   logger,
		player:   player,
		auth:     auth,
		resolver: linkResolver,
		metrics:  newMetrics(registry),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleHealth)
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/callback", s.handleCallback)
	mux.HandleFunc("/auth/logout", s.handleLogout)
	mux.HandleFunc("/player/state", s.handlePlayerState)
	mux.HandleFunc("/player/action", s.handlePlayerAction)
	mux.HandleFunc("/player/open", s.handlePlayerOpen)
	mux.HandleFunc("/player/select", s.handlePlayerSelect)
	mux.HandleFunc("/players", s.handlePlayers)
	mux.HandleFunc("/resolve", s.handleResolve)

	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler:      mux,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	}

	return s
}

func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.server.Addr))

	go func() {
		<-ctx.Done()
		s.logger.Info("shutting down HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.server.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("failed to shutdown HTTP server gracefully", zap.Error(err))
		}
	}()

	if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("HTTP server failed: %w", err)
	}
	return nil
}

// RecordPoll exports one poll result; called by the status monitor.
func (s *Server) RecordPoll(state core.PlaybackState) {
	s.metrics.PollsTotal.WithLabelValues(string(state)).Inc()
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "tunelink"})
}

// handleCallback routes the OAuth redirect into the auth coordinator
// registry. Each coordinator recognizes its own target and ignores the rest.
func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	s.metrics.AuthCallbacks.Inc()

	params := r.URL.Query()
	if params.Get("target") == "" {
		// Spotify redirects without a target parameter; the redirect URL
		// itself is backend-specific, so default it.
		params.Set("target", "spotify")
	}
	s.auth.ReceiveAuthFlow(r.Context(), params)

	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, `<!DOCTYPE html>
<html>
<body>
	<p>Sign-in received. You can close this window.</p>
</body>
</html>`)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	name := r.URL.Query().Get("name")
	if name == "" {
		http.Error(w, "missing name parameter", http.StatusBadRequest)
		return
	}
	if err := s.auth.LogOut(name); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePlayerState(w http.ResponseWriter, r *http.Request) {
	query := parseStateQuery(r.URL.Query().Get("track"))
	state := s.player.GetPlayerState(r.Context(), query)
	writeJSON(w, http.StatusOK, state)
}

// handlePlayerAction schedules the action as a detached task: the trigger
// does not await completion, and failures reach the notification surface
// inside the backend rather than this response.
func (s *Server) handlePlayerAction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	action, err := core.ParseAction(r.URL.Query().Get("action"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.metrics.ActionsTotal.WithLabelValues(string(action)).Inc()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), detachedTimeout)
		defer cancel()
		if err := s.player.PerformAction(ctx, action); err != nil {
			s.logger.Warn("player action failed",
				zap.String("action", string(action)),
				zap.Error(err))
		}
	}()

	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handlePlayerOpen(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	link := r.URL.Query().Get("url")
	if link == "" {
		http.Error(w, "missing url parameter", http.StatusBadRequest)
		return
	}
	if !s.player.IsLinkSupported(link) {
		http.Error(w, "no enabled player supports this link", http.StatusNotFound)
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), detachedTimeout)
		defer cancel()
		if err := s.player.OpenLink(ctx, link); err != nil {
			s.logger.Warn("open link failed", zap.String("url", link), zap.Error(err))
		}
	}()

	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handlePlayerSelect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := s.player.SelectPlayer(r.URL.Query().Get("name")); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePlayers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"players": s.player.PlayerNames(),
		"active":  s.player.ActiveName(),
	})
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	link := r.URL.Query().Get("url")
	if link == "" {
		http.Error(w, "missing url parameter", http.StatusBadRequest)
		return
	}

	info, err := s.resolver.ResolveLink(r.Context(), link)
	s.metrics.ResolverCached.Set(float64(s.resolver.Size()))
	if err != nil {
		s.metrics.ResolvesTotal.WithLabelValues("error").Inc()
		http.Error(w, "resolution failed", http.StatusBadGateway)
		return
	}
	if info == nil {
		s.metrics.ResolvesTotal.WithLabelValues("unresolved").Inc()
		http.Error(w, "link not recognized", http.StatusNotFound)
		return
	}

	s.metrics.ResolvesTotal.WithLabelValues("resolved").Inc()
	writeJSON(w, http.StatusOK, info)
}

// parseStateQuery turns a comma-separated track field list into the field
// selector, e.g. "title,artists,album".
func parseStateQuery(trackFields string) core.StateQuery {
	var query core.StateQuery
	for _, field := range strings.Split(trackFields, ",") {
		switch strings.TrimSpace(field) {
		case "url":
			query.Track.URL = true
		case "title":
			query.Track.Title = true
		case "artists":
			query.Track.Artists = true
		case "album":
			query.Track.Album = true
		case "release_date":
			query.Track.ReleaseDate = true
		case "duration":
			query.Track.Duration = true
		case "is_in_library":
			query.Track.InLibrary = true
		}
	}
	return query
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		return
	}
}
