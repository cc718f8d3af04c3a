// Package main provides the tunelink CLI application entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"tunelink/internal/auth"
	"tunelink/internal/core"
	httpserver "tunelink/internal/http"
	"tunelink/internal/player"
	"tunelink/internal/resolver"
	"tunelink/internal/spotify"
	"tunelink/internal/store"
	"tunelink/pkg/songlink"
)

// favoritesCacheSize bounds the in-memory favorites membership cache.
const favoritesCacheSize = 10000

var (
	cfgFile string
	config  *core.Config
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "tunelink",
	Short: "tunelink - music backend integration daemon",
	Long: `tunelink controls external music-streaming backends (currently Spotify)
behind a uniform abstraction: it recognizes playable links, reports playback
state, dispatches transport commands and resolves URLs into track metadata.`,
	RunE: runTunelink,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("spotify-enabled", false, "enable the Spotify backend")
	rootCmd.PersistentFlags().String("spotify-client-id", "", "Spotify client ID")
	rootCmd.PersistentFlags().String("spotify-client-secret", "", "Spotify client secret")
	rootCmd.PersistentFlags().String("spotify-redirect-url", "", "OAuth redirect URL")
	rootCmd.PersistentFlags().String("spotify-token-path", "", "path for the persisted Spotify token")
	rootCmd.PersistentFlags().String("favorites-playlist-id", "", "target playlist for add-to-favorites (empty = library)")
	rootCmd.PersistentFlags().Duration("poll-interval", 2*time.Second, "player state poll interval")
	rootCmd.PersistentFlags().Bool("auto-login", false, "perform an interactive login on startup")
	rootCmd.PersistentFlags().StringSlice("status-bar", nil, "status bar layout items")
	rootCmd.PersistentFlags().String("server-host", "", "HTTP server host")
	rootCmd.PersistentFlags().Int("server-port", 8080, "HTTP server port")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bind flags: %v\n", err)
		os.Exit(1)
	}
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(".env")
		viper.SetConfigType("env")
	}

	viper.SetEnvPrefix("TUNELINK")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "Error reading config file: %v\n", err)
			os.Exit(1)
		}
	}

	config = buildConfig()
	logger = buildLogger(config.Log.Level)
}

// buildConfig merges flag/env/file overrides on top of the fixed defaults.
// Missing keys keep their default values.
func buildConfig() *core.Config {
	cfg := core.DefaultConfig()

	cfg.Spotify.Enabled = viper.GetBool("spotify-enabled")
	cfg.Spotify.ClientID = viper.GetString("spotify-client-id")
	cfg.Spotify.ClientSecret = viper.GetString("spotify-client-secret")
	if v := viper.GetString("spotify-redirect-url"); v != "" {
		cfg.Spotify.RedirectURL = v
	}
	if v := viper.GetString("spotify-token-path"); v != "" {
		cfg.Spotify.TokenPath = v
	}
	cfg.Spotify.FavoritesPlaylistID = viper.GetString("favorites-playlist-id")

	if v := viper.GetDuration("poll-interval"); v > 0 {
		cfg.Player.PollInterval = v
	}
	cfg.Player.AutoLogin = viper.GetBool("auto-login")
	if v := viper.GetStringSlice("status-bar"); len(v) > 0 {
		cfg.Player.StatusBar = v
	}

	if v := viper.GetString("server-host"); v != "" {
		cfg.Server.Host = v
	}
	if v := viper.GetInt("server-port"); v != 0 {
		cfg.Server.Port = v
	}

	if v := viper.GetString("log-level"); v != "" {
		cfg.Log.Level = v
	}

	return cfg
}

func buildLogger(level string) *zap.Logger {
	var zapLevel zapcore.Level
	switch strings.ToLower(level) {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)

	builtLogger, err := cfg.Build()
	if err != nil {
		panic(fmt.Sprintf("Failed to build logger: %v", err))
	}

	return builtLogger
}

func runTunelink(_ *cobra.Command, _ []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger.Info("starting tunelink",
		zap.Bool("spotify_enabled", config.Spotify.Enabled),
		zap.Duration("poll_interval", config.Player.PollInterval))

	settings := core.NewSettings(config)

	// Configuration is loaded once at startup and read live thereafter;
	// file changes are merged back into the live settings.
	viper.OnConfigChange(func(_ fsnotify.Event) {
		settings.Replace(buildConfig())
		logger.Info("configuration reloaded")
	})
	viper.WatchConfig()

	notifier := core.NewLogNotifier(logger.Named("notify"))

	tokens := auth.NewTokenStore(config.Spotify.TokenPath)
	authManager := auth.NewManager(logger.Named("auth"))

	spotifyAuth := spotify.NewAuthHandler(settings, tokens, notifier, logger.Named("spotify"))
	authManager.Register(spotifyAuth)

	favorites := store.NewMembership(favoritesCacheSize, 0.001)
	spotifyPlayer := spotify.NewLinkHandler(settings, spotifyAuth, favorites, notifier, logger.Named("spotify"))

	manager := player.NewManager(logger.Named("player"),
		player.NewNopPlayer(),
		spotifyPlayer,
	)

	linkResolver := resolver.NewCache(resolver.NewMulti(
		spotify.NewResolver(settings, spotifyAuth, logger.Named("resolver")),
		resolver.NewSonglinkResolver(songlink.DefaultRegistry(), logger.Named("songlink")),
	))

	server := httpserver.NewServer(config.Server, manager, authManager, linkResolver, logger.Named("http"))

	monitor := core.NewPlayerMonitor(manager, settings, server, logger.Named("monitor"))

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return server.Start(gCtx)
	})

	g.Go(func() error {
		return monitor.Run(gCtx)
	})

	if config.Player.AutoLogin && config.Spotify.Enabled {
		// Fire-and-forget: the login completes through the redirect
		// callback, not this call.
		g.Go(func() error {
			if err := spotifyPlayer.PerformAuthorization(gCtx, false); err != nil {
				logger.Info("startup login pending or failed", zap.Error(err))
			}
			return nil
		})
	}

	logger.Info("tunelink started",
		zap.String("http_addr", fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)))

	if err := g.Wait(); err != nil {
		logger.Error("tunelink stopped with error", zap.Error(err))
		return err
	}

	logger.Info("tunelink stopped gracefully")
	return nil
}
