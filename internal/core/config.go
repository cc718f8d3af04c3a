package core

import (
	"fmt"
	"sync"
	"time"
)

// StatusItem is one slot in the configured status bar layout.
type StatusItem string

const (
	StatusItemNone           StatusItem = "none"
	StatusItemText           StatusItem = "text"
	StatusItemPlay           StatusItem = "play"
	StatusItemPrevious       StatusItem = "previous"
	StatusItemNext           StatusItem = "next"
	StatusItemAddToFavorites StatusItem = "add-to-favorites"
)

// ParseStatusItem converts a configured layout entry into a StatusItem.
func ParseStatusItem(s string) (StatusItem, error) {
	switch StatusItem(s) {
	case StatusItemNone, StatusItemText, StatusItemPlay,
		StatusItemPrevious, StatusItemNext, StatusItemAddToFavorites:
		return StatusItem(s), nil
	}
	return "", fmt.Errorf("unknown status bar item %q", s)
}

type Config struct {
	Spotify SpotifyConfig
	Player  PlayerConfig
	Server  ServerConfig
	Log     LogConfig
}

type SpotifyConfig struct {
	Enabled             bool
	ClientID            string
	ClientSecret        string
	RedirectURL         string
	FavoritesPlaylistID string
	TokenPath           string
}

type PlayerConfig struct {
	PollInterval         time.Duration
	AutoLogin            bool
	StatusBar            []string
	ShowPlayStateInIcon  bool
	ChangeIconColor      bool
	ShowTrackInStatusBar bool
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

// DefaultConfig returns the fixed default configuration. Persisted and
// flag/env overrides are merged on top of it; missing keys keep these values.
func DefaultConfig() *Config {
	return &Config{
		Spotify: SpotifyConfig{
			Enabled:     false,
			RedirectURL: "http://localhost:8080/callback",
			TokenPath:   "./spotify_token.json",
		},
		Player: PlayerConfig{
			PollInterval:         2 * time.Second,
			AutoLogin:            false,
			StatusBar:            []string{"play", "text"},
			ShowPlayStateInIcon:  true,
			ChangeIconColor:      true,
			ShowTrackInStatusBar: true,
		},
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// StatusBarLayout parses the configured layout, skipping unknown entries.
func (p PlayerConfig) StatusBarLayout() []StatusItem {
	items := make([]StatusItem, 0, len(p.StatusBar))
	for _, s := range p.StatusBar {
		item, err := ParseStatusItem(s)
		if err != nil || item == StatusItemNone {
			continue
		}
		items = append(items, item)
	}
	return items
}

// Settings is the live view of the configuration. Backends read enabled
// flags through it at call time rather than caching them, so a config
// change takes effect on the next call.
type Settings struct {
	mu  sync.RWMutex
	cfg *Config
}

func NewSettings(cfg *Config) *Settings {
	return &Settings{cfg: cfg}
}

// Replace swaps in a freshly merged configuration (e.g. after a config file
// change was picked up by the watcher).
func (s *Settings) Replace(cfg *Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg
}

func (s *Settings) Spotify() SpotifyConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.Spotify
}

func (s *Settings) Player() PlayerConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.Player
}
