package auth

import (
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func TestTokenStoreRoundtrip(t *testing.T) {
	store := NewTokenStore(filepath.Join(t.TempDir(), "token.json"))

	if store.Has() {
		t.Error("Has() = true before any save")
	}
	if _, err := store.Load(); err == nil {
		t.Error("Load() = nil error before any save")
	}

	token := &oauth2.Token{
		AccessToken:  "access",
		RefreshToken: "refresh",
		TokenType:    "Bearer",
		Expiry:       time.Now().Add(time.Hour).Truncate(time.Second),
	}
	if err := store.Save(token); err != nil {
		t.Fatalf("Save = %v", err)
	}
	if !store.Has() {
		t.Error("Has() = false after save")
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load = %v", err)
	}
	if loaded.AccessToken != token.AccessToken || loaded.RefreshToken != token.RefreshToken {
		t.Errorf("loaded token = %+v, want %+v", loaded, token)
	}
	if !loaded.Expiry.Equal(token.Expiry) {
		t.Errorf("expiry = %v, want %v", loaded.Expiry, token.Expiry)
	}
}

func TestTokenStoreClear(t *testing.T) {
	store := NewTokenStore(filepath.Join(t.TempDir(), "token.json"))

	if err := store.Save(&oauth2.Token{AccessToken: "access"}); err != nil {
		t.Fatalf("Save = %v", err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("Clear = %v", err)
	}
	if store.Has() {
		t.Error("Has() = true after clear")
	}

	// Clearing an already-empty store is not an error.
	if err := store.Clear(); err != nil {
		t.Errorf("second Clear = %v", err)
	}
}
