package auth

import (
	"encoding/json"
	"errors"
	"io"
	"os"
	"sync"

	"golang.org/x/oauth2"
)

// tokenFilePermission keeps persisted credentials readable by the owner only.
const tokenFilePermission = 0600

// TokenData is the on-disk shape of a persisted credential. The token
// carries its own computed expiry timestamp.
type TokenData struct {
	Token *oauth2.Token `json:"token"`
}

// TokenStore persists one backend's OAuth token as a JSON file.
type TokenStore struct {
	mu   sync.Mutex
	path string
}

func NewTokenStore(path string) *TokenStore {
	return &TokenStore{path: path}
}

// Has reports whether a persisted credential exists, without validating it.
func (s *TokenStore) Has() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := os.Stat(s.path)
	return err == nil
}

// Load reads the persisted token. A missing file is an error; callers treat
// it as "not logged in".
func (s *TokenStore) Load() (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.Open(s.path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}

	var tokenData TokenData
	if err := json.Unmarshal(data, &tokenData); err != nil {
		return nil, err
	}
	if tokenData.Token == nil {
		return nil, errors.New("token file contains no token")
	}

	return tokenData.Token, nil
}

// Save persists the token, replacing any previous credential.
func (s *TokenStore) Save(token *oauth2.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(TokenData{Token: token}, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(s.path, data, tokenFilePermission)
}

// Clear removes the persisted credential entirely.
func (s *TokenStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
