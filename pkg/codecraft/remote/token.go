package remote

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
)

// TokenStore persists the bearer token between runs. An empty token
// means signed-out: requests go out unauthenticated and the store
// rejects them with ErrUnauthorized.
type TokenStore struct {
	path string
}

// NewTokenStore returns a token store at the given path, or at
// DefaultTokenPath() if path is empty.
func NewTokenStore(path string) *TokenStore {
	if path == "" {
		path = DefaultTokenPath()
	}
	return &TokenStore{path: path}
}

// DefaultTokenPath returns $XDG_DATA_HOME/codecraft/token.
func DefaultTokenPath() string {
	return filepath.Join(xdg.DataHome, "codecraft", "token")
}

// Load returns the stored token, or "" when signed out.
func (s *TokenStore) Load() string {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// Save stores a token.
func (s *TokenStore) Save(token string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(s.path, []byte(token), 0o600)
}

// Clear removes the stored token. Used on explicit logout and on a 401
// from the store (forced sign-out on an expired credential).
func (s *TokenStore) Clear() error {
	err := os.Remove(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
