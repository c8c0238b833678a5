package auth

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/natefinch/atomic"
)

// TokenStore keeps the session tokens in a JSON file so they survive between CLI invocations.
// It is safe for concurrent use.
type TokenStore struct {
	path string

	mu      sync.RWMutex
	access  string
	refresh string
}

type tokenFile struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// OpenTokenStore loads the tokens saved at path. A missing file gives an empty store.
func OpenTokenStore(path string) (*TokenStore, error) {
	s := &TokenStore{path: path}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading token file: %w", err)
	}

	var f tokenFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decoding token file %s: %w", path, err)
	}
	s.access, s.refresh = f.Access, f.Refresh
	return s, nil
}

func (s *TokenStore) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.access
}

func (s *TokenStore) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refresh
}

// SaveTokens replaces both tokens and writes them to disk.
// The file is readable by the owner only.
func (s *TokenStore) SaveTokens(access, refresh string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(tokenFile{Access: access, Refresh: refresh})
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("creating token directory: %w", err)
	}
	if err := atomic.WriteFile(s.path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("writing token file: %w", err)
	}
	if err := os.Chmod(s.path, 0o600); err != nil {
		return fmt.Errorf("restricting token file permissions: %w", err)
	}

	s.access, s.refresh = access, refresh
	return nil
}

// Clear forgets the tokens and removes the file
func (s *TokenStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.access, s.refresh = "", ""
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing token file: %w", err)
	}
	return nil
}

// Status describes the stored session
type Status struct {
	LoggedIn        bool      `json:"logged_in"`
	UserID          int       `json:"user_id,omitempty"`
	TypeUtilisateur string    `json:"type_utilisateur,omitempty"`
	ExpiresAt       time.Time `json:"expires_at,omitzero"`
	Expired         bool      `json:"expired"`
	CanRefresh      bool      `json:"can_refresh"`
}

// Status reports whether a session is stored and when its access token expires
func (s *TokenStore) Status(now time.Time) Status {
	access, refresh := s.AccessToken(), s.RefreshToken()

	st := Status{LoggedIn: access != "", CanRefresh: refresh != ""}
	if access == "" {
		return st
	}

	claims, err := ParseClaims(access)
	if err != nil {
		return st
	}
	st.UserID = claims.UserID
	st.TypeUtilisateur = claims.TypeUtilisateur
	st.ExpiresAt = claims.ExpiresAt()
	st.Expired = claims.Expired(now)
	return st
}
