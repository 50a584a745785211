// Package session persists the dashboard login state between runs.
package session

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

const appDir = "boardkit"

// Session is the saved login state.
type Session struct {
	Token string `json:"token"`
	Email string `json:"email"`
}

// Store reads and writes a session file under the user config directory.
type Store struct {
	path string
}

// NewStore resolves the session file location, typically
// $XDG_CONFIG_HOME/boardkit/session.json.
func NewStore() (*Store, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return nil, err
	}
	return &Store{path: filepath.Join(dir, appDir, "session.json")}, nil
}

// NewStoreAt uses an explicit file path, mainly for tests.
func NewStoreAt(path string) *Store {
	return &Store{path: path}
}

// Load returns the saved session. A missing file yields a zero session
// and no error.
func (s *Store) Load() (Session, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Session{}, nil
		}
		return Session{}, err
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return Session{}, err
	}
	return sess, nil
}

// Save writes the session, creating parent directories as needed. The file
// is user-readable only since it holds a bearer token.
func (s *Store) Save(sess Session) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}

// Clear removes the session file. Clearing an absent session is not an error.
func (s *Store) Clear() error {
	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
