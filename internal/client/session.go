package client

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/pageza/recipeshare/backend/internal/identity"
)

// SessionFile persists the signed-in state between recipectl runs.
type SessionFile struct {
	path string
}

// DefaultSessionPath is ~/.config/recipeshare/session.toml on Linux.
func DefaultSessionPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating config directory: %w", err)
	}
	return filepath.Join(dir, "recipeshare", "session.toml"), nil
}

func NewSessionFile(path string) *SessionFile {
	return &SessionFile{path: path}
}

func (f *SessionFile) Path() string {
	return f.path
}

// Load returns the stored session, or nil when there is none.
func (f *SessionFile) Load() (*identity.AuthResult, error) {
	var result identity.AuthResult
	_, err := toml.DecodeFile(f.path, &result)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading session from %s: %w", f.path, err)
	}
	if result.Token == "" {
		return nil, nil
	}
	return &result, nil
}

// Save writes result readable by the current user only.
func (f *SessionFile) Save(result *identity.AuthResult) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("creating session directory: %w", err)
	}
	out, err := os.OpenFile(f.path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("writing session: %w", err)
	}
	if err := toml.NewEncoder(out).Encode(result); err != nil {
		out.Close()
		return fmt.Errorf("encoding session: %w", err)
	}
	return out.Close()
}

// Remove deletes the stored session. A missing file is not an error.
func (f *SessionFile) Remove() error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Attach keeps the file in step with s: sign-ins are saved and sign-outs
// remove the file. Write failures go to onError.
func (f *SessionFile) Attach(s *identity.Session, onError func(error)) (detach func()) {
	return s.Subscribe(func(result *identity.AuthResult) {
		var err error
		if result == nil {
			err = f.Remove()
		} else {
			err = f.Save(result)
		}
		if err != nil && onError != nil {
			onError(err)
		}
	})
}
