// ABOUTME: File-backed token store in the XDG config directory
// ABOUTME: Writes the token with 0600 permissions; a missing file means no session

package tokenstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// FileStore keeps the token in <configDir>/token
type FileStore struct {
	configDir string
}

// NewFileStore creates a FileStore rooted at configDir
func NewFileStore(configDir string) *FileStore {
	return &FileStore{configDir: configDir}
}

// DefaultConfigDir returns the default config directory following XDG spec
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "freelance")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "freelance")
}

// path returns the location of the token file
func (fs *FileStore) path() string {
	return filepath.Join(fs.configDir, "token")
}

// Load reads the token from disk
func (fs *FileStore) Load(ctx context.Context) (string, error) {
	data, err := os.ReadFile(fs.path())
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// Save writes the token to disk, creating the config directory if needed
func (fs *FileStore) Save(ctx context.Context, token string) error {
	if err := os.MkdirAll(fs.configDir, 0700); err != nil {
		return err
	}
	// Write then rename; readers never see a partial token
	tmp := fs.path() + ".tmp"
	if err := os.WriteFile(tmp, []byte(token), 0600); err != nil {
		return err
	}
	return os.Rename(tmp, fs.path())
}

// Clear removes the token file; clearing an absent token is not an error
func (fs *FileStore) Clear(ctx context.Context) error {
	err := os.Remove(fs.path())
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Close is a no-op; the file is opened per call
func (fs *FileStore) Close() error {
	return nil
}
