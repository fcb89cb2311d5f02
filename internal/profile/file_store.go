package profile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// FileStore is a LocalStore backed by a YAML file.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a store writing to path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the profile; ErrNoProfile when the file does not exist.
func (s *FileStore) Load(_ context.Context) (*Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path) // #nosec G304 -- path comes from configuration
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoProfile
	}
	if err != nil {
		return nil, fmt.Errorf("error reading profile file: %w", err)
	}

	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("error parsing profile file %s: %w", s.path, err)
	}
	if p.Status == "" {
		p.Status = SyncPending
	}
	return &p, nil
}

// Save writes the profile, replacing any previous copy.
func (s *FileStore) Save(_ context.Context, p *Profile) error {
	if p == nil {
		return fmt.Errorf("cannot save nil profile")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("error encoding profile: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("error creating profile directory: %w", err)
		}
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("error writing profile file: %w", err)
	}
	return nil
}

// Clear removes the file. Clearing an absent profile is not an error.
func (s *FileStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("error removing profile file: %w", err)
	}
	return nil
}
