// Package local stores uploaded files on the local filesystem.
package local

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Store writes files under a single base directory. Names are expected to be
// pre-generated and unique; any path components are stripped.
type Store struct {
	baseDir string
}

// NewStore creates the base directory if needed and returns the store.
func NewStore(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("prepare upload dir: %w", err)
	}
	return &Store{baseDir: baseDir}, nil
}

func (s *Store) Save(_ context.Context, name string, data []byte) error {
	dst := filepath.Join(s.baseDir, filepath.Base(name))
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", dst, err)
	}
	return nil
}

// Dir returns the directory stored files are served from.
func (s *Store) Dir() string { return s.baseDir }
