package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// DirStore writes artifacts to a local directory, one file per key. Useful
// for development and offline runs where no bucket is available.
type DirStore struct {
	dir string
}

func NewDirStore(dir string) (*DirStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("dir store: directory is required")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("dir store: create %s: %w", dir, err)
	}
	return &DirStore{dir: dir}, nil
}

func (s *DirStore) Put(ctx context.Context, key string, body []byte) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: put %s: %v", ErrStorage, key, err)
	}
	if key == "" || key != filepath.Base(key) {
		return fmt.Errorf("%w: invalid key %q", ErrStorage, key)
	}
	path := filepath.Join(s.dir, key)
	if err := os.WriteFile(path, body, 0o640); err != nil {
		return fmt.Errorf("%w: write %s: %v", ErrStorage, path, err)
	}
	return nil
}
