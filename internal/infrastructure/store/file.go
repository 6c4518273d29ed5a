package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/evora/catalog/internal/domain"
)

const lockRetryDelay = 50 * time.Millisecond

// FileStore keeps one JSON file per key under <dir>/<scope>/.
// Reads and writes take an advisory lock so several processes can share a directory.
type FileStore struct {
	dir string
}

// NewFileStore creates the scope directory if needed
func NewFileStore(baseDir, scope string) (*FileStore, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("file store requires a directory")
	}
	dir := filepath.Join(baseDir, sanitizeName(scope))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create store directory %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the scope directory
func (s *FileStore) Dir() string {
	return s.dir
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, sanitizeName(key)+".json")
}

func (s *FileStore) Get(ctx context.Context, key string) ([]byte, error) {
	p := s.path(key)
	lock := flock.New(p + ".lock")
	locked, err := lock.TryRLockContext(ctx, lockRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("cannot lock %s: %w", p, err)
	}
	if locked {
		defer lock.Unlock()
	}

	data, err := os.ReadFile(p)
	if os.IsNotExist(err) {
		return nil, domain.ErrStoreKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", p, err)
	}
	return data, nil
}

// Set replaces the value atomically: write to a temp file, then rename over the old one
func (s *FileStore) Set(ctx context.Context, key string, value []byte) error {
	p := s.path(key)
	lock := flock.New(p + ".lock")
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("cannot lock %s: %w", p, err)
	}
	if !locked {
		return fmt.Errorf("cannot lock %s", p)
	}
	defer lock.Unlock()

	tmp, err := os.CreateTemp(s.dir, filepath.Base(p)+".*.tmp")
	if err != nil {
		return fmt.Errorf("cannot create temp file in %s: %w", s.dir, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		return fmt.Errorf("cannot write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("cannot close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, p); err != nil {
		return fmt.Errorf("cannot replace %s: %w", p, err)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }
