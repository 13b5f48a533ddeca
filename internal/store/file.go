// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/renameio/v2"
)

// FileBackend stores blobs as files under a base directory. The file mtime
// serves as the last-modified timestamp.
type FileBackend struct {
	dir string
}

// NewFileBackend creates a file-backed store rooted at dir. The directory
// is created if it does not exist.
func NewFileBackend(dir string) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &FileBackend{dir: dir}, nil
}

func (b *FileBackend) path(key string) string {
	return filepath.Join(b.dir, filepath.Base(key))
}

// Get reads the file stored under key.
func (b *FileBackend) Get(_ context.Context, key string) ([]byte, time.Time, error) {
	path := b.path(key)
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, time.Time{}, ErrNotFound
	}
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("stat %s: %w", path, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("read %s: %w", path, err)
	}
	return data, info.ModTime(), nil
}

// Put writes the blob atomically so a crash mid-write never leaves a
// truncated cache file behind.
func (b *FileBackend) Put(_ context.Context, key string, data []byte) error {
	path := b.path(key)
	if err := renameio.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
