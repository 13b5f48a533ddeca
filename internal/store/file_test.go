// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileBackend_GetMissing(t *testing.T) {
	b, err := NewFileBackend(t.TempDir())
	require.NoError(t, err)

	_, _, err = b.Get(context.Background(), "cache.json")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestFileBackend_RoundTrip(t *testing.T) {
	b, err := NewFileBackend(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	payload := []byte(`[{"id":"abc"}]`)
	require.NoError(t, b.Put(ctx, "cache.json", payload))

	data, mod, err := b.Get(ctx, "cache.json")
	require.NoError(t, err)
	assert.Equal(t, payload, data)
	assert.WithinDuration(t, time.Now(), mod, 5*time.Second)
}

func TestFileBackend_PutOverwrites(t *testing.T) {
	b, err := NewFileBackend(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, b.Put(ctx, "cache.json", []byte("one")))
	require.NoError(t, b.Put(ctx, "cache.json", []byte("two")))

	data, _, err := b.Get(ctx, "cache.json")
	require.NoError(t, err)
	assert.Equal(t, []byte("two"), data)
}

func TestFileBackend_MtimeReflectsWrite(t *testing.T) {
	dir := t.TempDir()
	b, err := NewFileBackend(dir)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, b.Put(ctx, "cache.json", []byte("x")))

	// Age the file artificially to verify mtime is read from the medium.
	old := time.Now().Add(-7 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, "cache.json"), old, old))

	_, mod, err := b.Get(ctx, "cache.json")
	require.NoError(t, err)
	assert.WithinDuration(t, old, mod, time.Second)
}

func TestFileBackend_KeyCannotEscapeDir(t *testing.T) {
	dir := t.TempDir()
	b, err := NewFileBackend(dir)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, b.Put(ctx, "../escape.json", []byte("x")))
	_, statErr := os.Stat(filepath.Join(dir, "escape.json"))
	assert.NoError(t, statErr)
}
