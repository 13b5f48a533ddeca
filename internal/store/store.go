// SPDX-License-Identifier: MIT

// Package store provides the persistence backends for the catalog cache.
// A backend stores opaque byte blobs by key and reports when each blob was
// last modified. Which backend is used is a deployment-time choice made
// once at construction; callers depend only on the Backend contract.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound indicates the key has never been written. It is a normal,
// expected outcome for callers and triggers a rebuild from source.
var ErrNotFound = errors.New("store: key not found")

// Backend is the uniform get/put contract over a blob medium.
type Backend interface {
	// Get returns the blob stored under key and the time it was last
	// modified. Returns ErrNotFound if the key does not exist.
	Get(ctx context.Context, key string) ([]byte, time.Time, error)
	// Put stores the blob under key, replacing any previous value.
	Put(ctx context.Context, key string, data []byte) error
}
