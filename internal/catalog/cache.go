// SPDX-License-Identifier: MIT

package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/ytwall/ytwall/internal/log"
	"github.com/ytwall/ytwall/internal/metrics"
	"github.com/ytwall/ytwall/internal/store"
)

// CacheKey is the blob key the catalog is persisted under.
const CacheKey = "cache.json"

// DefaultTTL is the maximum cache age before a rebuild from source.
const DefaultTTL = 6 * time.Hour

// ErrStale indicates the cached catalog exists but exceeded its TTL, or
// could not be read. Both cases trigger a rebuild from source.
var ErrStale = errors.New("catalog: cached entries are stale")

// Cache persists the catalog through a store.Backend with TTL-based
// staleness detection.
type Cache struct {
	backend store.Backend
	ttl     time.Duration
	logger  zerolog.Logger
	now     func() time.Time
}

// NewCache wraps the backend with the given TTL. A zero ttl means DefaultTTL.
func NewCache(backend store.Backend, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		backend: backend,
		ttl:     ttl,
		logger:  log.WithComponent("catalog.cache"),
		now:     time.Now,
	}
}

// LoadIfFresh returns the persisted entries if they are younger than the
// TTL. It returns store.ErrNotFound when nothing was ever persisted and
// ErrStale when the snapshot aged out; an age of exactly the TTL counts as
// stale. Read or decode failures are logged and reported as ErrStale so the
// caller falls through to a rebuild instead of failing the catalog load.
func (c *Cache) LoadIfFresh(ctx context.Context) ([]Entry, error) {
	data, modified, err := c.backend.Get(ctx, CacheKey)
	if errors.Is(err, store.ErrNotFound) {
		metrics.CacheHitsTotal.WithLabelValues("miss").Inc()
		return nil, err
	}
	if err != nil {
		c.logger.Warn().Err(err).Str("event", "cache.read_failed").Msg("cache read failed, rebuilding from source")
		metrics.CacheHitsTotal.WithLabelValues("error").Inc()
		return nil, ErrStale
	}

	age := c.now().Sub(modified)
	if age >= c.ttl {
		c.logger.Info().
			Str("event", "cache.stale").
			Dur("age", age).
			Dur("ttl", c.ttl).
			Msg("cached catalog aged out")
		metrics.CacheHitsTotal.WithLabelValues("stale").Inc()
		return nil, ErrStale
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		c.logger.Warn().Err(err).Str("event", "cache.corrupt").Msg("corrupt cache payload, rebuilding from source")
		metrics.CacheHitsTotal.WithLabelValues("error").Inc()
		return nil, ErrStale
	}

	metrics.CacheHitsTotal.WithLabelValues("fresh").Inc()
	c.logger.Info().
		Str("event", "cache.hit").
		Int("entries", len(entries)).
		Dur("age", age).
		Msg("loaded catalog from cache")
	return entries, nil
}

// Save persists the non-manual entries as a JSON array. Persistence is
// best-effort: callers log and swallow the returned error, since a write
// failure must never prevent catalog use in memory.
func (c *Cache) Save(ctx context.Context, entries []Entry) error {
	persistable := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.ManuallyAdded {
			continue
		}
		persistable = append(persistable, e)
	}

	data, err := json.Marshal(persistable)
	if err != nil {
		return fmt.Errorf("marshal catalog: %w", err)
	}
	if err := c.backend.Put(ctx, CacheKey, data); err != nil {
		return fmt.Errorf("persist catalog: %w", err)
	}

	c.logger.Debug().
		Str("event", "cache.saved").
		Int("entries", len(persistable)).
		Msg("catalog persisted")
	return nil
}
