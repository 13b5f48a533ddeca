// SPDX-License-Identifier: MIT

// Package manager orchestrates the catalog: cache-first initialisation,
// rebuild from source, manual-entry injection and the periodic live-status
// refresh cycle. The manager owns the authoritative in-memory catalog;
// all mutation is serialized behind a single exclusive writer.
package manager

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ytwall/ytwall/internal/catalog"
	"github.com/ytwall/ytwall/internal/log"
	"github.com/ytwall/ytwall/internal/metrics"
	"github.com/ytwall/ytwall/internal/store"
)

// State is the catalog lifecycle state.
type State int

const (
	StateEmpty State = iota
	StateLoading
	StateReady
	StateRefreshing
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateRefreshing:
		return "refreshing"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ErrNotReady is returned when an operation requires the Ready state.
var ErrNotReady = errors.New("manager: catalog is not ready")

// Notifier is the boundary to the presentation layer. The manager calls it
// after state changes; it does not know how entries are rendered. Receivers
// must not mutate the entry slices they are handed.
type Notifier interface {
	CatalogReady(entries []catalog.Entry)
	Refreshed(newlyLive []string, entries []catalog.Entry)
}

// Options configures a Manager.
type Options struct {
	Cache      *catalog.Cache
	Source     *catalog.Source
	Refresher  *catalog.Refresher
	ManualURLs []string
	Notifier   Notifier // optional
}

// Manager owns the catalog.
type Manager struct {
	mu        sync.Mutex
	state     State
	entries   []catalog.Entry
	cache     *catalog.Cache
	source    *catalog.Source
	refresher *catalog.Refresher
	manual    []catalog.Entry
	notifier  Notifier
	logger    zerolog.Logger
}

// New creates a manager in the Empty state.
func New(opts Options) *Manager {
	return &Manager{
		cache:     opts.Cache,
		source:    opts.Source,
		refresher: opts.Refresher,
		manual:    catalog.ManualEntries(opts.ManualURLs),
		notifier:  opts.Notifier,
		logger:    log.WithComponent("manager"),
	}
}

// Initialize loads the catalog, preferring the cache unless forced. On a
// stale or missing cache it rebuilds from source and persists the result
// best-effort. Either way the live status is normalized once and the
// manager transitions to Ready. Initialize is valid from the Empty and
// Ready states; a forced call from Ready performs a full rebuild.
func (m *Manager) Initialize(ctx context.Context, force bool) error {
	m.mu.Lock()
	if m.state == StateLoading || m.state == StateRefreshing {
		state := m.state
		m.mu.Unlock()
		return fmt.Errorf("manager: cannot initialize while %s", state)
	}
	m.state = StateLoading

	entries, rebuilt := m.loadOrBuild(ctx, force)
	entries = m.withManual(entries)

	// One refresh pass normalizes live/startTime state, for cached
	// snapshots as well as freshly built ones.
	m.refresher.Refresh(ctx, entries)

	if rebuilt {
		if err := m.cache.Save(ctx, entries); err != nil {
			// Persistence is best-effort: never fail the in-memory catalog.
			m.logger.Warn().Err(err).Str("event", "catalog.save_failed").Msg("catalog persistence failed")
		}
	}

	m.entries = entries
	m.state = StateReady
	m.updateGauges()

	snapshot := m.snapshotLocked()
	m.mu.Unlock()

	m.logger.Info().
		Str("event", "catalog.ready").
		Int("entries", len(snapshot)).
		Bool("rebuilt", rebuilt).
		Msg("catalog initialized")

	if m.notifier != nil {
		m.notifier.CatalogReady(snapshot)
	}
	return nil
}

// loadOrBuild returns the base (non-manual) entries and whether they were
// rebuilt from source. Must be called with the lock held.
func (m *Manager) loadOrBuild(ctx context.Context, force bool) ([]catalog.Entry, bool) {
	if !force {
		cached, err := m.cache.LoadIfFresh(ctx)
		if err == nil {
			return cached, false
		}
		trigger := "stale"
		if errors.Is(err, store.ErrNotFound) {
			trigger = "miss"
		}
		metrics.RebuildTotal.WithLabelValues(trigger).Inc()
		m.logger.Info().
			Str("event", "catalog.rebuild").
			Str("trigger", trigger).
			Msg("rebuilding catalog from source")
		return m.source.Build(ctx), true
	}

	metrics.RebuildTotal.WithLabelValues("forced").Inc()
	m.logger.Info().
		Str("event", "catalog.rebuild").
		Str("trigger", "forced").
		Msg("rebuilding catalog from source")
	return m.source.Build(ctx), true
}

// withManual appends the operator-configured manual entries with
// continuing indexes. Must be called with the lock held.
func (m *Manager) withManual(entries []catalog.Entry) []catalog.Entry {
	out := make([]catalog.Entry, 0, len(entries)+len(m.manual))
	out = append(out, entries...)
	for _, man := range m.manual {
		man.Index = len(out)
		out = append(out, man)
	}
	return out
}

// Refresh runs one live-status refresh cycle and returns the ids that
// newly became live. Only valid in the Ready state.
func (m *Manager) Refresh(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	if m.state != StateReady {
		state := m.state
		m.mu.Unlock()
		return nil, fmt.Errorf("%w (state %s)", ErrNotReady, state)
	}
	m.state = StateRefreshing

	newlyLive := m.refresher.Refresh(ctx, m.entries)

	m.state = StateReady
	m.updateGauges()
	snapshot := m.snapshotLocked()
	m.mu.Unlock()

	if m.notifier != nil {
		m.notifier.Refreshed(newlyLive, snapshot)
	}
	return newlyLive, nil
}

// Run drives Refresh on a fixed period until ctx is cancelled. Cycles are
// strictly sequential: a tick arriving during an in-flight refresh waits in
// the ticker channel rather than overlapping it.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	m.logger.Info().
		Str("event", "refresh.loop_started").
		Dur("interval", interval).
		Msg("periodic refresh started")

	for {
		select {
		case <-ctx.Done():
			m.logger.Info().Str("event", "refresh.loop_stopped").Msg("periodic refresh stopped")
			return
		case <-ticker.C:
			if _, err := m.Refresh(ctx); err != nil {
				m.logger.Warn().Err(err).Str("event", "refresh.skipped").Msg("refresh cycle skipped")
			}
		}
	}
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Entries returns a copy of the current catalog snapshot.
func (m *Manager) Entries() []catalog.Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// LiveVideos returns a copy of the entries that are currently live.
func (m *Manager) LiveVideos() []catalog.Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]catalog.Entry, 0, len(m.entries))
	for _, e := range m.entries {
		if e.Live {
			out = append(out, e)
		}
	}
	return out
}

// HighestPriorityStream returns the first live entry in catalog order. The
// list is already priority-sorted, so first means highest priority.
func (m *Manager) HighestPriorityStream() (catalog.Entry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries {
		if e.Live {
			return e, true
		}
	}
	return catalog.Entry{}, false
}

func (m *Manager) snapshotLocked() []catalog.Entry {
	out := make([]catalog.Entry, len(m.entries))
	copy(out, m.entries)
	return out
}

func (m *Manager) updateGauges() {
	liveCount := 0
	for _, e := range m.entries {
		if e.Live {
			liveCount++
		}
	}
	metrics.CatalogSize.Set(float64(len(m.entries)))
	metrics.LiveVideos.Set(float64(liveCount))
}
