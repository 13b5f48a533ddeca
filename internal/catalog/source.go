// SPDX-License-Identifier: MIT

package catalog

import (
	"context"
	"sort"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/ytwall/ytwall/internal/config"
	"github.com/ytwall/ytwall/internal/log"
	"github.com/ytwall/ytwall/internal/youtube"
)

// maxSourceConcurrency bounds parallel per-channel queries.
const maxSourceConcurrency = 4

// SearchClient is the slice of the query API the source needs.
type SearchClient interface {
	SearchEvents(ctx context.Context, channelID, eventType string) ([]youtube.SearchResult, error)
}

// Source builds the catalog from the upstream query API.
type Source struct {
	client   SearchClient
	channels []string // channel ids in priority order
	rules    []config.PriorityRule
	logger   zerolog.Logger
}

// NewSource creates a catalog source over the given channels. Channel order
// expresses priority: entries of earlier channels precede later ones in the
// final catalog regardless of per-entry priorities.
func NewSource(client SearchClient, channels []string, rules []config.PriorityRule) *Source {
	return &Source{
		client:   client,
		channels: channels,
		rules:    rules,
		logger:   log.WithComponent("catalog.source"),
	}
}

// Build queries live and upcoming events for every configured channel and
// produces a deterministically ordered catalog. A failing channel is logged
// and contributes zero entries; Build itself never fails.
func (s *Source) Build(ctx context.Context) []Entry {
	batches := make([][]Entry, len(s.channels))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxSourceConcurrency)
	for i, channelID := range s.channels {
		i, channelID := i, channelID
		g.Go(func() error {
			batches[i] = s.buildChannel(gctx, channelID)
			return nil
		})
	}
	// Channel errors are absorbed per channel, the group never fails.
	_ = g.Wait()

	// Global order is the concatenation of already-sorted channel batches,
	// not a single global re-sort: channel order dominates entry priority.
	var out []Entry
	seen := make(map[string]bool)
	for _, batch := range batches {
		for _, e := range batch {
			if seen[e.ID] {
				continue
			}
			seen[e.ID] = true
			out = append(out, e)
		}
	}
	for i := range out {
		out[i].Index = i
	}

	s.logger.Info().
		Str("event", "source.built").
		Int("channels", len(s.channels)).
		Int("entries", len(out)).
		Msg("catalog built from source")
	return out
}

// buildChannel returns the channel's live events followed by its upcoming
// events, priority-adjusted and sorted.
func (s *Source) buildChannel(ctx context.Context, channelID string) []Entry {
	var batch []Entry
	for _, eventType := range []string{youtube.EventLive, youtube.EventUpcoming} {
		results, err := s.client.SearchEvents(ctx, channelID, eventType)
		if err != nil {
			s.logger.Warn().
				Err(err).
				Str("event", "source.channel_failed").
				Str("channel", channelID).
				Str("event_type", eventType).
				Msg("channel query failed, contributing zero entries")
			continue
		}
		for _, r := range results {
			batch = append(batch, Entry{
				ID:           r.ID,
				URL:          videoURL(r.ID),
				Name:         r.Title,
				ThumbnailURL: r.ThumbnailURL,
				Live:         r.BroadcastContent == youtube.BroadcastLive,
			})
		}
	}

	for i := range batch {
		batch[i].Priority = s.priorityFor(batch[i].Name)
	}
	sortBatch(batch)
	return batch
}

// priorityFor applies the rule table cumulatively: every matching rule
// overwrites the previous value, so the last matching rule wins.
func (s *Source) priorityFor(name string) int {
	priority := 0
	for _, rule := range s.rules {
		if rule.Matches(name) {
			priority = rule.Priority
		}
	}
	return priority
}

// sortBatch orders a channel batch by priority ascending, then by name,
// case-insensitive and locale-aware.
func sortBatch(batch []Entry) {
	coll := collate.New(language.Und, collate.IgnoreCase)
	sort.SliceStable(batch, func(i, j int) bool {
		if batch[i].Priority != batch[j].Priority {
			return batch[i].Priority < batch[j].Priority
		}
		return coll.CompareString(batch[i].Name, batch[j].Name) < 0
	})
}
