// SPDX-License-Identifier: MIT

package catalog

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/ytwall/ytwall/internal/log"
	"github.com/ytwall/ytwall/internal/metrics"
	"github.com/ytwall/ytwall/internal/youtube"
)

// DetailsClient is the slice of the query API the refresher needs.
type DetailsClient interface {
	VideoDetails(ctx context.Context, ids []string) ([]youtube.VideoDetails, error)
}

// Refresher re-polls the current live state of known entries and reports
// which ones transitioned from not-live to live.
type Refresher struct {
	client DetailsClient
	logger zerolog.Logger
}

// NewRefresher creates a live-status refresher.
func NewRefresher(client DetailsClient) *Refresher {
	return &Refresher{
		client: client,
		logger: log.WithComponent("catalog.refresh"),
	}
}

// Refresh issues one batched query for all non-manual entries and mutates
// them in place with fresh name, live and start-time values. Order and
// indexes are preserved. The returned diff set holds the ids whose live
// flag flipped from false to true.
//
// On query failure the error is logged, no entry is touched and the diff
// set is empty: stale-but-present state is always preferred over partial
// corruption.
func (r *Refresher) Refresh(ctx context.Context, entries []Entry) []string {
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.ManuallyAdded {
			ids = append(ids, e.ID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	details, err := r.client.VideoDetails(ctx, ids)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("event", "refresh.query_failed").
			Int("ids", len(ids)).
			Msg("live-status query failed, keeping prior state")
		metrics.RefreshTotal.WithLabelValues("error").Inc()
		return nil
	}

	byID := make(map[string]youtube.VideoDetails, len(details))
	for _, d := range details {
		byID[d.ID] = d
	}

	var newlyLive []string
	for i := range entries {
		e := &entries[i]
		if e.ManuallyAdded {
			continue
		}
		d, ok := byID[e.ID]
		if !ok {
			// Partial upstream data: leave the entry as it was.
			continue
		}

		live := d.BroadcastContent == youtube.BroadcastLive
		if !e.Live && live {
			newlyLive = append(newlyLive, e.ID)
		}
		e.ApplyStatus(StatusUpdate{
			Name:      d.Title,
			Live:      live,
			StartTime: startTime(d),
		})
	}

	metrics.RefreshTotal.WithLabelValues("ok").Inc()
	metrics.NewlyLiveTotal.Add(float64(len(newlyLive)))
	r.logger.Info().
		Str("event", "refresh.done").
		Int("entries", len(ids)).
		Int("newly_live", len(newlyLive)).
		Msg("live status refreshed")
	return newlyLive
}

// startTime prefers the actual start over the scheduled one; both absent or
// unparseable yields nil.
func startTime(d youtube.VideoDetails) *int64 {
	for _, raw := range []string{d.ActualStartTime, d.ScheduledStartTime} {
		if raw == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			continue
		}
		ms := t.UnixMilli()
		return &ms
	}
	return nil
}
