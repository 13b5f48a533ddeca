// SPDX-License-Identifier: MIT

// Package catalog builds and maintains the ordered set of known video
// entries: querying the upstream per channel, caching the result across
// restarts, and refreshing live status in place.
package catalog

import (
	"fmt"
	"hash/fnv"
	"net/url"
	"path"
	"strings"
	"time"
)

// Entry is one catalog row. Index is the stable display order within the
// current snapshot; it is assigned 0..N-1 after a full rebuild and never
// changes during an in-place status refresh.
type Entry struct {
	Index         int    `json:"index"`
	ID            string `json:"id"`
	URL           string `json:"url"`
	Name          string `json:"name"`
	ThumbnailURL  string `json:"thumbnailUrl,omitempty"`
	Live          bool   `json:"live"`
	StartTime     *int64 `json:"startTime"` // epoch millis, scheduled or actual
	Priority      int    `json:"priority"`
	ManuallyAdded bool   `json:"-"` // runtime-only, never persisted
}

// StatusUpdate is the whitelist of fields a live-status refresh may mutate.
// Index, priority and the manual flag are deliberately not representable
// here, so a refresh can never clobber them.
type StatusUpdate struct {
	Name      string
	Live      bool
	StartTime *int64
}

// ApplyStatus mutates the entry in place with fresh upstream state.
func (e *Entry) ApplyStatus(u StatusUpdate) {
	if u.Name != "" {
		e.Name = u.Name
	}
	e.Live = u.Live
	e.StartTime = u.StartTime
}

// StartsWithin reports whether the entry's start time falls within d of now,
// in either direction. Entries without a start time never match.
func (e *Entry) StartsWithin(now time.Time, d time.Duration) bool {
	if e.StartTime == nil {
		return false
	}
	start := time.UnixMilli(*e.StartTime)
	diff := start.Sub(now)
	if diff < 0 {
		diff = -diff
	}
	return diff <= d
}

// videoURL is the scheme-qualified address of a queried entry.
func videoURL(id string) string {
	return "youtube://" + id
}

// ManualEntries converts operator-configured stream URLs into catalog
// entries. Manual entries are always treated as currently live, are never
// persisted, and are excluded from the upstream refresh query. Ids are
// derived from the URL so they stay stable across restarts.
func ManualEntries(urls []string) []Entry {
	out := make([]Entry, 0, len(urls))
	for _, raw := range urls {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		out = append(out, Entry{
			ID:            manualID(raw),
			URL:           raw,
			Name:          manualName(raw),
			Live:          true,
			ManuallyAdded: true,
		})
	}
	return out
}

func manualID(rawURL string) string {
	h := fnv.New32a()
	h.Write([]byte(rawURL))
	return fmt.Sprintf("manual-%08x", h.Sum32())
}

// manualName derives a display name from the URL: the last path segment
// without extension, or the host as a fallback.
func manualName(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	base := path.Base(u.Path)
	if ext := path.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	if base == "" || base == "/" || base == "." {
		return u.Host
	}
	return base
}
