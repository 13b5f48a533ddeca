// SPDX-License-Identifier: MIT

// Package player decides what is shown: which stream plays, when a
// previously chosen stream is re-selected after going live, and which UI
// affordances (flash, chime, countdown) fire. Rendering itself happens
// behind the Sink boundary.
package player

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ytwall/ytwall/internal/catalog"
	"github.com/ytwall/ytwall/internal/log"
)

// visibleWindow is how far around now an entry's start time may lie for its
// button to be shown.
const visibleWindow = 60 * time.Minute

// Sink is the presentation-layer boundary the selector drives. The core
// does not know how these are rendered.
type Sink interface {
	StartPlayback(e catalog.Entry)
	StopPlayback()
	SetVolume(v float64)
	Chime()
	Flash(id string)
	Countdown(id, display string)
}

// Selector reacts to catalog state. It implements the manager's notifier
// boundary (CatalogReady, Refreshed).
type Selector struct {
	mu         sync.Mutex
	sink       Sink
	entries    []catalog.Entry
	selectedID string
	// selectedLive tracks whether the current selection is in media
	// playback, as opposed to showing a countdown.
	selectedLive bool
	newlyLive    map[string]bool // diff set of the latest refresh
	volume       float64
	now          func() time.Time
	tick         time.Duration // countdown period, 1s outside tests
	cancelCount  context.CancelFunc
	logger       zerolog.Logger
}

// NewSelector creates a selector driving the given sink.
func NewSelector(sink Sink) *Selector {
	return &Selector{
		sink:      sink,
		newlyLive: map[string]bool{},
		volume:    1.0,
		now:       time.Now,
		tick:      time.Second,
		logger:    log.WithComponent("player"),
	}
}

// CatalogReady replaces the catalog. If nothing is selected yet, the
// highest-priority live stream is selected automatically.
func (s *Selector) CatalogReady(entries []catalog.Entry) {
	s.mu.Lock()
	s.entries = entries
	if s.selectedID != "" {
		s.mu.Unlock()
		return
	}
	for _, e := range entries {
		if e.Live {
			s.startLiveLocked(e, false)
			s.mu.Unlock()
			return
		}
	}
	s.mu.Unlock()
}

// Refreshed consumes a refresh cycle's diff set. If the current selection
// was not live and just transitioned, it is automatically re-selected for
// playback, with chime and flash.
func (s *Selector) Refreshed(newlyLive []string, entries []catalog.Entry) {
	s.mu.Lock()
	s.entries = entries
	s.newlyLive = make(map[string]bool, len(newlyLive))
	for _, id := range newlyLive {
		s.newlyLive[id] = true
	}

	if s.selectedID == "" || s.selectedLive || !s.newlyLive[s.selectedID] {
		s.mu.Unlock()
		return
	}
	e, ok := s.findLocked(s.selectedID)
	if !ok {
		s.mu.Unlock()
		return
	}
	s.logger.Info().
		Str("event", "player.auto_reselect").
		Str("id", e.ID).
		Msg("selected stream went live, restarting playback")
	s.startLiveLocked(e, true)
	s.mu.Unlock()
}

// Select toggles the entry: selecting the already-playing entry stops
// playback; selecting a live entry starts it (with chime and flash if the
// entry was just confirmed live); selecting a not-yet-live entry shows a
// countdown instead of media playback.
func (s *Selector) Select(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id == s.selectedID {
		s.stopLocked()
		return nil
	}

	e, ok := s.findLocked(id)
	if !ok {
		return fmt.Errorf("player: unknown entry %q", id)
	}

	if e.Live {
		s.startLiveLocked(e, s.newlyLive[e.ID])
		return nil
	}
	s.startCountdownLocked(e)
	return nil
}

// Stop stops playback and clears the selection.
func (s *Selector) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

// Selected returns the currently selected entry id, if any.
func (s *Selector) Selected() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectedID, s.selectedID != ""
}

// VisibleButtons returns the entries whose buttons are shown: live ones,
// plus those starting within an hour either side of now.
func (s *Selector) VisibleButtons() []catalog.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	out := make([]catalog.Entry, 0, len(s.entries))
	for _, e := range s.entries {
		if e.Live || e.StartsWithin(now, visibleWindow) {
			out = append(out, e)
		}
	}
	return out
}

// SetVolume clamps v to [0,1] and applies it to the active playback
// instance immediately; the next-started instance picks it up otherwise.
// Authorization is enforced at the HTTP boundary.
func (s *Selector) SetVolume(v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v < 0 {
		v = 0
	} else if v > 1 {
		v = 1
	}
	s.volume = v
	s.sink.SetVolume(v)
}

// Volume returns the process-wide volume scalar.
func (s *Selector) Volume() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.volume
}

func (s *Selector) findLocked(id string) (catalog.Entry, bool) {
	for _, e := range s.entries {
		if e.ID == id {
			return e, true
		}
	}
	return catalog.Entry{}, false
}

func (s *Selector) startLiveLocked(e catalog.Entry, announce bool) {
	s.cancelCountdownLocked()
	s.selectedID = e.ID
	s.selectedLive = true
	s.sink.SetVolume(s.volume)
	s.sink.StartPlayback(e)
	if announce {
		s.sink.Chime()
		s.sink.Flash(e.ID)
	}
}

func (s *Selector) stopLocked() {
	s.cancelCountdownLocked()
	if s.selectedID != "" && s.selectedLive {
		s.sink.StopPlayback()
	}
	s.selectedID = ""
	s.selectedLive = false
}

// startCountdownLocked selects the entry without media playback and runs an
// explicit repeating task that recomputes the remaining time once per tick.
func (s *Selector) startCountdownLocked(e catalog.Entry) {
	s.cancelCountdownLocked()
	if s.selectedID != "" && s.selectedLive {
		s.sink.StopPlayback()
	}
	s.selectedID = e.ID
	s.selectedLive = false

	ctx, cancel := context.WithCancel(context.Background())
	s.cancelCount = cancel

	var start time.Time
	if e.StartTime != nil {
		start = time.UnixMilli(*e.StartTime)
	}

	emit := func() {
		s.sink.Countdown(e.ID, FormatCountdown(start.Sub(s.now())))
	}
	emit()

	go func() {
		ticker := time.NewTicker(s.tick)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				emit()
			}
		}
	}()
}

func (s *Selector) cancelCountdownLocked() {
	if s.cancelCount != nil {
		s.cancelCount()
		s.cancelCount = nil
	}
}

// FormatCountdown renders a remaining duration as H:MM:SS. Elapsed or
// unknown start times render as 0:00:00.
func FormatCountdown(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Second)
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	sec := (d % time.Minute) / time.Second
	return fmt.Sprintf("%d:%02d:%02d", h, m, sec)
}
