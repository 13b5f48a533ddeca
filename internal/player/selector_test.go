// SPDX-License-Identifier: MIT

package player

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ytwall/ytwall/internal/catalog"
)

// fakeSink records sink calls.
type fakeSink struct {
	mu         sync.Mutex
	started    []string
	stopped    int
	volumes    []float64
	chimes     int
	flashes    []string
	countdowns []string
}

func (f *fakeSink) StartPlayback(e catalog.Entry) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started = append(f.started, e.ID)
}

func (f *fakeSink) StopPlayback() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped++
}

func (f *fakeSink) SetVolume(v float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.volumes = append(f.volumes, v)
}

func (f *fakeSink) Chime() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.chimes++
}

func (f *fakeSink) Flash(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flashes = append(f.flashes, id)
}

func (f *fakeSink) Countdown(id, display string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.countdowns = append(f.countdowns, id+"/"+display)
}

func (f *fakeSink) countdownCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.countdowns)
}

func fixedNow() time.Time {
	return time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
}

func startAt(offset time.Duration) *int64 {
	ms := fixedNow().Add(offset).UnixMilli()
	return &ms
}

func newTestSelector(entries []catalog.Entry) (*fakeSink, *Selector) {
	sink := &fakeSink{}
	s := NewSelector(sink)
	s.now = fixedNow
	s.entries = entries
	return sink, s
}

func TestCatalogReady_AutoSelectsFirstLive(t *testing.T) {
	sink, s := newTestSelector(nil)

	s.CatalogReady([]catalog.Entry{
		{Index: 0, ID: "upcoming", Name: "Later"},
		{Index: 1, ID: "live-1", Name: "Now", Live: true},
		{Index: 2, ID: "live-2", Name: "Also Now", Live: true},
	})

	assert.Equal(t, []string{"live-1"}, sink.started, "first live entry is highest priority")
	assert.Zero(t, sink.chimes, "initial selection is silent")
}

func TestCatalogReady_KeepsExistingSelection(t *testing.T) {
	sink, s := newTestSelector([]catalog.Entry{{ID: "a", Live: true}})
	require.NoError(t, s.Select("a"))

	s.CatalogReady([]catalog.Entry{
		{ID: "a", Live: true},
		{ID: "b", Live: true},
	})
	assert.Equal(t, []string{"a"}, sink.started)
}

func TestSelect_ToggleStops(t *testing.T) {
	sink, s := newTestSelector([]catalog.Entry{{ID: "a", Live: true}})

	require.NoError(t, s.Select("a"))
	assert.Equal(t, []string{"a"}, sink.started)

	// Selecting the already-playing entry stops playback.
	require.NoError(t, s.Select("a"))
	assert.Equal(t, 1, sink.stopped)

	_, selected := s.Selected()
	assert.False(t, selected)
}

func TestSelect_UnknownEntry(t *testing.T) {
	_, s := newTestSelector(nil)
	assert.Error(t, s.Select("ghost"))
}

func TestSelect_NewlyLiveEntryChimesAndFlashes(t *testing.T) {
	sink, s := newTestSelector(nil)

	s.Refreshed([]string{"fresh"}, []catalog.Entry{
		{ID: "fresh", Live: true},
		{ID: "old", Live: true},
	})

	require.NoError(t, s.Select("old"))
	assert.Zero(t, sink.chimes, "long-live entries select silently")

	require.NoError(t, s.Select("fresh"))
	assert.Equal(t, 1, sink.chimes)
	assert.Equal(t, []string{"fresh"}, sink.flashes)
}

func TestRefreshed_AutoReselectsSelectedEntry(t *testing.T) {
	entries := []catalog.Entry{
		{ID: "42", Name: "Launch", StartTime: startAt(10 * time.Minute)},
	}
	sink, s := newTestSelector(entries)

	// Selecting a not-yet-live entry shows a countdown, no playback.
	require.NoError(t, s.Select("42"))
	assert.Empty(t, sink.started)
	assert.Equal(t, 1, sink.countdownCount())

	// Refresh reports 42 transitioning false→true while selected.
	live := entries[0]
	live.Live = true
	s.Refreshed([]string{"42"}, []catalog.Entry{live})

	assert.Equal(t, []string{"42"}, sink.started, "selector auto-starts playback")
	assert.Equal(t, 1, sink.chimes)
	assert.Equal(t, []string{"42"}, sink.flashes)
	s.Stop()
}

func TestRefreshed_NoReselectWhileAlreadyPlaying(t *testing.T) {
	sink, s := newTestSelector([]catalog.Entry{{ID: "a", Live: true}})
	require.NoError(t, s.Select("a"))

	s.Refreshed([]string{"a"}, []catalog.Entry{{ID: "a", Live: true}})
	assert.Equal(t, []string{"a"}, sink.started, "no restart for an already-playing entry")
}

func TestCountdown_TicksAndCancels(t *testing.T) {
	entries := []catalog.Entry{{ID: "c", StartTime: startAt(time.Hour)}}
	sink, s := newTestSelector(entries)
	s.tick = 5 * time.Millisecond

	require.NoError(t, s.Select("c"))
	assert.Eventually(t, func() bool { return sink.countdownCount() >= 3 },
		time.Second, time.Millisecond, "countdown emits repeatedly")

	s.Stop()
	n := sink.countdownCount()
	time.Sleep(30 * time.Millisecond)
	assert.LessOrEqual(t, sink.countdownCount(), n+1, "countdown stops after cancel")
}

func TestVisibleButtons(t *testing.T) {
	_, s := newTestSelector([]catalog.Entry{
		{ID: "live", Live: true},
		{ID: "soon", StartTime: startAt(45 * time.Minute)},
		{ID: "just-missed", StartTime: startAt(-30 * time.Minute)},
		{ID: "far", StartTime: startAt(3 * time.Hour)},
		{ID: "unscheduled"},
	})

	visible := s.VisibleButtons()
	ids := make([]string, 0, len(visible))
	for _, e := range visible {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []string{"live", "soon", "just-missed"}, ids)
}

func TestSetVolume_ClampsAndApplies(t *testing.T) {
	sink, s := newTestSelector([]catalog.Entry{{ID: "a", Live: true}})

	s.SetVolume(1.7)
	assert.Equal(t, 1.0, s.Volume())

	s.SetVolume(-2)
	assert.Equal(t, 0.0, s.Volume())

	s.SetVolume(0.35)
	require.NoError(t, s.Select("a"))

	// Applied on change and again for the newly started instance.
	assert.Equal(t, []float64{1, 0, 0.35, 0.35}, sink.volumes)
}

func TestFormatCountdown(t *testing.T) {
	assert.Equal(t, "1:05:09", FormatCountdown(time.Hour+5*time.Minute+9*time.Second))
	assert.Equal(t, "0:00:30", FormatCountdown(30*time.Second))
	assert.Equal(t, "12:00:00", FormatCountdown(12*time.Hour))
	assert.Equal(t, "0:00:00", FormatCountdown(-time.Minute))
}
