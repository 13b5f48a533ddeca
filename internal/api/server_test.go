// SPDX-License-Identifier: MIT

package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ytwall/ytwall/internal/catalog"
	"github.com/ytwall/ytwall/internal/manager"
)

type fakeCatalog struct {
	entries   []catalog.Entry
	newlyLive []string
	forced    bool
	refreshed bool
}

func (f *fakeCatalog) State() manager.State { return manager.StateReady }

func (f *fakeCatalog) Entries() []catalog.Entry { return f.entries }

func (f *fakeCatalog) LiveVideos() []catalog.Entry {
	var out []catalog.Entry
	for _, e := range f.entries {
		if e.Live {
			out = append(out, e)
		}
	}
	return out
}

func (f *fakeCatalog) Initialize(context.Context, bool) error { f.forced = true; return nil }

func (f *fakeCatalog) Refresh(context.Context) ([]string, error) {
	f.refreshed = true
	return f.newlyLive, nil
}

type fakePlayback struct {
	selected string
	volume   float64
	stopped  bool
}

func (f *fakePlayback) Select(id string) error { f.selected = id; return nil }

func (f *fakePlayback) Stop() { f.stopped = true; f.selected = "" }

func (f *fakePlayback) Selected() (string, bool) { return f.selected, f.selected != "" }

func (f *fakePlayback) VisibleButtons() []catalog.Entry { return nil }

func (f *fakePlayback) SetVolume(v float64) { f.volume = v }

func (f *fakePlayback) Volume() float64 { return f.volume }

func newTestServer(t *testing.T, token string) (*fakeCatalog, *fakePlayback, *httptest.Server) {
	t.Helper()
	cat := &fakeCatalog{entries: []catalog.Entry{
		{Index: 0, ID: "a", Name: "Alpha", Live: true},
		{Index: 1, ID: "b", Name: "Beta"},
	}}
	playback := &fakePlayback{volume: 1}
	ts := httptest.NewServer(New(cat, playback, token).Handler())
	t.Cleanup(ts.Close)
	return cat, playback, ts
}

func TestVideos(t *testing.T) {
	_, _, ts := newTestServer(t, "")

	res, err := http.Get(ts.URL + "/api/videos")
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	var entries []catalog.Entry
	require.NoError(t, json.NewDecoder(res.Body).Decode(&entries))
	assert.Len(t, entries, 2)
}

func TestLiveVideos(t *testing.T) {
	_, _, ts := newTestServer(t, "")

	res, err := http.Get(ts.URL + "/api/videos/live")
	require.NoError(t, err)
	defer res.Body.Close()

	var entries []catalog.Entry
	require.NoError(t, json.NewDecoder(res.Body).Decode(&entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "a", entries[0].ID)
}

func TestRefresh(t *testing.T) {
	cat, _, ts := newTestServer(t, "")
	cat.newlyLive = []string{"b"}

	res, err := http.Post(ts.URL+"/api/refresh", "application/json", nil)
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	var body map[string][]string
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	assert.Equal(t, []string{"b"}, body["newlyLive"])
	assert.True(t, cat.refreshed)
	assert.False(t, cat.forced)
}

func TestRefresh_Forced(t *testing.T) {
	cat, _, ts := newTestServer(t, "")

	res, err := http.Post(ts.URL+"/api/refresh?force=true", "application/json", nil)
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.True(t, cat.forced)
}

func TestSelectAndDeselect(t *testing.T) {
	_, playback, ts := newTestServer(t, "")

	res, err := http.Post(ts.URL+"/api/select/a", "application/json", nil)
	require.NoError(t, err)
	res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "a", playback.selected)

	req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/api/select", nil)
	res, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	res.Body.Close()
	require.Equal(t, http.StatusNoContent, res.StatusCode)
	assert.True(t, playback.stopped)
}

func TestVolume_RequiresToken(t *testing.T) {
	_, playback, ts := newTestServer(t, "secret")

	body := strings.NewReader(`{"volume":0.5}`)
	req, _ := http.NewRequest(http.MethodPut, ts.URL+"/api/volume", body)
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	assert.Equal(t, 1.0, playback.volume)

	req, _ = http.NewRequest(http.MethodPut, ts.URL+"/api/volume", strings.NewReader(`{"volume":0.5}`))
	req.Header.Set("Authorization", "Bearer secret")
	res, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, 0.5, playback.volume)
}

func TestVolume_BadBody(t *testing.T) {
	_, _, ts := newTestServer(t, "")

	req, _ := http.NewRequest(http.MethodPut, ts.URL+"/api/volume", strings.NewReader(`{}`))
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestHealthz(t *testing.T) {
	_, _, ts := newTestServer(t, "")

	res, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	assert.Equal(t, "ready", body["state"])
}
