// SPDX-License-Identifier: MIT

package youtube

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
)

// MockVideo is one canned video in a MockServer.
type MockVideo struct {
	ID                 string
	ChannelID          string
	Title              string
	ThumbnailURL       string
	BroadcastContent   string
	ActualStartTime    string
	ScheduledStartTime string
}

// MockServer provides a configurable query API mock for testing.
type MockServer struct {
	*httptest.Server
	mu       sync.RWMutex
	videos   []MockVideo
	failures map[string]int // remaining failures per endpoint
	requests map[string]int // request count per endpoint
}

// NewMockServer creates a mock API server with no data.
func NewMockServer() *MockServer {
	mock := &MockServer{
		failures: make(map[string]int),
		requests: make(map[string]int),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/search", mock.handleSearch)
	mux.HandleFunc("/videos", mock.handleVideos)

	mock.Server = httptest.NewServer(mux)
	return mock
}

// AddVideo registers a canned video.
func (m *MockServer) AddVideo(v MockVideo) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.videos = append(m.videos, v)
}

// SetVideo replaces the canned video with the same id, or adds it.
func (m *MockServer) SetVideo(v MockVideo) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.videos {
		if m.videos[i].ID == v.ID {
			m.videos[i] = v
			return
		}
	}
	m.videos = append(m.videos, v)
}

// FailNext makes the next n requests to the endpoint return HTTP 500.
func (m *MockServer) FailNext(endpoint string, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[endpoint] = n
}

// Requests returns how many requests the endpoint has served.
func (m *MockServer) Requests(endpoint string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.requests[endpoint]
}

func (m *MockServer) shouldFail(endpoint string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests[endpoint]++
	if m.failures[endpoint] > 0 {
		m.failures[endpoint]--
		return true
	}
	return false
}

func (m *MockServer) handleSearch(w http.ResponseWriter, r *http.Request) {
	if m.shouldFail("search") {
		http.Error(w, `{"error":{"code":500,"message":"backend error"}}`, http.StatusInternalServerError)
		return
	}

	channelID := r.URL.Query().Get("channelId")
	eventType := r.URL.Query().Get("eventType")

	m.mu.RLock()
	defer m.mu.RUnlock()

	var resp searchResponse
	for _, v := range m.videos {
		if v.ChannelID != channelID || v.BroadcastContent != eventType {
			continue
		}
		if len(resp.Items) == searchCap {
			break
		}
		item := struct {
			ID struct {
				VideoID string `json:"videoId"`
			} `json:"id"`
			Snippet wireSnippet `json:"snippet"`
		}{}
		item.ID.VideoID = v.ID
		item.Snippet = v.snippet()
		resp.Items = append(resp.Items, item)
	}
	writeJSON(w, resp)
}

func (m *MockServer) handleVideos(w http.ResponseWriter, r *http.Request) {
	if m.shouldFail("videos") {
		http.Error(w, `{"error":{"code":500,"message":"backend error"}}`, http.StatusInternalServerError)
		return
	}

	wanted := map[string]bool{}
	for _, id := range strings.Split(r.URL.Query().Get("id"), ",") {
		wanted[id] = true
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var resp videosResponse
	for _, v := range m.videos {
		if !wanted[v.ID] {
			continue
		}
		item := struct {
			ID                   string      `json:"id"`
			Snippet              wireSnippet `json:"snippet"`
			LiveStreamingDetails struct {
				ActualStartTime    string `json:"actualStartTime"`
				ScheduledStartTime string `json:"scheduledStartTime"`
			} `json:"liveStreamingDetails"`
		}{}
		item.ID = v.ID
		item.Snippet = v.snippet()
		item.LiveStreamingDetails.ActualStartTime = v.ActualStartTime
		item.LiveStreamingDetails.ScheduledStartTime = v.ScheduledStartTime
		resp.Items = append(resp.Items, item)
	}
	writeJSON(w, resp)
}

func (v MockVideo) snippet() wireSnippet {
	var s wireSnippet
	s.Title = v.Title
	s.LiveBroadcastContent = v.BroadcastContent
	s.Thumbnails.High.URL = v.ThumbnailURL
	return s
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
