// SPDX-License-Identifier: MIT

// Package youtube implements the client for the external video query API.
// The upstream is treated as untrusted and unreliable: any call may fail or
// return partial data, and callers are expected to degrade gracefully.
package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/ytwall/ytwall/internal/metrics"
)

const (
	defaultBaseURL = "https://www.googleapis.com/youtube/v3"

	// searchCap bounds each live/upcoming search to the most relevant hits.
	searchCap = 5
	// searchLanguage restricts search relevance to one content language.
	searchLanguage = "en"
	// videosChunk is the upstream's maximum id count per videos request.
	videosChunk = 50
)

// Client queries the video API. It is safe for concurrent use.
type Client struct {
	base    string
	apiKey  string
	http    *http.Client
	limiter *rate.Limiter
}

// Options configures optional client behaviour.
type Options struct {
	BaseURL string        // override the API base URL (tests)
	Timeout time.Duration // per-request timeout, default 30s
}

// New creates a client with the given API credential.
func New(apiKey string, opts Options) *Client {
	base := opts.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		base:   strings.TrimRight(base, "/"),
		apiKey: apiKey,
		http:   &http.Client{Timeout: timeout},
		// Spread requests out to stay inside the daily API quota.
		limiter: rate.NewLimiter(rate.Every(200*time.Millisecond), 5),
	}
}

// SearchEvents returns up to 5 live or upcoming videos for a channel,
// ordered by the upstream's own relevance ranking.
func (c *Client) SearchEvents(ctx context.Context, channelID, eventType string) ([]SearchResult, error) {
	if eventType != EventLive && eventType != EventUpcoming {
		return nil, fmt.Errorf("unknown event type %q", eventType)
	}

	q := url.Values{}
	q.Set("part", "snippet")
	q.Set("type", "video")
	q.Set("channelId", channelID)
	q.Set("eventType", eventType)
	q.Set("order", "relevance")
	q.Set("relevanceLanguage", searchLanguage)
	q.Set("maxResults", strconv.Itoa(searchCap))

	var payload searchResponse
	if err := c.get(ctx, "search", q, &payload); err != nil {
		return nil, err
	}

	out := make([]SearchResult, 0, len(payload.Items))
	for _, item := range payload.Items {
		if item.ID.VideoID == "" {
			continue
		}
		out = append(out, SearchResult{
			ID:               item.ID.VideoID,
			Title:            item.Snippet.Title,
			ThumbnailURL:     item.Snippet.Thumbnails.High.URL,
			BroadcastContent: item.Snippet.LiveBroadcastContent,
		})
	}
	return out, nil
}

// VideoDetails returns the current snippet and live-streaming details for
// the given video ids, preserving no particular order. Unknown ids are
// silently absent from the result.
func (c *Client) VideoDetails(ctx context.Context, ids []string) ([]VideoDetails, error) {
	out := make([]VideoDetails, 0, len(ids))
	for start := 0; start < len(ids); start += videosChunk {
		end := min(start+videosChunk, len(ids))

		q := url.Values{}
		q.Set("part", "snippet,liveStreamingDetails")
		q.Set("id", strings.Join(ids[start:end], ","))

		var payload videosResponse
		if err := c.get(ctx, "videos", q, &payload); err != nil {
			return nil, err
		}
		for _, item := range payload.Items {
			out = append(out, VideoDetails{
				ID:                 item.ID,
				Title:              item.Snippet.Title,
				BroadcastContent:   item.Snippet.LiveBroadcastContent,
				ActualStartTime:    item.LiveStreamingDetails.ActualStartTime,
				ScheduledStartTime: item.LiveStreamingDetails.ScheduledStartTime,
			})
		}
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, endpoint string, q url.Values, dst any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return &APIError{Sentinel: ErrUpstreamUnavailable, Operation: endpoint, Err: err}
	}

	q.Set("key", c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/"+endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return &APIError{Sentinel: ErrUpstreamBadResponse, Operation: endpoint, Err: err}
	}

	res, err := c.http.Do(req)
	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(endpoint, "transport_error").Inc()
		return &APIError{Sentinel: ErrUpstreamUnavailable, Operation: endpoint, Err: err}
	}
	defer res.Body.Close()

	metrics.UpstreamRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(res.StatusCode)).Inc()

	if res.StatusCode != http.StatusOK {
		var apiErr errorResponse
		_ = json.NewDecoder(res.Body).Decode(&apiErr)

		sentinel := ErrUpstreamError
		switch {
		case res.StatusCode == http.StatusForbidden || res.StatusCode == http.StatusTooManyRequests:
			sentinel = ErrQuotaExceeded
		case res.StatusCode >= 400 && res.StatusCode < 500:
			sentinel = ErrUpstreamBadResponse
		}
		return &APIError{
			Sentinel:  sentinel,
			Operation: endpoint,
			Status:    res.StatusCode,
			Message:   apiErr.Error.Message,
		}
	}

	if err := json.NewDecoder(res.Body).Decode(dst); err != nil {
		return &APIError{Sentinel: ErrUpstreamBadResponse, Operation: endpoint, Err: err}
	}
	return nil
}
