// SPDX-License-Identifier: MIT

package youtube

// Event type accepted by Search.
const (
	EventLive     = "live"
	EventUpcoming = "upcoming"
)

// Values of the liveBroadcastContent field.
const (
	BroadcastLive     = "live"
	BroadcastUpcoming = "upcoming"
	BroadcastNone     = "none"
)

// SearchResult is one video returned by a channel search.
type SearchResult struct {
	ID               string
	Title            string
	ThumbnailURL     string
	BroadcastContent string // "live", "upcoming" or "none"
}

// VideoDetails is the current snippet + live-streaming state of a known video.
type VideoDetails struct {
	ID                 string
	Title              string
	BroadcastContent   string
	ActualStartTime    string // RFC 3339, empty if the broadcast has not started
	ScheduledStartTime string // RFC 3339, empty if unscheduled
}

// Wire formats. Only the consumed fields are declared.

type searchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet wireSnippet `json:"snippet"`
	} `json:"items"`
}

type videosResponse struct {
	Items []struct {
		ID                   string      `json:"id"`
		Snippet              wireSnippet `json:"snippet"`
		LiveStreamingDetails struct {
			ActualStartTime    string `json:"actualStartTime"`
			ScheduledStartTime string `json:"scheduledStartTime"`
		} `json:"liveStreamingDetails"`
	} `json:"items"`
}

type wireSnippet struct {
	Title                string `json:"title"`
	LiveBroadcastContent string `json:"liveBroadcastContent"`
	Thumbnails           struct {
		High struct {
			URL string `json:"url"`
		} `json:"high"`
	} `json:"thumbnails"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}
