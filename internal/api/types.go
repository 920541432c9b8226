package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// QueueItem describes a queue entry in a transport-friendly format. The
// per-job access token pair is deliberately absent.
type QueueItem struct {
	ID           int64         `json:"id"`
	ClientID     string        `json:"clientId"`
	VideoURL     string        `json:"videoUrl"`
	TweetText    string        `json:"tweetText"`
	Status       string        `json:"status"`
	Progress     QueueProgress `json:"progress"`
	ErrorMessage string        `json:"errorMessage,omitempty"`
	Attempts     int           `json:"attempts"`
	TrimStart    float64       `json:"trimStart"`
	TrimDuration float64       `json:"trimDuration"`
	SourceFile   string        `json:"sourceFile,omitempty"`
	TrimmedFile  string        `json:"trimmedFile,omitempty"`
	MediaID      string        `json:"mediaId,omitempty"`
	TweetID      string        `json:"tweetId,omitempty"`
	CreatedAt    string        `json:"createdAt,omitempty"`
	UpdatedAt    string        `json:"updatedAt,omitempty"`
}

// QueueProgress captures stage progress information for a queue entry.
type QueueProgress struct {
	Stage   string  `json:"stage"`
	Percent float64 `json:"percent"`
	Message string  `json:"message"`
}

// StageHealth mirrors readiness reporting for workflow stages.
type StageHealth struct {
	Name   string `json:"name"`
	Ready  bool   `json:"ready"`
	Detail string `json:"detail,omitempty"`
}

// QueueStatsResponse provides a normalized queue stats payload.
type QueueStatsResponse struct {
	Counts map[string]int `json:"counts"`
}

// QueueListResponse wraps a collection of queue items for API responses.
type QueueListResponse struct {
	Items []QueueItem `json:"items"`
}
