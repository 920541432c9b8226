package twitter

import (
	"fmt"
	"strings"
)

// APIError carries the remote response for a failed platform request.
type APIError struct {
	Operation  string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("twitter %s: status %d", e.Operation, e.StatusCode)
	}
	return fmt.Sprintf("twitter %s: status %d: %s", e.Operation, e.StatusCode, body)
}

// Temporary reports whether the failure is worth retrying from scratch.
func (e *APIError) Temporary() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}

// ProcessingError reports that the platform rejected an upload after
// finalization, carrying the remote processing detail.
type ProcessingError struct {
	MediaID string
	State   string
	Code    int
	Name    string
	Message string
}

func (e *ProcessingError) Error() string {
	detail := e.Message
	if detail == "" {
		detail = e.Name
	}
	if detail == "" {
		return fmt.Sprintf("media %s processing %s", e.MediaID, e.State)
	}
	return fmt.Sprintf("media %s processing %s: %s", e.MediaID, e.State, detail)
}
