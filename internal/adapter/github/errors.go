package github

import (
	"encoding/json"
	"fmt"
)

// FetchError reports a non-success HTTP status during a paginated read.
// Fetches are never retried by the client: pages already collected are
// discarded and the enclosing operation aborts. The caller decides whether
// to retry the whole fetch.
type FetchError struct {
	StatusCode int
	URL        string
	Message    string
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("github: fetch %s failed: HTTP %d: %s", e.URL, e.StatusCode, e.Message)
}

// StatusError reports a non-success HTTP status from a single write call
// (reply or comment creation). It carries the raw response body so callers
// can assemble a ReplyError from two failed attempts.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("github: HTTP %d: %s", e.StatusCode, e.Body)
}

// ReplyError means both the thread-reply endpoint and the general-comment
// fallback were rejected.
type ReplyError struct {
	ThreadStatus  int
	CommentStatus int
	Body          string
}

func (e *ReplyError) Error() string {
	return fmt.Sprintf("github: reply failed: thread endpoint HTTP %d, comment fallback HTTP %d: %s",
		e.ThreadStatus, e.CommentStatus, e.Body)
}

// parseErrorMessage extracts a user-friendly message from GitHub's error
// envelope, falling back to a body preview for non-JSON responses.
func parseErrorMessage(statusCode int, body []byte) string {
	var errResp apiErrorResponse
	if err := json.Unmarshal(body, &errResp); err != nil || errResp.Message == "" {
		preview := string(body)
		if len(preview) > 100 {
			preview = preview[:100] + "..."
		}
		if preview == "" {
			return fmt.Sprintf("HTTP %d", statusCode)
		}
		return preview
	}
	return errResp.Message
}
