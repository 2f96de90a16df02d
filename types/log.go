package types

import "time"

// LogEntry is one HTTP exchange captured on the request path and handed to
// the asynchronous writer. Bodies arrive already sanitized.
type LogEntry struct {
	ID              uint
	Method          string
	URL             string
	RequestBody     string
	ResponseBody    string
	RequestHeaders  string
	ResponseHeaders string
	StatusCode      int
	CreatedAt       time.Time
}
