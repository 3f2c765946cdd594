package models

import "time"

// AccessRecord is one completed HTTP request.
type AccessRecord struct {
	ID         int64         `json:"id,omitempty"`
	Timestamp  time.Time     `json:"timestamp"`
	RequestID  string        `json:"request_id"`
	Method     string        `json:"method"`
	Path       string        `json:"path"`
	Status     int           `json:"status"`
	Bytes      int64         `json:"bytes"`
	Duration   time.Duration `json:"duration"`
	RemoteAddr string        `json:"remote_addr"`
	UserAgent  string        `json:"user_agent"`
	Class      string        `json:"class"`
}

// PathCount aggregates access records by request path.
type PathCount struct {
	Path  string `json:"path"`
	Count int64  `json:"count"`
	Bytes int64  `json:"bytes"`
}
