// Package models pkg/models/metrics.go
package models

import "time"

// RequestPoint is a single served request as seen by the metrics buffers.
type RequestPoint struct {
	Timestamp time.Time     `json:"timestamp"`
	Duration  time.Duration `json:"duration"`
	Status    int           `json:"status"`
	Bytes     int64         `json:"bytes"`
}

// ClassStats summarizes the points held for one route class.
type ClassStats struct {
	Class    string         `json:"class"`
	Count    int            `json:"count"`
	Bytes    int64          `json:"bytes"`
	P50      time.Duration  `json:"p50"`
	P95      time.Duration  `json:"p95"`
	Max      time.Duration  `json:"max"`
	Statuses map[string]int `json:"statuses"` // "2xx", "3xx", ...
}

// Route classes used to bucket request metrics.
const (
	ClassFile    = "file"
	ClassListing = "listing"
	ClassAPI     = "api"
	ClassError   = "error"
)
