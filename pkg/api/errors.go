package api

import "errors"

var (
	errAccessLogDisabled = errors.New("access log is disabled")
	errInvalidLimit      = errors.New("limit must be a positive integer")
	errInvalidSince      = errors.New("since must be a duration like 1h or an RFC 3339 time")
	errListingDisabled   = errors.New("file listing is disabled")
	errNoSite            = errors.New("no documentation site configured")
)
