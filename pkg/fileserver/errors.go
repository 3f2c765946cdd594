package fileserver

import "errors"

var (
	ErrListingDisabled = errors.New("directory listing disabled")
	ErrOutsideBase     = errors.New("path outside base path")
	ErrNotDirectory    = errors.New("not a directory")
)
