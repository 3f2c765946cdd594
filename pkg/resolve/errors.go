package resolve

import "errors"

var (
	ErrInvalidPath = errors.New("invalid path")
	ErrHidden      = errors.New("hidden path")
	ErrOutsideRoot = errors.New("path resolves outside root")
	ErrNotFound    = errors.New("not found")
)
