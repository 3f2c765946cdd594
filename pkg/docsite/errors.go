package docsite

import "errors"

var (
	ErrMissingTitle   = errors.New("site title is empty")
	ErrInvalidBase    = errors.New("site base must start and end with /")
	ErrInvalidOutline = errors.New("outline level out of range")
	ErrInvalidHead    = errors.New("head entry must be [tag, {attrs}]")
	ErrInvalidSidebar = errors.New("sidebar must be a list of groups or a map of prefix to groups")
	ErrEmptyLink      = errors.New("link text and target are required")
)
