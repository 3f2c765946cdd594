package core

import "errors"

var (
	errNilConfig    = errors.New("server config is nil")
	errResolverInit = errors.New("failed to initialize resolver")
	errStoreInit    = errors.New("failed to open access log store")
	errSiteLoad     = errors.New("failed to load documentation site")
)
