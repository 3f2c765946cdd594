package fileserver

import "github.com/mfreeman451/zserve/pkg/resolve"

// Resolver maps request paths onto the filesystem.
type Resolver interface {
	Resolve(urlPath string) (*resolve.Target, error)
}
