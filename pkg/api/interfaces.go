package api

import (
	"github.com/mfreeman451/zserve/pkg/fileserver"
	"github.com/mfreeman451/zserve/pkg/models"
)

// FileLister returns directory listings relative to the served base path.
type FileLister interface {
	List(relPath string) (*fileserver.Listing, error)
}

// EventSource is a fan-out of completed requests.
type EventSource interface {
	Subscribe() (<-chan *models.AccessRecord, func())
	Clients() int
}
