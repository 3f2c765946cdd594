package metrics

import (
	"github.com/mfreeman451/zserve/pkg/models"
)

// RequestStore holds the most recent request points of one route class.
type RequestStore interface {
	Add(point models.RequestPoint)
	GetPoints() []models.RequestPoint
	GetLastPoint() *models.RequestPoint
}

// Collector aggregates request points by route class.
type Collector interface {
	Record(class string, point models.RequestPoint)
	Points(class string) []models.RequestPoint
	Snapshot() []models.ClassStats
}
