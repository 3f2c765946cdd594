// Package db pkg/db/interfaces.go
package db

import (
	"context"
	"time"

	"github.com/mfreeman451/zserve/pkg/models"
)

//go:generate mockgen -destination=mock_db.go -package=db github.com/mfreeman451/zserve/pkg/db Service

// Service represents all access log database operations.
type Service interface {
	// Write operations.

	InsertAccess(ctx context.Context, rec *models.AccessRecord) error
	InsertAccessBatch(ctx context.Context, recs []*models.AccessRecord) error

	// Query operations.

	RecentAccess(ctx context.Context, limit int) ([]models.AccessRecord, error)
	AccessByPath(ctx context.Context, path string, limit int) ([]models.AccessRecord, error)
	TopPaths(ctx context.Context, since time.Time, limit int) ([]models.PathCount, error)

	// Maintenance operations.

	CleanOldData(ctx context.Context, retentionPeriod time.Duration) (int64, error)
	Close() error
}
