package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/mfreeman451/zserve/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	database, err := New(filepath.Join(t.TempDir(), "access.db"))
	require.NoError(t, err)

	t.Cleanup(func() { _ = database.Close() })

	return database
}

func record(path string, status int, at time.Time) *models.AccessRecord {
	return &models.AccessRecord{
		Timestamp:  at,
		RequestID:  "req-" + path,
		Method:     "GET",
		Path:       path,
		Status:     status,
		Bytes:      100,
		Duration:   3 * time.Millisecond,
		RemoteAddr: "127.0.0.1",
		UserAgent:  "test",
		Class:      models.ClassFile,
	}
}

func TestInsertAndRecentAccess(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, database.InsertAccess(ctx, record("/a", 200, now.Add(-2*time.Minute))))
	require.NoError(t, database.InsertAccess(ctx, record("/b", 404, now.Add(-time.Minute))))
	require.NoError(t, database.InsertAccess(ctx, record("/c", 200, now)))

	recs, err := database.RecentAccess(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, "/c", recs[0].Path)
	assert.Equal(t, "/b", recs[1].Path)
	assert.Equal(t, 404, recs[1].Status)
	assert.Equal(t, 3*time.Millisecond, recs[0].Duration)
	assert.Equal(t, now.UnixNano(), recs[0].Timestamp.UnixNano())
	assert.NotZero(t, recs[0].ID)
}

func TestAccessByPath(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()
	now := time.Now()

	batch := []*models.AccessRecord{
		record("/docs/", 200, now.Add(-3*time.Second)),
		record("/other", 200, now.Add(-2*time.Second)),
		record("/docs/", 304, now.Add(-time.Second)),
	}
	require.NoError(t, database.InsertAccessBatch(ctx, batch))

	recs, err := database.AccessByPath(ctx, "/docs/", 10)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, 304, recs[0].Status)
	assert.Equal(t, 200, recs[1].Status)

	recs, err = database.AccessByPath(ctx, "/missing", 10)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestTopPaths(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()
	now := time.Now()

	batch := []*models.AccessRecord{
		record("/old", 200, now.Add(-48*time.Hour)),
		record("/old", 200, now.Add(-48*time.Hour)),
		record("/old", 200, now.Add(-48*time.Hour)),
		record("/b", 200, now.Add(-time.Minute)),
		record("/a", 200, now.Add(-time.Minute)),
		record("/a", 200, now),
	}
	require.NoError(t, database.InsertAccessBatch(ctx, batch))

	top, err := database.TopPaths(ctx, now.Add(-time.Hour), 10)
	require.NoError(t, err)

	assert.Equal(t, []models.PathCount{
		{Path: "/a", Count: 2, Bytes: 200},
		{Path: "/b", Count: 1, Bytes: 100},
	}, top)

	top, err = database.TopPaths(ctx, now.Add(-72*time.Hour), 1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, "/old", top[0].Path)
}

func TestCleanOldData(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, database.InsertAccessBatch(ctx, []*models.AccessRecord{
		record("/stale", 200, now.Add(-10*24*time.Hour)),
		record("/fresh", 200, now),
	}))

	deleted, err := database.CleanOldData(ctx, 7*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	recs, err := database.RecentAccess(ctx, 0)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "/fresh", recs[0].Path)
}

func TestInsertAccessBatchEmpty(t *testing.T) {
	database := newTestDB(t)

	assert.NoError(t, database.InsertAccessBatch(context.Background(), nil))
}

func TestClampLimit(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{in: 0, want: maxQueryLimit},
		{in: -3, want: maxQueryLimit},
		{in: 25, want: 25},
		{in: maxQueryLimit + 1, want: maxQueryLimit},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, clampLimit(tt.in))
	}
}
