package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mfreeman451/zserve/pkg/db"
	"github.com/mfreeman451/zserve/pkg/docsite"
	"github.com/mfreeman451/zserve/pkg/fileserver"
	"github.com/mfreeman451/zserve/pkg/metrics"
	"github.com/mfreeman451/zserve/pkg/models"
	"github.com/mfreeman451/zserve/pkg/resolve"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type fakeLister struct {
	listings map[string]*fileserver.Listing
	err      error
}

func (f *fakeLister) List(relPath string) (*fileserver.Listing, error) {
	if f.err != nil {
		return nil, f.err
	}

	l, ok := f.listings[relPath]
	if !ok {
		return nil, resolve.ErrNotFound
	}

	return l, nil
}

func do(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(method, target, http.NoBody))

	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()

	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), v))
}

func TestHealth(t *testing.T) {
	s := NewAPIServer("/_api/")
	assert.Equal(t, "/_api", s.Prefix())

	rr := do(t, s, http.MethodGet, "/_api/health")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp HealthResponse
	decode(t, rr, &resp)
	assert.Equal(t, "ok", resp.Status)

	rr = do(t, s, http.MethodPost, "/_api/health")
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)

	rr = do(t, s, http.MethodGet, "/_api/nope")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestMethodNotAllowed(t *testing.T) {
	s := NewAPIServer("/_api")

	for _, target := range []string{"/_api/health", "/_api/stats", "/_api/requests/top", "/_api/site/check"} {
		t.Run(target, func(t *testing.T) {
			rr := do(t, s, http.MethodPost, target)
			require.Equal(t, http.StatusMethodNotAllowed, rr.Code)

			var resp errorResponse
			decode(t, rr, &resp)
			assert.Equal(t, "method not allowed", resp.Error)
		})
	}
}

func TestStats(t *testing.T) {
	m := metrics.NewManager(metrics.Config{Enabled: true, Retention: 10})
	m.Record(models.ClassFile, models.RequestPoint{Timestamp: time.Now(), Duration: time.Millisecond, Status: 200, Bytes: 10})

	hub := NewHub(1)
	_, cancel := hub.Subscribe()
	defer cancel()

	s := NewAPIServer("/_api", WithMetrics(m), WithEvents(hub))

	rr := do(t, s, http.MethodGet, "/_api/stats")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp StatsResponse
	decode(t, rr, &resp)
	require.Len(t, resp.Classes, 1)
	assert.Equal(t, models.ClassFile, resp.Classes[0].Class)
	assert.Equal(t, 1, resp.Classes[0].Count)
	assert.Equal(t, 1, resp.EventClients)
}

func TestStatsWithoutMetrics(t *testing.T) {
	rr := do(t, NewAPIServer("/_api"), http.MethodGet, "/_api/stats")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"classes":[]`)
}

func TestFiles(t *testing.T) {
	lister := &fakeLister{listings: map[string]*fileserver.Listing{
		"/":     {Path: "/", Entries: []fileserver.Entry{{Name: "docs", URL: "/docs/", IsDir: true}}},
		"/docs": {Path: "/docs/", Parent: "/"},
	}}
	s := NewAPIServer("/_api", WithFiles(lister))

	rr := do(t, s, http.MethodGet, "/_api/files")
	require.Equal(t, http.StatusOK, rr.Code)

	var listing fileserver.Listing
	decode(t, rr, &listing)
	require.Len(t, listing.Entries, 1)
	assert.Equal(t, "docs", listing.Entries[0].Name)

	rr = do(t, s, http.MethodGet, "/_api/files?path=/docs")
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = do(t, s, http.MethodGet, "/_api/files?path=/missing")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestFilesErrorStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{err: resolve.ErrNotFound, want: http.StatusNotFound},
		{err: resolve.ErrHidden, want: http.StatusNotFound},
		{err: resolve.ErrOutsideRoot, want: http.StatusForbidden},
		{err: fileserver.ErrListingDisabled, want: http.StatusForbidden},
		{err: resolve.ErrInvalidPath, want: http.StatusBadRequest},
		{err: fileserver.ErrNotDirectory, want: http.StatusBadRequest},
		{err: errors.New("boom"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			s := NewAPIServer("/_api", WithFiles(&fakeLister{err: tt.err}))
			assert.Equal(t, tt.want, do(t, s, http.MethodGet, "/_api/files?path=/x").Code)
		})
	}

	assert.Equal(t, http.StatusForbidden, do(t, NewAPIServer("/_api"), http.MethodGet, "/_api/files").Code)
}

func TestRequests(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockDB := db.NewMockService(ctrl)

	recent := []models.AccessRecord{{ID: 2, Path: "/b"}, {ID: 1, Path: "/a"}}

	mockDB.EXPECT().RecentAccess(gomock.Any(), defaultRequestLimit).Return(recent, nil)
	mockDB.EXPECT().AccessByPath(gomock.Any(), "/a", 5).Return(recent[1:], nil)
	mockDB.EXPECT().RecentAccess(gomock.Any(), 1).Return(nil, db.ErrFailedToQuery)

	s := NewAPIServer("/_api", WithStore(mockDB))

	rr := do(t, s, http.MethodGet, "/_api/requests")
	require.Equal(t, http.StatusOK, rr.Code)

	var got []models.AccessRecord
	decode(t, rr, &got)
	assert.Len(t, got, 2)

	rr = do(t, s, http.MethodGet, "/_api/requests?path=/a&limit=5")
	require.Equal(t, http.StatusOK, rr.Code)
	decode(t, rr, &got)
	require.Len(t, got, 1)
	assert.Equal(t, "/a", got[0].Path)

	rr = do(t, s, http.MethodGet, "/_api/requests?limit=1")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)

	rr = do(t, s, http.MethodGet, "/_api/requests?limit=zero")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRequestsWithoutStore(t *testing.T) {
	s := NewAPIServer("/_api")

	assert.Equal(t, http.StatusServiceUnavailable, do(t, s, http.MethodGet, "/_api/requests").Code)
	assert.Equal(t, http.StatusServiceUnavailable, do(t, s, http.MethodGet, "/_api/requests/top").Code)
}

func TestTopPaths(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockDB := db.NewMockService(ctrl)

	mockDB.EXPECT().TopPaths(gomock.Any(), gomock.Any(), 3).
		DoAndReturn(func(_ any, since time.Time, _ int) ([]models.PathCount, error) {
			assert.WithinDuration(t, time.Now().Add(-time.Hour), since, time.Minute)
			return []models.PathCount{{Path: "/", Count: 4, Bytes: 40}}, nil
		})

	s := NewAPIServer("/_api", WithStore(mockDB))

	rr := do(t, s, http.MethodGet, "/_api/requests/top?since=1h&limit=3")
	require.Equal(t, http.StatusOK, rr.Code)

	var got []models.PathCount
	decode(t, rr, &got)
	assert.Equal(t, []models.PathCount{{Path: "/", Count: 4, Bytes: 40}}, got)

	rr = do(t, s, http.MethodGet, "/_api/requests/top?since=yesterday")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestParseSince(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	got, err := parseSince("", now)
	require.NoError(t, err)
	assert.Equal(t, now.Add(-defaultTopWindow), got)

	got, err = parseSince("30m", now)
	require.NoError(t, err)
	assert.Equal(t, now.Add(-30*time.Minute), got)

	got, err = parseSince("2026-02-01T00:00:00Z", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), got)

	_, err = parseSince("-5m", now)
	assert.ErrorIs(t, err, errInvalidSince)
}

func TestSite(t *testing.T) {
	s := NewAPIServer("/_api", WithSite(docsite.Default(), ""))

	rr := do(t, s, http.MethodGet, "/_api/site")
	require.Equal(t, http.StatusOK, rr.Code)

	var site SiteResponse
	decode(t, rr, &site)
	require.NotNil(t, site.Site)
	assert.Equal(t, "Local Server", site.Title)
	assert.Equal(t, "/zserve/", site.Base)
	assert.Len(t, site.Theme.Sidebar["/guide/"], 3)
	assert.Equal(t, docsite.Default().OrderedLinks(), site.Links)

	rr = do(t, s, http.MethodGet, "/_api/site/check")
	require.Equal(t, http.StatusOK, rr.Code)

	var report docsite.Report
	decode(t, rr, &report)
	assert.True(t, report.OK())
	assert.Equal(t, 10, report.Links)

	rr = do(t, NewAPIServer("/_api"), http.MethodGet, "/_api/site")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
