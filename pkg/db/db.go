// Package db pkg/db/db.go provides SQLite storage for the access log.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/mfreeman451/zserve/pkg/models"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

const (
	// Upper bound for any query limit.
	maxQueryLimit = 1000

	// SQL statements for database initialization.
	createTablesSQL = `
	CREATE TABLE IF NOT EXISTS access_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		ts_unix_nano INTEGER NOT NULL,
		request_id TEXT NOT NULL DEFAULT '',
		method TEXT NOT NULL,
		path TEXT NOT NULL,
		status INTEGER NOT NULL,
		bytes INTEGER NOT NULL DEFAULT 0,
		duration_ns INTEGER NOT NULL DEFAULT 0,
		remote_addr TEXT NOT NULL DEFAULT '',
		user_agent TEXT NOT NULL DEFAULT '',
		class TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_access_log_time
		ON access_log(ts_unix_nano);
	CREATE INDEX IF NOT EXISTS idx_access_log_path_time
		ON access_log(path, ts_unix_nano);
	`

	insertAccessSQL = `
		INSERT INTO access_log
			(ts_unix_nano, request_id, method, path, status, bytes, duration_ns, remote_addr, user_agent, class)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	selectAccessColumns = `
		SELECT id, ts_unix_nano, request_id, method, path, status, bytes, duration_ns, remote_addr, user_agent, class
		FROM access_log
	`
)

// DB represents the database connection and operations.
type DB struct {
	*sql.DB
}

// New creates a new database connection and initializes the schema.
func New(dbPath string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailedOpenDB, err)
	}

	// Enable WAL mode for better concurrent access
	if _, err := sqlDB.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = sqlDB.Close()

		return nil, fmt.Errorf("%w: %w", ErrFailedToEnableWAL, err)
	}

	db := &DB{sqlDB}
	if err := db.initSchema(); err != nil {
		_ = sqlDB.Close()

		return nil, fmt.Errorf("%w: %w", ErrFailedToInit, err)
	}

	return db, nil
}

// initSchema creates the database tables if they don't exist.
func (db *DB) initSchema() error {
	_, err := db.Exec(createTablesSQL)

	return err
}

// InsertAccess stores a single access record.
func (db *DB) InsertAccess(ctx context.Context, rec *models.AccessRecord) error {
	if _, err := db.ExecContext(ctx, insertAccessSQL, accessArgs(rec)...); err != nil {
		return fmt.Errorf("%w access record: %w", ErrFailedToInsert, err)
	}

	return nil
}

// InsertAccessBatch stores records in one transaction.
func (db *DB) InsertAccessBatch(ctx context.Context, recs []*models.AccessRecord) (err error) {
	if len(recs) == 0 {
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDatabaseError, err)
	}

	defer func() {
		if err != nil {
			rollback(tx)
		}
	}()

	stmt, err := tx.PrepareContext(ctx, insertAccessSQL)
	if err != nil {
		return fmt.Errorf("%w access batch: %w", ErrFailedToInsert, err)
	}
	defer closeStmt(stmt)

	for _, rec := range recs {
		if _, err = stmt.ExecContext(ctx, accessArgs(rec)...); err != nil {
			return fmt.Errorf("%w access batch: %w", ErrFailedToInsert, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%w access batch: %w", ErrFailedToInsert, err)
	}

	return nil
}

// RecentAccess returns the newest records first.
func (db *DB) RecentAccess(ctx context.Context, limit int) ([]models.AccessRecord, error) {
	rows, err := db.QueryContext(ctx, selectAccessColumns+`
		ORDER BY ts_unix_nano DESC, id DESC
		LIMIT ?
	`, clampLimit(limit)) //nolint:rowserrcheck // scanAccess checks rows.Err
	if err != nil {
		return nil, fmt.Errorf("%w recent access: %w", ErrFailedToQuery, err)
	}
	defer closeRows(rows)

	return scanAccess(rows)
}

// AccessByPath returns the newest records for one request path.
func (db *DB) AccessByPath(ctx context.Context, path string, limit int) ([]models.AccessRecord, error) {
	rows, err := db.QueryContext(ctx, selectAccessColumns+`
		WHERE path = ?
		ORDER BY ts_unix_nano DESC, id DESC
		LIMIT ?
	`, path, clampLimit(limit)) //nolint:rowserrcheck // scanAccess checks rows.Err
	if err != nil {
		return nil, fmt.Errorf("%w access by path: %w", ErrFailedToQuery, err)
	}
	defer closeRows(rows)

	return scanAccess(rows)
}

// TopPaths returns the most requested paths since a point in time.
func (db *DB) TopPaths(ctx context.Context, since time.Time, limit int) ([]models.PathCount, error) {
	const querySQL = `
		SELECT path, COUNT(*) AS hits, COALESCE(SUM(bytes), 0)
		FROM access_log
		WHERE ts_unix_nano >= ?
		GROUP BY path
		ORDER BY hits DESC, path ASC
		LIMIT ?
	`

	rows, err := db.QueryContext(ctx, querySQL, since.UnixNano(), clampLimit(limit)) //nolint:rowserrcheck // checked below
	if err != nil {
		return nil, fmt.Errorf("%w top paths: %w", ErrFailedToQuery, err)
	}
	defer closeRows(rows)

	var counts []models.PathCount

	for rows.Next() {
		var pc models.PathCount
		if err := rows.Scan(&pc.Path, &pc.Count, &pc.Bytes); err != nil {
			return nil, fmt.Errorf("%w top paths row: %w", ErrFailedToScan, err)
		}

		counts = append(counts, pc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w top paths: %w", ErrFailedToQuery, err)
	}

	return counts, nil
}

// CleanOldData removes records older than the retention period and returns
// how many were deleted.
func (db *DB) CleanOldData(ctx context.Context, retentionPeriod time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retentionPeriod)

	result, err := db.ExecContext(ctx, "DELETE FROM access_log WHERE ts_unix_nano < ?", cutoff.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("%w access log: %w", ErrFailedToClean, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w access log: %w", ErrFailedToClean, err)
	}

	return n, nil
}

func accessArgs(rec *models.AccessRecord) []interface{} {
	return []interface{}{
		rec.Timestamp.UnixNano(),
		rec.RequestID,
		rec.Method,
		rec.Path,
		rec.Status,
		rec.Bytes,
		int64(rec.Duration),
		rec.RemoteAddr,
		rec.UserAgent,
		rec.Class,
	}
}

func scanAccess(rows *sql.Rows) ([]models.AccessRecord, error) {
	var records []models.AccessRecord

	for rows.Next() {
		var (
			rec      models.AccessRecord
			ts       int64
			duration int64
		)

		if err := rows.Scan(&rec.ID, &ts, &rec.RequestID, &rec.Method, &rec.Path, &rec.Status,
			&rec.Bytes, &duration, &rec.RemoteAddr, &rec.UserAgent, &rec.Class); err != nil {
			return nil, fmt.Errorf("%w access row: %w", ErrFailedToScan, err)
		}

		rec.Timestamp = time.Unix(0, ts)
		rec.Duration = time.Duration(duration)
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w access rows: %w", ErrFailedToQuery, err)
	}

	return records, nil
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > maxQueryLimit {
		return maxQueryLimit
	}

	return limit
}

func rollback(tx *sql.Tx) {
	if err := tx.Rollback(); err != nil {
		log.Printf("Error rolling back transaction: %v", err)
	}
}

func closeRows(rows *sql.Rows) {
	if err := rows.Close(); err != nil {
		log.Printf("failed to close rows: %v", err)
	}
}

func closeStmt(stmt *sql.Stmt) {
	if err := stmt.Close(); err != nil {
		log.Printf("failed to close statement: %v", err)
	}
}
