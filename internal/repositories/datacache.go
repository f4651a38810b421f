package repositories

import (
	"database/sql"
	"fmt"
	"sync"
	"time"
)

// SQLiteDataCache is a durable [transfer.DataCache] scoped to one job.
//
// Successful side effects land in the job_data table keyed by
// (job_id, key), so a resumed job sees its earlier artifacts and skips
// re-creating them. Failures only bump the attempt counter; the side
// effect runs again on the next call with the same key.
type SQLiteDataCache struct {
	db    *sql.DB
	jobID string
	mu    sync.Mutex
}

// NewSQLiteDataCache creates a cache bound to one job's rows.
func NewSQLiteDataCache(db *sql.DB, jobID string) *SQLiteDataCache {
	return &SQLiteDataCache{db: db, jobID: jobID}
}

// RunOnce returns the cached value for key, or executes sideEffect and
// caches its result. The lock is held across the side effect so two
// callers never race to create the same artifact.
func (c *SQLiteDataCache) RunOnce(key string, sideEffect func() (string, error)) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var value string
	err := c.db.QueryRow(
		`SELECT value FROM job_data WHERE job_id = ? AND key = ? AND succeeded = 1`,
		c.jobID, key,
	).Scan(&value)
	if err == nil {
		return value, nil
	}
	if err != sql.ErrNoRows {
		return "", fmt.Errorf("failed to read cache entry: %w", err)
	}

	value, runErr := sideEffect()
	now := time.Now()

	if runErr != nil {
		if err := c.record(key, "", false, runErr.Error(), now); err != nil {
			return "", fmt.Errorf("failed to record cache failure: %w", err)
		}
		return "", fmt.Errorf("side effect for %q failed: %w", key, runErr)
	}

	if err := c.record(key, value, true, "", now); err != nil {
		return "", fmt.Errorf("failed to record cache entry: %w", err)
	}
	return value, nil
}

// Lookup returns the cached value for key without running anything.
func (c *SQLiteDataCache) Lookup(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var value string
	err := c.db.QueryRow(
		`SELECT value FROM job_data WHERE job_id = ? AND key = ? AND succeeded = 1`,
		c.jobID, key,
	).Scan(&value)
	if err != nil {
		return "", false
	}
	return value, true
}

// LastFailure returns the recorded error message and attempt count for a
// key that has not yet succeeded.
func (c *SQLiteDataCache) LastFailure(key string) (string, int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var (
		lastError string
		attempts  int
	)
	err := c.db.QueryRow(
		`SELECT last_error, attempts FROM job_data WHERE job_id = ? AND key = ? AND succeeded = 0`,
		c.jobID, key,
	).Scan(&lastError, &attempts)
	if err != nil {
		return "", 0, false
	}
	return lastError, attempts, true
}

func (c *SQLiteDataCache) record(key, value string, succeeded bool, lastError string, now time.Time) error {
	_, err := c.db.Exec(`
		INSERT INTO job_data (job_id, key, value, succeeded, attempts, last_error, created_at, updated_at)
		VALUES (?, ?, ?, ?, 1, ?, ?, ?)
		ON CONFLICT(job_id, key) DO UPDATE SET
			value = excluded.value,
			succeeded = excluded.succeeded,
			attempts = job_data.attempts + 1,
			last_error = excluded.last_error,
			updated_at = excluded.updated_at
	`, c.jobID, key, value, succeeded, lastError, now, now)
	return err
}
