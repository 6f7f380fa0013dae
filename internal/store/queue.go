package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/corvidsearch/notice/internal/apperror"
)

// Crawl queue entry lifecycle states.
const (
	QueueStatusPending    = "pending"
	QueueStatusInProgress = "in_progress"
	QueueStatusCompleted  = "completed"
	QueueStatusFailed     = "failed"
)

const defaultMaxRetries = 3

// Priority bands used by callers enqueueing work.
const (
	PrioritySubmitted  = 0
	PriorityDiscovered = -1
	PriorityDiscovery  = 10
)

// QueueEntry is one row of the durable crawl queue.
type QueueEntry struct {
	ID          string
	URL         string
	Status      string
	Priority    int
	RetryCount  int
	MaxRetries  int
	LastError   string
	SubmittedBy string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// QueueStats is a snapshot count per lifecycle state.
type QueueStats struct {
	Pending    int64
	InProgress int64
	Completed  int64
	Failed     int64
}

// Enqueue inserts url if absent, returning nil on duplicate (never an
// error: duplicate enqueue is always a no-op).
func (db *DB) Enqueue(ctx context.Context, url string, priority int, submitter string) (*QueueEntry, error) {
	row := db.Pool.QueryRow(ctx, `
		INSERT INTO crawl_queue (url, priority, max_retries, submitted_by)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (url) DO NOTHING
		RETURNING id, url, status, priority, retry_count, max_retries, last_error, submitted_by, created_at, updated_at
	`, url, priority, defaultMaxRetries, nullableText(submitter))

	var entry QueueEntry

	if err := scanQueueEntry(row, &entry); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("enqueue: %w", err)
	}

	return &entry, nil
}

// EnqueueBatch inserts any urls not already present, returning the
// count of newly inserted rows.
func (db *DB) EnqueueBatch(ctx context.Context, urls []string, priority int) (int64, error) {
	var inserted int64

	for _, url := range urls {
		entry, err := db.Enqueue(ctx, url, priority, "")
		if err != nil {
			return inserted, fmt.Errorf("enqueue batch: %w", err)
		}

		if entry != nil {
			inserted++
		}
	}

	return inserted, nil
}

// DequeueNext atomically claims the highest-priority, oldest pending
// row and transitions it to in_progress. SELECT ... FOR UPDATE SKIP
// LOCKED guarantees at most one worker ever receives a given row and
// that distinct rows never block each other.
func (db *DB) DequeueNext(ctx context.Context) (*QueueEntry, error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin dequeue transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	row := tx.QueryRow(ctx, `
		SELECT id, url, status, priority, retry_count, max_retries, last_error, submitted_by, created_at, updated_at
		FROM crawl_queue
		WHERE status = $1
		ORDER BY priority DESC, created_at ASC
		FOR UPDATE SKIP LOCKED
		LIMIT 1
	`, QueueStatusPending)

	var entry QueueEntry

	if err := scanQueueEntry(row, &entry); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("select next queue entry: %w", err)
	}

	if _, err := tx.Exec(ctx, `
		UPDATE crawl_queue SET status = $2, updated_at = now() WHERE id = $1
	`, entry.ID, QueueStatusInProgress); err != nil {
		return nil, fmt.Errorf("claim queue entry: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit dequeue transaction: %w", err)
	}

	entry.Status = QueueStatusInProgress

	return &entry, nil
}

// MarkCompleted transitions a row to its terminal success state.
func (db *DB) MarkCompleted(ctx context.Context, id string) error {
	tag, err := db.Pool.Exec(ctx, `
		UPDATE crawl_queue SET status = $2, updated_at = now() WHERE id = $1
	`, id, QueueStatusCompleted)
	if err != nil {
		return fmt.Errorf("mark completed: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: queue entry %q", apperror.ErrNotFound, id)
	}

	return nil
}

// MarkFailed increments the retry counter and either demotes the row
// back to pending or, once retries are exhausted, moves it to the
// terminal failed state.
func (db *DB) MarkFailed(ctx context.Context, id, reason string) error {
	tag, err := db.Pool.Exec(ctx, `
		UPDATE crawl_queue
		SET retry_count = retry_count + 1,
		    last_error = $2,
		    status = CASE
		        WHEN retry_count + 1 >= max_retries THEN $3
		        ELSE $4
		    END,
		    updated_at = now()
		WHERE id = $1
	`, id, reason, QueueStatusFailed, QueueStatusPending)
	if err != nil {
		return fmt.Errorf("mark failed: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: queue entry %q", apperror.ErrNotFound, id)
	}

	return nil
}

// ResetStale moves every in_progress row back to pending. Called once
// at startup: no worker could have survived the restart holding a
// claim.
func (db *DB) ResetStale(ctx context.Context) (int64, error) {
	tag, err := db.Pool.Exec(ctx, `
		UPDATE crawl_queue SET status = $2, updated_at = now() WHERE status = $1
	`, QueueStatusInProgress, QueueStatusPending)
	if err != nil {
		return 0, fmt.Errorf("reset stale queue entries: %w", err)
	}

	return tag.RowsAffected(), nil
}

// URLIsKnown reports whether url already exists in either the queue
// or the document store, used to suppress re-enqueue of discovered
// links.
func (db *DB) URLIsKnown(ctx context.Context, url string) (bool, error) {
	var known bool

	err := db.Pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM crawl_queue WHERE url = $1)
		    OR EXISTS(SELECT 1 FROM documents WHERE url = $1)
	`, url).Scan(&known)
	if err != nil {
		return false, fmt.Errorf("check url known: %w", err)
	}

	return known, nil
}

// QueueStatsSnapshot returns the count of queue rows per lifecycle
// state.
func (db *DB) QueueStatsSnapshot(ctx context.Context) (QueueStats, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT status, count(*) FROM crawl_queue GROUP BY status
	`)
	if err != nil {
		return QueueStats{}, fmt.Errorf("queue stats: %w", err)
	}
	defer rows.Close()

	var stats QueueStats

	for rows.Next() {
		var (
			status string
			count  int64
		)

		if err := rows.Scan(&status, &count); err != nil {
			return QueueStats{}, fmt.Errorf("scan queue stats row: %w", err)
		}

		switch status {
		case QueueStatusPending:
			stats.Pending = count
		case QueueStatusInProgress:
			stats.InProgress = count
		case QueueStatusCompleted:
			stats.Completed = count
		case QueueStatusFailed:
			stats.Failed = count
		}
	}

	if err := rows.Err(); err != nil {
		return QueueStats{}, fmt.Errorf("iterate queue stats: %w", err)
	}

	return stats, nil
}

func scanQueueEntry(row rowScanner, entry *QueueEntry) error {
	var lastError, submittedBy *string

	if err := row.Scan(
		&entry.ID, &entry.URL, &entry.Status, &entry.Priority, &entry.RetryCount,
		&entry.MaxRetries, &lastError, &submittedBy, &entry.CreatedAt, &entry.UpdatedAt,
	); err != nil {
		return err
	}

	if lastError != nil {
		entry.LastError = *lastError
	}

	if submittedBy != nil {
		entry.SubmittedBy = *submittedBy
	}

	return nil
}
