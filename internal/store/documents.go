package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/corvidsearch/notice/internal/apperror"
	"github.com/corvidsearch/notice/internal/urlutil"
)

// Document lifecycle states.
const (
	StatusIndexed    = "indexed"
	StatusSummarized = "summarized"
	StatusFailed     = "failed"
)

// Document is one canonical record per unique URL.
type Document struct {
	ID           string
	URL          string
	Domain       string
	Title        string
	RawText      string
	Summary      string
	Status       string
	QualityScore float64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

const minQuality = 0.5

const maxQuality = 3.0

// clampQuality enforces the [0.5, 3.0] invariant regardless of caller.
func clampQuality(q float64) float64 {
	if q < minQuality {
		return minQuality
	}

	if q > maxQuality {
		return maxQuality
	}

	return q
}

// InsertDocument persists a newly scraped page. Duplicate URLs return
// apperror.ErrConflict; raw_text must be non-empty.
func (db *DB) InsertDocument(ctx context.Context, url, title, rawText string, quality float64) (*Document, error) {
	if rawText == "" {
		return nil, fmt.Errorf("%w: raw_text must not be empty", apperror.ErrValidation)
	}

	domain := urlutil.Domain(url)
	quality = clampQuality(quality)

	var doc Document

	row := db.Pool.QueryRow(ctx, `
		INSERT INTO documents (url, domain, title, raw_content, quality_score, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, url, domain, title, raw_content, summary, status, quality_score, created_at, updated_at
	`, url, domain, nullableText(title), rawText, quality, StatusIndexed)

	if err := scanDocument(row, &doc); err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: document with url %q already exists", apperror.ErrConflict, url)
		}

		return nil, fmt.Errorf("insert document: %w", err)
	}

	return &doc, nil
}

// GetDocumentByID fetches a single document by its UUID.
func (db *DB) GetDocumentByID(ctx context.Context, id string) (*Document, error) {
	row := db.Pool.QueryRow(ctx, `
		SELECT id, url, domain, title, raw_content, summary, status, quality_score, created_at, updated_at
		FROM documents WHERE id = $1
	`, id)

	var doc Document

	if err := scanDocument(row, &doc); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: document %q", apperror.ErrNotFound, id)
		}

		return nil, fmt.Errorf("get document by id: %w", err)
	}

	return &doc, nil
}

// GetDocumentByURL fetches a single document by its canonicalized URL.
func (db *DB) GetDocumentByURL(ctx context.Context, url string) (*Document, error) {
	row := db.Pool.QueryRow(ctx, `
		SELECT id, url, domain, title, raw_content, summary, status, quality_score, created_at, updated_at
		FROM documents WHERE url = $1
	`, url)

	var doc Document

	if err := scanDocument(row, &doc); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: document with url %q", apperror.ErrNotFound, url)
		}

		return nil, fmt.Errorf("get document by url: %w", err)
	}

	return &doc, nil
}

// UpdateSummary stores a generated summary and advances status to
// summarized.
func (db *DB) UpdateSummary(ctx context.Context, id, summary string) (*Document, error) {
	row := db.Pool.QueryRow(ctx, `
		UPDATE documents
		SET summary = $2, status = $3, updated_at = now()
		WHERE id = $1
		RETURNING id, url, domain, title, raw_content, summary, status, quality_score, created_at, updated_at
	`, id, summary, StatusSummarized)

	var doc Document

	if err := scanDocument(row, &doc); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: document %q", apperror.ErrNotFound, id)
		}

		return nil, fmt.Errorf("update summary: %w", err)
	}

	return &doc, nil
}

// MarkSummaryFailed records a terminal summarization failure.
func (db *DB) MarkSummaryFailed(ctx context.Context, id string) error {
	tag, err := db.Pool.Exec(ctx, `
		UPDATE documents SET status = $2, updated_at = now() WHERE id = $1
	`, id, StatusFailed)
	if err != nil {
		return fmt.Errorf("mark summary failed: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: document %q", apperror.ErrNotFound, id)
	}

	return nil
}

// ListDocuments returns a page of documents without raw_text, for
// lightweight listing endpoints.
func (db *DB) ListDocuments(ctx context.Context, limit, offset int) ([]Document, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, url, domain, title, '', summary, status, quality_score, created_at, updated_at
		FROM documents
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	return collectDocuments(rows)
}

// ListDocumentsFull returns a page of documents including raw_text,
// used by the index resync path.
func (db *DB) ListDocumentsFull(ctx context.Context, limit, offset int) ([]Document, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, url, domain, title, raw_content, summary, status, quality_score, created_at, updated_at
		FROM documents
		ORDER BY created_at ASC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list documents full: %w", err)
	}
	defer rows.Close()

	return collectDocuments(rows)
}

// CountDocuments returns the total number of stored documents.
func (db *DB) CountDocuments(ctx context.Context) (int64, error) {
	var count int64

	if err := db.Pool.QueryRow(ctx, `SELECT count(*) FROM documents`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}

	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner, doc *Document) error {
	var title, summary *string

	if err := row.Scan(
		&doc.ID, &doc.URL, &doc.Domain, &title, &doc.RawText, &summary,
		&doc.Status, &doc.QualityScore, &doc.CreatedAt, &doc.UpdatedAt,
	); err != nil {
		return err
	}

	if title != nil {
		doc.Title = *title
	}

	if summary != nil {
		doc.Summary = *summary
	}

	return nil
}

func collectDocuments(rows pgx.Rows) ([]Document, error) {
	var docs []Document

	for rows.Next() {
		var doc Document
		if err := scanDocument(rows, &doc); err != nil {
			return nil, fmt.Errorf("scan document row: %w", err)
		}

		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate document rows: %w", err)
	}

	return docs, nil
}

func nullableText(s string) *string {
	if s == "" {
		return nil
	}

	return &s
}

const pgUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError

	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
