package documents

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const documentColumns = `id, user_id, file_name, content_type, size_bytes, content, extracted_text, summary, summary_error, page_count, encrypted, text_status, created_at, updated_at`

// Save upserts a document keyed by id. The owner column is never rewritten.
func (r *PGRepo) Save(ctx context.Context, doc Document) (Document, error) {
	const query = `
INSERT INTO documents (
    id,
    user_id,
    file_name,
    content_type,
    size_bytes,
    content,
    extracted_text,
    summary,
    summary_error,
    page_count,
    encrypted,
    text_status,
    created_at,
    updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
ON CONFLICT (id) DO UPDATE SET
    file_name = EXCLUDED.file_name,
    content_type = EXCLUDED.content_type,
    size_bytes = EXCLUDED.size_bytes,
    content = EXCLUDED.content,
    extracted_text = EXCLUDED.extracted_text,
    summary = EXCLUDED.summary,
    summary_error = EXCLUDED.summary_error,
    page_count = EXCLUDED.page_count,
    encrypted = EXCLUDED.encrypted,
    text_status = EXCLUDED.text_status,
    updated_at = EXCLUDED.updated_at`

	_, err := r.DB.ExecContext(
		ctx,
		query,
		doc.ID,
		doc.UserID,
		doc.FileName,
		doc.ContentType,
		doc.SizeBytes,
		doc.Content,
		nullString(doc.ExtractedText),
		nullString(doc.Summary),
		nullString(doc.SummaryError),
		doc.PageCount,
		doc.Encrypted,
		string(doc.Status),
		doc.CreatedAt,
		doc.UpdatedAt,
	)
	if err != nil {
		return Document{}, fmt.Errorf("save document: %w", err)
	}
	return doc, nil
}

// FindByID fetches a document by ID. IDs that are not UUIDs cannot exist.
func (r *PGRepo) FindByID(ctx context.Context, id string) (Document, error) {
	if !validID(id) {
		return Document{}, ErrNotFound
	}
	query := `SELECT ` + documentColumns + `
FROM documents
WHERE id = $1
LIMIT 1`
	return scanDocument(r.DB.QueryRowContext(ctx, query, id))
}

// FindByIDAndOwner fetches a document by ID for a user.
func (r *PGRepo) FindByIDAndOwner(ctx context.Context, id, userID string) (Document, error) {
	if !validID(id) {
		return Document{}, ErrNotFound
	}
	query := `SELECT ` + documentColumns + `
FROM documents
WHERE id = $1 AND user_id = $2
LIMIT 1`
	return scanDocument(r.DB.QueryRowContext(ctx, query, id, userID))
}

// ListByOwner lists a user's documents, most recently updated first.
func (r *PGRepo) ListByOwner(ctx context.Context, userID string, limit, offset int) ([]ListItem, error) {
	if offset < 0 {
		offset = 0
	}
	// LIMIT NULL means no limit in Postgres.
	var lim sql.NullInt64
	if limit > 0 {
		lim = sql.NullInt64{Int64: int64(limit), Valid: true}
	}
	const query = `
SELECT id, file_name, content_type, size_bytes, created_at, updated_at
FROM documents
WHERE user_id = $1
ORDER BY updated_at DESC, id ASC
LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(ctx, query, userID, lim, offset)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	out := make([]ListItem, 0)
	for rows.Next() {
		var item ListItem
		if err := rows.Scan(
			&item.ID,
			&item.FileName,
			&item.ContentType,
			&item.Size,
			&item.CreatedAt,
			&item.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func scanDocument(row *sql.Row) (Document, error) {
	var doc Document
	var extracted sql.NullString
	var summary sql.NullString
	var summaryErr sql.NullString
	var status string
	err := row.Scan(
		&doc.ID,
		&doc.UserID,
		&doc.FileName,
		&doc.ContentType,
		&doc.SizeBytes,
		&doc.Content,
		&extracted,
		&summary,
		&summaryErr,
		&doc.PageCount,
		&doc.Encrypted,
		&status,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, fmt.Errorf("load document: %w", err)
	}
	doc.Status = ParseTextStatus(status)
	doc.ExtractedText = stringPtr(extracted)
	doc.Summary = stringPtr(summary)
	doc.SummaryError = stringPtr(summaryErr)
	return doc, nil
}

// validID reports whether id can be compared against the UUID id column.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

var _ Repo = (*PGRepo)(nil)
