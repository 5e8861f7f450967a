package documents

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// PGRepo implements DocumentsRepo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new document.
func (r *PGRepo) Create(ctx context.Context, doc Document) error {
	const query = `
INSERT INTO documents (
    id,
    user_id,
    file_name,
    size_bytes,
    mime_type,
    storage_key,
    upload_status,
    created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	status := doc.UploadStatus
	if status == "" {
		status = StatusUploaded
	}
	var storageKey sql.NullString
	if doc.StorageKey != "" {
		storageKey = sql.NullString{String: doc.StorageKey, Valid: true}
	}

	_, err := r.DB.ExecContext(
		ctx,
		query,
		doc.ID,
		doc.UserID,
		doc.FileName,
		doc.SizeBytes,
		doc.MimeType,
		storageKey,
		status,
		doc.CreatedAt,
	)
	return err
}

// GetByID returns a document owned by userID.
func (r *PGRepo) GetByID(ctx context.Context, userID, documentID string) (Document, error) {
	const query = `
SELECT id, user_id, file_name, size_bytes, mime_type, storage_key, upload_status, created_at
FROM documents
WHERE id = $1 AND user_id = $2`

	doc, err := scanDocument(r.DB.QueryRowContext(ctx, query, documentID, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	return doc, nil
}

// ListByUser lists a user's documents newest first.
func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Document, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
SELECT id, user_id, file_name, size_bytes, mime_type, storage_key, upload_status, created_at
FROM documents
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := []Document{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// CountByUser returns the number of documents a user owns.
func (r *PGRepo) CountByUser(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents WHERE user_id = $1`, userID).Scan(&n)
	return n, err
}

// CountSince counts a user's documents created at or after since.
func (r *PGRepo) CountSince(ctx context.Context, userID string, since time.Time) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents WHERE user_id = $1 AND created_at >= $2`, userID, since).Scan(&n)
	return n, err
}

// Delete removes a document owned by userID.
func (r *PGRepo) Delete(ctx context.Context, userID, documentID string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM documents WHERE id = $1 AND user_id = $2`, documentID, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (Document, error) {
	var (
		doc        Document
		storageKey sql.NullString
	)
	if err := row.Scan(
		&doc.ID,
		&doc.UserID,
		&doc.FileName,
		&doc.SizeBytes,
		&doc.MimeType,
		&storageKey,
		&doc.UploadStatus,
		&doc.CreatedAt,
	); err != nil {
		return Document{}, err
	}
	if storageKey.Valid {
		doc.StorageKey = storageKey.String
	}
	return doc, nil
}

var _ DocumentsRepo = (*PGRepo)(nil)
