package analyses

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"docaudit-backend/internal/extract"
)

const (
	pgForeignKeyViolation       = "23503"
	pgInvalidTextRepresentation = "22P02"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const jobColumns = `id, user_id, document_id, compared_document_ids, status, analysis_type, model,
       results, error_code, error_message, processing_time_ms, created_at, updated_at`

// Create inserts a new job.
func (r *PGRepo) Create(ctx context.Context, job Job) error {
	const query = `
INSERT INTO analysis_jobs (
	id, user_id, document_id, compared_document_ids, status, analysis_type, model,
	results, error_code, error_message, processing_time_ms, created_at, updated_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	compared, err := marshalNullableJSON(job.ComparedDocumentIDs, len(job.ComparedDocumentIDs) > 0)
	if err != nil {
		return err
	}
	results, err := marshalNullableJSON(job.Results, job.Results != nil)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, query,
		job.ID,
		job.UserID,
		job.DocumentID,
		compared,
		job.Status,
		job.AnalysisType,
		job.Model,
		results,
		job.ErrorCode,
		job.ErrorMessage,
		job.ProcessingTimeMs,
		job.CreatedAt,
		job.UpdatedAt,
	)
	return mapWriteError(err)
}

// mapWriteError reports a dangling or malformed document reference as a missing document.
func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgForeignKeyViolation, pgInvalidTextRepresentation:
			return fmt.Errorf("%w: %s", extract.ErrNotFound, pgErr.Message)
		}
	}
	return err
}

// Finish writes the terminal state only while the job is still processing.
func (r *PGRepo) Finish(ctx context.Context, jobID string, out Outcome) (Job, error) {
	query := `
UPDATE analysis_jobs
SET status = $1,
    results = $2::jsonb,
    error_code = $3,
    error_message = $4,
    processing_time_ms = $5,
    updated_at = now()
WHERE id = $6 AND status = 'processing'
RETURNING ` + jobColumns

	results, err := marshalNullableJSON(out.Results, out.Results != nil)
	if err != nil {
		return Job{}, err
	}
	row := r.DB.QueryRowContext(ctx, query, out.Status, results, out.ErrorCode, out.ErrorMessage, out.ProcessingTimeMs, jobID)
	job, err := scanJob(row)
	if err == nil {
		return job, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return Job{}, err
	}

	var exists bool
	if err := r.DB.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM analysis_jobs WHERE id = $1)`, jobID).Scan(&exists); err != nil {
		return Job{}, err
	}
	if !exists {
		return Job{}, ErrNotFound
	}
	return Job{}, ErrAlreadyFinished
}

// GetByID returns a job owned by userID.
func (r *PGRepo) GetByID(ctx context.Context, userID, jobID string) (Job, error) {
	query := `SELECT ` + jobColumns + `
FROM analysis_jobs
WHERE id = $1 AND user_id = $2
LIMIT 1`
	job, err := scanJob(r.DB.QueryRowContext(ctx, query, jobID, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Job{}, ErrNotFound
		}
		return Job{}, err
	}
	return job, nil
}

// ListByUser lists jobs for a user ordered newest-first.
func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Job, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	query := `SELECT ` + jobColumns + `
FROM analysis_jobs
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Job{}
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, job)
	}
	return out, rows.Err()
}

// CountByStatus counts a user's jobs in status since the given time.
func (r *PGRepo) CountByStatus(ctx context.Context, userID, status string, since time.Time) (int, error) {
	const query = `
SELECT COUNT(*) FROM analysis_jobs
WHERE user_id = $1 AND status = $2 AND created_at >= $3`
	var n int
	if err := r.DB.QueryRowContext(ctx, query, userID, status, since).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

var _ Repo = (*PGRepo)(nil)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (Job, error) {
	var (
		job              Job
		documentID       sql.NullString
		compared         sql.NullString
		results          sql.NullString
		errorCode        sql.NullString
		errorMessage     sql.NullString
		processingTimeMs sql.NullInt64
	)
	if err := row.Scan(
		&job.ID,
		&job.UserID,
		&documentID,
		&compared,
		&job.Status,
		&job.AnalysisType,
		&job.Model,
		&results,
		&errorCode,
		&errorMessage,
		&processingTimeMs,
		&job.CreatedAt,
		&job.UpdatedAt,
	); err != nil {
		return Job{}, err
	}
	if documentID.Valid {
		job.DocumentID = &documentID.String
	}
	if compared.Valid {
		if err := json.Unmarshal([]byte(compared.String), &job.ComparedDocumentIDs); err != nil {
			return Job{}, fmt.Errorf("decode compared_document_ids: %w", err)
		}
	}
	if results.Valid {
		var res Result
		if err := json.Unmarshal([]byte(results.String), &res); err != nil {
			return Job{}, fmt.Errorf("decode results: %w", err)
		}
		job.Results = &res
	}
	if errorCode.Valid {
		job.ErrorCode = &errorCode.String
	}
	if errorMessage.Valid {
		job.ErrorMessage = &errorMessage.String
	}
	if processingTimeMs.Valid {
		ms := int(processingTimeMs.Int64)
		job.ProcessingTimeMs = &ms
	}
	return job, nil
}

func marshalNullableJSON(value any, present bool) (any, error) {
	if !present {
		return nil, nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	return string(payload), nil
}
