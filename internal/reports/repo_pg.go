package reports

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a report.
func (r *PGRepo) Create(ctx context.Context, report Report) error {
	const query = `
INSERT INTO reports (id, user_id, analysis_job_id, report_type, report_data, generated_at)
VALUES ($1, $2, $3, $4, $5, $6)`

	data, err := json.Marshal(report.ReportData)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, query,
		report.ID,
		report.UserID,
		report.AnalysisJobID,
		report.ReportType,
		string(data),
		report.GeneratedAt,
	)
	return err
}

// ListByUser lists a user's reports, newest first.
func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Report, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
SELECT id, user_id, analysis_job_id, report_type, report_data, generated_at
FROM reports
WHERE user_id = $1
ORDER BY generated_at DESC
LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Report{}
	for rows.Next() {
		var (
			report Report
			data   []byte
		)
		if err := rows.Scan(&report.ID, &report.UserID, &report.AnalysisJobID, &report.ReportType, &data, &report.GeneratedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(data, &report.ReportData); err != nil {
			return nil, fmt.Errorf("decode report_data: %w", err)
		}
		out = append(out, report)
	}
	return out, rows.Err()
}

// CountByUser returns the number of reports a user generated.
func (r *PGRepo) CountByUser(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM reports WHERE user_id = $1`, userID).Scan(&n)
	return n, err
}

var _ Repo = (*PGRepo)(nil)
