package reports

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPGRepoCreateAndList(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	report := Report{
		ID:            "rep-1",
		UserID:        "user-1",
		AnalysisJobID: "job-1",
		ReportType:    TypeHTML,
		ReportData:    Data{Summary: Summary{ContradictionsCount: 2}},
		GeneratedAt:   now,
	}

	mock.ExpectExec(`INSERT INTO reports`).
		WithArgs("rep-1", "user-1", "job-1", TypeHTML, sqlmock.AnyArg(), now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT id, user_id, analysis_job_id, report_type, report_data, generated_at FROM reports WHERE user_id = \$1 ORDER BY generated_at DESC LIMIT \$2 OFFSET \$3`).
		WithArgs("user-1", 10, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "analysis_job_id", "report_type", "report_data", "generated_at"}).
			AddRow("rep-1", "user-1", "job-1", TypeHTML, []byte(`{"metadata":{},"summary":{"contradictionsCount":2}}`), now))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM reports WHERE user_id = \$1`).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	repo := &PGRepo{DB: db}
	require.NoError(t, repo.Create(context.Background(), report))

	list, err := repo.ListByUser(context.Background(), "user-1", 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 2, list[0].ReportData.Summary.ContradictionsCount)

	n, err := repo.CountByUser(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, mock.ExpectationsWereMet())
}
