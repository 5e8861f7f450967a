package reports

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"docaudit-backend/internal/analyses"
	"docaudit-backend/internal/documents"
)

type fakeJobs map[string]analyses.Job

func (f fakeJobs) Get(_ context.Context, userID, jobID string) (analyses.Job, error) {
	job, ok := f[jobID]
	if !ok || job.UserID != userID {
		return analyses.Job{}, analyses.ErrNotFound
	}
	return job, nil
}

type fakeDocs map[string]string

func (f fakeDocs) Get(_ context.Context, userID, documentID string) (documents.Document, error) {
	name, ok := f[documentID]
	if !ok {
		return documents.Document{}, documents.ErrNotFound
	}
	return documents.Document{ID: documentID, UserID: userID, FileName: name}, nil
}

type fakeEmails map[string]string

func (f fakeEmails) Email(_ context.Context, userID string) (string, error) {
	return f[userID], nil
}

type failingRepo struct{ Repo }

func (failingRepo) Create(context.Context, Report) error { return errors.New("db down") }

func strPtr(s string) *string { return &s }

func newFixture() *Service {
	created := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)
	result := sampleInput().Results
	return &Service{
		Repo: NewMemoryRepo(),
		Jobs: fakeJobs{
			"job-1": {ID: "job-1", UserID: "user-1", DocumentID: strPtr("doc-1"), Status: analyses.StatusCompleted, AnalysisType: "contradiction", Results: &result, CreatedAt: created},
			"job-2": {ID: "job-2", UserID: "user-1", Status: analyses.StatusProcessing, AnalysisType: "contradiction", CreatedAt: created},
			"job-3": {ID: "job-3", UserID: "user-1", ComparedDocumentIDs: []string{"doc-1", "doc-2"}, Status: analyses.StatusCompleted, AnalysisType: analyses.TypeComparison, Results: &result, CreatedAt: created},
		},
		Docs:   fakeDocs{"doc-1": "a.pdf", "doc-2": "b.txt"},
		Emails: fakeEmails{"user-1": "stored@example.com"},
		Now:    func() time.Time { return created.Add(time.Hour) },
	}
}

func TestGenerateJSONReport(t *testing.T) {
	svc := newFixture()

	out, err := svc.Generate(context.Background(), GenerateRequest{UserID: "user-1", AnalysisJobID: "job-1", ReportType: "json"})
	require.NoError(t, err)
	assert.Equal(t, "analysis-report-job-1.json", out.FileName)
	assert.Equal(t, "application/json", out.ContentType)

	var decoded jsonReport
	require.NoError(t, json.Unmarshal(out.Body, &decoded))
	assert.Equal(t, "a.pdf", decoded.Metadata.DocumentName)
	assert.Equal(t, "March 15, 2026", decoded.Metadata.AnalysisDate)
	assert.Equal(t, "stored@example.com", decoded.Metadata.UserEmail)

	reports, total, err := svc.List(context.Background(), "user-1", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, reports, 1)
	assert.Equal(t, "job-1", reports[0].AnalysisJobID)
	assert.Equal(t, 1, reports[0].ReportData.Summary.ContradictionsCount)
}

func TestGeneratePrefersTokenEmailAndJoinsComparisonNames(t *testing.T) {
	svc := newFixture()

	out, err := svc.Generate(context.Background(), GenerateRequest{UserID: "user-1", UserEmail: "token@example.com", AnalysisJobID: "job-3", ReportType: "json"})
	require.NoError(t, err)
	assert.Equal(t, "a.pdf vs b.txt", out.Report.ReportData.Metadata.DocumentName)
	assert.Equal(t, "token@example.com", out.Report.ReportData.Metadata.UserEmail)
}

func TestGenerateRejectsIncompleteAndForeignJobs(t *testing.T) {
	svc := newFixture()

	_, err := svc.Generate(context.Background(), GenerateRequest{UserID: "user-1", AnalysisJobID: "job-2"})
	assert.ErrorIs(t, err, ErrJobNotCompleted)

	_, err = svc.Generate(context.Background(), GenerateRequest{UserID: "user-2", AnalysisJobID: "job-1"})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Generate(context.Background(), GenerateRequest{UserID: "user-1", AnalysisJobID: "job-1", ReportType: "xml"})
	assert.ErrorIs(t, err, ErrInvalidType)
}

func TestGenerateReturnsReportWhenSaveFails(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	svc := newFixture()
	svc.Repo = failingRepo{Repo: NewMemoryRepo()}
	svc.Logger = zap.New(core)

	out, err := svc.Generate(context.Background(), GenerateRequest{UserID: "user-1", AnalysisJobID: "job-1", ReportType: "pdf"})
	require.NoError(t, err)
	assert.NotEmpty(t, out.Body)
	assert.Equal(t, 1, logs.FilterMessage("reports.save_failed").Len())
}
