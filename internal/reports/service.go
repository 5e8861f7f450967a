package reports

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"docaudit-backend/internal/analyses"
	"docaudit-backend/internal/documents"
	"docaudit-backend/internal/shared/metrics"
	"docaudit-backend/internal/shared/telemetry"
)

const unknownEmail = "Unknown"

// JobSource reads analysis jobs scoped to their owner.
type JobSource interface {
	Get(ctx context.Context, userID, jobID string) (analyses.Job, error)
}

// DocumentSource reads documents scoped to their owner.
type DocumentSource interface {
	Get(ctx context.Context, userID, documentID string) (documents.Document, error)
}

// EmailSource resolves a stored email for users whose token carries none.
type EmailSource interface {
	Email(ctx context.Context, userID string) (string, error)
}

// Service renders and records reports for completed analyses.
type Service struct {
	Repo   Repo
	Jobs   JobSource
	Docs   DocumentSource
	Emails EmailSource
	Logger *zap.Logger
	Now    func() time.Time
}

// GenerateRequest asks for a report over one job.
type GenerateRequest struct {
	UserID        string
	UserEmail     string
	AnalysisJobID string
	ReportType    string
}

// Generated is a rendered report and its record.
type Generated struct {
	Report   Report
	FileName string
	Rendered
}

// Generate renders a report for a completed job and records it. A failed
// insert is logged and the rendered report is still returned.
func (s *Service) Generate(ctx context.Context, req GenerateRequest) (Generated, error) {
	reportType, err := ParseType(req.ReportType)
	if err != nil {
		return Generated{}, err
	}
	job, err := s.Jobs.Get(ctx, req.UserID, req.AnalysisJobID)
	if err != nil {
		if errors.Is(err, analyses.ErrNotFound) {
			return Generated{}, ErrNotFound
		}
		return Generated{}, fmt.Errorf("load analysis job: %w", err)
	}
	if job.Status != analyses.StatusCompleted || job.Results == nil {
		return Generated{}, ErrJobNotCompleted
	}

	now := s.now()
	in := Input{
		DocumentName: s.documentName(ctx, job),
		AnalysisDate: job.CreatedAt.UTC().Format("January 2, 2006"),
		AnalysisType: job.AnalysisType,
		Results:      *job.Results,
		UserEmail:    s.email(ctx, req),
		GeneratedAt:  now,
	}
	rendered, err := Render(in, reportType)
	if err != nil {
		return Generated{}, err
	}

	report := Report{
		ID:            uuid.NewString(),
		UserID:        req.UserID,
		AnalysisJobID: job.ID,
		ReportType:    reportType,
		ReportData: Data{
			Metadata: Metadata{
				DocumentName: in.DocumentName,
				AnalysisDate: in.AnalysisDate,
				AnalysisType: in.AnalysisType,
				UserEmail:    in.UserEmail,
				GeneratedAt:  now,
			},
			Summary: summarize(in.Results),
		},
		GeneratedAt: now,
	}
	if err := s.Repo.Create(ctx, report); err != nil {
		telemetry.Or(s.Logger).Error("reports.save_failed",
			zap.String("analysis_id", job.ID),
			zap.String("user_id", req.UserID),
			zap.Error(err),
		)
	} else {
		metrics.IncReportsGenerated()
	}

	return Generated{Report: report, FileName: FileName(job.ID, rendered.Extension), Rendered: rendered}, nil
}

// List returns one page of reports and the total count.
func (s *Service) List(ctx context.Context, userID string, page, limit int) ([]Report, int, error) {
	if page < 1 {
		page = 1
	}
	reports, err := s.Repo.ListByUser(ctx, userID, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.Repo.CountByUser(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	return reports, total, nil
}

// CountByUser returns the number of reports a user generated.
func (s *Service) CountByUser(ctx context.Context, userID string) (int, error) {
	return s.Repo.CountByUser(ctx, userID)
}

func (s *Service) documentName(ctx context.Context, job analyses.Job) string {
	ids := job.ComparedDocumentIDs
	if len(ids) == 0 && job.DocumentID != nil {
		ids = []string{*job.DocumentID}
	}
	names := make([]string, 0, len(ids))
	for i, id := range ids {
		name := fmt.Sprintf("Document %d", i+1)
		if s.Docs != nil {
			if doc, err := s.Docs.Get(ctx, job.UserID, id); err == nil {
				name = doc.FileName
			}
		}
		names = append(names, name)
	}
	if len(names) == 0 {
		return "Unknown document"
	}
	return strings.Join(names, " vs ")
}

func (s *Service) email(ctx context.Context, req GenerateRequest) string {
	if email := strings.TrimSpace(req.UserEmail); email != "" {
		return email
	}
	if s.Emails != nil {
		if email, err := s.Emails.Email(ctx, req.UserID); err == nil && email != "" {
			return email
		}
	}
	return unknownEmail
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}
