package dashboard

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"docaudit-backend/internal/analyses"
)

// DocumentCounter counts a user's stored documents.
type DocumentCounter interface {
	CountByUser(ctx context.Context, userID string) (int, error)
}

// JobCounter counts a user's analysis jobs by status.
type JobCounter interface {
	CountByStatus(ctx context.Context, userID, status string, since time.Time) (int, error)
}

// ReportCounter counts a user's generated reports.
type ReportCounter interface {
	CountByUser(ctx context.Context, userID string) (int, error)
}

// Stats is the headline numbers shown on the dashboard.
type Stats struct {
	TotalDocuments    int `json:"totalDocuments"`
	TotalAnalyses     int `json:"totalAnalyses"`
	TotalReports      int `json:"totalReports"`
	ThisMonthAnalyses int `json:"thisMonthAnalyses"`
}

type Service struct {
	Docs    DocumentCounter
	Jobs    JobCounter
	Reports ReportCounter
	Now     func() time.Time
}

func NewService(docs DocumentCounter, jobs JobCounter, reports ReportCounter) *Service {
	return &Service{Docs: docs, Jobs: jobs, Reports: reports}
}

// Stats counts completed analyses only; failed jobs are not shown.
func (s *Service) Stats(ctx context.Context, userID string) (Stats, error) {
	var stats Stats
	monthStart := startOfMonth(s.now())

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.Docs.CountByUser(ctx, userID)
		stats.TotalDocuments = n
		return err
	})
	g.Go(func() error {
		n, err := s.Jobs.CountByStatus(ctx, userID, analyses.StatusCompleted, time.Time{})
		stats.TotalAnalyses = n
		return err
	})
	g.Go(func() error {
		n, err := s.Jobs.CountByStatus(ctx, userID, analyses.StatusCompleted, monthStart)
		stats.ThisMonthAnalyses = n
		return err
	})
	g.Go(func() error {
		n, err := s.Reports.CountByUser(ctx, userID)
		stats.TotalReports = n
		return err
	})
	if err := g.Wait(); err != nil {
		return Stats{}, err
	}
	return stats, nil
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
