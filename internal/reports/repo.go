package reports

import "context"

// Repo defines persistence operations for reports.
type Repo interface {
	Create(ctx context.Context, report Report) error
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Report, error)
	CountByUser(ctx context.Context, userID string) (int, error)
}
