package analyses

import (
	"context"
	"time"
)

// Repo defines persistence operations for analysis jobs.
type Repo interface {
	Create(ctx context.Context, job Job) error
	// Finish moves a processing job to its terminal state. It returns
	// ErrAlreadyFinished when the job is no longer processing.
	Finish(ctx context.Context, jobID string, out Outcome) (Job, error)
	GetByID(ctx context.Context, userID, jobID string) (Job, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Job, error)
	// CountByStatus counts jobs in status created at or after since. A zero since counts all.
	CountByStatus(ctx context.Context, userID, status string, since time.Time) (int, error)
}
