package analyses

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo stores analysis jobs in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu     sync.RWMutex
	byID   map[string]Job
	byUser map[string][]string
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		byID:   make(map[string]Job),
		byUser: make(map[string][]string),
	}
}

// Create stores the job.
func (r *MemoryRepo) Create(ctx context.Context, job Job) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[job.ID] = job
	r.byUser[job.UserID] = append(r.byUser[job.UserID], job.ID)
	return nil
}

// Finish applies the terminal outcome once.
func (r *MemoryRepo) Finish(ctx context.Context, jobID string, out Outcome) (Job, error) {
	if err := ctx.Err(); err != nil {
		return Job{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.byID[jobID]
	if !ok {
		return Job{}, ErrNotFound
	}
	if job.Status != StatusProcessing {
		return job, ErrAlreadyFinished
	}
	job.Status = out.Status
	job.Results = out.Results
	job.ErrorCode = out.ErrorCode
	job.ErrorMessage = out.ErrorMessage
	job.ProcessingTimeMs = out.ProcessingTimeMs
	job.UpdatedAt = time.Now().UTC()
	r.byID[jobID] = job
	return job, nil
}

// GetByID returns a job owned by userID.
func (r *MemoryRepo) GetByID(ctx context.Context, userID, jobID string) (Job, error) {
	if err := ctx.Err(); err != nil {
		return Job{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.byID[jobID]
	if !ok || job.UserID != userID {
		return Job{}, ErrNotFound
	}
	return job, nil
}

// ListByUser returns jobs for a user, newest first, with limit/offset.
func (r *MemoryRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Job, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}
	if limit < 0 {
		limit = 0
	}

	jobs := r.userJobs(userID)
	if len(jobs) == 0 || offset >= len(jobs) {
		return []Job{}, nil
	}
	sort.SliceStable(jobs, func(i, j int) bool {
		return jobs[i].CreatedAt.After(jobs[j].CreatedAt)
	})

	end := len(jobs)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return jobs[offset:end], nil
}

// CountByStatus counts a user's jobs in status since the given time.
func (r *MemoryRepo) CountByStatus(ctx context.Context, userID, status string, since time.Time) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	n := 0
	for _, job := range r.userJobs(userID) {
		if job.Status == status && !job.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (r *MemoryRepo) userJobs(userID string) []Job {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := r.byUser[userID]
	out := make([]Job, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.byID[id])
	}
	return out
}

var _ Repo = (*MemoryRepo)(nil)
