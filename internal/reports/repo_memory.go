package reports

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo stores reports in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu     sync.RWMutex
	byUser map[string][]Report
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byUser: make(map[string][]Report)}
}

// Create stores the report.
func (r *MemoryRepo) Create(ctx context.Context, report Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byUser[report.UserID] = append(r.byUser[report.UserID], report)
	return nil
}

// ListByUser returns a user's reports, newest first.
func (r *MemoryRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	reports := make([]Report, len(r.byUser[userID]))
	copy(reports, r.byUser[userID])
	r.mu.RUnlock()

	sort.SliceStable(reports, func(i, j int) bool {
		return reports[i].GeneratedAt.After(reports[j].GeneratedAt)
	})
	if offset < 0 {
		offset = 0
	}
	if offset >= len(reports) {
		return []Report{}, nil
	}
	end := len(reports)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return reports[offset:end], nil
}

// CountByUser returns the number of reports a user generated.
func (r *MemoryRepo) CountByUser(ctx context.Context, userID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byUser[userID]), nil
}

var _ Repo = (*MemoryRepo)(nil)
