package usage

import (
	"context"
	"sync"
)

type memoryStore struct {
	mu   sync.Mutex
	data map[string]Counter
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: make(map[string]Counter)}
}

func (s *memoryStore) Reserve(ctx context.Context, userID string) (Counter, error) {
	if err := ctx.Err(); err != nil {
		return Counter{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.data[userID]
	if !ok {
		return Counter{}, ErrUserNotFound
	}
	if !c.IsUnlimited() && c.UsageCount >= c.UsageLimit {
		return c, ErrQuotaExceeded
	}
	c.UsageCount++
	s.data[userID] = c
	return c, nil
}

func (s *memoryStore) Release(ctx context.Context, userID string) (Counter, error) {
	if err := ctx.Err(); err != nil {
		return Counter{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.data[userID]
	if !ok {
		return Counter{}, ErrUserNotFound
	}
	if c.UsageCount > 0 {
		c.UsageCount--
	}
	s.data[userID] = c
	return c, nil
}

func (s *memoryStore) Get(ctx context.Context, userID string) (Counter, error) {
	if err := ctx.Err(); err != nil {
		return Counter{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.data[userID]
	if !ok {
		return Counter{}, ErrUserNotFound
	}
	return c, nil
}

func (s *memoryStore) Provision(ctx context.Context, userID, tier string, limit int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[userID]; !ok {
		s.data[userID] = Counter{UsageLimit: limit, SubscriptionTier: tier}
	}
	return nil
}

func (s *memoryStore) SetLimit(ctx context.Context, userID, tier string, limit int) (Counter, error) {
	if err := ctx.Err(); err != nil {
		return Counter{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.data[userID]
	if !ok {
		return Counter{}, ErrUserNotFound
	}
	c.SubscriptionTier = tier
	c.UsageLimit = limit
	s.data[userID] = c
	return c, nil
}
