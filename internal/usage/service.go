package usage

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

type store interface {
	// Reserve increments usage_count only while under the limit. It returns
	// ErrUserNotFound when the user has no row and ErrQuotaExceeded when capped.
	Reserve(ctx context.Context, userID string) (Counter, error)
	Release(ctx context.Context, userID string) (Counter, error)
	Get(ctx context.Context, userID string) (Counter, error)
	Provision(ctx context.Context, userID, tier string, limit int) error
	SetLimit(ctx context.Context, userID, tier string, limit int) (Counter, error)
}

// Service gates analyses on the user's plan.
type Service struct {
	store store
	plans Plans
}

// NewService constructs a Service with an in-memory store.
func NewService(plans Plans) *Service {
	return &Service{store: newMemoryStore(), plans: orDefault(plans)}
}

// NewPostgresService constructs a Service backed by Postgres.
func NewPostgresService(pgStore store, plans Plans) *Service {
	return &Service{store: pgStore, plans: orDefault(plans)}
}

func orDefault(plans Plans) Plans {
	if len(plans) == 0 {
		return DefaultPlans()
	}
	return plans
}

// Plans returns the active plan table.
func (s *Service) Plans() Plans {
	return s.plans
}

// CheckAndReserve atomically consumes one analysis. Unknown users are provisioned on the free plan.
func (s *Service) CheckAndReserve(ctx context.Context, userID string) (Counter, error) {
	if strings.TrimSpace(userID) == "" {
		return Counter{}, errors.New("user id is required")
	}
	c, err := s.store.Reserve(ctx, userID)
	if !errors.Is(err, ErrUserNotFound) {
		return c, err
	}
	if err := s.provision(ctx, userID); err != nil {
		return Counter{}, err
	}
	c, err = s.store.Reserve(ctx, userID)
	if errors.Is(err, ErrUserNotFound) {
		return Counter{}, fmt.Errorf("reserve after provisioning user %s: %w", userID, err)
	}
	return c, err
}

// Release gives back a reservation whose analysis failed. The count never drops below zero.
func (s *Service) Release(ctx context.Context, userID string) error {
	_, err := s.store.Release(ctx, userID)
	if errors.Is(err, ErrUserNotFound) {
		return nil
	}
	return err
}

// Get returns the usage snapshot, provisioning the user if needed.
func (s *Service) Get(ctx context.Context, userID string) (Counter, error) {
	c, err := s.store.Get(ctx, userID)
	if !errors.Is(err, ErrUserNotFound) {
		return c, err
	}
	if err := s.provision(ctx, userID); err != nil {
		return Counter{}, err
	}
	return s.store.Get(ctx, userID)
}

// SetTier moves the user to tier and resets the limit from the plan table.
func (s *Service) SetTier(ctx context.Context, userID, tier string) (Counter, error) {
	tier = strings.ToLower(strings.TrimSpace(tier))
	limit, ok := s.plans.Limit(tier)
	if !ok {
		return Counter{}, fmt.Errorf("%w: %s", ErrUnknownTier, tier)
	}
	c, err := s.store.SetLimit(ctx, userID, tier, limit)
	if !errors.Is(err, ErrUserNotFound) {
		return c, err
	}
	if err := s.store.Provision(ctx, userID, tier, limit); err != nil {
		return Counter{}, err
	}
	return s.store.SetLimit(ctx, userID, tier, limit)
}

func (s *Service) provision(ctx context.Context, userID string) error {
	limit, ok := s.plans.Limit(TierFree)
	if !ok {
		limit = DefaultPlans()[TierFree]
	}
	if err := s.store.Provision(ctx, userID, TierFree, limit); err != nil {
		return fmt.Errorf("provision user %s: %w", userID, err)
	}
	return nil
}

// EnsureUser provisions a free-plan row for userID if none exists.
func (s *Service) EnsureUser(ctx context.Context, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return errors.New("user id is required")
	}
	return s.provision(ctx, userID)
}
