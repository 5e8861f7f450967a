package usage

import (
	"context"
	"database/sql"
	"errors"
)

type pgStore struct {
	DB *sql.DB
}

// NewPGStore constructs a Postgres-backed usage store over the users table.
func NewPGStore(db *sql.DB) *pgStore {
	return &pgStore{DB: db}
}

const reserveQuery = `
UPDATE users
SET usage_count = usage_count + 1, updated_at = now()
WHERE id = $1 AND (usage_limit = -1 OR usage_count < usage_limit)
RETURNING usage_count, usage_limit, subscription_tier`

const selectCounterQuery = `
SELECT usage_count, usage_limit, subscription_tier FROM users WHERE id = $1`

func (s *pgStore) Reserve(ctx context.Context, userID string) (Counter, error) {
	var c Counter
	err := s.DB.QueryRowContext(ctx, reserveQuery, userID).Scan(&c.UsageCount, &c.UsageLimit, &c.SubscriptionTier)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return Counter{}, err
	}
	// Nothing updated: either the user is capped or does not exist.
	current, err := s.Get(ctx, userID)
	if err != nil {
		return Counter{}, err
	}
	return current, ErrQuotaExceeded
}

func (s *pgStore) Release(ctx context.Context, userID string) (Counter, error) {
	const query = `
UPDATE users
SET usage_count = GREATEST(usage_count - 1, 0), updated_at = now()
WHERE id = $1
RETURNING usage_count, usage_limit, subscription_tier`
	var c Counter
	if err := s.DB.QueryRowContext(ctx, query, userID).Scan(&c.UsageCount, &c.UsageLimit, &c.SubscriptionTier); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Counter{}, ErrUserNotFound
		}
		return Counter{}, err
	}
	return c, nil
}

func (s *pgStore) Get(ctx context.Context, userID string) (Counter, error) {
	var c Counter
	if err := s.DB.QueryRowContext(ctx, selectCounterQuery, userID).Scan(&c.UsageCount, &c.UsageLimit, &c.SubscriptionTier); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Counter{}, ErrUserNotFound
		}
		return Counter{}, err
	}
	return c, nil
}

func (s *pgStore) Provision(ctx context.Context, userID, tier string, limit int) error {
	const query = `
INSERT INTO users (id, subscription_tier, usage_count, usage_limit, created_at, updated_at)
VALUES ($1, $2, 0, $3, now(), now())
ON CONFLICT (id) DO NOTHING`
	_, err := s.DB.ExecContext(ctx, query, userID, tier, limit)
	return err
}

func (s *pgStore) SetLimit(ctx context.Context, userID, tier string, limit int) (Counter, error) {
	const query = `
UPDATE users
SET subscription_tier = $2, usage_limit = $3, updated_at = now()
WHERE id = $1
RETURNING usage_count, usage_limit, subscription_tier`
	var c Counter
	if err := s.DB.QueryRowContext(ctx, query, userID, tier, limit).Scan(&c.UsageCount, &c.UsageLimit, &c.SubscriptionTier); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Counter{}, ErrUserNotFound
		}
		return Counter{}, err
	}
	return c, nil
}
