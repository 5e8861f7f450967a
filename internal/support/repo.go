package support

import (
	"context"
	"errors"
)

var ErrInvalidInput = errors.New("invalid support ticket")

type Repo interface {
	Create(ctx context.Context, ticket Ticket) error
	// ListByUser returns the user's tickets newest first.
	ListByUser(ctx context.Context, userID string, limit int) ([]Ticket, error)
}
