package documents

import (
	"context"
	"time"
)

// DocumentsRepo defines persistence operations for documents. Reads are scoped to the owner.
type DocumentsRepo interface {
	Create(ctx context.Context, doc Document) error
	GetByID(ctx context.Context, userID, documentID string) (Document, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Document, error)
	CountByUser(ctx context.Context, userID string) (int, error)
	CountSince(ctx context.Context, userID string, since time.Time) (int, error)
	Delete(ctx context.Context, userID, documentID string) error
}
