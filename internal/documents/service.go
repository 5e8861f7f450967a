package documents

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"docaudit-backend/internal/extract"
	"docaudit-backend/internal/shared/storage/object"
	"docaudit-backend/internal/shared/telemetry"
	"docaudit-backend/internal/shared/util"
)

// OwnerProvisioner makes sure the owning user row exists before a document references it.
type OwnerProvisioner interface {
	EnsureUser(ctx context.Context, userID string) error
}

// Service contains business logic for documents.
type Service struct {
	Store  object.ObjectStore
	Repo   DocumentsRepo
	Owners OwnerProvisioner
	Logger *zap.Logger
}

// UploadInput describes an incoming file.
type UploadInput struct {
	UserID      string
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Upload stores the blob first, then the row. A failed row insert deletes the blob.
func (s *Service) Upload(ctx context.Context, in UploadInput) (Document, error) {
	if in.UserID == "" || in.Body == nil {
		return Document{}, fmt.Errorf("%w: file is required", ErrInvalidInput)
	}
	fileName, err := util.SanitizeFileName(in.FileName)
	if err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if in.Size > MaxUploadSize {
		return Document{}, ErrTooLarge
	}
	mimeType := extract.NormalizeMimeType(in.ContentType, fileName)
	if !extract.IsSupported(mimeType) {
		return Document{}, ErrUnsupportedType
	}

	if s.Owners != nil {
		if err := s.Owners.EnsureUser(ctx, in.UserID); err != nil {
			return Document{}, fmt.Errorf("ensure owner: %w", err)
		}
	}

	storageKey, size, err := s.Store.Save(ctx, in.UserID, fileName, mimeType, io.LimitReader(in.Body, MaxUploadSize+1))
	if err != nil {
		return Document{}, fmt.Errorf("save object: %w", err)
	}
	if size > MaxUploadSize {
		s.discard(ctx, storageKey)
		return Document{}, ErrTooLarge
	}

	doc := Document{
		ID:           uuid.NewString(),
		UserID:       in.UserID,
		FileName:     fileName,
		SizeBytes:    size,
		MimeType:     mimeType,
		StorageKey:   storageKey,
		UploadStatus: StatusUploaded,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.Repo.Create(ctx, doc); err != nil {
		s.discard(ctx, storageKey)
		return Document{}, fmt.Errorf("record document: %w", err)
	}
	return doc, nil
}

func (s *Service) discard(ctx context.Context, storageKey string) {
	if err := s.Store.Delete(context.WithoutCancel(ctx), storageKey); err != nil && !errors.Is(err, object.ErrNotFound) {
		telemetry.Or(s.Logger).Warn("documents.discard_failed",
			zap.String("storage_key", storageKey),
			zap.Error(err),
		)
	}
}

// List returns one page of documents and the total count.
func (s *Service) List(ctx context.Context, userID string, page, limit int) ([]Document, int, error) {
	if userID == "" {
		return nil, 0, fmt.Errorf("%w: user id required", ErrInvalidInput)
	}
	if page < 1 {
		page = 1
	}
	docs, err := s.Repo.ListByUser(ctx, userID, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.Repo.CountByUser(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	return docs, total, nil
}

// Get returns a document owned by userID.
func (s *Service) Get(ctx context.Context, userID, documentID string) (Document, error) {
	if userID == "" || documentID == "" {
		return Document{}, fmt.Errorf("%w: document id required", ErrInvalidInput)
	}
	return s.Repo.GetByID(ctx, userID, documentID)
}

// Delete removes the blob, then the row.
func (s *Service) Delete(ctx context.Context, userID, documentID string) error {
	doc, err := s.Get(ctx, userID, documentID)
	if err != nil {
		return err
	}
	if doc.StorageKey != "" {
		if err := s.Store.Delete(ctx, doc.StorageKey); err != nil && !errors.Is(err, object.ErrNotFound) {
			return fmt.Errorf("delete object: %w", err)
		}
	}
	return s.Repo.Delete(ctx, userID, documentID)
}

// LookupDocument resolves a document for text extraction.
func (s *Service) LookupDocument(ctx context.Context, ownerID, documentID string) (extract.Source, error) {
	if _, err := uuid.Parse(documentID); err != nil {
		return extract.Source{}, extract.ErrNotFound
	}
	doc, err := s.Repo.GetByID(ctx, ownerID, documentID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return extract.Source{}, extract.ErrNotFound
		}
		return extract.Source{}, err
	}
	return extract.Source{StorageKey: doc.StorageKey, MimeType: doc.MimeType, FileName: doc.FileName}, nil
}

// CountSince counts a user's uploads since the given time.
func (s *Service) CountSince(ctx context.Context, userID string, since time.Time) (int, error) {
	return s.Repo.CountSince(ctx, userID, since)
}

// CountByUser counts all of a user's documents.
func (s *Service) CountByUser(ctx context.Context, userID string) (int, error) {
	return s.Repo.CountByUser(ctx, userID)
}

var _ extract.DocumentLookup = (*Service)(nil)
