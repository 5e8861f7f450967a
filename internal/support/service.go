package support

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"docaudit-backend/internal/shared/telemetry"
)

const (
	maxSubjectLen = 200
	maxMessageLen = 5000
	listLimit     = 50
)

type Service struct {
	Repo   Repo
	Logger *zap.Logger
	Now    func() time.Time
}

func NewService(repo Repo, logger *zap.Logger) *Service {
	return &Service{Repo: repo, Logger: logger}
}

// CreateInput is a ticket as submitted. Email falls back to FallbackEmail when blank.
type CreateInput struct {
	UserID        string
	Name          string
	Email         string
	FallbackEmail string
	Subject       string
	Message       string
}

// Create validates and files a ticket in the open state.
func (s *Service) Create(ctx context.Context, in CreateInput) (Ticket, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" {
		email = strings.TrimSpace(in.FallbackEmail)
	}
	t := Ticket{
		ID:        uuid.NewString(),
		UserID:    strings.TrimSpace(in.UserID),
		Name:      strings.TrimSpace(in.Name),
		Email:     email,
		Subject:   strings.TrimSpace(in.Subject),
		Message:   strings.TrimSpace(in.Message),
		Status:    StatusOpen,
		CreatedAt: s.now(),
	}
	if t.UserID == "" {
		return Ticket{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if t.Email == "" || t.Subject == "" || t.Message == "" {
		return Ticket{}, fmt.Errorf("%w: Email, subject, and message are required", ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(t.Email); err != nil {
		return Ticket{}, fmt.Errorf("%w: invalid email", ErrInvalidInput)
	}
	if len([]rune(t.Subject)) > maxSubjectLen || len([]rune(t.Message)) > maxMessageLen {
		return Ticket{}, fmt.Errorf("%w: subject or message too long", ErrInvalidInput)
	}

	if err := s.Repo.Create(ctx, t); err != nil {
		return Ticket{}, fmt.Errorf("create support ticket: %w", err)
	}
	telemetry.Or(s.Logger).Info("support.ticket_created",
		zap.String("request_id", telemetry.RequestIDFromContext(ctx)),
		zap.String("ticket_id", t.ID),
		zap.String("user_id", t.UserID),
	)
	return t, nil
}

// List returns the caller's most recent tickets.
func (s *Service) List(ctx context.Context, userID string) ([]Ticket, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	return s.Repo.ListByUser(ctx, userID, listLimit)
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}
