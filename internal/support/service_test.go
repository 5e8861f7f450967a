package support

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestCreateTicketOpensAndLogs(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	repo := NewMemoryRepo()
	svc := &Service{Repo: repo, Logger: zap.New(core)}

	ticket, err := svc.Create(context.Background(), CreateInput{
		UserID:  "user-1",
		Name:    " Ada ",
		Email:   "ada@example.com",
		Subject: "Report export",
		Message: "The PDF is blank.",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if ticket.Status != StatusOpen || ticket.Name != "Ada" || ticket.ID == "" {
		t.Fatalf("unexpected ticket %+v", ticket)
	}
	if n := logs.FilterMessage("support.ticket_created").Len(); n != 1 {
		t.Fatalf("expected one creation log, got %d", n)
	}

	tickets, err := svc.List(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(tickets) != 1 || tickets[0].ID != ticket.ID {
		t.Fatalf("expected stored ticket, got %+v", tickets)
	}
	if others, _ := svc.List(context.Background(), "user-2"); len(others) != 0 {
		t.Fatalf("expected no tickets for another user, got %d", len(others))
	}
}

func TestCreateTicketValidation(t *testing.T) {
	svc := NewService(NewMemoryRepo(), zap.NewNop())
	tests := []struct {
		name string
		in   CreateInput
	}{
		{name: "missing subject", in: CreateInput{UserID: "u", Email: "a@example.com", Message: "m"}},
		{name: "missing message", in: CreateInput{UserID: "u", Email: "a@example.com", Subject: "s"}},
		{name: "missing email", in: CreateInput{UserID: "u", Subject: "s", Message: "m"}},
		{name: "bad email", in: CreateInput{UserID: "u", Email: "nope", Subject: "s", Message: "m"}},
		{name: "missing user", in: CreateInput{Email: "a@example.com", Subject: "s", Message: "m"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Create(context.Background(), tt.in); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestCreateTicketUsesFallbackEmail(t *testing.T) {
	svc := NewService(NewMemoryRepo(), zap.NewNop())
	svc.Now = func() time.Time { return time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC) }

	ticket, err := svc.Create(context.Background(), CreateInput{
		UserID:        "user-1",
		FallbackEmail: "token@example.com",
		Subject:       "Quota",
		Message:       "Please raise my limit.",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if ticket.Email != "token@example.com" {
		t.Fatalf("expected fallback email, got %q", ticket.Email)
	}
	if !ticket.CreatedAt.Equal(time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected created at %s", ticket.CreatedAt)
	}
}
