package users

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
)

type Service struct {
	Repo Repo
}

func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

// UpdateProfile stores the caller's email and display name.
func (s *Service) UpdateProfile(ctx context.Context, user User) (User, error) {
	if s == nil || s.Repo == nil {
		return User{}, errors.New("users service not configured")
	}
	user.ID = strings.TrimSpace(user.ID)
	user.Email = strings.TrimSpace(user.Email)
	user.FullName = strings.TrimSpace(user.FullName)
	if user.ID == "" {
		return User{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if user.Email != "" {
		if _, err := mail.ParseAddress(user.Email); err != nil {
			return User{}, fmt.Errorf("%w: invalid email", ErrInvalidInput)
		}
	}
	if err := s.Repo.Upsert(ctx, user); err != nil {
		return User{}, err
	}
	return s.Repo.GetByID(ctx, user.ID)
}

func (s *Service) GetByID(ctx context.Context, userID string) (User, error) {
	if s == nil || s.Repo == nil {
		return User{}, errors.New("users service not configured")
	}
	if strings.TrimSpace(userID) == "" {
		return User{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	return s.Repo.GetByID(ctx, userID)
}

// Email returns the stored email for userID, used when a token carries none.
func (s *Service) Email(ctx context.Context, userID string) (string, error) {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	return user.Email, nil
}
