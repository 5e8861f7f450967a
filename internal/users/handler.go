package users

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"docaudit-backend/internal/shared/server/middleware"
	"docaudit-backend/internal/shared/server/respond"
	"docaudit-backend/internal/usage"
)

// UsageReader reports the caller's quota counter.
type UsageReader interface {
	Get(ctx context.Context, userID string) (usage.Counter, error)
}

type Handler struct {
	Svc   *Service
	Usage UsageReader
}

func NewHandler(svc *Service, usageReader UsageReader) *Handler {
	return &Handler{Svc: svc, Usage: usageReader}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/me", h.me)
	rg.PUT("/me", h.update)
}

type profileRequest struct {
	Email    string `json:"email"`
	FullName string `json:"fullName"`
}

func (h *Handler) me(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	user, err := h.Svc.GetByID(c.Request.Context(), userID)
	switch {
	case errors.Is(err, ErrNotFound):
		user = User{ID: userID, Email: middleware.UserEmailFromContext(c)}
	case err != nil:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load user", nil)
		return
	}
	h.writeProfile(c, user)
}

func (h *Handler) update(c *gin.Context) {
	if middleware.IsGuest(c) {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "login required", nil)
		return
	}
	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	user, err := h.Svc.UpdateProfile(c.Request.Context(), User{
		ID:       middleware.UserIDFromContext(c),
		Email:    req.Email,
		FullName: req.FullName,
	})
	if err != nil {
		if errors.Is(err, ErrInvalidInput) {
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to update user", nil)
		return
	}
	h.writeProfile(c, user)
}

func (h *Handler) writeProfile(c *gin.Context, user User) {
	body := gin.H{
		"id":       user.ID,
		"email":    user.Email,
		"fullName": user.FullName,
		"isGuest":  middleware.IsGuest(c),
	}
	if h.Usage != nil {
		if counter, err := h.Usage.Get(c.Request.Context(), user.ID); err == nil {
			body["usage"] = counter
		}
	}
	respond.OK(c, body)
}
