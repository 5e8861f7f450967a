package support

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"docaudit-backend/internal/shared/server/middleware"
	"docaudit-backend/internal/shared/server/respond"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/support", h.create)
	rg.GET("/support/tickets", h.list)
}

type ticketRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

func (h *Handler) create(c *gin.Context) {
	if middleware.IsGuest(c) {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "login required", nil)
		return
	}
	var req ticketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	ticket, err := h.Svc.Create(c.Request.Context(), CreateInput{
		UserID:        middleware.UserIDFromContext(c),
		Name:          req.Name,
		Email:         req.Email,
		FallbackEmail: middleware.UserEmailFromContext(c),
		Subject:       req.Subject,
		Message:       req.Message,
	})
	if err != nil {
		if errors.Is(err, ErrInvalidInput) {
			msg := strings.TrimPrefix(err.Error(), ErrInvalidInput.Error()+": ")
			respond.Error(c, http.StatusBadRequest, "validation_error", msg, nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "Failed to create support ticket", nil)
		return
	}
	respond.JSON(c, http.StatusCreated, gin.H{
		"message": "Support ticket created successfully",
		"ticket":  ticket,
	})
}

func (h *Handler) list(c *gin.Context) {
	if middleware.IsGuest(c) {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "login required", nil)
		return
	}
	tickets, err := h.Svc.List(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list support tickets", nil)
		return
	}
	respond.OK(c, gin.H{"tickets": tickets})
}
