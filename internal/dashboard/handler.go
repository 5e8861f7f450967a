package dashboard

import (
	"net/http"

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
	rg.GET("/dashboard/stats", h.stats)
}

func (h *Handler) stats(c *gin.Context) {
	if h.Svc == nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "service unavailable", nil)
		return
	}
	stats, err := h.Svc.Stats(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "Failed to fetch dashboard stats", nil)
		return
	}
	respond.OK(c, stats)
}
