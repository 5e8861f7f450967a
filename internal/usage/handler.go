package usage

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"docaudit-backend/internal/shared/server/middleware"
	"docaudit-backend/internal/shared/server/respond"
)

// DocumentCounter counts a user's uploads since a point in time.
type DocumentCounter interface {
	CountSince(ctx context.Context, userID string, since time.Time) (int, error)
}

// ReportCounter counts a user's generated reports.
type ReportCounter interface {
	CountByUser(ctx context.Context, userID string) (int, error)
}

// Handler exposes usage endpoints.
type Handler struct {
	Svc     *Service
	Docs    DocumentCounter
	Reports ReportCounter
	Now     func() time.Time
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, docs DocumentCounter, reports ReportCounter) *Handler {
	return &Handler{Svc: svc, Docs: docs, Reports: reports, Now: time.Now}
}

// RegisterRoutes attaches usage routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/usage", h.getUsage)
}

// RegisterDevRoutes attaches dev-only usage routes.
func (h *Handler) RegisterDevRoutes(rg *gin.RouterGroup) {
	rg.POST("/usage/tier", h.setTier)
}

func (h *Handler) getUsage(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.UserIDFromContext(c)
	u, err := h.Svc.Get(ctx, userID)
	if err != nil {
		writeUsageError(c, err, "failed to fetch usage")
		return
	}

	docsThisMonth := 0
	if h.Docs != nil {
		if docsThisMonth, err = h.Docs.CountSince(ctx, userID, monthStart(h.now())); err != nil {
			writeUsageError(c, err, "failed to count documents")
			return
		}
	}
	reports := 0
	if h.Reports != nil {
		if reports, err = h.Reports.CountByUser(ctx, userID); err != nil {
			writeUsageError(c, err, "failed to count reports")
			return
		}
	}

	respond.OK(c, gin.H{
		"current_usage":        u.UsageCount,
		"usage_limit":          u.UsageLimit,
		"subscription_tier":    u.SubscriptionTier,
		"remaining":            u.Remaining(),
		"documents_this_month": docsThisMonth,
		"reports_generated":    reports,
	})
}

type setTierRequest struct {
	Tier string `json:"tier"`
}

func (h *Handler) setTier(c *gin.Context) {
	var req setTierRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Tier == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "tier is required", gin.H{"tiers": h.Svc.Plans().Tiers()})
		return
	}
	u, err := h.Svc.SetTier(c.Request.Context(), middleware.UserIDFromContext(c), req.Tier)
	if err != nil {
		if errors.Is(err, ErrUnknownTier) {
			respond.Error(c, http.StatusBadRequest, "validation_error", "unknown tier", gin.H{"tiers": h.Svc.Plans().Tiers()})
			return
		}
		writeUsageError(c, err, "failed to update tier")
		return
	}
	respond.OK(c, u)
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func monthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func writeUsageError(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		respond.Error(c, http.StatusRequestTimeout, "timeout", "request canceled", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", msg, nil)
	}
}
