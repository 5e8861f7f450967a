package reports

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"docaudit-backend/internal/shared/server/middleware"
	"docaudit-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the reports service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches report routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/reports/generate", h.generate)
	rg.GET("/reports", h.list)
}

type generateRequest struct {
	AnalysisJobID string `json:"analysisJobId"`
	ReportType    string `json:"reportType"`
}

func (h *Handler) generate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.AnalysisJobID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "Analysis job ID required", nil)
		return
	}

	out, err := h.Svc.Generate(c.Request.Context(), GenerateRequest{
		UserID:        middleware.UserIDFromContext(c),
		UserEmail:     middleware.UserEmailFromContext(c),
		AnalysisJobID: req.AnalysisJobID,
		ReportType:    req.ReportType,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "Analysis job not found", nil)
		case errors.Is(err, ErrJobNotCompleted):
			respond.Error(c, http.StatusBadRequest, "validation_error", "Analysis not completed yet", nil)
		case errors.Is(err, ErrInvalidType):
			respond.Error(c, http.StatusBadRequest, "validation_error", "Invalid report type", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "Failed to generate report", nil)
		}
		return
	}

	respond.Attachment(c, out.FileName, out.ContentType, out.Body)
}

func (h *Handler) list(c *gin.Context) {
	page, limit := respond.PageParams(c, 10, 50)
	reports, total, err := h.Svc.List(c.Request.Context(), middleware.UserIDFromContext(c), page, limit)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "Failed to fetch reports", nil)
		return
	}
	respond.OK(c, gin.H{
		"reports":    reports,
		"pagination": respond.NewPagination(page, limit, total),
	})
}
