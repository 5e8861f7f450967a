package analyses

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"docaudit-backend/internal/extract"
	"docaudit-backend/internal/shared/server/middleware"
	"docaudit-backend/internal/shared/server/respond"
	"docaudit-backend/internal/usage"
)

// Handler wires HTTP handlers to the analyses service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches analysis routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/analyze", h.analyze)
	rg.POST("/analyze/comparison", h.compare)
	rg.GET("/analyses", h.listAnalyses)
	rg.GET("/analyses/:id", h.getAnalysis)
}

type analyzeRequest struct {
	DocumentID   string `json:"documentId"`
	AnalysisType string `json:"analysisType"`
}

func (h *Handler) analyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.DocumentID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "Document ID is required", nil)
		return
	}

	job, err := h.Svc.Analyze(c.Request.Context(), AnalyzeRequest{
		UserID:       middleware.UserIDFromContext(c),
		DocumentID:   req.DocumentID,
		AnalysisType: req.AnalysisType,
	})
	if err != nil {
		writeServiceError(c, err, "failed to run analysis")
		return
	}

	if job.Status == StatusFailed {
		msg := "Analysis failed"
		if job.ErrorMessage != nil {
			msg = *job.ErrorMessage
		}
		if job.ErrorCode != nil && *job.ErrorCode == ErrorCodeNotFound {
			respond.Error(c, http.StatusNotFound, "not_found", msg, gin.H{"analysisJobId": job.ID})
			return
		}
		respond.OK(c, gin.H{
			"message":       msg,
			"analysisJobId": job.ID,
			"job":           job,
		})
		return
	}

	respond.OK(c, gin.H{
		"message":       "Analysis completed successfully",
		"analysisJobId": job.ID,
		"results":       job.Results,
		"job":           job,
	})
}

type documentName struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type compareRequest struct {
	DocumentIDs   []string       `json:"documentIds"`
	Names         []string       `json:"names"`
	DocumentNames []documentName `json:"documentNames"`
}

func (r compareRequest) names() [2]string {
	var out [2]string
	for i := 0; i < len(out) && i < len(r.Names); i++ {
		out[i] = r.Names[i]
	}
	for _, dn := range r.DocumentNames {
		for i, id := range r.DocumentIDs {
			if i < len(out) && dn.ID == id && out[i] == "" {
				out[i] = dn.Name
			}
		}
	}
	return out
}

func (h *Handler) compare(c *gin.Context) {
	var req compareRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.DocumentIDs) != 2 {
		respond.Error(c, http.StatusBadRequest, "validation_error", "Exactly 2 document IDs are required", nil)
		return
	}

	job, err := h.Svc.Compare(c.Request.Context(), CompareRequest{
		UserID:      middleware.UserIDFromContext(c),
		DocumentIDs: [2]string{req.DocumentIDs[0], req.DocumentIDs[1]},
		Names:       req.names(),
	})
	if err != nil {
		writeServiceError(c, err, "Failed to compare documents")
		return
	}

	respond.OK(c, gin.H{
		"message":       "Comparison completed successfully",
		"analysisJobId": job.ID,
		"results":       job.Results,
		"job":           job,
	})
}

func (h *Handler) getAnalysis(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		respond.Error(c, http.StatusNotFound, "not_found", "Analysis not found", nil)
		return
	}
	job, err := h.Svc.Get(c.Request.Context(), middleware.UserIDFromContext(c), id)
	if err != nil {
		writeServiceError(c, err, "failed to fetch analysis")
		return
	}
	respond.OK(c, job)
}

func (h *Handler) listAnalyses(c *gin.Context) {
	limit := 20
	offset := 0
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if limit < 0 {
		limit = 0
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}
	if offset < 0 {
		offset = 0
	}

	jobs, err := h.Svc.List(c.Request.Context(), middleware.UserIDFromContext(c), limit, offset)
	if err != nil {
		writeServiceError(c, err, "failed to list analyses")
		return
	}
	respond.OK(c, gin.H{"analyses": jobs})
}

// writeServiceError maps errors returned by Service methods, as opposed to job-level failures.
func writeServiceError(c *gin.Context, err error, fallback string) {
	var (
		aiErr          *AIServiceError
		unsupportedErr *extract.UnsupportedTypeError
		extractionErr  *extract.ExtractionError
	)
	switch {
	case errors.Is(err, usage.ErrQuotaExceeded):
		respond.Error(c, http.StatusTooManyRequests, "limit_reached", usage.QuotaExceededMessage, []map[string]string{
			{"field": "usage", "issue": "limit_reached"},
		})
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "Analysis not found", nil)
	case errors.Is(err, extract.ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "Document not found", nil)
	case errors.Is(err, ErrEmptyDocument):
		respond.Error(c, http.StatusUnprocessableEntity, "extraction_error", msgEmptyDocument, nil)
	case errors.As(err, &unsupportedErr):
		respond.Error(c, http.StatusUnprocessableEntity, "unsupported_type", unsupportedErr.Error(), nil)
	case errors.As(err, &extractionErr):
		respond.Error(c, http.StatusUnprocessableEntity, "extraction_error", extractionErr.Reason, nil)
	case errors.Is(err, extract.ErrStorage):
		respond.Error(c, http.StatusBadGateway, "storage_error", msgStorage, nil)
	case errors.Is(err, ErrAITimeout):
		respond.Error(c, http.StatusGatewayTimeout, "ai_timeout", msgTimeout, nil)
	case errors.Is(err, ErrParse):
		respond.Error(c, http.StatusBadGateway, "parse_error", msgParse, nil)
	case errors.As(err, &aiErr):
		respond.Error(c, http.StatusBadGateway, "ai_service_error", sanitizeError(aiErr.Error()), nil)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		respond.Error(c, http.StatusRequestTimeout, "timeout", "request canceled", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", fallback, nil)
	}
}
