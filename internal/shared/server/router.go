package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"docaudit-backend/internal/analyses"
	"docaudit-backend/internal/dashboard"
	"docaudit-backend/internal/documents"
	"docaudit-backend/internal/reports"
	"docaudit-backend/internal/shared/config"
	"docaudit-backend/internal/shared/metrics"
	"docaudit-backend/internal/shared/server/middleware"
	"docaudit-backend/internal/shared/server/respond"
	"docaudit-backend/internal/shared/telemetry"
	"docaudit-backend/internal/support"
	"docaudit-backend/internal/usage"
	"docaudit-backend/internal/users"
)

const (
	healthPath  = "/api/v1/health"
	metricsPath = "/metrics"
)

// RouterDeps carries the handlers mounted under /api/v1. Nil handlers are skipped.
type RouterDeps struct {
	Config           config.Config
	Logger           *zap.Logger
	DocumentHandler  *documents.Handler
	AnalysisHandler  *analyses.Handler
	ReportHandler    *reports.Handler
	UsageHandler     *usage.Handler
	DashboardHandler *dashboard.Handler
	UserHandler      *users.Handler
	SupportHandler   *support.Handler
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	cfg := deps.Config
	log := telemetry.Or(deps.Logger)
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.MaxMultipartMemory = documents.MaxUploadSize

	r.Use(
		middleware.RequestID(),
		middleware.Logging(log),
		middleware.Recovery(log),
		middleware.CORS(cfg.CORSAllowOrigin),
		middleware.Auth(cfg.Env, healthPath, metricsPath),
	)

	r.GET(metricsPath, metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})

	if deps.DocumentHandler != nil {
		deps.DocumentHandler.RegisterRoutes(api)
	}
	if deps.AnalysisHandler != nil {
		deps.AnalysisHandler.RegisterRoutes(api)
	}
	if deps.ReportHandler != nil {
		deps.ReportHandler.RegisterRoutes(api)
	}
	if deps.UsageHandler != nil {
		deps.UsageHandler.RegisterRoutes(api)
	}
	if deps.DashboardHandler != nil {
		deps.DashboardHandler.RegisterRoutes(api)
	}
	if deps.UserHandler != nil {
		deps.UserHandler.RegisterRoutes(api)
	}
	if deps.SupportHandler != nil {
		deps.SupportHandler.RegisterRoutes(api)
	}
	if cfg.Env == "dev" && deps.UsageHandler != nil {
		deps.UsageHandler.RegisterDevRoutes(api.Group("/dev"))
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
