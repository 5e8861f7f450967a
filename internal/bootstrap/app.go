package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"docaudit-backend/internal/analyses"
	"docaudit-backend/internal/dashboard"
	"docaudit-backend/internal/documents"
	"docaudit-backend/internal/extract"
	"docaudit-backend/internal/llm"
	"docaudit-backend/internal/llm/gemini"
	"docaudit-backend/internal/llm/jetify"
	"docaudit-backend/internal/reports"
	"docaudit-backend/internal/shared/config"
	"docaudit-backend/internal/shared/server"
	"docaudit-backend/internal/shared/storage/db"
	"docaudit-backend/internal/shared/storage/object"
	localstore "docaudit-backend/internal/shared/storage/object/local"
	s3store "docaudit-backend/internal/shared/storage/object/s3"
	"docaudit-backend/internal/shared/telemetry"
	"docaudit-backend/internal/support"
	"docaudit-backend/internal/usage"
	"docaudit-backend/internal/users"
)

// App holds shared dependencies and the wired router.
type App struct {
	Config           config.Config
	Router           *gin.Engine
	DB               *sql.DB
	Store            object.ObjectStore
	Logger           *zap.Logger
	DocumentsRepo    documents.DocumentsRepo
	AnalysesRepo     analyses.Repo
	ReportsRepo      reports.Repo
	UsersRepo        users.Repo
	SupportRepo      support.Repo
	DocumentsService *documents.Service
	UsageService     *usage.Service
	AnalysesService  *analyses.Service
	ReportsService   *reports.Service
	DashboardService *dashboard.Service
	UsersService     *users.Service
	SupportService   *support.Service
	DocumentsHandler *documents.Handler
	AnalysisHandler  *analyses.Handler
	ReportsHandler   *reports.Handler
	UsageHandler     *usage.Handler
	DashboardHandler *dashboard.Handler
	UsersHandler     *users.Handler
	SupportHandler   *support.Handler
	LLM              llm.Client
	ComparisonPolicy analyses.ComparisonQuotaPolicy
	InMemoryFallback bool
}

// Build connects storage, wires services and handlers, and builds the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()
	log := telemetry.L()

	sqlDB, err := buildDB(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:           cfg,
		DB:               sqlDB,
		Store:            store,
		Logger:           log,
		InMemoryFallback: sqlDB == nil,
	}

	if err := buildServices(app); err != nil {
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:           app.Config,
		Logger:           log,
		DocumentHandler:  app.DocumentsHandler,
		AnalysisHandler:  app.AnalysisHandler,
		ReportHandler:    app.ReportsHandler,
		UsageHandler:     app.UsageHandler,
		DashboardHandler: app.DashboardHandler,
		UserHandler:      app.UsersHandler,
		SupportHandler:   app.SupportHandler,
	})

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config, log *zap.Logger) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Warn("bootstrap.memory_fallback", zap.String("reason", "DATABASE_URL empty"))
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	var (
		sqlDB *sql.DB
		err   error
	)
	if db.IsLambdaRuntime() {
		sqlDB, err = db.GetSingleton(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultLambdaOptions()))
	} else {
		sqlDB, err = db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
	}
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Warn("bootstrap.memory_fallback", zap.String("reason", "database connect failed"), zap.Error(err))
			return nil, nil
		}
		return nil, err
	}

	if cfg.RunMigrations {
		if err := db.RunMigrations(ctx, sqlDB); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

// NewLLMClient picks the provider client. Without a provider every analysis
// fails with an AI service error, which keeps the rest of the API usable.
func NewLLMClient(cfg config.Config, log *zap.Logger) (llm.Client, string, error) {
	switch cfg.AIProvider {
	case "gemini":
		opts := []gemini.Option{gemini.WithLogger(log)}
		if cfg.AIBaseURL != "" {
			opts = append(opts, gemini.WithBaseURL(cfg.AIBaseURL))
		}
		client, err := gemini.NewClient(cfg.AIAPIKey, cfg.AIModel, opts...)
		if err != nil {
			return nil, "", err
		}
		return client, client.Model(), nil
	case jetify.ProviderOpenAI, jetify.ProviderAnthropic:
		client, err := jetify.NewClient(cfg.AIProvider, cfg.AIAPIKey, cfg.AIModel, cfg.AIBaseURL, log)
		if err != nil {
			return nil, "", err
		}
		return client, client.Model(), nil
	default:
		log.Warn("bootstrap.ai_not_configured", zap.String("provider", cfg.AIProvider))
		return llm.PlaceholderClient{}, "none", nil
	}
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}

func buildServices(app *App) error {
	var (
		docRepo      documents.DocumentsRepo
		analysisRepo analyses.Repo
		reportRepo   reports.Repo
		userRepo     users.Repo
		supportRepo  support.Repo
		usageSvc     *usage.Service
	)

	plans := usage.DefaultPlans().WithOverrides(app.Config.PlanLimits)
	if app.DB != nil {
		docRepo = &documents.PGRepo{DB: app.DB}
		analysisRepo = &analyses.PGRepo{DB: app.DB}
		reportRepo = &reports.PGRepo{DB: app.DB}
		userRepo = &users.PGRepo{DB: app.DB}
		supportRepo = &support.PGRepo{DB: app.DB}
		usageSvc = usage.NewPostgresService(usage.NewPGStore(app.DB), plans)
	} else {
		docRepo = documents.NewMemoryRepo()
		analysisRepo = analyses.NewMemoryRepo()
		reportRepo = reports.NewMemoryRepo()
		userRepo = users.NewMemoryRepo()
		supportRepo = support.NewMemoryRepo()
		usageSvc = usage.NewService(plans)
	}

	policy := analyses.ParseComparisonQuotaPolicy(app.Config.ComparisonQuotaPolicy)

	llmClient, model, err := NewLLMClient(app.Config, app.Logger)
	if err != nil {
		return err
	}

	docSvc := &documents.Service{
		Store:  app.Store,
		Repo:   docRepo,
		Owners: usageSvc,
		Logger: app.Logger,
	}

	analysisSvc := &analyses.Service{
		Repo:             analysisRepo,
		Documents:        docSvc,
		Extractor:        &extract.Extractor{Docs: docSvc, Store: app.Store},
		Quota:            usageSvc,
		AI:               analyses.NewAIClient(llmClient, app.Config.AITimeout),
		Model:            model,
		ComparisonPolicy: policy,
		Logger:           app.Logger,
	}

	userSvc := users.NewService(userRepo)

	reportSvc := &reports.Service{
		Repo:   reportRepo,
		Jobs:   analysisSvc,
		Docs:   docSvc,
		Emails: userSvc,
		Logger: app.Logger,
	}

	dashboardSvc := dashboard.NewService(docSvc, analysisRepo, reportSvc)
	supportSvc := support.NewService(supportRepo, app.Logger)

	app.DocumentsRepo = docRepo
	app.AnalysesRepo = analysisRepo
	app.ReportsRepo = reportRepo
	app.UsersRepo = userRepo
	app.SupportRepo = supportRepo
	app.DocumentsService = docSvc
	app.UsageService = usageSvc
	app.AnalysesService = analysisSvc
	app.ReportsService = reportSvc
	app.DashboardService = dashboardSvc
	app.UsersService = userSvc
	app.SupportService = supportSvc
	app.LLM = llmClient
	app.ComparisonPolicy = policy
	app.DocumentsHandler = documents.NewHandler(docSvc)
	app.AnalysisHandler = analyses.NewHandler(analysisSvc)
	app.ReportsHandler = reports.NewHandler(reportSvc)
	app.UsageHandler = usage.NewHandler(usageSvc, docSvc, reportSvc)
	app.DashboardHandler = dashboard.NewHandler(dashboardSvc)
	app.UsersHandler = users.NewHandler(userSvc, usageSvc)
	app.SupportHandler = support.NewHandler(supportSvc)

	if app.DocumentsHandler == nil || app.AnalysisHandler == nil || app.UsageHandler == nil {
		return errors.New("failed to initialize handlers")
	}

	return nil
}
