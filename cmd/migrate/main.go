package main

// Run database migrations:
//   go run ./cmd/migrate [up|down|status]

import (
	"context"
	"os"

	"go.uber.org/zap"

	"docaudit-backend/internal/shared/config"
	"docaudit-backend/internal/shared/storage/db"
	"docaudit-backend/internal/shared/telemetry"
)

func main() {
	cfg := config.Load()
	logger, err := telemetry.Init(cfg.Env, cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()
	ctx := context.Background()

	command := "up"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	opts := db.OptionsFromEnv(db.DefaultMigrateOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		logger.Error("failed to connect database", zap.Error(err))
		os.Exit(1)
	}
	defer sqlDB.Close()

	switch command {
	case "up":
		err = db.RunMigrations(ctx, sqlDB)
	case "down":
		err = db.RollbackMigration(ctx, sqlDB)
	case "status":
		err = db.MigrationStatus(ctx, sqlDB)
	default:
		logger.Error("unknown migrate command", zap.String("command", command))
		os.Exit(2)
	}
	if err != nil {
		logger.Error("migration failed", zap.String("command", command), zap.Error(err))
		os.Exit(1)
	}
	logger.Info("migration finished", zap.String("command", command))
}
