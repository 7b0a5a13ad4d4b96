// Command seeder applies migrations and sets the admin password from
// ADMIN_NAME and ADMIN_PASSWORD.
package main

import (
	"context"
	"log"
	"time"

	"github.com/ariefcatur/go-custom-goods/internal/auth"
	"github.com/ariefcatur/go-custom-goods/internal/config"
	"github.com/ariefcatur/go-custom-goods/internal/logging"
	"github.com/ariefcatur/go-custom-goods/internal/postgres"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.AdminPassword == "" {
		logger.Fatal("ADMIN_PASSWORD is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()

	if err := postgres.Migrate(ctx, db); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	svc := &auth.Service{Store: &auth.Repo{DB: db}}
	admin, err := svc.SetPassword(ctx, cfg.AdminName, cfg.AdminPassword)
	if err != nil {
		logger.Fatal("seed admin", zap.Error(err))
	}
	logger.Info("admin seeded", zap.Int("id", admin.ID), zap.String("name", admin.Name))
}
