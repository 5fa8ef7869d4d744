// Command resetusage zeroes every user's monthly API usage counters. It is
// intended to be invoked by an external cron job on the first of each month.
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/agentmart/agentmart-backend/internal/adapter/postgres"
	"github.com/agentmart/agentmart-backend/internal/adapter/postgres/user"
	"github.com/agentmart/agentmart-backend/internal/app"
	"github.com/agentmart/agentmart-backend/internal/config"
	"github.com/agentmart/agentmart-backend/internal/service/quota"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := app.NewLogger(cfg.Log)
	logger.Info("resetusage starting", slog.String("version", app.BuildVersion()))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Error("connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	userRepo := user.New(pool)
	svc := quota.NewService(logger, userRepo, cfg.Quota)

	reset, err := svc.ResetAllMonthly(ctx)
	if err != nil {
		logger.Error("monthly reset failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("monthly reset completed", slog.Int64("users", reset))
}
