// Command purgetraces deletes traces whose retention period has elapsed.
// It is intended to be invoked by an external cron job, not as an in-process
// goroutine.
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
	"github.com/agentmart/agentmart-backend/internal/adapter/postgres/trace"
	"github.com/agentmart/agentmart-backend/internal/adapter/postgres/user"
	"github.com/agentmart/agentmart-backend/internal/app"
	"github.com/agentmart/agentmart-backend/internal/config"
	"github.com/agentmart/agentmart-backend/internal/service/quota"
	"github.com/agentmart/agentmart-backend/internal/service/tracelife"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := app.NewLogger(cfg.Log)
	logger.Info("purgetraces starting", slog.String("version", app.BuildVersion()))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Error("connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	traceRepo := trace.New(pool)
	userRepo := user.New(pool)
	quotaSvc := quota.NewService(logger, userRepo, cfg.Quota)

	svc := tracelife.NewService(logger, traceRepo, quotaSvc,
		cfg.Quota.TraceRetentionDays, cfg.Quota.PurgeBatchSize)

	deleted, err := svc.PurgeExpired(ctx)
	if err != nil {
		logger.Error("purge failed",
			slog.String("error", err.Error()),
			slog.Int64("deleted_before_failure", deleted),
		)
		os.Exit(1)
	}

	logger.Info("purge completed", slog.Int64("deleted", deleted))
}
