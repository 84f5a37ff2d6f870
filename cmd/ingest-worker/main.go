package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	appconfig "github.com/atlasfit/gym-crm-platform/internal/config"
	ingestworker "github.com/atlasfit/gym-crm-platform/internal/worker/ingest"
	"github.com/atlasfit/gym-crm-platform/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting gym-crm-platform ingest worker", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := ingestworker.Run(ctx, cfg, logger); err != nil {
		logger.Error("ingest worker failed", "error", err)
		os.Exit(1)
	}
}
