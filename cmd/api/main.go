package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/atlasfit/gym-crm-platform/cmd/mainconfig"
	"github.com/atlasfit/gym-crm-platform/internal/api/router"
	appbootstrap "github.com/atlasfit/gym-crm-platform/internal/app/bootstrap"
	appconfig "github.com/atlasfit/gym-crm-platform/internal/config"
	"github.com/atlasfit/gym-crm-platform/internal/forms"
	"github.com/atlasfit/gym-crm-platform/internal/ingest"
	"github.com/atlasfit/gym-crm-platform/internal/observability/metrics"
	"github.com/atlasfit/gym-crm-platform/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	if cfg.Env == "development" {
		logger = logging.NewText(cfg.LogLevel)
	}
	logger.Info("starting gym-crm-platform API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var dbPool *pgxpool.Pool
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		dbPool = pool
		defer dbPool.Close()
	}

	redisClient := appbootstrap.BuildRedisClient(ctx, cfg, logger, true)
	formsRepo := appbootstrap.BuildFormsRepository(dbPool, redisClient, cfg, logger)
	formsSvc := forms.NewService(formsRepo, logger,
		forms.WithPhoneRegion(cfg.DefaultPhoneRegion),
		forms.WithDefaultLeadSource(cfg.DefaultLeadSource),
	)

	registry := prometheus.NewRegistry()
	ingestMetrics := metrics.NewIngestMetrics(registry)

	// Jobs go to SQS in production; the memory queue runs an inline worker
	// so local setups work without AWS.
	var inlineWorker *ingest.Worker

	ingestSvc := ingest.NewService(
		formsSvc,
		appbootstrap.BuildContactsRepository(dbPool, logger),
		appbootstrap.BuildLeadStore(dbPool, logger),
		appbootstrap.BuildDedupStore(dbPool, logger),
		appbootstrap.BuildNotifyService(cfg, logger),
		ingestMetrics,
		logger,
	)

	var publisher *ingest.Publisher
	if cfg.UseMemoryQueue {
		memQueue := ingest.NewMemoryQueue(256)
		publisher = ingest.NewPublisher(memQueue, logger)
		inlineWorker = ingest.NewWorker(ingestSvc, memQueue, logger,
			ingest.WithWorkerCount(cfg.WorkerCount),
		)
		inlineWorker.Start(ctx)
		logger.Info("memory queue enabled, running inline ingest workers", "workers", cfg.WorkerCount)
	} else {
		awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			logger.Error("failed to load AWS config", "error", err)
			os.Exit(1)
		}
		sqsQueue := ingest.NewSQSQueue(sqs.NewFromConfig(awsCfg), cfg.LeadQueueURL)
		publisher = ingest.NewPublisher(sqsQueue, logger)
	}

	routerCfg := &router.Config{
		Logger:             logger,
		FormsHandler:       forms.NewHandler(formsSvc, logger),
		WebhookHandler:     ingest.NewHandler(publisher, cfg.WebhookVerifyToken, ingestMetrics, logger),
		MetricsHandler:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		AdminAuthSecret:    cfg.AdminJWTSecret,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	}
	r := router.New(routerCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	if inlineWorker != nil {
		inlineWorker.Wait()
	}

	logger.Info("server stopped")
}
