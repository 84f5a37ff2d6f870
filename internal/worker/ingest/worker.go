package ingestworker

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atlasfit/gym-crm-platform/cmd/mainconfig"
	appbootstrap "github.com/atlasfit/gym-crm-platform/internal/app/bootstrap"
	appconfig "github.com/atlasfit/gym-crm-platform/internal/config"
	"github.com/atlasfit/gym-crm-platform/internal/forms"
	"github.com/atlasfit/gym-crm-platform/internal/ingest"
	"github.com/atlasfit/gym-crm-platform/internal/observability/metrics"
	"github.com/atlasfit/gym-crm-platform/pkg/logging"
)

// Run starts the async lead ingestion worker and blocks until ctx is canceled.
func Run(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) error {
	if cfg == nil {
		return fmt.Errorf("ingest worker requires config")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if cfg.UseMemoryQueue {
		return fmt.Errorf("ingest worker cannot run when USE_MEMORY_QUEUE=true; run inline workers via the API process instead")
	}
	if cfg.LeadQueueURL == "" {
		return fmt.Errorf("ingest worker requires LEAD_QUEUE_URL")
	}

	var dbPool *pgxpool.Pool
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("worker failed to connect to postgres: %w", err)
		}
		dbPool = pool
		defer dbPool.Close()
	}

	awsConfig, err := mainconfig.LoadAWSConfig(context.Background(), cfg)
	if err != nil {
		return fmt.Errorf("failed to load AWS config: %w", err)
	}
	sqsClient := sqs.NewFromConfig(awsConfig)
	queue := ingest.NewSQSQueue(sqsClient, cfg.LeadQueueURL)

	redisClient := appbootstrap.BuildRedisClient(ctx, cfg, logger, true)
	formsRepo := appbootstrap.BuildFormsRepository(dbPool, redisClient, cfg, logger)
	formsSvc := forms.NewService(formsRepo, logger,
		forms.WithPhoneRegion(cfg.DefaultPhoneRegion),
		forms.WithDefaultLeadSource(cfg.DefaultLeadSource),
	)

	service := ingest.NewService(
		formsSvc,
		appbootstrap.BuildContactsRepository(dbPool, logger),
		appbootstrap.BuildLeadStore(dbPool, logger),
		appbootstrap.BuildDedupStore(dbPool, logger),
		appbootstrap.BuildNotifyService(cfg, logger),
		metrics.NewIngestMetrics(nil),
		logger,
	)

	worker := ingest.NewWorker(service, queue, logger,
		ingest.WithWorkerCount(cfg.WorkerCount),
	)

	logger.Info("ingest worker starting",
		"workers", cfg.WorkerCount,
		"queue_url", cfg.LeadQueueURL,
		"db", cfg.DatabaseURL != "",
	)

	worker.Start(ctx)
	worker.Wait()
	logger.Info("ingest worker stopped")
	return nil
}
