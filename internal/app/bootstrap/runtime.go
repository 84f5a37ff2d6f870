package bootstrap

import (
	"context"
	"crypto/tls"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	appconfig "github.com/atlasfit/gym-crm-platform/internal/config"
	"github.com/atlasfit/gym-crm-platform/internal/contacts"
	"github.com/atlasfit/gym-crm-platform/internal/forms"
	"github.com/atlasfit/gym-crm-platform/internal/ingest"
	"github.com/atlasfit/gym-crm-platform/internal/notify"
	"github.com/atlasfit/gym-crm-platform/pkg/logging"
)

// BuildRedisClient connects to redis when configured, optionally verifying
// the connection. Returns nil when redis is not available.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available", "error", err)
		return nil
	}
	return client
}

// BuildFormsRepository picks the mapping store for the environment: postgres
// behind a redis read-through cache when both are up, in-memory otherwise.
func BuildFormsRepository(pool *pgxpool.Pool, redisClient *redis.Client, cfg *appconfig.Config, logger *logging.Logger) forms.Repository {
	if logger == nil {
		logger = logging.Default()
	}
	if pool == nil {
		logger.Warn("no database configured, using in-memory mapping store")
		return forms.NewInMemoryRepository()
	}

	var repo forms.Repository = forms.NewPostgresRepository(pool)
	if redisClient != nil {
		repo = forms.NewCachedRepository(repo, redisClient, cfg.MappingsTTL, logger)
		logger.Info("mapping cache enabled", "ttl", cfg.MappingsTTL)
	}
	return repo
}

// BuildContactsRepository picks the contact store for the environment.
func BuildContactsRepository(pool *pgxpool.Pool, logger *logging.Logger) contacts.Repository {
	if pool == nil {
		if logger != nil {
			logger.Warn("no database configured, using in-memory contact store")
		}
		return contacts.NewInMemoryRepository()
	}
	return contacts.NewPostgresRepository(pool)
}

// BuildLeadStore picks the lead record store for the environment.
func BuildLeadStore(pool *pgxpool.Pool, logger *logging.Logger) ingest.LeadStore {
	if pool == nil {
		if logger != nil {
			logger.Warn("no database configured, using in-memory lead store")
		}
		return ingest.NewMemoryLeadStore()
	}
	return ingest.NewPostgresLeadStore(pool)
}

// BuildDedupStore picks the delivery dedup store for the environment.
func BuildDedupStore(pool *pgxpool.Pool, logger *logging.Logger) ingest.DedupStore {
	if pool == nil {
		if logger != nil {
			logger.Warn("no database configured, using in-memory dedup store")
		}
		return ingest.NewMemoryDedupStore()
	}
	return ingest.NewProcessedStore(pool)
}

// BuildNotifyService wires the SendGrid sender, falling back to the logging
// stub when no API key is configured.
func BuildNotifyService(cfg *appconfig.Config, logger *logging.Logger) *notify.Service {
	if logger == nil {
		logger = logging.Default()
	}

	var sender notify.EmailSender
	if sg := notify.NewSendGridSender(notify.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.SendGridFromEmail,
		FromName:  cfg.SendGridFromName,
	}, logger); sg != nil {
		sender = sg
		logger.Info("sendgrid notifications enabled", "from", cfg.SendGridFromEmail)
	} else {
		sender = notify.NewStubEmailSender(logger)
		logger.Info("sendgrid not configured, notifications stubbed")
	}

	return notify.NewService(sender, cfg.NotifyEmail, logger)
}
