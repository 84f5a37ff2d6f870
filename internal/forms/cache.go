package forms

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/atlasfit/gym-crm-platform/internal/fieldmap"
	"github.com/atlasfit/gym-crm-platform/pkg/logging"
)

// CachedRepository is a read-through Redis cache in front of another
// Repository. Cache problems never fail a request; they degrade to the inner
// repository.
type CachedRepository struct {
	inner  Repository
	client *redis.Client
	ttl    time.Duration
	logger *logging.Logger
}

// NewCachedRepository wraps inner with a Redis cache. A nil client would make
// the wrapper pointless, so it panics rather than degrade silently.
func NewCachedRepository(inner Repository, client *redis.Client, ttl time.Duration, logger *logging.Logger) *CachedRepository {
	if inner == nil {
		panic("forms: inner repository required")
	}
	if client == nil {
		panic("forms: redis client required")
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &CachedRepository{inner: inner, client: client, ttl: ttl, logger: logger}
}

func cacheKey(orgID, formID string) string {
	return "fieldmap:" + orgID + ":" + formID
}

// Load returns the cached configuration when fresh, falling back to the inner
// repository and repopulating on a miss. ErrNotFound is never cached.
func (c *CachedRepository) Load(ctx context.Context, orgID, formID string) (*fieldmap.StoredMappings, error) {
	key := cacheKey(orgID, formID)

	raw, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var stored fieldmap.StoredMappings
		if err := json.Unmarshal(raw, &stored); err == nil {
			return &stored, nil
		}
		// Corrupt entry: drop it and fall through to the source of truth.
		c.logger.Warn("forms cache entry corrupt, evicting", "key", key)
		c.client.Del(ctx, key)
	} else if !errors.Is(err, redis.Nil) {
		c.logger.Warn("forms cache read failed", "error", err, "key", key)
	}

	stored, err := c.inner.Load(ctx, orgID, formID)
	if err != nil {
		return nil, err
	}

	if encoded, err := json.Marshal(stored); err == nil {
		if err := c.client.Set(ctx, key, encoded, c.ttl).Err(); err != nil {
			c.logger.Warn("forms cache write failed", "error", err, "key", key)
		}
	}
	return stored, nil
}

// Save writes through to the inner repository and invalidates the cache entry.
func (c *CachedRepository) Save(ctx context.Context, orgID, formID string, stored *fieldmap.StoredMappings) error {
	if err := c.inner.Save(ctx, orgID, formID, stored); err != nil {
		return err
	}
	if err := c.client.Del(ctx, cacheKey(orgID, formID)).Err(); err != nil {
		c.logger.Warn("forms cache invalidation failed", "error", err, "org_id", orgID, "form_id", formID)
	}
	return nil
}
