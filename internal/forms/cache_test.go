package forms

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/atlasfit/gym-crm-platform/internal/fieldmap"
	"github.com/atlasfit/gym-crm-platform/pkg/logging"
)

// countingRepository wraps InMemoryRepository to observe cache hits.
type countingRepository struct {
	*InMemoryRepository
	loads int
}

func (c *countingRepository) Load(ctx context.Context, orgID, formID string) (*fieldmap.StoredMappings, error) {
	c.loads++
	return c.InMemoryRepository.Load(ctx, orgID, formID)
}

func newCachedFixture(t *testing.T) (*CachedRepository, *countingRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	inner := &countingRepository{InMemoryRepository: NewInMemoryRepository()}
	cached := NewCachedRepository(inner, client, time.Minute, logging.Default())
	return cached, inner, mr
}

func TestCachedRepository_ReadThrough(t *testing.T) {
	cached, inner, _ := newCachedFixture(t)
	ctx := context.Background()

	stored := fieldmap.DefaultStoredMappings()
	if err := cached.Save(ctx, "org-1", "form-1", stored); err != nil {
		t.Fatalf("save: %v", err)
	}

	if _, err := cached.Load(ctx, "org-1", "form-1"); err != nil {
		t.Fatalf("first load: %v", err)
	}
	if _, err := cached.Load(ctx, "org-1", "form-1"); err != nil {
		t.Fatalf("second load: %v", err)
	}

	if inner.loads != 1 {
		t.Fatalf("expected exactly one inner load, got %d", inner.loads)
	}
}

func TestCachedRepository_SaveInvalidates(t *testing.T) {
	cached, inner, _ := newCachedFixture(t)
	ctx := context.Background()

	stored := fieldmap.DefaultStoredMappings()
	if err := cached.Save(ctx, "org-1", "form-1", stored); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := cached.Load(ctx, "org-1", "form-1"); err != nil {
		t.Fatalf("load: %v", err)
	}

	stored.DefaultLeadSource = "Instagram"
	if err := cached.Save(ctx, "org-1", "form-1", stored); err != nil {
		t.Fatalf("second save: %v", err)
	}

	got, err := cached.Load(ctx, "org-1", "form-1")
	if err != nil {
		t.Fatalf("load after save: %v", err)
	}
	if got.DefaultLeadSource != "Instagram" {
		t.Fatalf("expected invalidated cache to serve new value, got %s", got.DefaultLeadSource)
	}
	if inner.loads != 2 {
		t.Fatalf("expected reload after invalidation, got %d loads", inner.loads)
	}
}

func TestCachedRepository_NotFoundPassesThrough(t *testing.T) {
	cached, _, _ := newCachedFixture(t)

	_, err := cached.Load(context.Background(), "org-1", "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCachedRepository_CorruptEntryEvicted(t *testing.T) {
	cached, _, mr := newCachedFixture(t)
	ctx := context.Background()

	if err := cached.Save(ctx, "org-1", "form-1", fieldmap.DefaultStoredMappings()); err != nil {
		t.Fatalf("save: %v", err)
	}
	mr.Set(cacheKey("org-1", "form-1"), "{not json")

	got, err := cached.Load(ctx, "org-1", "form-1")
	if err != nil {
		t.Fatalf("load with corrupt cache: %v", err)
	}
	if got.DefaultLeadSource != "Facebook" {
		t.Fatalf("expected source-of-truth value, got %s", got.DefaultLeadSource)
	}
}
