package forms

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/atlasfit/gym-crm-platform/internal/fieldmap"
)

// Repository defines storage for per-form mapping configurations.
type Repository interface {
	// Load returns the stored configuration, or ErrNotFound when the
	// (org, form) pair has never been saved.
	Load(ctx context.Context, orgID, formID string) (*fieldmap.StoredMappings, error)
	// Save upserts the configuration keyed by (org, form). Repeated saves
	// never create duplicate rows.
	Save(ctx context.Context, orgID, formID string, stored *fieldmap.StoredMappings) error
}

// InMemoryRepository is a Repository backed by a map, for tests and local dev.
type InMemoryRepository struct {
	mu    sync.RWMutex
	forms map[string]*fieldmap.StoredMappings
}

// NewInMemoryRepository creates an empty in-memory repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{forms: make(map[string]*fieldmap.StoredMappings)}
}

func (r *InMemoryRepository) key(orgID, formID string) string {
	return orgID + "/" + formID
}

// Load returns a copy of the stored configuration.
func (r *InMemoryRepository) Load(ctx context.Context, orgID, formID string) (*fieldmap.StoredMappings, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.forms[r.key(orgID, formID)]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneStored(stored)
}

// Save stores a copy of the configuration.
func (r *InMemoryRepository) Save(ctx context.Context, orgID, formID string, stored *fieldmap.StoredMappings) error {
	copied, err := cloneStored(stored)
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.forms[r.key(orgID, formID)] = copied
	r.mu.Unlock()
	return nil
}

// cloneStored deep-copies via JSON so callers cannot alias internal state.
func cloneStored(stored *fieldmap.StoredMappings) (*fieldmap.StoredMappings, error) {
	raw, err := json.Marshal(stored)
	if err != nil {
		return nil, fmt.Errorf("forms: clone mappings: %w", err)
	}
	var out fieldmap.StoredMappings
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("forms: clone mappings: %w", err)
	}
	return &out, nil
}
