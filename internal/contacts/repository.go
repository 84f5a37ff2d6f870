package contacts

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for contact storage.
type Repository interface {
	Create(ctx context.Context, contact *Contact) (*Contact, error)
	GetByID(ctx context.Context, orgID, id string) (*Contact, error)
	FindByEmail(ctx context.Context, orgID, email string) (*Contact, error)
}

// InMemoryRepository is an in-memory Repository for tests and local runs.
type InMemoryRepository struct {
	mu       sync.RWMutex
	contacts map[string]*Contact
}

// NewInMemoryRepository creates a new in-memory repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{contacts: make(map[string]*Contact)}
}

// Create stores a new contact in memory.
func (r *InMemoryRepository) Create(ctx context.Context, contact *Contact) (*Contact, error) {
	if err := contact.Validate(); err != nil {
		return nil, err
	}

	stored := *contact
	stored.ID = uuid.New().String()
	stored.CreatedAt = time.Now().UTC()
	stored.UpdatedAt = stored.CreatedAt

	r.mu.Lock()
	r.contacts[stored.OrgID+"/"+stored.ID] = &stored
	r.mu.Unlock()

	return &stored, nil
}

// GetByID retrieves a contact scoped to the org.
func (r *InMemoryRepository) GetByID(ctx context.Context, orgID, id string) (*Contact, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	contact, ok := r.contacts[orgID+"/"+id]
	if !ok {
		return nil, ErrNotFound
	}
	return contact, nil
}

// FindByEmail returns the org's contact with the given email, if any.
func (r *InMemoryRepository) FindByEmail(ctx context.Context, orgID, email string) (*Contact, error) {
	if email == "" {
		return nil, ErrNotFound
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, contact := range r.contacts {
		if contact.OrgID == orgID && strings.EqualFold(contact.Email, email) {
			return contact, nil
		}
	}
	return nil, ErrNotFound
}
