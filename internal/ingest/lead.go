package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Lead is the stored record of one processed lead submission.
type Lead struct {
	ID        string         `json:"id"`
	OrgID     string         `json:"org_id"`
	FormID    string         `json:"form_id"`
	LeadgenID string         `json:"leadgen_id"`
	ContactID string         `json:"contact_id,omitempty"`
	Record    map[string]any `json:"record"`
	Source    string         `json:"source"`
	CreatedAt time.Time      `json:"created_at"`
}

// LeadStore persists processed lead records.
type LeadStore interface {
	Create(ctx context.Context, lead *Lead) (*Lead, error)
}

// MemoryLeadStore is an in-memory LeadStore for tests and local runs.
type MemoryLeadStore struct {
	mu    sync.RWMutex
	leads []*Lead
}

func NewMemoryLeadStore() *MemoryLeadStore {
	return &MemoryLeadStore{}
}

func (s *MemoryLeadStore) Create(ctx context.Context, lead *Lead) (*Lead, error) {
	stored := *lead
	stored.ID = uuid.NewString()
	stored.CreatedAt = time.Now().UTC()

	s.mu.Lock()
	s.leads = append(s.leads, &stored)
	s.mu.Unlock()

	return &stored, nil
}

// All returns stored leads, for assertions in tests.
func (s *MemoryLeadStore) All() []*Lead {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Lead, len(s.leads))
	copy(out, s.leads)
	return out
}

// PostgresLeadStore stores leads in the relational database.
type PostgresLeadStore struct {
	db rowQuerier
}

func NewPostgresLeadStore(pool *pgxpool.Pool) *PostgresLeadStore {
	if pool == nil {
		panic("ingest: pgx pool required")
	}
	return &PostgresLeadStore{db: pool}
}

func newPostgresLeadStoreWithExec(db rowQuerier) *PostgresLeadStore {
	return &PostgresLeadStore{db: db}
}

// Create inserts a new row. The normalized record is stored as jsonb.
func (s *PostgresLeadStore) Create(ctx context.Context, lead *Lead) (*Lead, error) {
	record, err := json.Marshal(lead.Record)
	if err != nil {
		return nil, fmt.Errorf("ingest: marshal lead record: %w", err)
	}

	id := uuid.New()
	query := `
		INSERT INTO leads (id, org_id, form_id, leadgen_id, contact_id, record, source)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7)
		RETURNING created_at
	`
	var createdAt time.Time
	if err := s.db.QueryRow(ctx, query,
		id,
		lead.OrgID,
		lead.FormID,
		lead.LeadgenID,
		lead.ContactID,
		record,
		lead.Source,
	).Scan(&createdAt); err != nil {
		return nil, fmt.Errorf("ingest: insert lead: %w", err)
	}

	stored := *lead
	stored.ID = id.String()
	stored.CreatedAt = createdAt
	return &stored, nil
}
