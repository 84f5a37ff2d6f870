package forms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atlasfit/gym-crm-platform/internal/fieldmap"
)

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores mapping configurations on the facebook_lead_forms
// table.
type PostgresRepository struct {
	pool querier
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("forms: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

func newPostgresRepositoryWithExec(exec querier) *PostgresRepository {
	if exec == nil {
		panic("forms: exec required")
	}
	return &PostgresRepository{pool: exec}
}

// Load fetches the configuration for the (org, form) pair.
func (r *PostgresRepository) Load(ctx context.Context, orgID, formID string) (*fieldmap.StoredMappings, error) {
	query := `
		SELECT field_mappings, custom_field_mappings, field_mappings_version,
		       auto_create_contact, default_lead_source, created_at, updated_at
		FROM facebook_lead_forms
		WHERE org_id = $1 AND facebook_form_id = $2
	`
	var (
		mappingsJSON []byte
		customJSON   []byte
		version      string
		autoCreate   bool
		leadSource   string
		createdAt    time.Time
		updatedAt    time.Time
	)
	err := r.pool.QueryRow(ctx, query, orgID, formID).Scan(
		&mappingsJSON, &customJSON, &version, &autoCreate, &leadSource, &createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("forms: load mappings: %w", err)
	}

	stored := &fieldmap.StoredMappings{
		Version:           version,
		CreatedAt:         createdAt,
		UpdatedAt:         updatedAt,
		Mappings:          []fieldmap.Mapping{},
		CustomMappings:    []fieldmap.CustomMapping{},
		AutoCreateContact: autoCreate,
		DefaultLeadSource: leadSource,
	}
	if stored.Version == "" {
		stored.Version = fieldmap.Version
	}
	if len(mappingsJSON) > 0 {
		if err := json.Unmarshal(mappingsJSON, &stored.Mappings); err != nil {
			return nil, fmt.Errorf("forms: decode field mappings: %w", err)
		}
	}
	if len(customJSON) > 0 {
		if err := json.Unmarshal(customJSON, &stored.CustomMappings); err != nil {
			return nil, fmt.Errorf("forms: decode custom mappings: %w", err)
		}
	}
	return stored, nil
}

// Save upserts the configuration keyed by (org_id, facebook_form_id).
func (r *PostgresRepository) Save(ctx context.Context, orgID, formID string, stored *fieldmap.StoredMappings) error {
	mappingsJSON, err := json.Marshal(stored.Mappings)
	if err != nil {
		return fmt.Errorf("forms: encode field mappings: %w", err)
	}
	customJSON, err := json.Marshal(stored.CustomMappings)
	if err != nil {
		return fmt.Errorf("forms: encode custom mappings: %w", err)
	}

	query := `
		INSERT INTO facebook_lead_forms (
			org_id, facebook_form_id, field_mappings, custom_field_mappings,
			field_mappings_version, field_mappings_configured,
			auto_create_contact, default_lead_source, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, TRUE, $6, $7, now())
		ON CONFLICT (org_id, facebook_form_id) DO UPDATE SET
			field_mappings = EXCLUDED.field_mappings,
			custom_field_mappings = EXCLUDED.custom_field_mappings,
			field_mappings_version = EXCLUDED.field_mappings_version,
			field_mappings_configured = TRUE,
			auto_create_contact = EXCLUDED.auto_create_contact,
			default_lead_source = EXCLUDED.default_lead_source,
			updated_at = now()
	`
	if _, err := r.pool.Exec(ctx, query,
		orgID,
		formID,
		mappingsJSON,
		customJSON,
		stored.Version,
		stored.AutoCreateContact,
		stored.DefaultLeadSource,
	); err != nil {
		return fmt.Errorf("forms: save mappings: %w", err)
	}
	return nil
}
