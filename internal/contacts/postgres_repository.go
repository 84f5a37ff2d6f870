package contacts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores contacts in the relational database.
type PostgresRepository struct {
	db querier
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("contacts: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

func newPostgresRepositoryWithExec(db querier) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new row.
func (r *PostgresRepository) Create(ctx context.Context, contact *Contact) (*Contact, error) {
	if err := contact.Validate(); err != nil {
		return nil, err
	}

	attrs, err := json.Marshal(contact.Attributes)
	if err != nil {
		return nil, fmt.Errorf("contacts: marshal attributes: %w", err)
	}

	id := uuid.New()
	query := `
		INSERT INTO contacts (
			id, org_id, first_name, last_name, email, phone,
			address, city, postal_code, country, company, notes,
			lead_source, status, attributes
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING created_at, updated_at
	`
	var createdAt, updatedAt time.Time
	if err := r.db.QueryRow(ctx, query,
		id,
		contact.OrgID,
		contact.FirstName,
		contact.LastName,
		contact.Email,
		contact.Phone,
		contact.Address,
		contact.City,
		contact.PostalCode,
		contact.Country,
		contact.Company,
		contact.Notes,
		contact.LeadSource,
		contact.Status,
		attrs,
	).Scan(&createdAt, &updatedAt); err != nil {
		return nil, fmt.Errorf("contacts: insert failed: %w", err)
	}

	stored := *contact
	stored.ID = id.String()
	stored.CreatedAt = createdAt
	stored.UpdatedAt = updatedAt
	return &stored, nil
}

// GetByID fetches a contact scoped to the org.
func (r *PostgresRepository) GetByID(ctx context.Context, orgID, id string) (*Contact, error) {
	query := `
		SELECT id, org_id, first_name, last_name, email, phone,
		       address, city, postal_code, country, company, notes,
		       lead_source, status, attributes, created_at, updated_at
		FROM contacts
		WHERE id = $1 AND org_id = $2
	`
	return r.scanOne(r.db.QueryRow(ctx, query, id, orgID))
}

// FindByEmail returns the org's most recently created contact with the email.
func (r *PostgresRepository) FindByEmail(ctx context.Context, orgID, email string) (*Contact, error) {
	if email == "" {
		return nil, ErrNotFound
	}
	query := `
		SELECT id, org_id, first_name, last_name, email, phone,
		       address, city, postal_code, country, company, notes,
		       lead_source, status, attributes, created_at, updated_at
		FROM contacts
		WHERE org_id = $1 AND lower(email) = lower($2)
		ORDER BY created_at DESC
		LIMIT 1
	`
	return r.scanOne(r.db.QueryRow(ctx, query, orgID, email))
}

func (r *PostgresRepository) scanOne(row pgx.Row) (*Contact, error) {
	var contact Contact
	var attrs []byte
	if err := row.Scan(
		&contact.ID,
		&contact.OrgID,
		&contact.FirstName,
		&contact.LastName,
		&contact.Email,
		&contact.Phone,
		&contact.Address,
		&contact.City,
		&contact.PostalCode,
		&contact.Country,
		&contact.Company,
		&contact.Notes,
		&contact.LeadSource,
		&contact.Status,
		&attrs,
		&contact.CreatedAt,
		&contact.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("contacts: select failed: %w", err)
	}
	if len(attrs) > 0 {
		if err := json.Unmarshal(attrs, &contact.Attributes); err != nil {
			return nil, fmt.Errorf("contacts: unmarshal attributes: %w", err)
		}
	}
	return &contact, nil
}
