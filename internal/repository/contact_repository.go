package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/contacts-api/internal/domain"
)

// ContactFilter narrows contact listings.
type ContactFilter struct {
	Favorite *bool
	Page     int
	Limit    int
}

// ContactRepository defines persistence access for contacts. All lookups are
// owner-scoped; a contact belonging to another user behaves as absent.
type ContactRepository interface {
	List(ctx context.Context, ownerID string, filter ContactFilter) ([]*domain.Contact, error)
	GetByID(ctx context.Context, ownerID, id string) (*domain.Contact, error)
	Create(ctx context.Context, contact *domain.Contact) error
	Update(ctx context.Context, contact *domain.Contact) error
	Delete(ctx context.Context, ownerID, id string) error
	SetFavorite(ctx context.Context, ownerID, id string, favorite bool) (*domain.Contact, error)
}

type contactRepository struct {
	pool *pgxpool.Pool
}

// NewContactRepository returns a Postgres-backed implementation.
func NewContactRepository(pool *pgxpool.Pool) ContactRepository {
	return &contactRepository{pool: pool}
}

const contactColumns = `id, name, email, phone, favorite, owner_id, created_at, updated_at`

func (r *contactRepository) List(ctx context.Context, ownerID string, filter ContactFilter) ([]*domain.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE owner_id=$1`
	args := []any{ownerID}

	if filter.Favorite != nil {
		args = append(args, *filter.Favorite)
		query += fmt.Sprintf(" AND favorite=$%d", len(args))
	}
	query += " ORDER BY created_at"

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
		if filter.Page > 1 {
			args = append(args, (filter.Page-1)*filter.Limit)
			query += fmt.Sprintf(" OFFSET $%d", len(args))
		}
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	contacts := make([]*domain.Contact, 0)
	for rows.Next() {
		contact, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, contact)
	}
	return contacts, rows.Err()
}

func (r *contactRepository) GetByID(ctx context.Context, ownerID, id string) (*domain.Contact, error) {
	const query = `SELECT ` + contactColumns + ` FROM contacts WHERE id=$1 AND owner_id=$2`
	return scanContact(r.pool.QueryRow(ctx, query, id, ownerID))
}

func (r *contactRepository) Create(ctx context.Context, contact *domain.Contact) error {
	const query = `
        INSERT INTO contacts (name, email, phone, favorite, owner_id)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		contact.Name,
		contact.Email,
		contact.Phone,
		contact.Favorite,
		contact.OwnerID,
	).Scan(&contact.ID, &contact.CreatedAt, &contact.UpdatedAt)
}

func (r *contactRepository) Update(ctx context.Context, contact *domain.Contact) error {
	const query = `
        UPDATE contacts SET name=$1, email=$2, phone=$3, favorite=$4, updated_at=NOW()
        WHERE id=$5 AND owner_id=$6`

	cmd, err := r.pool.Exec(ctx, query,
		contact.Name,
		contact.Email,
		contact.Phone,
		contact.Favorite,
		contact.ID,
		contact.OwnerID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *contactRepository) Delete(ctx context.Context, ownerID, id string) error {
	const query = `DELETE FROM contacts WHERE id=$1 AND owner_id=$2`
	cmd, err := r.pool.Exec(ctx, query, id, ownerID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *contactRepository) SetFavorite(ctx context.Context, ownerID, id string, favorite bool) (*domain.Contact, error) {
	const query = `
        UPDATE contacts SET favorite=$1, updated_at=NOW()
        WHERE id=$2 AND owner_id=$3
        RETURNING ` + contactColumns
	return scanContact(r.pool.QueryRow(ctx, query, favorite, id, ownerID))
}

func scanContact(row pgx.Row) (*domain.Contact, error) {
	var contact domain.Contact
	if err := row.Scan(
		&contact.ID,
		&contact.Name,
		&contact.Email,
		&contact.Phone,
		&contact.Favorite,
		&contact.OwnerID,
		&contact.CreatedAt,
		&contact.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &contact, nil
}
