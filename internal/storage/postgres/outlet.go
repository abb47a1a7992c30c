package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"crypto_news/internal/domain"
)

const outletColumns = `id, name, website, country, description, image_url, created_at, updated_at`

type OutletStore struct {
	db *sqlx.DB
}

func NewOutletStore(db *sqlx.DB) *OutletStore {
	return &OutletStore{db: db}
}

// FindByName returns domain.ErrNotFound when no outlet has the exact name.
func (s *OutletStore) FindByName(ctx context.Context, name string) (*domain.Outlet, error) {
	var outlet domain.Outlet
	query := `SELECT ` + outletColumns + ` FROM outlet WHERE name = $1`

	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &outlet, query, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find outlet %q: %w", name, err)
	}
	return &outlet, nil
}

func (s *OutletStore) Create(ctx context.Context, outlet *domain.Outlet) (int64, error) {
	query := `
		INSERT INTO outlet (name, website, country, description, image_url)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`

	err := GetExecutor(ctx, s.db).QueryRowxContext(ctx, query,
		outlet.Name,
		outlet.Website,
		outlet.Country,
		outlet.Description,
		outlet.ImageURL,
	).Scan(&outlet.ID, &outlet.CreatedAt, &outlet.UpdatedAt)
	if err != nil {
		return 0, fmt.Errorf("create outlet %q: %w", outlet.Name, err)
	}
	return outlet.ID, nil
}

// Upsert inserts the outlet unless one with the same name exists and returns
// the stored row either way. Existing rows are left untouched.
func (s *OutletStore) Upsert(ctx context.Context, outlet *domain.Outlet) (*domain.Outlet, error) {
	query := `
		INSERT INTO outlet (name, website, country, description, image_url)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (name) DO NOTHING
		RETURNING ` + outletColumns

	var stored domain.Outlet
	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &stored, query,
		outlet.Name,
		outlet.Website,
		outlet.Country,
		outlet.Description,
		outlet.ImageURL,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return s.FindByName(ctx, outlet.Name)
	}
	if err != nil {
		return nil, fmt.Errorf("upsert outlet %q: %w", outlet.Name, err)
	}
	return &stored, nil
}
