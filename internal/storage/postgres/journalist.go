package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"crypto_news/internal/domain"
)

const journalistColumns = `id, name, email, twitter_handle, bio, location, region, verified, beat,
	profile_image_url, outlet_id, created_at, updated_at`

type JournalistStore struct {
	db *sqlx.DB
}

func NewJournalistStore(db *sqlx.DB) *JournalistStore {
	return &JournalistStore{db: db}
}

// FindByNameInOutlet matches the exact name within one outlet.
func (s *JournalistStore) FindByNameInOutlet(ctx context.Context, name string, outletID int64) (*domain.Journalist, error) {
	query := `SELECT ` + journalistColumns + ` FROM journalist
		WHERE name = $1 AND outlet_id = $2
		ORDER BY id
		LIMIT 1`
	return s.findOne(ctx, query, name, outletID)
}

// FindByName matches the exact name across all outlets, oldest row first.
func (s *JournalistStore) FindByName(ctx context.Context, name string) (*domain.Journalist, error) {
	query := `SELECT ` + journalistColumns + ` FROM journalist
		WHERE name = $1
		ORDER BY id
		LIMIT 1`
	return s.findOne(ctx, query, name)
}

func (s *JournalistStore) findOne(ctx context.Context, query string, args ...any) (*domain.Journalist, error) {
	var journalist domain.Journalist
	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &journalist, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find journalist: %w", err)
	}
	return &journalist, nil
}

func (s *JournalistStore) Create(ctx context.Context, j *domain.Journalist) (int64, error) {
	query := `
		INSERT INTO journalist (
			name, email, twitter_handle, bio, location, region, verified, beat,
			profile_image_url, outlet_id
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		)
		RETURNING id, created_at, updated_at`

	err := GetExecutor(ctx, s.db).QueryRowxContext(ctx, query,
		j.Name,
		j.Email,
		j.TwitterHandle,
		j.Bio,
		j.Location,
		j.Region,
		j.Verified,
		j.Beat,
		j.ProfileImageURL,
		j.OutletID,
	).Scan(&j.ID, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return 0, fmt.Errorf("create journalist %q: %w", j.Name, err)
	}
	return j.ID, nil
}

// LockName takes a transaction-scoped advisory lock on the journalist name so
// that concurrent find-then-create sequences for one name run one at a time.
// Outside a transaction it is a no-op.
func (s *JournalistStore) LockName(ctx context.Context, name string) error {
	tx := GetTxFromContext(ctx)
	if tx == nil {
		return nil
	}
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext('journalist:' || $1))`, name); err != nil {
		return fmt.Errorf("lock journalist %q: %w", name, err)
	}
	return nil
}

// SetBeatIfEmpty records a beat only for journalists that have none yet.
func (s *JournalistStore) SetBeatIfEmpty(ctx context.Context, journalistID int64, beat string) error {
	query := `
		UPDATE journalist
		SET beat = $2, updated_at = NOW()
		WHERE id = $1 AND (beat IS NULL OR beat = '')`

	if _, err := GetExecutor(ctx, s.db).ExecContext(ctx, query, journalistID, beat); err != nil {
		return fmt.Errorf("set journalist beat: %w", err)
	}
	return nil
}
