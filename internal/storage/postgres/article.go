package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"crypto_news/internal/domain"
)

type ArticleStore struct {
	db *sqlx.DB
}

func NewArticleStore(db *sqlx.DB) *ArticleStore {
	return &ArticleStore{db: db}
}

type articleRow struct {
	ID             int64           `db:"id"`
	Title          string          `db:"title"`
	URL            string          `db:"url"`
	Content        sql.NullString  `db:"content"`
	PublishedAt    sql.NullTime    `db:"published_at"`
	SentimentScore sql.NullFloat64 `db:"sentiment_score"`
	SentimentLabel sql.NullString  `db:"sentiment_label"`
	Tone           sql.NullString  `db:"tone"`
	JournalistID   sql.NullInt64   `db:"journalist_id"`
	OutletID       sql.NullInt64   `db:"outlet_id"`
	CreatedAt      time.Time       `db:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at"`
}

func (r articleRow) toDomain() *domain.Article {
	a := &domain.Article{
		ID:             r.ID,
		Title:          r.Title,
		URL:            r.URL,
		SentimentLabel: domain.SentimentLabel(r.SentimentLabel.String),
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
	if r.Content.Valid {
		a.Content = &r.Content.String
	}
	if r.PublishedAt.Valid {
		a.PublishedAt = &r.PublishedAt.Time
	}
	if r.SentimentScore.Valid {
		a.SentimentScore = &r.SentimentScore.Float64
	}
	if r.Tone.Valid {
		a.Tone = &r.Tone.String
	}
	if r.JournalistID.Valid {
		a.JournalistID = &r.JournalistID.Int64
	}
	if r.OutletID.Valid {
		a.OutletID = &r.OutletID.Int64
	}
	return a
}

func (s *ArticleStore) FindByURL(ctx context.Context, url string) (*domain.Article, error) {
	query := `
		SELECT id, title, url, content, published_at, sentiment_score, sentiment_label,
			tone, journalist_id, outlet_id, created_at, updated_at
		FROM article
		WHERE url = $1`

	var row articleRow
	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &row, query, url)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find article: %w", err)
	}
	return row.toDomain(), nil
}

// ExistingURLs reports which of the given URLs are already stored.
func (s *ArticleStore) ExistingURLs(ctx context.Context, urls []string) (map[string]bool, error) {
	result := make(map[string]bool)
	if len(urls) == 0 {
		return result, nil
	}

	query := `SELECT url FROM article WHERE url = ANY($1)`

	var found []string
	if err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &found, query, pq.Array(urls)); err != nil {
		return nil, fmt.Errorf("query existing urls: %w", err)
	}
	for _, u := range found {
		result[u] = true
	}
	return result, nil
}

// Create inserts the article. created is false when the URL already exists,
// in which case nothing is written.
func (s *ArticleStore) Create(ctx context.Context, article *domain.Article) (created bool, err error) {
	query := `
		INSERT INTO article (
			title, url, content, published_at, sentiment_score, sentiment_label,
			tone, journalist_id, outlet_id
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		)
		ON CONFLICT (url) DO NOTHING
		RETURNING id, created_at, updated_at`

	var label *string
	if article.SentimentLabel != "" {
		l := string(article.SentimentLabel)
		label = &l
	}

	err = GetExecutor(ctx, s.db).QueryRowxContext(ctx, query,
		article.Title,
		article.URL,
		article.Content,
		article.PublishedAt,
		article.SentimentScore,
		label,
		article.Tone,
		article.JournalistID,
		article.OutletID,
	).Scan(&article.ID, &article.CreatedAt, &article.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("create article: %w", err)
	}
	return true, nil
}
