package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"crypto_news/internal/domain"
)

const topicColumns = `id, name, description, created_at, updated_at`

type TopicStore struct {
	db *sqlx.DB
}

func NewTopicStore(db *sqlx.DB) *TopicStore {
	return &TopicStore{db: db}
}

func (s *TopicStore) FindByName(ctx context.Context, name string) (*domain.Topic, error) {
	var topic domain.Topic
	query := `SELECT ` + topicColumns + ` FROM topic WHERE name = $1`

	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &topic, query, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find topic %q: %w", name, err)
	}
	return &topic, nil
}

func (s *TopicStore) Create(ctx context.Context, topic *domain.Topic) (int64, error) {
	query := `
		INSERT INTO topic (name, description)
		VALUES ($1, $2)
		RETURNING id, created_at, updated_at`

	err := GetExecutor(ctx, s.db).QueryRowxContext(ctx, query, topic.Name, topic.Description).
		Scan(&topic.ID, &topic.CreatedAt, &topic.UpdatedAt)
	if err != nil {
		return 0, fmt.Errorf("create topic %q: %w", topic.Name, err)
	}
	return topic.ID, nil
}

// Upsert inserts the topic unless the name is taken and returns the stored row.
func (s *TopicStore) Upsert(ctx context.Context, topic *domain.Topic) (*domain.Topic, error) {
	query := `
		INSERT INTO topic (name, description)
		VALUES ($1, $2)
		ON CONFLICT (name) DO NOTHING
		RETURNING ` + topicColumns

	var stored domain.Topic
	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &stored, query, topic.Name, topic.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return s.FindByName(ctx, topic.Name)
	}
	if err != nil {
		return nil, fmt.Errorf("upsert topic %q: %w", topic.Name, err)
	}
	return &stored, nil
}

func (s *TopicStore) LinkToArticle(ctx context.Context, articleID int64, topicIDs []int64) error {
	return s.link(ctx, "article_topics", "article_id", articleID, topicIDs)
}

func (s *TopicStore) LinkToJournalist(ctx context.Context, journalistID int64, topicIDs []int64) error {
	return s.link(ctx, "journalist_topics", "journalist_id", journalistID, topicIDs)
}

// link adds association rows; existing pairs are kept.
func (s *TopicStore) link(ctx context.Context, table, ownerColumn string, ownerID int64, topicIDs []int64) error {
	if len(topicIDs) == 0 {
		return nil
	}

	insert := sq.Insert(table).
		Columns(ownerColumn, "topic_id").
		Suffix("ON CONFLICT DO NOTHING").
		PlaceholderFormat(sq.Dollar)
	for _, topicID := range topicIDs {
		insert = insert.Values(ownerID, topicID)
	}

	query, args, err := insert.ToSql()
	if err != nil {
		return fmt.Errorf("build %s insert: %w", table, err)
	}

	if _, err := GetExecutor(ctx, s.db).ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("link %s: %w", table, err)
	}
	return nil
}

func (s *TopicStore) GetByArticleID(ctx context.Context, articleID int64) ([]domain.Topic, error) {
	query := `
		SELECT t.id, t.name, t.description, t.created_at, t.updated_at
		FROM topic t
		INNER JOIN article_topics at ON at.topic_id = t.id
		WHERE at.article_id = $1
		ORDER BY t.name`

	var topics []domain.Topic
	err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &topics, query, articleID)
	return topics, err
}

func (s *TopicStore) GetByJournalistID(ctx context.Context, journalistID int64) ([]domain.Topic, error) {
	query := `
		SELECT t.id, t.name, t.description, t.created_at, t.updated_at
		FROM topic t
		INNER JOIN journalist_topics jt ON jt.topic_id = t.id
		WHERE jt.journalist_id = $1
		ORDER BY t.name`

	var topics []domain.Topic
	err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &topics, query, journalistID)
	return topics, err
}
