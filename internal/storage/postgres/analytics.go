package postgres

import (
	"context"
	"fmt"
	"math"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"crypto_news/internal/domain"
)

const topListLimit = 5

// AnalyticsStore answers the read-side aggregate queries over the dataset.
type AnalyticsStore struct {
	db *sqlx.DB
	sb sq.StatementBuilderType
}

func NewAnalyticsStore(db *sqlx.DB) *AnalyticsStore {
	return &AnalyticsStore{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (s *AnalyticsStore) DatasetStats(ctx context.Context) (*domain.DatasetStats, error) {
	stats := &domain.DatasetStats{Sentiment: make(map[string]float64)}

	counts := []struct {
		table string
		dst   *int
	}{
		{"journalist", &stats.Journalists},
		{"outlet", &stats.Outlets},
		{"article", &stats.Articles},
		{"topic", &stats.Topics},
	}
	for _, c := range counts {
		if err := s.get(ctx, c.dst, s.sb.Select("COUNT(*)").From(c.table)); err != nil {
			return nil, fmt.Errorf("count %s: %w", c.table, err)
		}
	}

	var labels []domain.NamedCount
	labelQuery := s.sb.Select("sentiment_label AS name", "COUNT(*) AS count").
		From("article").
		Where(sq.NotEq{"sentiment_label": nil}).
		GroupBy("sentiment_label")
	if err := s.selectRows(ctx, &labels, labelQuery); err != nil {
		return nil, fmt.Errorf("sentiment distribution: %w", err)
	}
	stats.Sentiment = sentimentPercentages(labels, stats.Articles)

	toneQuery := s.sb.Select("tone AS name", "COUNT(*) AS count").
		From("article").
		Where(sq.And{sq.NotEq{"tone": nil}, sq.NotEq{"tone": ""}}).
		GroupBy("tone").
		OrderBy("count DESC", "name").
		Limit(topListLimit)
	if err := s.selectRows(ctx, &stats.Tones, toneQuery); err != nil {
		return nil, fmt.Errorf("tone distribution: %w", err)
	}

	topicQuery := s.sb.Select("t.name AS name", "COUNT(at.article_id) AS count").
		From("topic t").
		Join("article_topics at ON at.topic_id = t.id").
		GroupBy("t.name").
		OrderBy("count DESC", "name").
		Limit(topListLimit)
	if err := s.selectRows(ctx, &stats.TopTopics, topicQuery); err != nil {
		return nil, fmt.Errorf("top topics: %w", err)
	}

	outletQuery := s.sb.Select("o.name AS name", "COUNT(j.id) AS count").
		From("outlet o").
		Join("journalist j ON j.outlet_id = o.id").
		GroupBy("o.name").
		OrderBy("count DESC", "name").
		Limit(topListLimit)
	if err := s.selectRows(ctx, &stats.TopOutlets, outletQuery); err != nil {
		return nil, fmt.Errorf("top outlets: %w", err)
	}

	return stats, nil
}

func (s *AnalyticsStore) get(ctx context.Context, dst any, b sq.SelectBuilder) error {
	query, args, err := b.ToSql()
	if err != nil {
		return err
	}
	return sqlx.GetContext(ctx, GetExecutor(ctx, s.db), dst, query, args...)
}

func (s *AnalyticsStore) selectRows(ctx context.Context, dst any, b sq.SelectBuilder) error {
	query, args, err := b.ToSql()
	if err != nil {
		return err
	}
	return sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), dst, query, args...)
}

// sentimentPercentages always reports all three labels, rounded to one decimal.
func sentimentPercentages(labels []domain.NamedCount, total int) map[string]float64 {
	result := map[string]float64{
		string(domain.SentimentPositive): 0,
		string(domain.SentimentNegative): 0,
		string(domain.SentimentNeutral):  0,
	}
	if total == 0 {
		return result
	}
	for _, l := range labels {
		pct := float64(l.Count) / float64(total) * 100
		result[l.Name] = math.Round(pct*10) / 10
	}
	return result
}
