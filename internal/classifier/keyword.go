package classifier

import (
	"context"

	"crypto_news/internal/domain"
)

// KeywordClassifier assigns topics by keyword match and leaves sentiment
// neutral.
type KeywordClassifier struct {
	table *KeywordTable
}

func NewKeywordClassifier(table *KeywordTable) *KeywordClassifier {
	return &KeywordClassifier{table: table}
}

func (c *KeywordClassifier) Name() string {
	return "keyword"
}

func (c *KeywordClassifier) Classify(_ context.Context, text string) (domain.Classification, error) {
	result := domain.Classification{
		SentimentScore: 0,
		SentimentLabel: domain.SentimentNeutral,
		Topics:         c.table.Match(text),
	}
	return result, nil
}
