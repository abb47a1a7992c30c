package classifier

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"crypto_news/internal/config"
	"crypto_news/internal/domain"
)

// Classifier turns article text into sentiment and topic metadata.
type Classifier interface {
	Name() string
	Classify(ctx context.Context, text string) (domain.Classification, error)
}

var (
	_ Classifier = (*KeywordClassifier)(nil)
	_ Classifier = (*LexiconClassifier)(nil)
	_ Classifier = (*RemoteClassifier)(nil)
)

// New selects the strategy named in cfg.
func New(cfg config.ClassifierConfig, table *KeywordTable, logger *slog.Logger) (Classifier, error) {
	switch cfg.Strategy {
	case config.StrategyKeyword:
		return NewKeywordClassifier(table), nil
	case config.StrategyLexicon:
		return NewLexiconClassifier(table), nil
	case config.StrategyRemote:
		return NewRemoteClassifier(RemoteConfig{
			Endpoint:      cfg.Endpoint,
			APIKey:        cfg.APIKey,
			Model:         cfg.Model,
			MaxInputChars: cfg.MaxInputChars,
		}, &http.Client{Timeout: cfg.Timeout}, logger), nil
	default:
		return nil, fmt.Errorf("unknown classifier strategy %q", cfg.Strategy)
	}
}

// TableFromConfig builds the keyword table from configured topics, falling
// back to the built-in table when none are configured.
func TableFromConfig(topics []config.TopicKeywords) (*KeywordTable, error) {
	if len(topics) == 0 {
		return DefaultKeywordTable(), nil
	}
	rows := make([]TopicKeywords, len(topics))
	for i, t := range topics {
		rows[i] = TopicKeywords{Topic: t.Name, Keywords: t.Keywords}
	}
	return NewKeywordTable(rows)
}
