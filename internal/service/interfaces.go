package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"time"

	"crypto_news/internal/domain"
)

type Source interface {
	ID() string
	Name() string
	FetchArticles(ctx context.Context, since time.Time) ([]domain.RawArticle, error)
}

type ArticleStore interface {
	ExistingURLs(ctx context.Context, urls []string) (map[string]bool, error)
	Create(ctx context.Context, article *domain.Article) (bool, error)
}

type TopicLinker interface {
	LinkToArticle(ctx context.Context, articleID int64, topicIDs []int64) error
	LinkToJournalist(ctx context.Context, journalistID int64, topicIDs []int64) error
}

type JournalistStore interface {
	SetBeatIfEmpty(ctx context.Context, journalistID int64, beat string) error
}

type Resolver interface {
	ResolveOutlet(ctx context.Context, name string) (*domain.Outlet, error)
	ResolveJournalist(ctx context.Context, name string, outletID int64) (*domain.Journalist, error)
	ResolveTopics(ctx context.Context, names []string) ([]domain.Topic, error)
}

type Classifier interface {
	Name() string
	Classify(ctx context.Context, text string) (domain.Classification, error)
}

type PageFetcher interface {
	FetchText(ctx context.Context, url string) (string, error)
}

type SyncStateStore interface {
	Get(ctx context.Context, sourceID string) (*domain.SyncState, error)
	Update(ctx context.Context, state *domain.SyncState) error
}

type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type Publisher interface {
	Publish(ctx context.Context, article *domain.Article) error
	Close() error
}
