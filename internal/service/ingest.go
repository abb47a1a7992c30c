package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"crypto_news/internal/domain"
)

var ErrAlreadyRunning = errors.New("ingest already running")

// Options tunes a batch. ClassifyFullText sends page text or feed content to
// the classifier; otherwise it sees only title and description.
type Options struct {
	Workers          int
	MaxArticles      int
	LookbackDays     int
	ClassifyFullText bool
}

type Deps struct {
	Source      Source
	Articles    ArticleStore
	Topics      TopicLinker
	Journalists JournalistStore
	Resolver    Resolver
	Classifier  Classifier
	Fetcher     PageFetcher
	SyncState   SyncStateStore
	TxManager   TransactionManager
	Publisher   Publisher
}

// IngestService runs the fetch, dedup, enrich and persist pipeline. Fetcher
// and Publisher are optional.
type IngestService struct {
	source      Source
	articles    ArticleStore
	topics      TopicLinker
	journalists JournalistStore
	resolver    Resolver
	classifier  Classifier
	fetcher     PageFetcher
	syncState   SyncStateStore
	txManager   TransactionManager
	publisher   Publisher
	logger      *slog.Logger
	opts        Options
	now         func() time.Time
	running     atomic.Bool
}

func NewIngestService(deps Deps, logger *slog.Logger, opts Options) *IngestService {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	sourceID := ""
	if deps.Source != nil {
		sourceID = deps.Source.ID()
	}
	return &IngestService{
		source:      deps.Source,
		articles:    deps.Articles,
		topics:      deps.Topics,
		journalists: deps.Journalists,
		resolver:    deps.Resolver,
		classifier:  deps.Classifier,
		fetcher:     deps.Fetcher,
		syncState:   deps.SyncState,
		txManager:   deps.TxManager,
		publisher:   deps.Publisher,
		logger:      logger.With("component", "ingest", "source", sourceID),
		opts:        opts,
		now:         time.Now,
	}
}

// Ingest pulls the whole lookback window and processes it as one batch.
// Articles stored by earlier runs are dropped by URL dedup, so records that
// failed or were capped last time get another chance. Only a feed failure
// aborts the batch.
func (s *IngestService) Ingest(ctx context.Context) (*domain.IngestStats, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrAlreadyRunning
	}
	defer s.running.Store(false)

	startTime := s.now()

	state, err := s.syncState.Get(ctx, s.source.ID())
	if err != nil {
		return nil, fmt.Errorf("get sync state: %w", err)
	}

	since := startTime.AddDate(0, 0, -s.opts.LookbackDays)

	s.logger.Info("starting ingest",
		"source_name", s.source.Name(),
		"since", since,
		"classifier", s.classifier.Name(),
		"enrichment", s.fetcher != nil,
	)

	records, err := s.source.FetchArticles(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("fetch articles: %w", err)
	}

	stats := s.Process(ctx, records)
	stats.SourceID = s.source.ID()

	state.SourceID = s.source.ID()
	state.LastSyncedAt = startTime
	state.TotalIngested += int64(stats.Added)
	if err := s.syncState.Update(ctx, state); err != nil {
		return stats, fmt.Errorf("update sync state: %w", err)
	}

	return stats, nil
}

// candidate is a validated record waiting to be persisted.
type candidate struct {
	raw          domain.RawArticle
	publishedAt  time.Time
	tsFallback   bool
	content      *string
	result       domain.Classification
	classifyFail bool
}

// Process runs one batch of raw records. A bad record is counted and skipped;
// it never fails the batch.
func (s *IngestService) Process(ctx context.Context, records []domain.RawArticle) *domain.IngestStats {
	startTime := s.now()
	stats := &domain.IngestStats{
		RunID:   uuid.NewString(),
		Fetched: len(records),
	}
	if s.source != nil {
		stats.SourceID = s.source.ID()
	}
	logger := s.logger.With("run_id", stats.RunID)

	if s.opts.MaxArticles > 0 && len(records) > s.opts.MaxArticles {
		logger.Info("capping batch", "fetched", len(records), "max_articles", s.opts.MaxArticles)
		records = records[:s.opts.MaxArticles]
	}

	candidates := s.selectCandidates(ctx, logger, records, stats)
	s.enrich(ctx, logger, candidates)

	for i := range candidates {
		c := &candidates[i]
		if c.tsFallback {
			stats.TimestampFallbacks++
		}
		if c.classifyFail {
			stats.ClassifierFallbacks++
		}

		article, created, mismatch, err := s.persist(ctx, logger, c)
		if err != nil {
			stats.Failed++
			logger.Warn("failed to persist article", "url", c.raw.URL, "error", err)
			continue
		}
		if !created {
			stats.Duplicates++
			continue
		}
		stats.Added++
		if mismatch {
			stats.OutletMismatches++
		}

		if s.publisher != nil {
			if err := s.publisher.Publish(ctx, article); err != nil {
				logger.Warn("failed to publish article", "url", article.URL, "error", err)
			} else {
				stats.Published++
			}
		}
	}

	stats.Duration = time.Since(startTime)

	logger.Info("ingest completed",
		"fetched", stats.Fetched,
		"added", stats.Added,
		"duplicates", stats.Duplicates,
		"invalid", stats.Invalid,
		"failed", stats.Failed,
		"timestamp_fallbacks", stats.TimestampFallbacks,
		"classifier_fallbacks", stats.ClassifierFallbacks,
		"outlet_mismatches", stats.OutletMismatches,
		"published", stats.Published,
		"duration", stats.Duration,
	)

	return stats
}

// selectCandidates drops invalid records and URLs seen earlier in the batch or
// already stored, keeping feed order.
func (s *IngestService) selectCandidates(ctx context.Context, logger *slog.Logger, records []domain.RawArticle, stats *domain.IngestStats) []candidate {
	seen := make(map[string]struct{}, len(records))
	valid := make([]domain.RawArticle, 0, len(records))

	for _, raw := range records {
		raw.Title = strings.TrimSpace(raw.Title)
		raw.URL = strings.TrimSpace(raw.URL)
		raw.PublishedAt = strings.TrimSpace(raw.PublishedAt)

		if err := validate(raw); err != nil {
			stats.Invalid++
			logger.Warn("skipping invalid record", "url", raw.URL, "error", err)
			continue
		}
		if _, dup := seen[raw.URL]; dup {
			stats.Duplicates++
			continue
		}
		seen[raw.URL] = struct{}{}
		valid = append(valid, raw)
	}

	if len(valid) == 0 {
		return nil
	}

	urls := make([]string, len(valid))
	for i, raw := range valid {
		urls[i] = raw.URL
	}

	existing, err := s.articles.ExistingURLs(ctx, urls)
	if err != nil {
		// Create is conflict-safe, so a failed pre-check only costs enrichment work.
		logger.Warn("existing url lookup failed", "error", err)
		existing = nil
	}

	candidates := make([]candidate, 0, len(valid))
	for _, raw := range valid {
		if existing[raw.URL] {
			stats.Duplicates++
			continue
		}
		publishedAt, err := time.Parse(time.RFC3339, raw.PublishedAt)
		fallback := err != nil
		if fallback {
			publishedAt = s.now().UTC()
			logger.Debug("unparseable timestamp, using processing time", "url", raw.URL, "published_at", raw.PublishedAt)
		}
		candidates = append(candidates, candidate{
			raw:         raw,
			publishedAt: publishedAt,
			tsFallback:  fallback,
		})
	}
	return candidates
}

func validate(raw domain.RawArticle) error {
	var missing []string
	if raw.Title == "" {
		missing = append(missing, "title")
	}
	if raw.URL == "" {
		missing = append(missing, "url")
	}
	if raw.PublishedAt == "" {
		missing = append(missing, "published_at")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", domain.ErrValidation, strings.Join(missing, ", "))
	}
	return nil
}

// enrich fetches page text and classifies candidates on a bounded pool.
// Each goroutine writes only its own slot.
func (s *IngestService) enrich(ctx context.Context, logger *slog.Logger, candidates []candidate) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Workers)

	for i := range candidates {
		c := &candidates[i]
		g.Go(func() error {
			s.enrichOne(gctx, logger, c)
			return nil
		})
	}
	_ = g.Wait()
}

func (s *IngestService) enrichOne(ctx context.Context, logger *slog.Logger, c *candidate) {
	var pageText string
	if s.fetcher != nil {
		text, err := s.fetcher.FetchText(ctx, c.raw.URL)
		if err != nil {
			logger.Debug("page fetch failed, using feed text", "url", c.raw.URL, "error", err)
		} else {
			pageText = text
		}
	}

	switch {
	case pageText != "":
		c.content = &pageText
	case c.raw.Content != nil && *c.raw.Content != "":
		c.content = c.raw.Content
	default:
		c.content = c.raw.Description
	}

	text := classificationText(c.raw, "", nil)
	if s.opts.ClassifyFullText {
		text = classificationText(c.raw, pageText, c.raw.Content)
	}

	result, err := s.classifier.Classify(ctx, text)
	if err != nil {
		c.classifyFail = true
		c.result = domain.NeutralClassification()
		logger.Warn("classification failed, using neutral defaults", "url", c.raw.URL, "error", err)
		return
	}
	c.result = result
}

// classificationText joins title, description and the best body text
// available. Page text wins over feed content.
func classificationText(raw domain.RawArticle, pageText string, content *string) string {
	parts := []string{raw.Title}
	if raw.Description != nil && *raw.Description != "" {
		parts = append(parts, *raw.Description)
	}
	if pageText != "" {
		parts = append(parts, pageText)
	} else if content != nil && *content != "" {
		parts = append(parts, *content)
	}
	return strings.Join(parts, "\n\n")
}

// persist writes one article with its entities and topic links in a single
// transaction.
func (s *IngestService) persist(ctx context.Context, logger *slog.Logger, c *candidate) (*domain.Article, bool, bool, error) {
	var (
		article  *domain.Article
		created  bool
		mismatch bool
	)

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		outlet, err := s.resolver.ResolveOutlet(txCtx, c.raw.SourceName)
		if err != nil {
			return err
		}

		authorName := ""
		if c.raw.Author != nil {
			authorName = *c.raw.Author
		}
		journalist, err := s.resolver.ResolveJournalist(txCtx, authorName, outlet.ID)
		if err != nil {
			return err
		}
		mismatch = journalist.OutletID != nil && *journalist.OutletID != outlet.ID
		if mismatch {
			logger.Debug("journalist belongs to another outlet",
				"url", c.raw.URL,
				"journalist_id", journalist.ID,
				"journalist_outlet_id", *journalist.OutletID,
				"article_outlet_id", outlet.ID,
			)
		}

		topics, err := s.resolver.ResolveTopics(txCtx, c.result.Topics)
		if err != nil {
			return err
		}

		article = buildArticle(c, outlet.ID, journalist.ID, topics)

		created, err = s.articles.Create(txCtx, article)
		if err != nil {
			return fmt.Errorf("%w: %v", domain.ErrPersistence, err)
		}
		if !created || len(topics) == 0 {
			return nil
		}

		topicIDs := make([]int64, len(topics))
		for i, t := range topics {
			topicIDs[i] = t.ID
		}
		if err := s.topics.LinkToArticle(txCtx, article.ID, topicIDs); err != nil {
			return fmt.Errorf("%w: link article topics: %v", domain.ErrPersistence, err)
		}
		if err := s.topics.LinkToJournalist(txCtx, journalist.ID, topicIDs); err != nil {
			return fmt.Errorf("%w: link journalist topics: %v", domain.ErrPersistence, err)
		}
		if err := s.journalists.SetBeatIfEmpty(txCtx, journalist.ID, topics[0].Name); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrPersistence, err)
		}
		return nil
	})
	if err != nil {
		return nil, false, false, err
	}
	return article, created, mismatch, nil
}

func buildArticle(c *candidate, outletID, journalistID int64, topics []domain.Topic) *domain.Article {
	score := domain.ClampScore(c.result.SentimentScore)
	label := c.result.SentimentLabel
	if !label.Valid() {
		label = domain.SentimentNeutral
	}

	var tone *string
	if c.result.Tone != "" {
		t := c.result.Tone
		tone = &t
	}

	publishedAt := c.publishedAt
	return &domain.Article{
		Title:          c.raw.Title,
		URL:            c.raw.URL,
		Content:        c.content,
		PublishedAt:    &publishedAt,
		SentimentScore: &score,
		SentimentLabel: label,
		Tone:           tone,
		JournalistID:   &journalistID,
		OutletID:       &outletID,
		Topics:         topics,
	}
}
