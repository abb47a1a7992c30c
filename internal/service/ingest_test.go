package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"crypto_news/internal/classifier"
	"crypto_news/internal/domain"
	"crypto_news/internal/service/mocks"
	"crypto_news/internal/testutil"
)

type IngestServiceTestSuite struct {
	suite.Suite
	ctrl *gomock.Controller

	source      *mocks.MockSource
	articles    *mocks.MockArticleStore
	topics      *mocks.MockTopicLinker
	journalists *mocks.MockJournalistStore
	resolver    *mocks.MockResolver
	classifier  *mocks.MockClassifier
	syncState   *mocks.MockSyncStateStore
	txManager   *mocks.MockTransactionManager
	publisher   *mocks.MockPublisher

	logger *slog.Logger
	now    time.Time
	ctx    context.Context
}

func (s *IngestServiceTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())

	s.source = mocks.NewMockSource(s.ctrl)
	s.articles = mocks.NewMockArticleStore(s.ctrl)
	s.topics = mocks.NewMockTopicLinker(s.ctrl)
	s.journalists = mocks.NewMockJournalistStore(s.ctrl)
	s.resolver = mocks.NewMockResolver(s.ctrl)
	s.classifier = mocks.NewMockClassifier(s.ctrl)
	s.syncState = mocks.NewMockSyncStateStore(s.ctrl)
	s.txManager = mocks.NewMockTransactionManager(s.ctrl)
	s.publisher = mocks.NewMockPublisher(s.ctrl)

	s.logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	s.now = time.Date(2024, 3, 14, 9, 0, 0, 0, time.UTC)
	s.ctx = context.Background()

	s.source.EXPECT().ID().Return("newsapi").AnyTimes()
	s.source.EXPECT().Name().Return("NewsAPI").AnyTimes()
	s.classifier.EXPECT().Name().Return("mock").AnyTimes()

	s.txManager.EXPECT().WithTransaction(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, fn func(context.Context) error) error {
			return fn(ctx)
		},
	).AnyTimes()
}

func (s *IngestServiceTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestIngestServiceTestSuite(t *testing.T) {
	suite.Run(t, new(IngestServiceTestSuite))
}

func (s *IngestServiceTestSuite) newService(c Classifier, fetcher PageFetcher, opts Options) *IngestService {
	svc := NewIngestService(Deps{
		Source:      s.source,
		Articles:    s.articles,
		Topics:      s.topics,
		Journalists: s.journalists,
		Resolver:    s.resolver,
		Classifier:  c,
		Fetcher:     fetcher,
		SyncState:   s.syncState,
		TxManager:   s.txManager,
		Publisher:   s.publisher,
	}, s.logger, opts)
	svc.now = func() time.Time { return s.now }
	return svc
}

func record(url string) domain.RawArticle {
	return domain.RawArticle{
		Title:       "X upgrade live",
		URL:         url,
		PublishedAt: "2024-03-13T13:30:00Z",
		SourceName:  "CoinDesk",
		Author:      testutil.Ptr("Sam Kessler"),
		Description: testutil.Ptr("Ethereum upgrade activates"),
	}
}

// expectResolved wires outlet 1 and journalist 2 (in outlet 1) for any record.
func (s *IngestServiceTestSuite) expectResolved(times int) {
	outletID := int64(1)
	s.resolver.EXPECT().ResolveOutlet(gomock.Any(), "CoinDesk").
		Return(&domain.Outlet{ID: outletID, Name: "CoinDesk"}, nil).Times(times)
	s.resolver.EXPECT().ResolveJournalist(gomock.Any(), "Sam Kessler", outletID).
		Return(&domain.Journalist{ID: 2, Name: "Sam Kessler", OutletID: &outletID}, nil).Times(times)
}

func (s *IngestServiceTestSuite) TestProcess_NewRecordWithKeywordClassifier() {
	svc := s.newService(classifier.NewKeywordClassifier(classifier.DefaultKeywordTable()), nil, Options{Workers: 2})

	s.articles.EXPECT().ExistingURLs(s.ctx, []string{"https://a/1"}).Return(map[string]bool{}, nil)
	s.expectResolved(1)
	s.resolver.EXPECT().ResolveTopics(gomock.Any(), []string{"Ethereum"}).
		Return([]domain.Topic{{ID: 5, Name: "Ethereum"}}, nil)

	var stored *domain.Article
	s.articles.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, a *domain.Article) (bool, error) {
			a.ID = 10
			stored = a
			return true, nil
		},
	)
	s.topics.EXPECT().LinkToArticle(gomock.Any(), int64(10), []int64{5}).Return(nil)
	s.topics.EXPECT().LinkToJournalist(gomock.Any(), int64(2), []int64{5}).Return(nil)
	s.journalists.EXPECT().SetBeatIfEmpty(gomock.Any(), int64(2), "Ethereum").Return(nil)
	s.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)

	stats := svc.Process(s.ctx, []domain.RawArticle{record("https://a/1")})

	s.Equal(1, stats.Fetched)
	s.Equal(1, stats.Added)
	s.Equal(1, stats.Published)
	s.Zero(stats.Failed)
	s.NotEmpty(stats.RunID)

	s.Require().NotNil(stored)
	s.Equal("https://a/1", stored.URL)
	s.Equal(domain.SentimentNeutral, stored.SentimentLabel)
	s.Equal(0.0, *stored.SentimentScore)
	s.Nil(stored.Tone)
	s.Equal(int64(1), *stored.OutletID)
	s.Equal(int64(2), *stored.JournalistID)
	s.Equal(time.Date(2024, 3, 13, 13, 30, 0, 0, time.UTC), stored.PublishedAt.UTC())
	s.Equal("Ethereum upgrade activates", *stored.Content)
}

func (s *IngestServiceTestSuite) TestProcess_KeywordTopicsIgnoreFeedContent() {
	svc := s.newService(classifier.NewKeywordClassifier(classifier.DefaultKeywordTable()), nil, Options{})
	raw := record("https://a/1")
	raw.Content = testutil.Ptr("Binance trading volume hit a record as miners sold")

	s.articles.EXPECT().ExistingURLs(s.ctx, gomock.Any()).Return(map[string]bool{}, nil)
	s.expectResolved(1)
	s.resolver.EXPECT().ResolveTopics(gomock.Any(), []string{"Ethereum"}).
		Return([]domain.Topic{{ID: 5, Name: "Ethereum"}}, nil)
	s.articles.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, a *domain.Article) (bool, error) {
			a.ID = 10
			s.Equal("Binance trading volume hit a record as miners sold", *a.Content)
			return true, nil
		},
	)
	s.topics.EXPECT().LinkToArticle(gomock.Any(), int64(10), []int64{5}).Return(nil)
	s.topics.EXPECT().LinkToJournalist(gomock.Any(), int64(2), []int64{5}).Return(nil)
	s.journalists.EXPECT().SetBeatIfEmpty(gomock.Any(), int64(2), "Ethereum").Return(nil)
	s.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)

	stats := svc.Process(s.ctx, []domain.RawArticle{raw})

	s.Equal(1, stats.Added)
}

func (s *IngestServiceTestSuite) TestProcess_FullTextIncludesFeedContent() {
	svc := s.newService(s.classifier, nil, Options{ClassifyFullText: true})
	raw := record("https://a/1")
	raw.Content = testutil.Ptr("Binance trading volume hit a record")

	s.articles.EXPECT().ExistingURLs(s.ctx, gomock.Any()).Return(map[string]bool{}, nil)
	s.classifier.EXPECT().Classify(gomock.Any(), "X upgrade live\n\nEthereum upgrade activates\n\nBinance trading volume hit a record").
		Return(domain.Classification{SentimentLabel: domain.SentimentNeutral}, nil)
	s.expectResolved(1)
	s.resolver.EXPECT().ResolveTopics(gomock.Any(), gomock.Any()).Return(nil, nil)
	s.articles.EXPECT().Create(gomock.Any(), gomock.Any()).Return(true, nil)
	s.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)

	stats := svc.Process(s.ctx, []domain.RawArticle{raw})

	s.Equal(1, stats.Added)
}

func (s *IngestServiceTestSuite) TestProcess_ReingestIsNoop() {
	svc := s.newService(s.classifier, nil, Options{})

	s.articles.EXPECT().ExistingURLs(s.ctx, []string{"https://a/1"}).Return(map[string]bool{"https://a/1": true}, nil)

	stats := svc.Process(s.ctx, []domain.RawArticle{record("https://a/1")})

	s.Equal(0, stats.Added)
	s.Equal(1, stats.Duplicates)
}

func (s *IngestServiceTestSuite) TestProcess_InBatchDuplicate() {
	svc := s.newService(s.classifier, nil, Options{})

	s.articles.EXPECT().ExistingURLs(s.ctx, []string{"https://a/1"}).Return(nil, nil)
	s.classifier.EXPECT().Classify(gomock.Any(), gomock.Any()).Return(domain.Classification{SentimentLabel: domain.SentimentNeutral}, nil)
	s.expectResolved(1)
	s.resolver.EXPECT().ResolveTopics(gomock.Any(), gomock.Len(0)).Return(nil, nil)
	s.articles.EXPECT().Create(gomock.Any(), gomock.Any()).Return(true, nil)
	s.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)

	stats := svc.Process(s.ctx, []domain.RawArticle{record("https://a/1"), record(" https://a/1 ")})

	s.Equal(1, stats.Added)
	s.Equal(1, stats.Duplicates)
}

func (s *IngestServiceTestSuite) TestProcess_ConflictOnCreateCountsDuplicate() {
	svc := s.newService(s.classifier, nil, Options{})

	s.articles.EXPECT().ExistingURLs(s.ctx, gomock.Any()).Return(map[string]bool{}, nil)
	s.classifier.EXPECT().Classify(gomock.Any(), gomock.Any()).Return(domain.Classification{
		SentimentLabel: domain.SentimentNeutral,
		Topics:         []string{"Bitcoin"},
	}, nil)
	s.expectResolved(1)
	s.resolver.EXPECT().ResolveTopics(gomock.Any(), []string{"Bitcoin"}).Return([]domain.Topic{{ID: 3, Name: "Bitcoin"}}, nil)
	s.articles.EXPECT().Create(gomock.Any(), gomock.Any()).Return(false, nil)

	stats := svc.Process(s.ctx, []domain.RawArticle{record("https://a/1")})

	s.Equal(0, stats.Added)
	s.Equal(1, stats.Duplicates)
	s.Equal(0, stats.Published)
}

func (s *IngestServiceTestSuite) TestProcess_NullAuthorPassesEmptyName() {
	svc := s.newService(s.classifier, nil, Options{})
	raw := record("https://a/2")
	raw.Author = nil

	s.articles.EXPECT().ExistingURLs(s.ctx, gomock.Any()).Return(map[string]bool{}, nil)
	s.classifier.EXPECT().Classify(gomock.Any(), gomock.Any()).Return(domain.Classification{SentimentLabel: domain.SentimentNeutral}, nil)
	s.resolver.EXPECT().ResolveOutlet(gomock.Any(), "CoinDesk").Return(&domain.Outlet{ID: 1}, nil)
	s.resolver.EXPECT().ResolveJournalist(gomock.Any(), "", int64(1)).Return(&domain.Journalist{ID: 9, Name: "Unknown Author"}, nil)
	s.resolver.EXPECT().ResolveTopics(gomock.Any(), gomock.Len(0)).Return(nil, nil)
	s.articles.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, a *domain.Article) (bool, error) {
			s.Equal(int64(9), *a.JournalistID)
			return true, nil
		},
	)
	s.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)

	stats := svc.Process(s.ctx, []domain.RawArticle{raw})

	s.Equal(1, stats.Added)
}

func (s *IngestServiceTestSuite) TestProcess_MalformedTimestampUsesProcessingTime() {
	svc := s.newService(s.classifier, nil, Options{})
	raw := record("https://a/3")
	raw.PublishedAt = "13/03/2024 13:30"

	s.articles.EXPECT().ExistingURLs(s.ctx, gomock.Any()).Return(map[string]bool{}, nil)
	s.classifier.EXPECT().Classify(gomock.Any(), gomock.Any()).Return(domain.Classification{SentimentLabel: domain.SentimentNeutral}, nil)
	s.expectResolved(1)
	s.resolver.EXPECT().ResolveTopics(gomock.Any(), gomock.Any()).Return(nil, nil)
	s.articles.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, a *domain.Article) (bool, error) {
			s.Equal(s.now, *a.PublishedAt)
			return true, nil
		},
	)
	s.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)

	stats := svc.Process(s.ctx, []domain.RawArticle{raw})

	s.Equal(1, stats.Added)
	s.Equal(1, stats.TimestampFallbacks)
}

func (s *IngestServiceTestSuite) TestProcess_ClassifierFailureKeepsNeutralDefaults() {
	svc := s.newService(s.classifier, nil, Options{})

	s.articles.EXPECT().ExistingURLs(s.ctx, gomock.Any()).Return(map[string]bool{}, nil)
	s.classifier.EXPECT().Classify(gomock.Any(), gomock.Any()).
		Return(domain.NeutralClassification(), domain.ErrClassification)
	s.expectResolved(1)
	s.resolver.EXPECT().ResolveTopics(gomock.Any(), gomock.Len(0)).Return(nil, nil)
	s.articles.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, a *domain.Article) (bool, error) {
			s.Equal(0.0, *a.SentimentScore)
			s.Equal(domain.SentimentNeutral, a.SentimentLabel)
			s.Require().NotNil(a.Tone)
			s.Equal("unknown", *a.Tone)
			s.Empty(a.Topics)
			return true, nil
		},
	)
	s.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)

	stats := svc.Process(s.ctx, []domain.RawArticle{record("https://a/4")})

	s.Equal(1, stats.Added)
	s.Equal(1, stats.ClassifierFallbacks)
}

func (s *IngestServiceTestSuite) TestProcess_PartialBatch() {
	svc := s.newService(s.classifier, nil, Options{Workers: 3})
	bad := record("")
	noTitle := record("https://a/9")
	noTitle.Title = "  "

	s.articles.EXPECT().ExistingURLs(s.ctx, []string{"https://a/1", "https://a/2"}).Return(map[string]bool{}, nil)
	s.classifier.EXPECT().Classify(gomock.Any(), gomock.Any()).Return(domain.Classification{SentimentLabel: domain.SentimentNeutral}, nil).Times(2)
	s.expectResolved(2)
	s.resolver.EXPECT().ResolveTopics(gomock.Any(), gomock.Any()).Return(nil, nil).Times(2)

	var order []string
	s.articles.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, a *domain.Article) (bool, error) {
			order = append(order, a.URL)
			return true, nil
		},
	).Times(2)
	s.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil).Times(2)

	stats := svc.Process(s.ctx, []domain.RawArticle{record("https://a/1"), bad, noTitle, record("https://a/2")})

	s.Equal(4, stats.Fetched)
	s.Equal(2, stats.Added)
	s.Equal(2, stats.Invalid)
	s.Equal([]string{"https://a/1", "https://a/2"}, order)
}

func (s *IngestServiceTestSuite) TestProcess_ResolverFailureSkipsOnlyThatRecord() {
	svc := s.newService(s.classifier, nil, Options{})
	other := record("https://a/2")
	other.SourceName = "Decrypt"

	s.articles.EXPECT().ExistingURLs(s.ctx, gomock.Any()).Return(map[string]bool{}, nil)
	s.classifier.EXPECT().Classify(gomock.Any(), gomock.Any()).Return(domain.Classification{SentimentLabel: domain.SentimentNeutral}, nil).Times(2)
	s.resolver.EXPECT().ResolveOutlet(gomock.Any(), "Decrypt").Return(nil, domain.ErrResolution)
	s.expectResolved(1)
	s.resolver.EXPECT().ResolveTopics(gomock.Any(), gomock.Any()).Return(nil, nil)
	s.articles.EXPECT().Create(gomock.Any(), gomock.Any()).Return(true, nil)
	s.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)

	stats := svc.Process(s.ctx, []domain.RawArticle{other, record("https://a/1")})

	s.Equal(1, stats.Added)
	s.Equal(1, stats.Failed)
}

func (s *IngestServiceTestSuite) TestProcess_LinkFailureCountsFailed() {
	svc := s.newService(s.classifier, nil, Options{})

	s.articles.EXPECT().ExistingURLs(s.ctx, gomock.Any()).Return(map[string]bool{}, nil)
	s.classifier.EXPECT().Classify(gomock.Any(), gomock.Any()).Return(domain.Classification{
		SentimentLabel: domain.SentimentNeutral,
		Topics:         []string{"DeFi"},
	}, nil)
	s.expectResolved(1)
	s.resolver.EXPECT().ResolveTopics(gomock.Any(), gomock.Any()).Return([]domain.Topic{{ID: 4, Name: "DeFi"}}, nil)
	s.articles.EXPECT().Create(gomock.Any(), gomock.Any()).Return(true, nil)
	s.topics.EXPECT().LinkToArticle(gomock.Any(), gomock.Any(), []int64{4}).Return(errors.New("fk violation"))

	stats := svc.Process(s.ctx, []domain.RawArticle{record("https://a/1")})

	s.Equal(0, stats.Added)
	s.Equal(1, stats.Failed)
	s.Equal(0, stats.Published)
}

func (s *IngestServiceTestSuite) TestProcess_OutletMismatchTolerated() {
	svc := s.newService(s.classifier, nil, Options{})
	otherOutlet := int64(77)

	s.articles.EXPECT().ExistingURLs(s.ctx, gomock.Any()).Return(map[string]bool{}, nil)
	s.classifier.EXPECT().Classify(gomock.Any(), gomock.Any()).Return(domain.Classification{SentimentLabel: domain.SentimentNeutral}, nil)
	s.resolver.EXPECT().ResolveOutlet(gomock.Any(), "CoinDesk").Return(&domain.Outlet{ID: 1}, nil)
	s.resolver.EXPECT().ResolveJournalist(gomock.Any(), "Sam Kessler", int64(1)).
		Return(&domain.Journalist{ID: 2, OutletID: &otherOutlet}, nil)
	s.resolver.EXPECT().ResolveTopics(gomock.Any(), gomock.Any()).Return(nil, nil)
	s.articles.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, a *domain.Article) (bool, error) {
			s.Equal(int64(1), *a.OutletID)
			return true, nil
		},
	)
	s.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)

	stats := svc.Process(s.ctx, []domain.RawArticle{record("https://a/1")})

	s.Equal(1, stats.Added)
	s.Equal(1, stats.OutletMismatches)
}

func (s *IngestServiceTestSuite) TestProcess_BatchLogsCarryRunID() {
	var buf bytes.Buffer
	s.logger = slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	svc := s.newService(s.classifier, nil, Options{})
	otherOutlet := int64(77)

	s.articles.EXPECT().ExistingURLs(s.ctx, gomock.Any()).Return(map[string]bool{}, nil)
	s.classifier.EXPECT().Classify(gomock.Any(), gomock.Any()).Return(domain.NeutralClassification(), domain.ErrClassification)
	s.resolver.EXPECT().ResolveOutlet(gomock.Any(), "CoinDesk").Return(&domain.Outlet{ID: 1}, nil)
	s.resolver.EXPECT().ResolveJournalist(gomock.Any(), "Sam Kessler", int64(1)).
		Return(&domain.Journalist{ID: 2, OutletID: &otherOutlet}, nil)
	s.resolver.EXPECT().ResolveTopics(gomock.Any(), gomock.Any()).Return(nil, nil)
	s.articles.EXPECT().Create(gomock.Any(), gomock.Any()).Return(true, nil)
	s.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)

	stats := svc.Process(s.ctx, []domain.RawArticle{record("https://a/1")})

	lines := map[string]map[string]any{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var entry map[string]any
		s.Require().NoError(json.Unmarshal([]byte(line), &entry))
		lines[entry["msg"].(string)] = entry
	}

	mismatch, ok := lines["journalist belongs to another outlet"]
	s.Require().True(ok)
	s.Equal(stats.RunID, mismatch["run_id"])

	failure, ok := lines["classification failed, using neutral defaults"]
	s.Require().True(ok)
	s.Equal(stats.RunID, failure["run_id"])
	s.Equal(1, strings.Count(buf.String(), "classification failed"))
}

func (s *IngestServiceTestSuite) TestProcess_PageTextFeedsClassifier() {
	fetcher := mocks.NewMockPageFetcher(s.ctrl)
	svc := s.newService(s.classifier, fetcher, Options{ClassifyFullText: true})

	s.articles.EXPECT().ExistingURLs(s.ctx, gomock.Any()).Return(map[string]bool{}, nil)
	fetcher.EXPECT().FetchText(gomock.Any(), "https://a/1").Return("Full body about staking.", nil)
	s.classifier.EXPECT().Classify(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, text string) (domain.Classification, error) {
			s.True(strings.HasPrefix(text, "X upgrade live"))
			s.Contains(text, "Full body about staking.")
			return domain.Classification{SentimentScore: 0.4, SentimentLabel: domain.SentimentPositive, Tone: "confident"}, nil
		},
	)
	s.expectResolved(1)
	s.resolver.EXPECT().ResolveTopics(gomock.Any(), gomock.Any()).Return(nil, nil)
	s.articles.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, a *domain.Article) (bool, error) {
			s.Equal("Full body about staking.", *a.Content)
			s.Equal(0.4, *a.SentimentScore)
			s.Equal(domain.SentimentPositive, a.SentimentLabel)
			s.Equal("confident", *a.Tone)
			return true, nil
		},
	)
	s.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)

	stats := svc.Process(s.ctx, []domain.RawArticle{record("https://a/1")})

	s.Equal(1, stats.Added)
}

func (s *IngestServiceTestSuite) TestProcess_PageFetchFailureFallsBackToFeedText() {
	fetcher := mocks.NewMockPageFetcher(s.ctrl)
	svc := s.newService(s.classifier, fetcher, Options{ClassifyFullText: true})

	s.articles.EXPECT().ExistingURLs(s.ctx, gomock.Any()).Return(map[string]bool{}, nil)
	fetcher.EXPECT().FetchText(gomock.Any(), "https://a/1").Return("", domain.ErrFetch)
	s.classifier.EXPECT().Classify(gomock.Any(), "X upgrade live\n\nEthereum upgrade activates").
		Return(domain.Classification{SentimentLabel: domain.SentimentNeutral}, nil)
	s.expectResolved(1)
	s.resolver.EXPECT().ResolveTopics(gomock.Any(), gomock.Any()).Return(nil, nil)
	s.articles.EXPECT().Create(gomock.Any(), gomock.Any()).Return(true, nil)
	s.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)

	stats := svc.Process(s.ctx, []domain.RawArticle{record("https://a/1")})

	s.Equal(1, stats.Added)
	s.Zero(stats.Failed)
}

func (s *IngestServiceTestSuite) TestProcess_PublishFailureIsNotFatal() {
	svc := s.newService(s.classifier, nil, Options{})

	s.articles.EXPECT().ExistingURLs(s.ctx, gomock.Any()).Return(map[string]bool{}, nil)
	s.classifier.EXPECT().Classify(gomock.Any(), gomock.Any()).Return(domain.Classification{SentimentLabel: domain.SentimentNeutral}, nil)
	s.expectResolved(1)
	s.resolver.EXPECT().ResolveTopics(gomock.Any(), gomock.Any()).Return(nil, nil)
	s.articles.EXPECT().Create(gomock.Any(), gomock.Any()).Return(true, nil)
	s.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(errors.New("channel closed"))

	stats := svc.Process(s.ctx, []domain.RawArticle{record("https://a/1")})

	s.Equal(1, stats.Added)
	s.Equal(0, stats.Published)
}

func (s *IngestServiceTestSuite) TestProcess_MaxArticlesCapsBatch() {
	svc := s.newService(s.classifier, nil, Options{MaxArticles: 1})

	s.articles.EXPECT().ExistingURLs(s.ctx, []string{"https://a/1"}).Return(map[string]bool{}, nil)
	s.classifier.EXPECT().Classify(gomock.Any(), gomock.Any()).Return(domain.Classification{SentimentLabel: domain.SentimentNeutral}, nil)
	s.expectResolved(1)
	s.resolver.EXPECT().ResolveTopics(gomock.Any(), gomock.Any()).Return(nil, nil)
	s.articles.EXPECT().Create(gomock.Any(), gomock.Any()).Return(true, nil)
	s.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)

	stats := svc.Process(s.ctx, []domain.RawArticle{record("https://a/1"), record("https://a/2")})

	s.Equal(2, stats.Fetched)
	s.Equal(1, stats.Added)
}

func (s *IngestServiceTestSuite) TestProcess_EmptyBatch() {
	svc := s.newService(s.classifier, nil, Options{})

	stats := svc.Process(s.ctx, nil)

	s.Equal(0, stats.Fetched)
	s.Equal(0, stats.Added)
}

func (s *IngestServiceTestSuite) TestIngest_RequeriesLookbackWindowAndUpdatesState() {
	svc := s.newService(s.classifier, nil, Options{LookbackDays: 1})
	lastSync := s.now.Add(-2 * time.Hour)

	s.syncState.EXPECT().Get(s.ctx, "newsapi").Return(&domain.SyncState{
		SourceID:      "newsapi",
		LastSyncedAt:  lastSync,
		TotalIngested: 5,
	}, nil)
	s.source.EXPECT().FetchArticles(s.ctx, s.now.AddDate(0, 0, -1)).Return([]domain.RawArticle{record("https://a/1")}, nil)
	s.articles.EXPECT().ExistingURLs(s.ctx, gomock.Any()).Return(map[string]bool{}, nil)
	s.classifier.EXPECT().Classify(gomock.Any(), gomock.Any()).Return(domain.Classification{SentimentLabel: domain.SentimentNeutral}, nil)
	s.expectResolved(1)
	s.resolver.EXPECT().ResolveTopics(gomock.Any(), gomock.Any()).Return(nil, nil)
	s.articles.EXPECT().Create(gomock.Any(), gomock.Any()).Return(true, nil)
	s.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)
	s.syncState.EXPECT().Update(s.ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, state *domain.SyncState) error {
			s.Equal(s.now, state.LastSyncedAt)
			s.Equal(int64(6), state.TotalIngested)
			return nil
		},
	)

	stats, err := svc.Ingest(s.ctx)

	s.NoError(err)
	s.Equal("newsapi", stats.SourceID)
	s.Equal(1, stats.Added)
}

func (s *IngestServiceTestSuite) TestIngest_LookbackBoundsFirstRun() {
	svc := s.newService(s.classifier, nil, Options{LookbackDays: 1})

	s.syncState.EXPECT().Get(s.ctx, "newsapi").Return(&domain.SyncState{SourceID: "newsapi"}, nil)
	s.source.EXPECT().FetchArticles(s.ctx, s.now.AddDate(0, 0, -1)).Return(nil, nil)
	s.syncState.EXPECT().Update(s.ctx, gomock.Any()).Return(nil)

	stats, err := svc.Ingest(s.ctx)

	s.NoError(err)
	s.Equal(0, stats.Fetched)
}

func (s *IngestServiceTestSuite) TestIngest_FeedFailureAbortsBatch() {
	svc := s.newService(s.classifier, nil, Options{LookbackDays: 1})

	s.syncState.EXPECT().Get(s.ctx, "newsapi").Return(&domain.SyncState{SourceID: "newsapi"}, nil)
	s.source.EXPECT().FetchArticles(s.ctx, gomock.Any()).Return(nil, domain.ErrFeed)

	stats, err := svc.Ingest(s.ctx)

	s.Nil(stats)
	s.ErrorIs(err, domain.ErrFeed)
}

func (s *IngestServiceTestSuite) TestIngest_RejectsOverlappingRun() {
	svc := s.newService(s.classifier, nil, Options{})
	svc.running.Store(true)

	_, err := svc.Ingest(s.ctx)

	s.ErrorIs(err, ErrAlreadyRunning)
}
