package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"crypto_news/internal/api"
	"crypto_news/internal/classifier"
	"crypto_news/internal/config"
	"crypto_news/internal/fetcher"
	"crypto_news/internal/publisher"
	"crypto_news/internal/resolver"
	"crypto_news/internal/scheduler"
	"crypto_news/internal/service"
	"crypto_news/internal/source/newsapi"
	"crypto_news/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	once := flag.Bool("once", false, "run a single ingest batch and exit")
	flag.Parse()

	logger := setupLogger("info")

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger = setupLogger(cfg.LogLevel)

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	logger.Info("connected to database")

	var pub service.Publisher
	if cfg.RabbitMQ.Enabled {
		rabbitMQ, err := publisher.NewRabbitMQ(publisher.Config{
			URL:        cfg.RabbitMQ.URL,
			Exchange:   cfg.RabbitMQ.Exchange,
			RoutingKey: cfg.RabbitMQ.RoutingKey,
			QueueName:  cfg.RabbitMQ.QueueName,
		}, logger)
		if err != nil {
			logger.Error("failed to connect to rabbitmq", "error", err)
			os.Exit(1)
		}
		defer rabbitMQ.Close()
		pub = rabbitMQ
	}

	table, err := classifier.TableFromConfig(cfg.Topics)
	if err != nil {
		logger.Error("invalid topic keywords", "error", err)
		os.Exit(1)
	}

	clf, err := classifier.New(cfg.Classifier, table, logger)
	if err != nil {
		logger.Error("failed to create classifier", "error", err)
		os.Exit(1)
	}

	// Page text only feeds the remote classifier.
	var pageFetcher service.PageFetcher
	if cfg.Enrichment.Enabled && cfg.Classifier.Strategy == config.StrategyRemote {
		pageFetcher = fetcher.New(fetcher.Config{
			Timeout:      cfg.Enrichment.FetchTimeout,
			MaxBodyBytes: cfg.Enrichment.MaxBodyBytes,
		}, logger)
	}

	outletStore := postgres.NewOutletStore(db)
	journalistStore := postgres.NewJournalistStore(db)
	topicStore := postgres.NewTopicStore(db)
	articleStore := postgres.NewArticleStore(db)
	syncStateStore := postgres.NewSyncStateStore(db)
	analyticsStore := postgres.NewAnalyticsStore(db)
	txManager := postgres.NewTransactionManager(db)

	feed := newsapi.New(newsapi.Config{
		BaseURL:        cfg.Feed.BaseURL,
		APIKey:         cfg.Feed.APIKey,
		Keywords:       cfg.Feed.Keywords,
		Language:       cfg.Feed.Language,
		PageSize:       cfg.Feed.PageSize,
		MaxPages:       cfg.Feed.MaxPages,
		Timeout:        cfg.Feed.Timeout,
		MaxAttempts:    cfg.Feed.Retry.MaxAttempts,
		InitialBackoff: cfg.Feed.Retry.InitialBackoff,
		MaxBackoff:     cfg.Feed.Retry.MaxBackoff,
	}, logger)

	ingestService := service.NewIngestService(service.Deps{
		Source:      feed,
		Articles:    articleStore,
		Topics:      topicStore,
		Journalists: journalistStore,
		Resolver:    resolver.New(outletStore, journalistStore, topicStore),
		Classifier:  clf,
		Fetcher:     pageFetcher,
		SyncState:   syncStateStore,
		TxManager:   txManager,
		Publisher:   pub,
	}, logger, service.Options{
		Workers:          cfg.Ingest.Workers,
		MaxArticles:      cfg.Ingest.MaxArticles,
		LookbackDays:     cfg.Feed.LookbackDays,
		ClassifyFullText: cfg.Classifier.Strategy == config.StrategyRemote,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	if *once {
		stats, err := ingestService.Ingest(ctx)
		if err != nil {
			logger.Error("ingest failed", "error", err)
			os.Exit(1)
		}
		logger.Info("ingest finished", "run_id", stats.RunID, "added", stats.Added)
		return
	}

	logger.Info("starting crypto news ingester",
		"source", feed.Name(),
		"classifier", clf.Name(),
		"topics", table.Topics(),
		"interval", cfg.Schedule.Interval,
		"cron", cfg.Schedule.Cron,
		"api", cfg.API.Enabled,
	)

	g, gctx := errgroup.WithContext(ctx)

	sched := scheduler.NewScheduler(ingestService, cfg.Schedule.Interval, cfg.Schedule.Cron, logger)
	g.Go(func() error {
		return sched.Start(gctx)
	})

	if cfg.API.Enabled {
		server := api.NewServer(api.Config{
			Addr:         cfg.API.Addr,
			ReadTimeout:  cfg.API.ReadTimeout,
			WriteTimeout: cfg.API.WriteTimeout,
		}, api.NewHandlers(analyticsStore, ingestService, db, logger), logger)
		g.Go(func() error {
			return server.Run(gctx)
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("ingester stopped with error", "error", err)
		os.Exit(1)
	}
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: logLevel}
	handler := slog.NewJSONHandler(os.Stdout, opts)
	return slog.New(handler)
}
