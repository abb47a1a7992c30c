package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"crypto_news/internal/domain"
)

const defaultRunTimeout = 10 * time.Minute

// Ingester runs one ingestion batch.
type Ingester interface {
	Ingest(ctx context.Context) (*domain.IngestStats, error)
}

// Scheduler triggers batches on a fixed interval, or on a cron spec when one
// is configured.
type Scheduler struct {
	ingester   Ingester
	interval   time.Duration
	cronSpec   string
	runTimeout time.Duration
	logger     *slog.Logger
}

func NewScheduler(ingester Ingester, interval time.Duration, cronSpec string, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		ingester:   ingester,
		interval:   interval,
		cronSpec:   cronSpec,
		runTimeout: defaultRunTimeout,
		logger:     logger.With("component", "scheduler"),
	}
}

// Start blocks until ctx is cancelled. In interval mode the first batch runs
// immediately.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.cronSpec != "" {
		return s.startCron(ctx)
	}

	s.logger.Info("scheduler started", "interval", s.interval)

	s.runIngest(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.runIngest(ctx)
		}
	}
}

func (s *Scheduler) startCron(ctx context.Context) error {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(s.cronSpec, func() { s.runIngest(ctx) }); err != nil {
		return fmt.Errorf("invalid cron spec %q: %w", s.cronSpec, err)
	}

	s.logger.Info("scheduler started", "cron", s.cronSpec)
	c.Start()

	<-ctx.Done()
	<-c.Stop().Done()
	s.logger.Info("scheduler stopped")
	return ctx.Err()
}

func (s *Scheduler) runIngest(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, s.runTimeout)
	defer cancel()

	stats, err := s.ingester.Ingest(runCtx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		s.logger.Error("ingest failed", "error", err)
		return
	}
	s.logger.Debug("scheduled ingest finished", "run_id", stats.RunID, "added", stats.Added)
}
