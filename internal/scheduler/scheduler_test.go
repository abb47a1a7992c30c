package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crypto_news/internal/domain"
)

type countingIngester struct {
	calls atomic.Int32
	err   error
}

func (c *countingIngester) Ingest(ctx context.Context) (*domain.IngestStats, error) {
	c.calls.Add(1)
	if c.err != nil {
		return nil, c.err
	}
	return &domain.IngestStats{RunID: "run"}, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestStart_IntervalRunsImmediatelyAndOnTick(t *testing.T) {
	ingester := &countingIngester{}
	s := NewScheduler(ingester, 20*time.Millisecond, "", testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	require.Eventually(t, func() bool { return ingester.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
	cancel()

	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestStart_KeepsRunningAfterFailure(t *testing.T) {
	ingester := &countingIngester{err: errors.New("feed down")}
	s := NewScheduler(ingester, 10*time.Millisecond, "", testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = s.Start(ctx) }()

	require.Eventually(t, func() bool { return ingester.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
}

func TestStart_InvalidCronSpec(t *testing.T) {
	s := NewScheduler(&countingIngester{}, time.Hour, "not a cron", testLogger())

	err := s.Start(context.Background())

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid cron spec")
}

func TestStart_CronStopsOnCancel(t *testing.T) {
	ingester := &countingIngester{}
	s := NewScheduler(ingester, time.Hour, "@every 1h", testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
	assert.Zero(t, ingester.calls.Load())
}
