package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"crypto_news/internal/domain"
	"crypto_news/internal/service"
)

type StatsProvider interface {
	DatasetStats(ctx context.Context) (*domain.DatasetStats, error)
}

type Ingester interface {
	Ingest(ctx context.Context) (*domain.IngestStats, error)
}

type Pinger interface {
	PingContext(ctx context.Context) error
}

type Handlers struct {
	stats    StatsProvider
	ingester Ingester
	db       Pinger
	logger   *slog.Logger
}

func NewHandlers(stats StatsProvider, ingester Ingester, db Pinger, logger *slog.Logger) *Handlers {
	return &Handlers{
		stats:    stats,
		ingester: ingester,
		db:       db,
		logger:   logger.With("component", "api"),
	}
}

func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handlers) ReadinessCheck(c *gin.Context) {
	if err := h.db.PingContext(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

func (h *Handlers) GetStats(c *gin.Context) {
	stats, err := h.stats.DatasetStats(c.Request.Context())
	if err != nil {
		h.logger.Error("dataset stats failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load stats"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": stats})
}

// TriggerIngest runs one batch synchronously and returns its stats.
func (h *Handlers) TriggerIngest(c *gin.Context) {
	stats, err := h.ingester.Ingest(c.Request.Context())
	switch {
	case errors.Is(err, service.ErrAlreadyRunning):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	case errors.Is(err, domain.ErrFeed):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	case err != nil && stats == nil:
		h.logger.Error("triggered ingest failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	case err != nil:
		h.logger.Warn("triggered ingest finished with error", "error", err)
		c.JSON(http.StatusOK, gin.H{"data": stats, "warning": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": stats})
}
