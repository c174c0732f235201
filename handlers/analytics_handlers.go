// api/handlers/analytics_handlers.go
package handlers

import (
	"context"
	"net/http"
	"time"

	"veloshop/api/analytics"
	"veloshop/api/models"
	"veloshop/api/store"
	"veloshop/api/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	defaultRecentLimit = 20
	maxRecentLimit     = 100
)

// SnapshotProvider is what the handlers need from the analytics engine.
type SnapshotProvider interface {
	Snapshot(ctx context.Context, period string) (*models.AnalyticsSnapshot, error)
}

// RecentVisitorReader is the store surface behind /visitors/recent.
type RecentVisitorReader interface {
	RecentVisitors(ctx context.Context, limit int) ([]models.RecentVisitor, error)
}

type AnalyticsHandlers struct {
	engine SnapshotProvider
	visits RecentVisitorReader
	cache  *store.SnapshotCache // nil when caching is disabled
	logger *zap.Logger
}

func NewAnalyticsHandlers(engine SnapshotProvider, visits RecentVisitorReader, cache *store.SnapshotCache, logger *zap.Logger) *AnalyticsHandlers {
	return &AnalyticsHandlers{
		engine: engine,
		visits: visits,
		cache:  cache,
		logger: logger,
	}
}

// GetAnalytics serves GET /analytics?period=. Unknown periods coerce to
// the default window rather than erroring; any read failure inside the
// engine surfaces as a single 500 naming the failing statistic.
func (h *AnalyticsHandlers) GetAnalytics(c *gin.Context) {
	period := analytics.NormalizePeriod(c.Query("period"))

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	if h.cache != nil {
		if snapshot, ok := h.cache.Get(ctx, period); ok {
			c.JSON(http.StatusOK, gin.H{"success": true, "data": snapshot})
			return
		}
	}

	snapshot, err := h.engine.Snapshot(ctx, period)
	if err != nil {
		h.logger.Error("analytics snapshot failed", zap.String("period", period), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}

	if h.cache != nil {
		h.cache.Set(ctx, period, snapshot)
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": snapshot})
}

// GetRecentVisitors serves GET /visitors/recent?limit=. A non-numeric or
// missing limit falls back to 20.
func (h *AnalyticsHandlers) GetRecentVisitors(c *gin.Context) {
	limit := utils.ParseLimit(c.Query("limit"), defaultRecentLimit, maxRecentLimit)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	visitors, err := h.visits.RecentVisitors(ctx, limit)
	if err != nil {
		h.logger.Error("recent visitors query failed", zap.Int("limit", limit), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to fetch recent visitors"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": visitors})
}
