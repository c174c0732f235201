// api/analytics/engine.go
package analytics

import (
	"context"
	"time"

	"go.uber.org/zap"

	"veloshop/api/models"
)

// EventStore is the read-only query surface the engine needs from the
// visit-event collection. All range methods filter on
// createdAt ∈ [start, end).
type EventStore interface {
	CountVisits(ctx context.Context, start, end time.Time) (int64, error)
	DistinctSessions(ctx context.Context, start, end time.Time) ([]string, error)
	CountReturningVisits(ctx context.Context, start, end time.Time) (int64, error)
	SumPagesViewed(ctx context.Context, start, end time.Time) (int64, error)
	VisitDurations(ctx context.Context, start, end time.Time) ([]int64, error)
	VisitedPages(ctx context.Context, start, end time.Time) ([]models.PageVisit, error)
	DeviceTypes(ctx context.Context, start, end time.Time) ([]string, error)
	Countries(ctx context.Context, start, end time.Time) ([]string, error)
}

// Engine turns the raw visit-event stream into time-windowed summary
// statistics. It holds no mutable state: every Snapshot call issues its
// own reads and builds a fresh result.
type Engine struct {
	store        EventStore
	logger       *zap.Logger
	queryTimeout time.Duration
}

func NewEngine(store EventStore, logger *zap.Logger) *Engine {
	return &Engine{
		store:        store,
		logger:       logger,
		queryTimeout: 10 * time.Second,
	}
}

// Snapshot builds the complete analytics report for one period token.
// Any aggregation read failure aborts the whole call; the returned
// snapshot is always fully populated.
func (e *Engine) Snapshot(ctx context.Context, period string) (*models.AnalyticsSnapshot, error) {
	window := ResolveWindow(period)

	overview, topPages, deviceTypes, countries, err := e.aggregate(ctx, window)
	if err != nil {
		return nil, err
	}

	distribution := e.bucketize(ctx, window)

	return assemble(window.Period, overview, topPages, deviceTypes, countries, distribution), nil
}

// assemble composes the partial results into one immutable snapshot.
// Pure data composition: no I/O, no nil sections.
func assemble(
	period string,
	overview models.OverviewStats,
	topPages []models.PageStat,
	deviceTypes []models.DeviceStat,
	countries []models.CountryStat,
	distribution []models.TimeBucket,
) *models.AnalyticsSnapshot {
	if topPages == nil {
		topPages = []models.PageStat{}
	}
	if deviceTypes == nil {
		deviceTypes = []models.DeviceStat{}
	}
	if countries == nil {
		countries = []models.CountryStat{}
	}
	if distribution == nil {
		distribution = []models.TimeBucket{}
	}

	return &models.AnalyticsSnapshot{
		Period:           period,
		Overview:         overview,
		TopPages:         topPages,
		DeviceTypes:      deviceTypes,
		Countries:        countries,
		TimeDistribution: distribution,
	}
}

// readCtx bounds a single store read so no query blocks indefinitely.
func (e *Engine) readCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, e.queryTimeout)
}
