// api/analytics/bucketizer.go
package analytics

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"veloshop/api/models"
)

// bucketize partitions the window into fixed sub-intervals and counts
// events per bucket: 24 hourly buckets for the 24h period, one bucket per
// calendar day otherwise, oldest first.
//
// Unlike the aggregator, a failed bucket read does not abort the report:
// the bucket degrades to 0 with a logged warning. Losing one point of the
// time series is preferable to losing the whole dashboard.
func (e *Engine) bucketize(ctx context.Context, w Window) []models.TimeBucket {
	if w.Period == "24h" {
		return e.hourlyBuckets(ctx, w)
	}
	return e.dailyBuckets(ctx, w)
}

func (e *Engine) hourlyBuckets(ctx context.Context, w Window) []models.TimeBucket {
	buckets := make([]models.TimeBucket, 0, 24)

	for i := 23; i >= 0; i-- {
		end := w.End.Add(-time.Duration(i) * time.Hour)
		start := end.Add(-time.Hour)

		buckets = append(buckets, models.TimeBucket{
			BucketLabel: strconv.Itoa(start.Hour()),
			Count:       e.bucketCount(ctx, start, end),
		})
	}
	return buckets
}

func (e *Engine) dailyBuckets(ctx context.Context, w Window) []models.TimeBucket {
	days := w.Days()
	buckets := make([]models.TimeBucket, 0, days)

	year, month, day := w.End.Date()
	today := time.Date(year, month, day, 0, 0, 0, 0, w.End.Location())

	for i := days - 1; i >= 0; i-- {
		start := today.AddDate(0, 0, -i)
		end := start.AddDate(0, 0, 1)

		buckets = append(buckets, models.TimeBucket{
			BucketLabel: start.Format("2006-01-02"),
			Count:       e.bucketCount(ctx, start, end),
		})
	}
	return buckets
}

func (e *Engine) bucketCount(ctx context.Context, start, end time.Time) int64 {
	rctx, cancel := e.readCtx(ctx)
	defer cancel()

	count, err := e.store.CountVisits(rctx, start, end)
	if err != nil {
		e.logger.Warn("bucket count failed, reporting zero",
			zap.Time("bucket_start", start),
			zap.Time("bucket_end", end),
			zap.Error(err),
		)
		return 0
	}
	return count
}
