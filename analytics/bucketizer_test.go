package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"veloshop/api/models"
)

func TestHourlyBuckets(t *testing.T) {
	end := time.Date(2025, 5, 14, 13, 30, 0, 0, time.UTC)
	store := &fakeStore{visits: []models.VisitEvent{
		{SessionID: "a", CreatedAt: end.Add(-30 * time.Minute)},            // newest bucket
		{SessionID: "b", CreatedAt: end.Add(-30 * time.Minute)},            // newest bucket
		{SessionID: "c", CreatedAt: end.Add(-23*time.Hour - 30*time.Minute)}, // oldest bucket
	}}
	engine := newTestEngine(store)
	w := Window{Period: "24h", Start: end.Add(-24 * time.Hour), End: end}

	buckets := engine.bucketize(context.Background(), w)

	require.Len(t, buckets, 24)
	// Oldest first: the first bucket starts 24h before the window end.
	assert.Equal(t, "13", buckets[0].BucketLabel)
	assert.Equal(t, int64(1), buckets[0].Count)
	assert.Equal(t, "12", buckets[23].BucketLabel)
	assert.Equal(t, int64(2), buckets[23].Count)

	var sum int64
	for _, b := range buckets {
		sum += b.Count
	}
	assert.Equal(t, int64(3), sum)
}

func TestDailyBuckets(t *testing.T) {
	end := time.Date(2025, 5, 14, 13, 30, 0, 0, time.UTC)
	store := &fakeStore{visits: []models.VisitEvent{
		{SessionID: "a", CreatedAt: time.Date(2025, 5, 14, 1, 0, 0, 0, time.UTC)},
		{SessionID: "b", CreatedAt: time.Date(2025, 5, 8, 23, 0, 0, 0, time.UTC)},
		{SessionID: "c", CreatedAt: time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)}, // outside every bucket
	}}
	engine := newTestEngine(store)
	w := Window{Period: "7d", Start: end.AddDate(0, 0, -7), End: end}

	buckets := engine.bucketize(context.Background(), w)

	require.Len(t, buckets, 7)
	assert.Equal(t, "2025-05-08", buckets[0].BucketLabel)
	assert.Equal(t, int64(1), buckets[0].Count)
	assert.Equal(t, "2025-05-14", buckets[6].BucketLabel)
	assert.Equal(t, int64(1), buckets[6].Count)

	var sum int64
	for _, b := range buckets {
		sum += b.Count
	}
	assert.Equal(t, int64(2), sum)
}

func TestBucketCountPerPeriod(t *testing.T) {
	tests := []struct {
		period  string
		buckets int
	}{
		{period: "24h", buckets: 24},
		{period: "7d", buckets: 7},
		{period: "30d", buckets: 30},
		{period: "90d", buckets: 90},
	}

	engine := newTestEngine(&fakeStore{})
	for _, tt := range tests {
		t.Run(tt.period, func(t *testing.T) {
			buckets := engine.bucketize(context.Background(), ResolveWindow(tt.period))
			assert.Len(t, buckets, tt.buckets)
		})
	}
}

func TestBucketizeDegradesFailedReadsToZero(t *testing.T) {
	// A failed bucket read must not abort the time series: the bucket
	// reports zero and the rest of the report survives. This is looser
	// than the aggregator's all-or-nothing policy on purpose.
	store := &fakeStore{failing: map[string]error{"CountVisits": errors.New("timeout")}}
	engine := newTestEngine(store)

	buckets := engine.bucketize(context.Background(), ResolveWindow("24h"))

	require.Len(t, buckets, 24)
	for _, b := range buckets {
		assert.Equal(t, int64(0), b.Count)
	}
}
