// api/analytics/aggregator.go
package analytics

import (
	"context"
	"fmt"
	"math"
	"sort"

	"veloshop/api/models"
)

const (
	topPagesLimit  = 10
	countriesLimit = 10
	unknownLabel   = "Unknown"
)

// aggregate reduces the window's events into the overview numbers and the
// grouped breakdowns. Each statistic is an independent read; the first
// failing read aborts the whole call with an error naming the statistic,
// so a partially-populated report can never escape.
func (e *Engine) aggregate(ctx context.Context, w Window) (
	models.OverviewStats, []models.PageStat, []models.DeviceStat, []models.CountryStat, error,
) {
	var overview models.OverviewStats

	totalVisitors, err := e.countVisits(ctx, w)
	if err != nil {
		return overview, nil, nil, nil, fmt.Errorf("failed to fetch total visitors: %w", err)
	}

	sessions, err := e.distinctSessions(ctx, w)
	if err != nil {
		return overview, nil, nil, nil, fmt.Errorf("failed to fetch unique visitors: %w", err)
	}
	uniqueVisitors := int64(len(sessions))

	returningVisitors, err := e.countReturning(ctx, w)
	if err != nil {
		return overview, nil, nil, nil, fmt.Errorf("failed to fetch returning visitors: %w", err)
	}

	totalPageViews, err := e.sumPagesViewed(ctx, w)
	if err != nil {
		return overview, nil, nil, nil, fmt.Errorf("failed to fetch total page views: %w", err)
	}

	durations, err := e.visitDurations(ctx, w)
	if err != nil {
		return overview, nil, nil, nil, fmt.Errorf("failed to fetch visit durations: %w", err)
	}

	pages, err := e.visitedPages(ctx, w)
	if err != nil {
		return overview, nil, nil, nil, fmt.Errorf("failed to fetch top pages: %w", err)
	}

	devices, err := e.deviceTypes(ctx, w)
	if err != nil {
		return overview, nil, nil, nil, fmt.Errorf("failed to fetch device types: %w", err)
	}

	countries, err := e.countries(ctx, w)
	if err != nil {
		return overview, nil, nil, nil, fmt.Errorf("failed to fetch countries: %w", err)
	}

	overview = models.OverviewStats{
		TotalVisitors:           totalVisitors,
		UniqueVisitors:          uniqueVisitors,
		ReturningVisitors:       returningVisitors,
		TotalPageViews:          totalPageViews,
		AvgVisitDurationMinutes: avgDurationMinutes(durations),
		BounceRatePercent:       bounceRate(uniqueVisitors, returningVisitors),
	}

	return overview, rankPages(pages), rankLabels[models.DeviceStat](devices, newDeviceStat, 0),
		rankLabels[models.CountryStat](countries, newCountryStat, countriesLimit), nil
}

// avgDurationMinutes returns the mean of the recorded durations in whole
// minutes. Sessions without a duration were already excluded by the read;
// an empty slice means no session has finished yet, which reads as 0.
func avgDurationMinutes(durations []int64) int64 {
	if len(durations) == 0 {
		return 0
	}
	var sum int64
	for _, d := range durations {
		sum += d
	}
	meanSeconds := float64(sum) / float64(len(durations))
	return int64(math.Round(meanSeconds / 60))
}

// bounceRate keeps the source system's count-based proxy:
// (unique - returning) / unique. Not the classic single-page definition,
// preserved on purpose for behavioral parity.
func bounceRate(unique, returning int64) int64 {
	if unique <= 0 {
		return 0
	}
	return int64(math.Round(float64(unique-returning) / float64(unique) * 100))
}

// rankPages groups page visits by (url, title) with missing titles folded
// into "Unknown", counts one per event, and returns the ten most viewed.
// The sort is stable so ties keep first-encountered order.
func rankPages(pages []models.PageVisit) []models.PageStat {
	type key struct{ url, title string }
	index := make(map[key]int, len(pages))
	stats := make([]models.PageStat, 0, len(pages))

	for _, p := range pages {
		title := p.Title
		if title == "" {
			title = unknownLabel
		}
		k := key{p.URL, title}
		if i, ok := index[k]; ok {
			stats[i].Views++
			continue
		}
		index[k] = len(stats)
		stats = append(stats, models.PageStat{URL: p.URL, Title: title, Views: 1})
	}

	sort.SliceStable(stats, func(i, j int) bool { return stats[i].Views > stats[j].Views })
	if len(stats) > topPagesLimit {
		stats = stats[:topPagesLimit]
	}
	return stats
}

func newDeviceStat(label string, count int64) models.DeviceStat {
	return models.DeviceStat{Type: label, Count: count}
}

func newCountryStat(label string, count int64) models.CountryStat {
	return models.CountryStat{Name: label, Count: count}
}

// rankLabels counts occurrences of classification labels (missing values
// become "Unknown") and returns them sorted descending, truncated to
// limit when limit > 0.
func rankLabels[T any](labels []string, build func(string, int64) T, limit int) []T {
	type entry struct {
		label string
		count int64
	}
	index := make(map[string]int, len(labels))
	entries := make([]entry, 0, len(labels))

	for _, label := range labels {
		if label == "" {
			label = unknownLabel
		}
		if i, ok := index[label]; ok {
			entries[i].count++
			continue
		}
		index[label] = len(entries)
		entries = append(entries, entry{label: label, count: 1})
	}

	sort.SliceStable(entries, func(i, j int) bool { return entries[i].count > entries[j].count })
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}

	out := make([]T, len(entries))
	for i, en := range entries {
		out[i] = build(en.label, en.count)
	}
	return out
}

// Thin wrappers so every statistic read carries its own timeout.

func (e *Engine) countVisits(ctx context.Context, w Window) (int64, error) {
	rctx, cancel := e.readCtx(ctx)
	defer cancel()
	return e.store.CountVisits(rctx, w.Start, w.End)
}

func (e *Engine) distinctSessions(ctx context.Context, w Window) ([]string, error) {
	rctx, cancel := e.readCtx(ctx)
	defer cancel()
	return e.store.DistinctSessions(rctx, w.Start, w.End)
}

func (e *Engine) countReturning(ctx context.Context, w Window) (int64, error) {
	rctx, cancel := e.readCtx(ctx)
	defer cancel()
	return e.store.CountReturningVisits(rctx, w.Start, w.End)
}

func (e *Engine) sumPagesViewed(ctx context.Context, w Window) (int64, error) {
	rctx, cancel := e.readCtx(ctx)
	defer cancel()
	return e.store.SumPagesViewed(rctx, w.Start, w.End)
}

func (e *Engine) visitDurations(ctx context.Context, w Window) ([]int64, error) {
	rctx, cancel := e.readCtx(ctx)
	defer cancel()
	return e.store.VisitDurations(rctx, w.Start, w.End)
}

func (e *Engine) visitedPages(ctx context.Context, w Window) ([]models.PageVisit, error) {
	rctx, cancel := e.readCtx(ctx)
	defer cancel()
	return e.store.VisitedPages(rctx, w.Start, w.End)
}

func (e *Engine) deviceTypes(ctx context.Context, w Window) ([]string, error) {
	rctx, cancel := e.readCtx(ctx)
	defer cancel()
	return e.store.DeviceTypes(rctx, w.Start, w.End)
}

func (e *Engine) countries(ctx context.Context, w Window) ([]string, error) {
	rctx, cancel := e.readCtx(ctx)
	defer cancel()
	return e.store.Countries(rctx, w.Start, w.End)
}
