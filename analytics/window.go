// api/analytics/window.go
package analytics

import "time"

// DefaultPeriod is used whenever a caller supplies an unknown or empty
// period token. Bad input never errors, it just gets the default window.
const DefaultPeriod = "7d"

// periodDays maps the day-based period tokens to their window length.
var periodDays = map[string]int{
	"7d":  7,
	"30d": 30,
	"90d": 90,
}

// Window is a concrete [Start, End) interval resolved from a period token.
type Window struct {
	Period string
	Start  time.Time
	End    time.Time
}

// NormalizePeriod coerces an arbitrary period string to a supported token.
func NormalizePeriod(period string) string {
	if period == "24h" {
		return period
	}
	if _, ok := periodDays[period]; ok {
		return period
	}
	return DefaultPeriod
}

// ResolveWindow maps a symbolic period token to a [start, now) interval.
// Day-based periods subtract calendar days rather than fixed hours so the
// window stays aligned across DST transitions.
func ResolveWindow(period string) Window {
	now := time.Now()
	period = NormalizePeriod(period)

	if period == "24h" {
		return Window{Period: period, Start: now.Add(-24 * time.Hour), End: now}
	}
	return Window{Period: period, Start: now.AddDate(0, 0, -periodDays[period]), End: now}
}

// Days returns the number of daily buckets a day-based window spans.
// Zero for the hourly period.
func (w Window) Days() int {
	return periodDays[w.Period]
}
