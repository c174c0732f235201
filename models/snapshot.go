// api/models/snapshot.go
package models

// AnalyticsSnapshot is the complete analytics result for one dashboard
// request. It is built fresh per request and never persisted.
type AnalyticsSnapshot struct {
	Period           string        `json:"period"`
	Overview         OverviewStats `json:"overview"`
	TopPages         []PageStat    `json:"topPages"`
	DeviceTypes      []DeviceStat  `json:"deviceTypes"`
	Countries        []CountryStat `json:"countries"`
	TimeDistribution []TimeBucket  `json:"timeDistribution"`
}

type OverviewStats struct {
	TotalVisitors           int64 `json:"totalVisitors"`
	UniqueVisitors          int64 `json:"uniqueVisitors"`
	ReturningVisitors       int64 `json:"returningVisitors"`
	TotalPageViews          int64 `json:"totalPageViews"`
	AvgVisitDurationMinutes int64 `json:"avgVisitDurationMinutes"`
	BounceRatePercent       int64 `json:"bounceRatePercent"`
}

type PageStat struct {
	URL   string `json:"url"`
	Title string `json:"title"`
	Views int64  `json:"views"`
}

type DeviceStat struct {
	Type  string `json:"type"`
	Count int64  `json:"count"`
}

type CountryStat struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

type TimeBucket struct {
	BucketLabel string `json:"bucketLabel"`
	Count       int64  `json:"count"`
}
