// api/models/visit.go
package models

import "time"

// VisitEvent is one row of the visit_sessions table: a single browsing
// session, updated in place on repeat page views. PagesViewed is a
// monotonically-updated counter on this mutable record, not a count of
// append-only events.
type VisitEvent struct {
	ID                   int64     `db:"id" json:"id"`
	SessionID            string    `db:"session_id" json:"sessionId"`
	PageURL              string    `db:"page_url" json:"pageUrl"`
	PageTitle            string    `db:"page_title" json:"pageTitle"`
	Referrer             string    `db:"referrer" json:"referrer,omitempty"`
	Country              string    `db:"country" json:"country,omitempty"`
	City                 string    `db:"city" json:"city,omitempty"`
	DeviceType           string    `db:"device_type" json:"deviceType,omitempty"`
	Browser              string    `db:"browser" json:"browser,omitempty"`
	OS                   string    `db:"os" json:"os,omitempty"`
	PagesViewed          int64     `db:"pages_viewed" json:"pagesViewed"`
	VisitDurationSeconds *int64    `db:"visit_duration_seconds" json:"visitDurationSeconds,omitempty"`
	IsReturning          bool      `db:"is_returning" json:"isReturning"`
	CreatedAt            time.Time `db:"created_at" json:"createdAt"`
	LastActivityAt       time.Time `db:"last_activity_at" json:"lastActivityAt"`
}

// PageVisit is the (url, title) projection the top-pages grouping runs over.
type PageVisit struct {
	URL   string `db:"page_url"`
	Title string `db:"page_title"`
}

// RecentVisitor is the fixed field subset returned by /visitors/recent.
type RecentVisitor struct {
	SessionID      string    `db:"session_id" json:"sessionId"`
	PageURL        string    `db:"page_url" json:"pageUrl"`
	PageTitle      string    `db:"page_title" json:"pageTitle"`
	Country        string    `db:"country" json:"country"`
	City           string    `db:"city" json:"city"`
	DeviceType     string    `db:"device_type" json:"deviceType"`
	Browser        string    `db:"browser" json:"browser"`
	PagesViewed    int64     `db:"pages_viewed" json:"pagesViewed"`
	IsReturning    bool      `db:"is_returning" json:"isReturning"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
	LastActivityAt time.Time `db:"last_activity_at" json:"lastActivityAt"`
}

// TrackPageViewRequest is the storefront beacon payload for a page view.
type TrackPageViewRequest struct {
	SessionID   string `json:"sessionId"`
	PageURL     string `json:"pageUrl" binding:"required"`
	PageTitle   string `json:"pageTitle"`
	Referrer    string `json:"referrer"`
	Country     string `json:"country"`
	City        string `json:"city"`
	DeviceType  string `json:"deviceType"`
	Browser     string `json:"browser"`
	OS          string `json:"os"`
	IsReturning bool   `json:"isReturning"`
}

// TrackDurationRequest closes out a session with its total duration.
type TrackDurationRequest struct {
	SessionID       string `json:"sessionId" binding:"required"`
	DurationSeconds int64  `json:"durationSeconds" binding:"min=0"`
}
