// api/models/event.go
package models

import "time"

// PageViewEvent is one immutable row of the raw page-view log kept in
// ClickHouse. Unlike visit_sessions rows these are append-only: every
// beacon hit produces a new row, so the log doubles as an audit trail
// for export and replay.
type PageViewEvent struct {
	EventID     string    `json:"eventId"`
	SessionID   string    `json:"sessionId"`
	PageURL     string    `json:"pageUrl"`
	PageTitle   string    `json:"pageTitle"`
	Referrer    string    `json:"referrer"`
	Country     string    `json:"country"`
	City        string    `json:"city"`
	DeviceType  string    `json:"deviceType"`
	Browser     string    `json:"browser"`
	OS          string    `json:"os"`
	IPAddress   string    `json:"ipAddress"`
	IsReturning bool      `json:"isReturning"`
	CreatedAt   time.Time `json:"createdAt"`
}
