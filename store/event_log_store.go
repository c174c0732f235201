// api/store/event_log_store.go
package store

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"veloshop/api/database"
	"veloshop/api/models"
)

// EventLogStore appends raw page-view events to the immutable ClickHouse
// log. The log is an audit firehose next to the mutable session table:
// the aggregation engine never reads it.
type EventLogStore struct {
	DB     *database.ClickHouseClient
	logger *zap.Logger
}

func NewEventLogStore(chClient *database.ClickHouseClient, logger *zap.Logger) *EventLogStore {
	return &EventLogStore{DB: chClient, logger: logger}
}

// InsertPageViewEvents batch-inserts raw events. Column order must match
// the page_view_events table schema.
func (s *EventLogStore) InsertPageViewEvents(ctx context.Context, events []models.PageViewEvent) error {
	if len(events) == 0 {
		return nil
	}

	batch, err := s.DB.Conn.PrepareBatch(ctx, `
		INSERT INTO page_view_events (
			event_id, session_id, page_url, page_title, referrer, country, city,
			device_type, browser, os, ip_address, is_returning, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare batch insert: %w", err)
	}

	for _, event := range events {
		err := batch.Append(
			event.EventID,
			event.SessionID,
			event.PageURL,
			event.PageTitle,
			event.Referrer,
			event.Country,
			event.City,
			event.DeviceType,
			event.Browser,
			event.OS,
			event.IPAddress,
			event.IsReturning,
			event.CreatedAt,
		)
		if err != nil {
			s.logger.Error("error appending event to batch",
				zap.String("event_id", event.EventID),
				zap.Error(err),
			)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send batch: %w", err)
	}

	s.logger.Debug("page view events inserted", zap.Int("count", len(events)))
	return nil
}
