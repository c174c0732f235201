// api/store/visit_store.go
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"veloshop/api/models"
)

// VisitStore owns the visit_sessions table: one mutable row per browsing
// session, upserted by the tracking endpoints and read by the analytics
// engine. All range reads filter created_at to [start, end).
type VisitStore struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewVisitStore(db *sqlx.DB, logger *zap.Logger) *VisitStore {
	return &VisitStore{db: db, logger: logger}
}

// ---- Ingestion (storefront beacons) ----

// RecordPageView upserts a session: the first view of a sessionId creates
// the row with pages_viewed = 1, repeat views increment the counter,
// advance last_activity_at and point the row at the latest page.
// is_returning and created_at are set once at creation and never touched.
func (s *VisitStore) RecordPageView(ctx context.Context, req models.TrackPageViewRequest) (*models.VisitEvent, error) {
	query := `
		INSERT INTO visit_sessions (
			session_id, page_url, page_title, referrer, country, city,
			device_type, browser, os, pages_viewed, is_returning,
			created_at, last_activity_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 1, $10, NOW(), NOW())
		ON CONFLICT (session_id) DO UPDATE SET
			pages_viewed     = visit_sessions.pages_viewed + 1,
			page_url         = EXCLUDED.page_url,
			page_title       = EXCLUDED.page_title,
			last_activity_at = NOW()
		RETURNING id, session_id, page_url, page_title, referrer, country, city,
			device_type, browser, os, pages_viewed, visit_duration_seconds,
			is_returning, created_at, last_activity_at;
	`

	var visit models.VisitEvent
	err := s.db.GetContext(ctx, &visit, query,
		req.SessionID, req.PageURL, req.PageTitle, req.Referrer, req.Country,
		req.City, req.DeviceType, req.Browser, req.OS, req.IsReturning,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to record page view: %w", err)
	}

	s.logger.Debug("page view recorded",
		zap.String("session_id", visit.SessionID),
		zap.String("page_url", visit.PageURL),
		zap.Int64("pages_viewed", visit.PagesViewed),
	)
	return &visit, nil
}

// RecordVisitDuration sets the final duration on an existing session.
// A sessionId that no longer exists is a no-op, not an error: the beacon
// may fire after the session row was cleaned up.
func (s *VisitStore) RecordVisitDuration(ctx context.Context, sessionID string, durationSeconds int64) error {
	query := `
		UPDATE visit_sessions
		SET visit_duration_seconds = $2
		WHERE session_id = $1;
	`

	result, err := s.db.ExecContext(ctx, query, sessionID, durationSeconds)
	if err != nil {
		return fmt.Errorf("failed to record visit duration: %w", err)
	}

	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		s.logger.Debug("duration beacon for unknown session ignored",
			zap.String("session_id", sessionID))
	}
	return nil
}

// ---- Engine reads (analytics.EventStore) ----

func (s *VisitStore) CountVisits(ctx context.Context, start, end time.Time) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM visit_sessions WHERE created_at >= $1 AND created_at < $2;`
	if err := s.db.GetContext(ctx, &count, query, start, end); err != nil {
		return 0, fmt.Errorf("failed to count visits: %w", err)
	}
	return count, nil
}

func (s *VisitStore) DistinctSessions(ctx context.Context, start, end time.Time) ([]string, error) {
	sessions := []string{}
	query := `
		SELECT DISTINCT session_id
		FROM visit_sessions
		WHERE created_at >= $1 AND created_at < $2;
	`
	if err := s.db.SelectContext(ctx, &sessions, query, start, end); err != nil {
		return nil, fmt.Errorf("failed to select distinct sessions: %w", err)
	}
	return sessions, nil
}

func (s *VisitStore) CountReturningVisits(ctx context.Context, start, end time.Time) (int64, error) {
	var count int64
	query := `
		SELECT COUNT(*)
		FROM visit_sessions
		WHERE created_at >= $1 AND created_at < $2 AND is_returning = TRUE;
	`
	if err := s.db.GetContext(ctx, &count, query, start, end); err != nil {
		return 0, fmt.Errorf("failed to count returning visits: %w", err)
	}
	return count, nil
}

func (s *VisitStore) SumPagesViewed(ctx context.Context, start, end time.Time) (int64, error) {
	var sum int64
	query := `
		SELECT COALESCE(SUM(COALESCE(pages_viewed, 1)), 0)
		FROM visit_sessions
		WHERE created_at >= $1 AND created_at < $2;
	`
	if err := s.db.GetContext(ctx, &sum, query, start, end); err != nil {
		return 0, fmt.Errorf("failed to sum pages viewed: %w", err)
	}
	return sum, nil
}

// VisitDurations returns only recorded durations: sessions that never sent
// a closing beacon are excluded from the average entirely, not counted
// as zero.
func (s *VisitStore) VisitDurations(ctx context.Context, start, end time.Time) ([]int64, error) {
	durations := []int64{}
	query := `
		SELECT visit_duration_seconds
		FROM visit_sessions
		WHERE created_at >= $1 AND created_at < $2
			AND visit_duration_seconds IS NOT NULL;
	`
	if err := s.db.SelectContext(ctx, &durations, query, start, end); err != nil {
		return nil, fmt.Errorf("failed to select visit durations: %w", err)
	}
	return durations, nil
}

// VisitedPages projects (page_url, page_title) per event in creation order
// so the engine's stable top-N ranking breaks ties by first encounter.
func (s *VisitStore) VisitedPages(ctx context.Context, start, end time.Time) ([]models.PageVisit, error) {
	pages := []models.PageVisit{}
	query := `
		SELECT page_url, COALESCE(page_title, '') AS page_title
		FROM visit_sessions
		WHERE created_at >= $1 AND created_at < $2
		ORDER BY created_at ASC, id ASC;
	`
	if err := s.db.SelectContext(ctx, &pages, query, start, end); err != nil {
		return nil, fmt.Errorf("failed to select visited pages: %w", err)
	}
	return pages, nil
}

func (s *VisitStore) DeviceTypes(ctx context.Context, start, end time.Time) ([]string, error) {
	return s.selectLabels(ctx, "device_type", start, end)
}

func (s *VisitStore) Countries(ctx context.Context, start, end time.Time) ([]string, error) {
	return s.selectLabels(ctx, "country", start, end)
}

// selectLabels fetches one classification column per event. The column
// name comes from the two callers above, never from user input.
func (s *VisitStore) selectLabels(ctx context.Context, column string, start, end time.Time) ([]string, error) {
	labels := []string{}
	query := fmt.Sprintf(`
		SELECT COALESCE(%s, '')
		FROM visit_sessions
		WHERE created_at >= $1 AND created_at < $2
		ORDER BY created_at ASC, id ASC;
	`, column)
	if err := s.db.SelectContext(ctx, &labels, query, start, end); err != nil {
		return nil, fmt.Errorf("failed to select %s values: %w", column, err)
	}
	return labels, nil
}

// ---- Dashboard reads ----

// RecentVisitors returns the most recently active sessions, newest first.
func (s *VisitStore) RecentVisitors(ctx context.Context, limit int) ([]models.RecentVisitor, error) {
	visitors := []models.RecentVisitor{}
	query := `
		SELECT session_id, page_url, COALESCE(page_title, '') AS page_title,
			COALESCE(country, '') AS country, COALESCE(city, '') AS city,
			COALESCE(device_type, '') AS device_type, COALESCE(browser, '') AS browser,
			pages_viewed, is_returning, created_at, last_activity_at
		FROM visit_sessions
		ORDER BY last_activity_at DESC
		LIMIT $1;
	`
	if err := s.db.SelectContext(ctx, &visitors, query, limit); err != nil {
		return nil, fmt.Errorf("failed to select recent visitors: %w", err)
	}
	return visitors, nil
}
