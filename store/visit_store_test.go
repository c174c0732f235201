package store

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"veloshop/api/models"
)

func newMockVisitStore(t *testing.T) (*VisitStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewVisitStore(sqlx.NewDb(db, "sqlmock"), zap.NewNop()), mock
}

func TestCountVisits(t *testing.T) {
	store, mock := newMockVisitStore(t)
	start := time.Now().Add(-24 * time.Hour)
	end := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM visit_sessions WHERE created_at >= $1 AND created_at < $2")).
		WithArgs(start, end).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))

	count, err := store.CountVisits(context.Background(), start, end)

	require.NoError(t, err)
	assert.Equal(t, int64(42), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountVisitsError(t *testing.T) {
	store, mock := newMockVisitStore(t)
	start := time.Now().Add(-24 * time.Hour)
	end := time.Now()

	mock.ExpectQuery("SELECT COUNT").
		WillReturnError(assert.AnError)

	_, err := store.CountVisits(context.Background(), start, end)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to count visits")
}

func TestDistinctSessions(t *testing.T) {
	store, mock := newMockVisitStore(t)
	start := time.Now().Add(-24 * time.Hour)
	end := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT DISTINCT session_id")).
		WithArgs(start, end).
		WillReturnRows(sqlmock.NewRows([]string{"session_id"}).AddRow("s1").AddRow("s2"))

	sessions, err := store.DistinctSessions(context.Background(), start, end)

	require.NoError(t, err)
	assert.Equal(t, []string{"s1", "s2"}, sessions)
}

func TestSumPagesViewedEmptyWindow(t *testing.T) {
	store, mock := newMockVisitStore(t)
	start := time.Now().Add(-24 * time.Hour)
	end := time.Now()

	// COALESCE keeps the empty window at zero instead of a NULL scan error.
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(SUM(COALESCE(pages_viewed, 1)), 0)")).
		WithArgs(start, end).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(0))

	sum, err := store.SumPagesViewed(context.Background(), start, end)

	require.NoError(t, err)
	assert.Equal(t, int64(0), sum)
}

func TestVisitedPagesOrdering(t *testing.T) {
	store, mock := newMockVisitStore(t)
	start := time.Now().Add(-24 * time.Hour)
	end := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at ASC, id ASC")).
		WithArgs(start, end).
		WillReturnRows(sqlmock.NewRows([]string{"page_url", "page_title"}).
			AddRow("/shop", "Shop").
			AddRow("/about", ""))

	pages, err := store.VisitedPages(context.Background(), start, end)

	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Equal(t, models.PageVisit{URL: "/shop", Title: "Shop"}, pages[0])
	assert.Equal(t, models.PageVisit{URL: "/about", Title: ""}, pages[1])
}

func TestRecordPageViewUpsert(t *testing.T) {
	store, mock := newMockVisitStore(t)
	now := time.Now()

	columns := []string{
		"id", "session_id", "page_url", "page_title", "referrer", "country", "city",
		"device_type", "browser", "os", "pages_viewed", "visit_duration_seconds",
		"is_returning", "created_at", "last_activity_at",
	}
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO visit_sessions")).
		WithArgs("sess-1", "/shop", "Shop", "", "DE", "", "mobile", "Firefox", "Linux", false).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(1, "sess-1", "/shop", "Shop", "", "DE", "", "mobile", "Firefox", "Linux", 2, nil, false, now, now))

	visit, err := store.RecordPageView(context.Background(), models.TrackPageViewRequest{
		SessionID:  "sess-1",
		PageURL:    "/shop",
		PageTitle:  "Shop",
		Country:    "DE",
		DeviceType: "mobile",
		Browser:    "Firefox",
		OS:         "Linux",
	})

	require.NoError(t, err)
	assert.Equal(t, "sess-1", visit.SessionID)
	assert.Equal(t, int64(2), visit.PagesViewed)
	assert.Nil(t, visit.VisitDurationSeconds)
}

func TestRecordVisitDurationUnknownSessionIsNoOp(t *testing.T) {
	store, mock := newMockVisitStore(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE visit_sessions")).
		WithArgs("gone", int64(45)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.RecordVisitDuration(context.Background(), "gone", 45)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecentVisitors(t *testing.T) {
	store, mock := newMockVisitStore(t)
	now := time.Now()

	columns := []string{
		"session_id", "page_url", "page_title", "country", "city", "device_type",
		"browser", "pages_viewed", "is_returning", "created_at", "last_activity_at",
	}
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY last_activity_at DESC")).
		WithArgs(20).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("s2", "/cart", "Cart", "FR", "Paris", "desktop", "Safari", 4, true, now.Add(-time.Hour), now).
			AddRow("s1", "/", "Home", "DE", "Berlin", "mobile", "Chrome", 1, false, now.Add(-2*time.Hour), now.Add(-time.Hour)))

	visitors, err := store.RecentVisitors(context.Background(), 20)

	require.NoError(t, err)
	require.Len(t, visitors, 2)
	assert.Equal(t, "s2", visitors[0].SessionID)
	assert.True(t, visitors[0].LastActivityAt.After(visitors[1].LastActivityAt))
}
