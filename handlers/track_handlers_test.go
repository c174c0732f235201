package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"veloshop/api/models"
)

type stubRecorder struct {
	lastPageView models.TrackPageViewRequest
	lastSession  string
	lastDuration int64
	err          error
}

func (s *stubRecorder) RecordPageView(_ context.Context, req models.TrackPageViewRequest) (*models.VisitEvent, error) {
	s.lastPageView = req
	if s.err != nil {
		return nil, s.err
	}
	return &models.VisitEvent{SessionID: req.SessionID, PageURL: req.PageURL, PagesViewed: 1}, nil
}

func (s *stubRecorder) RecordVisitDuration(_ context.Context, sessionID string, durationSeconds int64) error {
	s.lastSession = sessionID
	s.lastDuration = durationSeconds
	return s.err
}

func newTrackRouter(recorder *stubRecorder) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewTrackHandlers(recorder, nil, zap.NewNop())

	r := gin.New()
	r.POST("/api/track", h.TrackPageView)
	r.POST("/api/track/duration", h.TrackVisitDuration)
	return r
}

func TestTrackPageView(t *testing.T) {
	recorder := &stubRecorder{}
	router := newTrackRouter(recorder)

	body := `{"sessionId":"sess-9","pageUrl":"/shop","pageTitle":"Shop","deviceType":"mobile"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/track", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "sess-9", recorder.lastPageView.SessionID)
	assert.Equal(t, "/shop", recorder.lastPageView.PageURL)
}

func TestTrackPageViewGeneratesMissingSessionID(t *testing.T) {
	recorder := &stubRecorder{}
	router := newTrackRouter(recorder)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/track", strings.NewReader(`{"pageUrl":"/"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, recorder.lastPageView.SessionID)

	var body struct {
		Success bool `json:"success"`
		Data    struct {
			SessionID string `json:"sessionId"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, recorder.lastPageView.SessionID, body.Data.SessionID)
}

func TestTrackPageViewRequiresPageURL(t *testing.T) {
	router := newTrackRouter(&stubRecorder{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/track", strings.NewReader(`{"sessionId":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTrackVisitDuration(t *testing.T) {
	recorder := &stubRecorder{}
	router := newTrackRouter(recorder)

	body := `{"sessionId":"sess-9","durationSeconds":45}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/track/duration", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "sess-9", recorder.lastSession)
	assert.Equal(t, int64(45), recorder.lastDuration)
}
