// api/handlers/track_handlers.go
package handlers

import (
	"context"
	"net/http"
	"time"

	"veloshop/api/models"
	"veloshop/api/store"
	"veloshop/api/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// VisitRecorder is the ingestion surface of the visit store.
type VisitRecorder interface {
	RecordPageView(ctx context.Context, req models.TrackPageViewRequest) (*models.VisitEvent, error)
	RecordVisitDuration(ctx context.Context, sessionID string, durationSeconds int64) error
}

type TrackHandlers struct {
	visits   VisitRecorder
	eventLog *store.EventLogStore // nil when the ClickHouse firehose is disabled
	logger   *zap.Logger
}

func NewTrackHandlers(visits VisitRecorder, eventLog *store.EventLogStore, logger *zap.Logger) *TrackHandlers {
	return &TrackHandlers{
		visits:   visits,
		eventLog: eventLog,
		logger:   logger,
	}
}

// TrackPageView ingests a storefront beacon: upserts the session row and
// appends a raw event to the firehose. The session upsert is the source
// of truth; a firehose failure is logged but never fails the request.
func (h *TrackHandlers) TrackPageView(c *gin.Context) {
	var req models.TrackPageViewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid request body"})
		return
	}

	if req.SessionID == "" {
		req.SessionID = utils.GenerateSessionID()
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	visit, err := h.visits.RecordPageView(ctx, req)
	if err != nil {
		h.logger.Error("failed to record page view",
			zap.String("session_id", req.SessionID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to record page view"})
		return
	}

	if h.eventLog != nil {
		event := models.PageViewEvent{
			EventID:     uuid.New().String(),
			SessionID:   req.SessionID,
			PageURL:     req.PageURL,
			PageTitle:   req.PageTitle,
			Referrer:    req.Referrer,
			Country:     req.Country,
			City:        req.City,
			DeviceType:  req.DeviceType,
			Browser:     req.Browser,
			OS:          req.OS,
			IPAddress:   c.ClientIP(),
			IsReturning: req.IsReturning,
			CreatedAt:   time.Now().UTC(),
		}
		if err := h.eventLog.InsertPageViewEvents(ctx, []models.PageViewEvent{event}); err != nil {
			h.logger.Warn("failed to append page view to event log",
				zap.String("session_id", req.SessionID),
				zap.Error(err),
			)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"sessionId":   visit.SessionID,
			"pagesViewed": visit.PagesViewed,
		},
	})
}

// TrackVisitDuration closes a session with its final duration. Unknown
// sessions are a silent no-op: the closing beacon can outlive the row.
func (h *TrackHandlers) TrackVisitDuration(c *gin.Context) {
	var req models.TrackDurationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid request body"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	if err := h.visits.RecordVisitDuration(ctx, req.SessionID, req.DurationSeconds); err != nil {
		h.logger.Error("failed to record visit duration",
			zap.String("session_id", req.SessionID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to record visit duration"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
