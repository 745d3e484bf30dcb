package handlers

import (
	"net/http"
	"time"

	"github.com/JonnyWalker81/cadence/backend/internal/apierror"
	"github.com/JonnyWalker81/cadence/backend/internal/logger"
	"github.com/JonnyWalker81/cadence/backend/internal/models"
	"github.com/JonnyWalker81/cadence/backend/internal/service"
	"github.com/gin-gonic/gin"
)

// DefaultListWindow is the range listed when no dates are given
const DefaultListWindow = 30 * 24 * time.Hour

type SessionHandler struct {
	sessionService service.SessionService
	now            func() time.Time
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessionService service.SessionService) *SessionHandler {
	return &SessionHandler{
		sessionService: sessionService,
		now:            time.Now,
	}
}

// CreateSession handles POST /api/v1/sessions
func (h *SessionHandler) CreateSession(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	// Bind to RawCreateEventRequest for manual parsing and aggregated validation
	var raw models.RawCreateEventRequest
	if err := c.ShouldBindJSON(&raw); err != nil {
		requestID := apierror.GetRequestID(c)
		apierror.WriteProblem(c, apierror.NewBadRequestError(requestID, err.Error(), "Invalid JSON format"))
		return
	}

	var fieldErrors []apierror.FieldError
	var req models.CreateEventRequest

	if raw.Timestamp == "" {
		fieldErrors = append(fieldErrors, apierror.RequiredField("timestamp"))
	} else if ts, err := time.Parse(time.RFC3339, raw.Timestamp); err != nil {
		fieldErrors = append(fieldErrors, apierror.InvalidTimestampField("timestamp"))
	} else {
		req.Timestamp = ts
	}

	if raw.EndDate != nil && *raw.EndDate != "" {
		ed, err := time.Parse(time.RFC3339, *raw.EndDate)
		if err != nil {
			fieldErrors = append(fieldErrors, apierror.InvalidTimestampField("end_date"))
		} else {
			req.EndDate = &ed
		}
	}

	req.ID = raw.ID
	req.Notes = raw.Notes

	if len(fieldErrors) > 0 {
		requestID := apierror.GetRequestID(c)
		apierror.WriteProblem(c, apierror.NewValidationError(requestID, fieldErrors))
		return
	}

	session, err := h.sessionService.CreateSession(c.Request.Context(), userID, &req)
	if err != nil {
		field := "id"
		if req.ID == "" || req.Timestamp.After(h.now().Add(service.MaxClockSkew)) {
			field = "timestamp"
		}
		writeServiceError(c, err, field, req.ID)
		return
	}

	c.JSON(http.StatusCreated, session)
}

// GetSessions handles GET /api/v1/sessions?start_date=&end_date=
func (h *SessionHandler) GetSessions(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	endDate := h.now()
	startDate := endDate.Add(-DefaultListWindow)
	var fieldErrors []apierror.FieldError

	if v := c.Query("start_date"); v != "" {
		if ts, err := time.Parse(time.RFC3339, v); err != nil {
			fieldErrors = append(fieldErrors, apierror.InvalidTimestampField("start_date"))
		} else {
			startDate = ts
		}
	}
	if v := c.Query("end_date"); v != "" {
		if ts, err := time.Parse(time.RFC3339, v); err != nil {
			fieldErrors = append(fieldErrors, apierror.InvalidTimestampField("end_date"))
		} else {
			endDate = ts
		}
	}

	if len(fieldErrors) > 0 {
		apierror.WriteProblem(c, apierror.NewValidationError(apierror.GetRequestID(c), fieldErrors))
		return
	}

	sessions, err := h.sessionService.GetSessions(c.Request.Context(), userID, startDate, endDate)
	if err != nil {
		writeServiceError(c, err, "start_date", "")
		return
	}

	c.JSON(http.StatusOK, models.EventListResponse{
		Events:    sessions,
		StartDate: startDate,
		EndDate:   endDate,
		Total:     len(sessions),
	})
}

// UpdateSession handles PATCH /api/v1/sessions/:id
func (h *SessionHandler) UpdateSession(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	sessionID := c.Param("id")
	c.Request = c.Request.WithContext(logger.WithSessionID(c.Request.Context(), sessionID))

	var req models.UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		requestID := apierror.GetRequestID(c)
		apierror.WriteProblem(c, apierror.NewBadRequestError(requestID, err.Error(), "Invalid request body"))
		return
	}

	session, err := h.sessionService.UpdateSession(c.Request.Context(), userID, sessionID, &req)
	if err != nil {
		writeServiceError(c, err, "timestamp", sessionID)
		return
	}

	c.JSON(http.StatusOK, session)
}
