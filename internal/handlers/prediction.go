package handlers

import (
	"net/http"
	"time"

	"github.com/JonnyWalker81/cadence/backend/internal/apierror"
	"github.com/JonnyWalker81/cadence/backend/internal/service"
	"github.com/gin-gonic/gin"
)

// PredictionHandler serves forecasts and insights built from session history
type PredictionHandler struct {
	predictionService service.PredictionService
	now               func() time.Time
}

// NewPredictionHandler creates a new prediction handler
func NewPredictionHandler(predictionService service.PredictionService) *PredictionHandler {
	return &PredictionHandler{
		predictionService: predictionService,
		now:               time.Now,
	}
}

// GetNextSession returns the forecast next session start. The prediction
// field is null when history is too thin or carries no forward signal.
// GET /api/v1/predictions/next?now=
func (h *PredictionHandler) GetNextSession(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	now := h.now()
	if v := c.Query("now"); v != "" {
		ts, err := time.Parse(time.RFC3339, v)
		if err != nil {
			apierror.WriteProblem(c, apierror.NewValidationError(apierror.GetRequestID(c),
				[]apierror.FieldError{apierror.InvalidTimestampField("now")}))
			return
		}
		now = ts
	}

	resp, err := h.predictionService.PredictNext(c.Request.Context(), userID, now)
	if err != nil {
		writeServiceError(c, err, "", "")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetInsights returns qualitative observations about the session pattern
// GET /api/v1/predictions/insights
func (h *PredictionHandler) GetInsights(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	resp, err := h.predictionService.GetInsights(c.Request.Context(), userID)
	if err != nil {
		writeServiceError(c, err, "", "")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetModel returns a summary of the model for tuning
// GET /api/v1/predictions/model
func (h *PredictionHandler) GetModel(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	summary, err := h.predictionService.GetModelSummary(c.Request.Context(), userID)
	if err != nil {
		writeServiceError(c, err, "", "")
		return
	}

	c.JSON(http.StatusOK, summary)
}
