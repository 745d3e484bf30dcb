package handlers

import (
	"errors"

	"github.com/JonnyWalker81/cadence/backend/internal/apierror"
	"github.com/JonnyWalker81/cadence/backend/internal/logger"
	"github.com/JonnyWalker81/cadence/backend/internal/service"
	"github.com/JonnyWalker81/cadence/backend/pkg/supabase"
	"github.com/gin-gonic/gin"
)

// currentUserID returns the authenticated user, writing a 401 when absent
func currentUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		apierror.WriteProblem(c, apierror.NewUnauthorizedError(apierror.GetRequestID(c)))
		return "", false
	}
	return userID.(string), true
}

// writeServiceError maps service errors to Problem Details. field names the
// request field blamed for validation failures.
func writeServiceError(c *gin.Context, err error, field, value string) {
	requestID := apierror.GetRequestID(c)

	switch {
	case errors.Is(err, service.ErrInvalidUUID), errors.Is(err, service.ErrNotUUIDv7):
		apierror.WriteProblem(c, apierror.NewInvalidUUIDError(requestID, field, value))
	case errors.Is(err, service.ErrFutureTimestamp):
		apierror.WriteProblem(c, apierror.NewFutureTimestampError(requestID, field))
	case errors.Is(err, service.ErrEndBeforeStart):
		apierror.WriteProblem(c, apierror.NewEndBeforeStartError(requestID))
	case errors.Is(err, service.ErrInvalidDateRange):
		apierror.WriteProblem(c, apierror.NewInvalidRangeError(requestID))
	case errors.Is(err, service.ErrSessionNotFound):
		apierror.WriteProblem(c, apierror.NewNotFoundError(requestID, "Session", value))
	default:
		var upstream *supabase.Error
		if errors.As(err, &upstream) {
			logger.Ctx(c.Request.Context()).Error("storage request failed",
				logger.Int("upstream_status", upstream.StatusCode),
				logger.Err(err),
			)
			apierror.WriteProblem(c, apierror.NewUpstreamError(requestID))
			return
		}

		logger.Ctx(c.Request.Context()).Error("request failed", logger.Err(err))
		apierror.WriteProblem(c, apierror.NewInternalError(requestID))
	}
}
