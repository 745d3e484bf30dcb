package apierror

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ContentTypeProblemJSON is the MIME type for RFC 9457 Problem Details.
const ContentTypeProblemJSON = "application/problem+json"

// UpstreamRetryAfter is the retry hint, in seconds, sent when the session
// store is unavailable
const UpstreamRetryAfter = 5

// WriteProblem writes a ProblemDetails response and aborts the handler
// chain. The Retry-After header mirrors RetryAfter when it is set.
func WriteProblem(c *gin.Context, problem *ProblemDetails) {
	if problem.Instance == "" && c.Request != nil {
		problem.Instance = c.Request.URL.Path
	}

	c.Header("Content-Type", ContentTypeProblemJSON)
	if problem.RetryAfter != nil {
		c.Header("Retry-After", strconv.Itoa(*problem.RetryAfter))
	}

	c.AbortWithStatusJSON(problem.Status, problem)
}

// GetRequestID extracts the request ID from the gin context, falling back
// to the X-Request-ID header. Returns empty string if not found.
func GetRequestID(c *gin.Context) string {
	if requestID, exists := c.Get("request_id"); exists {
		if id, ok := requestID.(string); ok {
			return id
		}
	}
	if c.Request == nil {
		return ""
	}
	return c.GetHeader("X-Request-ID")
}

// NewValidationError creates a 400 response listing every field that failed
func NewValidationError(requestID string, errors []FieldError) *ProblemDetails {
	return &ProblemDetails{
		Type:        TypeValidation,
		Title:       TitleValidation,
		Status:      http.StatusBadRequest,
		Detail:      "One or more fields failed validation",
		RequestID:   requestID,
		UserMessage: "Please check your input and try again",
		Errors:      errors,
	}
}

// NewNotFoundError creates a 404 Not Found response.
func NewNotFoundError(requestID, resource, id string) *ProblemDetails {
	return &ProblemDetails{
		Type:        TypeNotFound,
		Title:       TitleNotFound,
		Status:      http.StatusNotFound,
		Detail:      fmt.Sprintf("%s with ID '%s' was not found", resource, id),
		RequestID:   requestID,
		UserMessage: fmt.Sprintf("The requested %s could not be found", resource),
	}
}

// NewRateLimitError creates a 429 Too Many Requests response.
// retryAfter specifies seconds until the client should retry.
func NewRateLimitError(requestID string, retryAfter int) *ProblemDetails {
	return &ProblemDetails{
		Type:        TypeRateLimit,
		Title:       TitleRateLimit,
		Status:      http.StatusTooManyRequests,
		Detail:      fmt.Sprintf("Rate limit exceeded. Please retry after %d seconds", retryAfter),
		RequestID:   requestID,
		UserMessage: "Too many requests. Please wait before trying again.",
		RetryAfter:  &retryAfter,
	}
}

// NewInternalError creates a 500 response. It never carries the underlying
// error; log that server-side.
func NewInternalError(requestID string) *ProblemDetails {
	return &ProblemDetails{
		Type:        TypeInternal,
		Title:       TitleInternal,
		Status:      http.StatusInternalServerError,
		Detail:      "An unexpected error occurred",
		RequestID:   requestID,
		UserMessage: "Something went wrong. Please try again later.",
	}
}

// NewUpstreamError creates a 502 response for session store failures
func NewUpstreamError(requestID string) *ProblemDetails {
	retryAfter := UpstreamRetryAfter
	return &ProblemDetails{
		Type:        TypeUpstream,
		Title:       TitleUpstream,
		Status:      http.StatusBadGateway,
		Detail:      "The session store could not complete the request",
		RequestID:   requestID,
		UserMessage: "Your sessions are temporarily unavailable. Please try again shortly.",
		RetryAfter:  &retryAfter,
	}
}

// NewBadRequestError creates a 400 Bad Request response for malformed requests.
func NewBadRequestError(requestID, detail, userMessage string) *ProblemDetails {
	return &ProblemDetails{
		Type:        TypeBadRequest,
		Title:       TitleBadRequest,
		Status:      http.StatusBadRequest,
		Detail:      detail,
		RequestID:   requestID,
		UserMessage: userMessage,
	}
}

// NewUnauthorizedError creates a 401 Unauthorized response.
func NewUnauthorizedError(requestID string) *ProblemDetails {
	return &ProblemDetails{
		Type:        TypeUnauthorized,
		Title:       TitleUnauthorized,
		Status:      http.StatusUnauthorized,
		Detail:      "Authentication is required to access this resource",
		RequestID:   requestID,
		UserMessage: "Please sign in to continue",
		Action:      "authenticate",
	}
}

// NewInvalidUUIDError creates a 400 response for a session ID that is not a
// UUIDv7
func NewInvalidUUIDError(requestID, field, value string) *ProblemDetails {
	return &ProblemDetails{
		Type:        TypeInvalidUUID,
		Title:       TitleInvalidUUID,
		Status:      http.StatusBadRequest,
		Detail:      fmt.Sprintf("Field '%s' must be a UUIDv7, got '%s'", field, value),
		RequestID:   requestID,
		UserMessage: "Invalid session identifier",
		Errors: []FieldError{
			{Field: field, Message: "must be a valid UUIDv7", Code: CodeInvalidUUID},
		},
	}
}

// NewFutureTimestampError creates a 400 response for timestamps more than a
// minute ahead of the server clock
func NewFutureTimestampError(requestID, field string) *ProblemDetails {
	return &ProblemDetails{
		Type:        TypeFutureTimestamp,
		Title:       TitleFutureTimestamp,
		Status:      http.StatusBadRequest,
		Detail:      fmt.Sprintf("Field '%s' contains a timestamp more than 1 minute in the future", field),
		RequestID:   requestID,
		UserMessage: "The timestamp is too far in the future",
		Errors: []FieldError{
			{Field: field, Message: "timestamp cannot be more than 1 minute in the future", Code: CodeFutureTimestamp},
		},
	}
}

// RequiredField reports a missing field
func RequiredField(field string) FieldError {
	return FieldError{Field: field, Message: "is required", Code: CodeRequired}
}

// InvalidTimestampField reports a field that is not an RFC3339 timestamp
func InvalidTimestampField(field string) FieldError {
	return FieldError{Field: field, Message: "must be a valid RFC3339 timestamp", Code: CodeInvalidFormat}
}

// NewEndBeforeStartError creates a 400 response for a session that ends
// before it starts
func NewEndBeforeStartError(requestID string) *ProblemDetails {
	return NewValidationError(requestID, []FieldError{
		{Field: "end_date", Message: "must not be before timestamp", Code: CodeEndBeforeStart},
	})
}

// NewInvalidRangeError creates a 400 response for a history query whose
// start_date is after its end_date
func NewInvalidRangeError(requestID string) *ProblemDetails {
	return NewValidationError(requestID, []FieldError{
		{Field: "start_date", Message: "must be before end_date", Code: CodeInvalidRange},
	})
}
