package apierror

// Error type URIs following the urn:cadence:error:* pattern.
// These are used as the "type" field in RFC 9457 Problem Details.
const (
	// TypeValidation indicates request validation failed (400)
	TypeValidation = "urn:cadence:error:validation"

	// TypeNotFound indicates the requested resource was not found (404)
	TypeNotFound = "urn:cadence:error:not_found"

	// TypeRateLimit indicates too many requests (429)
	TypeRateLimit = "urn:cadence:error:rate_limit"

	// TypeUnauthorized indicates missing or invalid authentication (401)
	TypeUnauthorized = "urn:cadence:error:unauthorized"

	// TypeInternal indicates an unexpected server error (500)
	TypeInternal = "urn:cadence:error:internal"

	// TypeUpstream indicates the session store failed (502)
	TypeUpstream = "urn:cadence:error:upstream"

	// TypeInvalidUUID indicates an invalid or non-v7 session ID (400)
	TypeInvalidUUID = "urn:cadence:error:invalid_uuid"

	// TypeFutureTimestamp indicates a timestamp too far in the future (400)
	TypeFutureTimestamp = "urn:cadence:error:future_timestamp"

	// TypeBadRequest indicates a malformed request body (400)
	TypeBadRequest = "urn:cadence:error:bad_request"
)

// Titles for each error type
const (
	TitleValidation      = "Validation Error"
	TitleNotFound        = "Resource Not Found"
	TitleRateLimit       = "Rate Limit Exceeded"
	TitleUnauthorized    = "Authentication Required"
	TitleInternal        = "Internal Server Error"
	TitleUpstream        = "Session Store Unavailable"
	TitleInvalidUUID     = "Invalid Session ID"
	TitleFutureTimestamp = "Future Timestamp Not Allowed"
	TitleBadRequest      = "Bad Request"
)

// Machine-readable codes carried in FieldError.Code
const (
	CodeRequired        = "required"
	CodeInvalidFormat   = "invalid_format"
	CodeInvalidUUID     = "invalid_uuid"
	CodeFutureTimestamp = "future_timestamp"
	CodeEndBeforeStart  = "end_before_start"
	CodeInvalidRange    = "invalid_range"
)
