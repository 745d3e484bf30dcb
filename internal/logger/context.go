package logger

import "context"

type ctxKey int

const (
	requestIDKey ctxKey = iota
	userIDKey
	sessionIDKey
	loggerKey
)

// contextFieldKeys lists the request-scoped IDs copied onto every log line,
// in output order
var contextFieldKeys = []struct {
	key  ctxKey
	name string
}{
	{requestIDKey, "request_id"},
	{userIDKey, "user_id"},
	{sessionIDKey, "session_id"},
}

func withString(ctx context.Context, key ctxKey, value string) context.Context {
	if value == "" {
		return ctx
	}
	return context.WithValue(ctx, key, value)
}

func stringFrom(ctx context.Context, key ctxKey) string {
	s, _ := ctx.Value(key).(string)
	return s
}

// WithRequestID tags the context with the request's correlation ID. IDs are
// minted by the request ID middleware; an empty id leaves ctx unchanged.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return withString(ctx, requestIDKey, requestID)
}

// RequestIDFromContext returns the correlation ID, or ""
func RequestIDFromContext(ctx context.Context) string {
	return stringFrom(ctx, requestIDKey)
}

// WithUserID tags the context with the authenticated user
func WithUserID(ctx context.Context, userID string) context.Context {
	return withString(ctx, userIDKey, userID)
}

// UserIDFromContext returns the authenticated user, or ""
func UserIDFromContext(ctx context.Context) string {
	return stringFrom(ctx, userIDKey)
}

// WithSessionID tags the context with the session a request operates on
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return withString(ctx, sessionIDKey, sessionID)
}

// SessionIDFromContext returns the session being operated on, or ""
func SessionIDFromContext(ctx context.Context) string {
	return stringFrom(ctx, sessionIDKey)
}

// WithLogger stores the request's logger
func WithLogger(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext returns the stored logger, or the default one
func FromContext(ctx context.Context) Logger {
	if l, ok := ctx.Value(loggerKey).(Logger); ok {
		return l
	}
	return Default()
}

func contextFields(ctx context.Context) []Field {
	var fields []Field
	for _, k := range contextFieldKeys {
		if v := stringFrom(ctx, k.key); v != "" {
			fields = append(fields, String(k.name, v))
		}
	}
	return fields
}

// Ctx returns the request's logger tagged with its request, user and
// session IDs
func Ctx(ctx context.Context) Logger {
	return FromContext(ctx).WithContext(ctx)
}
