package service

import (
	"context"
	"time"

	"github.com/JonnyWalker81/cadence/backend/internal/models"
)

// SessionService defines the interface for recording session history
type SessionService interface {
	CreateSession(ctx context.Context, userID string, req *models.CreateEventRequest) (*models.Event, error)
	GetSessions(ctx context.Context, userID string, startDate, endDate time.Time) ([]models.Event, error)
	UpdateSession(ctx context.Context, userID, sessionID string, req *models.UpdateEventRequest) (*models.Event, error)
}

// PredictionService defines the interface for session-time forecasting
type PredictionService interface {
	// PredictNext searches forward from now. The model is the cached one
	// unless now lies further than the cache TTL from its build time, in
	// which case a model decayed relative to now is built instead.
	PredictNext(ctx context.Context, userID string, now time.Time) (*models.PredictionResponse, error)
	GetInsights(ctx context.Context, userID string) (*models.InsightsResponse, error)
	GetModelSummary(ctx context.Context, userID string) (*models.ModelSummary, error)
	ModelInvalidator
}

// ModelInvalidator drops any memoized model for a user after their
// history changes
type ModelInvalidator interface {
	InvalidateModel(ctx context.Context, userID string)
}

// PredictionObserver receives instrumentation events from the prediction
// service. *metrics.Recorder satisfies it.
type PredictionObserver interface {
	ModelLookup(cached bool)
	ModelBuilt(latency time.Duration, historySize int)
	PredictionServed(outcome string)
	InsightsServed(count int)
}
