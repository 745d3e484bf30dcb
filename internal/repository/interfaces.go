package repository

import (
	"context"
	"errors"
	"time"

	"github.com/JonnyWalker81/cadence/backend/internal/models"
)

// ErrNotFound is returned when a record does not exist
var ErrNotFound = errors.New("record not found")

// EventRepository defines the interface for session data access
type EventRepository interface {
	Create(ctx context.Context, event *models.Event) (*models.Event, error)
	GetByID(ctx context.Context, id string) (*models.Event, error)
	GetByUserIDAndDateRange(ctx context.Context, userID string, startDate, endDate time.Time) ([]models.Event, error)
	// Update applies a column patch; a nil value clears the column
	Update(ctx context.Context, id string, fields map[string]interface{}) (*models.Event, error)
}
