package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/JonnyWalker81/cadence/backend/internal/models"
	"github.com/JonnyWalker81/cadence/backend/pkg/supabase"
)

const sessionsTable = "sessions"

type eventRepository struct {
	client *supabase.Client
}

// NewEventRepository creates a new session repository backed by Supabase
func NewEventRepository(client *supabase.Client) EventRepository {
	return &eventRepository{client: client}
}

func (r *eventRepository) Create(ctx context.Context, event *models.Event) (*models.Event, error) {
	data := map[string]interface{}{
		"user_id":   event.UserID,
		"timestamp": event.Timestamp,
	}

	// Use client-provided ID if present (offline-first UUIDv7)
	if event.ID != "" {
		data["id"] = event.ID
	}
	if event.EndDate != nil {
		data["end_date"] = *event.EndDate
	}
	if event.Notes != nil {
		data["notes"] = *event.Notes
	}

	body, err := r.client.Insert(ctx, sessionsTable, data)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return decodeOne(body)
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*models.Event, error) {
	query := map[string]interface{}{
		"id":     fmt.Sprintf("eq.%s", id),
		"select": "*",
	}

	body, err := r.client.Query(ctx, sessionsTable, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return decodeOne(body)
}

func (r *eventRepository) GetByUserIDAndDateRange(ctx context.Context, userID string, startDate, endDate time.Time) ([]models.Event, error) {
	query := map[string]interface{}{
		"user_id": fmt.Sprintf("eq.%s", userID),
		"and":     fmt.Sprintf("(timestamp.gte.%s,timestamp.lte.%s)", startDate.UTC().Format(time.RFC3339), endDate.UTC().Format(time.RFC3339)),
		"select":  "*",
		"order":   "timestamp.desc",
	}

	body, err := r.client.Query(ctx, sessionsTable, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get sessions: %w", err)
	}

	var events []models.Event
	if err := json.Unmarshal(body, &events); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return events, nil
}

func (r *eventRepository) Update(ctx context.Context, id string, fields map[string]interface{}) (*models.Event, error) {
	body, err := r.client.Update(ctx, sessionsTable, id, fields)
	if err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}

	return decodeOne(body)
}

func decodeOne(body []byte) (*models.Event, error) {
	var events []models.Event
	if err := json.Unmarshal(body, &events); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(events) == 0 {
		return nil, ErrNotFound
	}

	return &events[0], nil
}
