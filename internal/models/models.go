package models

import "time"

// Event represents a tracked session. Only completed sessions (EndDate set)
// feed the prediction model.
type Event struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	Timestamp time.Time  `json:"timestamp"`
	EndDate   *time.Time `json:"end_date,omitempty"`
	Notes     *string    `json:"notes,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Completed reports whether the session has finished
func (e Event) Completed() bool {
	return e.EndDate != nil
}

// Duration returns the session length, or zero while it is still running
func (e Event) Duration() time.Duration {
	if e.EndDate == nil {
		return 0
	}
	return e.EndDate.Sub(e.Timestamp)
}

// RawCreateEventRequest is the loosely typed body of POST /sessions, parsed
// by hand so every field error can be reported at once
type RawCreateEventRequest struct {
	ID        string  `json:"id"`
	Timestamp string  `json:"timestamp"`
	EndDate   *string `json:"end_date"`
	Notes     *string `json:"notes"`
}

// CreateEventRequest represents the validated request to record a session
type CreateEventRequest struct {
	ID        string
	Timestamp time.Time
	EndDate   *time.Time
	Notes     *string
}

// UpdateEventRequest represents a partial update. Explicit nulls clear a
// field: end_date null reopens a session.
type UpdateEventRequest struct {
	Timestamp *time.Time          `json:"timestamp"`
	EndDate   Nullable[time.Time] `json:"end_date"`
	Notes     Nullable[string]    `json:"notes"`
}

// HasChanges reports whether the request touches any field
func (r *UpdateEventRequest) HasChanges() bool {
	return r.Timestamp != nil || r.EndDate.Set || r.Notes.Set
}

// EventListResponse wraps a page of sessions
type EventListResponse struct {
	Events    []Event   `json:"events"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Total     int       `json:"total"`
}
