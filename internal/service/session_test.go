package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/JonnyWalker81/cadence/backend/internal/models"
)

var sessionNow = time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC)

func newTestSessionService(repo *mockEventRepository) (*sessionService, *mockInvalidator) {
	inv := &mockInvalidator{}
	svc := NewSessionService(repo, inv).(*sessionService)
	svc.now = fixedClock(sessionNow)
	return svc, inv
}

func TestCreateSession_GeneratesID(t *testing.T) {
	repo := newMockEventRepository()
	svc, inv := newTestSessionService(repo)

	start := sessionNow.Add(-time.Hour)
	created, err := svc.CreateSession(context.Background(), "user-1", &models.CreateEventRequest{
		Timestamp: start,
		EndDate:   timePtr(start.Add(30 * time.Minute)),
	})
	if err != nil {
		t.Fatalf("CreateSession() failed: %v", err)
	}

	if created.ID == "" {
		t.Fatal("expected a generated session id")
	}
	if created.UserID != "user-1" {
		t.Errorf("UserID = %q, want user-1", created.UserID)
	}
	if !created.Completed() {
		t.Error("expected session to be completed")
	}
	if inv.count() != 1 {
		t.Errorf("expected 1 invalidation, got %d", inv.count())
	}
}

func TestCreateSession_ClientID(t *testing.T) {
	repo := newMockEventRepository()
	svc, _ := newTestSessionService(repo)

	id := newUUIDv7AtTime(sessionNow.Add(-time.Minute)).String()
	created, err := svc.CreateSession(context.Background(), "user-1", &models.CreateEventRequest{
		ID:        id,
		Timestamp: sessionNow.Add(-time.Minute),
	})
	if err != nil {
		t.Fatalf("CreateSession() failed: %v", err)
	}
	if created.ID != id {
		t.Errorf("ID = %q, want %q", created.ID, id)
	}
	if created.Completed() {
		t.Error("session without end_date should be pending")
	}
}

func TestCreateSession_Validation(t *testing.T) {
	start := sessionNow.Add(-time.Hour)

	tests := []struct {
		name    string
		req     models.CreateEventRequest
		wantErr error
	}{
		{
			name:    "v4 id",
			req:     models.CreateEventRequest{ID: "6ba7b810-9dad-41d1-80b4-00c04fd430c8", Timestamp: start},
			wantErr: ErrNotUUIDv7,
		},
		{
			name:    "malformed id",
			req:     models.CreateEventRequest{ID: "session-1", Timestamp: start},
			wantErr: ErrInvalidUUID,
		},
		{
			name:    "future start",
			req:     models.CreateEventRequest{Timestamp: sessionNow.Add(10 * time.Minute)},
			wantErr: ErrFutureTimestamp,
		},
		{
			name:    "end before start",
			req:     models.CreateEventRequest{Timestamp: start, EndDate: timePtr(start.Add(-time.Second))},
			wantErr: ErrEndBeforeStart,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMockEventRepository()
			svc, inv := newTestSessionService(repo)

			_, err := svc.CreateSession(context.Background(), "user-1", &tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("CreateSession() error = %v, want %v", err, tt.wantErr)
			}
			if repo.createCalls != 0 {
				t.Errorf("repository should not be called on invalid input")
			}
			if inv.count() != 0 {
				t.Errorf("model should not be invalidated on invalid input")
			}
		})
	}
}

func TestGetSessions(t *testing.T) {
	repo := newMockEventRepository(
		models.Event{ID: "a", UserID: "user-1", Timestamp: sessionNow.AddDate(0, 0, -2)},
		models.Event{ID: "b", UserID: "user-1", Timestamp: sessionNow.AddDate(0, 0, -40)},
		models.Event{ID: "c", UserID: "user-2", Timestamp: sessionNow.AddDate(0, 0, -1)},
	)
	svc, _ := newTestSessionService(repo)

	events, err := svc.GetSessions(context.Background(), "user-1", sessionNow.AddDate(0, 0, -30), sessionNow)
	if err != nil {
		t.Fatalf("GetSessions() failed: %v", err)
	}
	if len(events) != 1 || events[0].ID != "a" {
		t.Errorf("GetSessions() = %+v, want only session a", events)
	}

	empty, err := svc.GetSessions(context.Background(), "user-3", sessionNow.AddDate(0, 0, -30), sessionNow)
	if err != nil {
		t.Fatalf("GetSessions() failed: %v", err)
	}
	if empty == nil {
		t.Error("GetSessions() should return an empty slice, not nil")
	}

	if _, err := svc.GetSessions(context.Background(), "user-1", sessionNow, sessionNow); !errors.Is(err, ErrInvalidDateRange) {
		t.Errorf("GetSessions() with empty range error = %v, want ErrInvalidDateRange", err)
	}
}

func TestUpdateSession_Complete(t *testing.T) {
	start := sessionNow.Add(-time.Hour)
	repo := newMockEventRepository(models.Event{ID: "s1", UserID: "user-1", Timestamp: start})
	svc, inv := newTestSessionService(repo)

	end := start.Add(45 * time.Minute)
	updated, err := svc.UpdateSession(context.Background(), "user-1", "s1", &models.UpdateEventRequest{
		EndDate: models.NullableOf(end),
	})
	if err != nil {
		t.Fatalf("UpdateSession() failed: %v", err)
	}

	if updated.EndDate == nil || !updated.EndDate.Equal(end) {
		t.Errorf("EndDate = %v, want %v", updated.EndDate, end)
	}
	if updated.Duration() != 45*time.Minute {
		t.Errorf("Duration() = %v, want 45m", updated.Duration())
	}
	if _, touched := repo.lastFields["notes"]; touched {
		t.Error("notes should not be sent when absent from the request")
	}
	if inv.count() != 1 {
		t.Errorf("expected 1 invalidation, got %d", inv.count())
	}
}

func TestUpdateSession_ReopenAndClearNotes(t *testing.T) {
	start := sessionNow.Add(-time.Hour)
	repo := newMockEventRepository(models.Event{
		ID:        "s1",
		UserID:    "user-1",
		Timestamp: start,
		EndDate:   timePtr(start.Add(time.Minute)),
		Notes:     strPtr("morning"),
	})
	svc, _ := newTestSessionService(repo)

	updated, err := svc.UpdateSession(context.Background(), "user-1", "s1", &models.UpdateEventRequest{
		EndDate: models.Nullable[time.Time]{Set: true},
		Notes:   models.Nullable[string]{Set: true},
	})
	if err != nil {
		t.Fatalf("UpdateSession() failed: %v", err)
	}
	if updated.Completed() {
		t.Error("explicit null end_date should reopen the session")
	}
	if updated.Notes != nil {
		t.Errorf("Notes = %v, want nil", *updated.Notes)
	}
}

func TestUpdateSession_Errors(t *testing.T) {
	start := sessionNow.Add(-time.Hour)

	tests := []struct {
		name    string
		userID  string
		id      string
		req     models.UpdateEventRequest
		wantErr error
	}{
		{
			name:    "missing",
			userID:  "user-1",
			id:      "nope",
			req:     models.UpdateEventRequest{EndDate: models.NullableOf(start)},
			wantErr: ErrSessionNotFound,
		},
		{
			name:    "other user",
			userID:  "user-2",
			id:      "s1",
			req:     models.UpdateEventRequest{EndDate: models.NullableOf(start)},
			wantErr: ErrSessionNotFound,
		},
		{
			name:    "end before start",
			userID:  "user-1",
			id:      "s1",
			req:     models.UpdateEventRequest{EndDate: models.NullableOf(start.Add(-time.Minute))},
			wantErr: ErrEndBeforeStart,
		},
		{
			name:    "future start",
			userID:  "user-1",
			id:      "s1",
			req:     models.UpdateEventRequest{Timestamp: timePtr(sessionNow.Add(time.Hour))},
			wantErr: ErrFutureTimestamp,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMockEventRepository(models.Event{ID: "s1", UserID: "user-1", Timestamp: start})
			svc, inv := newTestSessionService(repo)

			_, err := svc.UpdateSession(context.Background(), tt.userID, tt.id, &tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("UpdateSession() error = %v, want %v", err, tt.wantErr)
			}
			if repo.updateCalls != 0 {
				t.Error("repository update should not be called")
			}
			if inv.count() != 0 {
				t.Error("model should not be invalidated")
			}
		})
	}
}

func TestUpdateSession_NoChanges(t *testing.T) {
	repo := newMockEventRepository(models.Event{ID: "s1", UserID: "user-1", Timestamp: sessionNow})
	svc, inv := newTestSessionService(repo)

	got, err := svc.UpdateSession(context.Background(), "user-1", "s1", &models.UpdateEventRequest{})
	if err != nil {
		t.Fatalf("UpdateSession() failed: %v", err)
	}
	if got.ID != "s1" {
		t.Errorf("ID = %q, want s1", got.ID)
	}
	if repo.updateCalls != 0 || inv.count() != 0 {
		t.Error("empty update should be a no-op")
	}
}
