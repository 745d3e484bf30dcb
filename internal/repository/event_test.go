package repository

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/JonnyWalker81/cadence/backend/internal/models"
	"github.com/JonnyWalker81/cadence/backend/pkg/supabase"
)

// newTestRepository serves every PostgREST call with handler
func newTestRepository(t *testing.T, handler http.HandlerFunc) EventRepository {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewEventRepository(supabase.NewClient(server.URL, "service-key"))
}

func TestEventRepository_GetByUserIDAndDateRange(t *testing.T) {
	var gotQuery map[string]string

	repo := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rest/v1/sessions" {
			t.Errorf("path = %q, want /rest/v1/sessions", r.URL.Path)
		}
		gotQuery = map[string]string{}
		for key := range r.URL.Query() {
			gotQuery[key] = r.URL.Query().Get(key)
		}
		_, _ = io.WriteString(w, `[
			{"id": "a", "user_id": "user-1", "timestamp": "2024-03-04T07:00:00Z", "end_date": "2024-03-04T07:30:00Z"},
			{"id": "b", "user_id": "user-1", "timestamp": "2024-03-03T07:00:00Z", "end_date": null}
		]`)
	})

	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 5, 0, 0, 0, 0, time.FixedZone("EST", -5*3600))

	events, err := repo.GetByUserIDAndDateRange(context.Background(), "user-1", start, end)
	if err != nil {
		t.Fatalf("GetByUserIDAndDateRange() failed: %v", err)
	}

	if gotQuery["user_id"] != "eq.user-1" {
		t.Errorf("user_id filter = %q", gotQuery["user_id"])
	}
	if gotQuery["and"] != "(timestamp.gte.2024-03-01T00:00:00Z,timestamp.lte.2024-03-05T05:00:00Z)" {
		t.Errorf("range filter = %q", gotQuery["and"])
	}
	if gotQuery["order"] != "timestamp.desc" {
		t.Errorf("order = %q", gotQuery["order"])
	}

	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if !events[0].Completed() || events[1].Completed() {
		t.Error("completion state was not decoded from end_date")
	}
}

func TestEventRepository_Create(t *testing.T) {
	var payload map[string]interface{}

	repo := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("invalid body: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `[{"id": "s1", "user_id": "user-1", "timestamp": "2024-03-04T07:00:00Z"}]`)
	})

	created, err := repo.Create(context.Background(), &models.Event{
		ID:        "s1",
		UserID:    "user-1",
		Timestamp: time.Date(2024, 3, 4, 7, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if created.ID != "s1" {
		t.Errorf("ID = %q, want s1", created.ID)
	}

	if payload["id"] != "s1" || payload["user_id"] != "user-1" {
		t.Errorf("payload = %v", payload)
	}
	if _, sent := payload["end_date"]; sent {
		t.Error("end_date should be omitted for a pending session")
	}
	if _, sent := payload["notes"]; sent {
		t.Error("notes should be omitted when absent")
	}
}

func TestEventRepository_GetByIDNotFound(t *testing.T) {
	repo := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[]`)
	})

	if _, err := repo.GetByID(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
}

func TestEventRepository_UpdateClearsColumn(t *testing.T) {
	var rawBody string

	repo := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			t.Errorf("method = %s, want PATCH", r.Method)
		}
		if r.URL.Query().Get("id") != "eq.s1" {
			t.Errorf("id filter = %q", r.URL.Query().Get("id"))
		}
		body, _ := io.ReadAll(r.Body)
		rawBody = string(body)
		_, _ = io.WriteString(w, `[{"id": "s1", "user_id": "user-1", "timestamp": "2024-03-04T07:00:00Z"}]`)
	})

	var cleared *time.Time
	updated, err := repo.Update(context.Background(), "s1", map[string]interface{}{"end_date": cleared})
	if err != nil {
		t.Fatalf("Update() failed: %v", err)
	}
	if updated.Completed() {
		t.Error("session should be pending after clearing end_date")
	}
	if !strings.Contains(rawBody, `"end_date":null`) {
		t.Errorf("body = %s, want end_date null", rawBody)
	}
}

func TestEventRepository_UpstreamError(t *testing.T) {
	repo := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = io.WriteString(w, `{"message": "db down"}`)
	})

	_, err := repo.GetByUserIDAndDateRange(context.Background(), "user-1", time.Now().Add(-time.Hour), time.Now())

	var upstream *supabase.Error
	if !errors.As(err, &upstream) {
		t.Fatalf("error = %v, want a wrapped *supabase.Error", err)
	}
	if upstream.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("StatusCode = %d, want 503", upstream.StatusCode)
	}
}
