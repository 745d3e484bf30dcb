package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/JonnyWalker81/cadence/backend/internal/models"
	"github.com/JonnyWalker81/cadence/backend/internal/repository"
)

// mockEventRepository is a mock implementation of EventRepository for testing
type mockEventRepository struct {
	mu          sync.Mutex
	events      map[string]*models.Event // id -> event
	createCalls int
	updateCalls int
	listCalls   int
	lastFields  map[string]interface{}
	listErr     error
}

func newMockEventRepository(events ...models.Event) *mockEventRepository {
	m := &mockEventRepository{events: make(map[string]*models.Event)}
	for i := range events {
		e := events[i]
		m.events[e.ID] = &e
	}
	return m
}

func (m *mockEventRepository) Create(ctx context.Context, event *models.Event) (*models.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.createCalls++
	if _, exists := m.events[event.ID]; exists {
		return nil, errors.New("duplicate key")
	}
	stored := *event
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	m.events[stored.ID] = &stored
	return &stored, nil
}

func (m *mockEventRepository) GetByID(ctx context.Context, id string) (*models.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if event, ok := m.events[id]; ok {
		copied := *event
		return &copied, nil
	}
	return nil, repository.ErrNotFound
}

func (m *mockEventRepository) GetByUserIDAndDateRange(ctx context.Context, userID string, startDate, endDate time.Time) ([]models.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.listCalls++
	if m.listErr != nil {
		return nil, m.listErr
	}

	var result []models.Event
	for _, event := range m.events {
		if event.UserID != userID {
			continue
		}
		if event.Timestamp.Before(startDate) || event.Timestamp.After(endDate) {
			continue
		}
		result = append(result, *event)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Timestamp.After(result[j].Timestamp)
	})
	return result, nil
}

func (m *mockEventRepository) Update(ctx context.Context, id string, fields map[string]interface{}) (*models.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.updateCalls++
	m.lastFields = fields

	existing, ok := m.events[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if v, ok := fields["timestamp"]; ok {
		existing.Timestamp = v.(time.Time)
	}
	if v, ok := fields["end_date"]; ok {
		existing.EndDate = v.(*time.Time)
	}
	if v, ok := fields["notes"]; ok {
		existing.Notes = v.(*string)
	}
	existing.UpdatedAt = time.Now()

	copied := *existing
	return &copied, nil
}

// mockInvalidator records model invalidations
type mockInvalidator struct {
	mu    sync.Mutex
	users []string
}

func (m *mockInvalidator) InvalidateModel(ctx context.Context, userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users = append(m.users, userID)
}

func (m *mockInvalidator) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func timePtr(t time.Time) *time.Time {
	return &t
}

func strPtr(s string) *string {
	return &s
}

// recordingObserver captures instrumentation events
type recordingObserver struct {
	mu       sync.Mutex
	hits     int
	misses   int
	builds   int
	outcomes []string
	insights []int
}

func (o *recordingObserver) ModelLookup(cached bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if cached {
		o.hits++
	} else {
		o.misses++
	}
}

func (o *recordingObserver) ModelBuilt(time.Duration, int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.builds++
}

func (o *recordingObserver) PredictionServed(outcome string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.outcomes = append(o.outcomes, outcome)
}

func (o *recordingObserver) InsightsServed(count int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.insights = append(o.insights, count)
}
