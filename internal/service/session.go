package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JonnyWalker81/cadence/backend/internal/logger"
	"github.com/JonnyWalker81/cadence/backend/internal/models"
	"github.com/JonnyWalker81/cadence/backend/internal/repository"
)

var (
	// ErrSessionNotFound is returned for missing sessions and sessions owned
	// by another user
	ErrSessionNotFound = errors.New("session not found")
	// ErrEndBeforeStart is returned when a session would end before it began
	ErrEndBeforeStart = errors.New("session end_date is before its timestamp")
	// ErrInvalidDateRange is returned when a listing range is inverted
	ErrInvalidDateRange = errors.New("start_date must be before end_date")
)

type sessionService struct {
	eventRepo   repository.EventRepository
	invalidator ModelInvalidator
	now         func() time.Time
}

// NewSessionService creates a new session service. Every write invalidates
// the user's cached prediction model.
func NewSessionService(eventRepo repository.EventRepository, invalidator ModelInvalidator) SessionService {
	return &sessionService{
		eventRepo:   eventRepo,
		invalidator: invalidator,
		now:         time.Now,
	}
}

func (s *sessionService) CreateSession(ctx context.Context, userID string, req *models.CreateEventRequest) (*models.Event, error) {
	now := s.now()

	id := req.ID
	if id == "" {
		generated, err := NewSessionID()
		if err != nil {
			return nil, err
		}
		id = generated
	} else if err := ValidateSessionID(id, now); err != nil {
		return nil, err
	}

	if req.Timestamp.After(now.Add(MaxClockSkew)) {
		return nil, fmt.Errorf("%w: timestamp %v", ErrFutureTimestamp, req.Timestamp.Format(time.RFC3339))
	}
	if req.EndDate != nil && req.EndDate.Before(req.Timestamp) {
		return nil, ErrEndBeforeStart
	}

	event := &models.Event{
		ID:        id,
		UserID:    userID,
		Timestamp: req.Timestamp,
		EndDate:   req.EndDate,
		Notes:     req.Notes,
	}

	created, err := s.eventRepo.Create(ctx, event)
	if err != nil {
		return nil, err
	}

	s.invalidator.InvalidateModel(ctx, userID)

	logger.Ctx(ctx).Debug("session recorded",
		logger.String("session_id", created.ID),
		logger.Bool("completed", created.Completed()),
	)

	return created, nil
}

func (s *sessionService) GetSessions(ctx context.Context, userID string, startDate, endDate time.Time) ([]models.Event, error) {
	if !startDate.Before(endDate) {
		return nil, ErrInvalidDateRange
	}

	events, err := s.eventRepo.GetByUserIDAndDateRange(ctx, userID, startDate, endDate)
	if err != nil {
		return nil, err
	}
	if events == nil {
		events = []models.Event{}
	}
	return events, nil
}

func (s *sessionService) UpdateSession(ctx context.Context, userID, sessionID string, req *models.UpdateEventRequest) (*models.Event, error) {
	existing, err := s.eventRepo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	// Verify the session belongs to the user
	if existing.UserID != userID {
		return nil, ErrSessionNotFound
	}

	if !req.HasChanges() {
		return existing, nil
	}

	start := existing.Timestamp
	end := existing.EndDate
	fields := make(map[string]interface{})

	if req.Timestamp != nil {
		if req.Timestamp.After(s.now().Add(MaxClockSkew)) {
			return nil, fmt.Errorf("%w: timestamp %v", ErrFutureTimestamp, req.Timestamp.Format(time.RFC3339))
		}
		start = *req.Timestamp
		fields["timestamp"] = start
	}
	if req.EndDate.Set {
		end = req.EndDate.ToPtr()
		fields["end_date"] = end
	}
	if req.Notes.Set {
		fields["notes"] = req.Notes.ToPtr()
	}

	if end != nil && end.Before(start) {
		return nil, ErrEndBeforeStart
	}

	updated, err := s.eventRepo.Update(ctx, sessionID, fields)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	s.invalidator.InvalidateModel(ctx, userID)

	return updated, nil
}
