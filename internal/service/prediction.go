package service

import (
	"context"
	"fmt"
	"time"

	"github.com/JonnyWalker81/cadence/backend/internal/logger"
	"github.com/JonnyWalker81/cadence/backend/internal/metrics"
	"github.com/JonnyWalker81/cadence/backend/internal/models"
	"github.com/JonnyWalker81/cadence/backend/internal/prediction"
	"github.com/JonnyWalker81/cadence/backend/internal/repository"
)

// DefaultLookbackDays bounds how much history is fetched to build a model.
// At the default decay a year-old session weighs about 1e-8.
const DefaultLookbackDays = 365

type predictionService struct {
	eventRepo    repository.EventRepository
	engine       *prediction.Engine
	cache        *prediction.ModelCache
	lookbackDays int
	observer     PredictionObserver
	now          func() time.Time
}

type nopObserver struct{}

func (nopObserver) ModelLookup(bool) {}
func (nopObserver) ModelBuilt(time.Duration, int) {}
func (nopObserver) PredictionServed(string) {}
func (nopObserver) InsightsServed(int) {}

// NewPredictionService creates a new prediction service. The cache is owned
// by the service; pass nil to rebuild the model on every call. A nil
// observer disables instrumentation.
func NewPredictionService(eventRepo repository.EventRepository, engine *prediction.Engine, cache *prediction.ModelCache, lookbackDays int, observer PredictionObserver) PredictionService {
	if lookbackDays <= 0 {
		lookbackDays = DefaultLookbackDays
	}
	if observer == nil {
		observer = nopObserver{}
	}
	return &predictionService{
		eventRepo:    eventRepo,
		engine:       engine,
		cache:        cache,
		lookbackDays: lookbackDays,
		observer:     observer,
		now:          time.Now,
	}
}

// loadModel fetches the user's history and returns the model built from it,
// reusing a cached model while the history is unchanged.
func (s *predictionService) loadModel(ctx context.Context, userID string) (*prediction.Model, bool, error) {
	now := s.now()
	start := now.AddDate(0, 0, -s.lookbackDays)

	events, err := s.eventRepo.GetByUserIDAndDateRange(ctx, userID, start, now.Add(MaxClockSkew))
	if err != nil {
		return nil, false, fmt.Errorf("failed to load session history: %w", err)
	}

	build := func() *prediction.Model {
		started := time.Now()
		model := s.engine.BuildModel(events, now)
		s.observer.ModelBuilt(time.Since(started), len(events))
		return model
	}

	if s.cache == nil {
		return build(), false, nil
	}

	model, cached := s.cache.GetOrBuild(prediction.KeyFor(userID, events), build)
	s.observer.ModelLookup(cached)

	logger.Ctx(ctx).Debug("prediction model loaded",
		logger.Int("history_size", len(events)),
		logger.Int("total_events", model.TotalEvents),
		logger.Bool("cached", cached),
	)

	return model, cached, nil
}

// buildAt builds an uncached model whose decay is anchored at anchor
func (s *predictionService) buildAt(ctx context.Context, userID string, anchor time.Time) (*prediction.Model, error) {
	start := anchor.AddDate(0, 0, -s.lookbackDays)

	events, err := s.eventRepo.GetByUserIDAndDateRange(ctx, userID, start, anchor.Add(MaxClockSkew))
	if err != nil {
		return nil, fmt.Errorf("failed to load session history: %w", err)
	}

	started := time.Now()
	model := s.engine.BuildModel(events, anchor)
	s.observer.ModelBuilt(time.Since(started), len(events))

	logger.Ctx(ctx).Debug("prediction model rebuilt for requested time",
		logger.Int("history_size", len(events)),
		logger.Time("anchor", anchor),
	)

	return model, nil
}

// anchorTolerance is how far a requested time may sit from a model's build
// time before the model is rebuilt for it
func (s *predictionService) anchorTolerance() time.Duration {
	if s.cache == nil {
		return prediction.DefaultCacheTTL
	}
	return s.cache.TTL()
}

func (s *predictionService) PredictNext(ctx context.Context, userID string, now time.Time) (*models.PredictionResponse, error) {
	model, _, err := s.loadModel(ctx, userID)
	if err != nil {
		return nil, err
	}

	if drift := now.Sub(model.BuiltAt).Abs(); drift > s.anchorTolerance() {
		model, err = s.buildAt(ctx, userID, now)
		if err != nil {
			return nil, err
		}
	}

	minEvents := s.engine.Config().MinEventsForPrediction
	resp := &models.PredictionResponse{
		Prediction:     s.engine.Predict(model, now),
		DataSufficient: model.TotalEvents >= minEvents,
		TotalEvents:    model.TotalEvents,
		ComputedAt:     model.BuiltAt,
	}
	if !resp.DataSufficient {
		resp.MinEventsNeeded = minEvents
	}
	s.observer.PredictionServed(predictionOutcome(resp))

	return resp, nil
}

func predictionOutcome(resp *models.PredictionResponse) string {
	switch {
	case !resp.DataSufficient:
		return metrics.OutcomeInsufficient
	case resp.Prediction == nil:
		return metrics.OutcomeNoCandidate
	default:
		return metrics.OutcomePredicted
	}
}

func (s *predictionService) GetInsights(ctx context.Context, userID string) (*models.InsightsResponse, error) {
	model, _, err := s.loadModel(ctx, userID)
	if err != nil {
		return nil, err
	}

	minEvents := s.engine.Config().MinEventsForInsights
	resp := &models.InsightsResponse{
		Insights:       s.engine.Insights(model),
		DataSufficient: model.TotalEvents >= minEvents,
		TotalEvents:    model.TotalEvents,
		ComputedAt:     model.BuiltAt,
	}
	if !resp.DataSufficient {
		resp.MinEventsNeeded = minEvents
	}
	s.observer.InsightsServed(len(resp.Insights))

	return resp, nil
}

func (s *predictionService) GetModelSummary(ctx context.Context, userID string) (*models.ModelSummary, error) {
	model, cached, err := s.loadModel(ctx, userID)
	if err != nil {
		return nil, err
	}

	return Summarize(model, s.engine.Config(), cached), nil
}

func (s *predictionService) InvalidateModel(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	s.cache.Invalidate(userID)
	logger.Ctx(ctx).Debug("prediction model invalidated")
}

// Summarize describes a model for tuning output
func Summarize(model *prediction.Model, cfg prediction.Config, cached bool) *models.ModelSummary {
	day, bucket, weight := model.Histogram.Peak()
	return &models.ModelSummary{
		TotalEvents:    model.TotalEvents,
		BuiltAt:        model.BuiltAt,
		DecayFactor:    cfg.DecayFactor,
		HalfLifeDays:   prediction.HalfLife(cfg.DecayFactor),
		TotalWeight:    model.Histogram.Sum(),
		ActiveSlots:    model.Histogram.CountAbove(cfg.RegularityCellThreshold),
		PeakDayOfWeek:  day,
		PeakBucket:     bucket,
		PeakWeight:     weight,
		DailyFrequency: model.DailyFrequency,
		Cached:         cached,
	}
}
