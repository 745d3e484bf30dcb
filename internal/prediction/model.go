package prediction

import (
	"time"

	"github.com/JonnyWalker81/cadence/backend/internal/models"
)

// Model is an immutable snapshot of a user's session pattern. It is built
// from the full history every time and must not be modified by callers;
// the same *Model may be shared by a ModelCache.
type Model struct {
	Histogram      Histogram
	DailyFrequency DailyFrequency
	TotalEvents    int
	BuiltAt        time.Time
}

// Engine builds models and derives predictions and insights from them
type Engine struct {
	cfg Config
}

// NewEngine creates a new engine. A nil Location falls back to time.Local.
func NewEngine(cfg Config) *Engine {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return &Engine{cfg: cfg}
}

// Config returns the engine's tuning
func (e *Engine) Config() Config {
	return e.cfg
}

// BuildModel builds a model from events, decaying each event's weight
// relative to now.
func (e *Engine) BuildModel(events []models.Event, now time.Time) *Model {
	total := 0
	for _, event := range events {
		if event.Completed() {
			total++
		}
	}

	return &Model{
		Histogram:      e.BuildHistogram(events, now),
		DailyFrequency: e.DailyFrequency(events),
		TotalEvents:    total,
		BuiltAt:        now,
	}
}

var defaultEngine = NewEngine(DefaultConfig())

// BuildModel builds a model with the default tuning as of the current time
func BuildModel(events []models.Event) *Model {
	return defaultEngine.BuildModel(events, time.Now())
}

// PredictNextEvent forecasts the next session with the default tuning.
// It returns nil when there is not enough signal.
func PredictNextEvent(model *Model, now time.Time) *models.Prediction {
	return defaultEngine.Predict(model, now)
}

// GetInsights derives insights with the default tuning
func GetInsights(model *Model) []models.Insight {
	return defaultEngine.Insights(model)
}
