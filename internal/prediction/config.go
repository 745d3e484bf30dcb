// Package prediction builds a recency-weighted day-of-week x time-of-day
// frequency model from a user's session history and uses it to forecast the
// next session start and to describe the user's habits.
//
// Everything in this package is a pure function of its inputs. Models are
// rebuilt from raw history on demand and never mutated after construction.
package prediction

import (
	"errors"
	"fmt"
	"time"
)

// Grid dimensions
const (
	DaysPerWeek    = 7
	BucketMinutes  = 15
	BucketsPerDay  = 24 * 60 / BucketMinutes
	BucketsPerHour = 60 / BucketMinutes
	CellCount      = DaysPerWeek * BucketsPerDay
)

// Tuning defaults
const (
	DefaultDecayFactor             = 0.95
	DefaultSmoothingWeight         = 0.3
	DefaultMinEventsForPrediction  = 3
	DefaultMinEventsForInsights    = 5
	DefaultConfidenceSensitivity   = 3.0
	DefaultWeekendRatio            = 1.3
	DefaultRegularityCellThreshold = 0.5
	DefaultRegularityMaxCells      = 5
	MaxPeakHours                   = 3
)

// ErrInvalidConfig is returned by Config.Validate
var ErrInvalidConfig = errors.New("invalid prediction config")

// Config holds the engine's tuning knobs
type Config struct {
	// DecayFactor is the per-day recency multiplier, in (0, 1)
	DecayFactor float64
	// SmoothingWeight is the share of an event's weight added to each
	// neighbouring bucket on the same day
	SmoothingWeight float64
	// MinEventsForPrediction is the number of completed sessions required
	// before a forecast is attempted
	MinEventsForPrediction int
	// MinEventsForInsights is the number of completed sessions required
	// before insights are generated
	MinEventsForInsights int
	// ConfidenceSensitivity divides the peak-to-average ratio
	ConfidenceSensitivity float64
	// WeekendRatio is how much larger one side's daily mean must be to
	// produce a weekend/weekday insight
	WeekendRatio float64
	// RegularityCellThreshold is the weight a cell must exceed to count
	// as an active slot
	RegularityCellThreshold float64
	// RegularityMaxCells is the largest number of active slots still
	// considered a very regular schedule
	RegularityMaxCells int
	// Location is the clock all weekday and bucket math happens in
	Location *time.Location
}

// DefaultConfig returns the stock tuning
func DefaultConfig() Config {
	return Config{
		DecayFactor:             DefaultDecayFactor,
		SmoothingWeight:         DefaultSmoothingWeight,
		MinEventsForPrediction:  DefaultMinEventsForPrediction,
		MinEventsForInsights:    DefaultMinEventsForInsights,
		ConfidenceSensitivity:   DefaultConfidenceSensitivity,
		WeekendRatio:            DefaultWeekendRatio,
		RegularityCellThreshold: DefaultRegularityCellThreshold,
		RegularityMaxCells:      DefaultRegularityMaxCells,
		Location:                time.Local,
	}
}

// Validate checks that the tuning values are usable
func (c Config) Validate() error {
	if c.DecayFactor <= 0 || c.DecayFactor >= 1 {
		return fmt.Errorf("%w: decay factor must be in (0, 1), got %v", ErrInvalidConfig, c.DecayFactor)
	}
	if c.SmoothingWeight < 0 {
		return fmt.Errorf("%w: smoothing weight must not be negative, got %v", ErrInvalidConfig, c.SmoothingWeight)
	}
	if c.ConfidenceSensitivity <= 0 {
		return fmt.Errorf("%w: confidence sensitivity must be positive, got %v", ErrInvalidConfig, c.ConfidenceSensitivity)
	}
	if c.WeekendRatio < 1 {
		return fmt.Errorf("%w: weekend ratio must be at least 1, got %v", ErrInvalidConfig, c.WeekendRatio)
	}
	if c.MinEventsForPrediction < 0 || c.MinEventsForInsights < 0 {
		return fmt.Errorf("%w: minimum event counts must not be negative", ErrInvalidConfig)
	}
	return nil
}
