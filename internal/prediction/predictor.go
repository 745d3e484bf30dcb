package prediction

import (
	"math"
	"time"

	"github.com/JonnyWalker81/cadence/backend/internal/models"
)

// Predict searches forward from now for the most likely next session slot.
//
// Today is scanned only after the current bucket, then each following day up
// to six days out. Once a day after today has been scanned and a peak has
// been found the search stops, so a near peak beats a larger one later in
// the week. It returns nil when the model has too few events or the window
// holds no weight.
func (e *Engine) Predict(model *Model, now time.Time) *models.Prediction {
	if model == nil || model.TotalEvents < e.cfg.MinEventsForPrediction {
		return nil
	}

	local := now.In(e.cfg.Location)
	currentDay := int(local.Weekday())
	currentBucket := BucketOf(local)

	var (
		bestScore  float64
		bestDay    int
		bestBucket int
		bestOffset int
	)

	for offset := 0; offset < DaysPerWeek; offset++ {
		day := (currentDay + offset) % DaysPerWeek

		first := 0
		if offset == 0 {
			first = currentBucket + 1
		}

		for bucket := first; bucket < BucketsPerDay; bucket++ {
			// Strictly greater: the earliest slot wins a tie
			if score := model.Histogram[day][bucket]; score > bestScore {
				bestScore = score
				bestDay = day
				bestBucket = bucket
				bestOffset = offset
			}
		}

		if offset >= 1 && bestScore > 0 {
			break
		}
	}

	if bestScore == 0 {
		return nil
	}

	hour, minute := BucketClock(bestBucket)
	predictedAt := time.Date(local.Year(), local.Month(), local.Day()+bestOffset, hour, minute, 0, 0, e.cfg.Location)

	return &models.Prediction{
		PredictedAt: predictedAt,
		Confidence:  e.confidence(model, bestScore),
		DayOfWeek:   bestDay,
		Bucket:      bestBucket,
		DayOffset:   bestOffset,
	}
}

// confidence scores how far the chosen cell stands out from the grid's
// average density, capped at 1
func (e *Engine) confidence(model *Model, score float64) float64 {
	avg := model.Histogram.Average()
	if avg <= 0 {
		return 0
	}
	return math.Min(score/(avg*e.cfg.ConfidenceSensitivity), 1.0)
}
