package prediction

import (
	"time"

	"github.com/JonnyWalker81/cadence/backend/internal/models"
)

// Histogram is the day-of-week x 15-minute-bucket weight grid.
// Row 0 is Sunday, matching time.Weekday.
type Histogram [DaysPerWeek][BucketsPerDay]float64

// Sum returns the total weight across all cells
func (h *Histogram) Sum() float64 {
	var total float64
	for day := range h {
		for _, w := range h[day] {
			total += w
		}
	}
	return total
}

// Average returns the mean weight per cell
func (h *Histogram) Average() float64 {
	return h.Sum() / CellCount
}

// Peak returns the heaviest cell. Ties go to the earliest day, then the
// earliest bucket.
func (h *Histogram) Peak() (day, bucket int, weight float64) {
	for d := range h {
		for b, w := range h[d] {
			if w > weight {
				day, bucket, weight = d, b, w
			}
		}
	}
	return day, bucket, weight
}

// CountAbove returns the number of cells whose weight exceeds threshold
func (h *Histogram) CountAbove(threshold float64) int {
	count := 0
	for day := range h {
		for _, w := range h[day] {
			if w > threshold {
				count++
			}
		}
	}
	return count
}

// HourlyTotals collapses the grid into 24 hourly totals summed over all days
func (h *Histogram) HourlyTotals() [24]float64 {
	var hours [24]float64
	for day := range h {
		for bucket, w := range h[day] {
			hours[bucket/BucketsPerHour] += w
		}
	}
	return hours
}

// BuildHistogram accumulates the decayed, smoothed weight of every completed
// event into a fresh grid. Incomplete events are skipped.
func (e *Engine) BuildHistogram(events []models.Event, now time.Time) Histogram {
	var grid Histogram

	for _, event := range events {
		if !event.Completed() {
			continue
		}

		start := event.Timestamp.In(e.cfg.Location)
		day := int(start.Weekday())
		bucket := BucketOf(start)

		daysAgo := now.Sub(event.Timestamp).Hours() / 24
		if daysAgo < 0 {
			daysAgo = 0
		}
		weight := DecayWeight(daysAgo, e.cfg.DecayFactor)

		grid[day][bucket] += weight

		// Smooth into the neighbouring buckets of the same day only;
		// midnight does not wrap.
		if bucket > 0 {
			grid[day][bucket-1] += weight * e.cfg.SmoothingWeight
		}
		if bucket < BucketsPerDay-1 {
			grid[day][bucket+1] += weight * e.cfg.SmoothingWeight
		}
	}

	return grid
}

// BucketOf returns the 15-minute bucket of t's wall clock, in [0, 95]
func BucketOf(t time.Time) int {
	bucket := (t.Hour()*60 + t.Minute()) / BucketMinutes
	if bucket < 0 {
		return 0
	}
	if bucket >= BucketsPerDay {
		return BucketsPerDay - 1
	}
	return bucket
}

// BucketClock returns the hour and minute a bucket starts at
func BucketClock(bucket int) (hour, minute int) {
	minutes := bucket * BucketMinutes
	return minutes / 60, minutes % 60
}
