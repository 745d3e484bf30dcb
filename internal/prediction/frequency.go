package prediction

import (
	"math"
	"time"

	"github.com/JonnyWalker81/cadence/backend/internal/models"
)

// DailyFrequency is the mean number of completed events per observed week,
// indexed by weekday (0 = Sunday).
type DailyFrequency [DaysPerWeek]float64

// weekID approximates a calendar week as the year plus ceil(dayOfYear / 7).
// It restarts at every January 1st rather than following ISO-8601 weeks.
type weekID struct {
	year int
	week int
}

func weekOf(t time.Time) weekID {
	return weekID{
		year: t.Year(),
		week: int(math.Ceil(float64(t.YearDay()) / 7)),
	}
}

// DailyFrequency counts completed events per weekday and divides by the
// number of distinct weeks observed (at least 1).
func (e *Engine) DailyFrequency(events []models.Event) DailyFrequency {
	var counts [DaysPerWeek]int
	weeks := make(map[weekID]struct{})

	for _, event := range events {
		if !event.Completed() {
			continue
		}
		start := event.Timestamp.In(e.cfg.Location)
		counts[start.Weekday()]++
		weeks[weekOf(start)] = struct{}{}
	}

	denominator := float64(max(len(weeks), 1))

	var freq DailyFrequency
	for day, count := range counts {
		freq[day] = float64(count) / denominator
	}
	return freq
}

// WeekdayMean returns the mean frequency for Monday through Friday
func (f DailyFrequency) WeekdayMean() float64 {
	var sum float64
	for day := time.Monday; day <= time.Friday; day++ {
		sum += f[day]
	}
	return sum / 5
}

// WeekendMean returns the mean frequency for Saturday and Sunday
func (f DailyFrequency) WeekendMean() float64 {
	return (f[time.Sunday] + f[time.Saturday]) / 2
}
