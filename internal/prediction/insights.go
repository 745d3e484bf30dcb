package prediction

import (
	"fmt"
	"sort"
	"strings"

	"github.com/JonnyWalker81/cadence/backend/internal/models"
)

// Insights derives qualitative observations from a model. Each category
// yields at most one insight and categories without a clear pattern are
// left out. The result is never nil.
func (e *Engine) Insights(model *Model) []models.Insight {
	insights := make([]models.Insight, 0, 3)
	if model == nil || model.TotalEvents < e.cfg.MinEventsForInsights {
		return insights
	}

	if insight, ok := e.peakTimesInsight(model); ok {
		insights = append(insights, insight)
	}
	if insight, ok := e.weekendInsight(model); ok {
		insights = append(insights, insight)
	}
	if insight, ok := e.regularityInsight(model); ok {
		insights = append(insights, insight)
	}

	return insights
}

// peakTimesInsight names up to three busiest clock hours
func (e *Engine) peakTimesInsight(model *Model) (models.Insight, bool) {
	totals := model.Histogram.HourlyTotals()

	hours := make([]int, 0, len(totals))
	for hour, total := range totals {
		if total > 0 {
			hours = append(hours, hour)
		}
	}
	if len(hours) == 0 {
		return models.Insight{}, false
	}

	sort.SliceStable(hours, func(i, j int) bool {
		return totals[hours[i]] > totals[hours[j]]
	})
	if len(hours) > MaxPeakHours {
		hours = hours[:MaxPeakHours]
	}

	labels := make([]string, len(hours))
	for i, hour := range hours {
		labels[i] = FormatHour(hour)
	}

	return models.Insight{
		Category: models.InsightCategoryPeakTimes,
		Message:  fmt.Sprintf("You usually start sessions around %s", joinLabels(labels)),
		Metadata: map[string]interface{}{
			"hours":  hours,
			"labels": labels,
		},
	}, true
}

// weekendInsight compares the mean weekend and weekday frequencies
func (e *Engine) weekendInsight(model *Model) (models.Insight, bool) {
	weekday := model.DailyFrequency.WeekdayMean()
	weekend := model.DailyFrequency.WeekendMean()
	metadata := map[string]interface{}{
		"weekday_mean": weekday,
		"weekend_mean": weekend,
	}

	switch {
	case weekend > weekday*e.cfg.WeekendRatio:
		return models.Insight{
			Category: models.InsightCategoryWeekendVsWeekday,
			Message:  "You have more sessions on weekends",
			Metadata: metadata,
		}, true
	case weekday > weekend*e.cfg.WeekendRatio:
		return models.Insight{
			Category: models.InsightCategoryWeekendVsWeekday,
			Message:  "You have more sessions on weekdays",
			Metadata: metadata,
		}, true
	}
	return models.Insight{}, false
}

// regularityInsight fires when activity is concentrated in a handful of
// significant slots
func (e *Engine) regularityInsight(model *Model) (models.Insight, bool) {
	active := model.Histogram.CountAbove(e.cfg.RegularityCellThreshold)
	if active == 0 || active > e.cfg.RegularityMaxCells {
		return models.Insight{}, false
	}

	return models.Insight{
		Category: models.InsightCategoryRegularity,
		Message:  "You keep a very regular schedule",
		Metadata: map[string]interface{}{
			"active_slots": active,
		},
	}, true
}

// FormatHour formats an hour (0-23) as a readable string
func FormatHour(hour int) string {
	switch {
	case hour == 0:
		return "12 AM"
	case hour < 12:
		return fmt.Sprintf("%d AM", hour)
	case hour == 12:
		return "12 PM"
	default:
		return fmt.Sprintf("%d PM", hour-12)
	}
}

func joinLabels(labels []string) string {
	switch len(labels) {
	case 0:
		return ""
	case 1:
		return labels[0]
	case 2:
		return labels[0] + " and " + labels[1]
	default:
		return strings.Join(labels[:len(labels)-1], ", ") + " and " + labels[len(labels)-1]
	}
}
