package models

import "time"

// InsightCategory tags an insight. It is an open set: clients map the tags
// they know to icons and labels and ignore the rest.
type InsightCategory string

const (
	InsightCategoryPeakTimes        InsightCategory = "peak_times"
	InsightCategoryWeekendVsWeekday InsightCategory = "weekend_vs_weekday"
	InsightCategoryRegularity       InsightCategory = "regularity"
)

// Insight is a qualitative observation about a user's session pattern
type Insight struct {
	Category InsightCategory        `json:"category"`
	Message  string                 `json:"message"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// Prediction is the forecast next session start
type Prediction struct {
	PredictedAt time.Time `json:"predicted_at"`
	Confidence  float64   `json:"confidence"`  // 0-1
	DayOfWeek   int       `json:"day_of_week"` // 0 = Sunday
	Bucket      int       `json:"bucket"`      // 15-minute slot of the day, 0-95
	DayOffset   int       `json:"day_offset"`  // days after today
}

// PredictionResponse is the API response for GET /predictions/next
type PredictionResponse struct {
	Prediction      *Prediction `json:"prediction"`
	DataSufficient  bool        `json:"data_sufficient"`
	TotalEvents     int         `json:"total_events"`
	MinEventsNeeded int         `json:"min_events_needed,omitempty"`
	ComputedAt      time.Time   `json:"computed_at"`
}

// InsightsResponse is the API response for GET /predictions/insights
type InsightsResponse struct {
	Insights        []Insight `json:"insights"`
	DataSufficient  bool      `json:"data_sufficient"`
	TotalEvents     int       `json:"total_events"`
	MinEventsNeeded int       `json:"min_events_needed,omitempty"`
	ComputedAt      time.Time `json:"computed_at"`
}

// ModelSummary describes a built model for tuning and debugging
type ModelSummary struct {
	TotalEvents    int        `json:"total_events"`
	BuiltAt        time.Time  `json:"built_at"`
	DecayFactor    float64    `json:"decay_factor"`
	HalfLifeDays   float64    `json:"half_life_days"`
	TotalWeight    float64    `json:"total_weight"`
	ActiveSlots    int        `json:"active_slots"`
	PeakDayOfWeek  int        `json:"peak_day_of_week"`
	PeakBucket     int        `json:"peak_bucket"`
	PeakWeight     float64    `json:"peak_weight"`
	DailyFrequency [7]float64 `json:"daily_frequency"`
	Cached         bool       `json:"cached"`
}
