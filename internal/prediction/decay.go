package prediction

import "math"

// DecayWeight returns factor^daysAgo, the recency weight of an event that
// happened daysAgo days before the model was built. It is 1 at daysAgo == 0
// and strictly decreasing for factor in (0, 1).
func DecayWeight(daysAgo, factor float64) float64 {
	return math.Pow(factor, daysAgo)
}

// HalfLife returns the number of days after which an event's weight has
// dropped to 50%. Only used for reporting the effect of a tuning choice.
func HalfLife(factor float64) float64 {
	return math.Log(0.5) / math.Log(factor)
}
