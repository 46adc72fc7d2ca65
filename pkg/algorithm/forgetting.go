package algorithm

import "math"

// forgettingDecayRate is ln(1/0.9): with unit stability, recall after one
// interval-day is estimated at 0.9, matching the default retention rate.
const forgettingDecayRate = 0.10536051565782628

// minStability is the floor stability can decay to after repeated lapses.
const minStability = 0.1

// Retrievability estimates the probability of recall after elapsedDays
// given the item's current stability, using an exponential forgetting
// curve: R = e^(-rate * t / S).
func Retrievability(elapsedDays, stability float64) float64 {
	if stability < minStability {
		stability = minStability
	}
	r := math.Exp(-forgettingDecayRate * elapsedDays / stability)
	if r > 1 {
		return 1
	}
	if r < 0 {
		return 0
	}
	return r
}

// nextStability evolves stability for a review outcome. Successful recall
// compounds stability by the ease factor (with a bonus for Easy and a
// penalty for Hard); a lapse halves it.
func nextStability(s MemoryStrength, d Difficulty) float64 {
	var next float64
	switch d {
	case Again:
		next = s.Stability * 0.5
	case Hard:
		next = s.Stability * 1.2
	case Good:
		next = s.Stability * s.EaseFactor
	case Easy:
		next = s.Stability * s.EaseFactor * 1.3
	default:
		next = s.Stability
	}
	if next < minStability {
		return minStability
	}
	return next
}

// reviseCurve updates Stability and the due-time retention estimate in
// place after the interval fields have been set for the next review.
func reviseCurve(s *MemoryStrength, d Difficulty) {
	s.Stability = nextStability(*s, d)
	s.RetentionRate = Retrievability(float64(s.IntervalDays), s.Stability)
}
