package algorithm

import (
	"math"
	"time"
)

// AnkiConfig holds the tunable constants of the Anki-style schedule.
// Zero-valued fields are replaced with defaults by NewAnki.
type AnkiConfig struct {
	// LearningSteps are the sub-day intervals an item walks through
	// before graduating to day-based scheduling.
	LearningSteps []time.Duration

	// GraduatingIntervalDays is the first day-based interval after the
	// final learning step.
	GraduatingIntervalDays int

	// EasyBonus multiplies the Easy interval on top of the SM-2 formula.
	EasyBonus float64

	// LapsePenalty is subtracted from the ease factor on Again.
	LapsePenalty float64

	// LeechThreshold is how many Again reviews since the last Good or
	// Easy an item tolerates before being flagged as a leech.
	LeechThreshold int

	// MaxIntervalDays caps computed intervals.
	MaxIntervalDays int
}

// DefaultAnkiConfig returns the stock configuration: two learning steps
// (1 and 10 minutes), graduation to one day, 1.3 easy bonus, 0.2 lapse
// penalty, leech threshold 8.
func DefaultAnkiConfig() AnkiConfig {
	return AnkiConfig{
		LearningSteps:          []time.Duration{time.Minute, 10 * time.Minute},
		GraduatingIntervalDays: 1,
		EasyBonus:              1.3,
		LapsePenalty:           0.2,
		LeechThreshold:         8,
		MaxIntervalDays:        MaxIntervalDays,
	}
}

// Anki implements an Anki-style schedule: a learning phase of fixed
// sub-day steps, SM-2-like day intervals after graduation, an easy
// bonus, and leech detection.
//
// The learning position is tracked through Repetitions: values below
// len(LearningSteps) index the next step; an item graduates once it has
// passed every step. Easy graduates immediately.
type Anki struct {
	cfg AnkiConfig
}

// NewAnki returns an Anki strategy, filling unset config fields with the
// defaults from DefaultAnkiConfig.
func NewAnki(cfg AnkiConfig) *Anki {
	def := DefaultAnkiConfig()
	if len(cfg.LearningSteps) == 0 {
		cfg.LearningSteps = def.LearningSteps
	}
	if cfg.GraduatingIntervalDays <= 0 {
		cfg.GraduatingIntervalDays = def.GraduatingIntervalDays
	}
	if cfg.EasyBonus <= 0 {
		cfg.EasyBonus = def.EasyBonus
	}
	if cfg.LapsePenalty <= 0 {
		cfg.LapsePenalty = def.LapsePenalty
	}
	if cfg.LeechThreshold <= 0 {
		cfg.LeechThreshold = def.LeechThreshold
	}
	if cfg.MaxIntervalDays <= 0 {
		cfg.MaxIntervalDays = def.MaxIntervalDays
	}
	return &Anki{cfg: cfg}
}

// Config returns the effective configuration.
func (a *Anki) Config() AnkiConfig { return a.cfg }

// learning reports whether s is still in the learning phase.
func (a *Anki) learning(s MemoryStrength) bool {
	return s.Repetitions < len(a.cfg.LearningSteps)
}

// Apply implements Strategy.
func (a *Anki) Apply(current MemoryStrength, difficulty Difficulty, now time.Time) (Result, error) {
	if err := checkApply(current, difficulty); err != nil {
		return Result{}, err
	}

	next := current
	var due time.Time

	switch difficulty {
	case Again:
		// Back to the first learning step.
		next.Repetitions = 0
		next.Lapses = current.Lapses + 1
		next.IntervalDays = 1
		next.EaseFactor = clampEase(current.EaseFactor - a.cfg.LapsePenalty)
		due = now.Add(a.cfg.LearningSteps[0])

	case Hard:
		if a.learning(current) {
			// Repeat the current step without advancing.
			next.IntervalDays = 1
			due = now.Add(a.cfg.LearningSteps[current.Repetitions])
		} else {
			next.IntervalDays = clampInterval(int(math.Floor(float64(current.IntervalDays) * 0.6)))
			due = now.AddDate(0, 0, next.IntervalDays)
		}
		next.EaseFactor = clampEase(current.EaseFactor - 0.15)

	case Good:
		next.Repetitions = current.Repetitions + 1
		next.Lapses = 0
		if current.Repetitions+1 < len(a.cfg.LearningSteps) {
			// Advance to the next learning step.
			next.IntervalDays = 1
			due = now.Add(a.cfg.LearningSteps[current.Repetitions+1])
		} else if a.learning(current) {
			// Passed the final step: graduate.
			next.IntervalDays = a.cfg.GraduatingIntervalDays
			due = now.AddDate(0, 0, next.IntervalDays)
		} else {
			next.IntervalDays = clampInterval(int(math.Floor(float64(current.IntervalDays) * current.EaseFactor)))
			due = now.AddDate(0, 0, next.IntervalDays)
		}

	case Easy:
		// Graduates immediately, with the easy bonus on top of SM-2 Easy.
		next.Lapses = 0
		if a.learning(current) {
			next.Repetitions = len(a.cfg.LearningSteps) + 1
			next.IntervalDays = a.cfg.GraduatingIntervalDays
		} else {
			next.Repetitions = current.Repetitions + 1
			next.IntervalDays = clampInterval(int(math.Floor(
				float64(current.IntervalDays) * current.EaseFactor * 1.3 * a.cfg.EasyBonus)))
		}
		next.EaseFactor = current.EaseFactor + 0.15
		due = now.AddDate(0, 0, next.IntervalDays)
	}

	if next.IntervalDays > a.cfg.MaxIntervalDays {
		next.IntervalDays = a.cfg.MaxIntervalDays
		due = now.AddDate(0, 0, next.IntervalDays)
	}
	reviseCurve(&next, difficulty)
	next.LastReview = &now

	return Result{
		Strength: next,
		NextDue:  due,
		IsLeech:  next.Lapses > a.cfg.LeechThreshold,
	}, nil
}
