package algorithm

import "time"

// Result is the outcome of applying a strategy to one review.
type Result struct {
	// Strength is the updated memorization state.
	Strength MemoryStrength

	// NextDue is when the item should next be reviewed.
	NextDue time.Time

	// IsLeech reports that the item has been failed more times than the
	// configured threshold since its last successful recall. It is
	// surfaced to the caller; the engine never suspends leeches itself.
	IsLeech bool
}

// Strategy computes the next memorization state for a review outcome.
//
// Implementations must be deterministic, perform no I/O, and hold no
// shared mutable state, so a single Strategy value is safe to use
// concurrently across items.
type Strategy interface {
	Apply(current MemoryStrength, difficulty Difficulty, now time.Time) (Result, error)
}

// ForAlgorithm returns the built-in strategy for a, configured with
// package defaults. AlgorithmCustom has no built-in strategy and fails
// with ErrUnknownAlgorithm; register custom strategies with the engine
// instead.
func ForAlgorithm(a Algorithm) (Strategy, error) {
	switch a {
	case AlgorithmSM2:
		return NewSM2(), nil
	case AlgorithmAnki:
		return NewAnki(DefaultAnkiConfig()), nil
	case AlgorithmLeitner:
		return NewLeitner(DefaultLeitnerConfig()), nil
	}
	return nil, ErrUnknownAlgorithm
}

// checkApply validates the shared strategy preconditions.
func checkApply(current MemoryStrength, difficulty Difficulty) error {
	if !difficulty.IsValid() {
		return ErrInvalidDifficulty
	}
	return current.Validate()
}
