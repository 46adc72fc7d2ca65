package algorithm

import "fmt"

// Algorithm identifies a scheduling strategy.
//
// The engine dispatches on this value at call time; there is no runtime
// reflection involved. AlgorithmCustom is reserved for caller-registered
// strategies and has no built-in implementation.
type Algorithm string

const (
	// AlgorithmSM2 is the classic SuperMemo-2 day-based schedule.
	AlgorithmSM2 Algorithm = "sm2"

	// AlgorithmAnki is an Anki-style schedule with a sub-day learning
	// phase, easy bonus, and leech detection.
	AlgorithmAnki Algorithm = "anki"

	// AlgorithmLeitner is a five-box schedule with fixed per-box intervals.
	AlgorithmLeitner Algorithm = "leitner"

	// AlgorithmCustom selects a caller-registered strategy.
	AlgorithmCustom Algorithm = "custom"
)

// IsValid reports whether a names a known algorithm identifier.
func (a Algorithm) IsValid() bool {
	switch a {
	case AlgorithmSM2, AlgorithmAnki, AlgorithmLeitner, AlgorithmCustom:
		return true
	}
	return false
}

// ParseAlgorithm converts a string into an Algorithm, failing with
// ErrUnknownAlgorithm for unrecognized names.
func ParseAlgorithm(s string) (Algorithm, error) {
	a := Algorithm(s)
	if !a.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownAlgorithm, s)
	}
	return a, nil
}
