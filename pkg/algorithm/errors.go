package algorithm

import "errors"

// Sentinel errors for the algorithm package.
// Use errors.Is to check: errors.Is(err, algorithm.ErrInvalidDifficulty)
var (
	// ErrInvalidDifficulty indicates an absent or unrecognized review difficulty.
	ErrInvalidDifficulty = errors.New("algorithm: invalid difficulty")

	// ErrInvalidState indicates a malformed memory strength (NaN, negative,
	// or out-of-range field values).
	ErrInvalidState = errors.New("algorithm: invalid memory strength state")

	// ErrUnknownAlgorithm indicates an algorithm identifier with no strategy
	// available for it.
	ErrUnknownAlgorithm = errors.New("algorithm: unknown algorithm")
)
