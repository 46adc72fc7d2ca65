// Package algorithm provides the pure spaced-repetition state machinery:
// the MemoryStrength value type and the interchangeable scheduling
// strategies (SM-2, Anki-style, Leitner) that evolve it review by review.
//
// Everything in this package is deterministic and free of I/O; strategies
// may be called concurrently for different items.
package algorithm

import (
	"encoding"
	"encoding/json"
	"fmt"
)

// Difficulty represents the user's assessment of recall quality for a
// single review.
type Difficulty int

const (
	Again Difficulty = iota + 1 // Failed to recall.
	Hard                        // Recalled with significant effort.
	Good                        // Recalled with some effort.
	Easy                        // Recalled effortlessly.
)

var (
	difficultyNames  = [...]string{Again: "again", Hard: "hard", Good: "good", Easy: "easy"}
	difficultyByName = map[string]Difficulty{
		"again": Again,
		"hard":  Hard,
		"good":  Good,
		"easy":  Easy,
	}
)

// Compile-time interface checks.
var (
	_ fmt.Stringer             = Difficulty(0)
	_ json.Marshaler           = Difficulty(0)
	_ json.Unmarshaler         = (*Difficulty)(nil)
	_ encoding.TextMarshaler   = Difficulty(0)
	_ encoding.TextUnmarshaler = (*Difficulty)(nil)
)

// String returns the lowercase name of the difficulty.
// For invalid values it returns "Difficulty(n)".
func (d Difficulty) String() string {
	if d.IsValid() {
		return difficultyNames[d]
	}
	return fmt.Sprintf("Difficulty(%d)", int(d))
}

// IsValid reports whether d is a valid difficulty (Again through Easy).
func (d Difficulty) IsValid() bool {
	return d >= Again && d <= Easy
}

// Success reports whether d counts as a successful recall (Good or Easy).
func (d Difficulty) Success() bool {
	return d == Good || d == Easy
}

// MarshalText implements encoding.TextMarshaler.
func (d Difficulty) MarshalText() ([]byte, error) {
	if !d.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDifficulty, int(d))
	}
	return []byte(difficultyNames[d]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Difficulty) UnmarshalText(text []byte) error {
	v, ok := difficultyByName[string(text)]
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidDifficulty, text)
	}
	*d = v
	return nil
}

// MarshalJSON implements json.Marshaler. Difficulty serializes as a JSON string.
func (d Difficulty) MarshalJSON() ([]byte, error) {
	text, err := d.MarshalText()
	if err != nil {
		return nil, err
	}
	return json.Marshal(string(text))
}

// UnmarshalJSON implements json.Unmarshaler. Expects a JSON string.
func (d *Difficulty) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidDifficulty, data)
	}
	return d.UnmarshalText([]byte(s))
}
