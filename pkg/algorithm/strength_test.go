package algorithm_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raold/second-brain-sub005/pkg/algorithm"
)

func TestDefaultStrength(t *testing.T) {
	s := algorithm.DefaultStrength()
	require.NoError(t, s.Validate())
	assert.Equal(t, algorithm.DefaultEaseFactor, s.EaseFactor)
	assert.Equal(t, 1, s.IntervalDays)
	assert.Equal(t, 0, s.Repetitions)
	assert.Equal(t, algorithm.DefaultRetentionRate, s.RetentionRate)
	assert.Nil(t, s.LastReview)
}

func TestStrengthValidate(t *testing.T) {
	base := algorithm.DefaultStrength()

	tests := []struct {
		name   string
		mutate func(*algorithm.MemoryStrength)
	}{
		{"ease below floor", func(s *algorithm.MemoryStrength) { s.EaseFactor = 1.0 }},
		{"ease NaN", func(s *algorithm.MemoryStrength) { s.EaseFactor = math.NaN() }},
		{"interval below one", func(s *algorithm.MemoryStrength) { s.IntervalDays = 0 }},
		{"negative repetitions", func(s *algorithm.MemoryStrength) { s.Repetitions = -1 }},
		{"negative lapses", func(s *algorithm.MemoryStrength) { s.Lapses = -1 }},
		{"retention above one", func(s *algorithm.MemoryStrength) { s.RetentionRate = 1.5 }},
		{"retention NaN", func(s *algorithm.MemoryStrength) { s.RetentionRate = math.NaN() }},
		{"zero stability", func(s *algorithm.MemoryStrength) { s.Stability = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := base
			tt.mutate(&s)
			assert.ErrorIs(t, s.Validate(), algorithm.ErrInvalidState)
		})
	}
}

func TestRetrievability(t *testing.T) {
	// No elapsed time: certain recall.
	assert.Equal(t, 1.0, algorithm.Retrievability(0, 1))

	// One stability-day out: the default 0.9 target.
	assert.InDelta(t, 0.9, algorithm.Retrievability(1, 1), 1e-9)
	assert.InDelta(t, 0.9, algorithm.Retrievability(10, 10), 1e-9)

	// Monotonically decreasing in elapsed time.
	prev := 1.0
	for days := 1.0; days <= 64; days *= 2 {
		r := algorithm.Retrievability(days, 5)
		assert.Less(t, r, prev, "retention must decay with time")
		prev = r
	}

	// Higher stability slows the decay.
	assert.Greater(t,
		algorithm.Retrievability(10, 20),
		algorithm.Retrievability(10, 2))
}
