package algorithm_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raold/second-brain-sub005/pkg/algorithm"
)

func TestSM2GoodProgression(t *testing.T) {
	sm2 := algorithm.NewSM2()
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	// First success: interval 1.
	result, err := sm2.Apply(algorithm.DefaultStrength(), algorithm.Good, now)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Strength.IntervalDays)
	assert.Equal(t, 1, result.Strength.Repetitions)
	assert.Equal(t, 2.5, result.Strength.EaseFactor, "Good should not change ease")
	assert.Equal(t, now.AddDate(0, 0, 1), result.NextDue)

	// Second success: interval 6.
	result, err = sm2.Apply(result.Strength, algorithm.Good, now.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, 6, result.Strength.IntervalDays)
	assert.Equal(t, 2, result.Strength.Repetitions)

	// Third success: floor(6 * 2.5) = 15.
	result, err = sm2.Apply(result.Strength, algorithm.Good, now.AddDate(0, 0, 7))
	require.NoError(t, err)
	assert.Equal(t, 15, result.Strength.IntervalDays)
	assert.Equal(t, 3, result.Strength.Repetitions)
}

func TestSM2Again(t *testing.T) {
	sm2 := algorithm.NewSM2()
	now := time.Now()

	current := algorithm.MemoryStrength{
		EaseFactor:    2.5,
		IntervalDays:  15,
		Repetitions:   3,
		RetentionRate: 0.9,
		Stability:     10,
	}
	result, err := sm2.Apply(current, algorithm.Again, now)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Strength.IntervalDays, "failure should reset the interval")
	assert.Equal(t, 0, result.Strength.Repetitions)
	assert.Equal(t, 1, result.Strength.Lapses)
	assert.InDelta(t, 2.3, result.Strength.EaseFactor, 1e-9)
	assert.False(t, result.IsLeech, "SM-2 does not flag leeches")
}

func TestSM2EaseFloor(t *testing.T) {
	sm2 := algorithm.NewSM2()
	now := time.Now()

	strength := algorithm.DefaultStrength()
	for i := 0; i < 10; i++ {
		result, err := sm2.Apply(strength, algorithm.Again, now)
		require.NoError(t, err)
		strength = result.Strength
	}
	assert.Equal(t, algorithm.MinEaseFactor, strength.EaseFactor,
		"repeated failures must not push ease below the floor")
	assert.Equal(t, 10, strength.Lapses)
}

func TestSM2Hard(t *testing.T) {
	sm2 := algorithm.NewSM2()
	now := time.Now()

	current := algorithm.MemoryStrength{
		EaseFactor:    2.5,
		IntervalDays:  10,
		Repetitions:   3,
		RetentionRate: 0.9,
		Stability:     10,
	}
	result, err := sm2.Apply(current, algorithm.Hard, now)
	require.NoError(t, err)
	assert.Equal(t, 6, result.Strength.IntervalDays, "Hard shrinks the interval to 60%")
	assert.InDelta(t, 2.35, result.Strength.EaseFactor, 1e-9)
	assert.Equal(t, 3, result.Strength.Repetitions, "Hard keeps the repetition count")

	// A one-day interval cannot shrink below one day.
	result, err = sm2.Apply(algorithm.DefaultStrength(), algorithm.Hard, now)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Strength.IntervalDays)
}

func TestSM2EasyRaisesEaseUnbounded(t *testing.T) {
	sm2 := algorithm.NewSM2()
	now := time.Now()

	strength := algorithm.MemoryStrength{
		EaseFactor:    3.9,
		IntervalDays:  2,
		Repetitions:   2,
		RetentionRate: 0.9,
		Stability:     5,
	}
	result, err := sm2.Apply(strength, algorithm.Easy, now)
	require.NoError(t, err)
	// floor(2 * 3.9 * 1.3) = 10
	assert.Equal(t, 10, result.Strength.IntervalDays)
	assert.InDelta(t, 4.05, result.Strength.EaseFactor, 1e-9,
		"ease has no upper bound")
	assert.Equal(t, 0, result.Strength.Lapses)
}

func TestSM2IntervalCap(t *testing.T) {
	sm2 := algorithm.NewSM2()
	now := time.Now()

	strength := algorithm.MemoryStrength{
		EaseFactor:    2.5,
		IntervalDays:  3000,
		Repetitions:   20,
		RetentionRate: 0.9,
		Stability:     3000,
	}
	result, err := sm2.Apply(strength, algorithm.Good, now)
	require.NoError(t, err)
	assert.Equal(t, algorithm.MaxIntervalDays, result.Strength.IntervalDays)
}

func TestSM2InvalidInput(t *testing.T) {
	sm2 := algorithm.NewSM2()
	now := time.Now()

	_, err := sm2.Apply(algorithm.DefaultStrength(), algorithm.Difficulty(99), now)
	assert.ErrorIs(t, err, algorithm.ErrInvalidDifficulty)

	_, err = sm2.Apply(algorithm.MemoryStrength{}, algorithm.Good, now)
	assert.ErrorIs(t, err, algorithm.ErrInvalidState,
		"a zero strength is not a valid input")
}

func TestSM2UpdatesForgettingCurve(t *testing.T) {
	sm2 := algorithm.NewSM2()
	now := time.Now()

	result, err := sm2.Apply(algorithm.DefaultStrength(), algorithm.Good, now)
	require.NoError(t, err)
	assert.Greater(t, result.Strength.Stability, algorithm.DefaultStability,
		"success should grow stability")
	assert.Greater(t, result.Strength.RetentionRate, 0.0)
	assert.LessOrEqual(t, result.Strength.RetentionRate, 1.0)
	require.NotNil(t, result.Strength.LastReview)
	assert.Equal(t, now, *result.Strength.LastReview)
}
