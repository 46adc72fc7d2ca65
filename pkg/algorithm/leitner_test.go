package algorithm_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raold/second-brain-sub005/pkg/algorithm"
)

func TestLeitnerPromotion(t *testing.T) {
	leitner := algorithm.NewLeitner(algorithm.DefaultLeitnerConfig())
	now := time.Now()

	strength := algorithm.DefaultStrength()
	wantIntervals := []int{2, 4, 8, 16, 16, 16}
	for i, want := range wantIntervals {
		result, err := leitner.Apply(strength, algorithm.Good, now)
		require.NoError(t, err)
		assert.Equal(t, want, result.Strength.IntervalDays, "review %d", i+1)
		strength = result.Strength
	}
	assert.Equal(t, leitner.Boxes(), leitner.Box(strength),
		"item should stay in the last box")
}

func TestLeitnerDemotion(t *testing.T) {
	leitner := algorithm.NewLeitner(algorithm.DefaultLeitnerConfig())
	now := time.Now()

	top := algorithm.MemoryStrength{
		EaseFactor:    algorithm.DefaultEaseFactor,
		IntervalDays:  16,
		Repetitions:   6,
		RetentionRate: 0.9,
		Stability:     16,
	}

	// Again demotes to box 1 and counts a lapse.
	result, err := leitner.Apply(top, algorithm.Again, now)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Strength.IntervalDays)
	assert.Equal(t, 0, result.Strength.Repetitions)
	assert.Equal(t, 1, result.Strength.Lapses)

	// Hard also demotes but does not count a lapse.
	result, err = leitner.Apply(top, algorithm.Hard, now)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Strength.IntervalDays)
	assert.Equal(t, 0, result.Strength.Lapses)
}

func TestLeitnerIgnoresEase(t *testing.T) {
	leitner := algorithm.NewLeitner(algorithm.DefaultLeitnerConfig())
	now := time.Now()

	result, err := leitner.Apply(algorithm.DefaultStrength(), algorithm.Easy, now)
	require.NoError(t, err)
	assert.Equal(t, algorithm.DefaultEaseFactor, result.Strength.EaseFactor,
		"Leitner leaves the ease factor alone")
}

func TestLeitnerCustomBoxes(t *testing.T) {
	leitner := algorithm.NewLeitner(algorithm.LeitnerConfig{BoxIntervalDays: []int{1, 3, 7}})
	now := time.Now()

	assert.Equal(t, 3, leitner.Boxes())

	strength := algorithm.DefaultStrength()
	result, err := leitner.Apply(strength, algorithm.Good, now)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Strength.IntervalDays)
	assert.Equal(t, now.AddDate(0, 0, 3), result.NextDue)
}
