package algorithm_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raold/second-brain-sub005/pkg/algorithm"
)

func TestAnkiLearningSteps(t *testing.T) {
	anki := algorithm.NewAnki(algorithm.DefaultAnkiConfig())
	now := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)

	// First Good: advance to the second learning step (10 minutes).
	result, err := anki.Apply(algorithm.DefaultStrength(), algorithm.Good, now)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Strength.Repetitions)
	assert.Equal(t, now.Add(10*time.Minute), result.NextDue)

	// Second Good: passed the final step, graduate to one day.
	result, err = anki.Apply(result.Strength, algorithm.Good, result.NextDue)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Strength.Repetitions)
	assert.Equal(t, 1, result.Strength.IntervalDays)
	assert.Equal(t, result.NextDue, result.Strength.LastReview.AddDate(0, 0, 1))
}

func TestAnkiGraduatedReview(t *testing.T) {
	anki := algorithm.NewAnki(algorithm.DefaultAnkiConfig())
	now := time.Now()

	graduated := algorithm.MemoryStrength{
		EaseFactor:    2.5,
		IntervalDays:  4,
		Repetitions:   5,
		RetentionRate: 0.9,
		Stability:     4,
	}

	// Good after graduation follows the SM-2 growth formula.
	result, err := anki.Apply(graduated, algorithm.Good, now)
	require.NoError(t, err)
	assert.Equal(t, 10, result.Strength.IntervalDays, "floor(4 * 2.5)")

	// Easy additionally applies the easy bonus: floor(4 * 2.5 * 1.3 * 1.3) = 16.
	result, err = anki.Apply(graduated, algorithm.Easy, now)
	require.NoError(t, err)
	assert.Equal(t, 16, result.Strength.IntervalDays)
	assert.InDelta(t, 2.65, result.Strength.EaseFactor, 1e-9)
}

func TestAnkiEasyGraduatesImmediately(t *testing.T) {
	anki := algorithm.NewAnki(algorithm.DefaultAnkiConfig())
	now := time.Now()

	result, err := anki.Apply(algorithm.DefaultStrength(), algorithm.Easy, now)
	require.NoError(t, err)
	assert.Greater(t, result.Strength.Repetitions, len(algorithm.DefaultAnkiConfig().LearningSteps),
		"Easy should skip the remaining learning steps")
	assert.Equal(t, 1, result.Strength.IntervalDays)
}

func TestAnkiAgainResetsToFirstStep(t *testing.T) {
	anki := algorithm.NewAnki(algorithm.DefaultAnkiConfig())
	now := time.Now()

	graduated := algorithm.MemoryStrength{
		EaseFactor:    2.5,
		IntervalDays:  10,
		Repetitions:   4,
		RetentionRate: 0.9,
		Stability:     10,
	}
	result, err := anki.Apply(graduated, algorithm.Again, now)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Strength.Repetitions)
	assert.Equal(t, 1, result.Strength.Lapses)
	assert.InDelta(t, 2.3, result.Strength.EaseFactor, 1e-9, "lapse penalty")
	assert.Equal(t, now.Add(time.Minute), result.NextDue, "back to the first step")
}

func TestAnkiLeechDetection(t *testing.T) {
	cfg := algorithm.DefaultAnkiConfig()
	anki := algorithm.NewAnki(cfg)
	now := time.Now()

	strength := algorithm.DefaultStrength()
	for i := 1; i <= cfg.LeechThreshold; i++ {
		result, err := anki.Apply(strength, algorithm.Again, now)
		require.NoError(t, err)
		assert.False(t, result.IsLeech, "failure %d is still within the threshold", i)
		strength = result.Strength
	}

	// One more failure crosses the threshold.
	result, err := anki.Apply(strength, algorithm.Again, now)
	require.NoError(t, err)
	assert.True(t, result.IsLeech)
	assert.Equal(t, cfg.LeechThreshold+1, result.Strength.Lapses)

	// A success clears the lapse streak.
	result, err = anki.Apply(result.Strength, algorithm.Good, now)
	require.NoError(t, err)
	assert.False(t, result.IsLeech)
	assert.Equal(t, 0, result.Strength.Lapses)
}

func TestAnkiHardRepeatsLearningStep(t *testing.T) {
	anki := algorithm.NewAnki(algorithm.DefaultAnkiConfig())
	now := time.Now()

	// One step passed; Hard stays on the second step.
	strength := algorithm.DefaultStrength()
	strength.Repetitions = 1
	result, err := anki.Apply(strength, algorithm.Hard, now)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Strength.Repetitions, "Hard must not advance the step")
	assert.Equal(t, now.Add(10*time.Minute), result.NextDue)
}

func TestAnkiConfigDefaults(t *testing.T) {
	// Zero-valued fields fall back to the stock configuration.
	anki := algorithm.NewAnki(algorithm.AnkiConfig{LeechThreshold: 3})
	cfg := anki.Config()
	assert.Equal(t, 3, cfg.LeechThreshold)
	assert.Equal(t, algorithm.DefaultAnkiConfig().LearningSteps, cfg.LearningSteps)
	assert.Equal(t, algorithm.DefaultAnkiConfig().EasyBonus, cfg.EasyBonus)
}
