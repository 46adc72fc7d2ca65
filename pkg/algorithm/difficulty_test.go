package algorithm_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raold/second-brain-sub005/pkg/algorithm"
)

func TestDifficultyString(t *testing.T) {
	assert.Equal(t, "again", algorithm.Again.String())
	assert.Equal(t, "hard", algorithm.Hard.String())
	assert.Equal(t, "good", algorithm.Good.String())
	assert.Equal(t, "easy", algorithm.Easy.String())
	assert.Equal(t, "Difficulty(0)", algorithm.Difficulty(0).String())
}

func TestDifficultyIsValid(t *testing.T) {
	assert.True(t, algorithm.Again.IsValid())
	assert.True(t, algorithm.Easy.IsValid())
	assert.False(t, algorithm.Difficulty(0).IsValid())
	assert.False(t, algorithm.Difficulty(5).IsValid())
}

func TestDifficultySuccess(t *testing.T) {
	assert.False(t, algorithm.Again.Success())
	assert.False(t, algorithm.Hard.Success())
	assert.True(t, algorithm.Good.Success())
	assert.True(t, algorithm.Easy.Success())
}

func TestDifficultyJSONRoundTrip(t *testing.T) {
	data, err := json.Marshal(algorithm.Good)
	require.NoError(t, err)
	assert.Equal(t, `"good"`, string(data))

	var d algorithm.Difficulty
	require.NoError(t, json.Unmarshal([]byte(`"hard"`), &d))
	assert.Equal(t, algorithm.Hard, d)

	err = json.Unmarshal([]byte(`"unknown"`), &d)
	assert.ErrorIs(t, err, algorithm.ErrInvalidDifficulty)

	_, err = json.Marshal(algorithm.Difficulty(42))
	assert.Error(t, err)
}

func TestAlgorithmParse(t *testing.T) {
	a, err := algorithm.ParseAlgorithm("sm2")
	require.NoError(t, err)
	assert.Equal(t, algorithm.AlgorithmSM2, a)

	_, err = algorithm.ParseAlgorithm("supermemo-18")
	assert.ErrorIs(t, err, algorithm.ErrUnknownAlgorithm)

	assert.True(t, algorithm.AlgorithmCustom.IsValid())
	assert.False(t, algorithm.Algorithm("").IsValid())
}

func TestForAlgorithm(t *testing.T) {
	for _, a := range []algorithm.Algorithm{
		algorithm.AlgorithmSM2,
		algorithm.AlgorithmAnki,
		algorithm.AlgorithmLeitner,
	} {
		strategy, err := algorithm.ForAlgorithm(a)
		require.NoError(t, err)
		assert.NotNil(t, strategy)
	}

	// Custom has no built-in strategy.
	_, err := algorithm.ForAlgorithm(algorithm.AlgorithmCustom)
	assert.ErrorIs(t, err, algorithm.ErrUnknownAlgorithm)
}
