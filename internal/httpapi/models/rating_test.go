package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAverageRating_NoScores(t *testing.T) {
	assert.Nil(t, AverageRating(nil))
	assert.Nil(t, AverageRating([]int{}))
}

func TestAverageRating_SingleScore(t *testing.T) {
	rating := AverageRating([]int{4})

	require.NotNil(t, rating)
	assert.Equal(t, 4.0, *rating)
}

func TestAverageRating_WholeMean(t *testing.T) {
	rating := AverageRating([]int{8, 4})

	require.NotNil(t, rating)
	assert.Equal(t, 6.0, *rating)
}

func TestAverageRating_HalfStep(t *testing.T) {
	rating := AverageRating([]int{7, 8})

	require.NotNil(t, rating)
	assert.Equal(t, 7.5, *rating)
}

func TestAverageRating_RoundsToOneDecimal(t *testing.T) {
	// 5/3 = 1.666... rounds to 1.7
	rating := AverageRating([]int{1, 2, 2})

	require.NotNil(t, rating)
	assert.Equal(t, 1.7, *rating)
}
