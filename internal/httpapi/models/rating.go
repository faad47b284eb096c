package models

import "math"

// AverageRating computes the aggregate rating of a title from its review
// scores: the arithmetic mean rounded to one decimal place. Returns nil for
// an empty score set, so a title with no reviews carries a NULL rating
// rather than zero.
func AverageRating(scores []int) *float64 {
	if len(scores) == 0 {
		return nil
	}
	sum := 0
	for _, s := range scores {
		sum += s
	}
	mean := float64(sum) / float64(len(scores))
	rounded := math.Round(mean*10) / 10
	return &rounded
}
