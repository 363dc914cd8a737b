package elo

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/morhendos/tenis-del-parque/models"
)

func TestRatingChange(t *testing.T) {
	tests := []struct {
		name    string
		ratingA int
		ratingB int
		aWon    bool
		want    int
	}{
		{"equal ratings, A wins", 1200, 1200, true, 16},
		{"equal ratings, A loses", 1200, 1200, false, -16},
		{"favourite wins small", 1400, 1200, true, 8},
		{"underdog wins big", 1200, 1400, true, 24},
		{"favourite loses big", 1400, 1200, false, -24},
		{"huge gap, favourite wins almost nothing", 2000, 1200, true, 0},
		{"huge gap, underdog win pays full K", 1200, 2000, true, 32},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RatingChange(tt.ratingA, tt.ratingB, tt.aWon))
		})
	}
}

func TestRatingChangeZeroSum(t *testing.T) {
	// Applying both sides' deltas must leave the sum of ratings unchanged,
	// for any pair of ratings and either outcome.
	ratings := []int{800, 1000, 1100, 1200, 1237, 1300, 1450, 1999}

	for _, a := range ratings {
		for _, b := range ratings {
			for _, aWon := range []bool{true, false} {
				da := RatingChange(a, b, aWon)
				db := RatingChange(b, a, !aWon)
				assert.Equal(t, -da, db, "ratings %d vs %d, aWon=%v", a, b, aWon)
			}
		}
	}
}

func TestSeedRating(t *testing.T) {
	assert.Equal(t, 1100, SeedRating(models.LevelBeginner))
	assert.Equal(t, 1200, SeedRating(models.LevelIntermediate))
	assert.Equal(t, 1300, SeedRating(models.LevelAdvanced))
}
