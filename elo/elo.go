// Package elo implements the global rating engine. Ratings only move on
// contested, played matches: walkovers and byes bypass this package entirely.
package elo

import (
	"math"

	"github.com/morhendos/tenis-del-parque/models"
)

// KFactor is fixed for the whole league. K-factor schedules by match count
// were considered and rejected: amateur seasons are short enough that a
// provisional window would cover most of them.
const KFactor = 32.0

// RatingChange returns the signed delta for player A after a match against B.
// B's delta is always the exact negation, so a two-player system is zero-sum.
func RatingChange(ratingA, ratingB int, aWon bool) int {
	expectedA := expectedScore(float64(ratingA), float64(ratingB))

	actualA := 0.0
	if aWon {
		actualA = 1.0
	}

	return int(math.Round(KFactor * (actualA - expectedA)))
}

func expectedScore(ratingA, ratingB float64) float64 {
	return 1.0 / (1.0 + math.Pow(10, (ratingB-ratingA)/400.0))
}

// SeedRating returns the starting rating for a new player by declared level.
func SeedRating(level models.PlayerLevel) int {
	switch level {
	case models.LevelBeginner:
		return 1100
	case models.LevelAdvanced:
		return 1300
	default:
		return 1200
	}
}
