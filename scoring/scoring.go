// Package scoring holds the tennis-specific set rules: score validation,
// winner determination, league points and the super-tiebreak convention.
package scoring

import (
	"errors"
	"fmt"
	"strings"

	"github.com/morhendos/tenis-del-parque/models"
)

var (
	ErrNoSets          = errors.New("at least two sets are required")
	ErrTooManySets     = errors.New("a match has at most 3 sets")
	ErrTiedSet         = errors.New("a set cannot end tied")
	ErrInvalidSetScore = errors.New("invalid set score")
	ErrThirdSetNoSplit = errors.New("third set (super tiebreak) only allowed when first two sets are split 1-1")
	ErrNoMatchWinner   = errors.New("set scores do not produce a match winner")
)

// Walkover bookkeeping: scored as a 2-0 win worth 3 points, with a fixed
// 12-0 game equivalent instead of invented set-by-set games.
const (
	WalkoverSetsWon     = 2
	WalkoverWinnerGames = 12
	WalkoverPoints      = 3
)

// superTiebreakMin marks a third set as a super-tiebreak: either side at 10 or
// above is playing points, not games.
const superTiebreakMin = 10

// ValidateSets checks tennis scoring boundaries: regular sets end 6-0..6-4,
// 7-5 or 7-6; the third set must follow a 1-1 split and may be a
// super-tiebreak (first to 10, win by 2). Returns a human-readable reason on
// the first violation.
func ValidateSets(sets []models.SetScore) error {
	if len(sets) < 2 {
		return ErrNoSets
	}
	if len(sets) > 3 {
		return ErrTooManySets
	}

	for i, set := range sets {
		if set.Player1 == set.Player2 {
			return fmt.Errorf("%w: set %d is %d-%d", ErrTiedSet, i+1, set.Player1, set.Player2)
		}
		if i == 2 && IsSuperTiebreak(set) {
			if !validSuperTiebreak(set) {
				return fmt.Errorf("%w: super tiebreak %d-%d must reach 10 with a 2-point margin", ErrInvalidSetScore, set.Player1, set.Player2)
			}
			continue
		}
		if !validRegularSet(set) {
			return fmt.Errorf("%w: set %d is %d-%d", ErrInvalidSetScore, i+1, set.Player1, set.Player2)
		}
	}

	p1, p2 := SetsWon(sets[:2])
	if len(sets) == 3 && p1 != 1 {
		return ErrThirdSetNoSplit
	}
	if len(sets) == 2 && p1 == 1 && p2 == 1 {
		// A 1-1 report with no third set is an unfinished match.
		return ErrNoMatchWinner
	}
	return nil
}

func validRegularSet(set models.SetScore) bool {
	w, l := set.Player1, set.Player2
	if l > w {
		w, l = l, w
	}
	switch w {
	case 6:
		return l <= 4
	case 7:
		return l == 5 || l == 6
	default:
		return false
	}
}

func validSuperTiebreak(set models.SetScore) bool {
	w, l := set.Player1, set.Player2
	if l > w {
		w, l = l, w
	}
	return w >= superTiebreakMin && w-l >= 2
}

// IsSuperTiebreak reports whether a set played in third position is a
// super-tiebreak rather than a full set. Callers must only apply it to the
// third set; the first two sets can never reach these scores.
func IsSuperTiebreak(set models.SetScore) bool {
	return set.Player1 >= superTiebreakMin || set.Player2 >= superTiebreakMin
}

// SetsWon counts sets per side.
func SetsWon(sets []models.SetScore) (p1, p2 int) {
	for _, set := range sets {
		if set.Player1 > set.Player2 {
			p1++
		} else if set.Player2 > set.Player1 {
			p2++
		}
	}
	return p1, p2
}

// Winner returns 1 or 2 for validated set scores.
func Winner(sets []models.SetScore) (int, error) {
	p1, p2 := SetsWon(sets)
	switch {
	case p1 > p2:
		return 1, nil
	case p2 > p1:
		return 2, nil
	default:
		return 0, ErrNoMatchWinner
	}
}

// MatchPoints maps a set result to league points: 3 for a 2-0 win, 2 for 2-1,
// 1 for a 1-2 loss, 0 for 0-2. A 2-1 via super-tiebreak scores like any 2-1.
func MatchPoints(setsWon, setsLost int) int {
	switch {
	case setsWon == 2 && setsLost == 0:
		return 3
	case setsWon == 2 && setsLost == 1:
		return 2
	case setsWon == 1 && setsLost == 2:
		return 1
	default:
		return 0
	}
}

// FormatScore renders sets for display and match-history entries.
func FormatScore(sets []models.SetScore) string {
	parts := make([]string, 0, len(sets))
	for _, set := range sets {
		parts = append(parts, fmt.Sprintf("%d-%d", set.Player1, set.Player2))
	}
	return strings.Join(parts, " ")
}
