package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/morhendos/tenis-del-parque/models"
)

func sets(pairs ...[2]int) []models.SetScore {
	out := make([]models.SetScore, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, models.SetScore{Player1: p[0], Player2: p[1]})
	}
	return out
}

func TestValidateSets(t *testing.T) {
	tests := []struct {
		name    string
		sets    []models.SetScore
		wantErr error
	}{
		{"straight sets", sets([2]int{6, 4}, [2]int{6, 4}), nil},
		{"tiebreak sets", sets([2]int{7, 6}, [2]int{7, 5}), nil},
		{"three full sets", sets([2]int{6, 4}, [2]int{4, 6}, [2]int{6, 3}), nil},
		{"super tiebreak decider", sets([2]int{6, 4}, [2]int{4, 6}, [2]int{10, 7}), nil},
		{"long super tiebreak", sets([2]int{6, 4}, [2]int{4, 6}, [2]int{15, 13}), nil},
		{"single set", sets([2]int{6, 4}), ErrNoSets},
		{"four sets", sets([2]int{6, 4}, [2]int{4, 6}, [2]int{6, 4}, [2]int{6, 4}), ErrTooManySets},
		{"tied set", sets([2]int{6, 6}, [2]int{6, 4}), ErrTiedSet},
		{"6-5 is not a set", sets([2]int{6, 5}, [2]int{6, 4}), ErrInvalidSetScore},
		{"7-4 is not a set", sets([2]int{7, 4}, [2]int{6, 4}), ErrInvalidSetScore},
		{"8-6 is not a set", sets([2]int{8, 6}, [2]int{6, 4}), ErrInvalidSetScore},
		{"third set without split", sets([2]int{6, 4}, [2]int{6, 4}, [2]int{10, 7}), ErrThirdSetNoSplit},
		{"super tiebreak without margin", sets([2]int{6, 4}, [2]int{4, 6}, [2]int{10, 9}), ErrInvalidSetScore},
		{"unfinished 1-1", sets([2]int{6, 4}, [2]int{4, 6}), ErrNoMatchWinner},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSets(tt.sets)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestWinner(t *testing.T) {
	w, err := Winner(sets([2]int{6, 4}, [2]int{6, 4}))
	require.NoError(t, err)
	assert.Equal(t, 1, w)

	w, err = Winner(sets([2]int{4, 6}, [2]int{6, 4}, [2]int{7, 10}))
	require.NoError(t, err)
	assert.Equal(t, 2, w)

	_, err = Winner(sets([2]int{6, 4}, [2]int{4, 6}))
	assert.ErrorIs(t, err, ErrNoMatchWinner)
}

func TestMatchPoints(t *testing.T) {
	assert.Equal(t, 3, MatchPoints(2, 0))
	assert.Equal(t, 2, MatchPoints(2, 1))
	assert.Equal(t, 1, MatchPoints(1, 2))
	assert.Equal(t, 0, MatchPoints(0, 2))
}

func TestIsSuperTiebreak(t *testing.T) {
	assert.True(t, IsSuperTiebreak(models.SetScore{Player1: 10, Player2: 7}))
	assert.True(t, IsSuperTiebreak(models.SetScore{Player1: 8, Player2: 10}))
	assert.False(t, IsSuperTiebreak(models.SetScore{Player1: 7, Player2: 6}))
}

func TestFormatScore(t *testing.T) {
	assert.Equal(t, "6-4 4-6 10-7", FormatScore(sets([2]int{6, 4}, [2]int{4, 6}, [2]int{10, 7})))
}
