package swiss

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/morhendos/tenis-del-parque/models"
)

func testPlayers(n int) []*models.Player {
	players := make([]*models.Player, 0, n)
	for i := 1; i <= n; i++ {
		players = append(players, &models.Player{
			ID:        i,
			Name:      fmt.Sprintf("Player %02d", i),
			Level:     models.LevelIntermediate,
			EloRating: 1200 + (n-i)*10,
		})
	}
	return players
}

func played(id, round, p1, p2, winner int) *models.Match {
	p2ID := p2
	return &models.Match{
		ID:        id,
		Round:     round,
		Player1ID: p1,
		Player2ID: &p2ID,
		Status:    models.MatchStatusCompleted,
		Result: &models.MatchResult{
			WinnerID: winner,
			Sets:     []models.SetScore{{Player1: 6, Player2: 4}, {Player1: 6, Player2: 4}},
		},
	}
}

func bye(id, round, p1 int) *models.Match {
	return &models.Match{
		ID:        id,
		Round:     round,
		Player1ID: p1,
		Status:    models.MatchStatusCompleted,
		IsBye:     true,
		Result:    &models.MatchResult{WinnerID: p1},
	}
}

func TestGeneratePairingsFirstRound(t *testing.T) {
	players := testPlayers(8)

	result, err := GeneratePairings(players, nil, 1)
	require.NoError(t, err)

	assert.Len(t, result.Pairings, 4)
	assert.Nil(t, result.Bye)
	assert.Equal(t, 4, result.Summary.TotalMatches)
	assert.Equal(t, 0, result.Summary.Rematches)
}

func TestGeneratePairingsOddCountAssignsBye(t *testing.T) {
	players := testPlayers(9)

	result, err := GeneratePairings(players, nil, 1)
	require.NoError(t, err)

	require.NotNil(t, result.Bye)
	assert.Len(t, result.Pairings, 4)
	// No prior byes: the lowest-ranked (lowest-rated) player sits out.
	assert.Equal(t, 9, result.Bye.ID)
	assert.Equal(t, "Player 09", result.Summary.ByePlayer)
}

func TestGeneratePairingsByeRotates(t *testing.T) {
	// 9 players, player 9 had the round-1 bye: round 2 must pick someone else.
	players := testPlayers(9)
	prior := []*models.Match{
		bye(1, 1, 9),
		played(2, 1, 1, 8, 1),
		played(3, 1, 2, 7, 2),
		played(4, 1, 3, 6, 3),
		played(5, 1, 4, 5, 4),
	}

	result, err := GeneratePairings(players, prior, 2)
	require.NoError(t, err)

	require.NotNil(t, result.Bye)
	assert.NotEqual(t, 9, result.Bye.ID)
}

func TestGeneratePairingsByeFallsBackWhenAllHadOne(t *testing.T) {
	players := testPlayers(3)
	prior := []*models.Match{
		bye(1, 1, 1),
		bye(2, 2, 2),
		bye(3, 3, 3),
	}

	result, err := GeneratePairings(players, prior, 4)
	require.NoError(t, err)
	require.NotNil(t, result.Bye)

	// Everyone already had a bye: the current lowest-ranked player gets it.
	// All byes count as wins, so ranking falls back to rating.
	assert.Equal(t, 3, result.Bye.ID)
}

func TestGeneratePairingsNoRematchWithinGroup(t *testing.T) {
	players := testPlayers(4)
	// Round 1: 1v2 (1 won), 3v4 (3 won). Round 2 score groups are {1,3} and
	// {2,4}; neither pair is a rematch so none may be produced.
	prior := []*models.Match{
		played(1, 1, 1, 2, 1),
		played(2, 1, 3, 4, 3),
	}

	result, err := GeneratePairings(players, prior, 2)
	require.NoError(t, err)
	require.Len(t, result.Pairings, 2)

	for _, p := range result.Pairings {
		assert.False(t, p.IsRematch)
		prev := map[[2]int]bool{{1, 2}: true, {2, 1}: true, {3, 4}: true, {4, 3}: true}
		assert.False(t, prev[[2]int{p.Player1.ID, p.Player2.ID}], "rematch %d vs %d", p.Player1.ID, p.Player2.ID)
	}
}

func TestGeneratePairingsForcedRematchIsFlagged(t *testing.T) {
	// Two players who already met and nobody else: the generator must not
	// deadlock, it pairs them again with the rematch flag set.
	players := testPlayers(2)
	prior := []*models.Match{played(1, 1, 1, 2, 1)}

	result, err := GeneratePairings(players, prior, 2)
	require.NoError(t, err)
	require.Len(t, result.Pairings, 1)

	assert.True(t, result.Pairings[0].IsRematch)
	assert.Equal(t, 1, result.Summary.Rematches)
}

func TestGeneratePairingsEveryPlayerPairedOnce(t *testing.T) {
	players := testPlayers(16)
	var prior []*models.Match
	// Three simulated rounds with arbitrary winners, then pair round 4.
	id := 1
	for round := 1; round <= 3; round++ {
		result, err := GeneratePairings(players, prior, round)
		require.NoError(t, err)
		for _, p := range result.Pairings {
			winner := p.Player1.ID
			if (p.Player1.ID+p.Player2.ID+round)%2 == 0 {
				winner = p.Player2.ID
			}
			prior = append(prior, played(id, round, p.Player1.ID, p.Player2.ID, winner))
			id++
		}
	}

	result, err := GeneratePairings(players, prior, 4)
	require.NoError(t, err)
	assert.Len(t, result.Pairings, 8)

	seen := make(map[int]int)
	for _, p := range result.Pairings {
		seen[p.Player1.ID]++
		seen[p.Player2.ID]++
	}
	assert.Len(t, seen, 16)
	for id, count := range seen {
		assert.Equal(t, 1, count, "player %d paired %d times", id, count)
	}
}

func TestValidatePairings(t *testing.T) {
	a := &models.Player{ID: 1, Name: "A"}
	b := &models.Player{ID: 2, Name: "B"}
	c := &models.Player{ID: 3, Name: "C"}

	assert.NoError(t, ValidatePairings([]Pairing{{Player1: a, Player2: b, Round: 1}}))

	err := ValidatePairings([]Pairing{{Player1: a, Player2: a, Round: 1}})
	assert.ErrorIs(t, err, ErrSelfPairing)

	err = ValidatePairings([]Pairing{
		{Player1: a, Player2: b, Round: 1},
		{Player1: b, Player2: c, Round: 1},
	})
	assert.ErrorIs(t, err, ErrDuplicatePlayer)
}

func TestQuality(t *testing.T) {
	a := &models.Player{ID: 1, EloRating: 1300, Level: models.LevelAdvanced}
	b := &models.Player{ID: 2, EloRating: 1250, Level: models.LevelAdvanced}
	c := &models.Player{ID: 3, EloRating: 1100, Level: models.LevelBeginner}

	good := []Pairing{{Player1: a, Player2: b}}
	bad := []Pairing{{Player1: a, Player2: c, IsRematch: true}}

	assert.Less(t, Quality(good), Quality(bad))
	assert.Equal(t, 50, Quality(good))
	assert.Equal(t, 1000+200+200*2, Quality(bad))
}
