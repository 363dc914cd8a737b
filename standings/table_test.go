package standings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/morhendos/tenis-del-parque/models"
)

func player(id int, name string) *models.Player {
	return &models.Player{ID: id, Name: name, Level: models.LevelIntermediate, EloRating: 1200}
}

func completedMatch(id, round, p1, p2 int, winner int, sets []models.SetScore) *models.Match {
	p2ID := p2
	return &models.Match{
		ID:        id,
		Round:     round,
		Player1ID: p1,
		Player2ID: &p2ID,
		Status:    models.MatchStatusCompleted,
		Type:      models.MatchTypeRegular,
		Result:    &models.MatchResult{WinnerID: winner, Sets: sets},
	}
}

func byeMatch(id, round, p1 int) *models.Match {
	return &models.Match{
		ID:        id,
		Round:     round,
		Player1ID: p1,
		Status:    models.MatchStatusCompleted,
		Type:      models.MatchTypeRegular,
		IsBye:     true,
		Result:    &models.MatchResult{WinnerID: p1},
	}
}

func walkoverMatch(id, round, p1, p2, winner int) *models.Match {
	p2ID := p2
	return &models.Match{
		ID:        id,
		Round:     round,
		Player1ID: p1,
		Player2ID: &p2ID,
		Status:    models.MatchStatusCompleted,
		Type:      models.MatchTypeRegular,
		Result:    &models.MatchResult{WinnerID: winner, Walkover: true},
	}
}

func TestComputeStatsStraightSets(t *testing.T) {
	m := completedMatch(1, 1, 10, 20, 10, []models.SetScore{{Player1: 6, Player2: 4}, {Player1: 6, Player2: 4}})

	winner := ComputeStats(10, []*models.Match{m})
	assert.Equal(t, models.Stats{
		MatchesPlayed: 1, MatchesWon: 1,
		SetsWon: 2, GamesWon: 12, GamesLost: 8,
		TotalPoints: 3,
	}, winner)

	loser := ComputeStats(20, []*models.Match{m})
	assert.Equal(t, models.Stats{
		MatchesPlayed: 1, MatchesLost: 1,
		SetsLost: 2, GamesWon: 8, GamesLost: 12,
	}, loser)
}

func TestComputeStatsSuperTiebreak(t *testing.T) {
	// 6-4 4-6 10-7: the decider counts as one game for the winner, not 10/7.
	m := completedMatch(1, 1, 10, 20, 10, []models.SetScore{
		{Player1: 6, Player2: 4}, {Player1: 4, Player2: 6}, {Player1: 10, Player2: 7},
	})

	winner := ComputeStats(10, []*models.Match{m})
	assert.Equal(t, 11, winner.GamesWon) // 6 + 4 + 1
	assert.Equal(t, 10, winner.GamesLost)
	assert.Equal(t, 2, winner.SetsWon)
	assert.Equal(t, 1, winner.SetsLost)
	assert.Equal(t, 2, winner.TotalPoints) // 2-1 win

	loser := ComputeStats(20, []*models.Match{m})
	assert.Equal(t, 10, loser.GamesWon)
	assert.Equal(t, 11, loser.GamesLost)
	assert.Equal(t, 1, loser.TotalPoints) // 1-2 loss
}

func TestComputeStatsBye(t *testing.T) {
	stats := ComputeStats(10, []*models.Match{byeMatch(1, 1, 10)})
	assert.Equal(t, 0, stats.MatchesPlayed, "bye must not count toward played matches")
	assert.Equal(t, 1, stats.MatchesWon)
	assert.Equal(t, 2, stats.SetsWon)
	assert.Equal(t, 3, stats.TotalPoints)
	assert.Equal(t, 0, stats.GamesWon)
}

func TestComputeStatsWalkover(t *testing.T) {
	m := walkoverMatch(1, 1, 10, 20, 10)

	winner := ComputeStats(10, []*models.Match{m})
	assert.Equal(t, models.Stats{
		MatchesPlayed: 1, MatchesWon: 1,
		SetsWon: 2, GamesWon: 12,
		TotalPoints: 3,
	}, winner)

	loser := ComputeStats(20, []*models.Match{m})
	assert.Equal(t, models.Stats{
		MatchesPlayed: 1, MatchesLost: 1,
		SetsLost: 2, GamesLost: 12,
	}, loser)
}

func TestComputeStatsIgnoresOtherMatches(t *testing.T) {
	other := completedMatch(1, 1, 30, 40, 30, []models.SetScore{{Player1: 6, Player2: 0}, {Player1: 6, Player2: 0}})
	scheduled := &models.Match{ID: 2, Round: 2, Player1ID: 10, Status: models.MatchStatusScheduled}

	assert.Equal(t, models.Stats{}, ComputeStats(10, []*models.Match{other, scheduled}))
}

func TestTableOrderingAndPositions(t *testing.T) {
	alice := player(1, "Alice")
	bob := player(2, "Bob")
	carol := player(3, "Carol")
	dave := player(4, "Dave")

	matches := []*models.Match{
		// Alice beats Bob 2-0, Carol beats Dave 2-1.
		completedMatch(1, 1, 1, 2, 1, []models.SetScore{{Player1: 6, Player2: 4}, {Player1: 6, Player2: 4}}),
		completedMatch(2, 1, 3, 4, 3, []models.SetScore{{Player1: 6, Player2: 4}, {Player1: 4, Player2: 6}, {Player1: 6, Player2: 3}}),
	}

	roster := []Entry{
		{Player: dave, Status: models.RegistrationActive},
		{Player: alice, Status: models.RegistrationActive},
		{Player: carol, Status: models.RegistrationActive},
		{Player: bob, Status: models.RegistrationActive},
	}

	rows := Table(roster, matches, false)
	require.Len(t, rows, 4)

	assert.Equal(t, "Alice", rows[0].Player.Name) // 3 points
	assert.Equal(t, "Carol", rows[1].Player.Name) // 2 points
	assert.Equal(t, "Dave", rows[2].Player.Name)  // 1 point
	assert.Equal(t, "Bob", rows[3].Player.Name)   // 0 points

	for i, row := range rows {
		assert.Equal(t, i+1, row.Position)
	}
}

func TestTableNameTieBreak(t *testing.T) {
	// Two players fully tied on points, sets and games resolve by name.
	zoe := player(1, "Zoe")
	ann := player(2, "Ann")

	matches := []*models.Match{
		completedMatch(1, 1, 1, 3, 1, []models.SetScore{{Player1: 6, Player2: 4}, {Player1: 6, Player2: 4}}),
		completedMatch(2, 1, 2, 4, 2, []models.SetScore{{Player1: 6, Player2: 4}, {Player1: 6, Player2: 4}}),
	}

	roster := []Entry{
		{Player: zoe, Status: models.RegistrationActive},
		{Player: ann, Status: models.RegistrationActive},
		{Player: player(3, "Xavier"), Status: models.RegistrationActive},
		{Player: player(4, "Yuri"), Status: models.RegistrationActive},
	}

	rows := Table(roster, matches, false)
	assert.Equal(t, "Ann", rows[0].Player.Name)
	assert.Equal(t, "Zoe", rows[1].Player.Name)
}

func TestTableDeterminism(t *testing.T) {
	roster := []Entry{
		{Player: player(1, "A"), Status: models.RegistrationActive},
		{Player: player(2, "B"), Status: models.RegistrationActive},
		{Player: player(3, "C"), Status: models.RegistrationActive},
	}
	matches := []*models.Match{
		completedMatch(1, 1, 1, 2, 1, []models.SetScore{{Player1: 6, Player2: 3}, {Player1: 6, Player2: 3}}),
	}

	first := Table(roster, matches, false)
	for i := 0; i < 10; i++ {
		again := Table(roster, matches, false)
		for j := range first {
			assert.Equal(t, first[j].Player.ID, again[j].Player.ID)
			assert.Equal(t, first[j].Stats, again[j].Stats)
		}
	}
}

func TestTableStatusTier(t *testing.T) {
	active := player(1, "Zack")
	inactive := player(2, "Abe")

	// Abe has better stats but is inactive; with the tier enabled Zack leads.
	matches := []*models.Match{
		completedMatch(1, 1, 2, 3, 2, []models.SetScore{{Player1: 6, Player2: 0}, {Player1: 6, Player2: 0}}),
		completedMatch(2, 1, 1, 4, 1, []models.SetScore{{Player1: 7, Player2: 6}, {Player1: 7, Player2: 6}}),
	}
	roster := []Entry{
		{Player: inactive, Status: models.RegistrationInactive},
		{Player: active, Status: models.RegistrationActive},
		{Player: player(3, "Ben"), Status: models.RegistrationActive},
		{Player: player(4, "Cid"), Status: models.RegistrationActive},
	}

	withTier := Table(roster, matches, true)
	assert.Equal(t, "Zack", withTier[0].Player.Name)

	withoutTier := Table(roster, matches, false)
	assert.Equal(t, "Abe", withoutTier[0].Player.Name)
}

func TestTableUnplayedRankBelowPlayed(t *testing.T) {
	played := player(1, "Played")
	idle := player(2, "Idle")
	// Played lost their only match (1 point via 1-2? no: 0-2 loss, 0 points)
	// but still ranks above a player with no matches at all.
	matches := []*models.Match{
		completedMatch(1, 1, 1, 3, 3, []models.SetScore{{Player1: 4, Player2: 6}, {Player1: 4, Player2: 6}}),
	}
	roster := []Entry{
		{Player: idle, Status: models.RegistrationActive},
		{Player: played, Status: models.RegistrationActive},
		{Player: player(3, "Winner"), Status: models.RegistrationActive},
	}

	rows := Table(roster, matches, false)
	assert.Equal(t, "Winner", rows[0].Player.Name)
	assert.Equal(t, "Played", rows[1].Player.Name)
	assert.Equal(t, "Idle", rows[2].Player.Name)
}
