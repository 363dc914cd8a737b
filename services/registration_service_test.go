package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/morhendos/tenis-del-parque/models"
)

func TestRecalculateStats(t *testing.T) {
	league := &models.League{ID: 10, Season: "2026", Status: models.LeagueStatusActive}
	leagueRepo := &stubLeagueRepo{leagues: map[int]*models.League{10: league}}

	regRepo := &stubRegistrationRepo{regs: []*models.Registration{
		{ID: 1, PlayerID: 1, LeagueID: 10, Season: "2026", Status: models.RegistrationActive,
			Stats: models.Stats{TotalPoints: 99, MatchesPlayed: 7}},
		{ID: 2, PlayerID: 2, LeagueID: 10, Season: "2026", Status: models.RegistrationActive},
	}}

	win := []models.SetScore{{Player1: 6, Player2: 4}, {Player1: 6, Player2: 2}}
	bye := scheduledMatch(1, 2)
	bye.ID = 2
	bye.Round = 2
	bye.Player2ID = nil
	bye.IsBye = true
	bye.Status = models.MatchStatusCompleted
	bye.Result = &models.MatchResult{WinnerID: 1}
	matchRepo := newStubMatchRepo(completedMatch(1, 1, 1, 2, 1, win), bye)

	svc := NewRegistrationService(nil, regRepo, leagueRepo, nil, matchRepo, nil)

	regs, err := svc.RecalculateStats(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, regs, 2)

	winner := regRepo.regs[0]
	assert.Equal(t, 1, winner.Stats.MatchesPlayed, "stale cached values are replaced")
	assert.Equal(t, 2, winner.Stats.MatchesWon)
	assert.Equal(t, 6, winner.Stats.TotalPoints)
	require.Len(t, winner.MatchHistory, 1)
	assert.Equal(t, 1, winner.MatchHistory[0].MatchID)

	loser := regRepo.regs[1]
	assert.Equal(t, 1, loser.Stats.MatchesPlayed)
	assert.Equal(t, 1, loser.Stats.MatchesLost)
	assert.Equal(t, 0, loser.Stats.TotalPoints)
}

func TestRecalculateStatsUnknownLeague(t *testing.T) {
	leagueRepo := &stubLeagueRepo{leagues: map[int]*models.League{}}
	svc := NewRegistrationService(nil, &stubRegistrationRepo{}, leagueRepo, nil, newStubMatchRepo(), nil)

	_, err := svc.RecalculateStats(context.Background(), 10)
	assert.ErrorIs(t, err, ErrNotFound)
}
