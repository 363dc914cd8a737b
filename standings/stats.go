// Package standings is the single authoritative source of player rankings.
// Every ranking need in the system (season display, dashboards, playoff
// seeding) goes through Table; divergent copies are a correctness bug.
package standings

import (
	"github.com/morhendos/tenis-del-parque/models"
	"github.com/morhendos/tenis-del-parque/scoring"
)

// ComputeStats derives a player's league statistics from a match set. Only
// completed matches involving the player count. Byes award a free win worth
// 3 points and a virtual 2-0 set score but are excluded from MatchesPlayed,
// so they do not feed eligibility thresholds. A third-set super-tiebreak
// counts as exactly one game for its winner to avoid game-differential
// distortion.
func ComputeStats(playerID int, matches []*models.Match) models.Stats {
	var stats models.Stats

	for _, m := range matches {
		if m.Status != models.MatchStatusCompleted || m.Result == nil || !m.Involves(playerID) {
			continue
		}

		won := m.Result.WinnerID == playerID

		if m.IsBye || m.Player2ID == nil {
			if won {
				stats.MatchesWon++
				stats.SetsWon += scoring.WalkoverSetsWon
				stats.TotalPoints += scoring.WalkoverPoints
			}
			continue
		}

		stats.MatchesPlayed++
		if won {
			stats.MatchesWon++
		} else {
			stats.MatchesLost++
		}

		if m.Result.Walkover {
			if won {
				stats.SetsWon += scoring.WalkoverSetsWon
				stats.GamesWon += scoring.WalkoverWinnerGames
				stats.TotalPoints += scoring.WalkoverPoints
			} else {
				stats.SetsLost += scoring.WalkoverSetsWon
				stats.GamesLost += scoring.WalkoverWinnerGames
			}
			continue
		}

		isPlayer1 := m.Player1ID == playerID
		for i, set := range m.Result.Sets {
			mine, theirs := set.Player1, set.Player2
			if !isPlayer1 {
				mine, theirs = theirs, mine
			}

			if i == 2 && scoring.IsSuperTiebreak(set) {
				// One game-equivalent for the winner, not raw points.
				if mine > theirs {
					mine, theirs = 1, 0
				} else {
					mine, theirs = 0, 1
				}
			}

			stats.GamesWon += mine
			stats.GamesLost += theirs
			if mine > theirs {
				stats.SetsWon++
			} else {
				stats.SetsLost++
			}
		}

		p1Sets, p2Sets := scoring.SetsWon(m.Result.Sets)
		if isPlayer1 {
			stats.TotalPoints += scoring.MatchPoints(p1Sets, p2Sets)
		} else {
			stats.TotalPoints += scoring.MatchPoints(p2Sets, p1Sets)
		}
	}

	return stats
}
