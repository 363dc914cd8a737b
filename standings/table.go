package standings

import (
	"sort"

	"github.com/morhendos/tenis-del-parque/models"
)

// Entry is one roster member: the player plus their registration status for
// the (league, season) being ranked.
type Entry struct {
	Player *models.Player
	Status models.RegistrationStatus
}

// Row is one line of the computed table.
type Row struct {
	Position int                       `json:"position"`
	Player   *models.Player            `json:"player"`
	Status   models.RegistrationStatus `json:"status,omitempty"`
	Stats    models.Stats              `json:"stats"`
}

// statusTier orders registration states for display ranking. Lower is better.
var statusTier = map[models.RegistrationStatus]int{
	models.RegistrationActive:    0,
	models.RegistrationConfirmed: 1,
	models.RegistrationPending:   2,
	models.RegistrationInactive:  3,
}

// Table computes the total order of a roster from raw match results.
// Precedence: (optional) status tier, has-played, total points desc, set
// differential desc, game differential desc, player name asc. The name
// tie-break makes the order fully deterministic. Playoff seeding calls this
// with includeStatusTier=false, since only active and confirmed players are
// eligible there.
func Table(roster []Entry, matches []*models.Match, includeStatusTier bool) []Row {
	rows := make([]Row, 0, len(roster))
	for _, entry := range roster {
		rows = append(rows, Row{
			Player: entry.Player,
			Status: entry.Status,
			Stats:  ComputeStats(entry.Player.ID, matches),
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]

		if includeStatusTier && statusTier[a.Status] != statusTier[b.Status] {
			return statusTier[a.Status] < statusTier[b.Status]
		}

		aPlayed := a.Stats.MatchesPlayed > 0
		bPlayed := b.Stats.MatchesPlayed > 0
		if aPlayed != bPlayed {
			return aPlayed
		}

		if a.Stats.TotalPoints != b.Stats.TotalPoints {
			return a.Stats.TotalPoints > b.Stats.TotalPoints
		}

		aSetDiff := a.Stats.SetsWon - a.Stats.SetsLost
		bSetDiff := b.Stats.SetsWon - b.Stats.SetsLost
		if aSetDiff != bSetDiff {
			return aSetDiff > bSetDiff
		}

		aGameDiff := a.Stats.GamesWon - a.Stats.GamesLost
		bGameDiff := b.Stats.GamesWon - b.Stats.GamesLost
		if aGameDiff != bGameDiff {
			return aGameDiff > bGameDiff
		}

		return a.Player.Name < b.Player.Name
	})

	for i := range rows {
		rows[i].Position = i + 1
	}
	return rows
}
