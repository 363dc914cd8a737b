// Package swiss generates next-round pairings for the regular season. The
// generator is greedy, not globally optimal: it pairs inside score groups,
// avoids rematches while it can, and degrades to a flagged rematch instead of
// ever leaving a player unpaired.
package swiss

import (
	"errors"
	"fmt"
	"sort"

	"github.com/morhendos/tenis-del-parque/models"
	"github.com/morhendos/tenis-del-parque/standings"
)

var (
	ErrNoPlayers       = errors.New("no players to pair")
	ErrDuplicatePlayer = errors.New("player appears in more than one pairing")
	ErrSelfPairing     = errors.New("player paired against themself")
)

// Pairing is one proposed match for the round.
type Pairing struct {
	Player1   *models.Player `json:"player1"`
	Player2   *models.Player `json:"player2"`
	Round     int            `json:"round"`
	IsRematch bool           `json:"is_rematch,omitempty"`
}

type Summary struct {
	TotalMatches int    `json:"totalMatches"`
	Rematches    int    `json:"rematches"`
	ByePlayer    string `json:"byePlayer,omitempty"`
}

type Result struct {
	Pairings []Pairing      `json:"pairings"`
	Bye      *models.Player `json:"bye,omitempty"`
	Summary  Summary        `json:"summary"`
}

// Quality penalty weights. Lower total is better; usable to compare
// alternative pairing sets for the same round.
const (
	rematchPenalty       = 1000
	levelMismatchPenalty = 200
)

// GeneratePairings emits the next round's matchups plus an optional bye.
//
// Steps: rank players by (wins desc, rating desc); if the count is odd, give
// the bye to the lowest-ranked player who has never had one (or the current
// lowest if all have); partition the rest into win-count score groups; pair
// greedily inside each group avoiding prior opponents; pair whatever is left
// across group boundaries in ranking order, flagging unavoidable rematches.
func GeneratePairings(players []*models.Player, priorMatches []*models.Match, round int) (*Result, error) {
	if len(players) == 0 {
		return nil, ErrNoPlayers
	}

	wins := make(map[int]int, len(players))
	for _, p := range players {
		wins[p.ID] = standings.ComputeStats(p.ID, priorMatches).MatchesWon
	}
	opponents := opponentHistory(priorMatches)
	hadBye := byeHistory(priorMatches)

	ranked := make([]*models.Player, len(players))
	copy(ranked, players)
	sort.SliceStable(ranked, func(i, j int) bool {
		if wins[ranked[i].ID] != wins[ranked[j].ID] {
			return wins[ranked[i].ID] > wins[ranked[j].ID]
		}
		return ranked[i].EloRating > ranked[j].EloRating
	})

	result := &Result{}

	if len(ranked)%2 == 1 {
		byeIdx := len(ranked) - 1
		for i := len(ranked) - 1; i >= 0; i-- {
			if !hadBye[ranked[i].ID] {
				byeIdx = i
				break
			}
		}
		result.Bye = ranked[byeIdx]
		ranked = append(ranked[:byeIdx:byeIdx], ranked[byeIdx+1:]...)
	}

	// Score groups keyed by win count, highest group first. Group order
	// within a win count follows the overall ranking.
	var groupKeys []int
	groups := make(map[int][]*models.Player)
	for _, p := range ranked {
		w := wins[p.ID]
		if _, ok := groups[w]; !ok {
			groupKeys = append(groupKeys, w)
		}
		groups[w] = append(groups[w], p)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(groupKeys)))

	paired := make(map[int]bool, len(ranked))
	var leftovers []*models.Player

	for _, key := range groupKeys {
		group := groups[key]
		for i, p1 := range group {
			if paired[p1.ID] {
				continue
			}
			for _, p2 := range group[i+1:] {
				if paired[p2.ID] || opponents[p1.ID][p2.ID] {
					continue
				}
				result.Pairings = append(result.Pairings, Pairing{Player1: p1, Player2: p2, Round: round})
				paired[p1.ID] = true
				paired[p2.ID] = true
				break
			}
		}
	}

	for _, p := range ranked {
		if !paired[p.ID] {
			leftovers = append(leftovers, p)
		}
	}

	// Cross-group fallback: pair leftovers in ranking order. A rematch here
	// is allowed and flagged rather than failing the round.
	for i := 0; i+1 < len(leftovers); i += 2 {
		p1, p2 := leftovers[i], leftovers[i+1]
		result.Pairings = append(result.Pairings, Pairing{
			Player1:   p1,
			Player2:   p2,
			Round:     round,
			IsRematch: opponents[p1.ID][p2.ID],
		})
	}

	result.Summary.TotalMatches = len(result.Pairings)
	for _, p := range result.Pairings {
		if p.IsRematch {
			result.Summary.Rematches++
		}
	}
	if result.Bye != nil {
		result.Summary.ByePlayer = result.Bye.Name
	}

	if err := ValidatePairings(result.Pairings); err != nil {
		return nil, err
	}
	return result, nil
}

// ValidatePairings rejects pairing sets where a player appears twice or is
// paired against themself.
func ValidatePairings(pairings []Pairing) error {
	seen := make(map[int]bool, len(pairings)*2)
	for _, p := range pairings {
		if p.Player1.ID == p.Player2.ID {
			return fmt.Errorf("%w: player %d", ErrSelfPairing, p.Player1.ID)
		}
		for _, id := range []int{p.Player1.ID, p.Player2.ID} {
			if seen[id] {
				return fmt.Errorf("%w: player %d", ErrDuplicatePlayer, id)
			}
			seen[id] = true
		}
	}
	return nil
}

// Quality scores a pairing set: rematch penalty plus ELO-gap penalty plus
// level-mismatch penalty. Lower is better.
func Quality(pairings []Pairing) int {
	score := 0
	for _, p := range pairings {
		if p.IsRematch {
			score += rematchPenalty
		}
		gap := p.Player1.EloRating - p.Player2.EloRating
		if gap < 0 {
			gap = -gap
		}
		score += gap
		score += levelDistance(p.Player1.Level, p.Player2.Level) * levelMismatchPenalty
	}
	return score
}

var levelOrder = map[models.PlayerLevel]int{
	models.LevelBeginner:     0,
	models.LevelIntermediate: 1,
	models.LevelAdvanced:     2,
}

func levelDistance(a, b models.PlayerLevel) int {
	d := levelOrder[a] - levelOrder[b]
	if d < 0 {
		return -d
	}
	return d
}

// opponentHistory builds the per-player set of prior opponents from all
// completed non-bye matches.
func opponentHistory(matches []*models.Match) map[int]map[int]bool {
	history := make(map[int]map[int]bool)
	add := func(a, b int) {
		if history[a] == nil {
			history[a] = make(map[int]bool)
		}
		history[a][b] = true
	}
	for _, m := range matches {
		if m.IsBye || m.Player2ID == nil || m.Status == models.MatchStatusCancelled {
			continue
		}
		add(m.Player1ID, *m.Player2ID)
		add(*m.Player2ID, m.Player1ID)
	}
	return history
}

func byeHistory(matches []*models.Match) map[int]bool {
	byes := make(map[int]bool)
	for _, m := range matches {
		if m.IsBye {
			byes[m.Player1ID] = true
		}
	}
	return byes
}
