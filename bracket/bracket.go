// Package bracket is the playoff state machine core. It operates on slot
// lists only; persistence and match creation belong to the playoff service.
// Every operation is idempotent or safely retryable, so a reconciliation pass
// can repair a bracket from any observed state.
package bracket

import (
	"errors"
	"fmt"

	"github.com/morhendos/tenis-del-parque/models"
)

var (
	ErrSlotNotFound      = errors.New("bracket slot not found")
	ErrSlotNotScheduled  = errors.New("bracket slot has no scheduled match")
	ErrSlotAlreadyWon    = errors.New("bracket slot already has a winner")
	ErrIncompleteSources = errors.New("bracket slot sources are not complete")
)

// BracketSize is the number of qualifiers per group.
const BracketSize = 8

// qfSeedPairs is the fixed quarterfinal template: 1v8, 4v5, 3v6, 2v7. QF0 and
// QF1 feed SF0, QF2 and QF3 feed SF1, so the top seed can only meet the
// second seed in the final.
var qfSeedPairs = [4][2]int{{1, 8}, {4, 5}, {3, 6}, {2, 7}}

// sfSources links each semifinal to the quarterfinal slot indices feeding it.
var sfSources = [2][2]int{{0, 1}, {2, 3}}

// SeedSlots builds the empty slot set for one group: four quarterfinals with
// their seed pairs, two linked semifinals, a final and a third-place slot.
func SeedSlots(leagueID, group int) []*models.PlayoffSlot {
	slots := make([]*models.PlayoffSlot, 0, 8)
	for i, pair := range qfSeedPairs {
		s1, s2 := pair[0], pair[1]
		slots = append(slots, &models.PlayoffSlot{
			LeagueID: leagueID,
			Group:    group,
			Stage:    models.StageQuarterfinal,
			Index:    i,
			Seed1:    &s1,
			Seed2:    &s2,
			State:    models.SlotEmpty,
		})
	}
	for i, src := range sfSources {
		a, b := src[0], src[1]
		slots = append(slots, &models.PlayoffSlot{
			LeagueID: leagueID,
			Group:    group,
			Stage:    models.StageSemifinal,
			Index:    i,
			Source1:  &a,
			Source2:  &b,
			State:    models.SlotEmpty,
		})
	}
	slots = append(slots,
		&models.PlayoffSlot{LeagueID: leagueID, Group: group, Stage: models.StageFinal, State: models.SlotEmpty},
		&models.PlayoffSlot{LeagueID: leagueID, Group: group, Stage: models.StageThirdPlace, State: models.SlotEmpty},
	)
	return slots
}

// QuarterfinalOpponents maps seeds to qualified players for initial match
// creation, in slot order.
func QuarterfinalOpponents(qualifiers []*models.QualifiedPlayer) ([][2]*models.QualifiedPlayer, error) {
	bySeed := make(map[int]*models.QualifiedPlayer, len(qualifiers))
	for _, q := range qualifiers {
		bySeed[q.Seed] = q
	}
	out := make([][2]*models.QualifiedPlayer, 0, len(qfSeedPairs))
	for _, pair := range qfSeedPairs {
		q1, ok1 := bySeed[pair[0]]
		q2, ok2 := bySeed[pair[1]]
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("missing qualifier for seeds %dv%d", pair[0], pair[1])
		}
		out = append(out, [2]*models.QualifiedPlayer{q1, q2})
	}
	return out, nil
}

// SlotByMatch locates the slot holding a match id.
func SlotByMatch(slots []*models.PlayoffSlot, matchID int) *models.PlayoffSlot {
	for _, s := range slots {
		if s.MatchID != nil && *s.MatchID == matchID {
			return s
		}
	}
	return nil
}

// SlotBySeeds locates a quarterfinal slot by its seed pair, in either order.
// Needed before a slot has a match id attached.
func SlotBySeeds(slots []*models.PlayoffSlot, seedA, seedB int) *models.PlayoffSlot {
	for _, s := range slots {
		if s.Stage != models.StageQuarterfinal || s.Seed1 == nil || s.Seed2 == nil {
			continue
		}
		if (*s.Seed1 == seedA && *s.Seed2 == seedB) || (*s.Seed1 == seedB && *s.Seed2 == seedA) {
			return s
		}
	}
	return nil
}

// RecordWinner marks the slot holding matchID as completed with the given
// winner. Recording the same winner twice is a no-op; recording a different
// winner on a decided slot is a state error.
func RecordWinner(slots []*models.PlayoffSlot, matchID, winnerID int) (*models.PlayoffSlot, error) {
	slot := SlotByMatch(slots, matchID)
	if slot == nil {
		return nil, fmt.Errorf("%w: match %d", ErrSlotNotFound, matchID)
	}
	if slot.State == models.SlotCompleted {
		if slot.WinnerID != nil && *slot.WinnerID == winnerID {
			return slot, nil
		}
		return nil, fmt.Errorf("%w: match %d", ErrSlotAlreadyWon, matchID)
	}
	if slot.State != models.SlotScheduled {
		return nil, fmt.Errorf("%w: match %d", ErrSlotNotScheduled, matchID)
	}
	slot.WinnerID = &winnerID
	slot.State = models.SlotCompleted
	return slot, nil
}

// Due is a next-stage match that should exist but has no match yet.
type Due struct {
	Slot      *models.PlayoffSlot
	Stage     models.PlayoffStage
	Player1ID int
	Player2ID int
}

// DueMatches returns every next-stage match whose feeder slots are decided
// and whose own slot has no match attached. Calling it again after creation
// returns nothing for those slots, which is what makes auto-progression
// idempotent. The third-place participants are the semifinal losers, derived
// by diffing each semifinal's two players against its recorded winner.
func DueMatches(slots []*models.PlayoffSlot) []Due {
	var due []Due

	for _, s := range slots {
		if s.Stage != models.StageSemifinal || s.MatchID != nil {
			continue
		}
		p1, p2, ok := semifinalParticipants(slots, s)
		if ok {
			due = append(due, Due{Slot: s, Stage: models.StageSemifinal, Player1ID: p1, Player2ID: p2})
		}
	}

	sf1 := findSlot(slots, models.StageSemifinal, 0)
	sf2 := findSlot(slots, models.StageSemifinal, 1)
	if sf1 == nil || sf2 == nil || sf1.WinnerID == nil || sf2.WinnerID == nil {
		return due
	}

	if final := findSlot(slots, models.StageFinal, 0); final != nil && final.MatchID == nil {
		due = append(due, Due{Slot: final, Stage: models.StageFinal, Player1ID: *sf1.WinnerID, Player2ID: *sf2.WinnerID})
	}
	if third := findSlot(slots, models.StageThirdPlace, 0); third != nil && third.MatchID == nil {
		l1, ok1 := semifinalLoser(slots, sf1)
		l2, ok2 := semifinalLoser(slots, sf2)
		if ok1 && ok2 {
			due = append(due, Due{Slot: third, Stage: models.StageThirdPlace, Player1ID: l1, Player2ID: l2})
		}
	}
	return due
}

// GroupComplete reports whether both the final and the third-place match of a
// group have recorded winners.
func GroupComplete(slots []*models.PlayoffSlot) bool {
	final := findSlot(slots, models.StageFinal, 0)
	third := findSlot(slots, models.StageThirdPlace, 0)
	return final != nil && final.WinnerID != nil && third != nil && third.WinnerID != nil
}

// Stage returns the group's current phase for display: quarterfinals until
// all four QF winners exist, then semifinals, then final/third place, then
// done once GroupComplete.
func Stage(slots []*models.PlayoffSlot) models.PlayoffStage {
	if GroupComplete(slots) {
		return models.StageFinal
	}
	qfDone := 0
	for _, s := range slots {
		if s.Stage == models.StageQuarterfinal && s.WinnerID != nil {
			qfDone++
		}
	}
	if qfDone < 4 {
		return models.StageQuarterfinal
	}
	sfDone := 0
	for _, s := range slots {
		if s.Stage == models.StageSemifinal && s.WinnerID != nil {
			sfDone++
		}
	}
	if sfDone < 2 {
		return models.StageSemifinal
	}
	return models.StageFinal
}

func findSlot(slots []*models.PlayoffSlot, stage models.PlayoffStage, index int) *models.PlayoffSlot {
	for _, s := range slots {
		if s.Stage == stage && s.Index == index {
			return s
		}
	}
	return nil
}

func semifinalParticipants(slots []*models.PlayoffSlot, sf *models.PlayoffSlot) (int, int, bool) {
	if sf.Source1 == nil || sf.Source2 == nil {
		return 0, 0, false
	}
	qf1 := findSlot(slots, models.StageQuarterfinal, *sf.Source1)
	qf2 := findSlot(slots, models.StageQuarterfinal, *sf.Source2)
	if qf1 == nil || qf2 == nil || qf1.WinnerID == nil || qf2.WinnerID == nil {
		return 0, 0, false
	}
	return *qf1.WinnerID, *qf2.WinnerID, true
}

// semifinalLoser derives the losing player of a decided semifinal: the
// semifinal's participants are its source quarterfinals' winners, minus the
// semifinal's own winner.
func semifinalLoser(slots []*models.PlayoffSlot, sf *models.PlayoffSlot) (int, bool) {
	if sf.WinnerID == nil {
		return 0, false
	}
	p1, p2, ok := semifinalParticipants(slots, sf)
	if !ok {
		return 0, false
	}
	if *sf.WinnerID == p1 {
		return p2, true
	}
	return p1, true
}
