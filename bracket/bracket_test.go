package bracket

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/morhendos/tenis-del-parque/models"
)

func qualifiers(group int) []*models.QualifiedPlayer {
	out := make([]*models.QualifiedPlayer, 0, BracketSize)
	for seed := 1; seed <= BracketSize; seed++ {
		out = append(out, &models.QualifiedPlayer{
			LeagueID: 1,
			Group:    group,
			Seed:     seed,
			PlayerID: 100 + seed,
			Position: seed,
		})
	}
	return out
}

// attach simulates the playoff service creating a match for a slot.
func attach(slot *models.PlayoffSlot, matchID int) {
	id := matchID
	slot.MatchID = &id
	slot.State = models.SlotScheduled
}

func TestSeedSlotsTemplate(t *testing.T) {
	slots := SeedSlots(1, 1)
	require.Len(t, slots, 8)

	wantPairs := [][2]int{{1, 8}, {4, 5}, {3, 6}, {2, 7}}
	for i, want := range wantPairs {
		s := slots[i]
		assert.Equal(t, models.StageQuarterfinal, s.Stage)
		assert.Equal(t, want[0], *s.Seed1)
		assert.Equal(t, want[1], *s.Seed2)
		assert.Equal(t, models.SlotEmpty, s.State)
	}

	sf1, sf2 := slots[4], slots[5]
	assert.Equal(t, models.StageSemifinal, sf1.Stage)
	assert.Equal(t, 0, *sf1.Source1)
	assert.Equal(t, 1, *sf1.Source2)
	assert.Equal(t, 2, *sf2.Source1)
	assert.Equal(t, 3, *sf2.Source2)

	assert.Equal(t, models.StageFinal, slots[6].Stage)
	assert.Equal(t, models.StageThirdPlace, slots[7].Stage)
}

func TestQuarterfinalOpponents(t *testing.T) {
	pairs, err := QuarterfinalOpponents(qualifiers(1))
	require.NoError(t, err)
	require.Len(t, pairs, 4)

	assert.Equal(t, 101, pairs[0][0].PlayerID) // seed 1
	assert.Equal(t, 108, pairs[0][1].PlayerID) // seed 8
	assert.Equal(t, 104, pairs[1][0].PlayerID)
	assert.Equal(t, 105, pairs[1][1].PlayerID)
	assert.Equal(t, 103, pairs[2][0].PlayerID)
	assert.Equal(t, 106, pairs[2][1].PlayerID)
	assert.Equal(t, 102, pairs[3][0].PlayerID)
	assert.Equal(t, 107, pairs[3][1].PlayerID)

	_, err = QuarterfinalOpponents(qualifiers(1)[:7])
	assert.Error(t, err)
}

func TestFullProgression(t *testing.T) {
	slots := SeedSlots(1, 1)
	for i := 0; i < 4; i++ {
		attach(slots[i], 10+i)
	}

	// Nothing is due while quarterfinals are open.
	assert.Empty(t, DueMatches(slots))

	// Higher seed wins every quarterfinal: 1, 4, 3, 2 advance.
	winners := []int{101, 104, 103, 102}
	for i, w := range winners {
		_, err := RecordWinner(slots, 10+i, w)
		require.NoError(t, err)
	}

	due := DueMatches(slots)
	require.Len(t, due, 2)
	assert.Equal(t, models.StageSemifinal, due[0].Stage)
	assert.Equal(t, 101, due[0].Player1ID)
	assert.Equal(t, 104, due[0].Player2ID)
	assert.Equal(t, 103, due[1].Player1ID)
	assert.Equal(t, 102, due[1].Player2ID)

	attach(due[0].Slot, 20)
	attach(due[1].Slot, 21)

	// Exactly two semifinals exist; nothing further due yet.
	assert.Empty(t, DueMatches(slots))

	_, err := RecordWinner(slots, 20, 101)
	require.NoError(t, err)
	_, err = RecordWinner(slots, 21, 102)
	require.NoError(t, err)

	due = DueMatches(slots)
	require.Len(t, due, 2)

	final, third := due[0], due[1]
	assert.Equal(t, models.StageFinal, final.Stage)
	assert.Equal(t, 101, final.Player1ID)
	assert.Equal(t, 102, final.Player2ID)

	// Third place pairs the semifinal losers.
	assert.Equal(t, models.StageThirdPlace, third.Stage)
	assert.Equal(t, 104, third.Player1ID)
	assert.Equal(t, 103, third.Player2ID)

	attach(final.Slot, 30)
	attach(third.Slot, 31)
	assert.False(t, GroupComplete(slots))

	_, err = RecordWinner(slots, 30, 101)
	require.NoError(t, err)
	_, err = RecordWinner(slots, 31, 103)
	require.NoError(t, err)

	assert.True(t, GroupComplete(slots))
}

func TestDueMatchesIdempotent(t *testing.T) {
	slots := SeedSlots(1, 1)
	for i := 0; i < 4; i++ {
		attach(slots[i], 10+i)
	}
	for i, w := range []int{101, 104, 103, 102} {
		_, err := RecordWinner(slots, 10+i, w)
		require.NoError(t, err)
	}

	first := DueMatches(slots)
	require.Len(t, first, 2)
	attach(first[0].Slot, 20)
	attach(first[1].Slot, 21)

	// Running progression again after the same two quarterfinal winners must
	// create no additional semifinal.
	assert.Empty(t, DueMatches(slots))
}

func TestRecordWinnerStateErrors(t *testing.T) {
	slots := SeedSlots(1, 1)
	attach(slots[0], 10)

	_, err := RecordWinner(slots, 99, 101)
	assert.ErrorIs(t, err, ErrSlotNotFound)

	_, err = RecordWinner(slots, 10, 101)
	require.NoError(t, err)

	// Same winner again is a no-op.
	_, err = RecordWinner(slots, 10, 101)
	assert.NoError(t, err)

	// A different winner on a decided slot is a state error.
	_, err = RecordWinner(slots, 10, 108)
	assert.ErrorIs(t, err, ErrSlotAlreadyWon)
}

func TestSlotBySeeds(t *testing.T) {
	slots := SeedSlots(1, 1)

	assert.Equal(t, slots[0], SlotBySeeds(slots, 1, 8))
	assert.Equal(t, slots[0], SlotBySeeds(slots, 8, 1))
	assert.Equal(t, slots[3], SlotBySeeds(slots, 2, 7))
	assert.Nil(t, SlotBySeeds(slots, 1, 2))
}

func TestStage(t *testing.T) {
	slots := SeedSlots(1, 1)
	assert.Equal(t, models.StageQuarterfinal, Stage(slots))

	for i := 0; i < 4; i++ {
		attach(slots[i], 10+i)
	}
	for i, w := range []int{101, 104, 103, 102} {
		_, err := RecordWinner(slots, 10+i, w)
		require.NoError(t, err)
	}
	assert.Equal(t, models.StageSemifinal, Stage(slots))
}
