package models

type PlayoffStage string

const (
	StageQuarterfinal PlayoffStage = "quarterfinal"
	StageSemifinal    PlayoffStage = "semifinal"
	StageFinal        PlayoffStage = "final"
	StageThirdPlace   PlayoffStage = "third_place"
)

// SlotState makes the bracket slot lifecycle explicit: a winner without a
// match is unrepresentable.
type SlotState string

const (
	SlotEmpty     SlotState = "empty"
	SlotScheduled SlotState = "scheduled"
	SlotCompleted SlotState = "completed"
)

// QualifiedPlayer is one row of the frozen qualification snapshot captured at
// playoff initialization. Seeds and the stats snapshot never change afterwards,
// even if regular-season matches are later edited.
type QualifiedPlayer struct {
	LeagueID int   `json:"league_id"`
	Group    int   `json:"group"`
	Seed     int   `json:"seed"`
	PlayerID int   `json:"player_id"`
	Position int   `json:"position"`
	Snapshot Stats `json:"snapshot"`

	Player *Player `json:"player,omitempty"`
}

// PlayoffSlot is one node of a group's bracket. Quarterfinal slots carry the
// seed pair; semifinal slots reference the two quarterfinal slot indices that
// feed them. Final and third-place slots are fed by both semifinals.
type PlayoffSlot struct {
	ID       int          `json:"id"`
	LeagueID int          `json:"league_id"`
	Group    int          `json:"group"`
	Stage    PlayoffStage `json:"stage"`
	Index    int          `json:"index"`
	Seed1    *int         `json:"seed1,omitempty"`
	Seed2    *int         `json:"seed2,omitempty"`
	Source1  *int         `json:"source1,omitempty"`
	Source2  *int         `json:"source2,omitempty"`
	MatchID  *int         `json:"match_id,omitempty"`
	WinnerID *int         `json:"winner_id,omitempty"`
	State    SlotState    `json:"state"`
}
