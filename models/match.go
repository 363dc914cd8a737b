package models

import "time"

type MatchStatus string

const (
	MatchStatusScheduled MatchStatus = "scheduled"
	MatchStatusCompleted MatchStatus = "completed"
	MatchStatusCancelled MatchStatus = "cancelled"
	MatchStatusPostponed MatchStatus = "postponed"
)

type MatchType string

const (
	MatchTypeRegular MatchType = "regular"
	MatchTypePlayoff MatchType = "playoff"
)

// SetScore is one set, games per side from player1's perspective.
type SetScore struct {
	Player1 int `json:"player1"`
	Player2 int `json:"player2"`
}

// EloSnapshot is the immutable audit record of the rating applied to one side
// of a completed match. It is never recomputed after the fact; the only legal
// edit is an explicit admin reversal.
type EloSnapshot struct {
	Before int `json:"before"`
	After  int `json:"after"`
	Change int `json:"change"`
}

type MatchResult struct {
	WinnerID        int        `json:"winner_id"`
	Sets            []SetScore `json:"sets"`
	Walkover        bool       `json:"walkover"`
	RetiredPlayerID *int       `json:"retired_player_id,omitempty"`
}

type Schedule struct {
	ProposedDate  *time.Time `json:"proposed_date,omitempty"`
	ConfirmedDate *time.Time `json:"confirmed_date,omitempty"`
	Venue         *string    `json:"venue,omitempty"`
	Deadline      *time.Time `json:"deadline,omitempty"`
}

type PlayoffInfo struct {
	Group int          `json:"group"`
	Stage PlayoffStage `json:"stage"`
}

// Match belongs to exactly one (league, season, round). A bye is a degenerate
// match with Player2ID nil and an auto-win for player1.
type Match struct {
	ID        int          `json:"id"`
	LeagueID  int          `json:"league_id"`
	Season    string       `json:"season"`
	Round     int          `json:"round"`
	Player1ID int          `json:"player1_id"`
	Player2ID *int         `json:"player2_id,omitempty"`
	Status    MatchStatus  `json:"status"`
	Type      MatchType    `json:"match_type"`
	IsBye     bool         `json:"is_bye"`
	Playoff   *PlayoffInfo `json:"playoff,omitempty"`
	Schedule  Schedule     `json:"schedule"`
	Result    *MatchResult `json:"result,omitempty"`
	Elo1      *EloSnapshot `json:"elo_player1,omitempty"`
	Elo2      *EloSnapshot `json:"elo_player2,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}

// Involves reports whether the given player is one of the match's two slots.
func (m *Match) Involves(playerID int) bool {
	if m.Player1ID == playerID {
		return true
	}
	return m.Player2ID != nil && *m.Player2ID == playerID
}

// Opponent returns the other player's id, nil for a bye.
func (m *Match) Opponent(playerID int) *int {
	if m.Player1ID == playerID {
		return m.Player2ID
	}
	id := m.Player1ID
	return &id
}
