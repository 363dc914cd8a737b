package models

import "time"

type RegistrationStatus string

const (
	RegistrationActive    RegistrationStatus = "active"
	RegistrationConfirmed RegistrationStatus = "confirmed"
	RegistrationPending   RegistrationStatus = "pending"
	RegistrationInactive  RegistrationStatus = "inactive"
)

// Stats is the per-player, per-league statistics block. On Registration it is
// a cached projection of the match log; the standings package recomputes the
// authoritative version from completed matches.
type Stats struct {
	MatchesPlayed int `json:"matchesPlayed"`
	MatchesWon    int `json:"matchesWon"`
	MatchesLost   int `json:"matchesLost"`
	SetsWon       int `json:"setsWon"`
	SetsLost      int `json:"setsLost"`
	GamesWon      int `json:"gamesWon"`
	GamesLost     int `json:"gamesLost"`
	TotalPoints   int `json:"totalPoints"`
}

// MatchHistoryLimit bounds the per-registration history log. Older entries
// fall off; the matches table remains the full record.
const MatchHistoryLimit = 10

type MatchHistoryEntry struct {
	MatchID    int       `json:"match_id"`
	Round      int       `json:"round"`
	OpponentID *int      `json:"opponent_id,omitempty"`
	Won        bool      `json:"won"`
	Score      string    `json:"score"`
	Points     int       `json:"points"`
	Date       time.Time `json:"date"`
}

// Registration binds a player to one (league, season) pair.
type Registration struct {
	ID           int                 `json:"id"`
	PlayerID     int                 `json:"player_id"`
	LeagueID     int                 `json:"league_id"`
	Season       string              `json:"season"`
	Status       RegistrationStatus  `json:"status"`
	Stats        Stats               `json:"stats"`
	MatchHistory []MatchHistoryEntry `json:"match_history,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`

	// Optional linked data, populated by services.
	Player *Player `json:"player,omitempty"`
}
