package models

import "time"

// LeagueStatus represents league lifecycle states, matching the ENUM in the DB.
type LeagueStatus string

const (
	LeagueStatusRegistration LeagueStatus = "registration"
	LeagueStatusActive       LeagueStatus = "active"
	LeagueStatusPlayoffs     LeagueStatus = "playoffs"
	LeagueStatusCompleted    LeagueStatus = "completed"
)

// League is one competition instance, scoped to a season. Playoff
// configuration is embedded; bracket slots and the frozen qualifier list are
// stored separately (see PlayoffSlot, QualifiedPlayer).
type League struct {
	ID                  int          `json:"id" db:"id"`
	Name                string       `json:"name" db:"name"`
	Season              string       `json:"season" db:"season"`
	Status              LeagueStatus `json:"status" db:"status"`
	PlayoffEnabled      bool         `json:"playoff_enabled" db:"playoff_enabled"`
	PlayoffGroups       int          `json:"playoff_groups" db:"playoff_groups"`
	PlayoffsCompletedAt *time.Time   `json:"playoffs_completed_at,omitempty" db:"playoffs_completed_at"`
	LogoKey             *string      `json:"-" db:"logo_key"`
	LogoURL             *string      `json:"logo_url,omitempty" db:"-"`
	CreatedAt           time.Time    `json:"created_at" db:"created_at"`
}
