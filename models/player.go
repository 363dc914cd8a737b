package models

import "time"

type PlayerLevel string

const (
	LevelBeginner     PlayerLevel = "beginner"
	LevelIntermediate PlayerLevel = "intermediate"
	LevelAdvanced     PlayerLevel = "advanced"
)

func (l PlayerLevel) Valid() bool {
	switch l {
	case LevelBeginner, LevelIntermediate, LevelAdvanced:
		return true
	}
	return false
}

type PlayerRole string

const (
	RoleAdmin  PlayerRole = "admin"
	RolePlayer PlayerRole = "player"
)

// Player carries the single global ELO rating shared across every league the
// player participates in. League-scoped statistics live on Registration.
type Player struct {
	ID           int         `json:"id"`
	Name         string      `json:"name"`
	Email        string      `json:"email"`
	PasswordHash string      `json:"-"`
	Role         PlayerRole  `json:"role"`
	Level        PlayerLevel `json:"level"`
	EloRating    int         `json:"elo_rating"`
	HighestElo   int         `json:"highest_elo"`
	LowestElo    int         `json:"lowest_elo"`
	PhotoKey     *string     `json:"-"`
	PhotoURL     *string     `json:"photo_url,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
}
