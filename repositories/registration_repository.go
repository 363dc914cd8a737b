package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/morhendos/tenis-del-parque/models"
)

var (
	ErrRegistrationNotFound  = errors.New("registration not found")
	ErrRegistrationConflict  = errors.New("player already registered for this league and season")
	ErrRegistrationBadPlayer = errors.New("registration references an unknown player or league")
)

type RegistrationRepository interface {
	Create(ctx context.Context, reg *models.Registration) error
	GetByPlayerAndLeague(ctx context.Context, playerID, leagueID int, season string) (*models.Registration, error)
	ListByLeague(ctx context.Context, leagueID int, season string) ([]*models.Registration, error)
	UpdateStatus(ctx context.Context, id int, status models.RegistrationStatus) error
	UpdateStatsAndHistory(ctx context.Context, exec SQLExecutor, id int, stats models.Stats, history []models.MatchHistoryEntry) error
}

type postgresRegistrationRepository struct {
	db *sql.DB
}

func NewPostgresRegistrationRepository(db *sql.DB) RegistrationRepository {
	return &postgresRegistrationRepository{db: db}
}

const registrationColumns = `
	id, player_id, league_id, season, status,
	matches_played, matches_won, matches_lost, sets_won, sets_lost,
	games_won, games_lost, total_points, match_history, created_at`

func (r *postgresRegistrationRepository) Create(ctx context.Context, reg *models.Registration) error {
	historyJSON, err := json.Marshal(reg.MatchHistory)
	if err != nil {
		return fmt.Errorf("failed to marshal match history: %w", err)
	}

	query := `
		INSERT INTO registrations (player_id, league_id, season, status, match_history)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err = r.db.QueryRowContext(ctx, query,
		reg.PlayerID, reg.LeagueID, reg.Season, reg.Status, historyJSON,
	).Scan(&reg.ID, &reg.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Constraint {
			case "registrations_player_league_season_key":
				return ErrRegistrationConflict
			case "registrations_player_id_fkey", "registrations_league_id_fkey":
				return ErrRegistrationBadPlayer
			}
		}
		return fmt.Errorf("failed to create registration: %w", err)
	}
	return nil
}

func (r *postgresRegistrationRepository) scanRegistration(row interface{ Scan(...interface{}) error }) (*models.Registration, error) {
	reg := &models.Registration{}
	var historyJSON []byte
	err := row.Scan(
		&reg.ID, &reg.PlayerID, &reg.LeagueID, &reg.Season, &reg.Status,
		&reg.Stats.MatchesPlayed, &reg.Stats.MatchesWon, &reg.Stats.MatchesLost,
		&reg.Stats.SetsWon, &reg.Stats.SetsLost,
		&reg.Stats.GamesWon, &reg.Stats.GamesLost, &reg.Stats.TotalPoints,
		&historyJSON, &reg.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRegistrationNotFound
		}
		return nil, fmt.Errorf("failed to scan registration: %w", err)
	}
	if len(historyJSON) > 0 {
		if err := json.Unmarshal(historyJSON, &reg.MatchHistory); err != nil {
			return nil, fmt.Errorf("failed to unmarshal match history: %w", err)
		}
	}
	return reg, nil
}

func (r *postgresRegistrationRepository) GetByPlayerAndLeague(ctx context.Context, playerID, leagueID int, season string) (*models.Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM registrations WHERE player_id = $1 AND league_id = $2 AND season = $3`
	return r.scanRegistration(r.db.QueryRowContext(ctx, query, playerID, leagueID, season))
}

func (r *postgresRegistrationRepository) ListByLeague(ctx context.Context, leagueID int, season string) ([]*models.Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM registrations WHERE league_id = $1 AND season = $2 ORDER BY id ASC`
	rows, err := r.db.QueryContext(ctx, query, leagueID, season)
	if err != nil {
		return nil, fmt.Errorf("failed to query registrations for league %d: %w", leagueID, err)
	}
	defer rows.Close()

	regs := make([]*models.Registration, 0)
	for rows.Next() {
		reg, scanErr := r.scanRegistration(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		regs = append(regs, reg)
	}
	return regs, rows.Err()
}

func (r *postgresRegistrationRepository) UpdateStatus(ctx context.Context, id int, status models.RegistrationStatus) error {
	query := `UPDATE registrations SET status = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrRegistrationNotFound)
}

// UpdateStatsAndHistory rewrites the cached stats projection and the bounded
// history log in one statement; called from inside the result transaction.
func (r *postgresRegistrationRepository) UpdateStatsAndHistory(ctx context.Context, exec SQLExecutor, id int, stats models.Stats, history []models.MatchHistoryEntry) error {
	historyJSON, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("failed to marshal match history: %w", err)
	}

	query := `
		UPDATE registrations SET
			matches_played = $1, matches_won = $2, matches_lost = $3,
			sets_won = $4, sets_lost = $5, games_won = $6, games_lost = $7,
			total_points = $8, match_history = $9
		WHERE id = $10`

	result, err := exec.ExecContext(ctx, query,
		stats.MatchesPlayed, stats.MatchesWon, stats.MatchesLost,
		stats.SetsWon, stats.SetsLost, stats.GamesWon, stats.GamesLost,
		stats.TotalPoints, historyJSON, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update stats for registration %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrRegistrationNotFound)
}
