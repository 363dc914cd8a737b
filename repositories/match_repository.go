package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/morhendos/tenis-del-parque/models"
)

var (
	ErrMatchNotFound   = errors.New("match not found")
	ErrMatchBadPlayers = errors.New("match references an unknown player or league")
)

// MatchFilter narrows ListByLeague. Zero values mean "no constraint".
type MatchFilter struct {
	Round    int
	Status   models.MatchStatus
	Type     models.MatchType
	PlayerID int
}

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	GetByID(ctx context.Context, id int) (*models.Match, error)
	GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error)
	ListByLeague(ctx context.Context, leagueID int, season string, filter MatchFilter) ([]*models.Match, error)
	ListByLeagueTx(ctx context.Context, exec SQLExecutor, leagueID int, season string, filter MatchFilter) ([]*models.Match, error)
	UpdateResult(ctx context.Context, exec SQLExecutor, id int, result *models.MatchResult, elo1, elo2 *models.EloSnapshot) error
	ClearResult(ctx context.Context, exec SQLExecutor, id int) error
	UpdateStatus(ctx context.Context, id int, status models.MatchStatus) error
	UpdateSchedule(ctx context.Context, id int, schedule models.Schedule) error
	MaxRound(ctx context.Context, leagueID int, season string) (int, error)
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

const matchColumns = `
	id, league_id, season, round, player1_id, player2_id, status, match_type, is_bye,
	playoff_group, playoff_stage,
	proposed_date, confirmed_date, venue, deadline,
	winner_id, sets, walkover, retired_player_id,
	elo1_before, elo1_after, elo1_change,
	elo2_before, elo2_after, elo2_change,
	created_at`

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	var group *int
	var stage *models.PlayoffStage
	if match.Playoff != nil {
		group = &match.Playoff.Group
		stage = &match.Playoff.Stage
	}

	query := `
		INSERT INTO matches (league_id, season, round, player1_id, player2_id, status,
			match_type, is_bye, playoff_group, playoff_stage, deadline)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at`

	err := exec.QueryRowContext(ctx, query,
		match.LeagueID, match.Season, match.Round, match.Player1ID, match.Player2ID,
		match.Status, match.Type, match.IsBye, group, stage, match.Schedule.Deadline,
	).Scan(&match.ID, &match.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Constraint {
			case "matches_player1_id_fkey", "matches_player2_id_fkey", "matches_league_id_fkey":
				return ErrMatchBadPlayers
			}
		}
		return fmt.Errorf("failed to create match: %w", err)
	}
	return nil
}

func (r *postgresMatchRepository) scanMatch(row interface{ Scan(...interface{}) error }) (*models.Match, error) {
	m := &models.Match{}
	var (
		group                         sql.NullInt64
		stage                         sql.NullString
		winnerID, retiredID           sql.NullInt64
		setsJSON                      []byte
		walkover                      sql.NullBool
		e1b, e1a, e1c, e2b, e2a, e2c  sql.NullInt64
		proposed, confirmed, deadline sql.NullTime
		venue                         sql.NullString
	)

	err := row.Scan(
		&m.ID, &m.LeagueID, &m.Season, &m.Round, &m.Player1ID, &m.Player2ID,
		&m.Status, &m.Type, &m.IsBye,
		&group, &stage,
		&proposed, &confirmed, &venue, &deadline,
		&winnerID, &setsJSON, &walkover, &retiredID,
		&e1b, &e1a, &e1c,
		&e2b, &e2a, &e2c,
		&m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match: %w", err)
	}

	if group.Valid && stage.Valid {
		m.Playoff = &models.PlayoffInfo{
			Group: int(group.Int64),
			Stage: models.PlayoffStage(stage.String),
		}
	}
	if proposed.Valid {
		m.Schedule.ProposedDate = &proposed.Time
	}
	if confirmed.Valid {
		m.Schedule.ConfirmedDate = &confirmed.Time
	}
	if venue.Valid {
		v := venue.String
		m.Schedule.Venue = &v
	}
	if deadline.Valid {
		m.Schedule.Deadline = &deadline.Time
	}
	if winnerID.Valid {
		result := &models.MatchResult{
			WinnerID: int(winnerID.Int64),
			Walkover: walkover.Valid && walkover.Bool,
		}
		if retiredID.Valid {
			id := int(retiredID.Int64)
			result.RetiredPlayerID = &id
		}
		if len(setsJSON) > 0 {
			if err := json.Unmarshal(setsJSON, &result.Sets); err != nil {
				return nil, fmt.Errorf("failed to unmarshal match sets: %w", err)
			}
		}
		m.Result = result
	}
	if e1b.Valid {
		m.Elo1 = &models.EloSnapshot{Before: int(e1b.Int64), After: int(e1a.Int64), Change: int(e1c.Int64)}
	}
	if e2b.Valid {
		m.Elo2 = &models.EloSnapshot{Before: int(e2b.Int64), After: int(e2a.Int64), Change: int(e2c.Int64)}
	}
	return m, nil
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id int) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`
	return r.scanMatch(r.db.QueryRowContext(ctx, query, id))
}

// GetByIDForUpdate locks the match row for the duration of the transaction.
func (r *postgresMatchRepository) GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1 FOR UPDATE`
	return r.scanMatch(exec.QueryRowContext(ctx, query, id))
}

func (r *postgresMatchRepository) ListByLeague(ctx context.Context, leagueID int, season string, filter MatchFilter) ([]*models.Match, error) {
	return r.listByLeague(ctx, r.db, leagueID, season, filter)
}

// ListByLeagueTx is the same read issued through a caller-owned transaction,
// so it observes that transaction's own writes.
func (r *postgresMatchRepository) ListByLeagueTx(ctx context.Context, exec SQLExecutor, leagueID int, season string, filter MatchFilter) ([]*models.Match, error) {
	return r.listByLeague(ctx, exec, leagueID, season, filter)
}

func (r *postgresMatchRepository) listByLeague(ctx context.Context, exec SQLExecutor, leagueID int, season string, filter MatchFilter) ([]*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE league_id = $1 AND season = $2`
	args := []interface{}{leagueID, season}

	if filter.Round != 0 {
		args = append(args, filter.Round)
		query += fmt.Sprintf(" AND round = $%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.Type != "" {
		args = append(args, filter.Type)
		query += fmt.Sprintf(" AND match_type = $%d", len(args))
	}
	if filter.PlayerID != 0 {
		args = append(args, filter.PlayerID)
		query += fmt.Sprintf(" AND (player1_id = $%d OR player2_id = $%d)", len(args), len(args))
	}
	query += " ORDER BY round ASC, id ASC"

	rows, err := exec.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches for league %d: %w", leagueID, err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		m, scanErr := r.scanMatch(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func (r *postgresMatchRepository) UpdateResult(ctx context.Context, exec SQLExecutor, id int, result *models.MatchResult, elo1, elo2 *models.EloSnapshot) error {
	setsJSON, err := json.Marshal(result.Sets)
	if err != nil {
		return fmt.Errorf("failed to marshal match sets: %w", err)
	}

	var e1b, e1a, e1c, e2b, e2a, e2c *int
	if elo1 != nil {
		e1b, e1a, e1c = &elo1.Before, &elo1.After, &elo1.Change
	}
	if elo2 != nil {
		e2b, e2a, e2c = &elo2.Before, &elo2.After, &elo2.Change
	}

	query := `
		UPDATE matches SET
			status = 'completed',
			winner_id = $1, sets = $2, walkover = $3, retired_player_id = $4,
			elo1_before = $5, elo1_after = $6, elo1_change = $7,
			elo2_before = $8, elo2_after = $9, elo2_change = $10
		WHERE id = $11`

	res, err := exec.ExecContext(ctx, query,
		result.WinnerID, setsJSON, result.Walkover, result.RetiredPlayerID,
		e1b, e1a, e1c, e2b, e2a, e2c, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update result for match %d: %w", id, err)
	}
	return checkAffectedRows(res, ErrMatchNotFound)
}

// ClearResult reverts a completed match back to scheduled, dropping the
// recorded result and elo snapshots.
func (r *postgresMatchRepository) ClearResult(ctx context.Context, exec SQLExecutor, id int) error {
	query := `
		UPDATE matches SET
			status = 'scheduled',
			winner_id = NULL, sets = NULL, walkover = FALSE, retired_player_id = NULL,
			elo1_before = NULL, elo1_after = NULL, elo1_change = NULL,
			elo2_before = NULL, elo2_after = NULL, elo2_change = NULL
		WHERE id = $1`

	res, err := exec.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to clear result for match %d: %w", id, err)
	}
	return checkAffectedRows(res, ErrMatchNotFound)
}

func (r *postgresMatchRepository) UpdateStatus(ctx context.Context, id int, status models.MatchStatus) error {
	query := `UPDATE matches SET status = $1 WHERE id = $2`
	res, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(res, ErrMatchNotFound)
}

func (r *postgresMatchRepository) UpdateSchedule(ctx context.Context, id int, schedule models.Schedule) error {
	query := `
		UPDATE matches SET
			proposed_date = $1, confirmed_date = $2, venue = $3, deadline = $4
		WHERE id = $5`

	res, err := r.db.ExecContext(ctx, query,
		nullableTime(schedule.ProposedDate), nullableTime(schedule.ConfirmedDate),
		schedule.Venue, nullableTime(schedule.Deadline), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update schedule for match %d: %w", id, err)
	}
	return checkAffectedRows(res, ErrMatchNotFound)
}

func (r *postgresMatchRepository) MaxRound(ctx context.Context, leagueID int, season string) (int, error) {
	query := `SELECT COALESCE(MAX(round), 0) FROM matches WHERE league_id = $1 AND season = $2 AND match_type = 'regular'`
	var round int
	if err := r.db.QueryRowContext(ctx, query, leagueID, season).Scan(&round); err != nil {
		return 0, fmt.Errorf("failed to query max round for league %d: %w", leagueID, err)
	}
	return round, nil
}

func nullableTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}
