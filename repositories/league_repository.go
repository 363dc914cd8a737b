package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/morhendos/tenis-del-parque/models"
)

var (
	ErrLeagueNotFound     = errors.New("league not found")
	ErrLeagueNameConflict = errors.New("league name already exists for this season")
)

type LeagueRepository interface {
	Create(ctx context.Context, league *models.League) error
	GetByID(ctx context.Context, id int) (*models.League, error)
	List(ctx context.Context) ([]*models.League, error)
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.LeagueStatus) error
	SetPlayoffsCompleted(ctx context.Context, exec SQLExecutor, id int, completedAt time.Time) error
	UpdateLogoKey(ctx context.Context, id int, logoKey *string) error
}

type postgresLeagueRepository struct {
	db *sql.DB
}

func NewPostgresLeagueRepository(db *sql.DB) LeagueRepository {
	return &postgresLeagueRepository{db: db}
}

const leagueColumns = `id, name, season, status, playoff_enabled, playoff_groups, playoffs_completed_at, logo_key, created_at`

func (r *postgresLeagueRepository) Create(ctx context.Context, league *models.League) error {
	query := `
		INSERT INTO leagues (name, season, status, playoff_enabled, playoff_groups)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		league.Name, league.Season, league.Status, league.PlayoffEnabled, league.PlayoffGroups,
	).Scan(&league.ID, &league.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Constraint == "leagues_name_season_key" {
			return ErrLeagueNameConflict
		}
		return fmt.Errorf("failed to create league: %w", err)
	}
	return nil
}

func (r *postgresLeagueRepository) scanLeague(row interface{ Scan(...interface{}) error }) (*models.League, error) {
	l := &models.League{}
	err := row.Scan(
		&l.ID, &l.Name, &l.Season, &l.Status, &l.PlayoffEnabled, &l.PlayoffGroups,
		&l.PlayoffsCompletedAt, &l.LogoKey, &l.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLeagueNotFound
		}
		return nil, fmt.Errorf("failed to scan league: %w", err)
	}
	return l, nil
}

func (r *postgresLeagueRepository) GetByID(ctx context.Context, id int) (*models.League, error) {
	query := `SELECT ` + leagueColumns + ` FROM leagues WHERE id = $1`
	return r.scanLeague(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresLeagueRepository) List(ctx context.Context) ([]*models.League, error) {
	query := `SELECT ` + leagueColumns + ` FROM leagues ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query leagues: %w", err)
	}
	defer rows.Close()

	leagues := make([]*models.League, 0)
	for rows.Next() {
		l, scanErr := r.scanLeague(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		leagues = append(leagues, l)
	}
	return leagues, rows.Err()
}

func (r *postgresLeagueRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.LeagueStatus) error {
	query := `UPDATE leagues SET status = $1 WHERE id = $2`
	result, err := exec.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update league %d status: %w", id, err)
	}
	return checkAffectedRows(result, ErrLeagueNotFound)
}

func (r *postgresLeagueRepository) SetPlayoffsCompleted(ctx context.Context, exec SQLExecutor, id int, completedAt time.Time) error {
	query := `UPDATE leagues SET status = $1, playoffs_completed_at = $2 WHERE id = $3`
	result, err := exec.ExecContext(ctx, query, models.LeagueStatusCompleted, completedAt, id)
	if err != nil {
		return fmt.Errorf("failed to complete league %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrLeagueNotFound)
}

func (r *postgresLeagueRepository) UpdateLogoKey(ctx context.Context, id int, logoKey *string) error {
	query := `UPDATE leagues SET logo_key = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, logoKey, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrLeagueNotFound)
}
