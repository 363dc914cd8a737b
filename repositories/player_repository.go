package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/morhendos/tenis-del-parque/models"
)

var (
	ErrPlayerNotFound      = errors.New("player not found")
	ErrPlayerEmailConflict = errors.New("player email already in use")
)

type PlayerRepository interface {
	Create(ctx context.Context, player *models.Player) error
	GetByID(ctx context.Context, id int) (*models.Player, error)
	GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Player, error)
	GetByEmail(ctx context.Context, email string) (*models.Player, error)
	List(ctx context.Context) ([]*models.Player, error)
	UpdateRating(ctx context.Context, exec SQLExecutor, id, rating, highest, lowest int) error
	UpdatePhotoKey(ctx context.Context, id int, photoKey *string) error
}

type postgresPlayerRepository struct {
	db *sql.DB
}

func NewPostgresPlayerRepository(db *sql.DB) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

const playerColumns = `id, name, email, password_hash, role, level, elo_rating, highest_elo, lowest_elo, photo_key, created_at`

func (r *postgresPlayerRepository) Create(ctx context.Context, player *models.Player) error {
	query := `
		INSERT INTO players (name, email, password_hash, role, level, elo_rating, highest_elo, lowest_elo)
		VALUES ($1, $2, $3, $4, $5, $6, $6, $6)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		player.Name, player.Email, player.PasswordHash, player.Role, player.Level, player.EloRating,
	).Scan(&player.ID, &player.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Constraint == "players_email_key" {
			return ErrPlayerEmailConflict
		}
		return fmt.Errorf("failed to create player: %w", err)
	}
	player.HighestElo = player.EloRating
	player.LowestElo = player.EloRating
	return nil
}

func (r *postgresPlayerRepository) scanPlayer(row interface{ Scan(...interface{}) error }) (*models.Player, error) {
	p := &models.Player{}
	err := row.Scan(
		&p.ID, &p.Name, &p.Email, &p.PasswordHash, &p.Role, &p.Level,
		&p.EloRating, &p.HighestElo, &p.LowestElo, &p.PhotoKey, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to scan player: %w", err)
	}
	return p, nil
}

func (r *postgresPlayerRepository) GetByID(ctx context.Context, id int) (*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE id = $1`
	return r.scanPlayer(r.db.QueryRowContext(ctx, query, id))
}

// GetByIDForUpdate row-locks the player inside the caller's transaction, so
// concurrent result submissions for the same player serialize on the rating
// read.
func (r *postgresPlayerRepository) GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE id = $1 FOR UPDATE`
	return r.scanPlayer(exec.QueryRowContext(ctx, query, id))
}

func (r *postgresPlayerRepository) GetByEmail(ctx context.Context, email string) (*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE email = $1`
	return r.scanPlayer(r.db.QueryRowContext(ctx, query, email))
}

func (r *postgresPlayerRepository) List(ctx context.Context) ([]*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players ORDER BY name ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query players: %w", err)
	}
	defer rows.Close()

	players := make([]*models.Player, 0)
	for rows.Next() {
		p, scanErr := r.scanPlayer(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

func (r *postgresPlayerRepository) UpdateRating(ctx context.Context, exec SQLExecutor, id, rating, highest, lowest int) error {
	query := `UPDATE players SET elo_rating = $1, highest_elo = $2, lowest_elo = $3 WHERE id = $4`
	result, err := exec.ExecContext(ctx, query, rating, highest, lowest, id)
	if err != nil {
		return fmt.Errorf("failed to update rating for player %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) UpdatePhotoKey(ctx context.Context, id int, photoKey *string) error {
	query := `UPDATE players SET photo_key = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, photoKey, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}
