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
	ErrPlayoffSlotNotFound   = errors.New("playoff slot not found")
	ErrPlayoffAlreadySeeded  = errors.New("playoff bracket already seeded for this league and group")
	ErrPlayoffQualifierDupes = errors.New("duplicate playoff qualifier seed")
)

type PlayoffRepository interface {
	CreateQualifiers(ctx context.Context, exec SQLExecutor, qualifiers []*models.QualifiedPlayer) error
	ListQualifiers(ctx context.Context, leagueID, group int) ([]*models.QualifiedPlayer, error)
	CreateSlots(ctx context.Context, exec SQLExecutor, slots []*models.PlayoffSlot) error
	ListSlots(ctx context.Context, leagueID, group int) ([]*models.PlayoffSlot, error)
	ListSlotsForUpdate(ctx context.Context, exec SQLExecutor, leagueID, group int) ([]*models.PlayoffSlot, error)
	UpdateSlot(ctx context.Context, exec SQLExecutor, slot *models.PlayoffSlot) error
	Groups(ctx context.Context, leagueID int) ([]int, error)
}

type postgresPlayoffRepository struct {
	db *sql.DB
}

func NewPostgresPlayoffRepository(db *sql.DB) PlayoffRepository {
	return &postgresPlayoffRepository{db: db}
}

func (r *postgresPlayoffRepository) CreateQualifiers(ctx context.Context, exec SQLExecutor, qualifiers []*models.QualifiedPlayer) error {
	query := `
		INSERT INTO playoff_qualifiers (league_id, playoff_group, seed, player_id, final_position, snapshot)
		VALUES ($1, $2, $3, $4, $5, $6)`

	for _, q := range qualifiers {
		snapshotJSON, err := json.Marshal(q.Snapshot)
		if err != nil {
			return fmt.Errorf("failed to marshal qualifier snapshot: %w", err)
		}
		_, err = exec.ExecContext(ctx, query,
			q.LeagueID, q.Group, q.Seed, q.PlayerID, q.Position, snapshotJSON)
		if err != nil {
			if pqErr, ok := err.(*pq.Error); ok && pqErr.Constraint == "playoff_qualifiers_league_group_seed_key" {
				return ErrPlayoffQualifierDupes
			}
			return fmt.Errorf("failed to create qualifier seed %d: %w", q.Seed, err)
		}
	}
	return nil
}

func (r *postgresPlayoffRepository) ListQualifiers(ctx context.Context, leagueID, group int) ([]*models.QualifiedPlayer, error) {
	query := `
		SELECT league_id, playoff_group, seed, player_id, final_position, snapshot
		FROM playoff_qualifiers
		WHERE league_id = $1 AND playoff_group = $2
		ORDER BY seed ASC`

	rows, err := r.db.QueryContext(ctx, query, leagueID, group)
	if err != nil {
		return nil, fmt.Errorf("failed to query qualifiers for league %d: %w", leagueID, err)
	}
	defer rows.Close()

	qualifiers := make([]*models.QualifiedPlayer, 0)
	for rows.Next() {
		q := &models.QualifiedPlayer{}
		var snapshotJSON []byte
		if err := rows.Scan(&q.LeagueID, &q.Group, &q.Seed, &q.PlayerID, &q.Position, &snapshotJSON); err != nil {
			return nil, fmt.Errorf("failed to scan qualifier: %w", err)
		}
		if len(snapshotJSON) > 0 {
			if err := json.Unmarshal(snapshotJSON, &q.Snapshot); err != nil {
				return nil, fmt.Errorf("failed to unmarshal qualifier snapshot: %w", err)
			}
		}
		qualifiers = append(qualifiers, q)
	}
	return qualifiers, rows.Err()
}

func (r *postgresPlayoffRepository) CreateSlots(ctx context.Context, exec SQLExecutor, slots []*models.PlayoffSlot) error {
	query := `
		INSERT INTO playoff_slots (league_id, playoff_group, stage, slot_index,
			seed1, seed2, source1, source2, match_id, winner_id, state)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`

	for _, s := range slots {
		err := exec.QueryRowContext(ctx, query,
			s.LeagueID, s.Group, s.Stage, s.Index,
			s.Seed1, s.Seed2, s.Source1, s.Source2, s.MatchID, s.WinnerID, s.State,
		).Scan(&s.ID)
		if err != nil {
			if pqErr, ok := err.(*pq.Error); ok && pqErr.Constraint == "playoff_slots_league_group_stage_index_key" {
				return ErrPlayoffAlreadySeeded
			}
			return fmt.Errorf("failed to create playoff slot %s/%d: %w", s.Stage, s.Index, err)
		}
	}
	return nil
}

const playoffSlotColumns = `
	id, league_id, playoff_group, stage, slot_index,
	seed1, seed2, source1, source2, match_id, winner_id, state`

func (r *postgresPlayoffRepository) scanSlot(row interface{ Scan(...interface{}) error }) (*models.PlayoffSlot, error) {
	s := &models.PlayoffSlot{}
	err := row.Scan(
		&s.ID, &s.LeagueID, &s.Group, &s.Stage, &s.Index,
		&s.Seed1, &s.Seed2, &s.Source1, &s.Source2, &s.MatchID, &s.WinnerID, &s.State,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayoffSlotNotFound
		}
		return nil, fmt.Errorf("failed to scan playoff slot: %w", err)
	}
	return s, nil
}

func (r *postgresPlayoffRepository) listSlots(ctx context.Context, q interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}, query string, leagueID, group int) ([]*models.PlayoffSlot, error) {
	rows, err := q.QueryContext(ctx, query, leagueID, group)
	if err != nil {
		return nil, fmt.Errorf("failed to query playoff slots for league %d: %w", leagueID, err)
	}
	defer rows.Close()

	slots := make([]*models.PlayoffSlot, 0)
	for rows.Next() {
		s, scanErr := r.scanSlot(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		slots = append(slots, s)
	}
	return slots, rows.Err()
}

func (r *postgresPlayoffRepository) ListSlots(ctx context.Context, leagueID, group int) ([]*models.PlayoffSlot, error) {
	query := `SELECT ` + playoffSlotColumns + ` FROM playoff_slots
		WHERE league_id = $1 AND playoff_group = $2
		ORDER BY CASE stage
			WHEN 'quarterfinal' THEN 0
			WHEN 'semifinal' THEN 1
			WHEN 'final' THEN 2
			ELSE 3
		END, slot_index ASC`
	return r.listSlots(ctx, r.db, query, leagueID, group)
}

// ListSlotsForUpdate locks the group's slots so concurrent reconciles
// serialize on the bracket.
func (r *postgresPlayoffRepository) ListSlotsForUpdate(ctx context.Context, exec SQLExecutor, leagueID, group int) ([]*models.PlayoffSlot, error) {
	query := `SELECT ` + playoffSlotColumns + ` FROM playoff_slots
		WHERE league_id = $1 AND playoff_group = $2
		ORDER BY CASE stage
			WHEN 'quarterfinal' THEN 0
			WHEN 'semifinal' THEN 1
			WHEN 'final' THEN 2
			ELSE 3
		END, slot_index ASC
		FOR UPDATE`
	return r.listSlots(ctx, exec, query, leagueID, group)
}

func (r *postgresPlayoffRepository) UpdateSlot(ctx context.Context, exec SQLExecutor, slot *models.PlayoffSlot) error {
	query := `
		UPDATE playoff_slots SET match_id = $1, winner_id = $2, state = $3
		WHERE id = $4`

	res, err := exec.ExecContext(ctx, query, slot.MatchID, slot.WinnerID, slot.State, slot.ID)
	if err != nil {
		return fmt.Errorf("failed to update playoff slot %d: %w", slot.ID, err)
	}
	return checkAffectedRows(res, ErrPlayoffSlotNotFound)
}

func (r *postgresPlayoffRepository) Groups(ctx context.Context, leagueID int) ([]int, error) {
	query := `SELECT DISTINCT playoff_group FROM playoff_slots WHERE league_id = $1 ORDER BY playoff_group ASC`
	rows, err := r.db.QueryContext(ctx, query, leagueID)
	if err != nil {
		return nil, fmt.Errorf("failed to query playoff groups for league %d: %w", leagueID, err)
	}
	defer rows.Close()

	groups := make([]int, 0)
	for rows.Next() {
		var g int
		if err := rows.Scan(&g); err != nil {
			return nil, fmt.Errorf("failed to scan playoff group: %w", err)
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}
