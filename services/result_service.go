package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/morhendos/tenis-del-parque/elo"
	"github.com/morhendos/tenis-del-parque/live"
	"github.com/morhendos/tenis-del-parque/models"
	"github.com/morhendos/tenis-del-parque/repositories"
	"github.com/morhendos/tenis-del-parque/scoring"
	"github.com/morhendos/tenis-del-parque/standings"
)

type ResultInput struct {
	WinnerID        int               `json:"winner_id"`
	Sets            []models.SetScore `json:"sets"`
	Walkover        bool              `json:"walkover"`
	RetiredPlayerID *int              `json:"retired_player_id,omitempty"`
}

// playoffProgressor advances a bracket after a playoff result lands. Wired to
// PlayoffService; kept as a local interface to break the construction cycle.
type playoffProgressor interface {
	Reconcile(ctx context.Context, leagueID, group int) error
}

type ResultService interface {
	RecordResult(ctx context.Context, matchID int, input ResultInput) (*models.Match, error)
	ReverseResult(ctx context.Context, matchID int) (*models.Match, error)
	SetPlayoffProgressor(p playoffProgressor)
}

type resultService struct {
	db         *sql.DB
	matchRepo  repositories.MatchRepository
	playerRepo repositories.PlayerRepository
	regRepo    repositories.RegistrationRepository
	leagueRepo repositories.LeagueRepository
	playoffs   playoffProgressor
	hub        *live.Hub
	logger     *slog.Logger
}

func NewResultService(
	db *sql.DB,
	matchRepo repositories.MatchRepository,
	playerRepo repositories.PlayerRepository,
	regRepo repositories.RegistrationRepository,
	leagueRepo repositories.LeagueRepository,
	hub *live.Hub,
	logger *slog.Logger,
) ResultService {
	return &resultService{
		db:         db,
		matchRepo:  matchRepo,
		playerRepo: playerRepo,
		regRepo:    regRepo,
		leagueRepo: leagueRepo,
		hub:        hub,
		logger:     logger,
	}
}

func (s *resultService) SetPlayoffProgressor(p playoffProgressor) {
	s.playoffs = p
}

// RecordResult applies a match result atomically: the match row, both rating
// snapshots, both player ratings and both registration stat blocks commit
// together or not at all. Bracket progression and websocket pushes happen
// after commit and are best effort.
func (s *resultService) RecordResult(ctx context.Context, matchID int, input ResultInput) (*models.Match, error) {
	match, err := s.recordResultTx(ctx, matchID, input)
	if err != nil {
		return nil, err
	}
	go s.afterResult(match)
	return match, nil
}

func (s *resultService) recordResultTx(ctx context.Context, matchID int, input ResultInput) (_ *models.Match, txErr error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if txErr != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				s.logger.Error("rollback failed while recording result",
					slog.Int("match_id", matchID), slog.Any("error", rbErr))
			}
		} else {
			if cErr := tx.Commit(); cErr != nil {
				txErr = fmt.Errorf("failed to commit result for match %d: %w", matchID, cErr)
			}
		}
	}()

	match, txErr := s.matchRepo.GetByIDForUpdate(ctx, tx, matchID)
	if txErr != nil {
		if errors.Is(txErr, repositories.ErrMatchNotFound) {
			txErr = ErrNotFound
		}
		return nil, txErr
	}

	if txErr = validateResultInput(match, input); txErr != nil {
		return nil, txErr
	}
	player2ID := *match.Player2ID

	result := &models.MatchResult{
		WinnerID:        input.WinnerID,
		Sets:            input.Sets,
		Walkover:        input.Walkover,
		RetiredPlayerID: input.RetiredPlayerID,
	}

	// Both player rows stay locked until commit, in slot order so two
	// concurrent results over the same pair cannot deadlock. Walkovers lock
	// too: the registration recompute below must not race a concurrent
	// result involving either player.
	player1, err := s.playerRepo.GetByIDForUpdate(ctx, tx, match.Player1ID)
	if err != nil {
		txErr = err
		return nil, txErr
	}
	player2, err := s.playerRepo.GetByIDForUpdate(ctx, tx, player2ID)
	if err != nil {
		txErr = err
		return nil, txErr
	}

	elo1, elo2 := eloSnapshots(player1, player2, input.WinnerID, input.Walkover)
	if !input.Walkover {
		if txErr = s.applyRating(ctx, tx, player1, elo1.After); txErr != nil {
			return nil, txErr
		}
		if txErr = s.applyRating(ctx, tx, player2, elo2.After); txErr != nil {
			return nil, txErr
		}
	}

	if txErr = s.matchRepo.UpdateResult(ctx, tx, matchID, result, elo1, elo2); txErr != nil {
		return nil, txErr
	}
	match.Status = models.MatchStatusCompleted
	match.Result = result
	match.Elo1, match.Elo2 = elo1, elo2

	if txErr = s.refreshRegistrations(ctx, tx, match); txErr != nil {
		return nil, txErr
	}

	s.logger.Info("match result recorded",
		slog.Int("match_id", matchID), slog.Int("league_id", match.LeagueID),
		slog.Int("winner_id", input.WinnerID), slog.Bool("walkover", input.Walkover))

	return match, nil
}

// ReverseResult is the admin undo: it restores both ratings to their recorded
// pre-match values, clears the result and recomputes both stat blocks.
func (s *resultService) ReverseResult(ctx context.Context, matchID int) (*models.Match, error) {
	match, err := s.reverseResultTx(ctx, matchID)
	if err != nil {
		return nil, err
	}
	go s.afterResult(match)
	return match, nil
}

func (s *resultService) reverseResultTx(ctx context.Context, matchID int) (_ *models.Match, txErr error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if txErr != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				s.logger.Error("rollback failed while reversing result",
					slog.Int("match_id", matchID), slog.Any("error", rbErr))
			}
		} else {
			if cErr := tx.Commit(); cErr != nil {
				txErr = fmt.Errorf("failed to commit reversal for match %d: %w", matchID, cErr)
			}
		}
	}()

	match, txErr := s.matchRepo.GetByIDForUpdate(ctx, tx, matchID)
	if txErr != nil {
		if errors.Is(txErr, repositories.ErrMatchNotFound) {
			txErr = ErrNotFound
		}
		return nil, txErr
	}
	if match.IsBye {
		txErr = ErrByeMatchImmutable
		return nil, txErr
	}
	if match.Type == models.MatchTypePlayoff {
		// The bracket may already have progressed on this result; undoing it
		// would leave later stages referencing a winner that no longer exists.
		txErr = fmt.Errorf("%w: playoff results cannot be reversed", ErrForbiddenOperation)
		return nil, txErr
	}
	if match.Status != models.MatchStatusCompleted || match.Result == nil {
		txErr = ErrMatchNotCompleted
		return nil, txErr
	}

	// Zero-delta snapshots (walkovers) never touched the ratings, so there is
	// nothing to restore and the players' current ratings must stand.
	if match.Elo1 != nil && match.Elo2 != nil && (match.Elo1.Change != 0 || match.Elo2.Change != 0) {
		player1, err := s.playerRepo.GetByIDForUpdate(ctx, tx, match.Player1ID)
		if err != nil {
			txErr = err
			return nil, txErr
		}
		player2, err := s.playerRepo.GetByIDForUpdate(ctx, tx, *match.Player2ID)
		if err != nil {
			txErr = err
			return nil, txErr
		}
		if txErr = s.applyRating(ctx, tx, player1, match.Elo1.Before); txErr != nil {
			return nil, txErr
		}
		if txErr = s.applyRating(ctx, tx, player2, match.Elo2.Before); txErr != nil {
			return nil, txErr
		}
	}

	if txErr = s.matchRepo.ClearResult(ctx, tx, matchID); txErr != nil {
		return nil, txErr
	}
	match.Status = models.MatchStatusScheduled
	match.Result = nil
	match.Elo1, match.Elo2 = nil, nil

	if txErr = s.refreshRegistrations(ctx, tx, match); txErr != nil {
		return nil, txErr
	}

	s.logger.Info("match result reversed",
		slog.Int("match_id", matchID), slog.Int("league_id", match.LeagueID))

	return match, nil
}

func validateResultInput(match *models.Match, input ResultInput) error {
	if match.IsBye || match.Player2ID == nil {
		return ErrByeMatchImmutable
	}
	switch match.Status {
	case models.MatchStatusScheduled, models.MatchStatusPostponed:
	case models.MatchStatusCompleted:
		return ErrMatchAlreadyCompleted
	default:
		return ErrMatchNotScheduled
	}
	if !match.Involves(input.WinnerID) {
		return ErrWinnerNotInMatch
	}
	if input.RetiredPlayerID != nil && !match.Involves(*input.RetiredPlayerID) {
		return fmt.Errorf("%w: retired player not in match", ErrValidationFailed)
	}

	if input.Walkover {
		if len(input.Sets) != 0 {
			return fmt.Errorf("%w: walkover carries no sets", ErrValidationFailed)
		}
		return nil
	}

	if err := scoring.ValidateSets(input.Sets); err != nil {
		return fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	winnerSlot, err := scoring.Winner(input.Sets)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	winnerID := match.Player1ID
	if winnerSlot == 2 {
		winnerID = *match.Player2ID
	}
	if winnerID != input.WinnerID {
		return fmt.Errorf("%w: declared winner does not match the score", ErrValidationFailed)
	}
	return nil
}

// applyRating writes the new rating with high/low watermarks maintained on
// the player row.
func (s *resultService) applyRating(ctx context.Context, tx *sql.Tx, player *models.Player, rating int) error {
	highest, lowest := player.HighestElo, player.LowestElo
	if rating > highest {
		highest = rating
	}
	if rating < lowest {
		lowest = rating
	}
	return s.playerRepo.UpdateRating(ctx, tx, player.ID, rating, highest, lowest)
}

// eloSnapshots computes both sides' rating audit records. Walkovers are
// recorded as explicit zero-delta snapshots: ratings only move on played
// matches, but the row still documents what both ratings were.
func eloSnapshots(player1, player2 *models.Player, winnerID int, walkover bool) (*models.EloSnapshot, *models.EloSnapshot) {
	if walkover {
		return &models.EloSnapshot{Before: player1.EloRating, After: player1.EloRating},
			&models.EloSnapshot{Before: player2.EloRating, After: player2.EloRating}
	}
	change := elo.RatingChange(player1.EloRating, player2.EloRating, winnerID == player1.ID)
	return &models.EloSnapshot{Before: player1.EloRating, After: player1.EloRating + change, Change: change},
		&models.EloSnapshot{Before: player2.EloRating, After: player2.EloRating - change, Change: -change}
}

// refreshRegistrations recomputes both players' cached stat blocks and
// history logs. The match log is read through the transaction so that, with
// both player rows locked, a concurrent result for either player is either
// fully visible or not yet started.
func (s *resultService) refreshRegistrations(ctx context.Context, tx *sql.Tx, updated *models.Match) error {
	matches, err := s.matchRepo.ListByLeagueTx(ctx, tx, updated.LeagueID, updated.Season, repositories.MatchFilter{})
	if err != nil {
		return err
	}

	playerIDs := []int{updated.Player1ID}
	if updated.Player2ID != nil {
		playerIDs = append(playerIDs, *updated.Player2ID)
	}
	for _, playerID := range playerIDs {
		reg, err := s.regRepo.GetByPlayerAndLeague(ctx, playerID, updated.LeagueID, updated.Season)
		if err != nil {
			if errors.Is(err, repositories.ErrRegistrationNotFound) {
				// Playoff guests without a league registration have no cache row.
				continue
			}
			return err
		}
		stats := computeLeagueStats(playerID, matches)
		history := buildMatchHistory(playerID, matches)
		if err := s.regRepo.UpdateStatsAndHistory(ctx, tx, reg.ID, stats, history); err != nil {
			return err
		}
	}
	return nil
}

// computeLeagueStats feeds only regular-season matches into the stats
// recompute; playoff matches never touch the league table.
func computeLeagueStats(playerID int, matches []*models.Match) models.Stats {
	regular := make([]*models.Match, 0, len(matches))
	for _, m := range matches {
		if m.Type == models.MatchTypeRegular {
			regular = append(regular, m)
		}
	}
	return standings.ComputeStats(playerID, regular)
}

// buildMatchHistory assembles the most recent completed matches for a player,
// newest first, capped at the history limit.
func buildMatchHistory(playerID int, matches []*models.Match) []models.MatchHistoryEntry {
	entries := make([]models.MatchHistoryEntry, 0, models.MatchHistoryLimit)
	for _, m := range matches {
		if m.Status != models.MatchStatusCompleted || m.Result == nil || !m.Involves(playerID) || m.IsBye {
			continue
		}
		if m.Type != models.MatchTypeRegular {
			continue
		}
		won := m.Result.WinnerID == playerID

		score := "w/o"
		if !m.Result.Walkover {
			score = scoring.FormatScore(m.Result.Sets)
		}

		points := 0
		if m.Result.Walkover {
			if won {
				points = scoring.WalkoverPoints
			}
		} else {
			p1, p2 := scoring.SetsWon(m.Result.Sets)
			if m.Player1ID == playerID {
				points = scoring.MatchPoints(p1, p2)
			} else {
				points = scoring.MatchPoints(p2, p1)
			}
		}

		date := m.CreatedAt
		if m.Schedule.ConfirmedDate != nil {
			date = *m.Schedule.ConfirmedDate
		}
		entries = append(entries, models.MatchHistoryEntry{
			MatchID:    m.ID,
			Round:      m.Round,
			OpponentID: m.Opponent(playerID),
			Won:        won,
			Score:      score,
			Points:     points,
			Date:       date,
		})
	}
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	if len(entries) > models.MatchHistoryLimit {
		entries = entries[:models.MatchHistoryLimit]
	}
	return entries
}

// afterResult runs post-commit side effects. Failures are logged, never
// surfaced: the result itself is already durable.
func (s *resultService) afterResult(match *models.Match) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if match.Type == models.MatchTypePlayoff && match.Playoff != nil && s.playoffs != nil {
		if err := s.playoffs.Reconcile(ctx, match.LeagueID, match.Playoff.Group); err != nil {
			s.logger.Error("bracket reconcile after result failed",
				slog.Int("match_id", match.ID), slog.Int("league_id", match.LeagueID),
				slog.Any("error", err))
		}
	}

	if s.hub != nil {
		s.hub.BroadcastToLeague(match.LeagueID, live.TypeMatchUpdated, match)
		s.hub.BroadcastToLeague(match.LeagueID, live.TypeStandingsUpdated, map[string]int{"league_id": match.LeagueID})
	}
}
