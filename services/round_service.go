package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/morhendos/tenis-del-parque/models"
	"github.com/morhendos/tenis-del-parque/repositories"
	"github.com/morhendos/tenis-del-parque/swiss"
)

// matchDeadline is how long the two players have to get a round match played.
const matchDeadline = 14 * 24 * time.Hour

type RoundResult struct {
	Round   int             `json:"round"`
	Matches []*models.Match `json:"matches"`
	Summary swiss.Summary   `json:"summary"`
}

type RoundService interface {
	GenerateNextRound(ctx context.Context, leagueID int) (*RoundResult, error)
}

type roundService struct {
	db         *sql.DB
	leagueRepo repositories.LeagueRepository
	regRepo    repositories.RegistrationRepository
	playerRepo repositories.PlayerRepository
	matchRepo  repositories.MatchRepository
	logger     *slog.Logger
}

func NewRoundService(
	db *sql.DB,
	leagueRepo repositories.LeagueRepository,
	regRepo repositories.RegistrationRepository,
	playerRepo repositories.PlayerRepository,
	matchRepo repositories.MatchRepository,
	logger *slog.Logger,
) RoundService {
	return &roundService{
		db:         db,
		leagueRepo: leagueRepo,
		regRepo:    regRepo,
		playerRepo: playerRepo,
		matchRepo:  matchRepo,
		logger:     logger,
	}
}

// GenerateNextRound pairs eligible players for the next round and persists the
// matches in one transaction. A bye is stored as an already-completed match
// with no second player.
func (s *roundService) GenerateNextRound(ctx context.Context, leagueID int) (_ *RoundResult, txErr error) {
	league, err := s.leagueRepo.GetByID(ctx, leagueID)
	if err != nil {
		if errors.Is(err, repositories.ErrLeagueNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get league %d: %w", leagueID, err)
	}
	if league.Status != models.LeagueStatusActive {
		return nil, ErrLeagueNotActive
	}

	priorMatches, err := s.matchRepo.ListByLeague(ctx, leagueID, league.Season, repositories.MatchFilter{
		Type: models.MatchTypeRegular,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list matches for league %d: %w", leagueID, err)
	}

	currentRound, err := s.matchRepo.MaxRound(ctx, leagueID, league.Season)
	if err != nil {
		return nil, err
	}
	for _, m := range priorMatches {
		if m.Round == currentRound && m.Status == models.MatchStatusScheduled {
			return nil, ErrRoundNotFinished
		}
	}
	round := currentRound + 1

	eligible, err := s.eligiblePlayers(ctx, leagueID, league.Season)
	if err != nil {
		return nil, err
	}
	if len(eligible) < 2 {
		return nil, fmt.Errorf("%w: %d eligible", ErrNotEnoughPlayers, len(eligible))
	}

	result, err := swiss.GeneratePairings(eligible, priorMatches, round)
	if err != nil {
		return nil, fmt.Errorf("failed to generate pairings for round %d: %w", round, err)
	}
	if err := swiss.ValidatePairings(result.Pairings); err != nil {
		return nil, fmt.Errorf("generated pairings are inconsistent: %w", err)
	}

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
				s.logger.Error("rollback failed after round generation error",
					slog.Int("league_id", leagueID), slog.Any("error", rbErr))
			}
		} else {
			if cErr := tx.Commit(); cErr != nil {
				txErr = fmt.Errorf("failed to commit round %d: %w", round, cErr)
			}
		}
	}()

	deadline := time.Now().Add(matchDeadline)
	matches := make([]*models.Match, 0, len(result.Pairings)+1)

	for _, pairing := range result.Pairings {
		p2 := pairing.Player2.ID
		match := &models.Match{
			LeagueID:  leagueID,
			Season:    league.Season,
			Round:     round,
			Player1ID: pairing.Player1.ID,
			Player2ID: &p2,
			Status:    models.MatchStatusScheduled,
			Type:      models.MatchTypeRegular,
			Schedule:  models.Schedule{Deadline: &deadline},
		}
		if txErr = s.matchRepo.Create(ctx, tx, match); txErr != nil {
			return nil, txErr
		}
		matches = append(matches, match)
		if pairing.IsRematch {
			s.logger.Warn("rematch forced by pairing constraints",
				slog.Int("league_id", leagueID), slog.Int("round", round),
				slog.Int("player1", pairing.Player1.ID), slog.Int("player2", p2))
		}
	}

	if result.Bye != nil {
		bye := &models.Match{
			LeagueID:  leagueID,
			Season:    league.Season,
			Round:     round,
			Player1ID: result.Bye.ID,
			Status:    models.MatchStatusScheduled,
			Type:      models.MatchTypeRegular,
			IsBye:     true,
		}
		if txErr = s.matchRepo.Create(ctx, tx, bye); txErr != nil {
			return nil, txErr
		}
		byeResult := &models.MatchResult{WinnerID: result.Bye.ID}
		if txErr = s.matchRepo.UpdateResult(ctx, tx, bye.ID, byeResult, nil, nil); txErr != nil {
			return nil, txErr
		}
		bye.Status = models.MatchStatusCompleted
		bye.Result = byeResult
		matches = append(matches, bye)

		// The bye counts immediately, so the recipient's cached stat block
		// must be rebuilt in the same transaction as the bye itself.
		if txErr = s.refreshByeRecipient(ctx, tx, league, result.Bye.ID); txErr != nil {
			return nil, txErr
		}
	}
	if txErr != nil {
		return nil, txErr
	}

	s.logger.Info("round generated",
		slog.Int("league_id", leagueID), slog.Int("round", round),
		slog.Int("matches", result.Summary.TotalMatches),
		slog.Int("rematches", result.Summary.Rematches),
		slog.String("bye", result.Summary.ByePlayer))

	return &RoundResult{Round: round, Matches: matches, Summary: result.Summary}, nil
}

// refreshByeRecipient recomputes the bye recipient's cached stats and history
// from the match log as seen through the round transaction, which includes the
// bye just written.
func (s *roundService) refreshByeRecipient(ctx context.Context, tx *sql.Tx, league *models.League, playerID int) error {
	reg, err := s.regRepo.GetByPlayerAndLeague(ctx, playerID, league.ID, league.Season)
	if err != nil {
		if errors.Is(err, repositories.ErrRegistrationNotFound) {
			return nil
		}
		return err
	}
	matches, err := s.matchRepo.ListByLeagueTx(ctx, tx, league.ID, league.Season, repositories.MatchFilter{})
	if err != nil {
		return err
	}
	stats := computeLeagueStats(playerID, matches)
	history := buildMatchHistory(playerID, matches)
	return s.regRepo.UpdateStatsAndHistory(ctx, tx, reg.ID, stats, history)
}

// eligiblePlayers returns the players whose registration still participates in
// pairing, in registration order.
func (s *roundService) eligiblePlayers(ctx context.Context, leagueID int, season string) ([]*models.Player, error) {
	regs, err := s.regRepo.ListByLeague(ctx, leagueID, season)
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations for league %d: %w", leagueID, err)
	}

	players, err := s.playerRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	byID := make(map[int]*models.Player, len(players))
	for _, p := range players {
		byID[p.ID] = p
	}

	eligible := make([]*models.Player, 0, len(regs))
	for _, reg := range regs {
		if reg.Status != models.RegistrationActive && reg.Status != models.RegistrationConfirmed {
			continue
		}
		if p, ok := byID[reg.PlayerID]; ok {
			eligible = append(eligible, p)
		}
	}
	return eligible, nil
}
