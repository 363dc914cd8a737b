package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/morhendos/tenis-del-parque/models"
	"github.com/morhendos/tenis-del-parque/repositories"
	"github.com/morhendos/tenis-del-parque/storage"
)

type RegistrationService interface {
	Register(ctx context.Context, playerID, leagueID int) (*models.Registration, error)
	ListByLeague(ctx context.Context, leagueID int) ([]*models.Registration, error)
	UpdateStatus(ctx context.Context, leagueID, playerID int, status models.RegistrationStatus) (*models.Registration, error)
	RecalculateStats(ctx context.Context, leagueID int) ([]*models.Registration, error)
}

type registrationService struct {
	db         repositories.SQLExecutor
	regRepo    repositories.RegistrationRepository
	leagueRepo repositories.LeagueRepository
	playerRepo repositories.PlayerRepository
	matchRepo  repositories.MatchRepository
	uploader   storage.FileUploader
}

func NewRegistrationService(
	db repositories.SQLExecutor,
	regRepo repositories.RegistrationRepository,
	leagueRepo repositories.LeagueRepository,
	playerRepo repositories.PlayerRepository,
	matchRepo repositories.MatchRepository,
	uploader storage.FileUploader,
) RegistrationService {
	return &registrationService{
		db:         db,
		regRepo:    regRepo,
		leagueRepo: leagueRepo,
		playerRepo: playerRepo,
		matchRepo:  matchRepo,
		uploader:   uploader,
	}
}

func (s *registrationService) Register(ctx context.Context, playerID, leagueID int) (*models.Registration, error) {
	league, err := s.leagueRepo.GetByID(ctx, leagueID)
	if err != nil {
		if errors.Is(err, repositories.ErrLeagueNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get league %d: %w", leagueID, err)
	}
	if league.Status != models.LeagueStatusRegistration {
		return nil, ErrLeagueNotAcceptingPlayers
	}

	reg := &models.Registration{
		PlayerID: playerID,
		LeagueID: leagueID,
		Season:   league.Season,
		Status:   models.RegistrationActive,
	}
	if err := s.regRepo.Create(ctx, reg); err != nil {
		switch {
		case errors.Is(err, repositories.ErrRegistrationConflict):
			return nil, ErrRegistrationConflict
		case errors.Is(err, repositories.ErrRegistrationBadPlayer):
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to register player %d: %w", playerID, err)
	}
	return reg, nil
}

func (s *registrationService) ListByLeague(ctx context.Context, leagueID int) ([]*models.Registration, error) {
	league, err := s.leagueRepo.GetByID(ctx, leagueID)
	if err != nil {
		if errors.Is(err, repositories.ErrLeagueNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get league %d: %w", leagueID, err)
	}

	regs, err := s.regRepo.ListByLeague(ctx, leagueID, league.Season)
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations for league %d: %w", leagueID, err)
	}

	players, err := s.playerRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	byID := make(map[int]*models.Player, len(players))
	for _, p := range players {
		p.PasswordHash = ""
		populatePlayerPhotoURL(p, s.uploader)
		byID[p.ID] = p
	}
	for _, reg := range regs {
		reg.Player = byID[reg.PlayerID]
	}
	return regs, nil
}

func (s *registrationService) UpdateStatus(ctx context.Context, leagueID, playerID int, status models.RegistrationStatus) (*models.Registration, error) {
	switch status {
	case models.RegistrationActive, models.RegistrationConfirmed,
		models.RegistrationPending, models.RegistrationInactive:
	default:
		return nil, fmt.Errorf("%w: unknown registration status %q", ErrValidationFailed, status)
	}

	league, err := s.leagueRepo.GetByID(ctx, leagueID)
	if err != nil {
		if errors.Is(err, repositories.ErrLeagueNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get league %d: %w", leagueID, err)
	}

	reg, err := s.regRepo.GetByPlayerAndLeague(ctx, playerID, leagueID, league.Season)
	if err != nil {
		if errors.Is(err, repositories.ErrRegistrationNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get registration: %w", err)
	}

	if err := s.regRepo.UpdateStatus(ctx, reg.ID, status); err != nil {
		return nil, fmt.Errorf("failed to update registration %d status: %w", reg.ID, err)
	}
	reg.Status = status
	return reg, nil
}

// RecalculateStats rebuilds every registration's cached stat block and match
// history in a league from the completed match log. Admin repair tool for
// caches that drifted, for example after manual database surgery.
func (s *registrationService) RecalculateStats(ctx context.Context, leagueID int) ([]*models.Registration, error) {
	league, err := s.leagueRepo.GetByID(ctx, leagueID)
	if err != nil {
		if errors.Is(err, repositories.ErrLeagueNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get league %d: %w", leagueID, err)
	}

	regs, err := s.regRepo.ListByLeague(ctx, leagueID, league.Season)
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations for league %d: %w", leagueID, err)
	}
	matches, err := s.matchRepo.ListByLeague(ctx, leagueID, league.Season, repositories.MatchFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list matches for league %d: %w", leagueID, err)
	}

	for _, reg := range regs {
		stats := computeLeagueStats(reg.PlayerID, matches)
		history := buildMatchHistory(reg.PlayerID, matches)
		if err := s.regRepo.UpdateStatsAndHistory(ctx, s.db, reg.ID, stats, history); err != nil {
			return nil, fmt.Errorf("failed to update stats for registration %d: %w", reg.ID, err)
		}
		reg.Stats = stats
		reg.MatchHistory = history
	}
	return regs, nil
}
