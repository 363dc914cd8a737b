package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/morhendos/tenis-del-parque/models"
	"github.com/morhendos/tenis-del-parque/repositories"
	"github.com/morhendos/tenis-del-parque/standings"
	"github.com/morhendos/tenis-del-parque/storage"
)

type StandingsService interface {
	Table(ctx context.Context, leagueID int, includeStatusTier bool) ([]standings.Row, error)
}

type standingsService struct {
	leagueRepo repositories.LeagueRepository
	regRepo    repositories.RegistrationRepository
	matchRepo  repositories.MatchRepository
	playerRepo repositories.PlayerRepository
	uploader   storage.FileUploader
}

func NewStandingsService(
	leagueRepo repositories.LeagueRepository,
	regRepo repositories.RegistrationRepository,
	matchRepo repositories.MatchRepository,
	playerRepo repositories.PlayerRepository,
	uploader storage.FileUploader,
) StandingsService {
	return &standingsService{
		leagueRepo: leagueRepo,
		regRepo:    regRepo,
		matchRepo:  matchRepo,
		playerRepo: playerRepo,
		uploader:   uploader,
	}
}

// Table recomputes the league table from the match log. Cached registration
// stats are not consulted.
func (s *standingsService) Table(ctx context.Context, leagueID int, includeStatusTier bool) ([]standings.Row, error) {
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

	matches, err := s.matchRepo.ListByLeague(ctx, leagueID, league.Season, repositories.MatchFilter{
		Type: models.MatchTypeRegular,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list matches for league %d: %w", leagueID, err)
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

	roster := make([]standings.Entry, 0, len(regs))
	for _, reg := range regs {
		player, ok := byID[reg.PlayerID]
		if !ok {
			continue
		}
		roster = append(roster, standings.Entry{Player: player, Status: reg.Status})
	}

	return standings.Table(roster, matches, includeStatusTier), nil
}
