package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/morhendos/tenis-del-parque/models"
	"github.com/morhendos/tenis-del-parque/repositories"
)

type ScheduleInput struct {
	ProposedDate  *time.Time `json:"proposed_date,omitempty"`
	ConfirmedDate *time.Time `json:"confirmed_date,omitempty"`
	Venue         *string    `json:"venue,omitempty"`
}

type MatchService interface {
	GetByID(ctx context.Context, id int) (*models.Match, error)
	ListByLeague(ctx context.Context, leagueID int, filter repositories.MatchFilter) ([]*models.Match, error)
	UpdateSchedule(ctx context.Context, matchID, playerID int, input ScheduleInput) (*models.Match, error)
	Postpone(ctx context.Context, matchID int) (*models.Match, error)
	Cancel(ctx context.Context, matchID int) (*models.Match, error)
	Restore(ctx context.Context, matchID int) (*models.Match, error)
}

type matchService struct {
	matchRepo  repositories.MatchRepository
	leagueRepo repositories.LeagueRepository
}

func NewMatchService(matchRepo repositories.MatchRepository, leagueRepo repositories.LeagueRepository) MatchService {
	return &matchService{
		matchRepo:  matchRepo,
		leagueRepo: leagueRepo,
	}
}

func (s *matchService) GetByID(ctx context.Context, id int) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get match %d: %w", id, err)
	}
	return match, nil
}

func (s *matchService) ListByLeague(ctx context.Context, leagueID int, filter repositories.MatchFilter) ([]*models.Match, error) {
	league, err := s.leagueRepo.GetByID(ctx, leagueID)
	if err != nil {
		if errors.Is(err, repositories.ErrLeagueNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get league %d: %w", leagueID, err)
	}
	matches, err := s.matchRepo.ListByLeague(ctx, leagueID, league.Season, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches for league %d: %w", leagueID, err)
	}
	return matches, nil
}

// UpdateSchedule lets one of the two participants propose or confirm a date.
// playerID 0 means an admin edit, which skips the participant check.
func (s *matchService) UpdateSchedule(ctx context.Context, matchID, playerID int, input ScheduleInput) (*models.Match, error) {
	match, err := s.GetByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if match.IsBye {
		return nil, ErrByeMatchImmutable
	}
	if match.Status != models.MatchStatusScheduled && match.Status != models.MatchStatusPostponed {
		return nil, ErrMatchNotScheduled
	}
	if playerID != 0 && !match.Involves(playerID) {
		return nil, ErrForbiddenOperation
	}

	if input.ProposedDate != nil {
		match.Schedule.ProposedDate = input.ProposedDate
	}
	if input.ConfirmedDate != nil {
		match.Schedule.ConfirmedDate = input.ConfirmedDate
	}
	if input.Venue != nil {
		match.Schedule.Venue = input.Venue
	}

	if err := s.matchRepo.UpdateSchedule(ctx, matchID, match.Schedule); err != nil {
		return nil, fmt.Errorf("failed to update schedule for match %d: %w", matchID, err)
	}
	if match.Status == models.MatchStatusPostponed && input.ConfirmedDate != nil {
		if err := s.matchRepo.UpdateStatus(ctx, matchID, models.MatchStatusScheduled); err != nil {
			return nil, fmt.Errorf("failed to reschedule match %d: %w", matchID, err)
		}
		match.Status = models.MatchStatusScheduled
	}
	return match, nil
}

func (s *matchService) Postpone(ctx context.Context, matchID int) (*models.Match, error) {
	return s.transition(ctx, matchID, models.MatchStatusPostponed)
}

func (s *matchService) Cancel(ctx context.Context, matchID int) (*models.Match, error) {
	return s.transition(ctx, matchID, models.MatchStatusCancelled)
}

// Restore puts a postponed or cancelled match back on the schedule.
func (s *matchService) Restore(ctx context.Context, matchID int) (*models.Match, error) {
	match, err := s.GetByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if match.IsBye {
		return nil, ErrByeMatchImmutable
	}
	switch match.Status {
	case models.MatchStatusPostponed, models.MatchStatusCancelled:
	case models.MatchStatusCompleted:
		return nil, ErrMatchAlreadyCompleted
	default:
		return nil, fmt.Errorf("%w: only postponed or cancelled matches can be restored", ErrValidationFailed)
	}
	if err := s.matchRepo.UpdateStatus(ctx, matchID, models.MatchStatusScheduled); err != nil {
		return nil, fmt.Errorf("failed to restore match %d: %w", matchID, err)
	}
	match.Status = models.MatchStatusScheduled
	return match, nil
}

func (s *matchService) transition(ctx context.Context, matchID int, status models.MatchStatus) (*models.Match, error) {
	match, err := s.GetByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if match.IsBye {
		return nil, ErrByeMatchImmutable
	}
	if match.Status == models.MatchStatusCompleted {
		return nil, ErrMatchAlreadyCompleted
	}
	if err := s.matchRepo.UpdateStatus(ctx, matchID, status); err != nil {
		return nil, fmt.Errorf("failed to set match %d to %s: %w", matchID, status, err)
	}
	match.Status = status
	return match, nil
}
