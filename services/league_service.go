package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"

	"github.com/morhendos/tenis-del-parque/models"
	"github.com/morhendos/tenis-del-parque/repositories"
	"github.com/morhendos/tenis-del-parque/storage"
)

type CreateLeagueInput struct {
	Name           string `json:"name"`
	Season         string `json:"season"`
	PlayoffEnabled bool   `json:"playoff_enabled"`
	PlayoffGroups  int    `json:"playoff_groups"`
}

type LeagueService interface {
	Create(ctx context.Context, input CreateLeagueInput) (*models.League, error)
	GetByID(ctx context.Context, id int) (*models.League, error)
	List(ctx context.Context) ([]*models.League, error)
	UpdateStatus(ctx context.Context, id int, status models.LeagueStatus) (*models.League, error)
	UploadLogo(ctx context.Context, leagueID int, contentType string, file io.Reader) (*models.League, error)
}

type leagueService struct {
	db         *sql.DB
	leagueRepo repositories.LeagueRepository
	uploader   storage.FileUploader
}

func NewLeagueService(db *sql.DB, leagueRepo repositories.LeagueRepository, uploader storage.FileUploader) LeagueService {
	return &leagueService{
		db:         db,
		leagueRepo: leagueRepo,
		uploader:   uploader,
	}
}

func (s *leagueService) Create(ctx context.Context, input CreateLeagueInput) (*models.League, error) {
	if input.Name == "" || input.Season == "" {
		return nil, fmt.Errorf("%w: name and season are required", ErrValidationFailed)
	}
	groups := input.PlayoffGroups
	if input.PlayoffEnabled && groups == 0 {
		groups = 1
	}
	if groups < 0 || groups > 2 {
		return nil, fmt.Errorf("%w: playoff groups must be 1 or 2", ErrValidationFailed)
	}

	league := &models.League{
		Name:           input.Name,
		Season:         input.Season,
		Status:         models.LeagueStatusRegistration,
		PlayoffEnabled: input.PlayoffEnabled,
		PlayoffGroups:  groups,
	}
	if err := s.leagueRepo.Create(ctx, league); err != nil {
		if errors.Is(err, repositories.ErrLeagueNameConflict) {
			return nil, ErrLeagueNameConflict
		}
		return nil, fmt.Errorf("failed to create league: %w", err)
	}
	return league, nil
}

func (s *leagueService) GetByID(ctx context.Context, id int) (*models.League, error) {
	league, err := s.leagueRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrLeagueNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get league %d: %w", id, err)
	}
	populateLeagueLogoURL(league, s.uploader)
	return league, nil
}

func (s *leagueService) List(ctx context.Context) ([]*models.League, error) {
	leagues, err := s.leagueRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list leagues: %w", err)
	}
	for _, l := range leagues {
		populateLeagueLogoURL(l, s.uploader)
	}
	return leagues, nil
}

func (s *leagueService) UpdateStatus(ctx context.Context, id int, status models.LeagueStatus) (*models.League, error) {
	switch status {
	case models.LeagueStatusRegistration, models.LeagueStatusActive,
		models.LeagueStatusPlayoffs, models.LeagueStatusCompleted:
	default:
		return nil, ErrLeagueInvalidStatus
	}

	league, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isValidLeagueTransition(league.Status, status, league.PlayoffEnabled) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrLeagueInvalidStatusTransition, league.Status, status)
	}
	if league.Status == status {
		return league, nil
	}

	if err := s.leagueRepo.UpdateStatus(ctx, s.db, id, status); err != nil {
		return nil, fmt.Errorf("failed to update league %d status: %w", id, err)
	}
	league.Status = status
	return league, nil
}

func (s *leagueService) UploadLogo(ctx context.Context, leagueID int, contentType string, file io.Reader) (*models.League, error) {
	if s.uploader == nil {
		return nil, fmt.Errorf("%w: object storage is not configured", ErrValidationFailed)
	}
	league, err := s.GetByID(ctx, leagueID)
	if err != nil {
		return nil, err
	}

	ext, err := extensionFromContentType(contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	oldKey := league.LogoKey
	key := fmt.Sprintf("leagues/%d/logo%s", leagueID, ext)

	if _, err := s.uploader.Upload(ctx, key, contentType, file); err != nil {
		return nil, fmt.Errorf("failed to upload league logo: %w", err)
	}
	if err := s.leagueRepo.UpdateLogoKey(ctx, leagueID, &key); err != nil {
		return nil, fmt.Errorf("failed to save logo key for league %d: %w", leagueID, err)
	}
	if oldKey != nil && *oldKey != "" && *oldKey != key {
		_ = s.uploader.Delete(ctx, *oldKey)
	}

	league.LogoKey = &key
	populateLeagueLogoURL(league, s.uploader)
	return league, nil
}
