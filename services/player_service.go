package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/morhendos/tenis-del-parque/models"
	"github.com/morhendos/tenis-del-parque/repositories"
	"github.com/morhendos/tenis-del-parque/storage"
)

type PlayerService interface {
	GetByID(ctx context.Context, id int) (*models.Player, error)
	List(ctx context.Context) ([]*models.Player, error)
	UploadPhoto(ctx context.Context, playerID int, contentType string, file io.Reader) (*models.Player, error)
}

type playerService struct {
	playerRepo repositories.PlayerRepository
	uploader   storage.FileUploader
}

func NewPlayerService(playerRepo repositories.PlayerRepository, uploader storage.FileUploader) PlayerService {
	return &playerService{
		playerRepo: playerRepo,
		uploader:   uploader,
	}
}

func (s *playerService) GetByID(ctx context.Context, id int) (*models.Player, error) {
	player, err := s.playerRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get player %d: %w", id, err)
	}
	player.PasswordHash = ""
	populatePlayerPhotoURL(player, s.uploader)
	return player, nil
}

func (s *playerService) List(ctx context.Context) ([]*models.Player, error) {
	players, err := s.playerRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	for _, p := range players {
		p.PasswordHash = ""
		populatePlayerPhotoURL(p, s.uploader)
	}
	return players, nil
}

func (s *playerService) UploadPhoto(ctx context.Context, playerID int, contentType string, file io.Reader) (*models.Player, error) {
	if s.uploader == nil {
		return nil, fmt.Errorf("%w: object storage is not configured", ErrValidationFailed)
	}
	player, err := s.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get player %d: %w", playerID, err)
	}

	ext, err := extensionFromContentType(contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	oldKey := player.PhotoKey
	key := fmt.Sprintf("players/%d/photo%s", playerID, ext)

	if _, err := s.uploader.Upload(ctx, key, contentType, file); err != nil {
		return nil, fmt.Errorf("failed to upload player photo: %w", err)
	}

	if err := s.playerRepo.UpdatePhotoKey(ctx, playerID, &key); err != nil {
		return nil, fmt.Errorf("failed to save photo key for player %d: %w", playerID, err)
	}

	if oldKey != nil && *oldKey != "" && *oldKey != key {
		_ = s.uploader.Delete(ctx, *oldKey)
	}

	player.PhotoKey = &key
	player.PasswordHash = ""
	populatePlayerPhotoURL(player, s.uploader)
	return player, nil
}
