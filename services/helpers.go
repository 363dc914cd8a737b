package services

import (
	"fmt"
	"strings"

	"github.com/morhendos/tenis-del-parque/models"
	"github.com/morhendos/tenis-del-parque/storage"
)

// isValidLeagueTransition enforces the league lifecycle. A league with
// playoffs enabled never closes straight from active: completion comes through
// the playoff stage.
func isValidLeagueTransition(current, next models.LeagueStatus, playoffEnabled bool) bool {
	if current == next {
		return true
	}
	switch current {
	case models.LeagueStatusRegistration:
		return next == models.LeagueStatusActive
	case models.LeagueStatusActive:
		if playoffEnabled {
			return next == models.LeagueStatusPlayoffs
		}
		return next == models.LeagueStatusCompleted
	case models.LeagueStatusPlayoffs:
		return next == models.LeagueStatusCompleted
	}
	return false
}

func populatePlayerPhotoURL(player *models.Player, uploader storage.FileUploader) {
	if player == nil || uploader == nil || player.PhotoKey == nil || *player.PhotoKey == "" {
		return
	}
	if url := uploader.GetPublicURL(*player.PhotoKey); url != "" {
		player.PhotoURL = &url
	}
}

func populateLeagueLogoURL(league *models.League, uploader storage.FileUploader) {
	if league == nil || uploader == nil || league.LogoKey == nil || *league.LogoKey == "" {
		return
	}
	if url := uploader.GetPublicURL(*league.LogoKey); url != "" {
		league.LogoURL = &url
	}
}

func extensionFromContentType(contentType string) (string, error) {
	switch contentType {
	case "image/jpeg", "image/jpg":
		return ".jpg", nil
	case "image/png":
		return ".png", nil
	case "image/webp":
		return ".webp", nil
	default:
		return "", fmt.Errorf("unsupported image content type: %q", contentType)
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
