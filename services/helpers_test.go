package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/morhendos/tenis-del-parque/models"
)

func TestIsValidLeagueTransition(t *testing.T) {
	tests := []struct {
		current  models.LeagueStatus
		next     models.LeagueStatus
		playoffs bool
		want     bool
	}{
		{models.LeagueStatusRegistration, models.LeagueStatusActive, false, true},
		{models.LeagueStatusRegistration, models.LeagueStatusActive, true, true},
		{models.LeagueStatusActive, models.LeagueStatusPlayoffs, true, true},
		{models.LeagueStatusActive, models.LeagueStatusCompleted, false, true},
		{models.LeagueStatusPlayoffs, models.LeagueStatusCompleted, true, true},
		{models.LeagueStatusActive, models.LeagueStatusActive, true, true},
		{models.LeagueStatusActive, models.LeagueStatusCompleted, true, false},
		{models.LeagueStatusActive, models.LeagueStatusPlayoffs, false, false},
		{models.LeagueStatusRegistration, models.LeagueStatusPlayoffs, true, false},
		{models.LeagueStatusRegistration, models.LeagueStatusCompleted, false, false},
		{models.LeagueStatusActive, models.LeagueStatusRegistration, false, false},
		{models.LeagueStatusPlayoffs, models.LeagueStatusActive, true, false},
		{models.LeagueStatusCompleted, models.LeagueStatusActive, false, false},
	}
	for _, tt := range tests {
		got := isValidLeagueTransition(tt.current, tt.next, tt.playoffs)
		assert.Equal(t, tt.want, got, "%s -> %s (playoffs=%v)", tt.current, tt.next, tt.playoffs)
	}
}

func TestExtensionFromContentType(t *testing.T) {
	ext, err := extensionFromContentType("image/jpeg")
	assert.NoError(t, err)
	assert.Equal(t, ".jpg", ext)

	ext, err = extensionFromContentType("image/png")
	assert.NoError(t, err)
	assert.Equal(t, ".png", ext)

	ext, err = extensionFromContentType("image/webp")
	assert.NoError(t, err)
	assert.Equal(t, ".webp", ext)

	_, err = extensionFromContentType("application/pdf")
	assert.Error(t, err)
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "ana@example.com", normalizeEmail("  Ana@Example.COM "))
}
