package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/morhendos/tenis-del-parque/models"
)

func TestRestore(t *testing.T) {
	tests := []struct {
		name    string
		status  models.MatchStatus
		wantErr error
	}{
		{name: "cancelled match returns to the schedule", status: models.MatchStatusCancelled},
		{name: "postponed match returns to the schedule", status: models.MatchStatusPostponed},
		{name: "completed match stays completed", status: models.MatchStatusCompleted, wantErr: ErrMatchAlreadyCompleted},
		{name: "scheduled match has nothing to restore", status: models.MatchStatusScheduled, wantErr: ErrValidationFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			match := scheduledMatch(1, 2)
			match.Status = tt.status
			repo := newStubMatchRepo(match)
			svc := NewMatchService(repo, nil)

			restored, err := svc.Restore(context.Background(), match.ID)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, tt.status, match.Status, "status must not change on a rejected restore")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, models.MatchStatusScheduled, restored.Status)
			stored, err := repo.GetByID(context.Background(), match.ID)
			require.NoError(t, err)
			assert.Equal(t, models.MatchStatusScheduled, stored.Status)
		})
	}
}

func TestRestoreRejectsBye(t *testing.T) {
	bye := scheduledMatch(1, 2)
	bye.Player2ID = nil
	bye.IsBye = true
	bye.Status = models.MatchStatusCancelled
	repo := newStubMatchRepo(bye)
	svc := NewMatchService(repo, nil)

	_, err := svc.Restore(context.Background(), bye.ID)
	assert.ErrorIs(t, err, ErrByeMatchImmutable)
}

func TestRestoreUnknownMatch(t *testing.T) {
	svc := NewMatchService(newStubMatchRepo(), nil)
	_, err := svc.Restore(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)
}
