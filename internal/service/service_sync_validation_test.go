package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-trip-keeper/internal/validators"
	"github.com/MKhiriev/go-trip-keeper/models"
)

type spySyncService struct {
	pushed   int
	pulled   int
	resolved int
}

func (s *spySyncService) Push(context.Context, int64, models.SyncBatch) (models.SyncResult, error) {
	s.pushed++
	return models.NewSyncResult(), nil
}

func (s *spySyncService) Pull(context.Context, int64, *time.Time) (models.SyncResult, error) {
	s.pulled++
	return models.NewSyncResult(), nil
}

func (s *spySyncService) ResolveConflict(context.Context, int64, models.ResolveRequest) (models.ResolveResult, error) {
	s.resolved++
	return models.ResolveResult{Message: "ok"}, nil
}

type spyMigrationService struct{ calls int }

func (s *spyMigrationService) Migrate(context.Context, int64, models.MigrationRequest) (models.MigrationResult, error) {
	s.calls++
	return models.MigrationResult{}, nil
}

func validChange(id string) models.Change {
	return models.Change{
		EntityType:     models.EntityTrip,
		EntityID:       id,
		Action:         models.ActionUpdate,
		LocalUpdatedAt: testNow,
	}
}

func TestSyncValidationService_Push(t *testing.T) {
	tests := []struct {
		name      string
		userID    int64
		batch     models.SyncBatch
		wantErr   error
		wantInner bool
	}{
		{
			name:      "valid batch",
			userID:    testUserID,
			batch:     models.SyncBatch{Changes: []models.Change{validChange("t1")}},
			wantInner: true,
		},
		{
			name:      "empty batch is fine",
			userID:    testUserID,
			batch:     models.SyncBatch{},
			wantInner: true,
		},
		{
			name:    "no user",
			userID:  0,
			batch:   models.SyncBatch{Changes: []models.Change{validChange("t1")}},
			wantErr: ErrValidationNoUserID,
		},
		{
			name:   "unknown entity type",
			userID: testUserID,
			batch: models.SyncBatch{Changes: []models.Change{
				{EntityType: "hotel", EntityID: "h1", Action: models.ActionCreate, LocalUpdatedAt: testNow},
			}},
			wantErr: validators.ErrInvalidEntityType,
		},
		{
			name:    "batch over the limit",
			userID:  testUserID,
			batch:   models.SyncBatch{Changes: []models.Change{validChange("t1"), validChange("t2"), validChange("t3")}},
			wantErr: validators.ErrBatchTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inner := &spySyncService{}
			svc := NewSyncValidationService(validators.NewSyncValidator(2, 0)).Wrap(inner)

			_, err := svc.Push(testCtx(), tt.userID, tt.batch)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				if tt.wantErr != ErrValidationNoUserID {
					assert.ErrorIs(t, err, ErrValidation)
				}
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantInner, inner.pushed == 1)
		})
	}
}

func TestSyncValidationService_PullAndResolve(t *testing.T) {
	inner := &spySyncService{}
	svc := NewSyncValidationService(validators.NewSyncValidator(0, 0)).Wrap(inner)

	_, err := svc.Pull(testCtx(), 0, nil)
	assert.ErrorIs(t, err, ErrValidationNoUserID)

	_, err = svc.Pull(testCtx(), testUserID, nil)
	require.NoError(t, err)

	_, err = svc.ResolveConflict(testCtx(), testUserID, models.ResolveRequest{
		EntityType: models.EntityTrip, EntityID: "t1", Resolution: "merge",
	})
	assert.ErrorIs(t, err, validators.ErrInvalidResolution)
	assert.ErrorIs(t, err, ErrValidation)

	result, err := svc.ResolveConflict(testCtx(), testUserID, models.ResolveRequest{
		EntityType: models.EntityTrip, EntityID: "t1", Resolution: models.ResolutionKeepServer,
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", result.Message)

	assert.Equal(t, 1, inner.pulled)
	assert.Equal(t, 1, inner.resolved)
}

func TestMigrationValidationService(t *testing.T) {
	inner := &spyMigrationService{}
	svc := NewMigrationValidationService(validators.NewSyncValidator(0, 2)).Wrap(inner)

	_, err := svc.Migrate(testCtx(), testUserID, models.MigrationRequest{
		Trips: []models.TripRecord{{ID: "t1", Name: "Jeju"}},
	})
	assert.ErrorIs(t, err, ErrValidation)
	assert.ErrorIs(t, err, validators.ErrInvalidRecord)

	_, err = svc.Migrate(testCtx(), testUserID, models.MigrationRequest{
		Trips: []models.TripRecord{
			tripRecord("t1", "Jeju", "2026-05-01"),
			tripRecord("t2", "Busan", "2026-06-01"),
			tripRecord("t3", "Seoul", "2026-07-01"),
		},
	})
	assert.ErrorIs(t, err, validators.ErrTooManyRecords)

	_, err = svc.Migrate(testCtx(), 0, models.MigrationRequest{})
	assert.ErrorIs(t, err, ErrValidationNoUserID)

	_, err = svc.Migrate(testCtx(), testUserID, models.MigrationRequest{
		Trips: []models.TripRecord{tripRecord("t1", "Jeju", "2026-05-01")},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, inner.calls)
}
