package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/go-trip-keeper/internal/logger"
	"github.com/MKhiriev/go-trip-keeper/internal/mock"
	"github.com/MKhiriev/go-trip-keeper/models"
)

// ---- test doubles ----

type stubProcessor struct {
	processFn func(ctx context.Context, userID int64, change models.Change) (models.ChangeOutcome, error)
	seen      []string
}

func (s *stubProcessor) Process(ctx context.Context, userID int64, change models.Change) (models.ChangeOutcome, error) {
	s.seen = append(s.seen, change.EntityID)
	if s.processFn == nil {
		return applied(), nil
	}
	return s.processFn(ctx, userID, change)
}

func newTestSyncService(t *testing.T, processor ChangeProcessor) (SyncService, processorMocks) {
	t.Helper()
	ctrl := gomock.NewController(t)
	m := processorMocks{
		trips:        mock.NewMockTripRepository(ctrl),
		destinations: mock.NewMockDestinationRepository(ctrl),
		expenses:     mock.NewMockExpenseRepository(ctrl),
	}
	return NewSyncService(processor, m.trips, m.destinations, m.expenses, testClock, logger.Nop()), m
}

func (m processorMocks) expectLists(since *time.Time, trips []models.Trip, destinations []models.Destination, expenses []models.Expense) {
	m.trips.EXPECT().ListTrips(gomock.Any(), testUserID, since).Return(trips, nil)
	m.destinations.EXPECT().ListDestinations(gomock.Any(), testUserID, since).Return(destinations, nil)
	m.expenses.EXPECT().ListExpenses(gomock.Any(), testUserID, since).Return(expenses, nil)
}

// ---- Push ----

func TestSyncService_Push_Outcomes(t *testing.T) {
	conflict := &models.Conflict{EntityType: models.EntityTrip, EntityID: "t2"}
	processor := &stubProcessor{
		processFn: func(_ context.Context, _ int64, change models.Change) (models.ChangeOutcome, error) {
			switch change.EntityID {
			case "t2":
				return models.ChangeOutcome{Conflict: conflict}, nil
			case "t3":
				return rejected(), nil
			case "t4":
				return models.ChangeOutcome{}, ErrMissingRequiredField
			}
			return applied(), nil
		},
	}
	svc, _ := newTestSyncService(t, processor)

	batch := models.SyncBatch{Changes: []models.Change{
		{EntityType: models.EntityTrip, EntityID: "t1", Action: models.ActionCreate},
		{EntityType: models.EntityTrip, EntityID: "t2", Action: models.ActionUpdate},
		{EntityType: models.EntityTrip, EntityID: "t3", Action: models.ActionUpdate},
		{EntityType: models.EntityTrip, EntityID: "t4", Action: models.ActionCreate},
		{EntityType: models.EntityTrip, EntityID: "t1", Action: models.ActionUpdate},
		{EntityType: models.EntityTrip, EntityID: "t5", Action: models.ActionDelete},
	}}

	result, err := svc.Push(testCtx(), testUserID, batch)

	require.NoError(t, err)
	assert.Equal(t, []string{"t1", "t2", "t3", "t4", "t1", "t5"}, processor.seen, "changes run in submission order")
	assert.Equal(t, []string{"t1", "t5"}, result.Applied, "applied ids are deduplicated")
	require.Len(t, result.Conflicts, 1)
	assert.Equal(t, "t2", result.Conflicts[0].EntityID)
	assert.Empty(t, result.ServerChanges)
	assert.NotNil(t, result.ServerChanges)
	assert.True(t, testNow.Equal(result.SyncedAt))
}

func TestSyncService_Push_EmptyBatch(t *testing.T) {
	svc, _ := newTestSyncService(t, &stubProcessor{})

	result, err := svc.Push(testCtx(), testUserID, models.SyncBatch{})

	require.NoError(t, err)
	assert.Empty(t, result.Applied)
	assert.NotNil(t, result.Applied)
	assert.Empty(t, result.Conflicts)
}

func TestSyncService_Push_WithWatermarkReturnsServerChanges(t *testing.T) {
	since := testNow.Add(-time.Hour)
	svc, m := newTestSyncService(t, &stubProcessor{})
	m.expectLists(&since,
		[]models.Trip{storedTrip("t9", testUserID, testNow)},
		nil,
		[]models.Expense{{ID: "e9", TripID: "t9", UpdatedAt: testNow}},
	)

	result, err := svc.Push(testCtx(), testUserID, models.SyncBatch{
		Changes:      []models.Change{{EntityType: models.EntityTrip, EntityID: "t1", Action: models.ActionCreate}},
		LastSyncedAt: &since,
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"t1"}, result.Applied)
	require.Len(t, result.ServerChanges, 2)
	assert.Equal(t, models.ActionUpdate, result.ServerChanges[0].Action)
	assert.Equal(t, "t9", result.ServerChanges[0].EntityID)
	assert.Equal(t, models.EntityExpense, result.ServerChanges[1].EntityType)
}

func TestSyncService_Push_ListFailure(t *testing.T) {
	since := testNow.Add(-time.Hour)
	listErr := errors.New("db down")
	svc, m := newTestSyncService(t, &stubProcessor{})
	m.trips.EXPECT().ListTrips(gomock.Any(), testUserID, &since).Return(nil, listErr)

	_, err := svc.Push(testCtx(), testUserID, models.SyncBatch{LastSyncedAt: &since})

	assert.ErrorIs(t, err, listErr)
}

func TestSyncService_Push_CancelledContext(t *testing.T) {
	processor := &stubProcessor{}
	svc, _ := newTestSyncService(t, processor)

	ctx, cancel := context.WithCancel(testCtx())
	cancel()

	_, err := svc.Push(ctx, testUserID, models.SyncBatch{Changes: []models.Change{{EntityID: "t1"}}})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, processor.seen)
}

// ---- Pull ----

func TestSyncService_Pull(t *testing.T) {
	since := testNow.Add(-time.Hour)

	tests := []struct {
		name       string
		since      *time.Time
		wantAction models.Action
	}{
		{name: "snapshot without watermark", since: nil, wantAction: models.ActionCreate},
		{name: "delta after watermark", since: &since, wantAction: models.ActionUpdate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newTestSyncService(t, &stubProcessor{})
			m.expectLists(tt.since,
				[]models.Trip{storedTrip("t1", testUserID, testNow)},
				[]models.Destination{{ID: "d1", TripID: "t1", Name: "Busan", UpdatedAt: testNow.Add(time.Second)}},
				[]models.Expense{{ID: "e1", TripID: "t1", Amount: 5, UpdatedAt: testNow.Add(2 * time.Second)}},
			)

			result, err := svc.Pull(testCtx(), testUserID, tt.since)

			require.NoError(t, err)
			require.Len(t, result.ServerChanges, 3)

			wantOrder := []models.EntityType{models.EntityTrip, models.EntityDestination, models.EntityExpense}
			for i, c := range result.ServerChanges {
				assert.Equal(t, wantOrder[i], c.EntityType, "parents come first")
				assert.Equal(t, tt.wantAction, c.Action)
			}

			dest := result.ServerChanges[1]
			assert.Equal(t, "d1", dest.EntityID)
			assert.Equal(t, "Busan", dest.Data["name"])
			assert.Equal(t, "t1", dest.Data["tripId"])
			assert.True(t, testNow.Add(time.Second).Equal(dest.LocalUpdatedAt))

			assert.Empty(t, result.Applied)
			assert.Empty(t, result.Conflicts)
			assert.True(t, testNow.Equal(result.SyncedAt))
		})
	}
}

func TestSyncService_Pull_Empty(t *testing.T) {
	svc, m := newTestSyncService(t, &stubProcessor{})
	m.expectLists(nil, nil, nil, nil)

	result, err := svc.Pull(testCtx(), testUserID, nil)

	require.NoError(t, err)
	assert.NotNil(t, result.ServerChanges)
	assert.Empty(t, result.ServerChanges)
}

func TestSyncService_Pull_ListFailure(t *testing.T) {
	listErr := errors.New("db down")
	svc, m := newTestSyncService(t, &stubProcessor{})
	m.trips.EXPECT().ListTrips(gomock.Any(), testUserID, gomock.Nil()).Return(nil, nil)
	m.destinations.EXPECT().ListDestinations(gomock.Any(), testUserID, gomock.Nil()).Return(nil, listErr)

	_, err := svc.Pull(testCtx(), testUserID, nil)

	assert.ErrorIs(t, err, listErr)
}

// ---- ResolveConflict ----

func TestSyncService_ResolveConflict(t *testing.T) {
	tests := []struct {
		name       string
		resolution models.Resolution
		want       string
	}{
		{
			name:       "keep local",
			resolution: models.ResolutionKeepLocal,
			want:       "keep_local acknowledged for trip t1: push the local version again with a newer localUpdatedAt",
		},
		{
			name:       "keep server",
			resolution: models.ResolutionKeepServer,
			want:       "keep_server acknowledged for trip t1: the server version is unchanged, pull to refresh",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestSyncService(t, &stubProcessor{})

			result, err := svc.ResolveConflict(testCtx(), testUserID, models.ResolveRequest{
				EntityType: models.EntityTrip,
				EntityID:   "t1",
				Resolution: tt.resolution,
			})

			require.NoError(t, err)
			assert.Equal(t, tt.want, result.Message)
		})
	}
}
