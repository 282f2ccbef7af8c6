// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/MKhiriev/go-trip-keeper/internal/logger"
	"github.com/MKhiriev/go-trip-keeper/internal/store"
	"github.com/MKhiriev/go-trip-keeper/models"
)

// syncService is the concrete implementation of SyncService.
//
// Changes of one push are applied one after another in submission order;
// nothing is shared between requests, so concurrent pushes of the same user
// are only ordered by the compare-and-set on updated_at.
type syncService struct {
	processor ChangeProcessor

	trips        store.TripRepository
	destinations store.DestinationRepository
	expenses     store.ExpenseRepository

	// clock stamps syncedAt. It must agree with the store clock, otherwise
	// watermarks skip or repeat rows.
	clock func() time.Time

	logger *logger.Logger
}

func NewSyncService(
	processor ChangeProcessor,
	trips store.TripRepository,
	destinations store.DestinationRepository,
	expenses store.ExpenseRepository,
	clock func() time.Time,
	logger *logger.Logger,
) SyncService {
	if clock == nil {
		clock = time.Now
	}

	return &syncService{
		processor:    processor,
		trips:        trips,
		destinations: destinations,
		expenses:     expenses,
		clock:        clock,
		logger:       logger,
	}
}

// Push implements SyncService.
//
// A change that fails to process is logged and skipped; it is neither
// applied nor conflicted. When batch.LastSyncedAt is set the result also
// carries every owned row written after it, so the client can catch up in
// the same round trip.
func (s *syncService) Push(ctx context.Context, userID int64, batch models.SyncBatch) (models.SyncResult, error) {
	log := logger.FromContext(ctx)

	result := models.NewSyncResult()
	appliedIDs := make(map[string]struct{}, len(batch.Changes))

	for i, change := range batch.Changes {
		if err := ctx.Err(); err != nil {
			return models.SyncResult{}, err
		}

		outcome, err := s.processor.Process(ctx, userID, change)
		if err != nil {
			log.Err(err).
				Str("func", "syncService.Push").
				Int64("user_id", userID).
				Int("index", i).
				Str("entity_type", change.EntityType.String()).
				Str("entity_id", change.EntityID).
				Str("action", change.Action.String()).
				Msg("change skipped")
			continue
		}

		switch {
		case outcome.Conflict != nil:
			result.Conflicts = append(result.Conflicts, *outcome.Conflict)
		case outcome.Success:
			if _, seen := appliedIDs[change.EntityID]; !seen {
				appliedIDs[change.EntityID] = struct{}{}
				result.Applied = append(result.Applied, change.EntityID)
			}
		}
	}

	if batch.LastSyncedAt != nil {
		changes, err := s.collectChanges(ctx, userID, batch.LastSyncedAt, models.ActionUpdate)
		if err != nil {
			log.Err(err).Str("func", "syncService.Push").Int64("user_id", userID).Msg("failed to collect server changes")
			return models.SyncResult{}, err
		}
		result.ServerChanges = changes
	}

	result.SyncedAt = s.now()

	log.Info().
		Str("func", "syncService.Push").
		Int64("user_id", userID).
		Int("changes", len(batch.Changes)).
		Int("applied", len(result.Applied)).
		Int("conflicts", len(result.Conflicts)).
		Int("server_changes", len(result.ServerChanges)).
		Msg("push processed")

	return result, nil
}

// Pull implements SyncService. Rows changed since the watermark are tagged
// "update"; a snapshot taken without a watermark is tagged "create".
func (s *syncService) Pull(ctx context.Context, userID int64, lastSyncedAt *time.Time) (models.SyncResult, error) {
	log := logger.FromContext(ctx)

	action := models.ActionUpdate
	if lastSyncedAt == nil {
		action = models.ActionCreate
	}

	changes, err := s.collectChanges(ctx, userID, lastSyncedAt, action)
	if err != nil {
		log.Err(err).Str("func", "syncService.Pull").Int64("user_id", userID).Msg("failed to collect server changes")
		return models.SyncResult{}, err
	}

	result := models.NewSyncResult()
	result.ServerChanges = changes
	result.SyncedAt = s.now()

	log.Info().
		Str("func", "syncService.Pull").
		Int64("user_id", userID).
		Bool("snapshot", lastSyncedAt == nil).
		Int("server_changes", len(changes)).
		Msg("pull processed")

	return result, nil
}

// ResolveConflict implements SyncService. No state changes for either
// resolution: the server keeps no pending copy of the losing change, so
// keeping the local side means pushing it again with a newer timestamp.
func (s *syncService) ResolveConflict(ctx context.Context, userID int64, req models.ResolveRequest) (models.ResolveResult, error) {
	logger.FromContext(ctx).Info().
		Str("func", "syncService.ResolveConflict").
		Int64("user_id", userID).
		Str("entity_type", req.EntityType.String()).
		Str("entity_id", req.EntityID).
		Str("resolution", string(req.Resolution)).
		Msg("conflict resolution acknowledged")

	var message string
	switch req.Resolution {
	case models.ResolutionKeepLocal:
		message = fmt.Sprintf("keep_local acknowledged for %s %s: push the local version again with a newer localUpdatedAt",
			req.EntityType, req.EntityID)
	default:
		message = fmt.Sprintf("keep_server acknowledged for %s %s: the server version is unchanged, pull to refresh",
			req.EntityType, req.EntityID)
	}

	return models.ResolveResult{Message: message}, nil
}

// collectChanges lists owned rows as changes, parents first so a client can
// apply them in order.
func (s *syncService) collectChanges(ctx context.Context, userID int64, since *time.Time, action models.Action) ([]models.Change, error) {
	changes := make([]models.Change, 0)

	trips, err := s.trips.ListTrips(ctx, userID, since)
	if err != nil {
		return nil, fmt.Errorf("listing trips: %w", err)
	}
	for _, trip := range trips {
		changes = append(changes, rowChange(models.EntityTrip, trip.ID, action, trip, trip.UpdatedAt))
	}

	destinations, err := s.destinations.ListDestinations(ctx, userID, since)
	if err != nil {
		return nil, fmt.Errorf("listing destinations: %w", err)
	}
	for _, destination := range destinations {
		changes = append(changes, rowChange(models.EntityDestination, destination.ID, action, destination, destination.UpdatedAt))
	}

	expenses, err := s.expenses.ListExpenses(ctx, userID, since)
	if err != nil {
		return nil, fmt.Errorf("listing expenses: %w", err)
	}
	for _, expense := range expenses {
		changes = append(changes, rowChange(models.EntityExpense, expense.ID, action, expense, expense.UpdatedAt))
	}

	return changes, nil
}

func rowChange(entityType models.EntityType, id string, action models.Action, row any, updatedAt time.Time) models.Change {
	return models.Change{
		EntityType:     entityType,
		EntityID:       id,
		Action:         action,
		Data:           entityData(row),
		LocalUpdatedAt: updatedAt,
	}
}

func (s *syncService) now() time.Time {
	return s.clock().UTC().Truncate(time.Microsecond)
}
