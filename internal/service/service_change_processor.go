// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-trip-keeper/internal/logger"
	"github.com/MKhiriev/go-trip-keeper/internal/metrics"
	"github.com/MKhiriev/go-trip-keeper/internal/store"
	"github.com/MKhiriev/go-trip-keeper/models"
)

// changeProcessor applies pushed changes directly to the repositories. Each
// entity type has its own create, update and delete in service_change_*.go;
// they share the lookup and conflict helpers defined here.
type changeProcessor struct {
	trips        store.TripRepository
	destinations store.DestinationRepository
	expenses     store.ExpenseRepository

	// clock supplies "today" for expenses created without a date.
	clock   func() time.Time
	metrics *metrics.Recorder
}

func NewChangeProcessor(
	trips store.TripRepository,
	destinations store.DestinationRepository,
	expenses store.ExpenseRepository,
	clock func() time.Time,
	recorder *metrics.Recorder,
) ChangeProcessor {
	if clock == nil {
		clock = time.Now
	}

	return &changeProcessor{
		trips:        trips,
		destinations: destinations,
		expenses:     expenses,
		clock:        clock,
		metrics:      recorder,
	}
}

// Process implements [ChangeProcessor].
func (p *changeProcessor) Process(ctx context.Context, userID int64, change models.Change) (models.ChangeOutcome, error) {
	var (
		outcome models.ChangeOutcome
		err     error
	)

	switch change.EntityType {
	case models.EntityTrip:
		outcome, err = p.processTrip(ctx, userID, change)
	case models.EntityDestination:
		outcome, err = p.processDestination(ctx, userID, change)
	case models.EntityExpense:
		outcome, err = p.processExpense(ctx, userID, change)
	default:
		err = fmt.Errorf("%w: %q", ErrUnsupportedEntityType, change.EntityType)
	}

	p.metrics.ObserveChange(change.EntityType.String(), change.Action.String(), outcomeLabel(outcome, err))

	if err != nil {
		return models.ChangeOutcome{}, err
	}

	if !outcome.Success && outcome.Conflict == nil {
		logger.FromContext(ctx).Debug().
			Str("func", "changeProcessor.Process").
			Int64("user_id", userID).
			Str("entity_type", change.EntityType.String()).
			Str("entity_id", change.EntityID).
			Str("action", change.Action.String()).
			Msg("change rejected: target is missing or not owned")
	}

	return outcome, nil
}

func outcomeLabel(outcome models.ChangeOutcome, err error) string {
	switch {
	case err != nil:
		return metrics.OutcomeFailed
	case outcome.Conflict != nil:
		return metrics.OutcomeConflict
	case outcome.Success:
		return metrics.OutcomeApplied
	}
	return metrics.OutcomeRejected
}

func applied() models.ChangeOutcome {
	return models.ChangeOutcome{Success: true}
}

func rejected() models.ChangeOutcome {
	return models.ChangeOutcome{}
}

// conflicted reports change as losing against the stored row.
func conflicted(change models.Change, stored any, serverUpdatedAt time.Time) models.ChangeOutcome {
	return models.ChangeOutcome{
		Conflict: &models.Conflict{
			EntityType:      change.EntityType,
			EntityID:        change.EntityID,
			LocalData:       change.Data,
			ServerData:      entityData(stored),
			LocalUpdatedAt:  change.LocalUpdatedAt,
			ServerUpdatedAt: serverUpdatedAt,
		},
	}
}

// found turns the store's not-found error into a boolean.
func found(err error) (bool, error) {
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, store.ErrEntityNotFound):
		return false, nil
	}
	return false, err
}

// serverStamp returns the stored row's updated_at, or nil when there is no
// stored row.
func serverStamp(exists bool, updatedAt time.Time) *time.Time {
	if !exists {
		return nil
	}
	return &updatedAt
}

// decodeData converts a change payload into one of the typed patches.
func decodeData(data map[string]any, dst any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedChange, err)
	}

	if err = json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedChange, err)
	}

	return nil
}

// entityData renders a stored row the way clients send it.
func entityData(v any) map[string]any {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}

	var data map[string]any
	if err = json.Unmarshal(raw, &data); err != nil {
		return nil
	}

	return data
}

func missingField(name string) error {
	return fmt.Errorf("%w: %s", ErrMissingRequiredField, name)
}

// ownsTrip reports whether tripID names one of userID's trips.
func (p *changeProcessor) ownsTrip(ctx context.Context, userID int64, tripID string) (bool, error) {
	trip, err := p.trips.GetTrip(ctx, tripID)
	exists, err := found(err)
	if err != nil {
		return false, err
	}

	return exists && trip.UserID == userID, nil
}

// destinationOnTrip reports whether destinationID names a destination of
// tripID.
func (p *changeProcessor) destinationOnTrip(ctx context.Context, destinationID, tripID string) (bool, error) {
	destination, err := p.destinations.GetDestination(ctx, destinationID)
	exists, err := found(err)
	if err != nil {
		return false, err
	}

	return exists && destination.TripID == tripID, nil
}
