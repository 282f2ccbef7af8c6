package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/MKhiriev/go-trip-keeper/internal/logger"
	"github.com/MKhiriev/go-trip-keeper/internal/store"
	"github.com/MKhiriev/go-trip-keeper/models"
)

func (p *changeProcessor) processTrip(ctx context.Context, userID int64, change models.Change) (models.ChangeOutcome, error) {
	switch change.Action {
	case models.ActionCreate:
		return p.createTrip(ctx, userID, change)
	case models.ActionUpdate:
		return p.updateTrip(ctx, userID, change)
	case models.ActionDelete:
		return p.deleteTrip(ctx, userID, change)
	}
	return models.ChangeOutcome{}, fmt.Errorf("%w: %q", ErrUnsupportedAction, change.Action)
}

func (p *changeProcessor) createTrip(ctx context.Context, userID int64, change models.Change) (models.ChangeOutcome, error) {
	existing, err := p.trips.GetTrip(ctx, change.EntityID)
	exists, err := found(err)
	if err != nil {
		return models.ChangeOutcome{}, err
	}
	// an id taken by another user is never revealed
	if exists && existing.UserID != userID {
		return rejected(), nil
	}
	if DetectConflict(change.Action, &change.LocalUpdatedAt, serverStamp(exists, existing.UpdatedAt)) == Conflict {
		return conflicted(change, existing, existing.UpdatedAt), nil
	}

	var patch models.TripPatch
	if err = decodeData(change.Data, &patch); err != nil {
		return models.ChangeOutcome{}, err
	}

	trip, err := newTrip(userID, change.EntityID, patch)
	if err != nil {
		return models.ChangeOutcome{}, err
	}

	if _, err = p.trips.CreateTrip(ctx, trip); err != nil {
		if errors.Is(err, store.ErrEntityAlreadyExists) {
			return p.tripCreateRace(ctx, userID, change, err)
		}
		return models.ChangeOutcome{}, err
	}

	return applied(), nil
}

// tripCreateRace handles an insert that lost against a concurrent insert of
// the same id.
func (p *changeProcessor) tripCreateRace(ctx context.Context, userID int64, change models.Change, insertErr error) (models.ChangeOutcome, error) {
	logger.FromContext(ctx).Warn().
		Str("func", "changeProcessor.tripCreateRace").
		Str("trip_id", change.EntityID).
		Msg("trip was inserted concurrently")

	existing, err := p.trips.GetTrip(ctx, change.EntityID)
	exists, err := found(err)
	if err != nil {
		return models.ChangeOutcome{}, err
	}
	if !exists {
		return models.ChangeOutcome{}, insertErr
	}
	if existing.UserID != userID {
		return rejected(), nil
	}

	return conflicted(change, existing, existing.UpdatedAt), nil
}

func (p *changeProcessor) updateTrip(ctx context.Context, userID int64, change models.Change) (models.ChangeOutcome, error) {
	existing, err := p.trips.GetTrip(ctx, change.EntityID)
	exists, err := found(err)
	if err != nil {
		return models.ChangeOutcome{}, err
	}
	if !exists || existing.UserID != userID {
		return rejected(), nil
	}
	if DetectConflict(change.Action, &change.LocalUpdatedAt, &existing.UpdatedAt) == Conflict {
		return conflicted(change, existing, existing.UpdatedAt), nil
	}

	var patch models.TripPatch
	if err = decodeData(change.Data, &patch); err != nil {
		return models.ChangeOutcome{}, err
	}

	_, err = p.trips.UpdateTrip(ctx, userID, change.EntityID, patch, change.LocalUpdatedAt)
	if errors.Is(err, store.ErrStaleWrite) {
		return p.tripStaleWrite(ctx, userID, change)
	}
	if err != nil {
		return models.ChangeOutcome{}, err
	}

	return applied(), nil
}

// tripStaleWrite re-reads a trip whose compare-and-set update matched no
// row: either it was deleted or somebody wrote a newer version meanwhile.
func (p *changeProcessor) tripStaleWrite(ctx context.Context, userID int64, change models.Change) (models.ChangeOutcome, error) {
	current, err := p.trips.GetTrip(ctx, change.EntityID)
	exists, err := found(err)
	if err != nil {
		return models.ChangeOutcome{}, err
	}
	if !exists || current.UserID != userID {
		return rejected(), nil
	}

	return conflicted(change, current, current.UpdatedAt), nil
}

func (p *changeProcessor) deleteTrip(ctx context.Context, userID int64, change models.Change) (models.ChangeOutcome, error) {
	if _, err := p.trips.DeleteTrip(ctx, userID, change.EntityID); err != nil {
		return models.ChangeOutcome{}, err
	}

	return applied(), nil
}

// newTrip builds the row inserted for a create.
func newTrip(userID int64, id string, patch models.TripPatch) (models.Trip, error) {
	if !patch.Name.Valid || strings.TrimSpace(patch.Name.Value) == "" {
		return models.Trip{}, missingField("name")
	}
	if !patch.StartDate.Valid {
		return models.Trip{}, missingField("startDate")
	}

	trip := models.Trip{
		ID:             id,
		UserID:         userID,
		Name:           patch.Name.Value,
		Description:    patch.Description.Ptr(),
		StartDate:      patch.StartDate.Value,
		EndDate:        patch.EndDate.Ptr(),
		Budget:         patch.Budget.Ptr(),
		BudgetCurrency: models.DefaultBudgetCurrency,
	}
	if patch.BudgetCurrency.Valid && patch.BudgetCurrency.Value != "" {
		trip.BudgetCurrency = patch.BudgetCurrency.Value
	}

	return trip, nil
}
