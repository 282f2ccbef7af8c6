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

func (p *changeProcessor) processDestination(ctx context.Context, userID int64, change models.Change) (models.ChangeOutcome, error) {
	switch change.Action {
	case models.ActionCreate:
		return p.createDestination(ctx, userID, change)
	case models.ActionUpdate:
		return p.updateDestination(ctx, userID, change)
	case models.ActionDelete:
		return p.deleteDestination(ctx, userID, change)
	}
	return models.ChangeOutcome{}, fmt.Errorf("%w: %q", ErrUnsupportedAction, change.Action)
}

func (p *changeProcessor) createDestination(ctx context.Context, userID int64, change models.Change) (models.ChangeOutcome, error) {
	existing, err := p.destinations.GetDestination(ctx, change.EntityID)
	exists, err := found(err)
	if err != nil {
		return models.ChangeOutcome{}, err
	}
	// an id taken by another user is never revealed
	if exists && existing.OwnerID != userID {
		return rejected(), nil
	}
	if DetectConflict(change.Action, &change.LocalUpdatedAt, serverStamp(exists, existing.UpdatedAt)) == Conflict {
		return conflicted(change, existing, existing.UpdatedAt), nil
	}

	var patch models.DestinationPatch
	if err = decodeData(change.Data, &patch); err != nil {
		return models.ChangeOutcome{}, err
	}

	destination, err := newDestination(change.EntityID, patch)
	if err != nil {
		return models.ChangeOutcome{}, err
	}

	owned, err := p.ownsTrip(ctx, userID, destination.TripID)
	if err != nil {
		return models.ChangeOutcome{}, err
	}
	if !owned {
		return rejected(), nil
	}

	if _, err = p.destinations.CreateDestination(ctx, destination); err != nil {
		if errors.Is(err, store.ErrEntityAlreadyExists) {
			return p.destinationCreateRace(ctx, userID, change, err)
		}
		return models.ChangeOutcome{}, err
	}

	return applied(), nil
}

func (p *changeProcessor) destinationCreateRace(ctx context.Context, userID int64, change models.Change, insertErr error) (models.ChangeOutcome, error) {
	logger.FromContext(ctx).Warn().
		Str("func", "changeProcessor.destinationCreateRace").
		Str("destination_id", change.EntityID).
		Msg("destination was inserted concurrently")

	existing, err := p.destinations.GetDestination(ctx, change.EntityID)
	exists, err := found(err)
	if err != nil {
		return models.ChangeOutcome{}, err
	}
	if !exists {
		return models.ChangeOutcome{}, insertErr
	}
	if existing.OwnerID != userID {
		return rejected(), nil
	}

	return conflicted(change, existing, existing.UpdatedAt), nil
}

func (p *changeProcessor) updateDestination(ctx context.Context, userID int64, change models.Change) (models.ChangeOutcome, error) {
	existing, err := p.destinations.GetDestination(ctx, change.EntityID)
	exists, err := found(err)
	if err != nil {
		return models.ChangeOutcome{}, err
	}
	if !exists || existing.OwnerID != userID {
		return rejected(), nil
	}
	if DetectConflict(change.Action, &change.LocalUpdatedAt, &existing.UpdatedAt) == Conflict {
		return conflicted(change, existing, existing.UpdatedAt), nil
	}

	var patch models.DestinationPatch
	if err = decodeData(change.Data, &patch); err != nil {
		return models.ChangeOutcome{}, err
	}

	// moving to another trip needs that trip to be ours too
	if patch.TripID.Valid && patch.TripID.Value != existing.TripID {
		owned, err := p.ownsTrip(ctx, userID, patch.TripID.Value)
		if err != nil {
			return models.ChangeOutcome{}, err
		}
		if !owned {
			return rejected(), nil
		}
	}

	_, err = p.destinations.UpdateDestination(ctx, userID, change.EntityID, patch, change.LocalUpdatedAt)
	if errors.Is(err, store.ErrStaleWrite) {
		return p.destinationStaleWrite(ctx, userID, change)
	}
	if err != nil {
		return models.ChangeOutcome{}, err
	}

	return applied(), nil
}

func (p *changeProcessor) destinationStaleWrite(ctx context.Context, userID int64, change models.Change) (models.ChangeOutcome, error) {
	current, err := p.destinations.GetDestination(ctx, change.EntityID)
	exists, err := found(err)
	if err != nil {
		return models.ChangeOutcome{}, err
	}
	if !exists || current.OwnerID != userID {
		return rejected(), nil
	}

	return conflicted(change, current, current.UpdatedAt), nil
}

func (p *changeProcessor) deleteDestination(ctx context.Context, userID int64, change models.Change) (models.ChangeOutcome, error) {
	if _, err := p.destinations.DeleteDestination(ctx, userID, change.EntityID); err != nil {
		return models.ChangeOutcome{}, err
	}

	return applied(), nil
}

func newDestination(id string, patch models.DestinationPatch) (models.Destination, error) {
	if !patch.TripID.Valid || patch.TripID.Value == "" {
		return models.Destination{}, missingField("tripId")
	}
	if !patch.Name.Valid || strings.TrimSpace(patch.Name.Value) == "" {
		return models.Destination{}, missingField("name")
	}

	destination := models.Destination{
		ID:            id,
		TripID:        patch.TripID.Value,
		Name:          patch.Name.Value,
		CountryCode:   models.DefaultCountryCode,
		City:          patch.City.Ptr(),
		Latitude:      patch.Latitude.Ptr(),
		Longitude:     patch.Longitude.Ptr(),
		ArrivalDate:   patch.ArrivalDate.Ptr(),
		DepartureDate: patch.DepartureDate.Ptr(),
		OrderIndex:    patch.OrderIndex.Value,
	}
	if patch.CountryCode.Valid && patch.CountryCode.Value != "" {
		destination.CountryCode = patch.CountryCode.Value
	}

	return destination, nil
}
