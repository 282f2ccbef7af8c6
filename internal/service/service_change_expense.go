package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-trip-keeper/internal/logger"
	"github.com/MKhiriev/go-trip-keeper/internal/store"
	"github.com/MKhiriev/go-trip-keeper/models"
)

func (p *changeProcessor) processExpense(ctx context.Context, userID int64, change models.Change) (models.ChangeOutcome, error) {
	switch change.Action {
	case models.ActionCreate:
		return p.createExpense(ctx, userID, change)
	case models.ActionUpdate:
		return p.updateExpense(ctx, userID, change)
	case models.ActionDelete:
		return p.deleteExpense(ctx, userID, change)
	}
	return models.ChangeOutcome{}, fmt.Errorf("%w: %q", ErrUnsupportedAction, change.Action)
}

func (p *changeProcessor) createExpense(ctx context.Context, userID int64, change models.Change) (models.ChangeOutcome, error) {
	existing, err := p.expenses.GetExpense(ctx, change.EntityID)
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

	var patch models.ExpensePatch
	if err = decodeData(change.Data, &patch); err != nil {
		return models.ChangeOutcome{}, err
	}

	expense, err := newExpense(change.EntityID, patch, models.NewDate(p.clock()))
	if err != nil {
		return models.ChangeOutcome{}, err
	}

	allowed, err := p.expenseReferencesAllowed(ctx, userID, expense.TripID, expense.DestinationID)
	if err != nil {
		return models.ChangeOutcome{}, err
	}
	if !allowed {
		return rejected(), nil
	}

	if _, err = p.expenses.CreateExpense(ctx, expense); err != nil {
		if errors.Is(err, store.ErrEntityAlreadyExists) {
			return p.expenseCreateRace(ctx, userID, change, err)
		}
		return models.ChangeOutcome{}, err
	}

	return applied(), nil
}

func (p *changeProcessor) expenseCreateRace(ctx context.Context, userID int64, change models.Change, insertErr error) (models.ChangeOutcome, error) {
	logger.FromContext(ctx).Warn().
		Str("func", "changeProcessor.expenseCreateRace").
		Str("expense_id", change.EntityID).
		Msg("expense was inserted concurrently")

	existing, err := p.expenses.GetExpense(ctx, change.EntityID)
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

func (p *changeProcessor) updateExpense(ctx context.Context, userID int64, change models.Change) (models.ChangeOutcome, error) {
	existing, err := p.expenses.GetExpense(ctx, change.EntityID)
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

	var patch models.ExpensePatch
	if err = decodeData(change.Data, &patch); err != nil {
		return models.ChangeOutcome{}, err
	}

	tripID := existing.TripID
	if patch.TripID.Valid {
		tripID = patch.TripID.Value
	}

	// destinationId is always written, so only a present one is checked
	if tripID != existing.TripID || patch.DestinationID.Valid {
		allowed, err := p.expenseReferencesAllowed(ctx, userID, tripID, patch.DestinationID.Ptr())
		if err != nil {
			return models.ChangeOutcome{}, err
		}
		if !allowed {
			return rejected(), nil
		}
	}

	_, err = p.expenses.UpdateExpense(ctx, userID, change.EntityID, patch, change.LocalUpdatedAt)
	if errors.Is(err, store.ErrStaleWrite) {
		return p.expenseStaleWrite(ctx, userID, change)
	}
	if err != nil {
		return models.ChangeOutcome{}, err
	}

	return applied(), nil
}

func (p *changeProcessor) expenseStaleWrite(ctx context.Context, userID int64, change models.Change) (models.ChangeOutcome, error) {
	current, err := p.expenses.GetExpense(ctx, change.EntityID)
	exists, err := found(err)
	if err != nil {
		return models.ChangeOutcome{}, err
	}
	if !exists || current.OwnerID != userID {
		return rejected(), nil
	}

	return conflicted(change, current, current.UpdatedAt), nil
}

func (p *changeProcessor) deleteExpense(ctx context.Context, userID int64, change models.Change) (models.ChangeOutcome, error) {
	if _, err := p.expenses.DeleteExpense(ctx, userID, change.EntityID); err != nil {
		return models.ChangeOutcome{}, err
	}

	return applied(), nil
}

// expenseReferencesAllowed checks that the trip belongs to userID and that
// the destination, if any, is a stop of that same trip.
func (p *changeProcessor) expenseReferencesAllowed(ctx context.Context, userID int64, tripID string, destinationID *string) (bool, error) {
	owned, err := p.ownsTrip(ctx, userID, tripID)
	if err != nil || !owned {
		return false, err
	}

	if destinationID == nil {
		return true, nil
	}

	return p.destinationOnTrip(ctx, *destinationID, tripID)
}

// newExpense builds the row inserted for a create. today is used when the
// payload has no expense date.
func newExpense(id string, patch models.ExpensePatch, today models.Date) (models.Expense, error) {
	if !patch.TripID.Valid || patch.TripID.Value == "" {
		return models.Expense{}, missingField("tripId")
	}
	if !patch.Amount.Valid {
		return models.Expense{}, missingField("amount")
	}

	expense := models.Expense{
		ID:            id,
		TripID:        patch.TripID.Value,
		DestinationID: patch.DestinationID.Ptr(),
		Amount:        patch.Amount.Value,
		Currency:      models.DefaultExpenseCurrency,
		Category:      models.DefaultExpenseCategory,
		PaymentMethod: models.DefaultPaymentMethod,
		Description:   patch.Description.Ptr(),
		ExpenseDate:   today,
		ExpenseTime:   patch.ExpenseTime.Ptr(),
	}
	if patch.Currency.Valid && patch.Currency.Value != "" {
		expense.Currency = patch.Currency.Value
	}
	if patch.Category.Valid && patch.Category.Value != "" {
		expense.Category = patch.Category.Value
	}
	if patch.PaymentMethod.Valid && patch.PaymentMethod.Value != "" {
		expense.PaymentMethod = patch.PaymentMethod.Value
	}
	if patch.ExpenseDate.Valid {
		expense.ExpenseDate = patch.ExpenseDate.Value
	}

	return expense, nil
}
