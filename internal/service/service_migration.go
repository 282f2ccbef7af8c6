// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-trip-keeper/internal/logger"
	"github.com/MKhiriev/go-trip-keeper/internal/metrics"
	"github.com/MKhiriev/go-trip-keeper/internal/store"
	"github.com/MKhiriev/go-trip-keeper/models"
)

const migrationSavepoint = "migration_record"

// migrationService imports a whole offline dataset in one transaction.
//
// Every record is inserted inside its own savepoint. A record the database
// rejects (constraint violation, bad data) is rolled back alone, counted as
// failed and skipped. Anything that leaves the transaction unusable aborts
// the import and nothing is kept.
type migrationService struct {
	transactor store.Transactor

	clock   func() time.Time
	metrics *metrics.Recorder
	logger  *logger.Logger
}

func NewMigrationService(transactor store.Transactor, clock func() time.Time, recorder *metrics.Recorder, logger *logger.Logger) MigrationService {
	if clock == nil {
		clock = time.Now
	}

	return &migrationService{
		transactor: transactor,
		clock:      clock,
		metrics:    recorder,
		logger:     logger,
	}
}

// migrationRun is the state of one Migrate call inside its transaction.
type migrationRun struct {
	tx     store.TxStorage
	userID int64
	// startedAt stands in for a missing createdAt in conflicts
	startedAt time.Time
	today     models.Date
	result    models.MigrationResult

	// ownedTrips caches trip ownership lookups; imported trips are added
	// as they are created.
	ownedTrips map[string]bool
}

// Migrate implements MigrationService.
func (s *migrationService) Migrate(ctx context.Context, userID int64, req models.MigrationRequest) (models.MigrationResult, error) {
	log := logger.FromContext(ctx)

	var run *migrationRun
	err := s.transactor.WithinTx(ctx, func(ctx context.Context, tx store.TxStorage) error {
		now := s.clock().UTC()
		run = &migrationRun{
			tx:         tx,
			userID:     userID,
			startedAt:  now,
			today:      models.NewDate(now),
			result:     models.MigrationResult{Conflicts: make([]models.Conflict, 0)},
			ownedTrips: make(map[string]bool),
		}

		for _, record := range req.Trips {
			if err := s.importTrip(ctx, run, record); err != nil {
				return err
			}
		}
		for _, record := range req.Destinations {
			if err := s.importDestination(ctx, run, record); err != nil {
				return err
			}
		}
		for _, record := range req.Expenses {
			if err := s.importExpense(ctx, run, record); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		log.Err(err).
			Str("func", "migrationService.Migrate").
			Int64("user_id", userID).
			Msg("migration aborted, transaction rolled back")
		return models.MigrationResult{}, fmt.Errorf("%w: %w", ErrMigrationAborted, err)
	}

	result := run.result
	result.Message = migrationMessage(result)

	log.Info().
		Str("func", "migrationService.Migrate").
		Int64("user_id", userID).
		Int("trips", result.Imported.Trips).
		Int("destinations", result.Imported.Destinations).
		Int("expenses", result.Imported.Expenses).
		Int("failed", result.Failed.Trips+result.Failed.Destinations+result.Failed.Expenses).
		Int("conflicts", len(result.Conflicts)).
		Msg("migration committed")

	return result, nil
}

func (s *migrationService) importTrip(ctx context.Context, run *migrationRun, record models.TripRecord) error {
	var conflict *models.Conflict

	err := s.inSavepoint(ctx, run, func(ctx context.Context) error {
		if record.StartDate == nil {
			return missingField("startDate")
		}

		existing, err := run.tx.Trips().FindTripByNameAndStartDate(ctx, run.userID, record.Name, *record.StartDate)
		if err == nil {
			conflict = tripRecordConflict(record, existing, run.startedAt)
			return nil
		}
		if !errors.Is(err, store.ErrEntityNotFound) {
			return err
		}

		_, err = run.tx.Trips().CreateTrip(ctx, tripFromRecord(run.userID, record))
		return err
	})

	if err == nil && conflict != nil {
		run.result.Conflicts = append(run.result.Conflicts, *conflict)
		s.metrics.ObserveMigrationRecord(models.EntityTrip.String(), metrics.OutcomeConflict)
		return nil
	}
	if err == nil {
		run.ownedTrips[record.ID] = true
	}

	return s.settle(ctx, run, models.EntityTrip, record.ID, err)
}

func (s *migrationService) importDestination(ctx context.Context, run *migrationRun, record models.DestinationRecord) error {
	err := s.inSavepoint(ctx, run, func(ctx context.Context) error {
		if err := s.checkTripOwned(ctx, run, record.TripID); err != nil {
			return err
		}

		_, err := run.tx.Destinations().CreateDestination(ctx, destinationFromRecord(record))
		return err
	})

	return s.settle(ctx, run, models.EntityDestination, record.ID, err)
}

func (s *migrationService) importExpense(ctx context.Context, run *migrationRun, record models.ExpenseRecord) error {
	err := s.inSavepoint(ctx, run, func(ctx context.Context) error {
		if record.Amount == nil {
			return missingField("amount")
		}
		if err := s.checkTripOwned(ctx, run, record.TripID); err != nil {
			return err
		}

		if record.DestinationID != nil {
			destination, err := run.tx.Destinations().GetDestination(ctx, *record.DestinationID)
			if err != nil && !errors.Is(err, store.ErrEntityNotFound) {
				return err
			}
			// a missing destination is left to the foreign key
			if err == nil && destination.TripID != record.TripID {
				return fmt.Errorf("%w: destination %s is not on trip %s", ErrForeignReference, *record.DestinationID, record.TripID)
			}
		}

		_, err := run.tx.Expenses().CreateExpense(ctx, expenseFromRecord(record, run.today))
		return err
	})

	return s.settle(ctx, run, models.EntityExpense, record.ID, err)
}

func (s *migrationService) inSavepoint(ctx context.Context, run *migrationRun, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return run.tx.Savepoint(ctx, migrationSavepoint, fn)
}

// checkTripOwned fails for a trip of another user. An unknown trip passes
// and is left to the foreign key.
func (s *migrationService) checkTripOwned(ctx context.Context, run *migrationRun, tripID string) error {
	owned, cached := run.ownedTrips[tripID]
	if !cached {
		trip, err := run.tx.Trips().GetTrip(ctx, tripID)
		switch {
		case errors.Is(err, store.ErrEntityNotFound):
			return nil
		case err != nil:
			return err
		}
		owned = trip.UserID == run.userID
		run.ownedTrips[tripID] = owned
	}

	if !owned {
		return fmt.Errorf("%w: trip %s", ErrForeignReference, tripID)
	}
	return nil
}

// settle records the outcome of one record. It returns an error only when
// the failure must abort the whole import.
func (s *migrationService) settle(ctx context.Context, run *migrationRun, entityType models.EntityType, id string, err error) error {
	if err == nil {
		run.result.Imported.Add(entityType)
		s.metrics.ObserveMigrationRecord(entityType.String(), metrics.OutcomeImported)
		return nil
	}

	if !recordScoped(run.tx, err) {
		return err
	}

	logger.FromContext(ctx).Warn().
		Err(err).
		Str("func", "migrationService.settle").
		Int64("user_id", run.userID).
		Str("entity_type", entityType.String()).
		Str("entity_id", id).
		Msg("record skipped")

	run.result.Failed.Add(entityType)
	s.metrics.ObserveMigrationRecord(entityType.String(), metrics.OutcomeFailed)
	return nil
}

// recordScoped reports whether err concerns only the record that caused it.
func recordScoped(tx store.TxStorage, err error) bool {
	if errors.Is(err, store.ErrSavepoint) {
		return false
	}
	if errors.Is(err, ErrForeignReference) || errors.Is(err, ErrMissingRequiredField) {
		return true
	}
	return tx.Classify(err) == store.RecordScoped
}

func migrationMessage(result models.MigrationResult) string {
	imported := result.Imported
	failed := result.Failed.Trips + result.Failed.Destinations + result.Failed.Expenses

	message := fmt.Sprintf("imported %d trips, %d destinations and %d expenses",
		imported.Trips, imported.Destinations, imported.Expenses)
	if len(result.Conflicts) > 0 {
		message += fmt.Sprintf("; %d trips already existed", len(result.Conflicts))
	}
	if failed > 0 {
		message += fmt.Sprintf("; %d records failed", failed)
	}

	return message
}

func tripRecordConflict(record models.TripRecord, existing models.Trip, importedAt time.Time) *models.Conflict {
	localUpdatedAt := importedAt
	if record.CreatedAt != nil {
		localUpdatedAt = record.CreatedAt.UTC()
	}

	return &models.Conflict{
		EntityType:      models.EntityTrip,
		EntityID:        record.ID,
		LocalData:       entityData(record),
		ServerData:      entityData(existing),
		LocalUpdatedAt:  localUpdatedAt,
		ServerUpdatedAt: existing.UpdatedAt,
	}
}

func tripFromRecord(userID int64, record models.TripRecord) models.Trip {
	trip := models.Trip{
		ID:             record.ID,
		UserID:         userID,
		Name:           record.Name,
		Description:    record.Description,
		StartDate:      *record.StartDate,
		EndDate:        record.EndDate,
		Budget:         record.Budget,
		BudgetCurrency: models.DefaultBudgetCurrency,
	}
	if record.BudgetCurrency != "" {
		trip.BudgetCurrency = record.BudgetCurrency
	}
	if record.CreatedAt != nil {
		trip.CreatedAt = *record.CreatedAt
	}
	return trip
}

func destinationFromRecord(record models.DestinationRecord) models.Destination {
	destination := models.Destination{
		ID:            record.ID,
		TripID:        record.TripID,
		Name:          record.Name,
		CountryCode:   models.DefaultCountryCode,
		City:          record.City,
		Latitude:      record.Latitude,
		Longitude:     record.Longitude,
		ArrivalDate:   record.ArrivalDate,
		DepartureDate: record.DepartureDate,
		OrderIndex:    record.OrderIndex,
	}
	if record.CountryCode != "" {
		destination.CountryCode = record.CountryCode
	}
	if record.CreatedAt != nil {
		destination.CreatedAt = *record.CreatedAt
	}
	return destination
}

func expenseFromRecord(record models.ExpenseRecord, today models.Date) models.Expense {
	expense := models.Expense{
		ID:            record.ID,
		TripID:        record.TripID,
		DestinationID: record.DestinationID,
		Amount:        *record.Amount,
		Currency:      models.DefaultExpenseCurrency,
		Category:      models.DefaultExpenseCategory,
		PaymentMethod: models.DefaultPaymentMethod,
		Description:   record.Description,
		ExpenseDate:   today,
		ExpenseTime:   record.ExpenseTime,
	}
	if record.Currency != "" {
		expense.Currency = record.Currency
	}
	if record.Category != "" {
		expense.Category = record.Category
	}
	if record.PaymentMethod != "" {
		expense.PaymentMethod = record.PaymentMethod
	}
	if record.ExpenseDate != nil {
		expense.ExpenseDate = *record.ExpenseDate
	}
	if record.CreatedAt != nil {
		expense.CreatedAt = *record.CreatedAt
	}
	return expense
}
