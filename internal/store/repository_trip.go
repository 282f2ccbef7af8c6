// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-trip-keeper/internal/logger"
	"github.com/MKhiriev/go-trip-keeper/models"
)

// tripRepository implements [TripRepository] over a [Querier], which is
// either the connection pool or an open transaction.
type tripRepository struct {
	*DB
	q Querier
}

// NewTripRepository constructs a [TripRepository] running its statements
// directly on the connection pool.
func NewTripRepository(db *DB) TripRepository {
	return &tripRepository{DB: db, q: db.DB}
}

func (r *tripRepository) GetTrip(ctx context.Context, id string) (models.Trip, error) {
	log := logger.FromContext(ctx)

	query, args, err := r.builder.
		Select(tripColumns...).
		From(tripsTable).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		log.Err(err).Str("func", "tripRepository.GetTrip").Msg("failed to build query")
		return models.Trip{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	trip, err := scanTrip(r.q.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Trip{}, ErrEntityNotFound
	}
	if err != nil {
		log.Err(err).Str("func", "tripRepository.GetTrip").Str("trip_id", id).Msg("failed to get trip")
		return models.Trip{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return trip, nil
}

// FindTripByNameAndStartDate returns the user's trip with the given name
// and start date, or ErrEntityNotFound.
func (r *tripRepository) FindTripByNameAndStartDate(ctx context.Context, userID int64, name string, startDate models.Date) (models.Trip, error) {
	log := logger.FromContext(ctx)

	query, args, err := r.builder.
		Select(tripColumns...).
		From(tripsTable).
		Where(sq.Eq{"user_id": userID, "name": name, "start_date": startDate}).
		Limit(1).
		ToSql()
	if err != nil {
		log.Err(err).Str("func", "tripRepository.FindTripByNameAndStartDate").Msg("failed to build query")
		return models.Trip{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	trip, err := scanTrip(r.q.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Trip{}, ErrEntityNotFound
	}
	if err != nil {
		log.Err(err).
			Str("func", "tripRepository.FindTripByNameAndStartDate").
			Int64("user_id", userID).
			Msg("failed to find trip")
		return models.Trip{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return trip, nil
}

// CreateTrip inserts trip with the client-supplied id. CreatedAt is kept
// when set; UpdatedAt always comes from the store clock.
func (r *tripRepository) CreateTrip(ctx context.Context, trip models.Trip) (models.Trip, error) {
	log := logger.FromContext(ctx)

	now := r.now()
	if trip.CreatedAt.IsZero() {
		trip.CreatedAt = now
	}
	trip.CreatedAt = trip.CreatedAt.UTC()
	trip.UpdatedAt = now

	query, args, err := r.builder.
		Insert(tripsTable).
		Columns(tripColumns...).
		Values(
			trip.ID, trip.UserID, trip.Name, trip.Description, trip.StartDate, trip.EndDate,
			trip.Budget, trip.BudgetCurrency, trip.CreatedAt, trip.UpdatedAt,
		).
		ToSql()
	if err != nil {
		log.Err(err).Str("func", "tripRepository.CreateTrip").Msg("failed to build query")
		return models.Trip{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = r.q.ExecContext(ctx, query, args...); err != nil {
		log.Err(err).
			Str("func", "tripRepository.CreateTrip").
			Str("trip_id", trip.ID).
			Int64("user_id", trip.UserID).
			Msg("failed to insert trip")
		return models.Trip{}, r.wrapWriteError(err)
	}

	return trip, nil
}

func (r *tripRepository) UpdateTrip(ctx context.Context, userID int64, id string, patch models.TripPatch, notAfter time.Time) (models.Trip, error) {
	log := logger.FromContext(ctx)

	update := r.builder.Update(tripsTable)
	if patch.Name.Valid {
		update = update.Set("name", patch.Name.Value)
	}
	if patch.Description.Set {
		update = update.Set("description", patch.Description.Ptr())
	}
	if patch.StartDate.Valid {
		update = update.Set("start_date", patch.StartDate.Value)
	}
	if patch.EndDate.Set {
		update = update.Set("end_date", patch.EndDate.Ptr())
	}
	if patch.Budget.Set {
		update = update.Set("budget", patch.Budget.Ptr())
	}
	if patch.BudgetCurrency.Valid {
		update = update.Set("budget_currency", patch.BudgetCurrency.Value)
	}

	query, args, err := update.
		Set("updated_at", bumpUpdatedAt(r.now())).
		Where(sq.Eq{"id": id, "user_id": userID}).
		Where(sq.LtOrEq{"updated_at": notAfter.UTC()}).
		Suffix(returning(tripColumns)).
		ToSql()
	if err != nil {
		log.Err(err).Str("func", "tripRepository.UpdateTrip").Msg("failed to build query")
		return models.Trip{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	trip, err := scanTrip(r.q.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Trip{}, ErrStaleWrite
	}
	if err != nil {
		log.Err(err).
			Str("func", "tripRepository.UpdateTrip").
			Str("trip_id", id).
			Int64("user_id", userID).
			Msg("failed to update trip")
		return models.Trip{}, r.wrapWriteError(err)
	}

	return trip, nil
}

// DeleteTrip removes the user's trip; its destinations and expenses go with
// it. It reports whether a row was deleted.
func (r *tripRepository) DeleteTrip(ctx context.Context, userID int64, id string) (bool, error) {
	log := logger.FromContext(ctx)

	query, args, err := r.builder.
		Delete(tripsTable).
		Where(sq.Eq{"id": id, "user_id": userID}).
		ToSql()
	if err != nil {
		log.Err(err).Str("func", "tripRepository.DeleteTrip").Msg("failed to build query")
		return false, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	return execDelete(ctx, r.q, query, args, "tripRepository.DeleteTrip")
}

func (r *tripRepository) ListTrips(ctx context.Context, userID int64, since *time.Time) ([]models.Trip, error) {
	log := logger.FromContext(ctx)

	selectQuery := r.builder.
		Select(tripColumns...).
		From(tripsTable).
		Where(sq.Eq{"user_id": userID})
	if since != nil {
		selectQuery = selectQuery.Where(sq.Gt{"updated_at": since.UTC()})
	}

	query, args, err := selectQuery.OrderBy("updated_at", "id").ToSql()
	if err != nil {
		log.Err(err).Str("func", "tripRepository.ListTrips").Msg("failed to build query")
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "tripRepository.ListTrips").Int64("user_id", userID).Msg("failed to list trips")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	trips := make([]models.Trip, 0)
	for rows.Next() {
		trip, scanErr := scanTrip(rows)
		if scanErr != nil {
			log.Err(scanErr).Str("func", "tripRepository.ListTrips").Int64("user_id", userID).Msg("failed to scan trip row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, scanErr)
		}
		trips = append(trips, trip)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).Str("func", "tripRepository.ListTrips").Int64("user_id", userID).Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, rowsErr)
	}

	return trips, nil
}

func scanTrip(row rowScanner) (models.Trip, error) {
	var trip models.Trip
	err := row.Scan(
		&trip.ID,
		&trip.UserID,
		&trip.Name,
		&trip.Description,
		&trip.StartDate,
		&trip.EndDate,
		&trip.Budget,
		&trip.BudgetCurrency,
		timestamp{&trip.CreatedAt},
		timestamp{&trip.UpdatedAt},
	)
	return trip, err
}
