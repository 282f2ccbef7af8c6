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

type destinationRepository struct {
	*DB
	q Querier
}

func NewDestinationRepository(db *DB) DestinationRepository {
	return &destinationRepository{DB: db, q: db.DB}
}

// GetDestination returns the destination together with the user owning its
// trip.
func (r *destinationRepository) GetDestination(ctx context.Context, id string) (models.Destination, error) {
	log := logger.FromContext(ctx)

	query, args, err := selectWithOwner(r.builder, destinationsTable, destinationColumns).
		Where(sq.Eq{"c.id": id}).
		ToSql()
	if err != nil {
		log.Err(err).Str("func", "destinationRepository.GetDestination").Msg("failed to build query")
		return models.Destination{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var destination models.Destination
	err = scanDestination(r.q.QueryRowContext(ctx, query, args...), &destination, &destination.OwnerID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Destination{}, ErrEntityNotFound
	}
	if err != nil {
		log.Err(err).Str("func", "destinationRepository.GetDestination").Str("destination_id", id).Msg("failed to get destination")
		return models.Destination{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return destination, nil
}

func (r *destinationRepository) CreateDestination(ctx context.Context, destination models.Destination) (models.Destination, error) {
	log := logger.FromContext(ctx)

	now := r.now()
	if destination.CreatedAt.IsZero() {
		destination.CreatedAt = now
	}
	destination.CreatedAt = destination.CreatedAt.UTC()
	destination.UpdatedAt = now

	query, args, err := r.builder.
		Insert(destinationsTable).
		Columns(destinationColumns...).
		Values(
			destination.ID, destination.TripID, destination.Name, destination.CountryCode,
			destination.City, destination.Latitude, destination.Longitude,
			destination.ArrivalDate, destination.DepartureDate, destination.OrderIndex,
			destination.CreatedAt, destination.UpdatedAt,
		).
		ToSql()
	if err != nil {
		log.Err(err).Str("func", "destinationRepository.CreateDestination").Msg("failed to build query")
		return models.Destination{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = r.q.ExecContext(ctx, query, args...); err != nil {
		log.Err(err).
			Str("func", "destinationRepository.CreateDestination").
			Str("destination_id", destination.ID).
			Str("trip_id", destination.TripID).
			Msg("failed to insert destination")
		return models.Destination{}, r.wrapWriteError(err)
	}

	return destination, nil
}

// UpdateDestination applies patch to a destination on one of userID's trips.
// Moving it to another trip is the caller's ownership check to make.
func (r *destinationRepository) UpdateDestination(ctx context.Context, userID int64, id string, patch models.DestinationPatch, notAfter time.Time) (models.Destination, error) {
	log := logger.FromContext(ctx)

	update := r.builder.Update(destinationsTable)
	if patch.TripID.Valid {
		update = update.Set("trip_id", patch.TripID.Value)
	}
	if patch.Name.Valid {
		update = update.Set("name", patch.Name.Value)
	}
	if patch.CountryCode.Valid {
		update = update.Set("country_code", patch.CountryCode.Value)
	}
	if patch.City.Set {
		update = update.Set("city", patch.City.Ptr())
	}
	if patch.Latitude.Set {
		update = update.Set("latitude", patch.Latitude.Ptr())
	}
	if patch.Longitude.Set {
		update = update.Set("longitude", patch.Longitude.Ptr())
	}
	if patch.ArrivalDate.Set {
		update = update.Set("arrival_date", patch.ArrivalDate.Ptr())
	}
	if patch.DepartureDate.Set {
		update = update.Set("departure_date", patch.DepartureDate.Ptr())
	}
	if patch.OrderIndex.Valid {
		update = update.Set("order_index", patch.OrderIndex.Value)
	}

	query, args, err := update.
		Set("updated_at", bumpUpdatedAt(r.now())).
		Where(sq.Eq{"id": id}).
		Where(ownedByUser(userID)).
		Where(sq.LtOrEq{"updated_at": notAfter.UTC()}).
		Suffix(returning(destinationColumns)).
		ToSql()
	if err != nil {
		log.Err(err).Str("func", "destinationRepository.UpdateDestination").Msg("failed to build query")
		return models.Destination{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var destination models.Destination
	err = scanDestination(r.q.QueryRowContext(ctx, query, args...), &destination)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Destination{}, ErrStaleWrite
	}
	if err != nil {
		log.Err(err).
			Str("func", "destinationRepository.UpdateDestination").
			Str("destination_id", id).
			Int64("user_id", userID).
			Msg("failed to update destination")
		return models.Destination{}, r.wrapWriteError(err)
	}
	destination.OwnerID = userID

	return destination, nil
}

func (r *destinationRepository) DeleteDestination(ctx context.Context, userID int64, id string) (bool, error) {
	log := logger.FromContext(ctx)

	query, args, err := r.builder.
		Delete(destinationsTable).
		Where(sq.Eq{"id": id}).
		Where(ownedByUser(userID)).
		ToSql()
	if err != nil {
		log.Err(err).Str("func", "destinationRepository.DeleteDestination").Msg("failed to build query")
		return false, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	return execDelete(ctx, r.q, query, args, "destinationRepository.DeleteDestination")
}

func (r *destinationRepository) ListDestinations(ctx context.Context, userID int64, since *time.Time) ([]models.Destination, error) {
	log := logger.FromContext(ctx)

	selectQuery := selectWithOwner(r.builder, destinationsTable, destinationColumns).
		Where(sq.Eq{"t.user_id": userID})
	if since != nil {
		selectQuery = selectQuery.Where(sq.Gt{"c.updated_at": since.UTC()})
	}

	query, args, err := selectQuery.OrderBy("c.updated_at", "c.id").ToSql()
	if err != nil {
		log.Err(err).Str("func", "destinationRepository.ListDestinations").Msg("failed to build query")
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "destinationRepository.ListDestinations").Int64("user_id", userID).Msg("failed to list destinations")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	destinations := make([]models.Destination, 0)
	for rows.Next() {
		var destination models.Destination
		if scanErr := scanDestination(rows, &destination, &destination.OwnerID); scanErr != nil {
			log.Err(scanErr).Str("func", "destinationRepository.ListDestinations").Int64("user_id", userID).Msg("failed to scan destination row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, scanErr)
		}
		destinations = append(destinations, destination)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).Str("func", "destinationRepository.ListDestinations").Int64("user_id", userID).Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, rowsErr)
	}

	return destinations, nil
}

// scanDestination scans destinationColumns followed by extra.
func scanDestination(row rowScanner, d *models.Destination, extra ...any) error {
	dest := []any{
		&d.ID,
		&d.TripID,
		&d.Name,
		&d.CountryCode,
		&d.City,
		&d.Latitude,
		&d.Longitude,
		&d.ArrivalDate,
		&d.DepartureDate,
		&d.OrderIndex,
		timestamp{&d.CreatedAt},
		timestamp{&d.UpdatedAt},
	}
	return row.Scan(append(dest, extra...)...)
}
