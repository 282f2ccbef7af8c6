package store

import (
	"context"
	"time"

	"github.com/MKhiriev/go-trip-keeper/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// TripRepository persists trips. Every write stamps updated_at with the store
// clock; callers never supply it.
type TripRepository interface {
	// GetTrip returns the trip regardless of its owner, or ErrEntityNotFound.
	GetTrip(ctx context.Context, id string) (models.Trip, error)
	FindTripByNameAndStartDate(ctx context.Context, userID int64, name string, startDate models.Date) (models.Trip, error)
	CreateTrip(ctx context.Context, trip models.Trip) (models.Trip, error)
	// UpdateTrip applies patch only if the stored row is owned by userID and
	// was last written at or before notAfter. Otherwise ErrStaleWrite.
	UpdateTrip(ctx context.Context, userID int64, id string, patch models.TripPatch, notAfter time.Time) (models.Trip, error)
	DeleteTrip(ctx context.Context, userID int64, id string) (bool, error)
	// ListTrips returns the user's trips ordered by updated_at. A non-nil
	// since keeps only rows written strictly after it.
	ListTrips(ctx context.Context, userID int64, since *time.Time) ([]models.Trip, error)
}

type DestinationRepository interface {
	GetDestination(ctx context.Context, id string) (models.Destination, error)
	CreateDestination(ctx context.Context, destination models.Destination) (models.Destination, error)
	UpdateDestination(ctx context.Context, userID int64, id string, patch models.DestinationPatch, notAfter time.Time) (models.Destination, error)
	DeleteDestination(ctx context.Context, userID int64, id string) (bool, error)
	ListDestinations(ctx context.Context, userID int64, since *time.Time) ([]models.Destination, error)
}

type ExpenseRepository interface {
	GetExpense(ctx context.Context, id string) (models.Expense, error)
	CreateExpense(ctx context.Context, expense models.Expense) (models.Expense, error)
	UpdateExpense(ctx context.Context, userID int64, id string, patch models.ExpensePatch, notAfter time.Time) (models.Expense, error)
	DeleteExpense(ctx context.Context, userID int64, id string) (bool, error)
	ListExpenses(ctx context.Context, userID int64, since *time.Time) ([]models.Expense, error)
}

// TxStorage exposes repositories bound to one open transaction.
type TxStorage interface {
	Trips() TripRepository
	Destinations() DestinationRepository
	Expenses() ExpenseRepository

	// Savepoint runs fn inside a named savepoint. When fn fails the
	// transaction is rolled back to the savepoint and fn's error is
	// returned; the transaction stays usable unless the error wraps
	// ErrSavepoint.
	Savepoint(ctx context.Context, name string, fn func(ctx context.Context) error) error

	// Classify reports whether err left the transaction usable.
	Classify(err error) ErrorClassification
}

// Transactor runs fn in a single database transaction. The transaction is
// committed when fn returns nil and rolled back otherwise.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx TxStorage) error) error
}

// IdempotencyStore keeps the first successful response to a request carrying
// an Idempotency-Key so that retries can be answered without reprocessing.
type IdempotencyStore interface {
	// Reserve atomically claims key with a pending entry holding fingerprint.
	// It returns true when the key was free. Otherwise it returns false and
	// the entry currently stored under key.
	Reserve(ctx context.Context, key, fingerprint string, ttl time.Duration) (models.StoredResponse, bool, error)
	// SaveResponse replaces the pending entry with the final response.
	SaveResponse(ctx context.Context, key string, resp models.StoredResponse, ttl time.Duration) error
	// Release drops the entry so that the request can be retried.
	Release(ctx context.Context, key string) error
}
