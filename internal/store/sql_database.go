package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-trip-keeper/internal/logger"
	"github.com/MKhiriev/go-trip-keeper/migrations"
)

// Querier is the subset of *sql.DB and *sql.Tx the repositories need, so
// the same repository code runs standalone or inside a transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// ErrorClassificator inspects driver errors.
//
// Classify decides whether a failed statement poisoned the surrounding
// transaction. Translate maps constraint violations to the store's sentinel
// errors and returns nil for anything else.
type ErrorClassificator interface {
	Classify(err error) ErrorClassification
	Translate(err error) error
}

// DB wraps a *sql.DB together with the dialect specific pieces the
// repositories need: a squirrel statement builder with the right placeholder
// format, an error classifier and the clock used for row timestamps.
type DB struct {
	*sql.DB
	builder            sq.StatementBuilderType
	dialect            string
	errorClassificator ErrorClassificator
	logger             *logger.Logger
	clock              func() time.Time
}

// Migrate applies the embedded schema migrations.
func (db *DB) Migrate() error {
	return migrations.Migrate(db.DB, db.dialect)
}

// now returns the store clock in UTC, truncated to the precision both
// supported databases keep.
func (db *DB) now() time.Time {
	clock := db.clock
	if clock == nil {
		clock = time.Now
	}
	return clock().UTC().Truncate(time.Microsecond)
}

// Classify exposes the driver classifier to callers outside the package.
func (db *DB) Classify(err error) ErrorClassification {
	return db.errorClassificator.Classify(err)
}

// wrapWriteError wraps a failed INSERT or UPDATE. Constraint violations get
// the matching store sentinel; the driver error stays in the chain so that
// [DB.Classify] still sees it.
func (db *DB) wrapWriteError(err error) error {
	if sentinel := db.errorClassificator.Translate(err); sentinel != nil {
		return fmt.Errorf("%w: %w", sentinel, err)
	}
	return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
}

func execDelete(ctx context.Context, q Querier, query string, args []any, funcName string) (bool, error) {
	log := logger.FromContext(ctx)

	result, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", funcName).Msg("failed to execute delete")
		return false, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		log.Err(err).Str("func", funcName).Msg("failed to read affected rows")
		return false, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return affected > 0, nil
}
