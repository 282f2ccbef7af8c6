package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-trip-keeper/internal/logger"
)

type transactor struct {
	*DB
}

func NewTransactor(db *DB) Transactor {
	return &transactor{DB: db}
}

// WithinTx implements [Transactor].
func (t *transactor) WithinTx(ctx context.Context, fn func(ctx context.Context, tx TxStorage) error) error {
	log := logger.FromContext(ctx)

	tx, err := t.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).Str("func", "transactor.WithinTx").Msg("failed to begin transaction")
		return fmt.Errorf("%w: %w", ErrBeginningTransaction, err)
	}

	if err = fn(ctx, &txStorage{db: t.DB, tx: tx}); err != nil {
		if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
			log.Err(rollbackErr).Str("func", "transactor.WithinTx").Msg("failed to rollback transaction")
		}
		return err
	}

	if err = tx.Commit(); err != nil {
		log.Err(err).Str("func", "transactor.WithinTx").Msg("failed to commit transaction")
		return fmt.Errorf("%w: %w", ErrCommitingTransaction, err)
	}

	return nil
}

// txStorage binds the repositories to one *sql.Tx.
type txStorage struct {
	db *DB
	tx *sql.Tx
}

func (s *txStorage) Trips() TripRepository {
	return &tripRepository{DB: s.db, q: s.tx}
}

func (s *txStorage) Destinations() DestinationRepository {
	return &destinationRepository{DB: s.db, q: s.tx}
}

func (s *txStorage) Expenses() ExpenseRepository {
	return &expenseRepository{DB: s.db, q: s.tx}
}

func (s *txStorage) Classify(err error) ErrorClassification {
	if errors.Is(err, ErrSavepoint) {
		return TransactionFatal
	}
	return s.db.Classify(err)
}

// Savepoint implements [TxStorage]. SAVEPOINT, ROLLBACK TO and RELEASE are
// understood by both PostgreSQL and SQLite.
func (s *txStorage) Savepoint(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	log := logger.FromContext(ctx)

	if _, err := s.tx.ExecContext(ctx, "SAVEPOINT "+name); err != nil {
		log.Err(err).Str("func", "txStorage.Savepoint").Str("savepoint", name).Msg("failed to create savepoint")
		return fmt.Errorf("%w: %w", ErrSavepoint, err)
	}

	if fnErr := fn(ctx); fnErr != nil {
		if _, err := s.tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+name); err != nil {
			log.Err(err).Str("func", "txStorage.Savepoint").Str("savepoint", name).Msg("failed to rollback to savepoint")
			return fmt.Errorf("%w: %w: %w", ErrSavepoint, err, fnErr)
		}
		if _, err := s.tx.ExecContext(ctx, "RELEASE SAVEPOINT "+name); err != nil {
			log.Err(err).Str("func", "txStorage.Savepoint").Str("savepoint", name).Msg("failed to release savepoint")
			return fmt.Errorf("%w: %w: %w", ErrSavepoint, err, fnErr)
		}
		return fnErr
	}

	if _, err := s.tx.ExecContext(ctx, "RELEASE SAVEPOINT "+name); err != nil {
		log.Err(err).Str("func", "txStorage.Savepoint").Str("savepoint", name).Msg("failed to release savepoint")
		return fmt.Errorf("%w: %w", ErrSavepoint, err)
	}

	return nil
}
