// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/MKhiriev/go-trip-keeper/internal/config"
	"github.com/MKhiriev/go-trip-keeper/internal/logger"
)

// ErrUnknownDriver is returned by [NewStorages] for a driver other than
// postgres or sqlite.
var ErrUnknownDriver = errors.New("unknown database driver")

// Storages aggregates every persistence dependency of the service layer.
// IdempotencyStore is nil when Redis is not configured.
type Storages struct {
	TripRepository        TripRepository
	DestinationRepository DestinationRepository
	ExpenseRepository     ExpenseRepository
	Transactor            Transactor
	IdempotencyStore      IdempotencyStore

	db    *DB
	redis *redis.Client
}

// NewStorages connects the configured database, applies migrations and,
// when an address is configured, connects Redis.
func NewStorages(ctx context.Context, cfg config.Storage, log *logger.Logger) (*Storages, error) {
	var (
		db  *DB
		err error
	)

	switch cfg.DB.Driver {
	case config.DriverPostgres:
		db, err = NewConnectPostgres(ctx, cfg.DB, log)
	case config.DriverSQLite:
		db, err = NewConnectSQLite(ctx, cfg.DB, log)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.DB.Driver)
	}
	if err != nil {
		return nil, err
	}

	if err = db.Migrate(); err != nil {
		log.Err(err).Str("func", "NewStorages").Msg("failed to apply migrations")
		_ = db.Close()
		return nil, err
	}

	storages := NewStoragesFromDB(db)

	if cfg.Redis.Address != "" {
		client, redisErr := NewRedisClient(ctx, cfg.Redis, log)
		if redisErr != nil {
			_ = db.Close()
			return nil, redisErr
		}
		storages.redis = client
		storages.IdempotencyStore = NewRedisIdempotencyStore(client)
	}

	return storages, nil
}

// NewStoragesFromDB wires the repositories on an already migrated database.
func NewStoragesFromDB(db *DB) *Storages {
	return &Storages{
		TripRepository:        NewTripRepository(db),
		DestinationRepository: NewDestinationRepository(db),
		ExpenseRepository:     NewExpenseRepository(db),
		Transactor:            NewTransactor(db),
		db:                    db,
	}
}

// Close releases the database and Redis connections.
func (s *Storages) Close() error {
	var errs []error
	if s.redis != nil {
		errs = append(errs, s.redis.Close())
	}
	if s.db != nil {
		errs = append(errs, s.db.Close())
	}
	return errors.Join(errs...)
}
