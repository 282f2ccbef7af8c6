package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-trip-keeper/internal/config"
	"github.com/MKhiriev/go-trip-keeper/internal/logger"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func newTestDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

// newDBFromSQL wraps a sqlmock connection as a PostgreSQL store with a
// fixed clock.
func newDBFromSQL(db *sql.DB) *DB {
	storeDB := newPostgresDB(db, logger.Nop())
	storeDB.clock = fixedClock
	return storeDB
}

// newSQLiteTestDB opens a migrated SQLite database in a temp dir.
func newSQLiteTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewConnectSQLite(testContext(), config.DB{
		Driver: config.DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "trips.db"),
	}, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate())
	return db
}

func testContext() context.Context {
	l := zerolog.Nop()
	return l.WithContext(context.Background())
}

func ptr[T any](v T) *T { return &v }
