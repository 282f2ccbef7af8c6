package store

import (
	"github.com/jackc/pgerrcode"
)

// ErrorClassification is the result type returned by [ErrorClassificator.Classify].
// It tells a caller running several statements in one transaction whether
// the failure can be contained by rolling back to a savepoint or whether the
// whole transaction must be abandoned.
type ErrorClassification int

const (
	// RecordScoped means the failure concerns only the offending statement:
	// constraint violations and data exceptions. Rolling back to a savepoint
	// taken before the statement leaves the transaction usable.
	RecordScoped ErrorClassification = iota

	// TransactionFatal means the transaction or the connection itself is gone
	// (connection loss, serialization failure, deadlock, cancelled context).
	// This is the default for unrecognised errors.
	TransactionFatal
)

// PostgresErrorClassifier implements [ErrorClassificator] for PostgreSQL.
// It inspects the SQLSTATE returned by the pgx driver.
type PostgresErrorClassifier struct{}

// NewPostgresErrorClassifier constructs a [PostgresErrorClassifier] ready for use.
func NewPostgresErrorClassifier() *PostgresErrorClassifier {
	return &PostgresErrorClassifier{}
}

// Classify implements [ErrorClassificator].
//
// RecordScoped codes:
//   - Class 22: data exceptions
//   - Class 23: integrity constraint violations
//
// Everything else, including errors that do not come from the server at
// all, is [TransactionFatal].
// See https://www.postgresql.org/docs/current/errcodes-appendix.html.
func (c *PostgresErrorClassifier) Classify(err error) ErrorClassification {
	code := postgresError(err)
	if code == "" {
		return TransactionFatal
	}

	if pgerrcode.IsDataException(code) || pgerrcode.IsIntegrityConstraintViolation(code) {
		return RecordScoped
	}

	return TransactionFatal
}

// Translate implements [ErrorClassificator].
func (c *PostgresErrorClassifier) Translate(err error) error {
	code := postgresError(err)

	switch {
	case code == "":
		return nil
	case code == pgerrcode.UniqueViolation:
		return ErrEntityAlreadyExists
	case code == pgerrcode.ForeignKeyViolation:
		return ErrReferenceNotFound
	case code == pgerrcode.NotNullViolation,
		code == pgerrcode.CheckViolation,
		pgerrcode.IsDataException(code):
		return ErrInvalidRecord
	}

	return nil
}
