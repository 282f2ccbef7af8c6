package store

import "github.com/mattn/go-sqlite3"

// SQLiteErrorClassifier implements [ErrorClassificator] for SQLite. SQLite
// reports failures through primary result codes with optional extended codes.
type SQLiteErrorClassifier struct{}

func NewSQLiteErrorClassifier() *SQLiteErrorClassifier {
	return &SQLiteErrorClassifier{}
}

// Classify implements [ErrorClassificator]. Constraint violations, type
// mismatches and oversized or out-of-range values abort only the failing
// statement. Everything else (busy, locked, I/O, corruption, context
// cancellation) is [TransactionFatal].
func (c *SQLiteErrorClassifier) Classify(err error) ErrorClassification {
	sqliteErr, ok := sqliteError(err)
	if !ok {
		return TransactionFatal
	}

	switch sqliteErr.Code {
	case sqlite3.ErrConstraint, sqlite3.ErrMismatch, sqlite3.ErrTooBig, sqlite3.ErrRange:
		return RecordScoped
	}

	return TransactionFatal
}

// Translate implements [ErrorClassificator].
func (c *SQLiteErrorClassifier) Translate(err error) error {
	sqliteErr, ok := sqliteError(err)
	if !ok {
		return nil
	}

	switch sqliteErr.ExtendedCode {
	case sqlite3.ErrConstraintPrimaryKey, sqlite3.ErrConstraintUnique:
		return ErrEntityAlreadyExists
	case sqlite3.ErrConstraintForeignKey:
		return ErrReferenceNotFound
	case sqlite3.ErrConstraintNotNull, sqlite3.ErrConstraintCheck:
		return ErrInvalidRecord
	}

	switch sqliteErr.Code {
	case sqlite3.ErrMismatch, sqlite3.ErrTooBig, sqlite3.ErrRange:
		return ErrInvalidRecord
	}

	return nil
}
