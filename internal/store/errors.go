package store

import "errors"

// Sentinel errors returned by repository methods to signal well-known failure
// conditions. Callers should use [errors.Is] to match against these values.
var (
	// ErrEntityNotFound is returned when a row with the requested id does not
	// exist, or exists but is not visible to the caller.
	ErrEntityNotFound = errors.New("entity was not found")

	// ErrEntityAlreadyExists is returned when an insert collides with an
	// existing primary key or unique constraint.
	ErrEntityAlreadyExists = errors.New("entity already exists")

	// ErrReferenceNotFound is returned when an insert or update points at a
	// trip or destination that does not exist.
	ErrReferenceNotFound = errors.New("referenced entity was not found")

	// ErrInvalidRecord is returned when the database rejects the values of a
	// row (not-null or check violation, bad data).
	ErrInvalidRecord = errors.New("invalid record")

	// ErrStaleWrite is returned by a compare-and-set update whose guard did
	// not match: the row is gone, is not owned by the caller, or was
	// modified after the caller's local timestamp.
	ErrStaleWrite = errors.New("row was modified concurrently")
)

// Low-level database operation errors. These are returned (or wrapped) by
// repository methods when a SQL-level operation fails before any domain logic
// can be applied.
var (
	// ErrBuildingSQLQuery is returned when constructing a parameterised SQL
	// query fails (e.g. invalid argument count or unsupported type).
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a SELECT or similar
	// read-only query against the database fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrBeginningTransaction is returned when the database driver cannot
	// start a new transaction.
	ErrBeginningTransaction = errors.New("failed to begin transaction")

	// ErrCommitingTransaction is returned when committing an open transaction
	// fails. The transaction is considered rolled back at this point.
	ErrCommitingTransaction = errors.New("failed to commit transaction")

	// ErrExecutingStatement is returned when executing a DML statement
	// (INSERT, UPDATE, DELETE) fails.
	ErrExecutingStatement = errors.New("failed to executing statement")

	// ErrScanningRow is returned when scanning column values from a single
	// result row into a destination struct fails.
	ErrScanningRow = errors.New("failed to scan row")

	// ErrScanningRows is returned when scanning column values during
	// multi-row iteration fails, typically mid-result-set.
	ErrScanningRows = errors.New("failed to scan rows")

	// ErrSavepoint is returned when a savepoint cannot be created, rolled
	// back to or released. The surrounding transaction is unusable after it.
	ErrSavepoint = errors.New("savepoint bookkeeping failed")

	// ErrIdempotencyStore is returned when the replay cache cannot be read
	// or written.
	ErrIdempotencyStore = errors.New("idempotency store failure")
)
