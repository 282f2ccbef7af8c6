package validators

import "errors"

var (
	ErrUnsupportedType = errors.New("unsupported type for validation")

	ErrInvalidEntityType = errors.New("invalid entity type")
	ErrInvalidAction     = errors.New("invalid action")
	ErrInvalidResolution = errors.New("invalid resolution")
	ErrInvalidEntityID   = errors.New("invalid entity id")
	ErrInvalidTimestamp  = errors.New("invalid local updated at timestamp")
	ErrBatchTooLarge     = errors.New("too many changes in one batch")
	ErrTooManyRecords    = errors.New("too many records in one migration")
	ErrInvalidRecord     = errors.New("invalid migration record")
)
