package service

import "errors"

var (
	ErrVersionIsNotSpecified   = errors.New("application version is not specified")
	ErrTokenIsExpiredOrInvalid = errors.New("token is expired or invalid")

	ErrValidation         = errors.New("validation failed")
	ErrValidationNoUserID = errors.New("no user ID was given")

	ErrUnsupportedEntityType = errors.New("unsupported entity type")
	ErrUnsupportedAction     = errors.New("unsupported action")
	ErrMalformedChange       = errors.New("malformed change payload")
	ErrMissingRequiredField  = errors.New("missing required field")

	// ErrForeignReference is returned for a migrated record whose trip or
	// destination does not belong to the importing user.
	ErrForeignReference = errors.New("referenced entity is not owned by the user")

	// ErrMigrationAborted means nothing of the import was kept.
	ErrMigrationAborted = errors.New("migration aborted")
)
