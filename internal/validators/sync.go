package validators

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/MKhiriev/go-trip-keeper/models"
)

// Custom validation tags registered on the underlying validator.
const (
	tagEntityType = "entity_type"
	tagAction     = "sync_action"
	tagResolution = "resolution"
)

// SyncValidator validates sync and migration requests at the boundary,
// before any of them reaches the store.
type SyncValidator struct {
	validate            *validator.Validate
	maxBatchSize        int
	maxMigrationRecords int
}

// NewSyncValidator builds a validator. A limit <= 0 disables that limit.
func NewSyncValidator(maxBatchSize, maxMigrationRecords int) Validator {
	validate := validator.New(validator.WithRequiredStructEnabled())

	// report json field names, e.g. "trips[0].startDate"
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	// registration only fails for empty tags or nil funcs
	_ = validate.RegisterValidation(tagEntityType, func(fl validator.FieldLevel) bool {
		return models.EntityType(fl.Field().String()).Valid()
	})
	_ = validate.RegisterValidation(tagAction, func(fl validator.FieldLevel) bool {
		return models.Action(fl.Field().String()).Valid()
	})
	_ = validate.RegisterValidation(tagResolution, func(fl validator.FieldLevel) bool {
		return models.Resolution(fl.Field().String()).Valid()
	})

	return &SyncValidator{
		validate:            validate,
		maxBatchSize:        maxBatchSize,
		maxMigrationRecords: maxMigrationRecords,
	}
}

// Validate implements [Validator]. Field scoping is not supported; the
// whole value is always validated.
func (v *SyncValidator) Validate(ctx context.Context, obj any, _ ...string) error {
	switch value := obj.(type) {
	case models.SyncBatch:
		return v.validateSyncBatch(ctx, value)
	case *models.SyncBatch:
		return v.validateSyncBatch(ctx, *value)

	case models.Change:
		return v.validateStruct(ctx, value)
	case *models.Change:
		return v.validateStruct(ctx, *value)

	case models.ResolveRequest:
		return v.validateStruct(ctx, value)
	case *models.ResolveRequest:
		return v.validateStruct(ctx, *value)

	case models.MigrationRequest:
		return v.validateMigrationRequest(ctx, value)
	case *models.MigrationRequest:
		return v.validateMigrationRequest(ctx, *value)

	default:
		return ErrUnsupportedType
	}
}

func (v *SyncValidator) validateSyncBatch(ctx context.Context, batch models.SyncBatch) error {
	if v.maxBatchSize > 0 && len(batch.Changes) > v.maxBatchSize {
		return fmt.Errorf("%w: %d changes, at most %d allowed", ErrBatchTooLarge, len(batch.Changes), v.maxBatchSize)
	}

	for i, change := range batch.Changes {
		if err := v.validateStruct(ctx, change); err != nil {
			return fmt.Errorf("changes[%d]: %w", i, err)
		}
	}

	return nil
}

func (v *SyncValidator) validateMigrationRequest(ctx context.Context, req models.MigrationRequest) error {
	if v.maxMigrationRecords > 0 && req.Total() > v.maxMigrationRecords {
		return fmt.Errorf("%w: %d records, at most %d allowed", ErrTooManyRecords, req.Total(), v.maxMigrationRecords)
	}

	return v.validateStruct(ctx, req)
}

func (v *SyncValidator) validateStruct(ctx context.Context, obj any) error {
	err := v.validate.StructCtx(ctx, obj)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return err
	}

	return translate(validationErrors[0])
}

// translate maps the first failed rule to a sentinel error.
func translate(fe validator.FieldError) error {
	switch fe.Tag() {
	case tagEntityType:
		return fmt.Errorf("%w: %q", ErrInvalidEntityType, fe.Value())
	case tagAction:
		return fmt.Errorf("%w: %q", ErrInvalidAction, fe.Value())
	case tagResolution:
		return fmt.Errorf("%w: %q", ErrInvalidResolution, fe.Value())
	}

	switch fe.StructField() {
	case "EntityID":
		return fmt.Errorf("%w: %s", ErrInvalidEntityID, fe.Tag())
	case "LocalUpdatedAt":
		return fmt.Errorf("%w: %s", ErrInvalidTimestamp, fe.Tag())
	}

	return fmt.Errorf("%w: %s failed on %q", ErrInvalidRecord, fieldPath(fe), fe.Tag())
}

// fieldPath drops the root struct name from the namespace.
func fieldPath(fe validator.FieldError) string {
	_, path, found := strings.Cut(fe.Namespace(), ".")
	if !found {
		return fe.Namespace()
	}
	return path
}
