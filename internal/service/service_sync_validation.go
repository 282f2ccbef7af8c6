package service

import (
	"context"
	"fmt"
	"time"

	"github.com/MKhiriev/go-trip-keeper/internal/validators"
	"github.com/MKhiriev/go-trip-keeper/models"
)

// SyncValidationService rejects malformed sync requests before they reach
// the wrapped SyncService.
type SyncValidationService struct {
	inner     SyncService
	validator validators.Validator
}

func NewSyncValidationService(validator validators.Validator) SyncServiceWrapper {
	return &SyncValidationService{
		validator: validator,
	}
}

func (v *SyncValidationService) Push(ctx context.Context, userID int64, batch models.SyncBatch) (models.SyncResult, error) {
	if userID <= 0 {
		return models.SyncResult{}, ErrValidationNoUserID
	}
	if err := v.validator.Validate(ctx, batch); err != nil {
		return models.SyncResult{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	return v.inner.Push(ctx, userID, batch)
}

func (v *SyncValidationService) Pull(ctx context.Context, userID int64, lastSyncedAt *time.Time) (models.SyncResult, error) {
	if userID <= 0 {
		return models.SyncResult{}, ErrValidationNoUserID
	}

	return v.inner.Pull(ctx, userID, lastSyncedAt)
}

func (v *SyncValidationService) ResolveConflict(ctx context.Context, userID int64, req models.ResolveRequest) (models.ResolveResult, error) {
	if userID <= 0 {
		return models.ResolveResult{}, ErrValidationNoUserID
	}
	if err := v.validator.Validate(ctx, req); err != nil {
		return models.ResolveResult{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	return v.inner.ResolveConflict(ctx, userID, req)
}

func (v *SyncValidationService) Wrap(wrapper SyncService) SyncService {
	v.inner = wrapper
	return v
}

// MigrationValidationService checks every record of an import before the
// wrapped MigrationService opens its transaction.
type MigrationValidationService struct {
	inner     MigrationService
	validator validators.Validator
}

func NewMigrationValidationService(validator validators.Validator) MigrationServiceWrapper {
	return &MigrationValidationService{
		validator: validator,
	}
}

func (v *MigrationValidationService) Migrate(ctx context.Context, userID int64, req models.MigrationRequest) (models.MigrationResult, error) {
	if userID <= 0 {
		return models.MigrationResult{}, ErrValidationNoUserID
	}
	if err := v.validator.Validate(ctx, req); err != nil {
		return models.MigrationResult{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	return v.inner.Migrate(ctx, userID, req)
}

func (v *MigrationValidationService) Wrap(wrapper MigrationService) MigrationService {
	v.inner = wrapper
	return v
}
