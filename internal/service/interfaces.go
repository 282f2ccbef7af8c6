package service

import (
	"context"
	"time"

	"github.com/MKhiriev/go-trip-keeper/models"
)

// SyncService is the sync engine behind the push, pull and resolve endpoints.
type SyncService interface {
	// Push applies the batch in submission order. Changes that fail are
	// logged and left out of the result; they never fail the call.
	Push(ctx context.Context, userID int64, batch models.SyncBatch) (models.SyncResult, error)

	// Pull returns rows written after lastSyncedAt, or a full snapshot when
	// lastSyncedAt is nil.
	Pull(ctx context.Context, userID int64, lastSyncedAt *time.Time) (models.SyncResult, error)

	// ResolveConflict acknowledges a conflict the client settled locally.
	ResolveConflict(ctx context.Context, userID int64, req models.ResolveRequest) (models.ResolveResult, error)
}

// MigrationService bulk-imports a client's offline dataset.
type MigrationService interface {
	Migrate(ctx context.Context, userID int64, req models.MigrationRequest) (models.MigrationResult, error)
}

// ChangeProcessor applies a single change for one user. A returned error
// means the change could not be processed at all; rejection and conflict
// are reported through [models.ChangeOutcome].
type ChangeProcessor interface {
	Process(ctx context.Context, userID int64, change models.Change) (models.ChangeOutcome, error)
}

type AuthService interface {
	ParseToken(ctx context.Context, tokenString string) (models.Token, error)
}

type AppInfoService interface {
	GetAppVersion(ctx context.Context) string
}

// SyncServiceWrapper defines middleware composition for SyncService.
// Implementations wrap an existing SyncService to add behavior such as
// validation.
type SyncServiceWrapper interface {
	Wrap(SyncService) SyncService
}

// MigrationServiceWrapper is the [SyncServiceWrapper] counterpart for
// MigrationService.
type MigrationServiceWrapper interface {
	Wrap(MigrationService) MigrationService
}
