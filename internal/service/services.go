package service

import (
	"time"

	"github.com/MKhiriev/go-trip-keeper/internal/config"
	"github.com/MKhiriev/go-trip-keeper/internal/logger"
	"github.com/MKhiriev/go-trip-keeper/internal/metrics"
	"github.com/MKhiriev/go-trip-keeper/internal/store"
	"github.com/MKhiriev/go-trip-keeper/internal/validators"
	"github.com/MKhiriev/go-trip-keeper/models"
)

type Services struct {
	AuthService      AuthService
	AppInfoService   AppInfoService
	SyncService      SyncService
	MigrationService MigrationService
}

func NewServices(storages *store.Storages, cfg *config.StructuredConfig, build models.AppBuildInfo, recorder *metrics.Recorder, logger *logger.Logger) (*Services, error) {
	appInfoService, err := NewAppInfoService(cfg.App, build, logger)
	if err != nil {
		return nil, err
	}

	validator := validators.NewSyncValidator(cfg.Sync.MaxBatchSize, cfg.Sync.MaxMigrationRecords)

	processor := NewChangeProcessor(
		storages.TripRepository,
		storages.DestinationRepository,
		storages.ExpenseRepository,
		time.Now,
		recorder,
	)

	syncService := NewSyncValidationService(validator).Wrap(NewSyncService(
		processor,
		storages.TripRepository,
		storages.DestinationRepository,
		storages.ExpenseRepository,
		time.Now,
		logger,
	))

	migrationService := NewMigrationValidationService(validator).Wrap(
		NewMigrationService(storages.Transactor, time.Now, recorder, logger),
	)

	return &Services{
		AuthService:      NewAuthService(cfg.App, logger),
		AppInfoService:   appInfoService,
		SyncService:      syncService,
		MigrationService: migrationService,
	}, nil
}
