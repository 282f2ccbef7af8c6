package service

import (
	"context"

	"github.com/MKhiriev/go-trip-keeper/internal/config"
	"github.com/MKhiriev/go-trip-keeper/internal/logger"
	"github.com/MKhiriev/go-trip-keeper/models"
)

type appInfoService struct {
	version string
}

// NewAppInfoService reports the configured APP_VERSION, or the version
// linked into the binary when none is configured.
func NewAppInfoService(cfg config.App, build models.AppBuildInfo, logger *logger.Logger) (AppInfoService, error) {
	version := cfg.Version
	if version == "" && build.Known() {
		version = build.BuildVersion()
	}
	if version == "" {
		logger.Error().Str("func", "NewAppInfoService").Msg("neither APP_VERSION nor a build version is set")
		return nil, ErrVersionIsNotSpecified
	}

	logger.Info().Str("func", "NewAppInfoService").Str("version", version).Str("commit", build.BuildCommit()).Msg("serving version")
	return &appInfoService{version: version}, nil
}

func (s *appInfoService) GetAppVersion(_ context.Context) string {
	return s.version
}
