package handler

import (
	"github.com/MKhiriev/go-trip-keeper/internal/config"
	"github.com/MKhiriev/go-trip-keeper/internal/handler/http"
	"github.com/MKhiriev/go-trip-keeper/internal/logger"
	"github.com/MKhiriev/go-trip-keeper/internal/metrics"
	"github.com/MKhiriev/go-trip-keeper/internal/service"
	"github.com/MKhiriev/go-trip-keeper/internal/store"
)

type Handlers struct {
	HTTP *http.Handler
}

// NewHandlers builds the transport handlers. idempotency may be nil when no
// replay cache is configured.
func NewHandlers(
	services *service.Services,
	idempotency store.IdempotencyStore,
	recorder *metrics.Recorder,
	cfg *config.StructuredConfig,
	logger *logger.Logger,
) (*Handlers, error) {
	logger.Info().Msg("creating new handlers...")

	if cfg.Server.HTTPAddress == "" {
		return nil, errNoHandlersAreCreated
	}

	opts := []http.Option{
		http.WithMetrics(recorder),
		http.WithAllowedOrigins(cfg.Server.AllowedOrigins),
		http.WithRequestTimeout(cfg.Server.RequestTimeout),
	}
	if idempotency != nil {
		opts = append(opts, http.WithIdempotencyStore(idempotency, cfg.Storage.Redis.IdempotencyTTL))
	}

	return &Handlers{
		HTTP: http.NewHandler(services, logger, opts...),
	}, nil
}
