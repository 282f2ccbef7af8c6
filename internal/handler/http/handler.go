package http

import (
	"time"

	"github.com/MKhiriev/go-trip-keeper/internal/logger"
	"github.com/MKhiriev/go-trip-keeper/internal/metrics"
	"github.com/MKhiriev/go-trip-keeper/internal/service"
	"github.com/MKhiriev/go-trip-keeper/internal/store"
)

type Handler struct {
	services *service.Services

	// optional collaborators, see the With* options
	metrics        *metrics.Recorder
	idempotency    store.IdempotencyStore
	idempotencyTTL time.Duration
	allowedOrigins []string
	requestTimeout time.Duration

	logger *logger.Logger
}

// Option configures optional parts of a Handler.
type Option func(*Handler)

// WithMetrics records request latencies and serves /metrics from recorder.
func WithMetrics(recorder *metrics.Recorder) Option {
	return func(h *Handler) {
		h.metrics = recorder
	}
}

// WithIdempotencyStore enables replays of push and migrate responses for
// requests carrying an Idempotency-Key header. A nil store disables them.
func WithIdempotencyStore(idempotency store.IdempotencyStore, ttl time.Duration) Option {
	return func(h *Handler) {
		h.idempotency = idempotency
		h.idempotencyTTL = ttl
	}
}

// WithAllowedOrigins sets the CORS origins. Without it any origin is allowed.
func WithAllowedOrigins(origins []string) Option {
	return func(h *Handler) {
		h.allowedOrigins = origins
	}
}

// WithRequestTimeout bounds the handling time of every request.
func WithRequestTimeout(timeout time.Duration) Option {
	return func(h *Handler) {
		h.requestTimeout = timeout
	}
}

func NewHandler(services *service.Services, logger *logger.Logger, opts ...Option) *Handler {
	logger.Info().Msg("http handler created")

	h := &Handler{
		services: services,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(h)
	}

	return h
}
