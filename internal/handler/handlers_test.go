package handler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/go-trip-keeper/internal/config"
	"github.com/MKhiriev/go-trip-keeper/internal/logger"
	"github.com/MKhiriev/go-trip-keeper/internal/metrics"
	"github.com/MKhiriev/go-trip-keeper/internal/mock"
	"github.com/MKhiriev/go-trip-keeper/internal/service"
)

func newTestConfig(address string) *config.StructuredConfig {
	return &config.StructuredConfig{
		Server: config.Server{
			HTTPAddress:    address,
			RequestTimeout: time.Second,
		},
		Storage: config.Storage{
			Redis: config.Redis{IdempotencyTTL: time.Hour},
		},
	}
}

// TestNewHandlers_HTTP verifies that an HTTP address yields an HTTP handler.
func TestNewHandlers_HTTP(t *testing.T) {
	h, err := NewHandlers(&service.Services{}, nil, metrics.NewRecorder(), newTestConfig(":8080"), logger.Nop())

	require.NoError(t, err)
	require.NotNil(t, h)
	assert.NotNil(t, h.HTTP)
}

// TestNewHandlers_WithIdempotencyStore verifies construction with a replay
// cache attached.
func TestNewHandlers_WithIdempotencyStore(t *testing.T) {
	store := mock.NewMockIdempotencyStore(gomock.NewController(t))

	h, err := NewHandlers(&service.Services{}, store, nil, newTestConfig(":8080"), logger.Nop())

	require.NoError(t, err)
	assert.NotNil(t, h.HTTP)
}

// TestNewHandlers_NoAddress verifies that a missing address is fatal.
func TestNewHandlers_NoAddress(t *testing.T) {
	h, err := NewHandlers(&service.Services{}, nil, nil, newTestConfig(""), logger.Nop())

	require.ErrorIs(t, err, errNoHandlersAreCreated)
	assert.Nil(t, h)
}

// TestNewHandlers_IndependentInstances verifies that two calls produce
// independent handlers.
func TestNewHandlers_IndependentInstances(t *testing.T) {
	cfg := newTestConfig(":8080")

	h1, err1 := NewHandlers(&service.Services{}, nil, nil, cfg, logger.Nop())
	h2, err2 := NewHandlers(&service.Services{}, nil, nil, cfg, logger.Nop())

	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.NotSame(t, h1, h2)
	assert.NotSame(t, h1.HTTP, h2.HTTP)
}
