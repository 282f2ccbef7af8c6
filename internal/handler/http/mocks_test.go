package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-trip-keeper/internal/logger"
	"github.com/MKhiriev/go-trip-keeper/internal/service"
	"github.com/MKhiriev/go-trip-keeper/internal/utils"
	"github.com/MKhiriev/go-trip-keeper/models"
)

// ─────────────────────────────────────────────
// Mock: service.AuthService
// ─────────────────────────────────────────────

type mockAuthService struct {
	parseTokenFn func(ctx context.Context, tokenString string) (models.Token, error)
}

func (m *mockAuthService) ParseToken(ctx context.Context, tokenString string) (models.Token, error) {
	if m.parseTokenFn != nil {
		return m.parseTokenFn(ctx, tokenString)
	}
	return models.Token{UserID: 1}, nil
}

// ─────────────────────────────────────────────
// Mock: service.SyncService
// ─────────────────────────────────────────────

type mockSyncService struct {
	pushFn    func(ctx context.Context, userID int64, batch models.SyncBatch) (models.SyncResult, error)
	pullFn    func(ctx context.Context, userID int64, lastSyncedAt *time.Time) (models.SyncResult, error)
	resolveFn func(ctx context.Context, userID int64, req models.ResolveRequest) (models.ResolveResult, error)
}

func (m *mockSyncService) Push(ctx context.Context, userID int64, batch models.SyncBatch) (models.SyncResult, error) {
	if m.pushFn != nil {
		return m.pushFn(ctx, userID, batch)
	}
	return models.NewSyncResult(), nil
}

func (m *mockSyncService) Pull(ctx context.Context, userID int64, lastSyncedAt *time.Time) (models.SyncResult, error) {
	if m.pullFn != nil {
		return m.pullFn(ctx, userID, lastSyncedAt)
	}
	return models.NewSyncResult(), nil
}

func (m *mockSyncService) ResolveConflict(ctx context.Context, userID int64, req models.ResolveRequest) (models.ResolveResult, error) {
	if m.resolveFn != nil {
		return m.resolveFn(ctx, userID, req)
	}
	return models.ResolveResult{Message: "ok"}, nil
}

// ─────────────────────────────────────────────
// Mock: service.MigrationService
// ─────────────────────────────────────────────

type mockMigrationService struct {
	migrateFn func(ctx context.Context, userID int64, req models.MigrationRequest) (models.MigrationResult, error)
}

func (m *mockMigrationService) Migrate(ctx context.Context, userID int64, req models.MigrationRequest) (models.MigrationResult, error) {
	if m.migrateFn != nil {
		return m.migrateFn(ctx, userID, req)
	}
	return models.MigrationResult{Conflicts: []models.Conflict{}}, nil
}

// ─────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────

// injectNopLogger puts a nop logger into the request context.
func injectNopLogger(r *http.Request) *http.Request {
	nop := logger.Nop()
	return r.WithContext(nop.Logger.WithContext(r.Context()))
}

func withUserID(r *http.Request, userID int64) *http.Request {
	return r.WithContext(utils.WithUserID(r.Context(), userID))
}

// envelope is the decoded form of models.Response with raw data.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env), rr.Body.String())
	return env
}

func newServices(sync service.SyncService, migration service.MigrationService) *service.Services {
	return &service.Services{
		AuthService:      &mockAuthService{},
		AppInfoService:   stubAppInfoService{version: "test-version"},
		SyncService:      sync,
		MigrationService: migration,
	}
}
