// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/MKhiriev/go-trip-keeper/internal/config"
	"github.com/MKhiriev/go-trip-keeper/internal/logger"
	"github.com/MKhiriev/go-trip-keeper/internal/utils"
	"github.com/MKhiriev/go-trip-keeper/models"
)

const idempotencyKeyHeader = "Idempotency-Key"

type httpSyncAdapter struct {
	client *utils.HTTPClient
	token  string

	logger *logger.Logger
}

// NewHTTPSyncAdapter constructs the HTTP implementation of [SyncAdapter].
// It normalises cfg.HTTPAddress into a base URL and applies the request
// timeout to every call.
func NewHTTPSyncAdapter(cfg config.ClientAdapter, logger *logger.Logger) (SyncAdapter, error) {
	baseURL, err := normalizeBaseURL(cfg.HTTPAddress)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}

	return &httpSyncAdapter{
		client: utils.NewHTTPClient(baseURL, cfg.RequestTimeout),
		token:  strings.TrimSpace(cfg.Token),
		logger: logger,
	}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// Push implements [SyncAdapter].
func (h *httpSyncAdapter) Push(ctx context.Context, batch models.SyncBatch) (models.SyncResult, error) {
	key := utils.NewID()

	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader(idempotencyKeyHeader, key).
		SetBody(batch).
		Post("/sync/push")
	if err != nil {
		return models.SyncResult{}, fmt.Errorf("push request: %w", err)
	}

	var result models.SyncResult
	if _, err = decodeEnvelope(resp, &result); err != nil {
		return models.SyncResult{}, err
	}

	h.logger.Debug().
		Str("func", "httpSyncAdapter.Push").
		Str("idempotency_key", key).
		Bool("replayed", resp.Header().Get("Idempotent-Replay") == "true").
		Int("applied", len(result.Applied)).
		Int("conflicts", len(result.Conflicts)).
		Msg("push finished")

	return result, nil
}

// Pull implements [SyncAdapter].
func (h *httpSyncAdapter) Pull(ctx context.Context, lastSyncedAt *time.Time) (models.SyncResult, error) {
	req := h.authedRequest(ctx)
	if lastSyncedAt != nil {
		req.SetQueryParam("lastSyncedAt", lastSyncedAt.UTC().Format(time.RFC3339Nano))
	}

	resp, err := req.Get("/sync/pull")
	if err != nil {
		return models.SyncResult{}, fmt.Errorf("pull request: %w", err)
	}

	var result models.SyncResult
	if _, err = decodeEnvelope(resp, &result); err != nil {
		return models.SyncResult{}, err
	}

	return result, nil
}

// Resolve implements [SyncAdapter].
func (h *httpSyncAdapter) Resolve(ctx context.Context, req models.ResolveRequest) (models.ResolveResult, error) {
	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		Post("/sync/resolve")
	if err != nil {
		return models.ResolveResult{}, fmt.Errorf("resolve request: %w", err)
	}

	message, err := decodeEnvelope(resp, nil)
	if err != nil {
		return models.ResolveResult{}, err
	}

	return models.ResolveResult{Message: message}, nil
}

// Migrate implements [SyncAdapter]. The migrate envelope carries the
// result fields next to "success" rather than under "data".
func (h *httpSyncAdapter) Migrate(ctx context.Context, req models.MigrationRequest) (models.MigrationResult, error) {
	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader(idempotencyKeyHeader, utils.NewID()).
		SetBody(req).
		Post("/sync/migrate")
	if err != nil {
		return models.MigrationResult{}, fmt.Errorf("migrate request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.MigrationResult{}, err
	}

	var envelope models.MigrationResponse
	if err = json.Unmarshal(resp.Body(), &envelope); err != nil {
		return models.MigrationResult{}, fmt.Errorf("decode migrate response: %w", err)
	}
	if !envelope.Success {
		return models.MigrationResult{}, fmt.Errorf("%w: %s", ErrUnsuccessful, envelope.Message)
	}

	return envelope.MigrationResult, nil
}

// Version implements [SyncAdapter].
func (h *httpSyncAdapter) Version(ctx context.Context) (string, error) {
	resp, err := h.client.R().SetContext(ctx).Get("/version")
	if err != nil {
		return "", fmt.Errorf("version request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return "", err
	}

	return strings.TrimSpace(resp.String()), nil
}

func (h *httpSyncAdapter) authedRequest(ctx context.Context) *resty.Request {
	req := h.client.R().SetContext(ctx)
	if h.token != "" {
		req.SetAuthToken(h.token)
	}
	return req
}

// decodeEnvelope checks the status of a [models.Response] and unpacks its
// "data" member into dst when dst is non-nil. The envelope message is
// returned.
func decodeEnvelope(resp *resty.Response, dst any) (string, error) {
	if err := mapHTTPError(resp); err != nil {
		return "", err
	}

	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(resp.Body(), &envelope); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if !envelope.Success {
		return "", fmt.Errorf("%w: %s", ErrUnsuccessful, envelope.Message)
	}
	if dst == nil || len(envelope.Data) == 0 {
		return envelope.Message, nil
	}

	if err := json.Unmarshal(envelope.Data, dst); err != nil {
		return "", fmt.Errorf("decode response data: %w", err)
	}
	return envelope.Message, nil
}
