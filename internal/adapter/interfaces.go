// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter is the client side of the trip-keeper sync protocol.
//
// [SyncAdapter] hides the HTTP transport from the command-line client.
// Error values defined in errors.go are mapped from HTTP status codes by
// mapHTTPError so that callers can use [errors.Is] (e.g. [ErrUnauthorized]
// for 401).
package adapter

import (
	"context"
	"time"

	"github.com/MKhiriev/go-trip-keeper/models"
)

// SyncAdapter talks to the sync server on behalf of one user, identified by
// the bearer token it was built with.
type SyncAdapter interface {
	// Push uploads a batch of offline changes. Every call carries a fresh
	// Idempotency-Key so that a retried request is not applied twice.
	Push(ctx context.Context, batch models.SyncBatch) (models.SyncResult, error)

	// Pull downloads rows written after lastSyncedAt, or a full snapshot
	// when it is nil.
	Pull(ctx context.Context, lastSyncedAt *time.Time) (models.SyncResult, error)

	// Resolve acknowledges a conflict settled on the client.
	Resolve(ctx context.Context, req models.ResolveRequest) (models.ResolveResult, error)

	// Migrate uploads a whole offline dataset in one request.
	Migrate(ctx context.Context, req models.MigrationRequest) (models.MigrationResult, error)

	// Version returns the server's build version.
	Version(ctx context.Context) (string, error)
}
