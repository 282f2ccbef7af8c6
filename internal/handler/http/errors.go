// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import "errors"

// Sentinel errors of the transport layer. Callers can match against them
// with [errors.Is].
var (
	// ErrEmptyAuthorizationHeader is returned by the auth middleware when the
	// incoming request does not include an "Authorization" header at all.
	ErrEmptyAuthorizationHeader = errors.New("empty `Authorization` header")

	// ErrNoUserID means a protected handler ran without the auth middleware.
	ErrNoUserID = errors.New("no user ID was given")

	ErrInvalidJSON      = errors.New("invalid JSON was passed")
	ErrBodyTooLarge     = errors.New("request body is too large")
	ErrInvalidWatermark = errors.New("lastSyncedAt must be an RFC 3339 timestamp")

	// ErrInvalidIdempotencyKey is returned for an Idempotency-Key header
	// longer than maxIdempotencyKeyLength.
	ErrInvalidIdempotencyKey = errors.New("invalid `Idempotency-Key` header")

	ErrIdempotencyKeyReused        = errors.New("`Idempotency-Key` was already used for a different request body")
	ErrIdempotentRequestInProgress = errors.New("a request with this `Idempotency-Key` is still being processed")
)
