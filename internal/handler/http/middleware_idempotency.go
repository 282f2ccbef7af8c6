// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/MKhiriev/go-trip-keeper/internal/logger"
	"github.com/MKhiriev/go-trip-keeper/internal/utils"
	"github.com/MKhiriev/go-trip-keeper/models"
)

const (
	idempotencyKeyHeader   = "Idempotency-Key"
	idempotentReplayHeader = "Idempotent-Replay"

	maxIdempotencyKeyLength = 255

	// pendingIdempotencyTTL bounds how long a key stays reserved when the
	// server dies before the first request finishes.
	pendingIdempotencyTTL = 5 * time.Minute
)

// withIdempotency answers a repeated request carrying the same
// Idempotency-Key with the response stored for the first one, without
// running the handler again.
//
// The key is reserved before the handler runs, so concurrent retries get
// 409 until the first one finishes. Reusing a key with a different body
// gets 422. Only successful responses are kept: on failure the reservation
// is dropped and the request can be retried with the same key.
//
// It must run after auth: keys are scoped to the caller. Store failures are
// logged and the request is processed normally.
func (h *Handler) withIdempotency(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get(idempotencyKeyHeader)
		if h.idempotency == nil || key == "" {
			next.ServeHTTP(w, r)
			return
		}

		log := logger.FromRequest(r)
		ctx := r.Context()

		if len(key) > maxIdempotencyKeyLength {
			log.Error().Str("func", "*Handler.withIdempotency").Int("length", len(key)).Msg("idempotency key too long")
			respondError(w, ErrInvalidIdempotencyKey)
			return
		}

		userID, found := utils.GetUserIDFromContext(ctx)
		if !found {
			log.Error().Str("func", "*Handler.withIdempotency").Msg("no user ID was given")
			respondError(w, ErrNoUserID)
			return
		}
		storeKey := idempotencyStoreKey(userID, r.URL.Path, key)

		fingerprint, err := fingerprintBody(r)
		if err != nil {
			log.Err(err).Str("func", "*Handler.withIdempotency").Msg("failed to read request body")
			respondError(w, ErrInvalidJSON)
			return
		}

		stored, reserved, err := h.idempotency.Reserve(ctx, storeKey, fingerprint, h.pendingTTL())
		if err != nil {
			log.Err(err).Str("func", "*Handler.withIdempotency").Msg("failed to reserve idempotency key")
			next.ServeHTTP(w, r)
			return
		}
		if !reserved {
			h.answerRepeat(w, r, key, fingerprint, stored)
			return
		}

		saved := false
		defer func() {
			if saved {
				return
			}
			// a failed or panicking request frees the key for a retry
			if err := h.idempotency.Release(context.WithoutCancel(ctx), storeKey); err != nil {
				log.Err(err).Str("func", "*Handler.withIdempotency").Msg("failed to release idempotency key")
			}
		}()

		rw := &responseWriter{ResponseWriter: w, capture: true}
		next.ServeHTTP(rw, r)

		if rw.status < http.StatusOK || rw.status >= http.StatusMultipleChoices {
			return
		}

		err = h.idempotency.SaveResponse(context.WithoutCancel(ctx), storeKey, models.StoredResponse{
			Fingerprint: fingerprint,
			Status:      rw.status,
			ContentType: rw.Header().Get("Content-Type"),
			Body:        rw.body.Bytes(),
		}, h.idempotencyTTL)
		if err != nil {
			log.Err(err).Str("func", "*Handler.withIdempotency").Msg("failed to store response")
			return
		}
		saved = true
	})
}

// answerRepeat handles a request whose key is already taken.
func (h *Handler) answerRepeat(w http.ResponseWriter, r *http.Request, key, fingerprint string, stored models.StoredResponse) {
	log := logger.FromRequest(r)

	switch {
	case stored.Fingerprint != fingerprint:
		log.Warn().Str("func", "*Handler.answerRepeat").Str("idempotency_key", key).Msg("idempotency key reused with another body")
		respondError(w, ErrIdempotencyKeyReused)
	case stored.Pending:
		log.Info().Str("func", "*Handler.answerRepeat").Str("idempotency_key", key).Msg("request with this key is still running")
		respondError(w, ErrIdempotentRequestInProgress)
	default:
		log.Info().Str("func", "*Handler.answerRepeat").Str("idempotency_key", key).Msg("replaying stored response")
		w.Header().Set("Content-Type", stored.ContentType)
		w.Header().Set(idempotentReplayHeader, "true")
		w.WriteHeader(stored.Status)
		w.Write(stored.Body)
	}
}

// pendingTTL never outlives the stored response itself.
func (h *Handler) pendingTTL() time.Duration {
	ttl := pendingIdempotencyTTL
	if h.requestTimeout > 0 && h.requestTimeout+time.Minute > ttl {
		ttl = h.requestTimeout + time.Minute
	}
	if h.idempotencyTTL > 0 && h.idempotencyTTL < ttl {
		ttl = h.idempotencyTTL
	}
	return ttl
}

// fingerprintBody hashes the request body and puts it back for the handler.
// Reading stops one byte past maxBodyBytes so the handler still reports an
// oversized body.
func fingerprintBody(r *http.Request) (string, error) {
	if r.Body == nil {
		return hex.EncodeToString(sha256.New().Sum(nil)), nil
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return "", err
	}
	r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(body))

	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:]), nil
}

func idempotencyStoreKey(userID int64, path, key string) string {
	return fmt.Sprintf("idem:%d:%s:%s", userID, path, key)
}
