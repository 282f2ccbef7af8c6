package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/MKhiriev/go-trip-keeper/internal/logger"
	"github.com/MKhiriev/go-trip-keeper/internal/utils"
	"github.com/MKhiriev/go-trip-keeper/models"
)

// maxBodyBytes caps decoded request bodies. A full offline dataset is the
// largest payload a client sends.
const maxBodyBytes = 32 << 20

func (h *Handler) push(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, found := utils.GetUserIDFromContext(ctx)
	if !found {
		log.Error().Str("func", "*Handler.push").Msg("no user ID was given")
		respondError(w, ErrNoUserID)
		return
	}

	var batch models.SyncBatch
	if err := decodeBody(w, r, &batch); err != nil {
		log.Err(err).Str("func", "*Handler.push").Msg("invalid request body")
		respondError(w, err)
		return
	}

	result, err := h.services.SyncService.Push(ctx, userID, batch)
	if err != nil {
		log.Err(err).Str("func", "*Handler.push").Int64("user_id", userID).Msg("push failed")
		respondError(w, err)
		return
	}

	utils.WriteJSON(w, models.Response{Success: true, Data: result}, http.StatusOK)
}

func (h *Handler) pull(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, found := utils.GetUserIDFromContext(ctx)
	if !found {
		log.Error().Str("func", "*Handler.pull").Msg("no user ID was given")
		respondError(w, ErrNoUserID)
		return
	}

	lastSyncedAt, err := parseWatermark(r.URL.Query().Get("lastSyncedAt"))
	if err != nil {
		log.Err(err).Str("func", "*Handler.pull").Msg("invalid watermark")
		respondError(w, err)
		return
	}

	result, err := h.services.SyncService.Pull(ctx, userID, lastSyncedAt)
	if err != nil {
		log.Err(err).Str("func", "*Handler.pull").Int64("user_id", userID).Msg("pull failed")
		respondError(w, err)
		return
	}

	utils.WriteJSON(w, models.Response{Success: true, Data: result}, http.StatusOK)
}

func (h *Handler) resolve(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, found := utils.GetUserIDFromContext(ctx)
	if !found {
		log.Error().Str("func", "*Handler.resolve").Msg("no user ID was given")
		respondError(w, ErrNoUserID)
		return
	}

	var req models.ResolveRequest
	if err := decodeBody(w, r, &req); err != nil {
		log.Err(err).Str("func", "*Handler.resolve").Msg("invalid request body")
		respondError(w, err)
		return
	}

	result, err := h.services.SyncService.ResolveConflict(ctx, userID, req)
	if err != nil {
		log.Err(err).Str("func", "*Handler.resolve").Int64("user_id", userID).Msg("resolve failed")
		respondError(w, err)
		return
	}

	utils.WriteJSON(w, models.Response{Success: true, Message: result.Message}, http.StatusOK)
}

func (h *Handler) migrate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, found := utils.GetUserIDFromContext(ctx)
	if !found {
		log.Error().Str("func", "*Handler.migrate").Msg("no user ID was given")
		respondError(w, ErrNoUserID)
		return
	}

	var req models.MigrationRequest
	if err := decodeBody(w, r, &req); err != nil {
		log.Err(err).Str("func", "*Handler.migrate").Msg("invalid request body")
		respondError(w, err)
		return
	}

	result, err := h.services.MigrationService.Migrate(ctx, userID, req)
	if err != nil {
		log.Err(err).Str("func", "*Handler.migrate").Int64("user_id", userID).Msg("migration failed")
		respondError(w, err)
		return
	}

	utils.WriteJSON(w, models.MigrationResponse{Success: true, MigrationResult: result}, http.StatusOK)
}

// decodeBody reads a JSON body of at most maxBodyBytes into dst.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst)
	if err == nil {
		return nil
	}

	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return ErrBodyTooLarge
	}
	return fmt.Errorf("%w: %w", ErrInvalidJSON, err)
}

// parseWatermark parses the lastSyncedAt query parameter. An empty value
// means no watermark.
func parseWatermark(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}

	watermark, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidWatermark, raw)
	}

	watermark = watermark.UTC()
	return &watermark, nil
}
