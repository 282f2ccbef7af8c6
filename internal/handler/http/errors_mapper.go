package http

import (
	"errors"
	"net/http"

	"github.com/MKhiriev/go-trip-keeper/internal/service"
	"github.com/MKhiriev/go-trip-keeper/internal/store"
	"github.com/MKhiriev/go-trip-keeper/internal/utils"
	"github.com/MKhiriev/go-trip-keeper/models"
)

var errorStatusMap = map[error]int{
	service.ErrValidation:              http.StatusBadRequest,
	service.ErrValidationNoUserID:      http.StatusUnauthorized,
	service.ErrTokenIsExpiredOrInvalid: http.StatusUnauthorized,
	service.ErrMigrationAborted:        http.StatusInternalServerError,

	ErrEmptyAuthorizationHeader:         http.StatusUnauthorized,
	utils.ErrInvalidAuthorizationHeader: http.StatusUnauthorized,
	ErrNoUserID:                         http.StatusUnauthorized,
	ErrInvalidJSON:                      http.StatusBadRequest,
	ErrBodyTooLarge:                     http.StatusBadRequest,
	ErrInvalidWatermark:                 http.StatusBadRequest,
	ErrInvalidIdempotencyKey:            http.StatusBadRequest,
	ErrIdempotencyKeyReused:             http.StatusUnprocessableEntity,
	ErrIdempotentRequestInProgress:      http.StatusConflict,

	store.ErrBuildingSQLQuery:     http.StatusInternalServerError,
	store.ErrExecutingQuery:       http.StatusInternalServerError,
	store.ErrBeginningTransaction: http.StatusInternalServerError,
	store.ErrCommitingTransaction: http.StatusInternalServerError,
	store.ErrExecutingStatement:   http.StatusInternalServerError,
	store.ErrScanningRow:          http.StatusInternalServerError,
	store.ErrScanningRows:         http.StatusInternalServerError,
}

func statusFromError(err error) int {
	for target, status := range errorStatusMap {
		if errors.Is(err, target) {
			return status
		}
	}
	return http.StatusInternalServerError
}

// messageFromError hides internal details of server-side failures.
func messageFromError(err error, status int) string {
	switch {
	case errors.Is(err, service.ErrMigrationAborted):
		return "migration aborted: nothing was imported, retry the whole dataset"
	case status >= http.StatusInternalServerError:
		return http.StatusText(http.StatusInternalServerError)
	}
	return err.Error()
}

// respondError writes err as a failed response envelope.
func respondError(w http.ResponseWriter, err error) {
	status := statusFromError(err)
	writeError(w, status, messageFromError(err, status))
}

func writeError(w http.ResponseWriter, status int, message string) {
	utils.WriteJSON(w, models.Response{Success: false, Message: message}, status)
}
