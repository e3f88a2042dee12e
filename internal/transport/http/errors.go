package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cipherdrop/relay-service/internal/domain"
)

// errorStatus is the single error-kind to HTTP status mapping. Handlers
// never pick statuses ad hoc.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrRoomNotFound), errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrRoomKeyExists):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func respondError(w http.ResponseWriter, err error) {
	status := errorStatus(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		// Internal faults are logged in full and surfaced generically.
		slog.Error("internal error", slog.Any("err", err))
		msg = "internal error"
	}
	writeJSON(w, status, ErrorResponse{Error: msg})
}
