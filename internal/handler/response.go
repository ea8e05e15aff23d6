package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/oracle-enclave/internal/apperror"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding response", slog.String("error", err.Error()))
	}
}

// writeError maps the error taxonomy onto HTTP statuses. Script and coercion
// failures are the caller's problem (the script they registered is broken),
// upstream fetch failures are a gateway problem, and everything unclassified
// is ours.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, apperror.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, apperror.ErrValidation), errors.Is(err, apperror.ErrUnsupportedLanguage):
		status = http.StatusBadRequest
	case errors.Is(err, apperror.ErrExecution):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, apperror.ErrTransport):
		status = http.StatusBadGateway
	}

	if status == http.StatusInternalServerError {
		logger.Error("internal error", slog.String("error", err.Error()))
		writeJSON(w, status, errorResponse{Error: "internal server error"})
		return
	}

	writeJSON(w, status, errorResponse{Error: err.Error()})
}
