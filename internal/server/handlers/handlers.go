// Package handlers implements the shopfront REST API.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/nickabs/shopfront/internal/apperrors"
	"github.com/nickabs/shopfront/internal/database"
	"github.com/nickabs/shopfront/internal/logger"
	"github.com/nickabs/shopfront/internal/server/responses"
)

// decodeJSON decodes the request body into dst, responding with 400 when the body is not valid JSON for dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	defer r.Body.Close()

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			responses.RespondWithError(w, r, http.StatusRequestEntityTooLarge, apperrors.ErrCodeRequestTooLarge, "request body too large")
			return false
		}
		responses.RespondWithError(w, r, http.StatusBadRequest, apperrors.ErrCodeMalformedBody, fmt.Sprintf("could not decode request body: %v", err))
		return false
	}
	return true
}

// uuidParam reads a uuid from the chi URL parameter name. An invalid id is reported as not found.
func uuidParam(w http.ResponseWriter, r *http.Request, name string, notFoundMessage string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		responses.RespondWithError(w, r, http.StatusNotFound, apperrors.ErrCodeResourceNotFound, notFoundMessage)
		return uuid.Nil, false
	}
	return id, true
}

// respondWithQueryError maps a failed query to a response: missing rows are a 404, anything else a 500.
func respondWithQueryError(w http.ResponseWriter, r *http.Request, err error, notFoundMessage string) {
	if errors.Is(err, pgx.ErrNoRows) {
		responses.RespondWithError(w, r, http.StatusNotFound, apperrors.ErrCodeResourceNotFound, notFoundMessage)
		return
	}
	responses.RespondWithError(w, r, http.StatusInternalServerError, apperrors.ErrCodeDatabaseError, fmt.Sprintf("database error: %v", err))
}

// respondWithWriteError handles errors from inserts and updates. Unique violations are reported as a 409.
func respondWithWriteError(w http.ResponseWriter, r *http.Request, err error, conflictMessage string) {
	if constraint, ok := database.IsUniqueViolation(err); ok {
		_ = logger.ContextWithLogAttrs(r.Context(), slog.String("constraint", constraint))
		responses.RespondWithError(w, r, http.StatusConflict, apperrors.ErrCodeResourceAlreadyExists, conflictMessage)
		return
	}
	responses.RespondWithError(w, r, http.StatusInternalServerError, apperrors.ErrCodeDatabaseError, fmt.Sprintf("database error: %v", err))
}
