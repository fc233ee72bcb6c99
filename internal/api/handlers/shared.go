package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/phuslu/log"

	"github.com/woodid012/renew-portfolio-api/internal/api/response"
	"github.com/woodid012/renew-portfolio-api/internal/apperrors"
	"github.com/woodid012/renew-portfolio-api/internal/validation"
)

const (
	storeHint   = "Please check your MONGODB_URI environment variable"
	backendHint = "The modeling backend may not be running. Check LOCAL_BACKEND_URL or BACKEND_URL"
)

// maxRequestBody caps JSON request bodies.
const maxRequestBody = 10 << 20

// decodeJSON decodes the request body into v, answering 400 itself on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(v); err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return false
	}
	return true
}

// respondServiceError maps a service error to its HTTP status and envelope.
// fallback is the message used for unclassified failures.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	var (
		validationErr *validation.Error
		argumentErr   *apperrors.ArgumentError
		notFound      *apperrors.NotFoundError
		upstream      *apperrors.UpstreamError
	)

	switch {
	case errors.As(err, &validationErr):
		response.RespondError(w, http.StatusBadRequest, validationErr.Error(), nil)
	case errors.As(err, &argumentErr):
		response.RespondError(w, http.StatusBadRequest, argumentErr.Message, nil)
	case errors.Is(err, apperrors.ErrReservedPortfolio):
		response.RespondError(w, http.StatusBadRequest, err.Error(), nil)
	case errors.As(err, &notFound):
		response.RespondJSON(w, http.StatusNotFound, map[string]any{
			"error":      "Portfolio not found",
			notFound.Key: notFound.Token,
		})
	case errors.Is(err, apperrors.ErrImportFileNotFound):
		response.RespondError(w, http.StatusNotFound, "Import file not found", err.Error())
	case errors.As(err, &upstream):
		response.RespondJSON(w, upstream.Status, map[string]any{
			"status":  "error",
			"error":   upstream.Message,
			"message": upstream.Message,
		})
	case errors.Is(err, apperrors.ErrUpstreamUnavailable):
		log.Error().Err(err).Str("path", r.URL.Path).Msg("modeling backend unavailable")
		response.RespondErrorWithHint(w, http.StatusInternalServerError, "Failed to connect to backend", err.Error(), backendHint)
	case errors.Is(err, apperrors.ErrStoreUnavailable):
		log.Error().Err(err).Str("path", r.URL.Path).Msg("document store unavailable")
		response.RespondErrorWithHint(w, http.StatusInternalServerError, "MongoDB connection failed", err.Error(), storeHint)
	default:
		log.Error().Err(err).Str("path", r.URL.Path).Msg(fallback)
		response.RespondError(w, http.StatusInternalServerError, fallback, err.Error())
	}
}
