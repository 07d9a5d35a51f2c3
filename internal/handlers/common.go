package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"habit-tracker/internal/apperror"
	"habit-tracker/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Message string              `json:"message"`
	Details []map[string]string `json:"details,omitempty"`
}

var validate = apperror.NewValidator()

// respondJSON writes v with the given status
func respondJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	respondJSON(w, statusCode, ErrorResponse{Message: message})
}

// decodeBody decodes and validates a JSON body. It writes the 400 response
// itself and returns false when the body is unusable.
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return false
	}

	if err := validate.Struct(dst); err != nil {
		var validationErr validator.ValidationErrors
		if errors.As(err, &validationErr) {
			details := apperror.ValidationDetails(err)
			respondJSON(w, http.StatusBadRequest, ErrorResponse{
				Message: apperror.Summary(details),
				Details: details,
			})
			return false
		}
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

// locationParam reads the optional ?tz= IANA zone. It returns nil when the
// parameter is absent and writes a 400 for an unknown zone.
func locationParam(w http.ResponseWriter, r *http.Request) (*time.Location, bool) {
	tz := r.URL.Query().Get("tz")
	if tz == "" {
		return nil, true
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		respondError(w, "Unknown time zone", http.StatusBadRequest)
		return nil, false
	}
	return loc, true
}

// statusFor maps a service error to an HTTP status
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, services.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondServiceError logs err on event and writes the mapped response.
// Internal errors are reported with fallback instead of the raw error text.
func respondServiceError(w http.ResponseWriter, event *zerolog.Event, err error, fallback string) {
	statusCode := statusFor(err)
	event.Err(err).Int("status", statusCode).Msg(fallback)

	respondError(w, publicMessage(err, statusCode, fallback), statusCode)
}

var sentinels = []error{
	services.ErrInvalidInput,
	services.ErrUnauthorized,
	services.ErrForbidden,
	services.ErrConflict,
	services.ErrUnavailable,
}

// publicMessage extracts the client-facing text that follows the sentinel in a
// wrapped error such as "failed to x: conflict: already friends".
func publicMessage(err error, statusCode int, fallback string) string {
	switch statusCode {
	case http.StatusInternalServerError:
		return fallback
	case http.StatusNotFound:
		return "Not found"
	}

	msg := err.Error()
	for _, sentinel := range sentinels {
		prefix := sentinel.Error() + ": "
		if idx := strings.LastIndex(msg, prefix); idx >= 0 && errors.Is(err, sentinel) {
			return msg[idx+len(prefix):]
		}
	}
	return msg
}
