package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dtroode/gophkeeper-vault/internal/model"
)

// retryAfterSeconds is sent with 503 responses.
const retryAfterSeconds = "1"

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// statusOf maps the kind of err to an HTTP status code.
func statusOf(err error) int {
	switch model.Kind(err) {
	case model.ErrUnauthenticated:
		return http.StatusUnauthorized
	case model.ErrInvalidInput:
		return http.StatusBadRequest
	case model.ErrNotFound:
		return http.StatusNotFound
	case model.ErrDecryptionFailed:
		return http.StatusInternalServerError
	default:
		return http.StatusServiceUnavailable
	}
}

// writeError writes {"error": "<kind>"}. Validation errors also name the field.
func writeError(w http.ResponseWriter, err error) {
	code := statusOf(err)
	body := errorBody{Error: model.KindName(err)}

	var verr *model.ValidationError
	if errors.As(err, &verr) {
		body.Message = verr.Error()
	}
	if code == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", retryAfterSeconds)
	}

	writeJSON(w, code, body)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
