package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"consult-broker/internal/apperr"
	"consult-broker/internal/identity"
	"consult-broker/internal/model"
)

type errorBody struct {
	Error       string       `json:"error"`
	Description string       `json:"error_description,omitempty"`
	Current     model.Status `json:"current_status,omitempty"`
	Requested   model.Status `json:"requested_status,omitempty"`
}

// StatusFor is the HTTP status for an error kind.
func StatusFor(k apperr.Kind) int {
	switch k {
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindValidation, apperr.KindBadRequest:
		return http.StatusBadRequest
	case apperr.KindInvalidTransition, apperr.KindChatUnavailable:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError translates core and identity errors into the JSON error
// envelope. Internal errors are logged and never described to the client.
func writeError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	switch {
	case errors.Is(err, identity.ErrInvalidCredentials), errors.Is(err, identity.ErrBadRefreshToken):
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "unauthorized", Description: err.Error()})
		return
	case errors.Is(err, identity.ErrRegistrationFailed):
		writeJSON(w, http.StatusConflict, errorBody{Error: "registration_failed", Description: err.Error()})
		return
	}

	var ae *apperr.Error
	if !errors.As(err, &ae) {
		log.ErrorContext(r.Context(), "internal error", "path", r.URL.Path, "err", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal_error"})
		return
	}
	writeJSON(w, StatusFor(ae.Kind), errorBody{
		Error:       string(ae.Kind),
		Description: ae.Message,
		Current:     ae.Current,
		Requested:   ae.Requested,
	})
}

func decode(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperr.BadRequest("invalid request body")
	}
	return nil
}
