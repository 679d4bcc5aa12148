package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"inkwell/app/apperr"
	"inkwell/app/comments"

	"github.com/rs/zerolog/log"
)

func sendJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func sendError(w http.ResponseWriter, message string, status int) {
	sendJSON(w, status, map[string]string{"error": message})
}

// sendFailure maps an error from the service layer to a status code.
func sendFailure(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusBadGateway
	switch {
	case errors.Is(err, comments.ErrSubmitInProgress):
		status = http.StatusConflict
	case apperr.KindOf(err) == apperr.KindNotFound:
		status = http.StatusNotFound
	case apperr.KindOf(err) == apperr.KindValidation:
		status = http.StatusBadRequest
	default:
		log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	sendError(w, apperr.Message(err), status)
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
