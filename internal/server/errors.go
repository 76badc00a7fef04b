package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/ziadkadry99/flinsight/internal/compliance"
	"github.com/ziadkadry99/flinsight/internal/logger"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Status  string `json:"status"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Component("server").Warn().Err(err).Msg("writing response failed")
	}
}

func writeError(w http.ResponseWriter, status int, reason, message string) {
	writeJSON(w, status, errorBody{Status: "error", Error: reason, Message: message})
}

// writeServiceError maps a compliance error to a response. Invalid input is
// a 400 whose reason is the missing field description.
func writeServiceError(w http.ResponseWriter, err error) {
	if errors.Is(err, compliance.ErrInvalidInput) {
		reason := strings.TrimPrefix(err.Error(), compliance.ErrInvalidInput.Error()+": ")
		writeError(w, http.StatusBadRequest, reason, err.Error())
		return
	}
	logger.Component("server").Error().Err(err).Msg("request failed")
	writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
}

// decodeBody decodes a JSON request body into v, writing a 400 on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return false
	}
	return true
}
