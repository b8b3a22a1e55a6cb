package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/nholik/plumb-sentinel/internal/equipment"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error().Err(err).Msg("encode response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, code, message string) {
	h.writeJSON(w, status, errorResponse{Error: message, Code: code})
}

// assessError maps an engine error to a status and response body. Only
// configuration errors are shown to the caller.
func (h *Handler) assessError(err error) (int, errorResponse) {
	var cfgErr *equipment.ConfigError
	if errors.As(err, &cfgErr) {
		return http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Code: "UNKNOWN_EQUIPMENT"}
	}
	h.logger.Error().Err(err).Msg("assessment failed")
	return http.StatusInternalServerError, errorResponse{Error: "internal server error", Code: "INTERNAL_ERROR"}
}

func (h *Handler) writeAssessError(w http.ResponseWriter, err error) {
	status, resp := h.assessError(err)
	h.writeJSON(w, status, resp)
}

// parseAsOf reads the as_of query parameter as RFC 3339 or a calendar date.
// Absent means now.
func (h *Handler) parseAsOf(r *http.Request) (time.Time, error) {
	raw := r.URL.Query().Get("as_of")
	if raw == "" {
		return h.now().UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, errors.New("as_of must be RFC 3339 or YYYY-MM-DD")
	}
	return t, nil
}
