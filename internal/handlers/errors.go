package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"payment-gateway/internal/errs"
)

type errorBody struct {
	Error     string         `json:"error"`
	Message   string         `json:"message"`
	Code      string         `json:"code"`
	Timestamp string         `json:"timestamp"`
	Details   map[string]any `json:"details,omitempty"`
}

// writeError maps a taxonomy error onto the wire. The wrapped cause stays
// out of the body.
func writeError(w http.ResponseWriter, err error) {
	e := errs.From(err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.Kind.HTTPStatus())
	json.NewEncoder(w).Encode(errorBody{
		Error:     e.Kind.String(),
		Message:   e.Message,
		Code:      e.Code,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Details:   e.Details,
	})
}
