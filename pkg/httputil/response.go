package httputil

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
)

// ErrorBody is the fixed failure envelope. Sections that would carry data on
// success are simply absent; clients key off success=false
type ErrorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

func JSON(w http.ResponseWriter, status int, body any, headers map[string]string) error {
	// No body -> 204
	if body == nil && status == http.StatusNoContent {
		for k, v := range headers {
			w.Header().Set(k, v)
		}
		w.WriteHeader(status)
		return nil
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	for k, v := range headers {
		w.Header().Set(k, v)
	}
	w.WriteHeader(status)

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	return enc.Encode(body)
}

func Error(w http.ResponseWriter, r *http.Request, status int, message string) error {
	traceID := middleware.GetReqID(r.Context())
	return JSON(w, status, ErrorBody{
		Success: false,
		Error:   message,
		TraceID: traceID,
	}, map[string]string{
		"Cache-Control": "no-store",
	})
}
