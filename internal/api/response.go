package api

import (
	"bytes"
	"encoding/json"
	"net/http"
)

// errorResponse is the standard error response format.
type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON encodes v as JSON and writes it to the response.
// It buffers the encoding to detect errors before writing headers; an
// encoding failure becomes a plain 500 and is logged with the request id.
func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		s.logger.ErrorContext(r.Context(), "json encode failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", RequestID(r.Context()),
			"error", err,
		)
		writeErrorFallback(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}
	if err := writeBody(w, status, buf.Bytes()); err != nil {
		s.logger.WarnContext(r.Context(), "write response failed",
			"request_id", RequestID(r.Context()),
			"error", err,
		)
	}
}

// writeBody writes an already encoded JSON body.
func writeBody(w http.ResponseWriter, status int, body []byte) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err := w.Write(body)
	return err
}

// writeError writes a JSON error response with consistent format.
// For 5xx errors, the underlying error is logged with the request id and
// the client only sees the status text.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, public string, err error) {
	if status >= 500 || public == "" {
		public = http.StatusText(status)
	}
	if status >= 500 && err != nil {
		s.logger.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", RequestID(r.Context()),
			"error", err,
		)
	}
	s.writeJSON(w, r, status, errorResponse{Error: public})
}

// writeErrorFallback writes a plain text error when JSON encoding fails.
// This is a last-resort fallback to avoid infinite recursion.
func writeErrorFallback(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	w.Write([]byte(message))
}
