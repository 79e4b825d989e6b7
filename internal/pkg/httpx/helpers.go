package httpx

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gamma-omg/tenwords/internal/pkg/serr"
)

// ReadJSON decodes the request body into out. Numbers are kept as json.Number
// so callers can recover their literal text.
func ReadJSON(r *http.Request, out any) error {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	return dec.Decode(out)
}

func WriteJSON(w http.ResponseWriter, status int, resp any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	return enc.Encode(resp)
}

// HandleErr logs err and writes it as a JSON error body. Service errors keep
// their status, kind and fields; anything else becomes an opaque 500.
func HandleErr(w http.ResponseWriter, r *http.Request, err error) {
	var se *serr.ServiceError
	if !errors.As(err, &se) {
		se = serr.NewServiceError(err, http.StatusInternalServerError, "Internal Server Error")
	}

	attrs := []any{
		"error", err,
		"kind", se.Kind,
		"status", se.StatusCode,
		"method", r.Method,
		"url", r.URL.String(),
		"remote_addr", r.RemoteAddr,
	}
	for k, v := range se.Env {
		attrs = append(attrs, k, v)
	}

	if se.StatusCode >= http.StatusInternalServerError {
		attrs = append(attrs, "stack_trace", se.StackTrace)
		slog.Error("request error", attrs...)
	} else {
		slog.Warn("request rejected", attrs...)
	}

	body := make(map[string]any, len(se.Fields)+2)
	for k, v := range se.Fields {
		body[k] = v
	}
	body["kind"] = se.Kind
	body["error"] = se.Msg

	if err := WriteJSON(w, se.StatusCode, body); err != nil {
		slog.Error("write error response", "error", err)
	}
}
