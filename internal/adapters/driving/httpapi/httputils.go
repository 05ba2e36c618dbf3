package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/custodia-labs/gateway-sync/internal/core/domain"
)

// maxBodyBytes bounds notification payloads.
const maxBodyBytes = 1 << 20

// apiFunc is the signature of every route handler. A returned error is
// written as a JSON error body.
type apiFunc func(ctx context.Context, w http.ResponseWriter, r *http.Request, vars map[string]string) error

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes v as JSON with the given status code.
func writeJSON(w http.ResponseWriter, code int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// statusFromError maps domain errors onto HTTP status codes.
func statusFromError(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidNotification), errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// readProperties decodes a flat JSON object of strings. An empty body is
// allowed only when allowEmpty is set.
func readProperties(r *http.Request, allowEmpty bool) (map[string]string, error) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", domain.ErrInvalidNotification, err)
	}
	if len(data) > maxBodyBytes {
		return nil, fmt.Errorf("%w: body exceeds %d bytes", domain.ErrInvalidNotification, maxBodyBytes)
	}
	if strings.TrimSpace(string(data)) == "" {
		if allowEmpty {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("%w: empty body", domain.ErrInvalidNotification)
	}

	var props map[string]string
	if err := json.Unmarshal(data, &props); err != nil {
		return nil, fmt.Errorf("%w: body must be a JSON object of strings: %w", domain.ErrInvalidNotification, err)
	}
	if props == nil {
		props = map[string]string{}
	}
	return props, nil
}
