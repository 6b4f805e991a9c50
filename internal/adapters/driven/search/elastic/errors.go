package elastic

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/custodia-labs/quaestor/internal/core/domain"
)

// maxErrorBody bounds how much of an error response is read for the
// diagnostic message.
const maxErrorBody = 64 * 1024

// StatusError is a non-2xx response from the backend, carrying the
// structured error type and reason when the body provides them.
//
// StatusError classifies itself against the domain sentinels so that
// callers key retry and fallback policies on errors.Is rather than on
// message contents.
type StatusError struct {
	// Status is the HTTP status code.
	Status int

	// ErrType is the backend's error type (e.g. "version_conflict_engine_exception").
	ErrType string

	// Reason is the backend's human-readable explanation.
	Reason string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	if e.ErrType != "" {
		return fmt.Sprintf("elasticsearch error (status %d, %s): %s", e.Status, e.ErrType, e.Reason)
	}
	return fmt.Sprintf("elasticsearch error (status %d): %s", e.Status, e.Reason)
}

// Is maps status codes onto the domain error taxonomy.
func (e *StatusError) Is(target error) bool {
	switch target {
	case domain.ErrWriteConflict:
		return e.Status == http.StatusConflict
	case domain.ErrNotFound:
		return e.Status == http.StatusNotFound
	default:
		return false
	}
}

// newStatusError builds a StatusError from a non-2xx response,
// extracting the backend's error envelope when present. HEAD responses
// have no body; the HTTP status line stands in as the reason.
func newStatusError(resp *http.Response) *StatusError {
	se := &StatusError{
		Status: resp.StatusCode,
		Reason: resp.Status,
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(body) == 0 {
		return se
	}

	var wire struct {
		Error struct {
			Type   string `json:"type"`
			Reason string `json:"reason"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &wire); err == nil {
		if wire.Error.Type != "" {
			se.ErrType = wire.Error.Type
		}
		if wire.Error.Reason != "" {
			se.Reason = wire.Error.Reason
		}
	}
	return se
}
