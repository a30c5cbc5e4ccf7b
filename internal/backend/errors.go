package backend

import (
	"errors"
	"fmt"
)

// Error codes surfaced by the election backend, plus the two synthetic
// codes the client assigns when the backend offers none.
const (
	CodeInvalidToken    = "INVALID_TOKEN"
	CodeTokenMismatch   = "TOKEN_MISMATCH"
	CodeNotStationVoter = "NOT_STATION_VOTER"
	CodeAlreadyVoted    = "ALREADY_VOTED"
	CodeCheckinExists   = "CHECKIN_EXISTS"
	CodeNotFound        = "STATION_NOT_FOUND"
	CodeUnavailable     = "UNAVAILABLE"
)

// APIError is a classified backend failure. Every error the client
// returns wraps one of these; callers branch on Code, never on the HTTP
// status.
type APIError struct {
	Code       string
	Message    string
	HTTPStatus int
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend error %s (http %d)", e.Code, e.HTTPStatus)
	}
	return fmt.Sprintf("backend error %s: %s", e.Code, e.Message)
}

// Retryable reports whether the failure is a connectivity-class error
// that a later attempt may succeed against.
func (e *APIError) Retryable() bool {
	return e.Code == CodeUnavailable
}

// ErrorCode extracts the classified code from err, or CodeUnavailable for
// unclassified (transport-level) failures.
func ErrorCode(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return CodeUnavailable
}

// IsNotFound reports whether err means the station is not provisioned on
// the backend.
func IsNotFound(err error) bool {
	return ErrorCode(err) == CodeNotFound
}
