package api

import (
	"errors"
	"fmt"
)

// ErrSessionExpired is returned when a request was rejected with 401 and the
// access token could not be refreshed. The token store is empty afterwards.
var ErrSessionExpired = errors.New("session expired")

var errNoRefreshToken = errors.New("no refresh token stored")

// Error is a non-2xx API response. Detail holds the server's "detail" or
// "error" field when the body carried one.
type Error struct {
	Status int
	Detail string
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("HTTP error! status: %d", e.Status)
}

// IsStatus reports whether err is an API error with the given HTTP status.
func IsStatus(err error, status int) bool {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status == status
	}
	return false
}
