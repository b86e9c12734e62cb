package domain

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNetwork is returned when a request never reached the server or its response was lost.
	ErrNetwork = errors.New("network failure")
	// ErrNotFound is returned when the API answers 404.
	ErrNotFound = errors.New("not found")
	// ErrRequestRejected is returned for 4xx answers other than 401 and 404.
	ErrRequestRejected = errors.New("request rejected")
	// ErrServerFailure is returned for 5xx answers and undecodable bodies.
	ErrServerFailure = errors.New("server failure")
)

// NetworkFailureMessage is shown to users when the API cannot be reached.
const NetworkFailureMessage = "Unable to reach the server. Please check your connection and try again."

// LoginRequiredMessage is shown when an authenticated call is attempted without a session.
const LoginRequiredMessage = "Please log in to continue."

// APIError is a non-2xx answer of the REST API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: %d %s", e.Status, http.StatusText(e.Status))
	}

	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

// Unwrap maps the status onto one of the sentinel errors.
func (e *APIError) Unwrap() error {
	switch {
	case e.Status == http.StatusUnauthorized:
		return ErrUnauthorized
	case e.Status == http.StatusNotFound:
		return ErrNotFound
	case e.Status >= http.StatusInternalServerError:
		return ErrServerFailure
	default:
		return ErrRequestRejected
	}
}
