package api

import (
	"errors"
	"fmt"
	"net/http"

	"backoffice/pkg/models"
)

// ValidationError blocks a submission locally; no request is sent.
type ValidationError = models.ValidationError

// ErrNoCredentials is returned when an endpoint needs the session user or token and none is stored.
var ErrNoCredentials = errors.New("user id or token not found")

// NetworkError is a transport-level failure; the request may be retried by the user.
type NetworkError struct {
	Method string
	URL    string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: network error: %v", e.Method, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// FetchError is a non-success status reported by the server.
type FetchError struct {
	Status  int
	Message string
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("request failed with status %d: %s", e.Status, e.Message)
}

// NotFoundError is a 404 for a single record.
type NotFoundError struct {
	Entity string
	ID     string
	Err    *FetchError
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	if e.Err == nil {
		return nil
	}
	return e.Err
}

// DecodeError means the server answered with a body that does not fit the entity schema.
type DecodeError struct {
	Entity string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("unexpected %s response: %v", e.Entity, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// fallbackMessage is used when the server sends no message of its own.
func fallbackMessage(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "bad request"
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusNotFound:
		return "not found"
	case http.StatusConflict:
		return "concurrency conflict"
	}
	if text := http.StatusText(status); text != "" {
		return text
	}
	return "request failed"
}

// Message extracts the text shown to the operator for err.
func Message(err error) string {
	var (
		verr  *ValidationError
		nf    *NotFoundError
		fetch *FetchError
		netw  *NetworkError
	)
	switch {
	case errors.As(err, &verr):
		return verr.Error()
	case errors.As(err, &nf):
		if nf.Err != nil && nf.Err.Message != "" && nf.Err.Message != fallbackMessage(http.StatusNotFound) {
			return nf.Err.Message
		}
		return nf.Error()
	case errors.As(err, &fetch):
		return fetch.Message
	case errors.As(err, &netw):
		return "network error, please retry"
	case err == nil:
		return ""
	}
	return err.Error()
}
