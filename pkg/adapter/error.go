package adapter

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// AdapterError is a provider call that failed with an HTTP status.
type AdapterError struct {
	Provider string
	Status   int
	Err      error
}

func (e *AdapterError) Error() string {
	switch {
	case e == nil:
		return "adapter error"
	case e.Err == nil:
		return fmt.Sprintf("%s API error (status=%d)", e.Provider, e.Status)
	default:
		return fmt.Sprintf("%s API error (status=%d): %v", e.Provider, e.Status, e.Err)
	}
}

func (e *AdapterError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Retryable reports whether the status means the provider may answer a later
// call: rate limiting, a request timeout or a server fault.
func (e *AdapterError) Retryable() bool {
	if e == nil {
		return false
	}
	switch e.Status {
	case http.StatusTooManyRequests, http.StatusRequestTimeout:
		return true
	}
	return e.Status >= http.StatusInternalServerError && e.Status < 600
}

// IsTransient reports whether a failed call may succeed on a later request.
// Cancellation by the caller is never transient.
func IsTransient(err error) bool {
	var adapterErr *AdapterError
	var netErr net.Error
	switch {
	case err == nil, errors.Is(err, context.Canceled):
		return false
	case errors.Is(err, context.DeadlineExceeded):
		return true
	case errors.As(err, &adapterErr):
		return adapterErr.Retryable()
	case errors.As(err, &netErr):
		return netErr.Timeout()
	}
	return false
}

func newStatusError(provider string, status int, err error) *AdapterError {
	return &AdapterError{Provider: provider, Status: status, Err: err}
}
