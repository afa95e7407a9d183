package client

import (
	"fmt"
	"net/http"
)

// HTTPError is returned when the backend answers with a non-2xx status.
type HTTPError struct {
	Status int
	Method string
	URL    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP error! status: %d", e.Status)
}

// NotFound reports whether the backend answered 404.
func (e *HTTPError) NotFound() bool {
	return e.Status == http.StatusNotFound
}

// TransportError is returned when no usable response was obtained: the request
// could not be built or sent, or the body could not be decoded.
type TransportError struct {
	Op  string
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Cause lets github.com/pkg/errors.Cause walk past the transport wrapper.
func (e *TransportError) Cause() error {
	return e.Err
}
