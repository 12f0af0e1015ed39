package domain

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by speech recognition. Match them with errors.Is.
var (
	// ErrConfiguration means no usable credential could be resolved
	ErrConfiguration = errors.New("configuration error")
	// ErrEncoding means the audio buffer could not be normalized or encoded
	ErrEncoding = errors.New("encoding error")
	// ErrTransport means the recognition service could not be reached in time
	ErrTransport = errors.New("transport error")
	// ErrService means the recognition service answered with a failure
	ErrService = errors.New("service error")
	// ErrNotImplemented marks functionality that is permanently unsupported
	ErrNotImplemented = errors.New("not implemented")
)

// ServiceError carries the upstream status code and raw body of a failed call
type ServiceError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("recognition service error (status %d): %v: %s", e.StatusCode, e.Err, e.Body)
	}
	return fmt.Sprintf("recognition service error (status %d): %s", e.StatusCode, e.Body)
}

func (e *ServiceError) Is(target error) bool { return target == ErrService }

func (e *ServiceError) Unwrap() error { return e.Err }

// TransportError wraps a network failure or timeout reaching the service
type TransportError struct {
	Endpoint string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("recognition request to %s failed: %v", e.Endpoint, e.Err)
}

func (e *TransportError) Is(target error) bool { return target == ErrTransport }

func (e *TransportError) Unwrap() error { return e.Err }
