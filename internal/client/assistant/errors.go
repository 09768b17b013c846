package assistant

import (
	"errors"
	"fmt"
)

// ApplicationError means the endpoint answered but gave nothing usable for
// the transcript, either an explicit "error" field or a missing "response".
type ApplicationError struct {
	Status  int
	Message string
}

func (e *ApplicationError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("assistant returned no response (status %d)", e.Status)
	}
	return fmt.Sprintf("assistant error (status %d): %s", e.Status, e.Message)
}

// TransportError covers everything that kept a usable body from arriving:
// network failures, timeouts and unparseable payloads.
type TransportError struct {
	Op     string
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("assistant %s failed (status %d): %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("assistant %s failed: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsApplication reports whether err is an application-level failure.
func IsApplication(err error) bool {
	var appErr *ApplicationError
	return errors.As(err, &appErr)
}

// IsTransport reports whether err is a transport failure.
func IsTransport(err error) bool {
	var transportErr *TransportError
	return errors.As(err, &transportErr)
}
