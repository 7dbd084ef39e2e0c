package errors

import (
	"errors"
	"fmt"
)

type ResourceNotFoundError struct {
	resource string
	id       string
}

func (e *ResourceNotFoundError) Error() string {
	if e.id == "" {
		return fmt.Sprintf("%s not found", e.resource)
	}
	return fmt.Sprintf("%s %q not found", e.resource, e.id)
}

func NewResourceNotFoundError(resource, id string) error {
	return &ResourceNotFoundError{resource: resource, id: id}
}

func NewRequestNotFoundError(id string) error {
	return NewResourceNotFoundError("request", id)
}

func IsResourceNotFoundError(err error) bool {
	var e *ResourceNotFoundError
	return errors.As(err, &e)
}

type UnauthorizedError struct {
	reason string
}

func (e *UnauthorizedError) Error() string {
	return fmt.Sprintf("unauthorized: %s", e.reason)
}

func NewUnauthorizedError(reason string) error {
	return &UnauthorizedError{reason: reason}
}

func IsUnauthorizedError(err error) bool {
	var e *UnauthorizedError
	return errors.As(err, &e)
}

// CaptureError is returned when the camera could not deliver a frame.
type CaptureError struct {
	device string
	err    error
}

func (e *CaptureError) Error() string {
	return fmt.Sprintf("capture from %s failed: %v", e.device, e.err)
}

func (e *CaptureError) Unwrap() error { return e.err }

func NewCaptureError(device string, err error) error {
	return &CaptureError{device: device, err: err}
}

func IsCaptureError(err error) bool {
	var e *CaptureError
	return errors.As(err, &e)
}
