package services

import "errors"

// ErrNotFound is returned when a referenced record does not exist.
// Handlers translate it to a 404.
var ErrNotFound = errors.New("record not found")

// ConflictError reports a business-rule conflict (voucher already sold,
// file already populated, payment already processed, duplicate category).
// No mutation has been performed when it is returned.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// ValidationError reports a rejected input before any persistence began
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
