package errors

import "errors"

var (
	ErrInvalidRequest         = errors.New("invalid notification request")
	ErrNotificationNotFound   = errors.New("notification not found")
	ErrIdempotencyKeyRequired = errors.New("idempotency key required")
	ErrIdempotencyConflict    = errors.New("idempotency key reused with a different payload")
)
