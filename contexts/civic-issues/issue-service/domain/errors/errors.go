package errors

import "errors"

var (
	ErrInvalidRequest         = errors.New("invalid request")
	ErrIssueNotFound          = errors.New("issue not found")
	ErrUnknownCategory        = errors.New("unknown category")
	ErrUnknownStatus          = errors.New("unknown status")
	ErrInvalidTransition      = errors.New("status transition not allowed")
	ErrIssueLocked            = errors.New("issue is past the reported stage")
	ErrInvalidListFilter      = errors.New("invalid list filter")
	ErrIdempotencyKeyRequired = errors.New("idempotency key required")
	ErrIdempotencyConflict    = errors.New("idempotency key conflict")
)
