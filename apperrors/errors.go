package apperrors

import "errors"

// Sentinel error kinds surfaced by the core pipeline. Callers branch on
// these with errors.Is; the wrapped message carries the detail.
var (
	// ErrInvalidInput marks malformed or out-of-range arguments. Never
	// retried, it is a usage error.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound marks an operation referencing a nonexistent record where
	// the operation requires existence.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateEvent marks an idempotency conflict on an event_id. The
	// original row is untouched, so retrying with the same token is safe.
	ErrDuplicateEvent = errors.New("duplicate event")

	// ErrStorageUnavailable marks a persistence operation that could not
	// complete within its bound. The only kind a caller may retry, and only
	// for idempotent or read-only operations.
	ErrStorageUnavailable = errors.New("storage unavailable")
)
