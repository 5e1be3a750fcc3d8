package domain

import "errors"

// Validation and lifecycle failures surface as one of these kinds so the
// HTTP layer can map each to a precise status code. Booking conflicts are
// correctness signals, not transient faults: nothing here is retried.
var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidRequest   = errors.New("invalid request")
	ErrCapacityExceeded = errors.New("guest count exceeds listing capacity")
	ErrRoleViolation    = errors.New("role not allowed to book")
	ErrUnavailable      = errors.New("listing is not available for the requested dates")
	ErrStateConflict    = errors.New("reservation state does not allow this transition")
	ErrPermissionDenied = errors.New("permission denied")
	ErrLateCancellation = errors.New("cancellation window has closed")
	ErrAlreadyConfirmed = errors.New("payment already confirmed")
)
