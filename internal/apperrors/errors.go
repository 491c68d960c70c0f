package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrForbidden indicates that the caller is not allowed to perform the action.
var ErrForbidden = errors.New("action not permitted")

// ErrInsufficientFunds indicates that a transfer would overdraw a source
// account while negative balances are disabled.
var ErrInsufficientFunds = errors.New("insufficient funds")

// ErrStorageFailure indicates that a storage-level operation failed mid-flight.
// Any atomic scope that was open has been rolled back in full.
var ErrStorageFailure = errors.New("storage failure")

// ErrInvariantViolation indicates an internal safety check failed (e.g. the
// balance deltas of a transfer not summing to zero). It must never be
// reachable in correct code; callers should treat it as fatal.
var ErrInvariantViolation = errors.New("invariant violation")
