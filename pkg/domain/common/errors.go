// Package common holds domain building blocks shared by the exchange and
// staking packages: the error-kind taxonomy and the domain event contract.
package common

import "errors"

// Error kinds classify every failure the engine can return. Specific domain
// errors wrap exactly one kind so callers can branch with errors.Is on either
// the kind or the concrete error.
var (
	// ErrInvalidArgument covers missing or malformed fields, non-positive
	// amounts and identical from/to tokens.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFound is returned when a referenced account or stake does not exist.
	ErrNotFound = errors.New("not found")

	// ErrPermissionDenied covers eligibility below threshold, non-privileged
	// bulk processing and acting on records owned by someone else.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrFailedPrecondition covers disabled features, inactive or missing
	// token pairs and amounts outside configured bounds.
	ErrFailedPrecondition = errors.New("failed precondition")

	// ErrResourceExhausted covers insufficient balances and daily swap limits.
	ErrResourceExhausted = errors.New("resource exhausted")

	// ErrConflict is returned when acting on a record already in a terminal
	// state.
	ErrConflict = errors.New("conflict")

	// ErrInternal marks ledger transaction failures and unexpected computation
	// failures. Callers may retry; validation failures must not be retried.
	ErrInternal = errors.New("internal error")
)
