package staking

import (
	"fmt"

	"github.com/amirasaad/tokenx/pkg/domain/common"
)

// Staking domain errors, each wrapping one error kind from domain/common.
var (
	// ErrStakingDisabled is returned when the staking feature flag is off.
	ErrStakingDisabled = fmt.Errorf("%w: staking is disabled", common.ErrFailedPrecondition)

	// ErrNoMatchingOption is returned when the requested token/yield/lock
	// triple matches no configured staking option.
	ErrNoMatchingOption = fmt.Errorf("%w: no matching staking option", common.ErrInvalidArgument)

	// ErrAmountOutOfBounds is returned when the amount falls outside the
	// selected option's min/max bounds.
	ErrAmountOutOfBounds = fmt.Errorf("%w: amount outside option bounds", common.ErrFailedPrecondition)

	// ErrInsufficientBalance is returned when the stake-token balance cannot
	// cover the requested principal.
	ErrInsufficientBalance = fmt.Errorf("%w: insufficient balance", common.ErrResourceExhausted)

	// ErrStakeNotFound is returned when the referenced stake does not exist.
	ErrStakeNotFound = fmt.Errorf("%w: stake not found", common.ErrNotFound)

	// ErrStakeNotOwned is returned when the caller does not own the stake.
	ErrStakeNotOwned = fmt.Errorf("%w: stake not owned by caller", common.ErrPermissionDenied)

	// ErrStakeAlreadyWithdrawn is returned when acting on a withdrawn stake.
	ErrStakeAlreadyWithdrawn = fmt.Errorf("%w: stake already withdrawn", common.ErrConflict)

	// ErrNotOperator is returned when bulk yield processing is requested by a
	// non-privileged caller.
	ErrNotOperator = fmt.Errorf("%w: operator privileges required", common.ErrPermissionDenied)
)
