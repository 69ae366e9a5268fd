package exchange

import (
	"fmt"

	"github.com/amirasaad/tokenx/pkg/domain/common"
)

// Swap domain errors. Each wraps exactly one error kind from domain/common so
// callers can match either the specific error or its kind.
var (
	// ErrSameToken is returned when from and to tokens are identical.
	ErrSameToken = fmt.Errorf("%w: from and to tokens are identical", common.ErrInvalidArgument)

	// ErrSwapsDisabled is returned when the global swap feature flag is off.
	ErrSwapsDisabled = fmt.Errorf("%w: swaps are disabled", common.ErrFailedPrecondition)

	// ErrPairUnavailable is returned when no active pair exists for the
	// requested direction.
	ErrPairUnavailable = fmt.Errorf("%w: token pair unavailable", common.ErrFailedPrecondition)

	// ErrAmountOutOfBounds is returned when the amount falls outside the
	// pair's min/max bounds.
	ErrAmountOutOfBounds = fmt.Errorf("%w: amount outside pair bounds", common.ErrFailedPrecondition)

	// ErrEligibilityTooLow is returned when the caller's score is below the
	// swap threshold.
	ErrEligibilityTooLow = fmt.Errorf("%w: eligibility score below threshold", common.ErrPermissionDenied)

	// ErrDailyUserLimit is returned when the caller exhausted the per-account
	// daily swap allowance.
	ErrDailyUserLimit = fmt.Errorf("%w: daily swap limit reached for account", common.ErrResourceExhausted)

	// ErrDailyGlobalLimit is returned when the system-wide daily swap
	// allowance is exhausted.
	ErrDailyGlobalLimit = fmt.Errorf("%w: global daily swap limit reached", common.ErrResourceExhausted)

	// ErrInsufficientBalance is returned when the source token balance cannot
	// cover the swap amount.
	ErrInsufficientBalance = fmt.Errorf("%w: insufficient balance", common.ErrResourceExhausted)

	// ErrSwapNotFound is returned when the referenced swap record does not
	// exist.
	ErrSwapNotFound = fmt.Errorf("%w: swap transaction not found", common.ErrNotFound)
)
