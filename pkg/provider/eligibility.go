// Package provider defines contracts for external collaborators the engine
// consumes but does not own.
package provider

import (
	"context"

	"github.com/google/uuid"
)

// EligibilityProvider looks up the externally computed numeric score gating
// access to swap and stake features. Failures must surface to the caller;
// implementations never silently substitute fallback scores.
type EligibilityProvider interface {
	Score(ctx context.Context, userID uuid.UUID) (float64, error)
}
