// Package eventbus defines the contract for publishing and subscribing to
// domain events.
package eventbus

import (
	"context"

	"github.com/amirasaad/tokenx/pkg/domain/common"
)

// HandlerFunc handles one published event.
type HandlerFunc func(ctx context.Context, event common.Event)

// Bus is the contract for event publication and handler registration.
// Publication happens only after the corresponding ledger mutation committed.
type Bus interface {
	Publish(ctx context.Context, event common.Event) error
	Subscribe(eventType string, handler HandlerFunc)
}
