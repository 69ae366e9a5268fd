package common

// Event is the marker interface for all domain events published on the bus.
type Event interface {
	// Type returns a stable event type name used for handler registration.
	Type() string
}
