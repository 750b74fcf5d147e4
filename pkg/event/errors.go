package event

import "errors"

var (
	// ErrPublishFailed is reported when a transport rejects a batch of events.
	ErrPublishFailed = errors.New("event publish failed")

	// ErrInvalidEvent is returned for events without a type or aggregate id.
	ErrInvalidEvent = errors.New("invalid event")

	// ErrBusClosed is returned by MemoryBus after Close.
	ErrBusClosed = errors.New("event bus is closed")
)
