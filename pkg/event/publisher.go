package event

import "context"

// Publisher delivers events to a transport. Events of one call are delivered in order.
type Publisher interface {
	Publish(ctx context.Context, events ...Event) error
}

// PublisherFunc is an adapter to allow the use of ordinary functions as Publishers.
type PublisherFunc func(ctx context.Context, events ...Event) error

// Publish calls f.
func (f PublisherFunc) Publish(ctx context.Context, events ...Event) error {
	return f(ctx, events...)
}

// FailureHandler receives events that could not be published after commit.
// It is the hand-off to an out-of-band redelivery mechanism.
type FailureHandler interface {
	HandleFailure(ctx context.Context, events []Event, cause error) error
}

// FailureHandlerFunc is an adapter to allow the use of ordinary functions as FailureHandlers.
type FailureHandlerFunc func(ctx context.Context, events []Event, cause error) error

// HandleFailure calls f.
func (f FailureHandlerFunc) HandleFailure(ctx context.Context, events []Event, cause error) error {
	return f(ctx, events, cause)
}
