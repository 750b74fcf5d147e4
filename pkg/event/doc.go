// Package event defines domain events and the publisher that delivers them
// only after the unit of work that produced them has committed.
//
// Handlers capture the events an aggregate recorded before saving it, then hand
// them to a Deferred publisher:
//
//	events := order.PendingEvents()
//	saved, err := repo.Save(ctx, scope, order)
//	if err != nil {
//		return err
//	}
//	return deferred.Publish(ctx, events...)
//
// Inside a unit of work the events are published by an after-commit hook; a
// rollback drops them. Outside a unit of work they are published at once.
// Publication failures are logged and handed to a FailureHandler, never returned
// to the caller, because the state change they describe is already durable.
//
// The transport is any Publisher: MemoryBus for tests and single-process setups,
// kafka.Publisher or rabbitmq.Publisher in production.
package event
