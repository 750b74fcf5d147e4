// Package uow models a unit of work: one database transaction bound to one
// tenant scope and one schema, plus callbacks that must run only after the
// transaction durably commits.
//
// The session gateway opens and completes units of work; everything running
// inside it can reach the active one through the context:
//
//	if u, ok := uow.FromContext(ctx); ok {
//		_ = u.AfterCommit(func(ctx context.Context) {
//			// runs once, after COMMIT succeeded
//		})
//	}
//
// Hooks run in registration order. A rollback discards them.
package uow
