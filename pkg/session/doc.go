// Package session is the tenant-scoped gateway every read and write goes through.
//
// For each call the gateway takes the tenant from the explicit scope (or the
// context), checks that a written record belongs to that tenant, resolves and
// validates the tenant's schema, makes sure the schema exists, and binds it to a
// fresh transaction with a transaction-local search_path. The binding ends with
// the transaction, so it never leaks into an unrelated unit of work on the same
// pooled connection.
//
//	gw := session.New(pool, provisioner, session.WithLogger(log))
//
//	err := gw.Write(ctx, scope, order.TenantID, func(ctx context.Context, u *uow.UnitOfWork) error {
//		_, err := u.Tx().Exec(ctx, "UPDATE orders SET ...")
//		return err
//	})
//
// Calls made inside fn with the same scope join the running unit of work instead
// of opening a new transaction. A call for another tenant fails with
// tenant.ErrTenantMismatch.
//
// Hooks registered with uow.UnitOfWork.AfterCommit run after COMMIT returns and
// never after a rollback or a cancelled context.
package session
