package uow_test

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tenantkit/pkg/schema"
	"github.com/dmitrymomot/tenantkit/pkg/tenant"
	"github.com/dmitrymomot/tenantkit/pkg/uow"
)

func begin(t *testing.T) (pgxmock.PgxPoolIface, *uow.UnitOfWork) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	mock.ExpectBegin()
	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	scope, err := tenant.NewScope("acme")
	require.NoError(t, err)
	return mock, uow.New(scope, "tenant_acme_schema", tx)
}

func TestUnitOfWork_Commit(t *testing.T) {
	t.Parallel()

	t.Run("hooks run in order after commit", func(t *testing.T) {
		t.Parallel()

		mock, u := begin(t)
		mock.ExpectCommit()

		var order []int
		for i := range 3 {
			require.NoError(t, u.AfterCommit(func(context.Context) { order = append(order, i) }))
		}
		assert.Empty(t, order)

		require.NoError(t, u.Commit(context.Background()))
		assert.Equal(t, []int{0, 1, 2}, order)
		require.NoError(t, mock.ExpectationsWereMet())

		assert.ErrorIs(t, u.AfterCommit(func(context.Context) {}), uow.ErrClosed)
		assert.ErrorIs(t, u.Commit(context.Background()), uow.ErrClosed)
	})

	t.Run("hook context survives caller cancellation", func(t *testing.T) {
		t.Parallel()

		mock, u := begin(t)
		mock.ExpectCommit()

		ctx, cancel := context.WithCancel(context.Background())
		var hookErr error
		require.NoError(t, u.AfterCommit(func(ctx context.Context) {
			cancel()
			hookErr = ctx.Err()
		}))
		require.NoError(t, u.Commit(ctx))
		assert.NoError(t, hookErr)
	})

	t.Run("failed commit discards hooks", func(t *testing.T) {
		t.Parallel()

		mock, u := begin(t)
		boom := errors.New("connection lost")
		mock.ExpectCommit().WillReturnError(boom)

		fired := false
		require.NoError(t, u.AfterCommit(func(context.Context) { fired = true }))

		err := u.Commit(context.Background())
		require.ErrorIs(t, err, uow.ErrCommitFailed)
		require.ErrorIs(t, err, boom)
		assert.False(t, fired)
		assert.True(t, u.Done())
	})

	t.Run("cancelled context rolls back", func(t *testing.T) {
		t.Parallel()

		mock, u := begin(t)
		mock.ExpectRollback()

		fired := false
		require.NoError(t, u.AfterCommit(func(context.Context) { fired = true }))

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := u.Commit(ctx)
		require.ErrorIs(t, err, context.Canceled)
		assert.False(t, fired)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUnitOfWork_Rollback(t *testing.T) {
	t.Parallel()

	mock, u := begin(t)
	mock.ExpectRollback()

	fired := false
	require.NoError(t, u.AfterCommit(func(context.Context) { fired = true }))
	require.NoError(t, u.Rollback(context.Background()))
	require.NoError(t, u.Rollback(context.Background()))
	assert.False(t, fired)
	assert.ErrorIs(t, u.AfterCommit(func(context.Context) {}), uow.ErrClosed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestContext(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	_, ok := uow.FromContext(ctx)
	assert.False(t, ok)
	assert.False(t, uow.Active(ctx))

	mock, u := begin(t)
	mock.ExpectRollback()

	ctx = uow.WithContext(ctx, u)
	got, ok := uow.FromContext(ctx)
	require.True(t, ok)
	assert.Same(t, u, got)
	assert.Equal(t, schema.Name("tenant_acme_schema"), got.Schema())
	assert.Equal(t, tenant.ID("acme"), got.Scope().TenantID())
	assert.NotNil(t, got.Tx())

	require.NoError(t, u.Rollback(ctx))
	assert.False(t, uow.Active(ctx), "completed unit of work is not active")
}
