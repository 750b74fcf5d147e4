package tenant_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tenantkit/pkg/tenant"
)

func TestParseID(t *testing.T) {
	t.Parallel()

	t.Run("accepts identifier grammar", func(t *testing.T) {
		t.Parallel()

		for _, raw := range []string{"acme", "tenant-123", "tenant_123", "A1", "a1b2c3d4-e5f6-7890-1234-567890abcdef"} {
			id, err := tenant.ParseID(raw)
			require.NoError(t, err, raw)
			assert.Equal(t, raw, id.String())
		}
	})

	t.Run("every accepted id has a schema name", func(t *testing.T) {
		t.Parallel()

		for _, raw := range []string{
			"a123456789012345678901234567890123456789012345678",
			"a-b-c-d-e-f-g-h-i-j-k-l-m-n-o-p-q",
			"________________________",
		} {
			id, err := tenant.ParseID(raw)
			require.NoError(t, err, raw)
			assert.LessOrEqual(t, len("tenant_")+tenant.EscapedLen(id.String())+len("_schema"), 63, raw)
		}
	})

	t.Run("rejects everything else", func(t *testing.T) {
		t.Parallel()

		invalid := []string{
			"",
			"tenant.com",
			"tenant space",
			"tenant@corp",
			"tenant_x; DROP TABLE t;--",
			"public' OR '1'='1",
			"ünicode",
			"a123456789012345678901234567890123456789012345678901",
			"------------------------------",
			"a_b_c_d_e_f_g_h_i_j_k_l_m_n_o_p_q_r_s_t_u_v_w_x",
		}
		for _, raw := range invalid {
			_, err := tenant.ParseID(raw)
			assert.ErrorIs(t, err, tenant.ErrInvalidIdentifier, raw)
		}
	})
}

func TestScope(t *testing.T) {
	t.Parallel()

	t.Run("zero scope requires tenant", func(t *testing.T) {
		t.Parallel()

		var scope tenant.Scope
		assert.True(t, scope.IsZero())
		_, err := scope.Require()
		assert.ErrorIs(t, err, tenant.ErrMissingTenantContext)
		assert.False(t, scope.Owns("acme"))
	})

	t.Run("owns only its tenant", func(t *testing.T) {
		t.Parallel()

		scope, err := tenant.NewScope("acme")
		require.NoError(t, err)
		assert.True(t, scope.Owns("acme"))
		assert.False(t, scope.Owns("globex"))
	})

	t.Run("rejects invalid id", func(t *testing.T) {
		t.Parallel()

		_, err := tenant.NewScope("bad id")
		assert.ErrorIs(t, err, tenant.ErrInvalidIdentifier)
	})
}

func TestScopeFromContext(t *testing.T) {
	t.Parallel()

	t.Run("returns false for empty context", func(t *testing.T) {
		t.Parallel()

		_, ok := tenant.ScopeFromContext(context.Background())
		assert.False(t, ok)

		_, err := tenant.RequireScope(context.Background())
		assert.ErrorIs(t, err, tenant.ErrMissingTenantContext)
	})

	t.Run("returns false for zero scope", func(t *testing.T) {
		t.Parallel()

		ctx := tenant.WithScope(context.Background(), tenant.Scope{})
		_, ok := tenant.ScopeFromContext(ctx)
		assert.False(t, ok)
	})

	t.Run("retrieves stored scope", func(t *testing.T) {
		t.Parallel()

		scope, err := tenant.NewScope("acme")
		require.NoError(t, err)
		ctx := tenant.WithScope(context.Background(), scope)

		got, err := tenant.RequireScope(ctx)
		require.NoError(t, err)
		assert.Equal(t, scope, got)

		id, ok := tenant.IDFromContext(ctx)
		require.True(t, ok)
		assert.Equal(t, tenant.ID("acme"), id)
	})
}

func TestRun(t *testing.T) {
	t.Parallel()

	t.Run("sets scope for the operation only", func(t *testing.T) {
		t.Parallel()

		parent := context.Background()
		var seen tenant.Scope
		err := tenant.Run(parent, "acme", func(ctx context.Context, scope tenant.Scope) error {
			fromCtx, err := tenant.RequireScope(ctx)
			require.NoError(t, err)
			assert.Equal(t, scope, fromCtx)
			seen = scope
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, tenant.ID("acme"), seen.TenantID())

		_, ok := tenant.ScopeFromContext(parent)
		assert.False(t, ok, "scope must not outlive the operation")
	})

	t.Run("rejects invalid identifier before running", func(t *testing.T) {
		t.Parallel()

		called := false
		err := tenant.Run(context.Background(), "x'; DROP SCHEMA public;--", func(context.Context, tenant.Scope) error {
			called = true
			return nil
		})
		assert.ErrorIs(t, err, tenant.ErrInvalidIdentifier)
		assert.False(t, called)
	})

	t.Run("nested run for another tenant fails", func(t *testing.T) {
		t.Parallel()

		err := tenant.Run(context.Background(), "acme", func(ctx context.Context, _ tenant.Scope) error {
			return tenant.Run(ctx, "globex", func(context.Context, tenant.Scope) error {
				t.Fatal("nested operation must not run")
				return nil
			})
		})
		assert.ErrorIs(t, err, tenant.ErrTenantMismatch)
	})

	t.Run("nested run for same tenant reuses scope", func(t *testing.T) {
		t.Parallel()

		err := tenant.Run(context.Background(), "acme", func(ctx context.Context, outer tenant.Scope) error {
			return tenant.Run(ctx, "acme", func(_ context.Context, inner tenant.Scope) error {
				assert.Equal(t, outer, inner)
				return nil
			})
		})
		require.NoError(t, err)
	})

	t.Run("propagates operation error", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("boom")
		err := tenant.Run(context.Background(), "acme", func(context.Context, tenant.Scope) error { return boom })
		assert.ErrorIs(t, err, boom)
	})
}

func TestEffective(t *testing.T) {
	t.Parallel()

	acme := mustScope(t, "acme")
	globex := mustScope(t, "globex")

	_, err := tenant.Effective(context.Background(), tenant.Scope{})
	assert.ErrorIs(t, err, tenant.ErrMissingTenantContext)

	got, err := tenant.Effective(context.Background(), acme)
	require.NoError(t, err)
	assert.Equal(t, acme, got)

	ctx := tenant.WithScope(context.Background(), acme)
	got, err = tenant.Effective(ctx, tenant.Scope{})
	require.NoError(t, err)
	assert.Equal(t, acme, got)

	got, err = tenant.Effective(ctx, acme)
	require.NoError(t, err)
	assert.Equal(t, acme, got)

	_, err = tenant.Effective(ctx, globex)
	assert.ErrorIs(t, err, tenant.ErrTenantMismatch)
}

func TestLoggerExtractor(t *testing.T) {
	t.Parallel()

	extract := tenant.LoggerExtractor()

	_, ok := extract(context.Background())
	assert.False(t, ok)

	ctx := tenant.WithScope(context.Background(), mustScope(t, "acme"))
	attr, ok := extract(ctx)
	require.True(t, ok)
	assert.Equal(t, "tenant_id", attr.Key)
	assert.Equal(t, "acme", attr.Value.String())
}

func mustScope(t *testing.T, id string) tenant.Scope {
	t.Helper()
	scope, err := tenant.NewScope(tenant.ID(id))
	require.NoError(t, err)
	return scope
}
