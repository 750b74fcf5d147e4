package tenant_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tenantkit/pkg/tenant"
)

func TestSubdomainResolver(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		suffix string
		host   string
		want   string
	}{
		{"subdomain with suffix", ".app.com", "acme.app.com", "acme"},
		{"strips port", ".app.com", "acme.app.com:8080", "acme"},
		{"skips www", "", "www.acme.app.com", "acme"},
		{"base domain is not a tenant", ".app.com", "app.com", ""},
		{"no suffix", "", "globex.example.org", "globex"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Host = tt.host

			id, err := tenant.NewSubdomainResolver(tt.suffix).Resolve(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, id)
		})
	}
}

func TestHeaderResolver(t *testing.T) {
	t.Parallel()

	t.Run("uses default header when empty", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Tenant-ID", " tenant123 ")

		id, err := tenant.NewHeaderResolver("").Resolve(req)
		require.NoError(t, err)
		assert.Equal(t, "tenant123", id)
	})

	t.Run("returns empty for missing header", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		id, err := tenant.NewHeaderResolver("X-Company-ID").Resolve(req)
		require.NoError(t, err)
		assert.Empty(t, id)
	})
}

func TestPathResolver(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/tenants/acme/locations/", nil)

	id, err := tenant.NewPathResolver(2).Resolve(req)
	require.NoError(t, err)
	assert.Equal(t, "acme", id)

	id, err = tenant.NewPathResolver(9).Resolve(req)
	require.NoError(t, err)
	assert.Empty(t, id)

	_, err = tenant.NewPathResolver(0).Resolve(req)
	assert.Error(t, err)
}

func TestURLParamResolver(t *testing.T) {
	t.Parallel()

	t.Run("reads chi route parameter", func(t *testing.T) {
		t.Parallel()

		var got string
		r := chi.NewRouter()
		r.Get("/t/{tenant}/locations", func(w http.ResponseWriter, req *http.Request) {
			var err error
			got, err = tenant.NewURLParamResolver("").Resolve(req)
			require.NoError(t, err)
		})

		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/t/acme/locations", nil))
		assert.Equal(t, "acme", got)
	})

	t.Run("empty outside chi", func(t *testing.T) {
		t.Parallel()

		id, err := tenant.NewURLParamResolver("tenant").Resolve(httptest.NewRequest(http.MethodGet, "/", nil))
		require.NoError(t, err)
		assert.Empty(t, id)
	})
}

func TestCompositeResolver(t *testing.T) {
	t.Parallel()

	t.Run("falls back to next resolver", func(t *testing.T) {
		t.Parallel()

		composite := tenant.NewCompositeResolver(tenant.NewHeaderResolver("X-Tenant-ID"), tenant.NewPathResolver(2))
		req := httptest.NewRequest(http.MethodGet, "/api/path-tenant/users", nil)

		id, err := composite.Resolve(req)
		require.NoError(t, err)
		assert.Equal(t, "path-tenant", id)
	})

	t.Run("aggregates errors from resolvers", func(t *testing.T) {
		t.Parallel()

		composite := tenant.NewCompositeResolver(
			tenant.ResolverFunc(func(*http.Request) (string, error) { return "", errors.New("resolver1 error") }),
			tenant.ResolverFunc(func(*http.Request) (string, error) { return "", errors.New("resolver2 error") }),
		)

		_, err := composite.Resolve(httptest.NewRequest(http.MethodGet, "/", nil))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "resolver1 error")
		assert.Contains(t, err.Error(), "resolver2 error")
	})
}
