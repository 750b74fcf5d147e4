package tenant

import (
	"log/slog"
	"net/http"
	"strings"
)

// Middleware creates HTTP middleware that resolves the tenant identifier,
// validates it and stores the resulting Scope in the request context.
// Requests without an identifier continue without a scope; use RequireTenant
// on routes that must be tenant-scoped.
func Middleware(resolver Resolver, opts ...Option) func(http.Handler) http.Handler {
	cfg := &config{
		errorHandler: defaultErrorHandler,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, skip := range cfg.skipPaths {
				if strings.HasPrefix(r.URL.Path, skip) {
					next.ServeHTTP(w, r)
					return
				}
			}

			raw, err := resolver.Resolve(r)
			if err != nil {
				cfg.errorHandler(w, r, err)
				return
			}
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}

			id, err := ParseID(raw)
			if err != nil {
				cfg.logger.WarnContext(r.Context(), "rejected tenant identifier",
					slog.String("path", r.URL.Path),
					slog.Any("error", err),
				)
				cfg.errorHandler(w, r, err)
				return
			}

			ctx := WithScope(r.Context(), Scope{id: id})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireTenant creates middleware that ensures a tenant scope is present in the context.
func RequireTenant(errorHandler ErrorHandler) func(http.Handler) http.Handler {
	if errorHandler == nil {
		errorHandler = defaultErrorHandler
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := ScopeFromContext(r.Context()); !ok {
				errorHandler(w, r, ErrMissingTenantContext)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
