// Package logger builds *slog.Logger instances with functional options and
// transparent injection of values stored in context.Context.
//
// New selects a text or JSON handler, applies default attributes and wraps the
// handler in LogHandlerDecorator, which runs the registered ContextExtractor
// callbacks on every record. tenant.LoggerExtractor is the usual extractor, so
// every log line written inside a tenant-scoped operation carries tenant_id.
//
// # Usage
//
//	log := logger.New(
//		logger.WithService("picking"),
//		logger.WithEnvironment(os.Getenv("APP_ENV")),
//		logger.WithContextExtractors(tenant.LoggerExtractor()),
//	)
//	logger.SetAsDefault(log)
//
//	log.InfoContext(ctx, "schema provisioned", logger.Schema("tenant_acme_schema"))
//
// Attribute helpers (Error, TenantID, Schema, Aggregate, CacheKey, EventType ...)
// keep key naming consistent across packages. Helpers return an empty slog.Attr
// for empty input, which slog drops.
package logger
