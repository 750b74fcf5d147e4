// Package correlation carries a correlation id through a request so that log
// records and the domain events it causes can be tied back to it.
//
// The HTTP middleware accepts X-Correlation-ID, falls back to X-Request-ID and
// generates a UUID when neither is usable. The id is stored in the context,
// echoed in the response and picked up by event.Deferred, which stamps it on
// events that do not carry one yet.
//
//	r := chi.NewRouter()
//	r.Use(correlation.Middleware)
//
//	log := logger.New(logger.WithContextExtractors(
//		correlation.LoggerExtractor(),
//		tenant.LoggerExtractor(),
//	))
package correlation
