// Package opsserver runs the operations endpoint of a tenantkit process:
// Prometheus metrics, liveness and readiness.
//
//	GET /healthz  200 ALIVE while the process runs
//	GET /readyz   200 READY when every check passes, 503 NOT_READY otherwise
//	GET /metrics  Prometheus exposition format
//
// Run blocks until ctx is cancelled and then shuts the listener down within
// ShutdownTimeout.
//
//	srv := opsserver.New(cfg, opsserver.WithLogger(log))
//	err := srv.Run(ctx, opsserver.Router(reg, []opsserver.Check{{Name: "kit", Fn: kit.Healthcheck}}))
package opsserver
