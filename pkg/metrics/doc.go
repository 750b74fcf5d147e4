// Package metrics exposes Prometheus collectors for cache efficiency, schema
// provisioning, optimistic conflicts, event publication and cross-tenant fan-out.
//
// Components accept an optional *Metrics; a nil value disables recording so
// tests and embedded uses need no registry.
package metrics
