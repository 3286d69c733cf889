// Package observability exposes process metrics for a chat instance.
//
// Metrics are Prometheus counters and a gauge registered on a per-instance
// registry. The optional admin Server publishes them with gin at /metrics,
// next to a /health probe. Recording is concurrency-safe, so the event loop
// can record while the admin server scrapes without sharing any chat state.
package observability
