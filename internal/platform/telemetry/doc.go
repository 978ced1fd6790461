// Package telemetry groups operational observability for the registry.
//
// The event journal is the canonical record of registry mutations and lives
// with the registry storage. Telemetry covers non-mutating observations only:
// request counts, latencies, and live feed fan-out. Those are exported in
// Prometheus format by telemetry/metrics.
package telemetry
