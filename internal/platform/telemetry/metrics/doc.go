// Package metrics provides operational metrics collection.
//
// Metrics are collected by a gRPC interceptor and by the registry itself, and
// exposed in Prometheus format on the HTTP /metrics endpoint.
//
// # gRPC Interceptor
//
// The interceptor records:
//   - Request count by method and status code
//   - Request latency by method
//
// # Registry
//
// The registry records committed journal events by type and the latest
// sequence number. The live feed records subscriber count and dropped frames.
package metrics
