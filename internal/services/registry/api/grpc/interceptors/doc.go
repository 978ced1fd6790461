// Package interceptors holds the registry's gRPC server interceptors: caller
// authentication, localized error mapping and request metrics.
package interceptors
