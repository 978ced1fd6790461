// Package server wires the registry process: storage backend, registry core,
// event feed, gRPC service with its interceptors, and the HTTP surface.
package server
