// Package tokens implements the registry.v1.TokenRegistry gRPC service over
// the in-memory registry, its event journal and the live event feed.
package tokens
