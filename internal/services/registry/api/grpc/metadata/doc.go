// Package metadata defines the registry's gRPC header keys and the interceptors
// that attach a request id to every call.
//
// # Header Constants
//
//   - RequestIDHeader: correlates logs, spans and journal events.
//   - AuthorizationHeader: carries "Bearer <caller grant>".
//   - CallerHeader: caller address hint, trusted only in insecure mode.
//   - LocaleHeader: accept-language used to localize error messages.
package metadata
