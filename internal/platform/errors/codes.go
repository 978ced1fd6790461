// Package errors provides structured error handling with i18n support.
package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Registry errors
	CodeNotFound        Code = "NOT_FOUND"
	CodeUnauthorized    Code = "UNAUTHORIZED"
	CodeInvalidArgument Code = "INVALID_ARGUMENT"

	// Caller grant errors
	CodeUnauthenticated    Code = "UNAUTHENTICATED"
	CodeCallerGrantInvalid Code = "CALLER_GRANT_INVALID"
	CodeCallerGrantExpired Code = "CALLER_GRANT_EXPIRED"

	// Journal errors
	CodeJournalTampered Code = "JOURNAL_TAMPERED"
)

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	case CodeInvalidArgument:
		return codes.InvalidArgument

	case CodeNotFound:
		return codes.NotFound

	case CodeUnauthorized:
		return codes.PermissionDenied

	case CodeUnauthenticated,
		CodeCallerGrantInvalid,
		CodeCallerGrantExpired:
		return codes.Unauthenticated

	case CodeJournalTampered:
		return codes.DataLoss

	default:
		return codes.Internal
	}
}
