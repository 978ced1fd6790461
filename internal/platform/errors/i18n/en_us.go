package i18n

// Error codes must match the codes defined in internal/platform/errors/codes.go.
// These are duplicated as strings to avoid an import cycle.
const (
	CodeNotFound           = "NOT_FOUND"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeInvalidArgument    = "INVALID_ARGUMENT"
	CodeUnauthenticated    = "UNAUTHENTICATED"
	CodeCallerGrantInvalid = "CALLER_GRANT_INVALID"
	CodeCallerGrantExpired = "CALLER_GRANT_EXPIRED"
	CodeJournalTampered    = "JOURNAL_TAMPERED"
)

var enUSMessages = map[Code]string{
	CodeNotFound:           "Token {{.TokenID}} does not exist",
	CodeUnauthorized:       "Caller is not allowed to {{.Operation}}",
	CodeInvalidArgument:    "Invalid {{.Field}}",
	CodeUnauthenticated:    "A caller grant is required",
	CodeCallerGrantInvalid: "Caller grant is invalid",
	CodeCallerGrantExpired: "Caller grant has expired",
	CodeJournalTampered:    "Event journal failed verification at sequence {{.Seq}}",
}
