package errors

import (
	stderrors "errors"
	"maps"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/status"

	"github.com/Douglas360/smart-contracts/internal/platform/errors/i18n"
)

// Domain is the error domain reported in gRPC error details.
const Domain = "registry.smart-contracts"

// Error is a registry error: a stable code, an operator-facing message and
// template metadata for the caller-facing translation.
type Error struct {
	Code     Code
	Message  string
	Metadata map[string]string
	Cause    error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error with the same code, so constructed errors compare
// equal to the package-level sentinels of their code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && e.Code == t.Code
}

// New creates an error without metadata.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WithMetadata creates an error carrying a copy of metadata.
func WithMetadata(code Code, message string, metadata map[string]string) *Error {
	return &Error{Code: code, Message: message, Metadata: maps.Clone(metadata)}
}

// Wrap creates an error around cause. An empty message reuses the cause text.
func Wrap(code Code, message string, cause error) *Error {
	if message == "" && cause != nil {
		message = cause.Error()
	}
	return &Error{Code: code, Message: message, Cause: cause}
}

// CodeOf returns the code of the first *Error in err's chain, CodeUnknown
// otherwise.
func CodeOf(err error) Code {
	if domainErr, ok := As(err); ok {
		return domainErr.Code
	}
	return CodeUnknown
}

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var domainErr *Error
	if !stderrors.As(err, &domainErr) {
		return nil, false
	}
	return domainErr, true
}

// Localize renders the caller-facing message for an Accept-Language value and
// returns the locale that was actually used.
func (e *Error) Localize(acceptLanguage string) (locale, message string) {
	catalog := i18n.GetCatalog(acceptLanguage)
	return catalog.Locale(), catalog.Format(string(e.Code), e.Metadata)
}

// LocalizedStatus is ToGRPCStatus with the message rendered for acceptLanguage.
func (e *Error) LocalizedStatus(acceptLanguage string) error {
	locale, message := e.Localize(acceptLanguage)
	return e.ToGRPCStatus(locale, message)
}

// ToGRPCStatus converts the error to a gRPC status. The status message stays
// the operator-facing text; ErrorInfo and LocalizedMessage details carry the
// code, metadata and userMessage.
func (e *Error) ToGRPCStatus(locale string, userMessage string) error {
	base := status.New(e.Code.GRPCCode(), e.Error())
	detailed, err := base.WithDetails(
		&errdetails.ErrorInfo{Reason: string(e.Code), Domain: Domain, Metadata: e.Metadata},
		&errdetails.LocalizedMessage{Locale: locale, Message: userMessage},
	)
	if err != nil {
		return base.Err()
	}
	return detailed.Err()
}
