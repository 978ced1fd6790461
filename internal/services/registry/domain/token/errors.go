package token

import (
	"fmt"

	apperrors "github.com/Douglas360/smart-contracts/internal/platform/errors"
)

// Sentinels for errors.Is comparisons. Matching is by code.
var (
	ErrNotFound        = apperrors.New(apperrors.CodeNotFound, "token not found")
	ErrUnauthorized    = apperrors.New(apperrors.CodeUnauthorized, "caller not authorized")
	ErrInvalidArgument = apperrors.New(apperrors.CodeInvalidArgument, "invalid argument")
)

// NotFound reports that id has not been minted.
func NotFound(id ID) error {
	return apperrors.WithMetadata(apperrors.CodeNotFound,
		fmt.Sprintf("token %d not found", id),
		map[string]string{"TokenID": id.String()})
}

// Unauthorized reports that caller may not perform operation.
func Unauthorized(operation string, caller Address) error {
	return apperrors.WithMetadata(apperrors.CodeUnauthorized,
		fmt.Sprintf("%s: caller %q not authorized", operation, caller),
		map[string]string{"Operation": operation, "Caller": caller.String()})
}

// InvalidArgument reports a rejected input field.
func InvalidArgument(field, reason string) error {
	return apperrors.WithMetadata(apperrors.CodeInvalidArgument,
		fmt.Sprintf("invalid %s: %s", field, reason),
		map[string]string{"Field": field, "Reason": reason})
}
