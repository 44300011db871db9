package source

import "errors"

var (
	// ErrCredentialsMissing is returned when the OAuth client file cannot be read.
	ErrCredentialsMissing = errors.New("source credentials missing")

	// ErrNotAuthorized is returned when no saved token exists for the account.
	ErrNotAuthorized = errors.New("source not authorized")

	// ErrMessageNotFound is returned when a listed message no longer exists.
	ErrMessageNotFound = errors.New("message not found")
)
