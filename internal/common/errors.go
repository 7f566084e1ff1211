// Package common defines shared constants and sentinel errors used across
// client and server layers of signmanager. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors.
	ErrorInternal            = errors.New("internal error")
	ErrorValidation          = errors.New("validation error")
	ErrorDuplicateIdentifier = errors.New("email already registered")

	// ErrorInvalidCredentials is returned for both an unknown email and a
	// wrong password so callers cannot tell the two apart.
	ErrorInvalidCredentials = errors.New("invalid credentials")
)
