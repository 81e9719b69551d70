package app

import "errors"

var (
	// ErrInvalidCredentials is returned for a missing user and for a
	// wrong password alike. The message is shown to end users and must
	// not enable account enumeration.
	ErrInvalidCredentials = errors.New("Incorrect username or password")

	// ErrUsernameTaken and ErrPasswordMismatch messages are rendered
	// back on the registration form.
	ErrUsernameTaken    = errors.New("Username already taken")
	ErrPasswordMismatch = errors.New("Passwords did not match")

	ErrCredentialsRequired = errors.New("username and password required")

	// ErrInvalidISBN rejects a write whose ISBN is not 10 or 13
	// characters after hyphen stripping.
	ErrInvalidISBN = errors.New("isbn must be 10 or 13 characters")

	ErrNotFound      = errors.New("post not found")
	ErrForbidden     = errors.New("forbidden")
	ErrUnknownAction = errors.New("unknown post action")
)
