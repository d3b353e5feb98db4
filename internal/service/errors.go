package service

import "errors"

// Business failures are tagged sentinels so handlers branch on kind rather
// than on message text. Store and infrastructure failures are returned
// wrapped and map to an opaque 500.
var (
	// ErrDuplicateIdentity covers both email and username collisions; the
	// two are deliberately not distinguished.
	ErrDuplicateIdentity = errors.New("user with this email or username already exists")

	// ErrInvalidCredentials is returned for unknown email and wrong
	// password alike, so responses cannot be used to enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidResetToken covers wrong, expired and already-consumed reset
	// tokens without distinguishing them.
	ErrInvalidResetToken = errors.New("password reset token is invalid or has expired")

	// ErrWrongPassword is a business-rule failure on change-password; the
	// caller is already authenticated, so this is a 400, not a 401.
	ErrWrongPassword = errors.New("current password is incorrect")

	ErrUsernameTaken = errors.New("username already taken")
)
