package auth

import "errors"

var (
	// InvalidCredentialsErr is deliberately generic: callers can never tell
	// an unknown identifier apart from a wrong password.
	InvalidCredentialsErr = errors.New("invalid credentials")

	SessionNotFoundErr = errors.New("session not found")

	// RefreshTokenExpiredErr is returned when an expired refresh token
	// cannot be rotated because the caller is not the session's owner.
	RefreshTokenExpiredErr = errors.New("refresh token expired")
	UserNotFoundErr        = errors.New("user not found")
	InvalidClaimsErr       = errors.New("invalid user claims")
)
