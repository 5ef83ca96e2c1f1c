package auth

import "errors"

var (
	// ErrUnauthorized means the request carried no valid credentials.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrMissingIssuer means the Clerk issuer URL is not configured.
	ErrMissingIssuer = errors.New("clerk issuer URL is required")
)
