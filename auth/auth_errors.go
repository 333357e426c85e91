package auth

import "errors"

var (
	// ErrInvalidCredentials means the backend rejected the login; recovered
	// locally, no session is established.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
