package session

import "errors"

var (
	ErrNoSession      = errors.New("no session established")
	ErrSessionExpired = errors.New("session expired")
	ErrUnknownRole    = errors.New("unknown role")
	ErrPartialSession = errors.New("partial session data")
)
