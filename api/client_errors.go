package api

import (
	"fmt"

	"github.com/pkg/errors"
)

// StatusError is a non-2xx response from the backend for reasons unrelated
// to credentials. It carries the raw response body for domain-level handling.
type StatusError struct {
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend returned status %d", e.StatusCode)
}

// Status returns the HTTP status code buried in err's chain, or 0 if err is
// not a backend status failure.
func Status(err error) int {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode
	}
	return 0
}

// IsNotFound reports whether err is a backend 404.
func IsNotFound(err error) bool {
	return Status(err) == 404
}
