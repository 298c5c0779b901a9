package backend

import (
	"errors"
	"fmt"
)

var (
	ErrUnavailable          = errors.New("backend unavailable")
	ErrConfirmationRequired = errors.New("account created, confirmation required before sign-in")
)

// APIError is a non-2xx response that maps to no sentinel.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend error (%d): %s", e.Status, e.Message)
}
