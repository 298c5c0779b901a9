// Package common defines sentinel errors shared by the client packages.
// Callers match them with errors.Is.
package common

import "errors"

var (
	ErrNotFound = errors.New("not found")

	ErrUnauthorized     = errors.New("unauthorized")
	ErrNotAuthenticated = errors.New("User not authenticated")

	ErrInvalidToken = errors.New("invalid token")
)
