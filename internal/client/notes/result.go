package notes

import "errors"

// Result is the outcome of a notes call. Exactly one of Data and Error is
// meaningful: callers check Error first.
type Result[T any] struct {
	Data  T
	Error string
}

func (r Result[T]) OK() bool {
	return r.Error == ""
}

// Err returns the error as a Go error, or nil on success.
func (r Result[T]) Err() error {
	if r.Error == "" {
		return nil
	}
	return errors.New(r.Error)
}

// DeleteResult carries no payload, only the error string.
type DeleteResult struct {
	Error string
}

func (r DeleteResult) OK() bool {
	return r.Error == ""
}

func (r DeleteResult) Err() error {
	if r.Error == "" {
		return nil
	}
	return errors.New(r.Error)
}

func fail[T any](err error) Result[T] {
	var zero T
	return Result[T]{Data: zero, Error: err.Error()}
}
