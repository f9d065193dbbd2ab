package repository

import (
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("repository: not found")

// DuplicateFieldError reports a violated uniqueness constraint.
type DuplicateFieldError struct {
	Field string
}

func (e *DuplicateFieldError) Error() string {
	return fmt.Sprintf("repository: duplicate %s", e.Field)
}

// StoreError wraps any failure of the underlying store.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return "repository: " + e.Op + ": " + e.Err.Error() }
func (e *StoreError) Unwrap() error { return e.Err }

func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}
