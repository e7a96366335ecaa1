package vfs

import (
	"errors"
	"fmt"
)

// ErrRead matches, through errors.Is, every error built by NewReadError.
var ErrRead = errors.New("could not read file content")

// ReadError reports a failure while streaming a file that was opened
// successfully, so the response has already started.
type ReadError struct {
	Err error
}

// NewReadError wraps err.
func NewReadError(err error) error {
	return &ReadError{Err: err}
}

func (e *ReadError) Error() string {
	if e.Err == nil {
		return ErrRead.Error()
	}

	return fmt.Sprintf("%v: %v", ErrRead, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrRead.
func (e *ReadError) Is(target error) bool {
	return target == ErrRead
}
