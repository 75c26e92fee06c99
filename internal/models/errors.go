package models

import (
	"errors"
	"fmt"
)

// ErrSourceUnavailable marks failures to open or read an input source.
// Malformed records never produce it.
var ErrSourceUnavailable = errors.New("source unavailable")

type SourceError struct {
	Source string
	Err    error
}

func NewSourceError(source string, err error) *SourceError {
	return &SourceError{Source: source, Err: err}
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrSourceUnavailable, e.Source, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

func (e *SourceError) Is(target error) bool {
	return target == ErrSourceUnavailable
}
