package extract

import (
	"errors"
	"fmt"
)

// ErrExtractionFailed classifies every failure to pull text out of a PDF.
var ErrExtractionFailed = errors.New("pdf extraction failed")

// Error carries the underlying parser failure.
type Error struct {
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", ErrExtractionFailed, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %v", ErrExtractionFailed, e.Reason, e.Err)
}

// Unwrap exposes both the sentinel and the cause to errors.Is/As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrExtractionFailed}
	}
	return []error{ErrExtractionFailed, e.Err}
}

func fail(reason string, err error) error {
	return &Error{Reason: reason, Err: err}
}
