package ocr

import (
	"errors"
	"fmt"
)

// Common OCR errors.
var (
	// ErrTimeout is returned when a recognition exceeds Options.Timeout.
	ErrTimeout = errors.New("OCR timed out")

	// ErrEngineUnavailable is returned when no engine is configured or the
	// engine binary cannot be found.
	ErrEngineUnavailable = errors.New("OCR engine unavailable")

	// ErrNoImage is returned when there is no image to recognize.
	ErrNoImage = errors.New("no image to recognize")

	// ErrUnsupportedOption is returned when an engine is given an option it
	// does not understand.
	ErrUnsupportedOption = errors.New("unsupported OCR option")
)

// Error wraps errors with additional context about an OCR failure.
type Error struct {
	// Op is the operation that failed (e.g., "recognize", "parse tsv").
	Op string

	// Err is the underlying error.
	Err error

	// Details provides additional context about the failure.
	Details string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("ocr: %s failed: %s: %v", e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("ocr: %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new Error with the specified operation and underlying error.
func NewError(op string, err error, details string) *Error {
	return &Error{
		Op:      op,
		Err:     err,
		Details: details,
	}
}

// WrapError wraps err as an *Error unless it already is one.
func WrapError(op string, err error, details string) error {
	if err == nil {
		return nil
	}

	var ocrErr *Error
	if errors.As(err, &ocrErr) {
		return err
	}

	return NewError(op, err, details)
}
