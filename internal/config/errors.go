package config

import (
	"errors"
	"fmt"

	"github.com/dshills/keypipe/internal/config/loader"
)

// Errors returned by configuration operations.
var (
	// ErrValidationFailed is matched by every ValidationError.
	ErrValidationFailed = errors.New("validation failed")

	// ErrFileNotFound indicates the profile file doesn't exist.
	ErrFileNotFound = errors.New("profile file not found")

	// ErrUnknownProfile indicates no file or built-in profile has the name.
	ErrUnknownProfile = errors.New("unknown profile")

	// ErrNotQMK indicates JSON input that is not a QMK keymap.
	ErrNotQMK = errors.New("not a QMK keymap")
)

// ParseError represents an error while parsing a profile file.
type ParseError = loader.ParseError

// ValidationError describes a validation failure in a profile.
type ValidationError struct {
	// Path locates the failing setting, e.g. "pipe.left.layers.num[3]".
	Path string
	// Message describes the validation error.
	Message string
	// Value is the invalid value.
	Value any
	// Code categorizes the validation error.
	Code ValidationErrorCode
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	return fmt.Sprintf("%s: %s (value: %v)", e.Path, e.Message, e.Value)
}

// Is implements error matching for ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}

// ValidationErrorCode categorizes validation errors.
type ValidationErrorCode uint8

const (
	// ErrCodeRequiredMissing indicates a required setting is missing.
	ErrCodeRequiredMissing ValidationErrorCode = iota
	// ErrCodeOutOfRange indicates a numeric value is out of range.
	ErrCodeOutOfRange
	// ErrCodeDuplicate indicates a name or id is used twice.
	ErrCodeDuplicate
	// ErrCodeUnknownReference indicates a reference to an undefined name.
	ErrCodeUnknownReference
	// ErrCodeInvalidSpec indicates a keycode spec that does not parse.
	ErrCodeInvalidSpec
)

// String returns a human-readable name for the error code.
func (c ValidationErrorCode) String() string {
	switch c {
	case ErrCodeRequiredMissing:
		return "required_missing"
	case ErrCodeOutOfRange:
		return "out_of_range"
	case ErrCodeDuplicate:
		return "duplicate"
	case ErrCodeUnknownReference:
		return "unknown_reference"
	case ErrCodeInvalidSpec:
		return "invalid_spec"
	default:
		return "unknown"
	}
}

// ValidationErrors returns the ValidationErrors contained in err, which may
// be a single error, a join, or either of those wrapped.
func ValidationErrors(err error) []*ValidationError {
	switch e := err.(type) {
	case nil:
		return nil
	case *ValidationError:
		return []*ValidationError{e}
	case interface{ Unwrap() []error }:
		var out []*ValidationError
		for _, inner := range e.Unwrap() {
			out = append(out, ValidationErrors(inner)...)
		}
		return out
	case interface{ Unwrap() error }:
		return ValidationErrors(e.Unwrap())
	default:
		return nil
	}
}
