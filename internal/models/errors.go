package models

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMalformedInput matches any *MalformedInputError via errors.Is.
	ErrMalformedInput = errors.New("malformed input")
	// ErrMissingColumn matches any *MissingColumnError via errors.Is.
	ErrMissingColumn = errors.New("missing column")
)

// Error kinds reported to callers.
const (
	KindMalformedInput = "malformed_input"
	KindMissingColumn  = "missing_column"
	KindInternal       = "internal"
)

// MalformedInputError means extraction produced no usable table.
type MalformedInputError struct {
	Format SourceFormat
	Reason string
	Err    error
}

func (e *MalformedInputError) Error() string {
	msg := fmt.Sprintf("malformed %s input: %s", e.Format, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MalformedInputError) Is(target error) bool { return target == ErrMalformedInput }

func (e *MalformedInputError) Unwrap() error { return e.Err }

// MissingColumnError means a required role could not be resolved from headers.
type MissingColumnError struct {
	Role       Role
	Headers    []string
	Suggestion string // closest header label, if any
}

func (e *MissingColumnError) Error() string {
	msg := fmt.Sprintf("no %s column found in headers [%s]", e.Role, strings.Join(e.Headers, ", "))
	if e.Suggestion != "" {
		msg += fmt.Sprintf(" (closest: %q)", e.Suggestion)
	}
	return msg
}

func (e *MissingColumnError) Is(target error) bool { return target == ErrMissingColumn }

// ErrorKind classifies a pipeline error for callers that must tell failures apart.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMalformedInput):
		return KindMalformedInput
	case errors.Is(err, ErrMissingColumn):
		return KindMissingColumn
	default:
		return KindInternal
	}
}
