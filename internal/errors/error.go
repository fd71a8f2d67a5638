package errors

import (
	"fmt"
	"runtime"
)

// Category represents the type of error.
type Category string

const (
	CategoryRuntime Category = "runtime"
	CategoryConfig  Category = "config"
	CategoryCLI     Category = "cli"
)

// Location represents a source code location.
type Location struct {
	File     string
	Line     int
	Function string
}

// String returns the location as a formatted string.
func (l *Location) String() string {
	if l == nil {
		return ""
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// Error is a structured error with a stable code, an explanation and an
// optional hint on how to fix it.
type Error struct {
	// Code is a unique error identifier (e.g., "E201").
	Code string

	// Category is the error type (runtime, config, cli).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of this particular occurrence.
	Detail string

	// Location is where the violation was detected, if captured.
	Location *Location

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = e.Code + ": " + msg
	}
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Wrapped
}

// WithCaller records the caller skip frames above WithCaller as the
// location of the error.
func (e *Error) WithCaller(skip int) *Error {
	pc, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return e
	}
	loc := &Location{File: file, Line: line}
	if fn := runtime.FuncForPC(pc); fn != nil {
		loc.Function = fn.Name()
	}
	e.Location = loc
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *Error) WithSuggestion(s string) *Error {
	e.Suggestion = s
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *Error) WithDetail(d string) *Error {
	e.Detail = d
	return e
}

// WithDetailf is WithDetail with fmt.Sprintf formatting.
func (e *Error) WithDetailf(format string, args ...any) *Error {
	e.Detail = fmt.Sprintf(format, args...)
	return e
}

// Wrap wraps another error.
func (e *Error) Wrap(err error) *Error {
	e.Wrapped = err
	return e
}

// New creates an Error from a registered error code.
func New(code string) *Error {
	template, ok := registry[code]
	if !ok {
		return &Error{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &Error{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
	}
}

// Newf creates a new Error with a formatted message (no code).
func Newf(category Category, format string, args ...any) *Error {
	return &Error{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in an Error.
func FromError(err error, code string) *Error {
	if err == nil {
		return nil
	}
	if e, ok := err.(*Error); ok {
		return e
	}
	return New(code).Wrap(err)
}
