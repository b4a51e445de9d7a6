// Package errs is Snipe's typed error hierarchy, grounded on lci's
// internal/errors package: a small ErrorType enum plus one struct carrying
// enough context to log and to unwrap via errors.Is/errors.As.
package errs

import "fmt"

type ErrorType string

const (
	TypeParse    ErrorType = "parse"
	TypeExtract  ErrorType = "extract"
	TypeGraph    ErrorType = "graph"
	TypeConfig   ErrorType = "config"
	TypeIO       ErrorType = "io"
	TypeInternal ErrorType = "internal"
)

// SnipeError carries enough context to log a failure without aborting the
// caller. Per spec.md §7, Recoverable errors degrade silently (empty
// diagnostics, zero symbols for a file); non-recoverable ones are
// programmer errors that should only surface in debug logs.
type SnipeError struct {
	Type        ErrorType
	File        string
	Operation   string
	Underlying  error
	Recoverable bool
}

func New(t ErrorType, op string, err error) *SnipeError {
	return &SnipeError{Type: t, Operation: op, Underlying: err, Recoverable: true}
}

func (e *SnipeError) WithFile(file string) *SnipeError {
	e.File = file
	return e
}

func (e *SnipeError) WithRecoverable(r bool) *SnipeError {
	e.Recoverable = r
	return e
}

func (e *SnipeError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s %s failed for %s: %v", e.Type, e.Operation, e.File, e.Underlying)
	}
	return fmt.Sprintf("%s %s failed: %v", e.Type, e.Operation, e.Underlying)
}

func (e *SnipeError) Unwrap() error { return e.Underlying }

func (e *SnipeError) IsRecoverable() bool { return e.Recoverable }
