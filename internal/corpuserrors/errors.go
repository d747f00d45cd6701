// Package corpuserrors defines the discriminated error kinds surfaced to
// collaborators of the query engine, and the fatal-invariant panic type
// used when a recoverable result would be silently wrong.
package corpuserrors

import (
	"fmt"

	"github.com/google/uuid"
)

// Kind discriminates the closed set of error categories the core surfaces.
type Kind int

const (
	AQLSyntaxError Kind = iota
	AQLSemanticError
	ImpossibleSearch
	NoSuchCorpus
	LoadingGraphFailed
	Cancelled
	Internal
)

func (k Kind) String() string {
	switch k {
	case AQLSyntaxError:
		return "AQLSyntaxError"
	case AQLSemanticError:
		return "AQLSemanticError"
	case ImpossibleSearch:
		return "ImpossibleSearch"
	case NoSuchCorpus:
		return "NoSuchCorpus"
	case LoadingGraphFailed:
		return "LoadingGraphFailed"
	case Cancelled:
		return "Cancelled"
	default:
		return "Internal"
	}
}

// Position marks a location in source query text, when one is available.
type Position struct {
	Line, Column int
}

// QueryError is the structured error type returned for user and resource
// errors (§7). It never indicates process corruption.
type QueryError struct {
	Kind     Kind
	Message  string
	Pos      *Position
	QueryID  uuid.UUID
	Cause    error
}

func (e *QueryError) Error() string {
	if e.Pos != nil {
		return fmt.Sprintf("%s at %d:%d: %s", e.Kind, e.Pos.Line, e.Pos.Column, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *QueryError) Unwrap() error { return e.Cause }

// New builds a QueryError carrying a fresh correlation ID.
func New(kind Kind, format string, args ...interface{}) *QueryError {
	return &QueryError{Kind: kind, Message: fmt.Sprintf(format, args...), QueryID: uuid.New()}
}

// Wrap builds a QueryError around an existing cause.
func Wrap(kind Kind, cause error, format string, args ...interface{}) *QueryError {
	return &QueryError{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause, QueryID: uuid.New()}
}

// WithPosition attaches a source position and returns the same error for
// chaining at the call site.
func (e *QueryError) WithPosition(line, column int) *QueryError {
	e.Pos = &Position{Line: line, Column: column}
	return e
}

// FatalInvariantError marks a violation of a structural invariant (e.g. an
// inverse index disagreeing with its forward index) that makes any result
// untrustworthy. The core panics with this type rather than attempt to
// recover; a process-level boundary outside this module is expected to
// catch it and abort.
type FatalInvariantError struct {
	Message string
}

func (e *FatalInvariantError) Error() string { return "fatal invariant violation: " + e.Message }

// PanicInvariant panics with a FatalInvariantError built from format/args.
func PanicInvariant(format string, args ...interface{}) {
	panic(&FatalInvariantError{Message: fmt.Sprintf(format, args...)})
}
