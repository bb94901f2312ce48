// Package diagnostic classifies and collects the diagnostics produced while
// parsing genv sources. Rendering them for a terminal is left to callers.
package diagnostic

import (
	"fmt"

	"github.com/genv-lang/genv/internal/position"
)

// Severity represents the severity level of a diagnostic message.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return "unknown"
	}
}

// Kind is the closed set of diagnostic classifications. Every implementation
// lives in this file.
type Kind interface {
	// Code returns a stable machine readable identifier.
	Code() string
	// String returns a short human readable message.
	String() string
	kind()
}

// FileNotFound reports a source file that could not be read.
type FileNotFound struct{ Path string }

// UnexpectedToken reports input no grammar alternative accepts.
type UnexpectedToken struct{}

// SyntaxError reports malformed input inside a committed construct.
type SyntaxError struct{ Message string }

// UnknownIdentifier reports a name with no binding.
type UnknownIdentifier struct{}

// ModuleNotFound reports a module path that resolves to nothing.
type ModuleNotFound struct{ Path string }

// DuplicatedOperator reports a second declaration of an operator lexeme.
type DuplicatedOperator struct{ Lexeme string }

// OutOfBounds reports a value outside its allowed range.
type OutOfBounds struct{ Got, Expected uint64 }

// OrphanSignature reports a signature with no matching definition.
type OrphanSignature struct{ Name string }

// TypeConflict reports two incompatible types.
type TypeConflict struct {
	Expected, Got      string
	Context1, Context2 string
}

// UnresolvedType reports a type that should be known at this point.
type UnresolvedType struct{ Type string }

// NoMain reports a program without an entry point.
type NoMain struct{}

// NoError is the success sentinel.
type NoError struct{}

func (FileNotFound) kind()       {}
func (UnexpectedToken) kind()    {}
func (SyntaxError) kind()        {}
func (UnknownIdentifier) kind()  {}
func (ModuleNotFound) kind()     {}
func (DuplicatedOperator) kind() {}
func (OutOfBounds) kind()        {}
func (OrphanSignature) kind()    {}
func (TypeConflict) kind()       {}
func (UnresolvedType) kind()     {}
func (NoMain) kind()             {}
func (NoError) kind()            {}

func (FileNotFound) Code() string       { return "FILE_NOT_FOUND" }
func (UnexpectedToken) Code() string    { return "UNEXPECTED_TOKEN" }
func (SyntaxError) Code() string        { return "SYNTAX_ERROR" }
func (UnknownIdentifier) Code() string  { return "UNKNOWN_IDENTIFIER" }
func (ModuleNotFound) Code() string     { return "MODULE_NOT_FOUND" }
func (DuplicatedOperator) Code() string { return "DUPLICATED_OPERATOR" }
func (OutOfBounds) Code() string        { return "OUT_OF_BOUNDS" }
func (OrphanSignature) Code() string    { return "ORPHAN_SIGNATURE" }
func (TypeConflict) Code() string       { return "TYPE_CONFLICT" }
func (UnresolvedType) Code() string     { return "UNRESOLVED_TYPE" }
func (NoMain) Code() string             { return "NO_MAIN" }
func (NoError) Code() string            { return "NO_ERROR" }

func (k FileNotFound) String() string { return fmt.Sprintf("file not found: %s", k.Path) }
func (UnexpectedToken) String() string { return "unexpected token" }
func (k SyntaxError) String() string {
	if k.Message == "" {
		return "syntax error"
	}
	return fmt.Sprintf("syntax error: %s", k.Message)
}
func (UnknownIdentifier) String() string { return "unknown identifier" }
func (k ModuleNotFound) String() string  { return fmt.Sprintf("module not found: %s", k.Path) }
func (k DuplicatedOperator) String() string {
	return fmt.Sprintf("duplicated operator %q", k.Lexeme)
}
func (k OutOfBounds) String() string {
	return fmt.Sprintf("out of bounds: got %d, expected at most %d", k.Got, k.Expected)
}
func (k OrphanSignature) String() string { return fmt.Sprintf("orphan signature: %s", k.Name) }
func (k TypeConflict) String() string {
	return fmt.Sprintf("type conflict: expected %s but got %s", k.Expected, k.Got)
}
func (k UnresolvedType) String() string {
	return fmt.Sprintf("unresolved type: %s should be known at this point", k.Type)
}
func (NoMain) String() string  { return "no main function" }
func (NoError) String() string { return "no error" }

// Diagnostic is a classified message attached to a source span.
type Diagnostic struct {
	Span position.Span
	Kind Kind
}

// New creates a diagnostic.
func New(span position.Span, kind Kind) Diagnostic {
	return Diagnostic{Span: span, Kind: kind}
}

// Empty returns the success sentinel diagnostic.
func Empty() Diagnostic {
	return Diagnostic{Kind: NoError{}}
}

// String renders the diagnostic on one line.
func (d Diagnostic) String() string {
	if d.Kind == nil {
		return d.Span.String()
	}
	if d.Span.Start.Filename == "" && !d.Span.Start.IsValid() {
		return d.Kind.String()
	}
	return fmt.Sprintf("%s: %s", d.Span.String(), d.Kind.String())
}

// Error carries a diagnostic through Go error returns.
type Error struct {
	Diagnostic Diagnostic
}

func (e *Error) Error() string {
	return e.Diagnostic.String()
}

// AsError wraps a diagnostic as an error.
func AsError(d Diagnostic) *Error {
	return &Error{Diagnostic: d}
}
