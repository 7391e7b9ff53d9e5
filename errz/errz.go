// Package errz defines error types with source locations for compile and
// runtime diagnostics.
package errz

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// ErrorKind represents the category of an error.
type ErrorKind int

const (
	// ErrSyntax indicates a lexical or syntactic error found at compile time.
	ErrSyntax ErrorKind = iota
	// ErrType indicates a type mismatch or invalid operation on a type.
	ErrType
	// ErrName indicates an undefined variable reference or assignment.
	ErrName
	// ErrRuntime indicates a general runtime error.
	ErrRuntime
)

// String returns the string representation of the error kind.
func (k ErrorKind) String() string {
	switch k {
	case ErrSyntax:
		return "compile error"
	case ErrType:
		return "type error"
	case ErrName:
		return "name error"
	case ErrRuntime:
		return "runtime error"
	default:
		return "error"
	}
}

// SourceLocation represents a position in source code.
type SourceLocation struct {
	Line int // 1-based line number
}

// IsZero returns true if the location has not been set.
func (s SourceLocation) IsZero() bool {
	return s.Line == 0
}

// StructuredError is an error with a kind and a source location. Compile
// errors additionally carry the offending lexeme, or AtEnd when the error
// was detected at the end of input.
type StructuredError struct {
	Message  string
	Kind     ErrorKind
	Location SourceLocation
	Lexeme   string
	AtEnd    bool
}

// Error implements the error interface.
func (e *StructuredError) Error() string {
	if e.Location.IsZero() {
		return fmt.Sprintf("%s: %s", e.Kind.String(), e.Message)
	}
	return fmt.Sprintf("%s: %s (line %d)", e.Kind.String(), e.Message, e.Location.Line)
}

// FriendlyErrorMessage returns the user-facing form of the error, the text
// the CLI writes to the error stream. Compile errors render as
//
//	[line 1] Error at 'foo': Expect ';' after expression.
//
// and runtime errors as
//
//	Operands must be numbers.
//	[line 1] in script
func (e *StructuredError) FriendlyErrorMessage() string {
	if e.Kind == ErrSyntax {
		switch {
		case e.AtEnd:
			return fmt.Sprintf("[line %d] Error at end: %s", e.Location.Line, e.Message)
		case e.Lexeme != "":
			return fmt.Sprintf("[line %d] Error at '%s': %s", e.Location.Line, e.Lexeme, e.Message)
		default:
			return fmt.Sprintf("[line %d] Error: %s", e.Location.Line, e.Message)
		}
	}
	return fmt.Sprintf("%s\n[line %d] in script", e.Message, e.Location.Line)
}

// NewSyntaxError creates a compile-time diagnostic tied to a lexeme.
func NewSyntaxError(line int, lexeme string, atEnd bool, message string) *StructuredError {
	return &StructuredError{
		Message:  message,
		Kind:     ErrSyntax,
		Location: SourceLocation{Line: line},
		Lexeme:   lexeme,
		AtEnd:    atEnd,
	}
}

// NewRuntimeErrorf creates a runtime error of the given kind with a
// formatted message.
func NewRuntimeErrorf(kind ErrorKind, line int, format string, args ...any) *StructuredError {
	return &StructuredError{
		Message:  fmt.Sprintf(format, args...),
		Kind:     kind,
		Location: SourceLocation{Line: line},
	}
}

// IsCompileError reports whether err represents one or more compile-time
// diagnostics. Aggregated diagnostics (a multierror from the compiler) count
// as a compile error.
func IsCompileError(err error) bool {
	var merr *multierror.Error
	if errors.As(err, &merr) {
		return true
	}
	var serr *StructuredError
	return errors.As(err, &serr) && serr.Kind == ErrSyntax
}

// IsRuntimeError reports whether err is a runtime error.
func IsRuntimeError(err error) bool {
	var serr *StructuredError
	return errors.As(err, &serr) && serr.Kind != ErrSyntax
}
