// Package diag defines the error kinds and diagnostics reported by the front end
package diag

import (
	"errors"
	"fmt"
)

// Kind classifies a fatal error
type Kind int

const (
	Syntax         Kind = iota // expected token absent, malformed input
	TypeSpec                   // conflicting or missing type specifiers
	Undefined                  // unresolved identifier, tag or member
	Limit                      // resource limit exceeded
	NotImplemented             // construct accepted by the grammar but unsupported
)

func (k Kind) String() string {
	names := []string{"syntax", "typespec", "undefined", "limit", "not-implemented"}
	if int(k) < len(names) {
		return names[k]
	}
	return "?"
}

// Sentinels, one per Kind, for use with errors.Is
var (
	ErrSyntax         = errors.New("syntax error")
	ErrTypeSpec       = errors.New("invalid type specifier")
	ErrUndefined      = errors.New("undefined")
	ErrLimit          = errors.New("limit exceeded")
	ErrNotImplemented = errors.New("not implemented")
)

func (k Kind) sentinel() error {
	switch k {
	case Syntax:
		return ErrSyntax
	case TypeSpec:
		return ErrTypeSpec
	case Undefined:
		return ErrUndefined
	case Limit:
		return ErrLimit
	case NotImplemented:
		return ErrNotImplemented
	}
	return nil
}

// ParseKind maps a Kind name back to its value
func ParseKind(s string) (Kind, bool) {
	for k := Syntax; k <= NotImplemented; k++ {
		if k.String() == s {
			return k, true
		}
	}
	return 0, false
}

// Error is a fatal, positioned front-end error
type Error struct {
	Kind    Kind
	Line    int
	Column  int
	Message string
}

func (e *Error) Error() string {
	if e.Line == 0 {
		return e.Message
	}
	return fmt.Sprintf("line %d, col %d: %s", e.Line, e.Column, e.Message)
}

// Unwrap returns the sentinel for the error's Kind
func (e *Error) Unwrap() error {
	return e.Kind.sentinel()
}

// Errorf builds an *Error at the given position
func Errorf(kind Kind, line, col int, format string, args ...any) *Error {
	return &Error{Kind: kind, Line: line, Column: col, Message: fmt.Sprintf(format, args...)}
}

// KindOf reports the Kind of err if it wraps an *Error
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// Level is the severity of a Diagnostic
type Level int

const (
	LevelDebug Level = iota
	LevelWarning
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	}
	return "unknown"
}

// Diagnostic is one advisory or fatal message
type Diagnostic struct {
	Level   Level
	Line    int
	Column  int
	Message string
}

func (d Diagnostic) String() string {
	if d.Line == 0 {
		return fmt.Sprintf("%s: %s", d.Level, d.Message)
	}
	return fmt.Sprintf("%s: line %d, col %d: %s", d.Level, d.Line, d.Column, d.Message)
}

// FromError converts a fatal error into an error-level Diagnostic
func FromError(err error) Diagnostic {
	var e *Error
	if errors.As(err, &e) {
		return Diagnostic{Level: LevelError, Line: e.Line, Column: e.Column, Message: e.Message}
	}
	return Diagnostic{Level: LevelError, Message: err.Error()}
}
