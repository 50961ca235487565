package value

import (
	"bytes"
	"fmt"
)

// ErrorKind classifies runtime errors. The set is closed; scripts observe
// the kind through the rendered message.
type ErrorKind string

const (
	NameError          ErrorKind = "NameError"
	RedeclarationError ErrorKind = "RedeclarationError"
	ArgumentError      ErrorKind = "ArgumentError"
	ValueError         ErrorKind = "ValueError"
	TypeError          ErrorKind = "TypeError"
	KeyError           ErrorKind = "KeyError"
	IndexError         ErrorKind = "IndexError"
	AttributeError     ErrorKind = "AttributeError"
	PermissionDenied   ErrorKind = "PermissionDenied"
	ControlFlowError   ErrorKind = "ControlFlowError"
	Cancelled          ErrorKind = "Cancelled"
	IOError            ErrorKind = "IOError"
	HTTPError          ErrorKind = "HTTPError"
	ProcessError       ErrorKind = "ProcessError"
	DivisionByZero     ErrorKind = "DivisionByZero"
	NotCallable        ErrorKind = "NotCallable"
	AssertionError     ErrorKind = "AssertionError"
)

// SourceLocation is the file/line/column an error originated at. File may
// be empty when the host did not name one.
type SourceLocation struct {
	File string
	Line int
	Col  int
}

func (l SourceLocation) String() string {
	if l.File != "" {
		return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Col)
	}
	return fmt.Sprintf("%d:%d", l.Line, l.Col)
}

// StackFrame is one entry of the call chain an error unwound through.
type StackFrame struct {
	Function string
	Location SourceLocation
}

// Error is the runtime error value. It implements both Value (so the
// evaluator can propagate it like any result) and error (so natives can
// return it at the Go seam).
type Error struct {
	Kind     ErrorKind
	Message  string
	Location *SourceLocation
	Stack    []StackFrame
}

func (e *Error) Type() ValueType { return ERROR_VALUE }
func (e *Error) Inspect() string { return fmt.Sprintf("%s: %s", e.Kind, e.Message) }
func (e *Error) Error() string   { return e.Inspect() }

// Errorf builds an error of the given kind with a formatted message.
func Errorf(kind ErrorKind, format string, a ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, a...)}
}

// At pins the error to a source location if it does not have one yet.
func (e *Error) At(loc SourceLocation) *Error {
	if e.Location == nil {
		e.Location = &loc
	}
	return e
}

// WithFrame appends a call-chain frame. Frames accumulate innermost-first
// while the error unwinds through call boundaries.
func (e *Error) WithFrame(function string, loc SourceLocation) *Error {
	e.Stack = append(e.Stack, StackFrame{Function: function, Location: loc})
	return e
}

// FormatWithStack renders the error with its source location and the
// accumulated call chain, innermost frame first.
func (e *Error) FormatWithStack() string {
	var out bytes.Buffer
	out.WriteString(e.Inspect())
	if e.Location != nil {
		out.WriteString(fmt.Sprintf(" (at %s)", e.Location))
	}
	for _, frame := range e.Stack {
		out.WriteString(fmt.Sprintf("\n  in %s at %s", frame.Function, frame.Location))
	}
	return out.String()
}

// AsError returns v as a runtime error when it is one.
func AsError(v Value) (*Error, bool) {
	e, ok := v.(*Error)
	return e, ok
}

// FromGoError lifts an error from the native seam into a value. Errors that
// already are *Error pass through unchanged so permission denials and
// native-raised kinds keep their classification.
func FromGoError(err error, fallback ErrorKind) *Error {
	if err == nil {
		return nil
	}
	if e, ok := err.(*Error); ok {
		return e
	}
	return &Error{Kind: fallback, Message: err.Error()}
}
