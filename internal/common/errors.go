package common

import (
	"bytes"
	"fmt"

	"go.uber.org/multierr"
	"golang.org/x/exp/slices"

	"github.com/sablelang/sable/internal/token"
)

// MessageID represents the type of error message.
type MessageID int

// The message IDs.
const (
	ErrorMsg MessageID = iota
	WarningMsg
)

func (id MessageID) String() string {
	switch id {
	case ErrorMsg:
		return "error"
	case WarningMsg:
		return "warning"
	}
	return ""
}

// ErrorKind classifies a semantic error. The set is closed; every error
// produced by the analyzers carries exactly one kind.
type ErrorKind int

// The error kinds.
const (
	GenericError ErrorKind = iota
	DuplicateSymbol
	UndefinedSymbol
	TypeMismatch
	ConstantRequired
	InvalidStorageClass
	InvalidScope
	CallbackMismatch
	ModuleNotFound
	ImportNotFound
	ExportNotFound
	CircularDependency
	InvalidOperation
)

var errorKinds = [...]string{
	GenericError:        "error",
	DuplicateSymbol:     "duplicate symbol",
	UndefinedSymbol:     "undefined symbol",
	TypeMismatch:        "type mismatch",
	ConstantRequired:    "constant required",
	InvalidStorageClass: "invalid storage class",
	InvalidScope:        "invalid scope",
	CallbackMismatch:    "callback mismatch",
	ModuleNotFound:      "module not found",
	ImportNotFound:      "import not found",
	ExportNotFound:      "export not found",
	CircularDependency:  "circular dependency",
	InvalidOperation:    "invalid operation",
}

func (k ErrorKind) String() string {
	if 0 <= k && k < ErrorKind(len(errorKinds)) {
		return errorKinds[k]
	}
	return "error"
}

type Error struct {
	Pos         token.Position
	EndPos      token.Position
	ID          MessageID
	Kind        ErrorKind
	Msg         string
	Suggestions []string
	Context     []string
}

type ErrorList struct {
	Warnings []*Error
	Errors   []*Error
}

func NewError(pos token.Position, endPos token.Position, id MessageID, kind ErrorKind, msg string) *Error {
	return &Error{Pos: pos, EndPos: endPos, ID: id, Kind: kind, Msg: msg}
}

func (e Error) Error() string {
	id := ""
	if e.ID == ErrorMsg {
		id = BoldRed(e.ID.String())
	} else {
		id = BoldPurple(e.ID.String())
	}

	msg := ""
	if e.Pos.IsValid() {
		msg = fmt.Sprintf("%s: %s: %s", e.Pos, id, e.Msg)
	} else if len(e.Pos.Filename) > 0 {
		msg = fmt.Sprintf("%s: %s: %s", e.Pos.Filename, id, e.Msg)
	} else {
		msg = fmt.Sprintf("%s: %s", id, e.Msg)
	}

	var buf bytes.Buffer
	buf.WriteString(msg)

	for _, s := range e.Suggestions {
		buf.WriteString("\n")
		buf.WriteString(Gray(fmt.Sprintf("  hint: %s", s)))
	}

	for _, l := range e.Context {
		buf.WriteString("\n")
		buf.WriteString(l)
	}

	return buf.String()
}

func (e *ErrorList) Add(kind ErrorKind, pos token.Position, format string, args ...interface{}) {
	err := NewError(pos, pos, ErrorMsg, kind, fmt.Sprintf(format, args...))
	e.Errors = append(e.Errors, err)
}

func (e *ErrorList) AddRange(kind ErrorKind, pos token.Position, endPos token.Position, format string, args ...interface{}) {
	err := NewError(pos, endPos, ErrorMsg, kind, fmt.Sprintf(format, args...))
	e.Errors = append(e.Errors, err)
}

func (e *ErrorList) AddSuggested(kind ErrorKind, pos token.Position, suggestions []string, format string, args ...interface{}) {
	err := NewError(pos, pos, ErrorMsg, kind, fmt.Sprintf(format, args...))
	err.Suggestions = suggestions
	e.Errors = append(e.Errors, err)
}

func (e *ErrorList) AddContext(kind ErrorKind, pos token.Position, context []string, format string, args ...interface{}) {
	err := NewError(pos, pos, ErrorMsg, kind, fmt.Sprintf(format, args...))
	err.Context = context
	e.Errors = append(e.Errors, err)
}

func (e *ErrorList) AddWarning(pos token.Position, format string, args ...interface{}) {
	err := NewError(pos, pos, WarningMsg, GenericError, fmt.Sprintf(format, args...))
	e.Warnings = append(e.Warnings, err)
}

func (e *ErrorList) Append(other *ErrorList) {
	e.Warnings = append(e.Warnings, other.Warnings...)
	e.Errors = append(e.Errors, other.Errors...)
}

func (e *ErrorList) IsError() bool {
	return len(e.Errors) > 0
}

// Count returns the number of errors of the given kind.
func (e *ErrorList) Count(kind ErrorKind) int {
	n := 0
	for _, err := range e.Errors {
		if err.Kind == kind {
			n++
		}
	}
	return n
}

// Combined flattens the error list into a single error value, or nil if
// the list holds no errors. Warnings are not included.
func (e *ErrorList) Combined() error {
	var combined error
	for _, err := range e.Errors {
		combined = multierr.Append(combined, err)
	}
	return combined
}

// Sort errors by filename and line numbers.
func (e *ErrorList) Sort() {
	slices.SortStableFunc(e.Warnings, lessFileAndLineNumber)
	slices.SortStableFunc(e.Errors, lessFileAndLineNumber)
}

func lessFileAndLineNumber(a *Error, b *Error) bool {
	if a.Pos.Filename != b.Pos.Filename {
		return a.Pos.Filename < b.Pos.Filename
	}
	if a.Pos.Line != b.Pos.Line {
		return a.Pos.Line < b.Pos.Line
	}
	return a.Pos.Column < b.Pos.Column
}

func (e ErrorList) Error() string {
	switch len(e.Errors) {
	case 0:
		return "no errors"
	case 1:
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%s (and %d more errors)", e.Errors[0].Error(), len(e.Errors)-1)
}
