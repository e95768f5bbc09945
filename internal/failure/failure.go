package failure

import (
	"fmt"
	"strings"
)

// SyntaxError reports a malformed specification. It is raised before any
// row is touched.
type SyntaxError struct {
	Source string
	Line   int
	Column int
	Text   string
	Msg    string
}

func (e *SyntaxError) Error() string {
	var b strings.Builder
	b.WriteString("syntax error")
	if e.Source != "" {
		fmt.Fprintf(&b, " in %s", e.Source)
	}
	if e.Line > 0 {
		fmt.Fprintf(&b, " at line %d", e.Line)
		if e.Column > 0 {
			fmt.Fprintf(&b, ", column %d", e.Column)
		}
	}
	fmt.Fprintf(&b, ": %s", e.Msg)
	if e.Text != "" {
		fmt.Fprintf(&b, " (line: %q)", e.Text)
	}
	return b.String()
}

// ReferenceError reports a command that names a column or row the table
// does not have.
type ReferenceError struct {
	Kind string // "column" or "row"
	Ref  string
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("unknown %s %s", e.Kind, e.Ref)
}

// LookupError reports a replace map without an entry for a live value and
// no default.
type LookupError struct {
	Column string
	Key    string
	Row    int
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("no replacement for %q in column %s (row %d) and no default given", e.Key, e.Column, e.Row)
}

// TypeError reports a value of the wrong kind, such as text in a summed
// column or an unparsable date. Row is zero when the reporter does not know
// it, as inside an operation.
type TypeError struct {
	Column string
	Row    int
	Value  string
	Msg    string
}

func (e *TypeError) Error() string {
	if e.Row <= 0 {
		return fmt.Sprintf("column %s: %s (value: %q)", e.Column, e.Msg, e.Value)
	}
	return fmt.Sprintf("column %s, row %d: %s (value: %q)", e.Column, e.Row, e.Msg, e.Value)
}

// UnknownOperationError reports a custom operation that could not be bound.
type UnknownOperationError struct {
	Name   string
	Reason string
}

func (e *UnknownOperationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("operation %q is not defined", e.Name)
	}
	return fmt.Sprintf("operation %q: %s", e.Name, e.Reason)
}

// ReadError wraps a failure to read an input resource.
type ReadError struct {
	Resource string
	Err      error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("failed to read %s: %v", e.Resource, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// WriteError wraps a failure to write an output resource.
type WriteError struct {
	Resource string
	Err      error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to write %s: %v", e.Resource, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// HookError wraps an error returned by a custom operation.
type HookError struct {
	Operation string
	Row       int
	Err       error
}

func (e *HookError) Error() string {
	return fmt.Sprintf("operation %q failed on row %d: %v", e.Operation, e.Row, e.Err)
}

func (e *HookError) Unwrap() error { return e.Err }
