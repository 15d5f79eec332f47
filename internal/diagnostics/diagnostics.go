// Package diagnostics defines the located errors produced by every stage of a
// synthesis invocation and their aggregation into a single report.
package diagnostics

import (
	"errors"
	"fmt"
	"strings"

	"github.com/funvibe/shapeshift/internal/token"
)

type ErrorCode string

const (
	// Pattern grammar
	ErrP001 ErrorCode = "P001" // unexpected token / unbalanced delimiter
	ErrP002 ErrorCode = "P002" // range marker without integer literal
	ErrP003 ErrorCode = "P003" // empty pattern
	ErrP004 ErrorCode = "P004" // variadic marker not last
	ErrP005 ErrorCode = "P005" // expected identifier or type
	ErrP006 ErrorCode = "P006" // duplicate named key
	ErrP007 ErrorCode = "P007" // forwarding marker on a relaxed bound

	// Shape matching
	ErrM001 ErrorCode = "M001" // variant matches no alternative
	ErrM002 ErrorCode = "M002" // type mismatch
	ErrM003 ErrorCode = "M003" // union has no variants
	ErrM004 ErrorCode = "M004" // named key missing from variant

	// Capabilities
	ErrC001 ErrorCode = "C001" // capability not found
	ErrC002 ErrorCode = "C002" // generic arity mismatch
	ErrC003 ErrorCode = "C003" // method has no receiver
	ErrC004 ErrorCode = "C004" // unknown associated type

	// Linking
	ErrL001 ErrorCode = "L001" // unsupported predicate
)

// Kind groups codes into the error families reported to users.
func (c ErrorCode) Kind() string {
	switch c {
	case ErrM001, ErrM004:
		return "pattern error"
	case ErrM002:
		return "type mismatch"
	case ErrM003:
		return "empty subject"
	case ErrC001:
		return "capability not found"
	case ErrC002, ErrC003, ErrC004:
		return "capability error"
	case ErrL001:
		return "unsupported predicate"
	}
	return "syntax error"
}

type DiagnosticError struct {
	Code    ErrorCode
	File    string
	Line    int
	Column  int
	Message string
	Token   token.Token
}

// NewError creates a diagnostic located at tok. When args are given, msg is
// used as a format string.
func NewError(code ErrorCode, tok token.Token, msg string, args ...interface{}) *DiagnosticError {
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	return &DiagnosticError{
		Code:    code,
		Line:    tok.Line,
		Column:  tok.Column,
		Message: msg,
		Token:   tok,
	}
}

func (e *DiagnosticError) Error() string {
	return e.Location() + ": [" + string(e.Code) + "] " + e.Message
}

// Location formats file:line:column, omitting unknown parts.
func (e *DiagnosticError) Location() string {
	var b strings.Builder
	if e.File != "" {
		b.WriteString(e.File)
		b.WriteString(":")
	}
	fmt.Fprintf(&b, "%d:%d", e.Line, e.Column)
	return b.String()
}

// AggregateError is the single diagnostic emitted when a synthesis invocation
// fails. Errors keep their accumulation order.
type AggregateError struct {
	Subject string
	Errors  []*DiagnosticError
}

// Aggregate wraps errs for subject. It returns nil when errs is empty.
func Aggregate(subject string, errs []*DiagnosticError) error {
	if len(errs) == 0 {
		return nil
	}
	cp := make([]*DiagnosticError, len(errs))
	copy(cp, errs)
	return &AggregateError{Subject: subject, Errors: cp}
}

func (a *AggregateError) Error() string {
	var b strings.Builder
	noun := "errors"
	if len(a.Errors) == 1 {
		noun = "error"
	}
	if a.Subject != "" {
		fmt.Fprintf(&b, "%s: %d %s", a.Subject, len(a.Errors), noun)
	} else {
		fmt.Fprintf(&b, "%d %s", len(a.Errors), noun)
	}
	for _, e := range a.Errors {
		b.WriteString("\n  ")
		b.WriteString(e.Error())
	}
	return b.String()
}

func (a *AggregateError) Unwrap() []error {
	out := make([]error, len(a.Errors))
	for i, e := range a.Errors {
		out[i] = e
	}
	return out
}

// Codes returns the codes of all aggregated errors in order.
func (a *AggregateError) Codes() []ErrorCode {
	out := make([]ErrorCode, len(a.Errors))
	for i, e := range a.Errors {
		out[i] = e.Code
	}
	return out
}

// AsAggregate unwraps err into an AggregateError if it is one.
func AsAggregate(err error) (*AggregateError, bool) {
	var agg *AggregateError
	if errors.As(err, &agg) {
		return agg, true
	}
	return nil, false
}
