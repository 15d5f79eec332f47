package parser_test

import (
	"strings"
	"testing"

	"github.com/funvibe/shapeshift/internal/diagnostics"
	"github.com/funvibe/shapeshift/internal/parser"
	"github.com/funvibe/shapeshift/internal/token"
)

// parseWithErrors parses a pattern and returns all diagnostic errors.
func parseWithErrors(input string) []*diagnostics.DiagnosticError {
	_, errs := parser.ParsePattern(input, token.Token{})
	return errs
}

// expectError asserts that an error with the given code is reported.
func expectError(t *testing.T, input string, code diagnostics.ErrorCode) *diagnostics.DiagnosticError {
	t.Helper()
	errs := parseWithErrors(input)
	if len(errs) == 0 {
		t.Fatalf("expected error %s, but got none\ninput: %s", code, input)
	}
	for _, e := range errs {
		if e.Code == code {
			return e
		}
	}
	var msgs []string
	for _, e := range errs {
		msgs = append(msgs, e.Error())
	}
	t.Fatalf("expected error %s, got:\n%s\ninput: %s", code, strings.Join(msgs, "\n"), input)
	return nil
}

// expectNoErrors asserts parsing succeeds without errors.
func expectNoErrors(t *testing.T, input string) {
	t.Helper()
	errs := parseWithErrors(input)
	if len(errs) > 0 {
		var msgs []string
		for _, e := range errs {
			msgs = append(msgs, e.Error())
		}
		t.Fatalf("expected no errors, got:\n%s\ninput: %s", strings.Join(msgs, "\n"), input)
	}
}

// ---------------------------------------------------------------------------
// P001 - Unexpected token / unbalanced delimiter
// ---------------------------------------------------------------------------

func TestP001_UnclosedParen(t *testing.T) {
	e := expectError(t, "(T", diagnostics.ErrP001)
	if !strings.Contains(e.Message, "unclosed '('") {
		t.Fatalf("expected unclosed paren message, got %q", e.Message)
	}
}

func TestP001_UnclosedBraceBeforePipe(t *testing.T) {
	e := expectError(t, "{ name: T | (T)", diagnostics.ErrP001)
	if e.Column != 11 {
		t.Fatalf("expected error at the pipe (column 11), got column %d", e.Column)
	}
}

func TestP001_UnclosedBrace(t *testing.T) {
	e := expectError(t, "{ a: T", diagnostics.ErrP001)
	if !strings.Contains(e.Message, "unclosed '{' opened at 1:1") {
		t.Fatalf("expected unclosed brace message, got %q", e.Message)
	}
}

func TestP001_UnclosedParenBeforeWhere(t *testing.T) {
	e := expectError(t, "(T, U where T: Clone", diagnostics.ErrP001)
	if !strings.Contains(e.Message, "unclosed '('") {
		t.Fatalf("expected unclosed paren message, got %q", e.Message)
	}
}

func TestP001_AdjacentGroups(t *testing.T) {
	expectError(t, "(T) (U)", diagnostics.ErrP001)
}

func TestP001_BracketAlternative(t *testing.T) {
	e := expectError(t, "[T]", diagnostics.ErrP001)
	if !strings.Contains(e.Message, "found '['") {
		t.Fatalf("expected message to quote the token, got %q", e.Message)
	}
}

func TestP001_MissingComma(t *testing.T) {
	expectError(t, "(T; U)", diagnostics.ErrP001)
}

func TestP001_UnclosedGenericArgs(t *testing.T) {
	expectError(t, "(Vec<T)", diagnostics.ErrP001)
}

// ---------------------------------------------------------------------------
// P002 - Range marker without integer
// ---------------------------------------------------------------------------

func TestP002_RangeWithIdent(t *testing.T) {
	expectError(t, "(T, ..x)", diagnostics.ErrP002)
}

func TestP002_InclusiveRangeWithoutInt(t *testing.T) {
	expectError(t, "(T, ..=)", diagnostics.ErrP002)
}

// ---------------------------------------------------------------------------
// P003 - Empty pattern
// ---------------------------------------------------------------------------

func TestP003_Empty(t *testing.T) {
	for _, input := range []string{"", "   ", "\n\t"} {
		expectError(t, input, diagnostics.ErrP003)
	}
}

func TestP003_OnlyWhereClause(t *testing.T) {
	expectError(t, "where T: Clone", diagnostics.ErrP003)
}

// ---------------------------------------------------------------------------
// P004 - Variadic marker not last
// ---------------------------------------------------------------------------

func TestP004_VariadicFirst(t *testing.T) {
	expectError(t, "(.., T)", diagnostics.ErrP004)
}

func TestP004_VariadicInNamedGroup(t *testing.T) {
	expectError(t, "{ .., name: T }", diagnostics.ErrP004)
}

// ---------------------------------------------------------------------------
// P005 - Expected identifier or type
// ---------------------------------------------------------------------------

func TestP005_NumericKey(t *testing.T) {
	expectError(t, "{ 1: T }", diagnostics.ErrP005)
}

func TestP005_DanglingWhere(t *testing.T) {
	expectError(t, "(T) where", diagnostics.ErrP005)
}

func TestP005_PathSeparatorWithoutName(t *testing.T) {
	expectError(t, "(std::)", diagnostics.ErrP005)
}

// ---------------------------------------------------------------------------
// P006 - Duplicate named key
// ---------------------------------------------------------------------------

func TestP006_DuplicateKey(t *testing.T) {
	e := expectError(t, "{ a: T, a: U }", diagnostics.ErrP006)
	if e.Column != 9 {
		t.Fatalf("expected the second key to be reported (column 9), got column %d", e.Column)
	}
}

// ---------------------------------------------------------------------------
// P007 - Forwarded relaxed bound
// ---------------------------------------------------------------------------

func TestP007_ForwardedRelaxedBound(t *testing.T) {
	expectError(t, "(T) where T: ^?Sized", diagnostics.ErrP007)
}

// ---------------------------------------------------------------------------
// Recovery
// ---------------------------------------------------------------------------

func TestErrorsInSeveralAlternatives(t *testing.T) {
	errs := parseWithErrors("(T; U) | { 1: T } | (T)")
	if len(errs) != 2 {
		t.Fatalf("expected 2 errors, got %d: %v", len(errs), errs)
	}
	if errs[0].Code != diagnostics.ErrP001 || errs[1].Code != diagnostics.ErrP005 {
		t.Fatalf("expected [P001 P005], got [%s %s]", errs[0].Code, errs[1].Code)
	}
}

func TestErrorPositionsAreRelativeToAnchor(t *testing.T) {
	_, errs := parser.ParsePattern("(T", token.Token{Line: 7, Column: 12})
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %d", len(errs))
	}
	if errs[0].Line != 7 || errs[0].Column != 14 {
		t.Fatalf("expected error at 7:14, got %d:%d", errs[0].Line, errs[0].Column)
	}
}

// ---------------------------------------------------------------------------
// Accepted forms
// ---------------------------------------------------------------------------

func TestAcceptedPatterns(t *testing.T) {
	inputs := []string{
		"(T)",
		"(T,)",
		"()",
		"{}",
		"(T, ..)",
		"(T, ..2)",
		"(T, ..=2)",
		"$(T) | ${ name: T }",
		"(T) |",
		"| (T)",
		"(T) | | { a: T }",
		"(&'a mut [u8; 4], (i32, T), dyn Display + Send)",
		"(T) where T: Clone + ^Echo, i32: Copy, 'a: 'b",
		"(T) where T: ^std::ops::Add<Output = T>",
		"(Box<dyn std::error::Error + 'static>)",
	}
	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			expectNoErrors(t, input)
		})
	}
}
