package parser

import (
	"testing"

	"github.com/funvibe/shapeshift/internal/token"
)

// FuzzParsePattern checks that arbitrary annotations never panic and that a
// clean parse always yields at least one alternative.
func FuzzParsePattern(f *testing.F) {
	f.Add("(T)")
	f.Add("(T, ..) | { name: T, .. } | where T: Clone + ^Echo")
	f.Add("(Vec<T>, &'a mut U, ..=2) | $ | where (T, U): Hash, 'a: 'b")
	f.Add("{ a: T, a: U }")
	f.Add("(T, ..x")
	f.Add("| where T: ?^Sized")

	f.Fuzz(func(t *testing.T, src string) {
		pat, errs := ParsePattern(src, token.Token{Line: 1, Column: 1})
		if pat == nil {
			t.Fatal("ParsePattern returned nil")
		}
		if len(errs) == 0 && len(pat.Alternatives) == 0 {
			t.Fatalf("%q parsed without alternatives", src)
		}
		for _, e := range errs {
			if e.Line < 1 {
				t.Fatalf("%q: diagnostic without position: %v", src, e)
			}
		}
	})
}

func FuzzParseType(f *testing.F) {
	f.Add("Vec<Option<&'a str>>")
	f.Add("(u8,)")
	f.Add("dyn Display + Send")
	f.Add("[u8; 4]")
	f.Add("fn(")

	f.Fuzz(func(t *testing.T, src string) {
		typ, err := ParseType(src)
		if err == nil && typ == nil {
			t.Fatalf("%q: no type and no error", src)
		}
	})
}
