package typesystem

import (
	"errors"
	"strings"
	"testing"
)

var (
	tI32    = TCon{Name: "i32"}
	tString = TCon{Name: "String"}
	tT      = TVar{Name: "T"}
	tU      = TVar{Name: "U"}
)

func vec(elem Type) Type {
	return TApp{Constructor: TCon{Name: "Vec"}, Args: []Type{elem}}
}

func TestUnify(t *testing.T) {
	tests := []struct {
		name     string
		pattern  Type
		actual   Type
		expected map[string]string
	}{
		{"placeholder", tT, tI32, map[string]string{"T": "i32"}},
		{"wildcard", TInfer{}, vec(tString), map[string]string{}},
		{"concrete", tI32, tI32, map[string]string{}},
		{"structural", vec(tT), vec(tString), map[string]string{"T": "String"}},
		{"nested wildcard", vec(TInfer{}), vec(vec(tI32)), map[string]string{}},
		{
			"reference with elided lifetime",
			TRef{Elem: tT},
			TRef{Lifetime: "'a", Elem: tString},
			map[string]string{"T": "String"},
		},
		{
			"tuple",
			TTuple{Elements: []Type{tT, tU}},
			TTuple{Elements: []Type{tI32, tString}},
			map[string]string{"T": "i32", "U": "String"},
		},
		{
			"repeated placeholder agrees",
			TTuple{Elements: []Type{tT, tT}},
			TTuple{Elements: []Type{tI32, tI32}},
			map[string]string{"T": "i32"},
		},
		{"array", TArray{Elem: tT, Len: "4"}, TArray{Elem: tI32, Len: "4"}, map[string]string{"T": "i32"}},
		{"slice", TSlice{Elem: tT}, TSlice{Elem: tI32}, map[string]string{"T": "i32"}},
		{
			"binding",
			TApp{Constructor: TCon{Name: "Box"}, Args: []Type{TObject{Keyword: "dyn", Bounds: []Type{
				TApp{Constructor: TCon{Name: "Iterator"}, Bindings: []AssocBinding{{Name: "Item", Type: tT}}},
			}}}},
			TApp{Constructor: TCon{Name: "Box"}, Args: []Type{TObject{Keyword: "dyn", Bounds: []Type{
				TApp{Constructor: TCon{Name: "Iterator"}, Bindings: []AssocBinding{{Name: "Item", Type: tI32}}},
			}}}},
			map[string]string{"T": "i32"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Unify(tt.pattern, tt.actual)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(s) != len(tt.expected) {
				t.Fatalf("expected %d bindings, got %v", len(tt.expected), s)
			}
			for k, v := range tt.expected {
				if got, ok := s[k]; !ok || got.String() != v {
					t.Errorf("expected %s = %s, got %v", k, v, got)
				}
			}
		})
	}
}

func TestUnifyMismatch(t *testing.T) {
	tests := []struct {
		name    string
		pattern Type
		actual  Type
		message string
	}{
		{"different constructors", vec(tT), TApp{Constructor: TCon{Name: "Option"}, Args: []Type{tI32}}, "found `Option<i32>` but expected `Vec<T>`"},
		{"concrete", tI32, tString, "found `String` but expected `i32`"},
		{"mutability", TRef{Elem: tT}, TRef{Mutable: true, Elem: tI32}, "found `&mut i32` but expected `&T`"},
		{"named lifetime", TRef{Lifetime: "'static", Elem: tT}, TRef{Lifetime: "'a", Elem: tI32}, "found `&'a i32` but expected `&'static T`"},
		{"tuple arity", TTuple{Elements: []Type{tT}}, TTuple{Elements: []Type{tI32, tI32}}, "found `(i32, i32)` but expected `(T,)`"},
		{"array length", TArray{Elem: tT, Len: "4"}, TArray{Elem: tI32, Len: "8"}, "found `[i32; 8]` but expected `[T; 4]`"},
		{
			"outermost pair reported",
			TTuple{Elements: []Type{tT, vec(tI32)}},
			TTuple{Elements: []Type{tString, vec(tString)}},
			"found `(String, Vec<String>)` but expected `(String, Vec<i32>)`",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Unify(tt.pattern, tt.actual)
			var mismatch *MismatchError
			if !errors.As(err, &mismatch) {
				t.Fatalf("expected MismatchError, got %v", err)
			}
			if err.Error() != tt.message {
				t.Fatalf("expected %q, got %q", tt.message, err.Error())
			}
		})
	}
}

func TestUnifyConflict(t *testing.T) {
	_, err := Unify(TTuple{Elements: []Type{tT, tT}}, TTuple{Elements: []Type{tI32, tString}})
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if conflict.Placeholder != "T" || conflict.Bound.String() != "i32" || conflict.Found.String() != "String" {
		t.Fatalf("unexpected conflict %+v", conflict)
	}
	if !strings.Contains(err.Error(), "placeholder T is already bound to `i32`") {
		t.Fatalf("expected message to name the earlier binding, got %q", err.Error())
	}
}

func TestUnifyWithDoesNotModifyBound(t *testing.T) {
	bound := Subst{"T": tI32}
	s, err := UnifyWith(TTuple{Elements: []Type{tT, tU}}, TTuple{Elements: []Type{tI32, tString}}, bound)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bound) != 1 {
		t.Fatalf("expected bound to be unchanged, got %v", bound)
	}
	if s["U"].String() != "String" {
		t.Fatalf("expected U = String, got %v", s["U"])
	}

	if _, err := UnifyWith(tT, tString, bound); err == nil {
		t.Fatal("expected earlier binding to win")
	}
}
