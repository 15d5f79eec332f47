package prettyprinter

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/funvibe/shapeshift/internal/ast"
	"github.com/funvibe/shapeshift/internal/parser"
	"github.com/funvibe/shapeshift/internal/shapetest"
	"github.com/funvibe/shapeshift/internal/token"
	"github.com/funvibe/shapeshift/internal/typesystem"
)

func predicate(t *testing.T, src string) *ast.Predicate {
	t.Helper()
	p, err := parser.ParsePredicate(src, token.Token{})
	if err != nil {
		t.Fatalf("predicate %q: %v", src, err)
	}
	return p
}

func TestPrintUnion(t *testing.T) {
	u := shapetest.Union(t, "Shape", "",
		shapetest.Tuple(t, "Circle", "f64"),
		shapetest.Struct(t, "Rect", "w: f64", "h: f64"),
		shapetest.Struct(t, "Empty"),
		shapetest.Unit("Point"),
	)
	p := NewCodePrinter()
	p.PrintUnion(u)

	expected := `enum Shape {
    Circle(f64),
    Rect { w: f64, h: f64 },
    Empty {},
    Point,
}
`
	if diff := cmp.Diff(expected, p.String()); diff != "" {
		t.Fatalf("PrintUnion mismatch (-want +got):\n%s", diff)
	}
}

func TestPrintUnionWithGenericsAndWhere(t *testing.T) {
	u := shapetest.Generic(t, shapetest.Union(t, "Wrap", "",
		shapetest.Tuple(t, "One", "T"),
	), "T: Clone", "E = Error")
	u.Where = []*ast.Predicate{predicate(t, "T: Debug + Send")}

	p := NewCodePrinter()
	p.PrintUnion(u)

	expected := `enum Wrap<T: Clone, E = Error>
where
    T: Debug + Send,
{
    One(T),
}
`
	if diff := cmp.Diff(expected, p.String()); diff != "" {
		t.Fatalf("PrintUnion mismatch (-want +got):\n%s", diff)
	}
}

func TestPrintImpl(t *testing.T) {
	u := shapetest.Generic(t, shapetest.Union(t, "Num", ""), "T = i32")
	sig, err := parser.ParseMethodSig("fn add(self, rhs: i32) -> Self::Output", token.Token{})
	if err != nil {
		t.Fatal(err)
	}
	impl := &ast.ImplBlock{
		Generics: u.Generics,
		Trait:    shapetest.Type(t, "Add<i32>"),
		SelfType: u.SelfType(),
		Where:    []*ast.Predicate{predicate(t, "T: Add<i32>")},
		AssocTypes: []typesystem.AssocBinding{
			{Name: "Output", Type: shapetest.Type(t, "i32")},
		},
		Methods: []*ast.ImplMethod{{
			Sig:       sig,
			Scrutinee: "self",
			Arms: []*ast.MatchArm{
				{
					Pattern: ast.ArmPattern{Union: "Num", Variant: "Int", Kind: ast.GroupUnnamed, Elements: []string{"val"}},
					Body:    &ast.MethodCallExpr{Receiver: "val", Method: "add", Args: []string{"rhs"}},
				},
				{
					Pattern:  ast.ArmPattern{Union: "Num", Variant: "Zero", Kind: ast.GroupUnit},
					Body:     &ast.RawExpr{Text: "Default::default()"},
					Fallback: true,
				},
			},
		}},
	}

	p := NewCodePrinter()
	p.PrintImpl(impl)

	expected := `impl<T> Add<i32> for Num<T>
where
    T: Add<i32>,
{
    type Output = i32;

    fn add(self, rhs: i32) -> Self::Output {
        match self {
            Num::Int(val) => val.add(rhs),
            Num::Zero => Default::default(),
        }
    }
}
`
	if diff := cmp.Diff(expected, p.String()); diff != "" {
		t.Fatalf("PrintImpl mismatch (-want +got):\n%s", diff)
	}
}

func TestPrintFile(t *testing.T) {
	u := shapetest.Union(t, "Unit", "", shapetest.Unit("Only"))
	sig, err := parser.ParseMethodSig("fn echo(&self)", token.Token{})
	if err != nil {
		t.Fatal(err)
	}
	impl := &ast.ImplBlock{
		Trait:    shapetest.Type(t, "Echo"),
		SelfType: u.SelfType(),
		Methods: []*ast.ImplMethod{{
			Sig:       sig,
			Scrutinee: "self",
			Arms: []*ast.MatchArm{{
				Pattern: ast.ArmPattern{Union: "Unit", Variant: "Only", Kind: ast.GroupUnit},
				Body:    &ast.RawExpr{Text: "()"},
			}},
		}},
	}

	p := NewCodePrinter()
	p.PrintFile("// generated\n", u, []*ast.ImplBlock{impl})

	expected := `// generated

enum Unit {
    Only,
}

impl Echo for Unit {
    fn echo(&self) {
        match self {
            Unit::Only => (),
        }
    }
}
`
	if diff := cmp.Diff(expected, p.String()); diff != "" {
		t.Fatalf("PrintFile mismatch (-want +got):\n%s", diff)
	}
}

func TestPrintNil(t *testing.T) {
	p := NewCodePrinter()
	p.PrintUnion(nil)
	p.PrintImpl(nil)
	if p.String() != "nilnil" {
		t.Fatalf("expected nilnil, got %q", p.String())
	}
}
