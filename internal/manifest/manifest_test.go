package manifest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/funvibe/shapeshift/internal/ast"
	"github.com/funvibe/shapeshift/internal/config"
	"github.com/funvibe/shapeshift/internal/diagnostics"
)

const shapes = `output:
  file: out/shapes_gen.rs
capabilities:
  - name: Echo
    methods:
      - fn echo(&self) -> String
unions:
  - name: Shape
    generics: [T]
    pattern: "(T) | { name: T, .. } | where T: ^Echo"
    variants:
      - name: Circle
        fields: [f64]
      - name: Rect
        fields: { name: String, width: f64 }
      - Empty
`

func TestParseManifest(t *testing.T) {
	m, err := ParseManifest([]byte(shapes), "/work/shapeshift.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Output.Header != config.GeneratedHeader {
		t.Fatalf("expected default header, got %q", m.Output.Header)
	}
	if got := m.OutputPath(); got != filepath.Join("/work", "out", "shapes_gen.rs") {
		t.Fatalf("unexpected output path %q", got)
	}

	unions, err := m.UnionDecls()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	u := unions[0]
	if u.Name != "Shape" || len(u.Generics) != 1 || len(u.Variants) != 3 {
		t.Fatalf("unexpected union %+v", u)
	}
	kinds := []ast.GroupKind{ast.GroupUnnamed, ast.GroupNamed, ast.GroupUnit}
	for i, v := range u.Variants {
		if v.Fields.Kind != kinds[i] {
			t.Errorf("variant %s: expected kind %v, got %v", v.Name, kinds[i], v.Fields.Kind)
		}
	}
	if rect := u.Variants[1].Fields; rect.Fields[0].Name != "name" || rect.Fields[1].Name != "width" {
		t.Fatal("expected named fields in document order")
	}

	caps, err := m.CapabilityDecls()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(caps) != 1 || caps[0].Methods[0].Receiver != ast.ReceiverRef {
		t.Fatalf("unexpected capabilities %+v", caps)
	}
}

func TestManifestPositions(t *testing.T) {
	m, err := ParseManifest([]byte(shapes), "shapeshift.yaml")
	if err != nil {
		t.Fatal(err)
	}
	unions, err := m.UnionDecls()
	if err != nil {
		t.Fatal(err)
	}
	u := unions[0]
	if u.Token.Line != 8 || u.Token.Column != 5 {
		t.Fatalf("expected union at 8:5, got %d:%d", u.Token.Line, u.Token.Column)
	}
	// Past the opening quote.
	if u.PatternToken.Line != 10 || u.PatternToken.Column != 15 {
		t.Fatalf("expected pattern at 10:15, got %d:%d", u.PatternToken.Line, u.PatternToken.Column)
	}
	if v := u.Variants[2]; v.Token.Line != 16 || v.Token.Column != 9 {
		t.Fatalf("expected Empty at 16:9, got %d:%d", v.Token.Line, v.Token.Column)
	}
}

func TestManifestValidation(t *testing.T) {
	tests := []struct {
		name string
		src  string
		msg  string
	}{
		{"empty", "output:\n  file: x.rs\n", "no capabilities or unions defined"},
		{"unnamed capability", "capabilities:\n  - methods: []\n", "capabilities[0]: name is required"},
		{"unnamed union", "unions:\n  - pattern: (T)\n", "unions[0]: name is required"},
		{"duplicate union", "unions:\n  - name: A\n  - name: A\n", `union "A" already declared at unions[0]`},
		{"duplicate variant", "unions:\n  - name: A\n    variants: [B, B]\n", `duplicate variant "B"`},
		{"scalar fields", "unions:\n  - name: A\n    variants:\n      - name: B\n        fields: i32\n", "fields must be a list or a mapping"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseManifest([]byte(tt.src), "m.yaml")
			if err == nil || !strings.Contains(err.Error(), tt.msg) {
				t.Fatalf("expected error containing %q, got %v", tt.msg, err)
			}
		})
	}
}

func TestNullFieldsIsUnit(t *testing.T) {
	src := "unions:\n  - name: A\n    pattern: \"|\"\n    variants:\n      - name: B\n        fields:\n"
	m, err := ParseManifest([]byte(src), "m.yaml")
	if err != nil {
		t.Fatal(err)
	}
	unions, err := m.UnionDecls()
	if err != nil {
		t.Fatal(err)
	}
	if unions[0].Variants[0].Fields.Kind != ast.GroupUnit {
		t.Fatal("expected a unit variant")
	}
}

func TestDeclErrorsCarryPath(t *testing.T) {
	src := `unions:
  - name: A
    pattern: (T)
    variants:
      - name: B
        fields: ["Vec<"]
capabilities:
  - name: Bad
    methods:
      - fn (&self)
`
	m, err := ParseManifest([]byte(src), "bad.yaml")
	if err != nil {
		t.Fatal(err)
	}

	_, err = m.UnionDecls()
	agg, ok := diagnostics.AsAggregate(err)
	if !ok {
		t.Fatalf("expected aggregate error, got %v", err)
	}
	if agg.Errors[0].File != "bad.yaml" || agg.Errors[0].Line != 6 {
		t.Fatalf("expected error at bad.yaml:6, got %s", agg.Errors[0].Location())
	}

	caps, err := m.CapabilityDecls()
	if caps != nil || err == nil {
		t.Fatal("expected the broken capability to be rejected")
	}
	agg, _ = diagnostics.AsAggregate(err)
	if agg.Errors[0].Line != 10 {
		t.Fatalf("expected error on the method line, got %d", agg.Errors[0].Line)
	}
}

func TestFindManifest(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	path, err := FindManifest(nested)
	if err != nil {
		t.Fatal(err)
	}
	// Another manifest might exist above the temp dir; it must not be ours.
	if strings.HasPrefix(path, root) {
		t.Fatalf("expected no manifest under %s, got %s", root, path)
	}

	want := filepath.Join(root, "a", config.ManifestFileName)
	if err := os.WriteFile(want, []byte(shapes), 0o644); err != nil {
		t.Fatal(err)
	}
	path, err = FindManifest(nested)
	if err != nil {
		t.Fatal(err)
	}
	if path != want {
		t.Fatalf("expected %s, got %s", want, path)
	}
}

func TestLoadManifestMissingFile(t *testing.T) {
	_, err := LoadManifest(filepath.Join(t.TempDir(), "none.yaml"))
	if err == nil || !strings.Contains(err.Error(), "reading manifest") {
		t.Fatalf("expected read error, got %v", err)
	}
}
