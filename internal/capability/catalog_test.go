package capability

import (
	"testing"

	"github.com/funvibe/shapeshift/internal/ast"
)

func TestCatalogLoads(t *testing.T) {
	if CatalogVersion() < 1 {
		t.Fatalf("expected catalog version >= 1, got %d", CatalogVersion())
	}
	builtins := builtinSchematics()
	for _, name := range []string{"AsRef", "Deref", "Add", "Index", "From", "Iterator", "Display", "Clone", "Default", "Write", "Error"} {
		s, ok := builtins[name]
		if !ok {
			t.Errorf("expected built-in %s", name)
			continue
		}
		if !s.Builtin {
			t.Errorf("%s: expected Builtin to be set", name)
		}
		if len(s.Methods) == 0 {
			t.Errorf("%s: expected at least one method", name)
		}
	}
}

func TestCatalogSchematics(t *testing.T) {
	builtins := builtinSchematics()

	add := builtins["Add"]
	if add.RequiredGenerics() != 0 || len(add.TypeGenerics()) != 1 {
		t.Fatalf("Add: expected one defaulted generic, got %d required of %d", add.RequiredGenerics(), len(add.TypeGenerics()))
	}
	if add.AssocDecl("Output") == nil {
		t.Fatal("Add: expected associated type Output")
	}
	if add.Methods[0].Receiver != ast.ReceiverValue {
		t.Fatalf("Add: expected by-value receiver, got %q", add.Methods[0].Receiver)
	}

	asRef := builtins["AsRef"]
	if asRef.RequiredGenerics() != 1 {
		t.Fatalf("AsRef: expected one required generic, got %d", asRef.RequiredGenerics())
	}
	if asRef.Methods[0].String() != "fn as_ref(&self) -> &T" {
		t.Fatalf("AsRef: unexpected method %s", asRef.Methods[0])
	}

	if builtins["Default"].Methods[0].Receiver != ast.ReceiverNone {
		t.Fatal("Default: expected a receiverless method")
	}

	hash := builtins["Hash"].Methods[0]
	if len(hash.Generics) != 1 || hash.Generics[0].Name != "H" {
		t.Fatalf("Hash: expected method generic H, got %s", hash)
	}
}

func TestBuiltinSchematicsAreCopied(t *testing.T) {
	a := builtinSchematics()
	delete(a, "Add")
	if _, ok := builtinSchematics()["Add"]; !ok {
		t.Fatal("deleting from one copy must not affect the catalog")
	}
}

func TestParseCatalogErrors(t *testing.T) {
	bad := []string{
		"capabilities: [",
		"capabilities:\n  - name: Broken\n    methods: [\"fn (&self)\"]\n",
		"capabilities:\n  - name: Broken\n    generics: [\"<T>\"]\n",
	}
	for _, src := range bad {
		if _, _, err := parseCatalog([]byte(src)); err == nil {
			t.Errorf("expected error for %q", src)
		}
	}
}
