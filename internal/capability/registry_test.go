package capability

import (
	"sync"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/funvibe/shapeshift/internal/ast"
	"github.com/funvibe/shapeshift/internal/parser"
	"github.com/funvibe/shapeshift/internal/token"
)

func decl(t *testing.T, name string, line int, methods ...string) *ast.CapabilityDecl {
	t.Helper()
	d := &ast.CapabilityDecl{Token: token.Token{Type: token.IDENT, Lexeme: name, Line: line, Column: 1}, Name: name}
	for _, m := range methods {
		sig, err := parser.ParseMethodSig(m, token.Token{})
		if err != nil {
			t.Fatalf("parse %q: %v", m, err)
		}
		d.Methods = append(d.Methods, sig)
	}
	return d
}

type recordingObserver struct {
	mu       sync.Mutex
	events   []string
	replaced []bool
	size     int
}

func (o *recordingObserver) CapabilityRegistered(name string, replaced bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, name)
	o.replaced = append(o.replaced, replaced)
}

func (o *recordingObserver) RegistrySize(n int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.size = n
}

func TestRegisterAndResolve(t *testing.T) {
	r := NewRegistry(WithoutBuiltins())
	if _, ok := r.Resolve("Echo"); ok {
		t.Fatal("expected empty registry")
	}
	r.Register(decl(t, "Echo", 1, "fn echo(&self) -> String"))

	s, ok := r.Resolve("Echo")
	if !ok {
		t.Fatal("expected Echo to resolve")
	}
	if s.Builtin || s.Origin.Line != 1 {
		t.Fatalf("unexpected schematic %+v", s)
	}
}

func TestLastRegistrationWins(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	r := NewRegistry(WithoutBuiltins(), WithLogger(zap.New(core)))

	r.Register(decl(t, "Echo", 1, "fn echo(&self) -> String"))
	r.Register(decl(t, "Echo", 9, "fn shout(&self) -> String"))

	s, _ := r.Resolve("Echo")
	if s.Methods[0].Name != "shout" {
		t.Fatalf("expected later declaration to win, got %s", s.Methods[0].Name)
	}
	if logs.Len() != 1 {
		t.Fatalf("expected one replacement warning, got %d", logs.Len())
	}
	fields := logs.All()[0].ContextMap()
	if fields["capability"] != "Echo" || fields["previous_line"] != int64(1) || fields["line"] != int64(9) {
		t.Fatalf("unexpected log fields %v", fields)
	}
}

func TestUserRegistrationShadowsBuiltin(t *testing.T) {
	r := NewRegistry()
	builtin, ok := r.Resolve("Display")
	if !ok || !builtin.Builtin {
		t.Fatal("expected built-in Display")
	}
	r.Register(decl(t, "Display", 4, "fn fmt(&self) -> String"))

	s, _ := r.Resolve("Display")
	if s.Builtin {
		t.Fatal("expected user registration to shadow the built-in")
	}
	if other, _ := NewRegistry().Resolve("Display"); !other.Builtin {
		t.Fatal("shadowing must not leak into other registries")
	}
}

func TestResolvePathFallsBackToLastSegment(t *testing.T) {
	r := NewRegistry()
	s, ok := r.Resolve("std::ops::Add")
	if !ok || s.Name != "Add" {
		t.Fatalf("expected std::ops::Add to resolve to Add, got %v", s)
	}
	if _, ok := r.Resolve("std::ops::Nope"); ok {
		t.Fatal("expected unknown path to fail")
	}

	r.Register(decl(t, "my::Add", 2, "fn add(self) -> i32"))
	if s, _ := r.Resolve("my::Add"); s.Builtin {
		t.Fatal("expected exact path match to win over the fallback")
	}
}

func TestNamesAndObserver(t *testing.T) {
	obs := &recordingObserver{}
	r := NewRegistry(WithoutBuiltins(), WithObserver(obs))
	r.Register(decl(t, "B", 1, "fn b(&self)"))
	r.Register(decl(t, "A", 2, "fn a(&self)"))
	r.Register(decl(t, "B", 3, "fn b(&self)"))

	names := r.Names()
	if len(names) != 2 || names[0] != "A" || names[1] != "B" {
		t.Fatalf("expected [A B], got %v", names)
	}
	if len(obs.events) != 3 || obs.replaced[0] || obs.replaced[1] || !obs.replaced[2] {
		t.Fatalf("unexpected observer events %v %v", obs.events, obs.replaced)
	}
	if obs.size != 2 {
		t.Fatalf("expected registry size 2, got %d", obs.size)
	}
}

func TestConcurrentRegistration(t *testing.T) {
	r := NewRegistry()
	base := r.Len()
	names := []string{"C0", "C1", "C2", "C3", "C4", "C5", "C6", "C7"}

	var wg sync.WaitGroup
	for _, n := range names {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			r.Register(&ast.CapabilityDecl{Name: name})
			r.Resolve(name)
			r.Names()
		}(n)
	}
	wg.Wait()

	if r.Len() != base+len(names) {
		t.Fatalf("expected %d names, got %d", base+len(names), r.Len())
	}
}
