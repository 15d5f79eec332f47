package capability

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/funvibe/shapeshift/internal/ast"
	"github.com/funvibe/shapeshift/internal/parser"
	"github.com/funvibe/shapeshift/internal/token"
)

//go:embed catalog.yaml
var catalogSource []byte

type catalogFile struct {
	Version      int            `yaml:"version"`
	Capabilities []catalogEntry `yaml:"capabilities"`
}

type catalogEntry struct {
	Name       string   `yaml:"name"`
	Generics   []string `yaml:"generics"`
	Associated []string `yaml:"associated"`
	Methods    []string `yaml:"methods"`
}

var (
	catalogOnce    sync.Once
	catalog        map[string]*Schematic
	catalogVersion int
)

// CatalogVersion is the version of the embedded built-in catalog.
func CatalogVersion() int {
	loadCatalog()
	return catalogVersion
}

// builtinSchematics returns a fresh map over the shared, immutable built-in
// schematics.
func builtinSchematics() map[string]*Schematic {
	loadCatalog()
	m := make(map[string]*Schematic, len(catalog))
	for k, v := range catalog {
		m[k] = v
	}
	return m
}

func loadCatalog() {
	catalogOnce.Do(func() {
		var err error
		catalog, catalogVersion, err = parseCatalog(catalogSource)
		if err != nil {
			// The catalog is compiled in; a parse failure is a build defect.
			panic(fmt.Sprintf("capability: invalid built-in catalog: %v", err))
		}
	})
}

func parseCatalog(data []byte) (map[string]*Schematic, int, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, 0, err
	}
	out := make(map[string]*Schematic, len(f.Capabilities))
	for _, e := range f.Capabilities {
		decl, err := e.decl()
		if err != nil {
			return nil, 0, fmt.Errorf("%s: %w", e.Name, err)
		}
		s := FromDecl(decl)
		s.Builtin = true
		out[s.Name] = s
	}
	return out, f.Version, nil
}

func (e catalogEntry) decl() (*ast.CapabilityDecl, error) {
	decl := &ast.CapabilityDecl{
		Token: token.Token{Type: token.IDENT, Lexeme: e.Name, Literal: e.Name},
		Name:  e.Name,
	}
	for _, g := range e.Generics {
		gp, err := parser.ParseGenericParam(g, token.Token{})
		if err != nil {
			return nil, err
		}
		decl.Generics = append(decl.Generics, gp)
	}
	for _, a := range e.Associated {
		at, err := parser.ParseAssocType(a, token.Token{})
		if err != nil {
			return nil, err
		}
		decl.Assoc = append(decl.Assoc, at)
	}
	for _, m := range e.Methods {
		sig, err := parser.ParseMethodSig(m, token.Token{})
		if err != nil {
			return nil, err
		}
		decl.Methods = append(decl.Methods, sig)
	}
	return decl, nil
}
