// Package manifest loads shapeshift.yaml: capability declarations to
// register and tagged unions to synthesize.
//
// A manifest looks like:
//
//	output:
//	  file: shapes_gen.rs
//	capabilities:
//	  - name: Echo
//	    methods:
//	      - fn echo(&self) -> String
//	unions:
//	  - name: Shape
//	    generics: [T]
//	    pattern: "(T) | { name: T, .. } | where T: ^Echo"
//	    variants:
//	      - name: Circle
//	        fields: [f64]
//	      - name: Rect
//	        fields: { name: String, width: f64 }
//	      - name: Empty
//
// Sequences declare unnamed fields, mappings declare named fields in
// document order, and a variant without fields is a unit variant.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/funvibe/shapeshift/internal/config"
)

// Manifest represents the top-level shapeshift.yaml.
type Manifest struct {
	Output       Output           `yaml:"output"`
	Capabilities []CapabilitySpec `yaml:"capabilities"`
	Unions       []UnionSpec      `yaml:"unions"`

	// Path is the file the manifest was read from; diagnostics use it.
	Path string `yaml:"-"`
}

type Output struct {
	// File is relative to the manifest directory.
	File string `yaml:"file,omitempty"`

	// Header is written at the top of the generated file.
	Header string `yaml:"header,omitempty"`
}

// CapabilitySpec declares a capability interface for registration.
type CapabilitySpec struct {
	Name     string   `yaml:"name"`
	Generics []string `yaml:"generics,omitempty"`
	Types    []string `yaml:"types,omitempty"`
	Methods  []string `yaml:"methods,omitempty"`

	pos      position
	generics []position
	types    []position
	methods  []position
}

// UnionSpec declares a tagged union and its shape pattern.
type UnionSpec struct {
	Name     string        `yaml:"name"`
	Generics []string      `yaml:"generics,omitempty"`
	Where    []string      `yaml:"where,omitempty"`
	Pattern  string        `yaml:"pattern"`
	Variants []VariantSpec `yaml:"variants"`

	pos        position
	patternPos position
	generics   []position
	where      []position
}

type VariantSpec struct {
	Name   string    `yaml:"name"`
	Fields yaml.Node `yaml:"fields,omitempty"`

	pos position
}

// LoadManifest reads and parses a shapeshift.yaml file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}
	return ParseManifest(data, path)
}

// ParseManifest parses manifest content from bytes.
// The path argument is used only for error messages.
func ParseManifest(data []byte, path string) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	m.Path = path
	if err := m.validate(); err != nil {
		return nil, err
	}
	m.setDefaults()
	return &m, nil
}

// FindManifest searches for a manifest starting from dir and walking up to
// parent directories. It returns "" and a nil error when none is found.
func FindManifest(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}

	for {
		for _, name := range config.ManifestFileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			return "", nil
		}
		dir = parent
	}
}

// validate checks the manifest for structural errors. Pattern and type
// syntax is checked later, when declarations are built.
func (m *Manifest) validate() error {
	if len(m.Capabilities) == 0 && len(m.Unions) == 0 {
		return fmt.Errorf("%s: no capabilities or unions defined", m.Path)
	}

	for i, c := range m.Capabilities {
		if c.Name == "" {
			return fmt.Errorf("%s: capabilities[%d]: name is required", m.Path, i)
		}
	}

	seenUnions := make(map[string]int)
	for i, u := range m.Unions {
		if u.Name == "" {
			return fmt.Errorf("%s: unions[%d]: name is required", m.Path, i)
		}
		if prev, ok := seenUnions[u.Name]; ok {
			return fmt.Errorf("%s: unions[%d]: union %q already declared at unions[%d]", m.Path, i, u.Name, prev)
		}
		seenUnions[u.Name] = i

		seenVariants := make(map[string]bool)
		for j, v := range u.Variants {
			if v.Name == "" {
				return fmt.Errorf("%s: unions[%d].variants[%d] (%s): name is required", m.Path, i, j, u.Name)
			}
			if seenVariants[v.Name] {
				return fmt.Errorf("%s: unions[%d].variants[%d] (%s): duplicate variant %q", m.Path, i, j, u.Name, v.Name)
			}
			seenVariants[v.Name] = true

			switch v.Fields.Kind {
			case 0, yaml.SequenceNode, yaml.MappingNode:
			case yaml.ScalarNode:
				if v.Fields.Tag != "!!null" {
					return fmt.Errorf("%s: unions[%d].variants[%d] (%s::%s): fields must be a list or a mapping",
						m.Path, i, j, u.Name, v.Name)
				}
			default:
				return fmt.Errorf("%s: unions[%d].variants[%d] (%s::%s): fields must be a list or a mapping",
					m.Path, i, j, u.Name, v.Name)
			}
		}
	}
	return nil
}

// setDefaults fills in default values for omitted fields.
func (m *Manifest) setDefaults() {
	if m.Output.File == "" {
		m.Output.File = config.DefaultOutputFile
	}
	if m.Output.Header == "" {
		m.Output.Header = config.GeneratedHeader
	}
}

// OutputPath resolves Output.File against the manifest directory.
func (m *Manifest) OutputPath() string {
	if filepath.IsAbs(m.Output.File) {
		return m.Output.File
	}
	return filepath.Join(filepath.Dir(m.Path), m.Output.File)
}
