package manifest

import (
	"gopkg.in/yaml.v3"

	"github.com/funvibe/shapeshift/internal/token"
)

// position is where a scalar's text starts in the manifest.
type position struct {
	line, column int
}

func (p position) token() token.Token {
	return token.Token{Line: p.line, Column: p.column}
}

// scalarStart locates the first character of a scalar's value. Block
// scalars start on the next line, indented one level below key.
func scalarStart(key, n *yaml.Node) position {
	switch n.Style {
	case yaml.DoubleQuotedStyle, yaml.SingleQuotedStyle:
		return position{n.Line, n.Column + 1}
	case yaml.LiteralStyle, yaml.FoldedStyle:
		col := 3
		if key != nil {
			col = key.Column + 2
		}
		return position{n.Line + 1, col}
	}
	return position{n.Line, n.Column}
}

// mappingValue finds the key and value nodes of name in a mapping node.
func mappingValue(m *yaml.Node, name string) (*yaml.Node, *yaml.Node) {
	if m.Kind != yaml.MappingNode {
		return nil, nil
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == name {
			return m.Content[i], m.Content[i+1]
		}
	}
	return nil, nil
}

func itemPositions(m *yaml.Node, name string) []position {
	key, seq := mappingValue(m, name)
	if seq == nil || seq.Kind != yaml.SequenceNode {
		return nil
	}
	out := make([]position, len(seq.Content))
	for i, item := range seq.Content {
		out[i] = scalarStart(key, item)
	}
	return out
}

func (c *CapabilitySpec) UnmarshalYAML(value *yaml.Node) error {
	type plain CapabilitySpec
	if err := value.Decode((*plain)(c)); err != nil {
		return err
	}
	c.pos = position{value.Line, value.Column}
	c.generics = itemPositions(value, "generics")
	c.types = itemPositions(value, "types")
	c.methods = itemPositions(value, "methods")
	return nil
}

func (u *UnionSpec) UnmarshalYAML(value *yaml.Node) error {
	type plain UnionSpec
	if err := value.Decode((*plain)(u)); err != nil {
		return err
	}
	u.pos = position{value.Line, value.Column}
	if key, v := mappingValue(value, "pattern"); v != nil {
		u.patternPos = scalarStart(key, v)
	}
	u.generics = itemPositions(value, "generics")
	u.where = itemPositions(value, "where")
	return nil
}

func (v *VariantSpec) UnmarshalYAML(value *yaml.Node) error {
	type plain VariantSpec
	if value.Kind == yaml.ScalarNode {
		// `- Empty` is shorthand for a unit variant.
		v.Name = value.Value
		v.pos = position{value.Line, value.Column}
		return nil
	}
	if err := value.Decode((*plain)(v)); err != nil {
		return err
	}
	v.pos = position{value.Line, value.Column}
	return nil
}

// at returns the position of item i, or fallback when positions are
// missing (manifests built in code).
func at(ps []position, i int, fallback position) token.Token {
	if i < len(ps) {
		return ps[i].token()
	}
	return fallback.token()
}
