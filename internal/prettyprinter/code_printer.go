package prettyprinter

import (
	"bytes"
	"strings"

	"github.com/funvibe/shapeshift/internal/ast"
)

// --- Code Printer (output looks like host source code) ---

const indentUnit = "    "

type CodePrinter struct {
	buf    bytes.Buffer
	indent int
}

func NewCodePrinter() *CodePrinter {
	return &CodePrinter{}
}

func (p *CodePrinter) String() string {
	return p.buf.String()
}

func (p *CodePrinter) write(s string) {
	p.buf.WriteString(s)
}

func (p *CodePrinter) writeln() {
	p.buf.WriteString("\n")
}

// line writes one indented line.
func (p *CodePrinter) line(s string) {
	for i := 0; i < p.indent; i++ {
		p.buf.WriteString(indentUnit)
	}
	p.buf.WriteString(s)
	p.writeln()
}

func genericList(params []*ast.GenericParam, withDefaults bool) string {
	if len(params) == 0 {
		return ""
	}
	parts := make([]string, len(params))
	for i, g := range params {
		if withDefaults {
			parts[i] = g.String()
			continue
		}
		cp := *g
		cp.Default = nil
		parts[i] = cp.String()
	}
	return "<" + strings.Join(parts, ", ") + ">"
}

// printWhere writes a where clause followed by the opening brace. Without
// predicates the brace stays on the header line.
func (p *CodePrinter) printWhere(header string, preds []*ast.Predicate) {
	if len(preds) == 0 {
		p.line(header + " {")
		return
	}
	p.line(header)
	p.line("where")
	p.indent++
	for _, pred := range preds {
		p.line(pred.String() + ",")
	}
	p.indent--
	p.line("{")
}

func (p *CodePrinter) PrintUnion(n *ast.UnionDecl) {
	if n == nil {
		p.write("nil")
		return
	}
	p.printWhere("enum "+n.Name+genericList(n.Generics, true), n.Where)
	p.indent++
	for _, v := range n.Variants {
		p.line(variantString(v) + ",")
	}
	p.indent--
	p.line("}")
}

func variantString(v *ast.Variant) string {
	if v.Fields == nil || v.Fields.Kind == ast.GroupUnit {
		return v.Name
	}
	return v.Name + fieldList(v.Fields)
}

func fieldList(g *ast.FieldGroup) string {
	parts := make([]string, len(g.Fields))
	for i, f := range g.Fields {
		if g.Kind == ast.GroupNamed {
			parts[i] = f.Name + ": " + f.Type.String()
		} else {
			parts[i] = f.Type.String()
		}
	}
	if g.Kind == ast.GroupNamed {
		if len(parts) == 0 {
			return " {}"
		}
		return " { " + strings.Join(parts, ", ") + " }"
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func (p *CodePrinter) PrintImpl(n *ast.ImplBlock) {
	if n == nil {
		p.write("nil")
		return
	}
	header := "impl" + genericList(n.Generics, false) + " " + n.Trait.String() + " for " + n.SelfType.String()
	p.printWhere(header, n.Where)
	p.indent++
	for _, a := range n.AssocTypes {
		p.line("type " + a.Name + " = " + a.Type.String() + ";")
	}
	for i, m := range n.Methods {
		if i > 0 || len(n.AssocTypes) > 0 {
			p.writeln()
		}
		p.printMethod(m)
	}
	p.indent--
	p.line("}")
}

func (p *CodePrinter) printMethod(m *ast.ImplMethod) {
	p.line(m.Sig.String() + " {")
	p.indent++
	p.line("match " + m.Scrutinee + " {")
	p.indent++
	for _, arm := range m.Arms {
		p.line(arm.Pattern.String() + " => " + arm.Body.String() + ",")
	}
	p.indent--
	p.line("}")
	p.indent--
	p.line("}")
}

// PrintFile writes the union followed by every impl, separated by blank
// lines, with an optional header comment.
func (p *CodePrinter) PrintFile(header string, union *ast.UnionDecl, impls []*ast.ImplBlock) {
	if header != "" {
		for _, l := range strings.Split(strings.TrimRight(header, "\n"), "\n") {
			p.line(l)
		}
		p.writeln()
	}
	p.PrintUnion(union)
	for _, impl := range impls {
		p.writeln()
		p.PrintImpl(impl)
	}
}
