package ast

import (
	"fmt"
	"io"

	"github.com/alderlang/alder/lang/token"
)

// Printer pretty-prints AST nodes in the "%index = tag(...)" textual
// form used by tests and by the parse CLI command. Expression operands
// (of binary, unary, return and call nodes) are printed before the
// node that uses them; functions, blocks and lets print their own line
// first and nest their contents, indented, inside braces.
type Printer struct {
	// Output is the io.Writer to print to.
	Output io.Writer
}

// Print renders the subtree rooted at index n of the tree.
func (p *Printer) Print(t *Tree, n Index) error {
	pp := &printer{w: p.Output, t: t}
	pp.node(n, 0)
	pp.printf("\n")
	return pp.err
}

// PrintModule renders every top-level declaration of the tree's root
// module node.
func (p *Printer) PrintModule(t *Tree) error {
	pp := &printer{w: p.Output, t: t}
	mod := t.Node(t.Root)
	for _, decl := range t.ExtraRange(mod.LHS, mod.RHS) {
		pp.node(Index(decl), 0)
		pp.printf("\n")
	}
	return pp.err
}

type printer struct {
	w   io.Writer
	t   *Tree
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *printer) header(i Index, indent int) {
	p.printf("%*s%%%d = ", indent, "", i)
}

// node prints the node at i and a trailing newline, after printing any
// operand nodes it references.
func (p *printer) node(i Index, indent int) {
	p.raw(i, indent)
	p.printf("\n")
}

func (p *printer) raw(i Index, indent int) {
	n := p.t.Node(i)
	switch n.Tag {
	case Int, Bool, Ref:
		p.header(i, indent)
		p.printf("%s(%s)", n.Tag, p.t.TokenText(n.MainToken))

	case Binary:
		p.node(n.LHS, indent)
		p.node(n.RHS, indent)
		p.header(i, indent)
		p.printf("%s(%%%d, %%%d)", binaryOpName(p.t.Tokens[n.MainToken].Kind), n.LHS, n.RHS)

	case Unary:
		p.node(n.LHS, indent)
		p.header(i, indent)
		p.printf("%s(%%%d)", unaryOpName(p.t.Tokens[n.MainToken].Kind), n.LHS)

	case Block:
		p.header(i, indent)
		p.printf("block(stmts = ")
		if n.LHS == Empty {
			p.printf("_)")
			break
		}
		p.printf("{\n")
		for _, stmt := range p.t.ExtraRange(n.LHS, n.RHS) {
			p.node(Index(stmt), indent+2)
		}
		p.printf("%*s})", indent, "")

	case Return:
		if n.LHS != Empty {
			p.node(n.LHS, indent)
		}
		p.header(i, indent)
		if n.LHS == Empty {
			p.printf("ret(_)")
		} else {
			p.printf("ret(%%%d)", n.LHS)
		}

	case Call:
		p.node(n.LHS, indent)
		data := p.t.CallDataAt(n.RHS)
		for _, arg := range p.t.ExtraRange(data.ArgStart, data.ArgEnd) {
			p.node(Index(arg), indent)
		}
		p.header(i, indent)
		p.printf("call(%%%d, args = ", n.LHS)
		if data.ArgStart == Empty {
			p.printf("_)")
			break
		}
		p.printf("[")
		for j, arg := range p.t.ExtraRange(data.ArgStart, data.ArgEnd) {
			if j > 0 {
				p.printf(", ")
			}
			p.printf("%%%d", arg)
		}
		p.printf("])")

	case Let:
		p.header(i, indent)
		p.printf("let(%s, type = ", p.t.DeclName(i))
		if n.LHS == Empty {
			p.printf("_")
		} else {
			p.printf("%s", p.t.NodeText(n.LHS))
		}
		p.printf(", init = ")
		if n.RHS == Empty {
			p.printf("_)")
			break
		}
		p.printf("{\n")
		p.node(n.RHS, indent+2)
		p.printf("%*s})", indent, "")

	case NamedFn:
		p.header(i, indent)
		p.printf("fn(%s, proto = ", p.t.DeclName(i))
		p.raw(n.LHS, 0)
		p.printf(", body = {\n")
		p.node(n.RHS, indent+2)
		p.printf("%*s})", indent, "")

	case FnProto:
		data := p.t.FnProtoAt(n.LHS)
		p.printf("{ params = ")
		if data.ParamStart == Empty {
			p.printf("_")
		} else {
			p.printf("[\n")
			for _, param := range p.t.ExtraRange(data.ParamStart, data.ParamEnd) {
				p.raw(Index(param), indent+2)
				p.printf("\n")
			}
			p.printf("%*s]", indent, "")
		}
		p.printf(", ret = ")
		if n.RHS == Empty {
			p.printf("_")
		} else {
			p.printf("%s", p.t.NodeText(n.RHS))
		}
		p.printf(" }")

	case FnParam:
		p.printf("%*sparam(%s, type = ", indent, "", p.t.NodeText(i))
		if n.RHS == Empty {
			p.printf("_)")
		} else {
			p.printf("%s)", p.t.NodeText(n.RHS))
		}

	case Module:
		for _, decl := range p.t.ExtraRange(n.LHS, n.RHS) {
			p.node(Index(decl), indent)
		}

	case ErrorNode:
		p.header(i, indent)
		p.printf("error")

	default:
		p.header(i, indent)
		p.printf("%s", n.Tag)
	}
}

func binaryOpName(k token.Kind) string {
	switch k {
	case token.PLUS:
		return "add"
	case token.MINUS:
		return "sub"
	case token.STAR:
		return "mul"
	case token.SLASH:
		return "div"
	case token.EQEQ:
		return "cmp_eq"
	case token.BANGEQ:
		return "cmp_ne"
	case token.LT:
		return "cmp_lt"
	case token.LTEQ:
		return "cmp_le"
	case token.GT:
		return "cmp_gt"
	case token.GTEQ:
		return "cmp_ge"
	case token.AMPAMP:
		return "log_and"
	case token.BARBAR:
		return "log_or"
	default:
		return "<?>"
	}
}

func unaryOpName(k token.Kind) string {
	switch k {
	case token.MINUS:
		return "neg"
	case token.PLUS:
		return "pos"
	case token.BANG:
		return "not"
	default:
		return "<?>"
	}
}
