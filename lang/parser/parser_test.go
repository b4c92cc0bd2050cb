package parser_test

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alderlang/alder/internal/filetest"
	"github.com/alderlang/alder/internal/maincmd"
	"github.com/alderlang/alder/lang/ast"
	"github.com/alderlang/alder/lang/diag"
	"github.com/alderlang/alder/lang/parser"
	"github.com/alderlang/alder/lang/scanner"
	"github.com/alderlang/alder/lang/token"
	"github.com/mna/mainer"
	"github.com/stretchr/testify/require"
)

var testUpdateParserTests = flag.Bool("test.update-parser-tests", false, "If set, replace expected parser test results with actual results.")

func scanAll(src string) []token.Token {
	var s scanner.Scanner
	s.Init([]byte(src))
	return s.ScanAll()
}

func parseExpr(t *testing.T, src string) *ast.Tree {
	t.Helper()
	return parser.ParseExpr(context.Background(), []byte(src), scanAll(src))
}

func parseModule(t *testing.T, src string) *ast.Tree {
	t.Helper()
	return parser.Parse(context.Background(), []byte(src), scanAll(src))
}

// sexpr renders an expression subtree in prefix form, using the
// operator source text, for compact shape assertions.
func sexpr(tr *ast.Tree, i ast.Index) string {
	n := tr.Node(i)
	switch n.Tag {
	case ast.Int, ast.Bool, ast.Ref:
		return tr.NodeText(i)
	case ast.Binary:
		return fmt.Sprintf("(%s %s %s)", tr.TokenText(n.MainToken), sexpr(tr, n.LHS), sexpr(tr, n.RHS))
	case ast.Unary:
		return fmt.Sprintf("(%s %s)", tr.TokenText(n.MainToken), sexpr(tr, n.LHS))
	case ast.Call:
		data := tr.CallDataAt(n.RHS)
		var sb strings.Builder
		sb.WriteString("(call " + sexpr(tr, n.LHS))
		for _, arg := range tr.ExtraRange(data.ArgStart, data.ArgEnd) {
			sb.WriteString(" " + sexpr(tr, ast.Index(arg)))
		}
		sb.WriteString(")")
		return sb.String()
	case ast.Block:
		var sb strings.Builder
		sb.WriteString("(block")
		for _, stmt := range tr.ExtraRange(n.LHS, n.RHS) {
			sb.WriteString(" " + sexpr(tr, ast.Index(stmt)))
		}
		sb.WriteString(")")
		return sb.String()
	case ast.Return:
		if n.LHS == ast.Empty {
			return "(return)"
		}
		return "(return " + sexpr(tr, n.LHS) + ")"
	case ast.ErrorNode:
		return "(error)"
	default:
		return "(" + n.Tag.String() + ")"
	}
}

// infix renders the operator identities of a binary tree in traversal
// order, ignoring grouping.
func infix(tr *ast.Tree, i ast.Index) string {
	n := tr.Node(i)
	if n.Tag == ast.Binary {
		return infix(tr, n.LHS) + " " + tr.TokenText(n.MainToken) + " " + infix(tr, n.RHS)
	}
	return sexpr(tr, i)
}

func TestPrattPrecedence(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"1 + 2 * 3", "(+ 1 (* 2 3))"},
		{"1 * 2 + 3", "(+ (* 1 2) 3)"},
		{"1 - 2 - 3", "(- (- 1 2) 3)"},
		{"-x + y", "(+ (- x) y)"},
		{"!!x", "(! (! x))"},
		{"!x == y", "(== (! x) y)"},
		{"-x * y", "(* (- x) y)"},
		{"--x", "(- (- x))"},
		{"a == b && c != d", "(&& (== a b) (!= c d))"},
		{"a || b && c", "(&& (|| a b) c)"},
		{"a < b == c > d", "(> (== (< a b) c) d)"},
		{"1 + 2 < 3 * 4", "(< (+ 1 2) (* 3 4))"},
		{"(1 + 2) * 3", "(* (+ 1 2) 3)"},
		{"1 + (2 * 3)", "(+ 1 (* 2 3))"},
		{"((x))", "x"},
		{"f(1, 2)", "(call f 1 2)"},
		{"f()", "(call f)"},
		{"f(1)(2)", "(call (call f 1) 2)"},
		{"1 + f(2) * 3", "(+ 1 (* (call f 2) 3))"},
		{"f(1 + 2, g(3))", "(call f (+ 1 2) (call g 3))"},
		{"-f(x)", "(- (call f x))"},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			tr := parseExpr(t, c.in)
			require.Empty(t, tr.Diags)
			require.Equal(t, c.want, sexpr(tr, tr.Root))
		})
	}
}

func TestParenthesizationKeepsOperatorOrder(t *testing.T) {
	left := parseExpr(t, "(a + b) + c")
	right := parseExpr(t, "a + (b + c)")
	require.Empty(t, left.Diags)
	require.Empty(t, right.Diags)

	// tree shapes differ, the infix traversal does not
	require.NotEqual(t, sexpr(left, left.Root), sexpr(right, right.Root))
	require.Equal(t, "a + b + c", infix(left, left.Root))
	require.Equal(t, "a + b + c", infix(right, right.Root))
}

func TestCallArgCount(t *testing.T) {
	tr := parseExpr(t, "f(1, 2)")
	require.Empty(t, tr.Diags)

	n := tr.Node(tr.Root)
	require.Equal(t, ast.Call, n.Tag)
	data := tr.CallDataAt(n.RHS)
	require.Len(t, tr.ExtraRange(data.ArgStart, data.ArgEnd), 2)
}

func TestBlockExtraContiguity(t *testing.T) {
	tr := parseExpr(t, "{1;2;3}")
	require.Empty(t, tr.Diags)

	n := tr.Node(tr.Root)
	require.Equal(t, ast.Block, n.Tag)
	require.Equal(t, n.LHS+2, n.RHS) // exactly 3 contiguous entries

	stmts := tr.ExtraRange(n.LHS, n.RHS)
	require.Len(t, stmts, 3)
	for i, stmt := range stmts {
		sn := tr.Node(ast.Index(stmt))
		require.Equal(t, ast.Int, sn.Tag)
		require.Equal(t, fmt.Sprintf("%d", i+1), tr.NodeText(ast.Index(stmt)))
	}
}

func TestNestedBlockContiguity(t *testing.T) {
	tr := parseExpr(t, "{{x;};}")
	require.Empty(t, tr.Diags)
	require.Equal(t, "(block (block x))", sexpr(tr, tr.Root))
}

func TestEmptyBlock(t *testing.T) {
	tr := parseExpr(t, "{}")
	require.Empty(t, tr.Diags)

	n := tr.Node(tr.Root)
	require.Equal(t, ast.Block, n.Tag)
	require.Equal(t, ast.Empty, n.LHS)
	require.Equal(t, ast.Empty, n.RHS)
}

func TestTrailingSemiOptional(t *testing.T) {
	with := parseExpr(t, "{1;2;}")
	without := parseExpr(t, "{1;2}")
	require.Empty(t, with.Diags)
	require.Empty(t, without.Diags)
	require.Equal(t, "(block 1 2)", sexpr(with, with.Root))
	require.Equal(t, "(block 1 2)", sexpr(without, without.Root))
}

func TestLetForms(t *testing.T) {
	cases := []struct {
		in                 string
		wantType, wantInit bool
	}{
		{"fn f() { let x; }", false, false},
		{"fn f() { let x = 1; }", false, true},
		{"fn f() { let x: i32; }", true, false},
		{"fn f() { let x: i32 = 1; }", true, true},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			tr := parseModule(t, c.in)
			require.Empty(t, tr.Diags)

			let := findNode(tr, ast.Let)
			require.NotEqual(t, ast.Empty, let)
			n := tr.Node(let)
			require.Equal(t, c.wantType, n.LHS != ast.Empty, "type")
			require.Equal(t, c.wantInit, n.RHS != ast.Empty, "init")
			require.Equal(t, "x", tr.DeclName(let))
		})
	}
}

func TestReturnForms(t *testing.T) {
	tr := parseModule(t, "fn f() { return; }")
	require.Empty(t, tr.Diags)
	require.Equal(t, ast.Empty, tr.Node(findNode(tr, ast.Return)).LHS)

	tr = parseModule(t, "fn f() { return }")
	require.Empty(t, tr.Diags)
	require.Equal(t, ast.Empty, tr.Node(findNode(tr, ast.Return)).LHS)

	tr = parseModule(t, "fn f() { return 1 + 2; }")
	require.Empty(t, tr.Diags)
	ret := tr.Node(findNode(tr, ast.Return))
	require.NotEqual(t, ast.Empty, ret.LHS)
	require.Equal(t, "(+ 1 2)", sexpr(tr, ret.LHS))
}

func TestFnProto(t *testing.T) {
	tr := parseModule(t, "fn f(a, b: i32): i64 { a }")
	require.Empty(t, tr.Diags)

	fn := tr.Node(findNode(tr, ast.NamedFn))
	proto := tr.Node(fn.LHS)
	require.Equal(t, ast.FnProto, proto.Tag)

	data := tr.FnProtoAt(proto.LHS)
	params := tr.ExtraRange(data.ParamStart, data.ParamEnd)
	require.Len(t, params, 2)

	a := tr.Node(ast.Index(params[0]))
	require.Equal(t, ast.FnParam, a.Tag)
	require.Equal(t, ast.Empty, a.RHS)
	require.Equal(t, "a", tr.NodeText(ast.Index(params[0])))

	b := tr.Node(ast.Index(params[1]))
	require.NotEqual(t, ast.Empty, b.RHS)
	require.Equal(t, "i32", tr.NodeText(b.RHS))

	require.NotEqual(t, ast.Empty, proto.RHS)
	require.Equal(t, "i64", tr.NodeText(proto.RHS))
}

func TestMissingSemicolonRecovers(t *testing.T) {
	src := "fn main() { let foo = 1\nlet bar = 1; }"
	tr := parseModule(t, src)

	require.Len(t, tr.Diags, 1)
	d := tr.Diags[0]
	require.Equal(t, diag.MissingSemi, d.Kind)
	require.Equal(t, uint32(strings.Index(src, "let bar")), d.Start)

	// the block still contains both statements
	var lets int
	for i := range tr.Nodes {
		if tr.Nodes[i].Tag == ast.Let {
			lets++
		}
	}
	require.Equal(t, 2, lets)
}

func TestMalformedExprPlaceholder(t *testing.T) {
	tr := parseModule(t, "fn f() { let x = ; }")

	require.NotEmpty(t, tr.Diags)
	require.Equal(t, diag.ExpressionExpected, tr.Diags[0].Kind)

	let := tr.Node(findNode(tr, ast.Let))
	require.NotEqual(t, ast.Empty, let.RHS)
	require.Equal(t, ast.ErrorNode, tr.Node(let.RHS).Tag)
}

func TestPostfixBangRejected(t *testing.T) {
	tr := parseExpr(t, "-3!+2*1")

	// the leading -3 parses, then the postfix '!' is rejected
	require.Equal(t, "(- 3)", sexpr(tr, tr.Root))
	require.NotEmpty(t, tr.Diags)
	require.Equal(t, diag.UnexpectedToken, tr.Diags[0].Kind)
}

func TestInvalidTopLevel(t *testing.T) {
	tr := parseModule(t, "let x = 1\nfn f() { 1 }")

	require.NotEmpty(t, tr.Diags)
	require.Equal(t, diag.InvalidTopLevel, tr.Diags[0].Kind)

	// the declaration after the invalid prefix is still parsed
	mod := tr.Node(tr.Root)
	require.Len(t, tr.ExtraRange(mod.LHS, mod.RHS), 1)
}

func TestArenaInvariants(t *testing.T) {
	src := "fn add(a, b: i32) { let x: i64 = a + b; {x;}; f(x, 1) }\nfn f(y) { return y; }"
	tr := parseModule(t, src)
	require.Empty(t, tr.Diags)

	numNodes := ast.Index(len(tr.Nodes))
	numExtra := ast.Index(len(tr.Extra))

	checkNodeRef := func(i ast.Index, parent ast.Index) {
		require.Less(t, i, parent, "child %d not below parent %d", i, parent)
	}
	checkRange := func(start, end ast.Index) {
		if start == ast.Empty {
			require.Equal(t, ast.Empty, end)
			return
		}
		require.LessOrEqual(t, start, end)
		require.Less(t, end, numExtra)
		for _, ref := range tr.ExtraRange(start, end) {
			require.Less(t, ast.Index(ref), numNodes)
		}
	}

	for i := ast.Index(1); i < numNodes; i++ {
		n := tr.Node(i)
		require.Less(t, n.MainToken, token.Index(len(tr.Tokens)), "node %d main token", i)

		switch n.Tag {
		case ast.Binary:
			checkNodeRef(n.LHS, i)
			checkNodeRef(n.RHS, i)
		case ast.Unary, ast.NamedFn:
			checkNodeRef(n.LHS, i)
			if n.Tag == ast.NamedFn {
				checkNodeRef(n.RHS, i)
			}
		case ast.Block, ast.Module:
			checkRange(n.LHS, n.RHS)
		case ast.Return, ast.Let:
			if n.LHS != ast.Empty {
				checkNodeRef(n.LHS, i)
			}
			if n.Tag == ast.Let && n.RHS != ast.Empty {
				checkNodeRef(n.RHS, i)
			}
		case ast.Call:
			checkNodeRef(n.LHS, i)
			require.Less(t, n.RHS+1, numExtra)
			data := tr.CallDataAt(n.RHS)
			checkRange(data.ArgStart, data.ArgEnd)
		case ast.FnProto:
			require.Less(t, n.LHS+1, numExtra)
			data := tr.FnProtoAt(n.LHS)
			checkRange(data.ParamStart, data.ParamEnd)
			if n.RHS != ast.Empty {
				checkNodeRef(n.RHS, i)
			}
		}
	}
}

// findNode returns the first node of the given tag, or Empty.
func findNode(tr *ast.Tree, tag ast.Tag) ast.Index {
	for i := range tr.Nodes {
		if tr.Nodes[i].Tag == tag {
			return ast.Index(i)
		}
	}
	return ast.Empty
}

func TestParserGolden(t *testing.T) {
	ctx := context.Background()
	srcDir, resultDir := filepath.Join("testdata", "in"), filepath.Join("testdata", "out")

	for _, name := range filetest.SourceFiles(t, srcDir, ".ald") {
		name := name
		t.Run(name, func(t *testing.T) {
			var buf, ebuf bytes.Buffer
			stdio := mainer.Stdio{
				Stdout: &buf,
				Stderr: &ebuf,
			}

			// error is ignored, we just want it printed to ebuf
			_ = maincmd.ParseFiles(ctx, stdio, filepath.Join(srcDir, name))
			filetest.DiffOutput(t, name, buf.String(), resultDir, testUpdateParserTests)
			filetest.DiffErrors(t, name, ebuf.String(), resultDir, testUpdateParserTests)
		})
	}
}
