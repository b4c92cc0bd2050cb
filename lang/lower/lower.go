// Package lower implements the AST-to-MIR lowering pass. It walks one
// function subtree at a time, resolves identifiers through a lexical
// scope stack, and emits a flat MIR instruction list: load/store pairs
// for local variables, direct values for arguments, and fn_ptr
// instructions for references to top-level functions. Scopes are
// flattened into a single instruction stream rooted at a Block
// instruction whose slot is reserved up front and backfilled once the
// body has been lowered.
package lower

import (
	"context"
	"fmt"
	"strconv"

	"github.com/alderlang/alder/lang/ast"
	"github.com/alderlang/alder/lang/diag"
	"github.com/alderlang/alder/lang/mir"
	"github.com/alderlang/alder/lang/token"
	"github.com/alderlang/alder/lang/types"
	"github.com/krotik/common/errorutil"
)

// Fn lowers the NamedFn subtree at fnIdx to a fresh Mir. Lowering
// never aborts: undefined references and unsupported constructs are
// recorded as diagnostics and leave a deterministic placeholder
// constant in the erroring slot.
func Fn(ctx context.Context, tree *ast.Tree, fnIdx ast.Index) (*mir.Mir, diag.List) {
	node := tree.Node(fnIdx)
	errorutil.AssertTrue(node.Tag == ast.NamedFn,
		fmt.Sprintf("lower: node %d is %s, not a named fn", fnIdx, node.Tag))

	l := &lowerer{tree: tree, m: mir.New()}

	// function scope, holding the parameters
	l.pushScope()

	proto := tree.Node(node.LHS)
	errorutil.AssertTrue(proto.Tag == ast.FnProto,
		fmt.Sprintf("lower: node %d is %s, not a fn proto", node.LHS, proto.Tag))
	protoData := tree.FnProtoAt(proto.LHS)

	root := l.block(node.RHS, &protoData)
	errorutil.AssertTrue(root == 0, "lower: function root block must be instruction 0")

	l.popScope()

	l.m.Check()
	return l.m, l.diags
}

type lowerer struct {
	tree  *ast.Tree
	m     *mir.Mir
	scope *scope
	diags diag.List
}

func (l *lowerer) pushScope() { l.scope = newScope(l.scope) }
func (l *lowerer) popScope()  { l.scope = l.scope.parent }

// span returns the source span of a node's main token, for
// diagnostics.
func (l *lowerer) span(idx ast.Index) (uint32, uint32) {
	tok := l.tree.Tokens[l.tree.Node(idx).MainToken]
	return tok.Start, tok.End
}

// placeholder emits the deterministic stand-in value written into an
// erroring slot so that subsequent lowering can proceed.
func (l *lowerer) placeholder() mir.Index {
	return l.m.AddInst(mir.TyPl(mir.Constant, types.Type{Tag: types.Unknown}, 0))
}

// block lowers a Block node: push a scope, reserve the Block
// instruction so its index is stable, lower the contained statements,
// then backfill the reserved slot with the instruction list. When
// lowering a function body, proto is non-nil and each parameter is
// pre-bound as an Arg instruction under its name.
func (l *lowerer) block(blockIdx ast.Index, proto *ast.FnProtoData) mir.Index {
	node := l.tree.Node(blockIdx)
	errorutil.AssertTrue(node.Tag == ast.Block,
		fmt.Sprintf("lower: node %d is %s, not a block", blockIdx, node.Tag))

	if node.LHS == ast.Empty {
		dataIdx := l.m.AddExtra(0)
		return l.m.AddInst(mir.TyPl(mir.Block, types.Type{}, dataIdx))
	}

	l.pushScope()
	out := l.m.Reserve()

	if proto != nil && proto.ParamStart != ast.Empty {
		params := l.tree.ExtraRange(proto.ParamStart, proto.ParamEnd)
		for i, paramIdx := range params {
			param := l.tree.Node(ast.Index(paramIdx))
			argIdx := l.m.AddInst(mir.TyPl(mir.Arg, l.annotatedType(param.RHS), uint32(i)))
			l.scope.bind(l.tree.NodeText(ast.Index(paramIdx)), argIdx, kindArg)
		}
	}

	// buffered so the instruction list lands contiguously in the
	// extra table after nested lowering is done
	insts := make([]mir.Index, 0, 8)
	for _, stmtIdx := range l.tree.ExtraRange(node.LHS, node.RHS) {
		insts = append(insts, l.stmt(ast.Index(stmtIdx)))
	}

	dataIdx := l.m.AddExtra(uint32(len(insts)))
	for _, inst := range insts {
		l.m.AddExtra(inst)
	}

	l.popScope()
	return l.m.Fill(out, mir.TyPl(mir.Block, types.Type{}, dataIdx))
}

func (l *lowerer) stmt(stmtIdx ast.Index) mir.Index {
	if l.tree.Node(stmtIdx).Tag == ast.Let {
		return l.let(stmtIdx)
	}
	return l.expr(stmtIdx)
}

// annotatedType resolves an optional type annotation node, defaulting
// to i64.
func (l *lowerer) annotatedType(typeIdx ast.Index) types.Type {
	if typeIdx == ast.Empty {
		return types.Type{Tag: types.I64}
	}
	name := l.tree.NodeText(typeIdx)
	ty, ok := types.FromName(name)
	if !ok {
		start, end := l.span(typeIdx)
		l.diags.Addf(diag.ParseError, start, end, "unknown type name %q", name)
	}
	return ty
}

// let lowers `let NAME [: type] = init` to an alloc of the annotated
// (or default) type, binds the name to the slot, then lowers the
// initializer and stores it. The resulting instruction is the store.
func (l *lowerer) let(stmtIdx ast.Index) mir.Index {
	node := l.tree.Node(stmtIdx)

	allocIdx := l.m.AddInst(mir.Ty(mir.Alloc, l.annotatedType(node.LHS)))
	l.scope.bind(l.tree.DeclName(stmtIdx), allocIdx, kindVar)

	var initIdx mir.Index
	if node.RHS == ast.Empty {
		// the initializer is required in the current language
		start, end := l.span(stmtIdx)
		l.diags.Addf(diag.UnsupportedConstruct, start, end,
			"let %s has no initializer", l.tree.DeclName(stmtIdx))
		initIdx = l.placeholder()
	} else {
		initIdx = l.expr(node.RHS)
	}

	return l.m.AddInst(mir.BinOp(mir.Store,
		mir.IndexToRef(allocIdx), mir.IndexToRef(initIdx)))
}

func (l *lowerer) expr(exprIdx ast.Index) mir.Index {
	node := l.tree.Node(exprIdx)

	switch node.Tag {
	case ast.Int:
		return l.intConst(exprIdx)
	case ast.Bool:
		return l.boolConst(exprIdx)
	case ast.Ref:
		return l.ref(exprIdx)
	case ast.Binary:
		return l.binOp(exprIdx)
	case ast.Unary:
		return l.unOp(exprIdx)
	case ast.Call:
		return l.call(exprIdx)
	case ast.Block:
		return l.block(exprIdx, nil)
	case ast.Return:
		return l.ret(exprIdx)
	default:
		start, end := l.span(exprIdx)
		l.diags.Addf(diag.UnsupportedConstruct, start, end,
			"cannot lower %s as an expression", node.Tag)
		return l.placeholder()
	}
}

func (l *lowerer) intConst(exprIdx ast.Index) mir.Index {
	text := l.tree.NodeText(exprIdx)
	v, err := strconv.ParseUint(text, 10, 32)
	if err != nil {
		start, end := l.span(exprIdx)
		l.diags.Addf(diag.ParseError, start, end, "invalid integer literal %q", text)
		v = 0
	}
	// the width is a placeholder, the type system narrows later
	return l.m.AddInst(mir.TyPl(mir.Constant, types.Type{Tag: types.I64}, uint32(v)))
}

func (l *lowerer) boolConst(exprIdx ast.Index) mir.Index {
	var v uint32
	if l.tree.Tokens[l.tree.Node(exprIdx).MainToken].Kind == token.TRUE {
		v = 1
	}
	return l.m.AddInst(mir.TyPl(mir.Constant, types.Type{Tag: types.Bool}, v))
}

// ref resolves an identifier use: scope chain first (Var loads its
// slot, Arg is used directly), then the module's top-level functions,
// otherwise the reference is undefined.
func (l *lowerer) ref(exprIdx ast.Index) mir.Index {
	name := l.tree.NodeText(exprIdx)

	if item, ok := l.scope.lookup(name); ok {
		switch item.kind {
		case kindVar:
			return l.m.AddInst(mir.UnOp(mir.Load, mir.IndexToRef(item.index)))
		default: // kindArg
			return item.index
		}
	}

	if l.findNamedFn(name) != ast.Empty {
		return l.m.AddInst(mir.FnPtrInst(name))
	}

	start, end := l.span(exprIdx)
	l.diags.Add(diag.UndefinedRef, start, end, name)
	return l.placeholder()
}

// findNamedFn scans the module's top-level declarations for a function
// of the given name, returning Empty if there is none.
func (l *lowerer) findNamedFn(name string) ast.Index {
	mod := l.tree.Node(l.tree.Root)
	for _, declIdx := range l.tree.ExtraRange(mod.LHS, mod.RHS) {
		if l.tree.Node(ast.Index(declIdx)).Tag != ast.NamedFn {
			continue
		}
		if l.tree.DeclName(ast.Index(declIdx)) == name {
			return ast.Index(declIdx)
		}
	}
	return ast.Empty
}

var binOpTags = map[token.Kind]mir.Tag{
	token.PLUS:   mir.Add,
	token.MINUS:  mir.Sub,
	token.STAR:   mir.Mul,
	token.SLASH:  mir.Div,
	token.EQEQ:   mir.Eq,
	token.BANGEQ: mir.NEq,
	token.LT:     mir.Lt,
	token.LTEQ:   mir.LtEq,
	token.GT:     mir.Gt,
	token.GTEQ:   mir.GtEq,
}

func (l *lowerer) binOp(exprIdx ast.Index) mir.Index {
	node := l.tree.Node(exprIdx)

	// evaluation order is observable through calls: lhs first
	lhs := mir.IndexToRef(l.expr(node.LHS))
	rhs := mir.IndexToRef(l.expr(node.RHS))

	opKind := l.tree.Tokens[node.MainToken].Kind
	tag, ok := binOpTags[opKind]
	if !ok {
		start, end := l.span(exprIdx)
		l.diags.Addf(diag.UnsupportedConstruct, start, end,
			"unsupported binary operator %s", opKind.GoString())
		return l.placeholder()
	}

	return l.m.AddInst(mir.BinOp(tag, lhs, rhs))
}

// unOp lowers the prefix operators within the closed instruction set:
// negation as a subtraction from zero, logical not as a comparison
// with zero, and unary plus as the operand itself.
func (l *lowerer) unOp(exprIdx ast.Index) mir.Index {
	node := l.tree.Node(exprIdx)
	operand := l.expr(node.LHS)

	switch l.tree.Tokens[node.MainToken].Kind {
	case token.MINUS:
		return l.m.AddInst(mir.BinOp(mir.Sub, mir.RefZero, mir.IndexToRef(operand)))
	case token.BANG:
		return l.m.AddInst(mir.BinOp(mir.Eq, mir.IndexToRef(operand), mir.RefZero))
	case token.PLUS:
		return operand
	default:
		start, end := l.span(exprIdx)
		l.diags.Addf(diag.UnsupportedConstruct, start, end,
			"unsupported unary operator %s",
			l.tree.Tokens[node.MainToken].Kind.GoString())
		return l.placeholder()
	}
}

func (l *lowerer) call(exprIdx ast.Index) mir.Index {
	node := l.tree.Node(exprIdx)

	operand := mir.IndexToRef(l.expr(node.LHS))

	data := l.tree.CallDataAt(node.RHS)
	args := l.tree.ExtraRange(data.ArgStart, data.ArgEnd)

	// buffered so the arg refs land contiguously in the extra table
	refs := make([]mir.Ref, 0, len(args))
	for _, argIdx := range args {
		refs = append(refs, mir.IndexToRef(l.expr(ast.Index(argIdx))))
	}

	dataIdx := l.m.AddExtra(uint32(len(refs)))
	for _, ref := range refs {
		l.m.AddExtra(uint32(ref))
	}

	return l.m.AddInst(mir.PlOp(mir.Call, dataIdx, operand))
}

func (l *lowerer) ret(exprIdx ast.Index) mir.Index {
	node := l.tree.Node(exprIdx)

	if node.LHS == ast.Empty {
		return l.m.AddInst(mir.UnOp(mir.Ret, mir.RefZero))
	}
	return l.m.AddInst(mir.UnOp(mir.Ret, mir.IndexToRef(l.expr(node.LHS))))
}
