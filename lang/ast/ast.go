// Package ast defines the flat abstract syntax tree produced by the
// parser. Nodes live in a single append-only arena and reference each
// other by 32-bit indices; variable-length payloads (parameter lists,
// block statement lists, call arguments, prototype records) live as
// contiguous runs in a side table of 32-bit words. Children are
// appended before their parents, so every non-empty child index is
// lower than the index of the node that references it.
package ast

import (
	"github.com/alderlang/alder/lang/diag"
	"github.com/alderlang/alder/lang/token"
)

// Index references a node in the arena, or a slot in the extra table
// depending on the owning tag. Index 0 holds a permanent EMPTY node
// and doubles as the "no child" sentinel; the first real node lives at
// index 1.
type Index = uint32

// Empty is the "no child" sentinel. Ranges stored in the extra table
// are inclusive on both ends; an empty range is (Empty, Empty).
const Empty Index = 0

// Tag discriminates the node encodings.
type Tag uint8

const (
	EmptyNode Tag = iota
	Int
	Bool
	Ref
	Binary
	Unary
	Block
	Return
	Call
	Let
	NamedFn
	FnProto
	FnParam
	Module
	// ErrorNode is the placeholder written into an expression slot
	// that could not be parsed; a diagnostic always accompanies it.
	ErrorNode
)

var tagNames = [...]string{
	EmptyNode: "<empty>",
	Int:       "int",
	Bool:      "bool",
	Ref:       "ref",
	Binary:    "binary",
	Unary:     "unary",
	Block:     "block",
	Return:    "ret",
	Call:      "call",
	Let:       "let",
	NamedFn:   "fn",
	FnProto:   "fn_proto",
	FnParam:   "param",
	Module:    "module",
	ErrorNode: "error",
}

func (t Tag) String() string { return tagNames[t] }

// A Node is one slot of the arena. The meaning of LHS and RHS depends
// on Tag:
//
//	Int/Bool/Ref    main token is the literal; LHS and RHS unused
//	Binary          operator token; LHS and RHS are the operand nodes
//	Unary           operator token; LHS is the operand node
//	Block           '{' token; LHS..RHS inclusive range in the extra
//	                table, (Empty, Empty) if the block is empty
//	Return          'return' token; LHS is the operand node or Empty
//	Call            '(' token; LHS is the callee node, RHS is
//	                the extra index of CallData{arg_start, arg_end}
//	Let             'let' token (name at main+1); LHS is the type node
//	                or Empty, RHS the initializer node or Empty
//	NamedFn         'fn' token (name at main+1); LHS is the FnProto
//	                node, RHS the body Block node
//	FnProto         name token; LHS is the extra index of
//	                FnProto{param_start, param_end}, RHS the
//	                return-type node or Empty
//	FnParam         name token; RHS is the type node or Empty
//	Module          first-decl token; LHS..RHS inclusive decl range in
//	                the extra table, (Empty, Empty) if no decls
type Node struct {
	Tag       Tag
	MainToken token.Index
	LHS, RHS  Index
}

// A Tree is the parser's output: the token table it consumed, the node
// and extra arenas, the accumulated parse diagnostics, and the index
// of the root Module node. A Tree is immutable after construction.
type Tree struct {
	Src    []byte
	Tokens []token.Token
	Nodes  []Node
	Extra  []uint32
	Diags  diag.List
	Root   Index
}

// Node returns the node at index i.
func (t *Tree) Node(i Index) Node { return t.Nodes[i] }

// TokenText returns the source text of the token at index i.
func (t *Tree) TokenText(i token.Index) string {
	return t.Tokens[i].Text(t.Src)
}

// NodeText returns the source text of the node's main token.
func (t *Tree) NodeText(i Index) string {
	return t.TokenText(t.Nodes[i].MainToken)
}

// DeclName returns the declared name of a Let or NamedFn node, whose
// identifier token immediately follows the main token.
func (t *Tree) DeclName(i Index) string {
	return t.TokenText(t.Nodes[i].MainToken + 1)
}

// ExtraRange expands an inclusive (start, end) range into the extra
// table, returning nil for the (Empty, Empty) encoding.
func (t *Tree) ExtraRange(start, end Index) []uint32 {
	if start == Empty {
		return nil
	}
	return t.Extra[start : end+1]
}

// FnProtoData is the fixed record stored in the extra table for an
// FnProto node: the inclusive range of FnParam node indices.
type FnProtoData struct {
	ParamStart, ParamEnd Index
}

// FnProtoAt decodes the FnProtoData record at extra index i.
func (t *Tree) FnProtoAt(i Index) FnProtoData {
	return FnProtoData{ParamStart: t.Extra[i], ParamEnd: t.Extra[i+1]}
}

// CallData is the fixed record stored in the extra table for a Call
// node: the inclusive range of argument node indices.
type CallData struct {
	ArgStart, ArgEnd Index
}

// CallDataAt decodes the CallData record at extra index i.
func (t *Tree) CallDataAt(i Index) CallData {
	return CallData{ArgStart: t.Extra[i], ArgEnd: t.Extra[i+1]}
}
