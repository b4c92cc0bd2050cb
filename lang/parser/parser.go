// Package parser implements the parser that transforms the token table
// into the flat AST arena. The entry point parses a module: a sequence
// of top-level function declarations until end of file. Errors are
// accumulated as diagnostics on the resulting tree, never raised;
// unparsable expression slots become error placeholder nodes so that
// the surrounding structure still parses.
package parser

import (
	"context"

	"github.com/alderlang/alder/lang/ast"
	"github.com/alderlang/alder/lang/diag"
	"github.com/alderlang/alder/lang/scanner"
	"github.com/alderlang/alder/lang/token"
)

// ParseFile is a helper that reads, tokenizes and parses a single
// source file, returning the file handle for position reporting along
// with the tree. The error is non-nil only for I/O failures; parse
// errors are recorded on the tree's diagnostics.
func ParseFile(ctx context.Context, path string) (*token.File, *ast.Tree, error) {
	file, src, toks, err := scanner.ScanFile(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	var p parser
	p.init(src, toks)
	return file, p.parseModule(), nil
}

// Parse parses src as a module.
func Parse(ctx context.Context, src []byte, toks []token.Token) *ast.Tree {
	var p parser
	p.init(src, toks)
	return p.parseModule()
}

// ParseExpr parses src as a single expression followed by end of file.
// It is used by tests.
func ParseExpr(ctx context.Context, src []byte, toks []token.Token) *ast.Tree {
	var p parser
	p.init(src, toks)
	root := p.exprRequired()
	p.expect(token.EOF)
	return p.tree(root)
}

// parser holds the state of a single parse. The node and extra arenas
// are append-only; node 0 and extra slot 0 are reserved so that index
// 0 can act as the "no child" sentinel.
type parser struct {
	src  []byte
	toks []token.Token
	idx  token.Index

	nodes []ast.Node
	extra []uint32
	diags diag.List
}

func (p *parser) init(src []byte, toks []token.Token) {
	p.src = src
	p.toks = toks
	p.idx = 0
	p.nodes = make([]ast.Node, 1, 64) // nodes[0] is the EMPTY node
	p.extra = make([]uint32, 1, 64)   // extra[0] reserved for the Empty sentinel
	p.diags = nil
}

func (p *parser) tree(root ast.Index) *ast.Tree {
	p.diags.Sort()
	return &ast.Tree{
		Src:    p.src,
		Tokens: p.toks,
		Nodes:  p.nodes,
		Extra:  p.extra,
		Diags:  p.diags,
		Root:   root,
	}
}

// peek returns the current token without consuming it.
func (p *parser) peek() token.Token { return p.toks[p.idx] }

// at reports whether the current token is of the given kind.
func (p *parser) at(k token.Kind) bool { return p.toks[p.idx].Kind == k }

// advance consumes and returns the current token. At the end of the
// table it keeps returning the final EOF token.
func (p *parser) advance() token.Token {
	tok := p.toks[p.idx]
	if int(p.idx)+1 < len(p.toks) {
		p.idx++
	}
	return tok
}

// matchAdvance consumes the current token only if it is of kind k.
func (p *parser) matchAdvance(k token.Kind) bool {
	if !p.at(k) {
		return false
	}
	p.advance()
	return true
}

// expect consumes the current token and returns its index if it is of
// kind k; otherwise it records an unexpected-token diagnostic and does
// not consume, so the caller's synchronization point still sees it.
func (p *parser) expect(k token.Kind) token.Index {
	idx := p.idx
	if !p.at(k) {
		p.errorExpected(k.GoString())
		return idx
	}
	p.advance()
	return idx
}

func (p *parser) errorExpected(what string) {
	tok := p.peek()
	p.diags.Addf(diag.UnexpectedToken, tok.Start, tok.End,
		"expected %s, found %s", what, tok.Kind.GoString())
}

// addNode appends a node to the arena and returns its index.
func (p *parser) addNode(n ast.Node) ast.Index {
	p.nodes = append(p.nodes, n)
	return ast.Index(len(p.nodes) - 1)
}

// addExtra appends one word to the extra table and returns its index.
func (p *parser) addExtra(word uint32) ast.Index {
	p.extra = append(p.extra, word)
	return ast.Index(len(p.extra) - 1)
}

// errorNode records an expression-expected diagnostic at the current
// token and returns a fresh error placeholder node.
func (p *parser) errorNode() ast.Index {
	tok := p.peek()
	p.diags.Addf(diag.ExpressionExpected, tok.Start, tok.End,
		"found %s", tok.Kind.GoString())
	return p.addNode(ast.Node{Tag: ast.ErrorNode, MainToken: p.idx})
}

// parseModule parses zero or more top-level declarations until EOF and
// returns the finished tree rooted at the module node.
func (p *parser) parseModule() *ast.Tree {
	firstTok := p.idx
	var decls []ast.Index

	for !p.at(token.EOF) {
		if p.at(token.FN) {
			decls = append(decls, p.fnDecl())
			continue
		}
		// not a declaration: report and skip to the next 'fn'
		tok := p.peek()
		p.diags.Addf(diag.InvalidTopLevel, tok.Start, tok.End,
			"found %s", tok.Kind.GoString())
		for !p.at(token.FN) && !p.at(token.EOF) {
			p.advance()
		}
	}

	start, end := p.flushExtra(decls)
	root := p.addNode(ast.Node{Tag: ast.Module, MainToken: firstTok, LHS: start, RHS: end})
	return p.tree(root)
}

// fnDecl parses `fn NAME ( params ) [: ret-type] block`.
func (p *parser) fnDecl() ast.Index {
	mainToken := p.expect(token.FN)
	proto := p.fnProto()

	var body ast.Index
	if p.at(token.LBRACE) {
		body = p.exprBlock()
	} else {
		p.errorExpected("'{'")
		body = p.addNode(ast.Node{Tag: ast.ErrorNode, MainToken: p.idx})
		p.syncTopLevel()
	}

	return p.addNode(ast.Node{Tag: ast.NamedFn, MainToken: mainToken, LHS: proto, RHS: body})
}

// fnProto parses `NAME ( param (, param)* ) [: ret-type]` and stores
// the FnProto record in the extra table.
func (p *parser) fnProto() ast.Index {
	mainToken := p.expect(token.IDENT)

	paramStart, paramEnd := p.parseList((*parser).fnParam, token.LPAREN, token.RPAREN, token.COMMA)

	retType := ast.Empty
	if p.matchAdvance(token.COLON) {
		retType = p.typeExpr()
	}

	dataIdx := p.addExtra(paramStart)
	p.addExtra(paramEnd)

	return p.addNode(ast.Node{Tag: ast.FnProto, MainToken: mainToken, LHS: dataIdx, RHS: retType})
}

// fnParam parses `NAME [: type]`.
func (p *parser) fnParam() ast.Index {
	mainToken := p.expect(token.IDENT)

	typeExpr := ast.Empty
	if p.matchAdvance(token.COLON) {
		typeExpr = p.typeExpr()
	}

	return p.addNode(ast.Node{Tag: ast.FnParam, MainToken: mainToken, LHS: ast.Empty, RHS: typeExpr})
}

// typeExpr parses a type annotation, currently a bare type name.
func (p *parser) typeExpr() ast.Index {
	if !p.at(token.IDENT) {
		return p.errorNode()
	}
	mainToken := p.expect(token.IDENT)
	return p.addNode(ast.Node{Tag: ast.Ref, MainToken: mainToken})
}

// syncTopLevel skips tokens until a synchronizing point for top-level
// declarations.
func (p *parser) syncTopLevel() {
	for !p.at(token.FN) && !p.at(token.EOF) {
		if p.at(token.RBRACE) || p.at(token.SEMI) {
			p.advance()
			return
		}
		p.advance()
	}
}

// flushExtra copies buffered indices contiguously into the extra table
// and returns the inclusive (start, end) range, or (Empty, Empty) for
// an empty list. Buffering first is what guarantees contiguity even
// when producing the items appended to the extra table themselves.
func (p *parser) flushExtra(indices []ast.Index) (start, end ast.Index) {
	if len(indices) == 0 {
		return ast.Empty, ast.Empty
	}
	start = ast.Index(len(p.extra))
	for _, idx := range indices {
		p.addExtra(idx)
	}
	return start, ast.Index(len(p.extra) - 1)
}

// parseList consumes open, then repeatedly parses inner; between items
// it requires either delim or the immediate close. The produced
// indices are buffered and flushed contiguously into the extra table.
func (p *parser) parseList(inner func(*parser) ast.Index, open, close, delim token.Kind) (start, end ast.Index) {
	p.expect(open)

	var indices []ast.Index
	for !p.at(close) && !p.at(token.EOF) {
		before := p.idx
		indices = append(indices, inner(p))

		if p.at(delim) {
			p.advance()
		} else if p.at(close) {
			break
		} else {
			tok := p.peek()
			if delim == token.SEMI {
				p.diags.Add(diag.MissingSemi, tok.Start, tok.End, "")
			} else {
				p.diags.Addf(diag.MissingDelimiter, tok.Start, tok.End,
					"expected %s or %s", delim.GoString(), close.GoString())
			}
			// synthesized delimiter: keep parsing at the current token,
			// but always make progress
			if p.idx == before {
				p.advance()
			}
		}
	}
	p.expect(close)

	return p.flushExtra(indices)
}
