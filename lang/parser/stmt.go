package parser

import (
	"github.com/alderlang/alder/lang/ast"
	"github.com/alderlang/alder/lang/token"
)

// parseStmt dispatches on the current token: 'let' starts a let
// statement, anything else is an expression statement.
func (p *parser) parseStmt() ast.Index {
	if p.at(token.LET) {
		return p.stmtLet()
	}
	return p.exprRequired()
}

// stmtLet parses `let NAME [: type] [= expr]`. The identifier token is
// main+1, a representation relied on downstream.
func (p *parser) stmtLet() ast.Index {
	mainToken := p.expect(token.LET)

	// the token stream stays around for the next phase, the name is
	// fetched from main+1 later
	p.expect(token.IDENT)

	typeExpr := ast.Empty
	if p.matchAdvance(token.COLON) {
		typeExpr = p.typeExpr()
	}

	initExpr := ast.Empty
	if p.matchAdvance(token.EQ) {
		initExpr = p.exprRequired()
	}

	return p.addNode(ast.Node{Tag: ast.Let, MainToken: mainToken, LHS: typeExpr, RHS: initExpr})
}

// parseExpr parses any expression form: blocks and returns are
// dispatched here, everything else goes through the Pratt engine. It
// returns Empty when no expression starts at the current token.
func (p *parser) parseExpr() ast.Index {
	if p.at(token.LBRACE) {
		return p.exprBlock()
	}
	if p.at(token.RETURN) {
		return p.exprReturn()
	}
	return p.exprBP()
}

// exprRequired is parseExpr for slots where an expression must be
// present; an empty result becomes an error placeholder node with an
// accompanying diagnostic.
func (p *parser) exprRequired() ast.Index {
	if idx := p.parseExpr(); idx != ast.Empty {
		return idx
	}
	return p.errorNode()
}

// exprBlock parses `{ stmt (; stmt)* [;] }`. The statement indices are
// stored as an inclusive range in the extra table; an empty block
// stores (Empty, Empty).
func (p *parser) exprBlock() ast.Index {
	mainToken := p.idx // the '{' token
	start, end := p.parseList((*parser).parseStmt, token.LBRACE, token.RBRACE, token.SEMI)
	return p.addNode(ast.Node{Tag: ast.Block, MainToken: mainToken, LHS: start, RHS: end})
}

// exprReturn parses `return [expr]`; the operand is parsed iff the
// next token can start one (not ';' or '}').
func (p *parser) exprReturn() ast.Index {
	mainToken := p.expect(token.RETURN)

	expr := ast.Empty
	if !p.at(token.SEMI) && !p.at(token.RBRACE) && !p.at(token.EOF) {
		expr = p.exprRequired()
	}

	return p.addNode(ast.Node{Tag: ast.Return, MainToken: mainToken, LHS: expr, RHS: ast.Empty})
}
