package parser

import (
	"github.com/alderlang/alder/lang/ast"
	"github.com/alderlang/alder/lang/token"
)

// tokenBP returns the (left, right) binding powers of a token for the
// precedence climber. A left binding power of 0 means the token is not
// an operator in the current position. isPrefix is true when there is
// no expression accumulated yet, i.e. the token would be a prefix
// operator.
func tokenBP(k token.Kind, isPrefix bool) (lbp, rbp uint8) {
	switch k {
	case token.AMPAMP, token.BARBAR:
		return 3, 4
	case token.EQEQ, token.BANGEQ, token.LT, token.LTEQ, token.GT, token.GTEQ:
		return 5, 6
	case token.PLUS, token.MINUS:
		if isPrefix {
			return 99, 19
		}
		return 15, 16
	case token.STAR, token.SLASH:
		return 17, 18
	case token.BANG:
		// prefix only; after a complete expression '!' is not an
		// operator and terminates the expression
		if isPrefix {
			return 21, 19
		}
		return 0, 0
	case token.LPAREN:
		return 99, 0
	default:
		return 0, 0
	}
}

// parseFrame is one level of the iterative precedence climber: the
// minimum binding power that keeps the frame open, the expression
// accumulated so far (Empty right after a prefix operator), and the
// operator token that created the frame.
type parseFrame struct {
	minBP uint8
	lhs   ast.Index
	opIdx token.Index
}

// noOp marks a frame not created by an operator (the root frame).
const noOp = ^token.Index(0)

// exprBP runs the Pratt engine: an iterative precedence climber driven
// by an explicit frame stack. Finishing a frame builds a Binary or,
// when the frame has no accumulated lhs, a Unary node; a finished '('
// frame performs grouping without emitting a node. A '(' in infix
// position builds a Call instead. Returns Empty if no expression
// starts at the current token.
func (p *parser) exprBP() ast.Index {
	top := parseFrame{minBP: 0, lhs: p.literal(), opIdx: noOp}
	var stack []parseFrame

	for {
		tok := p.peek()

		if tok.Kind == token.LPAREN && top.lhs != ast.Empty {
			// call: the accumulated expression is the callee
			opIdx := p.idx
			argStart, argEnd := p.parseList((*parser).exprRequired, token.LPAREN, token.RPAREN, token.COMMA)
			dataIdx := p.addExtra(argStart)
			p.addExtra(argEnd)
			top.lhs = p.addNode(ast.Node{Tag: ast.Call, MainToken: opIdx, LHS: top.lhs, RHS: dataIdx})
			continue
		}

		lbp, rbp := tokenBP(tok.Kind, top.lhs == ast.Empty)
		if lbp == 0 || lbp < top.minBP {
			// not an operator, or too low to continue: finish the frame
			res := top
			if len(stack) == 0 {
				return res.lhs
			}
			top = stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			if res.opIdx != noOp && p.toks[res.opIdx].Kind == token.LPAREN {
				// grouping: consume ')' and adopt the inner expression
				p.expect(token.RPAREN)
				top.lhs = res.lhs
				continue
			}

			lhs, rhs := top.lhs, res.lhs
			if lhs == ast.Empty {
				// prefix operator: the operand is normalized into LHS
				lhs, rhs = rhs, ast.Empty
				if lhs == ast.Empty {
					lhs = p.errorNode()
				}
				top.lhs = p.addNode(ast.Node{Tag: ast.Unary, MainToken: res.opIdx, LHS: lhs})
				continue
			}
			if rhs == ast.Empty {
				rhs = p.errorNode()
			}
			top.lhs = p.addNode(ast.Node{Tag: ast.Binary, MainToken: res.opIdx, LHS: lhs, RHS: rhs})
			continue
		}

		// eat the operator and open a frame for its right-hand side
		opIdx := p.idx
		p.advance()
		stack = append(stack, top)
		top = parseFrame{minBP: rbp, lhs: p.literal(), opIdx: opIdx}
	}
}

// literal parses a literal or identifier primary, returning Empty if
// the current token is not one.
func (p *parser) literal() ast.Index {
	var tag ast.Tag
	switch p.peek().Kind {
	case token.NUMBER:
		tag = ast.Int
	case token.TRUE, token.FALSE:
		tag = ast.Bool
	case token.IDENT:
		tag = ast.Ref
	default:
		return ast.Empty
	}
	idx := p.idx
	p.advance()
	return p.addNode(ast.Node{Tag: tag, MainToken: idx})
}
