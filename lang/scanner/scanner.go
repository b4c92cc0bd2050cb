// Package scanner implements the lexer that turns a source byte buffer
// into the ordered token table consumed by the parser and, for
// position reporting, by every later stage.
package scanner

import (
	"context"
	"os"

	"github.com/alderlang/alder/lang/token"
)

// ScanFile is a helper that reads path and tokenizes it, returning the
// file handle for position reporting, the source buffer and the token
// table. The source buffer must be kept alive as long as the tokens
// are in use.
func ScanFile(ctx context.Context, path string) (*token.File, []byte, []token.Token, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, nil, err
	}
	file := token.NewFile(path, b)
	var s Scanner
	s.Init(b)
	return file, b, s.ScanAll(), nil
}

// Scanner tokenizes a source buffer for the parser to consume.
type Scanner struct {
	src []byte
	off int // offset of the next unread byte
}

// Init initializes the scanner to tokenize a new buffer.
func (s *Scanner) Init(src []byte) {
	s.src = src
	s.off = 0
}

// ScanAll scans the remaining input and returns the tokens, ending
// with exactly one EOF token whose span is [len(src), len(src)).
func (s *Scanner) ScanAll() []token.Token {
	// most source text is a few bytes per token
	toks := make([]token.Token, 0, len(s.src)/4+1)
	for {
		tok := s.Scan()
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			return toks
		}
	}
}

// peek returns the byte at off+1, or 0 at the end of the buffer.
func (s *Scanner) peek() byte {
	if s.off+1 < len(s.src) {
		return s.src[s.off+1]
	}
	return 0
}

// advanceIf consumes the next byte only if it matches b.
func (s *Scanner) advanceIf(b byte) bool {
	if s.off < len(s.src) && s.src[s.off] == b {
		s.off++
		return true
	}
	return false
}

func (s *Scanner) skipWhitespace() {
	for s.off < len(s.src) {
		switch s.src[s.off] {
		case ' ', '\t', '\r', '\n':
			s.off++
		case '/':
			if s.peek() != '/' {
				return
			}
			// line comment, skip to end of line
			for s.off < len(s.src) && s.src[s.off] != '\n' {
				s.off++
			}
		default:
			return
		}
	}
}

// Scan returns the next token in the buffer. Unrecognized bytes yield
// an ERROR token at the offending position; the scanner never fails.
func (s *Scanner) Scan() token.Token {
	s.skipWhitespace()

	start := s.off
	if s.off >= len(s.src) {
		return token.Token{Kind: token.EOF, Start: uint32(start), End: uint32(start)}
	}

	mk := func(k token.Kind) token.Token {
		return token.Token{Kind: k, Start: uint32(start), End: uint32(s.off)}
	}

	cur := s.src[s.off]
	s.off++ // always make progress

	switch {
	case isLetter(cur):
		// keywords and identifiers
		for s.off < len(s.src) && (isLetter(s.src[s.off]) || isDigit(s.src[s.off])) {
			s.off++
		}
		lit := string(s.src[start:s.off])
		kind := token.IDENT
		if len(lit) > 1 {
			// keywords are longer than one letter, avoid lookup otherwise
			kind = token.LookupKw(lit)
		}
		return mk(kind)

	case isDigit(cur):
		// decimal digits, optionally followed by '.' and more digits
		for s.off < len(s.src) && isDigit(s.src[s.off]) {
			s.off++
		}
		if s.off < len(s.src) && s.src[s.off] == '.' && isDigit(s.peek()) {
			s.off++
			for s.off < len(s.src) && isDigit(s.src[s.off]) {
				s.off++
			}
		}
		return mk(token.NUMBER)
	}

	switch cur {
	case '"':
		// no escape processing, the parser does not interpret strings
		for s.off < len(s.src) && s.src[s.off] != '"' {
			s.off++
		}
		if s.off >= len(s.src) {
			return mk(token.ERROR) // unterminated
		}
		s.off++ // closing quote
		return mk(token.STRING)

	case '(':
		return mk(token.LPAREN)
	case ')':
		return mk(token.RPAREN)
	case '{':
		return mk(token.LBRACE)
	case '}':
		return mk(token.RBRACE)
	case ';':
		return mk(token.SEMI)
	case ',':
		return mk(token.COMMA)
	case '.':
		return mk(token.DOT)
	case ':':
		return mk(token.COLON)
	case '+':
		return mk(token.PLUS)
	case '-':
		return mk(token.MINUS)
	case '*':
		return mk(token.STAR)
	case '/':
		return mk(token.SLASH)

	case '=':
		if s.advanceIf('=') {
			return mk(token.EQEQ)
		}
		return mk(token.EQ)
	case '!':
		if s.advanceIf('=') {
			return mk(token.BANGEQ)
		}
		return mk(token.BANG)
	case '<':
		if s.advanceIf('=') {
			return mk(token.LTEQ)
		}
		return mk(token.LT)
	case '>':
		if s.advanceIf('=') {
			return mk(token.GTEQ)
		}
		return mk(token.GT)
	case '&':
		if s.advanceIf('&') {
			return mk(token.AMPAMP)
		}
		return mk(token.ERROR) // lone '&'
	case '|':
		if s.advanceIf('|') {
			return mk(token.BARBAR)
		}
		return mk(token.ERROR) // lone '|'
	}

	return mk(token.ERROR)
}

func isLetter(b byte) bool {
	return 'a' <= b && b <= 'z' || 'A' <= b && b <= 'Z' || b == '_'
}

func isDigit(b byte) bool {
	return '0' <= b && b <= '9'
}
