// Package grammar holds the EBNF description of the surface syntax in
// grammar.ebnf. The package test parses and verifies the grammar; the
// compiler itself does not consume it, it is the human-readable
// reference the hand-written parser is checked against. Blocks and
// return expressions are accepted as statements, let initializers,
// call arguments and return operands, but not as operands of an
// operator or inside parentheses.
package grammar
