// Package diag defines the diagnostics accumulated by the parser and
// by the AST-to-MIR lowering. Diagnostics are non-fatal: each stage
// records them and runs to completion, and the driver decides whether
// to proceed to the next stage.
package diag

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/alderlang/alder/lang/token"
)

// Kind classifies a diagnostic. The String form is the <kind> part of
// the rendered "<path>:<line>:<col>: <kind>: <message>" line.
type Kind uint8

const (
	ParseError Kind = iota
	UnexpectedToken
	MissingSemi
	MissingDelimiter
	ExpressionExpected
	InvalidTopLevel
	UndefinedRef
	UnsupportedConstruct
)

var kindNames = [...]string{
	ParseError:           "parse error",
	UnexpectedToken:      "unexpected token",
	MissingSemi:          "missing semicolon",
	MissingDelimiter:     "missing delimiter",
	ExpressionExpected:   "expression expected",
	InvalidTopLevel:      "invalid top-level declaration",
	UndefinedRef:         "undefined reference",
	UnsupportedConstruct: "unsupported construct",
}

func (k Kind) String() string { return kindNames[k] }

// A Diag is a single diagnostic anchored at a [Start, End) byte span
// of the source buffer.
type Diag struct {
	Kind       Kind
	Start, End uint32
	Msg        string
}

func (d Diag) Error() string {
	if d.Msg == "" {
		return d.Kind.String()
	}
	return d.Kind.String() + ": " + d.Msg
}

// A List is an ordered collection of diagnostics.
type List []Diag

// Add appends a diagnostic for the given span.
func (l *List) Add(kind Kind, start, end uint32, msg string) {
	*l = append(*l, Diag{Kind: kind, Start: start, End: end, Msg: msg})
}

// Addf is like Add with a formatted message.
func (l *List) Addf(kind Kind, start, end uint32, format string, args ...any) {
	l.Add(kind, start, end, fmt.Sprintf(format, args...))
}

// Sort orders the list by starting offset, keeping the insertion order
// of diagnostics at the same offset.
func (l List) Sort() {
	sort.SliceStable(l, func(i, j int) bool { return l[i].Start < l[j].Start })
}

// Err returns an error equivalent to this list, or nil if the list is
// empty.
func (l List) Err() error {
	if len(l) == 0 {
		return nil
	}
	return errors.New(l[0].Error())
}

// Print renders every diagnostic to w as
// "<path>:<line>:<col>: <kind>: <message>".
func (l List) Print(w io.Writer, file *token.File) {
	for _, d := range l {
		pos := file.Position(int(d.Start))
		if d.Msg == "" {
			fmt.Fprintf(w, "%s: %s\n", pos, d.Kind)
			continue
		}
		fmt.Fprintf(w, "%s: %s: %s\n", pos, d.Kind, d.Msg)
	}
}
