package maincmd

import (
	"context"
	"fmt"

	"github.com/alderlang/alder/lang/scanner"
	"github.com/alderlang/alder/lang/token"
	"github.com/mna/mainer"
)

func (c *Cmd) Tokenize(ctx context.Context, stdio mainer.Stdio, args []string) error {
	posMode := token.PosOffsets
	if c.WithPositions {
		posMode = token.PosLong
	}
	return TokenizeFiles(ctx, stdio, posMode, args...)
}

// TokenizeFiles scans each file and prints one line per token: the
// token position, its kind and, for value-carrying tokens, the source
// text.
func TokenizeFiles(ctx context.Context, stdio mainer.Stdio, posMode token.PosMode, files ...string) error {
	for _, path := range files {
		file, src, toks, err := scanner.ScanFile(ctx, path)
		if err != nil {
			fmt.Fprintln(stdio.Stderr, err)
			return err
		}
		for _, tok := range toks {
			fmt.Fprintf(stdio.Stdout, "%s: %s", token.FormatPos(posMode, file, int(tok.Start)), tok.Kind)
			switch tok.Kind {
			case token.IDENT, token.NUMBER, token.STRING, token.ERROR:
				fmt.Fprintf(stdio.Stdout, " %s", tok.Text(src))
			}
			fmt.Fprintln(stdio.Stdout)
		}
	}
	return nil
}
