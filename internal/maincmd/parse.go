package maincmd

import (
	"context"
	"fmt"

	"github.com/alderlang/alder/lang/ast"
	"github.com/alderlang/alder/lang/parser"
	"github.com/mna/mainer"
)

func (c *Cmd) Parse(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return ParseFiles(ctx, stdio, args...)
}

// ParseFiles parses each file and prints the resulting AST; parse
// diagnostics are printed to stderr and reported as source errors.
func ParseFiles(ctx context.Context, stdio mainer.Stdio, files ...string) error {
	var sourceErrs bool
	for _, path := range files {
		file, tree, err := parser.ParseFile(ctx, path)
		if err != nil {
			fmt.Fprintln(stdio.Stderr, err)
			return err
		}

		printer := ast.Printer{Output: stdio.Stdout}
		if err := printer.PrintModule(tree); err != nil {
			fmt.Fprintln(stdio.Stderr, err)
			return err
		}

		if len(tree.Diags) > 0 {
			tree.Diags.Print(stdio.Stderr, file)
			sourceErrs = true
		}
	}
	if sourceErrs {
		return errSourceErrors
	}
	return nil
}
