package maincmd

import (
	"context"
	"fmt"

	"github.com/alderlang/alder/lang/mir"
	"github.com/alderlang/alder/lang/module"
	"github.com/mna/mainer"
)

func (c *Cmd) Lower(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return LowerFiles(ctx, stdio, args...)
}

// LowerFiles parses and lowers each file, printing the MIR of every
// top-level declaration. Parse diagnostics prevent lowering; both
// kinds of diagnostics are printed to stderr and reported as source
// errors.
func LowerFiles(ctx context.Context, stdio mainer.Stdio, files ...string) error {
	var sourceErrs bool
	for _, path := range files {
		m, err := module.Load(ctx, path)
		if err != nil {
			fmt.Fprintln(stdio.Stderr, err)
			return err
		}

		if len(m.Tree.Diags) > 0 {
			// cannot lower an AST that has parse errors
			m.Tree.Diags.Print(stdio.Stderr, m.File)
			sourceErrs = true
			continue
		}

		printer := mir.Printer{Output: stdio.Stdout}
		for _, decl := range m.Decls {
			fmt.Fprintf(stdio.Stdout, "// begin fn %s\n", decl.Name)
			if err := printer.Print(m.Mir(ctx, decl)); err != nil {
				fmt.Fprintln(stdio.Stderr, err)
				return err
			}
		}

		if len(m.LowerDiags) > 0 {
			m.LowerDiags.Print(stdio.Stderr, m.File)
			sourceErrs = true
		}
	}
	if sourceErrs {
		return errSourceErrors
	}
	return nil
}
