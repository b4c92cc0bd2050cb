package maincmd

import (
	"context"
	"fmt"

	"github.com/alderlang/alder/lang/module"
	"github.com/mna/mainer"
)

// backend is the code generation collaborator used by the build
// command. It is nil in the plain front-end build; embedders register
// one with SetBackend.
var backend module.Backend

// SetBackend registers the code generation backend used by the build
// command.
func SetBackend(b module.Backend) { backend = b }

func (c *Cmd) Build(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return BuildFiles(ctx, stdio, args...)
}

// BuildFiles runs the full pipeline on each file: parse, then lower
// every declaration, then hand the module to the backend. Parse
// diagnostics are reported before lowering is attempted; if any exist
// the module is not lowered.
func BuildFiles(ctx context.Context, stdio mainer.Stdio, files ...string) error {
	for _, path := range files {
		m, err := module.Load(ctx, path)
		if err != nil {
			fmt.Fprintln(stdio.Stderr, err)
			return err
		}

		if len(m.Tree.Diags) > 0 {
			m.Tree.Diags.Print(stdio.Stderr, m.File)
			return errSourceErrors
		}

		if !m.LowerAll(ctx) {
			m.LowerDiags.Print(stdio.Stderr, m.File)
			return errSourceErrors
		}

		if backend == nil {
			// front-end only build: everything checked, nothing to emit
			continue
		}
		if err := m.Emit(ctx, backend); err != nil {
			fmt.Fprintln(stdio.Stderr, err)
			return err
		}
	}
	return nil
}
