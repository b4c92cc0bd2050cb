// Package module drives a single compilation unit through the
// front-end pipeline: read and parse the source, collect the top-level
// declarations, lower each declaration to MIR on demand, and hand the
// result to a code-generation backend. The backend itself is an
// external collaborator consumed through the Backend interface.
package module

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/alderlang/alder/lang/ast"
	"github.com/alderlang/alder/lang/diag"
	"github.com/alderlang/alder/lang/lower"
	"github.com/alderlang/alder/lang/mir"
	"github.com/alderlang/alder/lang/parser"
	"github.com/alderlang/alder/lang/token"
)

// A Decl is one top-level declaration of a module with its lazily
// lowered MIR.
type Decl struct {
	Name     string
	AstIndex ast.Index

	mir *mir.Mir
}

// A Module is a single source file's compilation state.
type Module struct {
	Path string
	Name string

	File  *token.File
	Tree  *ast.Tree
	Decls []*Decl

	// LowerDiags accumulates the diagnostics of every lowered
	// declaration, in the order the declarations were lowered.
	LowerDiags diag.List
}

// Backend is the code-generation collaborator: it consumes the module
// with every declaration lowered and writes the output artifacts
// (<path>.ll and <path>.o) next to the source file. Cross-function
// references are resolved by matching FnPtr instruction names against
// declaration names.
type Backend interface {
	Emit(ctx context.Context, m *Module) error
}

// Load reads and parses the source file at path and collects its
// top-level declarations. The returned error is non-nil only for I/O
// failures; parse errors are recorded on the tree's diagnostics.
func Load(ctx context.Context, path string) (*Module, error) {
	file, tree, err := parser.ParseFile(ctx, path)
	if err != nil {
		return nil, err
	}

	m := &Module{
		Path: path,
		Name: strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		File: file,
		Tree: tree,
	}

	root := tree.Node(tree.Root)
	for _, declIdx := range tree.ExtraRange(root.LHS, root.RHS) {
		idx := ast.Index(declIdx)
		if tree.Node(idx).Tag != ast.NamedFn {
			continue
		}
		m.Decls = append(m.Decls, &Decl{
			Name:     tree.DeclName(idx),
			AstIndex: idx,
		})
	}
	return m, nil
}

// FindDecl returns the declaration of the given name, or nil.
func (m *Module) FindDecl(name string) *Decl {
	for _, d := range m.Decls {
		if d.Name == name {
			return d
		}
	}
	return nil
}

// Mir returns the declaration's MIR, lowering it on first use. The
// lowering diagnostics are accumulated on the module.
func (m *Module) Mir(ctx context.Context, d *Decl) *mir.Mir {
	if d.mir == nil {
		lowered, diags := lower.Fn(ctx, m.Tree, d.AstIndex)
		d.mir = lowered
		m.LowerDiags = append(m.LowerDiags, diags...)
	}
	return d.mir
}

// LowerAll lowers every declaration and reports whether no lowering
// diagnostic was produced.
func (m *Module) LowerAll(ctx context.Context) bool {
	for _, d := range m.Decls {
		m.Mir(ctx, d)
	}
	return len(m.LowerDiags) == 0
}

// Emit hands the fully lowered module to the backend.
func (m *Module) Emit(ctx context.Context, backend Backend) error {
	if backend == nil {
		return fmt.Errorf("module %s: no code generation backend linked", m.Name)
	}
	return backend.Emit(ctx, m)
}
