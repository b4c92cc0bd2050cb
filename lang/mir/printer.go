package mir

import (
	"fmt"
	"io"
)

// Printer renders a function's MIR in the "%index = op(...)" textual
// form used by tests and by the lower CLI command. Instructions are
// printed in the order listed by the root block; operand instructions
// are printed before their users, each at most once.
type Printer struct {
	// Output is the io.Writer to print to.
	Output io.Writer
}

// Print renders the MIR rooted at the Block instruction at index 0.
func (p *Printer) Print(m *Mir) error {
	pp := &printer{w: p.Output, m: m, visited: make(map[Index]bool)}
	for _, idx := range m.BlockInsts(0) {
		if !pp.visited[idx] {
			pp.inst(idx)
		}
	}
	pp.printf("\n")
	return pp.err
}

type printer struct {
	w       io.Writer
	m       *Mir
	visited map[Index]bool
	err     error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

// operand prints the instruction behind an index ref if it was not
// printed yet; sentinel refs have no backing instruction.
func (p *printer) operand(r Ref) {
	if !r.IsIndex() {
		return
	}
	idx := RefToIndex(r)
	if p.visited[idx] {
		return
	}
	p.inst(idx)
}

func (p *printer) inst(i Index) {
	p.visited[i] = true
	inst := p.m.Inst(i)

	switch inst.Tag {
	case Add, Sub, Mul, Div, Eq, NEq, Lt, LtEq, Gt, GtEq, Store:
		lhs, rhs := inst.BinOp()
		p.operand(lhs)
		p.operand(rhs)
		p.printf("%%%d = %s(%s, %s)\n", i, inst.Tag, lhs, rhs)

	case Constant:
		p.printf("%%%d = constant(%s, %d)\n", i, inst.Ty, inst.Payload())

	case Alloc:
		p.printf("%%%d = alloc(%s)\n", i, inst.Ty)

	case Load, Ret:
		op := inst.UnOp()
		p.operand(op)
		p.printf("%%%d = %s(%s)\n", i, inst.Tag, op)

	case Arg:
		p.printf("%%%d = arg(%s, %d)\n", i, inst.Ty, inst.Payload())

	case Call:
		pl, callee := inst.PlOp()
		p.operand(callee)
		args := p.m.CallArgs(pl)
		for _, arg := range args {
			p.operand(arg)
		}
		p.printf("%%%d = call(%s, args = ", i, callee)
		if len(args) == 0 {
			p.printf("_)\n")
			break
		}
		for j, arg := range args {
			if j > 0 {
				p.printf(", ")
			}
			p.printf("%s", arg)
		}
		p.printf(")\n")

	case FnPtr:
		p.printf("%%%d = fn_ptr(%s)\n", i, inst.Name)

	case Block:
		insts := p.m.BlockInsts(i)
		for _, idx := range insts {
			if !p.visited[idx] {
				p.inst(idx)
			}
		}
		p.printf("%%%d = block(", i)
		if len(insts) == 0 {
			p.printf("_)\n")
			break
		}
		for j, idx := range insts {
			if j > 0 {
				p.printf(", ")
			}
			p.printf("%%%d", idx)
		}
		p.printf(")\n")

	default:
		p.printf("%%%d = %s\n", i, inst.Tag)
	}
}
