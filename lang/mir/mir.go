// Package mir defines the mid-level intermediate representation: a
// flat single-assignment instruction list per function, with
// variable-length payloads (block bodies, call arguments) stored as
// contiguous runs in a 32-bit extra table. The backend consumes this
// representation; cross-function references appear as FnPtr
// instructions resolved by name.
package mir

import (
	"fmt"

	"github.com/alderlang/alder/lang/types"
	"github.com/krotik/common/errorutil"
)

// Index is the position of an instruction in the instruction list.
type Index = uint32

// A Ref is a tagged 32-bit reference to a MIR value: either one of the
// named sentinel constants below, or an instruction index offset by
// the sentinel count. IndexToRef and RefToIndex are the only
// conversion points.
type Ref uint32

const (
	RefNone Ref = iota
	RefZero
	RefVoid

	refLast = RefVoid
)

var refNames = [...]string{
	RefNone: "none",
	RefZero: "zero",
	RefVoid: "void",
}

// IndexToRef converts an instruction index into a Ref.
func IndexToRef(i Index) Ref { return Ref(i) + refLast + 1 }

// RefToIndex converts a Ref holding an instruction index back into the
// index. It must only be called when r.IsIndex() is true.
func RefToIndex(r Ref) Index { return Index(r - refLast - 1) }

// IsIndex reports whether the ref is an instruction index rather than
// a sentinel constant.
func (r Ref) IsIndex() bool { return r > refLast }

func (r Ref) String() string {
	if r.IsIndex() {
		return fmt.Sprintf("%%%d", RefToIndex(r))
	}
	return "@ref." + refNames[r]
}

// Tag discriminates the instruction payload encodings.
type Tag uint8

const (
	// Reserved is a placeholder used during construction only; it must
	// not appear in finished MIR.
	Reserved Tag = iota

	// Integer arithmetic, bin_op
	Add
	Sub
	Mul
	Div

	// Comparisons, bin_op
	Eq
	NEq
	Lt
	LtEq
	Gt
	GtEq

	// Constant is ty_pl with the 32-bit value inline in the payload.
	Constant
	// Alloc is ty: a stack slot of the given type.
	Alloc
	// Load is un_op with the slot to load from.
	Load
	// Store is bin_op where lhs is the slot and rhs the value.
	Store
	// Arg is ty_pl with the argument position in the payload.
	Arg
	// Call is pl_op: payload points at the argument count followed by
	// the argument refs in the extra table, operand is the callee.
	Call
	// FnPtr references a top-level function by name.
	FnPtr
	// Ret is un_op. Instructions listed after a Ret in the same block
	// are kept; neither lowering nor Check rejects them.
	Ret
	// Block is ty_pl pointing at the instruction count followed by the
	// instruction indices in the extra table. The root instruction of a
	// function is a Block at index 0.
	Block
)

var tagNames = [...]string{
	Reserved: "reserved",
	Add:      "add",
	Sub:      "sub",
	Mul:      "mul",
	Div:      "div",
	Eq:       "cmp_eq",
	NEq:      "cmp_ne",
	Lt:       "cmp_lt",
	LtEq:     "cmp_le",
	Gt:       "cmp_gt",
	GtEq:     "cmp_ge",
	Constant: "constant",
	Alloc:    "alloc",
	Load:     "load",
	Store:    "store",
	Arg:      "arg",
	Call:     "call",
	FnPtr:    "fn_ptr",
	Ret:      "ret",
	Block:    "block",
}

func (t Tag) String() string { return tagNames[t] }

// An Inst is one instruction: a tag plus the payload fields that the
// tag selects. A and B hold Refs or raw payload words depending on the
// tag; Ty and Name are used only by the tags documented above.
type Inst struct {
	Tag  Tag
	Ty   types.Type
	A, B uint32
	Name string
}

// UnOp builds an un_op instruction.
func UnOp(tag Tag, operand Ref) Inst {
	return Inst{Tag: tag, A: uint32(operand)}
}

// BinOp builds a bin_op instruction.
func BinOp(tag Tag, lhs, rhs Ref) Inst {
	return Inst{Tag: tag, A: uint32(lhs), B: uint32(rhs)}
}

// Ty builds a ty instruction.
func Ty(tag Tag, ty types.Type) Inst {
	return Inst{Tag: tag, Ty: ty}
}

// TyPl builds a ty_pl instruction; the payload is an extra index or an
// inline value depending on the tag.
func TyPl(tag Tag, ty types.Type, payload uint32) Inst {
	return Inst{Tag: tag, Ty: ty, A: payload}
}

// PlOp builds a pl_op instruction: an extra index plus an operand.
func PlOp(tag Tag, payload uint32, operand Ref) Inst {
	return Inst{Tag: tag, A: payload, B: uint32(operand)}
}

// FnPtrInst builds a fn_ptr instruction referencing name.
func FnPtrInst(name string) Inst {
	return Inst{Tag: FnPtr, Name: name}
}

// UnOp returns the operand of an un_op instruction.
func (i Inst) UnOp() Ref { return Ref(i.A) }

// BinOp returns the operands of a bin_op instruction.
func (i Inst) BinOp() (lhs, rhs Ref) { return Ref(i.A), Ref(i.B) }

// Payload returns the payload word of a ty_pl instruction.
func (i Inst) Payload() uint32 { return i.A }

// PlOp returns the payload word and operand of a pl_op instruction.
func (i Inst) PlOp() (payload uint32, operand Ref) { return i.A, Ref(i.B) }

// A Mir is the lowered form of a single function: the instruction list
// and its extra table. Extra slot 0 is reserved so that payload index
// 0 never occurs.
type Mir struct {
	Insts []Inst
	Extra []uint32
}

// New returns an empty Mir ready for construction.
func New() *Mir {
	return &Mir{Extra: make([]uint32, 1, 16)}
}

// AddInst appends an instruction and returns its index.
func (m *Mir) AddInst(inst Inst) Index {
	m.Insts = append(m.Insts, inst)
	return Index(len(m.Insts) - 1)
}

// AddExtra appends one word to the extra table and returns its index.
func (m *Mir) AddExtra(word uint32) Index {
	m.Extra = append(m.Extra, word)
	return Index(len(m.Extra) - 1)
}

// Inst returns the instruction at index i.
func (m *Mir) Inst(i Index) Inst { return m.Insts[i] }

// Reserve appends a Reserved placeholder so that the caller knows the
// instruction's index before its contents are built.
func (m *Mir) Reserve() Index {
	return m.AddInst(Inst{Tag: Reserved})
}

// Fill overwrites a previously reserved slot in place.
func (m *Mir) Fill(reserved Index, inst Inst) Index {
	errorutil.AssertTrue(m.Insts[reserved].Tag == Reserved,
		fmt.Sprintf("mir: filling non-reserved instruction %d", reserved))
	m.Insts[reserved] = inst
	return reserved
}

// BlockInsts returns the instruction indices listed by the Block
// instruction at index i.
func (m *Mir) BlockInsts(i Index) []Index {
	inst := m.Insts[i]
	errorutil.AssertTrue(inst.Tag == Block,
		fmt.Sprintf("mir: instruction %d is %s, not block", i, inst.Tag))
	start := inst.Payload()
	count := m.Extra[start]
	return m.Extra[start+1 : start+1+count]
}

// CallArgs returns the argument refs of the call payload (argument
// count, then the refs) at extra index pl.
func (m *Mir) CallArgs(pl uint32) []Ref {
	count := m.Extra[pl]
	refs := make([]Ref, count)
	for i := uint32(0); i < count; i++ {
		refs[i] = Ref(m.Extra[pl+1+i])
	}
	return refs
}

// Check asserts the invariants of finished MIR: the root instruction
// is a Block and no Reserved placeholder survived lowering.
func (m *Mir) Check() {
	errorutil.AssertTrue(len(m.Insts) > 0 && m.Insts[0].Tag == Block,
		"mir: finished function must be rooted at a block")
	for i, inst := range m.Insts {
		errorutil.AssertTrue(inst.Tag != Reserved,
			fmt.Sprintf("mir: reserved instruction %d survived lowering", i))
	}
}
