package token

import (
	"fmt"
	"sort"
)

// Position is a resolved source position. Line and Col are 1-based; a
// value of 0 for either means "unknown".
type Position struct {
	Filename string
	Offset   int
	Line     int
	Col      int
}

func (p Position) String() string {
	s := p.Filename
	if s == "" {
		s = "<input>"
	}
	if p.Line > 0 {
		s += fmt.Sprintf(":%d:%d", p.Line, p.Col)
	}
	return s
}

// A File maps byte offsets in a single source buffer to line/column
// positions. The line index is built once from the source bytes.
type File struct {
	name  string
	size  int
	lines []int // byte offset of the first byte of each line
}

// NewFile builds the line index for src under the given name.
func NewFile(name string, src []byte) *File {
	lines := []int{0}
	for i, b := range src {
		if b == '\n' {
			lines = append(lines, i+1)
		}
	}
	return &File{name: name, size: len(src), lines: lines}
}

// Name returns the file name provided to NewFile.
func (f *File) Name() string { return f.name }

// Size returns the length in bytes of the indexed source.
func (f *File) Size() int { return f.size }

// Position resolves a byte offset to a Position. Offsets past the end
// of the file resolve to the position just after the last byte.
func (f *File) Position(offset int) Position {
	if offset > f.size {
		offset = f.size
	}
	i := sort.Search(len(f.lines), func(i int) bool { return f.lines[i] > offset }) - 1
	return Position{
		Filename: f.name,
		Offset:   offset,
		Line:     i + 1,
		Col:      offset - f.lines[i] + 1,
	}
}

// PosMode selects how positions are rendered by debug printers and
// diagnostics.
type PosMode int

const (
	// PosNone does not print any position.
	PosNone PosMode = iota
	// PosOffsets prints the raw byte offset.
	PosOffsets
	// PosLong prints the full filename:line:col form.
	PosLong
)

// FormatPos renders the position of offset in f according to mode. It
// returns an empty string for PosNone.
func FormatPos(mode PosMode, f *File, offset int) string {
	switch mode {
	case PosOffsets:
		return fmt.Sprintf("%d", offset)
	case PosLong:
		return f.Position(offset).String()
	default:
		return ""
	}
}
