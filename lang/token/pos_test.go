package token

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFilePosition(t *testing.T) {
	src := []byte("ab\ncd\n\nef")
	f := NewFile("test.ald", src)

	cases := []struct {
		offset    int
		line, col int
	}{
		{0, 1, 1},
		{1, 1, 2},
		{2, 1, 3}, // the newline itself
		{3, 2, 1},
		{5, 2, 3},
		{6, 3, 1},
		{7, 4, 1},
		{8, 4, 2},
		{9, 4, 3},  // one past the last byte
		{99, 4, 3}, // clamped
	}
	for _, c := range cases {
		pos := f.Position(c.offset)
		require.Equal(t, c.line, pos.Line, "offset %d", c.offset)
		require.Equal(t, c.col, pos.Col, "offset %d", c.offset)
		require.Equal(t, "test.ald", pos.Filename)
	}
}

func TestFormatPos(t *testing.T) {
	f := NewFile("test.ald", []byte("x\ny"))
	require.Equal(t, "", FormatPos(PosNone, f, 2))
	require.Equal(t, "2", FormatPos(PosOffsets, f, 2))
	require.Equal(t, "test.ald:2:1", FormatPos(PosLong, f, 2))
}

func TestPositionString(t *testing.T) {
	require.Equal(t, "a.ald:3:7", Position{Filename: "a.ald", Line: 3, Col: 7}.String())
	require.Equal(t, "<input>:1:1", Position{Line: 1, Col: 1}.String())
	require.Equal(t, "a.ald", Position{Filename: "a.ald"}.String())
}
