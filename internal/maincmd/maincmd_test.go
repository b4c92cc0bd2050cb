package maincmd_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alderlang/alder/internal/maincmd"
	"github.com/mna/mainer"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (code mainer.ExitCode, stdout, stderr string) {
	t.Helper()

	var buf, ebuf bytes.Buffer
	stdio := mainer.Stdio{
		Stdout: &buf,
		Stderr: &ebuf,
	}
	var c maincmd.Cmd
	code = c.Main(append([]string{"alder"}, args...), stdio)
	return code, buf.String(), ebuf.String()
}

func writeSource(t *testing.T, name, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(src), 0600))
	return path
}

func TestBuildSuccess(t *testing.T) {
	path := writeSource(t, "ok.ald", "fn main() { return 42; }")
	code, _, stderr := run(t, "build", path)
	require.Equal(t, mainer.Success, code)
	require.Empty(t, stderr)
}

func TestBuildParseErrorExitsOne(t *testing.T) {
	path := writeSource(t, "bad.ald", "fn main() { let foo = 1\nlet bar = 1; }")
	code, _, stderr := run(t, "build", path)
	require.Equal(t, mainer.ExitCode(1), code)
	require.Contains(t, stderr, "missing semicolon")
	require.Contains(t, stderr, path+":2:1")
}

func TestBuildLoweringErrorExitsOne(t *testing.T) {
	path := writeSource(t, "undef.ald", "fn main() { nowhere }")
	code, _, stderr := run(t, "build", path)
	require.Equal(t, mainer.ExitCode(1), code)
	require.Contains(t, stderr, "undefined reference: nowhere")
}

func TestBuildMissingFileExits64(t *testing.T) {
	code, _, stderr := run(t, "build", filepath.Join(t.TempDir(), "nope.ald"))
	require.Equal(t, mainer.ExitCode(64), code)
	require.NotEmpty(t, stderr)
}

func TestUnknownCommandExits64(t *testing.T) {
	code, _, stderr := run(t, "frobnicate", "x.ald")
	require.Equal(t, mainer.ExitCode(64), code)
	require.Contains(t, stderr, "unknown command")
}

func TestNoArgsExits64(t *testing.T) {
	code, _, _ := run(t)
	require.Equal(t, mainer.ExitCode(64), code)
}

func TestHelp(t *testing.T) {
	code, stdout, _ := run(t, "--help")
	require.Equal(t, mainer.Success, code)
	require.Contains(t, stdout, "usage: alder")
}

func TestTokenizeCommand(t *testing.T) {
	path := writeSource(t, "tok.ald", "let x = 1")
	code, stdout, _ := run(t, "tokenize", path)
	require.Equal(t, mainer.Success, code)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Equal(t, []string{
		"0: let",
		"4: identifier x",
		"6: =",
		"8: number literal 1",
		"9: end of file",
	}, lines)
}

func TestParseCommand(t *testing.T) {
	path := writeSource(t, "p.ald", "fn f() { 1 }")
	code, stdout, _ := run(t, "parse", path)
	require.Equal(t, mainer.Success, code)
	require.Contains(t, stdout, "int(1)")
	require.Contains(t, stdout, "fn(f, proto = { params = _, ret = _ }")
}

func TestLowerCommand(t *testing.T) {
	path := writeSource(t, "l.ald", "fn main() { return 42; }")
	code, stdout, _ := run(t, "lower", path)
	require.Equal(t, mainer.Success, code)
	require.Contains(t, stdout, "// begin fn main")
	require.Contains(t, stdout, "%1 = constant(i64, 42)")
	require.Contains(t, stdout, "%2 = ret(%1)")
}
