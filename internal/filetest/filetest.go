// Package filetest drives golden-file tests: each test feeds the
// source files of a testdata directory through a compiler command and
// compares the captured output against per-file golden files, which
// can be regenerated with the -test.update-*-tests flags.
package filetest

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/kylelemons/godebug/diff"
)

var testUpdateAllTests = flag.Bool("test.update-all-tests", false, "If set, sets all test.update-*-tests.")

// SourceFiles returns the names of the regular files in dir that carry
// the given extension (leading dot optional).
func SourceFiles(t *testing.T, dir, ext string) []string {
	t.Helper()

	if ext != "" && ext[0] != '.' {
		ext = "." + ext
	}

	dents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}

	var names []string
	for _, dent := range dents {
		if dent.Type().IsRegular() && (ext == "" || filepath.Ext(dent.Name()) == ext) {
			names = append(names, dent.Name())
		}
	}
	return names
}

// DiffOutput compares output against the "<name>.want" golden file in
// resultDir, or rewrites the golden file when updateFlag is set.
func DiffOutput(t *testing.T, name, output, resultDir string, updateFlag *bool) {
	t.Helper()
	diffOrUpdate(t, "output", filepath.Join(resultDir, name+".want"), output, updateFlag)
}

// DiffErrors compares the error output against the "<name>.err" golden
// file in resultDir, or rewrites the golden file when updateFlag is
// set. A missing golden file stands for empty expected output.
func DiffErrors(t *testing.T, name, output, resultDir string, updateFlag *bool) {
	t.Helper()
	diffOrUpdate(t, "errors", filepath.Join(resultDir, name+".err"), output, updateFlag)
}

func diffOrUpdate(t *testing.T, label, goldFile, output string, updateFlag *bool) {
	t.Helper()

	if *updateFlag || *testUpdateAllTests {
		if output == "" && label == "errors" {
			// no golden file for empty error output
			return
		}
		if err := os.WriteFile(goldFile, []byte(output), 0600); err != nil {
			t.Fatal(err)
		}
		return
	}

	wantb, err := os.ReadFile(goldFile)
	if err != nil && !os.IsNotExist(err) {
		t.Fatal(err)
	}
	if testing.Verbose() {
		t.Logf("got %s:\n%s\n", label, output)
	}
	if patch := diff.Diff(string(wantb), output); patch != "" {
		t.Errorf("diff %s:\n%s\n", label, patch)
	}
}
