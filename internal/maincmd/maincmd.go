package maincmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/mna/mainer"
)

const binName = "alder"

// usageExitCode is returned for usage errors and I/O failures, source
// level errors exit with mainer.Failure (1).
const usageExitCode mainer.ExitCode = 64

var (
	shortUsage = fmt.Sprintf(`
usage: %s [<option>...] <command> <path>...
Run '%[1]s --help' for details.
`, binName)

	longUsage = fmt.Sprintf(`usage: %s [<option>...] <command> <path>...
       %[1]s -h|--help
       %[1]s -v|--version

Compiler front-end for the %[1]s programming language.

The <command> can be one of:
       tokenize                  Execute the scanner phase of the
                                 compilation and print the resulting
                                 tokens.
       parse                     Execute the parser phase of the
                                 compilation and print the resulting
                                 abstract syntax tree (AST).
       lower                     Execute the parse and lowering phases
                                 of the compilation and print the
                                 resulting MIR of each declaration.
       build                     Compile the source file and hand the
                                 lowered module to the code generation
                                 backend.

Valid flag options are:
       -h --help                 Show this help and exit.
       -v --version              Print version and exit.

Valid flag options for the <tokenize> command are:
       --with-positions          Print full line:col positions instead
                                 of byte offsets.
`, binName)
)

type Cmd struct {
	BuildVersion string
	BuildDate    string

	Help    bool `flag:"h,help"`
	Version bool `flag:"v,version"`

	WithPositions bool `flag:"with-positions"`

	args  []string
	flags map[string]bool
	cmdFn func(context.Context, mainer.Stdio, []string) error
}

func (c *Cmd) SetArgs(args []string) {
	c.args = args
}

func (c *Cmd) SetFlags(flags map[string]bool) {
	c.flags = flags
}

func (c *Cmd) Validate() error {
	if c.Help || c.Version {
		return nil
	}

	if len(c.args) == 0 {
		return errors.New("no command specified")
	}

	cmdName := c.args[0]

	c.cmdFn = c.commands()[cmdName]
	if c.cmdFn == nil {
		return fmt.Errorf("unknown command: %s", c.args[0])
	}

	if len(c.args[1:]) == 0 {
		return fmt.Errorf("%s: at least one file must be provided", cmdName)
	}

	if c.flags["with-positions"] && cmdName != "tokenize" {
		return fmt.Errorf("%s: invalid flag 'with-positions'", cmdName)
	}

	return nil
}

func (c *Cmd) Main(args []string, stdio mainer.Stdio) mainer.ExitCode {
	p := mainer.Parser{
		EnvVars:   true,
		EnvPrefix: strings.ToUpper(binName) + "_",
	}
	if err := p.Parse(args, c); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid arguments: %s\n%s", err, shortUsage)
		return usageExitCode
	}

	switch {
	case c.Help:
		fmt.Fprint(stdio.Stdout, longUsage)
		return mainer.Success

	case c.Version:
		fmt.Fprintf(stdio.Stdout, "%s %s %s\n", binName, c.BuildVersion, c.BuildDate)
		return mainer.Success
	}

	ctx := mainer.CancelOnSignal(context.Background(), os.Interrupt)
	if err := c.cmdFn(ctx, stdio, c.args[1:]); err != nil {
		// each command takes care of printing its errors, just map the
		// error class to the exit code
		if errors.Is(err, errSourceErrors) {
			return mainer.Failure
		}
		return usageExitCode
	}
	return mainer.Success
}

// errSourceErrors marks failures caused by errors in the compiled
// source (exit code 1), as opposed to usage or I/O failures (64).
var errSourceErrors = errors.New("source errors")

// commands maps the command names to their implementations; every
// command takes the files named on the command line and prints its own
// errors to stdio.
func (c *Cmd) commands() map[string]func(context.Context, mainer.Stdio, []string) error {
	return map[string]func(context.Context, mainer.Stdio, []string) error{
		"tokenize": c.Tokenize,
		"parse":    c.Parse,
		"lower":    c.Lower,
		"build":    c.Build,
	}
}
