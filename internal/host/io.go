package host

import (
	"io"
	"os"

	"pawscript/internal/interpreter"
	"pawscript/internal/module"
)

// Bridge is the host environment cmd/pawc hands to the pipeline: the
// process's stdio streams plus the built-in modules (`db`, and
// anything else SPEC_FULL.md §4.7 names) pre-bound into every module
// the resolver loads, including the entry script, before any of it is
// type-checked — grounded on the teacher's REPL (internal/repl), which
// likewise owns a single bufio.Reader over stdin shared across a run,
// rather than re-wrapping os.Stdin at every `ask`.
type Bridge struct {
	Stdin  io.Reader
	Stdout io.Writer
}

// NewOSBridge wraps the process's real stdin/stdout, for cmd/pawc's
// normal (non-test) invocation.
func NewOSBridge() *Bridge {
	return &Bridge{Stdin: os.Stdin, Stdout: os.Stdout}
}

// NewBridge wraps arbitrary streams, for embedding the interpreter or
// for tests that need to script `ask` input and capture `say` output.
func NewBridge(stdin io.Reader, stdout io.Writer) *Bridge {
	return &Bridge{Stdin: stdin, Stdout: stdout}
}

// RegisterBuiltins installs every built-in module on r, so it is
// pre-bound (no explicit `import` needed) in the entry script and in
// every module the resolver loads. Call before Resolver.ResolveEntry.
func (b *Bridge) RegisterBuiltins(r *module.Resolver) {
	r.RegisterBuiltin(module.Builtin{Alias: "db", Static: DbModuleType, Runtime: NewDbModule()})
}

// Install points interp's `say`/`ask` streams at this Bridge's stdio.
// Must be called after interpreter.NewFromChecker and before
// Interpreter.Run.
func (b *Bridge) Install(interp *interpreter.Interpreter) {
	interp.SetIO(b.Stdout, b.Stdin)
}
