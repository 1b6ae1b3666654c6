// Package module resolves `import a.b.c (as n)?` statements (spec.md
// §4.3) to a loaded module's static and runtime namespace: type-checks
// and interprets the imported file exactly as if it were run on its
// own, then hands back its top-level bindings as the module's exports.
//
// Grounded on the teacher's internal/evaluator/module_loader.go
// (dotted import path -> slash-joined relative file path, a cache so a
// module is only loaded once, an OS-env-var search-path fallback), but
// generalized from a package-level registry into a Resolver value (for
// test isolation) and given actual cycle detection: the teacher's
// loader caches an empty *object.Module before loading specifically to
// avoid infinite recursion, but never reports the cycle to the caller.
// spec.md §4.3 requires a reported ModuleCycleError instead, so this
// Resolver tracks each path's resolution state explicitly.
package module

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"pawscript/internal/ast"
	"pawscript/internal/interpreter"
	"pawscript/internal/object"
	"pawscript/internal/parser"
	"pawscript/internal/typechecker"
	"pawscript/internal/types"
)

const fileExtension = ".paw"

// ErrModuleCycle reports an import cycle: resolving path required
// resolving itself again before finishing (spec.md §4.3 ModuleCycleError).
type ErrModuleCycle struct {
	Path string
}

func (e *ErrModuleCycle) Error() string {
	return fmt.Sprintf("import cycle detected resolving %q", e.Path)
}

// ErrModuleNotFound reports that no file for path was found in any of
// the directories searched.
type ErrModuleNotFound struct {
	Path  string
	Tried []string
}

func (e *ErrModuleNotFound) Error() string {
	return fmt.Sprintf("module %q not found (tried: %s)", e.Path, strings.Join(e.Tried, ", "))
}

type resolveState int

const (
	stateUnresolved resolveState = iota
	stateInProgress
	stateResolved
)

type entry struct {
	static  *types.Module
	runtime *object.Module
}

// importBinding is one `import` statement's resolved alias, ready to
// be defined into a fresh interpreter's global scope before Run.
type importBinding struct {
	alias   string
	static  *types.Module
	runtime *object.Module
}

// Builtin is a host-provided module that is always in scope without an
// explicit `import` (spec.md's host bridge, e.g. `db`), registered on
// a Resolver before resolving anything so every module it loads —
// including the entry script — sees it pre-bound.
type Builtin struct {
	Alias   string
	Static  *types.Module
	Runtime *object.Module
}

// RegisterBuiltin installs b so every subsequent ResolveEntry/Resolve
// call pre-binds it, the same way a resolved `import` alias is bound.
func (r *Resolver) RegisterBuiltin(b Builtin) {
	r.builtins = append(r.builtins, b)
}

// Resolver loads and caches modules for one run of the pawc pipeline.
// It is not safe for concurrent use — module resolution happens on the
// same single-threaded path as everything else in this interpreter
// (see internal/interpreter/executor.go's doc comment).
type Resolver struct {
	// pawHome is PAWSCRIPT_HOME, a fallback search root for modules not
	// found relative to the importing script (spec.md §6 module layout;
	// renamed from the teacher's SLUG_HOME).
	pawHome string

	cache    map[string]*entry
	state    map[string]resolveState
	builtins []Builtin
}

func NewResolver(pawHome string) *Resolver {
	return &Resolver{
		pawHome: pawHome,
		cache:   make(map[string]*entry),
		state:   make(map[string]resolveState),
	}
}

// ResolveEntry parses, resolves the imports of, and type-checks the
// top-level script at path, returning the checked Program and an
// Interpreter with every import alias already defined in its global
// scope. The caller runs the returned Interpreter itself, so it can
// report a runtime error distinctly from a parse/type error.
func (r *Resolver) ResolveEntry(path string) (*ast.Program, *typechecker.Checker, *interpreter.Interpreter, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, nil, err
	}
	prog, err := parser.ParseProgram(string(data))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	staticImports, bindings, err := r.resolveImports(prog, dir)
	if err != nil {
		return nil, nil, nil, err
	}

	c := typechecker.NewChecker(staticImports)
	r.installBuiltins(c)
	if err := c.Check(prog); err != nil {
		return prog, c, nil, fmt.Errorf("type-checking %s: %w", path, err)
	}

	in := interpreter.NewFromChecker(c)
	for _, b := range r.builtins {
		in.DefineGlobal(b.Alias, b.Runtime, b.Static)
	}
	for _, b := range bindings {
		in.DefineGlobal(b.alias, b.runtime, b.static)
	}
	return prog, c, in, nil
}

// installBuiltins pre-binds every registered host built-in (spec.md's
// host bridge) into c's global scope, exactly as registerImport binds
// a resolved `import` alias, so built-ins need no explicit import.
func (r *Resolver) installBuiltins(c *typechecker.Checker) {
	for _, b := range r.builtins {
		c.DefineGlobal(b.Alias, b.Static)
	}
}

// Resolve loads the module named by pathParts, searching relative to
// baseDir (the importing file's directory) and then r.pawHome. It
// returns the module's static namespace (for the typechecker) and its
// runtime namespace (for the interpreter), resolving that module's own
// imports first and caching the result so a module imported from more
// than one place is only loaded once.
func (r *Resolver) Resolve(pathParts []string, baseDir string) (*types.Module, *object.Module, error) {
	name := strings.Join(pathParts, ".")
	path, src, err := r.readSource(pathParts, baseDir)
	if err != nil {
		return nil, nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	switch r.state[abs] {
	case stateResolved:
		e := r.cache[abs]
		return e.static, e.runtime, nil
	case stateInProgress:
		return nil, nil, &ErrModuleCycle{Path: name}
	}
	r.state[abs] = stateInProgress

	prog, err := parser.ParseProgram(src)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing module %q (%s): %w", name, path, err)
	}

	staticImports, bindings, err := r.resolveImports(prog, filepath.Dir(abs))
	if err != nil {
		return nil, nil, err
	}

	c := typechecker.NewChecker(staticImports)
	r.installBuiltins(c)
	if err := c.Check(prog); err != nil {
		return nil, nil, fmt.Errorf("type-checking module %q (%s): %w", name, path, err)
	}

	in := interpreter.NewFromChecker(c)
	for _, b := range r.builtins {
		in.DefineGlobal(b.Alias, b.Runtime, b.Static)
	}
	for _, b := range bindings {
		in.DefineGlobal(b.alias, b.runtime, b.static)
	}
	if err := in.Run(prog); err != nil {
		return nil, nil, fmt.Errorf("running module %q (%s): %w", name, path, err)
	}

	// A module's exported namespace is every binding in its global scope
	// (functions, top-level `let` values, built-ins and import aliases) —
	// spec.md §4.3's utils.math.PI example, not a selective `export`
	// list. Record declarations are not bound in that scope, so a
	// module's record types are not exported.
	staticExports := map[string]types.Type{}
	runtimeExports := map[string]object.Object{}
	for bname, binding := range in.Globals.All() {
		staticExports[bname] = binding.Type
		runtimeExports[bname] = binding.Value
	}
	static := &types.Module{Name: name, Exports: staticExports}
	runtime := &object.Module{Name: name, Path: abs, Exports: runtimeExports}

	r.cache[abs] = &entry{static: static, runtime: runtime}
	r.state[abs] = stateResolved
	return static, runtime, nil
}

// resolveImports walks prog's top-level import statements, resolving
// each one (recursively, before prog itself is type-checked) and
// returning both the dotted-path-keyed static module map the Checker
// expects (matching typechecker.joinPath's keying) and the alias
// bindings ready to install into an Interpreter's global scope.
func (r *Resolver) resolveImports(prog *ast.Program, baseDir string) (map[string]*types.Module, []importBinding, error) {
	staticImports := map[string]*types.Module{}
	var bindings []importBinding
	for _, stmt := range prog.Statements {
		imp, ok := stmt.(*ast.ImportStatement)
		if !ok {
			continue
		}
		static, runtime, err := r.Resolve(imp.Path, baseDir)
		if err != nil {
			return nil, nil, err
		}
		staticImports[strings.Join(imp.Path, ".")] = static

		alias := imp.Path[len(imp.Path)-1]
		if imp.Alias != nil {
			alias = imp.Alias.Value
		}
		bindings = append(bindings, importBinding{alias: alias, static: static, runtime: runtime})
	}
	return staticImports, bindings, nil
}

// readSource locates pathParts's source file, trying baseDir first and
// r.pawHome/lib second (spec.md §6: "relative to the script's
// directory, then a host-provided search path").
func (r *Resolver) readSource(pathParts []string, baseDir string) (path, src string, err error) {
	rel := filepath.Join(pathParts...) + fileExtension

	primary := filepath.Join(baseDir, rel)
	if data, readErr := os.ReadFile(primary); readErr == nil {
		return primary, string(data), nil
	}
	tried := []string{primary}

	if r.pawHome != "" {
		libPath := filepath.Join(r.pawHome, "lib", rel)
		if data, readErr := os.ReadFile(libPath); readErr == nil {
			return libPath, string(data), nil
		}
		tried = append(tried, libPath)
	}

	return "", "", &ErrModuleNotFound{Path: strings.Join(pathParts, "."), Tried: tried}
}
