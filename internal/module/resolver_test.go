package module

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pawscript/internal/object"
	"pawscript/internal/types"
)

func writeFile(t *testing.T, dir, name, src string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestResolveImportBindsAliasAndDefaultSegment(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "math.paw", `
let PI: Float = 3.5
fun square(x: Int): Int { return x * x }
`)
	entry := writeFile(t, dir, "main.paw", `
import math
import math as m
say math.square(3)
say m.PI
`)

	r := NewResolver("")
	prog, _, in, err := r.ResolveEntry(entry)
	if err != nil {
		t.Fatalf("ResolveEntry: %v", err)
	}
	var out bytes.Buffer
	in.SetIO(&out, strings.NewReader(""))
	if err := in.Run(prog); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got, want := out.String(), "9\n3.5\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestResolveCachesReimportOfSameModule(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "util.paw", `let V: Int = 1`)
	entry := writeFile(t, dir, "main.paw", `
import util
import util
say util.V
`)
	r := NewResolver("")
	prog, _, in, err := r.ResolveEntry(entry)
	if err != nil {
		t.Fatalf("ResolveEntry: %v", err)
	}
	var out bytes.Buffer
	in.SetIO(&out, strings.NewReader(""))
	if err := in.Run(prog); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if strings.TrimSpace(out.String()) != "1" {
		t.Errorf("output = %q, want %q", out.String(), "1\n")
	}
	if len(r.cache) != 1 {
		t.Errorf("expected a single cached module entry, got %d", len(r.cache))
	}
}

func TestResolveDetectsImportCycle(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.paw", `import b`)
	writeFile(t, dir, "b.paw", `import a`)
	entry := writeFile(t, dir, "main.paw", `import a`)

	r := NewResolver("")
	_, _, _, err := r.ResolveEntry(entry)
	if err == nil {
		t.Fatalf("expected an import cycle error")
	}
	var cycleErr *ErrModuleCycle
	if !containsCycleError(err, &cycleErr) {
		t.Errorf("error = %v, want it to wrap ErrModuleCycle", err)
	}
}

func containsCycleError(err error, out **ErrModuleCycle) bool {
	for err != nil {
		if ce, ok := err.(*ErrModuleCycle); ok {
			*out = ce
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

func TestResolveModuleNotFound(t *testing.T) {
	dir := t.TempDir()
	entry := writeFile(t, dir, "main.paw", `import does.not.exist`)

	r := NewResolver("")
	_, _, _, err := r.ResolveEntry(entry)
	if err == nil {
		t.Fatalf("expected a module-not-found error")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("error = %v, want it to mention the module was not found", err)
	}
}

func TestRegisteredBuiltinNeedsNoImport(t *testing.T) {
	dir := t.TempDir()
	entry := writeFile(t, dir, "main.paw", `say greet.hello()`)

	r := NewResolver("")
	r.RegisterBuiltin(Builtin{
		Alias:  "greet",
		Static: &types.Module{Name: "greet", Exports: map[string]types.Type{"hello": &types.Function{Return: types.String}}},
		Runtime: &object.Module{Name: "greet", Exports: map[string]object.Object{
			"hello": &object.Builtin{Name: "greet.hello", Fn: func(args []object.Object) (object.Object, error) {
				return &object.String{Value: "hi"}, nil
			}},
		}},
	})

	prog, _, in, err := r.ResolveEntry(entry)
	if err != nil {
		t.Fatalf("ResolveEntry: %v", err)
	}
	var out bytes.Buffer
	in.SetIO(&out, strings.NewReader(""))
	if err := in.Run(prog); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if strings.TrimSpace(out.String()) != "hi" {
		t.Errorf("output = %q, want %q", out.String(), "hi\n")
	}
}

func TestResolveFallsBackToPawHome(t *testing.T) {
	scriptDir := t.TempDir()
	homeDir := t.TempDir()
	writeFile(t, homeDir, filepath.Join("lib", "shared.paw"), `let V: Int = 42`)
	entry := writeFile(t, scriptDir, "main.paw", `
import shared
say shared.V
`)

	r := NewResolver(homeDir)
	prog, _, in, err := r.ResolveEntry(entry)
	if err != nil {
		t.Fatalf("ResolveEntry: %v", err)
	}
	var out bytes.Buffer
	in.SetIO(&out, strings.NewReader(""))
	if err := in.Run(prog); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if strings.TrimSpace(out.String()) != "42" {
		t.Errorf("output = %q, want %q", out.String(), "42\n")
	}
}
