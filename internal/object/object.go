// Package object models PawScript's runtime values and the lexical
// environments that bind them, grounded on the teacher's object/
// environment split but narrowed to PawScript's statically-typed value
// set (spec.md §3.2).
package object

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	"pawscript/internal/ast"
	"pawscript/internal/types"
)

type ObjectType string

const (
	INT_OBJ      ObjectType = "INT"
	LONG_OBJ     ObjectType = "LONG"
	FLOAT_OBJ    ObjectType = "FLOAT"
	DOUBLE_OBJ   ObjectType = "DOUBLE"
	BOOL_OBJ     ObjectType = "BOOL"
	CHAR_OBJ     ObjectType = "CHAR"
	STRING_OBJ   ObjectType = "STRING"
	NIL_OBJ      ObjectType = "NIL"
	ARRAY_OBJ    ObjectType = "ARRAY"
	RECORD_OBJ   ObjectType = "RECORD"
	FUNCTION_OBJ ObjectType = "FUNCTION"
	BUILTIN_OBJ  ObjectType = "BUILTIN"
	FUTURE_OBJ   ObjectType = "FUTURE"
	MODULE_OBJ   ObjectType = "MODULE"
	ANY_OBJ      ObjectType = "ANY"
)

// Object is the runtime value interface every PawScript value satisfies.
type Object interface {
	Type() ObjectType
	Inspect() string
}

// Scalars are value-copied on assignment/passing (spec.md §3.2): the
// scalar objects below are never mutated after construction (every
// operation builds a new one), so sharing a pointer to one behaves as a
// copy and no extra cloning logic is needed at the interpreter layer.

type Integer struct{ Value int32 }

func (i *Integer) Type() ObjectType { return INT_OBJ }
func (i *Integer) Inspect() string  { return fmt.Sprintf("%d", i.Value) }

type Long struct{ Value int64 }

func (l *Long) Type() ObjectType { return LONG_OBJ }
func (l *Long) Inspect() string  { return fmt.Sprintf("%d", l.Value) }

type Float struct{ Value float32 }

func (f *Float) Type() ObjectType { return FLOAT_OBJ }
func (f *Float) Inspect() string  { return fmt.Sprintf("%g", f.Value) }

type Double struct{ Value float64 }

func (d *Double) Type() ObjectType { return DOUBLE_OBJ }
func (d *Double) Inspect() string  { return fmt.Sprintf("%g", d.Value) }

type Bool struct{ Value bool }

func (b *Bool) Type() ObjectType { return BOOL_OBJ }
func (b *Bool) Inspect() string  { return fmt.Sprintf("%t", b.Value) }

var (
	TRUE  = &Bool{Value: true}
	FALSE = &Bool{Value: false}
)

func NativeBoolToBool(v bool) *Bool {
	if v {
		return TRUE
	}
	return FALSE
}

type Char struct{ Value rune }

func (c *Char) Type() ObjectType { return CHAR_OBJ }
func (c *Char) Inspect() string  { return "'" + string(c.Value) + "'" }

type String struct{ Value string }

func (s *String) Type() ObjectType { return STRING_OBJ }
func (s *String) Inspect() string  { return s.Value }

type Nil struct{}

func (n *Nil) Type() ObjectType { return NIL_OBJ }
func (n *Nil) Inspect() string  { return "nopaw" }

var NOPAW = &Nil{}

// Array is reference semantics: sharing an Array value means sharing
// the backing slice, matching spec.md §3.2's composite-value rule.
type Array struct {
	Elements []Object
	Elem     types.Type
}

func (a *Array) Type() ObjectType { return ARRAY_OBJ }
func (a *Array) Inspect() string {
	parts := make([]string, len(a.Elements))
	for i, e := range a.Elements {
		parts[i] = e.Inspect()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Record is reference semantics (spec.md §3.2): two bindings holding
// the "same" record share this one *Record, so mutating a field
// through one binding is visible through the other.
type Record struct {
	Def    *types.Record
	Fields map[string]Object
}

func (r *Record) Type() ObjectType { return RECORD_OBJ }
func (r *Record) Inspect() string {
	var out bytes.Buffer
	out.WriteString(r.Def.Name)
	out.WriteString(" { ")
	for i, f := range r.Def.Fields {
		if i > 0 {
			out.WriteString(", ")
		}
		out.WriteString(f.Name)
		out.WriteString(": ")
		out.WriteString(r.Fields[f.Name].Inspect())
	}
	out.WriteString(" }")
	return out.String()
}

// Function is a closure: a reference to the declaring Environment plus
// the AST body, evaluated fresh on every call (spec.md §4.5).
type Function struct {
	Name       string
	Parameters []*ast.Param
	ParamTypes []types.Type
	ReturnType types.Type
	Body       *ast.BlockStatement
	Env        *Environment
	IsAsync    bool
}

func (f *Function) Type() ObjectType { return FUNCTION_OBJ }
func (f *Function) Inspect() string {
	names := make([]string, len(f.Parameters))
	for i, p := range f.Parameters {
		names[i] = p.Name.Value + ": " + p.Type.String()
	}
	prefix := "fun"
	if f.IsAsync {
		prefix = "async fun"
	}
	return fmt.Sprintf("%s %s(%s): %s { ... }", prefix, f.Name, strings.Join(names, ", "), f.ReturnType.String())
}

// BuiltinFunction is the shape every host-bridge callable implements
// (internal/host); it receives already-evaluated argument values and
// returns a value or a Go error, which the interpreter turns into a
// runtime Bark.
type BuiltinFunction func(args []Object) (Object, error)

type Builtin struct {
	Name string
	Fn   BuiltinFunction
}

func (b *Builtin) Type() ObjectType { return BUILTIN_OBJ }
func (b *Builtin) Inspect() string  { return "builtin " + b.Name + "(...)" }

// Future is the handle an async call immediately returns; it resolves
// exactly once, either with a value or with an error that `await`
// re-raises as a Bark (spec.md §4.6). The cooperative single-threaded
// executor (internal/interpreter) is the only writer of Done/Value/Err;
// the mutex exists for interpreter-internal invariant-checking, not
// for protection against concurrent OS threads (see SPEC_FULL.md §5).
type Future struct {
	mu    sync.Mutex
	Done  bool
	Value Object
	Err   error
	Elem  types.Type
}

func (f *Future) Type() ObjectType { return FUTURE_OBJ }
func (f *Future) Inspect() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.Done {
		return "future(pending)"
	}
	if f.Err != nil {
		return fmt.Sprintf("future(error: %v)", f.Err)
	}
	return fmt.Sprintf("future(%s)", f.Value.Inspect())
}

func (f *Future) Resolve(v Object, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Done {
		return
	}
	f.Done = true
	f.Value = v
	f.Err = err
}

func (f *Future) Poll() (Object, error, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Value, f.Err, f.Done
}

// Module is the resolved value of an import: a fixed set of exported
// bindings (spec.md §4.3). Unlike Array/Record, a Module's contents
// never change after load, so no mutex is needed.
type Module struct {
	Name    string
	Path    string
	Exports map[string]Object
}

func (m *Module) Type() ObjectType { return MODULE_OBJ }
func (m *Module) Inspect() string  { return "module " + m.Name }

// Any wraps a value flowing through an `Any`-typed slot, carrying its
// concrete runtime type alongside it so casts back out of Any
// (spec.md §4.4, E4004) can check the tag.
type Any struct {
	Inner    Object
	Concrete types.Type
}

func (a *Any) Type() ObjectType { return ANY_OBJ }
func (a *Any) Inspect() string  { return a.Inner.Inspect() }
