package object

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"pawscript/internal/types"
)

var nextID atomic.Uint64

func nextEnvID() uint64 { return nextID.Add(1) }

// Binding is a single name's slot in an Environment: its current value,
// its declared static type (for diagnostics and Any-unwrapping), and
// whether it may be re-assigned. spec.md's Open Question on mutability
// resolves `let` as always mutable (see DESIGN.md), so IsMutable is
// carried for documentation and future narrowing rather than enforced
// today.
type Binding struct {
	Value     Object
	Type      types.Type
	IsMutable bool
}

// Environment is a lexical scope: a map of bindings plus a link to its
// enclosing scope, grounded on the teacher's object.Environment but
// without the Defers stack — PawScript's sniff/lastly unwinding is
// driven by a Go defer in the interpreter's sniff evaluator instead
// (see internal/interpreter).
type Environment struct {
	ID    uint64
	Outer *Environment

	mu       sync.RWMutex
	Bindings map[string]*Binding
}

func NewEnvironment() *Environment {
	return &Environment{
		ID:       nextEnvID(),
		Bindings: make(map[string]*Binding),
	}
}

func NewEnclosedEnvironment(outer *Environment) *Environment {
	env := NewEnvironment()
	env.Outer = outer
	return env
}

// Get looks up name, walking outer scopes.
func (e *Environment) Get(name string) (Object, bool) {
	b, ok := e.getBinding(name)
	if !ok {
		return nil, false
	}
	return b.Value, true
}

// GetType reports the static type recorded for name, if any. Nothing in
// the interpreter calls it.
func (e *Environment) GetType(name string) (types.Type, bool) {
	b, ok := e.getBinding(name)
	if !ok {
		return nil, false
	}
	return b.Type, true
}

func (e *Environment) getBinding(name string) (*Binding, bool) {
	e.mu.RLock()
	b, ok := e.Bindings[name]
	e.mu.RUnlock()
	if ok {
		return b, true
	}
	if e.Outer != nil {
		return e.Outer.getBinding(name)
	}
	return nil, false
}

// Define introduces a new binding in this scope, shadowing any binding
// of the same name in an outer scope.
func (e *Environment) Define(name string, val Object, t types.Type) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Bindings[name] = &Binding{Value: val, Type: t, IsMutable: true}
	slog.Debug("binding defined", slog.String("name", name), slog.Any("type", t), slog.Uint64("env", e.ID))
}

// All returns a snapshot of every binding defined directly in this
// scope (not walking Outer), used by internal/module to collect a
// module's exported namespace after running its top-level statements.
func (e *Environment) All() map[string]*Binding {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make(map[string]*Binding, len(e.Bindings))
	for k, v := range e.Bindings {
		out[k] = v
	}
	return out
}

// Assign updates an existing binding, walking outer scopes, and errors
// if name was never declared (spec.md §4.2 assignment semantics).
func (e *Environment) Assign(name string, val Object) error {
	e.mu.Lock()
	b, ok := e.Bindings[name]
	if ok {
		b.Value = val
		e.mu.Unlock()
		slog.Debug("binding assigned", slog.String("name", name), slog.Uint64("env", e.ID))
		return nil
	}
	e.mu.Unlock()
	if e.Outer != nil {
		return e.Outer.Assign(name, val)
	}
	return fmt.Errorf("assignment to undeclared name %q", name)
}
