package object

import (
	"testing"

	"pawscript/internal/types"
)

func TestEnvironmentDefineAndGet(t *testing.T) {
	env := NewEnvironment()
	env.Define("x", &Integer{Value: 7}, nil)

	v, ok := env.Get("x")
	if !ok {
		t.Fatalf("expected x to be defined")
	}
	i, ok := v.(*Integer)
	if !ok || i.Value != 7 {
		t.Errorf("got %#v, want Integer{7}", v)
	}

	if _, ok := env.Get("y"); ok {
		t.Errorf("expected y to be undefined")
	}
}

func TestEnclosedEnvironmentLooksUpOuter(t *testing.T) {
	outer := NewEnvironment()
	outer.Define("x", &Integer{Value: 1}, nil)
	inner := NewEnclosedEnvironment(outer)

	v, ok := inner.Get("x")
	if !ok {
		t.Fatalf("expected inner scope to see outer binding")
	}
	if v.(*Integer).Value != 1 {
		t.Errorf("got %v, want 1", v)
	}
}

func TestEnclosedEnvironmentShadowsOuter(t *testing.T) {
	outer := NewEnvironment()
	outer.Define("x", &Integer{Value: 1}, nil)
	inner := NewEnclosedEnvironment(outer)
	inner.Define("x", &Integer{Value: 2}, nil)

	v, _ := inner.Get("x")
	if v.(*Integer).Value != 2 {
		t.Errorf("inner shadow: got %v, want 2", v)
	}
	v, _ = outer.Get("x")
	if v.(*Integer).Value != 1 {
		t.Errorf("outer unaffected: got %v, want 1", v)
	}
}

func TestAssignWalksOuterScopes(t *testing.T) {
	outer := NewEnvironment()
	outer.Define("x", &Integer{Value: 1}, nil)
	inner := NewEnclosedEnvironment(outer)

	if err := inner.Assign("x", &Integer{Value: 9}); err != nil {
		t.Fatalf("assign: %v", err)
	}
	v, _ := outer.Get("x")
	if v.(*Integer).Value != 9 {
		t.Errorf("got %v, want 9", v)
	}
}

func TestAssignUndeclaredNameErrors(t *testing.T) {
	env := NewEnvironment()
	if err := env.Assign("never_declared", &Integer{Value: 1}); err == nil {
		t.Errorf("expected an error assigning to an undeclared name")
	}
}

func TestBoolSingletons(t *testing.T) {
	if NativeBoolToBool(true) != TRUE {
		t.Errorf("expected NativeBoolToBool(true) to return the TRUE singleton")
	}
	if NativeBoolToBool(false) != FALSE {
		t.Errorf("expected NativeBoolToBool(false) to return the FALSE singleton")
	}
}

func TestFutureResolvesOnce(t *testing.T) {
	f := &Future{}
	if _, _, done := f.Poll(); done {
		t.Fatalf("new future should not be done")
	}
	f.Resolve(&Integer{Value: 42}, nil)
	v, err, done := f.Poll()
	if !done || err != nil || v.(*Integer).Value != 42 {
		t.Errorf("got (%v, %v, %v), want (42, nil, true)", v, err, done)
	}

	// A second Resolve must not overwrite the first (spec.md §4.5(c):
	// a Future resolves exactly once).
	f.Resolve(&Integer{Value: 0}, nil)
	v, _, _ = f.Poll()
	if v.(*Integer).Value != 42 {
		t.Errorf("second Resolve overwrote the first: got %v, want 42", v)
	}
}

func TestRecordInspectOrdersFieldsByDeclaration(t *testing.T) {
	def := &types.Record{Name: "Point", Fields: []types.Field{
		{Name: "x", Type: types.Int},
		{Name: "y", Type: types.Int},
	}}
	rec := &Record{Def: def, Fields: map[string]Object{
		"y": &Integer{Value: 4},
		"x": &Integer{Value: 3},
	}}
	want := "Point { x: 3, y: 4 }"
	if got := rec.Inspect(); got != want {
		t.Errorf("Inspect() = %q, want %q", got, want)
	}
}
