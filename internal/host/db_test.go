package host

import (
	"testing"

	"pawscript/internal/object"
)

func TestDbOpenQueryExecClose(t *testing.T) {
	mod := NewDbModule()
	open := mod.Exports["open"].(*object.Builtin)
	query := mod.Exports["query"].(*object.Builtin)
	exec := mod.Exports["exec"].(*object.Builtin)
	closeFn := mod.Exports["close"].(*object.Builtin)

	handle, err := open.Fn([]object.Object{
		&object.String{Value: ":memory:"},
		&object.String{Value: "sqlite3"},
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	_, err = exec.Fn([]object.Object{handle, &object.String{Value: "create table t (id integer, name text)"}})
	if err != nil {
		t.Fatalf("exec create table: %v", err)
	}

	result, err := exec.Fn([]object.Object{handle, &object.String{Value: "insert into t (id, name) values (1, 'a')"}})
	if err != nil {
		t.Fatalf("exec insert: %v", err)
	}
	rec, ok := result.(*object.Record)
	if !ok {
		t.Fatalf("exec result = %T, want *object.Record", result)
	}
	if rec.Fields["rowsAffected"].(*object.Long).Value != 1 {
		t.Errorf("rowsAffected = %v, want 1", rec.Fields["rowsAffected"])
	}

	rows, err := query.Fn([]object.Object{handle, &object.String{Value: "select id, name from t"}})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	arr, ok := rows.(*object.Array)
	if !ok || len(arr.Elements) != 1 {
		t.Fatalf("query result = %#v, want a 1-element Array", rows)
	}
	row, ok := arr.Elements[0].(*object.Record)
	if !ok {
		t.Fatalf("row = %T, want *object.Record", arr.Elements[0])
	}
	name, ok := row.Fields["name"].(*object.Any)
	if !ok {
		t.Fatalf("row.name = %T, want *object.Any", row.Fields["name"])
	}
	if s, ok := name.Inner.(*object.String); !ok || s.Value != "a" {
		t.Errorf("row.name = %#v, want String(a)", name.Inner)
	}

	if _, err := closeFn.Fn([]object.Object{handle}); err != nil {
		t.Fatalf("close: %v", err)
	}
}
