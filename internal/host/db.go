// Package host implements internal/host.Bridge (SPEC_FULL.md §4.7): the
// say/ask I/O streams, the db built-in module pre-bound into every
// module before it is type-checked, and the paw.toml manifest loader.
package host

import (
	"database/sql"
	"fmt"
	"sync/atomic"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"pawscript/internal/interpreter"
	"pawscript/internal/object"
	"pawscript/internal/types"
)

// dbResultDef is the synthetic record type `db.exec` results are
// shaped as, grounded on the teacher's foreign/slug_io_db.go
// `fnIoDbExec`'s resMap (rowsAffected, lastInsertId) — re-expressed as
// a Record literal instead of a hash Map, since PawScript has no map
// literal type.
var dbResultDef = &types.Record{
	Name: "DbResult",
	Fields: []types.Field{
		{Name: "rowsAffected", Type: types.Long},
		{Name: "lastInsertId", Type: types.Long},
	},
}

// DbModuleType is the static namespace db.go's built-in module
// publishes, for wiring into the Checker's imported-modules map
// alongside user modules (see internal/module.Resolver).
var DbModuleType = &types.Module{
	Name: "db",
	Exports: map[string]types.Type{
		"open":     &types.Function{Params: []types.Type{types.String, types.String}, Return: types.Long},
		"query":    &types.Function{Params: []types.Type{types.Long, types.String}, Return: &types.Array{Elem: types.Any}},
		"exec":     &types.Function{Params: []types.Type{types.Long, types.String}, Return: dbResultDef},
		"close":    &types.Function{Params: []types.Type{types.Long}, Return: types.Void},
		"begin":    &types.Function{Params: []types.Type{types.Long}, Return: types.Long},
		"commit":   &types.Function{Params: []types.Type{types.Long}, Return: types.Void},
		"rollback": &types.Function{Params: []types.Type{types.Long}, Return: types.Void},
	},
}

// dbBridge tracks live *sql.DB/*sql.Tx by an opaque handle PawScript
// programs hold as a Long, mirroring the teacher's package-level
// dbConnections/dbTransactions maps keyed by int64.
type dbBridge struct {
	nextHandle atomic.Int64
	conns      map[int64]*sql.DB
	txs        map[int64]*sql.Tx
}

// NewDbModule builds the runtime `db` module: open/query/exec/close
// plus begin/commit/rollback for transaction control, backed by
// database/sql with the sqlite3/postgres/mysql drivers blank-imported
// (grounded on the teacher's internal/foreign/slug_io_db.go).
func NewDbModule() *object.Module {
	b := &dbBridge{conns: map[int64]*sql.DB{}, txs: map[int64]*sql.Tx{}}
	return &object.Module{
		Name: "db",
		Path: "<builtin>",
		Exports: map[string]object.Object{
			"open":     &object.Builtin{Name: "db.open", Fn: b.open},
			"query":    &object.Builtin{Name: "db.query", Fn: b.query},
			"exec":     &object.Builtin{Name: "db.exec", Fn: b.exec},
			"close":    &object.Builtin{Name: "db.close", Fn: b.close},
			"begin":    &object.Builtin{Name: "db.begin", Fn: b.begin},
			"commit":   &object.Builtin{Name: "db.commit", Fn: b.commit},
			"rollback": &object.Builtin{Name: "db.rollback", Fn: b.rollback},
		},
	}
}

func (b *dbBridge) open(args []object.Object) (object.Object, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("db.open expects (dsn: String, driver: String)")
	}
	dsn, ok := asString(args[0])
	if !ok {
		return nil, fmt.Errorf("db.open: dsn must be a String")
	}
	driver, ok := asString(args[1])
	if !ok {
		return nil, fmt.Errorf("db.open: driver must be a String")
	}

	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("db.open: %w", err)
	}
	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("db.open: ping failed: %w", err)
	}

	id := b.nextHandle.Add(1)
	b.conns[id] = conn
	return &object.Long{Value: id}, nil
}

func (b *dbBridge) query(args []object.Object) (object.Object, error) {
	if len(args) < 2 {
		return nil, fmt.Errorf("db.query expects (handle: Long, sql: String, ...params)")
	}
	id, ok := asHandle(args[0])
	if !ok {
		return nil, fmt.Errorf("db.query: invalid handle")
	}
	query, ok := asString(args[1])
	if !ok {
		return nil, fmt.Errorf("db.query: sql must be a String")
	}
	params := renderParams(args[2:])

	rows, err := b.queryRows(id, query, params)
	if err != nil {
		return nil, fmt.Errorf("db.query: %w", err)
	}
	defer rows.Close()
	return renderRows(rows)
}

func (b *dbBridge) queryRows(id int64, query string, params []any) (*sql.Rows, error) {
	if tx, ok := b.txs[id]; ok {
		return tx.Query(query, params...)
	}
	conn, ok := b.conns[id]
	if !ok {
		return nil, fmt.Errorf("invalid connection handle")
	}
	return conn.Query(query, params...)
}

func (b *dbBridge) exec(args []object.Object) (object.Object, error) {
	if len(args) < 2 {
		return nil, fmt.Errorf("db.exec expects (handle: Long, sql: String, ...params)")
	}
	id, ok := asHandle(args[0])
	if !ok {
		return nil, fmt.Errorf("db.exec: invalid handle")
	}
	query, ok := asString(args[1])
	if !ok {
		return nil, fmt.Errorf("db.exec: sql must be a String")
	}
	params := renderParams(args[2:])

	var result sql.Result
	var err error
	if tx, ok := b.txs[id]; ok {
		result, err = tx.Exec(query, params...)
	} else {
		conn, ok := b.conns[id]
		if !ok {
			return nil, fmt.Errorf("db.exec: invalid connection handle")
		}
		result, err = conn.Exec(query, params...)
	}
	if err != nil {
		return nil, fmt.Errorf("db.exec: %w", err)
	}

	affected, _ := result.RowsAffected()
	lastID, _ := result.LastInsertId()
	return &object.Record{
		Def: dbResultDef,
		Fields: map[string]object.Object{
			"rowsAffected": &object.Long{Value: affected},
			"lastInsertId": &object.Long{Value: lastID},
		},
	}, nil
}

func (b *dbBridge) close(args []object.Object) (object.Object, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("db.close expects (handle: Long)")
	}
	id, ok := asHandle(args[0])
	if !ok {
		return nil, fmt.Errorf("db.close: invalid handle")
	}
	if tx, ok := b.txs[id]; ok {
		tx.Rollback()
		delete(b.txs, id)
	}
	if conn, ok := b.conns[id]; ok {
		conn.Close()
		delete(b.conns, id)
	}
	return object.NOPAW, nil
}

func (b *dbBridge) begin(args []object.Object) (object.Object, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("db.begin expects (handle: Long)")
	}
	id, ok := asHandle(args[0])
	if !ok {
		return nil, fmt.Errorf("db.begin: invalid handle")
	}
	conn, ok := b.conns[id]
	if !ok {
		return nil, fmt.Errorf("db.begin: invalid connection handle")
	}
	tx, err := conn.Begin()
	if err != nil {
		return nil, fmt.Errorf("db.begin: %w", err)
	}
	b.txs[id] = tx
	return args[0], nil
}

func (b *dbBridge) commit(args []object.Object) (object.Object, error) {
	return b.endTx(args, "db.commit", (*sql.Tx).Commit)
}

func (b *dbBridge) rollback(args []object.Object) (object.Object, error) {
	return b.endTx(args, "db.rollback", (*sql.Tx).Rollback)
}

func (b *dbBridge) endTx(args []object.Object, name string, finish func(*sql.Tx) error) (object.Object, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("%s expects (handle: Long)", name)
	}
	id, ok := asHandle(args[0])
	if !ok {
		return nil, fmt.Errorf("%s: invalid handle", name)
	}
	tx, ok := b.txs[id]
	if !ok {
		return nil, fmt.Errorf("%s: invalid transaction handle", name)
	}
	if err := finish(tx); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	delete(b.txs, id)
	return object.NOPAW, nil
}

func renderRows(rows *sql.Rows) (object.Object, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	colTypes, _ := rows.ColumnTypes()

	var out []object.Object
	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, err
		}

		fields := make([]types.Field, len(columns))
		rowFields := make(map[string]object.Object, len(columns))
		for i, col := range columns {
			dbType := ""
			if i < len(colTypes) {
				dbType = colTypes[i].DatabaseTypeName()
			}
			v := columnValue(values[i], dbType)
			fields[i] = types.Field{Name: col, Type: types.Any}
			rowFields[col] = &object.Any{Inner: v, Concrete: runtimeTypeOf(v)}
		}
		rowDef := &types.Record{Name: "DbRow", Fields: fields}
		out = append(out, &object.Record{Def: rowDef, Fields: rowFields})
	}
	return &object.Array{Elements: out, Elem: types.Any}, rows.Err()
}

// columnValue converts a database/sql scan result to a runtime Value,
// grounded on the teacher's foreign/slug_io_db.go mapValue, minus the
// []byte-as-Bytes branch (PawScript has no byte-string type — a BLOB
// column renders as its raw String form instead).
func columnValue(v any, dbType string) object.Object {
	if v == nil {
		return object.NOPAW
	}
	switch x := v.(type) {
	case int64:
		return &object.Long{Value: x}
	case float64:
		return &object.Double{Value: x}
	case []byte:
		return &object.String{Value: string(x)}
	case string:
		return &object.String{Value: x}
	case bool:
		return object.NativeBoolToBool(x)
	case time.Time:
		return &object.String{Value: x.Format(time.RFC3339)}
	default:
		_ = dbType
		return &object.String{Value: fmt.Sprintf("%v", v)}
	}
}

func runtimeTypeOf(v object.Object) types.Type {
	switch v.(type) {
	case *object.Long:
		return types.Long
	case *object.Double:
		return types.Double
	case *object.String:
		return types.String
	case *object.Bool:
		return types.Bool
	case *object.Nil:
		return types.Nil
	}
	return types.Any
}

func renderParams(args []object.Object) []any {
	params := make([]any, len(args))
	for i, a := range args {
		params[i] = interpreter.Render(a)
	}
	return params
}

func asString(v object.Object) (string, bool) {
	s, ok := v.(*object.String)
	if !ok {
		return "", false
	}
	return s.Value, true
}

func asHandle(v object.Object) (int64, bool) {
	switch v := v.(type) {
	case *object.Long:
		return v.Value, true
	case *object.Integer:
		return int64(v.Value), true
	}
	return 0, false
}
