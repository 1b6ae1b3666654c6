package parser

import (
	"testing"

	"pawscript/internal/ast"
)

func mustParse(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog, err := ParseProgram(src)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	return prog
}

func TestLetStatement(t *testing.T) {
	prog := mustParse(t, `let x: Int = 1 + 2 * 3`)
	if len(prog.Statements) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(prog.Statements))
	}
	ls, ok := prog.Statements[0].(*ast.LetStatement)
	if !ok {
		t.Fatalf("expected *ast.LetStatement, got %T", prog.Statements[0])
	}
	if ls.Name.Value != "x" {
		t.Fatalf("expected name x, got %s", ls.Name.Value)
	}
	infix, ok := ls.Value.(*ast.InfixExpression)
	if !ok || infix.Operator != "+" {
		t.Fatalf("expected top-level '+' infix, got %s", ls.Value.String())
	}
	rhs, ok := infix.Right.(*ast.InfixExpression)
	if !ok || rhs.Operator != "*" {
		t.Fatalf("expected '*' to bind tighter than '+', got %s", ls.Value.String())
	}
}

func TestAskLet(t *testing.T) {
	prog := mustParse(t, `let name: String <- ask "what's your name?"`)
	ls := prog.Statements[0].(*ast.LetStatement)
	if !ls.IsAsk {
		t.Fatal("expected IsAsk true")
	}
	if _, ok := ls.AskPrompt.(*ast.StringLiteral); !ok {
		t.Fatalf("expected string literal prompt, got %T", ls.AskPrompt)
	}
}

func TestFunctionDeclaration(t *testing.T) {
	src := `
fun add(a: Int, b: Int): Int {
	return a + b
}
`
	prog := mustParse(t, src)
	fn, ok := prog.Statements[0].(*ast.FunctionDeclaration)
	if !ok {
		t.Fatalf("expected *ast.FunctionDeclaration, got %T", prog.Statements[0])
	}
	if fn.Name.Value != "add" || len(fn.Parameters) != 2 {
		t.Fatalf("unexpected function shape: %+v", fn)
	}
	if fn.IsAsync {
		t.Fatal("expected non-async function")
	}
}

func TestAsyncFunctionAndAwait(t *testing.T) {
	src := `
async fun fetch(): Int {
	return 1
}
fun main(): Void {
	let f: Future<Int> = fetch()
	let v: Int = await f
}
`
	prog := mustParse(t, src)
	fn := prog.Statements[0].(*ast.FunctionDeclaration)
	if !fn.IsAsync {
		t.Fatal("expected async function")
	}
	main := prog.Statements[1].(*ast.FunctionDeclaration)
	letV := main.Body.Statements[1].(*ast.LetStatement)
	if _, ok := letV.Value.(*ast.AwaitExpression); !ok {
		t.Fatalf("expected await expression, got %T", letV.Value)
	}
}

func TestIfElseIf(t *testing.T) {
	src := `
fun classify(x: Int): Void {
	if x < 0 {
		say "negative"
	} else if x == 0 {
		say "zero"
	} else {
		say "positive"
	}
}
`
	prog := mustParse(t, src)
	fn := prog.Statements[0].(*ast.FunctionDeclaration)
	ifStmt := fn.Body.Statements[0].(*ast.IfStatement)
	elseIf, ok := ifStmt.Else.(*ast.IfStatement)
	if !ok {
		t.Fatalf("expected chained else-if, got %T", ifStmt.Else)
	}
	if _, ok := elseIf.Else.(*ast.BlockStatement); !ok {
		t.Fatalf("expected trailing else block, got %T", elseIf.Else)
	}
}

func TestLoopForms(t *testing.T) {
	src := `
fun loops(): Void {
	loop forever {
		break
	}
	loop i in 0..10 {
		continue
	}
	loop item in items {
		say item
	}
}
`
	prog := mustParse(t, src)
	fn := prog.Statements[0].(*ast.FunctionDeclaration)
	l1 := fn.Body.Statements[0].(*ast.LoopStatement)
	if l1.Kind != ast.LoopForever {
		t.Fatalf("expected LoopForever, got %v", l1.Kind)
	}
	l2 := fn.Body.Statements[1].(*ast.LoopStatement)
	if l2.Kind != ast.LoopRange || l2.Var.Value != "i" {
		t.Fatalf("expected LoopRange over i, got %+v", l2)
	}
	l3 := fn.Body.Statements[2].(*ast.LoopStatement)
	if l3.Kind != ast.LoopArray || l3.Var.Value != "item" {
		t.Fatalf("expected LoopArray over item, got %+v", l3)
	}
}

func TestSniffSnatchLastly(t *testing.T) {
	src := `
fun risky(): Void {
	sniff {
		bark "boom"
	} snatch (e) {
		say e
	} lastly {
		say "cleanup"
	}
}
`
	prog := mustParse(t, src)
	fn := prog.Statements[0].(*ast.FunctionDeclaration)
	s := fn.Body.Statements[0].(*ast.SniffStatement)
	if s.SnatchName.Value != "e" {
		t.Fatalf("expected snatch binding e, got %+v", s.SnatchName)
	}
	if s.Lastly == nil {
		t.Fatal("expected lastly block")
	}
}

func TestRecordDeclarationAndLiteral(t *testing.T) {
	src := `
record Point {
	x: Int,
	y: Int
}
fun origin(): Point {
	return Point { x: 0, y: 0 }
}
`
	prog := mustParse(t, src)
	rec := prog.Statements[0].(*ast.RecordDeclaration)
	if rec.Name.Value != "Point" || len(rec.Fields) != 2 {
		t.Fatalf("unexpected record shape: %+v", rec)
	}
	fn := prog.Statements[1].(*ast.FunctionDeclaration)
	ret := fn.Body.Statements[0].(*ast.ReturnStatement)
	lit, ok := ret.Value.(*ast.RecordLiteral)
	if !ok || lit.Name.Value != "Point" || len(lit.Fields) != 2 {
		t.Fatalf("expected a Point record literal, got %#v", ret.Value)
	}
}

func TestIfConditionIsNotMisparsedAsRecordLiteral(t *testing.T) {
	src := `
fun check(flag: Bool): Void {
	if flag {
		say "yes"
	}
}
`
	prog := mustParse(t, src)
	fn := prog.Statements[0].(*ast.FunctionDeclaration)
	ifStmt, ok := fn.Body.Statements[0].(*ast.IfStatement)
	if !ok {
		t.Fatalf("expected *ast.IfStatement, got %T", fn.Body.Statements[0])
	}
	if _, ok := ifStmt.Condition.(*ast.Identifier); !ok {
		t.Fatalf("expected bare identifier condition, got %T", ifStmt.Condition)
	}
}

func TestArrayIndexFieldLengthAndCast(t *testing.T) {
	src := `
fun combo(items: Array<Int>, p: Point): Void {
	let n: Int = items.length
	let m: Int = items.length()
	let first: Int = items[0]
	let px: Int = p.x
	let d: Double = n as Double
}
`
	prog := mustParse(t, src)
	fn := prog.Statements[0].(*ast.FunctionDeclaration)

	n := fn.Body.Statements[0].(*ast.LetStatement)
	if _, ok := n.Value.(*ast.LengthExpression); !ok {
		t.Fatalf("expected LengthExpression for bare .length, got %T", n.Value)
	}
	m := fn.Body.Statements[1].(*ast.LetStatement)
	if _, ok := m.Value.(*ast.LengthExpression); !ok {
		t.Fatalf("expected LengthExpression for .length(), got %T", m.Value)
	}
	first := fn.Body.Statements[2].(*ast.LetStatement)
	if _, ok := first.Value.(*ast.IndexExpression); !ok {
		t.Fatalf("expected IndexExpression, got %T", first.Value)
	}
	px := fn.Body.Statements[3].(*ast.LetStatement)
	if _, ok := px.Value.(*ast.FieldAccessExpression); !ok {
		t.Fatalf("expected FieldAccessExpression, got %T", px.Value)
	}
	d := fn.Body.Statements[4].(*ast.LetStatement)
	cast, ok := d.Value.(*ast.CastExpression)
	if !ok || cast.Type.String() != "Double" {
		t.Fatalf("expected cast to Double, got %#v", d.Value)
	}
}

func TestAssignmentStatement(t *testing.T) {
	src := `
fun bump(items: Array<Int>): Void {
	items[0] = items[0] + 1
}
`
	prog := mustParse(t, src)
	fn := prog.Statements[0].(*ast.FunctionDeclaration)
	assign, ok := fn.Body.Statements[0].(*ast.AssignStatement)
	if !ok {
		t.Fatalf("expected *ast.AssignStatement, got %T", fn.Body.Statements[0])
	}
	if _, ok := assign.Target.(*ast.IndexExpression); !ok {
		t.Fatalf("expected index-expression assignment target, got %T", assign.Target)
	}
}

func TestImportWithAlias(t *testing.T) {
	prog := mustParse(t, `import utils.math as m`)
	imp := prog.Statements[0].(*ast.ImportStatement)
	if len(imp.Path) != 2 || imp.Path[0] != "utils" || imp.Path[1] != "math" {
		t.Fatalf("unexpected import path: %+v", imp.Path)
	}
	if imp.Alias == nil || imp.Alias.Value != "m" {
		t.Fatalf("expected alias m, got %+v", imp.Alias)
	}
}

func TestOptionalTypeAnnotation(t *testing.T) {
	prog := mustParse(t, `let maybe: Int? = nopaw`)
	ls := prog.Statements[0].(*ast.LetStatement)
	opt, ok := ls.Type.(*ast.OptionalType)
	if !ok {
		t.Fatalf("expected *ast.OptionalType, got %T", ls.Type)
	}
	if opt.Inner.String() != "Int" {
		t.Fatalf("expected Int inner type, got %s", opt.Inner.String())
	}
	if _, ok := ls.Value.(*ast.NopawLiteral); !ok {
		t.Fatalf("expected nopaw literal, got %T", ls.Value)
	}
}

func TestMissingSniffClauseIsError(t *testing.T) {
	_, err := ParseProgram(`
fun f(): Void {
	sniff {
		say "x"
	}
}
`)
	if err == nil {
		t.Fatal("expected an error for sniff with no snatch/lastly")
	}
}
