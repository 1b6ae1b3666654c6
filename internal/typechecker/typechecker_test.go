package typechecker

import (
	"strings"
	"testing"

	"pawscript/internal/parser"
	"pawscript/internal/types"
)

func mustCheck(t *testing.T, src string) []error {
	t.Helper()
	prog, err := parser.ParseProgram(src)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	c := NewChecker(map[string]*types.Module{})
	c.Check(prog)
	return c.Errors
}

func expectNoErrors(t *testing.T, src string) {
	t.Helper()
	errs := mustCheck(t, src)
	if len(errs) != 0 {
		t.Fatalf("expected no type errors, got %v", errs)
	}
}

func expectError(t *testing.T, src, wantCode string) {
	t.Helper()
	errs := mustCheck(t, src)
	for _, e := range errs {
		if strings.Contains(e.Error(), wantCode) {
			return
		}
	}
	t.Fatalf("expected an error containing %s, got %v", wantCode, errs)
}

func TestArithmeticAndLetMatch(t *testing.T) {
	expectNoErrors(t, `
fun main(): Void {
	let x: Int = 1 + 2 * 3
	let y: Double = 1.5 + 2.5
}
`)
}

func TestLetTypeMismatch(t *testing.T) {
	expectError(t, `
fun main(): Void {
	let x: Int = "hi"
}
`, "E3001")
}

func TestForwardReferenceAllowed(t *testing.T) {
	expectNoErrors(t, `
fun main(): Int {
	return helper()
}
fun helper(): Int {
	return 42
}
`)
}

func TestArityMismatch(t *testing.T) {
	expectError(t, `
fun add(a: Int, b: Int): Int {
	return a + b
}
fun main(): Void {
	let x: Int = add(1)
}
`, "E3002")
}

func TestUnknownIdentifier(t *testing.T) {
	expectError(t, `
fun main(): Void {
	let x: Int = y
}
`, "E3007")
}

func TestRecordFieldChecking(t *testing.T) {
	expectNoErrors(t, `
record Point {
	x: Int,
	y: Int
}
fun origin(): Point {
	return Point { x: 0, y: 0 }
}
`)
}

func TestRecordMissingField(t *testing.T) {
	expectError(t, `
record Point {
	x: Int,
	y: Int
}
fun origin(): Point {
	return Point { x: 0 }
}
`, "E3004")
}

func TestRecordUnknownField(t *testing.T) {
	expectError(t, `
record Point {
	x: Int,
	y: Int
}
fun origin(): Point {
	return Point { x: 0, y: 0, z: 1 }
}
`, "E3006")
}

func TestBreakOutsideLoop(t *testing.T) {
	expectError(t, `
fun main(): Void {
	break
}
`, "E3010")
}

func TestBreakInsideLoopOK(t *testing.T) {
	expectNoErrors(t, `
fun main(): Void {
	loop forever {
		break
	}
}
`)
}

func TestNopawRequiresOptional(t *testing.T) {
	expectError(t, `
fun main(): Void {
	let x: Int = nopaw
}
`, "E3009")
}

func TestNopawIntoOptionalOK(t *testing.T) {
	expectNoErrors(t, `
fun main(): Void {
	let x: Int? = nopaw
}
`)
}

func TestCastBetweenNumericOK(t *testing.T) {
	expectNoErrors(t, `
fun main(): Void {
	let x: Int = 3
	let y: Double = x as Double
}
`)
}

func TestBadCast(t *testing.T) {
	expectError(t, `
fun main(): Void {
	let x: String = "hi"
	let y: Int = x as Int
}
`, "E3003")
}

func TestAwaitOnNonFuture(t *testing.T) {
	expectError(t, `
fun main(): Void {
	let x: Int = 3
	let y: Int = await x
}
`, "E3001")
}

func TestAsyncCallProducesFutureAwaitUnwraps(t *testing.T) {
	expectNoErrors(t, `
async fun fetch(): Int {
	return 7
}
fun main(): Void {
	let f: Future<Int> = fetch()
	let v: Int = await f
}
`)
}

func TestIndexOnNonArray(t *testing.T) {
	expectError(t, `
fun main(): Void {
	let x: Int = 3
	let y: Int = x[0]
}
`, "E3013")
}

func TestFunctionMustReturnOnAllPaths(t *testing.T) {
	expectError(t, `
fun classify(x: Int): String {
	if x < 0 {
		return "negative"
	}
}
`, "E3011")
}

func TestFunctionReturnsOnAllPathsViaElse(t *testing.T) {
	expectNoErrors(t, `
fun classify(x: Int): String {
	if x < 0 {
		return "negative"
	} else {
		return "non-negative"
	}
}
`)
}

func TestDuplicateRecordFieldInit(t *testing.T) {
	expectError(t, `
record Point {
	x: Int,
	y: Int
}
fun origin(): Point {
	return Point { x: 0, x: 1, y: 0 }
}
`, "E3005")
}

func TestDuplicateFunctionDeclaration(t *testing.T) {
	expectError(t, `
fun dup(): Void {
}
fun dup(): Void {
}
`, "E3016")
}
