package interpreter

import (
	"bytes"
	"strings"
	"testing"

	"pawscript/internal/parser"
	"pawscript/internal/types"
	"pawscript/internal/typechecker"
)

// run parses, type-checks, and interprets src, failing the test on any
// lex/parse/type error, and returns everything written to stdout.
func run(t *testing.T, src string) string {
	t.Helper()
	prog, err := parser.ParseProgram(src)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	c := typechecker.NewChecker(map[string]*types.Module{})
	if err := c.Check(prog); err != nil {
		t.Fatalf("type error: %v", err)
	}
	in := NewFromChecker(c)
	var out bytes.Buffer
	in.SetIO(&out, strings.NewReader(""))
	if err := in.Run(prog); err != nil {
		t.Fatalf("runtime error: %v", err)
	}
	return out.String()
}

// runExpectBark is like run but expects Run to fail with an uncaught
// bark, returning its message.
func runExpectBark(t *testing.T, src string) string {
	t.Helper()
	prog, err := parser.ParseProgram(src)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	c := typechecker.NewChecker(map[string]*types.Module{})
	if err := c.Check(prog); err != nil {
		t.Fatalf("type error: %v", err)
	}
	in := NewFromChecker(c)
	var out bytes.Buffer
	in.SetIO(&out, strings.NewReader(""))
	err = in.Run(prog)
	if err == nil {
		t.Fatalf("expected an uncaught bark, got none (stdout: %q)", out.String())
	}
	return err.Error()
}

// Scenario 1: reciprocal with bark + lastly (spec.md §8).
func TestScenarioReciprocalBarkLastly(t *testing.T) {
	src := `
fun reciprocal(x: Int): Float { if x == 0 { bark "division by zero" } return 1.0 / (x as Float) }
sniff {
    say "r(2)=" + reciprocal(2)
    say "r(0)=" + reciprocal(0)
} snatch (e) { say "caught: " + e } lastly { say "cleanup" }
say "done"
`
	got := run(t, src)
	want := "r(2)=0.5\ncaught: division by zero\ncleanup\ndone\n"
	if got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

// Scenario 2: range loop break/continue (spec.md §8).
func TestScenarioRangeLoopBreakContinue(t *testing.T) {
	src := `
let s: Int = 0
loop i in 1..10 {
    if i == 5 { continue }
    if i == 8 { break }
    s = s + i
}
say s
`
	got := run(t, src)
	if strings.TrimSpace(got) != "23" {
		t.Errorf("output = %q, want %q", got, "23\n")
	}
}

// Scenario 3: record construction in any field order (spec.md §8).
func TestScenarioRecordConstructionAnyOrder(t *testing.T) {
	src := `
record Point { x: Int, y: Int }
let p: Point = Point { y: 4, x: 3 }
say p.x + p.y
`
	got := run(t, src)
	if strings.TrimSpace(got) != "7" {
		t.Errorf("output = %q, want %q", got, "7\n")
	}
}

// Scenario 4: optional/nopaw (spec.md §8).
func TestScenarioOptionalNopaw(t *testing.T) {
	src := `
let m: Int? = nopaw
if m == nopaw { say "empty" } else { say "full" }
`
	got := run(t, src)
	if strings.TrimSpace(got) != "empty" {
		t.Errorf("output = %q, want %q", got, "empty\n")
	}
}

func TestScenarioOptionalNopawIntoNonOptionalRejected(t *testing.T) {
	prog, err := parser.ParseProgram(`let n: Int = nopaw`)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	c := typechecker.NewChecker(map[string]*types.Module{})
	if err := c.Check(prog); err == nil {
		t.Fatalf("expected a type error assigning nopaw to a non-optional Int")
	}
}

// Scenario 5: async/await (spec.md §8).
func TestScenarioAsyncAwait(t *testing.T) {
	src := `
async fun f(): String { return "ok" }
let r: String = await f()
say r
`
	got := run(t, src)
	if strings.TrimSpace(got) != "ok" {
		t.Errorf("output = %q, want %q", got, "ok\n")
	}
}

// Scenario 6: cast + numeric widening (spec.md §8; see DESIGN.md's Open
// Question resolution on widenNumeric/widenBoth).
func TestScenarioCastAndWidening(t *testing.T) {
	src := `
let i: Int = 7
say (i as Float) + 0.5
say (i as Double) + 0.25
`
	got := run(t, src)
	want := "7.5\n7.25\n"
	if got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestIntegerDivisionByZeroBarks(t *testing.T) {
	msg := runExpectBark(t, `
let a: Int = 1
let b: Int = 0
say a / b
`)
	if !strings.Contains(msg, "division by zero") {
		t.Errorf("error = %q, want it to mention division by zero", msg)
	}
}

func TestArrayOutOfBoundsBarksAndIsCatchable(t *testing.T) {
	src := `
let a: Array<Int> = [1, 2, 3]
sniff {
    say a[10]
} snatch (e) { say "caught" }
`
	got := run(t, src)
	if strings.TrimSpace(got) != "caught" {
		t.Errorf("output = %q, want %q", got, "caught\n")
	}
}

func TestLastlyRunsExactlyOnceOnReturn(t *testing.T) {
	src := `
fun f(): Int {
    sniff {
        return 1
    } lastly {
        say "lastly"
    }
}
say f()
`
	got := run(t, src)
	if got != "lastly\n1\n" {
		t.Errorf("output = %q, want %q", got, "lastly\n1\n")
	}
}

func TestLastlySupersedesPriorBark(t *testing.T) {
	src := `
fun f(): Int {
    sniff {
        bark "original"
    } lastly {
        bark "from lastly"
    }
    return 0
}
sniff {
    say f()
} snatch (e) { say "caught: " + e }
`
	got := run(t, src)
	if strings.TrimSpace(got) != "caught: from lastly" {
		t.Errorf("output = %q, want %q", got, "caught: from lastly\n")
	}
}

func TestMutualRecursionAcrossTopLevelFunctions(t *testing.T) {
	src := `
fun isEven(n: Int): Bool { if n == 0 { return true } return isOdd(n - 1) }
fun isOdd(n: Int): Bool { if n == 0 { return false } return isEven(n - 1) }
say isEven(10)
`
	got := run(t, src)
	if strings.TrimSpace(got) != "true" {
		t.Errorf("output = %q, want %q", got, "true\n")
	}
}

func TestArrayAndRecordAreReferenceSemantics(t *testing.T) {
	src := `
record Box { n: Int }
let b: Box = Box { n: 1 }
let c: Box = b
c.n = 9
say b.n
`
	got := run(t, src)
	if strings.TrimSpace(got) != "9" {
		t.Errorf("output = %q, want %q", got, "9\n")
	}
}

func TestRenderFunctionsArraysAndRecords(t *testing.T) {
	src := `
record Point { x: Int, y: Int }
say [1, 2, 3]
say Point { x: 1, y: 2 }
say nopaw
`
	got := run(t, src)
	want := "[1, 2, 3]\nPoint { x: 1, y: 2 }\nnopaw\n"
	if got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}
