// Package interpreter tree-walks a type-checked PawScript Program
// (spec.md §4.5), threading the current lexical *object.Environment
// explicitly through every Eval/evalStatement call rather than the
// teacher's implicit envStack (internal/evaluator.Evaluator's
// PushEnv/CurrentEnv/PopEnv): the cooperative async executor (see
// executor.go) runs a queued task's body long after it was enqueued,
// interleaved with unrelated code, and an implicit shared stack would
// be corrupted by that out-of-order execution. See DESIGN.md.
package interpreter

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"pawscript/internal/ast"
	"pawscript/internal/object"
	"pawscript/internal/typechecker"
	"pawscript/internal/types"
)

// Interpreter owns the global environment, the resolved record/function
// tables handed down from type-checking, and the cooperative executor.
type Interpreter struct {
	Globals   *object.Environment
	records   map[string]*types.Record
	functions map[string]typechecker.FunctionSignature
	exec      *Executor

	Stdout io.Writer
	Stdin  *bufio.Reader
}

// New builds an Interpreter from the record/function tables a Checker
// resolved while type-checking the same Program.
func New(records map[string]*types.Record, functions map[string]typechecker.FunctionSignature) *Interpreter {
	return &Interpreter{
		Globals:   object.NewEnvironment(),
		records:   records,
		functions: functions,
		exec:      NewExecutor(),
		Stdout:    os.Stdout,
		Stdin:     bufio.NewReader(os.Stdin),
	}
}

// NewFromChecker is a convenience constructor for the common case where
// the same Checker that validated the Program also resolved its
// records and functions.
func NewFromChecker(c *typechecker.Checker) *Interpreter {
	return New(c.Records(), c.Functions())
}

// SetIO redirects say/ask traffic, for tests and for hosts embedding
// the interpreter with non-OS streams.
func (in *Interpreter) SetIO(out io.Writer, input io.Reader) {
	in.Stdout = out
	in.Stdin = bufio.NewReader(input)
}

// DefineGlobal installs a host-provided binding (a builtin function, a
// resolved module, ...) into the global scope before Run.
func (in *Interpreter) DefineGlobal(name string, val object.Object, t types.Type) {
	in.Globals.Define(name, val, t)
}

// Run executes prog's top-level statements in source order after
// hoisting every function declaration, so mutually recursive top-level
// functions can call each other regardless of declaration order
// (mirroring the Checker's own two-pass registration). It returns a
// non-nil error only for an uncaught Bark or a signal that should never
// reach the top level (spec.md §6 "non-zero ... on an uncaught bark").
func (in *Interpreter) Run(prog *ast.Program) error {
	in.registerFunctionObjects(prog)
	for _, stmt := range prog.Statements {
		switch stmt.(type) {
		case *ast.FunctionDeclaration, *ast.RecordDeclaration, *ast.ImportStatement:
			continue
		default:
			if sig := in.evalStatement(stmt, in.Globals); sig != nil {
				return in.signalToError(sig)
			}
		}
	}
	return nil
}

func (in *Interpreter) signalToError(sig *Signal) error {
	if sig.Kind == SigBark {
		return errors.New(sig.Message)
	}
	return fmt.Errorf("%v escaped the top level", sig.Kind)
}

func (in *Interpreter) registerFunctionObjects(prog *ast.Program) {
	for _, stmt := range prog.Statements {
		decl, ok := stmt.(*ast.FunctionDeclaration)
		if !ok {
			continue
		}
		sig := in.functions[decl.Name.Value]
		fn := &object.Function{
			Name:       decl.Name.Value,
			Parameters: decl.Parameters,
			ParamTypes: sig.Params,
			ReturnType: sig.Return,
			Body:       decl.Body,
			Env:        in.Globals,
			IsAsync:    decl.IsAsync,
		}
		ft := &types.Function{Params: sig.Params, Return: sig.Return, IsAsync: sig.IsAsync}
		in.Globals.Define(decl.Name.Value, fn, ft)
	}
}

// ---- Statements ----

func (in *Interpreter) evalBlock(block *ast.BlockStatement, parent *object.Environment) *Signal {
	env := object.NewEnclosedEnvironment(parent)
	for _, stmt := range block.Statements {
		if sig := in.evalStatement(stmt, env); sig != nil {
			return sig
		}
	}
	return nil
}

func (in *Interpreter) evalStatement(stmt ast.Statement, env *object.Environment) *Signal {
	switch s := stmt.(type) {
	case *ast.LetStatement:
		return in.evalLet(s, env)
	case *ast.AssignStatement:
		return in.evalAssign(s, env)
	case *ast.SayStatement:
		v, sig := in.Eval(s.Value, env)
		if sig != nil {
			return sig
		}
		in.println(Render(v))
		return nil
	case *ast.AskStatement:
		prompt, sig := in.Eval(s.Prompt, env)
		if sig != nil {
			return sig
		}
		in.print(Render(prompt))
		in.readLine() // bare `ask` discards the read line (spec.md §4.5)
		return nil
	case *ast.ReturnStatement:
		if s.Value == nil {
			return &Signal{Kind: SigReturn}
		}
		v, sig := in.Eval(s.Value, env)
		if sig != nil {
			return sig
		}
		return &Signal{Kind: SigReturn, Value: v}
	case *ast.BarkStatement:
		v, sig := in.Eval(s.Value, env)
		if sig != nil {
			return sig
		}
		str, ok := v.(*object.String)
		if !ok {
			return barkf("bark requires a String message")
		}
		return &Signal{Kind: SigBark, Message: str.Value}
	case *ast.BreakStatement:
		return &Signal{Kind: SigBreak}
	case *ast.ContinueStatement:
		return &Signal{Kind: SigContinue}
	case *ast.IfStatement:
		return in.evalIf(s, env)
	case *ast.LoopStatement:
		return in.evalLoop(s, env)
	case *ast.SniffStatement:
		return in.evalSniff(s, env)
	case *ast.BlockStatement:
		return in.evalBlock(s, env)
	case *ast.ExpressionStatement:
		if s.Expression == nil {
			return nil
		}
		_, sig := in.Eval(s.Expression, env)
		return sig
	case *ast.FunctionDeclaration, *ast.RecordDeclaration, *ast.ImportStatement:
		return nil // hoisted by registerFunctionObjects / resolved by internal/module
	}
	return nil
}

func (in *Interpreter) evalLet(s *ast.LetStatement, env *object.Environment) *Signal {
	var val object.Object
	if s.IsAsk {
		prompt, sig := in.Eval(s.AskPrompt, env)
		if sig != nil {
			return sig
		}
		in.print(Render(prompt))
		val = &object.String{Value: in.readLine()}
	} else {
		v, sig := in.Eval(s.Value, env)
		if sig != nil {
			return sig
		}
		val = v
	}
	var declared types.Type
	if s.Type != nil {
		declared = in.resolveType(s.Type)
	} else {
		declared = runtimeTypeOf(val)
	}
	env.Define(s.Name.Value, val, declared)
	return nil
}

func (in *Interpreter) evalAssign(s *ast.AssignStatement, env *object.Environment) *Signal {
	val, sig := in.Eval(s.Value, env)
	if sig != nil {
		return sig
	}
	switch target := s.Target.(type) {
	case *ast.Identifier:
		if err := env.Assign(target.Value, val); err != nil {
			return barkf("%s", err.Error())
		}
		return nil
	case *ast.IndexExpression:
		base, sig := in.Eval(target.Left, env)
		if sig != nil {
			return sig
		}
		idxObj, sig := in.Eval(target.Index, env)
		if sig != nil {
			return sig
		}
		arr, ok := unwrapAny(base).(*object.Array)
		if !ok {
			return barkf("index assignment target is not an array")
		}
		i, ok := intIndex(unwrapAny(idxObj))
		if !ok || i < 0 || i >= len(arr.Elements) {
			return barkf("index out of bounds")
		}
		arr.Elements[i] = val
		return nil
	case *ast.FieldAccessExpression:
		base, sig := in.Eval(target.Left, env)
		if sig != nil {
			return sig
		}
		rec, ok := unwrapAny(base).(*object.Record)
		if !ok {
			return barkf("field assignment target is not a record")
		}
		rec.Fields[target.Field] = val
		return nil
	}
	return barkf("invalid assignment target")
}

func (in *Interpreter) evalIf(s *ast.IfStatement, env *object.Environment) *Signal {
	cond, sig := in.Eval(s.Condition, env)
	if sig != nil {
		return sig
	}
	b, ok := unwrapAny(cond).(*object.Bool)
	if !ok {
		return barkf("if condition did not evaluate to Bool")
	}
	if b.Value {
		return in.evalBlock(s.Then, env)
	}
	if s.Else != nil {
		return in.evalStatement(s.Else, env)
	}
	return nil
}

func (in *Interpreter) evalLoop(s *ast.LoopStatement, env *object.Environment) *Signal {
	switch s.Kind {
	case ast.LoopForever:
		for {
			if sig := in.runLoopBody(s.Body, env); sig != nil {
				if sig.Kind == SigBreak {
					return nil
				}
				if sig.Kind != SigContinue {
					return sig
				}
			}
		}
	case ast.LoopWhile:
		for {
			cond, sig := in.Eval(s.Condition, env)
			if sig != nil {
				return sig
			}
			b, ok := unwrapAny(cond).(*object.Bool)
			if !ok {
				return barkf("loop condition did not evaluate to Bool")
			}
			if !b.Value {
				return nil
			}
			if sig := in.runLoopBody(s.Body, env); sig != nil {
				if sig.Kind == SigBreak {
					return nil
				}
				if sig.Kind != SigContinue {
					return sig
				}
			}
		}
	case ast.LoopRange:
		startObj, sig := in.Eval(s.RangeStart, env)
		if sig != nil {
			return sig
		}
		endObj, sig := in.Eval(s.RangeEnd, env)
		if sig != nil {
			return sig
		}
		start, _ := intIndex(unwrapAny(startObj))
		end, _ := intIndex(unwrapAny(endObj))
		loopEnv := object.NewEnclosedEnvironment(env)
		for i := start; i < end; i++ {
			loopEnv.Define(s.Var.Value, &object.Integer{Value: int32(i)}, types.Int)
			if sig := in.runLoopBody(s.Body, loopEnv); sig != nil {
				if sig.Kind == SigBreak {
					return nil
				}
				if sig.Kind != SigContinue {
					return sig
				}
			}
		}
		return nil
	case ast.LoopArray:
		arrObj, sig := in.Eval(s.Iterable, env)
		if sig != nil {
			return sig
		}
		arr, ok := unwrapAny(arrObj).(*object.Array)
		if !ok {
			return barkf("loop target is not an array")
		}
		loopEnv := object.NewEnclosedEnvironment(env)
		// Re-checks len(arr.Elements) every pass rather than caching it,
		// so an in-place mutation during iteration is reflected
		// immediately (spec.md §4.5 "no implicit snapshot").
		for i := 0; i < len(arr.Elements); i++ {
			loopEnv.Define(s.Var.Value, arr.Elements[i], arr.Elem)
			if sig := in.runLoopBody(s.Body, loopEnv); sig != nil {
				if sig.Kind == SigBreak {
					return nil
				}
				if sig.Kind != SigContinue {
					return sig
				}
			}
		}
		return nil
	}
	return nil
}

func (in *Interpreter) runLoopBody(body *ast.BlockStatement, env *object.Environment) *Signal {
	return in.evalBlock(body, env)
}

// ---- Expressions ----

// Eval evaluates node in env, returning either its value or a Signal
// that must propagate outward (a Bark raised inside the expression, or
// one surfacing from a function call it made).
func (in *Interpreter) Eval(node ast.Expression, env *object.Environment) (object.Object, *Signal) {
	switch e := node.(type) {
	case *ast.IntegerLiteral:
		return &object.Integer{Value: e.Value}, nil
	case *ast.LongLiteral:
		return &object.Long{Value: e.Value}, nil
	case *ast.FloatLiteral:
		return &object.Float{Value: e.Value}, nil
	case *ast.DoubleLiteral:
		return &object.Double{Value: e.Value}, nil
	case *ast.BoolLiteral:
		return object.NativeBoolToBool(e.Value), nil
	case *ast.CharLiteral:
		return &object.Char{Value: e.Value}, nil
	case *ast.StringLiteral:
		return &object.String{Value: e.Value}, nil
	case *ast.NopawLiteral:
		return object.NOPAW, nil
	case *ast.Identifier:
		v, ok := env.Get(e.Value)
		if !ok {
			return nil, barkf("undefined identifier %q", e.Value)
		}
		return v, nil
	case *ast.ArrayLiteral:
		return in.evalArrayLiteral(e, env)
	case *ast.RecordLiteral:
		return in.evalRecordLiteral(e, env)
	case *ast.PrefixExpression:
		return in.evalPrefix(e, env)
	case *ast.InfixExpression:
		return in.evalInfix(e, env)
	case *ast.CallExpression:
		return in.evalCall(e, env)
	case *ast.IndexExpression:
		return in.evalIndex(e, env)
	case *ast.FieldAccessExpression:
		return in.evalFieldAccess(e, env)
	case *ast.LengthExpression:
		return in.evalLength(e, env)
	case *ast.CastExpression:
		return in.evalCast(e, env)
	case *ast.AwaitExpression:
		return in.evalAwait(e, env)
	}
	return nil, barkf("unsupported expression %T", node)
}

func (in *Interpreter) evalArrayLiteral(e *ast.ArrayLiteral, env *object.Environment) (object.Object, *Signal) {
	elems := make([]object.Object, len(e.Elements))
	for i, el := range e.Elements {
		v, sig := in.Eval(el, env)
		if sig != nil {
			return nil, sig
		}
		elems[i] = v
	}
	var elemType types.Type = types.Any
	if len(elems) > 0 {
		elemType = runtimeTypeOf(elems[0])
	}
	return &object.Array{Elements: elems, Elem: elemType}, nil
}

func (in *Interpreter) evalRecordLiteral(e *ast.RecordLiteral, env *object.Environment) (object.Object, *Signal) {
	def, ok := in.records[e.Name.Value]
	if !ok {
		return nil, barkf("unknown record type %q", e.Name.Value)
	}
	fields := make(map[string]object.Object, len(e.Fields))
	for _, fi := range e.Fields {
		v, sig := in.Eval(fi.Value, env)
		if sig != nil {
			return nil, sig
		}
		fields[fi.Name.Value] = v
	}
	return &object.Record{Def: def, Fields: fields}, nil
}

func (in *Interpreter) evalPrefix(e *ast.PrefixExpression, env *object.Environment) (object.Object, *Signal) {
	right, sig := in.Eval(e.Right, env)
	if sig != nil {
		return nil, sig
	}
	right = unwrapAny(right)
	switch e.Operator {
	case "-":
		k, ok := kindOf(right)
		if !ok {
			return nil, barkf("unary - requires a numeric operand")
		}
		f, _ := asFloat64(right)
		return makeNumeric(k, -f), nil
	case "!":
		b, ok := right.(*object.Bool)
		if !ok {
			return nil, barkf("! requires a Bool operand")
		}
		return object.NativeBoolToBool(!b.Value), nil
	}
	return nil, barkf("unknown prefix operator %s", e.Operator)
}

func (in *Interpreter) evalInfix(e *ast.InfixExpression, env *object.Environment) (object.Object, *Signal) {
	left, sig := in.Eval(e.Left, env)
	if sig != nil {
		return nil, sig
	}
	left = unwrapAny(left)

	if e.Operator == "&&" || e.Operator == "||" {
		lb, ok := left.(*object.Bool)
		if !ok {
			return nil, barkf("%s requires Bool operands", e.Operator)
		}
		if e.Operator == "&&" && !lb.Value {
			return object.FALSE, nil
		}
		if e.Operator == "||" && lb.Value {
			return object.TRUE, nil
		}
		right, sig := in.Eval(e.Right, env)
		if sig != nil {
			return nil, sig
		}
		rb, ok := unwrapAny(right).(*object.Bool)
		if !ok {
			return nil, barkf("%s requires Bool operands", e.Operator)
		}
		return rb, nil
	}

	right, sig := in.Eval(e.Right, env)
	if sig != nil {
		return nil, sig
	}
	right = unwrapAny(right)

	switch e.Operator {
	case "==":
		return object.NativeBoolToBool(valuesEqual(left, right)), nil
	case "!=":
		return object.NativeBoolToBool(!valuesEqual(left, right)), nil
	case "+":
		if ls, ok := left.(*object.String); ok {
			return &object.String{Value: ls.Value + Render(right)}, nil
		}
		return in.evalArithmetic(e.Operator, left, right)
	case "-", "*", "/", "%":
		return in.evalArithmetic(e.Operator, left, right)
	case "<", "<=", ">", ">=":
		return in.evalCompare(e.Operator, left, right)
	}
	return nil, barkf("unknown operator %s", e.Operator)
}

// evalArithmetic performs +, -, *, /, and % with the numeric-widening rule
// internal/typechecker.widenNumeric already validated statically
// (spec.md §8 scenario 6; see DESIGN.md's Open Question resolution).
func (in *Interpreter) evalArithmetic(op string, left, right object.Object) (object.Object, *Signal) {
	if _, ok := kindOf(left); !ok {
		return nil, barkf("%s requires numeric operands", op)
	}
	if _, ok := kindOf(right); !ok {
		return nil, barkf("%s requires numeric operands", op)
	}
	lw, rw, kind := widenBoth(left, right)
	lf, _ := asFloat64(lw)
	rf, _ := asFloat64(rw)
	intLike := kind == kInt || kind == kLong
	switch op {
	case "+":
		return makeNumeric(kind, lf+rf), nil
	case "-":
		return makeNumeric(kind, lf-rf), nil
	case "*":
		return makeNumeric(kind, lf*rf), nil
	case "/":
		if intLike && rf == 0 {
			return nil, barkf("division by zero")
		}
		return makeNumeric(kind, lf/rf), nil
	case "%":
		if intLike && rf == 0 {
			return nil, barkf("division by zero")
		}
		return makeNumeric(kind, math.Mod(lf, rf)), nil
	}
	return nil, barkf("unknown arithmetic operator %s", op)
}

func (in *Interpreter) evalCompare(op string, left, right object.Object) (object.Object, *Signal) {
	lf, lok := asFloat64(left)
	rf, rok := asFloat64(right)
	if !lok || !rok {
		return nil, barkf("%s requires numeric operands", op)
	}
	switch op {
	case "<":
		return object.NativeBoolToBool(lf < rf), nil
	case "<=":
		return object.NativeBoolToBool(lf <= rf), nil
	case ">":
		return object.NativeBoolToBool(lf > rf), nil
	case ">=":
		return object.NativeBoolToBool(lf >= rf), nil
	}
	return nil, barkf("unknown comparison operator %s", op)
}

func valuesEqual(l, r object.Object) bool {
	_, lNil := l.(*object.Nil)
	_, rNil := r.(*object.Nil)
	if lNil || rNil {
		return lNil && rNil
	}
	if _, ok := kindOf(l); ok {
		if _, ok2 := kindOf(r); ok2 {
			lf, _ := asFloat64(l)
			rf, _ := asFloat64(r)
			return lf == rf
		}
	}
	switch l := l.(type) {
	case *object.Bool:
		r, ok := r.(*object.Bool)
		return ok && l.Value == r.Value
	case *object.Char:
		r, ok := r.(*object.Char)
		return ok && l.Value == r.Value
	case *object.String:
		r, ok := r.(*object.String)
		return ok && l.Value == r.Value
	case *object.Record:
		r, ok := r.(*object.Record)
		return ok && l == r // reference identity, spec.md §3.2
	case *object.Array:
		r, ok := r.(*object.Array)
		return ok && l == r
	}
	return false
}

func (in *Interpreter) evalCall(e *ast.CallExpression, env *object.Environment) (object.Object, *Signal) {
	callee, sig := in.Eval(e.Function, env)
	if sig != nil {
		return nil, sig
	}
	callee = unwrapAny(callee)

	args := make([]object.Object, len(e.Arguments))
	for i, a := range e.Arguments {
		v, sig := in.Eval(a, env)
		if sig != nil {
			return nil, sig
		}
		args[i] = v
	}

	switch fn := callee.(type) {
	case *object.Function:
		if fn.IsAsync {
			fut := &object.Future{Elem: fn.ReturnType}
			in.exec.Enqueue(func() {
				result, callSig := in.invokeFunction(fn, args)
				if callSig != nil {
					fut.Resolve(nil, errors.New(callSig.Message))
					return
				}
				fut.Resolve(result, nil)
			})
			return fut, nil
		}
		return in.invokeFunction(fn, args)
	case *object.Builtin:
		result, err := fn.Fn(args)
		if err != nil {
			return nil, barkf("%s", err.Error())
		}
		return result, nil
	}
	return nil, barkf("value is not callable")
}

// invokeFunction runs fn's body synchronously to completion, unwrapping
// its terminal Return signal into a value. A non-nil Signal in the
// second return is always a Bark — Break/Continue can never legally
// escape a function body (the checker rejects break/continue outside a
// loop, and loops never cross a call boundary).
func (in *Interpreter) invokeFunction(fn *object.Function, args []object.Object) (object.Object, *Signal) {
	callEnv := object.NewEnclosedEnvironment(fn.Env)
	for i, p := range fn.Parameters {
		callEnv.Define(p.Name.Value, args[i], fn.ParamTypes[i])
	}
	sig := in.evalBlock(fn.Body, callEnv)
	if sig == nil {
		return object.NOPAW, nil
	}
	switch sig.Kind {
	case SigReturn:
		if sig.Value == nil {
			return object.NOPAW, nil
		}
		return sig.Value, nil
	case SigBark:
		return nil, sig
	default:
		return nil, barkf("%v escaped %s's body", sig.Kind, fn.Name)
	}
}

func (in *Interpreter) evalAwait(e *ast.AwaitExpression, env *object.Environment) (object.Object, *Signal) {
	v, sig := in.Eval(e.Value, env)
	if sig != nil {
		return nil, sig
	}
	fut, ok := unwrapAny(v).(*object.Future)
	if !ok {
		return v, nil // await on a non-Future passes through unchanged (spec.md §8)
	}
	in.exec.Drain(fut)
	value, err, done := fut.Poll()
	if !done {
		return nil, barkf("deadlock: awaited future never resolved")
	}
	if err != nil {
		return nil, &Signal{Kind: SigBark, Message: err.Error()}
	}
	return value, nil
}

func (in *Interpreter) evalIndex(e *ast.IndexExpression, env *object.Environment) (object.Object, *Signal) {
	base, sig := in.Eval(e.Left, env)
	if sig != nil {
		return nil, sig
	}
	idxObj, sig := in.Eval(e.Index, env)
	if sig != nil {
		return nil, sig
	}
	arr, ok := unwrapAny(base).(*object.Array)
	if !ok {
		return nil, barkf("index target is not an array")
	}
	i, ok := intIndex(unwrapAny(idxObj))
	if !ok || i < 0 || i >= len(arr.Elements) {
		return nil, barkf("index out of bounds")
	}
	return arr.Elements[i], nil
}

func (in *Interpreter) evalFieldAccess(e *ast.FieldAccessExpression, env *object.Environment) (object.Object, *Signal) {
	base, sig := in.Eval(e.Left, env)
	if sig != nil {
		return nil, sig
	}
	switch b := unwrapAny(base).(type) {
	case *object.Record:
		v, ok := b.Fields[e.Field]
		if !ok {
			return nil, barkf("record %s has no field %q", b.Def.Name, e.Field)
		}
		return v, nil
	case *object.Module:
		v, ok := b.Exports[e.Field]
		if !ok {
			return nil, barkf("module %s has no export %q", b.Name, e.Field)
		}
		return v, nil
	}
	return nil, barkf("value has no field %q", e.Field)
}

func (in *Interpreter) evalLength(e *ast.LengthExpression, env *object.Environment) (object.Object, *Signal) {
	v, sig := in.Eval(e.Left, env)
	if sig != nil {
		return nil, sig
	}
	arr, ok := unwrapAny(v).(*object.Array)
	if !ok {
		return nil, barkf("length target is not an array")
	}
	return &object.Integer{Value: int32(len(arr.Elements))}, nil
}

func (in *Interpreter) evalCast(e *ast.CastExpression, env *object.Environment) (object.Object, *Signal) {
	v, sig := in.Eval(e.Left, env)
	if sig != nil {
		return nil, sig
	}
	return in.castValue(v, in.resolveType(e.Type))
}

func (in *Interpreter) castValue(v object.Object, target types.Type) (object.Object, *Signal) {
	if types.IsAny(target) {
		return &object.Any{Inner: v, Concrete: runtimeTypeOf(v)}, nil
	}
	if wrapped, ok := v.(*object.Any); ok {
		if !types.Equal(wrapped.Concrete, target) && !(types.IsNumeric(wrapped.Concrete) && types.IsNumeric(target)) {
			return nil, barkf("cannot cast %s to %s", wrapped.Concrete.String(), target.String())
		}
		v = wrapped.Inner
	}
	if _, ok := kindOf(v); ok {
		if tk, ok := primitiveNumericKind(target); ok {
			f, _ := asFloat64(v)
			return makeNumeric(tk, f), nil
		}
	}
	return v, nil
}

// ---- Shared helpers ----

// resolveType mirrors internal/typechecker's resolveTypeExpr against
// this Interpreter's own record table, for contexts the checker's
// resolution doesn't reach at runtime (a `let` with an explicit type,
// an `as` cast's target type).
func (in *Interpreter) resolveType(t ast.TypeExpr) types.Type {
	switch t := t.(type) {
	case *ast.NamedType:
		switch t.Name {
		case "Int":
			return types.Int
		case "Long":
			return types.Long
		case "Float":
			return types.Float
		case "Double":
			return types.Double
		case "Bool":
			return types.Bool
		case "Char":
			return types.Char
		case "String":
			return types.String
		case "Void":
			return types.Void
		case "Any":
			return types.Any
		}
		if rec, ok := in.records[t.Name]; ok {
			return rec
		}
		return types.Any
	case *ast.OptionalType:
		return &types.Optional{Elem: in.resolveType(t.Inner)}
	case *ast.ArrayType:
		return &types.Array{Elem: in.resolveType(t.Elem)}
	case *ast.FutureType:
		return &types.Future{Elem: in.resolveType(t.Inner)}
	}
	return types.Any
}

// runtimeTypeOf derives a value's static type from its runtime shape,
// for `let` bindings without an explicit type annotation.
func runtimeTypeOf(v object.Object) types.Type {
	switch v := v.(type) {
	case *object.Integer:
		return types.Int
	case *object.Long:
		return types.Long
	case *object.Float:
		return types.Float
	case *object.Double:
		return types.Double
	case *object.Bool:
		return types.Bool
	case *object.Char:
		return types.Char
	case *object.String:
		return types.String
	case *object.Nil:
		return types.Nil
	case *object.Array:
		return &types.Array{Elem: v.Elem}
	case *object.Record:
		return v.Def
	case *object.Function:
		return &types.Function{Params: v.ParamTypes, Return: v.ReturnType, IsAsync: v.IsAsync}
	case *object.Future:
		return &types.Future{Elem: v.Elem}
	case *object.Any:
		return v.Concrete
	}
	return types.Any
}

func unwrapAny(v object.Object) object.Object {
	if a, ok := v.(*object.Any); ok {
		return a.Inner
	}
	return v
}

func intIndex(v object.Object) (int, bool) {
	switch v := v.(type) {
	case *object.Integer:
		return int(v.Value), true
	case *object.Long:
		return int(v.Value), true
	}
	return 0, false
}

func (in *Interpreter) print(s string) {
	fmt.Fprint(in.Stdout, s)
}

func (in *Interpreter) println(s string) {
	fmt.Fprintln(in.Stdout, s)
}

func (in *Interpreter) readLine() string {
	line, _ := in.Stdin.ReadString('\n')
	return strings.TrimRight(line, "\r\n")
}
