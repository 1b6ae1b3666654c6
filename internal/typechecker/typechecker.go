// Package typechecker implements PawScript's two-pass, declaration-
// order static type checker (spec.md §4.4), grounded on
// akamikado-EZ's Scope/TypeChecker split but rebuilt around
// internal/types.Type values instead of type-name strings.
package typechecker

import (
	"pawscript/internal/ast"
	"pawscript/internal/errors"
	"pawscript/internal/types"
)

// Scope is a lexical chain of name -> (type, mutable) bindings, used
// purely for static checking; it is unrelated to object.Environment,
// which holds runtime values.
type Scope struct {
	parent    *Scope
	variables map[string]types.Type
	mutable   map[string]bool
}

func NewScope(parent *Scope) *Scope {
	return &Scope{parent: parent, variables: map[string]types.Type{}, mutable: map[string]bool{}}
}

func (s *Scope) DefineLocal(name string, t types.Type, mutable bool) bool {
	if _, exists := s.variables[name]; exists {
		return false
	}
	s.variables[name] = t
	s.mutable[name] = mutable
	return true
}

func (s *Scope) Lookup(name string) (types.Type, bool) {
	if t, ok := s.variables[name]; ok {
		return t, true
	}
	if s.parent != nil {
		return s.parent.Lookup(name)
	}
	return nil, false
}

func (s *Scope) IsMutable(name string) bool {
	if m, ok := s.mutable[name]; ok {
		return m
	}
	if s.parent != nil {
		return s.parent.IsMutable(name)
	}
	return false
}

// funcSig is a declared function's checked signature, collected in the
// first pass so bodies (checked in the second pass) can call functions
// declared later in the same module (spec.md §4.4's forward-reference
// rule).
type funcSig struct {
	params  []types.Type
	ret     types.Type
	isAsync bool
}

// Checker walks a single module's Program twice: registerDeclarations
// collects every top-level fun/record/import's signature, then Check
// walks every function body and top-level statement against that
// fully-populated symbol table.
type Checker struct {
	global *Scope
	funcs  map[string]*funcSig
	types  map[string]*types.Record
	// modules holds resolved import aliases -> their exported symbol
	// table, supplied by the caller (internal/module) after resolving
	// the import graph, since the checker itself does not read files.
	modules map[string]*types.Module

	// loopDepth tracks how many loops enclose the statement currently
	// being checked, for break/continue validation.
	loopDepth int
	// currentReturn is the enclosing function's declared return type,
	// for return-statement and fall-off-the-end checking; nil at
	// top level, where `return` is not permitted.
	currentReturn types.Type

	Errors []error
}

func NewChecker(modules map[string]*types.Module) *Checker {
	return &Checker{
		global:  NewScope(nil),
		funcs:   map[string]*funcSig{},
		types:   map[string]*types.Record{},
		modules: modules,
	}
}

func (c *Checker) err(e error) {
	c.Errors = append(c.Errors, e)
}

// DefineGlobal pre-binds name to static type t in the checker's global
// scope before Check runs, the same way registerImport binds a
// resolved import alias — used by internal/module to install
// host-provided built-in modules (spec.md's host bridge, SPEC_FULL.md
// §4.7) that are always in scope without an explicit `import`.
func (c *Checker) DefineGlobal(name string, t types.Type) {
	c.global.DefineLocal(name, t, false)
}

// FunctionSignature is the exported form of funcSig, handed to
// internal/interpreter so it can reuse the checker's resolved function
// table instead of re-deriving it from the AST a second time.
type FunctionSignature struct {
	Params  []types.Type
	Return  types.Type
	IsAsync bool
}

// Records returns the record types resolved during registration, keyed
// by name, for the interpreter's record-literal construction.
func (c *Checker) Records() map[string]*types.Record {
	return c.types
}

// Functions returns every top-level function's checked signature, keyed
// by name, for the interpreter's call-arity/async bookkeeping.
func (c *Checker) Functions() map[string]FunctionSignature {
	out := make(map[string]FunctionSignature, len(c.funcs))
	for name, sig := range c.funcs {
		out[name] = FunctionSignature{Params: sig.params, Return: sig.ret, IsAsync: sig.isAsync}
	}
	return out
}

// Check runs both passes over prog and returns nil only if every
// declaration and statement type-checked cleanly.
func (c *Checker) Check(prog *ast.Program) error {
	c.registerDeclarations(prog)
	for _, stmt := range prog.Statements {
		c.checkTopLevelStatement(stmt)
	}
	if len(c.Errors) > 0 {
		return c.Errors[0]
	}
	return nil
}

// ---- Pass 1: declarations ----

func (c *Checker) registerDeclarations(prog *ast.Program) {
	for _, stmt := range prog.Statements {
		switch s := stmt.(type) {
		case *ast.RecordDeclaration:
			c.registerRecord(s)
		}
	}
	// Functions are registered after records so that a function
	// signature mentioning a record type resolves regardless of
	// declaration order within the module.
	for _, stmt := range prog.Statements {
		switch s := stmt.(type) {
		case *ast.FunctionDeclaration:
			c.registerFunction(s)
		case *ast.ImportStatement:
			c.registerImport(s)
		}
	}
}

func (c *Checker) registerRecord(decl *ast.RecordDeclaration) {
	if _, exists := c.types[decl.Name.Value]; exists {
		c.err(errors.NewType(errors.E3016, decl.Span(), "record %q already declared", decl.Name.Value))
		return
	}
	rec := &types.Record{Name: decl.Name.Value}
	c.types[decl.Name.Value] = rec
	// Fields are resolved now (records never forward-reference an
	// as-yet-undeclared record in this single-module checker, mirroring
	// spec.md's closed module model — see SPEC_FULL.md §4.4).
	for _, f := range decl.Fields {
		ft, err := c.resolveTypeExpr(f.Type)
		if err != nil {
			c.err(err)
			continue
		}
		rec.Fields = append(rec.Fields, types.Field{Name: f.Name.Value, Type: ft})
	}
}

func (c *Checker) registerFunction(decl *ast.FunctionDeclaration) {
	if _, exists := c.funcs[decl.Name.Value]; exists {
		c.err(errors.NewType(errors.E3016, decl.Span(), "function %q already declared", decl.Name.Value))
		return
	}
	sig := &funcSig{isAsync: decl.IsAsync}
	for _, p := range decl.Parameters {
		t, err := c.resolveTypeExpr(p.Type)
		if err != nil {
			c.err(err)
			t = types.Any
		}
		sig.params = append(sig.params, t)
	}
	ret, err := c.resolveTypeExpr(decl.ReturnType)
	if err != nil {
		c.err(err)
		ret = types.Void
	}
	sig.ret = ret
	c.funcs[decl.Name.Value] = sig

	fnType := &types.Function{Params: sig.params, Return: sig.ret, IsAsync: sig.isAsync}
	if sig.isAsync {
		fnType.Return = &types.Future{Elem: sig.ret}
	}
	c.global.DefineLocal(decl.Name.Value, fnType, false)
}

func (c *Checker) registerImport(stmt *ast.ImportStatement) {
	alias := stmt.Path[len(stmt.Path)-1]
	if stmt.Alias != nil {
		alias = stmt.Alias.Value
	}
	mod, ok := c.modules[joinPath(stmt.Path)]
	if !ok {
		c.err(errors.NewType(errors.E3015, stmt.Span(), "module %q not found", joinPath(stmt.Path)))
		return
	}
	c.global.DefineLocal(alias, mod, false)
}

func joinPath(path []string) string {
	s := ""
	for i, p := range path {
		if i > 0 {
			s += "."
		}
		s += p
	}
	return s
}

// resolveTypeExpr converts surface TypeExpr syntax to a checked
// types.Type, looking up record names against what pass 1 has
// registered so far.
func (c *Checker) resolveTypeExpr(t ast.TypeExpr) (types.Type, error) {
	switch t := t.(type) {
	case *ast.NamedType:
		switch t.Name {
		case "Int":
			return types.Int, nil
		case "Long":
			return types.Long, nil
		case "Float":
			return types.Float, nil
		case "Double":
			return types.Double, nil
		case "Bool":
			return types.Bool, nil
		case "Char":
			return types.Char, nil
		case "String":
			return types.String, nil
		case "Void":
			return types.Void, nil
		case "Any":
			return types.Any, nil
		}
		if rec, ok := c.types[t.Name]; ok {
			return rec, nil
		}
		return nil, errors.NewType(errors.E3015, t.Span(), "unknown type %q", t.Name)
	case *ast.OptionalType:
		inner, err := c.resolveTypeExpr(t.Inner)
		if err != nil {
			return nil, err
		}
		return &types.Optional{Elem: inner}, nil
	case *ast.ArrayType:
		inner, err := c.resolveTypeExpr(t.Elem)
		if err != nil {
			return nil, err
		}
		return &types.Array{Elem: inner}, nil
	case *ast.FutureType:
		inner, err := c.resolveTypeExpr(t.Inner)
		if err != nil {
			return nil, err
		}
		return &types.Future{Elem: inner}, nil
	}
	return nil, errors.NewType(errors.E3015, t.Span(), "unresolvable type expression")
}

// ---- Pass 2: bodies ----

func (c *Checker) checkTopLevelStatement(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.FunctionDeclaration:
		c.checkFunctionBody(s)
	case *ast.RecordDeclaration, *ast.ImportStatement:
		// Already fully handled in pass 1.
	default:
		c.checkStatement(stmt, c.global)
	}
}

func (c *Checker) checkFunctionBody(decl *ast.FunctionDeclaration) {
	sig := c.funcs[decl.Name.Value]
	scope := NewScope(c.global)
	for i, p := range decl.Parameters {
		scope.DefineLocal(p.Name.Value, sig.params[i], true)
	}
	prevReturn := c.currentReturn
	c.currentReturn = sig.ret
	c.checkBlock(decl.Body, scope)
	if sig.ret != types.Void && !blockAlwaysReturns(decl.Body) {
		c.err(errors.NewType(errors.E3011, decl.Span(), "function %q does not return a value on all paths", decl.Name.Value))
	}
	c.currentReturn = prevReturn
}

func blockAlwaysReturns(b *ast.BlockStatement) bool {
	for _, s := range b.Statements {
		if stmtAlwaysReturns(s) {
			return true
		}
	}
	return false
}

func stmtAlwaysReturns(s ast.Statement) bool {
	switch s := s.(type) {
	case *ast.ReturnStatement, *ast.BarkStatement:
		return true
	case *ast.IfStatement:
		if s.Else == nil {
			return false
		}
		thenReturns := blockAlwaysReturns(s.Then)
		var elseReturns bool
		switch e := s.Else.(type) {
		case *ast.BlockStatement:
			elseReturns = blockAlwaysReturns(e)
		case *ast.IfStatement:
			elseReturns = stmtAlwaysReturns(e)
		}
		return thenReturns && elseReturns
	case *ast.SniffStatement:
		return blockAlwaysReturns(s.Try) && (s.Snatch == nil || blockAlwaysReturns(s.Snatch))
	case *ast.LoopStatement:
		return s.Kind == ast.LoopForever && !loopHasBreak(s.Body)
	}
	return false
}

func loopHasBreak(b *ast.BlockStatement) bool {
	for _, s := range b.Statements {
		switch s := s.(type) {
		case *ast.BreakStatement:
			return true
		case *ast.IfStatement:
			if loopHasBreak(s.Then) {
				return true
			}
			if eb, ok := s.Else.(*ast.BlockStatement); ok && loopHasBreak(eb) {
				return true
			}
		}
	}
	return false
}

func (c *Checker) checkBlock(block *ast.BlockStatement, parent *Scope) {
	scope := NewScope(parent)
	for _, s := range block.Statements {
		c.checkStatement(s, scope)
	}
}

func (c *Checker) checkStatement(stmt ast.Statement, scope *Scope) {
	switch s := stmt.(type) {
	case *ast.LetStatement:
		c.checkLet(s, scope)
	case *ast.AssignStatement:
		c.checkAssign(s, scope)
	case *ast.SayStatement:
		c.inferExpr(s.Value, scope)
	case *ast.AskStatement:
		c.inferExpr(s.Prompt, scope)
	case *ast.ReturnStatement:
		c.checkReturn(s, scope)
	case *ast.BarkStatement:
		c.inferExpr(s.Value, scope)
	case *ast.BreakStatement:
		if c.loopDepth == 0 {
			c.err(errors.NewType(errors.E3010, s.Span(), "break outside of a loop"))
		}
	case *ast.ContinueStatement:
		if c.loopDepth == 0 {
			c.err(errors.NewType(errors.E3010, s.Span(), "continue outside of a loop"))
		}
	case *ast.IfStatement:
		c.checkIf(s, scope)
	case *ast.LoopStatement:
		c.checkLoop(s, scope)
	case *ast.SniffStatement:
		c.checkSniff(s, scope)
	case *ast.BlockStatement:
		c.checkBlock(s, scope)
	case *ast.ExpressionStatement:
		if s.Expression != nil {
			c.inferExpr(s.Expression, scope)
		}
	case *ast.FunctionDeclaration, *ast.RecordDeclaration, *ast.ImportStatement:
		c.err(errors.NewType(errors.E3016, stmt.Span(), "declarations are only permitted at module scope"))
	}
}

func (c *Checker) checkLet(s *ast.LetStatement, scope *Scope) {
	var declared types.Type
	if s.Type != nil {
		t, err := c.resolveTypeExpr(s.Type)
		if err != nil {
			c.err(err)
		}
		declared = t
	}

	var valueType types.Type
	if s.IsAsk {
		c.inferExpr(s.AskPrompt, scope)
		valueType = types.String
	} else {
		valueType = c.inferExpr(s.Value, scope)
	}

	if declared == nil {
		declared = valueType
	} else if valueType != nil && !types.IsCompatible(valueType, declared) {
		if _, isNil := valueType.(*types.NilType); isNil {
			c.err(errors.NewType(errors.E3009, s.Span(), "nopaw is only assignable to an Optional(%s) binding", declared.String()))
		} else {
			c.err(errors.NewType(errors.E3001, s.Span(), "cannot assign %s to %s", valueType.String(), declared.String()))
		}
	}

	if declared == nil {
		declared = types.Any
	}
	if !scope.DefineLocal(s.Name.Value, declared, true) {
		c.err(errors.NewType(errors.E3016, s.Span(), "name %q already declared in this scope", s.Name.Value))
	}
}

func (c *Checker) checkAssign(s *ast.AssignStatement, scope *Scope) {
	// Every `let` binding is mutable (spec.md §9 Open Question, resolved
	// in DESIGN.md), so assignment only needs to check that the target
	// exists and that the value's type fits it; inferExpr already
	// reports an unknown identifier if the target was never declared.
	targetType := c.inferExpr(s.Target, scope)
	valueType := c.inferExpr(s.Value, scope)
	if targetType != nil && valueType != nil && !types.IsCompatible(valueType, targetType) {
		c.err(errors.NewType(errors.E3001, s.Span(), "cannot assign %s to %s", valueType.String(), targetType.String()))
	}
}

func (c *Checker) checkReturn(s *ast.ReturnStatement, scope *Scope) {
	if c.currentReturn == nil {
		c.err(errors.NewType(errors.E3011, s.Span(), "return outside of a function"))
		return
	}
	want := c.currentReturn
	if fut, ok := want.(*types.Future); ok {
		want = fut.Elem
	}
	if s.Value == nil {
		if want != types.Void {
			c.err(errors.NewType(errors.E3011, s.Span(), "function must return a value of type %s", want.String()))
		}
		return
	}
	got := c.inferExpr(s.Value, scope)
	if got != nil && !types.IsCompatible(got, want) {
		c.err(errors.NewType(errors.E3011, s.Span(), "cannot return %s where %s is expected", got.String(), want.String()))
	}
}

func (c *Checker) checkIf(s *ast.IfStatement, scope *Scope) {
	cond := c.inferExpr(s.Condition, scope)
	if cond != nil && !types.Equal(cond, types.Bool) && !types.IsAny(cond) {
		c.err(errors.NewType(errors.E3001, s.Condition.Span(), "if condition must be Bool, got %s", cond.String()))
	}
	c.checkBlock(s.Then, scope)
	switch e := s.Else.(type) {
	case *ast.BlockStatement:
		c.checkBlock(e, scope)
	case *ast.IfStatement:
		c.checkStatement(e, scope)
	}
}

func (c *Checker) checkLoop(s *ast.LoopStatement, scope *Scope) {
	c.loopDepth++
	defer func() { c.loopDepth-- }()

	inner := NewScope(scope)
	switch s.Kind {
	case ast.LoopWhile:
		cond := c.inferExpr(s.Condition, scope)
		if cond != nil && !types.Equal(cond, types.Bool) && !types.IsAny(cond) {
			c.err(errors.NewType(errors.E3001, s.Condition.Span(), "loop condition must be Bool, got %s", cond.String()))
		}
	case ast.LoopRange:
		start := c.inferExpr(s.RangeStart, scope)
		end := c.inferExpr(s.RangeEnd, scope)
		for _, t := range []types.Type{start, end} {
			if t != nil && !types.IsNumeric(t) && !types.IsAny(t) {
				c.err(errors.NewType(errors.E3001, s.Span(), "range bounds must be numeric"))
			}
		}
		inner.DefineLocal(s.Var.Value, types.Int, true)
	case ast.LoopArray:
		iterType := c.inferExpr(s.Iterable, scope)
		elem := types.Type(types.Any)
		if arr, ok := iterType.(*types.Array); ok {
			elem = arr.Elem
		} else if iterType != nil && !types.IsAny(iterType) {
			c.err(errors.NewType(errors.E3013, s.Span(), "cannot iterate over non-array type %s", iterType.String()))
		}
		inner.DefineLocal(s.Var.Value, elem, true)
	}

	for _, stmt := range s.Body.Statements {
		c.checkStatement(stmt, inner)
	}
}

func (c *Checker) checkSniff(s *ast.SniffStatement, scope *Scope) {
	c.checkBlock(s.Try, scope)
	if s.Snatch != nil {
		inner := NewScope(scope)
		inner.DefineLocal(s.SnatchName.Value, types.String, false)
		for _, stmt := range s.Snatch.Statements {
			c.checkStatement(stmt, inner)
		}
	}
	if s.Lastly != nil {
		c.checkBlock(s.Lastly, scope)
	}
}

// ---- Expressions ----

func (c *Checker) inferExpr(expr ast.Expression, scope *Scope) types.Type {
	switch e := expr.(type) {
	case *ast.IntegerLiteral:
		return types.Int
	case *ast.LongLiteral:
		return types.Long
	case *ast.FloatLiteral:
		return types.Float
	case *ast.DoubleLiteral:
		return types.Double
	case *ast.BoolLiteral:
		return types.Bool
	case *ast.CharLiteral:
		return types.Char
	case *ast.StringLiteral:
		return types.String
	case *ast.NopawLiteral:
		return types.Nil
	case *ast.Identifier:
		t, ok := scope.Lookup(e.Value)
		if !ok {
			c.err(errors.NewType(errors.E3007, e.Span(), "identifier %q is not defined", e.Value))
			return types.Any
		}
		return t
	case *ast.ArrayLiteral:
		return c.inferArrayLiteral(e, scope)
	case *ast.RecordLiteral:
		return c.inferRecordLiteral(e, scope)
	case *ast.PrefixExpression:
		return c.inferPrefix(e, scope)
	case *ast.InfixExpression:
		return c.inferInfix(e, scope)
	case *ast.CallExpression:
		return c.inferCall(e, scope)
	case *ast.IndexExpression:
		return c.inferIndex(e, scope)
	case *ast.FieldAccessExpression:
		return c.inferFieldAccess(e, scope)
	case *ast.LengthExpression:
		lt := c.inferExpr(e.Left, scope)
		if _, ok := lt.(*types.Array); !ok && !types.IsAny(lt) {
			c.err(errors.NewType(errors.E3013, e.Span(), "length is only defined on arrays, got %s", safeString(lt)))
		}
		return types.Int
	case *ast.CastExpression:
		return c.inferCast(e, scope)
	case *ast.AwaitExpression:
		return c.inferAwait(e, scope)
	}
	return types.Any
}

func safeString(t types.Type) string {
	if t == nil {
		return "?"
	}
	return t.String()
}

func (c *Checker) inferArrayLiteral(e *ast.ArrayLiteral, scope *Scope) types.Type {
	if len(e.Elements) == 0 {
		return &types.Array{Elem: types.Any}
	}
	elem := c.inferExpr(e.Elements[0], scope)
	for _, el := range e.Elements[1:] {
		t := c.inferExpr(el, scope)
		if t != nil && elem != nil && !types.Equal(t, elem) && !types.IsAny(t) && !types.IsAny(elem) {
			c.err(errors.NewType(errors.E3001, el.Span(), "array elements must share one type: %s vs %s", elem.String(), t.String()))
		}
	}
	return &types.Array{Elem: elem}
}

func (c *Checker) inferRecordLiteral(e *ast.RecordLiteral, scope *Scope) types.Type {
	rec, ok := c.types[e.Name.Value]
	if !ok {
		c.err(errors.NewType(errors.E3015, e.Span(), "unknown record type %q", e.Name.Value))
		return types.Any
	}
	seen := map[string]bool{}
	for _, fi := range e.Fields {
		if seen[fi.Name.Value] {
			c.err(errors.NewType(errors.E3005, fi.Name.Span(), "field %q supplied more than once", fi.Name.Value))
			continue
		}
		seen[fi.Name.Value] = true
		ft, ok := rec.FieldType(fi.Name.Value)
		if !ok {
			c.err(errors.NewType(errors.E3006, fi.Name.Span(), "record %q has no field %q", rec.Name, fi.Name.Value))
			continue
		}
		vt := c.inferExpr(fi.Value, scope)
		if vt != nil && !types.IsCompatible(vt, ft) {
			c.err(errors.NewType(errors.E3001, fi.Value.Span(), "field %q expects %s, got %s", fi.Name.Value, ft.String(), vt.String()))
		}
	}
	for _, f := range rec.Fields {
		if !seen[f.Name] {
			c.err(errors.NewType(errors.E3004, e.Span(), "record literal missing field %q", f.Name))
		}
	}
	return rec
}

func (c *Checker) inferPrefix(e *ast.PrefixExpression, scope *Scope) types.Type {
	rt := c.inferExpr(e.Right, scope)
	switch e.Operator {
	case "-":
		if rt != nil && !types.IsNumeric(rt) && !types.IsAny(rt) {
			c.err(errors.NewType(errors.E3001, e.Span(), "unary '-' requires a numeric operand, got %s", safeString(rt)))
		}
		return rt
	case "!":
		if rt != nil && !types.Equal(rt, types.Bool) && !types.IsAny(rt) {
			c.err(errors.NewType(errors.E3001, e.Span(), "unary '!' requires a Bool operand, got %s", safeString(rt)))
		}
		return types.Bool
	}
	return types.Any
}

func (c *Checker) inferInfix(e *ast.InfixExpression, scope *Scope) types.Type {
	lt := c.inferExpr(e.Left, scope)
	rt := c.inferExpr(e.Right, scope)

	// nopaw compares against a value of any type (spec.md §3.1:
	// "Equality may compare any value to nopaw").
	_, lIsNil := lt.(*types.NilType)
	_, rIsNil := rt.(*types.NilType)

	switch e.Operator {
	case "&&", "||":
		for _, t := range []types.Type{lt, rt} {
			if t != nil && !types.Equal(t, types.Bool) && !types.IsAny(t) {
				c.err(errors.NewType(errors.E3014, e.Span(), "operands of %q must be Bool", e.Operator))
			}
		}
		return types.Bool
	case "==", "!=":
		switch {
		case lIsNil || rIsNil:
			// comparing to nopaw is always legal.
		case types.IsAny(lt) || types.IsAny(rt):
		case types.IsNumeric(lt) && types.IsNumeric(rt):
			// numeric operands compare across width, per widenNumeric.
		case lt != nil && rt != nil && !types.Equal(lt, rt):
			c.err(errors.NewType(errors.E3014, e.Span(), "cannot compare %s with %s", lt.String(), rt.String()))
		}
		return types.Bool
	case "<", "<=", ">", ">=":
		for _, t := range []types.Type{lt, rt} {
			if t != nil && !types.IsNumeric(t) && !types.IsAny(t) {
				c.err(errors.NewType(errors.E3014, e.Span(), "operands of %q must be numeric", e.Operator))
			}
		}
		return types.Bool
	case "+":
		if types.Equal(lt, types.String) || types.Equal(rt, types.String) {
			return types.String
		}
		fallthrough
	case "-", "*", "/", "%":
		for _, t := range []types.Type{lt, rt} {
			if t != nil && !types.IsNumeric(t) && !types.IsAny(t) {
				c.err(errors.NewType(errors.E3014, e.Span(), "operands of %q must be numeric, got %s", e.Operator, safeString(t)))
				return types.Any
			}
		}
		return widenNumeric(lt, rt)
	}
	return types.Any
}

// widenNumeric implements the numeric-promotion rule arithmetic binary
// operators use when the two operand types differ: the wider of the two
// (Double > Float > Long > Int) is the result type. This follows what
// the reference implementation's type checker actually does rather than
// spec.md §3.1's prose ("no implicit widening"), which the worked
// example in spec.md §8 scenario 6 (`(i as Float) + 0.5`, where a bare
// decimal literal is Double) contradicts unless widening is permitted —
// see DESIGN.md's Open Question resolution.
func widenNumeric(lt, rt types.Type) types.Type {
	if types.IsAny(lt) {
		return rt
	}
	if types.IsAny(rt) {
		return lt
	}
	rank := func(t types.Type) int {
		p, ok := t.(*types.Primitive)
		if !ok {
			return -1
		}
		switch p.Kind {
		case types.KDouble:
			return 3
		case types.KFloat:
			return 2
		case types.KLong:
			return 1
		default:
			return 0
		}
	}
	if rank(rt) > rank(lt) {
		return rt
	}
	return lt
}

func (c *Checker) inferCall(e *ast.CallExpression, scope *Scope) types.Type {
	ident, ok := e.Function.(*ast.Identifier)
	if !ok {
		// Calling a computed expression (e.g. a field holding a
		// function) is allowed when it type-checks to Function.
		ft := c.inferExpr(e.Function, scope)
		for _, a := range e.Arguments {
			c.inferExpr(a, scope)
		}
		if fn, ok := ft.(*types.Function); ok {
			return fn.Return
		}
		if !types.IsAny(ft) {
			c.err(errors.NewType(errors.E3012, e.Span(), "value is not callable"))
		}
		return types.Any
	}

	sig, ok := c.funcs[ident.Value]
	if !ok {
		c.err(errors.NewType(errors.E3007, e.Span(), "function %q is not defined", ident.Value))
		for _, a := range e.Arguments {
			c.inferExpr(a, scope)
		}
		return types.Any
	}
	if len(e.Arguments) != len(sig.params) {
		c.err(errors.NewType(errors.E3002, e.Span(), "function %q expects %d argument(s), got %d", ident.Value, len(sig.params), len(e.Arguments)))
	}
	for i, a := range e.Arguments {
		at := c.inferExpr(a, scope)
		if i < len(sig.params) && at != nil && !types.IsCompatible(at, sig.params[i]) {
			c.err(errors.NewType(errors.E3001, a.Span(), "argument %d to %q: cannot use %s as %s", i+1, ident.Value, at.String(), sig.params[i].String()))
		}
	}
	if sig.isAsync {
		return &types.Future{Elem: sig.ret}
	}
	return sig.ret
}

func (c *Checker) inferIndex(e *ast.IndexExpression, scope *Scope) types.Type {
	lt := c.inferExpr(e.Left, scope)
	it := c.inferExpr(e.Index, scope)
	if it != nil && !types.IsNumeric(it) && !types.IsAny(it) {
		c.err(errors.NewType(errors.E3001, e.Index.Span(), "array index must be numeric, got %s", it.String()))
	}
	arr, ok := lt.(*types.Array)
	if !ok {
		if !types.IsAny(lt) {
			c.err(errors.NewType(errors.E3013, e.Span(), "cannot index non-array type %s", safeString(lt)))
		}
		return types.Any
	}
	return arr.Elem
}

func (c *Checker) inferFieldAccess(e *ast.FieldAccessExpression, scope *Scope) types.Type {
	lt := c.inferExpr(e.Left, scope)
	switch t := lt.(type) {
	case *types.Record:
		ft, ok := t.FieldType(e.Field)
		if !ok {
			c.err(errors.NewType(errors.E3006, e.Span(), "record %q has no field %q", t.Name, e.Field))
			return types.Any
		}
		return ft
	case *types.Module:
		ft, ok := t.Exports[e.Field]
		if !ok {
			c.err(errors.NewType(errors.E3017, e.Span(), "module %q has no exported member %q", t.Name, e.Field))
			return types.Any
		}
		return ft
	case *types.AnyType:
		return types.Any
	default:
		c.err(errors.NewType(errors.E3006, e.Span(), "cannot access field %q on %s", e.Field, safeString(lt)))
		return types.Any
	}
}

func (c *Checker) inferCast(e *ast.CastExpression, scope *Scope) types.Type {
	from := c.inferExpr(e.Left, scope)
	to, err := c.resolveTypeExpr(e.Type)
	if err != nil {
		c.err(err)
		return types.Any
	}
	if from != nil && !types.CanCast(from, to) {
		c.err(errors.NewType(errors.E3003, e.Span(), "cannot cast %s to %s", from.String(), to.String()))
	}
	return to
}

func (c *Checker) inferAwait(e *ast.AwaitExpression, scope *Scope) types.Type {
	vt := c.inferExpr(e.Value, scope)
	if fut, ok := vt.(*types.Future); ok {
		return fut.Elem
	}
	if types.IsAny(vt) {
		return types.Any
	}
	c.err(errors.NewType(errors.E3001, e.Span(), "await requires a Future<T>, got %s", safeString(vt)))
	return types.Any
}
