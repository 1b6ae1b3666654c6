// Package errors defines PawScript's structured error-code registry and
// the concrete error types listed in spec.md §7.
package errors

import (
	"fmt"

	"pawscript/internal/token"
)

// Code names a specific diagnosis, grouped by pipeline stage the way
// a production compiler's error catalog is: E1xxx lexical, E2xxx
// syntax, E3xxx static type, E4xxx runtime.
type Code struct {
	ID          string
	Name        string
	Description string
}

var (
	// Lexical errors (E1xxx)
	E1001 = Code{"E1001", "unterminated-string", "string literal not closed"}
	E1002 = Code{"E1002", "unterminated-char", "character literal not closed"}
	E1003 = Code{"E1003", "invalid-escape", "invalid escape sequence"}
	E1004 = Code{"E1004", "invalid-codepoint", "invalid Unicode code point in \\u{...} escape"}
	E1005 = Code{"E1005", "malformed-number", "malformed numeric literal"}
	E1006 = Code{"E1006", "illegal-character", "illegal character in source"}
	E1007 = Code{"E1007", "empty-char-literal", "character literal is empty"}
	E1008 = Code{"E1008", "multi-char-literal", "character literal contains more than one scalar"}

	// Parse errors (E2xxx)
	E2001 = Code{"E2001", "unexpected-token", "unexpected token encountered"}
	E2002 = Code{"E2002", "missing-token", "expected token not found"}
	E2003 = Code{"E2003", "missing-expression", "expected an expression"}
	E2004 = Code{"E2004", "duplicate-field", "field name already used"}
	E2005 = Code{"E2005", "missing-sniff-clause", "sniff requires a snatch, a lastly, or both"}
	E2006 = Code{"E2006", "invalid-assignment-target", "left side of assignment is not assignable"}

	// Type errors (E3xxx)
	E3001 = Code{"E3001", "type-mismatch", "value's type is not compatible with the expected type"}
	E3002 = Code{"E3002", "arity-mismatch", "wrong number of arguments"}
	E3003 = Code{"E3003", "bad-cast", "operands of 'as' must both be numeric, or identical, or Any"}
	E3004 = Code{"E3004", "missing-field", "record initializer missing a declared field"}
	E3005 = Code{"E3005", "duplicate-field-init", "field supplied more than once in record initializer"}
	E3006 = Code{"E3006", "unknown-field", "record has no such field"}
	E3007 = Code{"E3007", "unknown-identifier", "identifier is not defined"}
	E3008 = Code{"E3008", "non-mutable-assignment", "target is not a mutable binding"}
	E3009 = Code{"E3009", "nopaw-to-non-optional", "nopaw is only assignable to an Optional(T) binding"}
	E3010 = Code{"E3010", "invalid-break-continue", "break/continue outside of a loop"}
	E3011 = Code{"E3011", "invalid-return", "return outside of a function, or wrong value type"}
	E3012 = Code{"E3012", "not-callable", "value is not callable"}
	E3013 = Code{"E3013", "not-indexable", "value is not an array"}
	E3014 = Code{"E3014", "incompatible-binary-types", "operands of a binary operator are not type-compatible"}
	E3015 = Code{"E3015", "unknown-type", "type name is not defined"}
	E3016 = Code{"E3016", "duplicate-declaration", "name already declared in this scope"}
	E3017 = Code{"E3017", "unknown-module-member", "module has no such exported member"}

	// Runtime errors (E4xxx)
	E4001 = Code{"E4001", "index-out-of-bounds", "array index out of bounds"}
	E4002 = Code{"E4002", "division-by-zero", "division by zero"}
	E4003 = Code{"E4003", "nil-field-access", "field access on a nopaw value"}
	E4004 = Code{"E4004", "any-type-mismatch", "value held by Any did not have the expected runtime type"}
)

// LexError, ParseError, TypeError, and RuntimeError are the front-end
// and runtime error kinds spec.md §7 names; ModuleNotFoundError and
// ModuleCycleError live in internal/module since they are raised only
// by the resolver.
type LexError struct {
	Code Code
	Span token.Span
	Msg  string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("%d:%d: lex error [%s]: %s", e.Span.Line, e.Span.Col, e.Code.ID, e.Msg)
}

type ParseError struct {
	Code Code
	Span token.Span
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%d:%d: parse error [%s]: %s", e.Span.Line, e.Span.Col, e.Code.ID, e.Msg)
}

type TypeError struct {
	Code Code
	Span token.Span
	Msg  string
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("%d:%d: type error [%s]: %s", e.Span.Line, e.Span.Col, e.Code.ID, e.Msg)
}

type RuntimeError struct {
	Code Code
	Span token.Span
	Msg  string
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("%d:%d: runtime error [%s]: %s", e.Span.Line, e.Span.Col, e.Code.ID, e.Msg)
}

func NewType(code Code, span token.Span, format string, args ...any) *TypeError {
	return &TypeError{Code: code, Span: span, Msg: fmt.Sprintf(format, args...)}
}

func NewRuntime(code Code, span token.Span, format string, args ...any) *RuntimeError {
	return &RuntimeError{Code: code, Span: span, Msg: fmt.Sprintf(format, args...)}
}

func NewParse(code Code, span token.Span, format string, args ...any) *ParseError {
	return &ParseError{Code: code, Span: span, Msg: fmt.Sprintf(format, args...)}
}

func NewLex(code Code, span token.Span, format string, args ...any) *LexError {
	return &LexError{Code: code, Span: span, Msg: fmt.Sprintf(format, args...)}
}
