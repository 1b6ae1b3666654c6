// Package parser implements a recursive-descent, precedence-climbing
// parser for PawScript, producing the internal/ast tree (spec.md §4.2).
package parser

import (
	"strconv"

	"pawscript/internal/ast"
	"pawscript/internal/errors"
	"pawscript/internal/lexer"
	"pawscript/internal/token"
)

const (
	_ int = iota
	LOWEST
	LOGICAL_OR
	LOGICAL_AND
	EQUALS
	COMPARISON
	SUM
	PRODUCT
	PREFIX
	POSTFIX // call, index, field, as
)

var precedences = map[token.Type]int{
	token.OR:       LOGICAL_OR,
	token.AND:      LOGICAL_AND,
	token.EQ:       EQUALS,
	token.NOT_EQ:   EQUALS,
	token.LT:       COMPARISON,
	token.LT_EQ:    COMPARISON,
	token.GT:       COMPARISON,
	token.GT_EQ:    COMPARISON,
	token.PLUS:     SUM,
	token.MINUS:    SUM,
	token.ASTERISK: PRODUCT,
	token.SLASH:    PRODUCT,
	token.PERCENT:  PRODUCT,
	token.LPAREN:   POSTFIX,
	token.LBRACKET: POSTFIX,
	token.DOT:      POSTFIX,
}

type (
	prefixParseFn func() (ast.Expression, error)
	infixParseFn  func(ast.Expression) (ast.Expression, error)
)

type Parser struct {
	l *lexer.Lexer

	cur  token.Token
	peek token.Token

	prefixFns map[token.Type]prefixParseFn
	infixFns  map[token.Type]infixParseFn

	// "as Type" (the cast keyword-operator) is special: it reads a
	// TypeExpr, not an Expression, on its right-hand side, so it is
	// driven directly from parseExpression's postfix loop rather than
	// through infixFns.

	// noRecordLit suppresses `Ident { ... }` record-literal parsing
	// while >0, so `if cond { }` isn't misread as a record literal
	// named cond. Mirrors the brace-ambiguity guard Go itself needs
	// for composite literals in if/for headers.
	noRecordLit int
}

func New(l *lexer.Lexer) (*Parser, error) {
	p := &Parser{l: l}

	p.prefixFns = map[token.Type]prefixParseFn{
		token.IDENT:    p.parseIdentifier,
		token.INT:      p.parseIntegerLiteral,
		token.LONG:     p.parseLongLiteral,
		token.FLOAT:    p.parseFloatLiteral,
		token.DOUBLE:   p.parseDoubleLiteral,
		token.STRING:   p.parseStringLiteral,
		token.CHAR:     p.parseCharLiteral,
		token.TRUE:     p.parseBool,
		token.FALSE:    p.parseBool,
		token.NOPAW:    p.parseNopaw,
		token.MINUS:    p.parsePrefix,
		token.NOT:      p.parsePrefix,
		token.LPAREN:   p.parseGroupedExpression,
		token.LBRACKET: p.parseArrayLiteral,
		token.AWAIT:    p.parseAwait,
	}

	p.infixFns = map[token.Type]infixParseFn{
		token.PLUS:     p.parseInfix,
		token.MINUS:    p.parseInfix,
		token.ASTERISK: p.parseInfix,
		token.SLASH:    p.parseInfix,
		token.PERCENT:  p.parseInfix,
		token.EQ:       p.parseInfix,
		token.NOT_EQ:   p.parseInfix,
		token.LT:       p.parseInfix,
		token.LT_EQ:    p.parseInfix,
		token.GT:       p.parseInfix,
		token.GT_EQ:    p.parseInfix,
		token.AND:      p.parseInfix,
		token.OR:       p.parseInfix,
		token.LPAREN:   p.parseCall,
		token.LBRACKET: p.parseIndex,
		token.DOT:      p.parseFieldOrCast,
	}

	if err := p.next(); err != nil {
		return nil, err
	}
	if err := p.next(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Parser) next() error {
	p.cur = p.peek
	tok, err := p.l.NextToken()
	if err != nil {
		return err
	}
	p.peek = tok
	return nil
}

func (p *Parser) curIs(t token.Type) bool  { return p.cur.Type == t }
func (p *Parser) peekIs(t token.Type) bool { return p.peek.Type == t }

func (p *Parser) expect(t token.Type) error {
	if !p.curIs(t) {
		return errors.NewParse(errors.E2002, p.cur.Span, "expected %s, got %s (%q)", t, p.cur.Type, p.cur.Literal)
	}
	return p.next()
}

// curPrecedence reports the binding power of the operator the parser
// is currently sitting on. Prefix parse functions consume their own
// token(s) before returning, so by the time parseExpression decides
// whether to keep looping, p.cur already holds the next candidate
// infix/postfix operator (there is no separate peek-ahead step here).
func (p *Parser) curPrecedence() int {
	if pr, ok := precedences[p.cur.Type]; ok {
		return pr
	}
	return LOWEST
}

// ParseProgram parses an entire source unit. It returns as many
// statements as could be parsed alongside the first error encountered
// so callers can still render a partial AST if useful; treat a
// non-nil error as fatal to compilation, per spec.md §4.2.
func ParseProgram(src string) (*ast.Program, error) {
	l := lexer.New(src)
	p, err := New(l)
	if err != nil {
		return nil, err
	}
	return p.parseProgram()
}

func (p *Parser) parseProgram() (*ast.Program, error) {
	prog := &ast.Program{}
	for !p.curIs(token.EOF) {
		stmt, err := p.parseStatement()
		if err != nil {
			return prog, err
		}
		if stmt != nil {
			prog.Statements = append(prog.Statements, stmt)
		}
	}
	return prog, nil
}

func (p *Parser) parseStatement() (ast.Statement, error) {
	switch p.cur.Type {
	case token.LET:
		return p.parseLet()
	case token.SAY:
		return p.parseSay()
	case token.ASK:
		return p.parseAskStatement()
	case token.RETURN:
		return p.parseReturn()
	case token.BARK:
		return p.parseBark()
	case token.BREAK:
		tok := p.cur
		if err := p.next(); err != nil {
			return nil, err
		}
		return &ast.BreakStatement{Token: tok}, nil
	case token.CONTINUE:
		tok := p.cur
		if err := p.next(); err != nil {
			return nil, err
		}
		return &ast.ContinueStatement{Token: tok}, nil
	case token.IF:
		return p.parseIf()
	case token.LOOP:
		return p.parseLoop()
	case token.SNIFF:
		return p.parseSniff()
	case token.FUN, token.ASYNC:
		return p.parseFunctionDeclaration()
	case token.RECORD:
		return p.parseRecordDeclaration()
	case token.IMPORT:
		return p.parseImport()
	case token.LBRACE:
		return p.parseBlock()
	default:
		return p.parseExpressionOrAssignStatement()
	}
}

func (p *Parser) parseBlock() (*ast.BlockStatement, error) {
	block := &ast.BlockStatement{Token: p.cur}
	if err := p.expect(token.LBRACE); err != nil {
		return nil, err
	}
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		block.Statements = append(block.Statements, stmt)
	}
	if err := p.expect(token.RBRACE); err != nil {
		return nil, err
	}
	return block, nil
}

func (p *Parser) parseLet() (ast.Statement, error) {
	tok := p.cur
	if err := p.next(); err != nil {
		return nil, err
	}
	if !p.curIs(token.IDENT) {
		return nil, errors.NewParse(errors.E2003, p.cur.Span, "expected identifier after 'let'")
	}
	name := &ast.Identifier{Token: p.cur, Value: p.cur.Literal}
	if err := p.next(); err != nil {
		return nil, err
	}

	ls := &ast.LetStatement{Token: tok, Name: name}
	if p.curIs(token.COLON) {
		if err := p.next(); err != nil {
			return nil, err
		}
		t, err := p.parseType()
		if err != nil {
			return nil, err
		}
		ls.Type = t
	}

	switch p.cur.Type {
	case token.LARROW:
		if err := p.next(); err != nil {
			return nil, err
		}
		if err := p.expect(token.ASK); err != nil {
			return nil, err
		}
		prompt, err := p.parseExpression(LOWEST)
		if err != nil {
			return nil, err
		}
		ls.IsAsk = true
		ls.AskPrompt = prompt
	case token.ASSIGN:
		if err := p.next(); err != nil {
			return nil, err
		}
		v, err := p.parseExpression(LOWEST)
		if err != nil {
			return nil, err
		}
		ls.Value = v
	default:
		return nil, errors.NewParse(errors.E2002, p.cur.Span, "expected '=' or '<-' in let statement")
	}
	return ls, nil
}

func (p *Parser) parseSay() (ast.Statement, error) {
	tok := p.cur
	if err := p.next(); err != nil {
		return nil, err
	}
	v, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	return &ast.SayStatement{Token: tok, Value: v}, nil
}

func (p *Parser) parseAskStatement() (ast.Statement, error) {
	tok := p.cur
	if err := p.next(); err != nil {
		return nil, err
	}
	v, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	return &ast.AskStatement{Token: tok, Prompt: v}, nil
}

func (p *Parser) parseReturn() (ast.Statement, error) {
	tok := p.cur
	if err := p.next(); err != nil {
		return nil, err
	}
	rs := &ast.ReturnStatement{Token: tok}
	if p.curIs(token.RBRACE) || p.curIs(token.EOF) {
		return rs, nil
	}
	v, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	rs.Value = v
	return rs, nil
}

func (p *Parser) parseBark() (ast.Statement, error) {
	tok := p.cur
	if err := p.next(); err != nil {
		return nil, err
	}
	v, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	return &ast.BarkStatement{Token: tok, Value: v}, nil
}

func (p *Parser) parseIf() (ast.Statement, error) {
	tok := p.cur
	if err := p.next(); err != nil {
		return nil, err
	}
	p.noRecordLit++
	cond, err := p.parseExpression(LOWEST)
	p.noRecordLit--
	if err != nil {
		return nil, err
	}
	then, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	stmt := &ast.IfStatement{Token: tok, Condition: cond, Then: then}
	if p.curIs(token.ELSE) {
		if err := p.next(); err != nil {
			return nil, err
		}
		if p.curIs(token.IF) {
			elseIf, err := p.parseIf()
			if err != nil {
				return nil, err
			}
			stmt.Else = elseIf
		} else {
			elseBlock, err := p.parseBlock()
			if err != nil {
				return nil, err
			}
			stmt.Else = elseBlock
		}
	}
	return stmt, nil
}

func (p *Parser) parseLoop() (ast.Statement, error) {
	tok := p.cur
	if err := p.next(); err != nil {
		return nil, err
	}

	if p.curIs(token.FOREVER) {
		if err := p.next(); err != nil {
			return nil, err
		}
		body, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		return &ast.LoopStatement{Token: tok, Kind: ast.LoopForever, Body: body}, nil
	}

	// `loop i in a..b { }` or `loop item in arr { }`, disambiguated by
	// whether an identifier is immediately followed by `in`.
	if p.curIs(token.IDENT) && p.peekIs(token.IN) {
		ident := &ast.Identifier{Token: p.cur, Value: p.cur.Literal}
		if err := p.next(); err != nil {
			return nil, err
		}
		if err := p.next(); err != nil { // consume 'in'
			return nil, err
		}
		p.noRecordLit++
		start, err := p.parseExpression(LOWEST)
		if err != nil {
			p.noRecordLit--
			return nil, err
		}
		if p.curIs(token.DOTDOT) {
			if err := p.next(); err != nil {
				p.noRecordLit--
				return nil, err
			}
			end, err := p.parseExpression(LOWEST)
			p.noRecordLit--
			if err != nil {
				return nil, err
			}
			body, err := p.parseBlock()
			if err != nil {
				return nil, err
			}
			return &ast.LoopStatement{Token: tok, Kind: ast.LoopRange, Var: ident, RangeStart: start, RangeEnd: end, Body: body}, nil
		}
		p.noRecordLit--
		body, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		return &ast.LoopStatement{Token: tok, Kind: ast.LoopArray, Var: ident, Iterable: start, Body: body}, nil
	}

	p.noRecordLit++
	cond, err := p.parseExpression(LOWEST)
	p.noRecordLit--
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.LoopStatement{Token: tok, Kind: ast.LoopWhile, Condition: cond, Body: body}, nil
}

func (p *Parser) parseSniff() (ast.Statement, error) {
	tok := p.cur
	if err := p.next(); err != nil {
		return nil, err
	}
	tryBlock, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	stmt := &ast.SniffStatement{Token: tok, Try: tryBlock}

	if p.curIs(token.SNATCH) {
		if err := p.next(); err != nil {
			return nil, err
		}
		if err := p.expect(token.LPAREN); err != nil {
			return nil, err
		}
		if !p.curIs(token.IDENT) {
			return nil, errors.NewParse(errors.E2003, p.cur.Span, "expected identifier in snatch binding")
		}
		stmt.SnatchName = &ast.Identifier{Token: p.cur, Value: p.cur.Literal}
		if err := p.next(); err != nil {
			return nil, err
		}
		if err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		snatchBlock, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		stmt.Snatch = snatchBlock
	}

	if p.curIs(token.LASTLY) {
		if err := p.next(); err != nil {
			return nil, err
		}
		lastlyBlock, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		stmt.Lastly = lastlyBlock
	}

	if stmt.Snatch == nil && stmt.Lastly == nil {
		return nil, errors.NewParse(errors.E2005, tok.Span, "sniff requires at least one of snatch/lastly")
	}
	return stmt, nil
}

func (p *Parser) parseFunctionDeclaration() (ast.Statement, error) {
	tok := p.cur
	isAsync := false
	if p.curIs(token.ASYNC) {
		isAsync = true
		if err := p.next(); err != nil {
			return nil, err
		}
	}
	if err := p.expect(token.FUN); err != nil {
		return nil, err
	}
	if !p.curIs(token.IDENT) {
		return nil, errors.NewParse(errors.E2003, p.cur.Span, "expected function name")
	}
	name := &ast.Identifier{Token: p.cur, Value: p.cur.Literal}
	if err := p.next(); err != nil {
		return nil, err
	}

	if err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	var params []*ast.Param
	for !p.curIs(token.RPAREN) {
		if !p.curIs(token.IDENT) {
			return nil, errors.NewParse(errors.E2003, p.cur.Span, "expected parameter name")
		}
		pname := &ast.Identifier{Token: p.cur, Value: p.cur.Literal}
		if err := p.next(); err != nil {
			return nil, err
		}
		if err := p.expect(token.COLON); err != nil {
			return nil, err
		}
		ptype, err := p.parseType()
		if err != nil {
			return nil, err
		}
		params = append(params, &ast.Param{Name: pname, Type: ptype})
		if p.curIs(token.COMMA) {
			if err := p.next(); err != nil {
				return nil, err
			}
		}
	}
	if err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	if err := p.expect(token.COLON); err != nil {
		return nil, err
	}
	retType, err := p.parseType()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.FunctionDeclaration{
		Token: tok, Name: name, IsAsync: isAsync,
		Parameters: params, ReturnType: retType, Body: body,
	}, nil
}

func (p *Parser) parseRecordDeclaration() (ast.Statement, error) {
	tok := p.cur
	if err := p.next(); err != nil {
		return nil, err
	}
	if !p.curIs(token.IDENT) {
		return nil, errors.NewParse(errors.E2003, p.cur.Span, "expected record name")
	}
	name := &ast.Identifier{Token: p.cur, Value: p.cur.Literal}
	if err := p.next(); err != nil {
		return nil, err
	}
	if err := p.expect(token.LBRACE); err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	var fields []*ast.FieldDecl
	for !p.curIs(token.RBRACE) {
		if !p.curIs(token.IDENT) {
			return nil, errors.NewParse(errors.E2003, p.cur.Span, "expected field name")
		}
		fname := &ast.Identifier{Token: p.cur, Value: p.cur.Literal}
		if seen[fname.Value] {
			return nil, errors.NewParse(errors.E2004, p.cur.Span, "duplicate field %q", fname.Value)
		}
		seen[fname.Value] = true
		if err := p.next(); err != nil {
			return nil, err
		}
		if err := p.expect(token.COLON); err != nil {
			return nil, err
		}
		ftype, err := p.parseType()
		if err != nil {
			return nil, err
		}
		fields = append(fields, &ast.FieldDecl{Name: fname, Type: ftype})
		if p.curIs(token.COMMA) {
			if err := p.next(); err != nil {
				return nil, err
			}
		}
	}
	if err := p.expect(token.RBRACE); err != nil {
		return nil, err
	}
	return &ast.RecordDeclaration{Token: tok, Name: name, Fields: fields}, nil
}

func (p *Parser) parseImport() (ast.Statement, error) {
	tok := p.cur
	if err := p.next(); err != nil {
		return nil, err
	}
	var path []string
	if !p.curIs(token.IDENT) {
		return nil, errors.NewParse(errors.E2003, p.cur.Span, "expected module path")
	}
	path = append(path, p.cur.Literal)
	if err := p.next(); err != nil {
		return nil, err
	}
	for p.curIs(token.DOT) {
		if err := p.next(); err != nil {
			return nil, err
		}
		if !p.curIs(token.IDENT) {
			return nil, errors.NewParse(errors.E2003, p.cur.Span, "expected module path segment")
		}
		path = append(path, p.cur.Literal)
		if err := p.next(); err != nil {
			return nil, err
		}
	}
	stmt := &ast.ImportStatement{Token: tok, Path: path}
	if p.curIs(token.AS) {
		if err := p.next(); err != nil {
			return nil, err
		}
		if !p.curIs(token.IDENT) {
			return nil, errors.NewParse(errors.E2003, p.cur.Span, "expected alias identifier")
		}
		stmt.Alias = &ast.Identifier{Token: p.cur, Value: p.cur.Literal}
		if err := p.next(); err != nil {
			return nil, err
		}
	}
	return stmt, nil
}

// parseExpressionOrAssignStatement parses either `LValue = Expr` or a
// bare expression statement, disambiguating by looking for '=' after
// the primary+postfix chain (spec.md §4.2).
func (p *Parser) parseExpressionOrAssignStatement() (ast.Statement, error) {
	tok := p.cur
	expr, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	if p.curIs(token.ASSIGN) {
		switch expr.(type) {
		case *ast.Identifier, *ast.IndexExpression, *ast.FieldAccessExpression:
		default:
			return nil, errors.NewParse(errors.E2006, p.cur.Span, "left side of assignment must be an identifier, index, or field access")
		}
		eq := p.cur
		if err := p.next(); err != nil {
			return nil, err
		}
		v, err := p.parseExpression(LOWEST)
		if err != nil {
			return nil, err
		}
		return &ast.AssignStatement{Token: eq, Target: expr, Value: v}, nil
	}
	return &ast.ExpressionStatement{Token: tok, Expression: expr}, nil
}

// ---- Expressions ----

func (p *Parser) parseExpression(precedence int) (ast.Expression, error) {
	prefix, ok := p.prefixFns[p.cur.Type]
	if !ok {
		return nil, errors.NewParse(errors.E2001, p.cur.Span, "unexpected token %s (%q) in expression", p.cur.Type, p.cur.Literal)
	}
	left, err := prefix()
	if err != nil {
		return nil, err
	}

	for {
		for precedence < p.curPrecedence() {
			infix, ok := p.infixFns[p.cur.Type]
			if !ok {
				break
			}
			left, err = infix(left)
			if err != nil {
				return nil, err
			}
		}

		// `as Type` binds at postfix precedence but reads a TypeExpr, so
		// it is not a normal infixFn; operators after the cast apply to
		// the cast expression.
		if !p.curIs(token.AS) {
			break
		}
		asTok := p.cur
		if err := p.next(); err != nil {
			return nil, err
		}
		t, err := p.parseType()
		if err != nil {
			return nil, err
		}
		left = &ast.CastExpression{Token: asTok, Left: left, Type: t}
	}

	return left, nil
}

func (p *Parser) parseIdentifier() (ast.Expression, error) {
	tok := p.cur
	ident := &ast.Identifier{Token: tok, Value: tok.Literal}
	if err := p.next(); err != nil {
		return nil, err
	}
	if p.curIs(token.LBRACE) && p.noRecordLit == 0 {
		return p.parseRecordLiteral(tok, ident)
	}
	return ident, nil
}

func (p *Parser) parseRecordLiteral(tok token.Token, name *ast.Identifier) (ast.Expression, error) {
	if err := p.next(); err != nil { // consume '{'
		return nil, err
	}
	lit := &ast.RecordLiteral{Token: tok, Name: name}
	for !p.curIs(token.RBRACE) {
		if !p.curIs(token.IDENT) {
			return nil, errors.NewParse(errors.E2003, p.cur.Span, "expected field name in record literal")
		}
		fname := &ast.Identifier{Token: p.cur, Value: p.cur.Literal}
		if err := p.next(); err != nil {
			return nil, err
		}
		if err := p.expect(token.COLON); err != nil {
			return nil, err
		}
		v, err := p.parseExpression(LOWEST)
		if err != nil {
			return nil, err
		}
		lit.Fields = append(lit.Fields, &ast.FieldInit{Name: fname, Value: v})
		if p.curIs(token.COMMA) {
			if err := p.next(); err != nil {
				return nil, err
			}
		}
	}
	if err := p.expect(token.RBRACE); err != nil {
		return nil, err
	}
	return lit, nil
}

func (p *Parser) parseIntegerLiteral() (ast.Expression, error) {
	tok := p.cur
	v, err := strconv.ParseInt(tok.Literal, 10, 32)
	if err != nil {
		return nil, errors.NewParse(errors.E1005, tok.Span, "invalid Int literal %q", tok.Literal)
	}
	if err := p.next(); err != nil {
		return nil, err
	}
	return &ast.IntegerLiteral{Token: tok, Value: int32(v)}, nil
}

func (p *Parser) parseLongLiteral() (ast.Expression, error) {
	tok := p.cur
	v, err := strconv.ParseInt(tok.Literal, 10, 64)
	if err != nil {
		return nil, errors.NewParse(errors.E1005, tok.Span, "invalid Long literal %q", tok.Literal)
	}
	if err := p.next(); err != nil {
		return nil, err
	}
	return &ast.LongLiteral{Token: tok, Value: v}, nil
}

func (p *Parser) parseFloatLiteral() (ast.Expression, error) {
	tok := p.cur
	v, err := strconv.ParseFloat(tok.Literal, 32)
	if err != nil {
		return nil, errors.NewParse(errors.E1005, tok.Span, "invalid Float literal %q", tok.Literal)
	}
	if err := p.next(); err != nil {
		return nil, err
	}
	return &ast.FloatLiteral{Token: tok, Value: float32(v)}, nil
}

func (p *Parser) parseDoubleLiteral() (ast.Expression, error) {
	tok := p.cur
	v, err := strconv.ParseFloat(tok.Literal, 64)
	if err != nil {
		return nil, errors.NewParse(errors.E1005, tok.Span, "invalid Double literal %q", tok.Literal)
	}
	if err := p.next(); err != nil {
		return nil, err
	}
	return &ast.DoubleLiteral{Token: tok, Value: v}, nil
}

func (p *Parser) parseStringLiteral() (ast.Expression, error) {
	tok := p.cur
	if err := p.next(); err != nil {
		return nil, err
	}
	return &ast.StringLiteral{Token: tok, Value: tok.Literal}, nil
}

func (p *Parser) parseCharLiteral() (ast.Expression, error) {
	tok := p.cur
	if err := p.next(); err != nil {
		return nil, err
	}
	return &ast.CharLiteral{Token: tok, Value: []rune(tok.Literal)[0]}, nil
}

func (p *Parser) parseBool() (ast.Expression, error) {
	tok := p.cur
	if err := p.next(); err != nil {
		return nil, err
	}
	return &ast.BoolLiteral{Token: tok, Value: tok.Type == token.TRUE}, nil
}

func (p *Parser) parseNopaw() (ast.Expression, error) {
	tok := p.cur
	if err := p.next(); err != nil {
		return nil, err
	}
	return &ast.NopawLiteral{Token: tok}, nil
}

func (p *Parser) parsePrefix() (ast.Expression, error) {
	tok := p.cur
	op := string(tok.Type)
	if err := p.next(); err != nil {
		return nil, err
	}
	right, err := p.parseExpression(PREFIX)
	if err != nil {
		return nil, err
	}
	return &ast.PrefixExpression{Token: tok, Operator: op, Right: right}, nil
}

func (p *Parser) parseAwait() (ast.Expression, error) {
	tok := p.cur
	if err := p.next(); err != nil {
		return nil, err
	}
	v, err := p.parseExpression(PREFIX)
	if err != nil {
		return nil, err
	}
	return &ast.AwaitExpression{Token: tok, Value: v}, nil
}

func (p *Parser) parseGroupedExpression() (ast.Expression, error) {
	if err := p.next(); err != nil { // consume '('
		return nil, err
	}
	expr, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	if err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return expr, nil
}

func (p *Parser) parseArrayLiteral() (ast.Expression, error) {
	tok := p.cur
	if err := p.next(); err != nil { // consume '['
		return nil, err
	}
	arr := &ast.ArrayLiteral{Token: tok}
	for !p.curIs(token.RBRACKET) {
		e, err := p.parseExpression(LOWEST)
		if err != nil {
			return nil, err
		}
		arr.Elements = append(arr.Elements, e)
		if p.curIs(token.COMMA) {
			if err := p.next(); err != nil {
				return nil, err
			}
		}
	}
	if err := p.expect(token.RBRACKET); err != nil {
		return nil, err
	}
	return arr, nil
}

func (p *Parser) parseInfix(left ast.Expression) (ast.Expression, error) {
	tok := p.cur
	op := string(tok.Type)
	precedence := p.curPrecedence()
	if err := p.next(); err != nil {
		return nil, err
	}
	right, err := p.parseExpression(precedence)
	if err != nil {
		return nil, err
	}
	return &ast.InfixExpression{Token: tok, Left: left, Operator: op, Right: right}, nil
}

func (p *Parser) parseCall(fn ast.Expression) (ast.Expression, error) {
	tok := p.cur
	if err := p.next(); err != nil { // consume '('
		return nil, err
	}
	call := &ast.CallExpression{Token: tok, Function: fn}
	for !p.curIs(token.RPAREN) {
		a, err := p.parseExpression(LOWEST)
		if err != nil {
			return nil, err
		}
		call.Arguments = append(call.Arguments, a)
		if p.curIs(token.COMMA) {
			if err := p.next(); err != nil {
				return nil, err
			}
		}
	}
	if err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return call, nil
}

func (p *Parser) parseIndex(left ast.Expression) (ast.Expression, error) {
	tok := p.cur
	if err := p.next(); err != nil { // consume '['
		return nil, err
	}
	idx, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	if err := p.expect(token.RBRACKET); err != nil {
		return nil, err
	}
	return &ast.IndexExpression{Token: tok, Left: left, Index: idx}, nil
}

func (p *Parser) parseFieldOrCast(left ast.Expression) (ast.Expression, error) {
	tok := p.cur // '.'
	if err := p.next(); err != nil {
		return nil, err
	}
	if !p.curIs(token.IDENT) {
		return nil, errors.NewParse(errors.E2003, p.cur.Span, "expected field name after '.'")
	}
	field := p.cur.Literal
	if err := p.next(); err != nil {
		return nil, err
	}
	if field == "length" {
		lengthExpr := &ast.LengthExpression{Token: tok, Left: left}
		// spec.md §9 Open Question: accept both `arr.length` and
		// `arr.length()`.
		if p.curIs(token.LPAREN) {
			if err := p.next(); err != nil {
				return nil, err
			}
			if err := p.expect(token.RPAREN); err != nil {
				return nil, err
			}
		}
		return lengthExpr, nil
	}
	return &ast.FieldAccessExpression{Token: tok, Left: left, Field: field}, nil
}

// ---- Record construction: `Name { field: expr, ... }` ----
//
// This can only be recognized unambiguously when an identifier is
// immediately followed by '{', which the statement-level grammar
// (block bodies also start with '{') never produces directly after a
// bare identifier expression statement; the parser therefore treats
// `Ident {` as a record literal whenever it appears inside an
// expression context (call argument, RHS of '=', etc.) by having
// parseIdentifier check one token ahead.

func (p *Parser) parseType() (ast.TypeExpr, error) {
	var base ast.TypeExpr
	switch {
	case p.curIs(token.IDENT) && p.cur.Literal == "Array":
		tok := p.cur
		if err := p.next(); err != nil {
			return nil, err
		}
		if err := p.expectOp("<"); err != nil {
			return nil, err
		}
		elem, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if err := p.expectOp(">"); err != nil {
			return nil, err
		}
		base = &ast.ArrayType{Token: tok, Elem: elem}
	case p.curIs(token.IDENT) && p.cur.Literal == "Future":
		tok := p.cur
		if err := p.next(); err != nil {
			return nil, err
		}
		if err := p.expectOp("<"); err != nil {
			return nil, err
		}
		elem, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if err := p.expectOp(">"); err != nil {
			return nil, err
		}
		base = &ast.FutureType{Token: tok, Inner: elem}
	case p.curIs(token.IDENT):
		tok := p.cur
		base = &ast.NamedType{Token: tok, Name: tok.Literal}
		if err := p.next(); err != nil {
			return nil, err
		}
	default:
		return nil, errors.NewParse(errors.E2003, p.cur.Span, "expected a type name")
	}

	for p.curIs(token.QUESTION) {
		tok := p.cur
		if err := p.next(); err != nil {
			return nil, err
		}
		base = &ast.OptionalType{Token: tok, Inner: base}
	}
	return base, nil
}

// expectOp consumes the current '<' or '>' token; these are lexed as
// LT/GT rather than dedicated generic-bracket tokens.
func (p *Parser) expectOp(lit string) error {
	want := token.LT
	if lit == ">" {
		want = token.GT
	}
	if !p.curIs(want) {
		return errors.NewParse(errors.E2002, p.cur.Span, "expected %q in type, got %q", lit, p.cur.Literal)
	}
	return p.next()
}
