package lexer

import (
	"testing"

	"pawscript/internal/token"
)

func TestNextToken(t *testing.T) {
	input := `let x: Int = 5
fun add(a: Int, b: Int): Int { return a + b }
if x == 5 && true { say "hi" } else { bark "no" }
x <- ask "name?"
loop i in 0..10 { continue }
nopaw == x?
'a' "str\n\u{41}" 3.5F 7L
`

	tests := []struct {
		expectedType    token.Type
		expectedLiteral string
	}{
		{token.LET, "let"},
		{token.IDENT, "x"},
		{token.COLON, ":"},
		{token.IDENT, "Int"},
		{token.ASSIGN, "="},
		{token.INT, "5"},
		{token.FUN, "fun"},
		{token.IDENT, "add"},
		{token.LPAREN, "("},
		{token.IDENT, "a"},
		{token.COLON, ":"},
		{token.IDENT, "Int"},
		{token.COMMA, ","},
		{token.IDENT, "b"},
		{token.COLON, ":"},
		{token.IDENT, "Int"},
		{token.RPAREN, ")"},
		{token.COLON, ":"},
		{token.IDENT, "Int"},
		{token.LBRACE, "{"},
		{token.RETURN, "return"},
		{token.IDENT, "a"},
		{token.PLUS, "+"},
		{token.IDENT, "b"},
		{token.RBRACE, "}"},
		{token.IF, "if"},
		{token.IDENT, "x"},
		{token.EQ, "=="},
		{token.INT, "5"},
		{token.AND, "&&"},
		{token.TRUE, "true"},
		{token.LBRACE, "{"},
		{token.SAY, "say"},
		{token.STRING, "hi"},
		{token.RBRACE, "}"},
		{token.ELSE, "else"},
		{token.LBRACE, "{"},
		{token.BARK, "bark"},
		{token.STRING, "no"},
		{token.RBRACE, "}"},
		{token.IDENT, "x"},
		{token.LARROW, "<-"},
		{token.ASK, "ask"},
		{token.STRING, "name?"},
		{token.LOOP, "loop"},
		{token.IDENT, "i"},
		{token.IN, "in"},
		{token.INT, "0"},
		{token.DOTDOT, ".."},
		{token.INT, "10"},
		{token.LBRACE, "{"},
		{token.CONTINUE, "continue"},
		{token.RBRACE, "}"},
		{token.NOPAW, "nopaw"},
		{token.EQ, "=="},
		{token.IDENT, "x"},
		{token.QUESTION, "?"},
		{token.CHAR, "a"},
		{token.STRING, "str\nA"},
		{token.FLOAT, "3.5"},
		{token.LONG, "7"},
		{token.EOF, ""},
	}

	l := New(input)
	for i, tt := range tests {
		tok, err := l.NextToken()
		if err != nil {
			t.Fatalf("tests[%d] - unexpected lex error: %v", i, err)
		}
		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - wrong type. expected=%q, got=%q (literal %q)", i, tt.expectedType, tok.Type, tok.Literal)
		}
		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - wrong literal. expected=%q, got=%q", i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestUnterminatedString(t *testing.T) {
	l := New(`"oops`)
	if _, err := l.NextToken(); err == nil {
		t.Fatal("expected an unterminated-string error")
	}
}

func TestInvalidEscape(t *testing.T) {
	l := New(`"bad \q escape"`)
	if _, err := l.NextToken(); err == nil {
		t.Fatal("expected an invalid-escape error")
	}
}

func TestMultiCharLiteral(t *testing.T) {
	l := New(`'ab'`)
	if _, err := l.NextToken(); err == nil {
		t.Fatal("expected a multi-character literal error")
	}
}
