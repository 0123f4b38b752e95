package lexer

import "testing"

func scanAll(t *testing.T, input string) []Token {
	t.Helper()
	l := New(input)
	var toks []Token
	for {
		tok, err := l.Next()
		if err != nil {
			t.Fatalf("unexpected lex error for %q: %v", input, err)
		}
		toks = append(toks, tok)
		if tok.Kind == EOF {
			return toks
		}
	}
}

func kinds(toks []Token) []Kind {
	out := make([]Kind, len(toks))
	for i, tok := range toks {
		out[i] = tok.Kind
	}
	return out
}

func assertKinds(t *testing.T, input string, want ...Kind) {
	t.Helper()
	toks := scanAll(t, input)
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("%q: got %d tokens %v, want %d %v", input, len(got), got, len(want), want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("%q: token %d = %v, want %v", input, i, got[i], want[i])
		}
	}
}

func TestSingleCharTokens(t *testing.T) {
	assertKinds(t, "$.*[]()" /* */, DOLLAR, DOT, STAR, LBRACKET, RBRACKET, LPAREN, RPAREN, EOF)
}

func TestDotDot(t *testing.T) {
	assertKinds(t, "$..foo", DOLLAR, DOUBLEDOT, ID, EOF)
}

func TestOperators(t *testing.T) {
	assertKinds(t, "== != <= >= < > && || !", EQ, NE, LE, GE, LT, GT, AND, OR, BANG, EOF)
}

func TestReservedWords(t *testing.T) {
	assertKinds(t, "where wherenot null true false", WHERE, WHERENOT, NULL, TRUE, FALSE, EOF)
}

func TestIdentifierNotReserved(t *testing.T) {
	toks := scanAll(t, "wherefore")
	if toks[0].Kind != ID || toks[0].Value != "wherefore" {
		t.Fatalf("expected ID wherefore, got %+v", toks[0])
	}
}

func TestNumberLiterals(t *testing.T) {
	cases := []string{"0", "-0", "123", "-123", "1.5", "1.5e10", "1.5E-10", "0.25"}
	for _, c := range cases {
		toks := scanAll(t, c)
		if toks[0].Kind != NUMBER {
			t.Fatalf("%q: expected NUMBER, got %v", c, toks[0].Kind)
		}
		if toks[0].NumberText != c {
			t.Fatalf("%q: NumberText = %q, want %q", c, toks[0].NumberText, c)
		}
	}
}

func TestSingleQuotedString(t *testing.T) {
	toks := scanAll(t, `'hello\nworld'`)
	if toks[0].Kind != STRING {
		t.Fatalf("expected STRING, got %v", toks[0].Kind)
	}
	if toks[0].Value != "hello\nworld" {
		t.Fatalf("got %q", toks[0].Value)
	}
}

func TestDoubleQuotedString(t *testing.T) {
	toks := scanAll(t, `"a\"b"`)
	if toks[0].Value != `a"b` {
		t.Fatalf("got %q", toks[0].Value)
	}
}

func TestSurrogatePairEscape(t *testing.T) {
	// U+1F600 GRINNING FACE, encoded as a UTF-16 surrogate pair.
	toks := scanAll(t, `"\uD83D\uDE00"`)
	if toks[0].Kind != STRING {
		t.Fatalf("expected STRING, got %v", toks[0].Kind)
	}
	runes := []rune(toks[0].Value)
	if len(runes) != 1 || runes[0] != 0x1F600 {
		t.Fatalf("got %q (%v)", toks[0].Value, runes)
	}
}

func TestUnpairedSurrogateIsError(t *testing.T) {
	l := New(`"\ud83dX"`)
	_, err := l.Next()
	if err == nil {
		t.Fatalf("expected error for unpaired surrogate")
	}
}

func TestControlCharacterRejected(t *testing.T) {
	l := New("\"a\x01b\"")
	_, err := l.Next()
	if err == nil {
		t.Fatalf("expected error for embedded control character")
	}
}

func TestBackquotedNamedOperator(t *testing.T) {
	toks := scanAll(t, "`this`")
	if toks[0].Kind != NAMEDOP || toks[0].Value != "this" {
		t.Fatalf("got %+v", toks[0])
	}
}

func TestFullFilterExpression(t *testing.T) {
	assertKinds(t, `$.store.book[?(@.price<10)]`,
		DOLLAR, DOT, ID, DOT, ID, LBRACKET, QMARK, LPAREN, CURRENT, DOT, ID, LT, NUMBER, RPAREN, RBRACKET, EOF)
}
