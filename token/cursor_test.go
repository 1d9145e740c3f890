package token

import "testing"

func tokensOf(t *testing.T, text string) []Token {
	t.Helper()
	c := NewCursor(text)
	var toks []Token
	for {
		tok := c.Next()
		toks = append(toks, tok)
		if tok.Kind == End {
			return toks
		}
	}
}

func assertKinds(t *testing.T, toks []Token, kinds ...Kind) {
	t.Helper()
	if len(toks) != len(kinds) {
		t.Fatalf("expected %d tokens, got %d (%v)", len(kinds), len(toks), toks)
	}
	for i, k := range kinds {
		if toks[i].Kind != k {
			t.Fatalf("token %d: expected kind %s, got %s", i, k, toks[i].Kind)
		}
	}
}

func TestSymbol(t *testing.T) {
	toks := tokensOf(t, "<digit>")
	assertKinds(t, toks, Symbol, End)
	if toks[0].Text != "<digit>" {
		t.Fatalf("expected full bracketed text, got %q", toks[0].Text)
	}
}

func TestUnterminatedSymbolConsumesToEnd(t *testing.T) {
	toks := tokensOf(t, "<digit")
	assertKinds(t, toks, Symbol, End)
	if toks[0].Text != "<digit" {
		t.Fatalf("got %q", toks[0].Text)
	}
}

func TestTerminalSingleAndDoubleQuote(t *testing.T) {
	toks := tokensOf(t, `'a' "bc"`)
	assertKinds(t, toks, Terminal, Terminal, End)
	if toks[0].Text != "a" || toks[1].Text != "bc" {
		t.Fatalf("got %q %q", toks[0].Text, toks[1].Text)
	}
}

func TestEllipsis(t *testing.T) {
	toks := tokensOf(t, "'0' ... '9'")
	assertKinds(t, toks, Terminal, Ellipsis, Terminal, End)
}

func TestHexLiteral(t *testing.T) {
	toks := tokensOf(t, "0x4A 0X0")
	assertKinds(t, toks, Hex, Hex, End)
	if toks[0].Text != "0x4A" || toks[1].Text != "0X0" {
		t.Fatalf("got %q %q", toks[0].Text, toks[1].Text)
	}
}

func TestPunctuators(t *testing.T) {
	toks := tokensOf(t, "{[(^|)]}")
	assertKinds(t, toks, LBrace, LBracket, LParen, Caret, Pipe, RParen, RBracket, RBrace, End)
}

func TestBareWord(t *testing.T) {
	toks := tokensOf(t, "GET")
	assertKinds(t, toks, Word, End)
	if toks[0].Text != "GET" {
		t.Fatalf("got %q", toks[0].Text)
	}
}

func TestWordStopsAtSpecialChars(t *testing.T) {
	toks := tokensOf(t, "abc|def")
	assertKinds(t, toks, Word, Pipe, Word, End)
}

func TestPeekDoesNotConsume(t *testing.T) {
	c := NewCursor("'a' 'b'")
	first := c.Peek()
	if first.Kind != Terminal || first.Text != "a" {
		t.Fatalf("unexpected peek result: %+v", first)
	}
	second := c.Next()
	if second != first {
		t.Fatalf("peek and next disagree: %+v vs %+v", first, second)
	}
	third := c.Next()
	if third.Text != "b" {
		t.Fatalf("expected second terminal, got %+v", third)
	}
}

func TestSkipsSpacesAndTabs(t *testing.T) {
	toks := tokensOf(t, "  \t'a'\t\t'b'  ")
	assertKinds(t, toks, Terminal, Terminal, End)
}

func TestEmptyInputIsEnd(t *testing.T) {
	toks := tokensOf(t, "")
	assertKinds(t, toks, End)
}
