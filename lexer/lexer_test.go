package lexer

import (
	"errors"
	"io"
	"strings"
	"testing"
)

// Helper function to test the lexer
func testLexer(t *testing.T, input string, expectedTokens []Token) {
	t.Helper()

	l := New(io.NopCloser(strings.NewReader(input)))
	var tokens []Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == TokEOF {
			break
		}
	}
	if len(tokens) != len(expectedTokens) {
		t.Fatalf("Expected %d tokens, got %d: %v", len(expectedTokens), len(tokens), tokens)
	}
	for i, expectedToken := range expectedTokens {
		token := tokens[i]

		if token.Type != expectedToken.Type {
			t.Fatalf("tests[%d] - wrong type. expected=%q (%s), got=%q (%s)",
				i, expectedToken.Type, expectedToken, token.Type, token)
		}

		if expectedToken.Type != TokEOF && token.Value != expectedToken.Value {
			t.Fatalf("tests[%d] - wrong value. expected=%q (%s), got=%q (%s)",
				i, expectedToken.Value, expectedToken, token.Value, token)
		}

		if token.Num != expectedToken.Num {
			t.Fatalf("tests[%d] - wrong number. expected=%d, got=%d (%s)",
				i, expectedToken.Num, token.Num, token)
		}
	}
}

func TestTokenTypeString(t *testing.T) {
	if len(tokenTypeStrings) != int(FinalToken) {
		t.Fatalf("Expected %d token types in tokenTypeStrings, got %d", FinalToken, len(tokenTypeStrings))
	}
}

func TestLexerKeywords(t *testing.T) {
	for word, tt := range keywords {
		t.Run(word, func(t *testing.T) {
			testLexer(t, word, []Token{
				{Type: tt, Value: word},
				{Type: TokEOF},
			})
		})
	}
}

func TestLexerIdentifiers(t *testing.T) {
	for _, word := range []string{"x", "beginning", "ends", "Begin", "var1", "writeln", "integer2", "fo"} {
		t.Run(word, func(t *testing.T) {
			testLexer(t, word, []Token{
				{Type: TokIdentifier, Value: word},
				{Type: TokEOF},
			})
		})
	}
}

func TestLexerNumbers(t *testing.T) {
	input := "42 &17 $1F $ff 0 $FFFFFFFF"
	expectedTokens := []Token{
		{Type: TokNumber, Value: "42", Num: 42},
		{Type: TokNumber, Value: "&17", Num: 15},
		{Type: TokNumber, Value: "$1F", Num: 31},
		{Type: TokNumber, Value: "$ff", Num: 255},
		{Type: TokNumber, Value: "0", Num: 0},
		{Type: TokNumber, Value: "$FFFFFFFF", Num: -1},
		{Type: TokEOF},
	}

	testLexer(t, input, expectedTokens)
}

func TestLexerNumberErrors(t *testing.T) {
	input := "99999999999 & $"
	expectedTokens := []Token{
		{Type: TokError, Value: "number 99999999999 out of range"},
		{Type: TokError, Value: "missing digits after '&'"},
		{Type: TokError, Value: "missing digits after '$'"},
		{Type: TokEOF},
	}

	testLexer(t, input, expectedTokens)
}

func TestLexerOperators(t *testing.T) {
	input := ":= <= >= != <> == || < > = : ! | + - * / ( ) , ; ."
	expectedTokens := []Token{
		{Type: TokAssign, Value: ":="},
		{Type: TokLessEqual, Value: "<="},
		{Type: TokGreaterEqual, Value: ">="},
		{Type: TokNotEqual, Value: "!="},
		{Type: TokNotEqual, Value: "<>"},
		{Type: TokEq, Value: "=="},
		{Type: TokOr, Value: "||"},
		{Type: TokChar, Value: "<"},
		{Type: TokChar, Value: ">"},
		{Type: TokChar, Value: "="},
		{Type: TokChar, Value: ":"},
		{Type: TokChar, Value: "!"},
		{Type: TokChar, Value: "|"},
		{Type: TokChar, Value: "+"},
		{Type: TokChar, Value: "-"},
		{Type: TokChar, Value: "*"},
		{Type: TokChar, Value: "/"},
		{Type: TokChar, Value: "("},
		{Type: TokChar, Value: ")"},
		{Type: TokChar, Value: ","},
		{Type: TokChar, Value: ";"},
		{Type: TokChar, Value: "."},
		{Type: TokEOF},
	}

	testLexer(t, input, expectedTokens)
}

func TestLexerOperatorsWithoutSpaces(t *testing.T) {
	input := "x:=y<=3;a:integer"
	expectedTokens := []Token{
		{Type: TokIdentifier, Value: "x"},
		{Type: TokAssign, Value: ":="},
		{Type: TokIdentifier, Value: "y"},
		{Type: TokLessEqual, Value: "<="},
		{Type: TokNumber, Value: "3", Num: 3},
		{Type: TokChar, Value: ";"},
		{Type: TokIdentifier, Value: "a"},
		{Type: TokChar, Value: ":"},
		{Type: TokInteger, Value: "integer"},
		{Type: TokEOF},
	}

	testLexer(t, input, expectedTokens)
}

func TestLexerComments(t *testing.T) {
	input := "# leading comment\nx # trailing\n# another\n\ny # at eof"
	expectedTokens := []Token{
		{Type: TokIdentifier, Value: "x"},
		{Type: TokIdentifier, Value: "y"},
		{Type: TokEOF},
	}

	testLexer(t, input, expectedTokens)
}

func TestLexerProgram(t *testing.T) {
	input := "program p;\nbegin\n  writeln(1+2*3);\nend."
	expectedTokens := []Token{
		{Type: TokProgram, Value: "program"},
		{Type: TokIdentifier, Value: "p"},
		{Type: TokChar, Value: ";"},
		{Type: TokBegin, Value: "begin"},
		{Type: TokIdentifier, Value: "writeln"},
		{Type: TokChar, Value: "("},
		{Type: TokNumber, Value: "1", Num: 1},
		{Type: TokChar, Value: "+"},
		{Type: TokNumber, Value: "2", Num: 2},
		{Type: TokChar, Value: "*"},
		{Type: TokNumber, Value: "3", Num: 3},
		{Type: TokChar, Value: ")"},
		{Type: TokChar, Value: ";"},
		{Type: TokEnd, Value: "end"},
		{Type: TokChar, Value: "."},
		{Type: TokEOF},
	}

	testLexer(t, input, expectedTokens)
}

func TestLexerPositions(t *testing.T) {
	l := NewString("a\n  bc := 1")
	tok := l.NextToken()
	if tok.Line() != 1 || tok.Col() != 1 {
		t.Fatalf("unexpected position for %s", tok)
	}
	tok = l.NextToken()
	if tok.Line() != 2 || tok.Col() != 3 {
		t.Fatalf("unexpected position for %s", tok)
	}
	tok = l.NextToken()
	if tok.Type != TokAssign || tok.Line() != 2 || tok.Col() != 6 {
		t.Fatalf("unexpected position for %s", tok)
	}
}

func TestLexerEOFIsSticky(t *testing.T) {
	l := NewString("x")
	l.NextToken()
	for i := 0; i < 3; i++ {
		if tok := l.NextToken(); tok.Type != TokEOF {
			t.Fatalf("expected EOF, got %s", tok)
		}
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("boom") }

func TestLexerReadError(t *testing.T) {
	l := New(failingReader{})
	tok := l.NextToken()
	if tok.Type != TokError || !strings.Contains(tok.Value, "boom") {
		t.Fatalf("expected read error token, got %s", tok)
	}
	if tok := l.NextToken(); tok.Type != TokEOF {
		t.Fatalf("expected EOF after read error, got %s", tok)
	}
}

func TestTokenOp(t *testing.T) {
	for _, tc := range []struct {
		input string
		op    string
	}{
		{"+", "+"},
		{"!=", "<>"},
		{"<>", "<>"},
		{"==", "="},
		{"=", "="},
		{":=", ":="},
		{"mod", "mod"},
		{"div", "div"},
		{"modulo", ""},
		{"x", ""},
		{"12", ""},
	} {
		tok := NewString(tc.input).NextToken()
		if got := tok.Op(); got != tc.op {
			t.Errorf("Op(%q) = %q, want %q", tc.input, got, tc.op)
		}
	}
}

func TestLexerModDivAreIdentifiers(t *testing.T) {
	testLexer(t, "div := a mod b", []Token{
		{Type: TokIdentifier, Value: "div"},
		{Type: TokAssign, Value: ":="},
		{Type: TokIdentifier, Value: "a"},
		{Type: TokIdentifier, Value: "mod"},
		{Type: TokIdentifier, Value: "b"},
		{Type: TokEOF},
	})
}
