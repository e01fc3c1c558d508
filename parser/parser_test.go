package parser

import (
	"bytes"
	"errors"
	"log"
	"strings"
	"testing"

	"github.com/kr/pretty"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.creack.net/milac/ast"
	"go.creack.net/milac/env"
	"go.creack.net/milac/lexer"
)

func parseString(t *testing.T, ctx *env.Context, src string) ([]ast.Item, []error) {
	t.Helper()
	if ctx == nil {
		ctx = env.New()
	}
	return Parse(lexer.NewString(src), ctx, nil)
}

func dumps(items []ast.Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Dump())
	}
	return out
}

// assertDumps checks the dumps of the items and shows a structural diff of
// the tree on failure.
func assertDumps(t *testing.T, src string, want ...string) {
	t.Helper()
	items, errs := parseString(t, nil, src)
	require.Empty(t, errs)
	if !assert.Equal(t, want, dumps(items)) {
		for _, d := range pretty.Diff(want, dumps(items)) {
			t.Log(d)
		}
		t.Logf("tree: %# v", pretty.Formatter(items))
	}
}

func TestParserPrecedence(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"2+3*4", "(main (+ 2 (* 3 4)))"},
		{"2*3+4", "(main (+ (* 2 3) 4))"},
		{"1-2-3", "(main (- (- 1 2) 3))"},
		{"(1+2)*3", "(main (* (+ 1 2) 3))"},
		{"x := 1 + 2 * 3", "(main (:= x (+ 1 (* 2 3))))"},
		{"a < b + 1", "(main (< a (+ b 1)))"},
		{"a = b", "(main (= a b))"},
		{"a == b", "(main (= a b))"},
		{"a != b", "(main (<> a b))"},
		{"a <> b", "(main (<> a b))"},
		{"a >= b", "(main (>= a b))"},
		{"7 mod 3 + 10 div 2", "(main (+ (mod 7 3) (div 10 2)))"},
		{"-x * 2", "(main (* (- x) 2))"},
		{"!!x", "(main (! (! x)))"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			assertDumps(t, tt.src, tt.want)
		})
	}
}

func TestParserUserOperatorPrecedence(t *testing.T) {
	ctx := env.New()

	items, errs := parseString(t, ctx, "1 + 2 % 3")
	require.Empty(t, errs)
	assert.Equal(t, []string{"(main (+ 1 2))", "(main (% 3))"}, dumps(items), "undeclared operators end the expression")

	undo := ctx.SetPrecedence("%", 50)
	items, errs = parseString(t, ctx, "1 + 2 % 3")
	require.Empty(t, errs)
	assert.Equal(t, []string{"(main (+ 1 (% 2 3)))"}, dumps(items))
	undo()

	ctx.SetPrecedence("%", 5)
	items, errs = parseString(t, ctx, "1 + 2 % 3")
	require.Empty(t, errs)
	assert.Equal(t, []string{"(main (% (+ 1 2) 3))"}, dumps(items))
}

func TestParserCalls(t *testing.T) {
	assertDumps(t, "writeln(1+2*3); f(); g(a, b)",
		"(main (call writeln (+ 1 (* 2 3))))",
		"(main (call f))",
		"(main (call g a b))",
	)
}

func TestParserIf(t *testing.T) {
	assertDumps(t, "if a then b := 1",
		"(main (if a (then (:= b 1))))")
	assertDumps(t, "if a > 1 then b := 1 else b := 2",
		"(main (if (> a 1) (then (:= b 1)) (else (:= b 2))))")
	assertDumps(t, "if a then begin b := 1; c := 2 end else writeln(a)",
		"(main (if a (then (:= b 1) (:= c 2)) (else (call writeln a))))")
	assertDumps(t, "if a then begin end",
		"(main (if a (then)))")
}

func TestParserLoops(t *testing.T) {
	assertDumps(t, "for i := 1 to 5 do begin writeln(i); end",
		"(main (for i 1 to 5 (do (call writeln i))))")
	assertDumps(t, "for i := 10 downto 0 step 2 do begin writeln(i) end",
		"(main (for i 10 downto 0 step 2 (do (call writeln i))))")
	assertDumps(t, "while n > 0 do begin n := n - 1; if n = 3 then exit end",
		"(main (while (> n 0) (do (:= n (- n 1)) (if (= n 3) (then (exit))))))")
	assertDumps(t, "while n do n := n - 1",
		"(main (while n (do (:= n (- n 1)))))")
}

func TestParserForMissingDoIsNotFatal(t *testing.T) {
	items, errs := parseString(t, nil, "for i := 1 to 2 begin writeln(i) end")
	assert.Equal(t, []string{"(main (for i 1 to 2 (do (call writeln i))))"}, dumps(items))
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "MISSING 'do' AFTER 'for'")
}

func TestParserModDivAsNames(t *testing.T) {
	assertDumps(t, "var div, mod : integer; begin div := 7 mod 3; writeln(div div mod); end.",
		"(var div mod)",
		"(main (:= div (mod 7 3)))",
		"(main (call writeln (div div mod)))",
	)
	assertDumps(t, "function mod(a: integer): integer; begin a end; mod(2)",
		"(define (function mod (a)) a)",
		"(main (call mod 2))",
	)
}

func TestParserEmptyStatements(t *testing.T) {
	assertDumps(t, "function f(): integer; begin ; x := 1;; ; 2; end;",
		"(define (function f ()) (:= x 1) 2)")
	assertDumps(t, "while n do begin ;; n := n - 1;; end",
		"(main (while n (do (:= n (- n 1)))))")
}

func TestParserVarSections(t *testing.T) {
	assertDumps(t, "var x : integer; y : integer;", "(var x y)")
	assertDumps(t, "var a, b, c : integer;", "(var a b c)")
	assertDumps(t, "var a, b : integer; c : integer; begin end", "(var a b c)")

	items, errs := parseString(t, nil, "var x integer;")
	assert.Empty(t, items)
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0].Error(), "MISSING ',' OR ':' AFTER THE 'identifier'")
}

func TestParserConstSectionRegistersNames(t *testing.T) {
	ctx := env.New()
	items, errs := parseString(t, ctx, "const k = 5; m = k * 2; begin end")
	require.Empty(t, errs)
	assert.Equal(t, []string{"(const (k 5) (m (* k 2)))"}, dumps(items))
	assert.True(t, ctx.IsConstant("k"))
	assert.True(t, ctx.IsConstant("m"))
	assert.False(t, ctx.IsConstant("begin"))
}

func TestParserDefinitions(t *testing.T) {
	assertDumps(t, `
function sq(a: integer): integer;
begin
	a * a
end;`,
		"(define (function sq (a)) (* a a))")

	assertDumps(t, `
procedure show(a: integer; b: integer);
var t : integer;
const two = 2;
var u : integer;
begin
	t := a * two;
	writeln(t + b);
end;`,
		"(define (procedure show (a b)) (var t) (const (two 2)) (var u) (:= t (* a two)) (call writeln (+ t b)))")

	assertDumps(t, "function binary% 50 (a: integer; b: integer): integer; begin a mod b end;",
		"(define (function binary% prec=50 (a b)) (mod a b))")
	assertDumps(t, "function binary| (a: integer, b: integer): integer; begin a end;",
		"(define (function binary| prec=30 (a b)) a)")
	assertDumps(t, "function unary! (a: integer): integer; begin a = 0 end;",
		"(define (function unary! (a)) (= a 0))")
	assertDumps(t, "function unary- (a: integer): integer; begin 0 - a end;",
		"(define (function unary- (a)) (- 0 a))")
}

func TestParserOperatorDefinitionErrors(t *testing.T) {
	tests := []struct {
		src string
		msg string
	}{
		{"function binary% (a: integer): integer; begin a end;", "INVALID NUMBER OF OPERANDS FOR OPERATOR"},
		{"function unary! (a: integer; b: integer): integer; begin a end;", "INVALID NUMBER OF OPERANDS FOR OPERATOR"},
		{"function binary+ (a: integer; b: integer): integer; begin a end;", "EXPECTED AN OPERATOR CHARACTER AFTER 'binary'"},
		{"function binary; (a: integer; b: integer): integer; begin a end;", "EXPECTED AN OPERATOR CHARACTER AFTER 'binary'"},
		{"function binary% 200 (a: integer; b: integer): integer; begin a end;", "INVALID PRECEDENCE"},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			_, errs := parseString(t, nil, tt.src)
			require.NotEmpty(t, errs)
			assert.Contains(t, errs[0].Error(), tt.msg)
		})
	}
}

func TestParserDuplicateParameter(t *testing.T) {
	items, errs := parseString(t, nil, "function f(a: integer; a: integer): integer; begin a end;")
	require.NotEmpty(t, errs)
	assert.NotContains(t, dumps(items), "(define (function f (a a)) a)")
	assert.Contains(t, errs[0].Error(), "DUPLICATE PARAMETER 'a'")
}

func TestParserForward(t *testing.T) {
	ctx := env.New()
	items, errs := parseString(t, ctx, `
function odd(n: integer): integer; forward;
forward procedure later();
begin odd(3); end.`)
	require.Empty(t, errs)
	assert.Equal(t, []string{
		"(function odd (n))",
		"(procedure later ())",
		"(main (call odd 3))",
	}, dumps(items))

	proto, ok := ctx.Prototype("odd")
	require.True(t, ok)
	assert.Equal(t, []string{"n"}, proto.Params)
	proto, ok = ctx.Prototype("later")
	require.True(t, ok)
	assert.True(t, proto.IsProcedure)
}

func TestParserProgram(t *testing.T) {
	src := `program demo;
# globals
var x, y : integer;
const k = $0A;

function twice(a: integer): integer;
begin
	a * 2
end;

begin
	x := twice(k);
	writeln(x);
end.
writeln(99)
`
	p := New(strings.NewReader(src), env.New(), nil)
	var got []string
	for item := p.Next(); item != nil; item = p.Next() {
		got = append(got, item.Dump())
	}
	assert.Empty(t, p.Errors())
	assert.Equal(t, "demo", p.ProgramName())
	assert.Equal(t, []string{
		"(var x y)",
		"(const (k 10))",
		"(define (function twice (a)) (* a 2))",
		"(main (:= x (call twice k)))",
		"(main (call writeln x))",
	}, got, "parsing stops at the final '.'")
}

func TestParserErrorRecovery(t *testing.T) {
	var logs bytes.Buffer
	items, errs := Parse(lexer.NewString("x := (1 + 2; writeln(2)"), env.New(), log.New(&logs, "", 0))

	require.NotEmpty(t, errs)
	var perr *Error
	require.True(t, errors.As(errs[0], &perr))
	assert.Equal(t, 1, perr.Line)
	assert.Contains(t, logs.String(), "ERROR: ")
	assert.Contains(t, dumps(items), "(main (call writeln 2))", "parsing resumes after the broken statement")
}

func TestParserLexerErrorsAreReported(t *testing.T) {
	items, errs := parseString(t, nil, "writeln($)")
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "missing digits")
	assert.Equal(t, []string{"(main (call writeln))"}, dumps(items))
}
