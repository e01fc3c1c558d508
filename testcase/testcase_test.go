package testcase

import (
	"strings"
	"testing"

	"github.com/nalgeon/be"
)

const fence = "```"

func TestExtractBasic(t *testing.T) {
	doc := `# Arithmetic

Some prose that is ignored.

## Test: precedence
` + fence + `mila
writeln(2 + 3 * 4)
` + fence + `
` + fence + `output
14
` + fence + `

## Test: read
` + fence + `mila
var x : integer;
begin readln(x); writeln(x); end.
` + fence + `
` + fence + `input
5
` + fence + `
` + fence + `output
5
` + fence + `
`
	cases, err := Extract([]byte(doc))
	be.Err(t, err, nil)
	be.Equal(t, len(cases), 2)

	be.Equal(t, cases[0].Name, "precedence")
	be.Equal(t, cases[0].Source, "writeln(2 + 3 * 4)\n")
	be.Equal(t, cases[0].Output, "14\n")
	be.True(t, cases[0].HasOutput)
	be.Equal(t, cases[0].Input, "")
	be.Equal(t, cases[0].Line, 5)

	be.Equal(t, cases[1].Name, "read")
	be.Equal(t, cases[1].Input, "5\n")
	be.Equal(t, cases[1].Output, "5\n")
}

func TestExtractDiagnosticsAndIR(t *testing.T) {
	doc := `## Test: errors
` + fence + `mila
const k = 1;
begin k := 2; x := 1; end.
` + fence + `
` + fence + `diagnostics
assignment to a constant

undeclared variable name "x"
` + fence + `
` + fence + `ir
@k = constant i32 1
  ret i32 0
` + fence + `
`
	cases, err := Extract([]byte(doc))
	be.Err(t, err, nil)
	be.Equal(t, len(cases), 1)
	be.Equal(t, cases[0].Diagnostics, []string{"assignment to a constant", `undeclared variable name "x"`})
	be.Equal(t, cases[0].IR, []string{"@k = constant i32 1", "ret i32 0"})
	be.True(t, !cases[0].HasOutput)
}

func TestExtractEmptyOutput(t *testing.T) {
	doc := "## Test: silent\n" + fence + "mila\nbegin end.\n" + fence + "\n" + fence + "output\n" + fence + "\n"
	cases, err := Extract([]byte(doc))
	be.Err(t, err, nil)
	be.Equal(t, len(cases), 1)
	be.True(t, cases[0].HasOutput)
	be.Equal(t, cases[0].Output, "")
}

func TestExtractErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{
			name: "no source",
			doc:  "## Test: empty\n" + fence + "output\n1\n" + fence + "\n",
			want: `test "empty" has no mila fence`,
		},
		{
			name: "unknown fence",
			doc:  "## Test: odd\n" + fence + "mila\n1\n" + fence + "\n" + fence + "wasm\n" + fence + "\n",
			want: `unknown fence "wasm"`,
		},
		{
			name: "duplicate source",
			doc:  "## Test: twice\n" + fence + "mila\n1\n" + fence + "\n" + fence + "mila\n2\n" + fence + "\n",
			want: "duplicate mila fence",
		},
		{
			name: "fence outside test",
			doc:  fence + "mila\n1\n" + fence + "\n",
			want: "fence outside of a test",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Extract([]byte(tt.doc))
			be.True(t, err != nil)
			be.True(t, strings.Contains(err.Error(), tt.want))
		})
	}
}

func TestExtractPlainBlocksAreIgnored(t *testing.T) {
	doc := fence + "\nnot a test\n" + fence + "\n## Notes\n\n## Test: ok\n" + fence + "mila\n1\n" + fence + "\n" + fence + "\nprose\n" + fence + "\n"
	cases, err := Extract([]byte(doc))
	be.Err(t, err, nil)
	be.Equal(t, len(cases), 1)
	be.Equal(t, cases[0].Name, "ok")
}
