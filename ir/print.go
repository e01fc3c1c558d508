package ir

import (
	"fmt"
	"io"
	"strings"
)

// String renders the module in an LLVM-like text form.
func (m *Module) String() string {
	var sb strings.Builder
	_ = m.Print(&sb)
	return sb.String()
}

// Print writes the text form of the module to w.
func (m *Module) Print(w io.Writer) error {
	p := &printer{w: w}
	p.printf("; module %s\n", m.Name)
	for _, g := range m.Globals {
		kind := "global"
		if g.Constant {
			kind = "constant"
		}
		p.printf("@%s = %s i32 %d\n", g.Name, kind, g.Init)
	}
	for _, f := range m.Functions {
		p.printf("\n")
		p.function(f)
	}
	return p.err
}

func (f *Function) String() string {
	var sb strings.Builder
	p := &printer{w: &sb}
	p.function(f)
	return sb.String()
}

type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *printer) function(f *Function) {
	params := make([]string, 0, len(f.Params))
	for _, prm := range f.Params {
		params = append(params, fmt.Sprintf("%s %%%s", prm.Type, prm.Name))
	}
	sig := fmt.Sprintf("%s @%s(%s)", f.Ret, f.Name, strings.Join(params, ", "))
	if f.IsDeclaration() {
		p.printf("declare %s\n", sig)
		return
	}
	p.printf("define %s {\n", sig)
	for i, b := range f.Blocks {
		if i > 0 {
			p.printf("\n")
		}
		p.printf("%s:\n", b.Label)
		for _, in := range b.Instrs {
			p.printf("  %s\n", in)
		}
	}
	p.printf("}\n")
}
