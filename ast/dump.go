package ast

import (
	"strconv"
	"strings"
)

// Dumps render nodes as S-expressions, e.g. "(+ 2 (* 3 4))".

func (n *Number) Dump() string   { return strconv.Itoa(int(n.Value)) }
func (v *Variable) Dump() string { return v.Name }

func (b *Binary) Dump() string {
	return "(" + b.Op + " " + dumpExpr(b.Left) + " " + dumpExpr(b.Right) + ")"
}

func (u *Unary) Dump() string {
	return "(" + u.Op + " " + dumpExpr(u.Operand) + ")"
}

func (c *Call) Dump() string {
	return sexpr(append([]string{"call", c.Callee}, dumpList(c.Args)...)...)
}

func (i *If) Dump() string {
	parts := []string{"if", dumpExpr(i.Cond), sexpr(append([]string{"then"}, dumpList(i.Then)...)...)}
	if i.HasElse {
		parts = append(parts, sexpr("else", dumpExpr(i.Else)))
	}
	return sexpr(parts...)
}

func (f *For) Dump() string {
	dir := "to"
	if f.Descending {
		dir = "downto"
	}
	parts := []string{"for", f.Var, dumpExpr(f.Start), dir, dumpExpr(f.End)}
	if f.Step != nil {
		parts = append(parts, "step", dumpExpr(f.Step))
	}
	parts = append(parts, sexpr(append([]string{"do"}, dumpList(f.Body)...)...))
	return sexpr(parts...)
}

func (w *While) Dump() string {
	return sexpr("while", dumpExpr(w.Cond), sexpr(append([]string{"do"}, dumpList(w.Body)...)...))
}

func (*Exit) Dump() string { return "(exit)" }

func (v *Var) Dump() string   { return sexpr(append([]string{"var"}, dumpDecls(v.Decls)...)...) }
func (c *Const) Dump() string { return sexpr(append([]string{"const"}, dumpDecls(c.Decls)...)...) }

func (p *Prototype) Dump() string {
	kind := "function"
	if p.IsProcedure {
		kind = "procedure"
	}
	parts := []string{kind, p.Name}
	if p.IsBinary() {
		parts = append(parts, "prec="+strconv.Itoa(p.Precedence))
	}
	return sexpr(append(parts, sexpr(p.Params...))...)
}

func (f *Function) Dump() string {
	if f.Main {
		return sexpr(append([]string{"main"}, dumpList(f.Body)...)...)
	}
	return sexpr(append([]string{"define", f.Proto.Dump()}, dumpList(f.Body)...)...)
}

func dumpExpr(e Expr) string {
	if e == nil {
		return "nil"
	}
	return e.Dump()
}

func dumpList(exprs []Expr) []string {
	out := make([]string, 0, len(exprs))
	for _, e := range exprs {
		out = append(out, dumpExpr(e))
	}
	return out
}

func dumpDecls(decls []Decl) []string {
	out := make([]string, 0, len(decls))
	for _, d := range decls {
		if d.Init == nil {
			out = append(out, d.Name)
			continue
		}
		out = append(out, sexpr(d.Name, dumpExpr(d.Init)))
	}
	return out
}

func sexpr(parts ...string) string {
	return "(" + strings.Join(parts, " ") + ")"
}
