// Package env holds the symbol environment shared by the parser and the code
// generator during one compilation.
package env

import (
	"go.creack.net/milac/ast"
	"go.creack.net/milac/ir"
)

// DefaultPrecedence lists the built-in binary operators and their priority.
// Higher binds tighter.
var DefaultPrecedence = map[string]int{
	":=":  2,
	"<":   10,
	">":   10,
	"<=":  10,
	">=":  10,
	"=":   10,
	"<>":  10,
	"+":   20,
	"-":   20,
	"*":   40,
	"/":   40,
	"mod": 40,
	"div": 40,
}

type binding struct {
	name  string
	value ir.Value
	ok    bool // Whether the name was bound before the frame shadowed it.
}

// Context is the symbol environment of a compilation.
type Context struct {
	scope     map[string]ir.Value
	frames    [][]binding
	functions map[string]*ast.Prototype
	prec      map[string]int
	constants map[string]bool
}

// New returns a context with the default operator precedences.
func New() *Context {
	c := &Context{
		scope:     map[string]ir.Value{},
		functions: map[string]*ast.Prototype{},
		prec:      make(map[string]int, len(DefaultPrecedence)),
		constants: map[string]bool{},
	}
	for op, p := range DefaultPrecedence {
		c.prec[op] = p
	}
	return c
}

// ClearScope drops every local binding. Called when a function body starts.
func (c *Context) ClearScope() {
	clear(c.scope)
	c.frames = nil
}

// Bind maps name to a storage slot. If a frame is open, the previous binding
// is recorded so PopFrame can restore it.
func (c *Context) Bind(name string, slot ir.Value) {
	if n := len(c.frames); n > 0 {
		old, ok := c.scope[name]
		c.frames[n-1] = append(c.frames[n-1], binding{name: name, value: old, ok: ok})
	}
	c.scope[name] = slot
}

// Lookup returns the local slot bound to name.
func (c *Context) Lookup(name string) (ir.Value, bool) {
	v, ok := c.scope[name]
	return v, ok
}

// PushFrame opens a nested scope.
func (c *Context) PushFrame() {
	c.frames = append(c.frames, nil)
}

// PopFrame closes the innermost scope, restoring every binding it shadowed,
// in reverse order.
func (c *Context) PopFrame() {
	n := len(c.frames)
	if n == 0 {
		return
	}
	frame := c.frames[n-1]
	c.frames = c.frames[:n-1]
	for i := len(frame) - 1; i >= 0; i-- {
		b := frame[i]
		if b.ok {
			c.scope[b.name] = b.value
		} else {
			delete(c.scope, b.name)
		}
	}
}

// DeclarePrototype records the signature of a function.
func (c *Context) DeclarePrototype(p *ast.Prototype) {
	c.functions[p.Name] = p
}

// Prototype returns the recorded signature of name.
func (c *Context) Prototype(name string) (*ast.Prototype, bool) {
	p, ok := c.functions[name]
	return p, ok
}

// Precedence returns the priority of a binary operator, or -1 when op is not
// a known binary operator.
func (c *Context) Precedence(op string) int {
	p, ok := c.prec[op]
	if !ok || p <= 0 {
		return -1
	}
	return p
}

// SetPrecedence installs a binary operator. The returned func undoes it.
func (c *Context) SetPrecedence(op string, p int) (undo func()) {
	old, ok := c.prec[op]
	c.prec[op] = p
	return func() {
		if ok {
			c.prec[op] = old
		} else {
			delete(c.prec, op)
		}
	}
}

// DeclareConstant marks name as not assignable.
func (c *Context) DeclareConstant(name string) {
	c.constants[name] = true
}

// IsConstant reports whether name was declared in a const section.
func (c *Context) IsConstant(name string) bool {
	return c.constants[name]
}
