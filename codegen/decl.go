package codegen

import (
	"fmt"

	"go.creack.net/milac/ast"
	"go.creack.net/milac/ir"
)

// lowerLocals gives each declared name a fresh slot holding its initializer,
// or 0. The previous bindings are recorded in the enclosing scope frame.
func (g *Generator) lowerLocals(decls []ast.Decl) (ir.Value, error) {
	for _, d := range decls {
		init := ir.Const(0)
		if d.Init != nil {
			v, err := g.value(d.Init)
			if err != nil {
				return ir.Value{}, err
			}
			init = v
		}
		slot := g.builder.Alloca(d.Name)
		g.builder.Store(init, slot)
		g.ctx.Bind(d.Name, slot)
	}
	return ir.Const(0), nil
}

func (g *Generator) lowerGlobalVar(v *ast.Var) error {
	for _, d := range v.Decls {
		g.module.AddGlobal(d.Name, 0, false)
	}
	return nil
}

// lowerGlobalConst declares constant globals. Nothing is declared unless
// every initializer folds to a constant.
func (g *Generator) lowerGlobalConst(c *ast.Const) error {
	values := make(map[string]int32, len(c.Decls))
	for _, d := range c.Decls {
		if d.Init == nil {
			values[d.Name] = 0
			continue
		}
		v, err := g.fold(d.Init, values)
		if err != nil {
			return &Error{Err: fmt.Errorf("const %s: %w", d.Name, err)}
		}
		values[d.Name] = v
	}
	for _, d := range c.Decls {
		g.module.AddGlobal(d.Name, values[d.Name], true)
	}
	return nil
}

// fold evaluates a constant initializer: literals, constants declared
// earlier (in the module or in pending) and built-in arithmetic on them.
func (g *Generator) fold(e ast.Expr, pending map[string]int32) (int32, error) {
	switch e := e.(type) {
	case *ast.Number:
		return e.Value, nil
	case *ast.Variable:
		if v, ok := pending[e.Name]; ok {
			return v, nil
		}
		if gv := g.module.Global(e.Name); gv != nil && gv.Constant {
			return gv.Init, nil
		}
	case *ast.Unary:
		if e.Op == "-" && !g.hasFunction("unary-") {
			v, err := g.fold(e.Operand, pending)
			return -v, err
		}
	case *ast.Binary:
		l, err := g.fold(e.Left, pending)
		if err != nil {
			return 0, err
		}
		r, err := g.fold(e.Right, pending)
		if err != nil {
			return 0, err
		}
		if op, ok := binOps[e.Op]; ok {
			return ir.Eval(op, l, r)
		}
		if pred, ok := cmpOps[e.Op]; ok {
			if ir.Compare(pred, l, r) {
				return 1, nil
			}
			return 0, nil
		}
	}
	return 0, fmt.Errorf("%w: %s", ErrNotConstant, e.Dump())
}

func (g *Generator) hasFunction(name string) bool {
	if g.module.Function(name) != nil {
		return true
	}
	_, ok := g.ctx.Prototype(name)
	return ok
}
