// Package codegen lowers AST items into an ir.Module, one item at a time.
//
// Locals and parameters live in storage slots allocated in the entry block;
// every read is a load and every write a store. Top-level statements are
// appended to a synthetic main function.
package codegen

import (
	"fmt"

	"go.creack.net/milac/ast"
	"go.creack.net/milac/env"
	"go.creack.net/milac/ir"
)

// MainName is the function top-level statements are lowered into.
const MainName = "main"

// Generator lowers items into a module.
type Generator struct {
	ctx     *env.Context
	module  *ir.Module
	builder *ir.Builder

	proto *ast.Prototype // Prototype of the function being lowered.
}

// New returns a generator emitting into m and resolving names through ctx.
func New(ctx *env.Context, m *ir.Module) *Generator {
	return &Generator{
		ctx:     ctx,
		module:  m,
		builder: ir.NewBuilder(),
	}
}

// Module returns the module being built.
func (g *Generator) Module() *ir.Module { return g.module }

// Lower lowers one top-level item. On failure the module is left as it was
// before the item, and the returned error is an *Error.
func (g *Generator) Lower(item ast.Item) error {
	switch it := item.(type) {
	case *ast.Function:
		if it.Main {
			return g.lowerMain(it)
		}
		return g.lowerFunction(it)
	case *ast.Prototype:
		if err := g.lowerPrototype(it); err != nil {
			return &Error{Func: it.Name, Err: err}
		}
		return nil
	case *ast.Var:
		return g.lowerGlobalVar(it)
	case *ast.Const:
		return g.lowerGlobalConst(it)
	default:
		panic(fmt.Errorf("unsupported item type %T", item))
	}
}

// Finish terminates main, creating it if the program has no top-level
// statement, and returns the module.
func (g *Generator) Finish() *ir.Module {
	f := g.module.Function(MainName)
	if f == nil {
		f = g.module.AddFunction(MainName, nil, ir.I32)
	}
	if f.IsDeclaration() {
		f.NewBlock("entry")
	}
	if last := f.Last(); !last.Terminated() {
		g.builder.SetInsertPoint(last)
		g.builder.Ret(ir.Const(0))
	}
	return g.module
}

func signature(p *ast.Prototype) ([]ir.Param, ir.Type) {
	params := make([]ir.Param, 0, len(p.Params))
	for _, name := range p.Params {
		params = append(params, ir.Param{Name: name, Type: ir.I32})
	}
	ret := ir.I32
	if p.IsProcedure {
		ret = ir.Void
	}
	return params, ret
}

// declare adds a function declaration for p to the module.
func (g *Generator) declare(p *ast.Prototype) *ir.Function {
	params, ret := signature(p)
	return g.module.AddFunction(p.Name, params, ret)
}

// lookupFunction resolves a callee: functions already in the module first,
// then recorded prototypes, which are declared on first use.
func (g *Generator) lookupFunction(name string) (*ir.Function, error) {
	if f := g.module.Function(name); f != nil {
		return f, nil
	}
	if p, ok := g.ctx.Prototype(name); ok {
		return g.declare(p), nil
	}
	return nil, fmt.Errorf("%w %q", ErrUndeclaredFunction, name)
}

// checkSignature reports whether an existing function can take p's definition.
func checkSignature(f *ir.Function, p *ast.Prototype) error {
	params, ret := signature(p)
	if len(f.Params) != len(params) || f.Ret != ret {
		return fmt.Errorf("%w: %s(%d) %s, declared as (%d) %s", ErrSignatureMismatch, p.Name, len(params), ret, len(f.Params), f.Ret)
	}
	return nil
}

func (g *Generator) lowerPrototype(p *ast.Prototype) error {
	g.ctx.DeclarePrototype(p)
	if f := g.module.Function(p.Name); f != nil {
		return checkSignature(f, p)
	}
	g.declare(p)
	return nil
}

func (g *Generator) lowerFunction(fn *ast.Function) error {
	proto := fn.Proto

	f := g.module.Function(proto.Name)
	existed := f != nil
	if existed {
		if !f.IsDeclaration() {
			return &Error{Func: proto.Name, Err: fmt.Errorf("%w %q", ErrRedefinition, proto.Name)}
		}
		if err := checkSignature(f, proto); err != nil {
			return &Error{Func: proto.Name, Err: err}
		}
		// The definition names the parameters.
		f.Params, _ = signature(proto)
	} else {
		f = g.declare(proto)
	}
	g.ctx.DeclarePrototype(proto)

	// Installed before the body so the operator can be used recursively.
	undo := func() {}
	if proto.IsBinary() {
		undo = g.ctx.SetPrecedence(proto.OperatorName(), proto.Precedence)
	}

	if err := g.lowerBody(f, fn); err != nil {
		undo()
		if existed {
			f.Reset()
		} else {
			g.module.RemoveFunction(f)
		}
		return &Error{Func: proto.Name, Err: err}
	}
	return nil
}

func (g *Generator) lowerBody(f *ir.Function, fn *ast.Function) error {
	g.proto = fn.Proto
	g.builder.SetInsertPoint(f.NewBlock("entry"))
	g.ctx.ClearScope()

	for i := range f.Params {
		slot := g.builder.Alloca(f.Params[i].Name + ".addr")
		g.builder.Store(f.Param(i), slot)
		g.ctx.Bind(f.Params[i].Name, slot)
	}

	last := ir.Const(0)
	for _, e := range fn.Body {
		v, err := g.lowerExpr(e)
		if err != nil {
			return err
		}
		last = orZero(v)
	}

	if g.builder.Block().Terminated() {
		return nil
	}
	if f.Ret == ir.Void {
		g.builder.RetVoid()
	} else {
		g.builder.Ret(last)
	}
	return nil
}

// lowerMain appends top-level statements to main. A failing statement only
// discards what it emitted itself.
func (g *Generator) lowerMain(fn *ast.Function) error {
	f := g.module.Function(MainName)
	if f == nil {
		f = g.module.AddFunction(MainName, nil, ir.I32)
	}
	if f.IsDeclaration() {
		f.NewBlock("entry")
	}
	if f.Last().Terminated() {
		return &Error{Func: MainName, Err: fmt.Errorf("%w %q", ErrRedefinition, MainName)}
	}

	g.proto = fn.Proto
	g.builder.SetInsertPoint(f.Last())
	g.ctx.ClearScope()

	snap := f.Snapshot()
	for _, e := range fn.Body {
		if _, err := g.lowerExpr(e); err != nil {
			f.Restore(snap)
			return &Error{Func: MainName, Err: err}
		}
	}
	return nil
}

// orZero turns the missing value of a void call into 0.
func orZero(v ir.Value) ir.Value {
	if !v.IsValid() {
		return ir.Const(0)
	}
	return v
}
