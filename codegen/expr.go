package codegen

import (
	"fmt"

	"go.creack.net/milac/ast"
	"go.creack.net/milac/ir"
)

var binOps = map[string]ir.BinOpKind{
	"+":   ir.OpAdd,
	"-":   ir.OpSub,
	"*":   ir.OpMul,
	"/":   ir.OpSDiv,
	"div": ir.OpSDiv,
	"mod": ir.OpSRem,
}

var cmpOps = map[string]ir.CmpPred{
	"<":  ir.CmpSLT,
	"<=": ir.CmpSLE,
	">":  ir.CmpSGT,
	">=": ir.CmpSGE,
	"=":  ir.CmpEQ,
	"<>": ir.CmpNE,
}

// lowerExpr lowers an expression. The result is invalid for calls to
// procedures.
func (g *Generator) lowerExpr(e ast.Expr) (ir.Value, error) {
	switch e := e.(type) {
	case *ast.Number:
		return ir.Const(e.Value), nil
	case *ast.Variable:
		slot, err := g.resolve(e.Name)
		if err != nil {
			return ir.Value{}, err
		}
		return g.builder.Load(slot, e.Name), nil
	case *ast.Binary:
		if e.Op == ":=" {
			return g.lowerAssign(e)
		}
		return g.lowerBinary(e)
	case *ast.Unary:
		return g.lowerUnary(e)
	case *ast.Call:
		return g.lowerCall(e)
	case *ast.If:
		return g.lowerIf(e)
	case *ast.For:
		return g.lowerFor(e)
	case *ast.While:
		return g.lowerWhile(e)
	case *ast.Exit:
		return g.lowerExit()
	case *ast.Var:
		return g.lowerLocals(e.Decls)
	case *ast.Const:
		return g.lowerLocals(e.Decls)
	default:
		panic(fmt.Errorf("unsupported expression type %T", e))
	}
}

// value lowers an expression that must produce a value.
func (g *Generator) value(e ast.Expr) (ir.Value, error) {
	v, err := g.lowerExpr(e)
	if err != nil {
		return ir.Value{}, err
	}
	if !v.IsValid() {
		return ir.Value{}, fmt.Errorf("%w: %s", ErrVoidValue, e.Dump())
	}
	return v, nil
}

// resolve returns the storage slot of a variable: a local first, then a
// global.
func (g *Generator) resolve(name string) (ir.Value, error) {
	if slot, ok := g.ctx.Lookup(name); ok {
		return slot, nil
	}
	if gv := g.module.Global(name); gv != nil {
		return gv.Value(), nil
	}
	return ir.Value{}, fmt.Errorf("%w %q", ErrUndeclaredVariable, name)
}

// address returns the slot of a variable passed by reference.
func (g *Generator) address(e ast.Expr) (ir.Value, error) {
	v, ok := e.(*ast.Variable)
	if !ok {
		return ir.Value{}, fmt.Errorf("%w: %s passed by reference", ErrInvalidAssignment, e.Dump())
	}
	if g.ctx.IsConstant(v.Name) {
		return ir.Value{}, fmt.Errorf("%w %q", ErrConstantAssignment, v.Name)
	}
	return g.resolve(v.Name)
}

func (g *Generator) lowerAssign(e *ast.Binary) (ir.Value, error) {
	target, ok := e.Left.(*ast.Variable)
	if !ok {
		return ir.Value{}, fmt.Errorf("%w: %s", ErrInvalidAssignment, e.Left.Dump())
	}
	if g.ctx.IsConstant(target.Name) {
		return ir.Value{}, fmt.Errorf("%w %q", ErrConstantAssignment, target.Name)
	}

	val, err := g.value(e.Right)
	if err != nil {
		return ir.Value{}, err
	}
	slot, err := g.resolve(target.Name)
	if err != nil {
		return ir.Value{}, err
	}
	g.builder.Store(val, slot)
	return val, nil
}

func (g *Generator) lowerBinary(e *ast.Binary) (ir.Value, error) {
	l, err := g.value(e.Left)
	if err != nil {
		return ir.Value{}, err
	}
	r, err := g.value(e.Right)
	if err != nil {
		return ir.Value{}, err
	}

	if op, ok := binOps[e.Op]; ok {
		return g.builder.BinOp(op, l, r, op.String()+"tmp"), nil
	}
	if pred, ok := cmpOps[e.Op]; ok {
		c := g.builder.Cmp(pred, l, r, "cmptmp")
		return g.builder.ZExt(c, "booltmp"), nil
	}

	f, err := g.operator("binary"+e.Op, 2)
	if err != nil {
		return ir.Value{}, err
	}
	return g.builder.Call(f, []ir.Value{l, r}, "binop"), nil
}

func (g *Generator) lowerUnary(e *ast.Unary) (ir.Value, error) {
	operand, err := g.value(e.Operand)
	if err != nil {
		return ir.Value{}, err
	}

	f, err := g.operator("unary"+e.Op, 1)
	if err != nil {
		if e.Op == "-" {
			return g.builder.BinOp(ir.OpSub, ir.Const(0), operand, "negtmp"), nil
		}
		return ir.Value{}, err
	}
	return g.builder.Call(f, []ir.Value{operand}, "unop"), nil
}

// operator resolves the function implementing a user-defined operator.
func (g *Generator) operator(name string, arity int) (*ir.Function, error) {
	f, err := g.lookupFunction(name)
	if err != nil {
		return nil, fmt.Errorf("%w %q", ErrUnknownOperator, name)
	}
	if len(f.Params) != arity {
		return nil, fmt.Errorf("%w: %s takes %d operands, got %d", ErrArity, name, len(f.Params), arity)
	}
	return f, nil
}

// lowerCall passes arguments by value, except for pointer parameters such as
// readln's, which receive the slot of a variable.
func (g *Generator) lowerCall(e *ast.Call) (ir.Value, error) {
	f, err := g.lookupFunction(e.Callee)
	if err != nil {
		return ir.Value{}, err
	}
	if len(f.Params) != len(e.Args) {
		return ir.Value{}, fmt.Errorf("%w: %s takes %d, got %d", ErrArity, e.Callee, len(f.Params), len(e.Args))
	}

	args := make([]ir.Value, 0, len(e.Args))
	for i, a := range e.Args {
		var v ir.Value
		if f.Params[i].Type == ir.Ptr {
			v, err = g.address(a)
		} else {
			v, err = g.value(a)
		}
		if err != nil {
			return ir.Value{}, err
		}
		args = append(args, v)
	}
	return g.builder.Call(f, args, "calltmp"), nil
}
