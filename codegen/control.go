package codegen

import (
	"go.creack.net/milac/ast"
	"go.creack.net/milac/ir"
)

// condition lowers e and compares it not-equal to zero.
func (g *Generator) condition(e ast.Expr, name string) (ir.Value, error) {
	v, err := g.value(e)
	if err != nil {
		return ir.Value{}, err
	}
	return g.builder.Cmp(ir.CmpNE, v, ir.Const(0), name), nil
}

// lowerStatements lowers a nested statement list in its own scope frame and
// returns the value of the last statement.
func (g *Generator) lowerStatements(stmts []ast.Expr) (ir.Value, error) {
	g.ctx.PushFrame()
	defer g.ctx.PopFrame()

	last := ir.Const(0)
	for _, s := range stmts {
		v, err := g.lowerExpr(s)
		if err != nil {
			return ir.Value{}, err
		}
		last = orZero(v)
	}
	return last, nil
}

// lowerIf yields the value of the branch taken. Without an else branch the
// value is 0 when the condition is false.
func (g *Generator) lowerIf(e *ast.If) (ir.Value, error) {
	cond, err := g.condition(e.Cond, "ifcond")
	if err != nil {
		return ir.Value{}, err
	}

	f := g.builder.Function()
	thenBB := f.NewBlock("then")
	mergeBB := f.CreateBlock("ifcont")
	var elseBB *ir.BasicBlock
	var incoming []ir.Incoming
	if e.HasElse {
		elseBB = f.CreateBlock("else")
		g.builder.CondBr(cond, thenBB, elseBB)
	} else {
		incoming = append(incoming, ir.Incoming{Val: ir.Const(0), Block: g.builder.Block().Label})
		g.builder.CondBr(cond, thenBB, mergeBB)
	}

	g.builder.SetInsertPoint(thenBB)
	thenV, err := g.lowerStatements(e.Then)
	if err != nil {
		return ir.Value{}, err
	}
	incoming = append(incoming, ir.Incoming{Val: thenV, Block: g.builder.Block().Label})
	g.builder.Br(mergeBB)

	if e.HasElse {
		f.Append(elseBB)
		g.builder.SetInsertPoint(elseBB)
		elseV, err := g.lowerStatements([]ast.Expr{e.Else})
		if err != nil {
			return ir.Value{}, err
		}
		incoming = append(incoming, ir.Incoming{Val: elseV, Block: g.builder.Block().Label})
		g.builder.Br(mergeBB)
	}

	f.Append(mergeBB)
	g.builder.SetInsertPoint(mergeBB)
	return g.builder.Phi(incoming, "iftmp"), nil
}

// lowerFor lowers a counted loop. The bounds and the step are evaluated
// once, and the condition is tested before each iteration. The loop also
// stops once the iteration for end has run, so end may be the extreme i32
// value without the update wrapping around:
//
//	loopcond: i <= end (i >= end for downto)
//	loop:     body; i == end ends the loop
//	loopinc:  i = i + step (i - step)
//	afterloop
func (g *Generator) lowerFor(e *ast.For) (ir.Value, error) {
	start, err := g.value(e.Start)
	if err != nil {
		return ir.Value{}, err
	}
	end, err := g.value(e.End)
	if err != nil {
		return ir.Value{}, err
	}
	step := ir.Const(1)
	if e.Step != nil {
		if step, err = g.value(e.Step); err != nil {
			return ir.Value{}, err
		}
	}

	f := g.builder.Function()
	slot := g.builder.Alloca(e.Var)
	g.builder.Store(start, slot)

	condBB := f.NewBlock("loopcond")
	g.builder.Br(condBB)
	g.builder.SetInsertPoint(condBB)

	g.ctx.PushFrame()
	defer g.ctx.PopFrame()
	g.ctx.Bind(e.Var, slot)

	pred, next := ir.CmpSLE, ir.OpAdd
	if e.Descending {
		pred, next = ir.CmpSGE, ir.OpSub
	}
	cur := g.builder.Load(slot, e.Var)
	cond := g.builder.Cmp(pred, cur, end, "forcond")

	bodyBB := f.CreateBlock("loop")
	afterBB := f.CreateBlock("afterloop")
	g.builder.CondBr(cond, bodyBB, afterBB)

	f.Append(bodyBB)
	g.builder.SetInsertPoint(bodyBB)
	if _, err := g.lowerStatements(e.Body); err != nil {
		return ir.Value{}, err
	}
	cur = g.builder.Load(slot, e.Var)
	incBB := f.CreateBlock("loopinc")
	g.builder.CondBr(g.builder.Cmp(ir.CmpEQ, cur, end, "forlast"), afterBB, incBB)

	f.Append(incBB)
	g.builder.SetInsertPoint(incBB)
	g.builder.Store(g.builder.BinOp(next, cur, step, "nextvar"), slot)
	g.builder.Br(condBB)

	f.Append(afterBB)
	g.builder.SetInsertPoint(afterBB)
	return ir.Const(0), nil
}

func (g *Generator) lowerWhile(e *ast.While) (ir.Value, error) {
	f := g.builder.Function()
	condBB := f.NewBlock("whilecond")
	g.builder.Br(condBB)
	g.builder.SetInsertPoint(condBB)

	cond, err := g.condition(e.Cond, "whiletest")
	if err != nil {
		return ir.Value{}, err
	}
	bodyBB := f.CreateBlock("whilebody")
	afterBB := f.CreateBlock("afterwhile")
	g.builder.CondBr(cond, bodyBB, afterBB)

	f.Append(bodyBB)
	g.builder.SetInsertPoint(bodyBB)
	if _, err := g.lowerStatements(e.Body); err != nil {
		return ir.Value{}, err
	}
	g.builder.Br(condBB)

	f.Append(afterBB)
	g.builder.SetInsertPoint(afterBB)
	return ir.Const(0), nil
}

// lowerExit returns from the current function: without a value from a
// procedure, with 0 otherwise. Code following it lands in an unreachable block.
func (g *Generator) lowerExit() (ir.Value, error) {
	if g.proto != nil && g.proto.IsProcedure {
		g.builder.RetVoid()
	} else {
		g.builder.Ret(ir.Const(0))
	}
	g.builder.SetInsertPoint(g.builder.Function().NewBlock("afterexit"))
	return ir.Const(0), nil
}
