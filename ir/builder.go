package ir

import (
	"fmt"
	"slices"
)

// Builder appends instructions at the end of an insertion block.
//
// Arithmetic, comparisons and widening on constant operands are folded into
// constants instead of being emitted.
type Builder struct {
	block *BasicBlock
}

// NewBuilder returns a builder without an insertion point.
func NewBuilder() *Builder { return &Builder{} }

// SetInsertPoint makes b the block subsequent instructions are appended to.
func (b *Builder) SetInsertPoint(block *BasicBlock) { b.block = block }

// Block returns the current insertion block.
func (b *Builder) Block() *BasicBlock { return b.block }

// Function returns the function of the current insertion block.
func (b *Builder) Function() *Function {
	if b.block == nil {
		return nil
	}
	return b.block.fn
}

func (b *Builder) emit(i Instr) {
	if b.block == nil {
		panic(fmt.Errorf("ir builder: no insertion point for %q", i))
	}
	b.block.Instrs = append(b.block.Instrs, i)
}

func (b *Builder) reg(name string, t Type) Value {
	return Value{Kind: ValReg, Type: t, Name: b.block.fn.uniqueName(name)}
}

// Alloca creates a storage slot in the entry block of the current function,
// after any slots already there, so every slot dominates its uses.
func (b *Builder) Alloca(name string) Value {
	fn := b.Function()
	v := b.reg(name, Ptr)
	entry := fn.Entry()
	pos := 0
	for pos < len(entry.Instrs) {
		if _, ok := entry.Instrs[pos].(Alloca); !ok {
			break
		}
		pos++
	}
	entry.Instrs = slices.Insert(entry.Instrs, pos, Instr(Alloca{Dst: v.Name}))
	return v
}

// Load reads a slot.
func (b *Builder) Load(addr Value, name string) Value {
	v := b.reg(name, I32)
	b.emit(Load{Dst: v.Name, Addr: addr})
	return v
}

// Store writes val into a slot.
func (b *Builder) Store(val, addr Value) {
	b.emit(Store{Addr: addr, Val: val})
}

// BinOp emits an arithmetic operation. Division by a constant zero is left
// for run time.
func (b *Builder) BinOp(op BinOpKind, lhs, rhs Value, name string) Value {
	if lhs.IsConst() && rhs.IsConst() {
		if c, err := Eval(op, lhs.Const, rhs.Const); err == nil {
			return Const(c)
		}
	}
	v := b.reg(name, I32)
	b.emit(BinOp{Dst: v.Name, Op: op, LHS: lhs, RHS: rhs})
	return v
}

// Cmp emits a comparison yielding an i1.
func (b *Builder) Cmp(pred CmpPred, lhs, rhs Value, name string) Value {
	if lhs.IsConst() && rhs.IsConst() {
		return Bool(Compare(pred, lhs.Const, rhs.Const))
	}
	v := b.reg(name, I1)
	b.emit(Cmp{Dst: v.Name, Pred: pred, LHS: lhs, RHS: rhs})
	return v
}

// ZExt widens an i1 to i32.
func (b *Builder) ZExt(src Value, name string) Value {
	if src.IsConst() {
		return Const(src.Const)
	}
	v := b.reg(name, I32)
	b.emit(ZExt{Dst: v.Name, Src: src})
	return v
}

// Call emits a call. The returned value is invalid when callee returns void.
func (b *Builder) Call(callee *Function, args []Value, name string) Value {
	c := Call{Callee: callee.Name, Args: slices.Clone(args), Ret: callee.Ret}
	var v Value
	if callee.Ret != Void {
		v = b.reg(name, callee.Ret)
		c.Dst = v.Name
	}
	b.emit(c)
	return v
}

// Phi emits a merge node.
func (b *Builder) Phi(incoming []Incoming, name string) Value {
	v := b.reg(name, I32)
	b.emit(Phi{Dst: v.Name, Incoming: slices.Clone(incoming)})
	return v
}

// Br emits an unconditional branch.
func (b *Builder) Br(target *BasicBlock) {
	b.emit(Br{Target: target.Label})
}

// CondBr emits a conditional branch on an i1.
func (b *Builder) CondBr(cond Value, t, f *BasicBlock) {
	b.emit(CondBr{Cond: cond, True: t.Label, False: f.Label})
}

// Ret emits a return of v.
func (b *Builder) Ret(v Value) {
	b.emit(Ret{Val: &v})
}

// RetVoid emits a return without value.
func (b *Builder) RetVoid() {
	b.emit(Ret{})
}
