package ir

import (
	"fmt"
	"strings"
)

// Instr is implemented by all instructions.
type Instr interface {
	String() string
	isInstr()
}

// Alloca reserves a mutable i32 storage slot and yields its address.
type Alloca struct {
	Dst string
}

// Load reads the i32 stored at Addr.
type Load struct {
	Dst  string
	Addr Value
}

// Store writes Val to Addr.
type Store struct {
	Addr Value
	Val  Value
}

// BinOpKind enumerates integer arithmetic operations.
type BinOpKind int

const (
	OpAdd BinOpKind = iota
	OpSub
	OpMul
	OpSDiv
	OpSRem
)

var binOpNames = map[BinOpKind]string{
	OpAdd:  "add",
	OpSub:  "sub",
	OpMul:  "mul",
	OpSDiv: "sdiv",
	OpSRem: "srem",
}

func (k BinOpKind) String() string { return binOpNames[k] }

// BinOp is a binary arithmetic operation on i32 values.
type BinOp struct {
	Dst string
	Op  BinOpKind
	LHS Value
	RHS Value
}

// CmpPred is a signed integer comparison predicate.
type CmpPred int

const (
	CmpEQ CmpPred = iota
	CmpNE
	CmpSLT
	CmpSLE
	CmpSGT
	CmpSGE
)

var cmpPredNames = map[CmpPred]string{
	CmpEQ:  "eq",
	CmpNE:  "ne",
	CmpSLT: "slt",
	CmpSLE: "sle",
	CmpSGT: "sgt",
	CmpSGE: "sge",
}

func (p CmpPred) String() string { return cmpPredNames[p] }

// Cmp compares two i32 values and yields an i1.
type Cmp struct {
	Dst  string
	Pred CmpPred
	LHS  Value
	RHS  Value
}

// ZExt widens an i1 to an i32 holding 0 or 1.
type ZExt struct {
	Dst string
	Src Value
}

// Call invokes a function by name. Dst is empty for void callees.
type Call struct {
	Dst    string
	Callee string
	Args   []Value
	Ret    Type
}

// Incoming is one (value, predecessor) pair of a Phi.
type Incoming struct {
	Val   Value
	Block string
}

// Phi selects a value depending on the predecessor block control came from.
type Phi struct {
	Dst      string
	Incoming []Incoming
}

// Br is an unconditional branch.
type Br struct {
	Target string
}

// CondBr branches to True when Cond is non-zero, to False otherwise.
type CondBr struct {
	Cond  Value
	True  string
	False string
}

// Ret returns from the function, with a value unless the function is void.
type Ret struct {
	Val *Value
}

func (Alloca) isInstr() {}
func (Load) isInstr()   {}
func (Store) isInstr()  {}
func (BinOp) isInstr()  {}
func (Cmp) isInstr()    {}
func (ZExt) isInstr()   {}
func (Call) isInstr()   {}
func (Phi) isInstr()    {}
func (Br) isInstr()     {}
func (CondBr) isInstr() {}
func (Ret) isInstr()    {}

// IsTerminator reports whether the instruction ends a basic block.
func IsTerminator(i Instr) bool {
	switch i.(type) {
	case Br, CondBr, Ret:
		return true
	}
	return false
}

// Def returns the register defined by the instruction and its type.
func Def(i Instr) (string, Type, bool) {
	switch i := i.(type) {
	case Alloca:
		return i.Dst, Ptr, true
	case Load:
		return i.Dst, I32, true
	case BinOp:
		return i.Dst, I32, true
	case Cmp:
		return i.Dst, I1, true
	case ZExt:
		return i.Dst, I32, true
	case Call:
		if i.Dst == "" {
			return "", Void, false
		}
		return i.Dst, i.Ret, true
	case Phi:
		return i.Dst, I32, true
	}
	return "", Void, false
}

// Operands returns the values read by the instruction.
func Operands(i Instr) []Value {
	switch i := i.(type) {
	case Load:
		return []Value{i.Addr}
	case Store:
		return []Value{i.Addr, i.Val}
	case BinOp:
		return []Value{i.LHS, i.RHS}
	case Cmp:
		return []Value{i.LHS, i.RHS}
	case ZExt:
		return []Value{i.Src}
	case Call:
		return i.Args
	case Phi:
		out := make([]Value, 0, len(i.Incoming))
		for _, in := range i.Incoming {
			out = append(out, in.Val)
		}
		return out
	case CondBr:
		return []Value{i.Cond}
	case Ret:
		if i.Val != nil {
			return []Value{*i.Val}
		}
	}
	return nil
}

func (a Alloca) String() string { return fmt.Sprintf("%%%s = alloca i32", a.Dst) }
func (l Load) String() string   { return fmt.Sprintf("%%%s = load i32, %s", l.Dst, l.Addr.typed()) }
func (s Store) String() string  { return fmt.Sprintf("store %s, %s", s.Val.typed(), s.Addr.typed()) }

func (b BinOp) String() string {
	return fmt.Sprintf("%%%s = %s i32 %s, %s", b.Dst, b.Op, b.LHS, b.RHS)
}

func (c Cmp) String() string {
	return fmt.Sprintf("%%%s = icmp %s i32 %s, %s", c.Dst, c.Pred, c.LHS, c.RHS)
}

func (z ZExt) String() string { return fmt.Sprintf("%%%s = zext %s to i32", z.Dst, z.Src.typed()) }

func (c Call) String() string {
	var b strings.Builder
	if c.Dst != "" {
		fmt.Fprintf(&b, "%%%s = ", c.Dst)
	}
	fmt.Fprintf(&b, "call %s @%s(", c.Ret, c.Callee)
	for i, a := range c.Args {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(a.typed())
	}
	b.WriteString(")")
	return b.String()
}

func (p Phi) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%%%s = phi i32 ", p.Dst)
	for i, in := range p.Incoming {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "[ %s, %%%s ]", in.Val, in.Block)
	}
	return b.String()
}

func (b Br) String() string { return "br label %" + b.Target }

func (c CondBr) String() string {
	return fmt.Sprintf("br %s, label %%%s, label %%%s", c.Cond.typed(), c.True, c.False)
}

func (r Ret) String() string {
	if r.Val == nil {
		return "ret void"
	}
	return "ret " + r.Val.typed()
}
