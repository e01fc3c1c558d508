package ir

import (
	"errors"
	"fmt"
	"slices"
)

// Verify checks the structural well-formedness of the module and returns
// every problem found, joined.
func Verify(m *Module) error {
	var errs []error
	seen := map[string]bool{}
	for _, f := range m.Functions {
		if seen[f.Name] {
			errs = append(errs, fmt.Errorf("function @%s defined twice", f.Name))
		}
		seen[f.Name] = true
		if err := verifyFunction(m, f); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type verifier struct {
	m     *Module
	f     *Function
	regs  map[string]Type
	preds map[string][]string
	errs  []error
}

func (v *verifier) errorf(b *BasicBlock, format string, args ...any) {
	v.errs = append(v.errs, fmt.Errorf("@%s %%%s: %s", v.f.Name, b.Label, fmt.Sprintf(format, args...)))
}

func verifyFunction(m *Module, f *Function) error {
	if f.IsDeclaration() {
		return nil
	}
	v := &verifier{m: m, f: f, regs: map[string]Type{}, preds: map[string][]string{}}

	labels := map[string]bool{}
	for _, b := range f.Blocks {
		if labels[b.Label] {
			v.errorf(b, "duplicate block label")
		}
		labels[b.Label] = true
	}
	for _, p := range f.Params {
		v.regs[p.Name] = p.Type
	}
	for _, b := range f.Blocks {
		for _, s := range b.Successors() {
			if !labels[s] {
				v.errorf(b, "branch to unknown block %%%s", s)
				continue
			}
			v.preds[s] = append(v.preds[s], b.Label)
		}
		for _, in := range b.Instrs {
			name, typ, ok := Def(in)
			if !ok {
				continue
			}
			if _, dup := v.regs[name]; dup {
				v.errorf(b, "register %%%s defined twice", name)
			}
			v.regs[name] = typ
		}
	}

	for _, b := range f.Blocks {
		v.block(b)
	}
	return errors.Join(v.errs...)
}

func (v *verifier) block(b *BasicBlock) {
	if len(b.Instrs) == 0 {
		v.errorf(b, "empty block")
		return
	}
	phis := true
	for i, in := range b.Instrs {
		if IsTerminator(in) != (i == len(b.Instrs)-1) {
			if IsTerminator(in) {
				v.errorf(b, "terminator %q in the middle of the block", in)
			} else {
				v.errorf(b, "block does not end with a terminator")
			}
		}
		for _, op := range Operands(in) {
			v.operand(b, op)
		}
		switch in := in.(type) {
		case Phi:
			if !phis {
				v.errorf(b, "phi %%%s after non-phi instruction", in.Dst)
			}
			v.phi(b, in)
		default:
			phis = false
		}
		switch in := in.(type) {
		case Call:
			v.call(b, in)
		case Ret:
			v.ret(b, in)
		case CondBr:
			if in.Cond.Type != I1 {
				v.errorf(b, "branch condition %s is not i1", in.Cond)
			}
		}
	}
}

func (v *verifier) operand(b *BasicBlock, op Value) {
	switch op.Kind {
	case ValInvalid:
		v.errorf(b, "use of a missing value")
	case ValReg, ValParam:
		if _, ok := v.regs[op.Name]; !ok {
			v.errorf(b, "use of undefined register %%%s", op.Name)
		}
	case ValGlobal:
		if v.m.Global(op.Name) == nil {
			v.errorf(b, "use of undefined global @%s", op.Name)
		}
	}
}

func (v *verifier) phi(b *BasicBlock, phi Phi) {
	preds := v.preds[b.Label]
	for _, in := range phi.Incoming {
		if !slices.Contains(preds, in.Block) {
			v.errorf(b, "phi %%%s: %%%s is not a predecessor", phi.Dst, in.Block)
		}
	}
	for _, p := range preds {
		if !slices.ContainsFunc(phi.Incoming, func(in Incoming) bool { return in.Block == p }) {
			v.errorf(b, "phi %%%s: no value for predecessor %%%s", phi.Dst, p)
		}
	}
}

func (v *verifier) call(b *BasicBlock, c Call) {
	callee := v.m.Function(c.Callee)
	if callee == nil {
		v.errorf(b, "call to undefined function @%s", c.Callee)
		return
	}
	if len(callee.Params) != len(c.Args) {
		v.errorf(b, "call to @%s with %d arguments, want %d", c.Callee, len(c.Args), len(callee.Params))
	}
	if callee.Ret != c.Ret {
		v.errorf(b, "call to @%s expects %s, function returns %s", c.Callee, c.Ret, callee.Ret)
	}
}

func (v *verifier) ret(b *BasicBlock, r Ret) {
	switch {
	case r.Val == nil && v.f.Ret != Void:
		v.errorf(b, "ret void in function returning %s", v.f.Ret)
	case r.Val != nil && v.f.Ret == Void:
		v.errorf(b, "ret %s in void function", r.Val)
	}
}
