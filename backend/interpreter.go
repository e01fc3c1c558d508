package backend

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"go.creack.net/milac/ir"
)

// Interpreter limits used when the corresponding field is zero.
const (
	DefaultMaxSteps = 10_000_000
	DefaultMaxDepth = 10_000
)

// Run time failures.
var (
	ErrNoMain            = errors.New("module has no main function")
	ErrStepLimit         = errors.New("step limit exceeded")
	ErrDepthLimit        = errors.New("call depth limit exceeded")
	ErrUndefinedExternal = errors.New("call to undefined external function")
	ErrUnknownBlock      = errors.New("branch to unknown block")
)

// Interpreter executes the main function of a module. The intrinsics
// writeln and readln are bound to Stdout and Stdin.
type Interpreter struct {
	Stdin    io.Reader // Defaults to os.Stdin.
	Stdout   io.Writer // Defaults to os.Stdout.
	MaxSteps int       // Instructions executed before giving up.
	MaxDepth int       // Nested calls before giving up.

	// ExitCode is the value main returned during the last Emit.
	ExitCode int32
}

// Emit implements Backend by running the module.
func (in *Interpreter) Emit(m *ir.Module) error {
	code, err := in.Run(m)
	in.ExitCode = code
	return err
}

// Run executes main and returns its result.
func (in *Interpreter) Run(m *ir.Module) (int32, error) {
	entry := m.Function("main")
	if entry == nil || entry.IsDeclaration() {
		return 0, ErrNoMain
	}

	mc := newMachine(in, m)
	ret, err := mc.call(entry, nil, 0)
	if ferr := mc.stdout.Flush(); err == nil && ferr != nil {
		err = fmt.Errorf("flush stdout: %w", ferr)
	}
	return ret.i, err
}

// word is a run time value: an i32, or the address of a storage slot.
type word struct {
	i int32
	p *int32
}

type machine struct {
	module  *ir.Module
	globals map[string]*int32
	blocks  map[*ir.Function]map[string]*ir.BasicBlock

	stdin  *bufio.Reader
	stdout *bufio.Writer

	steps    int
	maxSteps int
	maxDepth int
}

func newMachine(in *Interpreter, m *ir.Module) *machine {
	stdin, stdout := in.Stdin, in.Stdout
	if stdin == nil {
		stdin = os.Stdin
	}
	if stdout == nil {
		stdout = os.Stdout
	}
	mc := &machine{
		module:   m,
		globals:  make(map[string]*int32, len(m.Globals)),
		blocks:   map[*ir.Function]map[string]*ir.BasicBlock{},
		stdin:    bufio.NewReader(stdin),
		stdout:   bufio.NewWriter(stdout),
		maxSteps: in.MaxSteps,
		maxDepth: in.MaxDepth,
	}
	if mc.maxSteps <= 0 {
		mc.maxSteps = DefaultMaxSteps
	}
	if mc.maxDepth <= 0 {
		mc.maxDepth = DefaultMaxDepth
	}
	for _, g := range m.Globals {
		v := g.Init
		mc.globals[g.Name] = &v
	}
	return mc
}

// frame holds the registers and parameters of one activation.
type frame struct {
	fn   *ir.Function
	regs map[string]word
}

func (mc *machine) block(f *ir.Function, label string) (*ir.BasicBlock, error) {
	labels, ok := mc.blocks[f]
	if !ok {
		labels = make(map[string]*ir.BasicBlock, len(f.Blocks))
		for _, b := range f.Blocks {
			labels[b.Label] = b
		}
		mc.blocks[f] = labels
	}
	b, ok := labels[label]
	if !ok {
		return nil, fmt.Errorf("%w %%%s in @%s", ErrUnknownBlock, label, f.Name)
	}
	return b, nil
}

func (mc *machine) call(f *ir.Function, args []word, depth int) (word, error) {
	if depth >= mc.maxDepth {
		return word{}, fmt.Errorf("@%s: %w", f.Name, ErrDepthLimit)
	}
	if f.IsDeclaration() {
		fn, ok := intrinsics[f.Name]
		if !ok {
			return word{}, fmt.Errorf("%w @%s", ErrUndefinedExternal, f.Name)
		}
		return fn(mc, args)
	}

	fr := &frame{fn: f, regs: make(map[string]word, len(f.Params))}
	for i, p := range f.Params {
		fr.regs[p.Name] = args[i]
	}

	cur, prev := f.Entry(), ""
	for {
		next, ret, done, err := mc.run(fr, cur, prev, depth)
		if err != nil {
			return word{}, fmt.Errorf("@%s: %w", f.Name, err)
		}
		if done {
			return ret, nil
		}
		prev = cur.Label
		if cur, err = mc.block(f, next); err != nil {
			return word{}, err
		}
	}
}

// run executes one block. It returns the label of the successor, or done and
// the returned value when the block ends with a ret.
func (mc *machine) run(fr *frame, b *ir.BasicBlock, prev string, depth int) (next string, ret word, done bool, err error) {
	for _, instr := range b.Instrs {
		mc.steps++
		if mc.steps > mc.maxSteps {
			return "", word{}, false, ErrStepLimit
		}

		switch i := instr.(type) {
		case ir.Alloca:
			fr.regs[i.Dst] = word{p: new(int32)}
		case ir.Load:
			fr.regs[i.Dst] = word{i: *mc.value(fr, i.Addr).p}
		case ir.Store:
			*mc.value(fr, i.Addr).p = mc.value(fr, i.Val).i
		case ir.BinOp:
			v, err := ir.Eval(i.Op, mc.value(fr, i.LHS).i, mc.value(fr, i.RHS).i)
			if err != nil {
				return "", word{}, false, err
			}
			fr.regs[i.Dst] = word{i: v}
		case ir.Cmp:
			var v int32
			if ir.Compare(i.Pred, mc.value(fr, i.LHS).i, mc.value(fr, i.RHS).i) {
				v = 1
			}
			fr.regs[i.Dst] = word{i: v}
		case ir.ZExt:
			fr.regs[i.Dst] = word{i: mc.value(fr, i.Src).i}
		case ir.Phi:
			v, err := mc.phi(fr, i, prev)
			if err != nil {
				return "", word{}, false, err
			}
			fr.regs[i.Dst] = v
		case ir.Call:
			callee := mc.module.Function(i.Callee)
			if callee == nil {
				return "", word{}, false, fmt.Errorf("%w @%s", ErrUndefinedExternal, i.Callee)
			}
			args := make([]word, 0, len(i.Args))
			for _, a := range i.Args {
				args = append(args, mc.value(fr, a))
			}
			v, err := mc.call(callee, args, depth+1)
			if err != nil {
				return "", word{}, false, err
			}
			if i.Dst != "" {
				fr.regs[i.Dst] = v
			}
		case ir.Br:
			return i.Target, word{}, false, nil
		case ir.CondBr:
			if mc.value(fr, i.Cond).i != 0 {
				return i.True, word{}, false, nil
			}
			return i.False, word{}, false, nil
		case ir.Ret:
			if i.Val != nil {
				ret = mc.value(fr, *i.Val)
			}
			return "", ret, true, nil
		default:
			panic(fmt.Errorf("unsupported instruction type %T", instr))
		}
	}
	return "", word{}, false, fmt.Errorf("block %%%s falls through", b.Label)
}

func (mc *machine) phi(fr *frame, phi ir.Phi, prev string) (word, error) {
	for _, in := range phi.Incoming {
		if in.Block == prev {
			return mc.value(fr, in.Val), nil
		}
	}
	return word{}, fmt.Errorf("phi %%%s has no value for predecessor %%%s", phi.Dst, prev)
}

// value reads an operand. Verified modules only reference defined registers.
func (mc *machine) value(fr *frame, v ir.Value) word {
	switch v.Kind {
	case ir.ValConst:
		return word{i: v.Const}
	case ir.ValReg, ir.ValParam:
		return fr.regs[v.Name]
	case ir.ValGlobal:
		return word{p: mc.globals[v.Name]}
	default:
		panic(fmt.Errorf("unsupported value kind %d", v.Kind))
	}
}

type intrinsic func(mc *machine, args []word) (word, error)

var intrinsics = map[string]intrinsic{
	"writeln": writeln,
	"readln":  readln,
}

// writeln prints its argument on its own line and returns 0.
func writeln(mc *machine, args []word) (word, error) {
	if _, err := fmt.Fprintln(mc.stdout, args[0].i); err != nil {
		return word{}, fmt.Errorf("writeln: %w", err)
	}
	return word{}, nil
}

// readln stores the next integer of the input into the given slot and
// returns 0.
func readln(mc *machine, args []word) (word, error) {
	// Prompts written so far must be visible before blocking on input.
	if err := mc.stdout.Flush(); err != nil {
		return word{}, fmt.Errorf("readln: %w", err)
	}
	var n int32
	if _, err := fmt.Fscan(mc.stdin, &n); err != nil {
		return word{}, fmt.Errorf("readln: %w", err)
	}
	*args[0].p = n
	return word{}, nil
}
