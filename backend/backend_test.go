package backend_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.creack.net/milac/backend"
	"go.creack.net/milac/ir"
)

// newModule returns a module declaring the intrinsics, and a builder
// positioned in the entry block of an empty main.
func newModule(t *testing.T) (*ir.Module, *ir.Builder) {
	t.Helper()
	m := ir.NewModule("test")
	m.AddFunction("writeln", []ir.Param{{Name: "x", Type: ir.I32}}, ir.I32)
	m.AddFunction("readln", []ir.Param{{Name: "x", Type: ir.Ptr}}, ir.I32)
	main := m.AddFunction("main", nil, ir.I32)
	b := ir.NewBuilder()
	b.SetInsertPoint(main.NewBlock("entry"))
	return m, b
}

func TestInterpreterLoop(t *testing.T) {
	m, b := newModule(t)
	f := b.Function()
	writeln := m.Function("writeln")

	// for i := 1 to 3 do writeln(i * i)
	i := b.Alloca("i")
	b.Store(ir.Const(1), i)
	cond := f.NewBlock("loopcond")
	b.Br(cond)
	b.SetInsertPoint(cond)
	body, after := f.CreateBlock("loop"), f.CreateBlock("afterloop")
	b.CondBr(b.Cmp(ir.CmpSLE, b.Load(i, "i"), ir.Const(3), "forcond"), body, after)
	f.Append(body)
	b.SetInsertPoint(body)
	cur := b.Load(i, "i")
	b.Call(writeln, []ir.Value{b.BinOp(ir.OpMul, cur, cur, "multmp")}, "calltmp")
	b.Store(b.BinOp(ir.OpAdd, b.Load(i, "i"), ir.Const(1), "nextvar"), i)
	b.Br(cond)
	f.Append(after)
	b.SetInsertPoint(after)
	b.Ret(b.Load(i, "i"))
	require.NoError(t, ir.Verify(m))

	var out bytes.Buffer
	in := &backend.Interpreter{Stdout: &out}
	require.NoError(t, in.Emit(m))
	assert.Equal(t, "1\n4\n9\n", out.String())
	assert.Equal(t, int32(4), in.ExitCode)
}

func TestInterpreterReadln(t *testing.T) {
	m, b := newModule(t)
	x := m.AddGlobal("x", 0, false).Value()
	b.Call(m.Function("readln"), []ir.Value{x}, "calltmp")
	b.Call(m.Function("readln"), []ir.Value{x}, "calltmp")
	b.Ret(b.BinOp(ir.OpAdd, b.Load(x, "x"), ir.Const(1), "addtmp"))
	require.NoError(t, ir.Verify(m))

	in := &backend.Interpreter{Stdin: strings.NewReader("12\n -41 "), Stdout: &bytes.Buffer{}}
	code, err := in.Run(m)
	require.NoError(t, err)
	assert.Equal(t, int32(-40), code)

	in = &backend.Interpreter{Stdin: strings.NewReader("7"), Stdout: &bytes.Buffer{}}
	_, err = in.Run(m)
	assert.ErrorContains(t, err, "readln")
}

func TestInterpreterPhi(t *testing.T) {
	m, b := newModule(t)
	f := b.Function()
	x := m.AddGlobal("x", 5, false).Value()

	then, merge := f.CreateBlock("then"), f.CreateBlock("ifcont")
	entry := b.Block().Label
	b.CondBr(b.Cmp(ir.CmpSGT, b.Load(x, "x"), ir.Const(10), "ifcond"), then, merge)
	f.Append(then)
	b.SetInsertPoint(then)
	b.Br(merge)
	f.Append(merge)
	b.SetInsertPoint(merge)
	b.Ret(b.Phi([]ir.Incoming{{Val: ir.Const(0), Block: entry}, {Val: ir.Const(1), Block: then.Label}}, "iftmp"))
	require.NoError(t, ir.Verify(m))

	code, err := (&backend.Interpreter{Stdout: &bytes.Buffer{}}).Run(m)
	require.NoError(t, err)
	assert.Equal(t, int32(0), code)

	m.Global("x").Init = 11
	code, err = (&backend.Interpreter{Stdout: &bytes.Buffer{}}).Run(m)
	require.NoError(t, err)
	assert.Equal(t, int32(1), code)
}

func TestInterpreterErrors(t *testing.T) {
	t.Run("division by zero", func(t *testing.T) {
		m, b := newModule(t)
		x := m.AddGlobal("x", 0, false).Value()
		b.Ret(b.BinOp(ir.OpSDiv, ir.Const(1), b.Load(x, "x"), "sdivtmp"))

		_, err := (&backend.Interpreter{}).Run(m)
		assert.ErrorIs(t, err, ir.ErrDivisionByZero)
	})

	t.Run("step limit", func(t *testing.T) {
		m, b := newModule(t)
		loop := b.Function().NewBlock("loop")
		b.Br(loop)
		b.SetInsertPoint(loop)
		b.Br(loop)

		_, err := (&backend.Interpreter{MaxSteps: 100}).Run(m)
		assert.ErrorIs(t, err, backend.ErrStepLimit)
	})

	t.Run("depth limit", func(t *testing.T) {
		m, b := newModule(t)
		rec := m.AddFunction("rec", nil, ir.I32)
		main := b.Function()
		b.SetInsertPoint(rec.NewBlock("entry"))
		b.Ret(b.Call(rec, nil, "calltmp"))
		b.SetInsertPoint(main.Entry())
		b.Ret(b.Call(rec, nil, "calltmp"))

		_, err := (&backend.Interpreter{MaxDepth: 50}).Run(m)
		assert.ErrorIs(t, err, backend.ErrDepthLimit)
	})

	t.Run("undefined external", func(t *testing.T) {
		m, b := newModule(t)
		ext := m.AddFunction("ext", nil, ir.I32)
		b.Ret(b.Call(ext, nil, "calltmp"))

		_, err := (&backend.Interpreter{}).Run(m)
		assert.ErrorIs(t, err, backend.ErrUndefinedExternal)
	})

	t.Run("no main", func(t *testing.T) {
		_, err := (&backend.Interpreter{}).Run(ir.NewModule("empty"))
		assert.ErrorIs(t, err, backend.ErrNoMain)
	})
}

func TestTextCleanup(t *testing.T) {
	m, b := newModule(t)
	b.Ret(ir.Const(0))
	dead := b.Function().NewBlock("afterexit")
	b.SetInsertPoint(dead)
	b.Ret(ir.Const(1))

	var out bytes.Buffer
	require.NoError(t, (&backend.Text{W: &out}).Emit(m))
	assert.Contains(t, out.String(), "afterexit:")

	out.Reset()
	require.NoError(t, (&backend.Text{W: &out, Cleanup: true}).Emit(m))
	assert.NotContains(t, out.String(), "afterexit:")
	assert.Contains(t, out.String(), "define i32 @main() {\nentry:\n  ret i32 0\n}")
}
