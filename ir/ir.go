// Package ir defines the register/basic-block intermediate representation
// the code generator lowers Mila programs into.
//
// Values refer to registers, parameters and globals by name and blocks refer
// to each other by label, so a Module is a plain tree of data that a Backend
// can walk, print or execute.
package ir

import (
	"slices"
	"strconv"
)

// Type is the type of a value. The language itself only has 32-bit signed
// integers; i1 and ptr exist for comparisons and storage slots.
type Type int

const (
	Void Type = iota
	I1
	I32
	Ptr
)

func (t Type) String() string {
	switch t {
	case I1:
		return "i1"
	case I32:
		return "i32"
	case Ptr:
		return "ptr"
	default:
		return "void"
	}
}

// ValueKind classifies the value category.
type ValueKind int

const (
	ValInvalid ValueKind = iota // No value, e.g. the result of a void call.
	ValConst
	ValReg
	ValParam
	ValGlobal
)

// Value is an operand: a constant, or a reference by name to an instruction
// result, a parameter or a global.
type Value struct {
	Kind  ValueKind
	Type  Type
	Const int32
	Name  string
}

// Const returns an i32 constant.
func Const(v int32) Value {
	return Value{Kind: ValConst, Type: I32, Const: v}
}

// Bool returns an i1 constant.
func Bool(b bool) Value {
	v := Value{Kind: ValConst, Type: I1}
	if b {
		v.Const = 1
	}
	return v
}

// IsValid reports whether v holds a value.
func (v Value) IsValid() bool { return v.Kind != ValInvalid }

// IsConst reports whether v is a constant.
func (v Value) IsConst() bool { return v.Kind == ValConst }

func (v Value) String() string {
	switch v.Kind {
	case ValConst:
		return strconv.Itoa(int(v.Const))
	case ValReg, ValParam:
		return "%" + v.Name
	case ValGlobal:
		return "@" + v.Name
	default:
		return "<none>"
	}
}

// typed renders the value with its type, e.g. "i32 %x".
func (v Value) typed() string {
	return v.Type.String() + " " + v.String()
}

// Global is a module-level i32 variable or constant.
type Global struct {
	Name     string
	Init     int32
	Constant bool
}

// Value returns the address of the global.
func (g *Global) Value() Value {
	return Value{Kind: ValGlobal, Type: Ptr, Name: g.Name}
}

// Module is a compilation unit: globals and functions.
type Module struct {
	Name      string
	Globals   []*Global
	Functions []*Function
}

// NewModule creates an empty module.
func NewModule(name string) *Module {
	return &Module{Name: name}
}

// Function returns the function with the given name, or nil.
func (m *Module) Function(name string) *Function {
	for _, f := range m.Functions {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// AddFunction declares a function without a body. It is turned into a
// definition by appending blocks to it.
func (m *Module) AddFunction(name string, params []Param, ret Type) *Function {
	f := &Function{
		Name:   name,
		Params: slices.Clone(params),
		Ret:    ret,
	}
	m.Functions = append(m.Functions, f)
	return f
}

// RemoveFunction deletes f from the module.
func (m *Module) RemoveFunction(f *Function) {
	m.Functions = slices.DeleteFunc(m.Functions, func(other *Function) bool { return other == f })
}

// Global returns the global with the given name, or nil.
func (m *Module) Global(name string) *Global {
	for _, g := range m.Globals {
		if g.Name == name {
			return g
		}
	}
	return nil
}

// AddGlobal returns the global with the given name, inserting it when it
// doesn't exist yet. The initializer and constness are (re)set either way.
func (m *Module) AddGlobal(name string, init int32, constant bool) *Global {
	g := m.Global(name)
	if g == nil {
		g = &Global{Name: name}
		m.Globals = append(m.Globals, g)
	}
	g.Init = init
	g.Constant = constant
	return g
}

// Param is a function parameter.
type Param struct {
	Name string
	Type Type
}

// Function is a collection of basic blocks. A function without blocks is a
// declaration, resolved externally or defined later.
type Function struct {
	Name   string
	Params []Param
	Ret    Type
	Blocks []*BasicBlock

	names    map[string]bool // Register and block names in use.
	counters map[string]int  // Next suffix per base name.
}

// IsDeclaration reports whether the function has no body.
func (f *Function) IsDeclaration() bool { return len(f.Blocks) == 0 }

// Param returns the value of the i-th parameter.
func (f *Function) Param(i int) Value {
	return Value{Kind: ValParam, Type: f.Params[i].Type, Name: f.Params[i].Name}
}

// Entry returns the entry block, or nil for a declaration.
func (f *Function) Entry() *BasicBlock {
	if len(f.Blocks) == 0 {
		return nil
	}
	return f.Blocks[0]
}

// Block returns the block with the given label, or nil.
func (f *Function) Block(label string) *BasicBlock {
	for _, b := range f.Blocks {
		if b.Label == label {
			return b
		}
	}
	return nil
}

// Last returns the last block in layout order, or nil.
func (f *Function) Last() *BasicBlock {
	if len(f.Blocks) == 0 {
		return nil
	}
	return f.Blocks[len(f.Blocks)-1]
}

// NewBlock creates a block with a unique label and appends it.
func (f *Function) NewBlock(name string) *BasicBlock {
	b := f.CreateBlock(name)
	f.Append(b)
	return b
}

// CreateBlock creates a block with a unique label without inserting it in
// the layout. Branches may target it before it is appended.
func (f *Function) CreateBlock(name string) *BasicBlock {
	return &BasicBlock{Label: f.uniqueName(name), fn: f}
}

// Append adds b at the end of the layout.
func (f *Function) Append(b *BasicBlock) {
	b.fn = f
	f.Blocks = append(f.Blocks, b)
}

// Reset drops the body, turning the function back into a declaration.
func (f *Function) Reset() {
	f.Blocks = nil
	f.names = nil
	f.counters = nil
}

func (f *Function) uniqueName(base string) string {
	if f.names == nil {
		f.names = make(map[string]bool)
		f.counters = make(map[string]int)
		for _, p := range f.Params {
			f.names[p.Name] = true
		}
	}
	if base == "" {
		base = "tmp"
	}
	if !f.names[base] {
		f.names[base] = true
		return base
	}
	for {
		f.counters[base]++
		name := base + strconv.Itoa(f.counters[base])
		if !f.names[name] {
			f.names[name] = true
			return name
		}
	}
}

// Snapshot records the body of a function so that a failed lowering can be
// undone with Restore.
type Snapshot struct {
	blocks []*BasicBlock
	instrs [][]Instr
}

// Snapshot captures the current body.
func (f *Function) Snapshot() Snapshot {
	s := Snapshot{blocks: slices.Clone(f.Blocks)}
	for _, b := range f.Blocks {
		s.instrs = append(s.instrs, slices.Clone(b.Instrs))
	}
	return s
}

// Restore puts back the body captured by s.
func (f *Function) Restore(s Snapshot) {
	f.Blocks = slices.Clone(s.blocks)
	for i, b := range f.Blocks {
		b.Instrs = slices.Clone(s.instrs[i])
	}
}

// BasicBlock is a sequence of instructions ending with exactly one terminator.
type BasicBlock struct {
	Label  string
	Instrs []Instr

	fn *Function
}

// Function returns the function owning the block.
func (b *BasicBlock) Function() *Function { return b.fn }

// Terminator returns the final instruction if it is a terminator.
func (b *BasicBlock) Terminator() Instr {
	if len(b.Instrs) == 0 {
		return nil
	}
	if last := b.Instrs[len(b.Instrs)-1]; IsTerminator(last) {
		return last
	}
	return nil
}

// Terminated reports whether the block already ends with a terminator.
func (b *BasicBlock) Terminated() bool { return b.Terminator() != nil }

// Successors returns the labels the block branches to.
func (b *BasicBlock) Successors() []string {
	switch t := b.Terminator().(type) {
	case Br:
		return []string{t.Target}
	case CondBr:
		if t.True == t.False {
			return []string{t.True}
		}
		return []string{t.True, t.False}
	}
	return nil
}
