// Package ast defines the syntax tree of Mila programs.
//
// Expressions form a closed set of node types. Every node exclusively owns
// its children and nodes are never mutated once the parser has built them.
package ast

// Expr is any expression or statement node. Statements are expressions too:
// each one lowers to a value, even if that value is only a placeholder.
type Expr interface {
	Dump() string
	expr()
}

// Item is a top-level declaration produced by the parser.
type Item interface {
	Dump() string
	item()
}

// Number is an integer literal.
type Number struct {
	Value int32
}

// Variable is a reference to a named storage slot. The name is resolved when
// the node is lowered, not when it is parsed.
type Variable struct {
	Name string
}

// Binary applies a binary operator. Assignment is the operator ":=" with a
// Variable on the left.
type Binary struct {
	Op    string
	Left  Expr
	Right Expr
}

// Unary applies a user-defined prefix operator.
type Unary struct {
	Op      string
	Operand Expr
}

// Call invokes a function or procedure by name.
type Call struct {
	Callee string
	Args   []Expr
}

// If is a conditional. Else is nil when HasElse is false.
type If struct {
	Cond    Expr
	Then    []Expr
	Else    Expr
	HasElse bool
}

// For is a counted loop. Step is nil when the source gives none.
type For struct {
	Var        string
	Start      Expr
	End        Expr
	Step       Expr
	Body       []Expr
	Descending bool // downto rather than to.
}

// While loops for as long as Cond is non-zero.
type While struct {
	Cond Expr
	Body []Expr
}

// Exit returns from the enclosing function.
type Exit struct{}

// Decl is one name introduced by a var or const section. Init may be nil.
type Decl struct {
	Name string
	Init Expr
}

// Var declares mutable variables.
type Var struct {
	Decls []Decl
}

// Const declares named constants.
type Const struct {
	Decls []Decl
}

func (*Number) expr()   {}
func (*Variable) expr() {}
func (*Binary) expr()   {}
func (*Unary) expr()    {}
func (*Call) expr()     {}
func (*If) expr()       {}
func (*For) expr()      {}
func (*While) expr()    {}
func (*Exit) expr()     {}
func (*Var) expr()      {}
func (*Const) expr()    {}

// Prototype is the signature of a function or procedure.
type Prototype struct {
	Name        string
	Params      []string
	IsProcedure bool // Procedures return no value.
	IsOperator  bool
	Precedence  int // Only meaningful for binary operators.
}

// IsUnary reports whether the prototype defines a prefix operator.
func (p *Prototype) IsUnary() bool { return p.IsOperator && len(p.Params) == 1 }

// IsBinary reports whether the prototype defines a binary operator.
func (p *Prototype) IsBinary() bool { return p.IsOperator && len(p.Params) == 2 }

// OperatorName returns the operator character of an operator prototype,
// i.e. the last character of "binary%" or "unary!".
func (p *Prototype) OperatorName() string {
	if p.Name == "" {
		return ""
	}
	return p.Name[len(p.Name)-1:]
}

// Function is a complete definition: a prototype and its body.
// Only the value of the last body expression is returned.
type Function struct {
	Proto *Prototype
	Body  []Expr
	Main  bool // Synthetic main wrapping top-level statements.
}

func (*Function) item()  {}
func (*Prototype) item() {}
func (*Var) item()       {}
func (*Const) item()     {}
