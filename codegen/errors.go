package codegen

import (
	"errors"
	"fmt"
)

// Lowering failures. They are wrapped with the offending name and returned
// inside an *Error.
var (
	ErrUndeclaredVariable = errors.New("undeclared variable name")
	ErrUndeclaredFunction = errors.New("undeclared function reference")
	ErrConstantAssignment = errors.New("assignment to a constant")
	ErrInvalidAssignment  = errors.New("assignment target must be a variable")
	ErrArity              = errors.New("invalid number of arguments")
	ErrUnknownOperator    = errors.New("unknown operator")
	ErrNotConstant        = errors.New("initializer is not a constant")
	ErrVoidValue          = errors.New("expression has no value")
	ErrRedefinition       = errors.New("function already defined")
	ErrSignatureMismatch  = errors.New("definition does not match declaration")
)

// Error reports the failed lowering of one top-level item. The partially
// generated function, if any, has been discarded.
type Error struct {
	Func string // Function being lowered, "main" for top-level statements, empty for globals.
	Err  error
}

func (e *Error) Error() string {
	if e.Func == "" {
		return fmt.Sprintf("global: %s", e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Func, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
