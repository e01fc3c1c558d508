// Package backend defines what consumes a finished ir.Module and provides
// two implementations: a textual IR emitter and an interpreter.
package backend

import "go.creack.net/milac/ir"

// Backend consumes a verified module.
type Backend interface {
	Emit(m *ir.Module) error
}

var (
	_ Backend = (*Text)(nil)
	_ Backend = (*Interpreter)(nil)
)
