package backend

import (
	"fmt"
	"io"

	"go.creack.net/milac/ir"
)

// Text writes the LLVM-like text form of the module.
type Text struct {
	W io.Writer
	// Cleanup drops unreachable blocks, e.g. the ones following an exit,
	// before printing. The module is modified in place.
	Cleanup bool
}

// Emit implements Backend.
func (t *Text) Emit(m *ir.Module) error {
	if t.Cleanup {
		for _, f := range m.Functions {
			if !f.IsDeclaration() {
				ir.RemoveUnreachableBlocks(f)
			}
		}
	}
	if err := m.Print(t.W); err != nil {
		return fmt.Errorf("print module %q: %w", m.Name, err)
	}
	return nil
}
