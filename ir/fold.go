package ir

import "errors"

// ErrDivisionByZero is returned when evaluating a division or remainder by zero.
var ErrDivisionByZero = errors.New("division by zero")

// Eval applies a binary operation with 32-bit wrap-around semantics.
func Eval(op BinOpKind, l, r int32) (int32, error) {
	switch op {
	case OpAdd:
		return l + r, nil
	case OpSub:
		return l - r, nil
	case OpMul:
		return l * r, nil
	case OpSDiv:
		if r == 0 {
			return 0, ErrDivisionByZero
		}
		return l / r, nil
	case OpSRem:
		if r == 0 {
			return 0, ErrDivisionByZero
		}
		return l % r, nil
	}
	return 0, errors.New("unknown binary operation " + op.String())
}

// Compare evaluates a signed comparison.
func Compare(pred CmpPred, l, r int32) bool {
	switch pred {
	case CmpEQ:
		return l == r
	case CmpNE:
		return l != r
	case CmpSLT:
		return l < r
	case CmpSLE:
		return l <= r
	case CmpSGT:
		return l > r
	case CmpSGE:
		return l >= r
	}
	return false
}
