package interp

import (
	"github.com/pkg/errors"

	"github.com/lhaig/anfc/internal/anf"
)

func unary(p anf.UnPrim, a Value) (Value, error) {
	switch p {
	case anf.Move:
		return a, nil
	case anf.INeg:
		if a.Kind != KindInt {
			return Value{}, operandError(p.String(), a)
		}
		return Int(-a.Int), nil
	case anf.BNot:
		if a.Kind != KindBool {
			return Value{}, operandError(p.String(), a)
		}
		return Bool(!a.Bool), nil
	}
	return Value{}, errors.Errorf("unknown unary primitive %d", int(p))
}

func binary(p anf.BinPrim, a, b Value) (Value, error) {
	switch p {
	case anf.IAdd, anf.ISub, anf.IMul, anf.IDiv, anf.IRem,
		anf.ICmpEq, anf.ICmpNe, anf.ICmpGr, anf.ICmpGe, anf.ICmpLs, anf.ICmpLe:
		if a.Kind != KindInt || b.Kind != KindInt {
			return Value{}, operandError(p.String(), a, b)
		}
		return intOp(p, a.Int, b.Int)

	case anf.RAdd, anf.RSub, anf.RMul, anf.RDiv,
		anf.RCmpEq, anf.RCmpNe, anf.RCmpGr, anf.RCmpGe, anf.RCmpLs, anf.RCmpLe:
		if a.Kind != KindReal || b.Kind != KindReal {
			return Value{}, operandError(p.String(), a, b)
		}
		return realOp(p, a.Real, b.Real), nil

	case anf.BAnd, anf.BOr:
		if a.Kind != KindBool || b.Kind != KindBool {
			return Value{}, operandError(p.String(), a, b)
		}
		if p == anf.BAnd {
			return Bool(a.Bool && b.Bool), nil
		}
		return Bool(a.Bool || b.Bool), nil

	case anf.CCmpEq:
		if a.Kind != KindChar || b.Kind != KindChar {
			return Value{}, operandError(p.String(), a, b)
		}
		return Bool(a.Char == b.Char), nil
	}
	return Value{}, errors.Errorf("unknown binary primitive %d", int(p))
}

func intOp(p anf.BinPrim, a, b int64) (Value, error) {
	switch p {
	case anf.IAdd:
		return Int(a + b), nil
	case anf.ISub:
		return Int(a - b), nil
	case anf.IMul:
		return Int(a * b), nil
	case anf.IDiv, anf.IRem:
		if b == 0 {
			return Value{}, errors.Errorf("%s by zero", p)
		}
		if p == anf.IDiv {
			return Int(a / b), nil
		}
		return Int(a % b), nil
	case anf.ICmpEq:
		return Bool(a == b), nil
	case anf.ICmpNe:
		return Bool(a != b), nil
	case anf.ICmpGr:
		return Bool(a > b), nil
	case anf.ICmpGe:
		return Bool(a >= b), nil
	case anf.ICmpLs:
		return Bool(a < b), nil
	default:
		return Bool(a <= b), nil
	}
}

func realOp(p anf.BinPrim, a, b float64) Value {
	switch p {
	case anf.RAdd:
		return Real(a + b)
	case anf.RSub:
		return Real(a - b)
	case anf.RMul:
		return Real(a * b)
	case anf.RDiv:
		return Real(a / b)
	case anf.RCmpEq:
		return Bool(a == b)
	case anf.RCmpNe:
		return Bool(a != b)
	case anf.RCmpGr:
		return Bool(a > b)
	case anf.RCmpGe:
		return Bool(a >= b)
	case anf.RCmpLs:
		return Bool(a < b)
	default:
		return Bool(a <= b)
	}
}

func operandError(prim string, vals ...Value) error {
	kinds := make([]string, len(vals))
	for i, v := range vals {
		kinds[i] = v.Kind.String()
	}
	return errors.Errorf("%s applied to %v", prim, kinds)
}
