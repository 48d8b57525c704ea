package xlcalc

import (
	"errors"
	"math"
)

// storeView is the read-only surface the evaluator needs. The concrete
// store satisfies it; tests can substitute fixtures.
type storeView interface {
	get(ref CellRef) Value
	resolveRange(r RangeRef) []Value
}

// evalExpr reduces an expression to a value against the given view
// and registry. It never fails: every problem becomes an error value
// that is stored and propagated like any other result.
//
// Dependencies are read by plain get; the scheduler's topological
// order guarantees they are already up to date when this runs.
func evalExpr(e Expr, view storeView, reg Registry) Value {
	switch n := e.(type) {
	case *NumberLit:
		return Number(n.Value)
	case *StringLit:
		return Text(n.Value)
	case *BoolLit:
		return Bool(n.Value)
	case *RefExpr:
		return view.get(n.Ref)
	case *RangeExpr:
		// A bare range in scalar context has no single value.
		return ErrorValue(ErrValue)
	case *UnaryExpr:
		return evalUnary(n, view, reg)
	case *BinaryExpr:
		return evalBinary(n, view, reg)
	case *CallExpr:
		return evalCall(n, view, reg)
	}
	return ErrorValue(ErrValue)
}

func evalUnary(n *UnaryExpr, view storeView, reg Registry) Value {
	v := evalExpr(n.Operand, view, reg)
	if v.IsError() {
		return v
	}
	num, ok := v.AsNumber()
	if !ok {
		return ErrorValue(ErrValue)
	}
	if n.Negate {
		return Number(-num)
	}
	return Number(num)
}

func evalBinary(n *BinaryExpr, view storeView, reg Registry) Value {
	left := evalExpr(n.Left, view, reg)
	right := evalExpr(n.Right, view, reg)

	// Operators never swallow error operands.
	if left.IsError() {
		return left
	}
	if right.IsError() {
		return right
	}

	switch n.Op {
	case OpAdd, OpSub, OpMul, OpDiv, OpPow:
		a, okA := left.AsNumber()
		b, okB := right.AsNumber()
		if !okA || !okB {
			return ErrorValue(ErrValue)
		}
		switch n.Op {
		case OpAdd:
			return Number(a + b)
		case OpSub:
			return Number(a - b)
		case OpMul:
			return Number(a * b)
		case OpDiv:
			if b == 0 {
				return ErrorValue(ErrDiv0)
			}
			return Number(a / b)
		case OpPow:
			return Number(math.Pow(a, b))
		}

	case OpConcat:
		return Text(left.AsText() + right.AsText())

	case OpEq, OpNe, OpLt, OpLe, OpGt, OpGe:
		cmp, comparable := compareValues(left, right)
		if !comparable {
			// Mismatched kinds are simply unequal; ordering them is
			// meaningless and yields #VALUE!.
			switch n.Op {
			case OpEq:
				return Bool(false)
			case OpNe:
				return Bool(true)
			}
			return ErrorValue(ErrValue)
		}
		switch n.Op {
		case OpEq:
			return Bool(cmp == 0)
		case OpNe:
			return Bool(cmp != 0)
		case OpLt:
			return Bool(cmp < 0)
		case OpLe:
			return Bool(cmp <= 0)
		case OpGt:
			return Bool(cmp > 0)
		case OpGe:
			return Bool(cmp >= 0)
		}
	}
	return ErrorValue(ErrValue)
}

func evalCall(n *CallExpr, view storeView, reg Registry) Value {
	fn, ok := reg.Lookup(n.Name)
	if !ok {
		return ErrorValue(ErrName)
	}

	// Ranges expand to their cell values in row-major order; other
	// arguments evaluate to single values. Error arguments are passed
	// through so functions like ISERROR can inspect them.
	var args []Value
	for _, argExpr := range n.Args {
		if r, isRange := argExpr.(*RangeExpr); isRange {
			args = append(args, view.resolveRange(r.Range)...)
			continue
		}
		args = append(args, evalExpr(argExpr, view, reg))
	}

	result, err := fn(args)
	if err != nil {
		var opErr *OperationError
		if errors.As(err, &opErr) {
			return ErrorValue(opErr.Kind)
		}
		return ErrorValue(ErrValue)
	}
	return result
}
