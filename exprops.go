package xlcalc

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// RegisterExpr compiles an expr-lang source once and registers the
// resulting program as an operation. The program runs with an `args`
// variable holding the evaluated arguments (numbers as float64, text
// as string, booleans as bool, empty cells as nil) and must yield a
// number, string, or boolean.
//
//	reg.RegisterExpr("TRIPLE", "args[0] * 3")
//	reg.RegisterExpr("CLAMP", "min(max(args[0], args[1]), args[2])")
//
// Error values among the arguments propagate without running the
// program, the same as for built-in arithmetic.
func (r *FuncRegistry) RegisterExpr(name, src string) error {
	program, err := expr.Compile(src, expr.AllowUndefinedVariables())
	if err != nil {
		return fmt.Errorf("compile operation %s: %w", name, err)
	}
	r.Register(name, exprFn(name, program))
	return nil
}

func exprFn(name string, program *vm.Program) Fn {
	return func(args []Value) (Value, error) {
		if errv, ok := firstError(args); ok {
			return errv, nil
		}
		env := map[string]any{"args": valuesToAny(args)}
		out, err := expr.Run(program, env)
		if err != nil {
			return Empty, NewOperationError(name, ErrValue, err.Error())
		}
		v, ok := anyToValue(out)
		if !ok {
			return Empty, NewOperationError(name, ErrValue,
				fmt.Sprintf("operation returned unsupported type %T", out))
		}
		return v, nil
	}
}

func valuesToAny(args []Value) []any {
	out := make([]any, len(args))
	for i, a := range args {
		switch a.Kind() {
		case KindNumber:
			out[i] = a.Num()
		case KindText:
			out[i] = a.Str()
		case KindBool:
			out[i] = a.BoolVal()
		default:
			out[i] = nil
		}
	}
	return out
}

func anyToValue(v any) (Value, bool) {
	switch x := v.(type) {
	case nil:
		return Empty, true
	case float64:
		return Number(x), true
	case float32:
		return Number(float64(x)), true
	case int:
		return Number(float64(x)), true
	case int64:
		return Number(float64(x)), true
	case uint64:
		return Number(float64(x)), true
	case string:
		return Text(x), true
	case bool:
		return Bool(x), true
	}
	return Empty, false
}
