package xlcalc

import (
	"math"
	"sort"
	"strings"
	"sync"
)

// Fn is the signature every registered operation satisfies. Arguments
// arrive fully evaluated (ranges are expanded into their cell values
// in row-major order). A returned error becomes an error value in the
// calling cell; it never aborts a recalculation pass.
//
// Registered functions must be synchronous and non-blocking. An
// implementation that performs I/O is a misuse of the contract.
type Fn func(args []Value) (Value, error)

// Registry resolves function names for the evaluator. Built-ins and
// user-registered operations are indistinguishable at call time; a
// name missing from the registry evaluates to #NAME?.
type Registry interface {
	Lookup(name string) (Fn, bool)
}

// FuncRegistry is a mutable, concurrency-safe name→Fn table
// preloaded with the standard built-ins.
type FuncRegistry struct {
	mu  sync.RWMutex
	fns map[string]Fn
}

// NewRegistry creates a FuncRegistry with the built-in operations
// registered.
func NewRegistry() *FuncRegistry {
	r := &FuncRegistry{fns: make(map[string]Fn)}
	registerBuiltins(r)
	return r
}

// Register adds or replaces an operation. Names are case-insensitive.
func (r *FuncRegistry) Register(name string, fn Fn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fns[strings.ToUpper(name)] = fn
}

// Lookup resolves a name to its operation.
func (r *FuncRegistry) Lookup(name string) (Fn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.fns[strings.ToUpper(name)]
	return fn, ok
}

// Names lists the registered operation names, sorted.
func (r *FuncRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.fns))
	for n := range r.fns {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// firstError returns the first error value among args, if any. Most
// built-ins propagate it; predicates like ISERROR opt out.
func firstError(args []Value) (Value, bool) {
	for _, a := range args {
		if a.IsError() {
			return a, true
		}
	}
	return Empty, false
}

// numericArgs coerces args for aggregation: numbers (and numeric
// text, booleans) are collected, Empty cells are skipped. Text that
// is not numeric is skipped too, matching how SUM treats text in a
// range. The bool result is false if an error value was present.
func numericArgs(args []Value) ([]float64, Value, bool) {
	if errv, ok := firstError(args); ok {
		return nil, errv, false
	}
	nums := make([]float64, 0, len(args))
	for _, a := range args {
		if a.IsEmpty() {
			continue
		}
		if n, ok := a.AsNumber(); ok {
			nums = append(nums, n)
		}
	}
	return nums, Empty, true
}

// oneNumber coerces a single required numeric argument.
func oneNumber(op string, args []Value) (float64, error) {
	if len(args) != 1 {
		return 0, NewOperationError(op, ErrValue, "expects exactly one argument")
	}
	if args[0].IsError() {
		return 0, NewOperationError(op, args[0].ErrKind(), "error argument")
	}
	n, ok := args[0].AsNumber()
	if !ok {
		return 0, NewOperationError(op, ErrValue, "argument is not numeric")
	}
	return n, nil
}

func registerBuiltins(r *FuncRegistry) {
	r.Register("SUM", func(args []Value) (Value, error) {
		nums, errv, ok := numericArgs(args)
		if !ok {
			return errv, nil
		}
		total := 0.0
		for _, n := range nums {
			total += n
		}
		return Number(total), nil
	})

	r.Register("AVERAGE", func(args []Value) (Value, error) {
		nums, errv, ok := numericArgs(args)
		if !ok {
			return errv, nil
		}
		if len(nums) == 0 {
			return ErrorValue(ErrDiv0), nil
		}
		total := 0.0
		for _, n := range nums {
			total += n
		}
		return Number(total / float64(len(nums))), nil
	})

	r.Register("COUNT", func(args []Value) (Value, error) {
		count := 0
		for _, a := range args {
			if a.Kind() == KindNumber {
				count++
			}
		}
		return Number(float64(count)), nil
	})

	r.Register("COUNTA", func(args []Value) (Value, error) {
		count := 0
		for _, a := range args {
			if !a.IsEmpty() {
				count++
			}
		}
		return Number(float64(count)), nil
	})

	r.Register("MIN", func(args []Value) (Value, error) {
		nums, errv, ok := numericArgs(args)
		if !ok {
			return errv, nil
		}
		if len(nums) == 0 {
			return Number(0), nil
		}
		m := nums[0]
		for _, n := range nums[1:] {
			if n < m {
				m = n
			}
		}
		return Number(m), nil
	})

	r.Register("MAX", func(args []Value) (Value, error) {
		nums, errv, ok := numericArgs(args)
		if !ok {
			return errv, nil
		}
		if len(nums) == 0 {
			return Number(0), nil
		}
		m := nums[0]
		for _, n := range nums[1:] {
			if n > m {
				m = n
			}
		}
		return Number(m), nil
	})

	r.Register("ABS", func(args []Value) (Value, error) {
		n, err := oneNumber("ABS", args)
		if err != nil {
			return Empty, err
		}
		return Number(math.Abs(n)), nil
	})

	r.Register("SQRT", func(args []Value) (Value, error) {
		n, err := oneNumber("SQRT", args)
		if err != nil {
			return Empty, err
		}
		if n < 0 {
			return Empty, NewOperationError("SQRT", ErrValue, "negative argument")
		}
		return Number(math.Sqrt(n)), nil
	})

	r.Register("ROUND", func(args []Value) (Value, error) {
		if errv, ok := firstError(args); ok {
			return errv, nil
		}
		if len(args) < 1 || len(args) > 2 {
			return Empty, NewOperationError("ROUND", ErrValue, "expects one or two arguments")
		}
		n, ok := args[0].AsNumber()
		if !ok {
			return Empty, NewOperationError("ROUND", ErrValue, "argument is not numeric")
		}
		digits := 0.0
		if len(args) == 2 {
			d, ok := args[1].AsNumber()
			if !ok {
				return Empty, NewOperationError("ROUND", ErrValue, "digits is not numeric")
			}
			digits = math.Trunc(d)
		}
		scale := math.Pow(10, digits)
		return Number(math.Round(n*scale) / scale), nil
	})

	r.Register("POWER", func(args []Value) (Value, error) {
		if errv, ok := firstError(args); ok {
			return errv, nil
		}
		if len(args) != 2 {
			return Empty, NewOperationError("POWER", ErrValue, "expects two arguments")
		}
		base, ok1 := args[0].AsNumber()
		exp, ok2 := args[1].AsNumber()
		if !ok1 || !ok2 {
			return Empty, NewOperationError("POWER", ErrValue, "arguments must be numeric")
		}
		return Number(math.Pow(base, exp)), nil
	})

	r.Register("MOD", func(args []Value) (Value, error) {
		if errv, ok := firstError(args); ok {
			return errv, nil
		}
		if len(args) != 2 {
			return Empty, NewOperationError("MOD", ErrValue, "expects two arguments")
		}
		n, ok1 := args[0].AsNumber()
		d, ok2 := args[1].AsNumber()
		if !ok1 || !ok2 {
			return Empty, NewOperationError("MOD", ErrValue, "arguments must be numeric")
		}
		if d == 0 {
			return ErrorValue(ErrDiv0), nil
		}
		// Excel MOD follows the divisor's sign.
		return Number(n - d*math.Floor(n/d)), nil
	})

	r.Register("IF", func(args []Value) (Value, error) {
		if len(args) < 2 || len(args) > 3 {
			return Empty, NewOperationError("IF", ErrValue, "expects two or three arguments")
		}
		if args[0].IsError() {
			return args[0], nil
		}
		cond, ok := args[0].AsBool()
		if !ok {
			return Empty, NewOperationError("IF", ErrValue, "condition is not boolean")
		}
		if cond {
			return args[1], nil
		}
		if len(args) == 3 {
			return args[2], nil
		}
		return Bool(false), nil
	})

	r.Register("AND", func(args []Value) (Value, error) {
		if errv, ok := firstError(args); ok {
			return errv, nil
		}
		for _, a := range args {
			b, ok := a.AsBool()
			if !ok {
				return Empty, NewOperationError("AND", ErrValue, "argument is not boolean")
			}
			if !b {
				return Bool(false), nil
			}
		}
		return Bool(true), nil
	})

	r.Register("OR", func(args []Value) (Value, error) {
		if errv, ok := firstError(args); ok {
			return errv, nil
		}
		for _, a := range args {
			b, ok := a.AsBool()
			if !ok {
				return Empty, NewOperationError("OR", ErrValue, "argument is not boolean")
			}
			if b {
				return Bool(true), nil
			}
		}
		return Bool(false), nil
	})

	r.Register("NOT", func(args []Value) (Value, error) {
		if errv, ok := firstError(args); ok {
			return errv, nil
		}
		if len(args) != 1 {
			return Empty, NewOperationError("NOT", ErrValue, "expects exactly one argument")
		}
		b, ok := args[0].AsBool()
		if !ok {
			return Empty, NewOperationError("NOT", ErrValue, "argument is not boolean")
		}
		return Bool(!b), nil
	})

	r.Register("CONCATENATE", func(args []Value) (Value, error) {
		if errv, ok := firstError(args); ok {
			return errv, nil
		}
		var sb strings.Builder
		for _, a := range args {
			sb.WriteString(a.AsText())
		}
		return Text(sb.String()), nil
	})

	r.Register("LEN", func(args []Value) (Value, error) {
		if errv, ok := firstError(args); ok {
			return errv, nil
		}
		if len(args) != 1 {
			return Empty, NewOperationError("LEN", ErrValue, "expects exactly one argument")
		}
		return Number(float64(len([]rune(args[0].AsText())))), nil
	})

	r.Register("UPPER", func(args []Value) (Value, error) {
		if errv, ok := firstError(args); ok {
			return errv, nil
		}
		if len(args) != 1 {
			return Empty, NewOperationError("UPPER", ErrValue, "expects exactly one argument")
		}
		return Text(strings.ToUpper(args[0].AsText())), nil
	})

	r.Register("LOWER", func(args []Value) (Value, error) {
		if errv, ok := firstError(args); ok {
			return errv, nil
		}
		if len(args) != 1 {
			return Empty, NewOperationError("LOWER", ErrValue, "expects exactly one argument")
		}
		return Text(strings.ToLower(args[0].AsText())), nil
	})

	r.Register("TRIM", func(args []Value) (Value, error) {
		if errv, ok := firstError(args); ok {
			return errv, nil
		}
		if len(args) != 1 {
			return Empty, NewOperationError("TRIM", ErrValue, "expects exactly one argument")
		}
		return Text(strings.TrimSpace(args[0].AsText())), nil
	})

	// ISERROR and ISBLANK inspect error values instead of propagating
	// them; this is the sanctioned opt-out from error propagation.
	r.Register("ISERROR", func(args []Value) (Value, error) {
		if len(args) != 1 {
			return Empty, NewOperationError("ISERROR", ErrValue, "expects exactly one argument")
		}
		return Bool(args[0].IsError()), nil
	})

	r.Register("ISBLANK", func(args []Value) (Value, error) {
		if len(args) != 1 {
			return Empty, NewOperationError("ISBLANK", ErrValue, "expects exactly one argument")
		}
		return Bool(args[0].IsEmpty()), nil
	})
}
