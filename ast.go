package xlcalc

import "strings"

// Expr is a node in a parsed formula. The tree is immutable after
// parsing; dependency extraction, rendering, and evaluation all walk
// it without mutation.
type Expr interface {
	// String renders the node as canonical formula text (no leading '=').
	String() string
}

// NumberLit is a numeric literal.
type NumberLit struct {
	Value float64
}

func (n *NumberLit) String() string {
	return Number(n.Value).String()
}

// StringLit is a quoted string literal.
type StringLit struct {
	Value string
}

func (n *StringLit) String() string {
	return `"` + strings.ReplaceAll(n.Value, `"`, `""`) + `"`
}

// BoolLit is a TRUE/FALSE literal.
type BoolLit struct {
	Value bool
}

func (n *BoolLit) String() string {
	if n.Value {
		return "TRUE"
	}
	return "FALSE"
}

// RefExpr is a single-cell reference.
type RefExpr struct {
	Ref CellRef
}

func (n *RefExpr) String() string { return n.Ref.String() }

// RangeExpr is a rectangular range reference.
type RangeExpr struct {
	Range RangeRef
}

func (n *RangeExpr) String() string { return n.Range.String() }

// BinOp identifies a binary operator.
type BinOp uint8

const (
	OpAdd BinOp = iota
	OpSub
	OpMul
	OpDiv
	OpPow
	OpConcat
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
)

func (op BinOp) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpPow:
		return "^"
	case OpConcat:
		return "&"
	case OpEq:
		return "="
	case OpNe:
		return "<>"
	case OpLt:
		return "<"
	case OpLe:
		return "<="
	case OpGt:
		return ">"
	case OpGe:
		return ">="
	}
	return "?"
}

// BinaryExpr applies a binary operator to two operands.
type BinaryExpr struct {
	Op    BinOp
	Left  Expr
	Right Expr
}

func (n *BinaryExpr) String() string {
	return "(" + n.Left.String() + n.Op.String() + n.Right.String() + ")"
}

// UnaryExpr applies unary minus or plus.
type UnaryExpr struct {
	Negate  bool // true for '-', false for '+'
	Operand Expr
}

func (n *UnaryExpr) String() string {
	if n.Negate {
		return "-" + n.Operand.String()
	}
	return "+" + n.Operand.String()
}

// CallExpr is a function call. Name is stored uppercased; resolution
// against the registry happens at evaluation time, so a name unknown
// when the formula is committed is not a parse error.
type CallExpr struct {
	Name string
	Args []Expr
}

func (n *CallExpr) String() string {
	parts := make([]string, len(n.Args))
	for i, a := range n.Args {
		parts[i] = a.String()
	}
	return n.Name + "(" + strings.Join(parts, ",") + ")"
}

// reads collects every cell and range the expression refers to. The
// result is the edge set handed to the dependency graph when the
// formula is committed.
type readSet struct {
	cells  []CellRef
	ranges []RangeRef
}

func collectReads(e Expr, rs *readSet) {
	switch n := e.(type) {
	case *RefExpr:
		rs.cells = append(rs.cells, n.Ref)
	case *RangeExpr:
		rs.ranges = append(rs.ranges, n.Range)
	case *BinaryExpr:
		collectReads(n.Left, rs)
		collectReads(n.Right, rs)
	case *UnaryExpr:
		collectReads(n.Operand, rs)
	case *CallExpr:
		for _, a := range n.Args {
			collectReads(a, rs)
		}
	case *NumberLit, *StringLit, *BoolLit:
		// leaves without references
	}
}

// Reads returns the cells and ranges the expression reads.
func Reads(e Expr) (cells []CellRef, ranges []RangeRef) {
	var rs readSet
	collectReads(e, &rs)
	return rs.cells, rs.ranges
}
