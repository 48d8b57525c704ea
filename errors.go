package xlcalc

import (
	"fmt"
	"strings"
)

// ParseErrorKind classifies formula parse failures.
type ParseErrorKind uint8

const (
	// SyntaxError covers malformed input: bad tokens, unbalanced
	// parentheses, trailing text, empty expressions.
	SyntaxError ParseErrorKind = iota
	// OutOfRange marks a syntactically valid cell or range reference
	// that lies outside the supported grid.
	OutOfRange
)

// ParseError is returned from Parse and SetFormula when the formula
// text is rejected. The sheet is never partially modified: a formula
// that fails to parse leaves the target cell's prior content in place.
type ParseError struct {
	Kind   ParseErrorKind
	Pos    int    // byte offset into the formula text (after the '=')
	Reason string // human-readable description
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at %d: %s", e.Pos, e.Reason)
}

func syntaxErr(pos int, format string, args ...any) *ParseError {
	return &ParseError{Kind: SyntaxError, Pos: pos, Reason: fmt.Sprintf(format, args...)}
}

func rangeErr(pos int, format string, args ...any) *ParseError {
	return &ParseError{Kind: OutOfRange, Pos: pos, Reason: fmt.Sprintf(format, args...)}
}

// CycleError is returned when committing a formula would make the
// dependency graph cyclic. The commit is rolled back atomically: both
// the graph and the cell's previous content are preserved.
type CycleError struct {
	// Path lists the cycle the rejected edge would have closed,
	// starting and ending at the edited cell.
	Path []CellRef
}

func (e *CycleError) Error() string {
	parts := make([]string, len(e.Path))
	for i, ref := range e.Path {
		parts[i] = ref.String()
	}
	return "circular reference: " + strings.Join(parts, " -> ")
}

// OperationError is the failure a registered operation reports. The
// evaluator converts it into the corresponding error value, so a bad
// function call degrades to an error cell rather than a failed pass.
type OperationError struct {
	Op     string
	Kind   ErrorKind
	Reason string
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("%s: %s (%s)", e.Op, e.Reason, e.Kind)
}

// NewOperationError creates an OperationError with the given kind.
func NewOperationError(op string, kind ErrorKind, reason string) *OperationError {
	return &OperationError{Op: op, Kind: kind, Reason: reason}
}
