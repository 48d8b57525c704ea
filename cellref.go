package xlcalc

import (
	"fmt"
	"strings"
)

// Grid extent limits, matching the Excel worksheet size.
const (
	MaxCols = 16384   // columns A..XFD
	MaxRows = 1048576 // rows 1..1048576
)

// CellRef addresses a single cell by 0-based column and row.
type CellRef struct {
	Col int
	Row int
}

// Cell creates a CellRef from 0-based column and row indices.
func Cell(col, row int) CellRef {
	return CellRef{Col: col, Row: row}
}

// InGrid reports whether the reference lies inside the supported grid.
func (c CellRef) InGrid() bool {
	return c.Col >= 0 && c.Col < MaxCols && c.Row >= 0 && c.Row < MaxRows
}

// Less orders references row-major: by row, then by column. The
// scheduler relies on this for deterministic tie-breaking.
func (c CellRef) Less(o CellRef) bool {
	if c.Row != o.Row {
		return c.Row < o.Row
	}
	return c.Col < o.Col
}

// String formats the reference in A1 notation.
func (c CellRef) String() string {
	return ColName(c.Col) + fmt.Sprintf("%d", c.Row+1)
}

// ParseCellRef parses an A1-style reference like "B12" or "xfd1048576".
// Input is case-insensitive. References outside the grid are rejected.
func ParseCellRef(s string) (CellRef, error) {
	ref, rest, err := scanCellRef(s)
	if err != nil {
		return CellRef{}, err
	}
	if rest != "" {
		return CellRef{}, fmt.Errorf("invalid cell reference: %q", s)
	}
	return ref, nil
}

// scanCellRef consumes a cell reference from the front of s and returns
// the unconsumed remainder.
func scanCellRef(s string) (CellRef, string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return CellRef{}, "", fmt.Errorf("empty cell reference")
	}

	i := 0
	for i < len(s) && isRefLetter(s[i]) {
		i++
	}
	if i == 0 || i > 3 {
		return CellRef{}, "", fmt.Errorf("invalid cell reference: %q", s)
	}
	col, err := NameToCol(s[:i])
	if err != nil {
		return CellRef{}, "", err
	}

	j := i
	row := 0
	for j < len(s) && s[j] >= '0' && s[j] <= '9' {
		row = row*10 + int(s[j]-'0')
		if row > MaxRows {
			return CellRef{}, "", fmt.Errorf("row out of range in %q", s)
		}
		j++
	}
	if j == i {
		return CellRef{}, "", fmt.Errorf("missing row number in %q", s)
	}
	if row < 1 {
		return CellRef{}, "", fmt.Errorf("row number must be at least 1 in %q", s)
	}

	ref := CellRef{Col: col, Row: row - 1}
	if !ref.InGrid() {
		return CellRef{}, "", fmt.Errorf("cell reference out of range: %q", s)
	}
	return ref, s[j:], nil
}

func isRefLetter(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

// ColName converts a 0-based column index to its letter name.
// 0→"A", 25→"Z", 26→"AA", 16383→"XFD"
func ColName(col int) string {
	result := ""
	col++ // 1-based for the base-26 carry
	for col > 0 {
		col--
		result = string(rune('A'+col%26)) + result
		col /= 26
	}
	return result
}

// NameToCol converts a column name to a 0-based index, case-insensitive.
// "A"→0, "Z"→25, "aa"→26
func NameToCol(name string) (int, error) {
	if name == "" {
		return 0, fmt.Errorf("empty column name")
	}
	col := 0
	for _, ch := range strings.ToUpper(name) {
		if ch < 'A' || ch > 'Z' {
			return 0, fmt.Errorf("invalid column name: %q", name)
		}
		col = col*26 + int(ch-'A') + 1
		if col > MaxCols {
			return 0, fmt.Errorf("column out of range: %q", name)
		}
	}
	return col - 1, nil
}

// RangeRef is a rectangular block of cells, inclusive on both corners.
// It is always normalized: First is the top-left corner.
type RangeRef struct {
	First CellRef
	Last  CellRef
}

// Range creates a normalized RangeRef from two corners.
func Range(a, b CellRef) RangeRef {
	if a.Col > b.Col {
		a.Col, b.Col = b.Col, a.Col
	}
	if a.Row > b.Row {
		a.Row, b.Row = b.Row, a.Row
	}
	return RangeRef{First: a, Last: b}
}

// ParseRangeRef parses a range like "A1:B10".
func ParseRangeRef(s string) (RangeRef, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return RangeRef{}, fmt.Errorf("invalid range reference (missing ':'): %q", s)
	}
	first, err := ParseCellRef(parts[0])
	if err != nil {
		return RangeRef{}, fmt.Errorf("invalid range reference %q: %w", s, err)
	}
	last, err := ParseCellRef(parts[1])
	if err != nil {
		return RangeRef{}, fmt.Errorf("invalid range reference %q: %w", s, err)
	}
	return Range(first, last), nil
}

// Contains reports whether ref lies inside the range.
func (r RangeRef) Contains(ref CellRef) bool {
	return ref.Col >= r.First.Col && ref.Col <= r.Last.Col &&
		ref.Row >= r.First.Row && ref.Row <= r.Last.Row
}

// Cells returns the cell count of the range.
func (r RangeRef) Cells() int {
	return (r.Last.Col - r.First.Col + 1) * (r.Last.Row - r.First.Row + 1)
}

// String formats the range in A1:B2 notation.
func (r RangeRef) String() string {
	return r.First.String() + ":" + r.Last.String()
}
