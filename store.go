package xlcalc

// sparseGapLimit bounds how far the dense buffer of a column grows in
// one step. A write farther than this beyond the current high-water
// row lands in the column's sparse overlay instead, so a single write
// to row 1,048,576 does not allocate a million slots.
const sparseGapLimit = 4096

// formulaCell is the stored form of a formula: the parsed tree plus
// the original source text for round-tripping.
type formulaCell struct {
	expr Expr
	src  string
}

// column stores one column's values densely up to its high-water row,
// with a sparse overlay for far-flung writes. Reads of unwritten rows
// return Empty; the two representations are behaviorally identical.
type column struct {
	dense  []Value
	sparse map[int]Value
}

func (c *column) get(row int) Value {
	if row < len(c.dense) {
		return c.dense[row]
	}
	if c.sparse != nil {
		return c.sparse[row]
	}
	return Empty
}

func (c *column) set(row int, v Value) {
	if row < len(c.dense) {
		c.dense[row] = v
		return
	}
	if row < len(c.dense)+sparseGapLimit {
		c.grow(row + 1)
		c.dense[row] = v
		return
	}
	if c.sparse == nil {
		c.sparse = make(map[int]Value)
	}
	c.sparse[row] = v
}

// grow extends the dense buffer and migrates any sparse entries that
// now fall inside it.
func (c *column) grow(n int) {
	for len(c.dense) < n {
		c.dense = append(c.dense, Empty)
	}
	for row, v := range c.sparse {
		if row < len(c.dense) {
			c.dense[row] = v
			delete(c.sparse, row)
		}
	}
}

// highWater returns one past the highest written row.
func (c *column) highWater() int {
	hw := len(c.dense)
	for row := range c.sparse {
		if row+1 > hw {
			hw = row + 1
		}
	}
	return hw
}

// store is the columnar cell store. It owns all column storage; every
// read and write goes through its accessors. It is not safe for
// concurrent use on its own; the Sheet facade provides the
// single-writer/multi-reader locking.
type store struct {
	cols     map[int]*column
	formulas map[CellRef]formulaCell
}

func newStore() *store {
	return &store{
		cols:     make(map[int]*column),
		formulas: make(map[CellRef]formulaCell),
	}
}

// get returns the cell's current value; Empty for never-written cells.
func (s *store) get(ref CellRef) Value {
	col, ok := s.cols[ref.Col]
	if !ok {
		return Empty
	}
	return col.get(ref.Row)
}

// setValue writes a value without touching formula content. Used both
// for literals and for recalculation write-backs.
func (s *store) setValue(ref CellRef, v Value) {
	col, ok := s.cols[ref.Col]
	if !ok {
		col = &column{}
		s.cols[ref.Col] = col
	}
	col.set(ref.Row, v)
}

// setLiteral replaces the cell's content with a literal, dropping any
// stored formula.
func (s *store) setLiteral(ref CellRef, v Value) {
	delete(s.formulas, ref)
	s.setValue(ref, v)
}

// setFormula replaces the cell's content with a formula. The computed
// value is written later by the scheduler.
func (s *store) setFormula(ref CellRef, expr Expr, src string) {
	s.formulas[ref] = formulaCell{expr: expr, src: src}
}

// formula returns the stored formula for a cell, if any.
func (s *store) formula(ref CellRef) (formulaCell, bool) {
	fc, ok := s.formulas[ref]
	return fc, ok
}

// clear removes the cell's content entirely.
func (s *store) clear(ref CellRef) {
	delete(s.formulas, ref)
	if col, ok := s.cols[ref.Col]; ok {
		if ref.Row < len(col.dense) {
			col.dense[ref.Row] = Empty
		} else {
			delete(col.sparse, ref.Row)
		}
	}
}

// resolveRange returns the range's values in row-major order. Cells
// never written read as Empty, so the result always has r.Cells()
// entries.
func (s *store) resolveRange(r RangeRef) []Value {
	out := make([]Value, 0, r.Cells())
	for row := r.First.Row; row <= r.Last.Row; row++ {
		for col := r.First.Col; col <= r.Last.Col; col++ {
			c, ok := s.cols[col]
			if !ok {
				out = append(out, Empty)
				continue
			}
			out = append(out, c.get(row))
		}
	}
	return out
}

// highWater returns one past the highest written row of a column, or
// zero for an untouched column.
func (s *store) highWater(col int) int {
	c, ok := s.cols[col]
	if !ok {
		return 0
	}
	return c.highWater()
}

// each calls fn for every non-empty cell and for every cell holding a
// formula, in no particular order.
func (s *store) each(fn func(CellRef, Value)) {
	seen := make(map[CellRef]struct{}, len(s.formulas))
	for col, c := range s.cols {
		for row, v := range c.dense {
			if !v.IsEmpty() {
				ref := Cell(col, row)
				seen[ref] = struct{}{}
				fn(ref, v)
			}
		}
		for row, v := range c.sparse {
			ref := Cell(col, row)
			seen[ref] = struct{}{}
			fn(ref, v)
		}
	}
	for ref := range s.formulas {
		if _, ok := seen[ref]; !ok {
			fn(ref, Empty)
		}
	}
}

// Stats summarizes the numeric contents of one column in a single
// sequential pass over its storage.
type Stats struct {
	Count int // numeric cells
	Sum   float64
	Min   float64 // zero when Count is 0
	Max   float64 // zero when Count is 0
}

// columnStats scans a column's numbers sequentially. Non-numeric and
// empty cells are skipped; only KindNumber cells count.
func (s *store) columnStats(col int) Stats {
	var st Stats
	c, ok := s.cols[col]
	if !ok {
		return st
	}
	note := func(v Value) {
		if v.Kind() != KindNumber {
			return
		}
		n := v.Num()
		if st.Count == 0 || n < st.Min {
			st.Min = n
		}
		if st.Count == 0 || n > st.Max {
			st.Max = n
		}
		st.Sum += n
		st.Count++
	}
	for _, v := range c.dense {
		note(v)
	}
	for _, v := range c.sparse {
		note(v)
	}
	return st
}
