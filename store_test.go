package xlcalc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_UnwrittenCellsReadEmpty(t *testing.T) {
	st := newStore()
	assert.Equal(t, Empty, st.get(Cell(0, 0)))
	assert.Equal(t, Empty, st.get(Cell(16383, 1048575)))
}

func TestStore_SetAndGet(t *testing.T) {
	st := newStore()
	st.setLiteral(Cell(1, 1), Number(42))
	st.setLiteral(Cell(1, 2), Text("hi"))
	assert.Equal(t, Number(42), st.get(Cell(1, 1)))
	assert.Equal(t, Text("hi"), st.get(Cell(1, 2)))
	// neighboring cells stay empty
	assert.Equal(t, Empty, st.get(Cell(1, 0)))
	assert.Equal(t, Empty, st.get(Cell(2, 1)))
}

func TestStore_FarWriteStaysSparse(t *testing.T) {
	st := newStore()
	far := Cell(0, MaxRows-1)
	st.setLiteral(far, Number(7))
	assert.Equal(t, Number(7), st.get(far))
	assert.Equal(t, MaxRows, st.highWater(0))

	col := st.cols[0]
	assert.Less(t, len(col.dense), sparseGapLimit+1)
	assert.Contains(t, col.sparse, MaxRows-1)
}

func TestStore_GrowMigratesSparse(t *testing.T) {
	st := newStore()
	st.setLiteral(Cell(0, 6000), Number(1)) // beyond gap limit, sparse
	require.Contains(t, st.cols[0].sparse, 6000)

	// dense writes walk the buffer past the sparse entry
	for row := 0; row <= 6000; row += 1000 {
		st.setLiteral(Cell(0, row), Number(float64(row)))
	}
	assert.Equal(t, Number(6000), st.get(Cell(0, 6000)))
	assert.NotContains(t, st.cols[0].sparse, 6000)
}

func TestStore_SetLiteralDropsFormula(t *testing.T) {
	st := newStore()
	expr := mustParse(t, "=1+2")
	st.setFormula(Cell(0, 0), expr, "=1+2")
	_, ok := st.formula(Cell(0, 0))
	require.True(t, ok)

	st.setLiteral(Cell(0, 0), Number(9))
	_, ok = st.formula(Cell(0, 0))
	assert.False(t, ok)
	assert.Equal(t, Number(9), st.get(Cell(0, 0)))
}

func TestStore_Clear(t *testing.T) {
	st := newStore()
	st.setLiteral(Cell(0, 0), Number(1))
	st.setFormula(Cell(0, 1), mustParse(t, "=A1"), "=A1")
	st.clear(Cell(0, 0))
	st.clear(Cell(0, 1))
	assert.Equal(t, Empty, st.get(Cell(0, 0)))
	_, ok := st.formula(Cell(0, 1))
	assert.False(t, ok)
}

func TestStore_ResolveRangeRowMajor(t *testing.T) {
	st := newStore()
	st.setLiteral(Cell(0, 0), Number(1)) // A1
	st.setLiteral(Cell(1, 0), Number(2)) // B1
	st.setLiteral(Cell(0, 1), Number(3)) // A2
	// B2 left empty

	got := st.resolveRange(Range(Cell(0, 0), Cell(1, 1)))
	assert.Equal(t, []Value{Number(1), Number(2), Number(3), Empty}, got)
}

func TestStore_ResolveRangeUntouchedColumns(t *testing.T) {
	st := newStore()
	got := st.resolveRange(Range(Cell(50, 10), Cell(51, 11)))
	assert.Equal(t, []Value{Empty, Empty, Empty, Empty}, got)
}

func TestStore_ColumnStats(t *testing.T) {
	st := newStore()
	st.setLiteral(Cell(2, 0), Number(4))
	st.setLiteral(Cell(2, 1), Number(-1))
	st.setLiteral(Cell(2, 2), Text("skip"))
	st.setLiteral(Cell(2, 3), Number(10))
	st.setLiteral(Cell(2, 9000), Number(2)) // sparse entry counts too

	stats := st.columnStats(2)
	assert.Equal(t, 4, stats.Count)
	assert.Equal(t, 15.0, stats.Sum)
	assert.Equal(t, -1.0, stats.Min)
	assert.Equal(t, 10.0, stats.Max)
}

func TestStore_ColumnStatsEmptyColumn(t *testing.T) {
	st := newStore()
	assert.Equal(t, Stats{}, st.columnStats(0))
}

func TestStore_EachVisitsFormulasWithoutValues(t *testing.T) {
	st := newStore()
	st.setLiteral(Cell(0, 0), Number(1))
	st.setFormula(Cell(0, 5), mustParse(t, "=A1"), "=A1")

	visited := map[CellRef]Value{}
	st.each(func(ref CellRef, v Value) { visited[ref] = v })
	assert.Equal(t, map[CellRef]Value{
		Cell(0, 0): Number(1),
		Cell(0, 5): Empty,
	}, visited)
}
