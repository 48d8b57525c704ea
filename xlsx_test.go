package xlcalc

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWorkbook_RoundTrip(t *testing.T) {
	s := NewSheet()
	require.NoError(t, s.SetLiteral(Cell(0, 0), Number(1)))  // A1
	require.NoError(t, s.SetLiteral(Cell(0, 1), Number(3)))  // A2
	require.NoError(t, s.SetLiteral(Cell(1, 0), Text("hi"))) // B1
	require.NoError(t, s.SetLiteral(Cell(2, 0), Bool(true))) // C1
	require.NoError(t, s.SetFormula(Cell(3, 0), "=SUM(A1:A2)*2"))
	s.Recalculate()

	var buf bytes.Buffer
	require.NoError(t, SaveWorkbookWriter(s, &buf))

	loaded, err := LoadWorkbookReader(&buf)
	require.NoError(t, err)
	loaded.Recalculate()

	assert.Equal(t, Number(1), loaded.Get(Cell(0, 0)))
	assert.Equal(t, Text("hi"), loaded.Get(Cell(1, 0)))
	assert.Equal(t, Bool(true), loaded.Get(Cell(2, 0)))
	assert.Equal(t, Number(8), loaded.Get(Cell(3, 0)))

	src, ok := loaded.Formula(Cell(3, 0))
	require.True(t, ok)
	assert.Equal(t, "=SUM(A1:A2)*2", src)
}

func TestLoadWorkbookReader_TypedLiterals(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetCellValue(sheet, "A1", 2.5))
	require.NoError(t, f.SetCellValue(sheet, "A2", "plain"))
	require.NoError(t, f.SetCellValue(sheet, "A3", "TRUE"))

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	s, err := LoadWorkbookReader(&buf)
	require.NoError(t, err)
	assert.Equal(t, Number(2.5), s.Get(Cell(0, 0)))
	assert.Equal(t, Text("plain"), s.Get(Cell(0, 1)))
	assert.Equal(t, Bool(true), s.Get(Cell(0, 2)))
}

func TestLoadWorkbookReader_FormulaOrderIndependent(t *testing.T) {
	// the formula in A1 reads a cell that loads after it
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetCellValue(sheet, "A1", 99)) // stale cached result
	require.NoError(t, f.SetCellFormula(sheet, "A1", "B2+1"))
	require.NoError(t, f.SetCellValue(sheet, "B2", 5))

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	s, err := LoadWorkbookReader(&buf)
	require.NoError(t, err)
	s.Recalculate()
	assert.Equal(t, Number(6), s.Get(Cell(0, 0)))
}

func TestLoadWorkbookReader_CyclicWorkbookRejected(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetCellValue(sheet, "A1", 0))
	require.NoError(t, f.SetCellFormula(sheet, "A1", "B1"))
	require.NoError(t, f.SetCellValue(sheet, "B1", 0))
	require.NoError(t, f.SetCellFormula(sheet, "B1", "A1"))

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	_, err := LoadWorkbookReader(&buf)
	require.Error(t, err)
	var cerr *CycleError
	assert.ErrorAs(t, err, &cerr)
}

func TestSaveWorkbook_WritesFormulasNotJustValues(t *testing.T) {
	s := NewSheet()
	require.NoError(t, s.SetLiteral(Cell(0, 0), Number(10)))
	require.NoError(t, s.SetFormula(Cell(0, 1), "=A1/2"))
	s.Recalculate()

	var buf bytes.Buffer
	require.NoError(t, SaveWorkbookWriter(s, &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	sheet := f.GetSheetName(0)

	formula, err := f.GetCellFormula(sheet, "A2")
	require.NoError(t, err)
	assert.Equal(t, "A1/2", formula)

	v, err := f.GetCellValue(sheet, "A1")
	require.NoError(t, err)
	assert.Equal(t, "10", v)
}

func BenchmarkRecalculate_RangeFanIn(b *testing.B) {
	s := NewSheet()
	for row := 0; row < 1000; row++ {
		if err := s.SetLiteral(Cell(0, row), Number(float64(row))); err != nil {
			b.Fatal(err)
		}
	}
	if err := s.SetFormula(Cell(1, 0), "=SUM(A1:A1000)"); err != nil {
		b.Fatal(err)
	}
	s.Recalculate()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = s.SetLiteral(Cell(0, i%1000), Number(float64(i)))
		s.Recalculate()
	}
}
