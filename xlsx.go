package xlcalc

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// LoadWorkbook reads the first worksheet of an xlsx file into a new
// Sheet. Formula cells are installed through SetFormula, so loading a
// workbook whose formulas form a cycle fails with a *CycleError.
func LoadWorkbook(path string, opts ...Option) (*Sheet, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()
	return loadFile(f, opts)
}

// LoadWorkbookReader is LoadWorkbook for an in-memory workbook.
func LoadWorkbookReader(r io.Reader, opts ...Option) (*Sheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()
	return loadFile(f, opts)
}

func loadFile(f *excelize.File, opts []Option) (*Sheet, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	name := sheets[0]

	s := NewSheet(opts...)
	rows, err := f.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", name, err)
	}
	for r, row := range rows {
		for c, raw := range row {
			cellName, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return nil, err
			}
			formula, err := f.GetCellFormula(name, cellName)
			if err != nil {
				return nil, fmt.Errorf("read %s!%s: %w", name, cellName, err)
			}
			ref := Cell(c, r)
			if formula != "" {
				if err := s.SetFormula(ref, formula); err != nil {
					return nil, fmt.Errorf("formula at %s: %w", cellName, err)
				}
				continue
			}
			if raw == "" {
				continue
			}
			if err := s.SetLiteral(ref, literalFromString(raw)); err != nil {
				return nil, err
			}
		}
	}
	return s, nil
}

// literalFromString maps a workbook cell's display string onto a
// typed value: numbers and TRUE/FALSE are recognized, everything
// else loads as text.
func literalFromString(raw string) Value {
	if n, err := strconv.ParseFloat(raw, 64); err == nil {
		return Number(n)
	}
	switch strings.ToUpper(raw) {
	case "TRUE":
		return Bool(true)
	case "FALSE":
		return Bool(false)
	}
	return Text(raw)
}

// SaveWorkbook writes the sheet to an xlsx file. Formula cells are
// written as formulas so other tools recompute them on open; literal
// cells carry their typed values.
func SaveWorkbook(s *Sheet, path string) error {
	f, err := buildFile(s)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.SaveAs(path)
}

// SaveWorkbookWriter is SaveWorkbook targeting an io.Writer.
func SaveWorkbookWriter(s *Sheet, w io.Writer) error {
	f, err := buildFile(s)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Write(w)
}

func buildFile(s *Sheet) (*excelize.File, error) {
	f := excelize.NewFile()
	name := f.GetSheetName(0)

	type entry struct {
		ref     CellRef
		v       Value
		formula string
	}
	var cells []entry
	s.Each(func(ref CellRef, v Value, formula string) {
		cells = append(cells, entry{ref, v, formula})
	})
	sort.Slice(cells, func(i, j int) bool { return cells[i].ref.Less(cells[j].ref) })

	for _, e := range cells {
		cellName := e.ref.String()
		// Formula cells carry their computed value as well, so other
		// tools see the cached result; the value goes in first and the
		// formula last.
		if !e.v.IsEmpty() || e.formula == "" {
			if err := setTypedCell(f, name, cellName, e.v); err != nil {
				f.Close()
				return nil, fmt.Errorf("write %s: %w", cellName, err)
			}
		}
		if e.formula != "" {
			src := strings.TrimPrefix(e.formula, "=")
			if err := f.SetCellFormula(name, cellName, src); err != nil {
				f.Close()
				return nil, fmt.Errorf("write %s: %w", cellName, err)
			}
		}
	}
	return f, nil
}

func setTypedCell(f *excelize.File, sheet, cell string, v Value) error {
	switch v.Kind() {
	case KindNumber:
		return f.SetCellValue(sheet, cell, v.Num())
	case KindBool:
		return f.SetCellBool(sheet, cell, v.BoolVal())
	case KindError:
		return f.SetCellStr(sheet, cell, v.ErrKind().String())
	default:
		return f.SetCellStr(sheet, cell, v.Str())
	}
}
