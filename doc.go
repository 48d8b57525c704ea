// Package xlcalc is a spreadsheet computation engine: a columnar cell
// store, an Excel-style formula parser, a dependency graph with cycle
// rejection, and an incremental recalculation scheduler.
//
// The entry point is Sheet. Edits go through SetLiteral and SetFormula;
// Recalculate brings every dependent cell up to date in dependency
// order. Formula errors such as #DIV/0! are ordinary cell values and
// flow through dependent formulas; only structural problems (parse
// errors, circular references) are reported to the caller, and those
// leave the sheet untouched.
//
//	s := xlcalc.NewSheet()
//	s.SetLiteral(xlcalc.Cell(0, 0), xlcalc.Number(10)) // A1
//	s.SetFormula(xlcalc.Cell(0, 1), "=A1*2")           // A2
//	s.Recalculate()
//	v := s.Get(xlcalc.Cell(0, 1)) // Number(20)
//
// Functions are resolved at evaluation time against a Registry, so
// built-ins and user-registered operations (including ones compiled
// from expr-lang sources via RegisterExpr) are indistinguishable at
// call time.
package xlcalc
