package xlcalc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, src string) Expr {
	t.Helper()
	e, err := Parse(src)
	require.NoError(t, err, src)
	return e
}

func TestParse_Precedence(t *testing.T) {
	cases := map[string]string{
		"=1+2*3":     "(1+(2*3))",
		"=(1+2)*3":   "((1+2)*3)",
		"=2^3^2":     "(2^(3^2))",
		"=-2^2":      "-(2^2)",
		"=1+2=3":     "((1+2)=3)",
		"=1<2":       "(1<2)",
		"=1<>2":      "(1<>2)",
		`="a"&"b"&1`: `(("a"&"b")&1)`,
		"=1-2-3":     "((1-2)-3)",
		"=8/4/2":     "((8/4)/2)",
		`="x"&1+2`:   `("x"&(1+2))`,
		"=1+2<3*4":   "((1+2)<(3*4))",
		"=--3":       "--3",
		"=+A1":       "+A1",
	}
	for src, want := range cases {
		assert.Equal(t, want, mustParse(t, src).String(), src)
	}
}

func TestParse_LeadingEqualsOptional(t *testing.T) {
	withEq := mustParse(t, "=A1+1")
	without := mustParse(t, "A1+1")
	assert.Equal(t, withEq.String(), without.String())
}

func TestParse_References(t *testing.T) {
	e := mustParse(t, "=B2")
	ref, ok := e.(*RefExpr)
	require.True(t, ok)
	assert.Equal(t, Cell(1, 1), ref.Ref)

	e = mustParse(t, "=a1:b10")
	rng, ok := e.(*RangeExpr)
	require.True(t, ok)
	assert.Equal(t, Range(Cell(0, 0), Cell(1, 9)), rng.Range)

	// Reversed corners normalize at parse time.
	e = mustParse(t, "=B10:A1")
	rng, ok = e.(*RangeExpr)
	require.True(t, ok)
	assert.Equal(t, "A1:B10", rng.Range.String())
}

func TestParse_Calls(t *testing.T) {
	e := mustParse(t, "=sum(A1:A3, 5, B1*2)")
	call, ok := e.(*CallExpr)
	require.True(t, ok)
	assert.Equal(t, "SUM", call.Name)
	require.Len(t, call.Args, 3)
	assert.IsType(t, &RangeExpr{}, call.Args[0])

	e = mustParse(t, "=NOW()")
	call, ok = e.(*CallExpr)
	require.True(t, ok)
	assert.Empty(t, call.Args)

	e = mustParse(t, "=IF(A1>0, SUM(B1:B2), -1)")
	call = e.(*CallExpr)
	assert.Equal(t, "IF", call.Name)
	require.Len(t, call.Args, 3)
}

func TestParse_Booleans(t *testing.T) {
	assert.Equal(t, &BoolLit{Value: true}, mustParse(t, "=TRUE"))
	assert.Equal(t, &BoolLit{Value: false}, mustParse(t, "=false"))
	// TRUE followed by '(' is a call, not a literal.
	_, ok := mustParse(t, "=TRUE()").(*CallExpr)
	assert.True(t, ok)
}

func TestParse_Strings(t *testing.T) {
	e := mustParse(t, `="he said ""hi"""`)
	lit, ok := e.(*StringLit)
	require.True(t, ok)
	assert.Equal(t, `he said "hi"`, lit.Value)
}

func TestParse_Numbers(t *testing.T) {
	cases := map[string]float64{
		"=42":     42,
		"=3.14":   3.14,
		"=1e3":    1000,
		"=2.5E-1": 0.25,
		"=.5":     0.5,
	}
	for src, want := range cases {
		lit, ok := mustParse(t, src).(*NumberLit)
		require.True(t, ok, src)
		assert.Equal(t, want, lit.Value, src)
	}
}

func TestParse_SyntaxErrors(t *testing.T) {
	for _, src := range []string{
		"=", "", "=1+", "=(1+2", "=SUM(1,", "=SUM(1 2)", "=1 2", "=#", `="unterminated`,
		"=foo", "=1..2", "=A1:", "=A1:5",
	} {
		_, err := Parse(src)
		require.Error(t, err, src)
		var perr *ParseError
		require.ErrorAs(t, err, &perr, src)
		assert.Equal(t, SyntaxError, perr.Kind, src)
	}
}

func TestParse_OutOfRangeReference(t *testing.T) {
	for _, src := range []string{"=XFE1", "=A1048577", "=A1:XFE1", "=SUM(A1:B1048577)"} {
		_, err := Parse(src)
		require.Error(t, err, src)
		var perr *ParseError
		require.ErrorAs(t, err, &perr, src)
		assert.Equal(t, OutOfRange, perr.Kind, src)
	}
}

func TestParse_ErrorPositions(t *testing.T) {
	_, err := Parse("=1+*2")
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 2, perr.Pos)
}

func TestParse_WhitespaceTolerant(t *testing.T) {
	e := mustParse(t, "=  1 +   2 * SUM( A1 , A2 )  ")
	assert.Equal(t, "(1+(2*SUM(A1,A2)))", e.String())
}

func TestReads_CollectsCellsAndRanges(t *testing.T) {
	e := mustParse(t, "=A1 + SUM(B1:B10, C5) * -D2")
	cells, ranges := Reads(e)
	assert.ElementsMatch(t, []CellRef{Cell(0, 0), Cell(2, 4), Cell(3, 1)}, cells)
	require.Len(t, ranges, 1)
	assert.Equal(t, "B1:B10", ranges[0].String())
}

func TestReads_LiteralOnlyFormulaHasNone(t *testing.T) {
	cells, ranges := Reads(mustParse(t, `=1+2&"x"`))
	assert.Empty(t, cells)
	assert.Empty(t, ranges)
}
