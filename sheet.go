package xlcalc

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Sheet combines the columnar store, the dependency graph, and the
// recalculation scheduler behind a single-writer/multi-reader API.
// Mutations take the write lock; Get and ResolveRange take the read
// lock, so readers observe either the pre-edit state or the fully
// recalculated one, never a half-recomputed sheet.
type Sheet struct {
	mu    sync.RWMutex
	store *store
	graph *depGraph
	sched *scheduler
	reg   Registry

	autoRecalc bool
}

// NewSheet creates an empty sheet. With no options it uses a fresh
// registry with the built-in operations and requires an explicit
// Recalculate after edits.
func NewSheet(opts ...Option) *Sheet {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	reg := o.registry
	if reg == nil {
		reg = NewRegistry()
	}
	return &Sheet{
		store:      newStore(),
		graph:      newDepGraph(),
		sched:      newScheduler(),
		reg:        reg,
		autoRecalc: o.autoRecalc,
	}
}

// Get returns the cell's current value; Empty for never-written
// cells. It never fails.
func (s *Sheet) Get(ref CellRef) Value {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.get(ref)
}

// GetA1 is Get with an A1-style address.
func (s *Sheet) GetA1(addr string) (Value, error) {
	ref, err := ParseCellRef(addr)
	if err != nil {
		return Empty, err
	}
	return s.Get(ref), nil
}

// ResolveRange returns the range's values in row-major order.
func (s *Sheet) ResolveRange(r RangeRef) []Value {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.resolveRange(r)
}

// Formula returns the source text of the formula stored at ref, or
// ok=false if the cell holds no formula.
func (s *Sheet) Formula(ref CellRef) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fc, ok := s.store.formula(ref)
	return fc.src, ok
}

// SetLiteral replaces the cell's content with a literal value. Any
// prior formula and its outgoing edges are dropped, and the cell's
// dependents are marked dirty.
func (s *Sheet) SetLiteral(ref CellRef, v Value) error {
	if !ref.InGrid() {
		return fmt.Errorf("cell %s outside grid", ref)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.graph.removeNode(ref)
	s.store.setLiteral(ref, v)
	s.sched.mark(ref, s.graph)

	if s.autoRecalc {
		s.sched.run(s.store, s.graph, s.reg)
	}
	return nil
}

// SetFormula parses src and replaces the cell's content with the
// formula. The change is transactional: on a parse error or a
// rejected cycle, neither the cell's prior content nor the dependency
// graph is modified, and the error (*ParseError or *CycleError) is
// returned for the caller to surface.
func (s *Sheet) SetFormula(ref CellRef, src string) error {
	if !ref.InGrid() {
		return fmt.Errorf("cell %s outside grid", ref)
	}
	expr, err := Parse(src)
	if err != nil {
		return err
	}
	cells, ranges := Reads(expr)

	s.mu.Lock()
	defer s.mu.Unlock()

	if cycleErr := s.graph.updateEdges(ref, cells, ranges); cycleErr != nil {
		return cycleErr
	}
	s.store.setFormula(ref, expr, normalizeFormula(src))
	s.sched.mark(ref, s.graph)

	if s.autoRecalc {
		s.sched.run(s.store, s.graph, s.reg)
	}
	return nil
}

// SetA1 sets a cell by A1 address: strings starting with '=' are
// formulas, everything else is stored as the given literal.
func (s *Sheet) SetA1(addr string, v Value) error {
	ref, err := ParseCellRef(addr)
	if err != nil {
		return err
	}
	if v.Kind() == KindText && strings.HasPrefix(v.Str(), "=") {
		return s.SetFormula(ref, v.Str())
	}
	return s.SetLiteral(ref, v)
}

// SetBatch applies several literal writes in one locked section.
func (s *Sheet) SetBatch(literals map[CellRef]Value) error {
	refs := make([]CellRef, 0, len(literals))
	for ref := range literals {
		if !ref.InGrid() {
			return fmt.Errorf("cell %s outside grid", ref)
		}
		refs = append(refs, ref)
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Less(refs[j]) })

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ref := range refs {
		s.graph.removeNode(ref)
		s.store.setLiteral(ref, literals[ref])
		s.sched.mark(ref, s.graph)
	}
	if s.autoRecalc {
		s.sched.run(s.store, s.graph, s.reg)
	}
	return nil
}

// Clear removes the cell's content entirely, as if it had never been
// written. Dependent formulas see Empty and are marked dirty.
func (s *Sheet) Clear(ref CellRef) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.graph.removeNode(ref)
	s.store.clear(ref)
	s.sched.mark(ref, s.graph)
	if s.autoRecalc {
		s.sched.run(s.store, s.graph, s.reg)
	}
}

// Recalculate runs one pass: order the dirty set topologically,
// evaluate every dirty formula once, write results back, clear dirty
// flags. The pass is atomic with respect to readers and always
// terminates; evaluation failures are stored as error values.
func (s *Sheet) Recalculate() PassStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sched.run(s.store, s.graph, s.reg)
}

// DirtyCount reports how many cells await recalculation.
func (s *Sheet) DirtyCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sched.dirty)
}

// Dependents returns the direct readers of ref, sorted by address.
func (s *Sheet) Dependents(ref CellRef) []CellRef {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedRefs(s.graph.dependentsOf(ref))
}

// TransitiveDependents returns everything downstream of ref, sorted
// by address.
func (s *Sheet) TransitiveDependents(ref CellRef) []CellRef {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedRefs(s.graph.transitiveDependents(ref))
}

// Each calls fn for every written cell with its current value and,
// for formula cells, the formula source text. Iteration order is
// unspecified; fn must not call back into the sheet.
func (s *Sheet) Each(fn func(ref CellRef, v Value, formula string)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.store.each(func(ref CellRef, v Value) {
		var src string
		if fc, ok := s.store.formula(ref); ok {
			src = fc.src
		}
		fn(ref, v, src)
	})
}

// ColumnStats scans one column's numeric cells sequentially.
func (s *Sheet) ColumnStats(col int) Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.columnStats(col)
}

// UsedRows returns one past the highest written row of a column.
func (s *Sheet) UsedRows(col int) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.highWater(col)
}

// Registry exposes the sheet's operation registry, for registering
// user-defined operations.
func (s *Sheet) Registry() Registry {
	return s.reg
}

func sortedRefs(set map[CellRef]struct{}) []CellRef {
	refs := make([]CellRef, 0, len(set))
	for ref := range set {
		refs = append(refs, ref)
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Less(refs[j]) })
	return refs
}

// normalizeFormula stores formula source with a single leading '='.
func normalizeFormula(src string) string {
	return "=" + strings.TrimPrefix(strings.TrimSpace(src), "=")
}
