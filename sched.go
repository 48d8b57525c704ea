package xlcalc

import "sort"

// schedPhase tracks where a recalculation pass is. The scheduler
// cycles Idle → Marking → Ordering → Executing → Idle; the phase is
// observable for tests and diagnostics.
type schedPhase uint8

const (
	phaseIdle schedPhase = iota
	phaseMarking
	phaseOrdering
	phaseExecuting
)

// PassStats reports what one recalculation pass did.
type PassStats struct {
	// Evaluated is the number of evaluator invocations: each dirty
	// formula cell is evaluated exactly once per pass.
	Evaluated int
	// Cleared is the number of cells removed from the dirty set,
	// including literal cells that needed no evaluation.
	Cleared int
}

// scheduler owns the dirty set and drives recalculation passes.
type scheduler struct {
	dirty map[CellRef]struct{}
	phase schedPhase
}

func newScheduler() *scheduler {
	return &scheduler{dirty: make(map[CellRef]struct{}), phase: phaseIdle}
}

// mark inserts an edited address and all its transitive dependents
// into the dirty set.
func (sc *scheduler) mark(addr CellRef, g *depGraph) {
	sc.phase = phaseMarking
	sc.dirty[addr] = struct{}{}
	for dep := range g.transitiveDependents(addr) {
		sc.dirty[dep] = struct{}{}
	}
	sc.phase = phaseIdle
}

// run executes one recalculation pass: topologically order the dirty
// set's induced subgraph (Kahn's algorithm), then evaluate each dirty
// formula cell once, writing results back and clearing dirty flags.
// With an empty dirty set this is a no-op with zero evaluations.
//
// The pass cannot fail: evaluation problems become error values that
// are written like any other result.
func (sc *scheduler) run(st *store, g *depGraph, reg Registry) PassStats {
	var stats PassStats
	if len(sc.dirty) == 0 {
		return stats
	}

	sc.phase = phaseOrdering
	order := sc.order(g)

	sc.phase = phaseExecuting
	for _, addr := range order {
		if fc, ok := st.formula(addr); ok {
			st.setValue(addr, evalExpr(fc.expr, st, reg))
			stats.Evaluated++
		}
		// Removal from the dirty set happens only after the value is
		// current: either just recomputed, or a literal that was never
		// stale.
		delete(sc.dirty, addr)
		stats.Cleared++
	}

	sc.phase = phaseIdle
	return stats
}

// order computes a topological order of the dirty set restricted to
// its induced subgraph. Among simultaneously ready cells the lowest
// address (row-major) goes first, making passes deterministic and
// reproducible. Acyclicity of the full graph guarantees termination
// with every dirty cell covered exactly once.
func (sc *scheduler) order(g *depGraph) []CellRef {
	dirty := make([]CellRef, 0, len(sc.dirty))
	for addr := range sc.dirty {
		dirty = append(dirty, addr)
	}
	sort.Slice(dirty, func(i, j int) bool { return dirty[i].Less(dirty[j]) })

	// Induced-subgraph adjacency: succ[p] lists dirty readers of p,
	// indegree[d] counts dirty cells d reads (directly or via range).
	indegree := make(map[CellRef]int, len(dirty))
	succ := make(map[CellRef][]CellRef, len(dirty))
	for _, d := range dirty {
		cells, ranges := g.readsOf(d)
		for _, p := range dirty {
			if p == d {
				continue
			}
			isPrecedent := false
			if _, ok := cells[p]; ok {
				isPrecedent = true
			} else {
				for _, r := range ranges {
					if r.Contains(p) {
						isPrecedent = true
						break
					}
				}
			}
			if isPrecedent {
				indegree[d]++
				succ[p] = append(succ[p], d)
			}
		}
	}

	// ready stays sorted; dirty was sorted on entry so initial fill
	// preserves address order.
	var ready []CellRef
	for _, d := range dirty {
		if indegree[d] == 0 {
			ready = append(ready, d)
		}
	}

	order := make([]CellRef, 0, len(dirty))
	for len(ready) > 0 {
		next := ready[0]
		ready = ready[1:]
		order = append(order, next)
		for _, d := range succ[next] {
			indegree[d]--
			if indegree[d] == 0 {
				ready = insertSorted(ready, d)
			}
		}
	}
	return order
}

// insertSorted inserts addr into a slice kept in ascending address
// order.
func insertSorted(refs []CellRef, addr CellRef) []CellRef {
	i := sort.Search(len(refs), func(i int) bool { return addr.Less(refs[i]) })
	refs = append(refs, CellRef{})
	copy(refs[i+1:], refs[i:])
	refs[i] = addr
	return refs
}
