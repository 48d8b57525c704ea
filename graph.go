package xlcalc

// depGraph tracks which cells each formula reads. An edge A→B means
// "A reads B". Nodes exist only for cells that currently hold a
// formula; literal cells appear solely as edge targets.
//
// Range reads are kept as interval watches rather than being expanded
// into one edge per covered cell. Containment tests make dependents,
// transitive closure, and cycle checks behave exactly as if every
// covered cell had its own edge, including cells written into the
// range after the formula was committed, without the per-cell memory.
//
// Invariants: the edge set always reflects the current formula of
// every node (no stale edges survive a content change), and the graph
// is acyclic after every mutation. updateEdges enforces both by
// staging: the cycle check runs against the proposed edge set before
// anything is mutated, so a rejected update leaves no trace.
type depGraph struct {
	reads   map[CellRef]map[CellRef]struct{}  // node -> cells it reads
	readers map[CellRef]map[CellRef]struct{}  // cell -> nodes reading it
	ranges  map[CellRef][]RangeRef            // node -> ranges it reads
	watches map[RangeRef]map[CellRef]struct{} // range -> nodes reading it
}

func newDepGraph() *depGraph {
	return &depGraph{
		reads:   make(map[CellRef]map[CellRef]struct{}),
		readers: make(map[CellRef]map[CellRef]struct{}),
		ranges:  make(map[CellRef][]RangeRef),
		watches: make(map[RangeRef]map[CellRef]struct{}),
	}
}

// updateEdges atomically replaces every edge sourced at addr with the
// given read set. If the new edges would close a cycle the graph is
// left untouched and a *CycleError naming the cycle path is returned.
func (g *depGraph) updateEdges(addr CellRef, cells []CellRef, rangeRefs []RangeRef) *CycleError {
	newReads := make(map[CellRef]struct{}, len(cells))
	for _, c := range cells {
		newReads[c] = struct{}{}
	}

	// Direct self-reference, through a cell or a containing range.
	if _, ok := newReads[addr]; ok {
		return &CycleError{Path: []CellRef{addr, addr}}
	}
	for _, r := range rangeRefs {
		if r.Contains(addr) {
			return &CycleError{Path: []CellRef{addr, addr}}
		}
	}

	// Staged reachability check: would addr become reachable from any
	// new target through the existing graph? addr's own outgoing edges
	// cannot be part of such a path (the search stops at addr), so the
	// check is valid before the old edges are removed.
	nodes := g.allNodes()
	for target := range newReads {
		if path := g.pathTo(target, addr, nodes); path != nil {
			return &CycleError{Path: append([]CellRef{addr}, path...)}
		}
	}
	for _, r := range rangeRefs {
		for node := range nodes {
			if !r.Contains(node) {
				continue
			}
			if path := g.pathTo(node, addr, nodes); path != nil {
				return &CycleError{Path: append([]CellRef{addr}, path...)}
			}
		}
	}

	// Commit: drop the old edge set, then install the new one.
	g.removeNode(addr)
	if len(newReads) > 0 {
		g.reads[addr] = newReads
		for target := range newReads {
			if g.readers[target] == nil {
				g.readers[target] = make(map[CellRef]struct{})
			}
			g.readers[target][addr] = struct{}{}
		}
	}
	if len(rangeRefs) > 0 {
		g.ranges[addr] = append([]RangeRef(nil), rangeRefs...)
		for _, r := range rangeRefs {
			if g.watches[r] == nil {
				g.watches[r] = make(map[CellRef]struct{})
			}
			g.watches[r][addr] = struct{}{}
		}
	}
	return nil
}

// removeNode drops every edge sourced at addr. Edges pointing at addr
// belong to other nodes and are untouched.
func (g *depGraph) removeNode(addr CellRef) {
	for target := range g.reads[addr] {
		delete(g.readers[target], addr)
		if len(g.readers[target]) == 0 {
			delete(g.readers, target)
		}
	}
	delete(g.reads, addr)

	for _, r := range g.ranges[addr] {
		delete(g.watches[r], addr)
		if len(g.watches[r]) == 0 {
			delete(g.watches, r)
		}
	}
	delete(g.ranges, addr)
}

// pathTo searches for a read path from start to goal and returns it
// (start first, goal last), or nil if goal is unreachable. Successors
// of a node are its explicit reads plus, for each watched range, the
// goal if covered and any formula nodes inside the range.
func (g *depGraph) pathTo(start, goal CellRef, nodes map[CellRef]struct{}) []CellRef {
	if start == goal {
		return []CellRef{goal}
	}
	visited := map[CellRef]struct{}{}
	var dfs func(cur CellRef) []CellRef
	dfs = func(cur CellRef) []CellRef {
		if _, seen := visited[cur]; seen {
			return nil
		}
		visited[cur] = struct{}{}

		if _, ok := g.reads[cur][goal]; ok {
			return []CellRef{cur, goal}
		}
		for _, r := range g.ranges[cur] {
			if r.Contains(goal) {
				return []CellRef{cur, goal}
			}
		}
		for next := range g.reads[cur] {
			if path := dfs(next); path != nil {
				return append([]CellRef{cur}, path...)
			}
		}
		for _, r := range g.ranges[cur] {
			for node := range nodes {
				if !r.Contains(node) {
					continue
				}
				if path := dfs(node); path != nil {
					return append([]CellRef{cur}, path...)
				}
			}
		}
		return nil
	}
	return dfs(start)
}

// allNodes returns the set of formula nodes (cells with outgoing
// edges or range watches).
func (g *depGraph) allNodes() map[CellRef]struct{} {
	nodes := make(map[CellRef]struct{}, len(g.reads)+len(g.ranges))
	for n := range g.reads {
		nodes[n] = struct{}{}
	}
	for n := range g.ranges {
		nodes[n] = struct{}{}
	}
	return nodes
}

// dependentsOf returns the direct readers of addr: nodes with an
// explicit edge to it plus nodes watching a range that covers it.
func (g *depGraph) dependentsOf(addr CellRef) map[CellRef]struct{} {
	out := make(map[CellRef]struct{}, len(g.readers[addr]))
	for reader := range g.readers[addr] {
		out[reader] = struct{}{}
	}
	for r, watchers := range g.watches {
		if !r.Contains(addr) {
			continue
		}
		for w := range watchers {
			out[w] = struct{}{}
		}
	}
	return out
}

// transitiveDependents returns the full downstream closure of addr,
// excluding addr itself. The visited set keeps diamond-shaped fan-in
// from causing revisits.
func (g *depGraph) transitiveDependents(addr CellRef) map[CellRef]struct{} {
	closure := make(map[CellRef]struct{})
	queue := []CellRef{addr}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for dep := range g.dependentsOf(cur) {
			if _, seen := closure[dep]; seen {
				continue
			}
			closure[dep] = struct{}{}
			queue = append(queue, dep)
		}
	}
	delete(closure, addr)
	return closure
}

// readsOf reports the explicit cells and ranges addr reads. The
// scheduler uses this to restrict Kahn's algorithm to the dirty set.
func (g *depGraph) readsOf(addr CellRef) (map[CellRef]struct{}, []RangeRef) {
	return g.reads[addr], g.ranges[addr]
}

// isNode reports whether addr currently holds edges in the graph.
func (g *depGraph) isNode(addr CellRef) bool {
	if _, ok := g.reads[addr]; ok {
		return true
	}
	_, ok := g.ranges[addr]
	return ok
}
