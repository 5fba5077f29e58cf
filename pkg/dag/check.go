package dag

import "github.com/jmalbrecht/histvet/pkg/commit"

// Acyclic reports whether the graph contains no directed cycle.
//
// The check runs Kahn's algorithm: compute per-node in-degrees (parallel
// edges each count), seed a FIFO queue with zero-in-degree nodes in
// ascending index order, and repeatedly pop a node while decrementing the
// in-degree of every edge target. The graph is acyclic iff every node gets
// visited; any shortfall means some node never reached in-degree zero,
// which only happens inside or downstream of a cycle.
//
// Runs in O(N+E) time and space with no recursion, so it is safe for
// histories with millions of commits. An empty graph is vacuously acyclic.
func (d *DAG) Acyclic() bool {
	n := len(d.order)
	if n == 0 {
		return true
	}

	inDegree := make([]int, n)
	for _, id := range d.order {
		for _, parent := range d.outgoing[id] {
			inDegree[d.index[parent]]++
		}
	}

	// Ring-free FIFO: every node is appended at most once per in-degree
	// drop to zero, so a plain slice with a head cursor suffices.
	queue := make([]int, 0, n)
	for idx := 0; idx < n; idx++ {
		if inDegree[idx] == 0 {
			queue = append(queue, idx)
		}
	}

	visited := 0
	for head := 0; head < len(queue); head++ {
		idx := queue[head]
		visited++
		for _, parent := range d.outgoing[d.order[idx]] {
			pidx := d.index[parent]
			inDegree[pidx]--
			if inDegree[pidx] == 0 {
				queue = append(queue, pidx)
			}
		}
	}

	return visited == n
}

// IsAcyclic reports whether the declaration sequence describes an acyclic
// commit graph. Duplicate declarations are resolved last-write-wins before
// the check, and undeclared parents are treated as implicit nodes
// ([PolicyImplicit]). The verdict does not depend on declaration order.
func IsAcyclic(decls []commit.Declaration) bool {
	ok, _ := Check(decls, PolicyImplicit)
	return ok
}

// Check validates a declaration sequence under an explicit dangling-parent
// policy. It returns the acyclicity verdict, or an error if construction
// fails - under [PolicyStrict] a reference to an undeclared parent yields a
// [DanglingParentError]. A cyclic graph is a false verdict, not an error.
//
// Check is pure: it builds a fresh graph per call and shares no state, so
// concurrent calls from independent goroutines are safe.
func Check(decls []commit.Declaration, policy Policy) (bool, error) {
	return CheckHistory(commit.FromDeclarations(decls), policy)
}

// CheckHistory is [Check] for a pre-built history.
func CheckHistory(h *commit.History, policy Policy) (bool, error) {
	d, err := FromHistory(h, policy)
	if err != nil {
		return false, err
	}
	return d.Acyclic(), nil
}
