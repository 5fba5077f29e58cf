// Package dag models commit histories as directed graphs and decides
// whether they are acyclic.
//
// The intended flow is declaration sequence → [commit.History] (override
// resolution) → [FromHistory] (graph construction under a dangling-parent
// [Policy]) → [DAG.Acyclic] (Kahn's-algorithm verdict). The convenience
// functions [IsAcyclic] and [Check] run the whole chain in one call:
//
//	decls := []commit.Declaration{
//	    {ID: "root"},
//	    {ID: "feat", Parents: []string{"root"}},
//	}
//	if !dag.IsAcyclic(decls) {
//	    // reject the history
//	}
//
// Edges point from a child commit to each declared parent. The verdict is
// a plain boolean: the package does not report which commits participate
// in a cycle, and it does not produce a topological order.
//
// Every check builds its own graph and discards it, so concurrent checks
// need no synchronization.
package dag
