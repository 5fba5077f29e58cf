package dag

import (
	"errors"
	"fmt"

	"github.com/jmalbrecht/histvet/pkg/commit"
)

var (
	// ErrInvalidNodeID is returned by [DAG.AddNode] when the node ID is
	// empty. All nodes must have non-empty identifiers.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [DAG.AddNode] when a node with the
	// same ID already exists in the graph. Override resolution happens in
	// [commit.History], not here.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownSourceNode is returned by [DAG.AddEdge] when the From node
	// does not exist in the graph.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [DAG.AddEdge] when the To node
	// does not exist in the graph.
	ErrUnknownTargetNode = errors.New("unknown target node")
)

// Policy controls how parent references to commits that were never declared
// are handled during graph construction.
type Policy int

const (
	// PolicyImplicit extends the node set: an undeclared parent becomes a
	// node of its own with no outgoing edges. This is the default and
	// matches histories truncated at a shallow-clone boundary, where the
	// oldest commits reference parents outside the fetched set.
	PolicyImplicit Policy = iota

	// PolicyStrict rejects the input: a parent reference to an undeclared
	// commit fails construction with a [DanglingParentError].
	PolicyStrict
)

// String returns the policy name as used in CLI flags and API requests.
func (p Policy) String() string {
	if p == PolicyStrict {
		return "strict"
	}
	return "implicit"
}

// ParsePolicy converts a policy name to a Policy. Accepted values are
// "implicit" and "strict"; the empty string means PolicyImplicit.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "", "implicit":
		return PolicyImplicit, nil
	case "strict":
		return PolicyStrict, nil
	}
	return PolicyImplicit, fmt.Errorf("invalid policy: %q (must be implicit or strict)", s)
}

// DanglingParentError reports a parent reference to a commit that was never
// declared. It is returned by [FromHistory] and [Check] under PolicyStrict.
type DanglingParentError struct {
	Child  string // declaring commit
	Parent string // referenced but undeclared commit
}

func (e *DanglingParentError) Error() string {
	return fmt.Sprintf("commit %q references undeclared parent %q", e.Child, e.Parent)
}

// NodeKind distinguishes declared commits from nodes synthesized for
// undeclared parents under [PolicyImplicit].
type NodeKind int

const (
	// NodeKindDeclared is a commit that appeared on the left-hand side of
	// at least one declaration.
	NodeKindDeclared NodeKind = iota
	// NodeKindImplicit is a node created for a parent identifier that was
	// only ever referenced, never declared. Implicit nodes have no
	// outgoing edges.
	NodeKindImplicit
)

// Node is a vertex in the commit graph.
type Node struct {
	ID   string
	Kind NodeKind
}

// IsImplicit reports whether the node was synthesized for an undeclared
// parent reference.
func (n Node) IsImplicit() bool { return n.Kind == NodeKindImplicit }

// DAG is a directed graph of commits. Edges point from a child commit to
// each of its parents, so a parent never has an edge back to its child.
// Parallel edges (a commit listing the same parent twice) are preserved.
//
// Despite the name, the structure itself does not forbid cycles; call
// [DAG.Acyclic] for the verdict. The zero value is not usable - use [New].
// A DAG is not safe for concurrent mutation, but independent goroutines may
// each build and check their own.
type DAG struct {
	nodes    map[string]*Node
	order    []string            // node IDs in insertion order; position = dense index
	index    map[string]int      // node ID -> dense index
	outgoing map[string][]string // child ID -> parent IDs, one entry per edge
	incoming map[string][]string // parent ID -> child IDs, one entry per edge
	edges    int
}

// New creates an empty commit graph.
func New() *DAG {
	return &DAG{
		nodes:    make(map[string]*Node),
		index:    make(map[string]int),
		outgoing: make(map[string][]string),
		incoming: make(map[string][]string),
	}
}

// FromHistory builds a graph from the effective declarations of a history.
// Declared commits become nodes in first-insertion order; each effective
// parent reference becomes one edge. Undeclared parents are handled per the
// policy: PolicyImplicit appends them as implicit nodes (after all declared
// nodes, in first-reference order), PolicyStrict fails with a
// [DanglingParentError] for the first dangling reference encountered.
func FromHistory(h *commit.History, policy Policy) (*DAG, error) {
	d := New()
	for _, id := range h.IDs() {
		if err := d.AddNode(Node{ID: id, Kind: NodeKindDeclared}); err != nil {
			return nil, err
		}
	}
	for _, id := range h.IDs() {
		for _, parent := range h.Parents(id) {
			if !h.Declared(parent) {
				if policy == PolicyStrict {
					return nil, &DanglingParentError{Child: id, Parent: parent}
				}
				if _, ok := d.nodes[parent]; !ok {
					if err := d.AddNode(Node{ID: parent, Kind: NodeKindImplicit}); err != nil {
						return nil, err
					}
				}
			}
			if err := d.AddEdge(id, parent); err != nil {
				return nil, err
			}
		}
	}
	return d, nil
}

// AddNode adds a node to the graph and assigns it the next dense index.
// Returns ErrInvalidNodeID for an empty ID or ErrDuplicateNodeID if the ID
// is already present.
func (d *DAG) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := d.nodes[n.ID]; exists {
		return ErrDuplicateNodeID
	}
	node := n
	d.nodes[node.ID] = &node
	d.index[node.ID] = len(d.order)
	d.order = append(d.order, node.ID)
	return nil
}

// AddEdge adds a directed child→parent edge between two existing nodes.
// Returns ErrUnknownSourceNode or ErrUnknownTargetNode if an endpoint is
// missing. Adding the same edge twice records two parallel edges.
func (d *DAG) AddEdge(from, to string) error {
	if _, ok := d.nodes[from]; !ok {
		return ErrUnknownSourceNode
	}
	if _, ok := d.nodes[to]; !ok {
		return ErrUnknownTargetNode
	}
	d.outgoing[from] = append(d.outgoing[from], to)
	d.incoming[to] = append(d.incoming[to], from)
	d.edges++
	return nil
}

// NodeCount returns the number of nodes, including implicit ones.
func (d *DAG) NodeCount() int { return len(d.order) }

// EdgeCount returns the number of edges, counting parallel edges separately.
func (d *DAG) EdgeCount() int { return d.edges }

// IDs returns all node IDs in insertion order (declared commits first, in
// first-declaration order, then implicit nodes in first-reference order).
// The returned slice is the graph's own index; treat it as read-only.
func (d *DAG) IDs() []string { return d.order }

// Node returns the node with the given ID, or false if absent.
func (d *DAG) Node(id string) (Node, bool) {
	n, ok := d.nodes[id]
	if !ok {
		return Node{}, false
	}
	return *n, true
}

// Parents returns the parent IDs the commit declares edges to, one entry
// per edge. Treat the result as a read-only view.
func (d *DAG) Parents(id string) []string { return d.outgoing[id] }

// Children returns the IDs of commits declaring this node as a parent,
// one entry per edge. Treat the result as a read-only view.
func (d *DAG) Children(id string) []string { return d.incoming[id] }

// OutDegree returns the number of outgoing (child→parent) edges.
func (d *DAG) OutDegree(id string) int { return len(d.outgoing[id]) }

// InDegree returns the number of incoming edges, counting parallel edges.
func (d *DAG) InDegree(id string) int { return len(d.incoming[id]) }

// Heads returns nodes with no incoming edges: commits no other commit in
// the set declares as a parent. In a valid history these are branch tips.
func (d *DAG) Heads() []Node {
	var heads []Node
	for _, id := range d.order {
		if len(d.incoming[id]) == 0 {
			heads = append(heads, *d.nodes[id])
		}
	}
	return heads
}

// Roots returns nodes with no outgoing edges: commits declaring no parents,
// plus any implicit nodes.
func (d *DAG) Roots() []Node {
	var roots []Node
	for _, id := range d.order {
		if len(d.outgoing[id]) == 0 {
			roots = append(roots, *d.nodes[id])
		}
	}
	return roots
}
