// Package commit defines the declaration model for commit histories.
//
// A commit history arrives as an ordered sequence of declarations, each
// naming a commit identifier and the identifiers of its parents. The same
// identifier may be declared more than once; the last declaration wins,
// modeling redeclared or amended commit metadata. [History] resolves these
// overrides while remembering the order in which each distinct identifier
// was first seen, which downstream consumers use for stable node indexing.
package commit

import "slices"

// Declaration is a single commit record: an identifier plus the ordered
// identifiers of its parents. Identifiers are opaque tokens; the package
// assigns no numeric or lexicographic meaning to them. A commit with no
// parents (a root) has an empty or nil Parents slice.
type Declaration struct {
	ID      string   `json:"id" bson:"id"`
	Parents []string `json:"parents" bson:"parents"`
}

// History is an override-resolving collection of declarations.
//
// Adding a declaration for an identifier that is already present replaces
// its parent list entirely (last-write-wins), including replacement with an
// empty list. The first-insertion order of distinct identifiers is
// preserved and exposed through [History.IDs].
//
// The zero value is not usable; use [NewHistory].
type History struct {
	order   []string
	parents map[string][]string
}

// NewHistory returns an empty history.
func NewHistory() *History {
	return &History{parents: make(map[string][]string)}
}

// FromDeclarations builds a history from a declaration sequence in order,
// applying last-write-wins override semantics.
func FromDeclarations(decls []Declaration) *History {
	h := NewHistory()
	h.AddAll(decls)
	return h
}

// Add records a declaration. If the identifier was declared before, its
// previous parent list is discarded and the new one takes effect.
// The parent list is copied, so the caller may reuse the slice.
func (h *History) Add(d Declaration) {
	if _, seen := h.parents[d.ID]; !seen {
		h.order = append(h.order, d.ID)
	}
	h.parents[d.ID] = slices.Clone(d.Parents)
}

// AddAll records declarations in sequence order.
func (h *History) AddAll(decls []Declaration) {
	for _, d := range decls {
		h.Add(d)
	}
}

// Len returns the number of distinct declared identifiers.
func (h *History) Len() int { return len(h.order) }

// IDs returns the distinct declared identifiers in first-insertion order.
// The returned slice is a copy.
func (h *History) IDs() []string { return slices.Clone(h.order) }

// Declared reports whether id was declared as a commit (as opposed to
// appearing only inside some parent list).
func (h *History) Declared(id string) bool {
	_, ok := h.parents[id]
	return ok
}

// Parents returns the effective parent list for id after override
// resolution, or nil if id was never declared. The returned slice should
// be treated as read-only.
func (h *History) Parents(id string) []string { return h.parents[id] }

// Declarations returns the effective declaration sequence: one declaration
// per distinct identifier, in first-insertion order, carrying the
// parent list that survived override resolution.
func (h *History) Declarations() []Declaration {
	decls := make([]Declaration, len(h.order))
	for i, id := range h.order {
		decls[i] = Declaration{ID: id, Parents: slices.Clone(h.parents[id])}
	}
	return decls
}

// EdgeCount returns the total number of parent references across all
// effective declarations. Duplicate parents within one declaration count
// once per occurrence.
func (h *History) EdgeCount() int {
	total := 0
	for _, parents := range h.parents {
		total += len(parents)
	}
	return total
}
