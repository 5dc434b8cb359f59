package depgraph

import (
	"cmp"
	"slices"
)

// Kind classifies how a dependency is consumed by the package that pulls
// it in. The zero value is KindNormal.
type Kind int

const (
	// KindNormal is a plain runtime dependency.
	KindNormal Kind = iota
	// KindOptional is a dependency gated behind a feature flag.
	KindOptional
	// KindDev is a dependency used only for tests, examples or benchmarks.
	KindDev
	// KindBuild is a dependency of build scripts.
	KindBuild
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindBuild:
		return "build"
	case KindDev:
		return "dev"
	case KindOptional:
		return "optional"
	default:
		return "normal"
	}
}

// ParseKind maps a kind name back to its Kind. Unrecognized names map
// to KindNormal.
func ParseKind(s string) Kind {
	switch s {
	case "build":
		return KindBuild
	case "dev":
		return KindDev
	case "optional":
		return KindOptional
	default:
		return KindNormal
	}
}

// Dep is a resolved dependency occupying one slot in the graph.
// Two deps denote the same node exactly when name and version both match.
type Dep struct {
	Name    string
	Version string
	Kind    Kind
}

// Edge is a directed parent→child connection between two slots.
// Endpoints reference current slots and are rewritten whenever a
// removal renumbers the node sequence.
type Edge struct {
	Parent int
	Child  int
}

// DepGraph accumulates dependency nodes and edges during resolution and
// destructively finalizes them for rendering. The zero value is not
// usable; call New.
type DepGraph struct {
	nodes []Dep
	edges []Edge
	cfg   *Config
	final bool
}

// New creates an empty graph using the given rendering configuration.
// A nil cfg gets the defaults from DefaultConfig. The configuration is
// borrowed read-only for the lifetime of the graph.
func New(cfg *Config) *DepGraph {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &DepGraph{cfg: cfg}
}

// Find returns the slot of the node matching (name, version), or false
// when no such node exists. Lookup is a linear scan in slot order, so
// the first inserted match wins; duplicates never occur because all
// insertion goes through FindOrAdd.
func (g *DepGraph) Find(name, version string) (int, bool) {
	for slot, d := range g.nodes {
		if d.Name == name && d.Version == version {
			return slot, true
		}
	}
	return 0, false
}

// FindOrAdd returns the slot of the node matching (name, version),
// appending a new node when none exists. Repeated calls with the same
// arguments return the same slot as long as no removal happens in
// between.
func (g *DepGraph) FindOrAdd(name, version string) int {
	if slot, ok := g.Find(name, version); ok {
		return slot
	}
	g.nodes = append(g.nodes, Dep{Name: name, Version: version})
	return len(g.nodes) - 1
}

// AddChild ensures a node for (name, version) exists and appends an
// edge from parent to it, returning the child slot. The parent slot is
// not validated; edges with stale endpoints are dropped during
// finalization.
func (g *DepGraph) AddChild(parent int, name, version string) int {
	child := g.FindOrAdd(name, version)
	g.edges = append(g.edges, Edge{Parent: parent, Child: child})
	return child
}

// MarkKind records how the dependency at slot is consumed. A node only
// ever moves to a stronger kind (build over dev over optional over
// normal); weaker marks are ignored. Out-of-range slots are a no-op.
func (g *DepGraph) MarkKind(slot int, kind Kind) {
	if slot < 0 || slot >= len(g.nodes) {
		return
	}
	if kind > g.nodes[slot].Kind {
		g.nodes[slot].Kind = kind
	}
}

// SetRoot moves the node matching (name, version) into slot 0 and
// reports whether it was found. The move is a pure transposition: the
// two nodes swap slots and every edge endpoint equal to either slot is
// rewritten to the other. Failure leaves the graph untouched so the
// caller can keep insertion order instead.
func (g *DepGraph) SetRoot(name, version string) bool {
	slot, ok := g.Find(name, version)
	if !ok {
		return false
	}
	if slot == 0 {
		return true
	}

	g.nodes[0], g.nodes[slot] = g.nodes[slot], g.nodes[0]

	for i := range g.edges {
		e := &g.edges[i]
		switch e.Parent {
		case 0:
			e.Parent = slot
		case slot:
			e.Parent = 0
		}
		switch e.Child {
		case 0:
			e.Child = slot
		case slot:
			e.Child = 0
		}
	}
	return true
}

// Node returns a copy of the dependency at slot and true, or a zero Dep
// and false when slot is out of range.
func (g *DepGraph) Node(slot int) (Dep, bool) {
	if slot < 0 || slot >= len(g.nodes) {
		return Dep{}, false
	}
	return g.nodes[slot], true
}

// Nodes returns a copy of all nodes in slot order.
func (g *DepGraph) Nodes() []Dep { return slices.Clone(g.nodes) }

// Edges returns a copy of all edges in insertion order.
func (g *DepGraph) Edges() []Edge { return slices.Clone(g.edges) }

// NodeCount returns the number of nodes in the graph.
func (g *DepGraph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges in the graph.
func (g *DepGraph) EdgeCount() int { return len(g.edges) }

// Remove deletes the node at slot together with every edge touching it,
// then renumbers: every remaining edge endpoint greater than slot is
// decremented so the node sequence stays contiguous. Slots held by the
// caller from before the call are invalid afterwards. Out-of-range
// slots are a no-op.
func (g *DepGraph) Remove(slot int) {
	if slot < 0 || slot >= len(g.nodes) {
		return
	}
	g.nodes = slices.Delete(g.nodes, slot, slot+1)

	kept := g.edges[:0]
	for _, e := range g.edges {
		if e.Parent == slot || e.Child == slot {
			continue
		}
		if e.Parent > slot {
			e.Parent--
		}
		if e.Child > slot {
			e.Child--
		}
		kept = append(kept, e)
	}
	g.edges = kept
}

// DedupEdges sorts edges by (parent, child) and collapses duplicates.
// Resolvers may report the same dependency relation more than once;
// after this call every edge pair is unique.
func (g *DepGraph) DedupEdges() {
	slices.SortFunc(g.edges, func(a, b Edge) int {
		if c := cmp.Compare(a.Parent, b.Parent); c != 0 {
			return c
		}
		return cmp.Compare(a.Child, b.Child)
	})
	g.edges = slices.Compact(g.edges)
}

// RemoveOrphans prunes nodes that are neither the root (slot 0) nor the
// destination of any edge, repeating until no such node remains. Each
// pass marks slot 0 and every edge child as used, then removes all
// unused nodes; removals can strand further nodes, hence the loop. Any
// edge with an out-of-range endpoint is dropped up front.
func (g *DepGraph) RemoveOrphans() {
	if len(g.nodes) == 0 {
		g.edges = g.edges[:0]
		return
	}
	g.edges = slices.DeleteFunc(g.edges, func(e Edge) bool {
		return e.Parent < 0 || e.Parent >= len(g.nodes) || e.Child < 0 || e.Child >= len(g.nodes)
	})

	for {
		used := make([]bool, len(g.nodes))
		used[0] = true
		for _, e := range g.edges {
			used[e.Child] = true
		}

		removed := false
		// Descending order keeps the remaining marks aligned with
		// their slots while earlier nodes are still unprocessed.
		for slot := len(g.nodes) - 1; slot > 0; slot-- {
			if !used[slot] {
				g.Remove(slot)
				removed = true
			}
		}
		if !removed {
			return
		}
	}
}

// RemoveSelfLoops drops every edge whose parent and child are the same
// slot. Nodes are left untouched.
func (g *DepGraph) RemoveSelfLoops() {
	g.edges = slices.DeleteFunc(g.edges, func(e Edge) bool {
		return e.Parent == e.Child
	})
}
