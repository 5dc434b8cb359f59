package depgraph

import (
	"slices"
	"testing"
)

func TestFindOrAdd(t *testing.T) {
	g := New(nil)

	first := g.FindOrAdd("serde", "1.0.0")
	second := g.FindOrAdd("serde", "1.0.0")

	if first != second {
		t.Errorf("FindOrAdd() = %d then %d, want same slot", first, second)
	}
	if g.NodeCount() != 1 {
		t.Errorf("nodes = %d, want 1", g.NodeCount())
	}

	other := g.FindOrAdd("serde", "2.0.0")
	if other == first {
		t.Error("FindOrAdd() reused slot for a different version")
	}
	if g.NodeCount() != 2 {
		t.Errorf("nodes = %d, want 2", g.NodeCount())
	}
}

func TestFind(t *testing.T) {
	g := New(nil)
	g.FindOrAdd("libc", "0.2.0")

	if slot, ok := g.Find("libc", "0.2.0"); !ok || slot != 0 {
		t.Errorf("Find() = %d, %v, want 0, true", slot, ok)
	}
	if _, ok := g.Find("libc", "0.3.0"); ok {
		t.Error("Find() matched a version that was never added")
	}
	if _, ok := g.Find("missing", "0.2.0"); ok {
		t.Error("Find() matched a name that was never added")
	}
}

func TestAddChild(t *testing.T) {
	g := New(nil)
	root := g.FindOrAdd("app", "1.0.0")

	child := g.AddChild(root, "log", "0.4.0")
	again := g.AddChild(root, "log", "0.4.0")

	if child != again {
		t.Errorf("AddChild() = %d then %d, want same slot", child, again)
	}
	if g.NodeCount() != 2 {
		t.Errorf("nodes = %d, want 2", g.NodeCount())
	}
	// Duplicate edges are kept until finalization collapses them.
	if g.EdgeCount() != 2 {
		t.Errorf("edges = %d, want 2", g.EdgeCount())
	}
}

func TestMarkKind(t *testing.T) {
	tests := []struct {
		name  string
		marks []Kind
		want  Kind
	}{
		{name: "Unmarked", marks: nil, want: KindNormal},
		{name: "Single", marks: []Kind{KindDev}, want: KindDev},
		{name: "Upgrades", marks: []Kind{KindOptional, KindBuild}, want: KindBuild},
		{name: "IgnoresWeaker", marks: []Kind{KindBuild, KindDev}, want: KindBuild},
		{name: "DevOverOptional", marks: []Kind{KindDev, KindOptional}, want: KindDev},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New(nil)
			slot := g.FindOrAdd("rand", "0.8.0")
			for _, k := range tt.marks {
				g.MarkKind(slot, k)
			}
			if d, _ := g.Node(slot); d.Kind != tt.want {
				t.Errorf("kind = %v, want %v", d.Kind, tt.want)
			}
		})
	}
}

func TestMarkKindOutOfRange(t *testing.T) {
	g := New(nil)
	g.MarkKind(3, KindBuild) // must not panic
	if g.NodeCount() != 0 {
		t.Errorf("nodes = %d, want 0", g.NodeCount())
	}
}

// edgeNames maps edges to "parent->child" name pairs so structure can be
// compared independently of slot numbering.
func edgeNames(g *DepGraph) []string {
	var pairs []string
	nodes := g.Nodes()
	for _, e := range g.Edges() {
		pairs = append(pairs, nodes[e.Parent].Name+"->"+nodes[e.Child].Name)
	}
	slices.Sort(pairs)
	return pairs
}

func TestSetRoot(t *testing.T) {
	build := func() *DepGraph {
		g := New(nil)
		a := g.FindOrAdd("a", "1")
		b := g.AddChild(a, "b", "1")
		g.AddChild(b, "c", "1")
		g.AddChild(a, "c", "1")
		return g
	}

	t.Run("Missing", func(t *testing.T) {
		g := build()
		if g.SetRoot("zzz", "1") {
			t.Error("SetRoot() = true for absent node")
		}
		if d, _ := g.Node(0); d.Name != "a" {
			t.Errorf("slot 0 = %s, want a (untouched)", d.Name)
		}
	})

	t.Run("AlreadyRoot", func(t *testing.T) {
		g := build()
		if !g.SetRoot("a", "1") {
			t.Fatal("SetRoot() = false, want true")
		}
		if d, _ := g.Node(0); d.Name != "a" {
			t.Errorf("slot 0 = %s, want a", d.Name)
		}
	})

	t.Run("Swap", func(t *testing.T) {
		g := build()
		before := edgeNames(g)

		if !g.SetRoot("c", "1") {
			t.Fatal("SetRoot() = false, want true")
		}
		if d, _ := g.Node(0); d.Name != "c" {
			t.Errorf("slot 0 = %s, want c", d.Name)
		}
		if after := edgeNames(g); !slices.Equal(before, after) {
			t.Errorf("edges changed structurally: %v, want %v", after, before)
		}
	})
}

func TestRemove(t *testing.T) {
	tests := []struct {
		name      string
		remove    int
		wantNames []string
		wantEdges []Edge
	}{
		{
			name:      "Middle",
			remove:    1,
			wantNames: []string{"a", "c"},
			wantEdges: []Edge{{0, 1}, {1, 1}},
		},
		{
			name:      "Root",
			remove:    0,
			wantNames: []string{"b", "c"},
			wantEdges: []Edge{{0, 1}, {1, 1}},
		},
		{
			name:      "Last",
			remove:    2,
			wantNames: []string{"a", "b"},
			wantEdges: []Edge{{0, 1}},
		},
		{
			name:      "OutOfRange",
			remove:    7,
			wantNames: []string{"a", "b", "c"},
			wantEdges: []Edge{{0, 1}, {0, 2}, {1, 2}, {2, 2}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New(nil)
			a := g.FindOrAdd("a", "1")
			b := g.AddChild(a, "b", "1")
			c := g.AddChild(a, "c", "1")
			g.AddChild(b, "c", "1")
			g.AddChild(c, "c", "1") // self-edge, shifts like any other

			g.Remove(tt.remove)

			var names []string
			for _, d := range g.Nodes() {
				names = append(names, d.Name)
			}
			if !slices.Equal(names, tt.wantNames) {
				t.Errorf("nodes = %v, want %v", names, tt.wantNames)
			}
			if got := g.Edges(); !slices.Equal(got, tt.wantEdges) {
				t.Errorf("edges = %v, want %v", got, tt.wantEdges)
			}
			for _, e := range g.Edges() {
				if e.Parent >= g.NodeCount() || e.Child >= g.NodeCount() {
					t.Errorf("edge %v out of range after removal", e)
				}
			}
		})
	}
}

func TestRemoveOrphans(t *testing.T) {
	tests := []struct {
		name      string
		build     func() *DepGraph
		wantNames []string
	}{
		{
			name: "KeepsLinked",
			build: func() *DepGraph {
				g := New(nil)
				a := g.FindOrAdd("a", "1")
				b := g.AddChild(a, "b", "1")
				g.AddChild(b, "c", "1")
				return g
			},
			wantNames: []string{"a", "b", "c"},
		},
		{
			name: "DropsUnlinked",
			build: func() *DepGraph {
				g := New(nil)
				a := g.FindOrAdd("a", "1")
				g.AddChild(a, "b", "1")
				g.FindOrAdd("d", "9.9")
				return g
			},
			wantNames: []string{"a", "b"},
		},
		{
			name: "CascadesDisconnectedSubtree",
			build: func() *DepGraph {
				g := New(nil)
				a := g.FindOrAdd("a", "1")
				g.AddChild(a, "b", "1")
				c := g.FindOrAdd("c", "1")
				d := g.AddChild(c, "d", "1")
				g.AddChild(d, "e", "1")
				return g
			},
			wantNames: []string{"a", "b"},
		},
		{
			name: "DropsStaleEdges",
			build: func() *DepGraph {
				g := New(nil)
				g.FindOrAdd("a", "1")
				g.AddChild(42, "x", "1")
				return g
			},
			wantNames: []string{"a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := tt.build()
			g.RemoveOrphans()

			var names []string
			for _, d := range g.Nodes() {
				names = append(names, d.Name)
			}
			if !slices.Equal(names, tt.wantNames) {
				t.Errorf("nodes = %v, want %v", names, tt.wantNames)
			}

			// Every survivor is the root or the destination of an edge.
			for slot := 1; slot < g.NodeCount(); slot++ {
				incoming := false
				for _, e := range g.Edges() {
					if e.Child == slot {
						incoming = true
						break
					}
				}
				if !incoming {
					t.Errorf("slot %d survived without an incoming edge", slot)
				}
			}

			// Re-running must be a no-op.
			nodes, edges := g.NodeCount(), g.EdgeCount()
			g.RemoveOrphans()
			if g.NodeCount() != nodes || g.EdgeCount() != edges {
				t.Errorf("second run changed graph: %d/%d nodes, %d/%d edges",
					g.NodeCount(), nodes, g.EdgeCount(), edges)
			}
		})
	}
}

func TestRemoveOrphansEmpty(t *testing.T) {
	g := New(nil)
	g.RemoveOrphans() // must not panic
	if g.NodeCount() != 0 || g.EdgeCount() != 0 {
		t.Errorf("graph = %d nodes, %d edges, want empty", g.NodeCount(), g.EdgeCount())
	}
}

func TestRemoveSelfLoops(t *testing.T) {
	g := New(nil)
	a := g.FindOrAdd("a", "1")
	g.AddChild(a, "a", "1") // self-edge via lookup
	g.AddChild(a, "b", "1")

	g.RemoveSelfLoops()

	if got := g.Edges(); !slices.Equal(got, []Edge{{0, 1}}) {
		t.Errorf("edges = %v, want [{0 1}]", got)
	}
	if g.NodeCount() != 2 {
		t.Errorf("nodes = %d, want 2", g.NodeCount())
	}

	g.RemoveSelfLoops()
	if g.EdgeCount() != 1 {
		t.Errorf("edges = %d after second run, want 1", g.EdgeCount())
	}
}

func TestDedupEdges(t *testing.T) {
	g := New(nil)
	a := g.FindOrAdd("a", "1")
	b := g.AddChild(a, "b", "1")
	g.AddChild(a, "b", "1")
	g.AddChild(a, "b", "1")
	g.AddChild(a, "c", "1")
	g.AddChild(b, "c", "1")
	g.AddChild(b, "c", "1")

	g.DedupEdges()

	want := []Edge{{0, 1}, {0, 2}, {1, 2}}
	if got := g.Edges(); !slices.Equal(got, want) {
		t.Errorf("edges = %v, want %v", got, want)
	}
}

func TestKindRoundTrip(t *testing.T) {
	for _, k := range []Kind{KindNormal, KindOptional, KindDev, KindBuild} {
		if got := ParseKind(k.String()); got != k {
			t.Errorf("ParseKind(%q) = %v, want %v", k.String(), got, k)
		}
	}
	if got := ParseKind("bogus"); got != KindNormal {
		t.Errorf("ParseKind(bogus) = %v, want KindNormal", got)
	}
}
