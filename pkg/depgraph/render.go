package depgraph

import (
	"bufio"
	"fmt"
	"io"
)

// Finalize puts the graph into its renderable form: duplicate edges are
// collapsed, orphaned nodes pruned, self-loops dropped and the
// importance predicate applied, in that order. Finalize mutates the
// graph in place and runs at most once; the graph must not be mutated
// after it.
func (g *DepGraph) Finalize() {
	if g.final {
		return
	}
	g.DedupEdges()
	g.RemoveOrphans()
	g.RemoveSelfLoops()
	g.filterUnimportant()
	g.final = true
}

// filterUnimportant removes every node rejected by the configured keep
// predicate. Nothing happens when no predicate is set or KeepAll is on.
func (g *DepGraph) filterUnimportant() {
	if g.cfg.Keep == nil || g.cfg.KeepAll {
		return
	}
	for slot := len(g.nodes) - 1; slot >= 0; slot-- {
		if !g.cfg.Keep(g.nodes[slot].Name) {
			g.cfg.logf("removing %s", g.nodes[slot].Name)
			g.Remove(slot)
		}
	}
}

// Render finalizes the graph and writes it as Graphviz DOT text. One
// declaration line is emitted per node in slot order and one per edge,
// with labels and style fragments drawn from the configuration. Render
// is terminal: it destructively finalizes the graph, and only a failing
// sink can make it return an error.
func (g *DepGraph) Render(w io.Writer) error {
	g.Finalize()

	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "digraph dependencies {")
	for slot, dep := range g.nodes {
		fmt.Fprintf(bw, "\tN%d[label=%q];\n", slot, g.cfg.nodeLabel(dep))
	}
	for _, e := range g.edges {
		attrs := g.cfg.edgeAttrs(g.nodes[e.Parent].Kind, g.nodes[e.Child].Kind)
		fmt.Fprintf(bw, "\tN%d -> N%d[label=\"\"%s];\n", e.Parent, e.Child, attrs)
	}
	fmt.Fprintln(bw, "}")

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("render graph: %w", err)
	}
	return nil
}
