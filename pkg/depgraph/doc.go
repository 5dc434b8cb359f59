// Package depgraph provides the in-memory dependency graph that cargodot
// builds from a resolved package set and serializes as Graphviz DOT text.
//
// # Overview
//
// A [DepGraph] holds an ordered sequence of dependencies plus parent→child
// edges. A node's identity is its position in that sequence, called its
// slot. Slots are compact but unstable: removing a node renumbers every
// node behind it, and all edges are rewritten in the same operation.
// Callers must therefore never hold on to a slot across a removal.
//
// # Basic Usage
//
// Create a graph with [New], insert the root with [DepGraph.FindOrAdd],
// attach dependencies with [DepGraph.AddChild], and finish with
// [DepGraph.Render]:
//
//	g := depgraph.New(nil)
//	root := g.FindOrAdd("app", "1.0.0")
//	lib := g.AddChild(root, "lib", "0.3.2")
//	g.AddChild(lib, "core", "2.1.0")
//	g.SetRoot("app", "1.0.0")
//	g.Render(os.Stdout)
//
// Rendering first finalizes the graph in place: duplicate edges are
// collapsed, nodes without an incoming edge (other than the root) are
// pruned, self-referential edges are dropped, and the optional keep
// predicate from [Config] is applied. Finalization is destructive, so a
// graph must not be reused after [DepGraph.Render] returns.
//
// # Dependency Kinds
//
// Every node carries a [Kind] describing how the dependency is consumed
// (normal, optional, dev or build). Kinds select the style fragment
// attached to edge labels during emission; see [Config] for the mapping.
// [DepGraph.MarkKind] only ever upgrades a node to a stronger kind, so
// a dependency reached both as a dev and a build dependency renders as
// a build dependency.
//
// # Concurrency
//
// DepGraph instances are not safe for concurrent use. A graph is built,
// finalized and rendered by a single caller in one sequence.
package depgraph
