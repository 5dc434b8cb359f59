// Package graph defines the serialization format for dependency graphs.
// It is the wire and storage shape used by API responses, JSON export
// and snapshot persistence, and converts to and from the in-memory
// [depgraph.DepGraph] model.
package graph

import (
	"errors"
	"fmt"

	"github.com/cargodot/cargodot/pkg/depgraph"
)

var (
	// ErrDuplicateNode is returned by ToDepGraph when two serialized
	// nodes share the same name and version.
	ErrDuplicateNode = errors.New("duplicate node")

	// ErrInvalidEdge is returned by ToDepGraph when an edge references
	// a node index outside the serialized node list.
	ErrInvalidEdge = errors.New("edge references unknown node")
)

// Graph is the canonical serialization format for dependency graphs.
// Node order matches slot order of the graph it was produced from, and
// edges reference nodes by index into Nodes.
type Graph struct {
	Nodes []Node `json:"nodes" bson:"nodes"`
	Edges []Edge `json:"edges" bson:"edges"`
}

// Node is one dependency in serialized form. Kind holds the lowercase
// kind name and is omitted for normal dependencies.
type Node struct {
	Name    string `json:"name" bson:"name"`
	Version string `json:"version,omitempty" bson:"version,omitempty"`
	Kind    string `json:"kind,omitempty" bson:"kind,omitempty"`
}

// Edge is a directed parent→child relation between two node indices.
type Edge struct {
	Parent int `json:"parent" bson:"parent"`
	Child  int `json:"child" bson:"child"`
}

// FromDepGraph captures the graph in its serializable form, preserving
// slot order. Callers typically finalize the graph first so the output
// matches what rendering would show.
func FromDepGraph(g *depgraph.DepGraph) Graph {
	nodes := make([]Node, 0, g.NodeCount())
	for _, d := range g.Nodes() {
		n := Node{Name: d.Name, Version: d.Version}
		if d.Kind != depgraph.KindNormal {
			n.Kind = d.Kind.String()
		}
		nodes = append(nodes, n)
	}

	edges := make([]Edge, 0, g.EdgeCount())
	for _, e := range g.Edges() {
		edges = append(edges, Edge{Parent: e.Parent, Child: e.Child})
	}

	return Graph{Nodes: nodes, Edges: edges}
}

// ToDepGraph rebuilds an in-memory graph from its serialized form using
// the given rendering configuration (nil for defaults). Nodes are
// re-inserted in order, so slots match the node indices of the input.
func ToDepGraph(data Graph, cfg *depgraph.Config) (*depgraph.DepGraph, error) {
	g := depgraph.New(cfg)

	for i, n := range data.Nodes {
		slot := g.FindOrAdd(n.Name, n.Version)
		if slot != i {
			return nil, fmt.Errorf("%w: %s %s", ErrDuplicateNode, n.Name, n.Version)
		}
		g.MarkKind(slot, depgraph.ParseKind(n.Kind))
	}

	for _, e := range data.Edges {
		if e.Parent < 0 || e.Parent >= len(data.Nodes) || e.Child < 0 || e.Child >= len(data.Nodes) {
			return nil, fmt.Errorf("%w: %d -> %d", ErrInvalidEdge, e.Parent, e.Child)
		}
		child := data.Nodes[e.Child]
		g.AddChild(e.Parent, child.Name, child.Version)
	}

	return g, nil
}
