package graph

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/cargodot/cargodot/pkg/depgraph"
)

// WriteGraph writes g to w as indented JSON in the serialized Graph
// shape.
func WriteGraph(g *depgraph.DepGraph, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(FromDepGraph(g)); err != nil {
		return fmt.Errorf("encode graph: %w", err)
	}
	return nil
}

// ReadGraph decodes JSON produced by WriteGraph and rebuilds the
// in-memory graph with cfg (nil for defaults).
func ReadGraph(r io.Reader, cfg *depgraph.Config) (*depgraph.DepGraph, error) {
	var data Graph
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode graph: %w", err)
	}
	return ToDepGraph(data, cfg)
}
