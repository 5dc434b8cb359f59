// Package render converts DOT graphs into images and interactive HTML.
//
// # Overview
//
// The DOT text produced by [depgraph.DepGraph.Render] is already a
// finished output format. This package covers the cases where a picture
// is wanted instead:
//
//   - [ToSVG] and [ToPNG] lay out DOT text with Graphviz
//   - [WriteHTML] emits a self-contained force-directed diagram
//
// # Graphviz
//
// Layout runs in process through [github.com/goccy/go-graphviz], which
// embeds the Graphviz engine. No system graphviz installation is
// required.
//
//	svg, err := render.ToSVG(ctx, dot)
//	png, err := render.ToPNG(ctx, dot)
//
// # HTML
//
// [WriteHTML] takes the serializable [graph.Graph] form rather than DOT
// text and renders a browsable page with go-echarts. Nodes can be
// dragged and the view panned and zoomed, which is more useful than a
// static image for large dependency trees.
//
// [depgraph.DepGraph.Render]: github.com/cargodot/cargodot/pkg/depgraph
// [graph.Graph]: github.com/cargodot/cargodot/pkg/graph
package render
