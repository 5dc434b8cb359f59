package render

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/cargodot/cargodot/pkg/graph"
)

// WriteHTML renders g as a self-contained HTML page with a
// force-directed dependency diagram.
func WriteHTML(w io.Writer, g graph.Graph, title string) error {
	page := components.NewPage()
	page.AddCharts(buildChart(g, title))
	if err := page.Render(w); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	return nil
}

func buildChart(g graph.Graph, title string) *charts.Graph {
	chart := charts.NewGraph()
	chart.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: title,
			Width:     "100vw",
			Height:    "100vh",
		}),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)

	nodes := make([]opts.GraphNode, len(g.Nodes))
	for i, n := range g.Nodes {
		nodes[i] = opts.GraphNode{
			Name:      nodeName(n),
			ItemStyle: nodeStyle(n.Kind, i == 0),
		}
	}

	// Links reference nodes by index. Names are not unique when a
	// graph carries two versions of the same crate.
	links := make([]opts.GraphLink, len(g.Edges))
	for i, e := range g.Edges {
		links[i] = opts.GraphLink{Source: e.Parent, Target: e.Child}
	}

	chart.AddSeries("dependencies", nodes, links,
		charts.WithGraphChartOpts(opts.GraphChart{
			Draggable: opts.Bool(true),
			Roam:      opts.Bool(true),
			Force:     &opts.GraphForce{Repulsion: 400},
		}),
		charts.WithLabelOpts(opts.Label{
			Show:     opts.Bool(true),
			Position: "top",
		}),
	)
	return chart
}

func nodeName(n graph.Node) string {
	if n.Version == "" {
		return n.Name
	}
	return n.Name + " v" + n.Version
}

// nodeStyle colors nodes by dependency kind. The root node gets its own
// color so it stands out in large graphs.
func nodeStyle(kind string, root bool) *opts.ItemStyle {
	switch {
	case root:
		return &opts.ItemStyle{Color: "#c0392b"}
	case kind == "build":
		return &opts.ItemStyle{Color: "#2980b9"}
	case kind == "dev":
		return &opts.ItemStyle{Color: "#8e44ad"}
	case kind == "optional":
		return &opts.ItemStyle{Color: "#7f8c8d"}
	}
	return nil
}
