package depgraph_test

import (
	"os"

	"github.com/cargodot/cargodot/pkg/depgraph"
)

func ExampleDepGraph_Render() {
	// Build a small graph: app depends on serde, which pulls in serde_derive.
	g := depgraph.New(&depgraph.Config{})
	app := g.FindOrAdd("app", "0.1.0")
	lib := g.AddChild(app, "serde", "1.0.219")
	g.AddChild(lib, "serde_derive", "1.0.219")
	g.SetRoot("app", "0.1.0")

	_ = g.Render(os.Stdout)
	// Output:
	// digraph dependencies {
	// 	N0[label="app"];
	// 	N1[label="serde"];
	// 	N2[label="serde_derive"];
	// 	N0 -> N1[label=""];
	// 	N1 -> N2[label=""];
	// }
}

func ExampleConfig() {
	// Dev dependencies render with a dashed red line.
	cfg := &depgraph.Config{Dev: depgraph.EdgeStyle{Style: "dashed", Color: "red"}}
	g := depgraph.New(cfg)

	app := g.FindOrAdd("app", "0.1.0")
	bench := g.AddChild(app, "criterion", "0.5.1")
	g.MarkKind(bench, depgraph.KindDev)
	cli := g.AddChild(bench, "clap", "4.5.0")
	g.MarkKind(cli, depgraph.KindDev)

	_ = g.Render(os.Stdout)
	// Output:
	// digraph dependencies {
	// 	N0[label="app"];
	// 	N1[label="criterion"];
	// 	N2[label="clap"];
	// 	N0 -> N1[label=""];
	// 	N1 -> N2[label="",style=dashed,color=red];
	// }
}
