package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/cargodot/cargodot/pkg/graph"
)

func testGraph() graph.Graph {
	return graph.Graph{
		Nodes: []graph.Node{
			{Name: "app", Version: "0.1.0"},
			{Name: "serde", Version: "1.0.219"},
			{Name: "cc", Version: "1.0.83", Kind: "build"},
		},
		Edges: []graph.Edge{
			{Parent: 0, Child: 1},
			{Parent: 0, Child: 2},
		},
	}
}

func TestWriteHTML(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteHTML(&buf, testGraph(), "app dependencies"); err != nil {
		t.Fatalf("WriteHTML() error: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "<html>") {
		t.Error("WriteHTML() output missing <html>")
	}
	if !strings.Contains(out, "echarts") {
		t.Error("WriteHTML() output missing echarts script")
	}
	for _, label := range []string{"app v0.1.0", "serde v1.0.219", "cc v1.0.83"} {
		if !strings.Contains(out, label) {
			t.Errorf("WriteHTML() output missing node %q", label)
		}
	}
}

func TestNodeName(t *testing.T) {
	if got := nodeName(graph.Node{Name: "serde", Version: "1.0.219"}); got != "serde v1.0.219" {
		t.Errorf("nodeName() = %q, want %q", got, "serde v1.0.219")
	}
	if got := nodeName(graph.Node{Name: "local"}); got != "local" {
		t.Errorf("nodeName() = %q, want %q", got, "local")
	}
}

func TestNodeStyle(t *testing.T) {
	if nodeStyle("", false) != nil {
		t.Error("normal dependencies should use the default style")
	}
	if nodeStyle("", true) == nil {
		t.Error("root node should get its own style")
	}
	if nodeStyle("dev", false) == nil {
		t.Error("dev dependencies should get their own style")
	}
}
