package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cargodot/cargodot/pkg/cargo"
	"github.com/cargodot/cargodot/pkg/depgraph"
	"github.com/cargodot/cargodot/pkg/graph"
)

const testManifest = `[package]
name = "app"
version = "0.1.0"

[dependencies]
serde = "1.0"

[dev-dependencies]
criterion = "0.5"
`

const testLockfile = `version = 3

[[package]]
name = "app"
version = "0.1.0"
dependencies = [
 "criterion",
 "serde",
]

[[package]]
name = "criterion"
version = "0.5.1"
source = "registry+https://github.com/rust-lang/crates.io-index"
dependencies = [
 "serde",
]

[[package]]
name = "serde"
version = "1.0.190"
source = "registry+https://github.com/rust-lang/crates.io-index"
`

func writeProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "Cargo.toml"), []byte(testManifest), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "Cargo.lock"), []byte(testLockfile), 0644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func testCLI() *CLI {
	return New(io.Discard, LogInfo)
}

func TestRunGraphDOT(t *testing.T) {
	dir := writeProject(t)
	out := filepath.Join(t.TempDir(), "deps.dot")

	opts := graphOpts{format: FormatDOT, output: out, devStyle: "dashed", optionalStyle: "dotted"}
	if err := testCLI().runGraph(context.Background(), dir, opts); err != nil {
		t.Fatalf("runGraph() error: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	dot := string(data)

	if !strings.HasPrefix(dot, "digraph dependencies {") {
		t.Errorf("output should start with the digraph header, got %q", dot[:40])
	}
	for _, want := range []string{`label="app"`, `label="serde"`, `label="criterion"`} {
		if !strings.Contains(dot, want) {
			t.Errorf("output missing %s", want)
		}
	}
}

func TestRunGraphIncludeVersions(t *testing.T) {
	dir := writeProject(t)
	out := filepath.Join(t.TempDir(), "deps.dot")

	opts := graphOpts{format: FormatDOT, output: out, includeVersions: true}
	if err := testCLI().runGraph(context.Background(), dir, opts); err != nil {
		t.Fatalf("runGraph() error: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `label="app v0.1.0"`) {
		t.Error("labels should carry versions")
	}
}

func TestRunGraphJSON(t *testing.T) {
	dir := writeProject(t)
	out := filepath.Join(t.TempDir(), "deps.json")

	opts := graphOpts{format: FormatJSON, output: out}
	if err := testCLI().runGraph(context.Background(), dir, opts); err != nil {
		t.Fatalf("runGraph() error: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}

	var g graph.Graph
	if err := json.Unmarshal(data, &g); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(g.Nodes) != 3 {
		t.Errorf("got %d nodes, want 3", len(g.Nodes))
	}
	if g.Nodes[0].Name != "app" {
		t.Errorf("root node = %q, want app", g.Nodes[0].Name)
	}
}

func TestRunGraphHTML(t *testing.T) {
	dir := writeProject(t)
	out := filepath.Join(t.TempDir(), "deps.html")

	opts := graphOpts{format: FormatHTML, output: out}
	if err := testCLI().runGraph(context.Background(), dir, opts); err != nil {
		t.Fatalf("runGraph() error: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "echarts") {
		t.Error("HTML output should embed the chart library")
	}
}

func TestRunGraphExcludePrefix(t *testing.T) {
	dir := writeProject(t)
	out := filepath.Join(t.TempDir(), "deps.dot")

	opts := graphOpts{format: FormatDOT, output: out, excludePrefix: []string{"criterion"}}
	if err := testCLI().runGraph(context.Background(), dir, opts); err != nil {
		t.Fatalf("runGraph() error: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "criterion") {
		t.Error("excluded prefix should remove the crate")
	}
}

func TestRunGraphUnknownRoot(t *testing.T) {
	dir := writeProject(t)

	opts := graphOpts{format: FormatDOT, root: "nosuch"}
	err := testCLI().runGraph(context.Background(), dir, opts)
	if err == nil {
		t.Fatal("unknown --root should be an error")
	}
	if !strings.Contains(err.Error(), "nosuch") {
		t.Errorf("error should name the missing package, got %v", err)
	}
}

func TestWriteGraphOutputUnknownFormat(t *testing.T) {
	g := depgraph.New(nil)
	if err := writeGraphOutput(context.Background(), g, "gif", &bytes.Buffer{}); err == nil {
		t.Error("unknown format should be an error")
	}
}

func TestValidateFormat(t *testing.T) {
	for _, format := range formats {
		if err := validateFormat(format); err != nil {
			t.Errorf("validateFormat(%q) = %v, want nil", format, err)
		}
	}
	if err := validateFormat("gif"); err == nil {
		t.Error("validateFormat(gif) should fail")
	}
}

func TestProjectDir(t *testing.T) {
	dir := writeProject(t)

	tests := []struct {
		name    string
		args    []string
		want    string
		wantErr bool
	}{
		{name: "no argument", args: nil, want: "."},
		{name: "directory", args: []string{dir}, want: dir},
		{name: "manifest path", args: []string{filepath.Join(dir, "Cargo.toml")}, want: dir},
		{name: "other file", args: []string{filepath.Join(dir, "Cargo.lock")}, wantErr: true},
		{name: "missing path", args: []string{filepath.Join(dir, "nope")}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := projectDir(tt.args)
			if (err != nil) != tt.wantErr {
				t.Fatalf("projectDir() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("projectDir() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestKeepPredicate(t *testing.T) {
	tests := []struct {
		name          string
		keep          []string
		excludePrefix []string
		crate         string
		want          bool
	}{
		{name: "allowlisted", keep: []string{"serde"}, crate: "serde", want: true},
		{name: "not allowlisted", keep: []string{"serde"}, crate: "tokio", want: false},
		{name: "excluded prefix", excludePrefix: []string{"winapi"}, crate: "winapi-util", want: false},
		{name: "prefix miss", excludePrefix: []string{"winapi"}, crate: "serde", want: true},
		{name: "exclusion beats allowlist", keep: []string{"winapi"}, excludePrefix: []string{"win"}, crate: "winapi", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pred := keepPredicate(tt.keep, tt.excludePrefix)
			if got := pred(tt.crate); got != tt.want {
				t.Errorf("keep(%q) = %v, want %v", tt.crate, got, tt.want)
			}
		})
	}
}

func TestResolveRootSpec(t *testing.T) {
	c := testCLI()

	t.Run("manifest package", func(t *testing.T) {
		m := &cargo.Manifest{Name: "app", Version: "0.1.0"}
		spec, err := c.resolveRootSpec(m, &cargo.Lockfile{})
		if err != nil {
			t.Fatal(err)
		}
		if spec != "" {
			t.Errorf("spec = %q, manifest packages need no explicit root", spec)
		}
	})

	t.Run("single candidate", func(t *testing.T) {
		lock := &cargo.Lockfile{Packages: []cargo.Package{
			{Name: "app", Version: "0.1.0", Dependencies: []string{"serde"}},
			{Name: "serde", Version: "1.0.190"},
		}}
		spec, err := c.resolveRootSpec(&cargo.Manifest{}, lock)
		if err != nil {
			t.Fatal(err)
		}
		if spec != "app@0.1.0" {
			t.Errorf("spec = %q, want app@0.1.0", spec)
		}
	})

	t.Run("no candidates", func(t *testing.T) {
		lock := &cargo.Lockfile{Packages: []cargo.Package{
			{Name: "a", Version: "1.0.0", Dependencies: []string{"b"}},
			{Name: "b", Version: "1.0.0", Dependencies: []string{"a"}},
		}}
		spec, err := c.resolveRootSpec(&cargo.Manifest{}, lock)
		if err != nil {
			t.Fatal(err)
		}
		if spec != "" {
			t.Errorf("spec = %q, want empty", spec)
		}
	})

	t.Run("several candidates without terminal", func(t *testing.T) {
		lock := &cargo.Lockfile{Packages: []cargo.Package{
			{Name: "tool-a", Version: "0.1.0", Dependencies: []string{"serde"}},
			{Name: "tool-b", Version: "0.2.0", Dependencies: []string{"serde"}},
			{Name: "serde", Version: "1.0.190"},
		}}
		_, err := c.resolveRootSpec(&cargo.Manifest{}, lock)
		if err == nil {
			t.Skip("stdout is a terminal, interactive path not testable here")
		}
		if !strings.Contains(err.Error(), "--root") {
			t.Errorf("error should point at --root, got %v", err)
		}
	})
}
