// Package cargo reads Cargo manifests and lockfiles and resolves them
// into dependency graphs. The lockfile supplies the full transitive
// closure, so no registry access is needed; the manifest contributes the
// root package identity and the kind of each direct dependency.
package cargo

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/cargodot/cargodot/pkg/depgraph"
)

// ManifestDep is one entry of a manifest dependency section.
type ManifestDep struct {
	Name string        // crate name as resolved (honors `package = "..."` renames)
	Req  string        // version requirement as written, may be empty
	Kind depgraph.Kind // section the entry came from, plus the optional flag
}

// Manifest is a parsed Cargo.toml. A workspace-only manifest has an
// empty Name; its members still share the workspace lockfile.
type Manifest struct {
	Name    string
	Version string
	Deps    []ManifestDep

	workspace bool
}

// IsWorkspace reports whether the manifest declares a [workspace]
// section.
func (m *Manifest) IsWorkspace() bool { return m.workspace }

type manifestFile struct {
	Package struct {
		Name    string `toml:"name"`
		Version string `toml:"version"`
	} `toml:"package"`
	Dependencies      map[string]any `toml:"dependencies"`
	DevDependencies   map[string]any `toml:"dev-dependencies"`
	BuildDependencies map[string]any `toml:"build-dependencies"`
}

// LoadManifest reads and parses a Cargo.toml file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var file manifestFile
	md, err := toml.Decode(string(data), &file)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	m := &Manifest{
		Name:      file.Package.Name,
		Version:   file.Package.Version,
		workspace: md.IsDefined("workspace"),
	}
	m.Deps = append(m.Deps, sectionDeps(file.Dependencies, depgraph.KindNormal)...)
	m.Deps = append(m.Deps, sectionDeps(file.DevDependencies, depgraph.KindDev)...)
	m.Deps = append(m.Deps, sectionDeps(file.BuildDependencies, depgraph.KindBuild)...)
	return m, nil
}

// sectionDeps converts one dependency section. Entries are either a
// bare requirement string or a table; tables may rename the crate via
// `package` and flip normal entries to optional.
func sectionDeps(section map[string]any, kind depgraph.Kind) []ManifestDep {
	var deps []ManifestDep
	for name, value := range section {
		dep := ManifestDep{Name: name, Kind: kind}
		switch v := value.(type) {
		case string:
			dep.Req = v
		case map[string]any:
			if pkg, ok := v["package"].(string); ok && pkg != "" {
				dep.Name = pkg
			}
			if req, ok := v["version"].(string); ok {
				dep.Req = req
			}
			if opt, ok := v["optional"].(bool); ok && opt && kind == depgraph.KindNormal {
				dep.Kind = depgraph.KindOptional
			}
		}
		deps = append(deps, dep)
	}
	return deps
}
