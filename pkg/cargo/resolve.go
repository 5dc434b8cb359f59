package cargo

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/cargodot/cargodot/pkg/depgraph"
)

// ErrRootNotFound is returned by Resolve when an explicitly requested
// root package does not exist in the lockfile.
var ErrRootNotFound = errors.New("root package not found in lockfile")

// Options configures Resolve.
type Options struct {
	// Root selects the root package as "name" or "name@version".
	// Empty falls back to the manifest's [package] name.
	Root string

	// Logger is an optional logging callback.
	Logger func(format string, args ...any)
}

func (o Options) logf(format string, args ...any) {
	if o.Logger != nil {
		o.Logger(format, args...)
	}
}

// Load reads Cargo.toml and Cargo.lock from a project directory.
func Load(dir string) (*Manifest, *Lockfile, error) {
	m, err := LoadManifest(filepath.Join(dir, "Cargo.toml"))
	if err != nil {
		return nil, nil, err
	}
	lock, err := LoadLockfile(filepath.Join(dir, "Cargo.lock"))
	if err != nil {
		return nil, nil, err
	}
	return m, lock, nil
}

// Resolve builds the dependency graph of the locked package set. The
// root is inserted first so it occupies slot 0, every lockfile relation
// is replayed through the graph builder, and the manifest's dependency
// sections assign kinds. Unreachable packages (workspace siblings and
// their private dependencies) are left for finalization to prune.
//
// A missing root is only an error when opts.Root asked for it
// explicitly; a manifest package absent from the lockfile degrades to
// lockfile order.
func Resolve(m *Manifest, lock *Lockfile, cfg *depgraph.Config, opts Options) (*depgraph.DepGraph, error) {
	g := depgraph.New(cfg)

	root, haveRoot, err := pickRoot(m, lock, opts)
	if err != nil {
		return nil, err
	}
	switch {
	case haveRoot:
		g.FindOrAdd(root.Name, root.Version)
	case m.Name != "":
		opts.logf("package %s not found in lockfile, keeping lockfile order", m.Name)
	default:
		opts.logf("workspace manifest without a root package, keeping lockfile order")
	}

	for _, p := range lock.Packages {
		slot := g.FindOrAdd(p.Name, p.Version)
		for _, raw := range p.Dependencies {
			dep, ok := lock.resolveDep(raw)
			if !ok {
				opts.logf("unresolved dependency %q of %s, skipping", raw, p.Name)
				continue
			}
			g.AddChild(slot, dep.Name, dep.Version)
		}
	}

	if haveRoot {
		markKinds(g, m, lock, root, opts)
		g.SetRoot(root.Name, root.Version)
	}
	return g, nil
}

func pickRoot(m *Manifest, lock *Lockfile, opts Options) (Package, bool, error) {
	if opts.Root != "" {
		name, version, _ := strings.Cut(opts.Root, "@")
		p, ok := lock.Find(name, version)
		if !ok {
			return Package{}, false, fmt.Errorf("%w: %s", ErrRootNotFound, opts.Root)
		}
		return p, true, nil
	}
	if m.Name == "" {
		return Package{}, false, nil
	}
	if p, ok := lock.Find(m.Name, m.Version); ok {
		return p, true, nil
	}
	// The manifest version can lag behind the lock after a bump.
	if p, ok := lock.Find(m.Name, ""); ok {
		return p, true, nil
	}
	return Package{}, false, nil
}

type pkgKey struct {
	name    string
	version string
}

// markKinds applies the manifest's dependency sections to the graph.
// Each non-normal direct dependency of the root is marked with its
// section's kind, and the mark spreads to everything reachable beneath
// it so the transitive dependencies of a dev dependency render as dev.
// Crates also reachable through plain dependencies are protected: a
// library needed at runtime stays normal even when a benchmark harness
// pulls it in as well.
func markKinds(g *depgraph.DepGraph, m *Manifest, lock *Lockfile, root Package, opts Options) {
	direct := make(map[string]Package, len(root.Dependencies))
	for _, raw := range root.Dependencies {
		if p, ok := lock.resolveDep(raw); ok {
			direct[p.Name] = p
		}
	}
	resolveDirect := func(dep ManifestDep) (Package, bool) {
		if p, ok := direct[dep.Name]; ok {
			return p, true
		}
		return lock.Find(dep.Name, "")
	}

	protected := map[pkgKey]bool{{root.Name, root.Version}: true}
	for _, dep := range m.Deps {
		if dep.Kind != depgraph.KindNormal {
			continue
		}
		if p, ok := resolveDirect(dep); ok {
			lock.closureInto(p, protected)
		}
	}

	for _, dep := range m.Deps {
		if dep.Kind == depgraph.KindNormal {
			continue
		}
		p, ok := resolveDirect(dep)
		if !ok {
			opts.logf("manifest dependency %s not in lockfile, skipping", dep.Name)
			continue
		}

		seen := make(map[pkgKey]bool, len(protected))
		for k := range protected {
			seen[k] = true
		}
		queue := []Package{p}
		for len(queue) > 0 {
			q := queue[0]
			queue = queue[1:]
			k := pkgKey{q.Name, q.Version}
			if seen[k] {
				continue
			}
			seen[k] = true
			if slot, ok := g.Find(q.Name, q.Version); ok {
				g.MarkKind(slot, dep.Kind)
			}
			for _, raw := range q.Dependencies {
				if d, ok := lock.resolveDep(raw); ok {
					queue = append(queue, d)
				}
			}
		}
	}
}

// closureInto adds every package reachable from start to out, treating
// packages already present as visited.
func (l *Lockfile) closureInto(start Package, out map[pkgKey]bool) {
	queue := []Package{start}
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		k := pkgKey{p.Name, p.Version}
		if out[k] {
			continue
		}
		out[k] = true
		for _, raw := range p.Dependencies {
			if dep, ok := l.resolveDep(raw); ok {
				queue = append(queue, dep)
			}
		}
	}
}
