package cargo

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// Package is one [[package]] entry of a Cargo.lock file. Dependencies
// hold the raw dependency strings: a bare crate name, or a name
// followed by the resolved version and optionally the source in
// parentheses.
type Package struct {
	Name         string   `toml:"name"`
	Version      string   `toml:"version"`
	Source       string   `toml:"source"`
	Dependencies []string `toml:"dependencies"`
}

// Lockfile is a parsed Cargo.lock: the resolved package set of a
// project or workspace, including the workspace members themselves.
type Lockfile struct {
	Packages []Package `toml:"package"`
}

// LoadLockfile reads and parses a Cargo.lock file.
func LoadLockfile(path string) (*Lockfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lockfile: %w", err)
	}

	var lock Lockfile
	if err := toml.Unmarshal(data, &lock); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &lock, nil
}

// Find returns the package matching name and version. An empty version
// matches only when exactly one package with that name exists, which is
// how lockfiles themselves abbreviate unambiguous dependencies.
func (l *Lockfile) Find(name, version string) (Package, bool) {
	var found Package
	matches := 0
	for _, p := range l.Packages {
		if p.Name != name {
			continue
		}
		if version != "" {
			if p.Version == version {
				return p, true
			}
			continue
		}
		found = p
		matches++
	}
	if version == "" && matches == 1 {
		return found, true
	}
	return Package{}, false
}

// resolveDep resolves one raw dependency string against the lockfile.
func (l *Lockfile) resolveDep(raw string) (Package, bool) {
	name, version := splitDep(raw)
	return l.Find(name, version)
}

// splitDep splits a lockfile dependency string into name and version.
// The trailing source ("name 1.2.3 (registry+https://...)") is ignored.
func splitDep(raw string) (name, version string) {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return "", ""
	}
	name = fields[0]
	if len(fields) > 1 && !strings.HasPrefix(fields[1], "(") {
		version = fields[1]
	}
	return name, version
}

// RootCandidates returns the packages that no other package depends on.
// For a single-package project that is the package itself; workspaces
// usually surface one candidate per member binary.
func (l *Lockfile) RootCandidates() []Package {
	depended := make(map[string]bool, len(l.Packages))
	for _, p := range l.Packages {
		for _, raw := range p.Dependencies {
			if dep, ok := l.resolveDep(raw); ok {
				depended[dep.Name+" "+dep.Version] = true
			}
		}
	}

	var roots []Package
	for _, p := range l.Packages {
		if !depended[p.Name+" "+p.Version] {
			roots = append(roots, p)
		}
	}
	return roots
}
