// Package cli implements the cargodot command-line interface.
//
// The package wires the cobra command tree: graph renders a crate's
// dependency graph as Graphviz DOT (or SVG, PNG, HTML, JSON), list
// prints the locked package set, serve exposes the graph over HTTP,
// and cache manages the crates.io response cache. All commands accept
// --verbose for debug-level logging.
package cli

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/cargodot/cargodot/pkg/buildinfo"
	"github.com/cargodot/cargodot/pkg/cache"
)

// appName names the binary and the cache directory.
const appName = "cargodot"

// Log levels accepted by New, re-exported so main does not import
// charmbracelet/log itself.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI carries the state shared by every subcommand.
type CLI struct {
	Logger *log.Logger

	verbose bool
}

// New builds a CLI logging to w at the given level.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel adjusts the logger's minimum level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand assembles the cobra command tree.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Cargodot renders Cargo dependency graphs as Graphviz DOT",
		Long: `Cargodot reads a crate's Cargo.toml and Cargo.lock and renders the
resolved dependency graph in Graphviz DOT format, with optional SVG,
PNG, HTML and JSON output. No network access is needed: the lockfile
already carries the full transitive closure.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			if c.verbose {
				c.SetLogLevel(LogDebug)
			}
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(c.graphCommand())
	root.AddCommand(c.listCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// newCache returns the response cache for a command invocation. Cache
// setup failures degrade to a null cache instead of failing the run.
func newCache(noCache bool) cache.Cache {
	if noCache {
		return cache.NewNullCache()
	}
	fc, err := cache.NewFileCache("")
	if err != nil {
		return cache.NewNullCache()
	}
	return fc
}
