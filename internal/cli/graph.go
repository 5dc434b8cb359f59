package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/cargodot/cargodot/pkg/cargo"
	"github.com/cargodot/cargodot/pkg/depgraph"
	"github.com/cargodot/cargodot/pkg/graph"
	"github.com/cargodot/cargodot/pkg/render"
)

// Output formats supported by the graph command.
const (
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatHTML = "html"
	FormatJSON = "json"
)

// formats lists the valid --format values in display order.
var formats = []string{FormatDOT, FormatSVG, FormatPNG, FormatHTML, FormatJSON}

// graphOpts holds the command-line flags for the graph command.
type graphOpts struct {
	output          string // output file path (stdout if empty)
	format          string // output format, one of formats
	root            string // root package as "name" or "name@version"
	includeVersions bool   // append versions to node labels
	full            bool   // disable the importance filter

	keep          []string // allowlist of crate names to keep
	excludePrefix []string // crate name prefixes to drop

	buildStyle    string
	buildColor    string
	devStyle      string
	devColor      string
	optionalStyle string
	optionalColor string
}

// graphCommand creates the graph command, the main entry point of the
// tool: it loads Cargo.toml and Cargo.lock and renders the resolved
// dependency graph.
func (c *CLI) graphCommand() *cobra.Command {
	opts := graphOpts{
		format:        FormatDOT,
		devStyle:      "dashed",
		optionalStyle: "dotted",
	}

	cmd := &cobra.Command{
		Use:   "graph [dir|Cargo.toml]",
		Short: "Render a crate's dependency graph",
		Long: `Render a crate's dependency graph from its Cargo.toml and Cargo.lock.

The positional argument is the project directory or a path to its
Cargo.toml; the current directory is used when omitted. Settings can
also be placed in a cargodot.toml next to the manifest; explicit flags
override it.

Examples:
  cargodot graph                            # DOT to stdout
  cargodot graph -I -o deps.dot             # labels with versions
  cargodot graph -f svg -o deps.svg         # rendered image
  cargodot graph --root tokio@1.38.0        # subtree of one package
  cargodot graph --exclude-prefix winapi    # drop platform shims`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := projectDir(args)
			if err != nil {
				return err
			}
			cfg, err := loadConfig(dir)
			if err != nil {
				return err
			}
			applyFileConfig(cmd.Flags(), cfg, &opts)
			applyEnv(cmd.Flags(), &opts, c.Logger)
			if err := validateFormat(opts.format); err != nil {
				return err
			}
			return c.runGraph(cmd.Context(), dir, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: dot (default), svg, png, html, json")
	cmd.Flags().StringVar(&opts.root, "root", "", "root package as name or name@version")
	cmd.Flags().BoolVarP(&opts.includeVersions, "include-versions", "I", false, "include versions in node labels")
	cmd.Flags().BoolVar(&opts.full, "full", false, "keep all packages, ignoring the keep list and excluded prefixes")
	cmd.Flags().StringSliceVar(&opts.keep, "keep", nil, "comma-separated crate names to keep, dropping all others")
	cmd.Flags().StringSliceVar(&opts.excludePrefix, "exclude-prefix", nil, "crate name prefixes to drop")
	cmd.Flags().StringVar(&opts.buildStyle, "build-style", opts.buildStyle, "line style for build dependencies")
	cmd.Flags().StringVar(&opts.buildColor, "build-color", opts.buildColor, "line color for build dependencies")
	cmd.Flags().StringVar(&opts.devStyle, "dev-style", opts.devStyle, "line style for dev dependencies")
	cmd.Flags().StringVar(&opts.devColor, "dev-color", opts.devColor, "line color for dev dependencies")
	cmd.Flags().StringVar(&opts.optionalStyle, "optional-style", opts.optionalStyle, "line style for optional dependencies")
	cmd.Flags().StringVar(&opts.optionalColor, "optional-color", opts.optionalColor, "line color for optional dependencies")

	return cmd
}

// runGraph loads the project, resolves the graph and writes it in the
// requested format.
func (c *CLI) runGraph(ctx context.Context, dir string, opts graphOpts) error {
	prog := newProgress(c.Logger)

	m, lock, err := cargo.Load(dir)
	if err != nil {
		return err
	}
	c.Logger.Debugf("loaded %d locked packages from %s", len(lock.Packages), dir)

	rootSpec := opts.root
	if rootSpec == "" {
		rootSpec, err = c.resolveRootSpec(m, lock)
		if err != nil {
			return err
		}
	}

	g, err := cargo.Resolve(m, lock, opts.renderConfig(c.Logger), cargo.Options{
		Root:   rootSpec,
		Logger: c.Logger.Warnf,
	})
	if err != nil {
		return err
	}

	out, err := openOutput(opts.output)
	if err != nil {
		return err
	}
	defer out.Close()

	if err := writeGraphOutput(ctx, g, opts.format, out); err != nil {
		return err
	}
	prog.done("Rendered %d packages", g.NodeCount())

	if opts.output != "" {
		printSuccess("Wrote %s graph", opts.format)
		printFile(opts.output)
		printStats(g.NodeCount(), g.EdgeCount())
		if opts.format == FormatDOT {
			printNewline()
			printNextStep("Preview", "dot -Tpng "+opts.output+" -o "+strings.TrimSuffix(opts.output, ".dot")+".png")
		}
	}
	return nil
}

// renderConfig converts the flags into a rendering configuration.
func (o graphOpts) renderConfig(logger *log.Logger) *depgraph.Config {
	cfg := &depgraph.Config{
		Build:           depgraph.EdgeStyle{Style: o.buildStyle, Color: o.buildColor},
		Dev:             depgraph.EdgeStyle{Style: o.devStyle, Color: o.devColor},
		Optional:        depgraph.EdgeStyle{Style: o.optionalStyle, Color: o.optionalColor},
		IncludeVersions: o.includeVersions,
		KeepAll:         o.full,
		Logger:          logger.Debugf,
	}
	if len(o.keep) > 0 || len(o.excludePrefix) > 0 {
		cfg.Keep = keepPredicate(o.keep, o.excludePrefix)
	}
	return cfg
}

// keepPredicate builds the importance filter from the allowlist and the
// excluded prefixes. With a non-empty allowlist only listed crates
// survive; otherwise everything not matching an excluded prefix does.
func keepPredicate(keep, excludePrefix []string) func(string) bool {
	allow := make(map[string]bool, len(keep))
	for _, name := range keep {
		allow[name] = true
	}
	return func(name string) bool {
		for _, prefix := range excludePrefix {
			if strings.HasPrefix(name, prefix) {
				return false
			}
		}
		if len(allow) > 0 {
			return allow[name]
		}
		return true
	}
}

// writeGraphOutput finalizes the graph and writes it to out in the
// given format.
func writeGraphOutput(ctx context.Context, g *depgraph.DepGraph, format string, out io.Writer) error {
	switch format {
	case FormatDOT:
		return g.Render(out)
	case FormatJSON:
		g.Finalize()
		return graph.WriteGraph(g, out)
	case FormatHTML:
		g.Finalize()
		return render.WriteHTML(out, graph.FromDepGraph(g), graphTitle(g))
	case FormatSVG, FormatPNG:
		var dot bytes.Buffer
		if err := g.Render(&dot); err != nil {
			return err
		}
		convert := render.ToSVG
		if format == FormatPNG {
			convert = render.ToPNG
		}
		img, err := convert(ctx, dot.String())
		if err != nil {
			return err
		}
		_, err = out.Write(img)
		return err
	}
	return fmt.Errorf("unknown format %q", format)
}

// graphTitle derives a page title from the root node.
func graphTitle(g *depgraph.DepGraph) string {
	if root, ok := g.Node(0); ok {
		return root.Name + " dependencies"
	}
	return "dependencies"
}

// validateFormat checks a --format value.
func validateFormat(format string) error {
	if slices.Contains(formats, format) {
		return nil
	}
	return fmt.Errorf("unknown format %q (expected one of %s)", format, strings.Join(formats, ", "))
}

// projectDir resolves the positional argument to the project directory.
// Both a directory and a path to its Cargo.toml are accepted.
func projectDir(args []string) (string, error) {
	if len(args) == 0 {
		return ".", nil
	}
	arg := args[0]
	info, err := os.Stat(arg)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return arg, nil
	}
	if filepath.Base(arg) == "Cargo.toml" {
		return filepath.Dir(arg), nil
	}
	return "", fmt.Errorf("%s is neither a directory nor a Cargo.toml", arg)
}

// nopCloser wraps an io.Writer with a no-op Close method.
type nopCloser struct{ io.Writer }

// Close implements io.Closer with a no-op.
func (nopCloser) Close() error { return nil }

// openOutput returns a WriteCloser for the given path.
// If path is empty, it returns os.Stdout wrapped in nopCloser.
// Otherwise, it creates the file at path, overwriting if it exists.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}
