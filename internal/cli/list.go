package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/cargodot/cargodot/pkg/cargo"
	"github.com/cargodot/cargodot/pkg/crates"
	"github.com/cargodot/cargodot/pkg/depgraph"
)

// listOpts holds the command-line flags for the list command.
type listOpts struct {
	root    string // root package as "name" or "name@version"
	enrich  bool   // fetch crate metadata from crates.io
	refresh bool   // bypass the response cache
	noCache bool   // disable caching entirely
}

// listCommand creates the list command, a tabular view of the packages
// the graph command would render.
func (c *CLI) listCommand() *cobra.Command {
	var opts listOpts

	cmd := &cobra.Command{
		Use:   "list [dir|Cargo.toml]",
		Short: "List the packages in a crate's dependency graph",
		Long: `List the packages in a crate's dependency graph as a table.

With --enrich each crate's description and download count are fetched
from crates.io. Responses are cached locally; use --refresh to fetch
fresh data or --no-cache to skip the cache entirely.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := projectDir(args)
			if err != nil {
				return err
			}
			return c.runList(cmd.Context(), dir, opts)
		},
	}

	cmd.Flags().StringVar(&opts.root, "root", "", "root package as name or name@version")
	cmd.Flags().BoolVar(&opts.enrich, "enrich", false, "fetch crate metadata from crates.io")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass the response cache")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")

	return cmd
}

// runList resolves the graph and prints its packages, optionally
// enriched with crates.io metadata.
func (c *CLI) runList(ctx context.Context, dir string, opts listOpts) error {
	m, lock, err := cargo.Load(dir)
	if err != nil {
		return err
	}

	rootSpec := opts.root
	if rootSpec == "" {
		rootSpec, err = c.resolveRootSpec(m, lock)
		if err != nil {
			return err
		}
	}

	cfg := depgraph.DefaultConfig()
	cfg.Logger = c.Logger.Debugf
	g, err := cargo.Resolve(m, lock, cfg, cargo.Options{Root: rootSpec, Logger: c.Logger.Warnf})
	if err != nil {
		return err
	}
	g.Finalize()

	nodes := g.Nodes()
	var infos map[string]*crates.CrateInfo
	if opts.enrich {
		infos, err = c.fetchCrateInfo(ctx, nodes, opts.refresh, opts.noCache)
		if err != nil {
			return err
		}
	}

	renderTable(nodes, infos)
	return nil
}

// fetchCrateInfo fetches crates.io metadata for every distinct crate
// name in nodes.
func (c *CLI) fetchCrateInfo(ctx context.Context, nodes []depgraph.Dep, refresh, noCache bool) (map[string]*crates.CrateInfo, error) {
	backend := newCache(noCache)
	defer backend.Close()
	client := crates.NewClient(backend, 0)

	seen := make(map[string]bool, len(nodes))
	names := make([]string, 0, len(nodes))
	for _, n := range nodes {
		if !seen[n.Name] {
			seen[n.Name] = true
			names = append(names, n.Name)
		}
	}

	spinner := newSpinner(ctx, fmt.Sprintf("Fetching metadata for %d crates...", len(names)))
	spinner.Start()

	infos, err := client.FetchCrates(ctx, names, refresh)
	if err != nil {
		spinner.StopWithError("Metadata fetch failed")
		return nil, err
	}
	spinner.StopWithSuccess(fmt.Sprintf("Fetched metadata for %d of %d crates", len(infos), len(names)))

	return infos, nil
}

// renderTable prints the package table to stdout. The metadata columns
// only appear when enrichment ran.
func renderTable(nodes []depgraph.Dep, infos map[string]*crates.CrateInfo) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	var rows [][]string
	if infos == nil {
		table.SetHeader([]string{"NAME", "VERSION", "KIND"})
		for _, n := range nodes {
			rows = append(rows, []string{n.Name, n.Version, n.Kind.String()})
		}
	} else {
		table.SetHeader([]string{"NAME", "VERSION", "KIND", "DOWNLOADS", "DESCRIPTION"})
		for _, n := range nodes {
			row := []string{n.Name, n.Version, n.Kind.String(), "", ""}
			if info := infos[n.Name]; info != nil {
				row[3] = formatCount(info.Downloads)
				row[4] = truncate(info.Description, 60)
			}
			rows = append(rows, row)
		}
	}
	table.AppendBulk(rows)
	table.Render()
}

// formatCount renders a download count in the compact form crates.io
// uses, e.g. "512.3M".
func formatCount(n int) string {
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("%.1fk", float64(n)/1_000)
	}
	return strconv.Itoa(n)
}

// truncate shortens s to at most max runes, marking the cut with an
// ellipsis.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
