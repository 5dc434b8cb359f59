package depgraph

import "strings"

// EdgeStyle holds the Graphviz attributes appended to edges of one
// dependency kind. Zero-value fields are omitted from the output.
type EdgeStyle struct {
	Style string // line style, e.g. "dashed" or "dotted"
	Color string // line color, e.g. "red"
}

// attrs renders the style as a DOT attribute fragment to append after
// the label, e.g. `,style=dashed,color=red`. An empty style renders to
// the empty string.
func (s EdgeStyle) attrs() string {
	var b strings.Builder
	if s.Style != "" {
		b.WriteString(",style=")
		b.WriteString(s.Style)
	}
	if s.Color != "" {
		b.WriteString(",color=")
		b.WriteString(s.Color)
	}
	return b.String()
}

// Config controls labeling and filtering during finalization and
// rendering. The graph borrows it read-only; callers may share one
// Config across graphs.
type Config struct {
	// Build, Dev and Optional style the edges of the matching
	// dependency kind. Edges involving a normal dependency always
	// render bare.
	Build    EdgeStyle
	Dev      EdgeStyle
	Optional EdgeStyle

	// IncludeVersions appends the version to node labels, producing
	// "name v1.2.3" instead of "name".
	IncludeVersions bool

	// Keep, when non-nil, is the importance predicate applied at the
	// end of finalization: nodes whose name it rejects are removed,
	// together with their edges. The root is not exempt.
	Keep func(name string) bool

	// KeepAll disables the Keep predicate entirely.
	KeepAll bool

	// Logger is an optional logging callback for removal decisions.
	Logger func(format string, args ...any)
}

// DefaultConfig returns the stock configuration: dev edges dashed,
// optional edges dotted, build edges plain, no filtering.
func DefaultConfig() *Config {
	return &Config{
		Dev:      EdgeStyle{Style: "dashed"},
		Optional: EdgeStyle{Style: "dotted"},
	}
}

func (c *Config) logf(format string, args ...any) {
	if c.Logger != nil {
		c.Logger(format, args...)
	}
}

// nodeLabel renders the display label for a node.
func (c *Config) nodeLabel(d Dep) string {
	if c.IncludeVersions && d.Version != "" {
		return d.Name + " v" + d.Version
	}
	return d.Name
}

// edgeAttrs selects the style fragment for an edge from the kinds of
// its endpoints. A build parent takes the child's style, optional and
// dev parents impose their own, and any pairing involving a normal
// dependency stays unstyled.
func (c *Config) edgeAttrs(parent, child Kind) string {
	switch {
	case parent == KindNormal || child == KindNormal:
		return ""
	case parent == KindOptional:
		return c.Optional.attrs()
	case parent == KindDev:
		return c.Dev.attrs()
	case child == KindBuild:
		return c.Build.attrs()
	case child == KindDev:
		return c.Dev.attrs()
	default:
		return c.Optional.attrs()
	}
}
