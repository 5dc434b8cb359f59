package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"
)

// configFile is the optional per-project configuration file, read from
// the same directory as Cargo.toml.
const configFile = "cargodot.toml"

// lineStyle configures the rendering of one dependency kind's edges.
type lineStyle struct {
	Style string `toml:"style"`
	Color string `toml:"color"`
}

// fileConfig mirrors cargodot.toml. Every field is optional; zero
// values leave the corresponding flag default untouched, so boolean
// settings can only be switched on from the file.
type fileConfig struct {
	IncludeVersions bool      `toml:"include_versions"`
	Full            bool      `toml:"full"`
	Keep            []string  `toml:"keep"`
	ExcludePrefix   []string  `toml:"exclude_prefix"`
	Build           lineStyle `toml:"build"`
	Dev             lineStyle `toml:"dev"`
	Optional        lineStyle `toml:"optional"`
}

// loadConfig reads cargodot.toml from dir. A missing file yields the
// zero configuration; a malformed one is an error, since the user wrote
// it on purpose.
func loadConfig(dir string) (fileConfig, error) {
	var cfg fileConfig
	path := filepath.Join(dir, configFile)
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if os.IsNotExist(err) {
			return fileConfig{}, nil
		}
		return fileConfig{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// applyFileConfig fills graph options from the configuration file.
// Flags given explicitly on the command line always win.
func applyFileConfig(flags *pflag.FlagSet, cfg fileConfig, o *graphOpts) {
	if !flags.Changed("include-versions") && cfg.IncludeVersions {
		o.includeVersions = true
	}
	if !flags.Changed("full") && cfg.Full {
		o.full = true
	}
	if !flags.Changed("keep") && len(cfg.Keep) > 0 {
		o.keep = cfg.Keep
	}
	if !flags.Changed("exclude-prefix") && len(cfg.ExcludePrefix) > 0 {
		o.excludePrefix = cfg.ExcludePrefix
	}
	applyLineStyle(flags, "build", cfg.Build, &o.buildStyle, &o.buildColor)
	applyLineStyle(flags, "dev", cfg.Dev, &o.devStyle, &o.devColor)
	applyLineStyle(flags, "optional", cfg.Optional, &o.optionalStyle, &o.optionalColor)
}

func applyLineStyle(flags *pflag.FlagSet, kind string, s lineStyle, style, color *string) {
	if !flags.Changed(kind+"-style") && s.Style != "" {
		*style = s.Style
	}
	if !flags.Changed(kind+"-color") && s.Color != "" {
		*color = s.Color
	}
}

// applyEnv reads CARGODOT_FULL when --full was not given on the command
// line. The environment overrides the configuration file.
func applyEnv(flags *pflag.FlagSet, o *graphOpts, logger *log.Logger) {
	if flags.Changed("full") {
		return
	}
	v := os.Getenv("CARGODOT_FULL")
	if v == "" {
		return
	}
	full, err := strconv.ParseBool(v)
	if err != nil {
		logger.Warnf("ignoring CARGODOT_FULL=%q: not a boolean", v)
		return
	}
	o.full = full
}
