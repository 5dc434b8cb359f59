package cli

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/cargodot/cargodot/pkg/buildinfo"
	"github.com/cargodot/cargodot/pkg/cache"
)

func TestRootCommand(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()

	if root.Use != appName {
		t.Errorf("Use = %q, want %q", root.Use, appName)
	}
	if root.Version != buildinfo.Version {
		t.Errorf("Version = %q, want %q", root.Version, buildinfo.Version)
	}

	want := map[string]bool{
		"graph":      false,
		"list":       false,
		"serve":      false,
		"cache":      false,
		"completion": false,
	}
	for _, cmd := range root.Commands() {
		if _, ok := want[cmd.Name()]; ok {
			want[cmd.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("subcommand %s not registered", name)
		}
	}
}

func TestCompletionBash(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"completion", "bash"})

	if err := root.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(buf.String(), appName) {
		t.Errorf("completion script does not mention %s", appName)
	}
}

func TestSetLogLevel(t *testing.T) {
	c := New(io.Discard, LogInfo)
	c.SetLogLevel(LogDebug)

	if c.Logger.GetLevel() != LogDebug {
		t.Errorf("level = %v, want debug", c.Logger.GetLevel())
	}
}

func TestNewCacheDisabled(t *testing.T) {
	backend := newCache(true)
	defer backend.Close()

	if _, ok := backend.(*cache.NullCache); !ok {
		t.Errorf("newCache(true) = %T, want *cache.NullCache", backend)
	}
}

func TestNewCacheDefault(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	backend := newCache(false)
	defer backend.Close()

	if _, ok := backend.(*cache.FileCache); !ok {
		t.Errorf("newCache(false) = %T, want *cache.FileCache", backend)
	}
}
