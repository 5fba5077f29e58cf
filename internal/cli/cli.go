// Package cli implements the histvet command-line interface.
//
// This package provides commands for validating commit-log files against
// the DAG invariant, exporting commit graphs as Graphviz diagrams, running
// the HTTP validation service, and managing the verdict cache. The CLI is
// built using cobra and supports verbose logging via the charmbracelet/log
// library.
//
// # Commands
//
// The main commands are:
//   - check: Validate that a commit log forms a DAG
//   - dot: Export a commit graph as DOT or SVG
//   - serve: Run the HTTP validation service
//   - cache: Manage the verdict cache
//
// All commands support --verbose (-v) for debug-level logging.
package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/jmalbrecht/histvet/pkg/buildinfo"
	"github.com/jmalbrecht/histvet/pkg/cache"
	"github.com/jmalbrecht/histvet/pkg/pipeline"
	"github.com/jmalbrecht/histvet/pkg/store"
)

// appName is the application name used for directories and display.
const appName = "histvet"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "histvet",
		Short:        "Histvet validates commit histories against the DAG invariant",
		Long:         `Histvet checks that a set of commit records, each declaring zero or more parents, forms a directed acyclic graph - the structural invariant any history store requires before accepting records.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.checkCommand())
	root.AddCommand(c.dotCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// newRunner creates a pipeline runner for CLI use. Reports persist to an
// in-process store only; the serve command wires durable storage.
func (c *CLI) newRunner(noCache bool, st store.Store) *pipeline.Runner {
	return pipeline.NewRunner(newCache(noCache), nil, st, c.Logger)
}

func newCache(noCache bool) cache.Cache {
	if noCache {
		return cache.NewNullCache()
	}
	dir, err := cacheDir()
	if err == nil {
		if fc, ferr := cache.NewFileCache(dir); ferr == nil {
			return fc
		}
	}
	printWarning("verdict cache unavailable, checking without it")
	return cache.NewNullCache()
}

// cacheDir returns the cache directory using XDG standard (~/.cache/histvet/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
