// Package cli implements the symplace command-line interface.
//
// This package provides commands for solving placement problems, checking
// symmetry feasibility, inspecting the HB*-tree, serving the HTTP API, and
// managing the result cache. The CLI is built using cobra and supports
// verbose logging via the charmbracelet/log library.
//
// # Commands
//
//   - place: solve a placement problem and write the solution
//   - check: parse a problem and verify symmetry feasibility
//   - tree: render the HB*-tree structure as SVG (debug tool)
//   - serve: run the HTTP placement API
//   - cache: manage the result cache
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/symplace/pkg/buildinfo"
	"github.com/matzehuels/symplace/pkg/cache"
	"github.com/matzehuels/symplace/pkg/config"
)

// appName is the application name used for directories and display.
const appName = "symplace"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance writing logs to w at the given level.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           level,
		}),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "symplace",
		Short:        "symplace places analog modules under symmetry constraints",
		Long:         `symplace is an analog-VLSI floorplanner: it places rectangular circuit modules to minimize area while keeping designated symmetry groups laid out as mirror-symmetric islands.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.placeCommand())
	root.AddCommand(c.checkCommand())
	root.AddCommand(c.treeCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// newCache builds the result cache from configuration. Failures fall back to
// a disabled cache rather than failing the solve.
func (c *CLI) newCache(cfg config.Cache, noCache bool) cache.Cache {
	if noCache || cfg.Backend == "none" {
		return cache.NewNullCache()
	}
	if cfg.Backend == "redis" {
		rc, err := cache.NewRedisCache(context.Background(), cfg.RedisAddr)
		if err != nil {
			c.Logger.Warn("redis cache unavailable, caching disabled", "addr", cfg.RedisAddr, "err", err)
			return cache.NewNullCache()
		}
		return rc
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache()
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		c.Logger.Warn("file cache unavailable, caching disabled", "dir", dir, "err", err)
		return cache.NewNullCache()
	}
	return fc
}

// cacheDir returns the cache directory using XDG standard (~/.cache/symplace/).
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

// writeFile writes data to path, or to stdout when path is empty.
func writeFile(data []byte, path string) error {
	if path == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0644)
}
