package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/symplace/pkg/anneal"
	"github.com/matzehuels/symplace/pkg/cache"
	"github.com/matzehuels/symplace/pkg/config"
	"github.com/matzehuels/symplace/pkg/errors"
	"github.com/matzehuels/symplace/pkg/place"
	"github.com/matzehuels/symplace/pkg/placefile"
	"github.com/matzehuels/symplace/pkg/render/floorplan"
	"github.com/matzehuels/symplace/pkg/watchdog"
)

// defaultTimeout leaves headroom under the customary five-minute budget for
// parsing and writing the solution.
const defaultTimeout = 290 * time.Second

// placeCommand creates the place command: parse, solve, and write.
func (c *CLI) placeCommand() *cobra.Command {
	var (
		output     string
		configPath string
		seed       uint64
		timeout    time.Duration
		noCache    bool
		svgPath    string
		quiet      bool
	)

	cmd := &cobra.Command{
		Use:   "place <input-file>",
		Short: "Solve a placement problem and write the solution",
		Long: `Solve an analog placement problem with simulated annealing.

The input file declares modules, symmetry groups, and optional nets. The
solution file lists one module per line as "<name> <x> <y> <rotated>"
followed by the total bounding-box area.

Solves are deterministic for a fixed seed and configuration, and results are
cached; repeating a solve returns the cached solution instantly.`,
		Example: `  # Solve with defaults, write result next to the input
  symplace place opamp.txt -o opamp.out

  # Reproducible run with a fixed seed and custom schedule
  symplace place opamp.txt -o opamp.out --seed 7 --config anneal.toml

  # Also render the floorplan as SVG
  symplace place opamp.txt -o opamp.out --svg opamp.svg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("seed") {
				cfg.Annealing.Seed = seed
			}

			input, err := os.ReadFile(args[0])
			if err != nil {
				return errors.Wrap(errors.ErrCodeIO, err, "read %s", args[0])
			}

			result, solveErr := c.solve(cmd.Context(), input, cfg, timeout, noCache, quiet)
			if result == nil {
				return solveErr
			}

			if err := writeFile(result.text, output); err != nil {
				return errors.Wrap(errors.ErrCodeIO, err, "write solution")
			}
			if svgPath != "" {
				if result.tree == nil {
					c.Logger.Warn("cached result has no geometry to render, skipping SVG; rerun with --no-cache")
				} else if err := writeFile(floorplan.RenderSVG(result.tree), svgPath); err != nil {
					return errors.Wrap(errors.ErrCodeIO, err, "write SVG")
				}
			}

			if !quiet {
				c.printSolveSummary(result, output, svgPath)
			}
			// A timeout still produced a best-effort solution; surface it
			// after writing so the exit code reflects it.
			return solveErr
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "solution file (stdout if empty)")
	cmd.Flags().StringVar(&configPath, "config", "", "TOML configuration file")
	cmd.Flags().Uint64Var(&seed, "seed", anneal.DefaultSeed, "random seed")
	cmd.Flags().DurationVar(&timeout, "timeout", defaultTimeout, "solve time budget")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "bypass the result cache")
	cmd.Flags().StringVar(&svgPath, "svg", "", "also render the floorplan as SVG")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "suppress the summary")

	return cmd
}

// solveResult carries everything the summary and writers need.
type solveResult struct {
	text   []byte
	tree   *place.HBTree
	stats  *anneal.Stats
	cached bool
}

// solve runs the cached solve pipeline: cache lookup, anneal, cache store.
func (c *CLI) solve(ctx context.Context, input []byte, cfg config.Config, timeout time.Duration, noCache, quiet bool) (*solveResult, error) {
	store := c.newCache(cfg.Cache, noCache)
	defer store.Close()

	key := cache.Key(input, cfg.AnnealOptions(), cfg.Annealing.Seed)
	if data, ok, err := store.Get(ctx, key); err == nil && ok {
		c.Logger.Debug("cache hit", "key", key[:16])
		return &solveResult{text: data, cached: true}, nil
	}

	prog := newProgress(c.Logger)
	problem, err := placefile.Read(bytes.NewReader(input))
	if err != nil {
		return nil, err
	}
	tree, err := problem.NewTree()
	if err != nil {
		return nil, err
	}

	annealer, err := anneal.New(cfg.AnnealOptions(), c.Logger)
	if err != nil {
		return nil, err
	}

	wd := watchdog.New(timeout)
	wd.Start(ctx)
	defer wd.Stop()
	annealer.SetWatchdog(wd)

	var spin *spinner
	if !quiet {
		spin = startSpinner(ctx, "annealing placement")
	}
	best, stats, solveErr := annealer.Run(ctx, tree)
	if spin != nil {
		spin.stop()
	}
	if best == nil {
		return nil, solveErr
	}

	prog.done(fmt.Sprintf("solved %d modules, area %d", len(problem.Modules), stats.BestArea))

	var out bytes.Buffer
	if err := placefile.Write(&out, best); err != nil {
		return nil, err
	}

	// Only complete solves are worth caching.
	if solveErr == nil {
		if err := store.Set(ctx, key, out.Bytes(), cfg.Cache.TTL.Duration()); err != nil {
			c.Logger.Debug("cache store failed", "err", err)
		}
	}

	return &solveResult{text: out.Bytes(), tree: best, stats: &stats}, solveErr
}

func (c *CLI) printSolveSummary(res *solveResult, output, svgPath string) {
	if res.cached {
		printSuccess("solution served from cache")
	} else {
		printSuccess("placement complete")
	}
	if res.stats != nil {
		printNumber("Area", res.stats.BestArea)
		printNumber("Iterations", res.stats.Iterations)
		printNumber("Accepted", res.stats.Accepted)
		printKeyValue("Elapsed", res.stats.Elapsed.Round(time.Millisecond).String())
	}
	if output != "" {
		printFile(output)
	}
	if svgPath != "" {
		printFile(svgPath)
	}
}
