// Package anneal implements the simulated-annealing driver for the placement
// engine.
//
// The driver owns the accept/reject loop: it applies one random perturbation
// per iteration, evaluates the cost through a clean-slate pack, and keeps a
// clone of the best-known state for rollback. The engine itself stays
// single-threaded; the driver calls it synchronously and polls the context
// and watchdog between perturbations.
package anneal

import (
	"context"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/symplace/pkg/errors"
	"github.com/matzehuels/symplace/pkg/place"
	"github.com/matzehuels/symplace/pkg/watchdog"
)

// Stats summarizes one annealing run.
type Stats struct {
	RunID         string        `json:"run_id"`
	Iterations    int           `json:"iterations"`
	Accepted      int           `json:"accepted"`
	Rejected      int           `json:"rejected"`
	NoImprovement int           `json:"no_improvement"`
	InitialArea   int           `json:"initial_area"`
	BestArea      int           `json:"best_area"`
	BestCost      float64       `json:"best_cost"`
	Elapsed       time.Duration `json:"elapsed"`
}

// Annealer drives one engine instance through the annealing schedule.
type Annealer struct {
	opts   Options
	logger *log.Logger
	wd     *watchdog.Watchdog
}

// New creates an annealer. A nil logger falls back to log.Default.
func New(opts Options, logger *log.Logger) (*Annealer, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Annealer{opts: opts, logger: logger}, nil
}

// SetWatchdog attaches a timeout flag polled between perturbations.
func (a *Annealer) SetWatchdog(wd *watchdog.Watchdog) { a.wd = wd }

// Run anneals the tree and returns the best state found along with run
// statistics. The input tree is constructed (when it has no root yet) and
// packed once; every perturbation happens on clones of it.
//
// On timeout or context cancellation the best state found so far is returned
// together with a TIMEOUT error, so callers can still write a solution.
func (a *Annealer) Run(ctx context.Context, tree *place.HBTree) (*place.HBTree, Stats, error) {
	stats := Stats{RunID: uuid.NewString()}
	start := time.Now()

	if tree.Root() == nil {
		if err := tree.ConstructInitialTree(); err != nil {
			return nil, stats, err
		}
	}
	if !tree.Pack() {
		return nil, stats, errors.New(errors.ErrCodeInvalidInput, "nothing to place: no modules loaded")
	}

	current := tree.Clone()
	best := current.Clone()
	currentCost := a.cost(current)
	bestCost := currentCost
	stats.InitialArea = current.Area()

	a.logger.Info("annealing started",
		"run", stats.RunID,
		"initial_area", stats.InitialArea,
		"t0", a.opts.InitialTemperature,
		"seed", a.opts.Seed)

	rng := rand.New(rand.NewSource(int64(a.opts.Seed)))
	noImprovement := 0

	finish := func(err error) (*place.HBTree, Stats, error) {
		best.Pack()
		stats.BestArea = best.Area()
		stats.BestCost = bestCost
		stats.Elapsed = time.Since(start)
		a.logger.Info("annealing finished",
			"run", stats.RunID,
			"iterations", stats.Iterations,
			"accepted", stats.Accepted,
			"rejected", stats.Rejected,
			"best_area", stats.BestArea,
			"elapsed", stats.Elapsed.Round(time.Millisecond))
		return best, stats, err
	}

	for temp := a.opts.InitialTemperature; temp > a.opts.FinalTemperature; temp *= a.opts.CoolingRate {
		for i := 0; i < a.opts.Iterations; i++ {
			if err := ctx.Err(); err != nil {
				return finish(errors.Wrap(errors.ErrCodeTimeout, err, "annealing cancelled"))
			}
			if a.wd != nil && a.wd.TimedOut() {
				return finish(errors.New(errors.ErrCodeTimeout, "time budget spent after %d iterations", stats.Iterations))
			}

			stats.Iterations++

			work := current.Clone()
			if !a.perturb(rng, work) {
				stats.Rejected++
				continue
			}
			work.Pack()
			workCost := a.cost(work)

			delta := workCost - currentCost
			if delta < 0 || rng.Float64() < math.Exp(-delta/temp) {
				current = work
				currentCost = workCost
				stats.Accepted++
				if workCost < bestCost {
					best = work.Clone()
					bestCost = workCost
					noImprovement = 0
					a.logger.Debug("improved", "area", work.Area(), "cost", workCost, "temp", temp)
					continue
				}
			} else {
				stats.Rejected++
			}

			noImprovement++
			if noImprovement >= a.opts.NoImprovementLimit {
				stats.NoImprovement = noImprovement
				return finish(nil)
			}
		}
	}

	stats.NoImprovement = noImprovement
	return finish(nil)
}

// cost evaluates the weighted objective on a packed tree.
func (a *Annealer) cost(t *place.HBTree) float64 {
	return a.opts.AreaWeight*float64(t.Area()) + a.opts.WirelengthWeight*t.WireLength()
}

// perturb applies one random operator to the tree. Returns false when the
// chosen operator was not applicable to the sampled operands; the caller
// counts that as a rejected iteration.
func (a *Annealer) perturb(rng *rand.Rand, t *place.HBTree) bool {
	moduleNames := sortedModuleNames(t)
	if len(moduleNames) == 0 {
		return false
	}
	groups := t.SymmetryGroups()

	r := rng.Float64()
	switch {
	case r < a.opts.ProbRotate:
		return t.RotateModule(moduleNames[rng.Intn(len(moduleNames))])

	case r < a.opts.ProbRotate+a.opts.ProbMove:
		names := movableNodeNames(t)
		if len(names) < 2 {
			return false
		}
		node := names[rng.Intn(len(names))]
		parent := names[rng.Intn(len(names))]
		return t.MoveNode(node, parent, rng.Intn(2) == 0)

	case r < a.opts.ProbRotate+a.opts.ProbMove+a.opts.ProbSwap:
		names := movableNodeNames(t)
		if len(names) < 2 {
			return false
		}
		i := rng.Intn(len(names))
		j := rng.Intn(len(names) - 1)
		if j >= i {
			j++
		}
		return t.SwapNodes(names[i], names[j])

	case r < a.opts.ProbRotate+a.opts.ProbMove+a.opts.ProbSwap+a.opts.ProbChangeRep:
		g := pairedGroup(rng, groups)
		if g == nil {
			return false
		}
		p := g.Pairs[rng.Intn(len(g.Pairs))]
		member := p.A
		if rng.Intn(2) == 1 {
			member = p.B
		}
		return t.ChangeRepresentative(g.Name, member)

	default:
		if len(groups) == 0 {
			return false
		}
		return t.ConvertSymmetryType(groups[rng.Intn(len(groups))].Name)
	}
}

// sortedModuleNames returns all module names in deterministic order.
func sortedModuleNames(t *place.HBTree) []string {
	names := make([]string, 0, len(t.Modules()))
	for name := range t.Modules() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// movableNodeNames returns the names of nodes that structural operators may
// target: free modules and hierarchy nodes, in deterministic order.
func movableNodeNames(t *place.HBTree) []string {
	var names []string
	for _, g := range t.SymmetryGroups() {
		names = append(names, g.Name)
	}
	inGroup := make(map[string]struct{})
	for _, g := range t.SymmetryGroups() {
		for _, m := range g.Members() {
			inGroup[m] = struct{}{}
		}
	}
	for name := range t.Modules() {
		if _, ok := inGroup[name]; !ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// pairedGroup picks a random group that has at least one symmetry pair.
func pairedGroup(rng *rand.Rand, groups []*place.SymmetryGroup) *place.SymmetryGroup {
	var candidates []*place.SymmetryGroup
	for _, g := range groups {
		if len(g.Pairs) > 0 {
			candidates = append(candidates, g)
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	return candidates[rng.Intn(len(candidates))]
}

