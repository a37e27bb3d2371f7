package anneal

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/symplace/pkg/errors"
	"github.com/matzehuels/symplace/pkg/place"
	"github.com/matzehuels/symplace/pkg/watchdog"
)

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

func smallProblem(t *testing.T) *place.HBTree {
	t.Helper()
	tree := place.NewHBTree()
	modules := []*place.Module{
		{Name: "L", Width: 2, Height: 4},
		{Name: "R", Width: 2, Height: 4},
		{Name: "f1", Width: 5, Height: 2},
		{Name: "f2", Width: 2, Height: 5},
		{Name: "f3", Width: 3, Height: 3},
	}
	for _, m := range modules {
		if err := tree.AddModule(m); err != nil {
			t.Fatal(err)
		}
	}
	if err := tree.AddSymmetryGroup(&place.SymmetryGroup{
		Name: "G", Axis: place.AxisVertical, Pairs: []place.Pair{{A: "L", B: "R"}},
	}); err != nil {
		t.Fatal(err)
	}
	return tree
}

func shortOptions(seed uint64) Options {
	opts := DefaultOptions()
	opts.InitialTemperature = 10
	opts.FinalTemperature = 1
	opts.Iterations = 20
	opts.NoImprovementLimit = 200
	opts.Seed = seed
	return opts
}

func TestOptions_Validate(t *testing.T) {
	opts := DefaultOptions()
	if err := opts.Validate(); err != nil {
		t.Errorf("default options invalid: %v", err)
	}

	bad := DefaultOptions()
	bad.CoolingRate = 1.5
	if err := bad.Validate(); err == nil {
		t.Error("cooling rate 1.5 accepted")
	}

	bad = DefaultOptions()
	bad.FinalTemperature = 2000
	if err := bad.Validate(); err == nil {
		t.Error("final above initial accepted")
	}
}

func TestOptions_NormalizesProbabilities(t *testing.T) {
	opts := DefaultOptions()
	opts.ProbRotate = 2
	opts.ProbMove = 2
	opts.ProbSwap = 2
	opts.ProbChangeRep = 2
	opts.ProbConvertSym = 2
	if err := opts.Validate(); err != nil {
		t.Fatal(err)
	}
	sum := opts.ProbRotate + opts.ProbMove + opts.ProbSwap + opts.ProbChangeRep + opts.ProbConvertSym
	if sum < 0.999 || sum > 1.001 {
		t.Errorf("probabilities sum to %v after normalize, want 1", sum)
	}

	zero := DefaultOptions()
	zero.ProbRotate, zero.ProbMove, zero.ProbSwap, zero.ProbChangeRep, zero.ProbConvertSym = 0, 0, 0, 0, 0
	if err := zero.Validate(); err != nil {
		t.Fatal(err)
	}
	if zero.ProbRotate != DefaultProbRotate {
		t.Error("zero probabilities did not fall back to defaults")
	}
}

func TestRun_ImprovesOrKeepsInitial(t *testing.T) {
	tree := smallProblem(t)
	a, err := New(shortOptions(1), quietLogger())
	if err != nil {
		t.Fatal(err)
	}

	best, stats, err := a.Run(context.Background(), tree)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if best == nil {
		t.Fatal("Run() returned nil tree")
	}
	if stats.BestArea <= 0 {
		t.Errorf("BestArea = %d", stats.BestArea)
	}
	if stats.BestArea > stats.InitialArea {
		t.Errorf("best area %d worse than initial %d", stats.BestArea, stats.InitialArea)
	}
	if stats.Iterations == 0 {
		t.Error("no iterations recorded")
	}
	if stats.RunID == "" {
		t.Error("empty run ID")
	}

	// The best tree must satisfy the symmetry constraints.
	node := best.FindNode("G")
	if node == nil || node.ASF() == nil || !node.ASF().IsSymmetricFeasible() {
		t.Error("best state violates symmetry feasibility")
	}
}

func TestRun_DeterministicForSeed(t *testing.T) {
	run := func() int {
		tree := smallProblem(t)
		a, err := New(shortOptions(7), quietLogger())
		if err != nil {
			t.Fatal(err)
		}
		_, stats, err := a.Run(context.Background(), tree)
		if err != nil {
			t.Fatal(err)
		}
		return stats.BestArea
	}

	if first, second := run(), run(); first != second {
		t.Errorf("same seed produced areas %d and %d", first, second)
	}
}

func TestRun_EmptyProblem(t *testing.T) {
	tree := place.NewHBTree()
	a, err := New(shortOptions(1), quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := a.Run(context.Background(), tree); err == nil {
		t.Error("Run() = nil error for empty problem")
	}
}

func TestRun_WatchdogTimeout(t *testing.T) {
	tree := smallProblem(t)
	opts := shortOptions(1)
	opts.Iterations = 1000000
	opts.NoImprovementLimit = 1 << 30
	a, err := New(opts, quietLogger())
	if err != nil {
		t.Fatal(err)
	}

	wd := watchdog.New(50 * time.Millisecond)
	wd.Start(context.Background())
	defer wd.Stop()
	a.SetWatchdog(wd)

	best, _, runErr := a.Run(context.Background(), tree)
	if !errors.Is(runErr, errors.ErrCodeTimeout) {
		t.Errorf("Run() error = %v, want TIMEOUT", runErr)
	}
	if best == nil {
		t.Error("timeout discarded the best-effort solution")
	}
	if best != nil && best.Area() == 0 {
		t.Error("best-effort solution is not packed")
	}
}

func TestRun_ContextCancelled(t *testing.T) {
	tree := smallProblem(t)
	opts := shortOptions(1)
	opts.Iterations = 1000000
	opts.NoImprovementLimit = 1 << 30
	a, err := New(opts, quietLogger())
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	best, _, runErr := a.Run(ctx, tree)
	if !errors.Is(runErr, errors.ErrCodeTimeout) {
		t.Errorf("Run() error = %v, want TIMEOUT wrapping context error", runErr)
	}
	if best == nil {
		t.Error("cancellation discarded the best-effort solution")
	}
}
