package anneal

import "github.com/matzehuels/symplace/pkg/errors"

// Default annealing schedule and perturbation mix. These are the single
// source of truth shared by CLI, API, and config loading.
const (
	DefaultInitialTemperature = 1000.0
	DefaultFinalTemperature   = 0.1
	DefaultCoolingRate        = 0.95
	DefaultIterations         = 100
	DefaultNoImprovementLimit = 1000

	DefaultProbRotate     = 0.3
	DefaultProbMove       = 0.3
	DefaultProbSwap       = 0.3
	DefaultProbChangeRep  = 0.05
	DefaultProbConvertSym = 0.05

	DefaultAreaWeight       = 1.0
	DefaultWirelengthWeight = 0.0

	// DefaultSeed keeps solves reproducible unless the caller asks otherwise.
	DefaultSeed = uint64(42)
)

// Options configures one annealing run.
type Options struct {
	InitialTemperature float64
	FinalTemperature   float64
	CoolingRate        float64
	Iterations         int // perturbations per temperature step
	NoImprovementLimit int // abort after this many non-improving iterations

	ProbRotate     float64
	ProbMove       float64
	ProbSwap       float64
	ProbChangeRep  float64
	ProbConvertSym float64

	AreaWeight       float64
	WirelengthWeight float64

	Seed uint64
}

// DefaultOptions returns the default annealing configuration.
func DefaultOptions() Options {
	return Options{
		InitialTemperature: DefaultInitialTemperature,
		FinalTemperature:   DefaultFinalTemperature,
		CoolingRate:        DefaultCoolingRate,
		Iterations:         DefaultIterations,
		NoImprovementLimit: DefaultNoImprovementLimit,
		ProbRotate:         DefaultProbRotate,
		ProbMove:           DefaultProbMove,
		ProbSwap:           DefaultProbSwap,
		ProbChangeRep:      DefaultProbChangeRep,
		ProbConvertSym:     DefaultProbConvertSym,
		AreaWeight:         DefaultAreaWeight,
		WirelengthWeight:   DefaultWirelengthWeight,
		Seed:               DefaultSeed,
	}
}

// Validate checks the schedule and normalizes the perturbation probabilities
// so they sum to 1. Probabilities that sum to zero fall back to the defaults.
func (o *Options) Validate() error {
	if o.InitialTemperature <= 0 || o.FinalTemperature <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "temperatures must be positive")
	}
	if o.FinalTemperature >= o.InitialTemperature {
		return errors.New(errors.ErrCodeInvalidConfig,
			"final temperature %g must be below initial temperature %g",
			o.FinalTemperature, o.InitialTemperature)
	}
	if o.CoolingRate <= 0 || o.CoolingRate >= 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "cooling rate must be in (0, 1)")
	}
	if o.Iterations <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "iterations per temperature must be positive")
	}
	if o.AreaWeight < 0 || o.WirelengthWeight < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cost weights must be non-negative")
	}

	sum := o.ProbRotate + o.ProbMove + o.ProbSwap + o.ProbChangeRep + o.ProbConvertSym
	if sum <= 0 {
		o.ProbRotate = DefaultProbRotate
		o.ProbMove = DefaultProbMove
		o.ProbSwap = DefaultProbSwap
		o.ProbChangeRep = DefaultProbChangeRep
		o.ProbConvertSym = DefaultProbConvertSym
		return nil
	}
	o.ProbRotate /= sum
	o.ProbMove /= sum
	o.ProbSwap /= sum
	o.ProbChangeRep /= sum
	o.ProbConvertSym /= sum
	return nil
}
