// Package config loads solver configuration from TOML files.
//
// A config file can override any part of the annealing schedule, the
// perturbation mix, the cost weights, and the result cache settings:
//
//	[annealing]
//	initial_temperature = 1000.0
//	final_temperature = 0.1
//	cooling_rate = 0.95
//	iterations = 100
//	no_improvement_limit = 1000
//	seed = 42
//
//	[perturbation]
//	rotate = 0.3
//	move = 0.3
//	swap = 0.3
//	change_representative = 0.05
//	convert_symmetry = 0.05
//
//	[cost]
//	area = 1.0
//	wirelength = 0.0
//
//	[cache]
//	backend = "file"   # file, redis, or none
//	redis_addr = "localhost:6379"
//	ttl = "168h"
//
// Omitted keys keep their defaults.
package config

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/symplace/pkg/anneal"
	"github.com/matzehuels/symplace/pkg/errors"
)

// Config is the full solver configuration.
type Config struct {
	Annealing    Annealing    `toml:"annealing"`
	Perturbation Perturbation `toml:"perturbation"`
	Cost         Cost         `toml:"cost"`
	Cache        Cache        `toml:"cache"`
}

// Annealing configures the cooling schedule.
type Annealing struct {
	InitialTemperature float64 `toml:"initial_temperature"`
	FinalTemperature   float64 `toml:"final_temperature"`
	CoolingRate        float64 `toml:"cooling_rate"`
	Iterations         int     `toml:"iterations"`
	NoImprovementLimit int     `toml:"no_improvement_limit"`
	Seed               uint64  `toml:"seed"`
}

// Perturbation configures the operator mix.
type Perturbation struct {
	Rotate               float64 `toml:"rotate"`
	Move                 float64 `toml:"move"`
	Swap                 float64 `toml:"swap"`
	ChangeRepresentative float64 `toml:"change_representative"`
	ConvertSymmetry      float64 `toml:"convert_symmetry"`
}

// Cost configures the objective weights.
type Cost struct {
	Area       float64 `toml:"area"`
	Wirelength float64 `toml:"wirelength"`
}

// Cache configures the result cache.
type Cache struct {
	Backend   string   `toml:"backend"`
	RedisAddr string   `toml:"redis_addr"`
	TTL       duration `toml:"ttl"`
}

// duration wraps time.Duration for TOML decoding from strings like "168h".
type duration time.Duration

func (d *duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = duration(parsed)
	return nil
}

// Duration returns the wrapped value.
func (d duration) Duration() time.Duration { return time.Duration(d) }

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Annealing: Annealing{
			InitialTemperature: anneal.DefaultInitialTemperature,
			FinalTemperature:   anneal.DefaultFinalTemperature,
			CoolingRate:        anneal.DefaultCoolingRate,
			Iterations:         anneal.DefaultIterations,
			NoImprovementLimit: anneal.DefaultNoImprovementLimit,
			Seed:               anneal.DefaultSeed,
		},
		Perturbation: Perturbation{
			Rotate:               anneal.DefaultProbRotate,
			Move:                 anneal.DefaultProbMove,
			Swap:                 anneal.DefaultProbSwap,
			ChangeRepresentative: anneal.DefaultProbChangeRep,
			ConvertSymmetry:      anneal.DefaultProbConvertSym,
		},
		Cost: Cost{
			Area:       anneal.DefaultAreaWeight,
			Wirelength: anneal.DefaultWirelengthWeight,
		},
		Cache: Cache{
			Backend: "file",
			TTL:     duration(7 * 24 * time.Hour),
		},
	}
}

// Load reads path and merges it over the defaults. An empty path returns the
// defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeIO, err, "read config %s", path)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config %s", path)
	}
	return cfg, nil
}

// AnnealOptions converts the configuration into annealer options.
func (c Config) AnnealOptions() anneal.Options {
	return anneal.Options{
		InitialTemperature: c.Annealing.InitialTemperature,
		FinalTemperature:   c.Annealing.FinalTemperature,
		CoolingRate:        c.Annealing.CoolingRate,
		Iterations:         c.Annealing.Iterations,
		NoImprovementLimit: c.Annealing.NoImprovementLimit,
		ProbRotate:         c.Perturbation.Rotate,
		ProbMove:           c.Perturbation.Move,
		ProbSwap:           c.Perturbation.Swap,
		ProbChangeRep:      c.Perturbation.ChangeRepresentative,
		ProbConvertSym:     c.Perturbation.ConvertSymmetry,
		AreaWeight:         c.Cost.Area,
		WirelengthWeight:   c.Cost.Wirelength,
		Seed:               c.Annealing.Seed,
	}
}
