// Package config loads and validates the simulation's launch
// configuration: total body count, simulation radius, time step,
// Barnes-Hut acceptance ratio, RNG seed, render flag, process count,
// and step budget.
package config

import (
	"flag"
	"fmt"
	"math"

	"gopkg.in/gcfg.v1"
)

// Defaults match the table in the specification's external interfaces
// section.
const (
	DefaultN      = 4000
	DefaultR      = 2.8e6
	DefaultDt     = 0.1
	DefaultTheta  = 0.5
	DefaultRender = true
)

// SimulationConfig holds the [Simulation] section of an optional gcfg
// INI file; field names match flag names capitalized, the same
// convention the config's grounding file (gotetra's render/io/config.go)
// uses for its sections.
type SimulationConfig struct {
	// Every field is optional; Load seeds each one from Default.
	N      int
	R      float64
	Dt     float64
	Theta  float64
	Seed   int64
	Render bool
	Steps  int
	Procs  int
}

// Wrapper is the gcfg top-level document: one [Simulation] section.
type Wrapper struct {
	Simulation SimulationConfig
}

// Config is the fully resolved, validated configuration used by
// cmd/barnesring and every internal package that needs it.
type Config struct {
	N      int
	R      float64
	Dt     float64
	Theta  float64
	Seed   int64
	Render bool
	Steps  int
	Procs  int
}

// Default returns the configuration table's defaults with Procs left
// at zero, meaning "use GOMAXPROCS" — callers resolve that themselves
// since config does not import runtime.
func Default() Config {
	return Config{
		N:      DefaultN,
		R:      DefaultR,
		Dt:     DefaultDt,
		Theta:  DefaultTheta,
		Render: DefaultRender,
	}
}

// Load reads an optional gcfg INI file at path (skipped entirely if
// path is empty) into a Config seeded with Default's values, so a
// file only needs to mention the fields it wants to override.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	w := Wrapper{Simulation: SimulationConfig{
		N: cfg.N, R: cfg.R, Dt: cfg.Dt, Theta: cfg.Theta,
		Render: cfg.Render, Seed: cfg.Seed, Steps: cfg.Steps, Procs: cfg.Procs,
	}}
	if err := gcfg.ReadFileInto(&w, path); err != nil {
		return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
	}

	s := w.Simulation
	cfg.N = s.N
	cfg.R = s.R
	cfg.Dt = s.Dt
	cfg.Theta = s.Theta
	cfg.Seed = s.Seed
	cfg.Render = s.Render
	cfg.Steps = s.Steps
	cfg.Procs = s.Procs
	return cfg, nil
}

// FlagValues holds the destinations for the simulation's command-line
// flags. Keeping them separate from Config lets RegisterFlags run
// before the -config file (whose path is itself a flag) has been
// read, without clobbering file-sourced values that the user did not
// explicitly override on the command line.
type FlagValues struct {
	N      int
	R      float64
	Dt     float64
	Theta  float64
	Seed   int64
	Render bool
	Steps  int
	Procs  int
}

// RegisterFlags registers the simulation's flags on fs, defaulted
// from the table in the specification's external interfaces section,
// and returns the struct their values land in once fs.Parse runs.
func RegisterFlags(fs *flag.FlagSet) *FlagValues {
	d := Default()
	v := &FlagValues{}
	fs.IntVar(&v.N, "n", d.N, "total bodies across all processes (must be a multiple of -procs)")
	fs.Float64Var(&v.R, "r", d.R, "simulation radius (half side of the root quadrant)")
	fs.Float64Var(&v.Dt, "dt", d.Dt, "integration time step")
	fs.Float64Var(&v.Theta, "theta", d.Theta, "Barnes-Hut acceptance ratio in (0, 1]")
	fs.Int64Var(&v.Seed, "seed", d.Seed, "base RNG seed (offset per process)")
	fs.BoolVar(&v.Render, "render", d.Render, "enable all-gather and draw each step")
	fs.IntVar(&v.Steps, "steps", d.Steps, "number of steps to run (0 = unbounded)")
	fs.IntVar(&v.Procs, "procs", d.Procs, "number of simulated processes (0 = GOMAXPROCS)")
	return v
}

// ApplyExplicit overlays onto cfg only the flags the caller actually
// passed on the command line (via fs.Visit), so a config file's
// values survive for every flag the user left at its default.
func (v *FlagValues) ApplyExplicit(fs *flag.FlagSet, cfg *Config) {
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "n":
			cfg.N = v.N
		case "r":
			cfg.R = v.R
		case "dt":
			cfg.Dt = v.Dt
		case "theta":
			cfg.Theta = v.Theta
		case "seed":
			cfg.Seed = v.Seed
		case "render":
			cfg.Render = v.Render
		case "steps":
			cfg.Steps = v.Steps
		case "procs":
			cfg.Procs = v.Procs
		}
	})
}

// Validate checks the configuration errors described in the error
// handling design: N must be a positive multiple of Procs; R, Dt,
// Theta must be finite and positive; Theta additionally must not
// exceed 1; Procs must be at least 1.
func (c Config) Validate() error {
	if c.Procs < 1 {
		return fmt.Errorf("config: procs must be >= 1, got %d", c.Procs)
	}
	if c.N <= 0 {
		return fmt.Errorf("config: n must be positive, got %d", c.N)
	}
	if c.N%c.Procs != 0 {
		return fmt.Errorf("config: n (%d) must be a multiple of procs (%d)", c.N, c.Procs)
	}
	if !finitePositive(c.R) {
		return fmt.Errorf("config: r must be finite and positive, got %g", c.R)
	}
	if !finitePositive(c.Dt) {
		return fmt.Errorf("config: dt must be finite and positive, got %g", c.Dt)
	}
	if !finitePositive(c.Theta) || c.Theta > 1 {
		return fmt.Errorf("config: theta must be finite and in (0, 1], got %g", c.Theta)
	}
	if c.Steps < 0 {
		return fmt.Errorf("config: steps must be >= 0, got %d", c.Steps)
	}
	return nil
}

// Portion returns N/Procs, the fixed number of bodies each process
// owns. Callers must call Validate first.
func (c Config) Portion() int {
	return c.N / c.Procs
}

func finitePositive(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}
