// Command barnesring runs a Barnes-Hut N-body simulation distributed
// across a fixed set of cooperating goroutines standing in for peer
// processes, communicating over a ring-rotation force-exchange
// protocol.
package main

import (
	"flag"
	"fmt"
	"image/color"
	"log"
	"os"
	"runtime"
	"sync"

	"github.com/gravring/barneshut/internal/config"
	"github.com/gravring/barneshut/internal/initcond"
	"github.com/gravring/barneshut/internal/render"
	"github.com/gravring/barneshut/internal/simulate"
	"github.com/gravring/barneshut/internal/transport"
)

var background = color.RGBA{A: 255}

var configPath = flag.String("config", "", "optional gcfg INI file with a [Simulation] section")
var verbose = flag.Bool("verbose", false, "log one startup line per rank")

func main() {
	flagValues := config.RegisterFlags(flag.CommandLine)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	flagValues.ApplyExplicit(flag.CommandLine, &cfg)

	if cfg.Procs == 0 {
		cfg.Procs = runtime.GOMAXPROCS(0)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	ring := transport.NewRing(cfg.Procs)
	defer ring.Close()

	portion := cfg.Portion()

	var rank0Renderer render.Renderer
	if cfg.Render {
		// Every rank's gathered position buffer is identical by
		// construction (spec's all-gather equality invariant), so a
		// single window on rank 0 draws the same frame every other
		// rank would draw; opening one SDL window per goroutine would
		// fight over the process's locked OS thread.
		sdlRenderer, err := render.NewSDL(800, 800, scaleFor(cfg.R), "barnesring")
		if err != nil {
			return fmt.Errorf("barnesring: opening renderer: %w", err)
		}
		defer sdlRenderer.Close()
		rank0Renderer = sdlRenderer
	}

	var wg sync.WaitGroup
	errs := make([]error, cfg.Procs)
	wg.Add(cfg.Procs)

	for rank := 0; rank < cfg.Procs; rank++ {
		go func(rank int) {
			defer wg.Done()

			logger := log.New(os.Stderr, fmt.Sprintf("[rank %d] ", rank), log.LstdFlags)
			owned := initcond.Generate(rank, cfg.Procs, portion, cfg.R, cfg.Seed)

			var r render.Renderer
			switch {
			case rank == 0 && rank0Renderer != nil:
				r = rank0Renderer
			case cfg.Render:
				r = render.NewMemory()
			default:
				r = nil
			}

			sim := simulate.New(rank, owned, ring.Peer(rank), cfg.R, cfg.Dt, cfg.Theta, r, logger)
			if *verbose {
				logger.Printf("starting: portion=%d r=%g dt=%g theta=%g steps=%d", portion, cfg.R, cfg.Dt, cfg.Theta, cfg.Steps)
			}

			errs[rank] = sim.Run(cfg.Steps, background)
		}(rank)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func scaleFor(r float64) float64 {
	// Fit a 2R-wide simulation into an ~800px window.
	return (2 * r) / 800
}
