package main

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/lox/blackjack/cmd/blackjack/shared"
	"github.com/lox/blackjack/internal/simulator"
)

// SimulateCmd plays headless games and prints aggregate results
type SimulateCmd struct {
	Games   int    `short:"g" default:"100" help:"Number of independent games"`
	Rounds  int    `short:"r" default:"100" help:"Rounds per game"`
	Bet     int    `short:"b" default:"10" help:"Bet per round"`
	Policy  string `default:"simple" enum:"simple,basic" help:"Player policy (simple, basic)"`
	Workers int    `short:"w" help:"Parallel workers (default: GOMAXPROCS)"`
	Seed    *int64 `help:"Base seed; game i uses seed+i (optional)"`
	Debug   bool   `help:"Enable debug logging"`
}

func (c *SimulateCmd) Run() error {
	level := "info"
	if c.Debug {
		level = "debug"
	}
	logger := shared.SetupLogger(level)
	ctx := shared.SetupSignalHandler(logger)

	policy, ok := simulator.Policies[c.Policy]
	if !ok {
		names := make([]string, 0, len(simulator.Policies))
		for name := range simulator.Policies {
			names = append(names, name)
		}
		sort.Strings(names)
		return fmt.Errorf("unknown policy %q (want one of %s)", c.Policy, strings.Join(names, ", "))
	}

	seed := time.Now().UnixNano()
	if c.Seed != nil {
		seed = *c.Seed
	}

	logger.Info("Starting simulation", "games", c.Games, "rounds", c.Rounds, "policy", c.Policy, "seed", seed)
	start := time.Now()

	sim := simulator.New(simulator.Config{
		Games:   c.Games,
		Rounds:  c.Rounds,
		Bet:     c.Bet,
		Workers: c.Workers,
		Seed:    seed,
		Policy:  policy,
		Logger:  logger,
	})
	stats, err := sim.Run(ctx)
	if err != nil {
		return fmt.Errorf("simulation failed: %w", err)
	}

	simulator.PrintSummary(os.Stdout, stats, c.Policy)
	logger.Info("Simulation complete", "rounds", stats.Rounds, "duration", time.Since(start).Round(time.Millisecond))
	return nil
}
