package main

import (
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/randutil"
	"github.com/lox/blackjack/internal/tui"
	"github.com/muesli/termenv"
)

// PlayCmd runs the terminal UI against a local game
type PlayCmd struct {
	Seed        *int64 `help:"Deterministic shuffle seed (optional)"`
	DealDelayMs int    `default:"350" help:"Delay between dealt cards in milliseconds"`
	Balance     int    `default:"${starting_balance}" help:"Starting balance"`
	LogFile     string `help:"Write debug logs to this file"`
	NoColor     bool   `help:"Render without colours"`
}

func (c *PlayCmd) Run() error {
	var out io.Writer = io.Discard
	if c.LogFile != "" {
		f, err := os.OpenFile(c.LogFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer func() { _ = f.Close() }()
		out = f
	}

	logger := log.NewWithOptions(out, log.Options{
		Level:           log.DebugLevel,
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
	})

	if c.NoColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	seed, rng := randutil.Resolve(c.Seed)
	logger.Info("Starting game", "seed", seed, "balance", c.Balance)

	g := game.New(rng, game.WithLogger(logger), game.WithBalance(c.Balance))
	model := tui.NewModel(g, logger, msDuration(c.DealDelayMs))

	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}

	fmt.Printf("Final balance: $%d (%+d)\n", g.Balance(), g.Balance()-c.Balance)
	return nil
}

func msDuration(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
