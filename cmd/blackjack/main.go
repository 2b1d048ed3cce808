package main

import (
	"strconv"

	"github.com/alecthomas/kong"
	"github.com/lox/blackjack/internal/rules"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version  kong.VersionFlag `short:"v" help:"Show version"`
	Serve    ServeCmd         `cmd:"" help:"Serve blackjack sessions over WebSocket"`
	Play     PlayCmd          `cmd:"" help:"Play blackjack in the terminal"`
	Simulate SimulateCmd      `cmd:"" help:"Play many headless rounds and report the results"`
	Config   ConfigCmd        `cmd:"" help:"Manage the server configuration file"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("blackjack"),
		kong.Description("Single-player blackjack against the dealer"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version":          version,
			"starting_balance": strconv.Itoa(rules.StartingBalance),
		},
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
