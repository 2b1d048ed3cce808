package main

import (
	"fmt"
	"os"

	"github.com/lox/blackjack/internal/server"
)

// ConfigCmd groups config file commands
type ConfigCmd struct {
	Init ConfigInitCmd `cmd:"" help:"Write a default configuration file"`
}

// ConfigInitCmd writes the default configuration
type ConfigInitCmd struct {
	Path  string `arg:"" optional:"" default:"blackjack.hcl" help:"Where to write the file"`
	Force bool   `short:"f" help:"Overwrite an existing file"`
}

func (c *ConfigInitCmd) Run() error {
	if _, err := os.Stat(c.Path); err == nil && !c.Force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", c.Path)
	}
	if err := server.SaveConfig(c.Path, server.DefaultConfig()); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", c.Path)
	return nil
}
