package server

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/lox/blackjack/internal/fileutil"
	"github.com/lox/blackjack/internal/game"
)

// DefaultConfigFile is the config path used when none is given
const DefaultConfigFile = "blackjack.hcl"

// Config represents the complete server configuration
type Config struct {
	Server ServerSettings `hcl:"server,block"`
	Pacing PacingSettings `hcl:"pacing,block"`
}

// ServerSettings contains listener and logging configuration
type ServerSettings struct {
	Address  string `hcl:"address,optional"`
	Port     int    `hcl:"port,optional"`
	LogLevel string `hcl:"log_level,optional"`
}

// PacingSettings controls how fast transitions are replayed to clients
type PacingSettings struct {
	DealDelayMS        int `hcl:"deal_delay_ms,optional"`
	AnimationTimeoutMS int `hcl:"animation_timeout_ms,optional"`
}

// fileConfig lets either block be left out of the file
type fileConfig struct {
	Server *ServerSettings `hcl:"server,block"`
	Pacing *PacingSettings `hcl:"pacing,block"`
}

// DefaultConfig returns the default server configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerSettings{
			Address:  "localhost",
			Port:     8080,
			LogLevel: "info",
		},
		Pacing: PacingSettings{
			DealDelayMS:        int(game.DefaultDealDelay / time.Millisecond),
			AnimationTimeoutMS: int(game.DefaultAnimationTimeout / time.Millisecond),
		},
	}
}

// LoadConfig loads configuration from an HCL file. A missing file yields the
// defaults; unset attributes keep their default values.
func LoadConfig(filename string) (*Config, error) {
	if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var raw fileConfig
	diags = gohcl.DecodeBody(file.Body, nil, &raw)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	config := DefaultConfig()
	if s := raw.Server; s != nil {
		if s.Address != "" {
			config.Server.Address = s.Address
		}
		if s.Port != 0 {
			config.Server.Port = s.Port
		}
		if s.LogLevel != "" {
			config.Server.LogLevel = s.LogLevel
		}
	}
	if p := raw.Pacing; p != nil {
		if p.DealDelayMS != 0 {
			config.Pacing.DealDelayMS = p.DealDelayMS
		}
		if p.AnimationTimeoutMS != 0 {
			config.Pacing.AnimationTimeoutMS = p.AnimationTimeoutMS
		}
	}

	return config, nil
}

// SaveConfig writes the configuration as HCL, replacing filename atomically
func SaveConfig(filename string, config *Config) error {
	f := hclwrite.NewEmptyFile()
	gohcl.EncodeIntoBody(config, f.Body())
	if err := fileutil.WriteFileAtomic(filename, f.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Validate validates the server configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if _, err := log.ParseLevel(c.Server.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.Server.LogLevel, err)
	}
	if c.Pacing.DealDelayMS < 0 {
		return fmt.Errorf("deal delay must not be negative: %d", c.Pacing.DealDelayMS)
	}
	if c.Pacing.AnimationTimeoutMS < 0 {
		return fmt.Errorf("animation timeout must not be negative: %d", c.Pacing.AnimationTimeoutMS)
	}
	return nil
}

// Addr returns the listen address
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// DealDelay returns the pause before each dealt card
func (c *Config) DealDelay() time.Duration {
	return time.Duration(c.Pacing.DealDelayMS) * time.Millisecond
}

// AnimationTimeout returns the longest wait for a client animation ack
func (c *Config) AnimationTimeout() time.Duration {
	return time.Duration(c.Pacing.AnimationTimeoutMS) * time.Millisecond
}
