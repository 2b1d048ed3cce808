package server

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lox/blackjack/internal/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFile(t *testing.T) {
	t.Parallel()

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.hcl"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.Equal(t, "localhost:8080", cfg.Addr())
	assert.Equal(t, game.DefaultDealDelay, cfg.DealDelay())
	assert.Equal(t, game.DefaultAnimationTimeout, cfg.AnimationTimeout())
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    func(*Config)
	}{
		{
			name: "full file",
			content: `
server {
  address   = "0.0.0.0"
  port      = 9000
  log_level = "debug"
}

pacing {
  deal_delay_ms        = 100
  animation_timeout_ms = 250
}
`,
			want: func(c *Config) {
				c.Server = ServerSettings{Address: "0.0.0.0", Port: 9000, LogLevel: "debug"}
				c.Pacing = PacingSettings{DealDelayMS: 100, AnimationTimeoutMS: 250}
			},
		},
		{
			name:    "server block only",
			content: "server {\n  port = 9001\n}\n",
			want: func(c *Config) {
				c.Server.Port = 9001
			},
		},
		{
			name:    "pacing block only",
			content: "pacing {\n  deal_delay_ms = 10\n}\n",
			want: func(c *Config) {
				c.Pacing.DealDelayMS = 10
			},
		},
		{
			name:    "empty file",
			content: "",
			want:    func(*Config) {},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), "blackjack.hcl")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			cfg, err := LoadConfig(path)
			require.NoError(t, err)

			want := DefaultConfig()
			tt.want(want)
			assert.Equal(t, want, cfg)
			assert.NoError(t, cfg.Validate())
		})
	}
}

func TestLoadConfigErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		errMsg  string
	}{
		{"syntax error", "server {", "failed to parse HCL file"},
		{"unknown attribute", "server {\n  colour = \"red\"\n}\n", "failed to decode HCL"},
		{"wrong type", "server {\n  port = \"high\"\n}\n", "failed to decode HCL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), "blackjack.hcl")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			_, err := LoadConfig(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		modify func(*Config)
		errMsg string
	}{
		{"defaults", func(*Config) {}, ""},
		{"port too low", func(c *Config) { c.Server.Port = 0 }, "invalid port"},
		{"port too high", func(c *Config) { c.Server.Port = 70000 }, "invalid port"},
		{"bad log level", func(c *Config) { c.Server.LogLevel = "loud" }, "invalid log level"},
		{"negative deal delay", func(c *Config) { c.Pacing.DealDelayMS = -1 }, "deal delay"},
		{"negative timeout", func(c *Config) { c.Pacing.AnimationTimeoutMS = -5 }, "animation timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), DefaultConfigFile)
	cfg := DefaultConfig()
	cfg.Server.Port = 9100
	cfg.Pacing.AnimationTimeoutMS = 900

	require.NoError(t, SaveConfig(path, cfg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "server {")
	assert.Contains(t, string(data), "pacing {")

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
	assert.Equal(t, 900*time.Millisecond, loaded.AnimationTimeout())
}
