// Package config holds the server configuration: defaults, optional YAML
// overrides, and validation.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full server configuration. File values are overlaid on
// defaults; command-line flags override both.
//
// MapSize, BlockSize, InitialSpeed and the boost duration are
// protocol-adjacent: the client bakes in the same values, so changing them
// here requires changing the client too.
type Config struct {
	ListenAddr string `yaml:"listen_addr"` // TCP game listener
	HTTPAddr   string `yaml:"http_addr"`   // metrics + spectator endpoint, "" disables
	Players    int    `yaml:"players"`     // players per session, 2 to 4

	MapSize      int `yaml:"map_size"`      // square grid side length in blocks
	BlockSize    int `yaml:"block_size"`    // block size in pixels, used only by the client
	InitialSpeed int `yaml:"initial_speed"` // initial speed advertised in game params

	FramePeriodMS   int `yaml:"frame_period_ms"`   // simulation + broadcast cadence
	InputPeriodMS   int `yaml:"input_period_ms"`   // move polling cadence
	BoostDurationMS int `yaml:"boost_duration_ms"` // mango boost lifetime
	ReadTimeoutMS   int `yaml:"read_timeout_ms"`   // socket peek deadline

	NoDeath bool `yaml:"no_death"` // developer mode: kills are logged, not applied
}

// Defaults returns the configuration matching the reference client.
func Defaults() Config {
	return Config{
		ListenAddr:      ":4000",
		HTTPAddr:        ":8080",
		Players:         2,
		MapSize:         64,
		BlockSize:       10,
		InitialSpeed:    1,
		FramePeriodMS:   50,
		InputPeriodMS:   10,
		BoostDurationMS: 750,
		ReadTimeoutMS:   1,
	}
}

// Load returns the defaults overlaid with the YAML file at path. An empty
// path means defaults only.
func Load(path string) (Config, error) {
	cfg := Defaults()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("config: listen_addr must not be empty")
	}
	if c.Players < 2 || c.Players > 4 {
		return fmt.Errorf("config: players must be between 2 and 4, got %d", c.Players)
	}
	// Corners sit 4 tiles in from the walls; anything smaller has no room
	// for four snakes to spawn apart.
	if c.MapSize < 16 {
		return fmt.Errorf("config: map_size must be at least 16, got %d", c.MapSize)
	}
	if c.MapSize > 32767 {
		return fmt.Errorf("config: map_size %d does not fit 16-bit coordinates", c.MapSize)
	}
	if c.FramePeriodMS <= 0 {
		return fmt.Errorf("config: frame_period_ms must be positive, got %d", c.FramePeriodMS)
	}
	if c.InputPeriodMS <= 0 {
		return fmt.Errorf("config: input_period_ms must be positive, got %d", c.InputPeriodMS)
	}
	if c.BoostDurationMS <= 0 {
		return fmt.Errorf("config: boost_duration_ms must be positive, got %d", c.BoostDurationMS)
	}
	if c.ReadTimeoutMS <= 0 {
		return fmt.Errorf("config: read_timeout_ms must be positive, got %d", c.ReadTimeoutMS)
	}
	return nil
}

// FramePeriod returns the simulation and broadcast cadence.
func (c Config) FramePeriod() time.Duration {
	return time.Duration(c.FramePeriodMS) * time.Millisecond
}

// InputPeriod returns the move polling cadence.
func (c Config) InputPeriod() time.Duration {
	return time.Duration(c.InputPeriodMS) * time.Millisecond
}

// BoostDuration returns how long a mango boost lasts.
func (c Config) BoostDuration() time.Duration {
	return time.Duration(c.BoostDurationMS) * time.Millisecond
}

// ReadTimeout returns the socket peek deadline.
func (c Config) ReadTimeout() time.Duration {
	return time.Duration(c.ReadTimeoutMS) * time.Millisecond
}
