// Package config loads the benchviz service configuration from a TOML file,
// one section per service concern. Missing sections fall back to the local
// development defaults used by the bench startup scripts.
package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/au-dtlab/benchviz/bus"
	"github.com/au-dtlab/benchviz/recorder"
)

// Snapshot controls the periodic scene captures.
type Snapshot struct {
	Width    int     `toml:"width"`
	Height   int     `toml:"height"`
	Interval float64 `toml:"interval_seconds"`
	Dir      string  `toml:"dir"`
	WriteSTL bool    `toml:"write_stl"`
}

// Monitor parameterizes the displacement recovery requirement.
type Monitor struct {
	MaxVerticalDisplacement float64 `toml:"max_vertical_displacement"`
	RecoveryWindow          float64 `toml:"recovery_window_seconds"`
	Lookback                float64 `toml:"lookback_seconds"`
}

// Actuator parameterizes the feedforward motion profiles, one per axis:
// the horizontal axis tracks a load amplitude, the vertical one a
// displacement amplitude.
type Actuator struct {
	HorizontalAmplitude float64 `toml:"horizontal_amplitude"`
	VerticalAmplitude   float64 `toml:"vertical_amplitude"`
	HorizontalPeriod    float64 `toml:"horizontal_period_minutes"`
	VerticalPeriod      float64 `toml:"vertical_period_minutes"`
	Interval            float64 `toml:"interval_seconds"`
}

// Config is the full service configuration.
type Config struct {
	RabbitMQ bus.Config      `toml:"rabbitmq"`
	InfluxDB recorder.Config `toml:"influxdb"`
	Snapshot Snapshot        `toml:"snapshot"`
	Monitor  Monitor         `toml:"monitor"`
	Actuator Actuator        `toml:"actuator"`
}

// Parse decodes a TOML document and applies defaults.
func Parse(data []byte) (Config, error) {
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg.withDefaults(), nil
}

// Load reads and parses the configuration file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Default returns the local development configuration.
func Default() Config {
	var cfg Config
	return cfg.withDefaults()
}

func (c Config) withDefaults() Config {
	if c.Snapshot.Width == 0 {
		c.Snapshot.Width = 960
	}
	if c.Snapshot.Height == 0 {
		c.Snapshot.Height = 540
	}
	if c.Snapshot.Interval == 0 {
		c.Snapshot.Interval = 1
	}
	if c.Snapshot.Dir == "" {
		c.Snapshot.Dir = "snapshots"
	}
	if c.Monitor.MaxVerticalDisplacement == 0 {
		c.Monitor.MaxVerticalDisplacement = 5
	}
	if c.Monitor.RecoveryWindow == 0 {
		c.Monitor.RecoveryWindow = 60
	}
	if c.Monitor.Lookback == 0 {
		c.Monitor.Lookback = 3600
	}
	if c.Actuator.HorizontalAmplitude == 0 {
		c.Actuator.HorizontalAmplitude = 100
	}
	if c.Actuator.VerticalAmplitude == 0 {
		c.Actuator.VerticalAmplitude = 20
	}
	if c.Actuator.HorizontalPeriod == 0 {
		c.Actuator.HorizontalPeriod = 2
	}
	if c.Actuator.VerticalPeriod == 0 {
		c.Actuator.VerticalPeriod = 2
	}
	if c.Actuator.Interval == 0 {
		c.Actuator.Interval = 3
	}
	return c
}
