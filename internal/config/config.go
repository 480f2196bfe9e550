// Package config loads the node configuration from a TOML file. Every field
// has a default, so a missing or empty file yields a runnable configuration
// (with publishing disabled until a webhook URL is set).
package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// LogConfig controls the structured logger.
type LogConfig struct {
	Level  string `toml:"Level"`  // debug, info, warn, error
	Format string `toml:"Format"` // console or json
}

// PinsConfig maps actuators and the ultrasonic sensor onto GPIO offsets
// (BCM numbering).
type PinsConfig struct {
	Pump   int `toml:"Pump"`
	Siren  int `toml:"Siren"`
	Camera int `toml:"Camera"`
	Aux    int `toml:"Aux"`
	Trig   int `toml:"Trig"`
	Echo   int `toml:"Echo"`
}

// SensorPathsConfig locates the iio sysfs files.
type SensorPathsConfig struct {
	Temperature string `toml:"Temperature"`
	Humidity    string `toml:"Humidity"`
	ADC         string `toml:"ADC"`
}

// Config maps to the config.toml file for the barn node.
type Config struct {
	DeviceID   string `toml:"DeviceID"`
	WebhookURL string `toml:"WebhookURL"`
	Broker     string `toml:"Broker"`
	HTTPAddr   string `toml:"HTTPAddr"`

	PollIntervalMs      int `toml:"PollIntervalMs"`
	SamplePeriodMinutes int `toml:"SamplePeriodMinutes"`

	FlushIntervalMinutes int `toml:"FlushIntervalMinutes"`
	FlushOnSeconds       int `toml:"FlushOnSeconds"`

	ResyncIntervalHours int `toml:"ResyncIntervalHours"`
	SyncMaxTries        int `toml:"SyncMaxTries"`
	SyncRetryDelayMs    int `toml:"SyncRetryDelayMs"`

	Log         LogConfig         `toml:"Log"`
	Pins        PinsConfig        `toml:"Pins"`
	SensorPaths SensorPathsConfig `toml:"SensorPaths"`
}

// Default returns the built-in configuration, matching the field deployment.
func Default() Config {
	return Config{
		DeviceID: "RAB-001",
		Broker:   "tcp://127.0.0.1:1883",
		HTTPAddr: ":8080",

		PollIntervalMs:      1000,
		SamplePeriodMinutes: 10,

		FlushIntervalMinutes: 0, // periodic flush disabled until commanded
		FlushOnSeconds:       20,

		ResyncIntervalHours: 12,
		SyncMaxTries:        20,
		SyncRetryDelayMs:    500,

		Log: LogConfig{Level: "info", Format: "console"},
		Pins: PinsConfig{
			Pump:   5,
			Siren:  32,
			Camera: 33,
			Aux:    25,
			Trig:   13,
			Echo:   14,
		},
		SensorPaths: SensorPathsConfig{
			Temperature: "/sys/bus/iio/devices/iio:device0/in_temp_input",
			Humidity:    "/sys/bus/iio/devices/iio:device0/in_humidityrelative_input",
			ADC:         "/sys/bus/iio/devices/iio:device1/in_voltage0_raw",
		},
	}
}

// LoadConfig parses a TOML file over the defaults. A missing file is an
// error; pass an empty path to get the defaults unchanged.
func LoadConfig(filepath string) (Config, error) {
	cfg := Default()
	if filepath == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(filepath)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file '%s': %w", filepath, err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.DeviceID == "" {
		return fmt.Errorf("DeviceID must not be empty")
	}
	if c.PollIntervalMs <= 0 {
		return fmt.Errorf("PollIntervalMs must be positive, got %d", c.PollIntervalMs)
	}
	if c.SamplePeriodMinutes <= 0 || c.SamplePeriodMinutes > 60 {
		return fmt.Errorf("SamplePeriodMinutes must be in 1..60, got %d", c.SamplePeriodMinutes)
	}
	if c.FlushIntervalMinutes < 0 {
		return fmt.Errorf("FlushIntervalMinutes must not be negative, got %d", c.FlushIntervalMinutes)
	}
	if c.FlushOnSeconds <= 0 {
		return fmt.Errorf("FlushOnSeconds must be positive, got %d", c.FlushOnSeconds)
	}
	return nil
}
