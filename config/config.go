// Package config provides configuration management for the binding
// engine.
package config

import (
	"fmt"
	"time"
)

// Config is the global configuration for the binding engine.
type Config struct {
	// App is the application configuration.
	App AppConfig `mapstructure:"app" validate:"required"`

	// Log is the logging configuration.
	Log LogConfig `mapstructure:"log" validate:"required"`

	// Signal is the signal binding configuration.
	Signal SignalConfig `mapstructure:"signal" validate:"required"`

	// Metrics is the observability configuration.
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// AppConfig holds application metadata and settings.
type AppConfig struct {
	// Name is the application name.
	Name string `mapstructure:"name" validate:"required"`

	// Environment is the runtime environment (development, staging, production).
	Environment string `mapstructure:"environment" validate:"oneof=development staging production"`

	// Debug enables debug mode with verbose logging.
	Debug bool `mapstructure:"debug"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Level is the log level (debug, info, warn, error).
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`

	// Format is the output format (json, text).
	Format string `mapstructure:"format" validate:"oneof=json text"`

	// Output is the output destination (stdout, stderr, or file path).
	Output string `mapstructure:"output"`
}

// SignalConfig holds signal binding settings.
type SignalConfig struct {
	// MaxBindings is the size of the per-forwarder slot-id pool. Bind
	// attempts beyond it are rejected until a binding is released.
	MaxBindings int `mapstructure:"max_bindings" validate:"min=1"`

	// DiagnosticInterval is the minimum interval between dispatch-failure
	// log lines.
	DiagnosticInterval time.Duration `mapstructure:"diagnostic_interval"`
}

// MetricsConfig holds observability settings.
type MetricsConfig struct {
	// Enabled enables metrics collection.
	Enabled bool `mapstructure:"enabled"`

	// Path is the metrics endpoint path for hosts that mount the handler.
	Path string `mapstructure:"path"`
}

// Validate performs validation on the configuration.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// String returns a string representation of the configuration.
func (c *Config) String() string {
	return fmt.Sprintf("Config{App: %s, MaxBindings: %d, Env: %s}",
		c.App.Name, c.Signal.MaxBindings, c.App.Environment)
}
