// Package config loads snapctl's configuration: defaults, then an optional
// TOML file, then SNAPCTL_* environment variables, each layer overriding the
// previous one.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/kelseyhightower/envconfig"
)

// ConfigFileName is the file looked for when no --config flag is given.
const ConfigFileName = "snapctl.toml"

// Duration is a time.Duration that unmarshals from strings like "30s" in
// both TOML and environment variables.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config is the full snapctl configuration.
type Config struct {
	// Server is the control endpoint address: host:port, tcp://, ws:// or
	// wss://.
	Server string `toml:"server" envconfig:"SERVER"`

	// DialTimeout bounds each connection attempt.
	DialTimeout Duration `toml:"dial_timeout" envconfig:"DIAL_TIMEOUT"`

	Reconnect ReconnectConfig `toml:"reconnect"`
	Log       LogConfig       `toml:"log"`
	Serve     ServeConfig     `toml:"serve"`
}

// ReconnectConfig bounds the reconnect backoff schedule.
type ReconnectConfig struct {
	Initial Duration `toml:"initial" envconfig:"RECONNECT_INITIAL"`
	Max     Duration `toml:"max" envconfig:"RECONNECT_MAX"`

	// MaxAttempts of zero retries forever.
	MaxAttempts int `toml:"max_attempts" envconfig:"RECONNECT_MAX_ATTEMPTS"`
}

// LogConfig controls log output.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `toml:"level" envconfig:"LOG_LEVEL"`

	// Format is "text" or "json".
	Format string `toml:"format" envconfig:"LOG_FORMAT"`
}

// ServeConfig configures the snapctl serve HTTP bridge.
type ServeConfig struct {
	// Listen is the HTTP listen address.
	Listen string `toml:"listen" envconfig:"SERVE_LISTEN"`

	// Metrics enables the Prometheus /metrics endpoint.
	Metrics bool `toml:"metrics" envconfig:"SERVE_METRICS"`
}

// Default returns the configuration used when no file or environment
// overrides exist.
func Default() Config {
	return Config{
		Server:      "127.0.0.1:1705",
		DialTimeout: Duration(10 * time.Second),
		Reconnect: ReconnectConfig{
			Initial: Duration(250 * time.Millisecond),
			Max:     Duration(30 * time.Second),
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Serve: ServeConfig{
			Listen:  "127.0.0.1:8095",
			Metrics: true,
		},
	}
}

// Load builds the effective configuration. A missing file at the default
// path is fine; an explicitly requested path must exist.
func Load(path string, explicit bool) (Config, error) {
	cfg := Default()

	if path != "" {
		_, err := toml.DecodeFile(path, &cfg)
		switch {
		case err == nil:
		case errors.Is(err, fs.ErrNotExist) && !explicit:
			// Default path, no file: defaults plus environment.
		default:
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	if err := envconfig.Process("snapctl", &cfg); err != nil {
		return Config{}, fmt.Errorf("config: environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Server == "" {
		return errors.New("config: server address is empty")
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown log level %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("config: unknown log format %q", c.Log.Format)
	}
	return nil
}
