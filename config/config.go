// Package config loads the server configuration from a YAML file.
//
// Without a file Default values are used and flags may override them
// afterwards. Call Validate once all overrides are applied.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/mcp-server/middleware"
)

// Transport kinds.
const (
	TransportStdio     = "stdio"
	TransportWebSocket = "websocket"
)

// Log formats.
const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

var (
	transports = []string{TransportStdio, TransportWebSocket}
	formats    = []string{FormatJSON, FormatConsole}
	levels     = []string{"debug", "info", "warn", "error"}
)

// ErrInvalid is wrapped by every error returned from Validate.
var ErrInvalid = errors.New("invalid value")

// Config is the full server configuration.
type Config struct {
	Server    Server    `yaml:"server"`
	Transport Transport `yaml:"transport"`
	Log       Log       `yaml:"log"`
	Limits    Limits    `yaml:"limits"`
	Telemetry Telemetry `yaml:"telemetry"`
}

// Server holds the identity reported by initialize.
type Server struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

// Transport selects how requests reach the server.
type Transport struct {
	Kind string `yaml:"kind"`
	Addr string `yaml:"addr"`
}

// Log configures the process logger. File is empty for stderr.
type Log struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

// Limits bounds accepted requests. Zero disables a limit.
type Limits struct {
	MaxRequestBytes int64 `yaml:"max_request_bytes"`
	Rate            int   `yaml:"rate"`
	Burst           int   `yaml:"burst"`
}

// Telemetry toggles the in-process OpenTelemetry providers.
type Telemetry struct {
	Enabled bool `yaml:"enabled"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Server: Server{
			Name:    "mcp-server",
			Version: "1.0.0",
		},
		Transport: Transport{
			Kind: TransportStdio,
			Addr: ":8080",
		},
		Log: Log{
			Level:      "info",
			Format:     FormatJSON,
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
		Limits: Limits{
			MaxRequestBytes: middleware.MB,
		},
	}
}

// Load reads path over Default. An empty path yields Default unchanged;
// a named file that cannot be read is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.Server.Name == "" {
		return fmt.Errorf("config: server.name: must not be empty: %w", ErrInvalid)
	}
	if !slices.Contains(transports, c.Transport.Kind) {
		return fmt.Errorf("config: transport.kind %q: %w", c.Transport.Kind, ErrInvalid)
	}
	if c.Transport.Kind == TransportWebSocket && c.Transport.Addr == "" {
		return fmt.Errorf("config: transport.addr: required for websocket: %w", ErrInvalid)
	}
	if !slices.Contains(levels, c.Log.Level) {
		return fmt.Errorf("config: log.level %q: %w", c.Log.Level, ErrInvalid)
	}
	if !slices.Contains(formats, c.Log.Format) {
		return fmt.Errorf("config: log.format %q: %w", c.Log.Format, ErrInvalid)
	}
	if c.Log.MaxSizeMB < 0 || c.Log.MaxBackups < 0 {
		return fmt.Errorf("config: log rotation must not be negative: %w", ErrInvalid)
	}
	if c.Limits.MaxRequestBytes < 0 || c.Limits.Rate < 0 || c.Limits.Burst < 0 {
		return fmt.Errorf("config: limits must not be negative: %w", ErrInvalid)
	}
	return nil
}

// MiddlewareLimits converts Limits for middleware.LimitStack.
func (l Limits) MiddlewareLimits() middleware.Limits {
	return middleware.Limits{
		MaxRequestBytes: l.MaxRequestBytes,
		Rate:            l.Rate,
		Burst:           l.Burst,
	}
}
