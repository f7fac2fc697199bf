package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"
)

const (
	DefaultVersion = 1
	DefaultPath    = ".adder.json"

	// Output formats.
	FormatText = "text"
	FormatJSON = "json"

	// Default values for server configuration.
	DefaultServerAddr  = "127.0.0.1:7432"
	DefaultReadTimeout = 60 * time.Second

	// Default values for watch configuration.
	DefaultDebounce = 100 * time.Millisecond
	DefaultPattern  = ".add"
)

// Config defines adder configuration stored in .adder.json.
type Config struct {
	Version int           `json:"version"`
	Output  *OutputConfig `json:"output,omitempty"`
	Server  *ServerConfig `json:"server,omitempty"`
	Watch   *WatchConfig  `json:"watch,omitempty"`
}

// OutputConfig controls how the CLI prints results.
type OutputConfig struct {
	// Format is "text" or "json" (default "text").
	Format *string `json:"format,omitempty"`

	// Boxed renders text results inside a border (default false).
	Boxed *bool `json:"boxed,omitempty"`
}

// GetFormat returns the output format (default "text").
func (c *OutputConfig) GetFormat() string {
	if c == nil || c.Format == nil {
		return FormatText
	}
	return *c.Format
}

// IsBoxed returns whether text output is boxed (default false).
func (c *OutputConfig) IsBoxed() bool {
	if c == nil || c.Boxed == nil {
		return false
	}
	return *c.Boxed
}

// Validate checks the output format.
func (c *OutputConfig) Validate() error {
	if c == nil || c.Format == nil {
		return nil
	}
	switch *c.Format {
	case FormatText, FormatJSON:
		return nil
	default:
		return fmt.Errorf("format must be %q or %q, got %q", FormatText, FormatJSON, *c.Format)
	}
}

// ServerConfig holds websocket server settings.
type ServerConfig struct {
	// Addr is the listen address (default 127.0.0.1:7432).
	Addr *string `json:"addr,omitempty"`

	// ReadTimeout is the idle limit per connection as a duration string (default "60s").
	ReadTimeout *string `json:"read_timeout,omitempty"`
}

// GetAddr returns the listen address.
func (c *ServerConfig) GetAddr() string {
	if c == nil || c.Addr == nil || strings.TrimSpace(*c.Addr) == "" {
		return DefaultServerAddr
	}
	return *c.Addr
}

// GetReadTimeout returns the per-connection read timeout (default 60s).
func (c *ServerConfig) GetReadTimeout() time.Duration {
	if c == nil || c.ReadTimeout == nil {
		return DefaultReadTimeout
	}
	d, err := time.ParseDuration(*c.ReadTimeout)
	if err != nil {
		return DefaultReadTimeout
	}
	return d
}

// Validate checks that server config values are usable.
func (c *ServerConfig) Validate() error {
	if c == nil {
		return nil
	}

	if c.Addr != nil && strings.TrimSpace(*c.Addr) != "" {
		if _, _, err := net.SplitHostPort(*c.Addr); err != nil {
			return fmt.Errorf("invalid addr: %w", err)
		}
	}

	if c.ReadTimeout != nil {
		d, err := time.ParseDuration(*c.ReadTimeout)
		if err != nil {
			return fmt.Errorf("invalid read_timeout: %w", err)
		}
		if d < time.Second {
			return fmt.Errorf("read_timeout must be at least 1s, got %v", d)
		}
		if d > time.Hour {
			return fmt.Errorf("read_timeout must be at most 1h, got %v", d)
		}
	}

	return nil
}

// WatchConfig holds batch watcher settings.
type WatchConfig struct {
	// Debounce is how long a file must be quiet before it is evaluated (default "100ms").
	Debounce *string `json:"debounce,omitempty"`

	// Pattern is the file suffix that marks batch files (default ".add").
	Pattern *string `json:"pattern,omitempty"`
}

// GetDebounce returns the debounce delay (default 100ms).
func (c *WatchConfig) GetDebounce() time.Duration {
	if c == nil || c.Debounce == nil {
		return DefaultDebounce
	}
	d, err := time.ParseDuration(*c.Debounce)
	if err != nil {
		return DefaultDebounce
	}
	return d
}

// GetPattern returns the batch file suffix (default ".add").
func (c *WatchConfig) GetPattern() string {
	if c == nil || c.Pattern == nil {
		return DefaultPattern
	}
	return *c.Pattern
}

// Validate checks that watch config values are within sensible ranges.
func (c *WatchConfig) Validate() error {
	if c == nil {
		return nil
	}

	if c.Debounce != nil {
		d, err := time.ParseDuration(*c.Debounce)
		if err != nil {
			return fmt.Errorf("invalid debounce: %w", err)
		}
		if d < 10*time.Millisecond {
			return fmt.Errorf("debounce must be at least 10ms, got %v", d)
		}
		if d > 10*time.Second {
			return fmt.Errorf("debounce must be at most 10s, got %v", d)
		}
	}

	if c.Pattern != nil {
		p := *c.Pattern
		if !strings.HasPrefix(p, ".") || len(p) < 2 {
			return fmt.Errorf("pattern must be a file suffix like \".add\", got %q", p)
		}
		// Results are written as .sum; watching them would re-trigger forever.
		if p == ".sum" {
			return fmt.Errorf("pattern must not be \".sum\"")
		}
	}

	return nil
}

// Default returns the default config.
func Default() Config {
	return Config{
		Version: DefaultVersion,
	}
}

// Load reads config from disk and applies defaults for zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("config not found: %w", err)
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return parse(data)
}

// LoadOrDefault reads config from disk, returning defaults if file doesn't exist.
func LoadOrDefault(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return parse(data)
}

func parse(data []byte) (Config, error) {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if cfg.Version == 0 {
		cfg.Version = DefaultVersion
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Save writes a config to disk.
func Save(path string, cfg Config) error {
	if cfg.Version == 0 {
		cfg.Version = DefaultVersion
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}

// Validate ensures config values are within supported ranges.
func (c Config) Validate() error {
	if c.Version != DefaultVersion {
		return fmt.Errorf("unsupported config version: %d", c.Version)
	}
	if err := c.Output.Validate(); err != nil {
		return fmt.Errorf("invalid output config: %w", err)
	}
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("invalid server config: %w", err)
	}
	if err := c.Watch.Validate(); err != nil {
		return fmt.Errorf("invalid watch config: %w", err)
	}
	return nil
}
