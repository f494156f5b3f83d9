// File: control/config.go
// Package control carries runtime configuration and metrics for the
// echo-server harness.
// License: Apache-2.0

package control

import (
	"fmt"
	"net"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/struven/netsock/address"
)

// Config holds echo-server settings, loadable from YAML.
type Config struct {
	Listen      string        `yaml:"listen"`       // host:port for TCP listeners
	UnixPath    string        `yaml:"unix_path"`    // when set, listen on a Unix-domain socket instead
	BufferSize  int           `yaml:"buffer_size"`  // per-connection FIFO capacity
	Backlog     int           `yaml:"backlog"`      // listen backlog
	IdleTimeout Duration      `yaml:"idle_timeout"` // per-connection receive timeout, 0 = unbounded
}

// DefaultConfig returns sensible defaults: ephemeral loopback TCP port.
func DefaultConfig() *Config {
	return &Config{
		Listen:     "127.0.0.1:0",
		BufferSize: 4096,
		Backlog:    64,
	}
}

// LoadConfig reads and validates a YAML config file, applying defaults
// for omitted fields.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks constraint violations a typo in the YAML could cause.
func (c *Config) Validate() error {
	if c.BufferSize <= 0 {
		return fmt.Errorf("buffer_size must be positive, got %d", c.BufferSize)
	}
	if c.Backlog < 0 {
		return fmt.Errorf("backlog must not be negative, got %d", c.Backlog)
	}
	if c.UnixPath == "" && c.Listen == "" {
		return fmt.Errorf("either listen or unix_path must be set")
	}
	if c.IdleTimeout < 0 {
		return fmt.Errorf("idle_timeout must not be negative, got %s", c.IdleTimeout.Std())
	}
	return nil
}

// Address resolves the configured endpoint into an address value.
func (c *Config) Address() (address.Addr, error) {
	if c.UnixPath != "" {
		return address.ParseUnix(c.UnixPath)
	}
	host, portStr, err := net.SplitHostPort(c.Listen)
	if err != nil {
		return address.Addr{}, fmt.Errorf("listen %q: expected host:port: %w", c.Listen, err)
	}
	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return address.Addr{}, fmt.Errorf("listen %q: bad port: %w", c.Listen, err)
	}
	return address.Parse(host, uint16(port))
}
