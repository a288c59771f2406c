// Copyright 2026 The Blobwire Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for the blobwire
// commands.
//
// Configuration is loaded from a single YAML file specified by:
//   - BLOBWIRE_CONFIG environment variable, or
//   - --config flag passed to the command
//
// There are no fallbacks or automatic discovery, and environment
// variables never override file values. Every field has a working
// default, so the commands also run with no config file at all.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/blobwire/blobwire/lib/seal"
	"github.com/blobwire/blobwire/lib/xfer"
)

// Config is the master configuration for blobwire commands.
type Config struct {
	// Transport selects and addresses the datagram transport.
	Transport TransportConfig `yaml:"transport"`

	// Transfer tunes the chunk protocol.
	Transfer TransferConfig `yaml:"transfer"`

	// Seal configures payload sealing.
	Seal SealConfig `yaml:"seal"`

	// Log configures logging.
	Log LogConfig `yaml:"log"`
}

// TransportConfig selects the transport and its addresses.
type TransportConfig struct {
	// Kind is the transport: "udp" or "tcp".
	// Default: udp
	Kind string `yaml:"kind"`

	// Listen is the receiver's bind address.
	// Default: :7401
	Listen string `yaml:"listen"`

	// Dial is the sender's peer address.
	// Default: 127.0.0.1:7401
	Dial string `yaml:"dial"`
}

// TransferConfig tunes the chunk protocol.
type TransferConfig struct {
	// ChunkSize is the chunk payload size in bytes.
	// Default: 16384
	ChunkSize int `yaml:"chunk_size"`

	// Window is the maximum number of unacked chunks in flight.
	// Default: 16
	Window int `yaml:"window"`

	// ResendInterval is how long a chunk waits for its ack before
	// retransmission, as a Go duration string.
	// Default: 250ms
	ResendInterval string `yaml:"resend_interval"`

	// Compression forces a compression tag ("none", "lz4", "zstd").
	// Empty selects automatically.
	Compression string `yaml:"compression"`
}

// SealConfig configures payload sealing.
type SealConfig struct {
	// KeyFile is the path to a hex-encoded 32-byte pre-shared key.
	// Empty disables sealing on the sender and rejects sealed
	// transfers on the receiver.
	KeyFile string `yaml:"key_file"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is the minimum level: "debug", "info", "warn", "error".
	// Default: info
	Level string `yaml:"level"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Transport: TransportConfig{
			Kind:   "udp",
			Listen: ":7401",
			Dial:   "127.0.0.1:7401",
		},
		Transfer: TransferConfig{
			ChunkSize:      xfer.DefaultChunkSize,
			Window:         xfer.DefaultWindow,
			ResendInterval: xfer.DefaultResendInterval.String(),
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from the BLOBWIRE_CONFIG environment
// variable, or returns the defaults when it is unset.
func Load() (*Config, error) {
	configPath := os.Getenv("BLOBWIRE_CONFIG")
	if configPath == "" {
		return Default(), nil
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path, merging
// over the defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	switch c.Transport.Kind {
	case "udp", "tcp":
	default:
		errs = append(errs, fmt.Errorf("transport.kind must be udp or tcp, got %q", c.Transport.Kind))
	}

	if c.Transfer.ChunkSize <= 0 {
		errs = append(errs, fmt.Errorf("transfer.chunk_size must be positive, got %d", c.Transfer.ChunkSize))
	}
	if c.Transfer.Window <= 0 {
		errs = append(errs, fmt.Errorf("transfer.window must be positive, got %d", c.Transfer.Window))
	}
	if _, err := c.ResendInterval(); err != nil {
		errs = append(errs, err)
	}
	if c.Transfer.Compression != "" {
		switch c.Transfer.Compression {
		case "none", "lz4", "zstd":
		default:
			errs = append(errs, fmt.Errorf("transfer.compression must be none, lz4 or zstd, got %q", c.Transfer.Compression))
		}
	}
	if _, err := c.LogLevel(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// ResendInterval parses the configured resend interval.
func (c *Config) ResendInterval() (time.Duration, error) {
	interval, err := time.ParseDuration(c.Transfer.ResendInterval)
	if err != nil {
		return 0, fmt.Errorf("transfer.resend_interval: %w", err)
	}
	if interval <= 0 {
		return 0, fmt.Errorf("transfer.resend_interval must be positive, got %s", interval)
	}
	return interval, nil
}

// Key loads the pre-shared sealing key, or returns nil when no key
// file is configured.
func (c *Config) Key() ([]byte, error) {
	if c.Seal.KeyFile == "" {
		return nil, nil
	}
	data, err := os.ReadFile(c.Seal.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("reading key file: %w", err)
	}
	key, err := hex.DecodeString(strings.TrimSpace(string(data)))
	if err != nil {
		return nil, fmt.Errorf("key file %s: %w", c.Seal.KeyFile, err)
	}
	if len(key) != seal.KeySize {
		return nil, fmt.Errorf("key file %s: key is %d bytes, want %d", c.Seal.KeyFile, len(key), seal.KeySize)
	}
	return key, nil
}

// LogLevel parses the configured log level.
func (c *Config) LogLevel() (slog.Level, error) {
	switch c.Log.Level {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("log.level must be debug, info, warn or error, got %q", c.Log.Level)
	}
}
