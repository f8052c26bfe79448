// Package config loads and validates devindex configuration from a
// YAML file, environment variables and defaults.
package config

import "errors"

// Config is the top-level configuration struct for devindex.
// Field tags use mapstructure for viper unmarshalling.
type Config struct {
	LogLevel    string            `mapstructure:"log_level"`
	BTree       BTreeConfig       `mapstructure:"btree"`
	Hibernation HibernationConfig `mapstructure:"hibernation"`
	Fleet       FleetConfig       `mapstructure:"fleet"`
}

// BTreeConfig holds the bounded-fan-out container settings.
type BTreeConfig struct {
	FanOut int `mapstructure:"fan_out"`
}

// HibernationConfig holds arena hibernation settings.
type HibernationConfig struct {
	Threshold int `mapstructure:"threshold"`
}

// FleetConfig holds per-site sharding settings.
type FleetConfig struct {
	Shards int `mapstructure:"shards"`
}

// Default configuration values.
const (
	DefaultLogLevel             = "info"
	DefaultBTreeFanOut          = 16
	DefaultHibernationThreshold = 1024
	DefaultFleetShards          = 4
)

// minBTreeFanOut is the smallest fan-out that allows a median split.
const minBTreeFanOut = 3

// Sentinel errors for configuration validation.
var (
	// ErrInvalidLogLevel indicates an unrecognized log level name.
	ErrInvalidLogLevel = errors.New("log_level must be one of debug, info, warn, error")
	// ErrInvalidFanOut indicates a fan-out too small for a median split.
	ErrInvalidFanOut = errors.New("btree.fan_out must be at least 3")
	// ErrInvalidThreshold indicates a negative hibernation threshold.
	ErrInvalidThreshold = errors.New("hibernation.threshold must be non-negative")
	// ErrInvalidShards indicates a non-positive shard count.
	ErrInvalidShards = errors.New("fleet.shards must be positive")
)

// Validate checks Config invariants and returns the first error found.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return ErrInvalidLogLevel
	}

	if c.BTree.FanOut < minBTreeFanOut {
		return ErrInvalidFanOut
	}

	if c.Hibernation.Threshold < 0 {
		return ErrInvalidThreshold
	}

	if c.Fleet.Shards <= 0 {
		return ErrInvalidShards
	}

	return nil
}
