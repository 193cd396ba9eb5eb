// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package solver

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/AleutianAI/SubsetSum/pkg/subsetsum"
	"github.com/AleutianAI/SubsetSum/services/solver/cache"
	"github.com/AleutianAI/SubsetSum/services/solver/telemetry"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// DefaultPort is the port of the original service.
const DefaultPort = 9001

// =============================================================================
// Configuration
// =============================================================================

// Config holds the solver service configuration.
//
// Zero fields take defaults in New. Limits use -1 for "unlimited" since 0
// means "default".
type Config struct {
	// Port is the HTTP server port. Default: 9001
	Port int `yaml:"port" validate:"min=0,max=65535"`

	// GinMode is "debug", "release" or "test". Default: GIN_MODE or "release".
	GinMode string `yaml:"gin_mode" validate:"omitempty,oneof=debug release test"`

	// Limits bound every calculation.
	Limits LimitsConfig `yaml:"limits"`

	// Parallel enumerates sign partitions concurrently.
	Parallel bool `yaml:"parallel"`

	// Timeout bounds one calculation. Zero disables the timeout.
	Timeout time.Duration `yaml:"timeout" validate:"min=0"`

	// RateLimit is requests per second across the solve routes. Zero
	// disables rate limiting.
	RateLimit float64 `yaml:"rate_limit" validate:"min=0"`

	// RateBurst is the rate limiter's burst. Default: 10
	RateBurst int `yaml:"rate_burst" validate:"min=0"`

	// APIKeys maps API keys to user IDs. When set, the solve routes require
	// a key unless ServiceOptions supply another AuthProvider.
	APIKeys map[string]string `yaml:"api_keys"`

	// Cache configures the result cache.
	Cache CacheConfig `yaml:"cache"`

	// Telemetry configures tracing and OpenTelemetry metrics.
	Telemetry telemetry.Config `yaml:"telemetry"`

	// ShutdownTimeout bounds graceful shutdown. Default: 10s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" validate:"min=0"`
}

// LimitsConfig mirrors subsetsum.Limits. 0 means the default, -1 unlimited.
type LimitsConfig struct {
	MaxPartitionSize int   `yaml:"max_partition_size" validate:"min=-1,max=62"`
	MaxZeroCount     int   `yaml:"max_zero_count" validate:"min=-1,max=62"`
	MaxNaiveSize     int   `yaml:"max_naive_size" validate:"min=-1,max=62"`
	MaxIterations    int64 `yaml:"max_iterations" validate:"min=-1"`
	MaxMatches       int   `yaml:"max_matches" validate:"min=-1"`
}

// CacheConfig configures the result cache.
type CacheConfig struct {
	// Enabled turns the cache on.
	Enabled bool `yaml:"enabled"`

	cache.Config `yaml:",inline"`
}

var configValidator = validator.New()

// DefaultConfig returns the configuration LoadConfig starts from: every
// default applied, cache enabled.
func DefaultConfig() Config {
	cfg := applyConfigDefaults(Config{})
	cfg.Cache.Enabled = true
	return cfg
}

// Validate checks field constraints.
func (c Config) Validate() error {
	if err := configValidator.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Cache.Enabled && !c.Cache.InMemory && c.Cache.Path == "" {
		return errors.New("invalid config: cache.path is required unless cache.in_memory is set")
	}
	return nil
}

// SubsetLimits converts the configured limits.
func (c Config) SubsetLimits() subsetsum.Limits {
	l := c.Limits
	return subsetsum.Limits{
		MaxPartitionSize: unlimited(l.MaxPartitionSize),
		MaxZeroCount:     unlimited(l.MaxZeroCount),
		MaxNaiveSize:     unlimited(l.MaxNaiveSize),
		MaxIterations:    uint64(unlimited(l.MaxIterations)),
		MaxMatches:       unlimited(l.MaxMatches),
	}
}

func unlimited[T int | int64](v T) T {
	if v < 0 {
		return 0
	}
	return v
}

// applyConfigDefaults fills zero fields.
func applyConfigDefaults(cfg Config) Config {
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	if cfg.GinMode == "" {
		cfg.GinMode = getEnvOr("GIN_MODE", "release")
	}
	if cfg.RateBurst == 0 {
		cfg.RateBurst = 10
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}

	d := subsetsum.DefaultLimits()
	if cfg.Limits.MaxPartitionSize == 0 {
		cfg.Limits.MaxPartitionSize = d.MaxPartitionSize
	}
	if cfg.Limits.MaxZeroCount == 0 {
		cfg.Limits.MaxZeroCount = d.MaxZeroCount
	}
	if cfg.Limits.MaxNaiveSize == 0 {
		cfg.Limits.MaxNaiveSize = d.MaxNaiveSize
	}
	if cfg.Limits.MaxIterations == 0 {
		cfg.Limits.MaxIterations = int64(d.MaxIterations)
	}
	if cfg.Limits.MaxMatches == 0 {
		cfg.Limits.MaxMatches = d.MaxMatches
	}

	cd := cache.DefaultConfig()
	if cfg.Cache.Path == "" {
		cfg.Cache.InMemory = true
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = cd.TTL
	}
	if cfg.Cache.MaxEntryBytes == 0 {
		cfg.Cache.MaxEntryBytes = cd.MaxEntryBytes
	}
	if cfg.Cache.GCInterval == 0 {
		cfg.Cache.GCInterval = cd.GCInterval
	}
	if cfg.Cache.GCDiscardRatio == 0 {
		cfg.Cache.GCDiscardRatio = cd.GCDiscardRatio
	}

	td := telemetry.DefaultConfig()
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = td.ServiceName
	}
	if cfg.Telemetry.ServiceVersion == "" {
		cfg.Telemetry.ServiceVersion = td.ServiceVersion
	}
	if cfg.Telemetry.Environment == "" {
		cfg.Telemetry.Environment = td.Environment
	}
	if cfg.Telemetry.TraceExporter == "" {
		cfg.Telemetry.TraceExporter = td.TraceExporter
	}
	if cfg.Telemetry.MetricExporter == "" {
		cfg.Telemetry.MetricExporter = td.MetricExporter
	}
	if cfg.Telemetry.OTLPEndpoint == "" {
		cfg.Telemetry.OTLPEndpoint = td.OTLPEndpoint
	}

	return cfg
}

// =============================================================================
// Loading
// =============================================================================

// LoadConfig builds a Config from DefaultConfig, the YAML file at path
// (skipped when path is empty) and SOLVER_* environment variables, in that
// order, and validates the result.
//
// # Environment
//
//   - SOLVER_PORT, SOLVER_GIN_MODE
//   - SOLVER_MAX_PARTITION_SIZE, SOLVER_MAX_ZERO_COUNT, SOLVER_MAX_NAIVE_SIZE,
//     SOLVER_MAX_ITERATIONS, SOLVER_MAX_MATCHES
//   - SOLVER_PARALLEL, SOLVER_TIMEOUT
//   - SOLVER_RATE_LIMIT, SOLVER_RATE_BURST
//   - SOLVER_API_KEYS as "key:user,key2:user2"
//   - SOLVER_CACHE_ENABLED, SOLVER_CACHE_PATH, SOLVER_CACHE_TTL
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.Cache.Path != "" {
		cfg.Cache.InMemory = false
	}
	cfg = applyConfigDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// envOverride applies one environment variable when it is set.
type envOverride struct {
	key   string
	apply func(string) error
}

func applyEnvOverrides(cfg *Config) error {
	overrides := []envOverride{
		{"SOLVER_PORT", intSetter(&cfg.Port)},
		{"SOLVER_GIN_MODE", stringSetter(&cfg.GinMode)},
		{"SOLVER_MAX_PARTITION_SIZE", intSetter(&cfg.Limits.MaxPartitionSize)},
		{"SOLVER_MAX_ZERO_COUNT", intSetter(&cfg.Limits.MaxZeroCount)},
		{"SOLVER_MAX_NAIVE_SIZE", intSetter(&cfg.Limits.MaxNaiveSize)},
		{"SOLVER_MAX_ITERATIONS", func(v string) error {
			n, err := strconv.ParseInt(v, 10, 64)
			cfg.Limits.MaxIterations = n
			return err
		}},
		{"SOLVER_MAX_MATCHES", intSetter(&cfg.Limits.MaxMatches)},
		{"SOLVER_PARALLEL", boolSetter(&cfg.Parallel)},
		{"SOLVER_TIMEOUT", durationSetter(&cfg.Timeout)},
		{"SOLVER_RATE_LIMIT", func(v string) error {
			f, err := strconv.ParseFloat(v, 64)
			cfg.RateLimit = f
			return err
		}},
		{"SOLVER_RATE_BURST", intSetter(&cfg.RateBurst)},
		{"SOLVER_API_KEYS", func(v string) error {
			keys, err := parseAPIKeys(v)
			cfg.APIKeys = keys
			return err
		}},
		{"SOLVER_CACHE_ENABLED", boolSetter(&cfg.Cache.Enabled)},
		{"SOLVER_CACHE_PATH", stringSetter(&cfg.Cache.Path)},
		{"SOLVER_CACHE_TTL", durationSetter(&cfg.Cache.TTL)},
	}

	for _, o := range overrides {
		v, ok := os.LookupEnv(o.key)
		if !ok || v == "" {
			continue
		}
		if err := o.apply(v); err != nil {
			return fmt.Errorf("invalid %s=%q: %w", o.key, v, err)
		}
	}
	return nil
}

func intSetter(dst *int) func(string) error {
	return func(v string) error {
		n, err := strconv.Atoi(v)
		*dst = n
		return err
	}
}

func boolSetter(dst *bool) func(string) error {
	return func(v string) error {
		b, err := strconv.ParseBool(v)
		*dst = b
		return err
	}
}

func durationSetter(dst *time.Duration) func(string) error {
	return func(v string) error {
		d, err := time.ParseDuration(v)
		*dst = d
		return err
	}
}

func stringSetter(dst *string) func(string) error {
	return func(v string) error {
		*dst = v
		return nil
	}
}

// parseAPIKeys parses "key:user,key2:user2". A key without ":user" maps to
// an empty user ID.
func parseAPIKeys(s string) (map[string]string, error) {
	keys := make(map[string]string)
	for _, entry := range strings.Split(s, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		key, user, _ := strings.Cut(entry, ":")
		if key == "" {
			return nil, fmt.Errorf("empty key in %q", entry)
		}
		keys[key] = user
	}
	return keys, nil
}

// getEnvOr returns the environment variable value or the fallback.
func getEnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
