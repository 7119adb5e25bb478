// Package config loads the metricsd daemon configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	metrics "github.com/ygrebnov/metricsample"
)

// Config is the daemon configuration.
type Config struct {
	LogLevel           string        `yaml:"log_level"`
	Shards             int           `yaml:"shards"`
	CollectInterval    time.Duration `yaml:"collect_interval"`
	DisableInitCleanup bool          `yaml:"disable_init_cleanup"`
	ResetOnCollect     []string      `yaml:"reset_on_collect,omitempty"`
	Samples            []SampleSpec  `yaml:"samples,omitempty"`
}

// SampleSpec describes a sample registered at startup.
type SampleSpec struct {
	Kind        string            `yaml:"kind"`
	Name        string            `yaml:"name"`
	Labels      map[string]string `yaml:"labels,omitempty"`
	Initial     float64           `yaml:"initial"`
	Description string            `yaml:"description,omitempty"`
	Unit        string            `yaml:"unit,omitempty"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		LogLevel:        "info",
		Shards:          16,
		CollectInterval: 10 * time.Second,
	}
}

// Load reads and parses the file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML on top of Default and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every problem found in cfg.
func (c Config) Validate() error {
	var errs []error
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	if c.Shards < 1 {
		errs = append(errs, fmt.Errorf("shards must be positive, got %d", c.Shards))
	}
	if c.CollectInterval <= 0 {
		errs = append(errs, fmt.Errorf("collect_interval must be positive, got %s", c.CollectInterval))
	}
	for _, k := range c.ResetOnCollect {
		if _, err := metrics.ParseMetricType(k); err != nil {
			errs = append(errs, fmt.Errorf("reset_on_collect: %w", err))
		}
	}
	for i, s := range c.Samples {
		if s.Name == "" {
			errs = append(errs, fmt.Errorf("samples[%d]: %w", i, metrics.ErrEmptyIdentity))
		}
		if _, err := metrics.ParseMetricType(s.Kind); err != nil {
			errs = append(errs, fmt.Errorf("samples[%d]: %w", i, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", metrics.ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// Level returns the parsed log level, falling back to info.
func (c Config) Level() zapcore.Level {
	l, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return zapcore.InfoLevel
	}
	return l
}

// RegistryOptions maps the configuration to registry options.
func (c Config) RegistryOptions(l *zap.Logger) []metrics.RegistryOption {
	opts := []metrics.RegistryOption{metrics.WithShards(c.Shards), metrics.WithLogger(l)}
	if c.DisableInitCleanup {
		opts = append(opts, metrics.WithInitCleanupDisabled())
	}
	return opts
}

// CollectorOptions maps the configuration to collector options.
func (c Config) CollectorOptions(l *zap.Logger) []metrics.CollectorOption {
	opts := []metrics.CollectorOption{metrics.WithCollectorLogger(l)}
	kinds := make([]metrics.MetricType, 0, len(c.ResetOnCollect))
	for _, k := range c.ResetOnCollect {
		if t, err := metrics.ParseMetricType(k); err == nil {
			kinds = append(kinds, t)
		}
	}
	if len(kinds) > 0 {
		opts = append(opts, metrics.WithResetOnCollect(kinds...))
	}
	return opts
}

// RegisterSamples registers every configured sample with reg.
func (c Config) RegisterSamples(reg *metrics.Registry) error {
	for i, s := range c.Samples {
		kind, err := metrics.ParseMetricType(s.Kind)
		if err != nil {
			return fmt.Errorf("samples[%d]: %w", i, err)
		}
		identity := metrics.RenderIdentity(s.Name, s.Labels)
		_, err = reg.Register(kind, identity, s.Initial,
			metrics.WithDescription(s.Description),
			metrics.WithUnit(s.Unit),
		)
		if err != nil {
			return fmt.Errorf("samples[%d]: %w", i, err)
		}
	}
	return nil
}
