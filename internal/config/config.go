// Package config loads the rate hook settings from a YAML file and
// AWS_RATE_HOOK_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/rshade/aws-rate-hook/internal/pricing"
	"github.com/rshade/aws-rate-hook/internal/rate"
)

// Environment variable names.
const (
	EnvDataDir             = "AWS_RATE_HOOK_DATA_DIR"
	EnvCatalogURL          = "AWS_RATE_HOOK_CATALOG_URL"
	EnvDownloadTimeout     = "AWS_RATE_HOOK_DOWNLOAD_TIMEOUT"
	EnvRateTimeUnit        = "AWS_RATE_HOOK_RATE_TIME_UNIT"
	EnvListenAddr          = "AWS_RATE_HOOK_LISTEN_ADDR"
	EnvSlowLookupThreshold = "AWS_RATE_HOOK_SLOW_LOOKUP_THRESHOLD"
)

// Defaults.
const (
	DefaultListenAddr          = ":8080"
	DefaultSlowLookupThreshold = 5 * time.Second
)

// ErrInvalid marks a configuration that failed validation.
var ErrInvalid = errors.New("invalid configuration")

// Environment is the per-environment section of the config file. Software
// and Extra are decimal strings per server per billing time unit.
type Environment struct {
	Region   string `yaml:"region"`
	Software string `yaml:"software"`
	Extra    string `yaml:"extra"`
}

// Config holds every setting of the rate hook.
type Config struct {
	DataDir             string                 `yaml:"data_dir"`
	CatalogURL          string                 `yaml:"catalog_url"`
	DownloadTimeout     time.Duration          `yaml:"download_timeout"`
	RateTimeUnit        string                 `yaml:"rate_time_unit"`
	Environments        map[string]Environment `yaml:"environments"`
	ListenAddr          string                 `yaml:"listen_addr"`
	SlowLookupThreshold time.Duration          `yaml:"slow_lookup_threshold"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		DataDir:             defaultDataDir(),
		CatalogURL:          pricing.DefaultCatalogURL,
		RateTimeUnit:        rate.DefaultTimeUnit,
		Environments:        map[string]Environment{},
		ListenAddr:          DefaultListenAddr,
		SlowLookupThreshold: DefaultSlowLookupThreshold,
	}
}

func defaultDataDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "aws_rate_hook")
	}
	return filepath.Join(os.TempDir(), "aws_rate_hook")
}

// Load reads the YAML file at path (skipped when path is empty), applies
// environment overrides and validates the result. Unparseable environment
// values are logged and ignored.
func Load(path string, logger zerolog.Logger) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
		if cfg.Environments == nil {
			cfg.Environments = map[string]Environment{}
		}
	}

	cfg.applyEnv(logger)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger.Debug().
		Str("data_dir", cfg.DataDir).
		Str("catalog_url", cfg.CatalogURL).
		Str("rate_time_unit", cfg.RateTimeUnit).
		Int("environments", len(cfg.Environments)).
		Msg("configuration loaded")
	return cfg, nil
}

func (c *Config) applyEnv(logger zerolog.Logger) {
	if v := strings.TrimSpace(os.Getenv(EnvDataDir)); v != "" {
		c.DataDir = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvCatalogURL)); v != "" {
		c.CatalogURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvRateTimeUnit)); v != "" {
		if _, ok := rate.HoursPer(v); ok {
			c.RateTimeUnit = strings.ToUpper(v)
		} else {
			logger.Warn().Str("value", v).Msg("invalid " + EnvRateTimeUnit + ", using default")
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvListenAddr)); v != "" {
		c.ListenAddr = v
	}
	c.DownloadTimeout = envDuration(EnvDownloadTimeout, c.DownloadTimeout, logger)
	c.SlowLookupThreshold = envDuration(EnvSlowLookupThreshold, c.SlowLookupThreshold, logger)
}

func envDuration(name string, current time.Duration, logger zerolog.Logger) time.Duration {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return current
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		logger.Warn().Str("value", v).Msg("invalid " + name + ", using default")
		return current
	}
	return d
}

// Validate checks every setting.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("%w: data_dir is empty", ErrInvalid)
	}
	if c.CatalogURL == "" {
		return fmt.Errorf("%w: catalog_url is empty", ErrInvalid)
	}
	if _, ok := rate.HoursPer(c.RateTimeUnit); !ok {
		return fmt.Errorf("%w: rate_time_unit %q must be one of HOUR, DAY, WEEK, MONTH, YEAR", ErrInvalid, c.RateTimeUnit)
	}
	if c.DownloadTimeout < 0 {
		return fmt.Errorf("%w: download_timeout must not be negative", ErrInvalid)
	}
	if c.SlowLookupThreshold < 0 {
		return fmt.Errorf("%w: slow_lookup_threshold must not be negative", ErrInvalid)
	}
	if _, err := c.EnvironmentRates(); err != nil {
		return err
	}
	return nil
}

// EnvironmentRates converts the environments section for rate.NewConfiguredRates.
func (c *Config) EnvironmentRates() (map[string]rate.EnvironmentRates, error) {
	out := make(map[string]rate.EnvironmentRates, len(c.Environments))
	for name, env := range c.Environments {
		software, err := parseAmount(env.Software)
		if err != nil {
			return nil, fmt.Errorf("%w: environments.%s.software: %v", ErrInvalid, name, err)
		}
		extra, err := parseAmount(env.Extra)
		if err != nil {
			return nil, fmt.Errorf("%w: environments.%s.extra: %v", ErrInvalid, name, err)
		}
		out[name] = rate.EnvironmentRates{Region: env.Region, Software: software, Extra: extra}
	}
	return out, nil
}

func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("amount %s is negative", s)
	}
	return d, nil
}
