// Package config defines the configuration of the P&L forecaster and
// loads it from YAML with environment overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/ScubaCod2020/libertytax-pnl-webapp-sub000/pkg/constants"
	"github.com/ScubaCod2020/libertytax-pnl-webapp-sub000/pkg/domain"
	"github.com/ScubaCod2020/libertytax-pnl-webapp-sub000/pkg/validation"
)

// Configuration holds all configuration for the P&L forecaster.
type Configuration struct {
	Logging    LoggingConfig                `yaml:"logging,omitempty" mapstructure:"logging"`
	Output     OutputConfig                 `yaml:"output,omitempty" mapstructure:"output"`
	Store      StoreConfig                  `yaml:"store,omitempty" mapstructure:"store"`
	Recalc     RecalcConfig                 `yaml:"recalc,omitempty" mapstructure:"recalc"`
	Metrics    MetricsConfig                `yaml:"metrics,omitempty" mapstructure:"metrics"`
	Thresholds map[string]domain.Thresholds `yaml:"thresholds,omitempty" mapstructure:"thresholds"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty" mapstructure:"level"`           // debug, info, warn, error
	Format     string `yaml:"format,omitempty" mapstructure:"format"`         // json, console
	OutputFile string `yaml:"outputFile,omitempty" mapstructure:"outputFile"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty" mapstructure:"format"` // pretty, csv, json, yaml
}

// StoreConfig selects where answers are persisted.
type StoreConfig struct {
	Backend string      `yaml:"backend,omitempty" mapstructure:"backend"` // memory, file, redis
	Path    string      `yaml:"path,omitempty" mapstructure:"path"`
	Redis   RedisConfig `yaml:"redis,omitempty" mapstructure:"redis"`
}

// RedisConfig holds the Redis persister connection.
type RedisConfig struct {
	Addr     string        `yaml:"addr,omitempty" mapstructure:"addr"`
	Password string        `yaml:"password,omitempty" mapstructure:"password"`
	DB       int           `yaml:"db,omitempty" mapstructure:"db"`
	Key      string        `yaml:"key,omitempty" mapstructure:"key"`
	TTL      time.Duration `yaml:"ttl,omitempty" mapstructure:"ttl"`
}

// RecalcConfig tunes when and how long the store reconciles.
type RecalcConfig struct {
	Debounce       time.Duration `yaml:"debounce,omitempty" mapstructure:"debounce"`
	HeavyDebounce  time.Duration `yaml:"heavyDebounce,omitempty" mapstructure:"heavyDebounce"`
	MaxPasses      int           `yaml:"maxPasses,omitempty" mapstructure:"maxPasses"`
	PersistTimeout time.Duration `yaml:"persistTimeout,omitempty" mapstructure:"persistTimeout"`
}

// MetricsConfig holds metrics export options.
type MetricsConfig struct {
	Textfile string `yaml:"textfile,omitempty" mapstructure:"textfile"` // node-exporter textfile path
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.outputFile", "")
	v.SetDefault("output.format", constants.OutputFormatPretty)
	v.SetDefault("store.backend", constants.StoreBackendMemory)
	v.SetDefault("store.path", constants.DefaultStorePath)
	v.SetDefault("store.redis.addr", "localhost:6379")
	v.SetDefault("store.redis.password", "")
	v.SetDefault("store.redis.db", 0)
	v.SetDefault("store.redis.key", constants.DefaultRedisKey)
	v.SetDefault("store.redis.ttl", time.Duration(0))
	v.SetDefault("recalc.debounce", constants.DefaultRecalcDebounce)
	v.SetDefault("recalc.heavyDebounce", constants.DefaultHeavyDebounce)
	v.SetDefault("recalc.maxPasses", constants.DefaultMaxPasses)
	v.SetDefault("recalc.persistTimeout", constants.DefaultPersistTimeout)
	v.SetDefault("metrics.textfile", "")
}

// LoadEnvFile loads KEY=value pairs from path into the environment. A
// missing file is not an error.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("error reading env file %s: %w", path, err)
	}
	return nil
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there. Every key can be overridden from the environment,
// e.g. PNL_STORE_BACKEND=redis.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(configPath)
	v.SetConfigType("yml")
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %w", err)
	}

	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}

	return &configuration, nil
}

// ThresholdOverrides returns the configured thresholds keyed by region.
// Keys are matched case-insensitively; unknown regions are skipped.
func (c *Configuration) ThresholdOverrides() map[domain.Region]domain.Thresholds {
	if len(c.Thresholds) == 0 {
		return nil
	}
	out := make(map[domain.Region]domain.Thresholds, len(c.Thresholds))
	for key, th := range c.Thresholds {
		region := domain.Region(strings.ToUpper(key))
		if region.Valid() {
			out[region] = th
		}
	}
	return out
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string

	switch c.Logging.Level {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		warnings = append(warnings, fmt.Sprintf("unknown logging level %q", c.Logging.Level))
	}
	switch c.Logging.Format {
	case "", "json", "console":
	default:
		warnings = append(warnings, fmt.Sprintf("unknown logging format %q", c.Logging.Format))
	}

	if c.Output.Format != "" {
		if err := validation.ValidateOutputFormat(c.Output.Format); err != nil {
			warnings = append(warnings, err.Error())
		}
	}

	switch c.Store.Backend {
	case "", constants.StoreBackendMemory:
	case constants.StoreBackendFile:
		if c.Store.Path == "" {
			warnings = append(warnings, "store backend file has no path, answers will not persist")
		}
	case constants.StoreBackendRedis:
		if c.Store.Redis.Addr == "" {
			warnings = append(warnings, "store backend redis has no address")
		}
	default:
		warnings = append(warnings, fmt.Sprintf("unknown store backend %q, falling back to memory", c.Store.Backend))
	}

	if c.Recalc.Debounce < 0 {
		warnings = append(warnings, fmt.Sprintf("recalc debounce %s is negative", c.Recalc.Debounce))
	}
	if c.Recalc.HeavyDebounce < c.Recalc.Debounce {
		warnings = append(warnings, fmt.Sprintf("recalc heavyDebounce %s is shorter than debounce %s", c.Recalc.HeavyDebounce, c.Recalc.Debounce))
	}
	if c.Recalc.MaxPasses < 1 {
		warnings = append(warnings, fmt.Sprintf("recalc maxPasses %d is below 1, using %d", c.Recalc.MaxPasses, constants.DefaultMaxPasses))
	}

	for key, th := range c.Thresholds {
		if !domain.Region(strings.ToUpper(key)).Valid() {
			warnings = append(warnings, fmt.Sprintf("thresholds for unknown region %q are ignored", key))
			continue
		}
		if th.CPRGreen > th.CPRYellow {
			warnings = append(warnings, fmt.Sprintf("thresholds %s: cprGreen %.2f is above cprYellow %.2f", strings.ToUpper(key), th.CPRGreen, th.CPRYellow))
		}
		if th.NIMGreen < th.NIMYellow {
			warnings = append(warnings, fmt.Sprintf("thresholds %s: nimGreen %.2f is below nimYellow %.2f", strings.ToUpper(key), th.NIMGreen, th.NIMYellow))
		}
	}

	return warnings
}
