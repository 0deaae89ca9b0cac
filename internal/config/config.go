package config

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/digimosa/pii-scanner/internal/detector"
)

// EnvPrefix prefixes environment overrides, e.g. PII_SCANNER_SCAN_WORKERS.
const EnvPrefix = "PII_SCANNER"

type Config struct {
	Scan      ScanConfig      `yaml:"scan" mapstructure:"scan"`
	Allowlist AllowlistConfig `yaml:"allowlist" mapstructure:"allowlist"`
	Storage   StorageConfig   `yaml:"storage" mapstructure:"storage"`
	Cache     CacheConfig     `yaml:"cache" mapstructure:"cache"`
	Logging   LoggingConfig   `yaml:"logging" mapstructure:"logging"`
	Progress  ProgressConfig  `yaml:"progress" mapstructure:"progress"`
	Watch     WatchConfig     `yaml:"watch" mapstructure:"watch"`
}

type ScanConfig struct {
	Workers            int      `yaml:"workers" mapstructure:"workers"`
	Profile            string   `yaml:"profile" mapstructure:"profile"`
	ExcludePaths       []string `yaml:"exclude_paths" mapstructure:"exclude_paths"`
	MaxFileSizeMB      int      `yaml:"max_file_size_mb" mapstructure:"max_file_size_mb"` // 0 = unlimited
	DetectDuplicates   bool     `yaml:"detect_duplicates" mapstructure:"detect_duplicates"`
	AnalyzePermissions bool     `yaml:"analyze_permissions" mapstructure:"analyze_permissions"`
}

// MaxFileSizeBytes converts the configured limit; 0 means no limit.
func (c ScanConfig) MaxFileSizeBytes() int64 {
	return int64(c.MaxFileSizeMB) * 1024 * 1024
}

type AllowlistConfig struct {
	Path  string `yaml:"path" mapstructure:"path"`
	Watch bool   `yaml:"watch" mapstructure:"watch"`
}

// StorageConfig: an empty DBPath disables persistence.
type StorageConfig struct {
	DBPath string `yaml:"db_path" mapstructure:"db_path"`
}

// CacheConfig: an empty RedisURL disables the detection cache.
type CacheConfig struct {
	RedisURL  string        `yaml:"redis_url" mapstructure:"redis_url"`
	KeyPrefix string        `yaml:"key_prefix" mapstructure:"key_prefix"`
	TTL       time.Duration `yaml:"ttl" mapstructure:"ttl"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"` // json or console
	File   struct {
		Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
		Path    string `yaml:"path" mapstructure:"path"`
	} `yaml:"file" mapstructure:"file"`
}

type ProgressConfig struct {
	MaxPerSecond float64 `yaml:"max_per_second" mapstructure:"max_per_second"`
}

type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce" mapstructure:"debounce"`
}

func DefaultConfig() *Config {
	cfg := &Config{
		Scan: ScanConfig{
			Workers:            runtime.NumCPU(),
			Profile:            detector.ProfileStandard,
			ExcludePaths:       []string{".git/**", "node_modules/**"},
			AnalyzePermissions: true,
		},
		Allowlist: AllowlistConfig{Path: "allowlist.yaml"},
		Storage:   StorageConfig{DBPath: "pii-scanner.db"},
		Cache:     CacheConfig{KeyPrefix: "pii-scanner", TTL: 24 * time.Hour},
		Logging:   LoggingConfig{Level: "info", Format: "console"},
		Progress:  ProgressConfig{MaxPerSecond: 4},
		Watch:     WatchConfig{Debounce: 2 * time.Second},
	}
	cfg.Logging.File.Path = "pii-scanner.log"
	return cfg
}

// Load reads configPath (or config.yaml from the usual locations when it
// is empty), applies PII_SCANNER_* environment overrides and validates
// the result. A missing default config file is not an error.
func Load(configPath string) (*Config, error) {
	v := newViper(configPath)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return decode(v)
}

func newViper(configPath string) *viper.Viper {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.pii-scanner/")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	}
	return v
}

// setDefaults registers every key so env overrides apply on Unmarshal.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("scan.workers", d.Scan.Workers)
	v.SetDefault("scan.profile", d.Scan.Profile)
	v.SetDefault("scan.exclude_paths", d.Scan.ExcludePaths)
	v.SetDefault("scan.max_file_size_mb", d.Scan.MaxFileSizeMB)
	v.SetDefault("scan.detect_duplicates", d.Scan.DetectDuplicates)
	v.SetDefault("scan.analyze_permissions", d.Scan.AnalyzePermissions)
	v.SetDefault("allowlist.path", d.Allowlist.Path)
	v.SetDefault("allowlist.watch", d.Allowlist.Watch)
	v.SetDefault("storage.db_path", d.Storage.DBPath)
	v.SetDefault("cache.redis_url", d.Cache.RedisURL)
	v.SetDefault("cache.key_prefix", d.Cache.KeyPrefix)
	v.SetDefault("cache.ttl", d.Cache.TTL)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.file.enabled", d.Logging.File.Enabled)
	v.SetDefault("logging.file.path", d.Logging.File.Path)
	v.SetDefault("progress.max_per_second", d.Progress.MaxPerSecond)
	v.SetDefault("watch.debounce", d.Watch.Debounce)
}

func decode(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// validateConfig validates the loaded configuration
func validateConfig(config *Config) error {
	if config.Scan.Workers < 0 {
		return fmt.Errorf("invalid worker count: %d", config.Scan.Workers)
	}
	if _, err := detector.ProfileByName(config.Scan.Profile); err != nil {
		return err
	}
	if config.Scan.MaxFileSizeMB < 0 {
		return fmt.Errorf("invalid max file size: %d MB", config.Scan.MaxFileSizeMB)
	}
	for _, p := range config.Scan.ExcludePaths {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("invalid exclude pattern: %q", p)
		}
	}

	if config.Cache.TTL < 0 {
		return fmt.Errorf("invalid cache ttl: %s", config.Cache.TTL)
	}
	if config.Progress.MaxPerSecond <= 0 {
		return fmt.Errorf("invalid progress rate: %v (must be > 0)", config.Progress.MaxPerSecond)
	}
	if config.Watch.Debounce < 0 {
		return fmt.Errorf("invalid watch debounce: %s", config.Watch.Debounce)
	}

	switch config.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", config.Logging.Level)
	}
	if config.Logging.Format != "json" && config.Logging.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", config.Logging.Format)
	}
	if config.Logging.File.Enabled && config.Logging.File.Path == "" {
		return errors.New("logging.file.path is required when file logging is enabled")
	}
	return nil
}

// Watch re-reads configPath whenever it changes and passes each valid
// configuration to callback. Invalid edits are reported to onError and
// otherwise ignored.
func Watch(configPath string, callback func(*Config), onError func(error)) error {
	if configPath == "" {
		return errors.New("config watch requires an explicit config file")
	}
	v := newViper(configPath)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := decode(v)
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		callback(cfg)
	})
	v.WatchConfig()
	return nil
}
