package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable, e.g. SPFEED_OUTPUT_FORMAT.
const EnvPrefix = "SPFEED"

// Config holds all spfeed configuration.
type Config struct {
	Source   SourceConfig   `mapstructure:"source"`
	Output   OutputConfig   `mapstructure:"output"`
	Log      LogConfig      `mapstructure:"log"`
	Alerts   AlertsConfig   `mapstructure:"alerts"`
	Taxonomy TaxonomyConfig `mapstructure:"taxonomy"`
}

// SourceConfig selects where payload bytes come from.
type SourceConfig struct {
	Kind string `mapstructure:"kind" validate:"required,oneof=file stdin"`
	Path string `mapstructure:"path" validate:"required_if=Kind file"`
}

// OutputConfig holds output destination settings.
type OutputConfig struct {
	Format     string `mapstructure:"format" validate:"oneof=json pretty yaml"`
	File       string `mapstructure:"file"` // empty = stdout only
	Tee        bool   `mapstructure:"tee"`  // with File, also write to stdout
	MaxSize    int64  `mapstructure:"max_size" validate:"gte=0"`
	MaxBackups int    `mapstructure:"max_backups" validate:"gte=1"`
	Async      bool   `mapstructure:"async"`
	BufferSize int    `mapstructure:"buffer_size" validate:"gte=1"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn warning error"`
}

// AlertsConfig controls alert normalization and watch mode.
type AlertsConfig struct {
	ActiveOnly  bool          `mapstructure:"active_only"`
	Dedup       bool          `mapstructure:"dedup"`
	UrgentFirst bool          `mapstructure:"urgent_first"`
	Strict      bool          `mapstructure:"strict"`
	Recheck     string        `mapstructure:"recheck"` // cron schedule; empty disables
	Debounce    time.Duration `mapstructure:"debounce" validate:"gte=0"`
}

// TaxonomyConfig controls term set validation and rendering.
type TaxonomyConfig struct {
	CheckPaths      bool          `mapstructure:"check_paths"`
	AllowNonGuidIDs bool          `mapstructure:"allow_non_guid_ids"`
	Lenient         bool          `mapstructure:"lenient"` // report violations but still emit
	Flatten         bool          `mapstructure:"flatten"`
	AnnotateDepth   bool          `mapstructure:"annotate_depth"`
	CacheTTL        time.Duration `mapstructure:"cache_ttl" validate:"gte=0"`
}

// SetDefaults registers every key with its default value. Keys must be
// registered for environment overrides to reach Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("source.kind", "stdin")
	v.SetDefault("source.path", "")

	v.SetDefault("output.format", "json")
	v.SetDefault("output.file", "")
	v.SetDefault("output.tee", false)
	v.SetDefault("output.max_size", 0)
	v.SetDefault("output.max_backups", 9)
	v.SetDefault("output.async", false)
	v.SetDefault("output.buffer_size", 1024)

	v.SetDefault("log.level", "info")

	v.SetDefault("alerts.active_only", false)
	v.SetDefault("alerts.dedup", true)
	v.SetDefault("alerts.urgent_first", false)
	v.SetDefault("alerts.strict", false)
	v.SetDefault("alerts.recheck", "@every 1m")
	v.SetDefault("alerts.debounce", "250ms")

	v.SetDefault("taxonomy.check_paths", false)
	v.SetDefault("taxonomy.allow_non_guid_ids", false)
	v.SetDefault("taxonomy.lenient", false)
	v.SetDefault("taxonomy.flatten", false)
	v.SetDefault("taxonomy.annotate_depth", false)
	v.SetDefault("taxonomy.cache_ttl", "0s")
}

// NewViper returns a viper instance with defaults and environment binding
// in place. When configFile is empty, spfeed.yaml is looked up in the
// working directory and $HOME/.config/spfeed and is optional; an explicit
// configFile must exist.
func NewViper(configFile string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("spfeed")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/spfeed")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return v, nil
}

// Load decodes and validates the configuration held by v.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field constraints and the recheck schedule.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Alerts.Recheck != "" {
		if _, err := cron.ParseStandard(c.Alerts.Recheck); err != nil {
			return fmt.Errorf("invalid config: alerts.recheck %q: %w", c.Alerts.Recheck, err)
		}
	}
	return nil
}
