// Package config loads application configuration from file and
// environment and initializes the global logger.
package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Aggregate AggregateConfig `yaml:"aggregate" mapstructure:"aggregate"`
	Dedup     DedupConfig     `yaml:"dedup" mapstructure:"dedup"`
	Scoring   ScoringConfig   `yaml:"scoring" mapstructure:"scoring"`
	Sources   SourcesConfig   `yaml:"sources" mapstructure:"sources"`
	Enrich    EnrichConfig    `yaml:"enrich" mapstructure:"enrich"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Webhook   WebhookConfig   `yaml:"webhook" mapstructure:"webhook"`
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// AggregateConfig configures the aggregation pipeline.
type AggregateConfig struct {
	MaxConcurrent      int      `yaml:"max_concurrent" mapstructure:"max_concurrent"`
	CollectorTimeout   int      `yaml:"collector_timeout_secs" mapstructure:"collector_timeout_secs"`
	EnrichTimeout      int      `yaml:"enrich_timeout_secs" mapstructure:"enrich_timeout_secs"`
	EnrichRatePerSec   float64  `yaml:"enrich_rate_per_sec" mapstructure:"enrich_rate_per_sec"`
	SourcePriority     []string `yaml:"source_priority" mapstructure:"source_priority"`
	DefaultMaxResults  int      `yaml:"default_max_results" mapstructure:"default_max_results"`
}

// DedupConfig configures duplicate detection.
type DedupConfig struct {
	NameThreshold  float64 `yaml:"name_threshold" mapstructure:"name_threshold"`
	MinPhoneDigits int     `yaml:"min_phone_digits" mapstructure:"min_phone_digits"`
}

// ScoringConfig configures lead scoring.
type ScoringConfig struct {
	Profile string `yaml:"profile" mapstructure:"profile"`
}

// SourcesConfig lists the configured business data sources.
type SourcesConfig struct {
	Files []FileSourceConfig `yaml:"files" mapstructure:"files"`
	APIs  []APISourceConfig  `yaml:"apis" mapstructure:"apis"`
}

// FileSourceConfig configures a local JSON or CSV source.
type FileSourceConfig struct {
	Name       string  `yaml:"name" mapstructure:"name"`
	Path       string  `yaml:"path" mapstructure:"path"`
	Confidence float64 `yaml:"confidence" mapstructure:"confidence"`
}

// APISourceConfig configures a remote search API source.
type APISourceConfig struct {
	Name        string  `yaml:"name" mapstructure:"name"`
	Endpoint    string  `yaml:"endpoint" mapstructure:"endpoint"`
	APIKey      string  `yaml:"api_key" mapstructure:"api_key"`
	Confidence  float64 `yaml:"confidence" mapstructure:"confidence"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RatePerSec  float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
}

// EnrichConfig configures the enrichment stage.
type EnrichConfig struct {
	Website     bool `yaml:"website" mapstructure:"website"`
	AI          bool `yaml:"ai" mapstructure:"ai"`
	TimeoutSecs int  `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int    `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// WebhookConfig configures lead delivery to an external endpoint.
type WebhookConfig struct {
	URL         string `yaml:"url" mapstructure:"url"`
	BatchSize   int    `yaml:"batch_size" mapstructure:"batch_size"`
	MaxAttempts int    `yaml:"max_attempts" mapstructure:"max_attempts"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// StoreConfig configures run persistence.
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("LEADGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("aggregate.max_concurrent", 3)
	v.SetDefault("aggregate.collector_timeout_secs", 60)
	v.SetDefault("aggregate.enrich_timeout_secs", 30)
	v.SetDefault("aggregate.enrich_rate_per_sec", 1.0)
	v.SetDefault("aggregate.default_max_results", 50)
	v.SetDefault("dedup.name_threshold", 0.8)
	v.SetDefault("dedup.min_phone_digits", 7)
	v.SetDefault("enrich.timeout_secs", 15)
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.max_tokens", 512)
	v.SetDefault("webhook.batch_size", 10)
	v.SetDefault("webhook.max_attempts", 3)
	v.SetDefault("webhook.timeout_secs", 30)
	v.SetDefault("store.path", "leadgen.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.Dedup.NameThreshold < 0 || c.Dedup.NameThreshold > 1 {
		return eris.Errorf("config: dedup.name_threshold must be in [0,1], got %v", c.Dedup.NameThreshold)
	}
	if c.Aggregate.MaxConcurrent < 0 {
		return eris.New("config: aggregate.max_concurrent must not be negative")
	}
	for _, f := range c.Sources.Files {
		if f.Name == "" || f.Path == "" {
			return eris.New("config: file sources need both name and path")
		}
	}
	for _, a := range c.Sources.APIs {
		if a.Name == "" || a.Endpoint == "" {
			return eris.New("config: api sources need both name and endpoint")
		}
	}
	return nil
}

// CollectorTimeoutDuration returns the collector timeout as a Duration.
func (c AggregateConfig) CollectorTimeoutDuration() time.Duration {
	return time.Duration(c.CollectorTimeout) * time.Second
}

// EnrichTimeoutDuration returns the enrichment timeout as a Duration.
func (c AggregateConfig) EnrichTimeoutDuration() time.Duration {
	return time.Duration(c.EnrichTimeout) * time.Second
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
