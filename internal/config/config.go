package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Apify     ApifyConfig     `yaml:"apify" mapstructure:"apify"`
	Google    GoogleConfig    `yaml:"google" mapstructure:"google"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Scoring   ScoringConfig   `yaml:"scoring" mapstructure:"scoring"`
	Pipeline  PipelineConfig  `yaml:"pipeline" mapstructure:"pipeline"`
	Batch     BatchConfig     `yaml:"batch" mapstructure:"batch"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	SQLitePath  string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
}

// ApifyConfig holds the actor-platform credential pool. Search and
// enrichment actors share the same accounts, so one pool serves both.
type ApifyConfig struct {
	Tokens      []string `yaml:"tokens" mapstructure:"tokens"`
	DailyCap    int      `yaml:"daily_cap" mapstructure:"daily_cap"`
	TimeoutSecs int      `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// GoogleConfig holds Custom Search credentials.
type GoogleConfig struct {
	APIKey string `yaml:"api_key" mapstructure:"api_key"`
	CSEID  string `yaml:"cse_id" mapstructure:"cse_id"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key   string `yaml:"key" mapstructure:"key"`
	Model string `yaml:"model" mapstructure:"model"`
}

// ScoringConfig selects and tunes the ICP scoring oracle.
type ScoringConfig struct {
	// Mode is "ai" or "rule". The rule scorer needs no API key and is
	// the fallback when no Anthropic key is configured.
	Mode       string `yaml:"mode" mapstructure:"mode"`
	RubricPath string `yaml:"rubric_path" mapstructure:"rubric_path"`
}

// PipelineConfig configures generation run behavior.
type PipelineConfig struct {
	RunTimeoutSecs  int `yaml:"run_timeout_secs" mapstructure:"run_timeout_secs"`
	SessionTTLMins  int `yaml:"session_ttl_mins" mapstructure:"session_ttl_mins"`
	DefaultLimit    int `yaml:"default_limit" mapstructure:"default_limit"`
	EnrichBatchSize int `yaml:"enrich_batch_size" mapstructure:"enrich_batch_size"`
}

// BatchConfig configures batch processing.
type BatchConfig struct {
	MaxConcurrentQueries int `yaml:"max_concurrent_queries" mapstructure:"max_concurrent_queries"`
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
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.sqlite_path", "leads.db")
	v.SetDefault("apify.daily_cap", 100)
	v.SetDefault("apify.timeout_secs", 300)
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("scoring.mode", "ai")
	v.SetDefault("pipeline.run_timeout_secs", 1800)
	v.SetDefault("pipeline.session_ttl_mins", 60)
	v.SetDefault("pipeline.default_limit", 25)
	v.SetDefault("pipeline.enrich_batch_size", 10)
	v.SetDefault("batch.max_concurrent_queries", 3)
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

	return &cfg, nil
}

// Validate checks the fields required for the given run mode. Problems
// are collected so a misconfigured deployment reports everything wrong
// at once instead of one field per restart.
func (c *Config) Validate(mode string) error {
	var problems []string

	switch c.Store.Driver {
	case "sqlite":
		if c.Store.SQLitePath == "" {
			problems = append(problems, "store.sqlite_path is required for the sqlite driver")
		}
	case "postgres":
		if c.Store.DatabaseURL == "" {
			problems = append(problems, "store.database_url is required for the postgres driver")
		}
	default:
		problems = append(problems, "store.driver must be sqlite or postgres")
	}

	if len(c.Apify.Tokens) == 0 {
		problems = append(problems, "apify.tokens is required")
	}
	if c.Apify.DailyCap < 0 {
		problems = append(problems, "apify.daily_cap must be >= 0")
	}

	// ai mode without an Anthropic key is not an error: oracle setup
	// degrades to the rule scorer with a warning.
	switch c.Scoring.Mode {
	case "rule", "ai":
	default:
		problems = append(problems, "scoring.mode must be ai or rule")
	}

	switch mode {
	case "generate":
	case "batch":
		if c.Batch.MaxConcurrentQueries < 1 || c.Batch.MaxConcurrentQueries > 20 {
			problems = append(problems, "batch.max_concurrent_queries must be between 1 and 20")
		}
	case "serve":
		if c.Server.Port <= 0 {
			problems = append(problems, "server.port must be > 0")
		}
	default:
		problems = append(problems, "unknown mode: "+mode)
	}

	if len(problems) > 0 {
		return eris.New("config: " + strings.Join(problems, "; "))
	}
	return nil
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
