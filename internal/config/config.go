// Package config provides Viper-based hierarchical configuration for the
// engine: defaults, an optional yaml file and FINOS_-prefixed environment
// variables, with validation of every tunable.
package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config represents the complete engine configuration.
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	Normalizer struct {
		// ConfidenceFloor is the threshold below which a parsed candidate is
		// surfaced for user confirmation instead of being persisted silently.
		ConfidenceFloor float64 `mapstructure:"confidence_floor" yaml:"confidence_floor"`
		Currency        string  `mapstructure:"currency" yaml:"currency"`
	} `mapstructure:"normalizer" yaml:"normalizer"`

	Import struct {
		// DayTolerance widens the dedup window: rows matching an existing
		// record within this many calendar days are flagged as duplicates.
		DayTolerance int `mapstructure:"day_tolerance" yaml:"day_tolerance"`
		MaxBatchRows int `mapstructure:"max_batch_rows" yaml:"max_batch_rows"`
	} `mapstructure:"import" yaml:"import"`

	Memory struct {
		TokenCeiling int     `mapstructure:"token_ceiling" yaml:"token_ceiling"`
		TargetRatio  float64 `mapstructure:"target_ratio" yaml:"target_ratio"`
	} `mapstructure:"memory" yaml:"memory"`

	Retrieval struct {
		Dimension int     `mapstructure:"dimension" yaml:"dimension"`
		K         int     `mapstructure:"k" yaml:"k"`
		Threshold float64 `mapstructure:"threshold" yaml:"threshold"`
	} `mapstructure:"retrieval" yaml:"retrieval"`

	AI struct {
		Enabled        bool   `mapstructure:"enabled" yaml:"enabled"`
		Model          string `mapstructure:"model" yaml:"model"`
		EmbeddingModel string `mapstructure:"embedding_model" yaml:"embedding_model"`
		TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
		APIKey         string `mapstructure:"api_key" yaml:"-"` // Never serialize API key
	} `mapstructure:"ai" yaml:"ai"`

	Categories struct {
		File string `mapstructure:"file" yaml:"file"`
	} `mapstructure:"categories" yaml:"categories"`
}

var loadEnvOnce sync.Once

// LoadEnv loads environment variables from a .env file if one exists.
// Missing files are fine; real environment variables win either way.
func LoadEnv() {
	loadEnvOnce.Do(func() {
		_ = godotenv.Load()
	})
}

// InitializeConfig initializes Viper configuration with hierarchical
// loading: defaults, then an optional config.yaml, then FINOS_ environment
// variables.
func InitializeConfig() (*Config, error) {
	LoadEnv()

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("$HOME/.finos")
	v.AddConfigPath(".")

	v.SetEnvPrefix("FINOS")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Keep going with defaults and env vars; a broken file is worth
			// a warning, not a refusal to start.
			fmt.Printf("Warning: error reading config file %s: %v\n", v.ConfigFileUsed(), err)
		}
	}

	// API key always comes from the unprefixed env var.
	if err := v.BindEnv("ai.api_key", "GEMINI_API_KEY"); err != nil {
		fmt.Printf("Warning: failed to bind GEMINI_API_KEY environment variable: %v\n", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("normalizer.confidence_floor", 0.6)
	v.SetDefault("normalizer.currency", "UAH")

	v.SetDefault("import.day_tolerance", 1)
	v.SetDefault("import.max_batch_rows", 5000)

	v.SetDefault("memory.token_ceiling", 2048)
	v.SetDefault("memory.target_ratio", 0.7)

	v.SetDefault("retrieval.dimension", 384)
	v.SetDefault("retrieval.k", 5)
	v.SetDefault("retrieval.threshold", 0.2)

	v.SetDefault("ai.enabled", false)
	v.SetDefault("ai.model", "gemini-2.0-flash")
	v.SetDefault("ai.embedding_model", "text-embedding-004")
	v.SetDefault("ai.timeout_seconds", 30)

	v.SetDefault("categories.file", "categories.yaml")
}

// validateConfig validates the configuration values.
func validateConfig(config *Config) error {
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}
	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	if config.Normalizer.ConfidenceFloor < 0 || config.Normalizer.ConfidenceFloor > 1 {
		return fmt.Errorf("normalizer.confidence_floor must be between 0.0 and 1.0, got: %f",
			config.Normalizer.ConfidenceFloor)
	}

	if config.Import.DayTolerance < 0 || config.Import.DayTolerance > 7 {
		return fmt.Errorf("import.day_tolerance must be between 0 and 7, got: %d",
			config.Import.DayTolerance)
	}
	if config.Import.MaxBatchRows < 1 {
		return fmt.Errorf("import.max_batch_rows must be positive, got: %d",
			config.Import.MaxBatchRows)
	}

	if config.Memory.TokenCeiling < 64 {
		return fmt.Errorf("memory.token_ceiling must be at least 64, got: %d",
			config.Memory.TokenCeiling)
	}
	if config.Memory.TargetRatio <= 0 || config.Memory.TargetRatio >= 1 {
		return fmt.Errorf("memory.target_ratio must be inside (0,1), got: %f",
			config.Memory.TargetRatio)
	}

	if config.Retrieval.Dimension < 1 {
		return fmt.Errorf("retrieval.dimension must be positive, got: %d",
			config.Retrieval.Dimension)
	}
	if config.Retrieval.K < 1 {
		return fmt.Errorf("retrieval.k must be positive, got: %d", config.Retrieval.K)
	}
	if config.Retrieval.Threshold < -1 || config.Retrieval.Threshold > 1 {
		return fmt.Errorf("retrieval.threshold must be inside [-1,1], got: %f",
			config.Retrieval.Threshold)
	}

	if config.AI.Enabled {
		if config.AI.APIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY required when AI is enabled")
		}
		if config.AI.TimeoutSeconds < 1 || config.AI.TimeoutSeconds > 300 {
			return fmt.Errorf("ai.timeout_seconds must be between 1 and 300, got: %d",
				config.AI.TimeoutSeconds)
		}
	}

	return nil
}

// ConfigureLogging builds a logrus logger from the Log section.
func ConfigureLogging(config *Config) *logrus.Logger {
	logger := logrus.New()

	logLevel, err := logrus.ParseLevel(strings.ToLower(config.Log.Level))
	if err != nil {
		logger.Warnf("Invalid log level '%s', using 'info'", config.Log.Level)
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	if strings.ToLower(config.Log.Format) == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return logger
}
