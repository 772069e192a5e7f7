package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearTestEnvVars blanks every variable the config reads so a developer's
// shell cannot leak into the assertions. t.Setenv restores them afterwards.
func clearTestEnvVars(t *testing.T) {
	t.Helper()
	vars := []string{
		"FINOS_LOG_LEVEL", "FINOS_LOG_FORMAT",
		"FINOS_NORMALIZER_CONFIDENCE_FLOOR", "FINOS_NORMALIZER_CURRENCY",
		"FINOS_IMPORT_DAY_TOLERANCE", "FINOS_IMPORT_MAX_BATCH_ROWS",
		"FINOS_MEMORY_TOKEN_CEILING", "FINOS_MEMORY_TARGET_RATIO",
		"FINOS_RETRIEVAL_DIMENSION", "FINOS_RETRIEVAL_K", "FINOS_RETRIEVAL_THRESHOLD",
		"FINOS_AI_ENABLED", "FINOS_AI_MODEL", "FINOS_AI_EMBEDDING_MODEL",
		"FINOS_AI_TIMEOUT_SECONDS", "FINOS_CATEGORIES_FILE",
		"GEMINI_API_KEY",
	}
	for _, key := range vars {
		t.Setenv(key, "")
	}
}

func TestInitializeConfig_Defaults(t *testing.T) {
	clearTestEnvVars(t)

	config, err := InitializeConfig()
	require.NoError(t, err)

	assert.Equal(t, "info", config.Log.Level)
	assert.Equal(t, "text", config.Log.Format)
	assert.Equal(t, 0.6, config.Normalizer.ConfidenceFloor)
	assert.Equal(t, "UAH", config.Normalizer.Currency)
	assert.Equal(t, 1, config.Import.DayTolerance)
	assert.Equal(t, 5000, config.Import.MaxBatchRows)
	assert.Equal(t, 2048, config.Memory.TokenCeiling)
	assert.Equal(t, 0.7, config.Memory.TargetRatio)
	assert.Equal(t, 384, config.Retrieval.Dimension)
	assert.Equal(t, 5, config.Retrieval.K)
	assert.Equal(t, 0.2, config.Retrieval.Threshold)
	assert.False(t, config.AI.Enabled)
	assert.Equal(t, "gemini-2.0-flash", config.AI.Model)
	assert.Equal(t, "text-embedding-004", config.AI.EmbeddingModel)
	assert.Equal(t, 30, config.AI.TimeoutSeconds)
	assert.Equal(t, "categories.yaml", config.Categories.File)
}

func TestInitializeConfig_EnvironmentVariables(t *testing.T) {
	clearTestEnvVars(t)

	testEnvVars := map[string]string{
		"FINOS_LOG_LEVEL":            "debug",
		"FINOS_LOG_FORMAT":           "json",
		"FINOS_IMPORT_DAY_TOLERANCE": "2",
		"FINOS_MEMORY_TOKEN_CEILING": "4096",
		"FINOS_AI_ENABLED":           "true",
		"FINOS_AI_MODEL":             "gemini-1.5-pro",
		"GEMINI_API_KEY":             "test-api-key",
	}
	for key, value := range testEnvVars {
		t.Setenv(key, value)
	}

	config, err := InitializeConfig()
	require.NoError(t, err)

	assert.Equal(t, "debug", config.Log.Level)
	assert.Equal(t, "json", config.Log.Format)
	assert.Equal(t, 2, config.Import.DayTolerance)
	assert.Equal(t, 4096, config.Memory.TokenCeiling)
	assert.True(t, config.AI.Enabled)
	assert.Equal(t, "gemini-1.5-pro", config.AI.Model)
	assert.Equal(t, "test-api-key", config.AI.APIKey)
}

func TestInitializeConfig_ConfigFile(t *testing.T) {
	clearTestEnvVars(t)

	tempDir := t.TempDir()
	configContent := `
log:
  level: "warn"
normalizer:
  confidence_floor: 0.5
import:
  day_tolerance: 3
retrieval:
  k: 10
`
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, "config.yaml"), []byte(configContent), 0644))

	originalDir, err := os.Getwd()
	require.NoError(t, err)
	defer func() {
		require.NoError(t, os.Chdir(originalDir))
	}()
	require.NoError(t, os.Chdir(tempDir))

	config, err := InitializeConfig()
	require.NoError(t, err)

	assert.Equal(t, "warn", config.Log.Level)
	assert.Equal(t, 0.5, config.Normalizer.ConfidenceFloor)
	assert.Equal(t, 3, config.Import.DayTolerance)
	assert.Equal(t, 10, config.Retrieval.K)
	// untouched keys keep their defaults
	assert.Equal(t, "text", config.Log.Format)
	assert.Equal(t, 2048, config.Memory.TokenCeiling)
}

func TestInitializeConfig_HierarchicalPrecedence(t *testing.T) {
	clearTestEnvVars(t)

	tempDir := t.TempDir()
	configContent := `
log:
  level: "warn"
import:
  day_tolerance: 3
`
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, "config.yaml"), []byte(configContent), 0644))

	t.Setenv("FINOS_LOG_LEVEL", "error")
	t.Setenv("GEMINI_API_KEY", "env-api-key")

	originalDir, err := os.Getwd()
	require.NoError(t, err)
	defer func() {
		require.NoError(t, os.Chdir(originalDir))
	}()
	require.NoError(t, os.Chdir(tempDir))

	config, err := InitializeConfig()
	require.NoError(t, err)

	assert.Equal(t, "error", config.Log.Level)      // env var wins
	assert.Equal(t, 3, config.Import.DayTolerance)  // config file value
	assert.Equal(t, "env-api-key", config.AI.APIKey)
}

func TestValidateConfig_InvalidValues(t *testing.T) {
	clearTestEnvVars(t)

	tests := []struct {
		name         string
		modifyConfig func(*Config)
		expectError  string
	}{
		{
			name:         "invalid log level",
			modifyConfig: func(c *Config) { c.Log.Level = "verbose" },
			expectError:  "invalid log level",
		},
		{
			name:         "invalid log format",
			modifyConfig: func(c *Config) { c.Log.Format = "xml" },
			expectError:  "invalid log format",
		},
		{
			name:         "confidence floor above one",
			modifyConfig: func(c *Config) { c.Normalizer.ConfidenceFloor = 1.5 },
			expectError:  "normalizer.confidence_floor",
		},
		{
			name:         "negative day tolerance",
			modifyConfig: func(c *Config) { c.Import.DayTolerance = -1 },
			expectError:  "import.day_tolerance",
		},
		{
			name:         "day tolerance too wide",
			modifyConfig: func(c *Config) { c.Import.DayTolerance = 30 },
			expectError:  "import.day_tolerance",
		},
		{
			name:         "token ceiling too small",
			modifyConfig: func(c *Config) { c.Memory.TokenCeiling = 10 },
			expectError:  "memory.token_ceiling",
		},
		{
			name:         "target ratio at one",
			modifyConfig: func(c *Config) { c.Memory.TargetRatio = 1.0 },
			expectError:  "memory.target_ratio",
		},
		{
			name:         "retrieval threshold out of range",
			modifyConfig: func(c *Config) { c.Retrieval.Threshold = 1.5 },
			expectError:  "retrieval.threshold",
		},
		{
			name: "AI enabled without API key",
			modifyConfig: func(c *Config) {
				c.AI.Enabled = true
				c.AI.APIKey = ""
			},
			expectError: "GEMINI_API_KEY required when AI is enabled",
		},
		{
			name: "invalid timeout seconds",
			modifyConfig: func(c *Config) {
				c.AI.Enabled = true
				c.AI.APIKey = "test-key"
				c.AI.TimeoutSeconds = 0
			},
			expectError: "ai.timeout_seconds must be between 1 and 300",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, err := InitializeConfig()
			require.NoError(t, err)

			tt.modifyConfig(config)
			err = validateConfig(config)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectError)
		})
	}
}

func TestConfigureLogging(t *testing.T) {
	clearTestEnvVars(t)
	config, err := InitializeConfig()
	require.NoError(t, err)

	t.Run("json format", func(t *testing.T) {
		config.Log.Level = "debug"
		config.Log.Format = "json"
		logger := ConfigureLogging(config)
		assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
		assert.IsType(t, &logrus.JSONFormatter{}, logger.Formatter)
	})

	t.Run("unknown level falls back to info", func(t *testing.T) {
		config.Log.Level = "verbose"
		config.Log.Format = "text"
		logger := ConfigureLogging(config)
		assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
		assert.IsType(t, &logrus.TextFormatter{}, logger.Formatter)
	})
}
