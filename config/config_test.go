package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "HOST", "ENVIRONMENT", "RESULTS_DIR",
		"ARCHIVE_DIR", "TESTS_DIR", "MAPPING_FILE", "LOG_LEVEL", "LOG_FORMAT"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "test-results", cfg.ResultsDir)
	assert.Equal(t, "archive", cfg.ArchiveDir)
	assert.Equal(t, "tests", cfg.TestsDir)
	assert.Equal(t, "mapping.json", cfg.MappingFile)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("RESULTS_DIR", "/data/results")
	t.Setenv("ARCHIVE_DIR", "/data/archive")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "/data/results", cfg.ResultsDir)
	assert.Equal(t, "/data/archive", cfg.ArchiveDir)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestValidate(t *testing.T) {
	t.Run("defaults are valid", func(t *testing.T) {
		assert.Empty(t, Load().Validate())
	})

	t.Run("missing directories are reported", func(t *testing.T) {
		cfg := Load()
		cfg.ResultsDir = ""
		cfg.ArchiveDir = ""

		errors := cfg.Validate()
		assert.Contains(t, errors, "RESULTS_DIR is required")
		assert.Contains(t, errors, "ARCHIVE_DIR is required")
	})

	t.Run("invalid log level is reported", func(t *testing.T) {
		cfg := Load()
		cfg.LogLevel = "verbose"

		errors := cfg.Validate()
		assert.Contains(t, errors, "LOG_LEVEL must be one of: debug, info, warn, error")
	})

	t.Run("invalid environment is reported", func(t *testing.T) {
		cfg := Load()
		cfg.Environment = "qa"

		errors := cfg.Validate()
		assert.Contains(t, errors, "ENVIRONMENT must be one of: development, staging, production")
	})
}

func TestEnvironmentHelpers(t *testing.T) {
	cfg := &Config{Environment: "development", Host: "localhost", Port: "8080"}
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, "localhost:8080", cfg.GetServerAddress())

	cfg.Environment = "production"
	assert.False(t, cfg.IsDevelopment())
	assert.True(t, cfg.IsProduction())
}
