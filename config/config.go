package config

import (
	"os"
	"strings"
)

// Config holds all configuration for the application. Data directories are
// always injected through here; nothing in the service layer reads paths
// from the working directory on its own.
type Config struct {
	// Server Configuration
	Port        string
	Host        string
	Environment string

	// CORS Configuration
	FrontendURL string

	// Logging Configuration
	LogLevel  string
	LogFormat string

	// Data Sources
	ResultsDir  string // live Playwright result files
	ArchiveDir  string // historical copies of dated result files
	TestsDir    string // spec source tree
	MappingFile string // requirement ID -> description table
}

// Load loads configuration from environment variables with defaults
func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		Host:        getEnv("HOST", "localhost"),
		Environment: getEnv("ENVIRONMENT", "development"),

		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),

		LogLevel:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat: strings.ToLower(getEnv("LOG_FORMAT", "json")),

		ResultsDir:  getEnv("RESULTS_DIR", "test-results"),
		ArchiveDir:  getEnv("ARCHIVE_DIR", "archive"),
		TestsDir:    getEnv("TESTS_DIR", "tests"),
		MappingFile: getEnv("MAPPING_FILE", "mapping.json"),
	}
}

// getEnv gets an environment variable with a fallback default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// IsDevelopment returns true if the environment is development
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction returns true if the environment is production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// GetServerAddress returns the full server address
func (c *Config) GetServerAddress() string {
	return c.Host + ":" + c.Port
}

// Validate validates the configuration and returns any errors
func (c *Config) Validate() []string {
	var errors []string

	if c.Port == "" {
		errors = append(errors, "PORT is required")
	}
	if c.Host == "" {
		errors = append(errors, "HOST is required")
	}
	if c.ResultsDir == "" {
		errors = append(errors, "RESULTS_DIR is required")
	}
	if c.ArchiveDir == "" {
		errors = append(errors, "ARCHIVE_DIR is required")
	}
	if c.TestsDir == "" {
		errors = append(errors, "TESTS_DIR is required")
	}
	if c.MappingFile == "" {
		errors = append(errors, "MAPPING_FILE is required")
	}

	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLogLevels, c.LogLevel) {
		errors = append(errors, "LOG_LEVEL must be one of: debug, info, warn, error")
	}

	validLogFormats := []string{"json", "text"}
	if !contains(validLogFormats, c.LogFormat) {
		errors = append(errors, "LOG_FORMAT must be one of: json, text")
	}

	validEnvironments := []string{"development", "staging", "production"}
	if !contains(validEnvironments, c.Environment) {
		errors = append(errors, "ENVIRONMENT must be one of: development, staging, production")
	}

	return errors
}

// contains checks if a slice contains a string
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
