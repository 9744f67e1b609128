package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// ConfigHelpers provides convenient access to global configuration
type ConfigHelpers struct {
	config *GlobalConfig
}

// NewConfigHelpers creates a new config helpers instance
func NewConfigHelpers(config *GlobalConfig) *ConfigHelpers {
	return &ConfigHelpers{config: config}
}

func (c *ConfigHelpers) PackageTool() string {
	return c.config.PackageTool
}

func (c *ConfigHelpers) PackageType() string {
	return c.config.PackageType
}

func (c *ConfigHelpers) PackageNamingScheme() string {
	return c.config.PackageNamingScheme
}

// TempDir returns the directory package work dirs are created under
func (c *ConfigHelpers) TempDir() string {
	if c.config.TempDir == "" {
		return os.TempDir()
	}
	return c.config.TempDir
}

// ReportDir returns the absolute path of the report directory, or "" when
// reporting is disabled
func (c *ConfigHelpers) ReportDir() (string, error) {
	if c.config.ReportDir == "" {
		return "", nil
	}
	return filepath.Abs(c.config.ReportDir)
}

// LogLevel returns the configured log level
func (c *ConfigHelpers) LogLevel() string {
	return c.config.Logging.Level
}

// IsDebugMode returns true if debug logging is enabled
func (c *ConfigHelpers) IsDebugMode() bool {
	return c.config.Logging.Level == "debug"
}

// CreateTempDir ensures the configured temp directory exists
func (c *ConfigHelpers) CreateTempDir() (string, error) {
	tempDir := c.TempDir()
	if err := createDirIfNotExists(tempDir); err != nil {
		return "", fmt.Errorf("creating temp directory %s: %w", tempDir, err)
	}
	return tempDir, nil
}

// CreateReportDir ensures the report directory exists
func (c *ConfigHelpers) CreateReportDir() (string, error) {
	reportDir, err := c.ReportDir()
	if err != nil {
		return "", fmt.Errorf("resolving report directory: %w", err)
	}
	if reportDir == "" {
		return "", nil
	}
	return reportDir, createDirIfNotExists(reportDir)
}

// Helper function to create directories
func createDirIfNotExists(dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return os.MkdirAll(dir, 0755)
	}
	return nil
}
