// Package config handles configuration loading, validation, and merging for appupdate.
// It reads a YAML file layered over the embedded defaults and exposes typed
// accessors for the manager command, concurrency, handlers and exclusions.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ajxudir/appupdate/pkg/verbose"
	"gopkg.in/yaml.v3"
)

// LocalConfigName is the file looked up in the working directory.
const LocalConfigName = ".appupdate.yml"

// LoadConfig loads configuration from the specified path or defaults.
//
// If configPath is provided, it loads that specific config file.
// Otherwise, it looks for .appupdate.yml in the working directory.
// If no config is found, it returns the built-in default configuration.
// A loaded file is merged over the defaults, so it only needs the keys it changes.
//
// Parameters:
//   - configPath: path to the config file, or empty to use defaults
//   - workDir: working directory searched for .appupdate.yml
//
// Returns:
//   - *Config: the loaded and merged configuration
//   - error: any error encountered during loading or validation
func LoadConfig(configPath, workDir string) (*Config, error) {
	cfg := loadDefaultConfig()

	path := configPath
	if path == "" && workDir != "" {
		local := filepath.Join(workDir, LocalConfigName)
		if _, err := os.Stat(local); err == nil {
			verbose.Infof("Found local config: %s", local)
			path = local
		}
	}

	if path != "" {
		verbose.Infof("Loading config from: %s", path)
		loaded, err := loadConfigFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		cfg = mergeConfigs(cfg, loaded)
		cfg.Source = path
		verbose.ConfigLoaded(path)
	} else {
		verbose.Info("Using built-in default configuration")
	}

	if result := cfg.Validate(); result.HasErrors() {
		return nil, errors.New(result.ErrorMessages())
	}
	return cfg, nil
}

// loadConfigFileWithLimit loads a config file with a size limit.
//
// Parameters:
//   - path: path to the config file
//   - maxSize: maximum allowed file size in bytes
//
// Returns:
//   - *Config: the loaded configuration
//   - error: error if file is too large, not found, or has invalid YAML
func loadConfigFileWithLimit(path string, maxSize int64) (*Config, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Size() > maxSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d bytes)", info.Size(), maxSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return loadConfigData(data)
}

// loadConfigFile loads a config file with the default size limit.
func loadConfigFile(path string) (*Config, error) {
	return loadConfigFileWithLimit(path, DefaultMaxConfigFileSize)
}

// loadConfigData parses YAML configuration data, rejecting unknown keys.
//
// An empty document yields an empty Config.
//
// Parameters:
//   - data: YAML configuration data as bytes
//
// Returns:
//   - *Config: the parsed configuration
//   - error: error if YAML is invalid or contains unknown fields
func loadConfigData(data []byte) (*Config, error) {
	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}
	return &cfg, nil
}

// LoadConfigFileStrict loads a config file and validates it on its own,
// without merging defaults.
//
// Parameters:
//   - path: path to the config file
//
// Returns:
//   - *Config: the loaded configuration
//   - error: error if file has unknown fields, validation errors, or invalid YAML
func LoadConfigFileStrict(path string) (*Config, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Size() > DefaultMaxConfigFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d bytes)", info.Size(), DefaultMaxConfigFileSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	result := ValidateConfigFile(data)
	if result.HasErrors() {
		return nil, errors.New(result.ErrorMessages())
	}

	return loadConfigData(data)
}
