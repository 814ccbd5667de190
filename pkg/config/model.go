package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
)

// Config is the root configuration structure.
type Config struct {
	Manager     ManagerCfg    `yaml:"manager"`
	Concurrency int           `yaml:"concurrency,omitempty"`
	Inventory   InventoryCfg  `yaml:"inventory"`
	Exclusions  ExclusionsCfg `yaml:"exclusions"`
	Handlers    []HandlerCfg  `yaml:"handlers,omitempty"`
	Logging     LoggingCfg    `yaml:"logging"`

	// Source is the file the configuration was read from.
	// It is empty when the built-in defaults are in use.
	Source string `yaml:"-"`
}

// ManagerCfg describes the external package-manager CLI.
type ManagerCfg struct {
	// Command is the executable name or path, "winget" by default.
	Command string `yaml:"command"`

	// TimeoutSeconds bounds every single invocation. Zero selects the default.
	TimeoutSeconds int `yaml:"timeout_seconds,omitempty"`

	// ExtraArgs are appended to every upgrade invocation.
	ExtraArgs []string `yaml:"extra_args,omitempty"`

	// NoUpdateMarkers are output substrings meaning "nothing to do".
	NoUpdateMarkers []string `yaml:"no_update_markers,omitempty"`

	// SuccessMarkers are output substrings meaning "updated".
	SuccessMarkers []string `yaml:"success_markers,omitempty"`
}

// InventoryCfg selects where installed packages are read from.
type InventoryCfg struct {
	// Source is "winget" or "registry".
	Source string `yaml:"source,omitempty"`

	// ListArgs are the arguments passed to the manager to list packages.
	ListArgs []string `yaml:"list_args,omitempty"`

	// NamesCommand prints one full package name per line. Optional.
	NamesCommand string `yaml:"names_command,omitempty"`
}

// ExclusionsCfg locates the exclusion store.
type ExclusionsCfg struct {
	Path string `yaml:"path,omitempty"`
}

// HandlerCfg declares a package with a specialized update strategy.
type HandlerCfg struct {
	Name string `yaml:"name"`
	By   string `yaml:"by"`
	ID   string `yaml:"id,omitempty"`
}

// LoggingCfg configures the application logger.
type LoggingCfg struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"`
}

// DefaultTimeoutSeconds is the per-invocation timeout when none is configured.
const DefaultTimeoutSeconds = 30

// DefaultConcurrency is the number of records updated at once when none is configured.
const DefaultConcurrency = 2

// DefaultMaxConfigFileSize is the default maximum config file size (10MB).
const DefaultMaxConfigFileSize = 10 * 1024 * 1024

// exclusionsFileName is the store file created under the user config directory.
const exclusionsFileName = "exclusions.json"

// userConfigDir is swapped in tests.
var userConfigDir = os.UserConfigDir

// GetTimeout returns the per-invocation timeout.
//
// Returns:
//   - time.Duration: configured timeout, or DefaultTimeoutSeconds when unset or negative
func (c *Config) GetTimeout() time.Duration {
	if c.Manager.TimeoutSeconds > 0 {
		return time.Duration(c.Manager.TimeoutSeconds) * time.Second
	}
	return DefaultTimeoutSeconds * time.Second
}

// GetConcurrency returns the configured concurrency limit, at least 1.
func (c *Config) GetConcurrency() int {
	if c.Concurrency > 0 {
		return c.Concurrency
	}
	return DefaultConcurrency
}

// GetCommand returns the manager executable, defaulting to winget.
func (c *Config) GetCommand() string {
	if cmd := strings.TrimSpace(c.Manager.Command); cmd != "" {
		return cmd
	}
	return "winget"
}

// ExclusionsPath resolves the exclusion store location.
//
// A configured path has a leading "~" expanded to the home directory.
// Without one, the store lives in the user configuration directory.
//
// Returns:
//   - string: absolute or working-directory-relative file path
//   - error: when the home or user config directory cannot be determined
func (c *Config) ExclusionsPath() (string, error) {
	if p := strings.TrimSpace(c.Exclusions.Path); p != "" {
		return homedir.Expand(p)
	}
	dir, err := userConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "appupdate", exclusionsFileName), nil
}
