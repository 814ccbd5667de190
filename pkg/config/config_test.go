package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoadConfig tests the behavior of LoadConfig with various scenarios.
//
// It verifies:
//   - Defaults are used when no file exists
//   - A local .appupdate.yml is picked up and merged over defaults
//   - An explicit path wins over the local file
//   - Missing explicit files and invalid values return errors
func TestLoadConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := LoadConfig("", t.TempDir())
		require.NoError(t, err)
		assert.Equal(t, "winget", cfg.Manager.Command)
		assert.Equal(t, 2, cfg.GetConcurrency())
		assert.Equal(t, 30*time.Second, cfg.GetTimeout())
		assert.Contains(t, cfg.Manager.NoUpdateMarkers, "No installed package")
		assert.Contains(t, cfg.Manager.NoUpdateMarkers, "No available upgrade")
		assert.Empty(t, cfg.Source)
		assert.Equal(t, "warn", cfg.Logging.Level)
		assert.Equal(t, "text", cfg.Logging.Format)
	})

	t.Run("local file merged over defaults", func(t *testing.T) {
		dir := t.TempDir()
		local := filepath.Join(dir, LocalConfigName)
		require.NoError(t, os.WriteFile(local, []byte("concurrency: 4\nmanager:\n  timeout_seconds: 5\n"), 0o644))

		cfg, err := LoadConfig("", dir)
		require.NoError(t, err)
		assert.Equal(t, 4, cfg.GetConcurrency())
		assert.Equal(t, 5*time.Second, cfg.GetTimeout())
		assert.Equal(t, "winget", cfg.Manager.Command)
		assert.Equal(t, local, cfg.Source)
	})

	t.Run("explicit path", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, LocalConfigName), []byte("concurrency: 4\n"), 0o644))
		explicit := filepath.Join(dir, "custom.yml")
		require.NoError(t, os.WriteFile(explicit, []byte("concurrency: 7\n"), 0o644))

		cfg, err := LoadConfig(explicit, dir)
		require.NoError(t, err)
		assert.Equal(t, 7, cfg.GetConcurrency())
	})

	t.Run("missing explicit file", func(t *testing.T) {
		cfg, err := LoadConfig("/nonexistent/config.yml", t.TempDir())
		assert.Error(t, err)
		assert.Nil(t, cfg)
	})

	t.Run("unknown key rejected", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yml")
		require.NoError(t, os.WriteFile(path, []byte("manager:\n  comand: winget\n"), 0o644))
		_, err := LoadConfig(path, "")
		assert.Error(t, err)
	})

	t.Run("negative concurrency rejected", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yml")
		require.NoError(t, os.WriteFile(path, []byte("concurrency: -1\n"), 0o644))
		_, err := LoadConfig(path, "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "concurrency")
	})

	t.Run("empty file keeps defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "empty.yml")
		require.NoError(t, os.WriteFile(path, nil, 0o644))
		cfg, err := LoadConfig(path, "")
		require.NoError(t, err)
		assert.Equal(t, "winget", cfg.Manager.Command)
	})
}

// TestLoadConfigFileWithLimit tests the size limit on config files.
func TestLoadConfigFileWithLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.yml")
	require.NoError(t, os.WriteFile(path, []byte("concurrency: 3\n"), 0o644))

	_, err := loadConfigFileWithLimit(path, 4)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too large")

	cfg, err := loadConfigFileWithLimit(path, 1024)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Concurrency)
}

// TestMergeConfigs tests the behavior of mergeConfigs.
//
// It verifies:
//   - Zero values in the custom config keep the base value
//   - Non-nil lists replace base lists, an empty list clears
//   - Handlers merge by case-insensitive name and keep base order
func TestMergeConfigs(t *testing.T) {
	base := &Config{
		Manager: ManagerCfg{Command: "winget", TimeoutSeconds: 30, ExtraArgs: []string{"--a"}},
		Handlers: []HandlerCfg{
			{Name: "Mozilla Firefox", By: "id", ID: "Mozilla.Firefox"},
			{Name: "Zoom", By: "id", ID: "Zoom.Zoom"},
		},
		Concurrency: 2,
	}
	custom := &Config{
		Manager:  ManagerCfg{ExtraArgs: []string{}},
		Handlers: []HandlerCfg{{Name: "zoom", By: "id", ID: "Zoom.Client"}, {Name: "Slack", By: "id"}},
	}

	merged := mergeConfigs(base, custom)
	assert.Equal(t, "winget", merged.Manager.Command)
	assert.Equal(t, 30, merged.Manager.TimeoutSeconds)
	assert.Empty(t, merged.Manager.ExtraArgs)
	assert.Equal(t, 2, merged.Concurrency)
	require.Len(t, merged.Handlers, 3)
	assert.Equal(t, "Zoom.Client", merged.Handlers[1].ID)
	assert.Equal(t, "Slack", merged.Handlers[2].Name)

	assert.Same(t, base, mergeConfigs(base, nil))
	assert.Equal(t, []string{"--a"}, base.Manager.ExtraArgs, "base must not be modified")
}

// TestValidate tests the behavior of Config.Validate on merged configs.
func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{Manager: ManagerCfg{Command: "winget", TimeoutSeconds: 30}, Concurrency: 1}
	}

	assert.False(t, valid().Validate().HasErrors())

	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"empty command", func(c *Config) { c.Manager.Command = " " }, "manager.command"},
		{"zero concurrency", func(c *Config) { c.Concurrency = 0 }, "concurrency"},
		{"zero timeout", func(c *Config) { c.Manager.TimeoutSeconds = 0 }, "manager.timeout_seconds"},
		{"unknown source", func(c *Config) { c.Inventory.Source = "apt" }, "inventory.source"},
		{"unknown strategy", func(c *Config) { c.Handlers = []HandlerCfg{{Name: "X", By: "name"}} }, "handlers[0]"},
		{"unnamed handler", func(c *Config) { c.Handlers = []HandlerCfg{{By: "id"}} }, "handlers[0]"},
		{"duplicate handler", func(c *Config) {
			c.Handlers = []HandlerCfg{{Name: "X", By: "id"}, {Name: "x", By: "id"}}
		}, "handlers[1]"},
		{"unknown format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			result := cfg.Validate()
			require.True(t, result.HasErrors())
			assert.Equal(t, tt.field, result.Errors[0].Field)
			assert.Contains(t, result.ErrorMessages(), "Configuration validation failed:")
		})
	}

	t.Run("unknown level is a warning", func(t *testing.T) {
		cfg := valid()
		cfg.Logging.Level = "chatty"
		result := cfg.Validate()
		assert.False(t, result.HasErrors())
		assert.Len(t, result.Warnings, 1)
	})
}

// TestValidateConfigFile tests strict validation of raw YAML.
//
// It verifies:
//   - A valid partial file passes
//   - Unknown fields report the line and the valid keys
//   - kebab-case and camelCase keys get a snake_case suggestion
//   - Syntax errors are reported
func TestValidateConfigFile(t *testing.T) {
	t.Run("valid partial file", func(t *testing.T) {
		result := ValidateConfigFile([]byte("concurrency: 3\nhandlers:\n  - name: Zoom\n    by: id\n"))
		assert.False(t, result.HasErrors())
	})

	t.Run("unknown field", func(t *testing.T) {
		result := ValidateConfigFile([]byte("manager:\n  command: winget\n  badfield: 1\n"))
		require.True(t, result.HasErrors())
		assert.Contains(t, result.Errors[0].Message, "unknown field 'badfield' (line 3)")
		assert.Contains(t, result.Errors[0].ValidKeys, "timeout_seconds")
	})

	t.Run("kebab-case suggestion", func(t *testing.T) {
		result := ValidateConfigFile([]byte("manager:\n  timeout-seconds: 10\n"))
		require.True(t, result.HasErrors())
		assert.Contains(t, result.Errors[0].Message, "did you mean 'timeout_seconds'?")
	})

	t.Run("camelCase suggestion", func(t *testing.T) {
		result := ValidateConfigFile([]byte("inventory:\n  namesCommand: x\n"))
		require.True(t, result.HasErrors())
		assert.Contains(t, result.Errors[0].Message, "did you mean 'names_command'?")
	})

	t.Run("syntax error", func(t *testing.T) {
		result := ValidateConfigFile([]byte("manager: [\n"))
		assert.True(t, result.HasErrors())
	})

	t.Run("negative timeout", func(t *testing.T) {
		result := ValidateConfigFile([]byte("manager:\n  timeout_seconds: -5\n"))
		require.True(t, result.HasErrors())
		assert.Equal(t, "manager.timeout_seconds", result.Errors[0].Field)
	})
}

// TestLoadConfigFileStrict tests standalone strict loading.
func TestLoadConfigFileStrict(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "good.yml")
	require.NoError(t, os.WriteFile(good, []byte("concurrency: 3\n"), 0o644))
	cfg, err := LoadConfigFileStrict(good)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Concurrency)

	bad := filepath.Join(dir, "bad.yml")
	require.NoError(t, os.WriteFile(bad, []byte("concurency: 3\n"), 0o644))
	_, err = LoadConfigFileStrict(bad)
	assert.Error(t, err)

	_, err = LoadConfigFileStrict(filepath.Join(dir, "missing.yml"))
	assert.Error(t, err)
}

// TestExclusionsPath tests exclusion store path resolution.
//
// It verifies:
//   - The default lives under the user config directory
//   - A leading ~ is expanded
//   - Other paths pass through
//   - A user config directory error is returned
func TestExclusionsPath(t *testing.T) {
	original := userConfigDir
	t.Cleanup(func() { userConfigDir = original })

	userConfigDir = func() (string, error) { return "/cfg", nil }
	p, err := (&Config{}).ExclusionsPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/cfg", "appupdate", "exclusions.json"), p)

	home, err := homedir.Dir()
	require.NoError(t, err)
	p, err = (&Config{Exclusions: ExclusionsCfg{Path: "~/ex.json"}}).ExclusionsPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "ex.json"), p)

	p, err = (&Config{Exclusions: ExclusionsCfg{Path: "data/ex.json"}}).ExclusionsPath()
	require.NoError(t, err)
	assert.Equal(t, "data/ex.json", p)

	userConfigDir = func() (string, error) { return "", errors.New("no dir") }
	_, err = (&Config{}).ExclusionsPath()
	assert.Error(t, err)
}

// TestGetters tests the fallback behavior of the typed accessors.
func TestGetters(t *testing.T) {
	cfg := &Config{}
	assert.Equal(t, DefaultTimeoutSeconds*time.Second, cfg.GetTimeout())
	assert.Equal(t, DefaultConcurrency, cfg.GetConcurrency())
	assert.Equal(t, "winget", cfg.GetCommand())

	cfg.Manager.Command = "C:\\tools\\winget.exe"
	assert.Equal(t, "C:\\tools\\winget.exe", cfg.GetCommand())
}

// TestDefaultConfig tests the embedded defaults.
func TestDefaultConfig(t *testing.T) {
	assert.Contains(t, GetDefaultConfig(), "manager:")

	cfg := loadDefaultConfig()
	assert.False(t, cfg.Validate().HasErrors())
	assert.NotEmpty(t, cfg.Handlers)

	original := defaultConfigYAML
	t.Cleanup(func() { defaultConfigYAML = original })
	defaultConfigYAML = "manager: ["
	assert.Equal(t, "winget", loadDefaultConfig().Manager.Command)
}
