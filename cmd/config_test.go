package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajxudir/appupdate/pkg/config"
	"github.com/ajxudir/appupdate/pkg/errors"
)

// TestConfigShow verifies that the merged configuration is printed with its source.
func TestConfigShow(t *testing.T) {
	env := newCmdEnv(t)

	out, err := env.run("config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "# Source: "+filepath.Join(env.dir, config.LocalConfigName))
	assert.Contains(t, out, "# Exclusions file: "+env.exclusions)
	assert.Contains(t, out, "timeout_seconds: 1")
	assert.Contains(t, out, "Mozilla.Firefox")
}

// TestConfigDefaults verifies that the built-in configuration is printed verbatim.
func TestConfigDefaults(t *testing.T) {
	env := newCmdEnv(t)

	out, err := env.run("config", "defaults")
	require.NoError(t, err)
	assert.Equal(t, config.GetDefaultConfig(), out)
}

// TestConfigValidate tests the behavior of config validate.
//
// It verifies:
//   - A valid file reports success
//   - An unknown field fails with exit code 3 and a suggestion
//   - A missing file is a config error
func TestConfigValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		env := newCmdEnv(t)

		out, err := env.run("config", "validate")
		require.NoError(t, err)
		assert.Contains(t, out, "Configuration valid: "+filepath.Join(env.dir, config.LocalConfigName))
	})

	t.Run("unknown field", func(t *testing.T) {
		env := newCmdEnv(t)
		path := filepath.Join(env.dir, "bad.yml")
		require.NoError(t, os.WriteFile(path, []byte("manager:\n  comand: winget\n"), 0o600))

		out, err := env.run("config", "validate", path)
		require.Error(t, err)
		assert.Equal(t, errors.ExitConfigError, errors.GetExitCode(err))
		assert.Contains(t, out, "ERROR: ")
		assert.Contains(t, out, "comand")
	})

	t.Run("missing file", func(t *testing.T) {
		env := newCmdEnv(t)

		_, err := env.run("config", "validate", filepath.Join(env.dir, "missing.yml"))
		require.Error(t, err)
		assert.Equal(t, errors.ExitConfigError, errors.GetExitCode(err))
	})
}

// TestConfigInit verifies that init writes the template once.
func TestConfigInit(t *testing.T) {
	env := newCmdEnv(t)
	path := filepath.Join(env.dir, config.LocalConfigName)
	require.NoError(t, os.Remove(path))

	out, err := env.run("config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Created configuration template: "+path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, config.GetDefaultConfig(), string(data))

	_, err = env.run("config", "init")
	assert.ErrorContains(t, err, "already exists")
}

// TestLoadAndValidateConfig tests config loading for commands.
//
// It verifies:
//   - An invalid local file is a config error naming the file
//   - --config overrides the local file
//   - A missing --config file is a config error
func TestLoadAndValidateConfig(t *testing.T) {
	t.Run("invalid local file", func(t *testing.T) {
		env := newCmdEnv(t)
		env.writeConfig(t, "concurency: 4\n")

		_, err := loadAndValidateConfig()
		require.Error(t, err)
		assert.Equal(t, errors.ExitConfigError, errors.GetExitCode(err))
		assert.Contains(t, err.Error(), config.LocalConfigName)
	})

	t.Run("explicit config", func(t *testing.T) {
		env := newCmdEnv(t)
		path := filepath.Join(env.dir, "custom.yml")
		require.NoError(t, os.WriteFile(path, []byte(fmt.Sprintf("concurrency: 5\nexclusions:\n  path: %q\n", env.exclusions)), 0o600))
		configFlag = path

		cfg, err := loadAndValidateConfig()
		require.NoError(t, err)
		assert.Equal(t, 5, cfg.GetConcurrency())
		assert.Equal(t, path, cfg.Source)
	})

	t.Run("missing explicit config", func(t *testing.T) {
		env := newCmdEnv(t)
		configFlag = filepath.Join(env.dir, "nope.yml")

		_, err := loadAndValidateConfig()
		require.Error(t, err)
		assert.Equal(t, errors.ExitConfigError, errors.GetExitCode(err))
	})
}
