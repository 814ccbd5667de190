package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ajxudir/appupdate/pkg/config"
	"github.com/ajxudir/appupdate/pkg/constants"
	"github.com/ajxudir/appupdate/pkg/errors"
	"github.com/ajxudir/appupdate/pkg/verbose"
)

var (
	loadConfigFunc = config.LoadConfig
	writeFileFunc  = os.WriteFile
	readFileFunc   = os.ReadFile
	getwdFunc      = os.Getwd
)

// loadAndValidateConfig loads the configuration and applies its logging section.
//
// A config file is validated strictly first so typos surface before any
// package manager runs. Every failure is a configuration error (exit 3).
//
// Returns:
//   - *config.Config: Loaded configuration
//   - error: *errors.ExitError with ExitConfigError
func loadAndValidateConfig() (*config.Config, error) {
	workDir, _ := getwdFunc()

	path := configFlag
	if path == "" && workDir != "" {
		local := filepath.Join(workDir, config.LocalConfigName)
		if _, err := os.Stat(local); err == nil {
			path = local
		}
	}
	if path != "" {
		data, err := readFileFunc(path)
		if err != nil {
			return nil, errors.NewExitError(errors.ExitConfigError, fmt.Errorf("failed to read config file '%s': %w", path, err))
		}
		if result := config.ValidateConfigFile(data); result.HasErrors() {
			msg := fmt.Sprintf("configuration validation failed for %s:\n%s\n\n%s Run 'appupdate config validate' for details",
				path, strings.TrimPrefix(result.ErrorMessages(), "Configuration validation failed:\n"), constants.IconLightbulb)
			return nil, errors.NewExitError(errors.ExitConfigError, fmt.Errorf("%s", msg))
		}
	}

	cfg, err := loadConfigFunc(configFlag, workDir)
	if err != nil {
		return nil, errors.NewExitError(errors.ExitConfigError, fmt.Errorf("failed to load config: %w", err))
	}

	verbose.Configure(cfg.Logging.Level, cfg.Logging.Format)
	if verboseFlag {
		verbose.Enable()
	}
	return cfg, nil
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show, validate or create configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configDefaultsCmd = &cobra.Command{
	Use:   "defaults",
	Short: "Show the built-in configuration",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprint(cmd.OutOrStdout(), config.GetDefaultConfig())
	},
}

var configValidateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Validate a configuration file (rejects unknown fields)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfigValidate,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a .appupdate.yml template in the current directory",
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

func init() {
	configCmd.AddCommand(configShowCmd, configDefaultsCmd, configValidateCmd, configInitCmd)
}

// runConfigShow prints the merged configuration as YAML.
func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadAndValidateConfig()
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	out := cmd.OutOrStdout()
	source := cfg.Source
	if source == "" {
		source = "built-in defaults"
	}
	fmt.Fprintf(out, "# Source: %s\n", source)
	if path, err := cfg.ExclusionsPath(); err == nil {
		fmt.Fprintf(out, "# Exclusions file: %s\n", path)
	}
	_, _ = out.Write(data)
	return nil
}

// runConfigValidate validates a configuration file on its own.
//
// The file is the argument, else --config, else .appupdate.yml in the
// working directory.
//
// Returns:
//   - error: *errors.ExitError with ExitConfigError on validation failure
func runConfigValidate(cmd *cobra.Command, args []string) error {
	path := configFlag
	if len(args) == 1 {
		path = args[0]
	}
	if path == "" {
		workDir, _ := getwdFunc()
		path = filepath.Join(workDir, config.LocalConfigName)
	}

	data, err := readFileFunc(path)
	if err != nil {
		return errors.NewExitError(errors.ExitConfigError, fmt.Errorf("failed to read config file '%s': %w", path, err))
	}

	out := cmd.OutOrStdout()
	result := config.ValidateConfigFile(data)
	if result.HasErrors() {
		fmt.Fprintf(out, "%s Configuration validation failed for: %s\n\n", constants.IconError, path)
		for _, e := range result.Errors {
			fmt.Fprintf(out, "  ERROR: %s\n", e.Error())
			if e.ValidKeys != "" {
				fmt.Fprintf(out, "         Valid keys: %s\n", e.ValidKeys)
			}
		}
		for _, w := range result.Warnings {
			fmt.Fprintf(out, "  WARNING: %s\n", w)
		}
		verbose.Infof("Exit code %d (config error): configuration validation failed for %s", errors.ExitConfigError, path)
		return errors.NewExitError(errors.ExitConfigError, fmt.Errorf("configuration validation failed"))
	}

	if len(result.Warnings) > 0 {
		fmt.Fprintf(out, "%s Configuration valid with warnings: %s\n\n", constants.IconWarn, path)
		for _, w := range result.Warnings {
			fmt.Fprintf(out, "  WARNING: %s\n", w)
		}
		return nil
	}

	fmt.Fprintf(out, "%s Configuration valid: %s\n", constants.IconCheckmark, path)
	return nil
}

// runConfigInit writes the built-in configuration as a template.
//
// Returns:
//   - error: When the file already exists or cannot be written
func runConfigInit(cmd *cobra.Command, args []string) error {
	workDir, _ := getwdFunc()
	path := filepath.Join(workDir, config.LocalConfigName)
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}

	if err := writeFileFunc(path, []byte(config.GetDefaultConfig()), 0600); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created configuration template: %s\n", path)
	return nil
}
