package cmd

import (
	"context"
	"fmt"

	"github.com/ajxudir/appupdate/pkg/config"
	"github.com/ajxudir/appupdate/pkg/constants"
	"github.com/ajxudir/appupdate/pkg/errors"
	"github.com/ajxudir/appupdate/pkg/exclusions"
	"github.com/ajxudir/appupdate/pkg/packages"
	"github.com/ajxudir/appupdate/pkg/preflight"
	"github.com/ajxudir/appupdate/pkg/verbose"
)

var (
	newSourceFunc      = packages.NewSource
	loadExclusionsFunc = exclusions.Load
	validateConfigFunc = preflight.ValidateConfig
	checkManagerFunc   = preflight.CheckManager
)

// runPreflight checks that the package manager is installed and answers.
//
// Parameters:
//   - ctx: Context for cancellation
//   - cfg: Loaded configuration
//
// Returns:
//   - error: *errors.ExitError with ExitConfigError when the manager is unusable
func runPreflight(ctx context.Context, cfg *config.Config) error {
	result := validateConfigFunc(cfg)
	for _, w := range result.Warnings {
		verbose.Warnf("%s", w)
	}
	if result.HasErrors() {
		return errors.NewExitError(errors.ExitConfigError, fmt.Errorf("%s", result.ErrorMessage()))
	}
	if err := checkManagerFunc(ctx, cfg.GetCommand()); err != nil {
		return errors.NewExitError(errors.ExitConfigError, fmt.Errorf("package manager check failed: %w", err))
	}
	return nil
}

// loadInventory reads installed packages from the configured source.
//
// The manager is checked first unless the registry is the source, since
// listing through winget needs it.
//
// Returns:
//   - []packages.Record: Inventory in listing order
//   - error: Preflight failure (exit 3) or listing failure (exit 2)
func loadInventory(ctx context.Context, cfg *config.Config) ([]packages.Record, error) {
	if cfg.Inventory.Source != constants.SourceRegistry {
		if err := runPreflight(ctx, cfg); err != nil {
			return nil, err
		}
	}

	src, err := newSourceFunc(cfg)
	if err != nil {
		return nil, errors.NewExitError(errors.ExitConfigError, err)
	}
	records, err := src.Records(ctx)
	if err != nil {
		return nil, errors.NewExitError(errors.ExitFailure, fmt.Errorf("failed to read installed packages: %w", err))
	}
	verbose.Infof("Inventory: %d installed packages", len(records))
	return records, nil
}

// openExclusions loads the exclusion store named by the configuration.
func openExclusions(cfg *config.Config) (*exclusions.Store, error) {
	path, err := cfg.ExclusionsPath()
	if err != nil {
		return nil, errors.NewExitError(errors.ExitConfigError, fmt.Errorf("cannot locate exclusions file: %w", err))
	}
	store, err := loadExclusionsFunc(path)
	if err != nil {
		return nil, errors.NewExitError(errors.ExitFailure, fmt.Errorf("failed to load exclusions: %w", err))
	}
	return store, nil
}
