package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ajxudir/appupdate/pkg/errors"
	"github.com/ajxudir/appupdate/pkg/output"
	"github.com/ajxudir/appupdate/pkg/packages"
)

var (
	listOutdatedFlag bool
	listOutputFlag   string
)

var listCmd = &cobra.Command{
	Use:     "list [name...]",
	Aliases: []string{"ls"},
	Short:   "Show installed applications",
	Long: `Show installed applications with their versions, available updates
and whether they are excluded or cannot be updated through the manager.`,
	RunE: runList,
}

func init() {
	listCmd.Flags().BoolVar(&listOutdatedFlag, "outdated", false, "Only show applications with an available update")
	listCmd.Flags().StringVarP(&listOutputFlag, "output", "o", "", "Output format: json, csv (default: table)")
}

// runList executes the list command.
//
// Parameters:
//   - cmd: Cobra command instance
//   - args: Optional names or identifiers to show
//
// Returns:
//   - error: Config, preflight or listing failure
func runList(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(listOutputFlag)
	if err != nil {
		return errors.NewExitError(errors.ExitConfigError, err)
	}

	cfg, err := loadAndValidateConfig()
	if err != nil {
		return err
	}

	records, err := loadInventory(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	records = packages.FilterNames(records, args)
	if listOutdatedFlag {
		records = packages.Outdated(records)
	}

	store, err := openExclusions(cfg)
	if err != nil {
		return err
	}

	return output.WriteListResult(cmd.OutOrStdout(), format, output.NewListResult(records, store))
}
