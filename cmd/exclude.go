package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ajxudir/appupdate/pkg/constants"
	"github.com/ajxudir/appupdate/pkg/errors"
	"github.com/ajxudir/appupdate/pkg/output"
	"github.com/ajxudir/appupdate/pkg/packages"
)

var (
	excludeSnapshotFlag bool
	excludeOutputFlag   string
)

var excludeCmd = &cobra.Command{
	Use:   "exclude",
	Short: "Manage applications that are never updated",
}

var excludeAddCmd = &cobra.Command{
	Use:   "add <name>...",
	Short: "Exclude applications from updates",
	Long: `Exclude applications from updates. With --snapshot the installed record
is stored instead of the bare name.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExcludeAdd,
}

var excludeRemoveCmd = &cobra.Command{
	Use:     "remove <name>...",
	Aliases: []string{"rm"},
	Short:   "Allow excluded applications to be updated again",
	Args:    cobra.MinimumNArgs(1),
	RunE:    runExcludeRemove,
}

var excludeListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show excluded applications",
	Args:  cobra.NoArgs,
	RunE:  runExcludeList,
}

func init() {
	excludeAddCmd.Flags().BoolVar(&excludeSnapshotFlag, "snapshot", false, "Store the installed record, not just the name")
	excludeListCmd.Flags().StringVarP(&excludeOutputFlag, "output", "o", "", "Output format: json, csv (default: table)")

	excludeCmd.AddCommand(excludeAddCmd)
	excludeCmd.AddCommand(excludeRemoveCmd)
	excludeCmd.AddCommand(excludeListCmd)
}

func runExcludeAdd(cmd *cobra.Command, args []string) error {
	cfg, err := loadAndValidateConfig()
	if err != nil {
		return err
	}
	store, err := openExclusions(cfg)
	if err != nil {
		return err
	}

	var inventory []packages.Record
	if excludeSnapshotFlag {
		if inventory, err = loadInventory(cmd.Context(), cfg); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	for _, name := range args {
		var added bool
		matches := packages.FilterNames(inventory, []string{name})
		switch {
		case !excludeSnapshotFlag:
			added, err = store.Add(name)
		case len(matches) == 0:
			fmt.Fprintf(out, "%s %s is not installed; storing the name only\n", constants.IconWarn, name)
			added, err = store.Add(name)
		default:
			name = matches[0].Name
			added, err = store.AddRecord(matches[0])
		}
		if err != nil {
			return errors.NewExitError(errors.ExitFailure, err)
		}
		if added {
			fmt.Fprintf(out, "%s Excluded %s\n", constants.IconCheckmark, name)
		} else {
			fmt.Fprintf(out, "%s %s is already excluded\n", constants.IconInfo, name)
		}
	}
	return nil
}

func runExcludeRemove(cmd *cobra.Command, args []string) error {
	cfg, err := loadAndValidateConfig()
	if err != nil {
		return err
	}
	store, err := openExclusions(cfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, name := range args {
		removed, err := store.Remove(name)
		if err != nil {
			return errors.NewExitError(errors.ExitFailure, err)
		}
		if removed {
			fmt.Fprintf(out, "%s Restored %s\n", constants.IconCheckmark, name)
		} else {
			fmt.Fprintf(out, "%s %s was not excluded\n", constants.IconInfo, name)
		}
	}
	return nil
}

func runExcludeList(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(excludeOutputFlag)
	if err != nil {
		return errors.NewExitError(errors.ExitConfigError, err)
	}
	cfg, err := loadAndValidateConfig()
	if err != nil {
		return err
	}
	store, err := openExclusions(cfg)
	if err != nil {
		return err
	}

	names := store.Names()
	out := cmd.OutOrStdout()
	switch format {
	case output.FormatJSON:
		if names == nil {
			names = []string{}
		}
		return output.NewFormatter(format, out).WriteJSON(names)
	case output.FormatCSV:
		rows := make([][]string, 0, len(names))
		for _, n := range names {
			rows = append(rows, []string{n})
		}
		return output.NewFormatter(format, out).WriteCSV([]string{"NAME"}, rows)
	}

	if len(names) == 0 {
		fmt.Fprintln(out, "No applications are excluded.")
		return nil
	}
	for _, n := range names {
		fmt.Fprintf(out, "%s %s\n", constants.IconIgnored, n)
	}
	fmt.Fprintf(out, "\n%d excluded (%s)\n", len(names), store.Path())
	return nil
}
