package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ajxudir/appupdate/pkg/constants"
	"github.com/ajxudir/appupdate/pkg/dispatch"
	"github.com/ajxudir/appupdate/pkg/errors"
	"github.com/ajxudir/appupdate/pkg/output"
	"github.com/ajxudir/appupdate/pkg/packages"
	"github.com/ajxudir/appupdate/pkg/update"
	"github.com/ajxudir/appupdate/pkg/verbose"
)

// CLI flags
var (
	updateAllFlag         bool
	updateDryRunFlag      bool
	updateYesFlag         bool
	updateConcurrencyFlag int
	updateOutputFlag      string
)

// Testable function variables
var stdinReaderFunc = func() *bufio.Reader { return bufio.NewReader(os.Stdin) }
var progressWriter io.Writer = os.Stderr
var interruptSource = func() (<-chan os.Signal, func()) {
	sigs := make(chan os.Signal, 2)
	signal.Notify(sigs, os.Interrupt)
	return sigs, func() { signal.Stop(sigs) }
}

var updateCmd = &cobra.Command{
	Use:   "update [name...]",
	Short: "Update outdated applications",
	Long: `Update the named applications, or every outdated application with --all.
Excluded applications are never updated. Updates run in parallel up to the
configured concurrency. Press Ctrl+C once to stop after the running updates
finish, twice to abort them.`,
	RunE: runUpdate,
}

func init() {
	updateCmd.Flags().BoolVarP(&updateAllFlag, "all", "a", false, "Update every outdated application")
	updateCmd.Flags().BoolVar(&updateDryRunFlag, "dry-run", false, "Show the commands without running them")
	updateCmd.Flags().BoolVarP(&updateYesFlag, "yes", "y", false, "Skip confirmation prompt")
	updateCmd.Flags().IntVarP(&updateConcurrencyFlag, "concurrency", "j", 0, "Parallel updates (default: from config)")
	updateCmd.Flags().StringVarP(&updateOutputFlag, "output", "o", "", "Output format: json, csv (default: table)")
}

// runUpdate executes the update command.
//
// It performs the following operations:
//   - Step 1: Validate flags and load configuration
//   - Step 2: Read the inventory and build the batch without excluded records
//   - Step 3: Print the plan on --dry-run, otherwise confirm
//   - Step 4: Dispatch the batch with interrupt handling
//
// Parameters:
//   - cmd: Cobra command instance
//   - args: Names or identifiers to update
//
// Returns:
//   - error: nil when every record was updated or had nothing to do
func runUpdate(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(updateOutputFlag)
	if err != nil {
		return errors.NewExitError(errors.ExitConfigError, err)
	}
	structured := output.IsStructuredFormat(format)
	if len(args) == 0 && !updateAllFlag {
		return errors.NewExitErrorf(errors.ExitConfigError, "name the applications to update or pass --all")
	}
	if structured && !updateYesFlag && !updateDryRunFlag {
		return errors.NewExitErrorf(errors.ExitConfigError, "--output %s requires --yes or --dry-run", format)
	}
	if updateConcurrencyFlag < 0 {
		return errors.NewExitErrorf(errors.ExitConfigError, "--concurrency must be at least 1, got %d", updateConcurrencyFlag)
	}

	cfg, err := loadAndValidateConfig()
	if err != nil {
		return err
	}
	if updateConcurrencyFlag > 0 {
		cfg.Concurrency = updateConcurrencyFlag
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	records, err := loadInventory(ctx, cfg)
	if err != nil {
		return err
	}
	store, err := openExclusions(cfg)
	if err != nil {
		return err
	}
	batch := buildBatch(records, store, args)

	handlers, err := update.NewHandlerTable(cfg.Handlers)
	if err != nil {
		return errors.NewExitError(errors.ExitConfigError, err)
	}
	exec := update.NewExecutor(update.SettingsFromConfig(cfg), handlers, nil)
	out := cmd.OutOrStdout()

	if updateDryRunFlag {
		return output.WriteUpdateResult(out, format, output.NewPlanResult(exec, batch))
	}
	if len(batch) == 0 {
		if structured {
			return output.WriteUpdateResult(out, format, &output.UpdateResult{Summary: output.UpdateSummary{Status: constants.BatchCompleted}})
		}
		fmt.Fprintln(out, "Nothing to update.")
		return nil
	}
	if !structured && !confirmUpdate(out, len(batch)) {
		return nil
	}

	var sink *output.Sink
	if structured {
		sink = output.NewSink(out, output.Quiet())
	} else {
		sink = output.NewSink(out, output.WithBar(progressWriter), output.WithColor(output.IsTerminal(out)))
	}
	d := dispatch.New(exec, dispatch.WithConcurrency(cfg.GetConcurrency()), dispatch.WithObserver(sink))

	token := dispatch.NewToken()
	sigs, stopNotify := interruptSource()
	defer stopNotify()
	stopWatch := watchInterrupts(sigs, token, cancel, progressWriter)
	defer stopWatch()

	summary := d.Run(ctx, batch, token)
	if structured {
		if err := output.WriteUpdateResult(out, format, output.NewUpdateResult(summary)); err != nil {
			return err
		}
	}
	return summary.Err()
}

// buildBatch selects the records to update. With names it keeps the
// outdated, non-excluded records matching them and logs the names that
// matched nothing.
func buildBatch(records []packages.Record, excluded packages.Excluder, names []string) []packages.Record {
	batch := packages.UpdateList(records, excluded)
	if len(names) == 0 {
		return batch
	}
	for _, name := range names {
		if len(packages.FilterNames(records, []string{name})) == 0 {
			verbose.Warnf("%s is not installed", name)
			continue
		}
		if excluded.Contains(name) {
			verbose.Warnf("%s is excluded and will not be updated", name)
		}
	}
	return packages.FilterNames(batch, names)
}

// confirmUpdate prompts the user to confirm the update.
//
// Skips prompt if --yes flag is set. Reads user input from stdin.
//
// Parameters:
//   - w: Where the prompt is written
//   - pending: Number of records about to be updated
//
// Returns:
//   - bool: True if user confirms or --yes flag is set
func confirmUpdate(w io.Writer, pending int) bool {
	if updateYesFlag {
		fmt.Fprintf(w, "%d package(s) will be updated. Proceeding (--yes)...\n", pending)
		return true
	}

	fmt.Fprintf(w, "%d package(s) will be updated. Continue? [y/N]: ", pending)
	response, err := stdinReaderFunc().ReadString('\n')
	if err != nil && response == "" {
		fmt.Fprintln(w, "\nUpdate cancelled (input not available).")
		return false
	}
	response = strings.ToLower(strings.TrimSpace(response))
	if response != "y" && response != "yes" {
		fmt.Fprintln(w, "Update cancelled.")
		return false
	}
	return true
}

// watchInterrupts turns interrupts into stop requests. The first one asks
// the batch to stop after the running records; the second cancels ctx,
// which kills them.
//
// Returns:
//   - func(): Stops the watcher; safe to call once
func watchInterrupts(sigs <-chan os.Signal, token *dispatch.Token, cancel context.CancelFunc, w io.Writer) func() {
	done := make(chan struct{})
	go func() {
		count := 0
		for {
			select {
			case <-done:
				return
			case _, ok := <-sigs:
				if !ok {
					return
				}
				count++
				if count == 1 {
					token.RequestStop()
					fmt.Fprintln(w, "\nStopping after the running updates finish (press Ctrl+C again to abort them)...")
					continue
				}
				fmt.Fprintln(w, "\nAborting running updates...")
				cancel()
				return
			}
		}
	}()
	return func() { close(done) }
}
