package output

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/ajxudir/appupdate/pkg/constants"
	"github.com/ajxudir/appupdate/pkg/dispatch"
	"github.com/ajxudir/appupdate/pkg/packages"
	"github.com/ajxudir/appupdate/pkg/supervision"
	"github.com/ajxudir/appupdate/pkg/update"
)

// nameMaxWidth caps the NAME column of list tables.
const nameMaxWidth = 48

// NewListResult builds the list output for an inventory.
//
// It performs the following operations:
//   - Marks each record excluded, unsupported, outdated or up-to-date, in that order
//   - Collects unsupported-record notes through a supervision tracker
//
// Parameters:
//   - records: Inventory records, in inventory order
//   - excluded: Exclusion membership; nil excludes nothing
//
// Returns:
//   - *ListResult: Populated result
func NewListResult(records []packages.Record, excluded packages.Excluder) *ListResult {
	result := &ListResult{Packages: make([]ListPackage, 0, len(records))}
	var tracker supervision.Tracker = supervision.NewUnsupportedTracker()

	for _, rec := range records {
		status := StatusUpToDate
		switch {
		case excluded != nil && excluded.Contains(rec.Name):
			status = StatusExcluded
			result.Summary.ExcludedPackages++
		case !rec.Supported():
			status = StatusUnsupported
			result.Summary.UnsupportedPackages++
		case rec.HasUpdate():
			status = StatusOutdated
			result.Summary.OutdatedPackages++
		}
		if supervision.ShouldTrack(rec) {
			tracker.Add(rec, supervision.DeriveReason(rec))
		}
		result.Packages = append(result.Packages, ListPackage{
			Name:      rec.Name,
			ID:        rec.ID,
			Version:   rec.Version,
			Available: rec.Available,
			Source:    rec.Source,
			Status:    status,
		})
	}
	result.Summary.TotalPackages = len(records)
	result.Warnings = tracker.Messages()
	return result
}

// WriteListResult writes list results in the specified format.
//
// Parameters:
//   - w: Destination writer for the output
//   - format: FormatTable, FormatJSON or FormatCSV
//   - result: List result data to write
//
// Returns:
//   - error: When format is unsupported or the write fails
func WriteListResult(w io.Writer, format Format, result *ListResult) error {
	formatter := NewFormatter(format, w)

	switch format {
	case FormatJSON:
		return formatter.WriteJSON(result)
	case FormatCSV:
		return writeListCSV(formatter, result)
	case FormatTable:
		writeListTable(w, result)
		return nil
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func writeListCSV(f *Formatter, result *ListResult) error {
	headers := []string{"NAME", "ID", "VERSION", "AVAILABLE", "SOURCE", "STATUS"}
	rows := make([][]string, 0, len(result.Packages))
	for _, p := range result.Packages {
		rows = append(rows, []string{p.Name, p.ID, p.Version, p.Available, p.Source, p.Status})
	}
	return f.WriteCSV(headers, rows)
}

func writeListTable(w io.Writer, result *ListResult) {
	if len(result.Packages) == 0 {
		_, _ = fmt.Fprintln(w, "No packages found.")
		return
	}

	table := NewTable().
		AddColumnWithMaxWidth("NAME", nameMaxWidth).
		AddColumn("ID").
		AddColumn("VERSION").
		AddColumn("AVAILABLE").
		AddColumn("SOURCE").
		AddColumn("STATUS")

	rows := make([][]string, 0, len(result.Packages))
	for _, p := range result.Packages {
		row := []string{p.Name, orNA(p.ID), p.Version, orNA(p.Available), orNA(p.Source), statusLabel(p.Status)}
		table.UpdateWidths(row...)
		rows = append(rows, row)
	}

	table.Fprint(w)
	for _, row := range rows {
		_, _ = fmt.Fprintln(w, table.FormatRow(row...))
	}

	s := result.Summary
	_, _ = fmt.Fprintf(w, "\n%d packages, %d outdated, %d excluded, %d unsupported\n",
		s.TotalPackages, s.OutdatedPackages, s.ExcludedPackages, s.UnsupportedPackages)
	for _, warning := range result.Warnings {
		_, _ = fmt.Fprintln(w, warning)
	}
}

func statusLabel(status string) string {
	switch status {
	case StatusOutdated:
		return constants.IconInfo + " " + status
	case StatusExcluded:
		return constants.IconIgnored + " " + status
	case StatusUnsupported:
		return constants.IconBlocked + " " + status
	default:
		return constants.IconSuccess + " " + status
	}
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return constants.PlaceholderNA
	}
	return s
}

// NewUpdateResult converts a finished batch into update output.
//
// Parameters:
//   - summary: Summary returned by the dispatcher
//
// Returns:
//   - *UpdateResult: Result with packages sorted by name
func NewUpdateResult(summary dispatch.Summary) *UpdateResult {
	result := &UpdateResult{
		Summary: UpdateSummary{
			Status:            summary.Status,
			TotalPackages:     summary.Total,
			CompletedPackages: summary.Completed,
			UpdatedPackages:   summary.Updated,
			NoUpdatePackages:  summary.NoUpdate,
			FailedPackages:    summary.Failed,
			SkippedPackages:   summary.Skipped,
			DurationMS:        summary.Duration.Milliseconds(),
		},
		Packages: make([]UpdatePackage, 0, len(summary.Results)),
	}
	for _, r := range summary.Results {
		p := UpdatePackage{Name: r.Name, Outcome: r.Outcome, Attempts: r.Attempts}
		if r.Err != nil {
			p.Error = r.Err.Error()
		}
		result.Packages = append(result.Packages, p)
	}
	sortUpdatePackages(result.Packages)
	if summary.Status == constants.BatchSystemError && summary.Message != "" {
		result.Errors = []string{summary.Message}
	}
	return result
}

// Planner is implemented by *update.Executor.
type Planner interface {
	Plan(rec packages.Record) ([]update.Attempt, string)
}

// NewPlanResult describes what an update batch would run, without running it.
//
// Parameters:
//   - planner: Executor whose strategy is reported
//   - batch: Records that would be dispatched
//
// Returns:
//   - *UpdateResult: Dry-run result; records a handler would skip are no-update-available
func NewPlanResult(planner Planner, batch []packages.Record) *UpdateResult {
	result := &UpdateResult{
		Summary:  UpdateSummary{Status: OutcomePlanned, TotalPackages: len(batch), DryRun: true},
		Packages: make([]UpdatePackage, 0, len(batch)),
	}
	for _, rec := range batch {
		if !rec.Actionable() {
			result.Summary.SkippedPackages++
			continue
		}
		attempts, skip := planner.Plan(rec)
		p := UpdatePackage{Name: rec.Name, Outcome: OutcomePlanned, Attempts: len(attempts)}
		if skip != "" {
			p.Outcome = constants.OutcomeNoUpdate
			p.Error = skip
		}
		for _, a := range attempts {
			p.Commands = append(p.Commands, a.Command.String())
		}
		result.Packages = append(result.Packages, p)
	}
	result.Summary.TotalPackages -= result.Summary.SkippedPackages
	return result
}

func sortUpdatePackages(pkgs []UpdatePackage) {
	sort.SliceStable(pkgs, func(i, j int) bool {
		return strings.ToLower(pkgs[i].Name) < strings.ToLower(pkgs[j].Name)
	})
}

// WriteUpdateResult writes update results in the specified format.
//
// Parameters:
//   - w: Destination writer for the output
//   - format: FormatTable, FormatJSON or FormatCSV
//   - result: Update result data to write
//
// Returns:
//   - error: When format is unsupported or the write fails
func WriteUpdateResult(w io.Writer, format Format, result *UpdateResult) error {
	formatter := NewFormatter(format, w)

	switch format {
	case FormatJSON:
		return formatter.WriteJSON(result)
	case FormatCSV:
		return writeUpdateCSV(formatter, result)
	case FormatTable:
		writeUpdateTable(w, result)
		return nil
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func writeUpdateCSV(f *Formatter, result *UpdateResult) error {
	headers := []string{"NAME", "OUTCOME", "ATTEMPTS", "COMMANDS", "ERROR"}
	rows := make([][]string, 0, len(result.Packages))
	for _, p := range result.Packages {
		rows = append(rows, []string{p.Name, p.Outcome, strconv.Itoa(p.Attempts), strings.Join(p.Commands, "; "), p.Error})
	}
	return f.WriteCSV(headers, rows)
}

func writeUpdateTable(w io.Writer, result *UpdateResult) {
	if len(result.Packages) == 0 {
		_, _ = fmt.Fprintln(w, "Nothing to update.")
		return
	}

	if result.Summary.DryRun {
		for _, p := range result.Packages {
			if len(p.Commands) == 0 {
				_, _ = fmt.Fprintf(w, "%s %s: %s\n", constants.IconInfo, p.Name, p.Error)
				continue
			}
			_, _ = fmt.Fprintf(w, "%s %s\n", constants.IconInfo, p.Name)
			for _, c := range p.Commands {
				_, _ = fmt.Fprintf(w, "    %s\n", c)
			}
		}
		_, _ = fmt.Fprintf(w, "\nDry run: %d packages would be updated\n", result.Summary.TotalPackages)
		return
	}

	table := NewTable().AddColumnWithMaxWidth("NAME", nameMaxWidth).AddColumn("OUTCOME").AddColumn("ERROR")
	rows := make([][]string, 0, len(result.Packages))
	for _, p := range result.Packages {
		row := []string{p.Name, constants.OutcomeIcon(p.Outcome) + " " + p.Outcome, p.Error}
		table.UpdateWidths(row...)
		rows = append(rows, row)
	}
	table.Fprint(w)
	for _, row := range rows {
		_, _ = fmt.Fprintln(w, table.FormatRow(row...))
	}
}
