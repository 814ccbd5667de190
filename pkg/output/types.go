package output

// Package states reported by the list command.
const (
	StatusUpToDate    = "up-to-date"
	StatusOutdated    = "outdated"
	StatusExcluded    = "excluded"
	StatusUnsupported = "unsupported"
)

// Outcome reported for every record of a dry run.
const OutcomePlanned = "planned"

// ListResult represents the output data for the list command.
//
// Fields:
//   - Summary: Aggregate counts
//   - Packages: One entry per inventory record, in inventory order
//   - Warnings: Unsupported-record notes (omitted if empty)
type ListResult struct {
	Summary  ListSummary   `json:"summary"`
	Packages []ListPackage `json:"packages"`
	Warnings []string      `json:"warnings,omitempty"`
}

// ListSummary holds summary statistics for list results.
type ListSummary struct {
	TotalPackages       int `json:"total_packages"`
	OutdatedPackages    int `json:"outdated_packages"`
	ExcludedPackages    int `json:"excluded_packages"`
	UnsupportedPackages int `json:"unsupported_packages"`
}

// ListPackage represents a record in the list output.
type ListPackage struct {
	Name      string `json:"name"`
	ID        string `json:"id"`
	Version   string `json:"version"`
	Available string `json:"available"`
	Source    string `json:"source"`
	Status    string `json:"status"`
}

// UpdateResult represents the output data for the update command.
//
// Fields:
//   - Summary: Batch status and counts
//   - Packages: One entry per processed record, sorted by name
//   - Errors: System error message (omitted if empty)
type UpdateResult struct {
	Summary  UpdateSummary   `json:"summary"`
	Packages []UpdatePackage `json:"packages"`
	Errors   []string        `json:"errors,omitempty"`
}

// UpdateSummary holds summary statistics for update results.
//
// Fields:
//   - Status: completed, cancelled or system-error; "planned" for a dry run
//   - TotalPackages: Records accepted into the batch
//   - CompletedPackages: Records that reported an outcome
//   - SkippedPackages: Malformed records left out
//   - DurationMS: Wall time of the batch in milliseconds
type UpdateSummary struct {
	Status            string `json:"status"`
	TotalPackages     int    `json:"total_packages"`
	CompletedPackages int    `json:"completed_packages"`
	UpdatedPackages   int    `json:"updated_packages"`
	NoUpdatePackages  int    `json:"no_update_packages"`
	FailedPackages    int    `json:"failed_packages"`
	SkippedPackages   int    `json:"skipped_packages"`
	DryRun            bool   `json:"dry_run"`
	DurationMS        int64  `json:"duration_ms"`
}

// UpdatePackage represents a record in the update output.
//
// Fields:
//   - Outcome: updated, no-update-available, failed, or planned
//   - Attempts: Invocations started for the record
//   - Commands: Planned command lines (dry run only)
//   - Error: Last attempt error (omitted if empty)
type UpdatePackage struct {
	Name     string   `json:"name"`
	Outcome  string   `json:"outcome"`
	Attempts int      `json:"attempts"`
	Commands []string `json:"commands,omitempty"`
	Error    string   `json:"error,omitempty"`
}
