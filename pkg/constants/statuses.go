// Package constants provides centralized string constants used throughout the application.
// This eliminates magic strings and provides a single source of truth for status values.
package constants

// Record outcome labels. These are the terminal classifications of one
// update attempt and appear verbatim in status lines.
const (
	// OutcomeUpdated indicates at least one addressing attempt succeeded.
	OutcomeUpdated = "updated"

	// OutcomeNoUpdate indicates the package manager reported nothing to do.
	OutcomeNoUpdate = "no-update-available"

	// OutcomeFailed indicates every attempt failed, timed out or could not start.
	OutcomeFailed = "failed"
)

// Batch status labels reported in a dispatcher summary.
const (
	// BatchIdle is the state of a dispatcher that has not run yet.
	BatchIdle = "idle"

	// BatchRunning indicates a batch is in flight.
	BatchRunning = "running"

	// BatchCompleted indicates every accepted record finished.
	BatchCompleted = "completed"

	// BatchCancelled indicates a stop request interrupted the batch.
	BatchCancelled = "cancelled"

	// BatchSystemError indicates the batch driver itself failed.
	BatchSystemError = "system-error"
)

// Placeholder values for display when data is not available.
const (
	// PlaceholderNA is used when a value is not available.
	PlaceholderNA = "#N/A"

	// VersionUnknown is the installed-version sentinel for records whose
	// version could not be read.
	VersionUnknown = "Unknown"
)

// Inventory sources.
const (
	// SourceWinget reads installed packages from the winget listing.
	SourceWinget = "winget"

	// SourceRegistry reads installed packages from the Windows uninstall keys.
	SourceRegistry = "registry"
)

// Handler strategies.
const (
	// StrategyID addresses a package only by its manager identifier.
	StrategyID = "id"
)

// Output format constants.
const (
	// FormatTable renders aligned columns.
	FormatTable = "table"

	// FormatJSON renders machine-readable JSON.
	FormatJSON = "json"
)

// Icon constants for status display.
// These provide visual indicators for package states in CLI output.
const (
	// IconSuccess indicates a successful or positive state (green circle).
	IconSuccess = "🟢"

	// IconError indicates an error or failed state (red X).
	IconError = "❌"

	// IconInfo indicates informational or neutral state (blue circle).
	IconInfo = "🔵"

	// IconBlocked indicates a blocked or unsupported state (stop sign).
	IconBlocked = "⛔"

	// IconIgnored indicates a package is excluded from processing (no entry).
	IconIgnored = "🚫"

	// IconCheckmark indicates a passed check (checkmark).
	IconCheckmark = "✓"

	// IconCross indicates a failed check (cross).
	IconCross = "✗"

	// IconWarn is the warning prefix for messages.
	IconWarn = "⚠️"

	// IconLightbulb indicates a hint or suggestion.
	IconLightbulb = "💡"
)

// OutcomeIcon returns the display icon for an outcome label.
//
// Parameters:
//   - outcome: One of the Outcome* constants
//
// Returns:
//   - string: Matching icon, or IconInfo for unknown labels
func OutcomeIcon(outcome string) string {
	switch outcome {
	case OutcomeUpdated:
		return IconSuccess
	case OutcomeFailed:
		return IconError
	default:
		return IconInfo
	}
}
