// Package progress holds the progress policy of a batch: how completion
// counts become percentages, how status lines are worded, and a single-line
// terminal bar that renders them.
package progress

import (
	"fmt"
	"strings"
)

// SystemErrorPercent is the sentinel percentage emitted when the batch
// driver itself fails.
const SystemErrorPercent = -1

// Final status messages.
const (
	// MsgCompleted is emitted with 100 when every record finished.
	MsgCompleted = "completed"

	// MsgCancelledPrefix starts the message emitted when a stop interrupted the batch.
	MsgCancelledPrefix = "cancelled"

	// MsgSystemErrorPrefix starts the message emitted on a driver failure.
	MsgSystemErrorPrefix = "system error"
)

// Percent converts a completion count into a whole percentage.
//
// The result is floor(completed*100/total) clamped to [0, 100]. An empty
// batch is vacuously complete, so total <= 0 yields 100.
//
// Parameters:
//   - completed: Records finished so far
//   - total: Records accepted into the batch
//
// Returns:
//   - int: Percentage in [0, 100]
func Percent(completed, total int) int {
	if total <= 0 {
		return 100
	}
	if completed <= 0 {
		return 0
	}
	if completed >= total {
		return 100
	}
	return completed * 100 / total
}

// StatusLine formats the per-record line, e.g. "updated: Mozilla Firefox".
func StatusLine(outcome, name string) string {
	return fmt.Sprintf("%s: %s", outcome, name)
}

// CancelledLine formats the terminal line of a cancelled batch.
func CancelledLine(completed, total int) string {
	return fmt.Sprintf("%s: %d of %d processed", MsgCancelledPrefix, completed, total)
}

// SystemErrorLine formats the terminal line of a failed batch driver.
func SystemErrorLine(reason string) string {
	return fmt.Sprintf("%s: %s", MsgSystemErrorPrefix, reason)
}

// ParseStatusLine splits a per-record line back into outcome and name.
//
// Returns:
//   - string: Outcome part
//   - string: Name part
//   - bool: false when line has no "outcome: name" shape
func ParseStatusLine(line string) (string, string, bool) {
	outcome, name, ok := strings.Cut(line, ": ")
	if !ok || outcome == "" || name == "" {
		return "", "", false
	}
	return outcome, name, true
}
