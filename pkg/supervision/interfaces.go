package supervision

import (
	"github.com/ajxudir/appupdate/pkg/packages"
)

// Tracker defines the interface for tracking records that cannot be updated.
//
// Standard implementation: *UnsupportedTracker
type Tracker interface {
	// Add tracks an unsupported record with a reason.
	//
	// Parameters:
	//   - rec: Record to track
	//   - reason: Human-readable reason the record cannot be updated
	Add(rec packages.Record, reason string)

	// Messages returns one formatted line per tracked group.
	//
	// Returns:
	//   - []string: Formatted messages, or nil if nothing was tracked
	Messages() []string
}

var _ Tracker = (*UnsupportedTracker)(nil)
