package supervision

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/ajxudir/appupdate/pkg/constants"
	"github.com/ajxudir/appupdate/pkg/packages"
	"github.com/ajxudir/appupdate/pkg/verbose"
)

// Reasons reported by DeriveReason.
const (
	ReasonNoSource       = "Not installed through the package manager; update it with its own installer."
	ReasonUnknownVersion = "Installed version is unknown to the package manager."
	ReasonNoIdentifier   = "No package identifier; the update is addressed by name only."
)

// sourceUnmanaged labels records with an empty source in messages.
const sourceUnmanaged = "unmanaged"

// UnsupportedGroup holds the records that share a source and a reason.
//
// Fields:
//   - Source: Inventory source, "unmanaged" when empty
//   - Reason: Human-readable explanation
//   - Names: Record names in the order they were added
type UnsupportedGroup struct {
	Source string
	Reason string
	Names  []string
}

// UnsupportedTracker collects unsupported records grouped by source and reason.
type UnsupportedTracker struct {
	mu     sync.RWMutex
	groups map[string]*UnsupportedGroup
}

// NewUnsupportedTracker creates a new UnsupportedTracker.
func NewUnsupportedTracker() *UnsupportedTracker {
	return &UnsupportedTracker{groups: make(map[string]*UnsupportedGroup)}
}

// ShouldTrack reports whether rec needs a note in the listing.
//
// Parameters:
//   - rec: Inventory record
//
// Returns:
//   - bool: true if DeriveReason has something to say about rec
func ShouldTrack(rec packages.Record) bool {
	return DeriveReason(rec) != ""
}

// DeriveReason determines why rec cannot be updated through the manager.
//
// Checks are made in order of severity; the first match wins.
//
// Parameters:
//   - rec: Inventory record
//
// Returns:
//   - string: One of the Reason* constants, or empty string when rec is fine
func DeriveReason(rec packages.Record) string {
	if !rec.Supported() {
		verbose.Debugf("Record %q has no manager source", rec.Name)
		return ReasonNoSource
	}
	if strings.EqualFold(strings.TrimSpace(rec.Version), constants.VersionUnknown) {
		return ReasonUnknownVersion
	}
	if strings.TrimSpace(rec.ID) == "" {
		return ReasonNoIdentifier
	}
	return ""
}

// Add tracks an unsupported record. Empty reasons are ignored.
//
// Parameters:
//   - rec: Record to track
//   - reason: Human-readable reason for not supporting updates
func (t *UnsupportedTracker) Add(rec packages.Record, reason string) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return
	}

	source := strings.TrimSpace(rec.Source)
	if source == "" {
		source = sourceUnmanaged
	}
	key := source + "|" + reason

	t.mu.Lock()
	defer t.mu.Unlock()

	if g, exists := t.groups[key]; exists {
		g.Names = append(g.Names, rec.Name)
		return
	}
	t.groups[key] = &UnsupportedGroup{Source: source, Reason: reason, Names: []string{rec.Name}}
}

// Groups returns a sorted copy of the tracked groups.
func (t *UnsupportedTracker) Groups() []UnsupportedGroup {
	t.mu.RLock()
	groups := make([]UnsupportedGroup, 0, len(t.groups))
	for _, g := range t.groups {
		groups = append(groups, UnsupportedGroup{
			Source: g.Source,
			Reason: g.Reason,
			Names:  append([]string(nil), g.Names...),
		})
	}
	t.mu.RUnlock()

	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Source != groups[j].Source {
			return groups[i].Source < groups[j].Source
		}
		return groups[i].Reason < groups[j].Reason
	})
	return groups
}

// Messages returns formatted messages for all tracked groups, sorted by
// source then reason.
//
// Returns:
//   - []string: Formatted messages, or nil if nothing was tracked
//
// Example:
//
//	// ⛔ unmanaged: Not installed through the package manager; ... (3 packages)
func (t *UnsupportedTracker) Messages() []string {
	groups := t.Groups()
	if len(groups) == 0 {
		return nil
	}

	messages := make([]string, 0, len(groups))
	for _, g := range groups {
		messages = append(messages, fmt.Sprintf("%s %s: %s (%s)",
			constants.IconBlocked, g.Source, g.Reason, plural(len(g.Names))))
	}
	return messages
}

// Count returns the number of source/reason groups tracked.
func (t *UnsupportedTracker) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.groups)
}

// TotalPackages returns the number of records tracked across all groups.
func (t *UnsupportedTracker) TotalPackages() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	total := 0
	for _, g := range t.groups {
		total += len(g.Names)
	}
	return total
}

func plural(n int) string {
	if n == 1 {
		return "1 package"
	}
	return fmt.Sprintf("%d packages", n)
}
