// Package packages produces the installed-package inventory for appupdate.
//
// Records come from the package manager's listing (with truncated names
// resolved against a separate full-name listing) or, on Windows, from the
// registry uninstall keys. Records are values and are never modified after
// they are produced.
package packages

import (
	"strings"

	"github.com/ajxudir/appupdate/pkg/utils"
	"github.com/ajxudir/appupdate/pkg/verbose"
	"github.com/iancoleman/orderedmap"
)

// Record is one installed application.
type Record struct {
	// Name is the canonical display name.
	Name string `json:"name"`

	// ID is the package manager identifier. It may be empty for registry-only records.
	ID string `json:"id"`

	// Version is the installed version, "Unknown" when it could not be read.
	Version string `json:"version"`

	// Available is the newer version on offer, empty when none is known.
	Available string `json:"available"`

	// Source is the manager source the record came from. Empty means the
	// package is not updatable through the manager.
	Source string `json:"source"`

	// Publisher is only known for registry records.
	Publisher string `json:"publisher,omitempty"`
}

// Actionable reports whether the record can be passed to an update invocation.
func (r Record) Actionable() bool {
	return strings.TrimSpace(r.Name) != ""
}

// HasUpdate reports whether the listing offered a newer version.
func (r Record) HasUpdate() bool {
	return strings.TrimSpace(r.Available) != ""
}

// Supported reports whether the manager knows where the record came from.
func (r Record) Supported() bool {
	return strings.TrimSpace(r.Source) != ""
}

// Snapshot returns the record as an ordered JSON object, the form stored
// in the exclusion file.
//
// Returns:
//   - *orderedmap.OrderedMap: keys name, id, version, available, source, then publisher when set
func (r Record) Snapshot() *orderedmap.OrderedMap {
	m := orderedmap.New()
	m.SetEscapeHTML(false)
	m.Set("name", r.Name)
	m.Set("id", r.ID)
	m.Set("version", r.Version)
	m.Set("available", r.Available)
	m.Set("source", r.Source)
	if r.Publisher != "" {
		m.Set("publisher", r.Publisher)
	}
	return m
}

// Excluder answers exclusion membership by name.
type Excluder interface {
	Contains(name string) bool
}

// UpdateList selects the records to dispatch: those with an available
// update whose name is not excluded. Input order is preserved.
//
// Parameters:
//   - records: Inventory records
//   - excluded: Exclusion membership; nil excludes nothing
//
// Returns:
//   - []Record: Records to update
func UpdateList(records []Record, excluded Excluder) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if !r.HasUpdate() {
			continue
		}
		if excluded != nil && excluded.Contains(r.Name) {
			verbose.RecordFiltered(r.Name, "excluded")
			continue
		}
		out = append(out, r)
	}
	return out
}

// Outdated returns the records that have an available update.
func Outdated(records []Record) []Record {
	return UpdateList(records, nil)
}

// FilterNames keeps records whose name or identifier matches one of names,
// case-insensitively. An empty names list keeps everything.
func FilterNames(records []Record, names []string) []Record {
	if len(names) == 0 {
		return records
	}
	out := make([]Record, 0, len(names))
	for _, r := range records {
		if utils.ContainsIgnoreCase(names, r.Name) || (r.ID != "" && utils.ContainsIgnoreCase(names, r.ID)) {
			out = append(out, r)
		}
	}
	return out
}
