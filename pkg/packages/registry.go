package packages

import (
	"strings"

	"github.com/ajxudir/appupdate/pkg/constants"
)

// uninstallKeys are the HKLM paths holding installed programs, 64-bit view
// first, then the 32-bit view.
var uninstallKeys = []string{
	`SOFTWARE\Microsoft\Windows\CurrentVersion\Uninstall`,
	`SOFTWARE\WOW6432Node\Microsoft\Windows\CurrentVersion\Uninstall`,
}

// RegistrySource reads installed programs from the Windows uninstall keys.
// Records from this source have no manager source, so they are listed but
// flagged as not updatable through the manager.
type RegistrySource struct{}

// uninstallEntry holds the values read from one uninstall subkey.
type uninstallEntry struct {
	SubKey           string
	DisplayName      string
	DisplayVersion   string
	Publisher        string
	BundleIdentifier string
}

// record converts an uninstall entry to a Record.
//
// Returns:
//   - Record: The record, identified by BundleIdentifier or the subkey name
//   - bool: false when the entry has no display name
func (e uninstallEntry) record() (Record, bool) {
	name := strings.TrimSpace(e.DisplayName)
	if name == "" {
		return Record{}, false
	}

	id := strings.TrimSpace(e.BundleIdentifier)
	if id == "" {
		id = e.SubKey
	}
	version := strings.TrimSpace(e.DisplayVersion)
	if version == "" {
		version = constants.VersionUnknown
	}

	return Record{
		Name:      name,
		ID:        id,
		Version:   version,
		Publisher: strings.TrimSpace(e.Publisher),
	}, true
}

// recordsFromEntries converts entries to records, dropping unnamed entries
// and programs registered under both views with the same name and version.
func recordsFromEntries(entries []uninstallEntry) []Record {
	seen := make(map[string]bool, len(entries))
	records := make([]Record, 0, len(entries))
	for _, e := range entries {
		rec, ok := e.record()
		if !ok {
			continue
		}
		key := strings.ToLower(rec.Name) + "\x00" + rec.Version
		if seen[key] {
			continue
		}
		seen[key] = true
		records = append(records, rec)
	}
	return records
}
