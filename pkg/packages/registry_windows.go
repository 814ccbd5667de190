//go:build windows

package packages

import (
	"context"
	"strings"

	"github.com/ajxudir/appupdate/pkg/verbose"
	"golang.org/x/sys/windows/registry"
)

// Records reads every uninstall subkey under HKEY_LOCAL_MACHINE.
//
// Keys that cannot be opened are skipped.
//
// Parameters:
//   - ctx: Context for cancellation, checked between subkeys
//
// Returns:
//   - []Record: Installed programs that have a display name
//   - error: Only when ctx is cancelled
func (s *RegistrySource) Records(ctx context.Context) ([]Record, error) {
	var entries []uninstallEntry
	for _, path := range uninstallKeys {
		parent, err := registry.OpenKey(registry.LOCAL_MACHINE, path, registry.ENUMERATE_SUB_KEYS)
		if err != nil {
			verbose.Debugf("Registry: cannot open %s: %v", path, err)
			continue
		}
		subKeys, err := parent.ReadSubKeyNames(-1)
		parent.Close()
		if err != nil {
			verbose.Debugf("Registry: cannot enumerate %s: %v", path, err)
			continue
		}

		for _, sub := range subKeys {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			entry, ok := readUninstallEntry(path, sub)
			if ok {
				entries = append(entries, entry)
			}
		}
	}
	return recordsFromEntries(entries), nil
}

func readUninstallEntry(parent, sub string) (uninstallEntry, bool) {
	k, err := registry.OpenKey(registry.LOCAL_MACHINE, parent+`\`+sub, registry.QUERY_VALUE)
	if err != nil {
		return uninstallEntry{}, false
	}
	defer k.Close()

	return uninstallEntry{
		SubKey:           sub,
		DisplayName:      stringValue(k, "DisplayName"),
		DisplayVersion:   stringValue(k, "DisplayVersion"),
		Publisher:        stringValue(k, "Publisher"),
		BundleIdentifier: stringValue(k, "BundleIdentifier"),
	}, true
}

func stringValue(k registry.Key, name string) string {
	v, _, err := k.GetStringValue(name)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(v)
}
