package config

import (
	"strings"

	"github.com/ajxudir/appupdate/pkg/verbose"
)

// mergeConfigs merges two configurations with custom taking precedence.
//
// Scalar fields in custom override base when they are non-zero. Lists
// override base when they are non-nil, so an explicit empty list clears the
// base value. Handlers are merged by case-insensitive name.
//
// Parameters:
//   - base: the base configuration
//   - custom: the custom configuration that overrides base
//
// Returns:
//   - *Config: the merged configuration
func mergeConfigs(base, custom *Config) *Config {
	if custom == nil {
		return base
	}

	merged := *base

	if custom.Manager.Command != "" {
		merged.Manager.Command = custom.Manager.Command
	}
	if custom.Manager.TimeoutSeconds != 0 {
		merged.Manager.TimeoutSeconds = custom.Manager.TimeoutSeconds
	}
	merged.Manager.ExtraArgs = mergeStringLists(base.Manager.ExtraArgs, custom.Manager.ExtraArgs)
	merged.Manager.NoUpdateMarkers = mergeStringLists(base.Manager.NoUpdateMarkers, custom.Manager.NoUpdateMarkers)
	merged.Manager.SuccessMarkers = mergeStringLists(base.Manager.SuccessMarkers, custom.Manager.SuccessMarkers)

	if custom.Concurrency != 0 {
		merged.Concurrency = custom.Concurrency
	}

	if custom.Inventory.Source != "" {
		merged.Inventory.Source = custom.Inventory.Source
	}
	merged.Inventory.ListArgs = mergeStringLists(base.Inventory.ListArgs, custom.Inventory.ListArgs)
	if custom.Inventory.NamesCommand != "" {
		merged.Inventory.NamesCommand = custom.Inventory.NamesCommand
	}

	if custom.Exclusions.Path != "" {
		merged.Exclusions.Path = custom.Exclusions.Path
	}

	merged.Handlers = mergeHandlers(base.Handlers, custom.Handlers)

	if custom.Logging.Level != "" {
		merged.Logging.Level = custom.Logging.Level
	}
	if custom.Logging.Format != "" {
		merged.Logging.Format = custom.Logging.Format
	}

	return &merged
}

// mergeStringLists returns override when it is non-nil, otherwise base.
func mergeStringLists(base, override []string) []string {
	if override == nil {
		return base
	}
	return append([]string{}, override...)
}

// mergeHandlers merges handler entries keyed by lower-cased name.
//
// Entries in override replace base entries of the same name in place;
// new names are appended in override order.
//
// Parameters:
//   - base: the base handler list
//   - override: handlers from the user configuration
//
// Returns:
//   - []HandlerCfg: the merged list
func mergeHandlers(base, override []HandlerCfg) []HandlerCfg {
	merged := append([]HandlerCfg{}, base...)
	index := make(map[string]int, len(merged))
	for i, h := range merged {
		index[strings.ToLower(strings.TrimSpace(h.Name))] = i
	}

	for _, h := range override {
		key := strings.ToLower(strings.TrimSpace(h.Name))
		if i, ok := index[key]; ok {
			merged[i] = h
			verbose.Printf("Handler %q: overridden\n", h.Name)
			continue
		}
		index[key] = len(merged)
		merged = append(merged, h)
		verbose.Printf("Handler %q: added\n", h.Name)
	}
	return merged
}
