// Package utils holds small helpers shared by appupdate packages: string
// list handling, display width arithmetic and version comparison.
package utils

import "strings"

// TrimAndSplit splits a string by separator and trims whitespace from each part.
//
// Empty parts are dropped. An empty input returns an empty slice.
//
// Parameters:
//   - s: The string to split and trim
//   - sep: The separator to split on
//
// Returns:
//   - []string: Slice of trimmed non-empty strings
func TrimAndSplit(s string, sep string) []string {
	if s == "" {
		return []string{}
	}

	parts := strings.Split(s, sep)
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// ContainsIgnoreCase checks if a string slice contains an item (case-insensitive).
//
// Parameters:
//   - slice: The slice of strings to search
//   - item: The string to search for (case-insensitive)
//
// Returns:
//   - bool: true if item is found in slice (case-insensitive), false otherwise
func ContainsIgnoreCase(slice []string, item string) bool {
	for _, s := range slice {
		if strings.EqualFold(s, item) {
			return true
		}
	}
	return false
}

// ContainsAny reports whether s contains any of the given substrings.
// Empty substrings never match.
func ContainsAny(s string, substrings []string) bool {
	for _, sub := range substrings {
		if sub != "" && strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
