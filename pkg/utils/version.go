package utils

import (
	"strconv"
	"strings"

	"github.com/ajxudir/appupdate/pkg/constants"
	"github.com/ajxudir/appupdate/pkg/verbose"
	"golang.org/x/mod/semver"
)

// CanonicalSemver converts a version string to canonical semver format.
//
// It performs the following operations:
//   - Cleans the input and strips the "<" or ">" qualifiers winget prints
//   - Adds "v" prefix if missing
//   - Pads missing minor/patch with zeros until valid semver is found
//   - Returns canonical form using semver.Canonical
//
// Parameters:
//   - version: The version string to canonicalize (e.g., "1.2", "v1.2.3")
//
// Returns:
//   - string: Canonical semver string (e.g., "v1.2.0"); empty string if not valid semver
func CanonicalSemver(version string) string {
	cleaned := cleanVersion(version)
	if cleaned == "" {
		return ""
	}

	if !strings.HasPrefix(cleaned, "v") {
		cleaned = "v" + cleaned
	}

	parts := strings.Split(strings.TrimPrefix(cleaned, "v"), ".")
	for len(parts) > 0 && len(parts) < 3 {
		candidate := "v" + strings.Join(parts, ".")
		if semver.IsValid(candidate) {
			return semver.Canonical(candidate)
		}
		parts = append(parts, "0")
	}

	if semver.IsValid(cleaned) {
		return semver.Canonical(cleaned)
	}
	return ""
}

// CompareVersions orders two version strings.
//
// Semantic versions are compared with golang.org/x/mod/semver. Versions
// that are not valid semver, such as the four-part versions common on
// Windows, are compared segment by segment numerically.
//
// Parameters:
//   - a: First version
//   - b: Second version
//
// Returns:
//   - int: -1 if a < b, 0 if equal, 1 if a > b
//   - bool: false when either version is empty, "Unknown" or not numeric
func CompareVersions(a, b string) (int, bool) {
	ca, cb := CanonicalSemver(a), CanonicalSemver(b)
	if ca != "" && cb != "" {
		return semver.Compare(ca, cb), true
	}

	sa, okA := numericSegments(a)
	sb, okB := numericSegments(b)
	if !okA || !okB {
		verbose.Tracef("Version compare: %q vs %q not comparable", a, b)
		return 0, false
	}

	for i := 0; i < len(sa) || i < len(sb); i++ {
		var x, y int
		if i < len(sa) {
			x = sa[i]
		}
		if i < len(sb) {
			y = sb[i]
		}
		if c := compareInts(x, y); c != 0 {
			return c, true
		}
	}
	return 0, true
}

// IsNewer reports whether available is a newer version than installed.
//
// Returns:
//   - bool: true if available > installed
//   - bool: false when the two versions cannot be compared
func IsNewer(available, installed string) (bool, bool) {
	c, ok := CompareVersions(available, installed)
	return c > 0, ok
}

// cleanVersion trims whitespace, comparison qualifiers and the Unknown sentinel.
func cleanVersion(version string) string {
	cleaned := strings.TrimSpace(version)
	cleaned = strings.TrimSpace(strings.TrimLeft(cleaned, "<>= "))
	if cleaned == "" || cleaned == constants.PlaceholderNA || strings.EqualFold(cleaned, constants.VersionUnknown) {
		return ""
	}
	return cleaned
}

// numericSegments splits a dotted version into integers.
// Each segment contributes its leading digits; a segment without any fails.
func numericSegments(version string) ([]int, bool) {
	cleaned := strings.TrimPrefix(strings.ToLower(cleanVersion(version)), "v")
	if cleaned == "" {
		return nil, false
	}

	parts := strings.Split(cleaned, ".")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		end := 0
		for end < len(p) && isDigit(rune(p[end])) {
			end++
		}
		if end == 0 {
			return nil, false
		}
		n, err := strconv.Atoi(p[:end])
		if err != nil {
			return nil, false
		}
		out = append(out, n)
	}
	return out, true
}

func compareInts(a, b int) int {
	switch {
	case a > b:
		return 1
	case a < b:
		return -1
	default:
		return 0
	}
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
