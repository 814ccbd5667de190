// Package resolve maps package names truncated by the package manager's
// column layout back to their full display names.
//
// Resolution is tiered. The first tier with an eligible, unclaimed
// candidate wins:
//
//  1. Exact: the raw name equals a full name.
//  2. Prefix: full names starting with the raw name; the longest wins,
//     earlier input breaks ties.
//  3. Approximate: Ratcliff/Obershelp similarity of at least 0.6; the five
//     best candidates are tried in descending score order.
//  4. Fallback: the raw name itself.
//
// A Resolver claims every name it returns, so two truncated entries in one
// listing never resolve to the same full name.
package resolve

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/ajxudir/appupdate/pkg/verbose"
	"github.com/pmezard/go-difflib/difflib"
)

// Tier identifies which matching rule produced a resolution.
type Tier int

const (
	// TierFallback means nothing matched and the raw name was returned.
	TierFallback Tier = iota
	// TierExact means the raw name is itself a full name.
	TierExact
	// TierPrefix means a full name starts with the raw name.
	TierPrefix
	// TierApproximate means a full name is similar enough to the raw name.
	TierApproximate
)

// String returns the tier name used in log lines.
func (t Tier) String() string {
	switch t {
	case TierExact:
		return "exact"
	case TierPrefix:
		return "prefix"
	case TierApproximate:
		return "approximate"
	default:
		return "fallback"
	}
}

const (
	// Cutoff is the minimum similarity ratio for the approximate tier.
	Cutoff = 0.6
	// MaxCandidates is how many approximate matches are considered.
	MaxCandidates = 5
)

// Resolver resolves raw names for one listing pass and owns its claimed set.
// It is not safe for concurrent use.
type Resolver struct {
	fullNames []string
	claimed   map[string]bool
}

// New creates a Resolver over the known full names. The slice order is
// used for first-match tie breaking and is not modified.
func New(fullNames []string) *Resolver {
	return &Resolver{
		fullNames: fullNames,
		claimed:   make(map[string]bool, len(fullNames)),
	}
}

// Resolve returns the best full name for raw and marks it claimed.
//
// Parameters:
//   - raw: Name as printed by the listing, possibly truncated
//
// Returns:
//   - string: The resolved full name, or the trimmed raw name when nothing matched
func (r *Resolver) Resolve(raw string) string {
	name, tier := Best(raw, r.fullNames, r.claimed)
	r.claimed[name] = true
	if tier != TierExact {
		verbose.Tracef("Resolved %q -> %q (%s)", raw, name, tier)
	}
	return name
}

// Claimed reports whether name has already been returned by Resolve.
func (r *Resolver) Claimed(name string) bool {
	return r.claimed[name]
}

// Best picks the full name for raw without modifying claimed.
//
// Parameters:
//   - raw: Name as printed by the listing; surrounding whitespace is ignored
//   - fullNames: Known full names in input order
//   - claimed: Full names already taken in this pass; may be nil
//
// Returns:
//   - string: Chosen name
//   - Tier: Rule that produced it
func Best(raw string, fullNames []string, claimed map[string]bool) (string, Tier) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return raw, TierFallback
	}

	for _, full := range fullNames {
		if full == raw && !claimed[full] {
			return full, TierExact
		}
	}

	best := ""
	for _, full := range fullNames {
		if claimed[full] || !strings.HasPrefix(full, raw) {
			continue
		}
		if utf8.RuneCountInString(full) > utf8.RuneCountInString(best) {
			best = full
		}
	}
	if best != "" {
		return best, TierPrefix
	}

	for _, candidate := range closeMatches(raw, fullNames) {
		if !claimed[candidate] {
			return candidate, TierApproximate
		}
	}

	return raw, TierFallback
}

type scored struct {
	score float64
	name  string
}

// closeMatches returns up to MaxCandidates full names whose similarity to
// raw is at least Cutoff, best first. Equal scores order the greater string first.
func closeMatches(raw string, fullNames []string) []string {
	word := strings.Split(raw, "")
	var matches []scored
	for _, full := range fullNames {
		m := difflib.NewMatcher(strings.Split(full, ""), word)
		if m.RealQuickRatio() < Cutoff || m.QuickRatio() < Cutoff {
			continue
		}
		if score := m.Ratio(); score >= Cutoff {
			matches = append(matches, scored{score: score, name: full})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].score != matches[j].score {
			return matches[i].score > matches[j].score
		}
		return matches[i].name > matches[j].name
	})
	if len(matches) > MaxCandidates {
		matches = matches[:MaxCandidates]
	}

	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.name
	}
	return out
}

// Similarity returns the Ratcliff/Obershelp ratio between two strings in [0,1].
func Similarity(a, b string) float64 {
	return difflib.NewMatcher(strings.Split(a, ""), strings.Split(b, "")).Ratio()
}
