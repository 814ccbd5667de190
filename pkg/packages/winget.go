package packages

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/ajxudir/appupdate/pkg/cmdexec"
	"github.com/ajxudir/appupdate/pkg/constants"
	"github.com/ajxudir/appupdate/pkg/resolve"
	"github.com/ajxudir/appupdate/pkg/utils"
	"github.com/ajxudir/appupdate/pkg/verbose"
)

var (
	columnSplit    = regexp.MustCompile(`\s{2,}`)
	numericVersion = regexp.MustCompile(`^\d+(\.\d+)*$`)
)

// ellipses are the truncation markers winget prints, including the
// mis-decoded UTF-8 form seen through some consoles.
var ellipses = []string{"â€¦", "…"}

// WingetSource reads installed packages from the package manager listing.
type WingetSource struct {
	// Command is the package manager executable.
	Command string

	// ListArgs produce the tabular listing, e.g. ["list", "--accept-source-agreements"].
	ListArgs []string

	// NamesCommand prints full package names, one per line. Optional.
	NamesCommand string

	// Timeout bounds each of the two commands.
	Timeout time.Duration
}

// Records runs the listing and returns the parsed records.
//
// It performs the following operations:
//   - Runs the names command (if configured) to learn full names
//   - Runs the listing command
//   - Parses the listing, resolving truncated names against the full names
//
// A failing names command is not fatal: names then stay as listed.
//
// Parameters:
//   - ctx: Context for cancellation
//
// Returns:
//   - []Record: Parsed records in listing order
//   - error: When the listing command cannot run or exits non-zero
func (s *WingetSource) Records(ctx context.Context) ([]Record, error) {
	var fullNames []string
	if strings.TrimSpace(s.NamesCommand) != "" {
		res, err := cmdexec.RunLine(ctx, s.NamesCommand, s.Timeout)
		switch {
		case err != nil:
			verbose.Warnf("could not read full package names: %v", err)
		case res.ExitCode != 0:
			verbose.Warnf("full package name command exited with code %d", res.ExitCode)
		default:
			fullNames = ParseNames(res.Output)
			verbose.Debugf("Read %d full package names", len(fullNames))
		}
	}

	args := s.ListArgs
	if len(args) == 0 {
		args = []string{"list"}
	}
	res, err := cmdexec.Run(ctx, cmdexec.Command{Name: s.Command, Args: args, Timeout: s.Timeout})
	if err != nil {
		return nil, fmt.Errorf("failed to list packages: %w", err)
	}
	if res.ExitCode != 0 {
		return nil, fmt.Errorf("failed to list packages: %s exited with code %d", s.Command, res.ExitCode)
	}

	return ParseListing(res.Output, resolve.New(fullNames)), nil
}

// ParseNames extracts full package names from the names command output.
// Blank lines, a "Name" header and its dashed underline are dropped.
func ParseNames(output string) []string {
	var names []string
	for _, line := range utils.TrimAndSplit(strings.ReplaceAll(output, "\r\n", "\n"), "\n") {
		if line == "Name" || isRule(line) {
			continue
		}
		names = append(names, line)
	}
	return names
}

// ParseListing parses the tabular package listing.
//
// It performs the following operations:
//   - Skips everything up to and including the dashed rule under the header
//   - Keeps only the text after the last carriage return (spinner residue)
//   - Replaces truncation ellipses with spaces so the column gap survives
//   - Splits each line on runs of two or more spaces
//   - Resolves the name column through resolver
//
// Lines with fewer than three columns are skipped. With exactly four
// columns the fourth is the available version when it is numeric,
// otherwise the source.
//
// Parameters:
//   - output: Raw listing output
//   - resolver: Name resolver for this listing pass; nil keeps names as printed
//
// Returns:
//   - []Record: Parsed records in listing order
func ParseListing(output string, resolver *resolve.Resolver) []Record {
	lines := splitLines(output)
	start := 0
	for i, line := range lines {
		if isRule(cleanLine(line)) {
			start = i + 1
			break
		}
	}

	var records []Record
	for _, line := range lines[start:] {
		line = cleanLine(line)
		if line == "" {
			continue
		}

		parts := columnSplit.Split(line, -1)
		if len(parts) < 3 || parts[0] == "Name" {
			verbose.Tracef("Listing: skipped line %q", line)
			continue
		}

		rec := Record{
			Name:    parts[0],
			ID:      parts[1],
			Version: parts[2],
		}
		if rec.Version == "" {
			rec.Version = constants.VersionUnknown
		}

		switch {
		case len(parts) >= 5:
			rec.Available = parts[3]
			rec.Source = parts[4]
		case len(parts) == 4:
			if numericVersion.MatchString(parts[3]) {
				rec.Available = parts[3]
			} else {
				rec.Source = parts[3]
			}
		}

		if resolver != nil {
			rec.Name = resolver.Resolve(rec.Name)
		}
		records = append(records, rec)
	}
	return records
}

func splitLines(output string) []string {
	return strings.Split(strings.ReplaceAll(output, "\r\n", "\n"), "\n")
}

// cleanLine drops spinner residue and truncation markers and trims the line.
func cleanLine(line string) string {
	if i := strings.LastIndex(line, "\r"); i >= 0 {
		line = line[i+1:]
	}
	for _, e := range ellipses {
		line = strings.ReplaceAll(line, e, "   ")
	}
	return strings.TrimSpace(line)
}

// isRule reports whether line is a header underline such as "-----".
func isRule(line string) bool {
	return len(line) >= 3 && strings.Trim(line, "-") == ""
}
