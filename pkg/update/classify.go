package update

import (
	"github.com/ajxudir/appupdate/pkg/cmdexec"
	"github.com/ajxudir/appupdate/pkg/utils"
)

// Verdict is the classification of a single addressing attempt.
type Verdict int

const (
	// VerdictFailed means the attempt did not update anything.
	VerdictFailed Verdict = iota
	// VerdictNoUpdate means the manager reported nothing to do.
	VerdictNoUpdate
	// VerdictSuccess means the manager reported an update.
	VerdictSuccess
)

// String returns the verdict name used in log lines.
func (v Verdict) String() string {
	switch v {
	case VerdictSuccess:
		return "success"
	case VerdictNoUpdate:
		return "no-op"
	default:
		return "failed"
	}
}

// Default output markers of the winget CLI.
var (
	DefaultNoUpdateMarkers = []string{"No installed package", "No available upgrade"}
	DefaultSuccessMarkers  = []string{"Success"}
)

// Classifier turns the output of one invocation into a Verdict.
//
// The rules are applied in priority order:
//   - any no-update marker in the output: VerdictNoUpdate
//   - any success marker in the output, or exit code 0: VerdictSuccess
//   - otherwise: VerdictFailed
//
// Exit code 0 and a success marker are treated as the same signal. A tool
// that exits 0 after a partial failure, or prints a success-like word while
// failing, is therefore reported as updated.
type Classifier struct {
	NoUpdateMarkers []string
	SuccessMarkers  []string
}

// Classify applies the rules to a finished invocation.
//
// Parameters:
//   - res: Combined output and exit code of the invocation
//
// Returns:
//   - Verdict: Classification of the attempt
func (c Classifier) Classify(res cmdexec.Result) Verdict {
	if utils.ContainsAny(res.Output, c.noUpdateMarkers()) {
		return VerdictNoUpdate
	}
	if utils.ContainsAny(res.Output, c.successMarkers()) || res.ExitCode == 0 {
		return VerdictSuccess
	}
	return VerdictFailed
}

func (c Classifier) noUpdateMarkers() []string {
	if len(c.NoUpdateMarkers) == 0 {
		return DefaultNoUpdateMarkers
	}
	return c.NoUpdateMarkers
}

func (c Classifier) successMarkers() []string {
	if len(c.SuccessMarkers) == 0 {
		return DefaultSuccessMarkers
	}
	return c.SuccessMarkers
}
