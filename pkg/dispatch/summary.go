package dispatch

import (
	"time"

	"github.com/ajxudir/appupdate/pkg/constants"
	apperrors "github.com/ajxudir/appupdate/pkg/errors"
	"github.com/ajxudir/appupdate/pkg/update"
)

// Summary describes a finished batch.
type Summary struct {
	// Status is one of constants.BatchCompleted, BatchCancelled or BatchSystemError.
	Status string

	// Total counts the accepted records.
	Total int

	// Completed counts the records that reported an outcome.
	Completed int

	// Skipped counts malformed records left out of the batch.
	Skipped int

	Updated  int
	NoUpdate int
	Failed   int

	// Results holds one entry per completed record, in completion order.
	Results []update.Result

	// Message describes a system error.
	Message string

	// Duration is the wall time of the batch.
	Duration time.Duration
}

// FailedNames returns the names of the records that failed.
func (s Summary) FailedNames() []string {
	var names []string
	for _, r := range s.Results {
		if r.Outcome == constants.OutcomeFailed {
			names = append(names, r.Name)
		}
	}
	return names
}

// Err maps the summary to the error a command should return.
//
// Returns:
//   - nil: every record was updated or had nothing to do
//   - *errors.ExitError with ExitCancelled: the batch was stopped
//   - *errors.ExitError with ExitFailure: a system error, or every record failed
//   - *errors.PartialSuccessError: some records failed
func (s Summary) Err() error {
	switch {
	case s.Status == constants.BatchSystemError:
		return apperrors.NewExitErrorf(apperrors.ExitFailure, "update aborted: %s", s.Message)
	case s.Status == constants.BatchCancelled:
		return apperrors.NewExitErrorf(apperrors.ExitCancelled, "update cancelled: %d of %d processed", s.Completed, s.Total)
	case s.Failed == 0:
		return nil
	case s.Failed == s.Completed:
		return apperrors.NewExitErrorf(apperrors.ExitFailure, "all %d updates failed", s.Failed)
	default:
		return apperrors.NewPartialSuccessError(s.Completed-s.Failed, s.Failed, s.FailedNames())
	}
}
