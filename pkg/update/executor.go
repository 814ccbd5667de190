// Package update drives the package manager to update one record at a time.
//
// An Executor picks a strategy per record. Records named in the handler
// table are upgraded once by identifier; every other record gets the
// generic strategy of one attempt addressed by name followed by one
// addressed by identifier. Each attempt is a single external process with
// its own timeout, classified by a Classifier, and the attempts are folded
// into one outcome: updated, no-update-available or failed.
package update

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ajxudir/appupdate/pkg/cmdexec"
	"github.com/ajxudir/appupdate/pkg/config"
	"github.com/ajxudir/appupdate/pkg/constants"
	apperrors "github.com/ajxudir/appupdate/pkg/errors"
	"github.com/ajxudir/appupdate/pkg/packages"
	"github.com/ajxudir/appupdate/pkg/utils"
	"github.com/ajxudir/appupdate/pkg/verbose"
)

// ErrStopped is reported when a stop was requested before the first attempt.
var ErrStopped = errors.New("stop requested before the first attempt")

// StopSignal is polled before every addressing attempt.
type StopSignal interface {
	StopRequested() bool
}

// Settings are the manager parameters an Executor needs.
type Settings struct {
	// Command is the package manager executable.
	Command string

	// Timeout bounds each attempt.
	Timeout time.Duration

	// ExtraArgs are appended to every upgrade invocation.
	ExtraArgs []string

	// Classifier interprets attempt output.
	Classifier Classifier
}

// SettingsFromConfig extracts executor settings from the configuration.
func SettingsFromConfig(cfg *config.Config) Settings {
	return Settings{
		Command:   cfg.GetCommand(),
		Timeout:   cfg.GetTimeout(),
		ExtraArgs: append([]string(nil), cfg.Manager.ExtraArgs...),
		Classifier: Classifier{
			NoUpdateMarkers: cfg.Manager.NoUpdateMarkers,
			SuccessMarkers:  cfg.Manager.SuccessMarkers,
		},
	}
}

// Attempt is one planned invocation of the package manager.
type Attempt struct {
	// Mode is the addressing flag, "--name" or "--id".
	Mode string

	// Target is the name or identifier passed with Mode.
	Target string

	// Command is the invocation itself.
	Command cmdexec.Command
}

// Result is the outcome of updating one record.
type Result struct {
	// Name is the record name.
	Name string

	// Outcome is one of constants.OutcomeUpdated, OutcomeNoUpdate or OutcomeFailed.
	Outcome string

	// Attempts counts the invocations that were started.
	Attempts int

	// Err is the last attempt error, if any.
	Err error
}

// Executor updates single records. It holds no per-record state and is
// safe for concurrent use.
type Executor struct {
	settings Settings
	handlers *HandlerTable
	run      cmdexec.RunFunc
}

// NewExecutor creates an Executor.
//
// Parameters:
//   - settings: Manager command, timeout, extra arguments and output markers
//   - handlers: Specialized handlers; nil means every record uses the generic strategy
//   - run: Process runner; nil uses cmdexec.Run
//
// Returns:
//   - *Executor: Ready to use executor
func NewExecutor(settings Settings, handlers *HandlerTable, run cmdexec.RunFunc) *Executor {
	if strings.TrimSpace(settings.Command) == "" {
		settings.Command = "winget"
	}
	if settings.Timeout <= 0 {
		settings.Timeout = config.DefaultTimeoutSeconds * time.Second
	}
	return &Executor{settings: settings, handlers: handlers, run: run}
}

// Budget returns the worst-case wall time for one record: the most
// attempts any strategy makes times the per-attempt timeout.
func (e *Executor) Budget() time.Duration {
	return 2 * e.settings.Timeout
}

// Plan returns the attempts Update would make for rec, in order.
//
// Parameters:
//   - rec: Record to update
//
// Returns:
//   - []Attempt: Planned invocations; empty when nothing needs to run
//   - string: Non-empty reason when a handler decided no update is needed
func (e *Executor) Plan(rec packages.Record) ([]Attempt, string) {
	if h, ok := e.handlers.Lookup(rec.Name); ok {
		return e.planHandler(rec, h)
	}

	attempts := []Attempt{e.attempt("--name", strings.TrimSpace(rec.Name))}
	if id := strings.TrimSpace(rec.ID); id != "" {
		attempts = append(attempts, e.attempt("--id", id))
	}
	return attempts, ""
}

// planHandler addresses the record by identifier with an exact match.
func (e *Executor) planHandler(rec packages.Record, h Handler) ([]Attempt, string) {
	if rec.HasUpdate() {
		if newer, ok := utils.IsNewer(rec.Available, rec.Version); ok && !newer {
			return nil, fmt.Sprintf("available %s is not newer than installed %s", rec.Available, rec.Version)
		}
	}

	id := strings.TrimSpace(rec.ID)
	if id == "" {
		id = h.ID
	}
	if id == "" {
		return []Attempt{e.attempt("--name", strings.TrimSpace(rec.Name), "--exact")}, ""
	}
	return []Attempt{e.attempt("--id", id, "--exact")}, ""
}

func (e *Executor) attempt(mode, target string, flags ...string) Attempt {
	args := []string{"upgrade", mode, target}
	args = append(args, flags...)
	args = append(args, "--silent")
	args = append(args, e.settings.ExtraArgs...)
	return Attempt{
		Mode:   mode,
		Target: target,
		Command: cmdexec.Command{
			Name:    e.settings.Command,
			Args:    args,
			Timeout: e.settings.Timeout,
		},
	}
}

// Update brings one record up to date.
//
// It performs the following operations:
//   - Rejects records without a name
//   - Plans the attempts (handler or generic strategy)
//   - Before each attempt, stops if stop or ctx says so
//   - Runs and classifies each attempt
//   - Folds the verdicts: any success is updated, else any no-op is
//     no-update-available, else failed
//
// Update never panics; a panic while processing the record is reported as
// a failed outcome.
//
// Parameters:
//   - ctx: Cancelling ctx kills the running process and stops further attempts
//   - rec: Record to update
//   - stop: Cooperative stop signal; may be nil
//
// Returns:
//   - Result: Outcome and attempt count
func (e *Executor) Update(ctx context.Context, rec packages.Record, stop StopSignal) (res Result) {
	res = Result{Name: rec.Name, Outcome: constants.OutcomeFailed}
	defer func() {
		if r := recover(); r != nil {
			verbose.Errorf("panic while updating %s: %v", rec.Name, r)
			res.Outcome = constants.OutcomeFailed
			res.Err = fmt.Errorf("panic while updating %s: %v", rec.Name, r)
		}
	}()

	if !rec.Actionable() {
		res.Err = &apperrors.MalformedRecordError{ID: rec.ID, Reason: "missing name"}
		return res
	}

	attempts, skip := e.Plan(rec)
	if skip != "" {
		verbose.Infof("Skipping %s: %s", rec.Name, skip)
		res.Outcome = constants.OutcomeNoUpdate
		return res
	}
	if _, ok := e.handlers.Lookup(rec.Name); ok {
		verbose.Infof("Updating %s using specialized handler", rec.Name)
	} else {
		verbose.Infof("Updating %s using %s", rec.Name, e.settings.Command)
	}

	success, noop := false, false
	for _, a := range attempts {
		if stopped(ctx, stop) {
			verbose.Debugf("Stop observed before %s attempt for %s", a.Mode, rec.Name)
			break
		}
		res.Attempts++

		switch v, err := e.runAttempt(ctx, a); v {
		case VerdictSuccess:
			success = true
		case VerdictNoUpdate:
			noop = true
		default:
			if err == nil {
				err = fmt.Errorf("%s: no success reported", a.Command.String())
			}
			res.Err = err
			verbose.Warnf("Failed using %s for %s: %v", a.Mode, rec.Name, err)
		}
	}

	switch {
	case success:
		res.Outcome = constants.OutcomeUpdated
		res.Err = nil
	case noop:
		res.Outcome = constants.OutcomeNoUpdate
		res.Err = nil
	case res.Attempts == 0:
		res.Err = ErrStopped
	}
	return res
}

// runAttempt runs one invocation. A timeout or spawn error is a failed attempt.
func (e *Executor) runAttempt(ctx context.Context, a Attempt) (Verdict, error) {
	run := e.run
	if run == nil {
		run = cmdexec.Run
	}
	out, err := run(ctx, a.Command)
	if err != nil {
		return VerdictFailed, err
	}
	v := e.settings.Classifier.Classify(out)
	verbose.Debugf("%s %s -> %s (exit %d)", a.Mode, a.Target, v, out.ExitCode)
	return v, nil
}

func stopped(ctx context.Context, stop StopSignal) bool {
	if stop != nil && stop.StopRequested() {
		return true
	}
	return ctx.Err() != nil
}
