package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/ajxudir/appupdate/pkg/constants"
	"github.com/ajxudir/appupdate/pkg/dispatch"
	"github.com/ajxudir/appupdate/pkg/progress"
)

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// SinkOption configures a Sink.
type SinkOption func(*Sink)

// WithBar draws a progress bar on w. The bar is skipped when w is not a terminal.
func WithBar(w io.Writer) SinkOption {
	return func(s *Sink) {
		s.bar = progress.NewBar(w)
		s.bar.SetEnabled(IsTerminal(w))
	}
}

// WithColor forces colored output on or off.
func WithColor(enabled bool) SinkOption {
	return func(s *Sink) {
		for _, c := range []*color.Color{s.green, s.yellow, s.red, s.faint} {
			if enabled {
				c.EnableColor()
			} else {
				c.DisableColor()
			}
		}
	}
}

// Quiet suppresses everything but the final summary's return value, for
// structured output on stdout.
func Quiet() SinkOption {
	return func(s *Sink) {
		s.quiet = true
	}
}

// Sink reports dispatcher events on the terminal: one colored line per
// finished record, a progress bar while the batch runs, and a closing
// summary. The dispatcher serializes its calls, so Sink holds no lock.
type Sink struct {
	out     io.Writer
	bar     *progress.Bar
	quiet   bool
	percent int

	green, yellow, red, faint *color.Color
}

var _ dispatch.Observer = (*Sink)(nil)

// NewSink creates a Sink writing record lines to out.
//
// Parameters:
//   - out: Destination for record lines and the summary
//   - opts: WithBar, WithColor and Quiet
//
// Returns:
//   - *Sink: Sink ready to pass to dispatch.WithObserver
func NewSink(out io.Writer, opts ...SinkOption) *Sink {
	s := &Sink{
		out:    out,
		green:  color.New(color.FgGreen),
		yellow: color.New(color.FgYellow),
		red:    color.New(color.FgRed),
		faint:  color.New(color.Faint),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.bar == nil {
		s.bar = progress.NewBar(io.Discard)
		s.bar.SetEnabled(false)
	}
	return s
}

// OnRecordStarted implements dispatch.Observer.
func (s *Sink) OnRecordStarted(name string) {
	if s.quiet {
		return
	}
	s.bar.Set(s.percent, "updating "+name)
}

// OnProgress implements dispatch.Observer.
func (s *Sink) OnProgress(percent int, message string) {
	if s.quiet {
		return
	}
	if outcome, name, ok := progress.ParseStatusLine(message); ok && isOutcome(outcome) {
		s.line(fmt.Sprintf("%s %s %s", constants.OutcomeIcon(outcome), s.paint(outcome).Sprint(outcome), name))
	}
	if percent >= 0 {
		s.percent = percent
	}
	s.bar.Set(percent, message)
}

// OnError implements dispatch.Observer.
func (s *Sink) OnError(message string) {
	if s.quiet {
		return
	}
	s.line(s.red.Sprintf("%s %s", constants.IconError, progress.SystemErrorLine(message)))
}

// OnCompleted implements dispatch.Observer.
func (s *Sink) OnCompleted(summary dispatch.Summary) {
	s.bar.Done()
	if s.quiet {
		return
	}

	counts := fmt.Sprintf("%d updated, %d no update, %d failed", summary.Updated, summary.NoUpdate, summary.Failed)
	switch summary.Status {
	case constants.BatchCompleted:
		c := s.green
		if summary.Failed > 0 {
			c = s.yellow
		}
		_, _ = fmt.Fprintln(s.out, c.Sprintf("Update process completed: %s", counts))
	case constants.BatchCancelled:
		_, _ = fmt.Fprintln(s.out, s.yellow.Sprintf("Update cancelled after %d of %d packages: %s",
			summary.Completed, summary.Total, counts))
	default:
		_, _ = fmt.Fprintln(s.out, s.red.Sprintf("Update aborted: %s", summary.Message))
	}

	if failed := summary.FailedNames(); len(failed) > 0 {
		_, _ = fmt.Fprintln(s.out, s.red.Sprintf("Failed: %s", strings.Join(failed, ", ")))
	}
	if summary.Skipped > 0 {
		_, _ = fmt.Fprintln(s.out, s.faint.Sprintf("Skipped %d malformed records", summary.Skipped))
	}
}

// line prints msg above the progress bar.
func (s *Sink) line(msg string) {
	s.bar.Clear()
	_, _ = fmt.Fprintln(s.out, msg)
}

func (s *Sink) paint(outcome string) *color.Color {
	switch outcome {
	case constants.OutcomeUpdated:
		return s.green
	case constants.OutcomeFailed:
		return s.red
	default:
		return s.faint
	}
}

func isOutcome(s string) bool {
	return s == constants.OutcomeUpdated || s == constants.OutcomeNoUpdate || s == constants.OutcomeFailed
}
