package testutil

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/ajxudir/appupdate/pkg/cmdexec"
	apperrors "github.com/ajxudir/appupdate/pkg/errors"
)

// Reply is the scripted response to a matching command.
type Reply struct {
	Output   string
	ExitCode int
	Err      error

	// Delay is waited before replying; cancelling ctx cuts it short.
	Delay time.Duration

	// Gate, when set, blocks the reply until it is closed or ctx is done.
	Gate <-chan struct{}

	// Panic makes the runner panic with this value.
	Panic any
}

// Timeout returns a reply carrying a TimeoutError for cmd.
func Timeout(cmd string) Reply {
	return Reply{ExitCode: -1, Err: &apperrors.TimeoutError{Command: cmd, Timeout: time.Second, Err: context.DeadlineExceeded}}
}

type rule struct {
	match string
	reply Reply
}

// ScriptedRunner is a fake cmdexec.RunFunc. Each call is answered by the
// first rule whose substring occurs in the command line, or by the default
// reply. It records every call and the peak number of concurrent calls.
type ScriptedRunner struct {
	mu          sync.Mutex
	rules       []rule
	fallback    Reply
	calls       []cmdexec.Command
	inFlight    int
	maxInFlight int
}

// NewScriptedRunner creates a runner whose default reply is a successful exit.
func NewScriptedRunner() *ScriptedRunner {
	return &ScriptedRunner{fallback: Reply{Output: "Successfully installed"}}
}

// On adds a rule answering commands that contain match.
//
// Parameters:
//   - match: Substring of the command line, e.g. "--name Zoom"
//   - reply: Response for matching calls
//
// Returns:
//   - *ScriptedRunner: Self for method chaining
func (r *ScriptedRunner) On(match string, reply Reply) *ScriptedRunner {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules = append(r.rules, rule{match: match, reply: reply})
	return r
}

// Default replaces the reply used when no rule matches.
func (r *ScriptedRunner) Default(reply Reply) *ScriptedRunner {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallback = reply
	return r
}

// Run implements cmdexec.RunFunc.
func (r *ScriptedRunner) Run(ctx context.Context, cmd cmdexec.Command) (cmdexec.Result, error) {
	line := cmd.String()

	r.mu.Lock()
	r.calls = append(r.calls, cmd)
	r.inFlight++
	if r.inFlight > r.maxInFlight {
		r.maxInFlight = r.inFlight
	}
	reply := r.fallback
	for _, ru := range r.rules {
		if strings.Contains(line, ru.match) {
			reply = ru.reply
			break
		}
	}
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.inFlight--
		r.mu.Unlock()
	}()

	if reply.Delay > 0 {
		timer := time.NewTimer(reply.Delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return cmdexec.Result{ExitCode: -1}, ctx.Err()
		}
	}
	if reply.Gate != nil {
		select {
		case <-reply.Gate:
		case <-ctx.Done():
			return cmdexec.Result{ExitCode: -1}, ctx.Err()
		}
	}
	if reply.Panic != nil {
		panic(reply.Panic)
	}
	return cmdexec.Result{Output: reply.Output, ExitCode: reply.ExitCode}, reply.Err
}

// Calls returns the commands run so far.
func (r *ScriptedRunner) Calls() []cmdexec.Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]cmdexec.Command(nil), r.calls...)
}

// CallCount returns the number of commands run so far.
func (r *ScriptedRunner) CallCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

// Lines returns the command lines run so far.
func (r *ScriptedRunner) Lines() []string {
	calls := r.Calls()
	lines := make([]string, len(calls))
	for i, c := range calls {
		lines[i] = c.String()
	}
	return lines
}

// MaxInFlight returns the highest number of concurrent calls observed.
func (r *ScriptedRunner) MaxInFlight() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.maxInFlight
}
