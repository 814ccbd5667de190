// Package cmdexec runs external package-manager commands for appupdate.
// Commands are executed directly from an argument vector, without a shell,
// each bounded by its own timeout and killed together with its children
// when the timeout expires or the caller cancels.
package cmdexec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	apperrors "github.com/ajxudir/appupdate/pkg/errors"
	"github.com/ajxudir/appupdate/pkg/verbose"
)

// Command describes one external invocation.
type Command struct {
	// Name is the executable name or path.
	Name string

	// Args are passed verbatim; no quoting is required.
	Args []string

	// Timeout bounds the invocation. Zero means no timeout.
	Timeout time.Duration

	// Dir is the working directory, empty for the current one.
	Dir string
}

// String returns the command line for display.
func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// Result is the observable outcome of a process that ran to exit.
type Result struct {
	// Output holds standard output and standard error interleaved.
	Output string

	// ExitCode is the process exit status.
	ExitCode int
}

// RunFunc is the function signature for command execution.
//
// A process that starts and exits returns a Result and a nil error,
// whatever its exit code. An error is returned only when the process could
// not be started, timed out (*errors.TimeoutError) or was cancelled
// through ctx.
//
// Parameters:
//   - ctx: Context for cancellation; cancelling kills the process group
//   - cmd: The command to run
//
// Returns:
//   - Result: Output and exit code
//   - error: Spawn failure, timeout or cancellation
type RunFunc func(ctx context.Context, cmd Command) (Result, error)

// Run is the default command execution function.
//
// It can be replaced with a fake implementation for testing.
var Run RunFunc = runCommand

// runCommand executes cmd and collects its combined output.
func runCommand(ctx context.Context, c Command) (Result, error) {
	if strings.TrimSpace(c.Name) == "" {
		return Result{ExitCode: -1}, fmt.Errorf("empty command")
	}
	if err := ctx.Err(); err != nil {
		return Result{ExitCode: -1}, err
	}

	runCtx := ctx
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, c.Name, c.Args...)
	if c.Dir != "" {
		cmd.Dir = c.Dir
	}

	// Run in its own process group so children die with it.
	setProcGroup(cmd)
	cmd.Cancel = func() error { return killProcGroup(cmd) }

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	verbose.CommandExec(c.Name, c.Args)
	err := cmd.Run()
	result := Result{Output: out.String()}

	if err == nil {
		verbose.CommandResult(c.String(), 0, result.Output)
		return result, nil
	}

	if ctx.Err() != nil {
		result.ExitCode = -1
		return result, fmt.Errorf("%s: %w", c.String(), ctx.Err())
	}
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		result.ExitCode = -1
		verbose.Warnf("command timed out after %s: %s", c.Timeout, c.String())
		return result, &apperrors.TimeoutError{Command: c.String(), Timeout: c.Timeout, Err: err}
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		verbose.CommandResult(c.String(), result.ExitCode, result.Output)
		return result, nil
	}

	result.ExitCode = -1
	return result, fmt.Errorf("failed to start %s: %w", c.Name, err)
}

// RunLine splits a command line into arguments and runs it.
//
// Parameters:
//   - ctx: Context for cancellation
//   - line: Command line such as `powershell -NoProfile -Command "Get-Thing"`
//   - timeout: Maximum execution time, zero for none
//
// Returns:
//   - Result: Output and exit code
//   - error: When the line is empty or the command could not run
func RunLine(ctx context.Context, line string, timeout time.Duration) (Result, error) {
	args := SplitArgs(line)
	if len(args) == 0 {
		return Result{ExitCode: -1}, fmt.Errorf("empty command")
	}
	return Run(ctx, Command{Name: args[0], Args: args[1:], Timeout: timeout})
}

// SplitArgs parses a command string into arguments, respecting quotes.
//
// Quoted strings (single or double) are kept as one argument even when they
// contain spaces. A backslash escapes a following quote, backslash or space.
//
// Parameters:
//   - cmdStr: Command string to parse into arguments
//
// Returns:
//   - []string: Parsed arguments
func SplitArgs(cmdStr string) []string {
	var args []string
	var current strings.Builder
	inQuote := false
	quoteChar := rune(0)
	started := false

	runes := []rune(cmdStr)
	for i := 0; i < len(runes); i++ {
		r := runes[i]

		if r == '\\' && i+1 < len(runes) {
			next := runes[i+1]
			if next == '"' || next == '\'' || next == '\\' || next == ' ' {
				current.WriteRune(next)
				started = true
				i++
				continue
			}
		}

		if r == '"' || r == '\'' {
			switch {
			case !inQuote:
				inQuote = true
				quoteChar = r
				started = true
			case r == quoteChar:
				inQuote = false
			default:
				current.WriteRune(r)
			}
			continue
		}

		if !inQuote && (r == ' ' || r == '\t') {
			if started {
				args = append(args, current.String())
				current.Reset()
				started = false
			}
			continue
		}

		current.WriteRune(r)
		started = true
	}

	if started {
		args = append(args, current.String())
	}
	return args
}
